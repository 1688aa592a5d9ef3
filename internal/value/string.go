package value

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Str is an immutable UTF-16 sequence with interior sharing via pointer
// handle (§3 "String: An immutable UTF-16 sequence with interior sharing
// via handle. Length is element count, not byte count."). Heap-allocated
// so equal strings built at different times are distinct GC objects;
// equality is by content (StrictEquals), not pointer identity.
type Str struct {
	Units []uint16
}

func (*Str) Kind() Kind { return KindString }

func (s *Str) DisplayString() string {
	return string(utf16.Decode(s.Units))
}

// Len reports the string's element count (UTF-16 code units), matching
// ECMAScript's `.length`, not the UTF-8 byte count.
func (s *Str) Len() int { return len(s.Units) }

// NewString interns source text (assumed valid UTF-8) into a Str handle.
func NewString(text string) *Str {
	return &Str{Units: utf16.Encode([]rune(text))}
}

// NewStringFromUnits builds a Str directly from UTF-16 code units, used by
// the lexer/compiler which already work in UTF-16 per the specification's
// "canonical UTF-16 text" requirement.
func NewStringFromUnits(units []uint16) *Str {
	cp := make([]uint16, len(units))
	copy(cp, units)
	return &Str{Units: cp}
}

// Concat returns a new Str holding a's units followed by b's.
func Concat(a, b *Str) *Str {
	out := make([]uint16, 0, len(a.Units)+len(b.Units))
	out = append(out, a.Units...)
	out = append(out, b.Units...)
	return &Str{Units: out}
}

// Equal compares two strings by UTF-16 content.
func (s *Str) Equal(other *Str) bool {
	if len(s.Units) != len(other.Units) {
		return false
	}
	for i, u := range s.Units {
		if other.Units[i] != u {
			return false
		}
	}
	return true
}

// Less implements the `<`/`>` string relational comparison: a code-unit
// lexicographic compare over the UTF-16 sequences.
func (s *Str) Less(other *Str) bool {
	n := len(s.Units)
	if len(other.Units) < n {
		n = len(other.Units)
	}
	for i := 0; i < n; i++ {
		if s.Units[i] != other.Units[i] {
			return s.Units[i] < other.Units[i]
		}
	}
	return len(s.Units) < len(other.Units)
}

// ValidUTF8 reports whether text round-trips through UTF-8 decoding
// without the replacement character, used by the lexer's source-decoding
// step (§4.B "decode UTF-8 into Unicode scalar values").
func ValidUTF8(text string) bool {
	return utf8.ValidString(text)
}

// JoinStr concatenates a slice of Str values with sep between each,
// mirroring Array.prototype.join's use of ToString per element.
func JoinStr(parts []*Str, sep string) string {
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = p.DisplayString()
	}
	return strings.Join(strs, sep)
}
