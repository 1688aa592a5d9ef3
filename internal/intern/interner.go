// Package intern maps source identifiers and string literals to compact
// symbols, storing each canonical spelling once as a Go (UTF-8) string so
// the rest of the engine never carries raw source spellings past the
// lexer. No UTF-16 form of the text is kept.
package intern

import "sync"

// Symbol is an interned identifier: an index into an Interner's table.
// Equality between symbols is equality between indices.
type Symbol uint32

// invalidSymbol is returned by lookups that miss; zero is a valid index
// (the empty string is always interned at index 0), so the invalid marker
// is the maximum value instead.
const invalidSymbol Symbol = ^Symbol(0)

// Interner owns canonical text, held as Go (UTF-8) strings, keyed by Symbol. Lookup by spelling
// is O(1) amortized via the index map; lookup by Symbol is O(1) slice
// indexing.
type Interner struct {
	mu      sync.RWMutex
	byText  map[string]Symbol
	byIndex []string
}

// New creates an Interner pre-seeded with the empty string at index 0.
func New() *Interner {
	in := &Interner{
		byText:  make(map[string]Symbol, 256),
		byIndex: make([]string, 0, 256),
	}
	in.intern("")
	return in
}

// Intern returns the Symbol for text, allocating a new one if this is the
// first time text has been seen.
func (in *Interner) Intern(text string) Symbol {
	in.mu.RLock()
	if sym, ok := in.byText[text]; ok {
		in.mu.RUnlock()
		return sym
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	// Re-check under the write lock: another goroutine may have interned
	// the same text between the RUnlock above and this Lock.
	if sym, ok := in.byText[text]; ok {
		return sym
	}
	return in.intern(text)
}

func (in *Interner) intern(text string) Symbol {
	sym := Symbol(len(in.byIndex))
	in.byIndex = append(in.byIndex, text)
	in.byText[text] = sym
	return sym
}

// Lookup returns the canonical text for sym, or "" and false if sym was
// never produced by this Interner.
func (in *Interner) Lookup(sym Symbol) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(sym) < 0 || int(sym) >= len(in.byIndex) {
		return "", false
	}
	return in.byIndex[sym], true
}

// MustLookup is Lookup without the ok result, for call sites that already
// know sym came from this Interner (e.g. it was produced by the lexer that
// feeds this parser). Panics on a foreign or corrupt symbol: an impossible
// occurrence in a well-formed compiler pipeline, not a user-visible error.
func (in *Interner) MustLookup(sym Symbol) string {
	text, ok := in.Lookup(sym)
	if !ok {
		panic("intern: symbol not found in interner")
	}
	return text
}

// Find returns the Symbol already assigned to text without allocating a
// new one, reporting false if text has never been interned.
func (in *Interner) Find(text string) (Symbol, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	sym, ok := in.byText[text]
	return sym, ok
}

// Len reports how many distinct symbols have been interned.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.byIndex)
}
