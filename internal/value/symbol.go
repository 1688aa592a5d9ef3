package value

import "sync/atomic"

// Sym is a runtime ECMAScript Symbol value — distinct from intern.Symbol,
// which interns lexer/parser identifier spellings; a Sym is a first-class
// heap value created by `Symbol(...)` or looked up from the well-known
// table (§3 "Well-known symbols").
type Sym struct {
	Description string
	HasDesc     bool
	id          uint64 // process-scoped identity; two Syms are never equal by description
}

func (*Sym) Kind() Kind { return KindSymbol }
func (s *Sym) DisplayString() string {
	if s.HasDesc {
		return "Symbol(" + s.Description + ")"
	}
	return "Symbol()"
}

// userSymbolCounter is the "monotonic counter used to allocate new
// user-symbol hashes" the specification calls out as the one piece of
// process-scoped mutable state besides the well-known-symbol table itself
// (§9 "Global mutable state"); atomic so it is safe if the host ever drives
// more than one context from more than one goroutine sequentially.
var userSymbolCounter uint64

// NewSymbol allocates a fresh, never-equal Sym, optionally carrying desc.
func NewSymbol(desc string, hasDesc bool) *Sym {
	id := atomic.AddUint64(&userSymbolCounter, 1)
	return &Sym{Description: desc, HasDesc: hasDesc, id: id}
}

// WellKnown enumerates the fixed, process-scoped symbols the language
// reserves for customization hooks (§3 "Well-known symbols").
type WellKnown int

const (
	SymIterator WellKnown = iota
	SymAsyncIterator
	SymHasInstance
	SymIsConcatSpreadable
	SymMatch
	SymMatchAll
	SymReplace
	SymSearch
	SymSpecies
	SymSplit
	SymToPrimitive
	SymToStringTag
	SymUnscopables
	wellKnownCount
)

var wellKnownNames = [...]string{
	SymIterator:           "Symbol.iterator",
	SymAsyncIterator:      "Symbol.asyncIterator",
	SymHasInstance:        "Symbol.hasInstance",
	SymIsConcatSpreadable: "Symbol.isConcatSpreadable",
	SymMatch:              "Symbol.match",
	SymMatchAll:           "Symbol.matchAll",
	SymReplace:            "Symbol.replace",
	SymSearch:             "Symbol.search",
	SymSpecies:            "Symbol.species",
	SymSplit:              "Symbol.split",
	SymToPrimitive:        "Symbol.toPrimitive",
	SymToStringTag:        "Symbol.toStringTag",
	SymUnscopables:        "Symbol.unscopables",
}

// wellKnownTable is initialized once at package init and is logically
// immutable thereafter (§9 "Global mutable state"): every realm shares the
// same well-known Sym identities, as the specification requires so that
// e.g. `Symbol.iterator` compares `===` across realms.
var wellKnownTable [wellKnownCount]*Sym

func init() {
	for i := range wellKnownTable {
		wellKnownTable[i] = &Sym{Description: wellKnownNames[i], HasDesc: true, id: ^uint64(i)}
	}
}

// WellKnownSymbol returns the process-scoped Sym for w.
func WellKnownSymbol(w WellKnown) *Sym { return wellKnownTable[w] }
