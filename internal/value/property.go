package value

// PropertyKey is either a string or a symbol property name (§3 "Property
// keys are strings or symbols"). Exactly one of Str/Sym is set; String keys
// compare by content, Sym keys by identity.
type PropertyKey struct {
	Str *Str
	Sym *Sym
}

// StringKey builds a PropertyKey from literal text, the common case for
// identifier and bracket-literal property access.
func StringKey(text string) PropertyKey { return PropertyKey{Str: NewString(text)} }

// SymbolKey builds a PropertyKey from a runtime symbol.
func SymbolKey(s *Sym) PropertyKey { return PropertyKey{Sym: s} }

// IsSymbol reports whether the key is a symbol key rather than a string key.
func (k PropertyKey) IsSymbol() bool { return k.Sym != nil }

// Equal compares two keys for the identity/content rule each variant uses.
func (k PropertyKey) Equal(other PropertyKey) bool {
	if k.IsSymbol() != other.IsSymbol() {
		return false
	}
	if k.IsSymbol() {
		return k.Sym == other.Sym
	}
	return k.Str.Equal(other.Str)
}

// String renders the key for disassembly/debug output; symbol keys render
// via their description since ToString(symbol) would throw in real code.
func (k PropertyKey) String() string {
	if k.IsSymbol() {
		return k.Sym.DisplayString()
	}
	return k.Str.DisplayString()
}

// Attributes is the 3-bit writable/enumerable/configurable attribute triple
// every property descriptor carries (§4.F "PropertyDescriptor").
type Attributes uint8

const (
	Writable Attributes = 1 << iota
	Enumerable
	Configurable
)

// Default returns the attribute triple used for properties a script
// creates directly (object literals, `obj.x = v` on a fresh property):
// writable, enumerable, and configurable, all true.
func Default() Attributes { return Writable | Enumerable | Configurable }

// Sealed returns the triple built-in accessor/method properties commonly
// use: writable and configurable, but not enumerable.
func Sealed() Attributes { return Writable | Configurable }

func (a Attributes) Has(f Attributes) bool { return a&f != 0 }
func (a Attributes) With(f Attributes) Attributes    { return a | f }
func (a Attributes) Without(f Attributes) Attributes  { return a &^ f }

// Descriptor is a single property's full description: either a data
// property (Value) or an accessor property (Getter/Setter), never both
// (§4.F "a data property or an accessor property, never both"). Kind
// distinguishes which fields are meaningful.
type Descriptor struct {
	Kind     DescKind
	Value    Value   // meaningful when Kind == DataDesc
	Getter   *Object // meaningful when Kind == AccessorDesc; may be nil
	Setter   *Object // meaningful when Kind == AccessorDesc; may be nil
	Attrs    Attributes
}

// DescKind distinguishes a data property slot from an accessor slot.
type DescKind uint8

const (
	DataDesc DescKind = iota
	AccessorDesc
)

// NewDataDescriptor builds a data-property descriptor with the given value
// and attribute triple.
func NewDataDescriptor(v Value, attrs Attributes) Descriptor {
	return Descriptor{Kind: DataDesc, Value: v, Attrs: attrs}
}

// NewAccessorDescriptor builds an accessor-property descriptor. Either
// getter or setter may be nil (one-sided accessor).
func NewAccessorDescriptor(getter, setter *Object, attrs Attributes) Descriptor {
	return Descriptor{Kind: AccessorDesc, Getter: getter, Setter: setter, Attrs: attrs}
}

func (d Descriptor) IsAccessor() bool { return d.Kind == AccessorDesc }
func (d Descriptor) IsData() bool     { return d.Kind == DataDesc }
