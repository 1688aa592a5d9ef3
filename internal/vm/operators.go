package vm

import (
	"math"
	"strconv"

	"github.com/cwbudde/ecma/internal/value"
)

// operators.go implements the abstract arithmetic/comparison/coercion
// operations ECMAScript's binary/unary opcodes need. Unlike the rest of
// the VM, none of this is grounded on the teacher: DWScript is statically
// typed with a distinct opcode per operand-type pair (IntAdd, FloatAdd,
// StringConcat, ...), so it has no ToPrimitive/ToNumber/loose-equality
// analog to imitate. Everything here is written directly from the
// specification's abstract-operation algorithms instead.

// toPrimitive implements ToPrimitive: an object's @@toPrimitive method, if
// callable, is called with the hint ("default" when hint is empty);
// otherwise valueOf then toString are tried, toString first for a "string"
// hint. Date objects get no special default hint.
func (vm *VM) toPrimitive(v value.Value, hint string) (value.Value, error) {
	o, ok := v.(*value.Object)
	if !ok {
		return v, nil
	}
	if exotic, err := o.Get(value.SymbolKey(value.WellKnownSymbol(value.SymToPrimitive))); err == nil {
		if fn, ok := exotic.(*value.Object); ok && fn.IsCallable() {
			h := hint
			if h == "" {
				h = "default"
			}
			return fn.Internal.Call(fn, o, []value.Value{value.NewString(h)})
		}
	}
	methods := []string{"valueOf", "toString"}
	if hint == "string" {
		methods = []string{"toString", "valueOf"}
	}
	for _, name := range methods {
		m, err := o.Get(value.StringKey(name))
		if err != nil {
			continue
		}
		fn, ok := m.(*value.Object)
		if !ok || !fn.IsCallable() {
			continue
		}
		res, err := fn.Internal.Call(fn, o, nil)
		if err != nil {
			return nil, err
		}
		if _, isObj := res.(*value.Object); !isObj {
			return res, nil
		}
	}
	return nil, &value.EngineError{Kind: "TypeError", Msg: "Cannot convert object to primitive value"}
}

// toNumber implements ToNumber.
func (vm *VM) toNumber(v value.Value) (value.Value, error) {
	switch n := v.(type) {
	case value.Undefined:
		return value.NumberFromFloat(math.NaN()), nil
	case value.Null:
		return value.Int32(0), nil
	case value.Boolean:
		if n {
			return value.Int32(1), nil
		}
		return value.Int32(0), nil
	case value.Int32, value.Float64:
		return v, nil
	case *value.BigInt:
		return nil, &value.EngineError{Kind: "TypeError", Msg: "Cannot convert a BigInt to a number"}
	case *value.Str:
		return value.NumberFromFloat(parseNumericString(n.DisplayString())), nil
	case *value.Object:
		prim, err := vm.toPrimitive(n, "number")
		if err != nil {
			return nil, err
		}
		if _, ok := prim.(*value.Object); ok {
			return value.NumberFromFloat(math.NaN()), nil
		}
		return vm.toNumber(prim)
	}
	return value.NumberFromFloat(math.NaN()), nil
}

func parseNumericString(s string) float64 {
	t := trimSpace(s)
	if t == "" {
		return 0
	}
	f, ok := parseFloatStrict(t)
	if !ok {
		return math.NaN()
	}
	return f
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isJSSpace(s[start]) {
		start++
	}
	for end > start && isJSSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isJSSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func parseFloatStrict(s string) (float64, bool) {
	if s == "Infinity" || s == "+Infinity" {
		return math.Inf(1), true
	}
	if s == "-Infinity" {
		return math.Inf(-1), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// toStr implements ToString for the VM's own use (string concatenation,
// property-key coercion); symbols throw, matching the specification's
// ToString(symbol) exception rather than DisplayString's debug-only
// rendering.
func (vm *VM) toStr(v value.Value) (*value.Str, error) {
	switch n := v.(type) {
	case value.Undefined:
		return value.NewString("undefined"), nil
	case value.Null:
		return value.NewString("null"), nil
	case value.Boolean:
		return value.NewString(n.DisplayString()), nil
	case value.Int32, value.Float64:
		return value.NewString(n.DisplayString()), nil
	case *value.BigInt:
		return value.NewString(n.DisplayString()), nil
	case *value.Str:
		return n, nil
	case *value.Sym:
		return nil, &value.EngineError{Kind: "TypeError", Msg: "Cannot convert a Symbol value to a string"}
	case *value.Object:
		prim, err := vm.toPrimitive(n, "string")
		if err != nil {
			return nil, err
		}
		if _, ok := prim.(*value.Object); ok {
			return value.NewString("[object Object]"), nil
		}
		return vm.toStr(prim)
	}
	return value.NewString(""), nil
}

func (vm *VM) toPropertyKey(v value.Value) (value.PropertyKey, error) {
	if s, ok := v.(*value.Sym); ok {
		return value.SymbolKey(s), nil
	}
	str, err := vm.toStr(v)
	if err != nil {
		return value.PropertyKey{}, err
	}
	return value.StringKey(str.DisplayString()), nil
}

// add implements the `+` operator's full ToPrimitive-then-branch algorithm
// (string concatenation if either primitive is a string, numeric add
// otherwise, with BigInt requiring both operands to be BigInt).
func (vm *VM) add(a, b value.Value) (value.Value, error) {
	pa, err := vm.toPrimitive(a, "")
	if err != nil {
		return nil, err
	}
	pb, err := vm.toPrimitive(b, "")
	if err != nil {
		return nil, err
	}
	if _, ok := pa.(*value.Str); ok {
		return vm.concatStrings(pa, pb)
	}
	if _, ok := pb.(*value.Str); ok {
		return vm.concatStrings(pa, pb)
	}
	ba, aBig := pa.(*value.BigInt)
	bb, bBig := pb.(*value.BigInt)
	if aBig || bBig {
		if !aBig || !bBig {
			return nil, &value.EngineError{Kind: "TypeError", Msg: "Cannot mix BigInt and other types"}
		}
		return value.BigIntAdd(ba, bb), nil
	}
	na, err := vm.toNumber(pa)
	if err != nil {
		return nil, err
	}
	nb, err := vm.toNumber(pb)
	if err != nil {
		return nil, err
	}
	return value.NumberFromFloat(value.ToFloat64(na) + value.ToFloat64(nb)), nil
}

func (vm *VM) concatStrings(a, b value.Value) (value.Value, error) {
	sa, err := vm.toStr(a)
	if err != nil {
		return nil, err
	}
	sb, err := vm.toStr(b)
	if err != nil {
		return nil, err
	}
	return value.Concat(sa, sb), nil
}

// numericBinOp implements the shared ToNumeric-then-dispatch algorithm for
// `-`, `*`, `/`, `%`, `**`, and the bitwise/shift operators: both operands
// coerce to BigInt (both must agree) or both to Number.
func (vm *VM) numericBinOp(a, b value.Value, numOp func(x, y float64) float64, bigOp func(x, y *value.BigInt) (*value.BigInt, error)) (value.Value, error) {
	pa, err := vm.toPrimitive(a, "number")
	if err != nil {
		return nil, err
	}
	pb, err := vm.toPrimitive(b, "number")
	if err != nil {
		return nil, err
	}
	ba, aBig := pa.(*value.BigInt)
	bb, bBig := pb.(*value.BigInt)
	if aBig || bBig {
		if !aBig || !bBig || bigOp == nil {
			return nil, &value.EngineError{Kind: "TypeError", Msg: "Cannot mix BigInt and other types"}
		}
		return bigOp(ba, bb)
	}
	na, err := vm.toNumber(pa)
	if err != nil {
		return nil, err
	}
	nb, err := vm.toNumber(pb)
	if err != nil {
		return nil, err
	}
	return value.NumberFromFloat(numOp(value.ToFloat64(na), value.ToFloat64(nb))), nil
}

func divBigInt(x, y *value.BigInt) (*value.BigInt, error) {
	if y.Sign() == 0 {
		return nil, &value.EngineError{Kind: "RangeError", Msg: "Division by zero"}
	}
	return value.BigIntDiv(x, y), nil
}

func modBigInt(x, y *value.BigInt) (*value.BigInt, error) {
	if y.Sign() == 0 {
		return nil, &value.EngineError{Kind: "RangeError", Msg: "Division by zero"}
	}
	return value.BigIntMod(x, y), nil
}

func jsMod(a, b float64) float64 { return math.Mod(a, b) }

// toInt32/toUint32 implement the bitwise-operator coercions.
func (vm *VM) toInt32(v value.Value) (int32, error) {
	n, err := vm.toNumber(v)
	if err != nil {
		return 0, err
	}
	f := value.ToFloat64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, nil
	}
	return int32(uint32(int64(f))), nil
}

func (vm *VM) toUint32(v value.Value) (uint32, error) {
	n, err := vm.toNumber(v)
	if err != nil {
		return 0, err
	}
	f := value.ToFloat64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, nil
	}
	return uint32(int64(f)), nil
}

// looseEquals implements the `==` abstract equality comparison algorithm.
func (vm *VM) looseEquals(a, b value.Value) (bool, error) {
	if sameKindFamily(a, b) {
		return vm.strictEquals(a, b), nil
	}
	switch {
	case isNullish(a) && isNullish(b):
		return true, nil
	case isNullish(a) || isNullish(b):
		return false, nil
	}
	an, aIsNum := isNumeric(a)
	bn, bIsNum := isNumeric(b)
	_ = an
	_ = bn
	if aIsNum && bIsNum {
		return vm.numericEquals(a, b)
	}
	if _, ok := a.(*value.Str); ok && bIsNum {
		na, err := vm.toNumber(a)
		if err != nil {
			return false, err
		}
		return vm.numericEquals(na, b)
	}
	if _, ok := b.(*value.Str); ok && aIsNum {
		nb, err := vm.toNumber(b)
		if err != nil {
			return false, err
		}
		return vm.numericEquals(a, nb)
	}
	if _, ok := a.(value.Boolean); ok {
		na, err := vm.toNumber(a)
		if err != nil {
			return false, err
		}
		return vm.looseEquals(na, b)
	}
	if _, ok := b.(value.Boolean); ok {
		nb, err := vm.toNumber(b)
		if err != nil {
			return false, err
		}
		return vm.looseEquals(a, nb)
	}
	if _, ok := a.(*value.Object); ok {
		if !isObjectLike(b) {
			pa, err := vm.toPrimitive(a, "")
			if err != nil {
				return false, err
			}
			return vm.looseEquals(pa, b)
		}
	}
	if _, ok := b.(*value.Object); ok {
		if !isObjectLike(a) {
			pb, err := vm.toPrimitive(b, "")
			if err != nil {
				return false, err
			}
			return vm.looseEquals(a, pb)
		}
	}
	return false, nil
}

func isObjectLike(v value.Value) bool {
	_, ok := v.(*value.Object)
	return ok
}

func isNumeric(v value.Value) (value.Value, bool) {
	switch v.(type) {
	case value.Int32, value.Float64, *value.BigInt:
		return v, true
	}
	return nil, false
}

func (vm *VM) numericEquals(a, b value.Value) (bool, error) {
	ba, aBig := a.(*value.BigInt)
	bb, bBig := b.(*value.BigInt)
	switch {
	case aBig && bBig:
		return value.BigIntEqual(ba, bb), nil
	case aBig && !bBig:
		return value.BigIntEqualsFloat(ba, value.ToFloat64(b)), nil
	case !aBig && bBig:
		return value.BigIntEqualsFloat(bb, value.ToFloat64(a)), nil
	default:
		return value.ToFloat64(a) == value.ToFloat64(b), nil
	}
}

func sameKindFamily(a, b value.Value) bool {
	_, aNum := isNumeric(a)
	_, bNum := isNumeric(b)
	if aNum && bNum {
		_, aBig := a.(*value.BigInt)
		_, bBig := b.(*value.BigInt)
		return aBig == bBig
	}
	return a.Kind() == b.Kind()
}

// strictEquals implements `===`.
func (vm *VM) strictEquals(a, b value.Value) bool {
	_, aNum := isNumeric(a)
	_, bNum := isNumeric(b)
	numericPair := aNum && bNum
	if a.Kind() != b.Kind() && !numericPair {
		return false
	}
	switch av := a.(type) {
	case value.Undefined, value.Null:
		return true
	case value.Boolean:
		return av == b.(value.Boolean)
	case value.Int32:
		switch bv := b.(type) {
		case value.Int32:
			return av == bv
		case value.Float64:
			return float64(av) == float64(bv)
		}
		return false
	case value.Float64:
		switch bv := b.(type) {
		case value.Int32:
			return float64(av) == float64(bv)
		case value.Float64:
			return float64(av) == float64(bv)
		}
		return false
	case *value.BigInt:
		bv, ok := b.(*value.BigInt)
		return ok && value.BigIntEqual(av, bv)
	case *value.Str:
		bv, ok := b.(*value.Str)
		return ok && av.Equal(bv)
	case *value.Sym:
		return av == b.(*value.Sym)
	case *value.Object:
		return av == b.(*value.Object)
	}
	return false
}

// relational implements `<`/`<=`/`>`/`>=` via the AbstractRelationalComparison
// algorithm: both operands ToPrimitive'd with a "number" hint, string-vs-
// string gets a code-unit compare, everything else numeric. result is
// a < b; defined is false when the answer is "undefined" (NaN involved).
func (vm *VM) relational(a, b value.Value, leftFirst bool) (result bool, defined bool, err error) {
	var pa, pb value.Value
	if leftFirst {
		if pa, err = vm.toPrimitive(a, "number"); err != nil {
			return
		}
		if pb, err = vm.toPrimitive(b, "number"); err != nil {
			return
		}
	} else {
		if pb, err = vm.toPrimitive(b, "number"); err != nil {
			return
		}
		if pa, err = vm.toPrimitive(a, "number"); err != nil {
			return
		}
	}
	sa, aStr := pa.(*value.Str)
	sb, bStr := pb.(*value.Str)
	if aStr && bStr {
		return sa.Less(sb), true, nil
	}
	ba, aBig := pa.(*value.BigInt)
	bb, bBig := pb.(*value.BigInt)
	if aBig && bBig {
		return value.BigIntCompare(ba, bb) < 0, true, nil
	}
	na, nerr := vm.toNumber(pa)
	if nerr != nil {
		err = nerr
		return
	}
	nb, nerr := vm.toNumber(pb)
	if nerr != nil {
		err = nerr
		return
	}
	fa, fb := value.ToFloat64(na), value.ToFloat64(nb)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return false, false, nil
	}
	return fa < fb, true, nil
}

func (vm *VM) instanceOf(v value.Value, ctor value.Value) (bool, error) {
	co, ok := ctor.(*value.Object)
	if !ok || !co.IsCallable() {
		return false, &value.EngineError{Kind: "TypeError", Msg: "Right-hand side of 'instanceof' is not callable"}
	}
	if hasInstance, err := co.Get(value.SymbolKey(value.WellKnownSymbol(value.SymHasInstance))); err == nil {
		if fn, ok := hasInstance.(*value.Object); ok && fn.IsCallable() {
			res, err := fn.Internal.Call(fn, co, []value.Value{v})
			if err != nil {
				return false, err
			}
			return value.ToBoolean(res), nil
		}
	}
	obj, ok := v.(*value.Object)
	if !ok {
		return false, nil
	}
	protoVal, err := co.Get(value.StringKey("prototype"))
	if err != nil {
		return false, err
	}
	proto, ok := protoVal.(*value.Object)
	if !ok {
		return false, &value.EngineError{Kind: "TypeError", Msg: "Function has non-object prototype in instanceof check"}
	}
	for cur := obj.Proto(); cur != nil; cur = cur.Proto() {
		if cur == proto {
			return true, nil
		}
	}
	return false, nil
}

func (vm *VM) in(key value.Value, obj value.Value) (bool, error) {
	o, ok := obj.(*value.Object)
	if !ok {
		return false, &value.EngineError{Kind: "TypeError", Msg: "Cannot use 'in' operator on a non-object"}
	}
	pk, err := vm.toPropertyKey(key)
	if err != nil {
		return false, err
	}
	return o.HasProp(pk), nil
}
