// Package host layers the default JavaScript standard library onto an
// already-built vm.Realm: Math, JSON, and the Object/Array/String/Number
// prototype surfaces script expects to find at startup. internal/vm itself
// only wires the bindings the engine's own opcodes depend on being
// reachable (the bare constructors, §9's Promise primitives); everything
// a script calls by name but the VM never calls internally belongs here,
// grounded the way the teacher's internal/builtins package separates
// "language built-ins the interpreter needs" from the rest of its runtime
// library.
package host

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/text/unicode/norm"

	"github.com/cwbudde/ecma/internal/value"
	"github.com/cwbudde/ecma/internal/vm"
)

// Install populates r's intrinsic prototypes and global object with the
// default standard library. Callers that want a restricted environment
// (no JSON, no Math.random, ...) should build a smaller realm directly
// against internal/vm instead of calling Install.
func Install(r *vm.Realm) {
	installMath(r)
	installJSON(r)
	installObjectStatics(r)
	installArrayProto(r)
	installStringProto(r)
	installNumberStatics(r)
	installFunctionToString(r)
	installDebug(r)
}

func defineData(o *value.Object, name string, v value.Value) {
	o.Internal.DefineOwnProperty(o, value.StringKey(name), value.NewDataDescriptor(v, value.Sealed()))
}

func defineMethod(o *value.Object, name string, length int, impl value.NativeImpl) *value.Object {
	fn := value.NewNativeFunction(nil, name, length, impl)
	o.Internal.DefineOwnProperty(o, value.StringKey(name), value.NewDataDescriptor(fn, value.Sealed()))
	return fn
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.U
}

func asStr(v value.Value) string {
	if s, ok := v.(*value.Str); ok {
		return s.DisplayString()
	}
	return value.Fmt(v)
}

func asObject(v value.Value) (*value.Object, bool) {
	o, ok := v.(*value.Object)
	return o, ok
}

func callFn(fn value.Value, this value.Value, args []value.Value) (value.Value, error) {
	o, ok := fn.(*value.Object)
	if !ok || !o.IsCallable() {
		return nil, &value.EngineError{Kind: "TypeError", Msg: "callback is not a function"}
	}
	return o.Internal.Call(o, this, args)
}

func arrayLen(o *value.Object) int {
	lv, err := o.Get(value.StringKey("length"))
	if err != nil {
		return 0
	}
	return int(value.ToFloat64(lv))
}

func arrayGetIdx(o *value.Object, i int) value.Value {
	v, err := o.Get(value.StringKey(strconv.Itoa(i)))
	if err != nil || v == nil {
		return value.U
	}
	return v
}

func arraySetIdx(o *value.Object, i int, v value.Value) {
	_, _ = o.SetProp(value.StringKey(strconv.Itoa(i)), v)
}

// valuesStrictEqual is a host-local restatement of `===` for the handful
// of Array.prototype methods (indexOf, includes) that need it; the VM's
// own strictEquals lives unexported on internal/vm.VM, so this mirrors
// its numeric/string/object-identity cases rather than importing it.
func valuesStrictEqual(a, b value.Value) bool {
	switch av := a.(type) {
	case value.Undefined:
		_, ok := b.(value.Undefined)
		return ok
	case value.Null:
		_, ok := b.(value.Null)
		return ok
	case value.Boolean:
		bv, ok := b.(value.Boolean)
		return ok && av == bv
	case *value.Str:
		bv, ok := b.(*value.Str)
		return ok && av.Equal(bv)
	case *value.Object:
		bv, ok := b.(*value.Object)
		return ok && av == bv
	default:
		if value.IsNumber(a) && value.IsNumber(b) {
			return value.ToFloat64(a) == value.ToFloat64(b)
		}
		return false
	}
}

func arrayToSlice(o *value.Object) []value.Value {
	n := arrayLen(o)
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		out[i] = arrayGetIdx(o, i)
	}
	return out
}

// --- Math ---------------------------------------------------------------

func installMath(r *vm.Realm) {
	m := value.NewObject(r.ObjectProto)
	defineData(m, "PI", value.NumberFromFloat(math.Pi))
	defineData(m, "E", value.NumberFromFloat(math.E))
	defineData(m, "LN2", value.NumberFromFloat(math.Ln2))
	defineData(m, "LN10", value.NumberFromFloat(math.Log(10)))
	defineData(m, "SQRT2", value.NumberFromFloat(math.Sqrt2))

	unary := func(f func(float64) float64) value.NativeImpl {
		return func(this value.Value, args []value.Value) (value.Value, error) {
			return value.NumberFromFloat(f(value.ToFloat64(arg(args, 0)))), nil
		}
	}
	defineMethod(m, "abs", 1, unary(math.Abs))
	defineMethod(m, "floor", 1, unary(math.Floor))
	defineMethod(m, "ceil", 1, unary(math.Ceil))
	defineMethod(m, "trunc", 1, unary(math.Trunc))
	defineMethod(m, "sqrt", 1, unary(math.Sqrt))
	defineMethod(m, "cbrt", 1, unary(math.Cbrt))
	defineMethod(m, "sin", 1, unary(math.Sin))
	defineMethod(m, "cos", 1, unary(math.Cos))
	defineMethod(m, "tan", 1, unary(math.Tan))
	defineMethod(m, "log", 1, unary(math.Log))
	defineMethod(m, "log2", 1, unary(math.Log2))
	defineMethod(m, "log10", 1, unary(math.Log10))
	defineMethod(m, "exp", 1, unary(math.Exp))
	defineMethod(m, "sign", 1, unary(func(f float64) float64 {
		switch {
		case f > 0:
			return 1
		case f < 0:
			return -1
		default:
			return f
		}
	}))
	defineMethod(m, "round", 1, unary(func(f float64) float64 { return math.Floor(f + 0.5) }))
	defineMethod(m, "random", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NumberFromFloat(deterministicRandom()), nil
	})
	defineMethod(m, "pow", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NumberFromFloat(math.Pow(value.ToFloat64(arg(args, 0)), value.ToFloat64(arg(args, 1)))), nil
	})
	defineMethod(m, "atan2", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NumberFromFloat(math.Atan2(value.ToFloat64(arg(args, 0)), value.ToFloat64(arg(args, 1)))), nil
	})
	defineMethod(m, "max", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.NumberFromFloat(math.Inf(-1)), nil
		}
		best := value.ToFloat64(args[0])
		for _, a := range args[1:] {
			if f := value.ToFloat64(a); f > best || math.IsNaN(f) {
				best = f
			}
		}
		return value.NumberFromFloat(best), nil
	})
	defineMethod(m, "min", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.NumberFromFloat(math.Inf(1)), nil
		}
		best := value.ToFloat64(args[0])
		for _, a := range args[1:] {
			if f := value.ToFloat64(a); f < best || math.IsNaN(f) {
				best = f
			}
		}
		return value.NumberFromFloat(best), nil
	})
	r.GlobalObject.Internal.DefineOwnProperty(r.GlobalObject, value.StringKey("Math"), value.NewDataDescriptor(m, value.Sealed()))
}

// deterministicRandom backs Math.random with a fixed-seed LCG, so every
// process produces the same sequence; pkg/ecma has no option or hook to
// seed it. Using math/rand's global source here would make script output
// depend on process-global state no caller asked to share.
var randState uint64 = 0x2545F4914F6CDD1D

func deterministicRandom() float64 {
	randState = randState*6364136223846793005 + 1442695040888963407
	return float64(randState>>11) / float64(1<<53)
}

// --- JSON -----------------------------------------------------------------

func installJSON(r *vm.Realm) {
	j := value.NewObject(r.ObjectProto)
	defineMethod(j, "stringify", 3, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := jsonStringify(arg(args, 0))
		if err != nil {
			return nil, err
		}
		return value.NewString(s), nil
	})
	defineMethod(j, "parse", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		text := asStr(arg(args, 0))
		if !gjson.Valid(text) {
			return nil, &value.EngineError{Kind: "SyntaxError", Msg: "Unexpected token in JSON"}
		}
		return jsonToValue(r, gjson.Parse(text)), nil
	})
	r.GlobalObject.Internal.DefineOwnProperty(r.GlobalObject, value.StringKey("JSON"), value.NewDataDescriptor(j, value.Sealed()))
}

// jsonStringify walks v and builds a JSON document with sjson, one Set
// call per leaf, matching sjson's own "build by path" API rather than a
// hand-rolled string builder.
func jsonStringify(v value.Value) (string, error) {
	doc, err := jsonStringifyInto("", v)
	if err != nil {
		return "", err
	}
	if doc == "" {
		return "null", nil
	}
	return doc, nil
}

func jsonStringifyInto(doc string, v value.Value) (string, error) {
	switch t := v.(type) {
	case nil, value.Undefined:
		return "", nil
	case value.Null:
		return sjson.Set(orEmptyObject(doc), "", nil)
	case value.Boolean:
		return sjson.Set(orEmptyObject(doc), "", bool(t))
	case *value.Str:
		return sjson.Set(orEmptyObject(doc), "", t.DisplayString())
	case *value.Object:
		if t.Class() == value.KindArray {
			arr := "[]"
			n := arrayLen(t)
			for i := 0; i < n; i++ {
				elemDoc, err := jsonStringifyInto("", arrayGetIdx(t, i))
				if err != nil {
					return "", err
				}
				var raw interface{}
				if elemDoc == "" {
					raw = nil
				} else {
					raw = gjson.Parse(elemDoc).Value()
				}
				arr, err = sjson.Set(arr, strconv.Itoa(i), raw)
				if err != nil {
					return "", err
				}
			}
			return arr, nil
		}
		obj := "{}"
		for _, key := range t.OwnKeys() {
			if key.IsSymbol() {
				continue
			}
			name := key.Str.DisplayString()
			fv, err := t.Get(key)
			if err != nil {
				continue
			}
			elemDoc, err := jsonStringifyInto("", fv)
			if err != nil {
				return "", err
			}
			if elemDoc == "" {
				continue
			}
			var raw interface{}
			raw = gjson.Parse(elemDoc).Value()
			obj, err = sjson.Set(obj, name, raw)
			if err != nil {
				return "", err
			}
		}
		return obj, nil
	default:
		return sjson.Set(orEmptyObject(doc), "", value.ToFloat64(v))
	}
}

func orEmptyObject(doc string) string {
	if doc == "" {
		return "{}"
	}
	return doc
}

func jsonToValue(r *vm.Realm, res gjson.Result) value.Value {
	switch res.Type {
	case gjson.Null:
		return value.Null{}
	case gjson.False:
		return value.Boolean(false)
	case gjson.True:
		return value.Boolean(true)
	case gjson.Number:
		return value.NumberFromFloat(res.Float())
	case gjson.String:
		return value.NewString(res.String())
	case gjson.JSON:
		if res.IsArray() {
			var elems []value.Value
			res.ForEach(func(_, v gjson.Result) bool {
				elems = append(elems, jsonToValue(r, v))
				return true
			})
			return value.NewArray(r.ArrayProto, elems)
		}
		o := value.NewObject(r.ObjectProto)
		res.ForEach(func(k, v gjson.Result) bool {
			defineData(o, k.String(), jsonToValue(r, v))
			return true
		})
		return o
	default:
		return value.U
	}
}

// --- Object statics ---------------------------------------------------------

func installObjectStatics(r *vm.Realm) {
	ctorV, _ := r.GlobalObject.Get(value.StringKey("Object"))
	ctor, ok := ctorV.(*value.Object)
	if !ok {
		return
	}
	defineMethod(ctor, "keys", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(arg(args, 0))
		if !ok {
			return value.NewArray(r.ArrayProto, nil), nil
		}
		var keys []value.Value
		for _, k := range o.OwnKeys() {
			if k.IsSymbol() {
				continue
			}
			keys = append(keys, value.NewString(k.Str.DisplayString()))
		}
		return value.NewArray(r.ArrayProto, keys), nil
	})
	defineMethod(ctor, "values", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(arg(args, 0))
		if !ok {
			return value.NewArray(r.ArrayProto, nil), nil
		}
		var vals []value.Value
		for _, k := range o.OwnKeys() {
			if k.IsSymbol() {
				continue
			}
			v, _ := o.Get(k)
			vals = append(vals, v)
		}
		return value.NewArray(r.ArrayProto, vals), nil
	})
	defineMethod(ctor, "entries", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(arg(args, 0))
		if !ok {
			return value.NewArray(r.ArrayProto, nil), nil
		}
		var entries []value.Value
		for _, k := range o.OwnKeys() {
			if k.IsSymbol() {
				continue
			}
			v, _ := o.Get(k)
			entries = append(entries, value.NewArray(r.ArrayProto, []value.Value{value.NewString(k.Str.DisplayString()), v}))
		}
		return value.NewArray(r.ArrayProto, entries), nil
	})
	defineMethod(ctor, "assign", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		target, ok := asObject(arg(args, 0))
		if !ok {
			return nil, &value.EngineError{Kind: "TypeError", Msg: "Object.assign target must be an object"}
		}
		for _, src := range args[1:] {
			so, ok := asObject(src)
			if !ok {
				continue
			}
			for _, k := range so.OwnKeys() {
				if k.IsSymbol() {
					continue
				}
				v, _ := so.Get(k)
				_, _ = target.SetProp(k, v)
			}
		}
		return target, nil
	})
	defineMethod(ctor, "freeze", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if o, ok := asObject(arg(args, 0)); ok {
			o.Internal.PreventExtensions(o)
		}
		return arg(args, 0), nil
	})
	defineMethod(ctor, "isFrozen", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(arg(args, 0))
		if !ok {
			return value.Boolean(true), nil
		}
		return value.Boolean(!o.Internal.IsExtensible(o)), nil
	})
	defineMethod(ctor, "getPrototypeOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(arg(args, 0))
		if !ok {
			return value.Null{}, nil
		}
		p := o.Proto()
		if p == nil {
			return value.Null{}, nil
		}
		return p, nil
	})
	defineMethod(ctor, "create", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		var proto *value.Object
		if p, ok := asObject(arg(args, 0)); ok {
			proto = p
		}
		return value.NewObject(proto), nil
	})
}

// --- Array.prototype ---------------------------------------------------

func installArrayProto(r *vm.Realm) {
	p := r.ArrayProto
	defineMethod(p, "push", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.U, nil
		}
		n := arrayLen(o)
		for i, a := range args {
			arraySetIdx(o, n+i, a)
		}
		newLen := value.NumberFromFloat(float64(n + len(args)))
		_, _ = o.SetProp(value.StringKey("length"), newLen)
		return newLen, nil
	})
	defineMethod(p, "pop", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.U, nil
		}
		n := arrayLen(o)
		if n == 0 {
			return value.U, nil
		}
		v := arrayGetIdx(o, n-1)
		_, _ = o.SetProp(value.StringKey("length"), value.NumberFromFloat(float64(n-1)))
		return v, nil
	})
	defineMethod(p, "shift", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.U, nil
		}
		n := arrayLen(o)
		if n == 0 {
			return value.U, nil
		}
		first := arrayGetIdx(o, 0)
		for i := 1; i < n; i++ {
			arraySetIdx(o, i-1, arrayGetIdx(o, i))
		}
		_, _ = o.SetProp(value.StringKey("length"), value.NumberFromFloat(float64(n-1)))
		return first, nil
	})
	defineMethod(p, "unshift", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.U, nil
		}
		n := arrayLen(o)
		shift := len(args)
		for i := n - 1; i >= 0; i-- {
			arraySetIdx(o, i+shift, arrayGetIdx(o, i))
		}
		for i, a := range args {
			arraySetIdx(o, i, a)
		}
		newLen := value.NumberFromFloat(float64(n + shift))
		_, _ = o.SetProp(value.StringKey("length"), newLen)
		return newLen, nil
	})
	defineMethod(p, "slice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.NewArray(r.ArrayProto, nil), nil
		}
		elems := arrayToSlice(o)
		start, end := sliceBounds(len(elems), args)
		if start > end {
			start = end
		}
		return value.NewArray(r.ArrayProto, append([]value.Value{}, elems[start:end]...)), nil
	})
	defineMethod(p, "splice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.NewArray(r.ArrayProto, nil), nil
		}
		elems := arrayToSlice(o)
		n := len(elems)
		start := normalizeIndex(int(value.ToFloat64(arg(args, 0))), n)
		deleteCount := n - start
		if len(args) > 1 {
			dc := int(value.ToFloat64(args[1]))
			if dc < 0 {
				dc = 0
			}
			if dc > n-start {
				dc = n - start
			}
			deleteCount = dc
		}
		removed := append([]value.Value{}, elems[start:start+deleteCount]...)
		var inserted []value.Value
		if len(args) > 2 {
			inserted = args[2:]
		}
		next := append([]value.Value{}, elems[:start]...)
		next = append(next, inserted...)
		next = append(next, elems[start+deleteCount:]...)
		writeArrayBack(o, next)
		return value.NewArray(r.ArrayProto, removed), nil
	})
	defineMethod(p, "concat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.NewArray(r.ArrayProto, nil), nil
		}
		out := arrayToSlice(o)
		for _, a := range args {
			if ao, ok := asObject(a); ok && ao.Class() == value.KindArray {
				out = append(out, arrayToSlice(ao)...)
			} else {
				out = append(out, a)
			}
		}
		return value.NewArray(r.ArrayProto, out), nil
	})
	defineMethod(p, "join", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.NewString(""), nil
		}
		sep := ","
		if len(args) > 0 && args[0].Kind() != value.KindUndefined {
			sep = asStr(args[0])
		}
		elems := arrayToSlice(o)
		parts := make([]string, len(elems))
		for i, e := range elems {
			if e == nil || e.Kind() == value.KindUndefined || e.Kind() == value.KindNull {
				parts[i] = ""
			} else {
				parts[i] = asStr(e)
			}
		}
		return value.NewString(strings.Join(parts, sep)), nil
	})
	defineMethod(p, "reverse", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return this, nil
		}
		elems := arrayToSlice(o)
		for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
			elems[i], elems[j] = elems[j], elems[i]
		}
		writeArrayBack(o, elems)
		return o, nil
	})
	defineMethod(p, "indexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.NumberFromFloat(-1), nil
		}
		target := arg(args, 0)
		for i, e := range arrayToSlice(o) {
			if valuesStrictEqual(e, target) {
				return value.NumberFromFloat(float64(i)), nil
			}
		}
		return value.NumberFromFloat(-1), nil
	})
	defineMethod(p, "includes", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.Boolean(false), nil
		}
		target := arg(args, 0)
		for _, e := range arrayToSlice(o) {
			if valuesStrictEqual(e, target) {
				return value.Boolean(true), nil
			}
		}
		return value.Boolean(false), nil
	})
	defineMethod(p, "forEach", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.U, nil
		}
		cb := arg(args, 0)
		for i, e := range arrayToSlice(o) {
			if _, err := callFn(cb, value.U, []value.Value{e, value.NumberFromFloat(float64(i)), o}); err != nil {
				return nil, err
			}
		}
		return value.U, nil
	})
	defineMethod(p, "map", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.NewArray(r.ArrayProto, nil), nil
		}
		cb := arg(args, 0)
		src := arrayToSlice(o)
		out := make([]value.Value, len(src))
		for i, e := range src {
			v, err := callFn(cb, value.U, []value.Value{e, value.NumberFromFloat(float64(i)), o})
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return value.NewArray(r.ArrayProto, out), nil
	})
	defineMethod(p, "filter", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.NewArray(r.ArrayProto, nil), nil
		}
		cb := arg(args, 0)
		var out []value.Value
		for i, e := range arrayToSlice(o) {
			v, err := callFn(cb, value.U, []value.Value{e, value.NumberFromFloat(float64(i)), o})
			if err != nil {
				return nil, err
			}
			if value.ToBoolean(v) {
				out = append(out, e)
			}
		}
		return value.NewArray(r.ArrayProto, out), nil
	})
	defineMethod(p, "find", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.U, nil
		}
		cb := arg(args, 0)
		for i, e := range arrayToSlice(o) {
			v, err := callFn(cb, value.U, []value.Value{e, value.NumberFromFloat(float64(i)), o})
			if err != nil {
				return nil, err
			}
			if value.ToBoolean(v) {
				return e, nil
			}
		}
		return value.U, nil
	})
	defineMethod(p, "findIndex", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.NumberFromFloat(-1), nil
		}
		cb := arg(args, 0)
		for i, e := range arrayToSlice(o) {
			v, err := callFn(cb, value.U, []value.Value{e, value.NumberFromFloat(float64(i)), o})
			if err != nil {
				return nil, err
			}
			if value.ToBoolean(v) {
				return value.NumberFromFloat(float64(i)), nil
			}
		}
		return value.NumberFromFloat(-1), nil
	})
	defineMethod(p, "some", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.Boolean(false), nil
		}
		cb := arg(args, 0)
		for i, e := range arrayToSlice(o) {
			v, err := callFn(cb, value.U, []value.Value{e, value.NumberFromFloat(float64(i)), o})
			if err != nil {
				return nil, err
			}
			if value.ToBoolean(v) {
				return value.Boolean(true), nil
			}
		}
		return value.Boolean(false), nil
	})
	defineMethod(p, "every", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.Boolean(true), nil
		}
		cb := arg(args, 0)
		for i, e := range arrayToSlice(o) {
			v, err := callFn(cb, value.U, []value.Value{e, value.NumberFromFloat(float64(i)), o})
			if err != nil {
				return nil, err
			}
			if !value.ToBoolean(v) {
				return value.Boolean(false), nil
			}
		}
		return value.Boolean(true), nil
	})
	defineMethod(p, "reduce", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.U, nil
		}
		cb := arg(args, 0)
		elems := arrayToSlice(o)
		i := 0
		var acc value.Value
		if len(args) > 1 {
			acc = args[1]
		} else {
			if len(elems) == 0 {
				return nil, &value.EngineError{Kind: "TypeError", Msg: "Reduce of empty array with no initial value"}
			}
			acc = elems[0]
			i = 1
		}
		for ; i < len(elems); i++ {
			v, err := callFn(cb, value.U, []value.Value{acc, elems[i], value.NumberFromFloat(float64(i)), o})
			if err != nil {
				return nil, err
			}
			acc = v
		}
		return acc, nil
	})
	defineMethod(p, "flat", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return value.NewArray(r.ArrayProto, nil), nil
		}
		depth := 1
		if len(args) > 0 {
			depth = int(value.ToFloat64(args[0]))
		}
		return value.NewArray(r.ArrayProto, flatten(arrayToSlice(o), depth)), nil
	})
	defineMethod(p, "sort", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok {
			return this, nil
		}
		elems := arrayToSlice(o)
		cb, hasCb := asObject(arg(args, 0))
		var sortErr error
		sort.SliceStable(elems, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			if hasCb && cb.IsCallable() {
				res, err := cb.Internal.Call(cb, value.U, []value.Value{elems[i], elems[j]})
				if err != nil {
					sortErr = err
					return false
				}
				return value.ToFloat64(res) < 0
			}
			return asStr(elems[i]) < asStr(elems[j])
		})
		if sortErr != nil {
			return nil, sortErr
		}
		writeArrayBack(o, elems)
		return o, nil
	})
}

func flatten(elems []value.Value, depth int) []value.Value {
	if depth <= 0 {
		return elems
	}
	var out []value.Value
	for _, e := range elems {
		if o, ok := asObject(e); ok && o.Class() == value.KindArray {
			out = append(out, flatten(arrayToSlice(o), depth-1)...)
		} else {
			out = append(out, e)
		}
	}
	return out
}

func writeArrayBack(o *value.Object, elems []value.Value) {
	for i, e := range elems {
		arraySetIdx(o, i, e)
	}
	_, _ = o.SetProp(value.StringKey("length"), value.NumberFromFloat(float64(len(elems))))
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	return i
}

func sliceBounds(n int, args []value.Value) (int, int) {
	start, end := 0, n
	if len(args) > 0 && args[0].Kind() != value.KindUndefined {
		start = normalizeIndex(int(value.ToFloat64(args[0])), n)
	}
	if len(args) > 1 && args[1].Kind() != value.KindUndefined {
		end = normalizeIndex(int(value.ToFloat64(args[1])), n)
	}
	return start, end
}

// --- String.prototype ---------------------------------------------------

func installStringProto(r *vm.Realm) {
	p := r.StringProto
	defineMethod(p, "charAt", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s := asStr(this)
		i := int(value.ToFloat64(arg(args, 0)))
		runes := []rune(s)
		if i < 0 || i >= len(runes) {
			return value.NewString(""), nil
		}
		return value.NewString(string(runes[i])), nil
	})
	defineMethod(p, "indexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, sub := asStr(this), asStr(arg(args, 0))
		return value.NumberFromFloat(float64(strings.Index(s, sub))), nil
	})
	defineMethod(p, "includes", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Boolean(strings.Contains(asStr(this), asStr(arg(args, 0)))), nil
	})
	defineMethod(p, "slice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		runes := []rune(asStr(this))
		start, end := sliceBounds(len(runes), args)
		if start > end {
			start = end
		}
		return value.NewString(string(runes[start:end])), nil
	})
	defineMethod(p, "substring", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		runes := []rune(asStr(this))
		n := len(runes)
		start, end := 0, n
		if len(args) > 0 {
			start = clampInt(int(value.ToFloat64(args[0])), 0, n)
		}
		if len(args) > 1 && args[1].Kind() != value.KindUndefined {
			end = clampInt(int(value.ToFloat64(args[1])), 0, n)
		}
		if start > end {
			start, end = end, start
		}
		return value.NewString(string(runes[start:end])), nil
	})
	defineMethod(p, "toUpperCase", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewString(strings.ToUpper(asStr(this))), nil
	})
	defineMethod(p, "toLowerCase", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewString(strings.ToLower(asStr(this))), nil
	})
	defineMethod(p, "trim", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewString(strings.TrimSpace(asStr(this))), nil
	})
	defineMethod(p, "split", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		s := asStr(this)
		if len(args) == 0 || args[0].Kind() == value.KindUndefined {
			return value.NewArray(r.ArrayProto, []value.Value{value.NewString(s)}), nil
		}
		sep := asStr(args[0])
		var parts []string
		if sep == "" {
			for _, ch := range s {
				parts = append(parts, string(ch))
			}
		} else {
			parts = strings.Split(s, sep)
		}
		out := make([]value.Value, len(parts))
		for i, part := range parts {
			out[i] = value.NewString(part)
		}
		return value.NewArray(r.ArrayProto, out), nil
	})
	defineMethod(p, "replace", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		s := asStr(this)
		return value.NewString(strings.Replace(s, asStr(arg(args, 0)), asStr(arg(args, 1)), 1)), nil
	})
	defineMethod(p, "replaceAll", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		s := asStr(this)
		return value.NewString(strings.ReplaceAll(s, asStr(arg(args, 0)), asStr(arg(args, 1)))), nil
	})
	defineMethod(p, "repeat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n := int(value.ToFloat64(arg(args, 0)))
		if n < 0 {
			return nil, &value.EngineError{Kind: "RangeError", Msg: "Invalid count value"}
		}
		return value.NewString(strings.Repeat(asStr(this), n)), nil
	})
	defineMethod(p, "padStart", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewString(pad(asStr(this), args, true)), nil
	})
	defineMethod(p, "padEnd", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewString(pad(asStr(this), args, false)), nil
	})
	defineMethod(p, "concat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		var b strings.Builder
		b.WriteString(asStr(this))
		for _, a := range args {
			b.WriteString(asStr(a))
		}
		return value.NewString(b.String()), nil
	})
	defineMethod(p, "startsWith", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Boolean(strings.HasPrefix(asStr(this), asStr(arg(args, 0)))), nil
	})
	defineMethod(p, "endsWith", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Boolean(strings.HasSuffix(asStr(this), asStr(arg(args, 0)))), nil
	})
	defineMethod(p, "normalize", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		form := "NFC"
		if len(args) > 0 && args[0].Kind() != value.KindUndefined {
			form = asStr(args[0])
		}
		var f norm.Form
		switch form {
		case "NFC":
			f = norm.NFC
		case "NFD":
			f = norm.NFD
		case "NFKC":
			f = norm.NFKC
		case "NFKD":
			f = norm.NFKD
		default:
			return nil, &value.EngineError{Kind: "RangeError", Msg: "The normalization form should be one of NFC, NFD, NFKC, NFKD"}
		}
		return value.NewString(f.String(asStr(this))), nil
	})
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func pad(s string, args []value.Value, start bool) string {
	target := int(value.ToFloat64(arg(args, 0)))
	filler := " "
	if len(args) > 1 && args[1].Kind() != value.KindUndefined {
		filler = asStr(args[1])
	}
	if filler == "" || len([]rune(s)) >= target {
		return s
	}
	need := target - len([]rune(s))
	var b strings.Builder
	for b.Len() < need {
		b.WriteString(filler)
	}
	padding := []rune(b.String())[:need]
	if start {
		return string(padding) + s
	}
	return s + string(padding)
}

// --- Number statics ------------------------------------------------------

func installNumberStatics(r *vm.Realm) {
	ctorV, _ := r.GlobalObject.Get(value.StringKey("Number"))
	ctor, ok := ctorV.(*value.Object)
	if !ok {
		ctor = value.NewNativeFunction(r.FunctionProto, "Number", 1, func(this value.Value, args []value.Value) (value.Value, error) {
			if len(args) == 0 {
				return value.NumberFromFloat(0), nil
			}
			return value.NumberFromFloat(value.ToFloat64(args[0])), nil
		})
		r.GlobalObject.Internal.DefineOwnProperty(r.GlobalObject, value.StringKey("Number"), value.NewDataDescriptor(ctor, value.Sealed()))
	}
	defineData(ctor, "MAX_SAFE_INTEGER", value.NumberFromFloat(9007199254740991))
	defineData(ctor, "MIN_SAFE_INTEGER", value.NumberFromFloat(-9007199254740991))
	defineData(ctor, "EPSILON", value.NumberFromFloat(2.220446049250313e-16))
	defineData(ctor, "POSITIVE_INFINITY", value.NumberFromFloat(math.Inf(1)))
	defineData(ctor, "NEGATIVE_INFINITY", value.NumberFromFloat(math.Inf(-1)))
	defineData(ctor, "NaN", value.NumberFromFloat(math.NaN()))
	defineMethod(ctor, "isInteger", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if !value.IsNumber(arg(args, 0)) {
			return value.Boolean(false), nil
		}
		f := value.ToFloat64(args[0])
		return value.Boolean(!math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)), nil
	})
	defineMethod(ctor, "isFinite", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if !value.IsNumber(arg(args, 0)) {
			return value.Boolean(false), nil
		}
		f := value.ToFloat64(args[0])
		return value.Boolean(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	})
	defineMethod(ctor, "isNaN", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Boolean(value.IsNumber(arg(args, 0)) && math.IsNaN(value.ToFloat64(args[0]))), nil
	})
	defineMethod(ctor, "parseFloat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(asStr(arg(args, 0))), 64)
		if err != nil {
			return value.NumberFromFloat(math.NaN()), nil
		}
		return value.NumberFromFloat(f), nil
	})
	defineMethod(ctor, "parseInt", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		base := 10
		if len(args) > 1 && args[1].Kind() != value.KindUndefined {
			base = int(value.ToFloat64(args[1]))
		}
		i, err := strconv.ParseInt(strings.TrimSpace(asStr(arg(args, 0))), base, 64)
		if err != nil {
			return value.NumberFromFloat(math.NaN()), nil
		}
		return value.NumberFromFloat(float64(i)), nil
	})

	np := r.NumberProto
	defineMethod(np, "toFixed", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		digits := 0
		if len(args) > 0 {
			digits = int(value.ToFloat64(args[0]))
		}
		return value.NewString(strconv.FormatFloat(value.ToFloat64(this), 'f', digits, 64)), nil
	})
	defineMethod(np, "toString", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		base := 10
		if len(args) > 0 && args[0].Kind() != value.KindUndefined {
			base = int(value.ToFloat64(args[0]))
		}
		f := value.ToFloat64(this)
		if base == 10 {
			return value.NewString(value.Fmt(this)), nil
		}
		return value.NewString(strconv.FormatInt(int64(f), base)), nil
	})

	globalParseInt, _ := ctor.Get(value.StringKey("parseInt"))
	globalParseFloat, _ := ctor.Get(value.StringKey("parseFloat"))
	r.GlobalObject.Internal.DefineOwnProperty(r.GlobalObject, value.StringKey("parseInt"), value.NewDataDescriptor(globalParseInt, value.Sealed()))
	r.GlobalObject.Internal.DefineOwnProperty(r.GlobalObject, value.StringKey("parseFloat"), value.NewDataDescriptor(globalParseFloat, value.Sealed()))
	r.GlobalObject.Internal.DefineOwnProperty(r.GlobalObject, value.StringKey("isNaN"), value.NewDataDescriptor(
		value.NewNativeFunction(r.FunctionProto, "isNaN", 1, func(this value.Value, args []value.Value) (value.Value, error) {
			return value.Boolean(math.IsNaN(value.ToFloat64(arg(args, 0)))), nil
		}), value.Sealed()))
	r.GlobalObject.Internal.DefineOwnProperty(r.GlobalObject, value.StringKey("isFinite"), value.NewDataDescriptor(
		value.NewNativeFunction(r.FunctionProto, "isFinite", 1, func(this value.Value, args []value.Value) (value.Value, error) {
			f := value.ToFloat64(arg(args, 0))
			return value.Boolean(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
		}), value.Sealed()))
}

// --- Function.prototype.toString ----------------------------------------

// installFunctionToString gives every function a toString() rather than
// leaving FunctionProto inherited with none; since the compiler discards
// source text after compiling to bytecode (component E keeps no source
// map), this cannot reproduce the original source the way a source-
// retaining engine would — it renders a signature-only stub, the same
// gate boa_engine's own "source unavailable" toString fallback uses for
// functions whose source text was never retained.
func installFunctionToString(r *vm.Realm) {
	defineMethod(r.FunctionProto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := asObject(this)
		if !ok || !o.IsCallable() {
			return nil, &value.EngineError{Kind: "TypeError", Msg: "Function.prototype.toString requires a callable this"}
		}
		data := value.FuncData(o)
		name := "anonymous"
		if data != nil && data.Name != "" {
			name = data.Name
		}
		return value.NewString("function " + name + "() { [native code] }"), nil
	})
}
