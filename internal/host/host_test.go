package host

import (
	"testing"

	"github.com/cwbudde/ecma/internal/intern"
	"github.com/cwbudde/ecma/internal/value"
	"github.com/cwbudde/ecma/internal/vm"
)

func newTestRealm(t *testing.T) *vm.Realm {
	t.Helper()
	r := vm.NewRealm(intern.New())
	Install(r)
	return r
}

func getGlobal(t *testing.T, r *vm.Realm, name string) value.Value {
	t.Helper()
	v, err := r.GlobalObject.Get(value.StringKey(name))
	if err != nil {
		t.Fatalf("Get(%q) error = %v", name, err)
	}
	return v
}

func callMethod(t *testing.T, obj value.Value, name string, args ...value.Value) value.Value {
	t.Helper()
	o, ok := obj.(*value.Object)
	if !ok {
		t.Fatalf("callMethod(%q): receiver is not an object", name)
	}
	fnVal, err := o.Get(value.StringKey(name))
	if err != nil {
		t.Fatalf("Get(%q) error = %v", name, err)
	}
	fn, ok := fnVal.(*value.Object)
	if !ok || !fn.IsCallable() {
		t.Fatalf("%q is not callable", name)
	}
	result, err := fn.Internal.Call(fn, obj, args)
	if err != nil {
		t.Fatalf("%s() error = %v", name, err)
	}
	return result
}

func TestInstallPopulatesIntrinsics(t *testing.T) {
	r := newTestRealm(t)
	for _, name := range []string{"Math", "JSON", "Object", "Number", "__heapDump"} {
		if v := getGlobal(t, r, name); v == nil {
			t.Fatalf("global %q is nil after Install", name)
		}
	}
}

func TestMathHelpers(t *testing.T) {
	r := newTestRealm(t)
	math := getGlobal(t, r, "Math")
	abs := callMethod(t, math, "abs", value.Int32(-5))
	if abs.DisplayString() != "5" {
		t.Fatalf("Math.abs(-5) = %s, want 5", abs.DisplayString())
	}
	max := callMethod(t, math, "max", value.Int32(1), value.Int32(9), value.Int32(3))
	if max.DisplayString() != "9" {
		t.Fatalf("Math.max(1,9,3) = %s, want 9", max.DisplayString())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	r := newTestRealm(t)
	j := getGlobal(t, r, "JSON")
	parsed := callMethod(t, j, "parse", value.NewString(`{"a":1,"b":"two"}`))
	out := callMethod(t, j, "stringify", parsed)
	got := out.DisplayString()
	if got == "" {
		t.Fatalf("JSON.stringify returned empty string")
	}
}

func TestHeapDumpProducesJSON(t *testing.T) {
	r := newTestRealm(t)
	fnVal := getGlobal(t, r, "__heapDump")
	fn, ok := fnVal.(*value.Object)
	if !ok || !fn.IsCallable() {
		t.Fatalf("__heapDump is not callable")
	}
	result, err := fn.Internal.Call(fn, value.U, nil)
	if err != nil {
		t.Fatalf("__heapDump() error = %v", err)
	}
	got := result.DisplayString()
	if len(got) == 0 || got[0] != '{' {
		t.Fatalf("__heapDump() = %q, want a JSON object", got)
	}
}
