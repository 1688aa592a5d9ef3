package host

import (
	"sort"

	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jwriter"

	"github.com/cwbudde/ecma/internal/value"
	"github.com/cwbudde/ecma/internal/vm"
)

// heapSnapshot is a shallow diagnostic dump of a realm's global bindings:
// name, runtime kind, and a best-effort display string per slot. It exists
// for __heapDump(), a debugging aid scripts can call to inspect what the
// host currently has bound at global scope without reaching for a
// debugger.
type heapSnapshot struct {
	Globals []heapBinding `json:"globals"`
}

type heapBinding struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Display string `json:"display"`
}

// MarshalEasyJSON implements easyjson.Marshaler by hand, in the shape
// `easyjson generate` itself emits, so the heap dump's hot path (every
// call walks and serializes the full global object) skips
// encoding/json's reflection walk.
func (s heapSnapshot) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	w.RawString(`"globals":`)
	w.RawByte('[')
	for i, b := range s.Globals {
		if i > 0 {
			w.RawByte(',')
		}
		b.marshalEasyJSON(w)
	}
	w.RawByte(']')
	w.RawByte('}')
}

func (b heapBinding) marshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	w.RawString(`"name":`)
	w.String(b.Name)
	w.RawByte(',')
	w.RawString(`"kind":`)
	w.String(b.Kind)
	w.RawByte(',')
	w.RawString(`"display":`)
	w.String(b.Display)
	w.RawByte('}')
}

// kindName reports the ECMAScript typeof-style name for a runtime kind,
// separate from value.Kind's String() since that one is tuned for
// compiler/debug opcode traces rather than script-facing diagnostics.
func kindName(v value.Value) string {
	switch v.(type) {
	case value.Undefined:
		return "undefined"
	case value.Null:
		return "null"
	case value.Boolean:
		return "boolean"
	case value.Int32, value.Float64:
		return "number"
	case *value.Str:
		return "string"
	case *value.Object:
		if obj, ok := v.(*value.Object); ok && obj.IsCallable() {
			return "function"
		}
		return "object"
	default:
		return "object"
	}
}

func buildHeapSnapshot(r *vm.Realm) heapSnapshot {
	keys := r.GlobalObject.OwnKeys()
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if k.IsSymbol() {
			continue
		}
		names = append(names, k.String())
	}
	sort.Strings(names)

	snap := heapSnapshot{Globals: make([]heapBinding, 0, len(names))}
	for _, name := range names {
		v, err := r.GlobalObject.Get(value.StringKey(name))
		if err != nil || v == nil {
			continue
		}
		snap.Globals = append(snap.Globals, heapBinding{
			Name:    name,
			Kind:    kindName(v),
			Display: v.DisplayString(),
		})
	}
	return snap
}

// installDebug wires a __heapDump() global that scripts (and the CLI's
// --eval REPL-style usage) can call to inspect the realm's current global
// bindings as a JSON string, fast-pathed through easyjson rather than
// encoding/json.
func installDebug(r *vm.Realm) {
	defineMethod(r.GlobalObject, "__heapDump", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		snap := buildHeapSnapshot(r)
		data, err := easyjson.Marshal(snap)
		if err != nil {
			return nil, &value.EngineError{Kind: "Error", Msg: "heap dump failed: " + err.Error()}
		}
		return value.NewString(string(data)), nil
	})
}
