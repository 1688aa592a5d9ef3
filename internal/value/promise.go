package value

// PromiseState is a Promise's one-way state transition: Pending to either
// Fulfilled or Rejected, never back (§12 "Jobs").
type PromiseState byte

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// PromiseData is the KindPromise object's Private payload. Reactions
// registered while still pending are queued here and drained the moment
// Settle (internal/vm) moves the promise to a terminal state; a promise
// that settles before a reaction is attached runs that reaction as soon as
// it is attached instead.
type PromiseData struct {
	State  PromiseState
	Result Value

	OnFulfilled []func(Value)
	OnRejected  []func(Value)
}

// PromiseDataOf type-asserts o's Private payload back to *PromiseData; it
// panics if o is not a KindPromise object, an engine bug.
func PromiseDataOf(o *Object) *PromiseData { return o.Private.(*PromiseData) }
