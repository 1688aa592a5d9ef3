package value

// ErrorKind enumerates the built-in Error subclasses the runtime throws
// natively (§9 "Runtime exception — an ECMAScript error value, one of
// Error, TypeError, RangeError, ReferenceError, SyntaxError (runtime-
// constructed, e.g. inside eval), or a user-constructed Error subclass").
type ErrorKind string

const (
	GenericError    ErrorKind = "Error"
	TypeErrorKind   ErrorKind = "TypeError"
	RangeErrorKind  ErrorKind = "RangeError"
	ReferenceError  ErrorKind = "ReferenceError"
	SyntaxErrorKind ErrorKind = "SyntaxError"
	EvalErrorKind   ErrorKind = "EvalError"
	URIErrorKind    ErrorKind = "URIError"
)

// ErrorData is the Private payload of a KindError object: the kind tag
// used to pick its prototype chain/`.name`, plus the captured stack trace
// text the VM attaches when the error is thrown rather than merely
// constructed (§7 "every error value carries a message string and a stack
// representation built lazily from the frames unwound past").
type ErrorData struct {
	ErrorKind ErrorKind
	Message   string
	Stack     string
}

// NewErrorObject builds a KindError object with `message` and `name` data
// properties installed per the ordinary Error.prototype layout; proto is
// expected to be the realm's prototype for kind (Error.prototype,
// TypeError.prototype, ...).
func NewErrorObject(proto *Object, kind ErrorKind, message string) *Object {
	o := NewObject(proto)
	o.kind = KindError
	o.Private = &ErrorData{ErrorKind: kind, Message: message}
	o.Internal.DefineOwnProperty(o, StringKey("message"), NewDataDescriptor(NewString(message), Sealed()))
	return o
}

// IsError reports whether v is a KindError object.
func IsError(v Value) bool {
	o, ok := v.(*Object)
	return ok && o.kind == KindError
}

// ErrorDataOf type-asserts o's Private payload back to *ErrorData; it
// panics if o is not a KindError object.
func ErrorDataOf(o *Object) *ErrorData { return o.Private.(*ErrorData) }
