package log

// A Context adds fields to every log entry, such as the current state of the
// emulated machine.
type Context interface {
	AddLogContext(z *EntryZ)
}

var contexts []Context

// AddContext registers c. Not safe for concurrent use with logging, call it
// during initialization.
func AddContext(c Context) {
	contexts = append(contexts, c)
}
