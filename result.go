package debounce

// Result holds the value returned by the most recent invocation of a debounced
// function. Valid is false until the function has returned successfully at
// least once, so a zero Value can be told apart from "never invoked".
type Result[R any] struct {
	Value R
	Valid bool
}

// Get returns the value and whether it is valid.
func (r Result[R]) Get() (R, bool) {
	return r.Value, r.Valid
}
