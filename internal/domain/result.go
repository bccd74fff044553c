package domain

// Result is the envelope every repository operation returns: either a payload with a
// human-readable message, or an error with a message.
type Result[T any] struct {
	ok      bool
	data    T
	err     error
	message string
}

func Success[T any](data T, message string) Result[T] {
	return Result[T]{ok: true, data: data, message: message}
}

func Failure[T any](err error, message string) Result[T] {
	if err == nil {
		err = &RemoteError{Message: message}
	}
	if message == "" {
		message = err.Error()
	}
	return Result[T]{err: err, message: message}
}

func (r Result[T]) OK() bool        { return r.ok }
func (r Result[T]) Data() T         { return r.data }
func (r Result[T]) Err() error      { return r.err }
func (r Result[T]) Message() string { return r.message }
