package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Kind is a stable error classification surfaced to callers.
type Kind string

const (
	KindInvalidArguments  Kind = "invalid_arguments"
	KindAccessDenied      Kind = "access_denied"
	KindNotFound          Kind = "not_found"
	KindNotADirectory     Kind = "not_a_directory"
	KindAlreadyExists     Kind = "already_exists"
	KindEditNotApplicable Kind = "edit_not_applicable"
	KindIOError           Kind = "io_error"
)

// OpError is a typed operation failure with a stable kind identifier.
type OpError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *OpError) Error() string {
	return e.Message
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func invalidArguments(format string, args ...interface{}) *OpError {
	return &OpError{Kind: KindInvalidArguments, Message: fmt.Sprintf(format, args...)}
}

func accessDenied(format string, args ...interface{}) *OpError {
	return &OpError{Kind: KindAccessDenied, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...interface{}) *OpError {
	return &OpError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func notADirectory(format string, args ...interface{}) *OpError {
	return &OpError{Kind: KindNotADirectory, Message: fmt.Sprintf(format, args...)}
}

func alreadyExists(format string, args ...interface{}) *OpError {
	return &OpError{Kind: KindAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

func editNotApplicable(index int, format string, args ...interface{}) *OpError {
	return &OpError{
		Kind:    KindEditNotApplicable,
		Message: fmt.Sprintf("edit %d: %s", index, fmt.Sprintf(format, args...)),
	}
}

func ioError(err error, format string, args ...interface{}) *OpError {
	return &OpError{Kind: KindIOError, Message: fmt.Sprintf(format, args...), Err: err}
}

// wrapOS maps a raw filesystem error onto the closest taxonomy kind. The
// message deliberately repeats only the caller-supplied path, never a
// resolved target outside the allowed roots.
func wrapOS(err error, path string) *OpError {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &OpError{Kind: KindNotFound, Message: fmt.Sprintf("no such file or directory: %s", path), Err: err}
	case errors.Is(err, fs.ErrExist):
		return &OpError{Kind: KindAlreadyExists, Message: fmt.Sprintf("already exists: %s", path), Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &OpError{Kind: KindAccessDenied, Message: fmt.Sprintf("permission denied: %s", path), Err: err}
	case errors.Is(err, syscall.ENOTDIR):
		return &OpError{Kind: KindNotADirectory, Message: fmt.Sprintf("not a directory: %s", path), Err: err}
	default:
		return &OpError{Kind: KindIOError, Message: fmt.Sprintf("filesystem error on %s: %v", path, err), Err: err}
	}
}

// KindOf extracts the stable kind from any error, defaulting to io_error.
func KindOf(err error) Kind {
	var op *OpError
	if errors.As(err, &op) {
		return op.Kind
	}
	return KindIOError
}
