// Package vaulterr provides the error kinds shared by the document stores,
// the tree mover and the facade. It has no internal dependencies so every
// layer can import it.
package vaulterr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents the kind of failure that occurred.
type ErrorCode int

const (
	// ErrNotFound indicates the requested object or record does not exist.
	ErrNotFound ErrorCode = iota + 1

	// ErrInvalidMove indicates an illegal relocation, such as nesting a
	// folder inside itself.
	ErrInvalidMove

	// ErrPartialFailure indicates a tree or batch operation where some
	// items failed. The failed sub-paths are carried in Error.Failed.
	ErrPartialFailure

	// ErrRemoteUnavailable indicates a transport-level failure talking to
	// one of the remote stores.
	ErrRemoteUnavailable

	// ErrConflict indicates the destination path is already occupied.
	ErrConflict

	// ErrInvalidPath indicates a path or name that cannot address a
	// document, such as the root or an empty name.
	ErrInvalidPath
)

func (e ErrorCode) String() string {
	switch e {
	case ErrNotFound:
		return "NotFound"
	case ErrInvalidMove:
		return "InvalidMove"
	case ErrPartialFailure:
		return "PartialFailure"
	case ErrRemoteUnavailable:
		return "RemoteUnavailable"
	case ErrConflict:
		return "Conflict"
	case ErrInvalidPath:
		return "InvalidPath"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// Failure describes a single item that failed inside a tree or batch operation.
type Failure struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// Error is the error type returned by every docsync component.
type Error struct {
	Code    ErrorCode
	Message string
	Path    string
	Failed  []Failure
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Path != "" {
		fmt.Fprintf(&b, " (path: %s)", e.Path)
	}
	if len(e.Failed) > 0 {
		fmt.Fprintf(&b, " [%d failed]", len(e.Failed))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so callers can write
// errors.Is(err, vaulterr.NotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == "" && t.Path == ""
}

// FailedPaths returns the sub-paths recorded in a partial failure.
func (e *Error) FailedPaths() []string {
	paths := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		paths = append(paths, f.Path)
	}
	return paths
}

// Sentinels for errors.Is comparisons.
var (
	NotFound          = &Error{Code: ErrNotFound}
	InvalidMove       = &Error{Code: ErrInvalidMove}
	PartialFailure    = &Error{Code: ErrPartialFailure}
	RemoteUnavailable = &Error{Code: ErrRemoteUnavailable}
	Conflict          = &Error{Code: ErrConflict}
	InvalidPath       = &Error{Code: ErrInvalidPath}
)

func NewNotFoundError(path, resource string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Path:    path,
	}
}

func NewInvalidMoveError(path, reason string) *Error {
	return &Error{
		Code:    ErrInvalidMove,
		Message: reason,
		Path:    path,
	}
}

func NewPartialFailureError(path string, failed []Failure) *Error {
	return &Error{
		Code:    ErrPartialFailure,
		Message: fmt.Sprintf("%d item(s) could not be processed", len(failed)),
		Path:    path,
		Failed:  failed,
	}
}

func NewRemoteUnavailableError(operation string, err error) *Error {
	return &Error{
		Code:    ErrRemoteUnavailable,
		Message: operation,
		Err:     err,
	}
}

func NewConflictError(path string) *Error {
	return &Error{
		Code:    ErrConflict,
		Message: "destination already exists",
		Path:    path,
	}
}

func NewInvalidPathError(path, reason string) *Error {
	return &Error{
		Code:    ErrInvalidPath,
		Message: reason,
		Path:    path,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or 0.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrNotFound
}

func IsInvalidMove(err error) bool {
	return CodeOf(err) == ErrInvalidMove
}

func IsPartialFailure(err error) bool {
	return CodeOf(err) == ErrPartialFailure
}

func IsRemoteUnavailable(err error) bool {
	return CodeOf(err) == ErrRemoteUnavailable
}

func IsConflict(err error) bool {
	return CodeOf(err) == ErrConflict
}

func IsInvalidPath(err error) bool {
	return CodeOf(err) == ErrInvalidPath
}
