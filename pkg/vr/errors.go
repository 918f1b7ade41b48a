package vr

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

type Kind int

const (
	KindInternal Kind = iota
	KindMalformedIdentifier
	KindInvalidResource
	KindInvalidParameter
	KindAccessDenied
	KindAlreadyExists
	KindNotAMapping
	KindMappingCopyForbidden
	KindOffsetMismatch
	KindChunkTooSmall
	KindChunkTooLarge
	KindNotUploadOwner
	KindPermissionDenied
	KindPathNotFound
	KindInvalidPathFormat
)

var kindNames = map[Kind]string{
	KindInternal:             "Internal",
	KindMalformedIdentifier:  "MalformedIdentifier",
	KindInvalidResource:      "InvalidResource",
	KindInvalidParameter:     "InvalidParameter",
	KindAccessDenied:         "AccessDenied",
	KindAlreadyExists:        "AlreadyExists",
	KindNotAMapping:          "NotAMapping",
	KindMappingCopyForbidden: "MappingCopyForbidden",
	KindOffsetMismatch:       "OffsetMismatch",
	KindChunkTooSmall:        "ChunkTooSmall",
	KindChunkTooLarge:        "ChunkTooLarge",
	KindNotUploadOwner:       "NotUploadOwner",
	KindPermissionDenied:     "PermissionDenied",
	KindPathNotFound:         "PathNotFound",
	KindInvalidPathFormat:    "InvalidPathFormat",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the structured failure every operation returns. The request
// boundary turns it into a status code and a JSON payload.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindAccessDenied, KindNotUploadOwner:
		return http.StatusForbidden
	case KindNotAMapping, KindPermissionDenied, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Type is the payload category: validation errors carry a field, access
// errors come from the authorization oracle, exceptions are server side.
func (e *Error) Type() string {
	switch e.Kind {
	case KindAccessDenied, KindNotUploadOwner:
		return "access"
	case KindNotAMapping, KindPermissionDenied, KindInternal:
		return "exception"
	case KindMalformedIdentifier, KindInvalidPathFormat, KindPathNotFound:
		return "rest"
	default:
		return "validation"
	}
}

// NewError builds an *Error for failures detected outside the engine, such
// as malformed request parameters.
func NewError(kind Kind, field, format string, args ...interface{}) *Error {
	return newError(kind, field, format, args...)
}

func newError(kind Kind, field, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func errInvalidObjectID(id string) *Error {
	return newError(KindInvalidResource, "id", "Invalid ObjectId: %s", id)
}

func errAlreadyExists() *Error {
	return newError(KindAlreadyExists, "name", "A folder or file with that name already exists here.")
}

func errNotAMapping(id string) *Error {
	return newError(KindNotAMapping, "", "Folder %s is not a mapping.", id)
}

// fsError classifies an error from a filesystem mutation on path. EACCES
// and EPERM become PermissionDenied and EEXIST becomes AlreadyExists;
// anything else is wrapped as internal.
func fsError(err error, op, path string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM), errors.Is(err, os.ErrPermission):
		return &Error{Kind: KindPermissionDenied, Message: fmt.Sprintf("Insufficient perms to write on %s", path), Err: err}
	case errors.Is(err, unix.EEXIST), errors.Is(err, unix.ENOTEMPTY), errors.Is(err, os.ErrExist):
		return &Error{Kind: KindAlreadyExists, Field: "name", Message: errAlreadyExists().Message, Err: err}
	case errors.Is(err, os.ErrNotExist):
		return &Error{Kind: KindInvalidResource, Field: "id", Message: fmt.Sprintf("No such file or directory: %s", path), Err: err}
	default:
		return &Error{Kind: KindInternal, Message: fmt.Sprintf("%s failed", op), Err: pkgerrors.Wrapf(err, "%s %s", op, path)}
	}
}
