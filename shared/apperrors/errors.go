package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so handlers can map it to an HTTP status
// without inspecting message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindPermissionDenied
	KindValidationConflict
	KindEscalationDenied
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindValidationConflict:
		return "validation_conflict"
	case KindEscalationDenied:
		return "escalation_denied"
	default:
		return "unknown"
	}
}

// Error is a user-visible failure with a kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound reports an entity lookup miss.
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// PermissionDenied reports a failed authorization or tenancy check.
func PermissionDenied(format string, args ...interface{}) error {
	return &Error{Kind: KindPermissionDenied, Message: fmt.Sprintf(format, args...)}
}

// ValidationConflict reports a duplicate or otherwise invalid input.
func ValidationConflict(format string, args ...interface{}) error {
	return &Error{Kind: KindValidationConflict, Message: fmt.Sprintf(format, args...)}
}

// EscalationDenied reports a non-owner granting a permission it lacks.
func EscalationDenied(format string, args ...interface{}) error {
	return &Error{Kind: KindEscalationDenied, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindUnknown for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error to the status code its kind is surfaced as.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindPermissionDenied, KindEscalationDenied:
		return http.StatusForbidden
	case KindValidationConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
