package claim

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the domain taxonomy. Handlers map these to HTTP codes;
// storage failures are wrapped as ErrStorageUnavailable and never leak raw
// driver errors to callers.
var (
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrValidationFailed       = errors.New("validation failed")
	ErrConcurrentModification = errors.New("concurrent modification, retry")
	ErrStorageUnavailable     = errors.New("storage unavailable")
)

// Condition identifies one unmet gating rule.
type Condition string

const (
	ConditionDocumentsRequired  Condition = "documents_required"
	ConditionInfoRequestPending Condition = "info_request_pending"
)

func (c Condition) Message() string {
	switch c {
	case ConditionDocumentsRequired:
		return "at least one supporting document must be uploaded"
	case ConditionInfoRequestPending:
		return "a pending information request must be answered first"
	}
	return string(c)
}

// PreconditionError reports a structurally legal transition blocked by gating
// rules. It carries every unmet condition so callers can render each one
// individually instead of a generic message.
type PreconditionError struct {
	Unmet []Condition
}

func (e *PreconditionError) Error() string {
	msgs := make([]string, len(e.Unmet))
	for i, c := range e.Unmet {
		msgs[i] = c.Message()
	}
	return "precondition failed: " + strings.Join(msgs, "; ")
}

// IsPrecondition reports whether err is a PreconditionError and returns it.
func IsPrecondition(err error) (*PreconditionError, bool) {
	var pe *PreconditionError
	ok := errors.As(err, &pe)
	return pe, ok
}

func invalidTransitionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

func forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// wrapStorage hides raw storage errors behind the generic kind while keeping
// the cause text for server-side logs.
func wrapStorage(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
