package domain

import (
	"errors"
	"fmt"
)

// Business failures. Callers match them with errors.Is; the typed errors
// below carry them as Err so the HTTP layer can pick a status.
var (
	ErrInsufficientInventory  = errors.New("insufficient inventory")
	ErrCapacityExceeded       = errors.New("capacity exceeded")
	ErrInvalidDepartureDate   = errors.New("invalid departure date")
	ErrIllegalStateTransition = errors.New("illegal state transition")
	ErrAlreadyTerminal        = errors.New("booking already in terminal state")
	ErrConflictingSettlement  = errors.New("conflicting settlement")
	ErrExpiredCard            = errors.New("card expired")
	ErrUnknownItinerary       = errors.New("unknown itinerary")
	ErrDivision               = errors.New("division by zero")
	ErrInvalidSignature       = errors.New("invalid signature")
)

// DomainError keeps backward compatibility for generic codes.
type DomainError struct {
	Code string
	Err  error
}

func (e DomainError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	if e.Code == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e DomainError) Unwrap() error {
	return e.Err
}

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ValidationError rejects a request before any state changes.
// Details, when set, gives the client what it needs to adjust the request.
type ValidationError struct {
	Field   string
	Msg     string
	Err     error
	Details map[string]any
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// TransitionError reports a lifecycle action that the booking's current
// status does not allow. Err is one of ErrIllegalStateTransition,
// ErrAlreadyTerminal or ErrConflictingSettlement.
type TransitionError struct {
	BookingID string
	From      string
	Action    string
	Err       error
}

func (e TransitionError) Error() string {
	cause := "not allowed"
	if e.Err != nil {
		cause = e.Err.Error()
	}
	return fmt.Sprintf("booking %s: cannot %s from %s: %s", e.BookingID, e.Action, e.From, cause)
}

func (e TransitionError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsTransition(err error) bool {
	var target TransitionError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// ValidationDetails returns the Details of the first ValidationError in err's chain.
func ValidationDetails(err error) map[string]any {
	var target ValidationError
	if errors.As(err, &target) {
		return target.Details
	}
	return nil
}
