// Package fault holds the error taxonomy shared by the state machine, the
// simulation clock and the event director.
package fault

import "errors"

// Code is a machine-readable error code. Codes are comparable, so they work
// as sentinels with errors.Is after being wrapped with fmt.Errorf("%w").
type Code string

const (
	// Configuration errors: registration defects, fatal at startup.
	ErrDuplicateIdentifier Code = "DUPLICATE_IDENTIFIER"
	ErrOwnershipMismatch   Code = "OWNERSHIP_MISMATCH"

	// Request errors: the operation fails and nothing is mutated.
	ErrUnknownState   Code = "UNKNOWN_STATE"
	ErrAbstractState  Code = "ABSTRACT_STATE"
	ErrEmptyStack     Code = "EMPTY_STACK"
	ErrRoleViolation  Code = "ROLE_VIOLATION"
	ErrReentrantEvent Code = "REENTRANT_EVENT"
	ErrRegistrySealed Code = "REGISTRY_SEALED"

	// Runtime data errors: one construction or one event is skipped.
	ErrConstructionFailure        Code = "CONSTRUCTION_FAILURE"
	ErrEventPreconditionViolation Code = "EVENT_PRECONDITION_VIOLATION"

	// Not errors in the strict sense; callers proceed.
	ErrUnhandledInput  Code = "UNHANDLED_INPUT"
	ErrNoEligibleEvent Code = "NO_ELIGIBLE_EVENT"
)

func (c Code) Error() string { return string(c) }

// Class groups codes by how the caller is expected to react.
type Class int

const (
	ClassUnknown Class = iota
	ClassConfiguration
	ClassRequest
	ClassRuntimeData
	ClassNotice
)

func (c Class) String() string {
	switch c {
	case ClassConfiguration:
		return "configuration"
	case ClassRequest:
		return "request"
	case ClassRuntimeData:
		return "runtime_data"
	case ClassNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// Class returns the class a code belongs to.
func (c Code) Class() Class {
	switch c {
	case ErrDuplicateIdentifier, ErrOwnershipMismatch:
		return ClassConfiguration
	case ErrUnknownState, ErrAbstractState, ErrEmptyStack, ErrRoleViolation, ErrReentrantEvent, ErrRegistrySealed:
		return ClassRequest
	case ErrConstructionFailure, ErrEventPreconditionViolation:
		return ClassRuntimeData
	case ErrUnhandledInput, ErrNoEligibleEvent:
		return ClassNotice
	default:
		return ClassUnknown
	}
}

// CodeOf returns the outermost Code in err's chain, or "" if there is none.
func CodeOf(err error) Code {
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return ""
}

// ClassOf classifies err. Errors that carry no Code are ClassUnknown.
func ClassOf(err error) Class {
	if err == nil {
		return ClassUnknown
	}
	return CodeOf(err).Class()
}

// Fatal reports whether err must stop the process.
func Fatal(err error) bool {
	return ClassOf(err) == ClassConfiguration
}
