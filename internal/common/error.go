package common

import "errors"

// IntegrityError describes a constraint violation reported by storage.
//
// Kind is one of the ErrorXxxViolation sentinels. Foreign key violations also
// match ErrorReference, since they mean a referenced user or message is absent.
type IntegrityError struct {
	Kind       error
	Constraint string
	Err        error
}

func (e *IntegrityError) Error() string {
	msg := e.Kind.Error()
	if e.Constraint != "" {
		msg += " (" + e.Constraint + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IntegrityError) Is(target error) bool {
	if target == ErrorReference {
		return errors.Is(e.Kind, ErrorForeignKeyViolation)
	}
	return errors.Is(e.Kind, target)
}

func (e *IntegrityError) Unwrap() error { return e.Err }
