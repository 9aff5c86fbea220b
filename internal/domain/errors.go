package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// UnauthenticatedError means the request carried no usable credential.
// Distinct from ForbiddenError: the caller should re-authenticate.
type UnauthenticatedError struct {
	Reason string
}

func (e UnauthenticatedError) Error() string {
	if e.Reason == "" {
		return "unauthenticated"
	}
	return e.Reason
}

func (e UnauthenticatedError) Is(target error) bool {
	_, ok := target.(UnauthenticatedError)
	if ok {
		return true
	}
	_, ok = target.(*UnauthenticatedError)
	return ok
}

var ErrUnauthenticated = UnauthenticatedError{}

// ForbiddenError means the credential was valid but lacks the required
// capability.
type ForbiddenError struct {
	Reason string
}

func (e ForbiddenError) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return e.Reason
}

func (e ForbiddenError) Is(target error) bool {
	_, ok := target.(ForbiddenError)
	if ok {
		return true
	}
	_, ok = target.(*ForbiddenError)
	return ok
}

var ErrForbidden = ForbiddenError{}

// ConflictError means the operation lost a first-wins race, such as
// reserving a wish somebody else already reserved.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string {
	if e.Reason == "" {
		return "conflict"
	}
	return e.Reason
}

func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

var ErrConflict = ConflictError{}

// DuplicateError means a unique resource already exists.
type DuplicateError struct {
	Resource string
}

func (e DuplicateError) Error() string {
	if e.Resource == "" {
		return "already exists"
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

func (e DuplicateError) Is(target error) bool {
	_, ok := target.(DuplicateError)
	if ok {
		return true
	}
	_, ok = target.(*DuplicateError)
	return ok
}

var ErrDuplicate = DuplicateError{}

// BusinessRuleError means the operation violates an invariant of the
// gift exchange, such as reserving your own wish.
type BusinessRuleError struct {
	Rule string
}

func (e BusinessRuleError) Error() string {
	if e.Rule == "" {
		return "business rule violation"
	}
	return e.Rule
}

func (e BusinessRuleError) Is(target error) bool {
	_, ok := target.(BusinessRuleError)
	if ok {
		return true
	}
	_, ok = target.(*BusinessRuleError)
	return ok
}

var ErrBusinessRule = BusinessRuleError{}

// ValidationError means a field constraint was violated before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "validation error"
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

var ErrValidation = ValidationError{}
