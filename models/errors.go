package models

import (
	"errors"
	"fmt"
)

// ValidationError reports input that was rejected before any mutation
// took place: non-positive quantities or prices, empty required fields,
// or an attempt to issue a receipt for an empty order.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown product, order, receipt or user.
// The operation it aborted is a no-op.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// StateTransitionError reports an illegal status change. The order is
// left unchanged.
type StateTransitionError struct {
	OrderID string
	From    OrderStatus
	To      OrderStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("order %s: illegal transition %s -> %s", e.OrderID, e.From, e.To)
}

// PermissionError reports an operation the session's role is not
// entitled to perform.
type PermissionError struct {
	Role       Role
	Capability Capability
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role %q lacks capability %q", e.Role, e.Capability)
}

// PersistenceError wraps an I/O failure reading or writing a store. The
// in-memory change is not committed; the caller may retry the whole
// load-merge-write sequence.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsStateTransition reports whether err is a StateTransitionError.
func IsStateTransition(err error) bool {
	var st *StateTransitionError
	return errors.As(err, &st)
}

// IsPermission reports whether err is a PermissionError.
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsPersistence reports whether err is a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
