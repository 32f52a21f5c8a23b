package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrUnauthorized         = errors.New("actor is not authorized")
	ErrAlreadyReviewed      = errors.New("reviewer already reviewed this round")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrNotFound             = errors.New("not found")

	ErrEntryNotFound        = fmt.Errorf("entry %w", ErrNotFound)
	ErrRevisionNotFound     = fmt.Errorf("revision %w", ErrNotFound)
	ErrVariantGroupNotFound = fmt.Errorf("variant group %w", ErrNotFound)

	ErrSelfReview       = fmt.Errorf("self review: %w", ErrUnauthorized)
	ErrNotRevisionOwner = fmt.Errorf("revision owner mismatch: %w", ErrUnauthorized)
	ErrRoleRequired     = fmt.Errorf("reviewer or admin role required: %w", ErrUnauthorized)
	ErrAdminRequired    = fmt.Errorf("admin role required: %w", ErrUnauthorized)

	ErrNotReviewable = fmt.Errorf("revision is not reviewable for this decision: %w", ErrInvalidTransition)

	ErrNotesRequired      = errors.New("notes are required")
	ErrInvalidDecision    = errors.New("invalid review decision")
	ErrInvalidAction      = errors.New("invalid override action")
	ErrInvalidKind        = errors.New("invalid entry kind")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRepositoryConflict = errors.New("repository invariant conflict")
)

// TransitionError reports a status edge missing from the transition table.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s: %s", e.Entity, e.From, e.To, ErrInvalidTransition.Error())
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// MissingFieldsError lists the fields a submission lacks.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequiredField.Error(), strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingRequiredField
}
