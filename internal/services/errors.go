package services

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/edupaper/authoring-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Question specific errors
	ErrQuestionNotFound     = errors.New("question not found")
	ErrQuestionAccessDenied = errors.New("access denied to question")
	ErrQuestionHasChildren  = errors.New("question cannot become a sub-question - it has sub-questions of its own")
	ErrQuestionDepthLimit   = errors.New("sub-questions cannot have sub-questions")

	// Paper specific errors
	ErrPaperNotFound     = errors.New("question paper not found")
	ErrPaperAccessDenied = errors.New("access denied to question paper")
	ErrPaperStaleVersion = errors.New("question paper was modified concurrently - reload and retry")

	// Assessment specific errors
	ErrAssessmentNotFound     = errors.New("assessment not found")
	ErrAssessmentAccessDenied = errors.New("access denied to assessment")
	ErrAssessmentNoStudents   = errors.New("assessment must be assigned to at least one student")

	// Student / reference errors
	ErrStudentNotFound = errors.New("student not found")
	ErrTopicNotFound   = errors.New("topic not found")

	// Upload errors
	ErrUploadRejected = errors.New("upload rejected by policy")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ReferentialError reports question ids named by a compose or update request
// that do not exist. Compose-time danglers fail hard; this type carries the
// full offending set so the caller can fix the request in one pass.
type ReferentialError struct {
	Resource   string `json:"resource"`
	MissingIDs []uint `json:"missing_ids"`
}

func (re *ReferentialError) Error() string {
	ids := make([]string, len(re.MissingIDs))
	for i, id := range re.MissingIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("referenced %s(s) do not exist: %s", re.Resource, strings.Join(ids, ", "))
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewReferentialError(resource string, missingIDs []uint) *ReferentialError {
	return &ReferentialError{
		Resource:   resource,
		MissingIDs: missingIDs,
	}
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrPaperNotFound) ||
		errors.Is(err, ErrAssessmentNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrTopicNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrQuestionAccessDenied) ||
		errors.Is(err, ErrPaperAccessDenied) ||
		errors.Is(err, ErrAssessmentAccessDenied) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrUploadRejected) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsReferential checks if error carries dangling question references
func IsReferential(err error) bool {
	var re *ReferentialError
	return errors.As(err, &re)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrPaperStaleVersion)
}
