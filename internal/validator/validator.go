package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/edupaper/authoring-service/internal/errors"
	"github.com/edupaper/authoring-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// ValidationErrors re-exports the shared error collection for callers that
// only import this package.
type ValidationErrors = apperrors.ValidationErrors

// Validator wraps struct-tag validation and the question-specific rules.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// GetQuestionValidator returns the question validator
func (v *Validator) GetQuestionValidator() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("difficulty_level", validateDifficultyLevel)
	validate.RegisterValidation("cognitive_level", validateCognitiveLevel)
	validate.RegisterValidation("assessment_status", validateAssessmentStatus)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.MultipleChoice,
		models.ShortAnswer,
		models.Essay,
		models.TrueFalse,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateDifficultyLevel(fl validator.FieldLevel) bool {
	validLevels := []models.DifficultyLevel{
		models.DifficultyEasy,
		models.DifficultyMedium,
		models.DifficultyHard,
	}

	value := fl.Field().String()
	for _, validLevel := range validLevels {
		if string(validLevel) == value {
			return true
		}
	}
	return false
}

func validateCognitiveLevel(fl validator.FieldLevel) bool {
	validLevels := []models.CognitiveLevel{
		models.CognitiveKnowledge,
		models.CognitiveComprehension,
		models.CognitiveApplication,
		models.CognitiveAnalysis,
		models.CognitiveSynthesis,
		models.CognitiveEvaluation,
	}

	value := fl.Field().String()
	for _, validLevel := range validLevels {
		if string(validLevel) == value {
			return true
		}
	}
	return false
}

func validateAssessmentStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.StudentAssessmentStatus{
		models.StatusAssigned,
		models.StatusInProgress,
		models.StatusCompleted,
		models.StatusMarked,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}
