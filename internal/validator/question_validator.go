package validator

import (
	"encoding/json"
	"fmt"

	"github.com/edupaper/authoring-service/internal/models"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.Marks == nil {
		return fmt.Errorf("question marks are required")
	}
	if *question.Marks < 0 {
		return fmt.Errorf("question marks must be non-negative")
	}

	if question.Type == "" {
		return fmt.Errorf("question type is required")
	}
	if question.Difficulty == "" {
		return fmt.Errorf("question difficulty is required")
	}

	if len(question.TableData) > 0 {
		if err := v.ValidateTableData(question.TableData); err != nil {
			return err
		}
	}

	return nil
}

// ValidateHierarchy enforces the two-level question hierarchy: a question
// that is itself a sub-question cannot have children.
func (v *QuestionValidator) ValidateHierarchy(parent *models.Question) error {
	if parent.ParentID != nil {
		return fmt.Errorf("question %d is a sub-question and cannot have sub-questions of its own", parent.ID)
	}
	return nil
}

// ValidateSubQuestions validates a batch of sub-questions supplied inline
// with their parent at creation time.
func (v *QuestionValidator) ValidateSubQuestions(subQuestions []*models.Question) error {
	for i, sq := range subQuestions {
		if sq.ParentID != nil {
			return fmt.Errorf("sub-question %d must not carry its own parent_id", i+1)
		}
		if err := v.ValidateQuestion(sq); err != nil {
			return fmt.Errorf("validation failed for sub-question %d: %w", i+1, err)
		}
	}
	return nil
}

// tableShape mirrors the stored table_data document.
type tableShape struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ValidateTableData checks that authored table data is a well-formed
// headers+rows matrix. Stored rows that later fail to parse degrade at
// normalization time instead; this check only gates new writes.
func (v *QuestionValidator) ValidateTableData(raw []byte) error {
	var table tableShape
	if err := json.Unmarshal(raw, &table); err != nil {
		return fmt.Errorf("table_data must be a {headers, rows} document: %w", err)
	}
	if len(table.Headers) == 0 {
		return fmt.Errorf("table_data must have at least one header")
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Headers) {
			return fmt.Errorf("table_data row %d has %d cells, expected %d", i+1, len(row), len(table.Headers))
		}
	}
	return nil
}
