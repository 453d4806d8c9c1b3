package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"gorm.io/gorm"
)

type AssessmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssessmentPostgreSQL(db *gorm.DB) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{db: db}
}

// CreateWithAssignments persists the assessment and one StudentAssessment
// per student in a single transaction.
func (a *AssessmentPostgreSQL) CreateWithAssignments(ctx context.Context, assessment *models.Assessment, studentIDs []uint) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(assessment).Error; err != nil {
			return fmt.Errorf("failed to create assessment: %w", err)
		}

		if len(studentIDs) == 0 {
			return nil
		}
		assignments := make([]models.StudentAssessment, 0, len(studentIDs))
		for _, studentID := range studentIDs {
			assignments = append(assignments, models.StudentAssessment{
				StudentID:    studentID,
				AssessmentID: assessment.ID,
				Status:       models.StatusAssigned,
			})
		}
		if err := tx.Create(&assignments).Error; err != nil {
			return fmt.Errorf("failed to create student assignments: %w", err)
		}
		return nil
	})
}

func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	err := a.db.WithContext(ctx).First(&assessment, id).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) GetByIDWithDetails(ctx context.Context, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	err := a.db.WithContext(ctx).
		Preload("QuestionPaper").
		Preload("QuestionPaper.Subject").
		Preload("QuestionPaper.Grade").
		First(&assessment, id).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) Update(ctx context.Context, assessment *models.Assessment) error {
	if err := a.db.WithContext(ctx).Save(assessment).Error; err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}
	return nil
}

func (a *AssessmentPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := a.db.WithContext(ctx).Delete(&models.Assessment{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete assessment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *AssessmentPostgreSQL) List(ctx context.Context, filters repositories.AssessmentFilters) ([]*models.Assessment, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.Assessment{})

	if filters.QuestionPaperID != nil {
		query = query.Where("question_paper_id = ?", *filters.QuestionPaperID)
	}
	if filters.AssignedBy != nil {
		query = query.Where("assigned_by = ?", *filters.AssignedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assessments: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var assessments []*models.Assessment
	err := query.
		Preload("QuestionPaper").
		Preload("QuestionPaper.Subject").
		Preload("QuestionPaper.Grade").
		Order("created_at DESC").
		Find(&assessments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assessments: %w", err)
	}

	return assessments, total, nil
}

// GetStudentAssessments returns completion records ordered for display:
// score descending, null scores last.
func (a *AssessmentPostgreSQL) GetStudentAssessments(ctx context.Context, assessmentID uint) ([]models.StudentAssessment, error) {
	var records []models.StudentAssessment
	err := a.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Preload("Student").
		Order("score DESC NULLS LAST, student_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student assessments: %w", err)
	}
	return records, nil
}

func (a *AssessmentPostgreSQL) ListDueBetween(ctx context.Context, from, to time.Time) ([]*models.Assessment, error) {
	var assessments []*models.Assessment
	err := a.db.WithContext(ctx).
		Where("due_date > ? AND due_date <= ?", from, to).
		Preload("QuestionPaper").
		Preload("StudentAssessments").
		Find(&assessments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due assessments: %w", err)
	}
	return assessments, nil
}
