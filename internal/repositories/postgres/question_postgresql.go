package postgres

import (
	"context"
	"fmt"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	if err := q.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// CreateWithSubQuestions persists a parent and its inline sub-questions in
// one transaction so a failed sub-question insert never leaves a half-made
// composite.
func (q *QuestionPostgreSQL) CreateWithSubQuestions(ctx context.Context, question *models.Question, subQuestions []*models.Question) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}

		for _, sq := range subQuestions {
			sq.ParentID = &question.ID
			sq.CreatedBy = question.CreatedBy
		}
		if len(subQuestions) > 0 {
			if err := tx.Create(subQuestions).Error; err != nil {
				return fmt.Errorf("failed to create sub-questions: %w", err)
			}
		}
		return nil
	})
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := q.db.WithContext(ctx).
		Preload("Topic").
		First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var questions []*models.Question
	err := q.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions by ids: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	if err := q.db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

// Delete soft-deletes the question. Sub-questions and paper entries follow
// via the declared FK cascade, not application code.
func (q *QuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := q.db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (q *QuestionPostgreSQL) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	query := q.db.WithContext(ctx).Model(&models.Question{})

	if len(filters.TopicIDs) > 0 {
		query = query.Where("topic_id IN ?", filters.TopicIDs)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.CognitiveLevel != nil {
		query = query.Where("cognitive_level = ?", *filters.CognitiveLevel)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.ParentID != nil {
		query = query.Where("parent_id = ?", *filters.ParentID)
	} else if filters.TopLevelOnly {
		query = query.Where("parent_id IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var questions []*models.Question
	err := query.
		Preload("Topic").
		Preload("Topic.Grade").
		Preload("Topic.Subject").
		Order("id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, total, nil
}

// GetSubQuestions batch-fetches every sub-question whose parent is in
// parentIDs. Ordering within a parent is refined in the service with the
// numeric-aware comparator; the SQL ordering just keeps output stable.
func (q *QuestionPostgreSQL) GetSubQuestions(ctx context.Context, parentIDs []uint) ([]*models.Question, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var subQuestions []*models.Question
	err := q.db.WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Order("number ASC, id ASC").
		Find(&subQuestions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sub-questions: %w", err)
	}
	return subQuestions, nil
}
