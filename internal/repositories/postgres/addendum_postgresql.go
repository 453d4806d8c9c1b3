package postgres

import (
	"context"
	"fmt"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"gorm.io/gorm"
)

type AddendumPostgreSQL struct {
	db *gorm.DB
}

func NewAddendumPostgreSQL(db *gorm.DB) repositories.AddendumRepository {
	return &AddendumPostgreSQL{db: db}
}

func (a *AddendumPostgreSQL) CreateForQuestion(ctx context.Context, addendum *models.QuestionAddendum) error {
	if err := a.db.WithContext(ctx).Create(addendum).Error; err != nil {
		return fmt.Errorf("failed to create question addendum: %w", err)
	}
	return nil
}

func (a *AddendumPostgreSQL) ListForQuestion(ctx context.Context, questionID uint) ([]models.QuestionAddendum, error) {
	var addendums []models.QuestionAddendum
	err := a.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at DESC").
		Find(&addendums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list question addendums: %w", err)
	}
	return addendums, nil
}

func (a *AddendumPostgreSQL) CreateForPaper(ctx context.Context, addendum *models.PaperAddendum) error {
	if err := a.db.WithContext(ctx).Create(addendum).Error; err != nil {
		return fmt.Errorf("failed to create paper addendum: %w", err)
	}
	return nil
}

func (a *AddendumPostgreSQL) ListForPaper(ctx context.Context, paperID uint) ([]models.PaperAddendum, error) {
	var addendums []models.PaperAddendum
	err := a.db.WithContext(ctx).
		Where("question_paper_id = ?", paperID).
		Order("created_at DESC").
		Find(&addendums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list paper addendums: %w", err)
	}
	return addendums, nil
}
