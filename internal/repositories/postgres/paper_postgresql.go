package postgres

import (
	"context"
	"fmt"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"gorm.io/gorm"
)

type PaperPostgreSQL struct {
	db *gorm.DB
}

func NewPaperPostgreSQL(db *gorm.DB) repositories.PaperRepository {
	return &PaperPostgreSQL{db: db}
}

// CreateWithEntries persists the paper header and its entries as a single
// transaction. The caller has already resolved the question ids; a missing
// one still fails here on the FK and rolls the header back.
func (p *PaperPostgreSQL) CreateWithEntries(ctx context.Context, paper *models.QuestionPaper, entries []models.PaperEntry) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		paper.Version = 1
		if err := tx.Create(paper).Error; err != nil {
			return fmt.Errorf("failed to create question paper: %w", err)
		}

		if len(entries) == 0 {
			return nil
		}
		for i := range entries {
			entries[i].QuestionPaperID = paper.ID
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("failed to create paper entries: %w", err)
		}
		return nil
	})
}

func (p *PaperPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuestionPaper, error) {
	var paper models.QuestionPaper
	err := p.db.WithContext(ctx).First(&paper, id).Error
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

func (p *PaperPostgreSQL) GetByIDWithDetails(ctx context.Context, id uint) (*models.QuestionPaper, error) {
	var paper models.QuestionPaper
	err := p.db.WithContext(ctx).
		Preload("Subject").
		Preload("Grade").
		First(&paper, id).Error
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

func (p *PaperPostgreSQL) Update(ctx context.Context, paper *models.QuestionPaper) error {
	if err := p.db.WithContext(ctx).Save(paper).Error; err != nil {
		return fmt.Errorf("failed to update question paper: %w", err)
	}
	return nil
}

// ReplaceEntries swaps the entry set inside one transaction. The version
// guard makes concurrent replaces lose cleanly instead of interleaving
// their delete and insert phases.
func (p *PaperPostgreSQL) ReplaceEntries(ctx context.Context, paperID uint, expectedVersion int, entries []models.PaperEntry) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.QuestionPaper{}).
			Where("id = ? AND version = ?", paperID, expectedVersion).
			Update("version", expectedVersion+1)
		if result.Error != nil {
			return fmt.Errorf("failed to bump paper version: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Zero rows means either the paper is gone or the version is
			// stale; the caller needs to know which.
			var count int64
			if err := tx.Model(&models.QuestionPaper{}).
				Where("id = ?", paperID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check paper existence: %w", err)
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return repositories.ErrVersionMismatch
		}

		if err := tx.Where("question_paper_id = ?", paperID).
			Delete(&models.PaperEntry{}).Error; err != nil {
			return fmt.Errorf("failed to clear paper entries: %w", err)
		}

		if len(entries) == 0 {
			return nil
		}
		for i := range entries {
			entries[i].ID = 0
			entries[i].QuestionPaperID = paperID
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("failed to insert paper entries: %w", err)
		}
		return nil
	})
}

func (p *PaperPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := p.db.WithContext(ctx).Delete(&models.QuestionPaper{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question paper: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (p *PaperPostgreSQL) List(ctx context.Context, filters repositories.PaperFilters) ([]*models.QuestionPaper, int64, error) {
	query := p.db.WithContext(ctx).Model(&models.QuestionPaper{})

	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.GradeID != nil {
		query = query.Where("grade_id = ?", *filters.GradeID)
	}
	if filters.AssessmentType != nil {
		query = query.Where("assessment_type = ?", *filters.AssessmentType)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count question papers: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var papers []*models.QuestionPaper
	err := query.
		Preload("Subject").
		Preload("Grade").
		Order("created_at DESC").
		Find(&papers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list question papers: %w", err)
	}

	return papers, total, nil
}

// GetEntries returns the paper's entries ordered by question_order, ties
// broken by insertion order. The question is preloaded where it still
// exists; entries whose question was deleted come back with a nil Question
// and the caller decides what to do with them.
func (p *PaperPostgreSQL) GetEntries(ctx context.Context, paperID uint) ([]models.PaperEntry, error) {
	var entries []models.PaperEntry
	err := p.db.WithContext(ctx).
		Where("question_paper_id = ?", paperID).
		Preload("Question").
		Order("question_order ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch paper entries: %w", err)
	}
	return entries, nil
}
