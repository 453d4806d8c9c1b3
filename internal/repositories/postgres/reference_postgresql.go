package postgres

import (
	"context"
	"fmt"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"gorm.io/gorm"
)

type ReferencePostgreSQL struct {
	db *gorm.DB
}

func NewReferencePostgreSQL(db *gorm.DB) repositories.ReferenceRepository {
	return &ReferencePostgreSQL{db: db}
}

func (r *ReferencePostgreSQL) ListGrades(ctx context.Context) ([]models.Grade, error) {
	var grades []models.Grade
	if err := r.db.WithContext(ctx).Order("level ASC").Find(&grades).Error; err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	return grades, nil
}

func (r *ReferencePostgreSQL) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

func (r *ReferencePostgreSQL) ListTopics(ctx context.Context, filters repositories.TopicFilters) ([]models.Topic, error) {
	query := r.db.WithContext(ctx).Model(&models.Topic{})

	if filters.GradeID != nil {
		query = query.Where("grade_id = ?", *filters.GradeID)
	}
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}

	var topics []models.Topic
	if err := query.Order("name ASC").Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

func (r *ReferencePostgreSQL) CreateGrade(ctx context.Context, grade *models.Grade) error {
	if err := r.db.WithContext(ctx).Create(grade).Error; err != nil {
		return fmt.Errorf("failed to create grade: %w", err)
	}
	return nil
}

func (r *ReferencePostgreSQL) CreateSubject(ctx context.Context, subject *models.Subject) error {
	if err := r.db.WithContext(ctx).Create(subject).Error; err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}
	return nil
}

func (r *ReferencePostgreSQL) CreateTopic(ctx context.Context, topic *models.Topic) error {
	if err := r.db.WithContext(ctx).Create(topic).Error; err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}
