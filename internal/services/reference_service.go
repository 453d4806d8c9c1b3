package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edupaper/authoring-service/internal/cache"
	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"github.com/edupaper/authoring-service/internal/validator"
)

const (
	gradesCacheKey   = "reference:grades"
	subjectsCacheKey = "reference:subjects"
)

// referenceCacheTTL bounds staleness of the lookup tables. They change
// rarely and writes invalidate eagerly, so an hour is generous.
const referenceCacheTTL = time.Hour

// ReferenceService serves the curriculum lookup tables. Reads go through
// the cache; writes invalidate it.
type ReferenceService interface {
	ListGrades(ctx context.Context) ([]models.Grade, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	ListTopics(ctx context.Context, gradeID, subjectID *uint) ([]models.Topic, error)
	CreateGrade(ctx context.Context, req *CreateGradeRequest, actor Actor) (*models.Grade, error)
	CreateSubject(ctx context.Context, req *CreateSubjectRequest, actor Actor) (*models.Subject, error)
	CreateTopic(ctx context.Context, req *CreateTopicRequest, actor Actor) (*models.Topic, error)
}

type CreateGradeRequest struct {
	Level string `json:"level" validate:"required,max=50"`
}

type CreateSubjectRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreateTopicRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	GradeID   uint   `json:"grade_id" validate:"required"`
	SubjectID uint   `json:"subject_id" validate:"required"`
}

type referenceService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewReferenceService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, v *validator.Validator) ReferenceService {
	return &referenceService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		validator: v,
	}
}

func (s *referenceService) ListGrades(ctx context.Context) ([]models.Grade, error) {
	var grades []models.Grade
	if err := s.cache.Get(ctx, gradesCacheKey, &grades); err == nil {
		return grades, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("grade cache read failed, falling back to store", "error", err)
	}

	grades, err := s.repo.Reference().ListGrades(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}

	if err := s.cache.Set(ctx, gradesCacheKey, grades, referenceCacheTTL); err != nil {
		s.logger.Warn("grade cache write failed", "error", err)
	}
	return grades, nil
}

func (s *referenceService) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := s.cache.Get(ctx, subjectsCacheKey, &subjects); err == nil {
		return subjects, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("subject cache read failed, falling back to store", "error", err)
	}

	subjects, err := s.repo.Reference().ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}

	if err := s.cache.Set(ctx, subjectsCacheKey, subjects, referenceCacheTTL); err != nil {
		s.logger.Warn("subject cache write failed", "error", err)
	}
	return subjects, nil
}

func (s *referenceService) ListTopics(ctx context.Context, gradeID, subjectID *uint) ([]models.Topic, error) {
	key := topicsCacheKey(gradeID, subjectID)

	var topics []models.Topic
	if err := s.cache.Get(ctx, key, &topics); err == nil {
		return topics, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("topic cache read failed, falling back to store", "error", err)
	}

	topics, err := s.repo.Reference().ListTopics(ctx, repositories.TopicFilters{
		GradeID:   gradeID,
		SubjectID: subjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}

	if err := s.cache.Set(ctx, key, topics, referenceCacheTTL); err != nil {
		s.logger.Warn("topic cache write failed", "error", err)
	}
	return topics, nil
}

func (s *referenceService) CreateGrade(ctx context.Context, req *CreateGradeRequest, actor Actor) (*models.Grade, error) {
	if !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, 0, "grade", "create", "admin role required")
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	grade := &models.Grade{Level: req.Level}
	if err := s.repo.Reference().CreateGrade(ctx, grade); err != nil {
		return nil, fmt.Errorf("failed to create grade: %w", err)
	}

	if err := s.cache.Delete(ctx, gradesCacheKey); err != nil {
		s.logger.Warn("grade cache invalidation failed", "error", err)
	}
	return grade, nil
}

func (s *referenceService) CreateSubject(ctx context.Context, req *CreateSubjectRequest, actor Actor) (*models.Subject, error) {
	if !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, 0, "subject", "create", "admin role required")
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	subject := &models.Subject{Name: req.Name}
	if err := s.repo.Reference().CreateSubject(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	if err := s.cache.Delete(ctx, subjectsCacheKey); err != nil {
		s.logger.Warn("subject cache invalidation failed", "error", err)
	}
	return subject, nil
}

func (s *referenceService) CreateTopic(ctx context.Context, req *CreateTopicRequest, actor Actor) (*models.Topic, error) {
	if !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, 0, "topic", "create", "admin role required")
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	topic := &models.Topic{
		Name:      req.Name,
		GradeID:   req.GradeID,
		SubjectID: req.SubjectID,
	}
	if err := s.repo.Reference().CreateTopic(ctx, topic); err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	if err := s.cache.DeletePattern(ctx, "reference:topics:*"); err != nil {
		s.logger.Warn("topic cache invalidation failed", "error", err)
	}
	return topic, nil
}

func topicsCacheKey(gradeID, subjectID *uint) string {
	grade, subject := "all", "all"
	if gradeID != nil {
		grade = fmt.Sprintf("%d", *gradeID)
	}
	if subjectID != nil {
		subject = fmt.Sprintf("%d", *subjectID)
	}
	return fmt.Sprintf("reference:topics:%s:%s", grade, subject)
}
