package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/edupaper/authoring-service/internal/events"
	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"github.com/edupaper/authoring-service/internal/validator"
)

// AssessmentService assigns papers to students and reduces their completion
// records into summary statistics.
type AssessmentService interface {
	Create(ctx context.Context, req *CreateAssessmentRequest, actor Actor) (*models.Assessment, error)
	GetByID(ctx context.Context, id uint) (*models.Assessment, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.Assessment, error)
	Update(ctx context.Context, id uint, req *UpdateAssessmentRequest, actor Actor) (*models.Assessment, error)
	Delete(ctx context.Context, id uint, actor Actor) error
	List(ctx context.Context, req *ListAssessmentsRequest) (*AssessmentListResponse, error)
	GetResults(ctx context.Context, id uint) (*AssessmentResultsResponse, error)
	// PublishDueSoonReminders emits a due-soon event for every assessment
	// whose due date falls within the window and that still has incomplete
	// student records. Returns the number of events published.
	PublishDueSoonReminders(ctx context.Context, window time.Duration) (int, error)
}

type CreateAssessmentRequest struct {
	QuestionPaperID uint       `json:"question_paper_id" validate:"required"`
	DueDate         *time.Time `json:"due_date"`
	StudentIDs      []uint     `json:"student_ids" validate:"required,min=1,dive,required"`
}

type UpdateAssessmentRequest struct {
	DueDate *time.Time `json:"due_date"`
}

type ListAssessmentsRequest struct {
	QuestionPaperID *uint   `json:"question_paper_id"`
	AssignedBy      *string `json:"assigned_by"`
	Page            int     `json:"page"`
	Limit           int     `json:"limit"`
}

type AssessmentListResponse struct {
	Assessments []models.Assessment `json:"data"`
	Total       int64               `json:"total"`
	Page        int                 `json:"page"`
	Limit       int                 `json:"limit"`
}

// AssessmentResultsResponse pairs the per-student records, ordered by score
// descending, with the derived statistics block.
type AssessmentResultsResponse struct {
	Results    []models.StudentAssessment  `json:"results"`
	Statistics models.AssessmentStatistics `json:"statistics"`
}

type assessmentService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewAssessmentService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) AssessmentService {
	return &assessmentService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      v,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *assessmentService) Create(ctx context.Context, req *CreateAssessmentRequest, actor Actor) (*models.Assessment, error) {
	s.logger.Info("Creating assessment", "creator_id", actor.ID, "paper_id", req.QuestionPaperID, "students", len(req.StudentIDs))

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	if len(req.StudentIDs) == 0 {
		return nil, ErrAssessmentNoStudents
	}

	paper, err := s.repo.Paper().GetByID(ctx, req.QuestionPaperID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to verify question paper: %w", err)
	}

	assessment := &models.Assessment{
		QuestionPaperID: req.QuestionPaperID,
		AssignedBy:      actor.ID,
		DueDate:         req.DueDate,
	}

	if err := s.repo.Assessment().CreateWithAssignments(ctx, assessment, req.StudentIDs); err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}

	s.logger.Info("Assessment created", "assessment_id", assessment.ID)

	// Notification delivery is downstream; a publish failure must not fail
	// the assignment that already committed.
	event := events.NewAssessmentAssignedEvent(
		assessment.ID,
		paper.ID,
		paper.Title,
		req.DueDate,
		req.StudentIDs,
		actor.ID,
	)
	if err := s.eventPublisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish assessment assigned event",
			"assessment_id", assessment.ID,
			"error", err)
	}

	return assessment, nil
}

func (s *assessmentService) GetByID(ctx context.Context, id uint) (*models.Assessment, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return assessment, nil
}

func (s *assessmentService) GetByIDWithDetails(ctx context.Context, id uint) (*models.Assessment, error) {
	assessment, err := s.repo.Assessment().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment with details: %w", err)
	}
	return assessment, nil
}

func (s *assessmentService) Update(ctx context.Context, id uint, req *UpdateAssessmentRequest, actor Actor) (*models.Assessment, error) {
	s.logger.Info("Updating assessment", "assessment_id", id, "user_id", actor.ID)

	assessment, err := s.repo.Assessment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	if assessment.AssignedBy != actor.ID && !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, id, "assessment", "update", "not owner")
	}

	assessment.DueDate = req.DueDate
	if err := s.repo.Assessment().Update(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to update assessment: %w", err)
	}
	return assessment, nil
}

func (s *assessmentService) Delete(ctx context.Context, id uint, actor Actor) error {
	s.logger.Info("Deleting assessment", "assessment_id", id, "user_id", actor.ID)

	assessment, err := s.repo.Assessment().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssessmentNotFound
		}
		return fmt.Errorf("failed to get assessment: %w", err)
	}

	if assessment.AssignedBy != actor.ID && !actor.IsAdmin() {
		return NewPermissionError(actor.ID, id, "assessment", "delete", "not owner")
	}

	if err := s.repo.Assessment().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}

	paperTitle := ""
	if assessment.QuestionPaper != nil {
		paperTitle = assessment.QuestionPaper.Title
	}
	event := events.NewAssessmentDeletedEvent(id, paperTitle, actor.ID)
	if err := s.eventPublisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish assessment deleted event",
			"assessment_id", id,
			"error", err)
	}

	return nil
}

func (s *assessmentService) List(ctx context.Context, req *ListAssessmentsRequest) (*AssessmentListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	assessments, total, err := s.repo.Assessment().List(ctx, repositories.AssessmentFilters{
		QuestionPaperID: req.QuestionPaperID,
		AssignedBy:      req.AssignedBy,
		Limit:           limit,
		Offset:          (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	result := make([]models.Assessment, 0, len(assessments))
	for _, a := range assessments {
		result = append(result, *a)
	}
	return &AssessmentListResponse{Assessments: result, Total: total, Page: page, Limit: limit}, nil
}

// GetResults returns the per-student records ordered by score descending
// together with the computed statistics.
func (s *assessmentService) GetResults(ctx context.Context, id uint) (*AssessmentResultsResponse, error) {
	if _, err := s.repo.Assessment().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	results, err := s.repo.Assessment().GetStudentAssessments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment results: %w", err)
	}

	return &AssessmentResultsResponse{
		Results:    results,
		Statistics: ComputeStatistics(results),
	}, nil
}

// PublishDueSoonReminders is the periodic reminder sweep. Assessments whose
// every student record is already completed are skipped; the event targets
// only the students still outstanding.
func (s *assessmentService) PublishDueSoonReminders(ctx context.Context, window time.Duration) (int, error) {
	now := time.Now()
	assessments, err := s.repo.Assessment().ListDueBetween(ctx, now, now.Add(window))
	if err != nil {
		return 0, fmt.Errorf("failed to scan for due assessments: %w", err)
	}

	published := 0
	for _, assessment := range assessments {
		if assessment.DueDate == nil {
			continue
		}

		var outstanding []uint
		for _, record := range assessment.StudentAssessments {
			if !record.Status.IsCompleted() {
				outstanding = append(outstanding, record.StudentID)
			}
		}
		if len(outstanding) == 0 {
			continue
		}

		paperTitle := ""
		if assessment.QuestionPaper != nil {
			paperTitle = assessment.QuestionPaper.Title
		}

		event := events.NewAssessmentDueSoonEvent(assessment.ID, paperTitle, *assessment.DueDate, outstanding)
		if err := s.eventPublisher.PublishNotificationEvent(ctx, event); err != nil {
			s.logger.Warn("failed to publish due soon event",
				"assessment_id", assessment.ID,
				"error", err)
			continue
		}
		published++
	}

	s.logger.Info("Due soon sweep finished", "scanned", len(assessments), "published", published)
	return published, nil
}

// ===== STATISTICS =====

// ComputeStatistics reduces a set of completion records into summary
// metrics. A record counts as completed when its status is completed or
// marked; scores only accumulate from completed records that actually have
// one, so partially graded assessments average over the graded subset.
// With no scored records every metric is 0 and the lowest-score sentinel
// never escapes.
func ComputeStatistics(records []models.StudentAssessment) models.AssessmentStatistics {
	stats := models.AssessmentStatistics{
		TotalStudents: len(records),
	}

	scoredCount := 0
	totalScore := 0
	lowest := math.MaxInt

	for _, record := range records {
		if !record.Status.IsCompleted() {
			continue
		}
		stats.CompletedCount++
		if record.Score == nil {
			continue
		}
		scoredCount++
		totalScore += *record.Score
		if *record.Score > stats.HighestScore {
			stats.HighestScore = *record.Score
		}
		if *record.Score < lowest {
			lowest = *record.Score
		}
	}

	if scoredCount > 0 {
		stats.AverageScore = float64(totalScore) / float64(scoredCount)
	}
	if lowest != math.MaxInt {
		stats.LowestScore = lowest
	}
	if stats.TotalStudents > 0 {
		stats.CompletionRate = float64(stats.CompletedCount) / float64(stats.TotalStudents) * 100
	}

	return stats
}
