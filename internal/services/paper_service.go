package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"github.com/edupaper/authoring-service/internal/validator"
)

// PaperService composes questions into ordered papers and resolves stored
// papers back into fully joined structures.
//
// Dangling question references are handled asymmetrically. Composing from
// explicit ids fails hard: the caller named a question that does not exist
// and can fix the request. Resolving a stored paper instead omits entries
// whose question has since been deleted; the paper was valid when authored
// and a later deletion must not break every read.
type PaperService interface {
	Create(ctx context.Context, req *CreatePaperRequest, actor Actor) (*PaperView, error)
	GetByID(ctx context.Context, id uint) (*models.QuestionPaper, error)
	Resolve(ctx context.Context, id uint) (*PaperView, error)
	Update(ctx context.Context, id uint, req *UpdatePaperRequest, actor Actor) (*PaperView, error)
	Delete(ctx context.Context, id uint, actor Actor) error
	List(ctx context.Context, req *ListPapersRequest) (*PaperListResponse, error)
}

type CreatePaperRequest struct {
	Title          string                     `json:"title" validate:"required,min=1,max=200"`
	SubjectID      uint                       `json:"subject_id" validate:"required"`
	GradeID        uint                       `json:"grade_id" validate:"required"`
	AssessmentType *string                    `json:"assessment_type"`
	AssessmentDate *time.Time                 `json:"assessment_date"`
	Instructions   *string                    `json:"instructions"`
	Questions      []repositories.EntrySpec   `json:"questions" validate:"omitempty,dive"`
}

type UpdatePaperRequest struct {
	Title          *string    `json:"title" validate:"omitempty,min=1,max=200"`
	SubjectID      *uint      `json:"subject_id"`
	GradeID        *uint      `json:"grade_id"`
	AssessmentType *string    `json:"assessment_type"`
	AssessmentDate *time.Time `json:"assessment_date"`
	Instructions   *string    `json:"instructions"`

	// A non-nil Questions slice replaces the full entry set. Version must
	// match the paper's current version; a mismatch means a concurrent
	// editor won and the caller must reload.
	Questions *[]repositories.EntrySpec `json:"questions"`
	Version   int                       `json:"version" validate:"omitempty,min=1"`
}

type ListPapersRequest struct {
	SubjectID      *uint   `json:"subject_id"`
	GradeID        *uint   `json:"grade_id"`
	AssessmentType *string `json:"assessment_type"`
	CreatedBy      *string `json:"created_by"`
	Page           int     `json:"page"`
	Limit          int     `json:"limit"`
}

// PaperEntryView is one resolved slot in a paper: the normalized question
// plus its 1-based order on the paper.
type PaperEntryView struct {
	QuestionView
	Order int `json:"order"`
}

type PaperView struct {
	ID             uint             `json:"id"`
	Title          string           `json:"title"`
	SubjectID      uint             `json:"subject_id"`
	GradeID        uint             `json:"grade_id"`
	AssessmentType *string          `json:"assessment_type"`
	AssessmentDate *time.Time       `json:"assessment_date"`
	Instructions   *string          `json:"instructions"`
	CreatedBy      string           `json:"created_by"`
	Version        int              `json:"version"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Subject        *models.Subject  `json:"subject,omitempty"`
	Grade          *models.Grade    `json:"grade,omitempty"`
	Questions      []PaperEntryView `json:"questions"`
	QuestionCount  int              `json:"question_count"`
	TotalMarks     int              `json:"total_marks"`
}

type PaperListResponse struct {
	Papers []models.QuestionPaper `json:"data"`
	Total  int64                  `json:"total"`
	Page   int                    `json:"page"`
	Limit  int                    `json:"limit"`
}

type paperService struct {
	repo       repositories.Repository
	normalizer *ContentNormalizer
	logger     *slog.Logger
	validator  *validator.Validator
}

func NewPaperService(repo repositories.Repository, normalizer *ContentNormalizer, logger *slog.Logger, v *validator.Validator) PaperService {
	return &paperService{
		repo:       repo,
		normalizer: normalizer,
		logger:     logger,
		validator:  v,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *paperService) Create(ctx context.Context, req *CreatePaperRequest, actor Actor) (*PaperView, error) {
	s.logger.Info("Creating question paper", "creator_id", actor.ID, "title", req.Title, "questions", len(req.Questions))

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	entries, err := s.buildEntries(ctx, req.Questions)
	if err != nil {
		return nil, err
	}

	paper := &models.QuestionPaper{
		Title:          req.Title,
		SubjectID:      req.SubjectID,
		GradeID:        req.GradeID,
		AssessmentType: req.AssessmentType,
		AssessmentDate: req.AssessmentDate,
		Instructions:   req.Instructions,
		CreatedBy:      actor.ID,
	}

	if err := s.repo.Paper().CreateWithEntries(ctx, paper, entries); err != nil {
		return nil, fmt.Errorf("failed to create question paper: %w", err)
	}

	s.logger.Info("Question paper created", "paper_id", paper.ID)
	return s.Resolve(ctx, paper.ID)
}

func (s *paperService) GetByID(ctx context.Context, id uint) (*models.QuestionPaper, error) {
	paper, err := s.repo.Paper().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to get question paper: %w", err)
	}
	return paper, nil
}

// Resolve returns the fully joined paper: header, entries in order, each
// with its normalized question and sub-questions, plus derived totals.
func (s *paperService) Resolve(ctx context.Context, id uint) (*PaperView, error) {
	paper, err := s.repo.Paper().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to get question paper: %w", err)
	}

	entries, err := s.repo.Paper().GetEntries(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get paper entries: %w", err)
	}

	resolved := make([]PaperEntryView, 0, len(entries))
	parentIDs := make([]uint, 0, len(entries))
	for _, entry := range entries {
		if entry.Question == nil {
			// The question was deleted after the paper was authored.
			s.logger.Warn("omitting unresolved paper entry",
				"paper_id", id,
				"question_id", entry.QuestionID)
			continue
		}
		parentIDs = append(parentIDs, entry.Question.ID)
	}

	subsByParent := make(map[uint][]*models.Question)
	if len(parentIDs) > 0 {
		subQuestions, err := s.repo.Question().GetSubQuestions(ctx, parentIDs)
		if err != nil {
			s.logger.Warn("failed to fetch sub-questions for paper", "paper_id", id, "error", err)
		} else {
			for _, sq := range subQuestions {
				if sq.ParentID == nil {
					continue
				}
				subsByParent[*sq.ParentID] = append(subsByParent[*sq.ParentID], sq)
			}
			for _, subs := range subsByParent {
				sortByQuestionNumber(subs)
			}
		}
	}

	totalMarks := 0
	for _, entry := range entries {
		if entry.Question == nil {
			continue
		}
		totalMarks += entry.Question.MarkValue()
		resolved = append(resolved, PaperEntryView{
			QuestionView: s.normalizer.NormalizeWithSubQuestions(entry.Question, subsByParent[entry.Question.ID]),
			Order:        entry.Order,
		})
	}

	return &PaperView{
		ID:             paper.ID,
		Title:          paper.Title,
		SubjectID:      paper.SubjectID,
		GradeID:        paper.GradeID,
		AssessmentType: paper.AssessmentType,
		AssessmentDate: paper.AssessmentDate,
		Instructions:   paper.Instructions,
		CreatedBy:      paper.CreatedBy,
		Version:        paper.Version,
		CreatedAt:      paper.CreatedAt,
		UpdatedAt:      paper.UpdatedAt,
		Subject:        paper.Subject,
		Grade:          paper.Grade,
		Questions:      resolved,
		QuestionCount:  len(resolved),
		TotalMarks:     totalMarks,
	}, nil
}

func (s *paperService) Update(ctx context.Context, id uint, req *UpdatePaperRequest, actor Actor) (*PaperView, error) {
	s.logger.Info("Updating question paper", "paper_id", id, "user_id", actor.ID)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	paper, err := s.repo.Paper().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to get question paper: %w", err)
	}

	if paper.CreatedBy != actor.ID && !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, id, "question_paper", "update", "not owner")
	}

	s.applyPaperUpdate(paper, req)
	if err := s.repo.Paper().Update(ctx, paper); err != nil {
		return nil, fmt.Errorf("failed to update question paper: %w", err)
	}

	if req.Questions != nil {
		entries, err := s.buildEntries(ctx, *req.Questions)
		if err != nil {
			return nil, err
		}

		expectedVersion := req.Version
		if expectedVersion == 0 {
			expectedVersion = paper.Version
		}

		if err := s.repo.Paper().ReplaceEntries(ctx, id, expectedVersion, entries); err != nil {
			if errors.Is(err, repositories.ErrVersionMismatch) {
				return nil, ErrPaperStaleVersion
			}
			if repositories.IsNotFoundError(err) {
				return nil, ErrPaperNotFound
			}
			return nil, fmt.Errorf("failed to replace paper entries: %w", err)
		}
	}

	return s.Resolve(ctx, id)
}

func (s *paperService) Delete(ctx context.Context, id uint, actor Actor) error {
	s.logger.Info("Deleting question paper", "paper_id", id, "user_id", actor.ID)

	paper, err := s.repo.Paper().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrPaperNotFound
		}
		return fmt.Errorf("failed to get question paper: %w", err)
	}

	if paper.CreatedBy != actor.ID && !actor.IsAdmin() {
		return NewPermissionError(actor.ID, id, "question_paper", "delete", "not owner")
	}

	if err := s.repo.Paper().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question paper: %w", err)
	}
	return nil
}

func (s *paperService) List(ctx context.Context, req *ListPapersRequest) (*PaperListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	papers, total, err := s.repo.Paper().List(ctx, repositories.PaperFilters{
		SubjectID:      req.SubjectID,
		GradeID:        req.GradeID,
		AssessmentType: req.AssessmentType,
		CreatedBy:      req.CreatedBy,
		Limit:          limit,
		Offset:         (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list question papers: %w", err)
	}

	result := make([]models.QuestionPaper, 0, len(papers))
	for _, p := range papers {
		result = append(result, *p)
	}
	return &PaperListResponse{Papers: result, Total: total, Page: page, Limit: limit}, nil
}

// ===== HELPERS =====

// buildEntries verifies every referenced question exists and materializes
// the entry rows. Order 0 in a spec falls back to the 1-based position.
func (s *paperService) buildEntries(ctx context.Context, specs []repositories.EntrySpec) ([]models.PaperEntry, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(specs))
	for _, spec := range specs {
		ids = append(ids, spec.QuestionID)
	}

	questions, err := s.repo.Question().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to verify paper questions: %w", err)
	}

	existing := make(map[uint]struct{}, len(questions))
	for _, q := range questions {
		existing[q.ID] = struct{}{}
	}

	var missing []uint
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, NewReferentialError("question", missing)
	}

	entries := make([]models.PaperEntry, 0, len(specs))
	for i, spec := range specs {
		order := spec.Order
		if order == 0 {
			order = i + 1
		}
		entries = append(entries, models.PaperEntry{
			QuestionID: spec.QuestionID,
			Order:      order,
		})
	}
	return entries, nil
}

func (s *paperService) applyPaperUpdate(paper *models.QuestionPaper, req *UpdatePaperRequest) {
	if req.Title != nil {
		paper.Title = *req.Title
	}
	if req.SubjectID != nil {
		paper.SubjectID = *req.SubjectID
	}
	if req.GradeID != nil {
		paper.GradeID = *req.GradeID
	}
	if req.AssessmentType != nil {
		paper.AssessmentType = req.AssessmentType
	}
	if req.AssessmentDate != nil {
		paper.AssessmentDate = req.AssessmentDate
	}
	if req.Instructions != nil {
		paper.Instructions = req.Instructions
	}
}
