package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"github.com/edupaper/authoring-service/internal/utils"
	"github.com/edupaper/authoring-service/internal/validator"
	"gorm.io/datatypes"
)

// Actor identifies the caller on write paths. ID is the identity provider's
// subject, Role comes from the same token.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin reports whether the actor bypasses ownership checks.
func (a Actor) IsAdmin() bool {
	return a.Role == "admin"
}

// QuestionService manages authorable questions and their two-level
// hierarchy.
type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, actor Actor) (*QuestionView, error)
	GetByID(ctx context.Context, id uint, includeSubQuestions bool) (*QuestionView, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest, actor Actor) (*QuestionView, error)
	Delete(ctx context.Context, id uint, actor Actor) error
	List(ctx context.Context, req *ListQuestionsRequest) (*QuestionListResponse, error)
}

type CreateQuestionRequest struct {
	Number         *string                 `json:"number"`
	Description    *string                 `json:"description"`
	Text           *string                 `json:"text"`
	Latex          *string                 `json:"latex"`
	TableData      json.RawMessage         `json:"table_data"`
	ImageURL       *string                 `json:"image_url"`
	Difficulty     models.DifficultyLevel  `json:"difficulty" validate:"required,difficulty_level"`
	Marks          *int                    `json:"marks" validate:"required,min=0"`
	Type           models.QuestionType     `json:"type" validate:"required,question_type"`
	CognitiveLevel *models.CognitiveLevel  `json:"cognitive_level" validate:"omitempty,cognitive_level"`
	Memo           *string                 `json:"memo"`
	TopicID        *uint                   `json:"topic_id"`
	ParentID       *uint                   `json:"parent_id"`
	SubQuestions   []CreateQuestionRequest `json:"sub_questions" validate:"omitempty,dive"`
}

type UpdateQuestionRequest struct {
	Number         *string                 `json:"number"`
	Description    *string                 `json:"description"`
	Text           *string                 `json:"text"`
	Latex          *string                 `json:"latex"`
	TableData      json.RawMessage         `json:"table_data"`
	ImageURL       *string                 `json:"image_url"`
	Difficulty     *models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty_level"`
	Marks          *int                    `json:"marks" validate:"omitempty,min=0"`
	Type           *models.QuestionType    `json:"type" validate:"omitempty,question_type"`
	CognitiveLevel *models.CognitiveLevel  `json:"cognitive_level" validate:"omitempty,cognitive_level"`
	Memo           *string                 `json:"memo"`
	TopicID        *uint                   `json:"topic_id"`
}

type ListQuestionsRequest struct {
	TopicIDs            []uint                  `json:"topic_ids"`
	Difficulty          *models.DifficultyLevel `json:"difficulty"`
	Type                *models.QuestionType    `json:"type"`
	CognitiveLevel      *models.CognitiveLevel  `json:"cognitive_level"`
	CreatedBy           *string                 `json:"created_by"`
	ParentID            *uint                   `json:"parent_id"`
	IncludeSubQuestions bool                    `json:"include_subquestions"`
	Page                int                     `json:"page"`
	Limit               int                     `json:"limit"`
}

type QuestionListResponse struct {
	Questions []QuestionView `json:"data"`
	Total     int64          `json:"total"`
	Page      int            `json:"page"`
	Limit     int            `json:"limit"`
}

type questionService struct {
	repo       repositories.Repository
	normalizer *ContentNormalizer
	logger     *slog.Logger
	validator  *validator.Validator
}

func NewQuestionService(repo repositories.Repository, normalizer *ContentNormalizer, logger *slog.Logger, v *validator.Validator) QuestionService {
	return &questionService{
		repo:       repo,
		normalizer: normalizer,
		logger:     logger,
		validator:  v,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, actor Actor) (*QuestionView, error) {
	s.logger.Info("Creating question", "creator_id", actor.ID, "type", req.Type, "sub_questions", len(req.SubQuestions))

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	question := s.buildQuestion(req, actor.ID)

	qv := s.validator.GetQuestionValidator()
	if err := qv.ValidateQuestion(question); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	// Attaching to a parent: the parent must exist and be top-level.
	if req.ParentID != nil {
		if len(req.SubQuestions) > 0 {
			return nil, ErrQuestionDepthLimit
		}
		parent, err := s.repo.Question().GetByID(ctx, *req.ParentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, NewReferentialError("question", []uint{*req.ParentID})
			}
			return nil, fmt.Errorf("failed to load parent question: %w", err)
		}
		if err := qv.ValidateHierarchy(parent); err != nil {
			return nil, ErrQuestionDepthLimit
		}
	}

	subQuestions := make([]*models.Question, 0, len(req.SubQuestions))
	for i := range req.SubQuestions {
		sub := s.buildQuestion(&req.SubQuestions[i], actor.ID)
		subQuestions = append(subQuestions, sub)
	}
	if err := qv.ValidateSubQuestions(subQuestions); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	if len(subQuestions) > 0 {
		if err := s.repo.Question().CreateWithSubQuestions(ctx, question, subQuestions); err != nil {
			return nil, fmt.Errorf("failed to create question with sub-questions: %w", err)
		}
	} else {
		if err := s.repo.Question().Create(ctx, question); err != nil {
			return nil, fmt.Errorf("failed to create question: %w", err)
		}
	}

	s.logger.Info("Question created", "question_id", question.ID)

	view := s.normalizer.NormalizeWithSubQuestions(question, subQuestions)
	return &view, nil
}

func (s *questionService) GetByID(ctx context.Context, id uint, includeSubQuestions bool) (*QuestionView, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if !includeSubQuestions || question.ParentID != nil {
		view := s.normalizer.Normalize(question)
		return &view, nil
	}

	subQuestions, err := s.repo.Question().GetSubQuestions(ctx, []uint{question.ID})
	if err != nil {
		// Best effort: the parent is still served without its children.
		s.logger.Warn("failed to fetch sub-questions", "question_id", id, "error", err)
		subQuestions = nil
	}
	sortByQuestionNumber(subQuestions)

	view := s.normalizer.NormalizeWithSubQuestions(question, subQuestions)
	return &view, nil
}

func (s *questionService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest, actor Actor) (*QuestionView, error) {
	s.logger.Info("Updating question", "question_id", id, "user_id", actor.ID)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if question.CreatedBy != actor.ID && !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, id, "question", "update", "not owner")
	}

	s.applyQuestionUpdate(question, req)

	if err := s.validator.GetQuestionValidator().ValidateQuestion(question); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	view := s.normalizer.Normalize(question)
	return &view, nil
}

func (s *questionService) Delete(ctx context.Context, id uint, actor Actor) error {
	s.logger.Info("Deleting question", "question_id", id, "user_id", actor.ID)

	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	if question.CreatedBy != actor.ID && !actor.IsAdmin() {
		return NewPermissionError(actor.ID, id, "question", "delete", "not owner")
	}

	// Sub-questions go with the parent through the cascade.
	if err := s.repo.Question().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

func (s *questionService) List(ctx context.Context, req *ListQuestionsRequest) (*QuestionListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filters := repositories.QuestionFilters{
		TopicIDs:       req.TopicIDs,
		Difficulty:     req.Difficulty,
		Type:           req.Type,
		CognitiveLevel: req.CognitiveLevel,
		CreatedBy:      req.CreatedBy,
		ParentID:       req.ParentID,
		Limit:          limit,
		Offset:         (page - 1) * limit,
	}
	if req.ParentID == nil && req.IncludeSubQuestions {
		// Assembled listings only page over top-level questions; children
		// ride along with their parent.
		filters.TopLevelOnly = true
	}

	questions, total, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	views := make([]QuestionView, 0, len(questions))

	if !req.IncludeSubQuestions {
		for _, q := range questions {
			views = append(views, s.normalizer.Normalize(q))
		}
		return &QuestionListResponse{Questions: views, Total: total, Page: page, Limit: limit}, nil
	}

	// One batch fetch for every parent on the page, grouped in memory.
	parentIDs := make([]uint, 0, len(questions))
	for _, q := range questions {
		if q.ParentID == nil {
			parentIDs = append(parentIDs, q.ID)
		}
	}

	subsByParent := make(map[uint][]*models.Question)
	if len(parentIDs) > 0 {
		subQuestions, err := s.repo.Question().GetSubQuestions(ctx, parentIDs)
		if err != nil {
			// Degrade to parents-only rather than failing the listing.
			s.logger.Warn("failed to fetch sub-questions for listing", "error", err)
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

	for _, q := range questions {
		if q.ParentID == nil {
			views = append(views, s.normalizer.NormalizeWithSubQuestions(q, subsByParent[q.ID]))
		} else {
			views = append(views, s.normalizer.Normalize(q))
		}
	}

	return &QuestionListResponse{Questions: views, Total: total, Page: page, Limit: limit}, nil
}

// ===== HELPERS =====

func (s *questionService) buildQuestion(req *CreateQuestionRequest, creatorID string) *models.Question {
	q := &models.Question{
		Number:         req.Number,
		Description:    req.Description,
		Text:           req.Text,
		Latex:          req.Latex,
		ImageURL:       req.ImageURL,
		Difficulty:     req.Difficulty,
		Marks:          req.Marks,
		Type:           req.Type,
		CognitiveLevel: req.CognitiveLevel,
		Memo:           req.Memo,
		TopicID:        req.TopicID,
		ParentID:       req.ParentID,
		CreatedBy:      creatorID,
	}
	if len(req.TableData) > 0 {
		q.TableData = datatypes.JSON(req.TableData)
	}
	return q
}

func (s *questionService) applyQuestionUpdate(q *models.Question, req *UpdateQuestionRequest) {
	if req.Number != nil {
		q.Number = req.Number
	}
	if req.Description != nil {
		q.Description = req.Description
	}
	if req.Text != nil {
		q.Text = req.Text
	}
	if req.Latex != nil {
		q.Latex = req.Latex
	}
	if len(req.TableData) > 0 {
		q.TableData = datatypes.JSON(req.TableData)
	}
	if req.ImageURL != nil {
		q.ImageURL = req.ImageURL
	}
	if req.Difficulty != nil {
		q.Difficulty = *req.Difficulty
	}
	if req.Marks != nil {
		q.Marks = req.Marks
	}
	if req.Type != nil {
		q.Type = *req.Type
	}
	if req.CognitiveLevel != nil {
		q.CognitiveLevel = req.CognitiveLevel
	}
	if req.Memo != nil {
		q.Memo = req.Memo
	}
	if req.TopicID != nil {
		q.TopicID = req.TopicID
	}
}

// sortByQuestionNumber orders sub-questions by their display number using
// numeric-aware comparison, so "2" sorts before "10". Unnumbered questions
// keep their fetch order at the end.
func sortByQuestionNumber(questions []*models.Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		a, b := questions[i].Number, questions[j].Number
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return utils.CompareQuestionNumbers(*a, *b) < 0
	})
}
