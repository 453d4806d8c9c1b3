package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"github.com/edupaper/authoring-service/internal/storage"
	"github.com/edupaper/authoring-service/internal/validator"
)

// AddendumService attaches supplementary files to questions and papers.
// The binary goes to the object store first; metadata is only written once
// the upload succeeded, so a failed upload leaves no dangling row.
type AddendumService interface {
	UploadForQuestion(ctx context.Context, questionID uint, req *UploadAddendumRequest, actor Actor) (*models.QuestionAddendum, error)
	ListForQuestion(ctx context.Context, questionID uint) ([]models.QuestionAddendum, error)
	UploadForPaper(ctx context.Context, paperID uint, req *UploadAddendumRequest, actor Actor) (*models.PaperAddendum, error)
	ListForPaper(ctx context.Context, paperID uint) ([]models.PaperAddendum, error)
}

type UploadAddendumRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description"`

	Filename    string    `json:"-"`
	ContentType string    `json:"-"`
	Size        int64     `json:"-"`
	Content     io.Reader `json:"-"`
}

type addendumService struct {
	repo      repositories.Repository
	store     storage.ObjectStore
	policy    storage.UploadPolicy
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAddendumService(repo repositories.Repository, store storage.ObjectStore, policy storage.UploadPolicy, logger *slog.Logger, v *validator.Validator) AddendumService {
	return &addendumService{
		repo:      repo,
		store:     store,
		policy:    policy,
		logger:    logger,
		validator: v,
	}
}

func (s *addendumService) UploadForQuestion(ctx context.Context, questionID uint, req *UploadAddendumRequest, actor Actor) (*models.QuestionAddendum, error) {
	s.logger.Info("Uploading question addendum", "question_id", questionID, "user_id", actor.ID, "content_type", req.ContentType)

	if _, err := s.repo.Question().GetByID(ctx, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to verify question: %w", err)
	}

	fileURL, err := s.storeUpload(ctx, req)
	if err != nil {
		return nil, err
	}

	addendum := &models.QuestionAddendum{
		QuestionID:  questionID,
		Title:       req.Title,
		Description: req.Description,
		FileType:    storage.FileTypeFor(req.ContentType),
		FileURL:     fileURL,
		CreatedBy:   actor.ID,
	}
	if err := s.repo.Addendum().CreateForQuestion(ctx, addendum); err != nil {
		return nil, fmt.Errorf("failed to store addendum metadata: %w", err)
	}
	return addendum, nil
}

func (s *addendumService) ListForQuestion(ctx context.Context, questionID uint) ([]models.QuestionAddendum, error) {
	addendums, err := s.repo.Addendum().ListForQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list question addendums: %w", err)
	}
	return addendums, nil
}

func (s *addendumService) UploadForPaper(ctx context.Context, paperID uint, req *UploadAddendumRequest, actor Actor) (*models.PaperAddendum, error) {
	s.logger.Info("Uploading paper addendum", "paper_id", paperID, "user_id", actor.ID, "content_type", req.ContentType)

	if _, err := s.repo.Paper().GetByID(ctx, paperID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to verify question paper: %w", err)
	}

	fileURL, err := s.storeUpload(ctx, req)
	if err != nil {
		return nil, err
	}

	addendum := &models.PaperAddendum{
		QuestionPaperID: paperID,
		Title:           req.Title,
		Description:     req.Description,
		FileType:        storage.FileTypeFor(req.ContentType),
		FileURL:         fileURL,
		CreatedBy:       actor.ID,
	}
	if err := s.repo.Addendum().CreateForPaper(ctx, addendum); err != nil {
		return nil, fmt.Errorf("failed to store addendum metadata: %w", err)
	}
	return addendum, nil
}

func (s *addendumService) ListForPaper(ctx context.Context, paperID uint) ([]models.PaperAddendum, error) {
	addendums, err := s.repo.Addendum().ListForPaper(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to list paper addendums: %w", err)
	}
	return addendums, nil
}

func (s *addendumService) storeUpload(ctx context.Context, req *UploadAddendumRequest) (string, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return "", err
	}
	if err := s.policy.Check(req.ContentType, req.Size); err != nil {
		return "", fmt.Errorf("%w: %s", ErrUploadRejected, err.Error())
	}

	key := storage.ObjectKey(req.Filename)
	fileURL, err := s.store.Put(ctx, key, req.Content, req.Size, req.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to store uploaded file: %w", err)
	}
	return fileURL, nil
}
