package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"github.com/edupaper/authoring-service/internal/validator"
)

type StudentService interface {
	Create(ctx context.Context, req *CreateStudentRequest, actor Actor) (*models.Student, error)
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	Update(ctx context.Context, id uint, req *UpdateStudentRequest, actor Actor) (*models.Student, error)
	Delete(ctx context.Context, id uint, actor Actor) error
	List(ctx context.Context, req *ListStudentsRequest) (*StudentListResponse, error)
	GetAssessments(ctx context.Context, studentID uint) ([]models.StudentAssessment, error)
}

type CreateStudentRequest struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Grade string  `json:"grade" validate:"omitempty,max=50"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type UpdateStudentRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=200"`
	Grade *string `json:"grade" validate:"omitempty,max=50"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type ListStudentsRequest struct {
	Name  *string `json:"name"`
	Grade *string `json:"grade"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

type StudentListResponse struct {
	Students []models.Student `json:"data"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

type studentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewStudentService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) StudentService {
	return &studentService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *studentService) Create(ctx context.Context, req *CreateStudentRequest, actor Actor) (*models.Student, error) {
	s.logger.Info("Creating student", "creator_id", actor.ID, "name", req.Name)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	student := &models.Student{
		Name:  req.Name,
		Grade: req.Grade,
		Email: req.Email,
	}
	if err := s.repo.Student().Create(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	return student, nil
}

func (s *studentService) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	student, err := s.repo.Student().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

func (s *studentService) Update(ctx context.Context, id uint, req *UpdateStudentRequest, actor Actor) (*models.Student, error) {
	s.logger.Info("Updating student", "student_id", id, "user_id", actor.ID)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	student, err := s.repo.Student().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Grade != nil {
		student.Grade = *req.Grade
	}
	if req.Email != nil {
		student.Email = req.Email
	}

	if err := s.repo.Student().Update(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	return student, nil
}

func (s *studentService) Delete(ctx context.Context, id uint, actor Actor) error {
	s.logger.Info("Deleting student", "student_id", id, "user_id", actor.ID)

	if !actor.IsAdmin() {
		return NewPermissionError(actor.ID, id, "student", "delete", "admin role required")
	}

	if err := s.repo.Student().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("failed to delete student: %w", err)
	}
	return nil
}

func (s *studentService) List(ctx context.Context, req *ListStudentsRequest) (*StudentListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	students, total, err := s.repo.Student().List(ctx, repositories.StudentFilters{
		Name:   req.Name,
		Grade:  req.Grade,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	result := make([]models.Student, 0, len(students))
	for _, st := range students {
		result = append(result, *st)
	}
	return &StudentListResponse{Students: result, Total: total, Page: page, Limit: limit}, nil
}

func (s *studentService) GetAssessments(ctx context.Context, studentID uint) ([]models.StudentAssessment, error) {
	if _, err := s.repo.Student().GetByID(ctx, studentID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	assessments, err := s.repo.Student().GetAssessments(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student assessments: %w", err)
	}
	return assessments, nil
}
