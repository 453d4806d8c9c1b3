package repositories

import (
	"context"
	"time"

	"github.com/edupaper/authoring-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	TopicIDs       []uint                  `json:"topic_ids"`
	Difficulty     *models.DifficultyLevel `json:"difficulty"`
	Type           *models.QuestionType    `json:"type"`
	CognitiveLevel *models.CognitiveLevel  `json:"cognitive_level"`
	CreatedBy      *string                 `json:"created_by"`
	// ParentID filters on a specific parent; TopLevelOnly selects rows with
	// no parent. Setting both is a caller bug; ParentID wins.
	ParentID     *uint `json:"parent_id"`
	TopLevelOnly bool  `json:"top_level_only"`
	Limit        int   `json:"limit"`
	Offset       int   `json:"offset"`
}

type PaperFilters struct {
	SubjectID      *uint   `json:"subject_id"`
	GradeID        *uint   `json:"grade_id"`
	AssessmentType *string `json:"assessment_type"`
	CreatedBy      *string `json:"created_by"`
	Limit          int     `json:"limit"`
	Offset         int     `json:"offset"`
}

type AssessmentFilters struct {
	QuestionPaperID *uint   `json:"question_paper_id"`
	AssignedBy      *string `json:"assigned_by"`
	Limit           int     `json:"limit"`
	Offset          int     `json:"offset"`
}

type StudentFilters struct {
	Name   *string `json:"name"` // matched case-insensitively as a substring
	Grade  *string `json:"grade"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

type TopicFilters struct {
	GradeID   *uint `json:"grade_id"`
	SubjectID *uint `json:"subject_id"`
}

// ===== SHARED HELPER STRUCTS =====

// EntrySpec is the caller-supplied {questionId, order} pair for paper
// composition. Order 0 means "use the 1-based position in the input list".
type EntrySpec struct {
	QuestionID uint `json:"question_id" validate:"required"`
	Order      int  `json:"order" validate:"min=0"`
}

// ===== REPOSITORY INTERFACES =====

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	// CreateWithSubQuestions persists a parent and its inline sub-questions
	// in one transaction.
	CreateWithSubQuestions(ctx context.Context, question *models.Question, subQuestions []*models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)
	// GetSubQuestions batch-fetches all sub-questions whose parent is in
	// parentIDs, ordered by number.
	GetSubQuestions(ctx context.Context, parentIDs []uint) ([]*models.Question, error)
}

type PaperRepository interface {
	// CreateWithEntries persists the paper header and its entries as one
	// transaction; a dangling question id fails the whole operation.
	CreateWithEntries(ctx context.Context, paper *models.QuestionPaper, entries []models.PaperEntry) error
	GetByID(ctx context.Context, id uint) (*models.QuestionPaper, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.QuestionPaper, error)
	Update(ctx context.Context, paper *models.QuestionPaper) error
	// ReplaceEntries swaps the paper's entry set inside one transaction,
	// guarded by the expected version. A stale version returns
	// gorm.ErrRecordNotFound from the guarded update.
	ReplaceEntries(ctx context.Context, paperID uint, expectedVersion int, entries []models.PaperEntry) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters PaperFilters) ([]*models.QuestionPaper, int64, error)
	// GetEntries returns the paper's entries ordered by question_order with
	// their questions preloaded where the question still exists.
	GetEntries(ctx context.Context, paperID uint) ([]models.PaperEntry, error)
}

type AssessmentRepository interface {
	// CreateWithAssignments persists the assessment and one StudentAssessment
	// per student id in one transaction.
	CreateWithAssignments(ctx context.Context, assessment *models.Assessment, studentIDs []uint) error
	GetByID(ctx context.Context, id uint) (*models.Assessment, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.Assessment, error)
	Update(ctx context.Context, assessment *models.Assessment) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters AssessmentFilters) ([]*models.Assessment, int64, error)
	// GetStudentAssessments returns the completion records ordered by score
	// descending with null scores last.
	GetStudentAssessments(ctx context.Context, assessmentID uint) ([]models.StudentAssessment, error)
	// ListDueBetween returns assessments whose due date falls inside
	// (from, to], with paper and student records preloaded.
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*models.Assessment, error)
}

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters StudentFilters) ([]*models.Student, int64, error)
	GetAssessments(ctx context.Context, studentID uint) ([]models.StudentAssessment, error)
}

type ReferenceRepository interface {
	ListGrades(ctx context.Context) ([]models.Grade, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	ListTopics(ctx context.Context, filters TopicFilters) ([]models.Topic, error)
	CreateGrade(ctx context.Context, grade *models.Grade) error
	CreateSubject(ctx context.Context, subject *models.Subject) error
	CreateTopic(ctx context.Context, topic *models.Topic) error
}

type AddendumRepository interface {
	CreateForQuestion(ctx context.Context, addendum *models.QuestionAddendum) error
	ListForQuestion(ctx context.Context, questionID uint) ([]models.QuestionAddendum, error)
	CreateForPaper(ctx context.Context, addendum *models.PaperAddendum) error
	ListForPaper(ctx context.Context, paperID uint) ([]models.PaperAddendum, error)
}

// Repository aggregates access to all repositories.
type Repository interface {
	Question() QuestionRepository
	Paper() PaperRepository
	Assessment() AssessmentRepository
	Student() StudentRepository
	Reference() ReferenceRepository
	Addendum() AddendumRepository
}
