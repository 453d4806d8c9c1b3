package services

import (
	"context"
	"time"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateWithSubQuestions(ctx context.Context, question *models.Question, subQuestions []*models.Question) error {
	args := m.Called(ctx, question, subQuestions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Question), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) GetSubQuestions(ctx context.Context, parentIDs []uint) ([]*models.Question, error) {
	args := m.Called(ctx, parentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

// MockPaperRepository is a mock implementation of PaperRepository
type MockPaperRepository struct {
	mock.Mock
}

func (m *MockPaperRepository) CreateWithEntries(ctx context.Context, paper *models.QuestionPaper, entries []models.PaperEntry) error {
	args := m.Called(ctx, paper, entries)
	return args.Error(0)
}

func (m *MockPaperRepository) GetByID(ctx context.Context, id uint) (*models.QuestionPaper, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionPaper), args.Error(1)
}

func (m *MockPaperRepository) GetByIDWithDetails(ctx context.Context, id uint) (*models.QuestionPaper, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuestionPaper), args.Error(1)
}

func (m *MockPaperRepository) Update(ctx context.Context, paper *models.QuestionPaper) error {
	args := m.Called(ctx, paper)
	return args.Error(0)
}

func (m *MockPaperRepository) ReplaceEntries(ctx context.Context, paperID uint, expectedVersion int, entries []models.PaperEntry) error {
	args := m.Called(ctx, paperID, expectedVersion, entries)
	return args.Error(0)
}

func (m *MockPaperRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaperRepository) List(ctx context.Context, filters repositories.PaperFilters) ([]*models.QuestionPaper, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.QuestionPaper), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaperRepository) GetEntries(ctx context.Context, paperID uint) ([]models.PaperEntry, error) {
	args := m.Called(ctx, paperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaperEntry), args.Error(1)
}

// MockAssessmentRepository is a mock implementation of AssessmentRepository
type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) CreateWithAssignments(ctx context.Context, assessment *models.Assessment, studentIDs []uint) error {
	args := m.Called(ctx, assessment, studentIDs)
	return args.Error(0)
}

func (m *MockAssessmentRepository) GetByID(ctx context.Context, id uint) (*models.Assessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) GetByIDWithDetails(ctx context.Context, id uint) (*models.Assessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) Update(ctx context.Context, assessment *models.Assessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

func (m *MockAssessmentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAssessmentRepository) List(ctx context.Context, filters repositories.AssessmentFilters) ([]*models.Assessment, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Assessment), args.Get(1).(int64), args.Error(2)
}

func (m *MockAssessmentRepository) GetStudentAssessments(ctx context.Context, assessmentID uint) ([]models.StudentAssessment, error) {
	args := m.Called(ctx, assessmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StudentAssessment), args.Error(1)
}

func (m *MockAssessmentRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*models.Assessment, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Assessment), args.Error(1)
}

// MockStudentRepository is a mock implementation of StudentRepository
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) Create(ctx context.Context, student *models.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentRepository) Update(ctx context.Context, student *models.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStudentRepository) List(ctx context.Context, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Student), args.Get(1).(int64), args.Error(2)
}

func (m *MockStudentRepository) GetAssessments(ctx context.Context, studentID uint) ([]models.StudentAssessment, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StudentAssessment), args.Error(1)
}

// MockReferenceRepository is a mock implementation of ReferenceRepository
type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) ListGrades(ctx context.Context) ([]models.Grade, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Grade), args.Error(1)
}

func (m *MockReferenceRepository) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subject), args.Error(1)
}

func (m *MockReferenceRepository) ListTopics(ctx context.Context, filters repositories.TopicFilters) ([]models.Topic, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Topic), args.Error(1)
}

func (m *MockReferenceRepository) CreateGrade(ctx context.Context, grade *models.Grade) error {
	args := m.Called(ctx, grade)
	return args.Error(0)
}

func (m *MockReferenceRepository) CreateSubject(ctx context.Context, subject *models.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func (m *MockReferenceRepository) CreateTopic(ctx context.Context, topic *models.Topic) error {
	args := m.Called(ctx, topic)
	return args.Error(0)
}

// MockAddendumRepository is a mock implementation of AddendumRepository
type MockAddendumRepository struct {
	mock.Mock
}

func (m *MockAddendumRepository) CreateForQuestion(ctx context.Context, addendum *models.QuestionAddendum) error {
	args := m.Called(ctx, addendum)
	return args.Error(0)
}

func (m *MockAddendumRepository) ListForQuestion(ctx context.Context, questionID uint) ([]models.QuestionAddendum, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuestionAddendum), args.Error(1)
}

func (m *MockAddendumRepository) CreateForPaper(ctx context.Context, addendum *models.PaperAddendum) error {
	args := m.Called(ctx, addendum)
	return args.Error(0)
}

func (m *MockAddendumRepository) ListForPaper(ctx context.Context, paperID uint) ([]models.PaperAddendum, error) {
	args := m.Called(ctx, paperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaperAddendum), args.Error(1)
}

// mockRepository aggregates the repository mocks behind the Repository
// interface so services can be constructed directly in tests.
type mockRepository struct {
	question   *MockQuestionRepository
	paper      *MockPaperRepository
	assessment *MockAssessmentRepository
	student    *MockStudentRepository
	reference  *MockReferenceRepository
	addendum   *MockAddendumRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		question:   new(MockQuestionRepository),
		paper:      new(MockPaperRepository),
		assessment: new(MockAssessmentRepository),
		student:    new(MockStudentRepository),
		reference:  new(MockReferenceRepository),
		addendum:   new(MockAddendumRepository),
	}
}

func (m *mockRepository) Question() repositories.QuestionRepository     { return m.question }
func (m *mockRepository) Paper() repositories.PaperRepository           { return m.paper }
func (m *mockRepository) Assessment() repositories.AssessmentRepository { return m.assessment }
func (m *mockRepository) Student() repositories.StudentRepository       { return m.student }
func (m *mockRepository) Reference() repositories.ReferenceRepository   { return m.reference }
func (m *mockRepository) Addendum() repositories.AddendumRepository     { return m.addendum }
