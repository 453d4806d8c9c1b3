package services

import (
	"context"
	"testing"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"github.com/edupaper/authoring-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPaperService(repo *mockRepository) PaperService {
	return NewPaperService(repo, NewContentNormalizer(testLogger()), testLogger(), validator.New())
}

func paperQuestion(id uint, marks *int) *models.Question {
	return &models.Question{
		ID:         id,
		Difficulty: models.DifficultyMedium,
		Marks:      marks,
		Type:       models.ShortAnswer,
	}
}

func TestPaperCreate_MissingRequiredFields(t *testing.T) {
	repo := newMockRepository()
	svc := newPaperService(repo)

	_, err := svc.Create(context.Background(), &CreatePaperRequest{}, Actor{ID: "teacher-1", Role: "teacher"})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	repo.paper.AssertNotCalled(t, "CreateWithEntries", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaperCreate_DanglingQuestionFailsHard(t *testing.T) {
	repo := newMockRepository()
	svc := newPaperService(repo)

	repo.question.On("GetByIDs", mock.Anything, []uint{3, 404}).
		Return([]*models.Question{paperQuestion(3, intPtr(4))}, nil)

	_, err := svc.Create(context.Background(), &CreatePaperRequest{
		Title:     "Term Test",
		SubjectID: 1,
		GradeID:   2,
		Questions: []repositories.EntrySpec{
			{QuestionID: 3, Order: 1},
			{QuestionID: 404, Order: 2},
		},
	}, Actor{ID: "teacher-1", Role: "teacher"})

	require.Error(t, err)
	assert.True(t, IsReferential(err))

	var re *ReferentialError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, []uint{404}, re.MissingIDs)
	repo.paper.AssertNotCalled(t, "CreateWithEntries", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaperCreate_DefaultOrderIsPosition(t *testing.T) {
	repo := newMockRepository()
	svc := newPaperService(repo)

	repo.question.On("GetByIDs", mock.Anything, []uint{7, 8}).
		Return([]*models.Question{paperQuestion(7, intPtr(2)), paperQuestion(8, intPtr(3))}, nil)

	var captured []models.PaperEntry
	repo.paper.On("CreateWithEntries", mock.Anything, mock.AnythingOfType("*models.QuestionPaper"), mock.AnythingOfType("[]models.PaperEntry")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.QuestionPaper).ID = 30
			captured = args.Get(2).([]models.PaperEntry)
		}).
		Return(nil)

	repo.paper.On("GetByIDWithDetails", mock.Anything, uint(30)).
		Return(&models.QuestionPaper{ID: 30, Title: "Term Test", Version: 1}, nil)
	repo.paper.On("GetEntries", mock.Anything, uint(30)).Return([]models.PaperEntry{}, nil)

	_, err := svc.Create(context.Background(), &CreatePaperRequest{
		Title:     "Term Test",
		SubjectID: 1,
		GradeID:   2,
		Questions: []repositories.EntrySpec{
			{QuestionID: 7},
			{QuestionID: 8},
		},
	}, Actor{ID: "teacher-1", Role: "teacher"})

	require.NoError(t, err)
	require.Len(t, captured, 2)
	assert.Equal(t, 1, captured[0].Order)
	assert.Equal(t, 2, captured[1].Order)
}

func TestPaperResolve_OrderAndTotal(t *testing.T) {
	repo := newMockRepository()
	svc := newPaperService(repo)

	// Entries come back from the store already ordered by question_order.
	entries := []models.PaperEntry{
		{QuestionID: 3, Order: 1, Question: paperQuestion(3, intPtr(4))},
		{QuestionID: 5, Order: 2, Question: paperQuestion(5, intPtr(6))},
	}

	repo.paper.On("GetByIDWithDetails", mock.Anything, uint(30)).
		Return(&models.QuestionPaper{ID: 30, Title: "Term Test", Version: 1}, nil)
	repo.paper.On("GetEntries", mock.Anything, uint(30)).Return(entries, nil)
	repo.question.On("GetSubQuestions", mock.Anything, []uint{3, 5}).Return([]*models.Question{}, nil)

	view, err := svc.Resolve(context.Background(), 30)

	require.NoError(t, err)
	require.Len(t, view.Questions, 2)
	assert.Equal(t, uint(3), view.Questions[0].ID)
	assert.Equal(t, uint(5), view.Questions[1].ID)
	assert.Equal(t, 10, view.TotalMarks)
	assert.Equal(t, 2, view.QuestionCount)
}

func TestPaperResolve_NullMarksContributeZero(t *testing.T) {
	repo := newMockRepository()
	svc := newPaperService(repo)

	entries := []models.PaperEntry{
		{QuestionID: 1, Order: 1, Question: paperQuestion(1, intPtr(5))},
		{QuestionID: 2, Order: 2, Question: paperQuestion(2, nil)},
		{QuestionID: 3, Order: 3, Question: paperQuestion(3, intPtr(3))},
	}

	repo.paper.On("GetByIDWithDetails", mock.Anything, uint(31)).
		Return(&models.QuestionPaper{ID: 31, Title: "Quiz", Version: 1}, nil)
	repo.paper.On("GetEntries", mock.Anything, uint(31)).Return(entries, nil)
	repo.question.On("GetSubQuestions", mock.Anything, []uint{1, 2, 3}).Return([]*models.Question{}, nil)

	view, err := svc.Resolve(context.Background(), 31)

	require.NoError(t, err)
	assert.Equal(t, 8, view.TotalMarks)
}

func TestPaperResolve_OmitsDeletedQuestions(t *testing.T) {
	repo := newMockRepository()
	svc := newPaperService(repo)

	entries := []models.PaperEntry{
		{QuestionID: 1, Order: 1, Question: paperQuestion(1, intPtr(5))},
		{QuestionID: 2, Order: 2, Question: nil}, // deleted after authoring
	}

	repo.paper.On("GetByIDWithDetails", mock.Anything, uint(32)).
		Return(&models.QuestionPaper{ID: 32, Title: "Quiz", Version: 1}, nil)
	repo.paper.On("GetEntries", mock.Anything, uint(32)).Return(entries, nil)
	repo.question.On("GetSubQuestions", mock.Anything, []uint{1}).Return([]*models.Question{}, nil)

	view, err := svc.Resolve(context.Background(), 32)

	require.NoError(t, err)
	require.Len(t, view.Questions, 1)
	assert.Equal(t, uint(1), view.Questions[0].ID)
	assert.Equal(t, 5, view.TotalMarks)
	assert.Equal(t, 1, view.QuestionCount)
}

func TestPaperResolve_AttachesSubQuestions(t *testing.T) {
	repo := newMockRepository()
	svc := newPaperService(repo)

	entries := []models.PaperEntry{
		{QuestionID: 1, Order: 1, Question: paperQuestion(1, intPtr(10))},
	}
	subs := []*models.Question{
		{ID: 5, Number: strPtr("2"), ParentID: uintPtr(1), Difficulty: models.DifficultyEasy, Marks: intPtr(4), Type: models.ShortAnswer},
		{ID: 6, Number: strPtr("1"), ParentID: uintPtr(1), Difficulty: models.DifficultyEasy, Marks: intPtr(6), Type: models.ShortAnswer},
	}

	repo.paper.On("GetByIDWithDetails", mock.Anything, uint(33)).
		Return(&models.QuestionPaper{ID: 33, Title: "Quiz", Version: 1}, nil)
	repo.paper.On("GetEntries", mock.Anything, uint(33)).Return(entries, nil)
	repo.question.On("GetSubQuestions", mock.Anything, []uint{1}).Return(subs, nil)

	view, err := svc.Resolve(context.Background(), 33)

	require.NoError(t, err)
	require.Len(t, view.Questions, 1)
	require.Len(t, view.Questions[0].SubQuestions, 2)
	assert.Equal(t, "1", *view.Questions[0].SubQuestions[0].Number)
	assert.Equal(t, "2", *view.Questions[0].SubQuestions[1].Number)
}

func TestPaperUpdate_StaleVersionConflicts(t *testing.T) {
	repo := newMockRepository()
	svc := newPaperService(repo)

	repo.paper.On("GetByID", mock.Anything, uint(40)).
		Return(&models.QuestionPaper{ID: 40, Title: "Quiz", CreatedBy: "teacher-1", Version: 3}, nil)
	repo.paper.On("Update", mock.Anything, mock.AnythingOfType("*models.QuestionPaper")).Return(nil)
	repo.question.On("GetByIDs", mock.Anything, []uint{7}).
		Return([]*models.Question{paperQuestion(7, intPtr(2))}, nil)
	repo.paper.On("ReplaceEntries", mock.Anything, uint(40), 2, mock.AnythingOfType("[]models.PaperEntry")).
		Return(repositories.ErrVersionMismatch)

	questions := []repositories.EntrySpec{{QuestionID: 7, Order: 1}}
	_, err := svc.Update(context.Background(), 40, &UpdatePaperRequest{
		Questions: &questions,
		Version:   2,
	}, Actor{ID: "teacher-1", Role: "teacher"})

	assert.ErrorIs(t, err, ErrPaperStaleVersion)
	assert.True(t, IsConflict(err))
}

func TestPaperUpdate_DeletedDuringReplaceIsNotFound(t *testing.T) {
	repo := newMockRepository()
	svc := newPaperService(repo)

	repo.paper.On("GetByID", mock.Anything, uint(40)).
		Return(&models.QuestionPaper{ID: 40, Title: "Quiz", CreatedBy: "teacher-1", Version: 3}, nil)
	repo.paper.On("Update", mock.Anything, mock.AnythingOfType("*models.QuestionPaper")).Return(nil)
	repo.question.On("GetByIDs", mock.Anything, []uint{7}).
		Return([]*models.Question{paperQuestion(7, intPtr(2))}, nil)
	repo.paper.On("ReplaceEntries", mock.Anything, uint(40), 3, mock.AnythingOfType("[]models.PaperEntry")).
		Return(gorm.ErrRecordNotFound)

	questions := []repositories.EntrySpec{{QuestionID: 7, Order: 1}}
	_, err := svc.Update(context.Background(), 40, &UpdatePaperRequest{Questions: &questions},
		Actor{ID: "teacher-1", Role: "teacher"})

	assert.ErrorIs(t, err, ErrPaperNotFound)
	assert.True(t, IsNotFound(err))
}

func TestPaperUpdate_NotOwner(t *testing.T) {
	repo := newMockRepository()
	svc := newPaperService(repo)

	repo.paper.On("GetByID", mock.Anything, uint(40)).
		Return(&models.QuestionPaper{ID: 40, Title: "Quiz", CreatedBy: "teacher-1", Version: 1}, nil)

	_, err := svc.Update(context.Background(), 40, &UpdatePaperRequest{Title: strPtr("Renamed")}, Actor{ID: "teacher-2", Role: "teacher"})

	assert.True(t, IsUnauthorized(err))
}

func TestPaperDelete_NotFound(t *testing.T) {
	repo := newMockRepository()
	svc := newPaperService(repo)

	repo.paper.On("GetByID", mock.Anything, uint(404)).Return(nil, gorm.ErrRecordNotFound)

	err := svc.Delete(context.Background(), 404, Actor{ID: "teacher-1", Role: "teacher"})

	assert.ErrorIs(t, err, ErrPaperNotFound)
}
