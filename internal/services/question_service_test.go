package services

import (
	"context"
	"errors"
	"testing"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQuestionService(repo *mockRepository) QuestionService {
	return NewQuestionService(repo, NewContentNormalizer(testLogger()), testLogger(), validator.New())
}

func TestQuestionCreate_Simple(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo)

	repo.question.On("Create", mock.Anything, mock.AnythingOfType("*models.Question")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Question).ID = 42
		}).
		Return(nil)

	view, err := svc.Create(context.Background(), &CreateQuestionRequest{
		Text:       strPtr("State Newton's first law."),
		Difficulty: models.DifficultyMedium,
		Marks:      intPtr(5),
		Type:       models.ShortAnswer,
	}, Actor{ID: "teacher-1", Role: "teacher"})

	require.NoError(t, err)
	assert.Equal(t, uint(42), view.ID)
	assert.Equal(t, "teacher-1", view.CreatedBy)
	assert.True(t, view.ContentTypes.HasText)
	require.NotNil(t, view.SubQuestions)
	assert.Empty(t, view.SubQuestions)
}

func TestQuestionCreate_MissingMarks(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo)

	_, err := svc.Create(context.Background(), &CreateQuestionRequest{
		Text:       strPtr("Unmarked question"),
		Difficulty: models.DifficultyEasy,
		Type:       models.Essay,
	}, Actor{ID: "teacher-1", Role: "teacher"})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	repo.question.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestQuestionCreate_WithSubQuestions(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo)

	repo.question.On("CreateWithSubQuestions", mock.Anything,
		mock.AnythingOfType("*models.Question"),
		mock.AnythingOfType("[]*models.Question")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Question).ID = 10
		}).
		Return(nil)

	view, err := svc.Create(context.Background(), &CreateQuestionRequest{
		Description: strPtr("Answer all parts."),
		Difficulty:  models.DifficultyHard,
		Marks:       intPtr(0),
		Type:        models.Essay,
		SubQuestions: []CreateQuestionRequest{
			{Number: strPtr("1"), Text: strPtr("Part one"), Difficulty: models.DifficultyMedium, Marks: intPtr(4), Type: models.ShortAnswer},
			{Number: strPtr("2"), Text: strPtr("Part two"), Difficulty: models.DifficultyHard, Marks: intPtr(6), Type: models.Essay},
		},
	}, Actor{ID: "teacher-1", Role: "teacher"})

	require.NoError(t, err)
	require.Len(t, view.SubQuestions, 2)
	assert.Equal(t, "teacher-1", view.SubQuestions[0].CreatedBy)
}

func TestQuestionCreate_SubQuestionUnderSubQuestion(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo)

	parentOfParent := uint(3)
	repo.question.On("GetByID", mock.Anything, uint(7)).
		Return(&models.Question{ID: 7, ParentID: &parentOfParent}, nil)

	_, err := svc.Create(context.Background(), &CreateQuestionRequest{
		Text:       strPtr("Too deep"),
		Difficulty: models.DifficultyEasy,
		Marks:      intPtr(1),
		Type:       models.ShortAnswer,
		ParentID:   uintPtr(7),
	}, Actor{ID: "teacher-1", Role: "teacher"})

	assert.ErrorIs(t, err, ErrQuestionDepthLimit)
}

func TestQuestionCreate_DanglingParent(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo)

	repo.question.On("GetByID", mock.Anything, uint(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Create(context.Background(), &CreateQuestionRequest{
		Text:       strPtr("Orphan"),
		Difficulty: models.DifficultyEasy,
		Marks:      intPtr(1),
		Type:       models.ShortAnswer,
		ParentID:   uintPtr(404),
	}, Actor{ID: "teacher-1", Role: "teacher"})

	require.Error(t, err)
	assert.True(t, IsReferential(err))
}

func TestQuestionGetByID_WithSubQuestionsOrdered(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo)

	parent := &models.Question{ID: 1, Difficulty: models.DifficultyMedium, Marks: intPtr(0), Type: models.Essay}
	subs := []*models.Question{
		{ID: 2, Number: strPtr("2"), ParentID: uintPtr(1), Difficulty: models.DifficultyEasy, Marks: intPtr(2), Type: models.ShortAnswer},
		{ID: 3, Number: strPtr("10"), ParentID: uintPtr(1), Difficulty: models.DifficultyEasy, Marks: intPtr(2), Type: models.ShortAnswer},
		{ID: 4, Number: strPtr("1"), ParentID: uintPtr(1), Difficulty: models.DifficultyEasy, Marks: intPtr(2), Type: models.ShortAnswer},
	}

	repo.question.On("GetByID", mock.Anything, uint(1)).Return(parent, nil)
	repo.question.On("GetSubQuestions", mock.Anything, []uint{1}).Return(subs, nil)

	view, err := svc.GetByID(context.Background(), 1, true)

	require.NoError(t, err)
	require.Len(t, view.SubQuestions, 3)
	// Numeric-aware ordering, not lexicographic.
	assert.Equal(t, "1", *view.SubQuestions[0].Number)
	assert.Equal(t, "2", *view.SubQuestions[1].Number)
	assert.Equal(t, "10", *view.SubQuestions[2].Number)
}

func TestQuestionGetByID_SubFetchFailureDegrades(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo)

	parent := &models.Question{ID: 1, Difficulty: models.DifficultyMedium, Marks: intPtr(5), Type: models.ShortAnswer}
	repo.question.On("GetByID", mock.Anything, uint(1)).Return(parent, nil)
	repo.question.On("GetSubQuestions", mock.Anything, []uint{1}).Return(nil, errors.New("store unavailable"))

	view, err := svc.GetByID(context.Background(), 1, true)

	require.NoError(t, err)
	require.NotNil(t, view.SubQuestions)
	assert.Empty(t, view.SubQuestions)
}

func TestQuestionList_BatchAssembly(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo)

	parents := []*models.Question{
		{ID: 1, Difficulty: models.DifficultyEasy, Marks: intPtr(5), Type: models.ShortAnswer},
		{ID: 2, Difficulty: models.DifficultyHard, Marks: intPtr(10), Type: models.Essay},
	}
	subs := []*models.Question{
		{ID: 3, Number: strPtr("1"), ParentID: uintPtr(2), Difficulty: models.DifficultyEasy, Marks: intPtr(4), Type: models.ShortAnswer},
		{ID: 4, Number: strPtr("2"), ParentID: uintPtr(2), Difficulty: models.DifficultyEasy, Marks: intPtr(6), Type: models.ShortAnswer},
	}

	repo.question.On("List", mock.Anything, mock.AnythingOfType("repositories.QuestionFilters")).
		Return(parents, int64(2), nil)
	repo.question.On("GetSubQuestions", mock.Anything, []uint{1, 2}).Return(subs, nil)

	resp, err := svc.List(context.Background(), &ListQuestionsRequest{IncludeSubQuestions: true})

	require.NoError(t, err)
	require.Len(t, resp.Questions, 2)
	assert.Empty(t, resp.Questions[0].SubQuestions)
	require.Len(t, resp.Questions[1].SubQuestions, 2)
	assert.Equal(t, uint(3), resp.Questions[1].SubQuestions[0].ID)
	repo.question.AssertNumberOfCalls(t, "GetSubQuestions", 1)
}

func TestQuestionUpdate_NotOwner(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo)

	repo.question.On("GetByID", mock.Anything, uint(9)).
		Return(&models.Question{ID: 9, CreatedBy: "teacher-1", Difficulty: models.DifficultyEasy, Marks: intPtr(2), Type: models.ShortAnswer}, nil)

	_, err := svc.Update(context.Background(), 9, &UpdateQuestionRequest{Marks: intPtr(3)}, Actor{ID: "teacher-2", Role: "teacher"})

	assert.True(t, IsUnauthorized(err))
	repo.question.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestQuestionDelete_NotFound(t *testing.T) {
	repo := newMockRepository()
	svc := newQuestionService(repo)

	repo.question.On("GetByID", mock.Anything, uint(404)).Return(nil, gorm.ErrRecordNotFound)

	err := svc.Delete(context.Background(), 404, Actor{ID: "teacher-1", Role: "teacher"})

	assert.ErrorIs(t, err, ErrQuestionNotFound)
}
