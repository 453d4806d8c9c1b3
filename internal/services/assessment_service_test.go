package services

import (
	"context"
	"testing"
	"time"

	"github.com/edupaper/authoring-service/internal/events"
	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAssessmentService(repo *mockRepository, publisher events.EventPublisher) AssessmentService {
	return NewAssessmentService(repo, publisher, testLogger(), validator.New())
}

func completedRecord(score int) models.StudentAssessment {
	return models.StudentAssessment{Status: models.StatusCompleted, Score: &score}
}

func TestComputeStatistics_MixedStatuses(t *testing.T) {
	records := []models.StudentAssessment{
		completedRecord(80),
		completedRecord(60),
		{Status: models.StatusAssigned},
	}

	stats := ComputeStatistics(records)

	assert.Equal(t, 3, stats.TotalStudents)
	assert.Equal(t, 2, stats.CompletedCount)
	assert.InDelta(t, 66.67, stats.CompletionRate, 0.01)
	assert.InDelta(t, 70.0, stats.AverageScore, 0.001)
	assert.Equal(t, 80, stats.HighestScore)
	assert.Equal(t, 60, stats.LowestScore)
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := ComputeStatistics(nil)

	assert.Equal(t, 0, stats.TotalStudents)
	assert.Equal(t, 0, stats.CompletedCount)
	assert.Equal(t, 0.0, stats.CompletionRate)
	assert.Equal(t, 0.0, stats.AverageScore)
	assert.Equal(t, 0, stats.HighestScore)
	assert.Equal(t, 0, stats.LowestScore)
}

func TestComputeStatistics_MarkedCountsAsCompleted(t *testing.T) {
	score := 90
	records := []models.StudentAssessment{
		{Status: models.StatusMarked, Score: &score},
		{Status: models.StatusInProgress},
	}

	stats := ComputeStatistics(records)

	assert.Equal(t, 1, stats.CompletedCount)
	assert.Equal(t, 90, stats.HighestScore)
	assert.Equal(t, 90, stats.LowestScore)
}

func TestComputeStatistics_CompletedWithoutScore(t *testing.T) {
	// Completed but ungraded records count toward completion without
	// skewing the average toward zero.
	records := []models.StudentAssessment{
		completedRecord(100),
		{Status: models.StatusCompleted},
	}

	stats := ComputeStatistics(records)

	assert.Equal(t, 2, stats.CompletedCount)
	assert.InDelta(t, 100.0, stats.AverageScore, 0.001)
	assert.Equal(t, 100, stats.LowestScore)
}

func TestComputeStatistics_NoScoredRecordsNoSentinelLeak(t *testing.T) {
	records := []models.StudentAssessment{
		{Status: models.StatusCompleted},
		{Status: models.StatusCompleted},
	}

	stats := ComputeStatistics(records)

	assert.Equal(t, 0, stats.LowestScore)
	assert.Equal(t, 0, stats.HighestScore)
	assert.Equal(t, 0.0, stats.AverageScore)
}

func TestComputeStatistics_ZeroScoreIsReal(t *testing.T) {
	records := []models.StudentAssessment{
		completedRecord(0),
		completedRecord(50),
	}

	stats := ComputeStatistics(records)

	assert.Equal(t, 0, stats.LowestScore)
	assert.Equal(t, 50, stats.HighestScore)
	assert.InDelta(t, 25.0, stats.AverageScore, 0.001)
}

func TestAssessmentCreate_PublishesAssignedEvent(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newAssessmentService(repo, publisher)

	due := time.Now().Add(7 * 24 * time.Hour)
	paper := &models.QuestionPaper{ID: 12, Title: "Term 2 Mathematics"}

	repo.paper.On("GetByID", mock.Anything, uint(12)).Return(paper, nil)
	repo.assessment.On("CreateWithAssignments", mock.Anything, mock.AnythingOfType("*models.Assessment"), []uint{1, 2, 3}).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Assessment).ID = 77
		}).
		Return(nil)

	assessment, err := svc.Create(context.Background(), &CreateAssessmentRequest{
		QuestionPaperID: 12,
		DueDate:         &due,
		StudentIDs:      []uint{1, 2, 3},
	}, Actor{ID: "teacher-1", Role: "teacher"})

	require.NoError(t, err)
	assert.Equal(t, uint(77), assessment.ID)
	assert.Equal(t, "teacher-1", assessment.AssignedBy)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAssessmentAssigned, published[0].Type)

	data, ok := published[0].Data.(events.AssessmentAssignedEvent)
	require.True(t, ok)
	assert.Equal(t, uint(77), data.AssessmentID)
	assert.Equal(t, "Term 2 Mathematics", data.PaperTitle)
	assert.Equal(t, []uint{1, 2, 3}, data.StudentIDs)
}

func TestAssessmentCreate_MissingPaper(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newAssessmentService(repo, publisher)

	repo.paper.On("GetByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Create(context.Background(), &CreateAssessmentRequest{
		QuestionPaperID: 99,
		StudentIDs:      []uint{1},
	}, Actor{ID: "teacher-1", Role: "teacher"})

	assert.ErrorIs(t, err, ErrPaperNotFound)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestAssessmentCreate_RequiresStudents(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newAssessmentService(repo, publisher)

	_, err := svc.Create(context.Background(), &CreateAssessmentRequest{
		QuestionPaperID: 12,
	}, Actor{ID: "teacher-1", Role: "teacher"})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestAssessmentUpdate_OwnerOnly(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newAssessmentService(repo, publisher)

	repo.assessment.On("GetByID", mock.Anything, uint(5)).
		Return(&models.Assessment{ID: 5, AssignedBy: "teacher-1"}, nil)

	_, err := svc.Update(context.Background(), 5, &UpdateAssessmentRequest{}, Actor{ID: "teacher-2", Role: "teacher"})

	assert.True(t, IsUnauthorized(err))
}

func TestAssessmentDelete_AdminBypassesOwnership(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newAssessmentService(repo, publisher)

	repo.assessment.On("GetByIDWithDetails", mock.Anything, uint(5)).
		Return(&models.Assessment{
			ID:            5,
			AssignedBy:    "teacher-1",
			QuestionPaper: &models.QuestionPaper{ID: 12, Title: "Term 2 Mathematics"},
		}, nil)
	repo.assessment.On("Delete", mock.Anything, uint(5)).Return(nil)

	err := svc.Delete(context.Background(), 5, Actor{ID: "admin-1", Role: "admin"})

	require.NoError(t, err)
	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAssessmentDeleted, published[0].Type)
}

func TestGetResults_OrderedWithStatistics(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newAssessmentService(repo, publisher)

	records := []models.StudentAssessment{
		completedRecord(80),
		completedRecord(60),
		{Status: models.StatusAssigned},
	}

	repo.assessment.On("GetByID", mock.Anything, uint(5)).Return(&models.Assessment{ID: 5}, nil)
	repo.assessment.On("GetStudentAssessments", mock.Anything, uint(5)).Return(records, nil)

	resp, err := svc.GetResults(context.Background(), 5)

	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, 3, resp.Statistics.TotalStudents)
	assert.Equal(t, 2, resp.Statistics.CompletedCount)
	assert.InDelta(t, 70.0, resp.Statistics.AverageScore, 0.001)
}

func TestComputeStatistics_OrderInvariantAndIdempotent(t *testing.T) {
	records := []models.StudentAssessment{
		completedRecord(80),
		completedRecord(60),
		{Status: models.StatusAssigned},
		{Status: models.StatusMarked, Score: intPtr(95)},
	}
	permuted := []models.StudentAssessment{records[3], records[1], records[0], records[2]}

	first := ComputeStatistics(records)
	again := ComputeStatistics(records)
	shuffled := ComputeStatistics(permuted)

	assert.Equal(t, first, again)
	assert.Equal(t, first, shuffled)
	assert.Equal(t, 95, first.HighestScore)
	assert.Equal(t, 60, first.LowestScore)
}

func TestPublishDueSoonReminders_TargetsOutstandingStudents(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newAssessmentService(repo, publisher)

	due := time.Now().Add(12 * time.Hour)
	assessments := []*models.Assessment{
		{
			ID:            1,
			DueDate:       &due,
			QuestionPaper: &models.QuestionPaper{Title: "Term 2 Algebra"},
			StudentAssessments: []models.StudentAssessment{
				{StudentID: 10, Status: models.StatusAssigned},
				{StudentID: 11, Status: models.StatusCompleted},
			},
		},
		{
			ID:      2,
			DueDate: &due,
			StudentAssessments: []models.StudentAssessment{
				{StudentID: 12, Status: models.StatusMarked},
			},
		},
	}
	repo.assessment.On("ListDueBetween", mock.Anything, mock.Anything, mock.Anything).Return(assessments, nil)

	published, err := svc.PublishDueSoonReminders(context.Background(), 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, published)

	eventList := publisher.GetPublishedEvents()
	require.Len(t, eventList, 1)
	assert.Equal(t, events.EventAssessmentDueSoon, eventList[0].Type)
	data, ok := eventList[0].Data.(events.AssessmentDueSoonEvent)
	require.True(t, ok)
	assert.Equal(t, uint(1), data.AssessmentID)
	assert.Equal(t, "Term 2 Algebra", data.PaperTitle)
	assert.Equal(t, []uint{10}, data.StudentIDs)
}

func TestPublishDueSoonReminders_NothingDue(t *testing.T) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newAssessmentService(repo, publisher)

	repo.assessment.On("ListDueBetween", mock.Anything, mock.Anything, mock.Anything).Return([]*models.Assessment{}, nil)

	published, err := svc.PublishDueSoonReminders(context.Background(), 24*time.Hour)

	require.NoError(t, err)
	assert.Zero(t, published)
	assert.Empty(t, publisher.GetPublishedEvents())
}
