package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of notification events
type EventType string

const (
	// Assessment events
	EventAssessmentAssigned EventType = "assessment.assigned"
	EventAssessmentDueSoon  EventType = "assessment.due_soon"
	EventAssessmentDeleted  EventType = "assessment.deleted"

	// Paper events
	EventPaperRendered EventType = "paper.rendered"
)

// NotificationEvent is the base event structure for all notification events
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AssessmentAssignedEvent carries everything the downstream notifier needs
// to tell students a paper has been assigned to them.
type AssessmentAssignedEvent struct {
	AssessmentID uint       `json:"assessment_id"`
	PaperID      uint       `json:"paper_id"`
	PaperTitle   string     `json:"paper_title"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	StudentIDs   []uint     `json:"student_ids"`
	AssignedBy   string     `json:"assigned_by"`
}

type AssessmentDueSoonEvent struct {
	AssessmentID   uint      `json:"assessment_id"`
	PaperTitle     string    `json:"paper_title"`
	HoursRemaining int       `json:"hours_remaining"`
	StudentIDs     []uint    `json:"student_ids"`
	DueDate        time.Time `json:"due_date"`
}

type AssessmentDeletedEvent struct {
	AssessmentID uint      `json:"assessment_id"`
	PaperTitle   string    `json:"paper_title"`
	DeletedAt    time.Time `json:"deleted_at"`
	DeletedBy    string    `json:"deleted_by"`
}

type PaperRenderedEvent struct {
	PaperID    uint      `json:"paper_id"`
	PaperTitle string    `json:"paper_title"`
	TotalMarks int       `json:"total_marks"`
	RenderedAt time.Time `json:"rendered_at"`
	RenderedBy string    `json:"rendered_by"`
}

// Event factory functions

func NewAssessmentAssignedEvent(assessmentID, paperID uint, paperTitle string, dueDate *time.Time, studentIDs []uint, assignedBy string) *NotificationEvent {
	return &NotificationEvent{
		ID:        GenerateEventID(),
		Type:      EventAssessmentAssigned,
		Timestamp: time.Now(),
		Source:    "authoring-service",
		Version:   "1.0",
		Data: AssessmentAssignedEvent{
			AssessmentID: assessmentID,
			PaperID:      paperID,
			PaperTitle:   paperTitle,
			DueDate:      dueDate,
			StudentIDs:   studentIDs,
			AssignedBy:   assignedBy,
		},
	}
}

func NewAssessmentDueSoonEvent(assessmentID uint, paperTitle string, dueDate time.Time, studentIDs []uint) *NotificationEvent {
	return &NotificationEvent{
		ID:        GenerateEventID(),
		Type:      EventAssessmentDueSoon,
		Timestamp: time.Now(),
		Source:    "authoring-service",
		Version:   "1.0",
		Data: AssessmentDueSoonEvent{
			AssessmentID:   assessmentID,
			PaperTitle:     paperTitle,
			HoursRemaining: int(time.Until(dueDate).Hours()),
			StudentIDs:     studentIDs,
			DueDate:        dueDate,
		},
	}
}

func NewAssessmentDeletedEvent(assessmentID uint, paperTitle string, deletedBy string) *NotificationEvent {
	return &NotificationEvent{
		ID:        GenerateEventID(),
		Type:      EventAssessmentDeleted,
		Timestamp: time.Now(),
		Source:    "authoring-service",
		Version:   "1.0",
		Data: AssessmentDeletedEvent{
			AssessmentID: assessmentID,
			PaperTitle:   paperTitle,
			DeletedAt:    time.Now(),
			DeletedBy:    deletedBy,
		},
	}
}

func NewPaperRenderedEvent(paperID uint, paperTitle string, totalMarks int, renderedBy string) *NotificationEvent {
	return &NotificationEvent{
		ID:        GenerateEventID(),
		Type:      EventPaperRendered,
		Timestamp: time.Now(),
		Source:    "authoring-service",
		Version:   "1.0",
		Data: PaperRenderedEvent{
			PaperID:    paperID,
			PaperTitle: paperTitle,
			TotalMarks: totalMarks,
			RenderedAt: time.Now(),
			RenderedBy: renderedBy,
		},
	}
}

// GenerateEventID returns a unique id for a new event envelope.
func GenerateEventID() string {
	return uuid.NewString()
}
