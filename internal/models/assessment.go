package models

import (
	"time"
)

type StudentAssessmentStatus string

const (
	StatusAssigned   StudentAssessmentStatus = "assigned"
	StatusInProgress StudentAssessmentStatus = "in_progress"
	StatusCompleted  StudentAssessmentStatus = "completed"
	StatusMarked     StudentAssessmentStatus = "marked"
)

// IsCompleted reports whether the record counts toward completion metrics.
func (s StudentAssessmentStatus) IsCompleted() bool {
	return s == StatusCompleted || s == StatusMarked
}

// Assessment assigns one question paper to a set of students.
type Assessment struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	QuestionPaperID uint       `json:"question_paper_id" gorm:"not null;index" validate:"required"`
	AssignedBy      string     `json:"assigned_by" gorm:"not null;size:64;index"`
	DueDate         *time.Time `json:"due_date"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relations
	QuestionPaper      *QuestionPaper      `json:"question_paper,omitempty" gorm:"foreignKey:QuestionPaperID"`
	StudentAssessments []StudentAssessment `json:"student_assessments,omitempty" gorm:"foreignKey:AssessmentID;constraint:OnDelete:CASCADE"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// StudentAssessment is one student's completion record for one assessment.
// Score is only meaningful when the status is completed or marked, and may
// still be nil in that state (completed but not yet graded).
type StudentAssessment struct {
	ID           uint                    `json:"id" gorm:"primaryKey"`
	StudentID    uint                    `json:"student_id" gorm:"not null;index"`
	AssessmentID uint                    `json:"assessment_id" gorm:"not null;index"`
	Status       StudentAssessmentStatus `json:"status" gorm:"not null;size:20;default:assigned" validate:"omitempty,oneof=assigned in_progress completed marked"`
	Score        *int                    `json:"score"`
	TotalMarks   *int                    `json:"total_marks"`
	CompletedAt  *time.Time              `json:"completed_at"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (StudentAssessment) TableName() string {
	return "student_assessments"
}

// AssessmentStatistics is the derived summary over one assessment's
// StudentAssessment records. Never persisted.
type AssessmentStatistics struct {
	TotalStudents  int     `json:"total_students"`
	CompletedCount int     `json:"completed_count"`
	CompletionRate float64 `json:"completion_rate"`
	AverageScore   float64 `json:"average_score"`
	HighestScore   int     `json:"highest_score"`
	LowestScore    int     `json:"lowest_score"`
}
