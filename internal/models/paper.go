package models

import (
	"time"

	"gorm.io/gorm"
)

// QuestionPaper is an ordered collection of questions assembled for one
// assessment event.
type QuestionPaper struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Title          string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	SubjectID      uint       `json:"subject_id" gorm:"not null;index" validate:"required"`
	GradeID        uint       `json:"grade_id" gorm:"not null;index" validate:"required"`
	AssessmentType *string    `json:"assessment_type" gorm:"size:50"`
	AssessmentDate *time.Time `json:"assessment_date"`
	Instructions   *string    `json:"instructions" gorm:"type:text"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:64;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Version guards the entry replace strategy against concurrent updates.
	Version int `json:"version" gorm:"default:1"`

	// Relations
	Subject *Subject     `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Grade   *Grade       `json:"grade,omitempty" gorm:"foreignKey:GradeID"`
	Entries []PaperEntry `json:"entries,omitempty" gorm:"foreignKey:QuestionPaperID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	QuestionCount int `json:"question_count" gorm:"-"`
	TotalMarks    int `json:"total_marks" gorm:"-"`
}

func (QuestionPaper) TableName() string {
	return "question_papers"
}

// PaperEntry binds a question to a paper with a 1-based display order.
// Ties on Order fall back to insertion order (the primary key).
type PaperEntry struct {
	ID              uint `json:"id" gorm:"primaryKey"`
	QuestionPaperID uint `json:"question_paper_id" gorm:"not null;index:idx_paper_order,priority:1"`
	QuestionID      uint `json:"question_id" gorm:"not null;index"`
	Order           int  `json:"order" gorm:"column:question_order;not null;index:idx_paper_order,priority:2" validate:"min=1"`

	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (PaperEntry) TableName() string {
	return "question_paper_questions"
}

// PaperAddendum is supplementary binary-object metadata attached to a paper.
type PaperAddendum struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	QuestionPaperID uint      `json:"question_paper_id" gorm:"not null;index"`
	Title           string    `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Description     *string   `json:"description" gorm:"type:text"`
	FileType        string    `json:"file_type" gorm:"not null;size:20"`
	FileURL         string    `json:"file_url" gorm:"not null;size:500"`
	ThumbnailURL    *string   `json:"thumbnail_url" gorm:"size:500"`
	CreatedBy       string    `json:"created_by" gorm:"not null;size:64"`
	CreatedAt       time.Time `json:"created_at"`

	QuestionPaper QuestionPaper `json:"-" gorm:"foreignKey:QuestionPaperID;constraint:OnDelete:CASCADE"`
}

func (PaperAddendum) TableName() string {
	return "paper_addendums"
}
