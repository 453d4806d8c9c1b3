package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
	TrueFalse      QuestionType = "true_false"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

type CognitiveLevel string

const (
	CognitiveKnowledge     CognitiveLevel = "knowledge"
	CognitiveComprehension CognitiveLevel = "comprehension"
	CognitiveApplication   CognitiveLevel = "application"
	CognitiveAnalysis      CognitiveLevel = "analysis"
	CognitiveSynthesis     CognitiveLevel = "synthesis"
	CognitiveEvaluation    CognitiveLevel = "evaluation"
)

// Question is a single authorable question. A row with a non-nil ParentID is
// a sub-question of that parent; the hierarchy is exactly two levels deep.
type Question struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Number      *string `json:"number" gorm:"size:20"` // display label, e.g. "1", "2.1"
	Description *string `json:"description" gorm:"type:text"`

	// Content payload. Any subset may be present.
	Text      *string        `json:"text" gorm:"type:text"`
	Latex     *string        `json:"latex" gorm:"type:text"`
	TableData datatypes.JSON `json:"table_data" gorm:"type:jsonb"` // {headers: [...], rows: [[...]]}
	ImageURL  *string        `json:"image_url" gorm:"size:500"`

	Difficulty     DifficultyLevel `json:"difficulty" gorm:"not null;size:20;index" validate:"required,difficulty_level"`
	Marks          *int            `json:"marks" gorm:"index" validate:"required,min=0"`
	Type           QuestionType    `json:"type" gorm:"not null;size:30;index" validate:"required,question_type"`
	CognitiveLevel *CognitiveLevel `json:"cognitive_level" gorm:"size:20" validate:"omitempty,cognitive_level"`
	Memo           *string         `json:"memo" gorm:"type:text"`

	TopicID  *uint `json:"topic_id" gorm:"index"`
	ParentID *uint `json:"parent_id" gorm:"index"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:64;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Topic        *Topic     `json:"topic,omitempty" gorm:"foreignKey:TopicID"`
	SubQuestions []Question `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
}

func (Question) TableName() string {
	return "questions"
}

// MarkValue returns the question's marks, treating an absent value as 0.
func (q *Question) MarkValue() int {
	if q.Marks == nil {
		return 0
	}
	return *q.Marks
}

// QuestionAddendum is supplementary binary-object metadata attached to a
// question. The binary itself lives in the object store.
type QuestionAddendum struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	QuestionID   uint      `json:"question_id" gorm:"not null;index"`
	Title        string    `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Description  *string   `json:"description" gorm:"type:text"`
	FileType     string    `json:"file_type" gorm:"not null;size:20"` // pdf, image, document
	FileURL      string    `json:"file_url" gorm:"not null;size:500"`
	ThumbnailURL *string   `json:"thumbnail_url" gorm:"size:500"`
	CreatedBy    string    `json:"created_by" gorm:"not null;size:64"`
	CreatedAt    time.Time `json:"created_at"`

	Question Question `json:"-" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (QuestionAddendum) TableName() string {
	return "question_addendums"
}
