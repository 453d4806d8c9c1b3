package models

import "time"

// Reference data: grades, subjects and topics are simple lookup tables keyed
// by the curriculum, managed by admins and joined onto questions and papers.

type Grade struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Level     string    `json:"level" gorm:"not null;size:50;uniqueIndex" validate:"required,max=50"`
	CreatedAt time.Time `json:"created_at"`
}

func (Grade) TableName() string {
	return "grades"
}

type Subject struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;size:100;uniqueIndex" validate:"required,max=100"`
	CreatedAt time.Time `json:"created_at"`
}

func (Subject) TableName() string {
	return "subjects"
}

type Topic struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;size:200" validate:"required,max=200"`
	GradeID   uint      `json:"grade_id" gorm:"not null;index" validate:"required"`
	SubjectID uint      `json:"subject_id" gorm:"not null;index" validate:"required"`
	CreatedAt time.Time `json:"created_at"`

	Grade   *Grade   `json:"grade,omitempty" gorm:"foreignKey:GradeID"`
	Subject *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}

func (Topic) TableName() string {
	return "topics"
}
