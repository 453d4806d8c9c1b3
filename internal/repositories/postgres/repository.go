package postgres

import (
	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	question   repositories.QuestionRepository
	paper      repositories.PaperRepository
	assessment repositories.AssessmentRepository
	student    repositories.StudentRepository
	reference  repositories.ReferenceRepository
	addendum   repositories.AddendumRepository
}

// NewRepository wires all PostgreSQL repositories over one gorm handle.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		question:   NewQuestionPostgreSQL(db),
		paper:      NewPaperPostgreSQL(db),
		assessment: NewAssessmentPostgreSQL(db),
		student:    NewStudentPostgreSQL(db),
		reference:  NewReferencePostgreSQL(db),
		addendum:   NewAddendumPostgreSQL(db),
	}
}

func (r *repository) Question() repositories.QuestionRepository     { return r.question }
func (r *repository) Paper() repositories.PaperRepository           { return r.paper }
func (r *repository) Assessment() repositories.AssessmentRepository { return r.assessment }
func (r *repository) Student() repositories.StudentRepository       { return r.student }
func (r *repository) Reference() repositories.ReferenceRepository   { return r.reference }
func (r *repository) Addendum() repositories.AddendumRepository     { return r.addendum }

// AutoMigrate creates or updates the schema for every model this service
// owns. FK cascade behavior is declared on the models themselves.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Grade{},
		&models.Subject{},
		&models.Topic{},
		&models.Student{},
		&models.Question{},
		&models.QuestionAddendum{},
		&models.QuestionPaper{},
		&models.PaperEntry{},
		&models.PaperAddendum{},
		&models.Assessment{},
		&models.StudentAssessment{},
	)
}
