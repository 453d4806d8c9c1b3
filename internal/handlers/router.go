package handlers

import (
	"github.com/edupaper/authoring-service/internal/config"
	"github.com/edupaper/authoring-service/internal/events"
	"github.com/edupaper/authoring-service/internal/render"
	"github.com/edupaper/authoring-service/internal/services"
	"github.com/edupaper/authoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	authMiddleware    *AuthMiddleware
	questionHandler   *QuestionHandler
	paperHandler      *PaperHandler
	assessmentHandler *AssessmentHandler
	studentHandler    *StudentHandler
	referenceHandler  *ReferenceHandler
	addendumHandler   *AddendumHandler
}

// Services bundles the service layer dependencies the handlers need.
type Services struct {
	Question   services.QuestionService
	Paper      services.PaperService
	Assessment services.AssessmentService
	Student    services.StudentService
	Reference  services.ReferenceService
	Addendum   services.AddendumService
	Export     services.ExportService
}

func NewHandlerManager(
	svcs Services,
	renderer *render.PDFRenderer,
	eventPublisher events.EventPublisher,
	casdoorCfg config.CasdoorConfig,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authMiddleware:    NewAuthMiddleware(casdoorCfg, logger),
		questionHandler:   NewQuestionHandler(svcs.Question, logger),
		paperHandler:      NewPaperHandler(svcs.Paper, renderer, eventPublisher, logger),
		assessmentHandler: NewAssessmentHandler(svcs.Assessment, svcs.Export, logger),
		studentHandler:    NewStudentHandler(svcs.Student, logger),
		referenceHandler:  NewReferenceHandler(svcs.Reference, logger),
		addendumHandler:   NewAddendumHandler(svcs.Addendum, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.RequireAuth())
	{
		// Question routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)

			questions.POST("/:id/addendums", hm.addendumHandler.UploadQuestionAddendum)
			questions.GET("/:id/addendums", hm.addendumHandler.ListQuestionAddendums)
		}

		// Question paper routes
		papers := v1.Group("/question-papers")
		{
			papers.POST("", hm.paperHandler.CreatePaper)
			papers.GET("", hm.paperHandler.ListPapers)
			papers.GET("/my", hm.paperHandler.ListMyPapers)
			papers.GET("/:id", hm.paperHandler.GetPaper)
			papers.PUT("/:id", hm.paperHandler.UpdatePaper)
			papers.DELETE("/:id", hm.paperHandler.DeletePaper)
			papers.GET("/:id/pdf", hm.paperHandler.DownloadPaperPDF)

			papers.POST("/:id/addendums", hm.addendumHandler.UploadPaperAddendum)
			papers.GET("/:id/addendums", hm.addendumHandler.ListPaperAddendums)
		}

		// Assessment routes
		assessments := v1.Group("/assessments")
		{
			assessments.POST("", hm.assessmentHandler.CreateAssessment)
			assessments.GET("", hm.assessmentHandler.ListAssessments)
			assessments.GET("/:id", hm.assessmentHandler.GetAssessment)
			assessments.PUT("/:id", hm.assessmentHandler.UpdateAssessment)
			assessments.DELETE("/:id", hm.assessmentHandler.DeleteAssessment)
			assessments.GET("/:id/results", hm.assessmentHandler.GetAssessmentResults)
			assessments.GET("/:id/results/export", hm.assessmentHandler.ExportAssessmentResults)
		}

		// Student routes
		students := v1.Group("/students")
		{
			students.POST("", hm.studentHandler.CreateStudent)
			students.GET("", hm.studentHandler.ListStudents)
			students.GET("/:id", hm.studentHandler.GetStudent)
			students.PUT("/:id", hm.studentHandler.UpdateStudent)
			students.DELETE("/:id", hm.studentHandler.DeleteStudent)
			students.GET("/:id/assessments", hm.studentHandler.GetStudentAssessments)
		}

		// Reference data routes
		v1.GET("/grades", hm.referenceHandler.ListGrades)
		v1.POST("/grades", hm.referenceHandler.CreateGrade)
		v1.GET("/subjects", hm.referenceHandler.ListSubjects)
		v1.POST("/subjects", hm.referenceHandler.CreateSubject)
		v1.GET("/topics", hm.referenceHandler.ListTopics)
		v1.POST("/topics", hm.referenceHandler.CreateTopic)
	}
}
