package handlers

import (
	"net/http"

	"github.com/edupaper/authoring-service/internal/services"
	"github.com/edupaper/authoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ReferenceHandler serves the grade, subject and topic lookup tables that
// question authoring builds on. Reads are cached, writes are admin only.
type ReferenceHandler struct {
	BaseHandler
	referenceService services.ReferenceService
}

func NewReferenceHandler(referenceService services.ReferenceService, logger utils.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		BaseHandler:      NewBaseHandler(logger),
		referenceService: referenceService,
	}
}

// ListGrades returns all grade levels
// @Summary List grades
// @Tags reference
// @Produce json
// @Success 200 {array} models.Grade
// @Router /grades [get]
func (h *ReferenceHandler) ListGrades(c *gin.Context) {
	grades, err := h.referenceService.ListGrades(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grades)
}

// CreateGrade adds a grade level
// @Summary Create grade
// @Tags reference
// @Accept json
// @Produce json
// @Param grade body services.CreateGradeRequest true "Grade data"
// @Success 201 {object} models.Grade
// @Failure 403 {object} ErrorResponse
// @Router /grades [post]
func (h *ReferenceHandler) CreateGrade(c *gin.Context) {
	h.LogRequest(c, "Creating grade")

	var req services.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	grade, err := h.referenceService.CreateGrade(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, grade)
}

// ListSubjects returns all subjects
// @Summary List subjects
// @Tags reference
// @Produce json
// @Success 200 {array} models.Subject
// @Router /subjects [get]
func (h *ReferenceHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.referenceService.ListSubjects(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subjects)
}

// CreateSubject adds a subject
// @Summary Create subject
// @Tags reference
// @Accept json
// @Produce json
// @Param subject body services.CreateSubjectRequest true "Subject data"
// @Success 201 {object} models.Subject
// @Failure 403 {object} ErrorResponse
// @Router /subjects [post]
func (h *ReferenceHandler) CreateSubject(c *gin.Context) {
	h.LogRequest(c, "Creating subject")

	var req services.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	subject, err := h.referenceService.CreateSubject(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

// ListTopics returns topics, optionally filtered by grade and subject
// @Summary List topics
// @Tags reference
// @Produce json
// @Param grade_id query uint false "Grade filter"
// @Param subject_id query uint false "Subject filter"
// @Success 200 {array} models.Topic
// @Router /topics [get]
func (h *ReferenceHandler) ListTopics(c *gin.Context) {
	gradeID := h.parseUintQuery(c, "grade_id")
	subjectID := h.parseUintQuery(c, "subject_id")

	topics, err := h.referenceService.ListTopics(c.Request.Context(), gradeID, subjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, topics)
}

// CreateTopic adds a topic under a grade and subject
// @Summary Create topic
// @Tags reference
// @Accept json
// @Produce json
// @Param topic body services.CreateTopicRequest true "Topic data"
// @Success 201 {object} models.Topic
// @Failure 403 {object} ErrorResponse
// @Router /topics [post]
func (h *ReferenceHandler) CreateTopic(c *gin.Context) {
	h.LogRequest(c, "Creating topic")

	var req services.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	topic, err := h.referenceService.CreateTopic(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, topic)
}
