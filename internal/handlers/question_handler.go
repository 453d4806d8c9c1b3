package handlers

import (
	"net/http"

	"github.com/edupaper/authoring-service/internal/models"
	"github.com/edupaper/authoring-service/internal/services"
	"github.com/edupaper/authoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// CreateQuestion creates a new question, optionally with nested sub-questions
// @Summary Create question
// @Tags questions
// @Accept json
// @Produce json
// @Param question body services.CreateQuestionRequest true "Question data"
// @Success 201 {object} services.QuestionView
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	var req services.CreateQuestionRequest
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

	question, err := h.questionService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// GetQuestion retrieves a question by ID
// @Summary Get question
// @Tags questions
// @Produce json
// @Param id path uint true "Question ID"
// @Param include_subquestions query bool false "Attach ordered sub-questions"
// @Success 200 {object} services.QuestionView
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting question", "question_id", id)

	includeSubQuestions := h.parseBoolQuery(c, "include_subquestions")

	question, err := h.questionService.GetByID(c.Request.Context(), id, includeSubQuestions)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// ListQuestions lists questions with optional filters and pagination
// @Summary List questions
// @Tags questions
// @Produce json
// @Success 200 {object} services.QuestionListResponse
// @Router /questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	h.LogRequest(c, "Listing questions")

	req := h.parseQuestionFilters(c)

	response, err := h.questionService.List(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateQuestion updates an existing question
// @Summary Update question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Question ID"
// @Param question body services.UpdateQuestionRequest true "Fields to change"
// @Success 200 {object} services.QuestionView
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating question", "question_id", id)

	var req services.UpdateQuestionRequest
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

	question, err := h.questionService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion deletes a question and its sub-questions
// @Summary Delete question
// @Tags questions
// @Param id path uint true "Question ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id)

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *QuestionHandler) parseQuestionFilters(c *gin.Context) *services.ListQuestionsRequest {
	req := &services.ListQuestionsRequest{
		TopicIDs:            h.parseUintListQuery(c, "topic_ids"),
		ParentID:            h.parseUintQuery(c, "parent_id"),
		IncludeSubQuestions: h.parseBoolQuery(c, "include_subquestions"),
		Page:                h.parseIntQuery(c, "page", 1),
		Limit:               h.parseIntQuery(c, "limit", 20),
	}

	if topicID := h.parseUintQuery(c, "topic_id"); topicID != nil {
		req.TopicIDs = append(req.TopicIDs, *topicID)
	}

	if difficulty := c.Query("difficulty"); difficulty != "" {
		level := models.DifficultyLevel(difficulty)
		req.Difficulty = &level
	}

	if questionType := c.Query("type"); questionType != "" {
		qType := models.QuestionType(questionType)
		req.Type = &qType
	}

	if cognitiveLevel := c.Query("cognitive_level"); cognitiveLevel != "" {
		level := models.CognitiveLevel(cognitiveLevel)
		req.CognitiveLevel = &level
	}

	if createdBy := c.Query("created_by"); createdBy != "" {
		req.CreatedBy = &createdBy
	}

	return req
}
