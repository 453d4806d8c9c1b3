package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/edupaper/authoring-service/internal/events"
	"github.com/edupaper/authoring-service/internal/render"
	"github.com/edupaper/authoring-service/internal/services"
	"github.com/edupaper/authoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type PaperHandler struct {
	BaseHandler
	paperService   services.PaperService
	renderer       *render.PDFRenderer
	eventPublisher events.EventPublisher
}

func NewPaperHandler(
	paperService services.PaperService,
	renderer *render.PDFRenderer,
	eventPublisher events.EventPublisher,
	logger utils.Logger,
) *PaperHandler {
	return &PaperHandler{
		BaseHandler:    NewBaseHandler(logger),
		paperService:   paperService,
		renderer:       renderer,
		eventPublisher: eventPublisher,
	}
}

// CreatePaper composes a new question paper from existing questions
// @Summary Create question paper
// @Tags question-papers
// @Accept json
// @Produce json
// @Param paper body services.CreatePaperRequest true "Paper data"
// @Success 201 {object} services.PaperView
// @Failure 400 {object} ErrorResponse
// @Router /question-papers [post]
func (h *PaperHandler) CreatePaper(c *gin.Context) {
	h.LogRequest(c, "Creating question paper")

	var req services.CreatePaperRequest
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

	paper, err := h.paperService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, paper)
}

// GetPaper retrieves a fully resolved question paper
// @Summary Get question paper
// @Tags question-papers
// @Produce json
// @Param id path uint true "Paper ID"
// @Success 200 {object} services.PaperView
// @Failure 404 {object} ErrorResponse
// @Router /question-papers/{id} [get]
func (h *PaperHandler) GetPaper(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting question paper", "paper_id", id)

	paper, err := h.paperService.Resolve(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paper)
}

// ListPapers lists question papers with optional filters
// @Summary List question papers
// @Tags question-papers
// @Produce json
// @Success 200 {object} services.PaperListResponse
// @Router /question-papers [get]
func (h *PaperHandler) ListPapers(c *gin.Context) {
	h.LogRequest(c, "Listing question papers")

	req := &services.ListPapersRequest{
		SubjectID: h.parseUintQuery(c, "subject_id"),
		GradeID:   h.parseUintQuery(c, "grade_id"),
		Page:      h.parseIntQuery(c, "page", 1),
		Limit:     h.parseIntQuery(c, "limit", 20),
	}

	if assessmentType := c.Query("assessment_type"); assessmentType != "" {
		req.AssessmentType = &assessmentType
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		req.CreatedBy = &createdBy
	}

	response, err := h.paperService.List(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListMyPapers lists the papers created by the authenticated user
// @Summary List my question papers
// @Tags question-papers
// @Produce json
// @Success 200 {object} services.PaperListResponse
// @Router /question-papers/my [get]
func (h *PaperHandler) ListMyPapers(c *gin.Context) {
	h.LogRequest(c, "Listing own question papers")

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	req := &services.ListPapersRequest{
		CreatedBy: &actor.ID,
		Page:      h.parseIntQuery(c, "page", 1),
		Limit:     h.parseIntQuery(c, "limit", 20),
	}

	response, err := h.paperService.List(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdatePaper updates paper metadata and optionally replaces its entry list
// @Summary Update question paper
// @Tags question-papers
// @Accept json
// @Produce json
// @Param id path uint true "Paper ID"
// @Param paper body services.UpdatePaperRequest true "Fields to change"
// @Success 200 {object} services.PaperView
// @Failure 409 {object} ErrorResponse
// @Router /question-papers/{id} [put]
func (h *PaperHandler) UpdatePaper(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating question paper", "paper_id", id)

	var req services.UpdatePaperRequest
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

	paper, err := h.paperService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paper)
}

// DeletePaper deletes a question paper
// @Summary Delete question paper
// @Tags question-papers
// @Param id path uint true "Paper ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /question-papers/{id} [delete]
func (h *PaperHandler) DeletePaper(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting question paper", "paper_id", id)

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	if err := h.paperService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DownloadPaperPDF renders a resolved paper into a printable PDF
// @Summary Download question paper as PDF
// @Tags question-papers
// @Produce application/pdf
// @Param id path uint true "Paper ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /question-papers/{id}/pdf [get]
func (h *PaperHandler) DownloadPaperPDF(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Rendering question paper PDF", "paper_id", id)

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	paper, err := h.paperService.Resolve(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderPaper(paper, &buf); err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to render PDF", err)
		return
	}

	// Rendering is a download, not a mutation; a publish failure must not
	// block the response.
	event := events.NewPaperRenderedEvent(paper.ID, paper.Title, paper.TotalMarks, actor.ID)
	if err := h.eventPublisher.PublishNotificationEvent(c.Request.Context(), event); err != nil {
		h.logger.Warn("Failed to publish paper rendered event", "error", err, "paper_id", paper.ID)
	}

	filename := strings.ReplaceAll(paper.Title, " ", "_") + ".pdf"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
