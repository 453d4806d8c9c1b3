package handlers

import (
	"net/http"

	"github.com/edupaper/authoring-service/internal/services"
	"github.com/edupaper/authoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// AddendumHandler serves supporting file uploads attached to questions and
// question papers.
type AddendumHandler struct {
	BaseHandler
	addendumService services.AddendumService
}

func NewAddendumHandler(addendumService services.AddendumService, logger utils.Logger) *AddendumHandler {
	return &AddendumHandler{
		BaseHandler:     NewBaseHandler(logger),
		addendumService: addendumService,
	}
}

// UploadQuestionAddendum attaches a file to a question
// @Summary Upload question addendum
// @Tags addendums
// @Accept multipart/form-data
// @Produce json
// @Param id path uint true "Question ID"
// @Param file formData file true "Addendum file"
// @Param title formData string true "Addendum title"
// @Success 201 {object} models.QuestionAddendum
// @Failure 400 {object} ErrorResponse
// @Router /questions/{id}/addendums [post]
func (h *AddendumHandler) UploadQuestionAddendum(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Uploading question addendum", "question_id", id)

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	req, ok := h.parseUploadForm(c)
	if !ok {
		return
	}

	addendum, err := h.addendumService.UploadForQuestion(c.Request.Context(), id, req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, addendum)
}

// ListQuestionAddendums lists the files attached to a question
// @Summary List question addendums
// @Tags addendums
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {array} models.QuestionAddendum
// @Router /questions/{id}/addendums [get]
func (h *AddendumHandler) ListQuestionAddendums(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	addendums, err := h.addendumService.ListForQuestion(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, addendums)
}

// UploadPaperAddendum attaches a file to a question paper
// @Summary Upload paper addendum
// @Tags addendums
// @Accept multipart/form-data
// @Produce json
// @Param id path uint true "Paper ID"
// @Param file formData file true "Addendum file"
// @Param title formData string true "Addendum title"
// @Success 201 {object} models.PaperAddendum
// @Failure 400 {object} ErrorResponse
// @Router /question-papers/{id}/addendums [post]
func (h *AddendumHandler) UploadPaperAddendum(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Uploading paper addendum", "paper_id", id)

	actor, ok := h.currentActor(c)
	if !ok {
		return
	}

	req, ok := h.parseUploadForm(c)
	if !ok {
		return
	}

	addendum, err := h.addendumService.UploadForPaper(c.Request.Context(), id, req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, addendum)
}

// ListPaperAddendums lists the files attached to a question paper
// @Summary List paper addendums
// @Tags addendums
// @Produce json
// @Param id path uint true "Paper ID"
// @Success 200 {array} models.PaperAddendum
// @Router /question-papers/{id}/addendums [get]
func (h *AddendumHandler) ListPaperAddendums(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	addendums, err := h.addendumService.ListForPaper(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, addendums)
}

// parseUploadForm reads the multipart payload into an upload request. The
// file handle is passed through as a reader; the service decides whether to
// accept it before anything is stored.
func (h *AddendumHandler) parseUploadForm(c *gin.Context) (*services.UploadAddendumRequest, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file in multipart payload",
			Details: err.Error(),
		})
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to read uploaded file", err)
		return nil, false
	}

	req := &services.UploadAddendumRequest{
		Title:       c.PostForm("title"),
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Content:     file,
	}

	if description := c.PostForm("description"); description != "" {
		req.Description = &description
	}

	return req, true
}
