package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/edupaper/authoring-service/internal/services"
	"github.com/gin-gonic/gin"
)

// parseIDParam returns the numeric path parameter, or 0 after writing a 400.
// Zero itself is rejected so the sentinel stays unambiguous for callers.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a positive integer",
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (h *BaseHandler) parseUintQuery(c *gin.Context, param string) *uint {
	valueStr := c.Query(param)
	if valueStr == "" {
		return nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(value)
	return &id
}

func (h *BaseHandler) parseUintListQuery(c *gin.Context, param string) []uint {
	valueStr := c.Query(param)
	if valueStr == "" {
		return nil
	}
	var ids []uint
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if value, err := strconv.ParseUint(part, 10, 32); err == nil {
			ids = append(ids, uint(value))
		}
	}
	return ids
}

func (h *BaseHandler) parseBoolQuery(c *gin.Context, param string) bool {
	value, err := strconv.ParseBool(c.Query(param))
	if err != nil {
		return false
	}
	return value
}

// currentActor resolves the authenticated principal placed in the context by
// the auth middleware. Writes a 401 and returns false when it is absent.
func (h *BaseHandler) currentActor(c *gin.Context) (services.Actor, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return services.Actor{}, false
	}

	role, _ := c.Get("role")
	roleStr, _ := role.(string)

	return services.Actor{ID: userID.(string), Role: roleStr}, true
}

// handleServiceError maps service-layer errors onto HTTP status codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var referentialError *services.ReferentialError
	if errors.As(err, &referentialError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Referenced " + referentialError.Resource + " does not exist",
			Details: map[string]interface{}{
				"resource":    referentialError.Resource,
				"missing_ids": referentialError.MissingIDs,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrQuestionDepthLimit):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Sub-questions cannot have their own sub-questions",
		})
	case errors.Is(err, services.ErrQuestionHasChildren):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Question has sub-questions and cannot be deleted",
		})
	case errors.Is(err, services.ErrPaperStaleVersion):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Question paper was modified concurrently, retry with the current version",
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case services.IsUnauthorized(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Resource not found",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
