package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grade-analytics-api/internal/models"
	appErrors "github.com/noah-isme/grade-analytics-api/pkg/errors"
	"github.com/noah-isme/grade-analytics-api/pkg/response"
)

type averageService interface {
	UserAverage(ctx context.Context, userID string) (*models.UserAverage, bool, error)
	YearAverage(ctx context.Context, userID, yearID string) (*models.YearAverage, bool, error)
	SubjectAverages(ctx context.Context, userID, yearID string) ([]models.SubjectAverage, bool, error)
	CustomAverage(ctx context.Context, userID, customID string) (*models.CustomAverageResult, bool, error)
}

type cacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}

// AverageHandler exposes the subject tree and workspace averages.
type AverageHandler struct {
	averages averageService
	cache    cacheInvalidator
}

// NewAverageHandler constructs the handler.
func NewAverageHandler(averages averageService, cache cacheInvalidator) *AverageHandler {
	return &AverageHandler{averages: averages, cache: cache}
}

// Me godoc
// @Summary Cross-workspace average of the current user
// @Tags Averages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me/average [get]
func (h *AverageHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	start := time.Now()
	result, cacheHit, err := h.averages.UserAverage(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, result, cacheHit, start)
}

// Year godoc
// @Summary Average of one year
// @Tags Averages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Year ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /years/{id}/average [get]
func (h *AverageHandler) Year(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	yearID, ok := pathID(c)
	if !ok {
		return
	}
	start := time.Now()
	result, cacheHit, err := h.averages.YearAverage(c.Request.Context(), userID, yearID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, result, cacheHit, start)
}

// YearSubjects godoc
// @Summary Per-subject averages of one year
// @Tags Averages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Year ID"
// @Success 200 {object} response.Envelope
// @Router /years/{id}/subjects/averages [get]
func (h *AverageHandler) YearSubjects(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	yearID, ok := pathID(c)
	if !ok {
		return
	}
	start := time.Now()
	result, cacheHit, err := h.averages.SubjectAverages(c.Request.Context(), userID, yearID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, result, cacheHit, start)
}

// Custom godoc
// @Summary Evaluate a custom average
// @Tags Averages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Custom average ID"
// @Success 200 {object} response.Envelope
// @Router /custom-averages/{id}/average [get]
func (h *AverageHandler) Custom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	customID, ok := pathID(c)
	if !ok {
		return
	}
	start := time.Now()
	result, cacheHit, err := h.averages.CustomAverage(c.Request.Context(), userID, customID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, result, cacheHit, start)
}

// Refresh godoc
// @Summary Drop cached analytics of the current user
// @Tags Averages
// @Security BearerAuth
// @Success 204
// @Router /me/analytics/refresh [post]
func (h *AverageHandler) Refresh(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if h.cache != nil {
		if err := h.cache.InvalidateUser(c.Request.Context(), userID); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to refresh analytics"))
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id is required"))
		return "", false
	}
	return id, true
}
