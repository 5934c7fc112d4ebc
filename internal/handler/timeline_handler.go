package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/grade-analytics-api/internal/models"
	"github.com/noah-isme/grade-analytics-api/pkg/response"
)

type userTimelineService interface {
	UserGrades(ctx context.Context, userID string, days int) ([]models.GradeTimelinePoint, bool, error)
}

// TimelineHandler serves the per-user grade growth chart.
type TimelineHandler struct {
	timeline userTimelineService
	validate *validator.Validate
}

// NewTimelineHandler constructs the handler.
func NewTimelineHandler(timeline userTimelineService, validate *validator.Validate) *TimelineHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &TimelineHandler{timeline: timeline, validate: validate}
}

// Me godoc
// @Summary Daily grade timeline of the current user
// @Tags Timeline
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window length in days"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /me/timeline [get]
func (h *TimelineHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	days, err := bindTimelineQuery(c, h.validate)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	points, cacheHit, err := h.timeline.UserGrades(c.Request.Context(), userID, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, points, cacheHit, start)
}
