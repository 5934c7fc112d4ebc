package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grade-analytics-api/internal/models"
	"github.com/noah-isme/grade-analytics-api/pkg/response"
)

type yearReviewService interface {
	Review(ctx context.Context, userID string) (*models.YearReviewStats, bool, error)
}

type yearReviewExporter interface {
	YearReviewPDF(ctx context.Context, userID string) ([]byte, error)
}

// YearReviewHandler serves the year in review as JSON or PDF.
type YearReviewHandler struct {
	reviews yearReviewService
	exports yearReviewExporter
}

// NewYearReviewHandler constructs the handler.
func NewYearReviewHandler(reviews yearReviewService, exports yearReviewExporter) *YearReviewHandler {
	return &YearReviewHandler{reviews: reviews, exports: exports}
}

// Me godoc
// @Summary Year in review of the current user
// @Tags YearReview
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /me/year-review [get]
func (h *YearReviewHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	start := time.Now()
	stats, cacheHit, err := h.reviews.Review(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, stats, cacheHit, start)
}

// PDF godoc
// @Summary Year in review rendered as PDF
// @Tags YearReview
// @Produce application/pdf
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /me/year-review.pdf [get]
func (h *YearReviewHandler) PDF(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	payload, err := h.exports.YearReviewPDF(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, "year-review.pdf", contentTypePDF, payload)
}
