package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/grade-analytics-api/internal/dto"
	"github.com/noah-isme/grade-analytics-api/internal/models"
	"github.com/noah-isme/grade-analytics-api/internal/service"
	appErrors "github.com/noah-isme/grade-analytics-api/pkg/errors"
	"github.com/noah-isme/grade-analytics-api/pkg/response"
)

type overviewService interface {
	Overview(ctx context.Context) (*models.AdminOverview, bool, error)
}

type growthService interface {
	Growth(ctx context.Context, days int) ([]models.GrowthPoint, bool, error)
}

type adminExporter interface {
	GrowthCSV(ctx context.Context, days int) ([]byte, error)
	OverviewXLSX(ctx context.Context) ([]byte, error)
}

type reviewWarmer interface {
	Warm(ctx context.Context, userIDs []string) (*service.WarmResult, error)
}

// AdminHandler exposes platform-wide statistics to administrators.
type AdminHandler struct {
	overview overviewService
	growth   growthService
	exports  adminExporter
	warmer   reviewWarmer
	validate *validator.Validate
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(overview overviewService, growth growthService, exports adminExporter, warmer reviewWarmer, validate *validator.Validate) *AdminHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &AdminHandler{overview: overview, growth: growth, exports: exports, warmer: warmer, validate: validate}
}

// Overview godoc
// @Summary Adoption and engagement overview
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/overview [get]
func (h *AdminHandler) Overview(c *gin.Context) {
	start := time.Now()
	overview, cacheHit, err := h.overview.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, overview, cacheHit, start)
}

// OverviewXLSX godoc
// @Summary Overview exported as a workbook
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /admin/overview.xlsx [get]
func (h *AdminHandler) OverviewXLSX(c *gin.Context) {
	payload, err := h.exports.OverviewXLSX(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, fmt.Sprintf("overview-%s.xlsx", time.Now().UTC().Format("20060102")), contentTypeXLSX, payload)
}

// Growth godoc
// @Summary Cumulative users, grades and subjects per day
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window length in days"
// @Success 200 {object} response.Envelope
// @Router /admin/growth [get]
func (h *AdminHandler) Growth(c *gin.Context) {
	days, err := bindTimelineQuery(c, h.validate)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	points, cacheHit, err := h.growth.Growth(c.Request.Context(), days)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, points, cacheHit, start)
}

// GrowthCSV godoc
// @Summary Growth timeline as CSV
// @Tags Admin
// @Produce text/csv
// @Security BearerAuth
// @Param days query int false "Window length in days"
// @Success 200 {file} binary
// @Router /admin/growth.csv [get]
func (h *AdminHandler) GrowthCSV(c *gin.Context) {
	days, err := bindTimelineQuery(c, h.validate)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.exports.GrowthCSV(c.Request.Context(), days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, "growth.csv", contentTypeCSV, payload)
}

// WarmYearReview godoc
// @Summary Precompute year in review payloads in the background
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.WarmYearReviewRequest false "Users to warm"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/year-review/warm [post]
func (h *AdminHandler) WarmYearReview(c *gin.Context) {
	var req dto.WarmYearReviewRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
			return
		}
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user_ids"))
		return
	}
	result, err := h.warmer.Warm(c.Request.Context(), req.UserIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, result)
}
