package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/grade-analytics-api/internal/dto"
	"github.com/noah-isme/grade-analytics-api/internal/middleware"
	"github.com/noah-isme/grade-analytics-api/internal/models"
	appErrors "github.com/noah-isme/grade-analytics-api/pkg/errors"
	"github.com/noah-isme/grade-analytics-api/pkg/response"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// currentUserID returns the authenticated user id or writes a 401.
func currentUserID(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

func respondWithMeta(c *gin.Context, data interface{}, cacheHit bool, start time.Time) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, data, meta)
}

func bindTimelineQuery(c *gin.Context, validate *validator.Validate) (int, error) {
	var query dto.TimelineQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "days must be an integer")
	}
	if err := validate.Struct(query); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "days must be positive")
	}
	return query.Days, nil
}
