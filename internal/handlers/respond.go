package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sociograph/sociograph/internal/apperrors"
)

func statusFor(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeValidation:
		return http.StatusBadRequest
	case apperrors.CodeConflict:
		return http.StatusConflict
	case apperrors.CodeNotAuthorized:
		return http.StatusForbidden
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(status, gin.H{"error": message})
}

// pagination reads offset/limit query params; limit defaults to 20
// and never exceeds 100.
func pagination(c *gin.Context) (int, int) {
	offset := 0
	limit := 20
	query := struct {
		Offset int `form:"offset"`
		Limit  int `form:"limit"`
	}{}
	if err := c.ShouldBindQuery(&query); err == nil {
		offset = query.Offset
		if query.Limit > 0 {
			limit = query.Limit
		}
		if limit > 100 {
			limit = 100
		}
		if offset < 0 {
			offset = 0
		}
	}
	return offset, limit
}
