package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sociograph/sociograph/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.Validation("bad input"), http.StatusBadRequest},
		{apperrors.Conflict("already there"), http.StatusConflict},
		{apperrors.NotAuthorized("nope"), http.StatusForbidden},
		{apperrors.NotFound("post"), http.StatusNotFound},
		{errors.New("db exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "error %v", tt.err)
	}
}

func TestRespondErrorMasksInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, errors.New("dsn=host secret leaked"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestRespondErrorKeepsClientMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, apperrors.Conflict("you have already followed this user"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "you have already followed this user")
}

func TestPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query      string
		wantOffset int
		wantLimit  int
	}{
		{"", 0, 20},
		{"offset=40&limit=10", 40, 10},
		{"limit=500", 0, 100},
		{"offset=-5", 0, 20},
		{"limit=0", 0, 20},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

		offset, limit := pagination(c)
		assert.Equal(t, tt.wantOffset, offset, "query %q", tt.query)
		assert.Equal(t, tt.wantLimit, limit, "query %q", tt.query)
	}
}
