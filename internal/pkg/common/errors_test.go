package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomError_IsByCode(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("generate: %w", ErrNotMember)
	assert.ErrorIs(t, wrapped, ErrForbidden)
	assert.ErrorIs(t, ErrListNotFound, ErrNotFound)
	assert.NotErrorIs(t, ErrListNotFound, ErrForbidden)
}

func TestCustomError_WithErr(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := ErrInternalError.WithErr(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "服務器內部錯誤: connection reset", err.Error())
	assert.Nil(t, ErrInternalError.Err, "predefined errors must not be mutated")

	msg := ErrInvalidDateRange.WithMessage("start_date after end_date")
	assert.Equal(t, http.StatusBadRequest, msg.Status)
	assert.Equal(t, ErrCodeInvalidRequest, msg.Code)
}

func TestAsCustomError(t *testing.T) {
	t.Parallel()

	ce := AsCustomError(fmt.Errorf("wrap: %w", ErrItemNotFound))
	assert.Equal(t, http.StatusNotFound, ce.Status)

	plain := errors.New("boom")
	ce = AsCustomError(plain)
	assert.Equal(t, ErrCodeInternalError, ce.Code)
	assert.ErrorIs(t, ce, plain)
}

func TestNewErrorResponse(t *testing.T) {
	t.Parallel()

	err := ErrConflict.WithErr(errors.New("duplicate key"))
	assert.Equal(t, ErrorResponse{Error: "資源衝突", Code: ErrCodeConflict}, NewErrorResponse(err, false))
	assert.Equal(t, "duplicate key", NewErrorResponse(err, true).Details)
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("field: %w", NewValidationError("name is required"))
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(ErrInvalidRequest))
}

func TestBindingError(t *testing.T) {
	t.Parallel()

	UseJSONFieldNames()

	type request struct {
		StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
		ItemID    string `json:"item_id" binding:"required"`
	}
	bind := func(body string) error {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var req request
		return c.ShouldBindJSON(&req)
	}

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing field", `{"start_date":"2026-05-01"}`, "item_id is required"},
		{"bad date", `{"start_date":"05/01/2026","item_id":"eggs"}`, "start_date must match 2006-01-02"},
		{"not json", `not json`, "invalid JSON body"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := BindingError(bind(tt.body))
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Equal(t, tt.message, AsCustomError(err).Message)
		})
	}

	require.NoError(t, bind(`{"start_date":"2026-05-01","item_id":"eggs"}`))

	err := BindingError(fmt.Errorf("read: %w", &http.MaxBytesError{Limit: 16}))
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}
