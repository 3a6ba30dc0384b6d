package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/account"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func runHandler(fn gin.HandlerFunc) *httptest.ResponseRecorder {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.GET("/test", fn)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestBaseHandler_Responses(t *testing.T) {
	h := &BaseHandler{}

	rec := runHandler(func(c *gin.Context) { h.Success(c, gin.H{"ok": true}) })
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"ok":true}}`, rec.Body.String())

	rec = runHandler(func(c *gin.Context) { h.Created(c, gin.H{"id": 1}) })
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = runHandler(func(c *gin.Context) { h.NoContent(c) })
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = runHandler(func(c *gin.Context) { h.SuccessWithMeta(c, []int{1, 2}, 45, 2, 20) })
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 3, env.Meta.TotalPages)

	rec = runHandler(func(c *gin.Context) { h.BadRequest(c, "nope") })
	env = decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, env.Error.Code)
	assert.Equal(t, "req-42", env.Error.RequestID)
}

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped domain error", fmt.Errorf("load session: %w", checkout.ErrSessionNotFound), http.StatusNotFound, "SESSION_NOT_FOUND"},
		{"invalid transition", checkout.ErrInvalidTransition, http.StatusConflict, "INVALID_STATE_TRANSITION"},
		{"submission in progress", checkout.ErrSubmissionInProgress, http.StatusConflict, "SUBMISSION_IN_PROGRESS"},
		{"empty cart", checkout.ErrEmptyCart, http.StatusUnprocessableEntity, "EMPTY_CART"},
		{"unauthorized", shared.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unmapped domain code", shared.NewDomainError("SOMETHING_NEW", "x"), http.StatusUnprocessableEntity, "SOMETHING_NEW"},
		{"plain error", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runHandler(func(c *gin.Context) { h.HandleError(c, tt.err) })
			env := decodeEnvelope(t, rec)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, "req-42", env.Error.RequestID)
		})
	}

	t.Run("internal details are hidden", func(t *testing.T) {
		rec := runHandler(func(c *gin.Context) { h.HandleError(c, errors.New("pq: password authentication failed")) })
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("incomplete address lists fields", func(t *testing.T) {
		rec := runHandler(func(c *gin.Context) {
			h.HandleError(c, account.NewIncompleteAddressError([]string{"street", "city"}))
		})
		env := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "INCOMPLETE_ADDRESS", env.Error.Code)
		require.Len(t, env.Error.Details, 2)
		assert.Equal(t, "street", env.Error.Details[0].Field)
		assert.Equal(t, "city", env.Error.Details[1].Field)
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		rec := runHandler(func(c *gin.Context) {
			h.HandleError(c, nil)
			c.Status(http.StatusAccepted)
		})
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})
}
