package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/projecttime-api/internal/services"
)

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-03-11")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDate("2026-03-11T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 8, 30, 0, 0, time.UTC), d)

	_, err = parseDate("11/03/2026")
	assert.Error(t, err)
}

func TestIsNull(t *testing.T) {
	raw := map[string]json.RawMessage{
		"due_date": json.RawMessage("null"),
		"title":    json.RawMessage(`"x"`),
	}
	assert.True(t, isNull(raw, "due_date"))
	assert.False(t, isNull(raw, "title"))
	assert.False(t, isNull(raw, "parent_id"))
}

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err  error
		code int
	}{
		{services.ErrTaskNotFound, http.StatusNotFound},
		{fmt.Errorf("reorder: %w", services.ErrTaskNotFound), http.StatusNotFound},
		{services.ErrProjectNotFound, http.StatusNotFound},
		{services.ErrTaskCycle, http.StatusForbidden},
		{services.ErrTaskHasTimeEntries, http.StatusForbidden},
		{services.ErrProjectCodeTaken, http.StatusConflict},
		{services.ErrEmailTaken, http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrInvalidMinutes, http.StatusBadRequest},
		{services.ErrPasswordTooShort, http.StatusBadRequest},
		{services.ErrAIServiceNotConfigured, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondServiceError(c, tt.err)

			assert.Equal(t, tt.code, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["code"])
		})
	}
}

func TestCallerWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, _, ok := caller(c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
