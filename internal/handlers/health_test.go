package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/projecttime-api/internal/events"
	"github.com/yukikurage/projecttime-api/internal/testutil"
)

type brokerStub struct {
	connected bool
}

func (b *brokerStub) Publish(context.Context, events.TaskEvent) error { return nil }
func (b *brokerStub) Close() error                                   { return nil }
func (b *brokerStub) IsConnected() bool                              { return b.connected }

func TestReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewTestDB(t)

	tests := []struct {
		name      string
		publisher events.Publisher
		code      int
		events    string
	}{
		{"no broker", events.NoopPublisher{}, http.StatusOK, "disabled"},
		{"broker connected", &brokerStub{connected: true}, http.StatusOK, "connected"},
		{"broker down", &brokerStub{connected: false}, http.StatusServiceUnavailable, "disconnected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health/readyz", NewHealthHandler(db, tt.publisher).Readyz)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/readyz", nil))

			assert.Equal(t, tt.code, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.events, body["events"])
		})
	}
}
