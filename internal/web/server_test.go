package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/manmohanbh/tubestream-pwa-v2/internal/app"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/database"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/dispatcher"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/gemini/mocks"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/resolver"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	downloadsPath := t.TempDir()
	generator := mocks.NewMockTextGenerator(ctrl)
	a, err := app.New(resolver.New(generator, nil), dispatcher.New(downloadsPath), db, "")
	require.NoError(t, err)

	return NewServer(a, "0", downloadsPath)
}

func TestNewServer(t *testing.T) {
	server := newTestServer(t)

	require.NotNil(t, server)
	require.NotNil(t, server.server)
	require.Equal(t, ":0", server.server.Addr)
	require.Equal(t, 15*time.Second, server.server.ReadTimeout)
	require.Equal(t, 15*time.Second, server.server.WriteTimeout)
	require.Equal(t, 60*time.Second, server.server.IdleTimeout)
}

func TestServer_Routes(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"home", "GET", "/", http.StatusOK},
		{"library", "GET", "/library", http.StatusOK},
		{"settings view", "GET", "/settings", http.StatusOK},
		{"help", "GET", "/help", http.StatusOK},
		{"health", "GET", "/health", http.StatusOK},
		{"progress", "GET", "/api/progress", http.StatusOK},
		{"history", "GET", "/api/history", http.StatusOK},
		{"settings api", "GET", "/api/settings", http.StatusOK},
		{"unknown page", "GET", "/nope", http.StatusNotFound},
		{"analyze wrong method", "GET", "/api/analyze", http.StatusMethodNotAllowed},
		{"download wrong method", "GET", "/api/download", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			server.server.Handler.ServeHTTP(w, req)

			require.Equal(t, tt.want, w.Code)
		})
	}
}

func TestServer_Shutdown(t *testing.T) {
	server := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, server.Shutdown(ctx))
}

func TestNewRouter(t *testing.T) {
	server := newTestServer(t)

	mux := NewRouter(server.handlers)
	require.NotNil(t, mux)

	handler, pattern := mux.Handler(httptest.NewRequest("GET", "/health", nil))
	require.NotNil(t, handler)
	require.Equal(t, "GET /health", pattern)
}
