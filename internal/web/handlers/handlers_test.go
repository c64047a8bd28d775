package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/manmohanbh/tubestream-pwa-v2/internal/app"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/database"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/dispatcher"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/gemini"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/gemini/mocks"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/resolver"
)

const testURL = "https://youtu.be/dQw4w9WgXcQ"

func newTestHandlers(t *testing.T, generator gemini.TextGenerator) *Handlers {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	downloadsPath := t.TempDir()
	a, err := app.New(resolver.New(generator, nil), dispatcher.New(downloadsPath), db, "")
	require.NoError(t, err)

	return NewHandlers(a, downloadsPath)
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func analyze(t *testing.T, h *Handlers, videoURL string) {
	t.Helper()

	w := httptest.NewRecorder()
	h.Analyze(w, postForm("/api/analyze", url.Values{"url": {videoURL}}))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandlers_Views(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestHandlers(t, mocks.NewMockTextGenerator(ctrl))

	tests := []struct {
		name    string
		path    string
		handler http.HandlerFunc
		want    string
	}{
		{"home", "/", h.Home, "Paste YouTube or Shorts URL"},
		{"library", "/library", h.Library, "Your history is empty"},
		{"settings", "/settings", h.Settings, "Backend URL"},
		{"help", "/help", h.Help, "Deployment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()

			tt.handler(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			require.Contains(t, w.Header().Get("Content-Type"), "text/html")
			require.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestHandlers_Health(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestHandlers(t, mocks.NewMockTextGenerator(ctrl))

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHandlers_Analyze(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	generator := mocks.NewMockTextGenerator(ctrl)
	generator.EXPECT().GenerateVideoInfo(gomock.Any(), testURL).Return(&gemini.GenerationResult{
		Text: "T: Never Gonna Give You Up\nC: Rick Astley\nD: 3:33\nV: video",
	}, nil)

	h := newTestHandlers(t, generator)

	w := httptest.NewRecorder()
	h.Analyze(w, postForm("/api/analyze", url.Values{"url": {testURL}}))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var resp struct {
		Status string `json:"status"`
		Video  struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Author string `json:"author"`
		} `json:"video"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "ready", resp.Status)
	require.Equal(t, "dQw4w9WgXcQ", resp.Video.ID)
	require.Equal(t, "Never Gonna Give You Up", resp.Video.Title)
	require.Equal(t, "Rick Astley", resp.Video.Author)
}

func TestHandlers_AnalyzeInvalidURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestHandlers(t, mocks.NewMockTextGenerator(ctrl))

	w := httptest.NewRecorder()
	h.Analyze(w, postForm("/api/analyze", url.Values{"url": {"https://example.com/watch"}}))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "valid YouTube link")
}

func TestHandlers_AnalyzeUpstreamFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	generator := mocks.NewMockTextGenerator(ctrl)
	generator.EXPECT().GenerateVideoInfo(gomock.Any(), testURL).
		Return(nil, context.DeadlineExceeded)

	h := newTestHandlers(t, generator)

	w := httptest.NewRecorder()
	h.Analyze(w, postForm("/api/analyze", url.Values{"url": {testURL}}))

	require.Equal(t, http.StatusGatewayTimeout, w.Code)
	require.Contains(t, w.Body.String(), "timed out")
}

func TestHandlers_DownloadWithoutRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestHandlers(t, mocks.NewMockTextGenerator(ctrl))

	w := httptest.NewRecorder()
	h.Download(w, postForm("/api/download", url.Values{"format": {"720p"}}))

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "no video analyzed yet")
}

func TestHandlers_DownloadSandbox(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	generator := mocks.NewMockTextGenerator(ctrl)
	generator.EXPECT().GenerateVideoInfo(gomock.Any(), testURL).Return(&gemini.GenerationResult{
		Text: "T: Demo\nC: Creator\nD: 1:00\nV: video",
	}, nil)

	h := newTestHandlers(t, generator)
	analyze(t, h, testURL)

	w := httptest.NewRecorder()
	h.Download(w, postForm("/api/download", url.Values{"format": {"mp3-320"}}))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		JobID     string `json:"job_id"`
		Mode      string `json:"mode"`
		Message   string `json:"message"`
		SavedFile string `json:"saved_file"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.JobID)
	require.Equal(t, "sandbox", resp.Mode)
	require.Equal(t, "Sandbox demo file saved", resp.Message)
	require.Equal(t, "Demo_320kbps.mp3", resp.SavedFile)
}

func TestHandlers_DownloadUnknownFormat(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	generator := mocks.NewMockTextGenerator(ctrl)
	generator.EXPECT().GenerateVideoInfo(gomock.Any(), testURL).Return(&gemini.GenerationResult{
		Text: "T: Demo\nC: Creator\nD: 1:00\nV: video",
	}, nil)

	h := newTestHandlers(t, generator)
	analyze(t, h, testURL)

	w := httptest.NewRecorder()
	h.Download(w, postForm("/api/download", url.Values{"format": {"4k"}}))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "unknown format")
}

func TestHandlers_Progress(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestHandlers(t, mocks.NewMockTextGenerator(ctrl))

	w := httptest.NewRecorder()
	h.Progress(w, httptest.NewRequest("GET", "/api/progress", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var progress struct {
		IsDownloading bool    `json:"is_downloading"`
		Progress      float64 `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progress))
	require.False(t, progress.IsDownloading)
	require.Zero(t, progress.Progress)
}

func TestHandlers_HistoryAndClear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	generator := mocks.NewMockTextGenerator(ctrl)
	generator.EXPECT().GenerateVideoInfo(gomock.Any(), testURL).Return(&gemini.GenerationResult{
		Text: "T: Demo\nC: Creator\nD: 1:00\nV: video",
	}, nil)

	h := newTestHandlers(t, generator)
	analyze(t, h, testURL)

	w := httptest.NewRecorder()
	h.History(w, httptest.NewRequest("GET", "/api/history", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var history []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 1)
	require.Equal(t, "dQw4w9WgXcQ", history[0].ID)

	w = httptest.NewRecorder()
	h.ClearHistory(w, httptest.NewRequest("DELETE", "/api/history", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.History(w, httptest.NewRequest("GET", "/api/history", nil))
	history = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Empty(t, history)
}

func TestHandlers_SelectFromHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	generator := mocks.NewMockTextGenerator(ctrl)
	generator.EXPECT().GenerateVideoInfo(gomock.Any(), testURL).Return(&gemini.GenerationResult{
		Text: "T: Demo\nC: Creator\nD: 1:00\nV: video",
	}, nil)

	h := newTestHandlers(t, generator)
	analyze(t, h, testURL)

	req := httptest.NewRequest("POST", "/api/history/dQw4w9WgXcQ/select", nil)
	req.SetPathValue("id", "dQw4w9WgXcQ")
	w := httptest.NewRecorder()

	h.SelectFromHistory(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "dQw4w9WgXcQ")
}

func TestHandlers_SelectFromHistoryNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestHandlers(t, mocks.NewMockTextGenerator(ctrl))

	req := httptest.NewRequest("POST", "/api/history/aaaaaaaaaaa/select", nil)
	req.SetPathValue("id", "aaaaaaaaaaa")
	w := httptest.NewRecorder()

	h.SelectFromHistory(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlers_Settings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestHandlers(t, mocks.NewMockTextGenerator(ctrl))

	w := httptest.NewRecorder()
	h.SaveSettings(w, postForm("/api/settings", url.Values{
		"backend_url": {"https://engine.example.com/"},
	}))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.GetSettings(w, httptest.NewRequest("GET", "/api/settings", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var settings struct {
		BackendURL  string `json:"backend_url"`
		ProEngineOn bool   `json:"pro_engine_on"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	require.Equal(t, "https://engine.example.com", settings.BackendURL)
	require.True(t, settings.ProEngineOn)
}

func TestHandlers_ServeDownload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestHandlers(t, mocks.NewMockTextGenerator(ctrl))

	path := filepath.Join(h.downloadsPath, "Demo_720p.mp4")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0644))

	req := httptest.NewRequest("GET", "/downloads/Demo_720p.mp4", nil)
	req.SetPathValue("file", "Demo_720p.mp4")
	w := httptest.NewRecorder()

	h.ServeDownload(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "Demo_720p.mp4")
	require.Equal(t, "payload", w.Body.String())
}

func TestHandlers_ServeDownloadMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestHandlers(t, mocks.NewMockTextGenerator(ctrl))

	req := httptest.NewRequest("GET", "/downloads/nope.mp4", nil)
	req.SetPathValue("file", "nope.mp4")
	w := httptest.NewRecorder()

	h.ServeDownload(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}
