// Package handlers provides HTTP handlers for the web interface
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/manmohanbh/tubestream-pwa-v2/internal/app"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/dispatcher"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/resolver"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/web/views"
)

// Handlers contains all HTTP handlers and their dependencies
type Handlers struct {
	app           *app.App
	downloadsPath string
	logger        *slog.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(application *app.App, downloadsPath string) *Handlers {
	return &Handlers{
		app:           application,
		downloadsPath: downloadsPath,
		logger:        slog.Default(),
	}
}

// Home handles the home page (paste form, current record, format catalog)
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	component := views.Base("TubeStream", views.Home(h.app.State()))
	if err := component.Render(r.Context(), w); err != nil {
		h.logger.Error("Failed to render home view", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
}

// Library handles the history page
func (h *Handlers) Library(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	history, err := h.app.History()
	if err != nil {
		h.logger.Error("Failed to load history", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	component := views.Base("Library", views.Library(history))
	if err := component.Render(r.Context(), w); err != nil {
		h.logger.Error("Failed to render library view", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
}

// Settings handles the settings page
func (h *Handlers) Settings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	component := views.Base("Settings", views.Settings(h.app.BackendURL()))
	if err := component.Render(r.Context(), w); err != nil {
		h.logger.Error("Failed to render settings view", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
}

// Help handles the deployment guide page
func (h *Handlers) Help(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	component := views.Base("Help", views.Help())
	if err := component.Render(r.Context(), w); err != nil {
		h.logger.Error("Failed to render help view", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
}

// Health reports service liveness
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Analyze handles video analysis requests
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	url := r.FormValue("url")
	record, err := h.app.Analyze(r.Context(), url)
	if err != nil {
		h.logger.Warn("Analysis failed", "url", url, "error", err)
		h.writeError(w, analyzeStatus(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": h.app.State().Status,
		"video":  record,
	})
}

// Download handles download dispatch for the current record
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	formatID := r.FormValue("format")
	outcome, err := h.app.Download(r.Context(), formatID)
	if err != nil {
		h.logger.Warn("Download failed", "format", formatID, "error", err)
		h.writeError(w, downloadStatus(err), err.Error())
		return
	}

	response := map[string]any{
		"job_id":  outcome.JobID,
		"mode":    string(outcome.Mode),
		"message": outcome.Message,
	}
	if outcome.RedirectURL != "" {
		response["redirect_url"] = outcome.RedirectURL
	}
	if outcome.SavedFile != "" {
		response["saved_file"] = filepath.Base(outcome.SavedFile)
	}
	h.writeJSON(w, http.StatusOK, response)
}

// CancelDownload aborts the in-flight download, if any
func (h *Handlers) CancelDownload(w http.ResponseWriter, r *http.Request) {
	h.app.CancelDownload()
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// Progress reports the current download progress snapshot
func (h *Handlers) Progress(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.app.State().Progress)
}

// History returns the stored analysis history
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.app.History()
	if err != nil {
		h.logger.Error("Failed to load history", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, history)
}

// ClearHistory deletes all stored history entries
func (h *Handlers) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.app.ClearHistory(); err != nil {
		h.logger.Error("Failed to clear history", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// SelectFromHistory re-activates a stored record as the current one
func (h *Handlers) SelectFromHistory(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")

	record, err := h.app.SelectFromHistory(videoID)
	if err != nil {
		if errors.Is(err, app.ErrNoRecord) {
			h.writeError(w, http.StatusNotFound, "Video not found in history")
			return
		}
		if errors.Is(err, dispatcher.ErrDownloadInProgress) {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("Failed to select history entry", "video_id", videoID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": h.app.State().Status,
		"video":  record,
	})
}

// GetSettings returns the stored settings
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	state := h.app.State()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"backend_url":   state.BackendURL,
		"pro_engine_on": state.ProEngineOn,
	})
}

// SaveSettings stores the backend endpoint URL
func (h *Handlers) SaveSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	if err := h.app.SetBackendURL(r.FormValue("backend_url")); err != nil {
		h.logger.Error("Failed to save settings", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	state := h.app.State()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"backend_url":   state.BackendURL,
		"pro_engine_on": state.ProEngineOn,
	})
}

// ServeDownload serves a saved demo file as an attachment
func (h *Handlers) ServeDownload(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(r.PathValue("file"))
	path := filepath.Join(h.downloadsPath, name)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
	http.ServeFile(w, r, path)
}

// analyzeStatus maps analysis errors to HTTP status codes
func analyzeStatus(err error) int {
	switch {
	case errors.Is(err, resolver.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, resolver.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, resolver.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, dispatcher.ErrDownloadInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// downloadStatus maps dispatch errors to HTTP status codes
func downloadStatus(err error) int {
	switch {
	case errors.Is(err, app.ErrNoRecord):
		return http.StatusNotFound
	case errors.Is(err, app.ErrNoFormat):
		return http.StatusBadRequest
	case errors.Is(err, dispatcher.ErrBackendUnreachable):
		return http.StatusBadGateway
	case errors.Is(err, dispatcher.ErrDownloadInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
