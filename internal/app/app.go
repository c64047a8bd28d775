// Package app orchestrates the analyze/resolve/dispatch workflow and
// owns the process-wide application state
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/manmohanbh/tubestream-pwa-v2/internal/database"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/dispatcher"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/resolver"
	"github.com/manmohanbh/tubestream-pwa-v2/pkg/models"
)

var (
	ErrNoRecord = errors.New("no video analyzed yet")
	ErrNoFormat = errors.New("unknown format for this video")
)

// State is a snapshot of the controller's current phase, handed to the
// view layer. The live state never escapes the mutex.
type State struct {
	Status      models.AnalysisStatus   `json:"status"`
	Current     *models.VideoRecord     `json:"current,omitempty"`
	Progress    models.DownloadProgress `json:"progress"`
	LastError   string                  `json:"last_error,omitempty"`
	BackendURL  string                  `json:"backend_url,omitempty"`
	ProEngineOn bool                    `json:"pro_engine_on"`
	CurrentURL  string                  `json:"current_url,omitempty"`
}

// App holds the single in-flight workflow state and wires the resolver
// and dispatcher together. All state transitions take last-writer-wins
// semantics under one mutex.
type App struct {
	resolver   *resolver.Resolver
	dispatcher *dispatcher.Dispatcher
	db         *database.DB
	logger     *slog.Logger

	mu         sync.Mutex
	status     models.AnalysisStatus
	current    *models.VideoRecord
	currentURL string
	lastError  string
	backendURL string
}

// New creates the application controller, loading the persisted
// backend endpoint. defaultBackendURL seeds the setting when nothing
// is stored yet.
func New(res *resolver.Resolver, disp *dispatcher.Dispatcher, db *database.DB, defaultBackendURL string) (*App, error) {
	backendURL, err := db.GetSetting(database.SettingBackendURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load backend setting: %w", err)
	}
	if backendURL == "" {
		backendURL = defaultBackendURL
	}

	return &App{
		resolver:   res,
		dispatcher: disp,
		db:         db,
		logger:     slog.Default(),
		status:     models.StatusIdle,
		backendURL: backendURL,
	}, nil
}

// State returns a snapshot of the current application state
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return State{
		Status:      a.status,
		Current:     a.current,
		Progress:    a.dispatcher.Progress(),
		LastError:   a.lastError,
		BackendURL:  a.backendURL,
		ProEngineOn: a.backendURL != "",
		CurrentURL:  a.currentURL,
	}
}

// Analyze resolves a URL into the current record. On success the
// record replaces the current one and is prepended to the history; on
// failure the previous record is left untouched and status moves to
// error.
func (a *App) Analyze(ctx context.Context, rawURL string) (*models.VideoRecord, error) {
	a.mu.Lock()
	if a.status == models.StatusDownloading {
		a.mu.Unlock()
		return nil, dispatcher.ErrDownloadInProgress
	}
	a.status = models.StatusLoading
	a.lastError = ""
	a.mu.Unlock()

	record, err := a.resolver.Resolve(ctx, rawURL)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		a.status = models.StatusError
		a.lastError = err.Error()
		return nil, err
	}

	a.current = record
	a.currentURL = rawURL
	a.status = models.StatusReady

	if dbErr := a.db.SaveRecord(record); dbErr != nil {
		// History is best-effort; the analysis itself succeeded
		a.logger.Warn("Failed to persist history entry", "video_id", record.ID, "error", dbErr)
	}

	return record, nil
}

// Download dispatches the chosen format for the current record. The
// backend endpoint in effect is the one configured at call time;
// settings changes never affect an in-flight download.
func (a *App) Download(ctx context.Context, formatID string) (*dispatcher.Outcome, error) {
	a.mu.Lock()
	record := a.current
	originalURL := a.currentURL
	backendURL := a.backendURL

	if record == nil {
		a.mu.Unlock()
		return nil, ErrNoRecord
	}
	format, ok := record.FindFormat(formatID)
	if !ok {
		a.mu.Unlock()
		return nil, ErrNoFormat
	}
	a.status = models.StatusDownloading
	a.lastError = ""
	a.mu.Unlock()

	if originalURL == "" {
		originalURL = record.WatchURL()
	}

	outcome, err := a.dispatcher.Dispatch(ctx, record, format, originalURL, backendURL, nil)

	a.mu.Lock()
	defer a.mu.Unlock()

	// Every dispatch ends back in a recoverable state; the record
	// stays current whether or not delivery worked.
	a.status = models.StatusReady

	if err != nil {
		if errors.Is(err, dispatcher.ErrDownloadInProgress) {
			a.status = models.StatusDownloading
		} else {
			a.lastError = err.Error()
		}
		return nil, err
	}

	return outcome, nil
}

// CancelDownload aborts the in-flight download, if any
func (a *App) CancelDownload() {
	a.dispatcher.Cancel()
}

// History returns the persisted analysis history, most recent first
func (a *App) History() ([]*models.VideoRecord, error) {
	return a.db.ListHistory()
}

// ClearHistory wipes the persisted history
func (a *App) ClearHistory() error {
	return a.db.ClearHistory()
}

// SelectFromHistory re-activates a history entry as the current record
func (a *App) SelectFromHistory(videoID string) (*models.VideoRecord, error) {
	record, err := a.db.GetRecord(videoID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoRecord
		}
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == models.StatusDownloading {
		return nil, dispatcher.ErrDownloadInProgress
	}
	a.current = record
	a.currentURL = record.WatchURL()
	a.status = models.StatusReady
	a.lastError = ""

	return record, nil
}

// BackendURL returns the download engine endpoint in effect
func (a *App) BackendURL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.backendURL
}

// SetBackendURL stores the download engine endpoint. An empty value
// switches the app back to sandbox mode. Takes effect from the next
// dispatch.
func (a *App) SetBackendURL(rawURL string) error {
	cleaned := strings.TrimRight(strings.TrimSpace(rawURL), "/")

	if err := a.db.SetSetting(database.SettingBackendURL, cleaned); err != nil {
		return err
	}

	a.mu.Lock()
	a.backendURL = cleaned
	a.mu.Unlock()

	a.logger.Info("Backend endpoint updated", "backend", cleaned, "pro_engine", cleaned != "")
	return nil
}
