// Package dispatcher executes a chosen format as either a backend
// redirect or a simulated local save
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/google/uuid"

	"github.com/manmohanbh/tubestream-pwa-v2/pkg/models"
)

// Dispatch failure taxonomy
var (
	ErrBackendUnreachable = errors.New("backend connection failed, check your URL in settings")
	ErrDownloadInProgress = errors.New("a download is already in progress")
)

// Mode identifies which delivery path a dispatch took
type Mode string

const (
	ModeSandbox Mode = "sandbox"
	ModeBackend Mode = "backend"
)

const (
	// graceDelay is the fixed wait before reporting that backend
	// streaming has started; the backend owns the actual transfer.
	graceDelay = 2 * time.Second

	// tickInterval paces the simulated progress generator
	tickInterval = 100 * time.Millisecond

	// maxProgressStep caps the random per-tick progress increment
	maxProgressStep = 45.0

	// titleMaxLen truncates the record title in saved filenames
	titleMaxLen = 20

	speedSandbox = "45 MB/s"
	speedBackend = "Streaming"
)

// Outcome describes a completed dispatch. For the backend path the
// caller is expected to perform the navigation to RedirectURL; the
// dispatcher itself never touches the streamed bytes.
type Outcome struct {
	JobID       string `json:"job_id"`
	Mode        Mode   `json:"mode"`
	RedirectURL string `json:"redirect_url,omitempty"`
	SavedFile   string `json:"saved_file,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Message     string `json:"message"`
}

// ProgressFunc receives simulated progress values in [0, 100]
type ProgressFunc func(percent float64)

// Dispatcher runs at most one download at a time
type Dispatcher struct {
	downloadsPath string
	httpClient    *http.Client
	logger        *slog.Logger

	mu       sync.Mutex
	progress models.DownloadProgress
	cancel   context.CancelFunc

	// Timing knobs, shortened in tests
	grace time.Duration
	tick  time.Duration
}

// New creates a new dispatcher that saves sandbox files under downloadsPath
func New(downloadsPath string) *Dispatcher {
	return &Dispatcher{
		downloadsPath: downloadsPath,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.Default(),
		grace:  graceDelay,
		tick:   tickInterval,
	}
}

// Progress returns a snapshot of the current download state
func (d *Dispatcher) Progress() models.DownloadProgress {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.progress
}

// Cancel aborts the in-flight dispatch, if any
func (d *Dispatcher) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
}

// Dispatch delivers the chosen format. With a backend configured it
// probes the backend's health endpoint and hands off via a redirect
// instruction; otherwise it simulates progress and saves the embedded
// placeholder payload locally. Progress always resets on return.
func (d *Dispatcher) Dispatch(ctx context.Context, record *models.VideoRecord, format models.FormatOption, originalURL, backendURL string, onProgress ProgressFunc) (*Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := d.begin(format, backendURL, cancel); err != nil {
		return nil, err
	}
	defer d.reset()

	jobID := uuid.NewString()
	d.logger.Info("Dispatching download",
		"job_id", jobID,
		"video_id", record.ID,
		"format", format.ID,
		"backend", backendURL != "")

	if backendURL != "" {
		return d.dispatchBackend(ctx, jobID, originalURL, backendURL, format)
	}
	return d.dispatchSandbox(ctx, jobID, record, format, onProgress)
}

// begin claims the single download slot
func (d *Dispatcher) begin(format models.FormatOption, backendURL string, cancel context.CancelFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.progress.IsDownloading {
		return ErrDownloadInProgress
	}

	speed := speedSandbox
	if backendURL != "" {
		speed = speedBackend
	}

	d.progress = models.DownloadProgress{
		IsDownloading: true,
		Progress:      0,
		CurrentFormat: &format,
		Speed:         speed,
	}
	d.cancel = cancel
	return nil
}

// reset returns the progress state to inactive
func (d *Dispatcher) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.progress = models.DownloadProgress{}
	d.cancel = nil
}

func (d *Dispatcher) setProgress(percent float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.progress.Progress = percent
}

// dispatchBackend delegates delivery to the configured backend. The
// returned redirect URL carries the original input URL and format id;
// the response bytes are never inspected here.
func (d *Dispatcher) dispatchBackend(ctx context.Context, jobID, originalURL, backendURL string, format models.FormatOption) (*Outcome, error) {
	base := strings.TrimRight(backendURL, "/")

	req, err := http.NewRequestWithContext(ctx, "GET", base+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Error("Backend health check failed", "job_id", jobID, "backend", base, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.logger.Error("Backend unhealthy", "job_id", jobID, "backend", base, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: health returned status %d", ErrBackendUnreachable, resp.StatusCode)
	}

	params := url.Values{}
	params.Set("url", originalURL)
	params.Set("format", format.ID)
	redirect := fmt.Sprintf("%s/download?%s", base, params.Encode())

	// Fixed grace period before reporting; the transfer itself is the
	// backend's responsibility from here on.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(d.grace):
	}

	d.logger.Info("Backend streaming started", "job_id", jobID, "redirect", redirect)

	return &Outcome{
		JobID:       jobID,
		Mode:        ModeBackend,
		RedirectURL: redirect,
		Message:     "Download started via Pro Engine",
	}, nil
}

// dispatchSandbox simulates the transfer and materializes the demo
// payload as a local file save.
func (d *Dispatcher) dispatchSandbox(ctx context.Context, jobID string, record *models.VideoRecord, format models.FormatOption, onProgress ProgressFunc) (*Outcome, error) {
	if err := d.simulateProgress(ctx, onProgress); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(d.downloadsPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create downloads directory: %w", err)
	}

	filename := d.ensureUniqueFilename(sandboxFilename(record.Title, format))
	path := filepath.Join(d.downloadsPath, filename)

	if err := os.WriteFile(path, placeholderPayload(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to save demo file: %w", err)
	}

	if format.IsAudioOnly {
		if err := embedAudioTags(path, record); err != nil {
			d.logger.Warn("Failed to embed audio tags", "job_id", jobID, "file", path, "error", err)
		}
	}

	d.logger.Info("Sandbox demo file saved", "job_id", jobID, "file", path)

	return &Outcome{
		JobID:       jobID,
		Mode:        ModeSandbox,
		SavedFile:   filename,
		ContentType: format.MediaType(),
		Message:     "Sandbox demo file saved",
	}, nil
}

// simulateProgress advances the percent counter by random increments
// every tick until it reaches 100. Progress is monotonically
// non-decreasing and the final reported value is exactly 100.
func (d *Dispatcher) simulateProgress(ctx context.Context, onProgress ProgressFunc) error {
	emit := func(percent float64) {
		d.setProgress(percent)
		if onProgress != nil {
			onProgress(percent)
		}
	}

	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()

	var percent float64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			percent += rand.Float64() * maxProgressStep
			if percent >= 100 {
				emit(100)
				return nil
			}
			emit(percent)
		}
	}
}

// sandboxFilename builds <truncated-title>_<quality>.<extension>
func sandboxFilename(title string, format models.FormatOption) string {
	runes := []rune(title)
	if len(runes) > titleMaxLen {
		runes = runes[:titleMaxLen]
	}
	name := strings.TrimSpace(string(runes))
	if name == "" {
		name = "video"
	}
	// Strip characters that would escape the downloads directory
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)

	return fmt.Sprintf("%s_%s.%s", name, format.Quality, format.Extension)
}

// ensureUniqueFilename appends a counter when the target name is taken
func (d *Dispatcher) ensureUniqueFilename(filename string) string {
	originalName := filename
	counter := 1

	for {
		fullPath := filepath.Join(d.downloadsPath, filename)
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			break
		}

		ext := filepath.Ext(originalName)
		nameWithoutExt := strings.TrimSuffix(originalName, ext)
		filename = fmt.Sprintf("%s(%d)%s", nameWithoutExt, counter, ext)
		counter++

		if counter > 1000 {
			timestamp := time.Now().Unix()
			filename = fmt.Sprintf("%s_%d%s", nameWithoutExt, timestamp, ext)
			break
		}
	}

	return filename
}

// embedAudioTags writes ID3v2 title/artist tags into a saved audio file
func embedAudioTags(path string, record *models.VideoRecord) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	if record.Title != "" {
		tag.SetTitle(record.Title)
	}
	if record.Author != "" {
		tag.SetArtist(record.Author)
	}
	return tag.Save()
}
