// Package cleanup prunes stale demo files from the downloads directory
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DemoExtensions defines the file extensions the sandbox engine writes.
// Anything else in the downloads directory is left alone.
var DemoExtensions = []string{".mp4", ".mp3"}

const (
	// MaxAge is how long a saved demo file is kept before pruning
	MaxAge = 24 * time.Hour

	pruneInterval = time.Hour
)

// Service removes expired demo files on a fixed interval
type Service struct {
	downloadsPath string
	maxAge        time.Duration
	logger        *slog.Logger
}

// NewService creates a new cleanup service for the given downloads directory
func NewService(downloadsPath string) *Service {
	return &Service{
		downloadsPath: downloadsPath,
		maxAge:        MaxAge,
		logger:        slog.Default(),
	}
}

// Run prunes on startup and then hourly until the context is cancelled
func (s *Service) Run(ctx context.Context) {
	if _, err := s.Prune(); err != nil {
		s.logger.Warn("Downloads cleanup failed", "error", err)
	}

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Prune(); err != nil {
				s.logger.Warn("Downloads cleanup failed", "error", err)
			}
		}
	}
}

// Prune deletes demo files older than the retention window and returns
// how many were removed
func (s *Service) Prune() (int, error) {
	entries, err := os.ReadDir(s.downloadsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read downloads directory: %w", err)
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || !isDemoFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("Failed to stat file", "file", entry.Name(), "error", err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.downloadsPath, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("Failed to remove expired file", "file", entry.Name(), "error", err)
			continue
		}
		removed++
		s.logger.Info("Removed expired demo file", "file", entry.Name())
	}

	return removed, nil
}

func isDemoFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, demo := range DemoExtensions {
		if ext == demo {
			return true
		}
	}
	return false
}
