// Package models defines the data structures used throughout the application
package models

import (
	"time"
)

// VideoType distinguishes regular videos from Shorts
type VideoType string

const (
	TypeVideo  VideoType = "video"
	TypeShorts VideoType = "shorts"
)

// AnalysisStatus represents the current phase of the user workflow
type AnalysisStatus string

const (
	StatusIdle        AnalysisStatus = "idle"
	StatusLoading     AnalysisStatus = "loading"
	StatusReady       AnalysisStatus = "ready"
	StatusDownloading AnalysisStatus = "downloading"
	StatusError       AnalysisStatus = "error"
)

// FormatOption is one selectable download variant with display metadata
type FormatOption struct {
	ID          string `json:"id"`
	Quality     string `json:"quality"`
	Extension   string `json:"extension"` // mp4 or mp3
	Size        string `json:"size"`
	Label       string `json:"label"`
	IsAudioOnly bool   `json:"isAudioOnly,omitempty"`
}

// MediaType returns the MIME type used when materializing this format
func (f FormatOption) MediaType() string {
	if f.IsAudioOnly {
		return "audio/mpeg"
	}
	return "video/mp4"
}

// SourceRef is an opaque grounding/attribution reference returned with
// generated metadata. Only the web link is meaningful for display.
type SourceRef struct {
	Web *WebSource `json:"web,omitempty"`
}

// WebSource holds the link portion of a grounding reference
type WebSource struct {
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
}

// VideoRecord is the resolved metadata for one analyzed video or Short.
// Records are immutable after creation; a new analysis replaces the
// current record wholesale.
type VideoRecord struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Thumbnail  string         `json:"thumbnail"`
	Duration   string         `json:"duration"`
	Author     string         `json:"author"`
	Type       VideoType      `json:"type"`
	Formats    []FormatOption `json:"formats"`
	Sources    []SourceRef    `json:"sources,omitempty"`
	ResolvedAt time.Time      `json:"resolved_at,omitempty"`
}

// FindFormat returns the catalog entry with the given id
func (v *VideoRecord) FindFormat(id string) (FormatOption, bool) {
	for _, f := range v.Formats {
		if f.ID == id {
			return f, true
		}
	}
	return FormatOption{}, false
}

// WatchURL reconstructs a canonical watch URL for the record
func (v *VideoRecord) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// DownloadProgress tracks the state of the single in-flight download.
// It is reset to its zero value at the start and end of every dispatch.
type DownloadProgress struct {
	IsDownloading bool          `json:"is_downloading"`
	Progress      float64       `json:"progress"` // 0..100
	CurrentFormat *FormatOption `json:"current_format,omitempty"`
	Speed         string        `json:"speed,omitempty"`
}
