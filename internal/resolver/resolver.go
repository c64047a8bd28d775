// Package resolver translates a YouTube URL into a VideoRecord by
// querying a text-generation model and parsing its labeled reply
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/manmohanbh/tubestream-pwa-v2/internal/cache"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/gemini"
	"github.com/manmohanbh/tubestream-pwa-v2/internal/youtube"
	"github.com/manmohanbh/tubestream-pwa-v2/pkg/models"
)

// Analysis failure taxonomy. Handlers map these to user-facing messages
// and HTTP statuses with errors.Is.
var (
	ErrInvalidURL = errors.New("please enter a valid YouTube link")
	ErrTimeout    = errors.New("analysis timed out, try again in a moment")
	ErrUpstream   = errors.New("could not reach video data, check link")
)

const (
	// resolveTimeout bounds the metadata call client-side
	resolveTimeout = 8 * time.Second

	// UnknownID marks records whose URL carried no parseable video id
	UnknownID = "unknown"

	thumbnailURLFormat   = "https://i.ytimg.com/vi/%s/maxresdefault.jpg"
	placeholderThumbnail = "https://picsum.photos/seed/tube/800/450"
)

// Field defaults used when a label is absent or malformed in the reply
const (
	defaultTitle    = "Video Content"
	defaultAuthor   = "Creator"
	defaultDuration = "Duration unknown"
)

var (
	titlePattern    = regexp.MustCompile(`(?i)T:\s*(.*)`)
	channelPattern  = regexp.MustCompile(`(?i)C:\s*(.*)`)
	durationPattern = regexp.MustCompile(`(?i)D:\s*(.*)`)
	typePattern     = regexp.MustCompile(`(?i)V:\s*(shorts|video)`)
)

// Resolver produces VideoRecords from validated URLs
type Resolver struct {
	generator gemini.TextGenerator
	cache     *cache.MetadataCache
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new resolver. The cache may be nil.
func New(generator gemini.TextGenerator, metadataCache *cache.MetadataCache) *Resolver {
	return &Resolver{
		generator: generator,
		cache:     metadataCache,
		timeout:   resolveTimeout,
		logger:    slog.Default(),
	}
}

// Resolve analyzes a URL and returns an immutable VideoRecord. The
// format catalog is a fixed set of four entries; no stream probing
// takes place.
func (r *Resolver) Resolve(ctx context.Context, videoURL string) (*models.VideoRecord, error) {
	if !youtube.Validate(videoURL) {
		return nil, ErrInvalidURL
	}

	videoID, ok := youtube.ExtractID(videoURL)
	if !ok {
		videoID = UnknownID
	} else if record, hit := r.cache.Get(ctx, videoID); hit {
		r.logger.Debug("Metadata cache hit", "video_id", videoID)
		return record, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.generator.GenerateVideoInfo(ctx, videoURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		// A caller-side cancellation is not an upstream failure
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		r.logger.Error("Metadata generation failed", "url", videoURL, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	record := buildRecord(videoID, result)

	if videoID != UnknownID {
		if err := r.cache.Set(ctx, record); err != nil {
			r.logger.Warn("Failed to cache resolved record", "video_id", videoID, "error", err)
		}
	}

	return record, nil
}

// buildRecord assembles a VideoRecord from the parsed reply, filling
// each missing field with its documented default independently.
func buildRecord(videoID string, result *gemini.GenerationResult) *models.VideoRecord {
	thumbnail := placeholderThumbnail
	if videoID != UnknownID {
		thumbnail = fmt.Sprintf(thumbnailURLFormat, videoID)
	}

	videoType := models.TypeVideo
	if m := typePattern.FindStringSubmatch(result.Text); m != nil {
		if strings.EqualFold(strings.TrimSpace(m[1]), string(models.TypeShorts)) {
			videoType = models.TypeShorts
		}
	}

	return &models.VideoRecord{
		ID:         videoID,
		Title:      matchField(titlePattern, result.Text, defaultTitle),
		Thumbnail:  thumbnail,
		Duration:   matchField(durationPattern, result.Text, defaultDuration),
		Author:     matchField(channelPattern, result.Text, defaultAuthor),
		Type:       videoType,
		Formats:    DefaultFormats(),
		Sources:    result.Sources,
		ResolvedAt: time.Now(),
	}
}

// matchField extracts the first line matching pattern, trimmed, or the
// fallback when the label is absent or its value empty.
func matchField(pattern *regexp.Regexp, text, fallback string) string {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return fallback
	}
	value := strings.TrimSpace(m[1])
	if value == "" {
		return fallback
	}
	return value
}

// DefaultFormats is the fixed download catalog attached to every
// record. It is not derived from any real inspection of the source.
func DefaultFormats() []models.FormatOption {
	return []models.FormatOption{
		{ID: "1080p", Quality: "1080p", Extension: "mp4", Size: "98 MB", Label: "1080p Full HD"},
		{ID: "720p", Quality: "720p", Extension: "mp4", Size: "42 MB", Label: "720p HD"},
		{ID: "360p", Quality: "360p", Extension: "mp4", Size: "11 MB", Label: "360p SD"},
		{ID: "mp3-320", Quality: "320kbps", Extension: "mp3", Size: "7 MB", Label: "Audio (Hi-Res)", IsAudioOnly: true},
	}
}
