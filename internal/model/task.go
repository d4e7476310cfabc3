package model

import (
	"strconv"
	"strings"
	"time"
)

// StreamDescriptor is one downloadable variant of a media item
type StreamDescriptor struct {
	ID           string // platform format id (itag)
	Resolution   string // normalized label, e.g. "720p"; empty for audio-only
	QualityLabel string // raw label reported by the platform, e.g. "720p60"
	MimeType     string
	Container    string // file extension without dot
	Size         int64  // bytes, 0 if unknown
	Bitrate      int
	AudioOnly    bool
	VideoOnly    bool
}

// Muxed reports whether the stream carries both audio and video
func (s StreamDescriptor) Muxed() bool {
	return !s.AudioOnly && !s.VideoOnly
}

// Height returns the numeric part of the resolution label, or 0
func (s StreamDescriptor) Height() int {
	label := strings.TrimSuffix(s.Resolution, "p")
	height, err := strconv.Atoi(label)
	if err != nil {
		return 0
	}
	return height
}

// MediaItem identifies one downloadable resource and its resolved streams
type MediaItem struct {
	ID       string
	URL      string
	Title    string
	Author   string
	Duration time.Duration
	Streams  []StreamDescriptor

	// Source is the platform's resolved handle, passed back to the fetcher
	Source any
}

// DownloadRequest is a single unit of work for the orchestrator
type DownloadRequest struct {
	ID         string
	URL        string
	Preference QualityPreference
	OutputDir  string
	Index      int // 1-based position inside a playlist, 0 for single items
	Total      int
}

// DownloadOutcome is the terminal result of one DownloadRequest
type DownloadOutcome struct {
	RequestID  string
	URL        string
	Title      string
	Status     TaskStatus
	FilePath   string
	Stream     *StreamDescriptor
	Bytes      int64
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded reports whether the request produced (or already had) its file
func (o DownloadOutcome) Succeeded() bool {
	return o.Status == TaskStatusCompleted || o.Status == TaskStatusSkipped
}

// Reason returns the failure message, empty for successful outcomes
func (o DownloadOutcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Elapsed returns how long the request took
func (o DownloadOutcome) Elapsed() time.Duration {
	if o.StartedAt.IsZero() || o.FinishedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}

// DisplayTitle returns title, filename, or URL in order of preference
func (o DownloadOutcome) DisplayTitle() string {
	if o.Title != "" && !strings.HasPrefix(o.Title, "http") {
		return o.Title
	}

	if o.FilePath != "" {
		// support both / and \ separators
		parts := strings.FieldsFunc(o.FilePath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return o.URL
}
