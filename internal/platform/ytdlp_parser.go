package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdl-cli/internal/model"
	"github.com/ytget/ytdlp/v2"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// YTDLPParserService fetches playlist entries through the ytdlp library
type YTDLPParserService struct {
	timeout time.Duration
}

// NewYTDLPParserService creates a new parser service
func NewYTDLPParserService() *YTDLPParserService {
	return &YTDLPParserService{
		timeout: DefaultParseTimeout,
	}
}

// SetTimeout sets the timeout for parsing operations; zero disables it
func (y *YTDLPParserService) SetTimeout(timeout time.Duration) {
	y.timeout = timeout
}

// FetchEntries returns every entry of the playlist in playlist order
func (y *YTDLPParserService) FetchEntries(ctx context.Context, playlistID string) ([]model.PlaylistEntry, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("empty playlist ID")
	}

	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	entries := make([]model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		id := strings.TrimSpace(it.VideoID)
		if id == "" {
			continue
		}
		entries = append(entries, model.PlaylistEntry{
			ID:    id,
			Title: it.Title,
			URL:   WatchURL(id),
		})
	}
	return entries, nil
}

// WatchURL builds the canonical watch URL for a video ID
func WatchURL(videoID string) string {
	return fmt.Sprintf(YouTubeVideoURLTemplate, videoID)
}
