package download

import (
	"context"
	"io"

	"github.com/ytget/ytdl-cli/internal/model"
)

// Resolver turns URLs into media items and playlists
type Resolver interface {
	Resolve(ctx context.Context, url string) (*model.MediaItem, error)
	ResolvePlaylist(ctx context.Context, url string) (*model.Playlist, error)

	// VideoID extracts the platform ID from a URL without network access
	VideoID(url string) (string, bool)
}

// Fetcher opens the byte stream of a selected stream.
// The returned size is 0 when unknown.
type Fetcher interface {
	Open(ctx context.Context, item *model.MediaItem, stream model.StreamDescriptor) (io.ReadCloser, int64, error)
}

// Archive remembers completed downloads so later runs can skip them
type Archive interface {
	Has(ctx context.Context, videoID string) (bool, error)
	Record(ctx context.Context, item *model.MediaItem, outcome model.DownloadOutcome) error
}

// Downloader defines the interface for the download service.
type Downloader interface {
	SetUpdateCallback(func(Update))
	DownloadItem(ctx context.Context, req model.DownloadRequest) model.DownloadOutcome
	DownloadPlaylist(ctx context.Context, req model.PlaylistRequest) (*model.BatchReport, error)
}

// Update describes a status transition of one request
type Update struct {
	RequestID string
	URL       string
	Title     string
	Index     int
	Total     int
	Status    model.TaskStatus
}
