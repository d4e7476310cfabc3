package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/ytget/ytdl-cli/internal/model"
)

// Container names derived from MIME subtypes
const (
	ContainerM4A  = "m4a"
	Container3GP  = "3gp"
	ContainerMP4  = "mp4"
	ContainerWebM = "webm"
)

// VideoClient is the subset of the YouTube client used for resolution and transfer
type VideoClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// PlaylistParser expands a playlist URL into entries
type PlaylistParser interface {
	ParsePlaylist(ctx context.Context, url string) (*model.Playlist, error)
}

// YouTubeService resolves media items and playlists and opens their streams
type YouTubeService struct {
	client    VideoClient
	playlists PlaylistParser
}

// NewYouTubeService creates a service backed by the kkdai YouTube client and
// the ytdlp playlist parser. playlistTimeout bounds playlist expansion; zero disables it.
func NewYouTubeService(playlistTimeout time.Duration) *YouTubeService {
	parser := NewYTDLPParserService()
	parser.SetTimeout(playlistTimeout)
	return NewYouTubeServiceWith(&youtube.Client{}, NewPlaylistParserServiceWithFetcher(parser))
}

// NewYouTubeServiceWith creates a service with custom collaborators
func NewYouTubeServiceWith(client VideoClient, playlists PlaylistParser) *YouTubeService {
	return &YouTubeService{
		client:    client,
		playlists: playlists,
	}
}

// Resolve fetches metadata and the stream list of a single video
func (s *YouTubeService) Resolve(ctx context.Context, url string) (*model.MediaItem, error) {
	video, err := s.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, model.NewDownloadErrorWithCause(model.KindResolution, url, describeResolveError(err), err)
	}

	return &model.MediaItem{
		ID:       video.ID,
		URL:      url,
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration,
		Streams:  ConvertFormats(video.Formats),
		Source:   video,
	}, nil
}

// ResolvePlaylist expands a playlist URL into its ordered entries
func (s *YouTubeService) ResolvePlaylist(ctx context.Context, url string) (*model.Playlist, error) {
	playlist, err := s.playlists.ParsePlaylist(ctx, url)
	if err != nil {
		return nil, model.NewDownloadErrorWithCause(model.KindResolution, url, "could not resolve playlist", err)
	}
	return playlist, nil
}

// Open starts the transfer of the chosen stream. Items not produced by
// Resolve are fetched again by URL.
func (s *YouTubeService) Open(ctx context.Context, item *model.MediaItem, stream model.StreamDescriptor) (io.ReadCloser, int64, error) {
	video, ok := item.Source.(*youtube.Video)
	if !ok || video == nil {
		fetched, err := s.client.GetVideoContext(ctx, item.URL)
		if err != nil {
			return nil, 0, model.NewDownloadErrorWithCause(model.KindResolution, item.URL, describeResolveError(err), err)
		}
		video = fetched
	}

	format, err := findFormat(video.Formats, stream)
	if err != nil {
		return nil, 0, model.NewDownloadErrorWithCause(model.KindNoStream, item.URL, "selected stream is no longer available", err)
	}

	body, size, err := s.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, 0, model.NewDownloadErrorWithCause(model.KindTransfer, item.URL, "could not open stream", err)
	}
	return body, size, nil
}

// ConvertFormats maps the platform formats to stream descriptors, preserving order
func ConvertFormats(formats youtube.FormatList) []model.StreamDescriptor {
	streams := make([]model.StreamDescriptor, 0, len(formats))
	for _, f := range formats {
		streams = append(streams, ConvertFormat(f))
	}
	return streams
}

// ConvertFormat maps one platform format to a stream descriptor
func ConvertFormat(f youtube.Format) model.StreamDescriptor {
	mime := mediaType(f.MimeType)
	audioOnly := strings.HasPrefix(mime, "audio/")
	videoOnly := strings.HasPrefix(mime, "video/") && f.AudioChannels == 0

	sd := model.StreamDescriptor{
		ID:           strconv.Itoa(f.ItagNo),
		QualityLabel: f.QualityLabel,
		MimeType:     f.MimeType,
		Container:    containerForMime(mime),
		Size:         f.ContentLength,
		Bitrate:      f.Bitrate,
		AudioOnly:    audioOnly,
		VideoOnly:    videoOnly,
	}
	if !audioOnly {
		sd.Resolution = normalizeResolution(f.QualityLabel, f.Height)
	}
	return sd
}

// normalizeResolution turns labels like "720p60" or "1080p HDR" into "720p", "1080p"
func normalizeResolution(label string, height int) string {
	digits := 0
	for digits < len(label) && label[digits] >= '0' && label[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(label) && label[digits] == 'p' {
		return label[:digits] + "p"
	}
	if height > 0 {
		return strconv.Itoa(height) + "p"
	}
	return ""
}

func mediaType(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}

func containerForMime(mime string) string {
	parts := strings.SplitN(mime, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return DefaultContainer
	}
	switch {
	case parts[0] == "audio" && parts[1] == ContainerMP4:
		return ContainerM4A
	case parts[1] == "3gpp":
		return Container3GP
	default:
		return parts[1]
	}
}

func findFormat(formats youtube.FormatList, stream model.StreamDescriptor) (*youtube.Format, error) {
	itag, err := strconv.Atoi(stream.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid format id %q: %w", stream.ID, err)
	}

	candidates := formats.Itag(itag)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("format %d not found", itag)
	}
	for i := range candidates {
		if candidates[i].MimeType == stream.MimeType {
			return &candidates[i], nil
		}
	}
	return &candidates[0], nil
}

func describeResolveError(err error) string {
	switch {
	case errors.Is(err, youtube.ErrVideoPrivate):
		return "video is private"
	case errors.Is(err, youtube.ErrLoginRequired):
		return "login required (age-restricted or members-only)"
	case errors.Is(err, youtube.ErrNotPlayableInEmbed):
		return "video is not playable outside youtube.com"
	case errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return "invalid video URL or ID"
	}

	var statusErr *youtube.ErrPlayabiltyStatus
	if errors.As(err, &statusErr) {
		if statusErr.Reason != "" {
			return fmt.Sprintf("video unavailable (%s): %s", strings.ToLower(statusErr.Status), statusErr.Reason)
		}
		return fmt.Sprintf("video unavailable (%s)", strings.ToLower(statusErr.Status))
	}

	var codeErr youtube.ErrUnexpectedStatusCode
	if errors.As(err, &codeErr) {
		return fmt.Sprintf("unexpected response from YouTube (HTTP %d)", int(codeErr))
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out resolving video"
	}
	return "could not resolve video"
}

// VideoID extracts the video ID from a watch URL, short URL or bare ID
func (s *YouTubeService) VideoID(url string) (string, bool) {
	id, err := youtube.ExtractVideoID(url)
	if err != nil {
		return "", false
	}
	return id, true
}
