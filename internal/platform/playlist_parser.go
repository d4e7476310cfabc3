package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ytget/ytdl-cli/internal/model"
)

// URL parameters
const (
	PlaylistQueryParam = "list"
)

// Playlist title constants
const (
	DefaultPlaylistTitle = "Untitled Playlist"
	DefaultTitleSuffix   = " - Playlist"
	MaxTitleLength       = 50
	TitleTruncateSuffix  = "..."
	MinPrefixLength      = 10
)

// EntryFetcher lists the entries of a playlist by its ID
type EntryFetcher interface {
	FetchEntries(ctx context.Context, playlistID string) ([]model.PlaylistEntry, error)
}

// PlaylistParserService expands a playlist URL into its ordered entries
type PlaylistParserService struct {
	fetcher EntryFetcher
}

// NewPlaylistParserServiceWithFetcher creates a playlist parser with a custom entry source
func NewPlaylistParserServiceWithFetcher(fetcher EntryFetcher) *PlaylistParserService {
	return &PlaylistParserService{fetcher: fetcher}
}

// ParsePlaylist parses a YouTube playlist URL and returns playlist information
func (p *PlaylistParserService) ParsePlaylist(ctx context.Context, rawURL string) (*model.Playlist, error) {
	playlistID, err := ExtractPlaylistID(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid playlist URL %q: %w", rawURL, err)
	}

	entries, err := p.fetcher.FetchEntries(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	playlist := model.NewPlaylist(playlistID, rawURL)
	for _, entry := range entries {
		playlist.AddEntry(entry)
	}
	playlist.Title = p.extractPlaylistTitle(playlist)

	return playlist, nil
}

// IsPlaylistURL reports whether the URL carries a playlist parameter
func IsPlaylistURL(rawURL string) bool {
	_, err := ExtractPlaylistID(rawURL)
	return err == nil
}

// IsPlaylistPage reports whether the URL points at a playlist page rather
// than at a video opened from a playlist
func IsPlaylistPage(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return strings.TrimSuffix(u.Path, "/") == "/playlist" && IsPlaylistURL(rawURL)
}

// ExtractPlaylistID extracts the playlist ID from a YouTube URL.
// Supported forms:
//   - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&start_radio=1
//   - https://www.youtube.com/playlist?list=PLAYLIST_ID
//   - https://music.youtube.com/playlist?list=PLAYLIST_ID
func ExtractPlaylistID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("malformed URL: %w", err)
	}

	query := u.Query()
	if !query.Has(PlaylistQueryParam) {
		return "", fmt.Errorf("URL does not contain playlist parameter")
	}

	playlistID := strings.TrimSpace(query.Get(PlaylistQueryParam))
	if playlistID == "" {
		return "", fmt.Errorf("empty playlist ID")
	}
	return playlistID, nil
}

// extractPlaylistTitle derives a display title from the entry titles,
// since the entry listing does not carry the playlist name
func (p *PlaylistParserService) extractPlaylistTitle(playlist *model.Playlist) string {
	if playlist.Len() == 0 {
		if playlist.ID != "" {
			return "Playlist " + playlist.ID
		}
		return DefaultPlaylistTitle
	}

	firstTitle := playlist.Entries[0].Title
	if playlist.Len() > 1 {
		commonPrefix := strings.TrimSpace(findCommonPrefix(firstTitle, playlist.Entries[1].Title))
		if len(commonPrefix) > MinPrefixLength {
			return commonPrefix + DefaultTitleSuffix
		}
	}

	if firstTitle == "" {
		return DefaultPlaylistTitle
	}
	runes := []rune(firstTitle)
	if len(runes) > MaxTitleLength {
		firstTitle = string(runes[:MaxTitleLength]) + TitleTruncateSuffix
	}
	return firstTitle + DefaultTitleSuffix
}

// findCommonPrefix finds the common prefix between two strings on rune boundaries
func findCommonPrefix(s1, s2 string) string {
	r1, r2 := []rune(s1), []rune(s2)
	n := min(len(r1), len(r2))
	for i := 0; i < n; i++ {
		if r1[i] != r2[i] {
			return string(r1[:i])
		}
	}
	return string(r1[:n])
}
