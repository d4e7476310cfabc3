package model

import (
	"time"
)

// PlaylistRequest asks for every entry of a playlist to be downloaded
type PlaylistRequest struct {
	URL        string
	Preference QualityPreference
	OutputDir  string
}

// PlaylistEntry is a single item of a resolved playlist
type PlaylistEntry struct {
	ID    string
	Title string
	URL   string
}

// Playlist is a resolved, ordered collection of media item URLs
type Playlist struct {
	ID        string
	Title     string
	URL       string
	Entries   []PlaylistEntry
	CreatedAt time.Time
}

// NewPlaylist creates a new playlist instance
func NewPlaylist(id, url string) *Playlist {
	return &Playlist{
		ID:        id,
		URL:       url,
		Entries:   make([]PlaylistEntry, 0),
		CreatedAt: time.Now(),
	}
}

// AddEntry appends an entry to the playlist
func (p *Playlist) AddEntry(entry PlaylistEntry) {
	p.Entries = append(p.Entries, entry)
}

// Len returns the number of entries
func (p *Playlist) Len() int {
	return len(p.Entries)
}

// Requests converts entries 1:1 into download requests, preserving order
func (p *Playlist) Requests(req PlaylistRequest, newID func() string) []DownloadRequest {
	requests := make([]DownloadRequest, 0, len(p.Entries))
	for i, entry := range p.Entries {
		requests = append(requests, DownloadRequest{
			ID:         newID(),
			URL:        entry.URL,
			Preference: req.Preference,
			OutputDir:  req.OutputDir,
			Index:      i + 1,
			Total:      len(p.Entries),
		})
	}
	return requests
}

// BatchReport aggregates the ordered outcomes of a playlist run
type BatchReport struct {
	Playlist *Playlist
	Outcomes []DownloadOutcome
}

// Succeeded returns the number of completed or skipped items
func (r *BatchReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// Skipped returns the number of items skipped via the archive
func (r *BatchReport) Skipped() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == TaskStatusSkipped {
			n++
		}
	}
	return n
}

// Failed returns the outcomes that did not succeed, in order
func (r *BatchReport) Failed() []DownloadOutcome {
	var failed []DownloadOutcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

// HasErrors checks if any item failed
func (r *BatchReport) HasErrors() bool {
	return len(r.Failed()) > 0
}
