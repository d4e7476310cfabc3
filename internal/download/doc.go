package download

// Package download implements the core download pipeline: stream selection by
// quality preference and the orchestrator that resolves media items, writes the
// selected stream to disk and processes playlists with per-item failure
// isolation and an optional bounded worker pool.
