package model

// Package model defines domain data structures used across the downloader:
// media items and their streams, quality preferences, download requests and
// outcomes, playlists, item status and the error taxonomy. Values are plain
// structs with explicit state transitions.
