package platform

// Package platform contains the external collaborators of the downloader:
// YouTube resolution and stream transfer (github.com/kkdai/youtube/v2),
// playlist expansion (github.com/ytget/ytdlp/v2) and filesystem helpers.
