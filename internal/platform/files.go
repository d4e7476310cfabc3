package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Filename limits
const (
	MaxFilenameLength = 200
	FallbackFilename  = "download"
	DefaultContainer  = "mp4"
)

// Characters that are not allowed in file names on at least one major OS
const invalidFilenameChars = `<>:"/\|?*`

// CreateDirectoryIfNotExists creates directory if it doesn't exist.
// Calling it again for an existing directory is a no-op.
func CreateDirectoryIfNotExists(dirPath string) error {
	info, err := os.Stat(dirPath)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path exists and is not a directory: %s", dirPath)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", dirPath, err)
	}
	if err := os.MkdirAll(dirPath, DefaultDirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, "Downloads"), nil
}

// SanitizeFilename turns a media title into a portable file name (without extension)
func SanitizeFilename(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastSpace := false
	for _, r := range title {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		case strings.ContainsRune(invalidFilenameChars, r), unicode.IsControl(r):
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}

	name := strings.Trim(b.String(), " .")
	name = truncateRunes(name, MaxFilenameLength)
	name = strings.TrimRight(name, " .")
	if name == "" {
		return FallbackFilename
	}
	return name
}

// BuildFilename returns "<sanitized title>.<container>"
func BuildFilename(title, container string) string {
	ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(container)), ".")
	if ext == "" {
		ext = DefaultContainer
	}
	return SanitizeFilename(title) + "." + ext
}

// CreateOutputFile opens path for writing, truncating any existing file
func CreateOutputFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, DefaultFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
