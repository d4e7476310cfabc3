// Package history keeps a local download archive so repeated runs over the
// same playlist skip items that were already downloaded.
package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ytget/ytdl-cli/internal/model"
	"github.com/ytget/ytdl-cli/internal/platform"
)

// Entry is one archived download
type Entry struct {
	VideoID      string `gorm:"primaryKey;size:64"`
	URL          string
	Title        string
	FilePath     string
	FormatID     string
	Bytes        int64
	DownloadedAt time.Time `gorm:"index"`
}

// TableName overrides the default table name
func (Entry) TableName() string {
	return "downloads"
}

// Archive is a SQLite-backed set of downloaded video IDs
type Archive struct {
	db *gorm.DB
}

// Open opens (creating if needed) the archive database at path
func Open(path string) (*Archive, error) {
	if path == "" {
		return nil, errors.New("archive path is empty")
	}
	if err := platform.CreateDirectoryIfNotExists(filepath.Dir(path)); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access archive connection: %w", err)
	}
	// SQLite allows a single writer; parallel playlist workers share this connection
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Entry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}

	return &Archive{db: db}, nil
}

// Has reports whether videoID was downloaded before
func (a *Archive) Has(ctx context.Context, videoID string) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&Entry{}).
		Where("video_id = ?", videoID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query archive: %w", err)
	}
	return count > 0, nil
}

// Record stores a completed download, replacing an older record of the same video
func (a *Archive) Record(ctx context.Context, item *model.MediaItem, outcome model.DownloadOutcome) error {
	if item == nil || item.ID == "" {
		return errors.New("cannot archive an item without ID")
	}

	entry := Entry{
		VideoID:      item.ID,
		URL:          outcome.URL,
		Title:        item.Title,
		FilePath:     outcome.FilePath,
		Bytes:        outcome.Bytes,
		DownloadedAt: outcome.FinishedAt,
	}
	if outcome.Stream != nil {
		entry.FormatID = outcome.Stream.ID
	}
	if entry.DownloadedAt.IsZero() {
		entry.DownloadedAt = time.Now()
	}

	err := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to record %s in archive: %w", item.ID, err)
	}
	return nil
}

// Close releases the database handle
func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
