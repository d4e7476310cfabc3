package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ytget/ytdl-cli/internal/model"
	"github.com/ytget/ytdl-cli/internal/platform"
	"github.com/ytget/ytdl-cli/internal/progress"
)

// Concurrency limits
const (
	DefaultJobs = 1
	MaxJobs     = 10
)

// DefaultResolveTimeout bounds a single metadata resolution
const DefaultResolveTimeout = 60 * time.Second

// Service resolves, selects and transfers media items
type Service struct {
	resolver Resolver
	fetcher  Fetcher
	archive  Archive
	logger   *zap.Logger
	progress progress.Factory

	jobs           int
	resolveTimeout time.Duration

	updateMu sync.Mutex
	onUpdate func(Update)
}

// NewService creates a new download service
func NewService(resolver Resolver, fetcher Fetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver:       resolver,
		fetcher:        fetcher,
		logger:         logger,
		progress:       progress.LogFactory(logger, progress.DefaultMinStep),
		jobs:           DefaultJobs,
		resolveTimeout: DefaultResolveTimeout,
	}
}

// SetUpdateCallback sets the callback function for status transitions
func (s *Service) SetUpdateCallback(callback func(Update)) {
	s.onUpdate = callback
}

// SetProgressFactory sets how per-item progress reporters are created
func (s *Service) SetProgressFactory(factory progress.Factory) {
	if factory != nil {
		s.progress = factory
	}
}

// SetArchive enables skipping and recording of completed downloads
func (s *Service) SetArchive(archive Archive) {
	s.archive = archive
}

// SetJobs sets how many playlist items are downloaded at once
func (s *Service) SetJobs(jobs int) {
	switch {
	case jobs < 1:
		jobs = 1
	case jobs > MaxJobs:
		jobs = MaxJobs
	}
	s.jobs = jobs
}

// SetResolveTimeout bounds metadata resolution; zero disables the bound
func (s *Service) SetResolveTimeout(timeout time.Duration) {
	s.resolveTimeout = timeout
}

// DownloadItem performs one best-effort download. It never panics on
// platform failures; every error is reported in the returned outcome.
func (s *Service) DownloadItem(ctx context.Context, req model.DownloadRequest) model.DownloadOutcome {
	if req.ID == "" {
		req.ID = generateRequestID()
	}

	logger := s.logger.With(zap.String("request_id", req.ID), zap.String("url", req.URL))
	if req.Total > 0 {
		logger = logger.With(zap.Int("index", req.Index), zap.Int("total", req.Total))
	}

	out := model.DownloadOutcome{
		RequestID: req.ID,
		URL:       req.URL,
		Status:    model.TaskStatusPending,
		StartedAt: time.Now(),
	}
	s.notifyUpdate(req, &out)

	if err := ctx.Err(); err != nil {
		return s.fail(logger, req, out, model.NewDownloadErrorWithCause(model.KindInterrupted, req.URL, "download not started", err))
	}

	if videoID, ok := s.archivedID(ctx, logger, req.URL); ok {
		logger.Info("Already in archive, skipping", zap.String("video_id", videoID))
		s.transition(logger, req, &out, model.TaskStatusSkipped)
		return s.finish(out)
	}

	s.transition(logger, req, &out, model.TaskStatusResolving)
	logger.Info("Resolving media item")
	item, err := s.resolve(ctx, req.URL)
	if err != nil {
		return s.fail(logger, req, out, err)
	}
	out.Title = item.Title
	logger = logger.With(zap.String("title", item.Title))

	s.transition(logger, req, &out, model.TaskStatusSelecting)
	sel := Select(item.Streams, req.Preference)
	if !sel.Found {
		msg := fmt.Sprintf("no suitable stream for quality %s", req.Preference)
		return s.fail(logger, req, out, model.NewDownloadError(model.KindNoStream, req.URL, msg))
	}
	if sel.FellBack {
		logger.Warn("Requested resolution not available, falling back to highest",
			zap.String("requested", req.Preference.Resolution),
			zap.String("selected", sel.Stream.Resolution),
		)
	}
	stream := sel.Stream
	out.Stream = &stream
	logger.Info("Stream selected",
		zap.String("format_id", stream.ID),
		zap.String("resolution", stream.Resolution),
		zap.String("container", stream.Container),
		zap.Bool("audio_only", stream.AudioOnly),
	)

	if err := platform.CreateDirectoryIfNotExists(req.OutputDir); err != nil {
		return s.fail(logger, req, out, model.NewDownloadErrorWithCause(model.KindFilesystem, req.URL, "could not create output directory", err))
	}

	s.transition(logger, req, &out, model.TaskStatusDownloading)
	path, written, err := s.transfer(ctx, req, item, stream)
	out.Bytes = written
	if err != nil {
		return s.fail(logger, req, out, err)
	}
	out.FilePath = path

	s.transition(logger, req, &out, model.TaskStatusCompleted)
	out = s.finish(out)
	logger.Info("Download completed",
		zap.String("file", path),
		zap.String("size", humanize.Bytes(uint64(written))),
		zap.Duration("elapsed", out.Elapsed().Round(time.Millisecond)),
	)

	if s.archive != nil {
		if err := s.archive.Record(ctx, item, out); err != nil {
			logger.Warn("Failed to record download in archive", zap.Error(err))
		}
	}
	return out
}

// DownloadPlaylist resolves a playlist and downloads every entry with
// per-item failure isolation. Outcomes keep playlist order. A playlist that
// cannot be resolved is fatal; an interrupt stops the batch and returns the
// outcomes gathered so far with an Interrupted error.
func (s *Service) DownloadPlaylist(ctx context.Context, req model.PlaylistRequest) (*model.BatchReport, error) {
	logger := s.logger.With(zap.String("playlist_url", req.URL))

	logger.Info("Resolving playlist")
	playlist, err := s.resolvePlaylist(ctx, req.URL)
	if err != nil {
		logger.Error("Playlist resolution failed", zap.String("reason", err.Error()))
		return nil, err
	}

	report := &model.BatchReport{Playlist: playlist}
	if playlist.Len() == 0 {
		logger.Info("Playlist is empty, nothing to download", zap.String("playlist_id", playlist.ID))
		return report, nil
	}
	logger.Info("Playlist resolved",
		zap.String("playlist_id", playlist.ID),
		zap.String("title", playlist.Title),
		zap.Int("items", playlist.Len()),
		zap.Int("jobs", s.jobs),
	)

	requests := playlist.Requests(req, generateRequestID)
	outcomes := make([]model.DownloadOutcome, len(requests))

	if s.jobs <= 1 {
		for i, r := range requests {
			if ctx.Err() != nil {
				break
			}
			outcomes[i] = s.DownloadItem(ctx, r)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.jobs)
		for i, r := range requests {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				outcomes[i] = s.DownloadItem(ctx, r)
				return nil
			})
		}
		_ = g.Wait()
	}

	// items never started keep the zero status
	for _, out := range outcomes {
		if out.Status.IsFinished() {
			report.Outcomes = append(report.Outcomes, out)
		}
	}

	failed := report.Failed()
	logger.Info("Playlist finished",
		zap.Int("items", playlist.Len()),
		zap.Int("processed", len(report.Outcomes)),
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("skipped", report.Skipped()),
		zap.Int("failed", len(failed)),
	)

	if err := ctx.Err(); err != nil {
		return report, model.NewDownloadErrorWithCause(model.KindInterrupted, req.URL, "playlist download interrupted", err)
	}
	return report, nil
}

func (s *Service) resolve(ctx context.Context, url string) (*model.MediaItem, error) {
	if s.resolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.resolveTimeout)
		defer cancel()
	}

	item, err := s.resolver.Resolve(ctx, url)
	if err != nil {
		return nil, classify(err, model.KindResolution, url, "could not resolve media item")
	}
	if item == nil {
		return nil, model.NewDownloadError(model.KindResolution, url, "resolver returned no media item")
	}
	return item, nil
}

func (s *Service) resolvePlaylist(ctx context.Context, url string) (*model.Playlist, error) {
	if s.resolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.resolveTimeout)
		defer cancel()
	}

	playlist, err := s.resolver.ResolvePlaylist(ctx, url)
	if err != nil {
		return nil, classify(err, model.KindResolution, url, "could not resolve playlist")
	}
	if playlist == nil {
		return nil, model.NewDownloadError(model.KindResolution, url, "resolver returned no playlist")
	}
	return playlist, nil
}

// transfer streams the selected stream into the output directory.
// A partially written file is removed on failure.
func (s *Service) transfer(ctx context.Context, req model.DownloadRequest, item *model.MediaItem, stream model.StreamDescriptor) (string, int64, error) {
	body, size, err := s.fetcher.Open(ctx, item, stream)
	if err != nil {
		return "", 0, classify(err, model.KindTransfer, req.URL, "could not open stream")
	}
	defer body.Close()

	if size <= 0 {
		size = stream.Size
	}

	path := filepath.Join(req.OutputDir, platform.BuildFilename(item.Title, stream.Container))
	file, err := platform.CreateOutputFile(path)
	if err != nil {
		return "", 0, model.NewDownloadErrorWithCause(model.KindFilesystem, req.URL, "could not create output file", err)
	}

	reporter := s.progress(item.Title, size)
	written, copyErr := io.Copy(file, io.TeeReader(body, progress.NewWriter(size, reporter)))
	progress.Finish(reporter)
	closeErr := file.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		if ctxErr := ctx.Err(); ctxErr != nil {
			copyErr = ctxErr
		}
		return "", written, model.NewDownloadErrorWithCause(model.KindTransfer, req.URL, "transfer failed", copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return "", written, model.NewDownloadErrorWithCause(model.KindFilesystem, req.URL, "could not finalize output file", closeErr)
	}
	return path, written, nil
}

func (s *Service) archivedID(ctx context.Context, logger *zap.Logger, url string) (string, bool) {
	if s.archive == nil {
		return "", false
	}
	videoID, ok := s.resolver.VideoID(url)
	if !ok {
		return "", false
	}
	found, err := s.archive.Has(ctx, videoID)
	if err != nil {
		logger.Warn("Archive lookup failed", zap.String("video_id", videoID), zap.Error(err))
		return "", false
	}
	return videoID, found
}

func (s *Service) fail(logger *zap.Logger, req model.DownloadRequest, out model.DownloadOutcome, err error) model.DownloadOutcome {
	out.Err = err
	s.transition(logger, req, &out, model.TaskStatusFailed)

	kind := model.KindOf(err)
	if kind == model.KindInterrupted {
		logger.Warn("Download interrupted", zap.String("reason", err.Error()))
	} else {
		logger.Error("Download failed", zap.Stringer("kind", kind), zap.String("reason", err.Error()))
	}
	return s.finish(out)
}

func (s *Service) finish(out model.DownloadOutcome) model.DownloadOutcome {
	out.FinishedAt = time.Now()
	return out
}

func (s *Service) transition(logger *zap.Logger, req model.DownloadRequest, out *model.DownloadOutcome, next model.TaskStatus) {
	if !out.Status.CanTransition(next) {
		logger.Debug("Unexpected status transition",
			zap.Stringer("from", out.Status),
			zap.Stringer("to", next),
		)
	}
	out.Status = next
	s.notifyUpdate(req, out)
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(req model.DownloadRequest, out *model.DownloadOutcome) {
	if s.onUpdate == nil {
		return
	}
	s.updateMu.Lock()
	defer s.updateMu.Unlock()
	s.onUpdate(Update{
		RequestID: out.RequestID,
		URL:       out.URL,
		Title:     out.Title,
		Index:     req.Index,
		Total:     req.Total,
		Status:    out.Status,
	})
}

// classify keeps an existing DownloadError or wraps err into one of kind
func classify(err error, kind model.ErrorKind, url, message string) error {
	var de *model.DownloadError
	if errors.As(err, &de) {
		return err
	}
	return model.NewDownloadErrorWithCause(kind, url, message, err)
}

// generateRequestID generates a unique, time-ordered request ID
func generateRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
