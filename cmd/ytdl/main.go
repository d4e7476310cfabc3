package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ytget/ytdl-cli/internal/config"
	"github.com/ytget/ytdl-cli/internal/download"
	"github.com/ytget/ytdl-cli/internal/history"
	"github.com/ytget/ytdl-cli/internal/logging"
	"github.com/ytget/ytdl-cli/internal/model"
	"github.com/ytget/ytdl-cli/internal/platform"
	"github.com/ytget/ytdl-cli/internal/progress"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	config.AppVersion = version

	if err := config.LoadEnvFile(config.DefaultEnvFile); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", config.ProgramName, err)
		return ExitError
	}

	settings, err := config.Parse(argv, stdout)
	switch {
	case errors.Is(err, arg.ErrHelp), errors.Is(err, arg.ErrVersion):
		return ExitOK
	case err != nil:
		fmt.Fprintf(stderr, "%s: %v\n", config.ProgramName, err)
		return ExitError
	}

	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", config.ProgramName, err)
		return ExitError
	}
	logger := logging.New(stderr, level)
	defer func() { _ = logger.Sync() }()

	yt := platform.NewYouTubeService(settings.ResolveTimeout)
	service := download.NewService(yt, yt, logger)
	service.SetJobs(settings.Jobs)
	service.SetResolveTimeout(settings.ResolveTimeout)
	service.SetProgressFactory(progressFactory(settings, stderr, logger))
	service.SetUpdateCallback(func(u download.Update) {
		logger.Debug("Status changed",
			zap.String("request_id", u.RequestID),
			zap.String("url", u.URL),
			zap.Stringer("status", u.Status),
		)
	})

	if settings.ArchivePath != "" {
		archive, err := history.Open(settings.ArchivePath)
		if err != nil {
			logger.Error("Failed to open download archive", zap.String("path", settings.ArchivePath), zap.Error(err))
			return ExitError
		}
		defer func() {
			if err := archive.Close(); err != nil {
				logger.Warn("Failed to close download archive", zap.Error(err))
			}
		}()
		service.SetArchive(archive)
	}

	logger.Info("Starting",
		zap.String("version", version),
		zap.String("url", settings.URL),
		zap.String("output", settings.OutputDir),
		zap.Stringer("quality", settings.Preference),
		zap.Bool("playlist", settings.Playlist),
	)

	if settings.Playlist {
		return downloadPlaylist(ctx, service, settings, logger)
	}

	if platform.IsPlaylistPage(settings.URL) {
		logger.Warn("URL looks like a playlist, pass --playlist to download all of its items")
	}
	return downloadSingle(ctx, service, settings, logger)
}

func downloadSingle(ctx context.Context, service download.Downloader, settings *config.Settings, logger *zap.Logger) int {
	out := service.DownloadItem(ctx, model.DownloadRequest{
		URL:        settings.URL,
		Preference: settings.Preference,
		OutputDir:  settings.OutputDir,
	})
	if out.Succeeded() {
		return ExitOK
	}

	if model.KindOf(out.Err) == model.KindInterrupted {
		logger.Warn("Interrupted, exiting")
	}
	return ExitError
}

func downloadPlaylist(ctx context.Context, service download.Downloader, settings *config.Settings, logger *zap.Logger) int {
	report, err := service.DownloadPlaylist(ctx, model.PlaylistRequest{
		URL:        settings.URL,
		Preference: settings.Preference,
		OutputDir:  settings.OutputDir,
	})
	if err != nil {
		if model.KindOf(err) == model.KindInterrupted {
			logger.Warn("Interrupted, exiting")
		}
		return ExitError
	}

	if !report.HasErrors() {
		return ExitOK
	}
	logger.Warn("Playlist finished with failures", zap.Int("failed", len(report.Failed())))
	for _, failed := range report.Failed() {
		logger.Warn("Playlist item failed",
			zap.String("url", failed.URL),
			zap.String("title", failed.DisplayTitle()),
			zap.String("reason", failed.Reason()),
		)
	}
	return ExitOK
}

// progressFactory renders a progress bar on interactive terminals and
// structured log lines otherwise
func progressFactory(settings *config.Settings, stderr io.Writer, logger *zap.Logger) progress.Factory {
	if settings.ProgressBar && isTerminal(stderr) {
		return progress.BarFactory(stderr)
	}
	return progress.LogFactory(logger, settings.ProgressStep)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
