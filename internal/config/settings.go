package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"

	"github.com/ytget/ytdl-cli/internal/download"
	"github.com/ytget/ytdl-cli/internal/model"
	"github.com/ytget/ytdl-cli/internal/platform"
)

// ProgramName is the name shown in usage and help output
const ProgramName = "ytdl"

// Quality names accepted on the command line
const (
	QualityHighest = "highest"
	Quality720p    = "720p"
	Quality480p    = "480p"
	Quality360p    = "360p"
)

// Default values
const (
	DefaultQuality        = QualityHighest
	DefaultJobs           = download.DefaultJobs
	MaxJobs               = download.MaxJobs
	DefaultResolveTimeout = download.DefaultResolveTimeout
	DefaultProgressStep   = 1.0
	DefaultLogLevel       = "info"
	DefaultEnvFile        = ".env"
	FallbackDownloadDir   = "downloads"
)

// AppVersion is reported by --version; main overrides it at startup
var AppVersion = "dev"

var resolutionLabel = regexp.MustCompile(`^[1-9][0-9]{2,3}p$`)

// Args holds CLI arguments parsed by go-arg
type Args struct {
	URL           string        `arg:"positional,required" placeholder:"URL" help:"video or playlist URL"`
	Output        string        `arg:"-o,--output,env:YTDL_OUTPUT" placeholder:"DIR" help:"output directory (default: ~/Downloads)"`
	AudioOnly     bool          `arg:"-a,--audio-only,env:YTDL_AUDIO_ONLY" help:"download audio only"`
	Quality       string        `arg:"-q,--quality,env:YTDL_QUALITY" default:"highest" help:"video quality: highest, 720p, 480p, 360p"`
	Playlist      bool          `arg:"-p,--playlist" help:"download entire playlist"`
	Jobs          int           `arg:"-j,--jobs,env:YTDL_JOBS" default:"1" help:"playlist items downloaded in parallel"`
	Timeout       time.Duration `arg:"--timeout,env:YTDL_TIMEOUT" default:"60s" help:"timeout for resolving a URL, 0 disables"`
	Archive       string        `arg:"--archive,env:YTDL_ARCHIVE" placeholder:"FILE" help:"record downloads in FILE and skip items already recorded"`
	ProgressStep  float64       `arg:"--progress-step,env:YTDL_PROGRESS_STEP" default:"1" help:"minimum percentage between progress log lines, 0 logs every chunk"`
	NoProgressBar bool          `arg:"--no-progress-bar,env:YTDL_NO_PROGRESS_BAR" help:"log progress lines even on a terminal"`
	LogLevel      string        `arg:"--log-level,env:YTDL_LOG_LEVEL" default:"info" help:"debug, info, warn or error"`
}

// Version implements arg.Versioned
func (Args) Version() string {
	return fmt.Sprintf("%s %s", ProgramName, AppVersion)
}

// Description implements arg.Described
func (Args) Description() string {
	return "YouTube video/audio downloader"
}

// Settings is the validated configuration of one run
type Settings struct {
	URL            string
	OutputDir      string
	Preference     model.QualityPreference
	Playlist       bool
	Jobs           int
	ResolveTimeout time.Duration
	ArchivePath    string
	ProgressStep   float64
	ProgressBar    bool
	LogLevel       string
}

// LoadEnvFile loads variables from path without overriding the environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Parse parses argv (without the program name) into Settings. Help and
// version output is written to out, and arg.ErrHelp or arg.ErrVersion is
// returned so the caller can exit cleanly.
func Parse(argv []string, out io.Writer) (*Settings, error) {
	var args Args
	parser, err := arg.NewParser(arg.Config{Program: ProgramName, Out: out}, &args)
	if err != nil {
		return nil, fmt.Errorf("failed to build argument parser: %w", err)
	}

	err = parser.Parse(argv)
	switch {
	case errors.Is(err, arg.ErrHelp):
		parser.WriteHelp(out)
		return nil, err
	case errors.Is(err, arg.ErrVersion):
		fmt.Fprintln(out, args.Version())
		return nil, err
	case err != nil:
		parser.WriteUsage(out)
		return nil, model.NewDownloadErrorWithCause(model.KindConfig, "", "invalid arguments", err)
	}

	return FromArgs(&args)
}

// FromArgs validates parsed arguments and fills defaults
func FromArgs(args *Args) (*Settings, error) {
	pref, err := ParseQuality(args.Quality, args.AudioOnly)
	if err != nil {
		return nil, err
	}

	if args.Timeout < 0 {
		return nil, model.NewDownloadError(model.KindConfig, "", fmt.Sprintf("timeout must not be negative, got %s", args.Timeout))
	}
	if args.ProgressStep < 0 || args.ProgressStep > 100 {
		return nil, model.NewDownloadError(model.KindConfig, "", fmt.Sprintf("progress step must be between 0 and 100, got %g", args.ProgressStep))
	}

	url := strings.TrimSpace(args.URL)
	if url == "" {
		return nil, model.NewDownloadError(model.KindConfig, "", "url must not be empty")
	}

	logLevel := args.LogLevel
	if logLevel == "" {
		logLevel = DefaultLogLevel
	}

	return &Settings{
		URL:            url,
		OutputDir:      ResolveOutputDir(args.Output),
		Preference:     pref,
		Playlist:       args.Playlist,
		Jobs:           ClampJobs(args.Jobs),
		ResolveTimeout: args.Timeout,
		ArchivePath:    args.Archive,
		ProgressStep:   args.ProgressStep,
		ProgressBar:    !args.NoProgressBar,
		LogLevel:       logLevel,
	}, nil
}

// ParseQuality converts the quality flag into a preference. audioOnly wins
// over any quality value.
func ParseQuality(quality string, audioOnly bool) (model.QualityPreference, error) {
	if audioOnly {
		return model.AudioOnly(), nil
	}

	q := strings.ToLower(strings.TrimSpace(quality))
	switch {
	case q == "" || q == QualityHighest:
		return model.Highest(), nil
	case resolutionLabel.MatchString(q):
		return model.ExactResolution(q), nil
	default:
		return model.QualityPreference{}, model.NewDownloadError(model.KindConfig, "",
			fmt.Sprintf("invalid quality %q: expected one of %s", quality, strings.Join(QualityOptions(), ", ")))
	}
}

// QualityOptions returns the documented quality options
func QualityOptions() []string {
	return []string{QualityHighest, Quality720p, Quality480p, Quality360p}
}

// ClampJobs keeps the parallelism within [1, MaxJobs]
func ClampJobs(jobs int) int {
	if jobs < 1 {
		return 1
	}
	if jobs > MaxJobs {
		return MaxJobs
	}
	return jobs
}

// ResolveOutputDir returns dir with "~" expanded, or the user's Downloads
// directory when dir is empty.
func ResolveOutputDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			return filepath.Join(os.TempDir(), FallbackDownloadDir)
		}
		return defaultDir
	}

	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return dir
}
