package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// MaxPercent is the upper bound of a reported percentage
const MaxPercent = 100.0

// DefaultMinStep is the default percentage delta between two log lines
const DefaultMinStep = 1.0

// Reporter receives byte progress for one transfer
type Reporter interface {
	OnProgress(total, remaining uint64)
}

// Finisher is implemented by reporters that need to flush when a transfer ends
type Finisher interface {
	Finish()
}

// ReporterFunc adapts a function to the Reporter interface
type ReporterFunc func(total, remaining uint64)

// OnProgress calls f(total, remaining)
func (f ReporterFunc) OnProgress(total, remaining uint64) {
	f(total, remaining)
}

// Factory creates a reporter for a transfer of total bytes (0 if unknown)
type Factory func(label string, total int64) Reporter

// Percentage returns the downloaded share of total in [0,100].
// An unknown (zero) total reports 0.
func Percentage(total, remaining uint64) float64 {
	if total == 0 || remaining >= total {
		return 0
	}
	return float64(total-remaining) / float64(total) * MaxPercent
}

// Finish flushes r if it implements Finisher
func Finish(r Reporter) {
	if f, ok := r.(Finisher); ok {
		f.Finish()
	}
}

// LogReporter writes one info line per meaningful progress step
type LogReporter struct {
	logger  *zap.Logger
	label   string
	minStep float64

	mu      sync.Mutex
	last    float64
	started bool
}

// NewLogReporter creates a log reporter. minStep is the minimum percentage
// delta between two lines; 0 logs every callback.
func NewLogReporter(logger *zap.Logger, label string, minStep float64) *LogReporter {
	if minStep < 0 {
		minStep = 0
	}
	return &LogReporter{
		logger:  logger,
		label:   label,
		minStep: minStep,
	}
}

// LogFactory returns a Factory producing LogReporters
func LogFactory(logger *zap.Logger, minStep float64) Factory {
	return func(label string, _ int64) Reporter {
		return NewLogReporter(logger, label, minStep)
	}
}

// OnProgress implements Reporter
func (r *LogReporter) OnProgress(total, remaining uint64) {
	percent := Percentage(total, remaining)

	r.mu.Lock()
	emit := !r.started ||
		percent-r.last >= r.minStep ||
		(percent == MaxPercent && r.last < MaxPercent)
	if emit {
		r.started = true
		r.last = percent
	}
	r.mu.Unlock()

	if !emit {
		return
	}

	downloaded := uint64(0)
	if remaining < total {
		downloaded = total - remaining
	}
	r.logger.Info("Download progress",
		zap.String("title", r.label),
		zap.String("percent", fmt.Sprintf("%.1f%%", percent)),
		zap.String("downloaded", humanize.Bytes(downloaded)),
		zap.String("total", humanize.Bytes(total)),
	)
}

// BarReporter renders progress as a terminal progress bar
type BarReporter struct {
	bar *progressbar.ProgressBar
}

// NewBarReporter creates a byte progress bar writing to w. An unknown total
// renders a spinner.
func NewBarReporter(w io.Writer, label string, total int64) *BarReporter {
	if total <= 0 {
		total = -1
	}
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
	)
	return &BarReporter{bar: bar}
}

// BarFactory returns a Factory producing BarReporters writing to w
func BarFactory(w io.Writer) Factory {
	return func(label string, total int64) Reporter {
		return NewBarReporter(w, label, total)
	}
}

// OnProgress implements Reporter
func (b *BarReporter) OnProgress(total, remaining uint64) {
	if remaining > total {
		remaining = total
	}
	_ = b.bar.Set64(int64(total - remaining))
}

// Finish implements Finisher
func (b *BarReporter) Finish() {
	_ = b.bar.Finish()
}
