package model

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies download failures
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindResolution
	KindNoStream
	KindTransfer
	KindInterrupted
	KindFilesystem
	KindConfig
)

// Sentinel errors matched by errors.Is against a *DownloadError of the same kind
var (
	ErrResolution  = errors.New("resolution failed")
	ErrNoStream    = errors.New("no suitable stream")
	ErrTransfer    = errors.New("transfer failed")
	ErrInterrupted = errors.New("interrupted")
	ErrFilesystem  = errors.New("filesystem error")
	ErrConfig      = errors.New("invalid configuration")
)

var kindSentinels = map[ErrorKind]error{
	KindResolution:  ErrResolution,
	KindNoStream:    ErrNoStream,
	KindTransfer:    ErrTransfer,
	KindInterrupted: ErrInterrupted,
	KindFilesystem:  ErrFilesystem,
	KindConfig:      ErrConfig,
}

// String returns the string representation of the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindResolution:
		return "resolution"
	case KindNoStream:
		return "no_stream"
	case KindTransfer:
		return "transfer"
	case KindInterrupted:
		return "interrupted"
	case KindFilesystem:
		return "filesystem"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// DownloadError is a classified failure of one resolution or download
type DownloadError struct {
	Kind    ErrorKind
	URL     string
	Message string
	Cause   error
}

// Error implements the error interface
func (de *DownloadError) Error() string {
	if de.Cause != nil {
		return fmt.Sprintf("%s: %v", de.Message, de.Cause)
	}
	return de.Message
}

// Unwrap returns the underlying cause error
func (de *DownloadError) Unwrap() error {
	return de.Cause
}

// Is matches the sentinel error of the same kind
func (de *DownloadError) Is(target error) bool {
	sentinel, ok := kindSentinels[de.Kind]
	return ok && target == sentinel
}

// NewDownloadError creates a DownloadError without a cause
func NewDownloadError(kind ErrorKind, url, message string) *DownloadError {
	return &DownloadError{Kind: kind, URL: url, Message: message}
}

// NewDownloadErrorWithCause creates a DownloadError wrapping cause.
// A cancelled context always yields KindInterrupted.
func NewDownloadErrorWithCause(kind ErrorKind, url, message string, cause error) *DownloadError {
	if errors.Is(cause, context.Canceled) {
		kind = KindInterrupted
	}
	return &DownloadError{Kind: kind, URL: url, Message: message, Cause: cause}
}

// KindOf returns the kind of the first DownloadError in err's chain
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var de *DownloadError
	if errors.As(err, &de) {
		return de.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindInterrupted
	}
	return KindUnknown
}
