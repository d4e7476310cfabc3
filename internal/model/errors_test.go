package model

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadError_Error(t *testing.T) {
	err := NewDownloadError(KindNoStream, "https://youtube.com/watch?v=1", "no suitable stream")
	assert.Equal(t, "no suitable stream", err.Error())

	err = NewDownloadErrorWithCause(KindTransfer, "https://youtube.com/watch?v=1", "transfer failed", errors.New("connection reset"))
	assert.Equal(t, "transfer failed: connection reset", err.Error())
}

func TestDownloadError_IsSentinel(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		sentinel error
	}{
		{KindResolution, ErrResolution},
		{KindNoStream, ErrNoStream},
		{KindTransfer, ErrTransfer},
		{KindInterrupted, ErrInterrupted},
		{KindFilesystem, ErrFilesystem},
		{KindConfig, ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", NewDownloadError(tt.kind, "", "x"))
			assert.ErrorIs(t, err, tt.sentinel)
			for _, other := range kindSentinels {
				if other != tt.sentinel {
					assert.NotErrorIs(t, err, other)
				}
			}
		})
	}
}

func TestDownloadError_CancelledCauseIsInterrupted(t *testing.T) {
	err := NewDownloadErrorWithCause(KindTransfer, "u", "transfer failed", context.Canceled)
	assert.Equal(t, KindInterrupted, err.Kind)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindInterrupted, KindOf(fmt.Errorf("op: %w", context.Canceled)))
	assert.Equal(t, KindResolution, KindOf(fmt.Errorf("op: %w", NewDownloadError(KindResolution, "", "bad"))))
}
