package model

import "testing"

func TestTaskStatus_IsFinished(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		expected bool
	}{
		{TaskStatusPending, false},
		{TaskStatusResolving, false},
		{TaskStatusSelecting, false},
		{TaskStatusDownloading, false},
		{TaskStatusCompleted, true},
		{TaskStatusFailed, true},
		{TaskStatusSkipped, true},
	}

	for _, test := range tests {
		result := test.status.IsFinished()
		if result != test.expected {
			t.Errorf("TaskStatus(%s).IsFinished() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestTaskStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from, to TaskStatus
		expected bool
	}{
		{"pending to resolving", TaskStatusPending, TaskStatusResolving, true},
		{"pending to skipped", TaskStatusPending, TaskStatusSkipped, true},
		{"resolving to selecting", TaskStatusResolving, TaskStatusSelecting, true},
		{"resolving to failed", TaskStatusResolving, TaskStatusFailed, true},
		{"selecting to downloading", TaskStatusSelecting, TaskStatusDownloading, true},
		{"selecting to failed", TaskStatusSelecting, TaskStatusFailed, true},
		{"downloading to completed", TaskStatusDownloading, TaskStatusCompleted, true},
		{"pending to downloading", TaskStatusPending, TaskStatusDownloading, false},
		{"completed to failed", TaskStatusCompleted, TaskStatusFailed, false},
		{"failed to resolving", TaskStatusFailed, TaskStatusResolving, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.expected {
				t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.expected, got)
			}
		})
	}
}

func TestTaskStatus_String(t *testing.T) {
	status := TaskStatusDownloading
	expected := "Downloading"
	result := status.String()

	if result != expected {
		t.Errorf("TaskStatus.String() = %s, expected %s", result, expected)
	}
}
