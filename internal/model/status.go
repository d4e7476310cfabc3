package model

// TaskStatus represents the status of a single download request
type TaskStatus string

const (
	// TaskStatusPending means the request is queued but not started
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusResolving means the URL is being resolved into a media item
	TaskStatusResolving TaskStatus = "Resolving"

	// TaskStatusSelecting means a stream is being chosen
	TaskStatusSelecting TaskStatus = "Selecting"

	// TaskStatusDownloading means the transfer is in progress
	TaskStatusDownloading TaskStatus = "Downloading"

	// TaskStatusCompleted means the file was written
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusFailed means the request terminated with an error
	TaskStatusFailed TaskStatus = "Failed"

	// TaskStatusSkipped means the item was already present in the archive
	TaskStatusSkipped TaskStatus = "Skipped"
)

var statusTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending:     {TaskStatusResolving, TaskStatusSkipped, TaskStatusFailed},
	TaskStatusResolving:   {TaskStatusSelecting, TaskStatusFailed},
	TaskStatusSelecting:   {TaskStatusDownloading, TaskStatusFailed},
	TaskStatusDownloading: {TaskStatusCompleted, TaskStatusFailed},
}

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsFinished returns true if the request is in a terminal state
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusFailed || ts == TaskStatusSkipped
}

// CanTransition reports whether moving from ts to next is allowed
func (ts TaskStatus) CanTransition(next TaskStatus) bool {
	for _, allowed := range statusTransitions[ts] {
		if allowed == next {
			return true
		}
	}
	return false
}
