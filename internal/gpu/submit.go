package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// pollInterval is how long WaitSubmission sleeps between completion polls.
const pollInterval = 100 * time.Microsecond

// Submit submits buffers and returns the submission index to wait on.
func Submit(queue hal.Queue, buffers ...hal.CommandBuffer) (uint64, error) {
	index, err := queue.Submit(buffers)
	if err != nil {
		return 0, fmt.Errorf("submit: %w", err)
	}
	return index, nil
}

// WaitSubmission polls queue until submission index has completed or
// timeout elapses. It reports whether the submission completed. A zero
// index is always complete.
func WaitSubmission(queue hal.Queue, index uint64, timeout time.Duration) bool {
	if index == 0 || queue.PollCompleted() >= index {
		return true
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		time.Sleep(pollInterval)
		if queue.PollCompleted() >= index {
			return true
		}
	}
	return false
}
