package gpu

import (
	"testing"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// stalledQueue never completes a submission.
type stalledQueue struct {
	hal.Queue
}

func (stalledQueue) PollCompleted() uint64 { return 0 }

func TestWaitSubmission(t *testing.T) {
	_, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	index, err := Submit(queue)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if index == 0 {
		t.Fatal("Submit returned index 0")
	}

	tests := []struct {
		name  string
		queue hal.Queue
		index uint64
		want  bool
	}{
		{"completed", queue, index, true},
		{"zero index", stalledQueue{}, 0, true},
		{"stalled", stalledQueue{}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WaitSubmission(tt.queue, tt.index, time.Millisecond); got != tt.want {
				t.Errorf("WaitSubmission() = %v, want %v", got, tt.want)
			}
		})
	}
}
