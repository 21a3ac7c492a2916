package filternode

import (
	"testing"
	"time"

	"github.com/speechden/hsv/internal/suppressor"
)

func TestStartStopLifecycle(t *testing.T) {
	n := New(Params{SampleRate: 16000, Channels: 1, Mode: suppressor.Wiener}, nil)

	audioChan := make(chan []int16, 4)
	resultChan := make(chan []int16, 16)

	if err := n.Start(audioChan, resultChan); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := n.Start(audioChan, resultChan); err == nil {
		t.Fatalf("second Start should fail while already running")
	}

	frame := make([]int16, 320)
	audioChan <- frame

	select {
	case <-resultChan:
	case <-time.After(2 * time.Second):
	}

	if err := n.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := n.Stop(); err != nil {
		t.Fatalf("second Stop should be a no-op, got %v", err)
	}
}

func TestName(t *testing.T) {
	n := New(Params{SampleRate: 16000, Channels: 1, Mode: suppressor.SpecSub}, nil)
	if n.Name() != "hsv" {
		t.Fatalf("Name() = %q, want hsv", n.Name())
	}
}
