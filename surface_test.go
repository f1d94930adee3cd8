package rendergraph

import (
	"errors"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestSurfaceConfig(t *testing.T) {
	if _, err := NewSurfaceConfig(0, 1, DefaultColorFormat); !errors.Is(err, ErrInvalidSurfaceSize) {
		t.Errorf("NewSurfaceConfig(0, 1) = %v, want ErrInvalidSurfaceSize", err)
	}

	c, err := NewSurfaceConfig(640, 480, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatalf("NewSurfaceConfig: %v", err)
	}
	if err := c.Resize(0, 0); !errors.Is(err, ErrInvalidSurfaceSize) {
		t.Errorf("Resize(0, 0) = %v, want ErrInvalidSurfaceSize", err)
	}
	if err := c.Resize(800, 600); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	want := SurfaceState{Width: 800, Height: 600, Format: gputypes.TextureFormatBGRA8Unorm}
	if got := c.Snapshot(); got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}

func TestSurfaceConfigConcurrent(t *testing.T) {
	c, err := NewSurfaceConfig(1, 1, DefaultColorFormat)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Resize(uint32(i+1), uint32(i+1))
		}()
		go func() {
			defer wg.Done()
			if s := c.Snapshot(); s.Width != s.Height {
				t.Errorf("torn snapshot %+v", s)
			}
		}()
	}
	wg.Wait()
}

func TestOffscreenSurface(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	s := NewOffscreenSurface()
	if _, err := s.Acquire(); err == nil {
		t.Error("Acquire before Configure succeeded")
	}
	if _, err := s.ReadPixels(queue); err == nil {
		t.Error("ReadPixels before Configure succeeded")
	}

	state := SurfaceState{Width: 10, Height: 3, Format: gputypes.TextureFormatBGRA8Unorm}
	if err := s.Configure(device, state); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer s.Destroy()

	frame, err := s.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if frame.View() == nil {
		t.Error("frame has no view")
	}
	if err := s.Present(queue, frame); err != nil {
		t.Errorf("Present: %v", err)
	}
	if s.Presented() != 1 {
		t.Errorf("Presented() = %d, want 1", s.Presented())
	}

	pix, err := s.ReadPixels(queue)
	if err != nil {
		t.Fatalf("ReadPixels: %v", err)
	}
	if len(pix) != 10*3*4 {
		t.Errorf("len(ReadPixels()) = %d, want %d", len(pix), 10*3*4)
	}

	state.Width = 20
	if err := s.Configure(device, state); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	if w, h := s.Size(); w != 20 || h != 3 {
		t.Errorf("Size() = %dx%d, want 20x3", w, h)
	}
	s.Destroy()
	if w, _ := s.Size(); w != 0 {
		t.Error("Size() after Destroy is not zero")
	}
}
