// Command rgview renders a TOML scene offscreen on a Vulkan device and
// writes the last frame to a PNG file.
//
// With -watch it keeps running and re-renders whenever the scene file or a
// file it references changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/internal/image"
	"github.com/gogpu/rendergraph/scene"
)

func main() {
	var (
		scenePath = flag.String("scene", "cmd/rgview/testdata/scene.toml", "scene file")
		width     = flag.Uint("width", 0, "image width (0 uses the scene)")
		height    = flag.Uint("height", 0, "image height (0 uses the scene)")
		frames    = flag.Int("frames", 1, "frames to render before saving")
		output    = flag.String("output", "frame.png", "output file")
		watch     = flag.Bool("watch", false, "re-render when scene files change")
		level     = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "rgview",
	})
	lvl, err := log.ParseLevel(*level)
	if err != nil {
		logger.Fatal("invalid log level", "level", *level, "err", err)
	}
	logger.SetLevel(lvl)
	rendergraph.SetLogger(slog.New(logger))

	v := &viewer{
		scenePath: *scenePath,
		width:     uint32(*width),
		height:    uint32(*height),
		frames:    *frames,
		output:    *output,
		log:       logger,
	}
	if err := v.run(*watch); err != nil {
		logger.Fatal("rgview failed", "err", err)
	}
}

type viewer struct {
	scenePath     string
	width, height uint32
	frames        int
	output        string
	log           *log.Logger

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	surface  *rendergraph.OffscreenSurface
	renderer *rendergraph.Renderer
}

func (v *viewer) run(watch bool) error {
	s, err := scene.Load(v.scenePath)
	if err != nil {
		return err
	}
	if err := v.openDevice(); err != nil {
		return err
	}
	defer v.close()

	w, h := s.Size()
	if v.width > 0 {
		w = v.width
	}
	if v.height > 0 {
		h = v.height
	}
	v.surface = rendergraph.NewOffscreenSurface()
	v.renderer, err = rendergraph.NewRenderer(v.device, v.queue, v.surface, w, h, s.Options()...)
	if err != nil {
		return err
	}

	if err := v.render(s); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	return v.watch(s)
}

func (v *viewer) openDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return errors.New("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return errors.New("no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("open device: %w", err)
	}
	v.instance, v.device, v.queue = instance, openDev.Device, openDev.Queue
	v.log.Info("device opened", "adapter", selected.Info.Name)
	return nil
}

// render builds the scene into a fresh graph, renders the configured
// number of frames, and saves the last one.
func (v *viewer) render(s *scene.Scene) error {
	if err := v.renderer.Reset(); err != nil {
		return err
	}
	b, err := s.Apply(v.renderer, nil)
	if err != nil {
		return err
	}
	if err := v.renderer.Initialize(); err != nil {
		return err
	}

	start := time.Now()
	for i := 0; i < max(v.frames, 1); i++ {
		if err := b.UpdateCamera(); err != nil {
			return err
		}
		if err := v.renderer.Render(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	pix, err := v.surface.ReadPixels(v.queue)
	if err != nil {
		return err
	}
	w, h := v.surface.Size()
	img := &image.RGBA{Width: int(w), Height: int(h), Pix: pix}
	if err := img.SavePNG(v.output); err != nil {
		return err
	}
	stats := v.renderer.Cache().Stats()
	v.log.Info("frame saved", "output", v.output, "size", fmt.Sprintf("%dx%d", w, h),
		"frames", v.surface.Presented(), "elapsed", time.Since(start).Round(time.Millisecond),
		"meshes", stats.Meshes, "textures", stats.Textures)
	return nil
}

// watch re-renders on every change until interrupted. A scene that fails
// to load or render is logged and the previous output is kept. Shaders are
// read again on every build; meshes and textures stay cached.
func (v *viewer) watch(s *scene.Scene) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w, err := scene.Watch(v.scenePath, s)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	go w.Run(ctx)

	v.log.Info("watching", "scene", v.scenePath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors():
			v.log.Warn("watch error", "err", err)
		case path := <-w.Changes():
			v.log.Info("change detected", "path", path)
			next, err := scene.Load(v.scenePath)
			if err != nil {
				v.log.Error("reload failed", "err", err)
				continue
			}
			if err := v.render(next); err != nil {
				v.log.Error("render failed", "err", err)
				continue
			}
			if err := w.Add(next.Files()...); err != nil {
				v.log.Warn("watch new files", "err", err)
			}
		}
	}
}

func (v *viewer) close() {
	if v.renderer != nil {
		v.renderer.Destroy()
	}
	v.device.Destroy()
	v.instance.Destroy()
}
