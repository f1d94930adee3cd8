package scene

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Load reads, decodes, and validates the scene file at path. Relative paths
// inside the file resolve against its directory.
//
// Example:
//
//	s, err := scene.Load("assets/scene.toml")
//	if err != nil {
//	    return err
//	}
//	r, err := rendergraph.NewRenderer(device, queue, surface, w, h, s.Options()...)
func Load(path string) (*Scene, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("scene: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	s, err := Decode(f, dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode decodes and validates a scene from r. dir is the base for relative
// paths.
func Decode(r io.Reader, dir string) (*Scene, error) {
	var s Scene
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("scene: decode: %w", err)
	}
	s.dir = dir
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
