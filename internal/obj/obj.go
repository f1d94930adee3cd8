// Package obj parses Wavefront OBJ meshes (*.obj) into indexed triangle lists.
//
// Only geometry is read: positions (v), texture coordinates (vt), normals
// (vn), faces (f), and object or group boundaries (o, g). Polygons are fan
// triangulated and every distinct position/uv/normal triple becomes one
// output vertex, so each object has a single index buffer. Material
// statements are ignored.
package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Parse errors.
var (
	// ErrNoGeometry is returned when a file contains no faces.
	ErrNoGeometry = errors.New("obj: no faces")

	// ErrIndexOutOfRange is returned for face indices that reference
	// elements not yet defined.
	ErrIndexOutOfRange = errors.New("obj: index out of range")
)

// Vertex is one single-indexed vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Object is one submesh: a named indexed triangle list.
type Object struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// key identifies a vertex by its 0-based position/uv/normal indices.
// Missing uv or normal is -1.
type key struct {
	v, t, n int
}

type decoder struct {
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32

	objects []Object
	current *Object
	lookup  map[key]uint32
	line    int
}

// Load parses the OBJ file at path.
func Load(path string) ([]Object, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("obj: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	objects, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return objects, nil
}

// Decode parses OBJ data from r. Objects without faces are dropped.
func Decode(r io.Reader) ([]Object, error) {
	dec := &decoder{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		dec.line++
		if err := dec.parseLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("obj: line %d: %w", dec.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("obj: read: %w", err)
	}

	dec.finishObject()
	if len(dec.objects) == 0 {
		return nil, ErrNoGeometry
	}
	return dec.objects, nil
}

func (dec *decoder) parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		p, err := parseFloats(fields[1:], 3)
		if err != nil {
			return fmt.Errorf("vertex: %w", err)
		}
		dec.positions = append(dec.positions, [3]float32{p[0], p[1], p[2]})
	case "vn":
		n, err := parseFloats(fields[1:], 3)
		if err != nil {
			return fmt.Errorf("normal: %w", err)
		}
		dec.normals = append(dec.normals, [3]float32{n[0], n[1], n[2]})
	case "vt":
		t, err := parseFloats(fields[1:], 2)
		if err != nil {
			return fmt.Errorf("texture coordinate: %w", err)
		}
		dec.uvs = append(dec.uvs, [2]float32{t[0], t[1]})
	case "f":
		return dec.parseFace(fields[1:])
	case "o", "g":
		name := ""
		if len(fields) > 1 {
			name = strings.Join(fields[1:], " ")
		}
		dec.finishObject()
		dec.startObject(name)
	}
	// mtllib, usemtl, s, l and p are ignored.
	return nil
}

func (dec *decoder) startObject(name string) {
	dec.current = &Object{Name: name}
	dec.lookup = make(map[key]uint32)
}

func (dec *decoder) finishObject() {
	if dec.current != nil && len(dec.current.Indices) > 0 {
		dec.objects = append(dec.objects, *dec.current)
	}
	dec.current = nil
	dec.lookup = nil
}

func (dec *decoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face needs at least 3 vertices, got %d", len(fields))
	}
	if dec.current == nil {
		dec.startObject("")
	}

	corners := make([]uint32, len(fields))
	for i, f := range fields {
		k, err := dec.parseCorner(f)
		if err != nil {
			return err
		}
		corners[i] = dec.vertexFor(k)
	}

	// Fan triangulation around the first corner.
	for i := 1; i+1 < len(corners); i++ {
		dec.current.Indices = append(dec.current.Indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// parseCorner parses "v", "v/t", "v//n" or "v/t/n".
func (dec *decoder) parseCorner(s string) (key, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return key{}, fmt.Errorf("face corner %q", s)
	}

	k := key{v: -1, t: -1, n: -1}
	var err error
	if k.v, err = resolveIndex(parts[0], len(dec.positions)); err != nil {
		return key{}, fmt.Errorf("position index %q: %w", s, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if k.t, err = resolveIndex(parts[1], len(dec.uvs)); err != nil {
			return key{}, fmt.Errorf("uv index %q: %w", s, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if k.n, err = resolveIndex(parts[2], len(dec.normals)); err != nil {
			return key{}, fmt.Errorf("normal index %q: %w", s, err)
		}
	}
	return k, nil
}

func (dec *decoder) vertexFor(k key) uint32 {
	if idx, ok := dec.lookup[k]; ok {
		return idx
	}

	v := Vertex{Position: dec.positions[k.v]}
	if k.t >= 0 {
		v.TexCoord = dec.uvs[k.t]
	}
	if k.n >= 0 {
		v.Normal = dec.normals[k.n]
	}

	idx := uint32(len(dec.current.Vertices)) //nolint:gosec // vertex count bounded by file size
	dec.current.Vertices = append(dec.current.Vertices, v)
	dec.lookup[k] = idx
	return idx
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index into a
// 0-based index into a list of length n.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	default:
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, n)
	}
}

func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("need %d components, got %d", want, len(fields))
	}
	out := make([]float32, want)
	for i := range want {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
