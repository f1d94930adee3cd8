package rendergraph

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph/internal/gpu"
)

// Uniform is a value that can be written to a uniform buffer.
type Uniform interface {
	UniformBytes() []byte
}

// RawUniform is a uniform given as pre-encoded bytes.
type RawUniform []byte

// UniformBytes returns r.
func (r RawUniform) UniformBytes() []byte { return r }

// encodingUniform is a Uniform whose encoding can fail. NewUniformBuffer
// and UniformBuffer.Update report the failure instead of the empty payload.
type encodingUniform interface {
	EncodeUniform() ([]byte, error)
}

func encodeUniform(u Uniform) ([]byte, error) {
	if e, ok := u.(encodingUniform); ok {
		return e.EncodeUniform()
	}
	return u.UniformBytes(), nil
}

// PODUniform encodes a fixed-size value with little-endian byte order.
// Value must be a fixed-size type as accepted by encoding/binary.
type PODUniform[T any] struct {
	Value T
}

// EncodeUniform returns the little-endian encoding of Value, or an error
// when T has no fixed-size encoding.
func (p PODUniform[T]) EncodeUniform() ([]byte, error) {
	b, err := binary.Append(nil, binary.LittleEndian, p.Value)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", p.Value, err)
	}
	return b, nil
}

// UniformBytes returns the little-endian encoding of Value. An encoding
// error is logged and yields nil.
func (p PODUniform[T]) UniformBytes() []byte {
	b, err := p.EncodeUniform()
	if err != nil {
		Logger().Warn("uniform not encodable", "err", err)
		return nil
	}
	return b
}

// UniformKind selects the uniform set a buffer joins.
type UniformKind uint8

const (
	// UniformStatic buffers are bound at group 0.
	UniformStatic UniformKind = iota
	// UniformDynamic buffers are bound at group 1, or group 0 when the node
	// has no static buffers.
	UniformDynamic
)

// String returns the string representation of UniformKind.
func (k UniformKind) String() string {
	switch k {
	case UniformStatic:
		return "Static"
	case UniformDynamic:
		return "Dynamic"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// UniformBuffer is a GPU buffer holding one uniform payload. Its size is
// fixed by the first payload.
type UniformBuffer struct {
	device hal.Device
	queue  hal.Queue
	buffer hal.Buffer
	label  string
	size   int    // payload length
	padded uint64 // buffer length, 4-byte aligned
}

// NewUniformBuffer creates a uniform buffer holding u.
func NewUniformBuffer(device hal.Device, queue hal.Queue, label string, u Uniform) (*UniformBuffer, error) {
	data, err := encodeUniform(u)
	if err != nil {
		return nil, fmt.Errorf("uniform %s: %w", label, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("uniform %s: %w", label, ErrEmptyUniform)
	}

	buf, err := gpu.CreateBufferInit(device, queue, label, data, gputypes.BufferUsageUniform)
	if err != nil {
		return nil, fmt.Errorf("uniform %s: %w", label, err)
	}
	return &UniformBuffer{
		device: device,
		queue:  queue,
		buffer: buf,
		label:  label,
		size:   len(data),
		padded: alignUp4(uint64(len(data))),
	}, nil
}

// Update writes a new payload. The payload must encode to exactly Size
// bytes; otherwise nothing is written and ErrUniformSizeMismatch is returned.
func (b *UniformBuffer) Update(u Uniform) error {
	data, err := encodeUniform(u)
	if err != nil {
		return fmt.Errorf("uniform %s: %w", b.label, err)
	}
	if len(data) != b.size {
		return fmt.Errorf("uniform %s: %w: have %d bytes, got %d", b.label, ErrUniformSizeMismatch, b.size, len(data))
	}
	if uint64(len(data)) != b.padded {
		padded := make([]byte, b.padded)
		copy(padded, data)
		data = padded
	}
	if err := b.queue.WriteBuffer(b.buffer, 0, data); err != nil {
		return fmt.Errorf("uniform %s: write: %w", b.label, err)
	}
	return nil
}

// Size returns the payload length in bytes.
func (b *UniformBuffer) Size() int { return b.size }

// Label returns the buffer's debug label.
func (b *UniformBuffer) Label() string { return b.label }

// Raw returns the HAL buffer.
func (b *UniformBuffer) Raw() hal.Buffer { return b.buffer }

// Destroy releases the GPU buffer. Safe to call twice.
func (b *UniformBuffer) Destroy() {
	if b.buffer != nil {
		b.device.DestroyBuffer(b.buffer)
		b.buffer = nil
	}
}

func alignUp4(n uint64) uint64 { return (n + 3) &^ 3 }
