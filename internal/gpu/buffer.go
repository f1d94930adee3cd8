package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrEmptyBuffer is returned when a buffer would be created from no data.
var ErrEmptyBuffer = errors.New("gpu: buffer data is empty")

// copyAlignment is the WebGPU requirement for queue.WriteBuffer sizes.
const copyAlignment = 4

// CreateBufferInit creates a buffer sized to data and uploads data through
// the queue. CopyDst is always added to usage so later writes succeed.
func CreateBufferInit(device hal.Device, queue hal.Queue, label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", label, ErrEmptyBuffer)
	}
	if rem := len(data) % copyAlignment; rem != 0 {
		padded := make([]byte, len(data)+copyAlignment-rem)
		copy(padded, data)
		data = padded
	}

	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := queue.WriteBuffer(buf, 0, data); err != nil {
		device.DestroyBuffer(buf)
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}

	slogger().Debug("buffer uploaded", "label", label, "size", len(data))
	return buf, nil
}

// Float32Bytes encodes values as little-endian float32s.
func Float32Bytes(values ...float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// Uint32Bytes encodes values as little-endian uint32s.
func Uint32Bytes(values ...uint32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// DrawIndexedArgs are the parameters of one indexed draw. They mirror the
// GPU layout of an indexed indirect draw so instance counts can be baked
// once per submesh.
type DrawIndexedArgs struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}
