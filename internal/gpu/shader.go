package gpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// ErrEmptyShader is returned for blank WGSL sources.
var ErrEmptyShader = errors.New("gpu: shader source is empty")

// CompileWGSL compiles WGSL source to SPIR-V words.
// SPIR-V is a stream of little-endian 32-bit words.
func CompileWGSL(source string) ([]uint32, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptyShader
	}

	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile WGSL: %w", err)
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// CompileShader compiles WGSL and creates a shader module from the result.
// A compile error is returned before the device is touched.
func CompileShader(device hal.Device, label, source string) (hal.ShaderModule, error) {
	words, err := CompileWGSL(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: words,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module %s: %w", label, err)
	}

	slogger().Debug("shader compiled", "label", label, "words", len(words))
	return module, nil
}
