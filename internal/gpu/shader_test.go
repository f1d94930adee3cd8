package gpu

import (
	"errors"
	"testing"
)

func TestCompileWGSL(t *testing.T) {
	words, err := CompileWGSL(testShader)
	if err != nil {
		t.Fatalf("CompileWGSL failed: %v", err)
	}
	if len(words) == 0 {
		t.Fatal("expected SPIR-V output")
	}
	// SPIR-V magic number.
	if words[0] != 0x07230203 {
		t.Errorf("magic = %#x, want 0x07230203", words[0])
	}
}

func TestCompileWGSLErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t"},
		{"syntax", "fn vert_main( -> {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CompileWGSL(tt.source); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCompileWGSLEmptySentinel(t *testing.T) {
	_, err := CompileWGSL("")
	if !errors.Is(err, ErrEmptyShader) {
		t.Fatalf("expected ErrEmptyShader, got %v", err)
	}
}

func TestCompileShader(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	module, err := CompileShader(device, "test_shader", testShader)
	if err != nil {
		t.Fatalf("CompileShader failed: %v", err)
	}
	if module == nil {
		t.Fatal("expected non-nil module")
	}
	device.DestroyShaderModule(module)
}
