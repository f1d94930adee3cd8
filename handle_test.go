package rendergraph

import "testing"

func TestResourceHandleEquality(t *testing.T) {
	if MeshHandle("a") == TextureHandle("a") {
		t.Error("mesh and texture handles with the same id are equal")
	}
	if MeshHandle("a") != (ResourceHandle{ID: "a", Kind: KindMesh}) {
		t.Error("MeshHandle does not build a mesh handle")
	}

	m := map[ResourceHandle]int{MeshHandle("a"): 1, TextureHandle("a"): 2, MaterialHandle("a"): 3}
	if len(m) != 3 {
		t.Errorf("map holds %d handles, want 3", len(m))
	}
}

func TestResourceHandleString(t *testing.T) {
	tests := []struct {
		h    ResourceHandle
		want string
	}{
		{MeshHandle("cube.obj"), "Mesh(cube.obj)"},
		{TextureHandle("wood.png"), "Texture(wood.png)"},
		{MaterialHandle("brick"), "Material(brick)"},
		{ResourceHandle{ID: "x", Kind: 7}, "Unknown(7)(x)"},
	}
	for _, tt := range tests {
		if got := tt.h.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCommandNames(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{LoadShader{}, "LoadShader"},
		{LoadTexture{}, "LoadTexture"},
		{BindTexture{}, "BindTexture"},
		{UseMaterial{}, "UseMaterial"},
		{DrawMesh{}, "DrawMesh"},
		{DrawMeshInstanced{}, "DrawMeshInstanced"},
	}
	for _, tt := range tests {
		if got := tt.cmd.command(); got != tt.want {
			t.Errorf("%T.command() = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}
