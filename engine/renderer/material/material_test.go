package material

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestGPUMaterialUniformLayout(t *testing.T) {
	u := NewGPUMaterialUniform(0.25, 1)
	if u.Size() != 16 {
		t.Fatalf("size = %d, want 16", u.Size())
	}
	buf := u.Marshal()
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])); got != 0.25 {
		t.Errorf("roughness = %v", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])); got != 1 {
		t.Errorf("metallic = %v", got)
	}
	for i := 8; i < 16; i++ {
		if buf[i] != 0 {
			t.Fatalf("padding byte %d = %d", i, buf[i])
		}
	}
}

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial(WithName("rock"), WithPipelineKey("standard"), WithDiffuseTexture("rock.png"))
	if m.Roughness() != 0.5 || m.Metallic() != 0 {
		t.Fatalf("defaults = %v/%v", m.Roughness(), m.Metallic())
	}
	if m.NormalTexture() != "" {
		t.Fatalf("normal = %q", m.NormalTexture())
	}
	if m.Uniform().Roughness != 0.5 {
		t.Fatalf("uniform roughness = %v", m.Uniform().Roughness)
	}
}

func TestLayoutDescriptorBindings(t *testing.T) {
	desc := LayoutDescriptor()
	if len(desc.Entries) != 4 {
		t.Fatalf("entries = %d", len(desc.Entries))
	}
	for i, e := range desc.Entries {
		if int(e.Binding) != i {
			t.Errorf("entry %d has binding %d", i, e.Binding)
		}
	}
	if desc.Entries[BindingParams].Buffer.MinBindingSize != 16 {
		t.Errorf("params min size = %d", desc.Entries[BindingParams].Buffer.MinBindingSize)
	}
}
