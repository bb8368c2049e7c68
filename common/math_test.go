package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestComposeTRSAppliesScaleRotationTranslation(t *testing.T) {
	rot := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	m := ComposeTRS(mgl32.Vec3{10, 0, 0}, rot, mgl32.Vec3{2, 2, 2})

	// +X scaled to 2, rotated 90 degrees about Y lands on -Z, then translated by +10 on X.
	got := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	want := mgl32.Vec3{10, 0, -2}
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Fatalf("ComposeTRS point = %v, want %v", got, want)
	}
}

func TestComposeTRSIdentity(t *testing.T) {
	m := ComposeTRS(mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})
	if !m.ApproxEqual(mgl32.Ident4()) {
		t.Fatalf("identity transform produced %v", m)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(100)
	p := Perspective(mgl32.DegToRad(60), 16.0/9.0, near, far)

	tests := []struct {
		name  string
		z     float32
		depth float32
	}{
		{"near plane", -near, 0},
		{"far plane", -far, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := p.Mul4x1(mgl32.Vec4{0, 0, tt.z, 1})
			if d := clip.Z() / clip.W(); !mgl32.FloatEqualThreshold(d, tt.depth, 1e-4) {
				t.Fatalf("depth = %v, want %v", d, tt.depth)
			}
		})
	}
}

func TestForwardFromYawPitch(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float32
		want       mgl32.Vec3
	}{
		{"at rest", 0, 0, mgl32.Vec3{0, 0, -1}},
		{"pitched up", 0, mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}},
		{"pitched down", 0, mgl32.DegToRad(-90), mgl32.Vec3{0, -1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// components that should be zero carry float residue, so compare by distance
			if got := ForwardFromYawPitch(tt.yaw, tt.pitch); got.Sub(tt.want).Len() > 1e-5 {
				t.Fatalf("ForwardFromYawPitch(%v, %v) = %v, want %v", tt.yaw, tt.pitch, got, tt.want)
			}
		})
	}
}

func TestClampAndCoalesce(t *testing.T) {
	if got := Clamp(2.0, -1.54, 1.54); got != 1.54 {
		t.Fatalf("Clamp high = %v", got)
	}
	if got := Clamp(-5, 0, 10); got != 0 {
		t.Fatalf("Clamp low = %v", got)
	}
	if got := Coalesce("", "", "b", "c"); got != "b" {
		t.Fatalf("Coalesce = %q", got)
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]int{"b": 1, "a": 2, "c": 3})
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedKeys = %v", got)
		}
	}
}

func TestKeyCodeByName(t *testing.T) {
	tests := map[string]int{"KeyW": KeyW, "space": KeySpace, "ShiftLeft": KeyLeftShift, "Escape": KeyEsc}
	for name, want := range tests {
		if got, ok := KeyCodeByName(name); !ok || got != want {
			t.Errorf("KeyCodeByName(%q) = %d, %v", name, got, ok)
		}
	}
	if _, ok := KeyCodeByName("nope"); ok {
		t.Error("unknown key resolved")
	}
}
