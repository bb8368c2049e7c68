package ui_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-render/engine/ui"
	"github.com/gogpu/gg"
)

var screen = ui.ScreenDescriptor{Width: 1280, Height: 720, Scale: 1}

func hud(u ui.UI, s ui.HUDStats) *ui.Output {
	f := u.Begin(screen)
	ui.DrawHUD(f, s)
	return u.End(f)
}

func TestHUDRasterizesOnce(t *testing.T) {
	u := ui.NewUI()
	stats := ui.HUDStats{FPS: 59.7, Drawables: 3, Lights: 2, State: "playing"}

	first := hud(u, stats)
	if len(first.TexturesSet) != 1 || len(first.Meshes) != 1 {
		t.Fatalf("first frame: %d textures, %d meshes", len(first.TexturesSet), len(first.Meshes))
	}
	img := first.TexturesSet[0].Image
	if img.Width != 200 || img.Height != 72 || len(img.Pixels) != 200*72*4 {
		t.Fatalf("hud texture = %dx%d (%d bytes)", img.Width, img.Height, len(img.Pixels))
	}
	// the panel background is translucent, so the middle pixel has coverage
	mid := (36*200 + 100) * 4
	if img.Pixels[mid+3] == 0 {
		t.Fatal("hud background was not painted")
	}

	stats.FPS = 60.2
	second := hud(u, stats)
	if len(second.TexturesSet) != 0 {
		t.Fatal("unchanged hud was rasterized again")
	}
	if second.Meshes[0].Texture != first.Meshes[0].Texture {
		t.Fatal("hud texture id changed between frames")
	}

	stats.Drawables = 4
	third := hud(u, stats)
	if len(third.TexturesSet) != 1 || third.TexturesSet[0].ID != first.Meshes[0].Texture {
		t.Fatalf("changed hud: %+v", third.TexturesSet)
	}
}

func TestUnusedPanelsAreFreed(t *testing.T) {
	u := ui.NewUI()
	first := hud(u, ui.HUDStats{})
	id := first.Meshes[0].Texture

	f := u.Begin(screen)
	out := u.End(f)
	if len(out.TexturesFree) != 1 || out.TexturesFree[0] != id {
		t.Fatalf("TexturesFree = %v, want [%d]", out.TexturesFree, id)
	}
	if u.PanelCount() != 0 {
		t.Fatalf("PanelCount = %d", u.PanelCount())
	}

	f = u.Begin(screen)
	if out := u.End(f); !out.Empty() {
		t.Fatalf("idle frame output = %+v", out)
	}
}

func TestPanelQuadAndScale(t *testing.T) {
	u := ui.NewUI()
	f := u.Begin(ui.ScreenDescriptor{Width: 2560, Height: 1440, Scale: 2})
	f.Panel("box", 10, 20, 30, 40, "v1", func(dc *gg.Context) {
		dc.SetRGBA(1, 0, 0, 1)
		dc.DrawRectangle(0, 0, 30, 40)
		_ = dc.Fill()
	})
	out := u.End(f)

	img := out.TexturesSet[0].Image
	if img.Width != 60 || img.Height != 80 {
		t.Fatalf("scaled panel texture = %dx%d, want 60x80", img.Width, img.Height)
	}
	// bottom-right pixel is covered because paint works in logical pixels
	last := (79*60 + 59) * 4
	if img.Pixels[last] == 0 || img.Pixels[last+3] == 0 {
		t.Fatalf("bottom-right pixel = %v", img.Pixels[last:last+4])
	}

	m := out.Meshes[0]
	if len(m.Vertices) != 4 || len(m.Indices) != 6 {
		t.Fatalf("quad = %d vertices, %d indices", len(m.Vertices), len(m.Indices))
	}
	if m.Vertices[0].Position != [2]float32{10, 20} || m.Vertices[2].Position != [2]float32{40, 60} {
		t.Fatalf("quad corners = %v %v", m.Vertices[0].Position, m.Vertices[2].Position)
	}
	if m.Vertices[2].UV != [2]float32{1, 1} {
		t.Fatalf("uv = %v", m.Vertices[2].UV)
	}
}

func TestPauseOverlayCoversScreen(t *testing.T) {
	u := ui.NewUI()
	f := u.Begin(screen)
	ui.DrawHUD(f, ui.HUDStats{State: "paused"})
	ui.DrawPauseOverlay(f)
	out := u.End(f)

	if len(out.Meshes) != 2 {
		t.Fatalf("meshes = %d", len(out.Meshes))
	}
	overlay := out.Meshes[1]
	if overlay.Vertices[2].Position != [2]float32{1280, 720} {
		t.Fatalf("overlay far corner = %v", overlay.Vertices[2].Position)
	}
	if overlay.Texture == out.Meshes[0].Texture {
		t.Fatal("overlay shares the hud texture")
	}
}

func TestPanelSkipsEmptyRect(t *testing.T) {
	u := ui.NewUI()
	f := u.Begin(screen)
	f.Panel("nothing", 0, 0, 0, 10, "k", func(dc *gg.Context) {
		t.Fatal("paint called for an empty panel")
	})
	if out := u.End(f); !out.Empty() {
		t.Fatal("empty panel produced output")
	}
}

func TestPanelAfterEndPanics(t *testing.T) {
	u := ui.NewUI()
	f := u.Begin(screen)
	u.End(f)

	defer func() {
		if recover() == nil {
			t.Fatal("Panel on an ended frame did not panic")
		}
	}()
	f.Panel("late", 0, 0, 1, 1, "k", func(*gg.Context) {})
}

func TestScreenDescriptor(t *testing.T) {
	s := ui.ScreenDescriptor{Width: 1920, Height: 1080, Scale: 1.5}
	if w, h := s.Logical(); w != 1280 || h != 720 {
		t.Fatalf("Logical = %vx%v", w, h)
	}
	u := s.Uniform()
	if u.Size != [2]float32{1280, 720} || u.Scale != 1.5 {
		t.Fatalf("Uniform = %+v", u)
	}
	if len(u.Marshal()) != 16 {
		t.Fatal("screen uniform is not 16 bytes")
	}
}

func TestInvalidateReuploadsAndFreesOldTextures(t *testing.T) {
	u := ui.NewUI()

	f := u.Begin(screen)
	ui.DrawHUD(f, ui.HUDStats{FPS: 60, State: "playing"})
	first := u.End(f)
	if len(first.TexturesSet) != 1 {
		t.Fatalf("first frame uploads = %d", len(first.TexturesSet))
	}
	oldID := first.TexturesSet[0].ID

	u.Invalidate()
	if u.PanelCount() != 0 {
		t.Fatalf("panels after Invalidate = %d", u.PanelCount())
	}

	f = u.Begin(screen)
	ui.DrawHUD(f, ui.HUDStats{FPS: 60, State: "playing"})
	second := u.End(f)
	if len(second.TexturesSet) != 1 || second.TexturesSet[0].ID == oldID {
		t.Fatalf("second frame uploads = %+v", second.TexturesSet)
	}
	if len(second.TexturesFree) != 1 || second.TexturesFree[0] != oldID {
		t.Fatalf("second frame frees = %v, want [%d]", second.TexturesFree, oldID)
	}

	f = u.Begin(screen)
	ui.DrawHUD(f, ui.HUDStats{FPS: 60, State: "playing"})
	if third := u.End(f); len(third.TexturesFree) != 0 || len(third.TexturesSet) != 0 {
		t.Fatalf("third frame = %+v", third)
	}
}
