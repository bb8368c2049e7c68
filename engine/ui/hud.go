package ui

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
)

// HUDStats is what the heads-up display shows.
type HUDStats struct {
	FPS       float64
	Drawables int
	Lights    int
	State     string
}

const (
	hudMargin = 8
	hudWidth  = 200
	hudHeight = 72
	hudLine   = 20
)

// DrawHUD paints the stats panel in the top-left corner. FPS is rounded to a whole number so the panel
// only re-rasterizes when a shown value changes.
//
// Parameters:
//   - f: the frame to paint into
//   - s: the values to show
func DrawHUD(f *Frame, s HUDStats) {
	fps := int(math.Round(s.FPS))
	lines := []string{
		fmt.Sprintf("FPS %d", fps),
		fmt.Sprintf("drawables %d  lights %d", s.Drawables, s.Lights),
		s.State,
	}
	key := fmt.Sprintf("%d|%d|%d|%s", fps, s.Drawables, s.Lights, s.State)

	f.Panel("hud", hudMargin, hudMargin, hudWidth, hudHeight, key, func(dc *gg.Context) {
		dc.SetRGBA(0, 0, 0, 0.55)
		dc.DrawRoundedRectangle(0, 0, hudWidth, hudHeight, 6)
		if err := dc.Fill(); err != nil {
			log.Debug("hud background: %v", err)
		}

		dc.SetRGBA(1, 1, 1, 1)
		for i, line := range lines {
			dc.DrawString(line, 10, float64(hudLine*(i+1)))
		}
	})
}

// DrawPauseOverlay dims the whole screen and shows a centered pause banner.
func DrawPauseOverlay(f *Frame) {
	w, h := f.Size()
	key := fmt.Sprintf("paused|%.0fx%.0f", w, h)

	f.Panel("pause", 0, 0, w, h, key, func(dc *gg.Context) {
		dc.SetRGBA(0, 0, 0, 0.6)
		dc.DrawRectangle(0, 0, float64(w), float64(h))
		if err := dc.Fill(); err != nil {
			log.Debug("pause backdrop: %v", err)
		}

		dc.SetRGBA(1, 1, 1, 1)
		dc.DrawStringAnchored("PAUSED", float64(w)/2, float64(h)/2, 0.5, 0.5)
		dc.SetRGBA(1, 1, 1, 0.7)
		dc.DrawStringAnchored("press Esc to resume", float64(w)/2, float64(h)/2+hudLine*1.5, 0.5, 0.5)
	})
}
