package profiler

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestTickMeasuresEachInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithLogging(false), WithInterval(500*time.Millisecond))

	for range 29 {
		clock.t = clock.t.Add(10 * time.Millisecond)
		if p.Tick() {
			t.Fatal("interval completed early")
		}
	}
	if p.FPS() != 0 {
		t.Fatalf("FPS before the first interval = %v", p.FPS())
	}

	clock.t = clock.t.Add(210 * time.Millisecond)
	if !p.Tick() {
		t.Fatal("interval did not complete")
	}
	// 30 frames over 500ms
	if fps := p.FPS(); fps != 60 {
		t.Fatalf("FPS = %v", fps)
	}
	if p.Last().SysMB <= 0 {
		t.Fatal("memory stats not read")
	}

	clock.t = clock.t.Add(time.Second)
	p.Tick()
	if fps := p.FPS(); fps != 1 {
		t.Fatalf("FPS after one slow frame = %v", fps)
	}
}
