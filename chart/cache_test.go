package chart

import (
	"image"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func sameBacking(a, b []Primitive) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}

func TestCache(t *testing.T) {
	log, _ := test.NewNullLogger()
	var c Cache
	c.Renderer.Log = log
	series := FromSamples([]DataPoint{
		{Day: date(2025, time.January, 1), Value: 80},
		{Day: date(2025, time.January, 8), Value: 79},
	})
	size := image.Pt(400, 300)
	area := AreaFor(size, DefaultMargin)

	if c.valid {
		t.Fatalf("expected a new cache to be cold")
	}
	first := c.GetOrCompute(series, size, area, fg)
	if !c.valid {
		t.Fatalf("expected the cache to be warm after the first call")
	}
	second := c.GetOrCompute(series, size, area, fg)
	if !sameBacking(first, second) {
		t.Errorf("expected the stored primitives to be reused")
	}

	// A changed series is not noticed until the host invalidates.
	refreshed := FromSamples([]DataPoint{{Day: date(2025, time.January, 1), Value: 80}})
	stale := c.GetOrCompute(refreshed, size, area, fg)
	if !sameBacking(first, stale) {
		t.Errorf("expected stale primitives before invalidation")
	}
	c.Invalidate()
	fresh := c.GetOrCompute(refreshed, size, area, fg)
	if sameBacking(first, fresh) {
		t.Errorf("expected new primitives after invalidation")
	}
	_, _, _, lines := split(fresh)
	if len(lines) != 1 || len(lines[0].Points) != 1 {
		t.Errorf("expected the refreshed single-point series to be drawn")
	}

	bigger := image.Pt(800, 600)
	resized := c.GetOrCompute(refreshed, bigger, AreaFor(bigger, DefaultMargin), fg)
	if sameBacking(fresh, resized) {
		t.Errorf("expected new primitives after a resize")
	}
}
