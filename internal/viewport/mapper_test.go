package viewport

import (
	"math"
	"testing"

	"bbox-annotator/pkg/geometry"
)

func newTestMapper(iw, ih, vw, vh float64) *Mapper {
	m := NewMapper()
	m.SetImageSize(iw, ih)
	m.SetViewportSize(vw, vh)
	return m
}

func TestMapper_RoundTripAcrossZooms(t *testing.T) {
	m := newTestMapper(1920, 1080, 800, 600)

	points := []geometry.Point2D{
		{X: 0, Y: 0},
		{X: 1919, Y: 1079},
		{X: 960, Y: 540},
		{X: 13.5, Y: 877.25},
	}
	for _, zoom := range []float64{0.1, 0.5, 1, 2.5, 10} {
		m.Reset()
		m.SetZoom(zoom)
		for _, p := range points {
			got := m.ToImage(m.ToDisplay(p))
			if math.Abs(got.X-p.X) > 1 || math.Abs(got.Y-p.Y) > 1 {
				t.Errorf("zoom %.1f: round trip of %+v gave %+v", zoom, p, got)
			}
		}
	}
}

func TestMapper_RoundTripSmallViewports(t *testing.T) {
	for _, vp := range []geometry.Size{{Width: 1, Height: 1}, {Width: 3, Height: 200}, {Width: 640, Height: 480}} {
		m := newTestMapper(100, 80, vp.Width, vp.Height)
		p := geometry.Point2D{X: 42, Y: 17}
		got := m.ToImage(m.ToDisplay(p))
		if math.Abs(got.X-p.X) > 1 || math.Abs(got.Y-p.Y) > 1 {
			t.Errorf("viewport %+v: round trip of %+v gave %+v", vp, p, got)
		}
	}
}

func TestMapper_AspectFitIsUniform(t *testing.T) {
	// Wide image in a square viewport: scale must come from the wide axis.
	m := newTestMapper(200, 100, 400, 400)

	want := 2.0 // min(400/200, 400/100)
	if s := m.Scale(); math.Abs(s-want) > 1e-9 {
		t.Fatalf("Scale() = %f, want %f", s, want)
	}

	// Letterbox margins are centered on the short axis.
	tl := m.ToDisplay(geometry.Point2D{X: 0, Y: 0})
	br := m.ToDisplay(geometry.Point2D{X: 200, Y: 100})
	if math.Abs(tl.X-0) > 1e-9 || math.Abs(br.X-400) > 1e-9 {
		t.Errorf("image should span viewport horizontally, got %.2f..%.2f", tl.X, br.X)
	}
	if math.Abs(tl.Y-100) > 1e-9 || math.Abs(br.Y-300) > 1e-9 {
		t.Errorf("image should be vertically centered at 100..300, got %.2f..%.2f", tl.Y, br.Y)
	}
}

func TestMapper_ZoomAtKeepsFocalPointFixed(t *testing.T) {
	m := newTestMapper(1000, 1000, 500, 500)

	display := geometry.Point2D{X: 125, Y: 300}
	before := m.ToImage(display)
	m.ZoomAt(2.0, display)
	after := m.ToImage(display)

	if math.Abs(before.X-after.X) > 1 || math.Abs(before.Y-after.Y) > 1 {
		t.Errorf("focal image point moved during zoom: %+v -> %+v", before, after)
	}
}

func TestMapper_ZoomClamped(t *testing.T) {
	m := newTestMapper(100, 100, 100, 100)

	m.SetZoom(0.0001)
	if m.Zoom() != MinZoom {
		t.Errorf("Zoom() = %f, want MinZoom %f", m.Zoom(), MinZoom)
	}
	m.SetZoom(1000)
	if m.Zoom() != MaxZoom {
		t.Errorf("Zoom() = %f, want MaxZoom %f", m.Zoom(), MaxZoom)
	}
}

func TestMapper_PanClampedToImageEdges(t *testing.T) {
	m := newTestMapper(100, 100, 100, 100)

	// Image fits exactly; panning must not move it.
	m.Pan(50, -30)
	p := m.ToDisplay(geometry.Point2D{X: 0, Y: 0})
	if p.X != 0 || p.Y != 0 {
		t.Errorf("pan moved a fitted image: origin at %+v", p)
	}

	// Zoomed in, pan works but stops at the edges.
	m.SetZoom(4)
	m.Pan(1e6, 1e6)
	tl := m.ToDisplay(geometry.Point2D{X: 0, Y: 0})
	if tl.X > 1e-9 || tl.Y > 1e-9 {
		t.Errorf("panning past the edge left a gap: origin at %+v", tl)
	}
}

func TestMapper_ClampToImage(t *testing.T) {
	m := newTestMapper(640, 480, 800, 600)

	cases := []struct {
		in, want geometry.Point2D
	}{
		{geometry.Point2D{X: -5, Y: -5}, geometry.Point2D{X: 0, Y: 0}},
		{geometry.Point2D{X: 700, Y: 500}, geometry.Point2D{X: 639, Y: 479}},
		{geometry.Point2D{X: 100, Y: 100}, geometry.Point2D{X: 100, Y: 100}},
	}
	for _, c := range cases {
		if got := m.ClampToImage(c.in); got != c.want {
			t.Errorf("ClampToImage(%+v) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestMapper_VisibleRegionAtZoom(t *testing.T) {
	m := newTestMapper(1000, 1000, 500, 500)
	m.SetZoom(2)

	vis := m.VisibleRegion()
	if math.Abs(vis.Width()-500) > 1 || math.Abs(vis.Height()-500) > 1 {
		t.Errorf("at 2x zoom half the image should be visible, got %+v", vis)
	}
}

func TestMapper_SetImageSizeResetsView(t *testing.T) {
	m := newTestMapper(1000, 1000, 500, 500)
	m.SetZoom(4)
	m.Pan(100, 100)

	m.SetImageSize(640, 480)
	if m.Zoom() != 1.0 {
		t.Errorf("zoom not reset on image change: %f", m.Zoom())
	}
	origin := m.ToDisplay(geometry.Point2D{X: 320, Y: 240})
	if math.Abs(origin.X-250) > 1e-9 || math.Abs(origin.Y-250) > 1e-9 {
		t.Errorf("image center should map to viewport center, got %+v", origin)
	}
}
