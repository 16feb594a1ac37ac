package landgen

import (
	"testing"

	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/seedstream"
)

func newEditor(t *testing.T, m *landmask.Mask) *editor {
	t.Helper()
	return &editor{m: m, a: smallAnalyzer().Analyze(m), s: seedstream.New(1, "ops")}
}

func TestCarveStraitsCutsPinchPoint(t *testing.T) {
	// Two blobs joined by a single tile at (4,2).
	m := mustRows(t,
		".........",
		".###.###.",
		".#######.",
		".###.###.",
		".........",
	)
	e := newEditor(t, m)
	if n := e.carveStraits(1); n != 1 {
		t.Fatalf("expected one carved tile, got %d", n)
	}
	a := smallAnalyzer().Analyze(m)
	if a.Components != 2 {
		t.Errorf("expected the pinch cut to split the landmass, got %d components", a.Components)
	}
}

func TestSprinkleIslandsAddsComponents(t *testing.T) {
	m := landmask.New(30, 20)
	e := newEditor(t, m)
	if n := e.sprinkleIslands(3, 2, 2); n != 3 {
		t.Fatalf("expected 3 islands, got %d", n)
	}
	a := smallAnalyzer().Analyze(m)
	if a.Components < 1 || a.Land < 3 {
		t.Errorf("unexpected result: %d components, %d land", a.Components, a.Land)
	}
	for i := 0; i < m.Len(); i++ {
		if m.OnBorder(i) && m.IsLand(i) {
			t.Fatal("island on the border")
		}
	}
}

func TestCarveLakesIsEnclosed(t *testing.T) {
	rows := []string{"...................."}
	for y := 1; y < 13; y++ {
		rows = append(rows, ".##################.")
	}
	rows = append(rows, "....................")
	m := mustRows(t, rows...)
	e := newEditor(t, m)
	if n := e.carveLakes(1, 4, 4); n != 1 {
		t.Fatalf("expected one lake, got %d", n)
	}
	a := smallAnalyzer().Analyze(m)
	if a.Lakes != 1 {
		t.Errorf("expected 1 lake, got %d", a.Lakes)
	}
}

func TestEditorRespectsLocksAndMirror(t *testing.T) {
	m := landmask.New(10, 6)
	m.LockWhere(func(i int) bool {
		x, _ := m.Coord(i)
		return x == 2
	})
	m.SetMirrored(true)
	e := newEditor(t, m)

	if e.open(m.Index(2, 2)) {
		t.Error("locked tile should not be open")
	}
	if e.open(m.Index(7, 2)) {
		t.Error("right half of a mirrored mask should not be open")
	}
	if e.open(m.Index(0, 2)) {
		t.Error("border tile should not be open")
	}
	if !e.open(m.Index(3, 2)) {
		t.Error("interior left tile should be open")
	}

	e.growBlob(m.Index(3, 2), landmask.Land, 1)
	if !m.IsLand(m.Index(6, 2)) {
		t.Error("mirrored edit should reach the twin tile")
	}
}

func TestAdjustLandRatioCapped(t *testing.T) {
	m := mustRows(t,
		"..........",
		".########.",
		".########.",
		".########.",
		".########.",
		"..........",
	)
	e := newEditor(t, m)
	before := m.LandCount()
	n := e.adjustLandRatio(0.0, 0.1, 10)
	if n != 6 {
		t.Errorf("expected a capped shrink of 6 tiles, got %d", n)
	}
	if m.LandCount() != before-n {
		t.Errorf("land count %d, want %d", m.LandCount(), before-n)
	}
}
