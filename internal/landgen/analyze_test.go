package landgen

import (
	"testing"

	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/mapsize"
	"github.com/lawnchairsociety/landforge/internal/params"
)

func mustRows(t *testing.T, rows ...string) *landmask.Mask {
	t.Helper()
	m, err := landmask.FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	return m
}

func smallAnalyzer() *Analyzer {
	return &Analyzer{IslandMax: 2, MidMax: 3, MinLakeSize: 2}
}

func TestAnalyzeCountsComponents(t *testing.T) {
	m := mustRows(t,
		"..........",
		".###...#..",
		".#.#......",
		".###..##..",
		"..........",
	)
	a := smallAnalyzer().Analyze(m)

	if a.Land != 11 {
		t.Errorf("expected 11 land tiles, got %d", a.Land)
	}
	if a.Components != 3 {
		t.Errorf("expected 3 components, got %d", a.Components)
	}
	if a.LargestSize != 8 {
		t.Errorf("expected largest size 8, got %d", a.LargestSize)
	}
	if a.SecondSize != 2 {
		t.Errorf("expected second size 2, got %d", a.SecondSize)
	}
	// The single tile and the pair are islands; the ring is not.
	if a.Islands != 2 {
		t.Errorf("expected 2 islands, got %d", a.Islands)
	}
	if a.Total != 50 {
		t.Errorf("expected total 50, got %d", a.Total)
	}
	if got, want := a.LargestRatio, 8.0/11.0; got != want {
		t.Errorf("largest ratio = %f, want %f", got, want)
	}
}

func TestAnalyzeLakeAndPond(t *testing.T) {
	m := mustRows(t,
		"...........",
		".####.###..",
		".#..#.#.#..",
		".####.###..",
		"...........",
	)
	a := smallAnalyzer().Analyze(m)

	lakes, ponds := 0, 0
	for _, w := range a.WaterParts {
		switch w.Class {
		case Lake:
			lakes++
			if w.Size != 2 {
				t.Errorf("lake size = %d, want 2", w.Size)
			}
		case Pond:
			ponds++
		}
	}
	if lakes != 1 || a.Lakes != 1 {
		t.Errorf("expected 1 lake, got %d (Lakes=%d)", lakes, a.Lakes)
	}
	if ponds != 1 {
		t.Errorf("expected 1 pond, got %d", ponds)
	}
	if !a.IsOcean(0) {
		t.Error("corner tile should be ocean")
	}
}

func TestAnalyzeBoundaryWaterIsNeverLake(t *testing.T) {
	// Land walls off a bay that touches the border. It is still ocean.
	m := mustRows(t,
		"..#####..",
		"..#...#..",
		"..#...#..",
		"..#####..",
		".........",
	)
	a := smallAnalyzer().Analyze(m)
	for _, w := range a.WaterParts {
		if w.Boundary && w.Class != Ocean {
			t.Errorf("boundary water component %d classified %s", w.ID, w.Class)
		}
	}

	p := params.Default()
	for _, style := range Styles() {
		res := mustGenerate(t, mapsize.Duel, 17, style, p)
		for _, w := range res.Analysis.WaterParts {
			if w.Boundary && w.Class == Lake {
				t.Errorf("%s: boundary water component %d is a lake", style, w.ID)
			}
		}
	}
}

func TestAnalyzeComponentsPartitionGrid(t *testing.T) {
	res := mustGenerate(t, mapsize.Tiny, 9, Continents, params.Default())
	a := res.Analysis
	for i := 0; i < res.Mask.Len(); i++ {
		land := a.LandID[i] >= 0
		water := a.WaterID[i] >= 0
		if land == water {
			t.Fatalf("tile %d: land id %d, water id %d", i, a.LandID[i], a.WaterID[i])
		}
		if land != res.Mask.IsLand(i) {
			t.Fatalf("tile %d labeled with the wrong terrain", i)
		}
	}
	sum := 0
	for _, c := range a.LandParts {
		sum += c.Size
	}
	for _, c := range a.WaterParts {
		sum += c.Size
	}
	if sum != res.Mask.Len() {
		t.Errorf("component sizes sum to %d, want %d", sum, res.Mask.Len())
	}
}

func TestAnalyzeRegionTotal(t *testing.T) {
	m := mustRows(t,
		"......",
		".##...",
		"......",
	)
	region := make([]bool, m.Len())
	for i := 0; i < 6; i++ {
		region[i] = true
	}
	a := smallAnalyzer().WithRegion(region).Analyze(m)
	if a.Total != 6 {
		t.Errorf("total = %d, want 6", a.Total)
	}
	if a.LandRatio != 2.0/6.0 {
		t.Errorf("land ratio = %f, want %f", a.LandRatio, 2.0/6.0)
	}
}

func TestNewAnalyzerThresholds(t *testing.T) {
	g := params.Default().Global
	tests := []struct {
		size   mapsize.Size
		island int
		mid    int
	}{
		{mapsize.Duel, 20, 120},
		{mapsize.Standard, 20, 162},
		{mapsize.Huge, 31, 249},
	}
	for _, tt := range tests {
		w, h := tt.size.Dimensions()
		z := NewAnalyzer(g, w, h)
		if z.IslandMax != tt.island || z.MidMax != tt.mid {
			t.Errorf("%s: thresholds %d/%d, want %d/%d", tt.size, z.IslandMax, z.MidMax, tt.island, tt.mid)
		}
	}
}

func TestIsIsland(t *testing.T) {
	z := &Analyzer{IslandMax: 20, MidMax: 120}
	tests := []struct {
		size int
		want bool
	}{
		{1, true},
		{20, true},
		{39, true},
		{40, false},
		{121, false},
	}
	for _, tt := range tests {
		if got := z.IsIsland(tt.size); got != tt.want {
			t.Errorf("IsIsland(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestSatisfiesAndViolations(t *testing.T) {
	c := params.Constraints{
		MinLandRatio:    0.1,
		MaxLandRatio:    0.5,
		MinLargestRatio: 0.0,
		MaxLargestRatio: 1.0,
		MinComponents:   1,
		MaxComponents:   3,
		MinIslands:      1,
		MinLakes:        0,
		MaxLakes:        1,
	}
	m := mustRows(t,
		"......",
		".##...",
		"....#.",
		"......",
	)
	a := smallAnalyzer().Analyze(m)
	if !a.Satisfies(c) {
		t.Errorf("expected constraints to hold, got %v", a.Violations(c))
	}

	c.MinComponents = 3
	if a.Satisfies(c) {
		t.Error("expected a component violation")
	}
	if v := a.Violations(c); len(v) != 1 {
		t.Errorf("expected one violation, got %v", v)
	}
}

func TestDeficitOrdering(t *testing.T) {
	tests := []struct {
		a, b deficit
		want bool
	}{
		{deficit{0, 50}, deficit{1, 0}, true},
		{deficit{1, 0}, deficit{0, 50}, false},
		{deficit{2, 3}, deficit{2, 4}, true},
		{deficit{2, 4}, deficit{2, 4}, false},
	}
	for _, tt := range tests {
		if got := tt.a.less(tt.b); got != tt.want {
			t.Errorf("%v.less(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
