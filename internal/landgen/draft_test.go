package landgen

import (
	"testing"

	"github.com/lawnchairsociety/landforge/internal/hexgrid"
	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/params"
	"github.com/lawnchairsociety/landforge/internal/seedstream"
)

func TestDraftDeterministic(t *testing.T) {
	p := params.Default()
	a := Draft(84, 54, p.Global, p.Pangea.Draft, seedstream.New(3, "draft"), nil)
	b := Draft(84, 54, p.Global, p.Pangea.Draft, seedstream.New(3, "draft"), nil)
	if !a.Equal(b) {
		t.Error("same stream produced different drafts")
	}
	c := Draft(84, 54, p.Global, p.Pangea.Draft, seedstream.New(4, "draft"), nil)
	if a.Equal(c) {
		t.Error("different seeds produced identical drafts")
	}
}

func TestDraftBorderWater(t *testing.T) {
	p := params.Default()
	d := p.Pangea.Draft
	d.BaseLandPercent = 100
	m := Draft(60, 38, p.Global, d, seedstream.New(1, "draft"), nil)
	for i := 0; i < m.Len(); i++ {
		if m.OnBorder(i) && m.IsLand(i) {
			t.Fatalf("border tile %d is land", i)
		}
	}
	if m.LandCount() == 0 {
		t.Error("expected land with base_land_percent 100")
	}
}

func TestDraftRegion(t *testing.T) {
	p := params.Default()
	d := p.Continents.Draft
	d.BaseLandPercent = 100
	w, h := 60, 38
	region := make([]bool, w*h)
	for i := range region {
		if i%w < w/2 {
			region[i] = true
		}
	}
	m := Draft(w, h, p.Global, d, seedstream.New(2, "draft"), region)
	for i, in := range region {
		if !in && m.IsLand(i) {
			t.Fatalf("land outside the region at tile %d", i)
		}
	}
}

func TestDraftZeroPercentIsWater(t *testing.T) {
	p := params.Default()
	d := p.Continents.Draft
	d.BaseLandPercent = 0
	d.CoastIslandPercent = 0
	m := Draft(44, 26, p.Global, d, seedstream.New(9, "draft"), nil)
	if n := m.LandCount(); n != 0 {
		t.Errorf("expected an all-water draft, got %d land tiles", n)
	}
}

func TestSmoothMajority(t *testing.T) {
	m := mustRows(t,
		".....",
		".###.",
		".#.#.",
		".###.",
		".....",
	)
	g := hexgrid.NewGrid(m.Width, m.Height)
	out := smooth(m.Tiles(), g)
	// The hole has six land neighbors and fills in.
	if out[m.Index(2, 2)] != landmask.Land {
		t.Error("enclosed hole should fill")
	}
	if out[m.Index(0, 0)] != landmask.Water {
		t.Error("corner water should stay water")
	}
	if len(out) != m.Len() {
		t.Fatalf("smooth returned %d tiles, want %d", len(out), m.Len())
	}
	if &out[0] == &m.Tiles()[0] {
		t.Error("smooth must not write in place")
	}
}

func TestZoomDoubles(t *testing.T) {
	p := params.Default()
	cells := []landmask.Terrain{
		0, 0, 0, 0,
		0, 1, 1, 0,
		0, 1, 1, 0,
		0, 0, 0, 0,
	}
	d := p.Continents.Draft
	d.FuzzyFlipPercent = 0
	d.CoastIslandPercent = 0
	out := zoom(cells, 4, 4, 8, 8, d, seedstream.New(1, "zoom"))
	if len(out) != 64 {
		t.Fatalf("expected 64 cells, got %d", len(out))
	}
	// Child (2,2) has parent (1,1) whose 2x2 block is all land.
	if out[2*8+2] != landmask.Land {
		t.Error("child of a solid land block should be land")
	}
	for x := 0; x < 8; x++ {
		if out[x] != landmask.Water || out[7*8+x] != landmask.Water {
			t.Fatal("zoom must keep the border water")
		}
	}
}
