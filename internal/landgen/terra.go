package landgen

import (
	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/params"
	"github.com/lawnchairsociety/landforge/internal/seedstream"
)

// TerraLayout records how a terra map was split.
type TerraLayout struct {
	// Vertical is set when the barrier runs top to bottom, splitting the
	// map into west (old world) and east (new world).
	Vertical bool
	// BarrierStart and BarrierWidth give the barrier band in columns
	// (vertical) or rows.
	BarrierStart int
	BarrierWidth int

	OldWorld []bool
	NewWorld []bool
	Barrier  []bool

	// PreMerge is the merged mask before the merged repair loop.
	PreMerge *landmask.Mask
}

// Barrier and new-continent sizing.
const (
	minBarrierWidth = 3
	worldMinBlob    = 30
	worldMaxBlob    = 220
)

// splitTerra picks the barrier orientation and width and builds the side
// regions. The barrier width is clamped to a third of the split dimension
// but never below three tiles.
func splitTerra(width, height int, p params.Terra, s *seedstream.Stream) *TerraLayout {
	t := &TerraLayout{Vertical: s.IntN(2) == 0}
	dim := height
	if t.Vertical {
		dim = width
	}
	bw := s.Range(p.BarrierMin, p.BarrierMax)
	bw = max(min(bw, dim/3), minBarrierWidth)
	t.BarrierWidth = bw
	t.BarrierStart = dim/2 - bw/2

	n := width * height
	t.OldWorld = make([]bool, n)
	t.NewWorld = make([]bool, n)
	t.Barrier = make([]bool, n)
	for i := 0; i < n; i++ {
		x, y := i%width, i/width
		c := y
		if t.Vertical {
			c = x
		}
		switch {
		case c < t.BarrierStart:
			t.OldWorld[i] = true
		case c < t.BarrierStart+bw:
			t.Barrier[i] = true
		default:
			t.NewWorld[i] = true
		}
	}
	return t
}

// generateTerra drafts and repairs each world inside its own region, merges
// them, repairs the merged map with terra grow enabled and enforces the
// merged constraints. Enforcement also requires each world's dominant
// landmass to be a continent of its own. The barrier stays locked through
// the merged loop; only the canonical fallback may place land on it.
func generateTerra(width, height int, p *params.Params, s *seedstream.Stream) *Result {
	t := splitTerra(width, height, p.Terra, s)
	base := NewAnalyzer(p.Global, width, height)

	merged := landmask.New(width, height)
	worlds := []struct {
		label  string
		style  params.Style
		region []bool
	}{
		{"old_world", p.Terra.OldWorld, t.OldWorld},
		{"new_world", p.Terra.NewWorld, t.NewWorld},
	}
	for _, w := range worlds {
		side := Draft(width, height, p.Global, w.style.Draft, s.Child(), w.region)
		region := w.region
		side.LockWhere(func(i int) bool { return !region[i] })
		l := &loop{
			z:      base.WithRegion(region),
			c:      w.style.Constraints,
			r:      w.style.Repair,
			table:  terraSideTable,
			region: region,
			iters:  p.Global.MaxRepairIters,
			label:  w.label,
		}
		l.run(side, s.Child())

		tiles := merged.Tiles()
		for i, tile := range side.Tiles() {
			if tile == landmask.Land {
				tiles[i] = landmask.Land
			}
		}
	}
	t.PreMerge = merged.Clone()

	barrier := t.Barrier
	merged.LockWhere(func(i int) bool { return barrier[i] })
	l := &loop{
		z:     base,
		c:     p.Terra.MergedConstraints,
		r:     p.Terra.MergedRepair,
		table: terraMergedTable,
		sides: [][]bool{t.OldWorld, t.NewWorld},
		iters: p.Global.MaxRepairIters,
		label: "merged",
	}
	_, iters := l.run(merged, s.Child())

	res := finish(merged, base, p.Terra.MergedConstraints, p.Terra.MergedRepair, s.Child(), iters, t.OldWorld, t.NewWorld)
	merged.Unlock()
	res.Terra = t
	return res
}

// dominantOn returns the land component with the most tiles inside region,
// or -1 when the region holds no land. Ties go to the lower id.
func dominantOn(a *Analysis, region []bool) int {
	overlap := make([]int, len(a.LandParts))
	for i, id := range a.LandID {
		if id >= 0 && region[i] {
			overlap[id]++
		}
	}
	best := -1
	for id, n := range overlap {
		if n > 0 && (best < 0 || n > overlap[best]) {
			best = id
		}
	}
	return best
}

// missingWorlds lists the sides whose dominant landmass is missing, is an
// island, or is also the dominant landmass of another side.
func missingWorlds(z *Analyzer, a *Analysis, sides [][]bool) []int {
	if len(sides) == 0 {
		return nil
	}
	dom := make([]int, len(sides))
	for k, side := range sides {
		dom[k] = dominantOn(a, side)
	}
	var out []int
	for k, id := range dom {
		ok := id >= 0 && !z.IsIsland(a.LandParts[id].Size)
		for j, other := range dom {
			if j != k && other == id {
				ok = false
			}
		}
		if !ok {
			out = append(out, k)
		}
	}
	return out
}

// seedWorld raises a continent-sized blob inside region around a random
// open water tile.
func (e *editor) seedWorld(region []bool) int {
	in := *e
	in.region = region
	var c []int
	for i := range region {
		if !e.m.IsLand(i) && in.open(i) {
			c = append(c, i)
		}
	}
	if len(c) == 0 {
		return 0
	}
	size := min(max(e.m.Len()/20, worldMinBlob), worldMaxBlob)
	return in.growBlob(c[e.s.IntN(len(c))], landmask.Land, size)
}
