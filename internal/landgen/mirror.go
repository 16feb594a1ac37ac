package landgen

import (
	"github.com/lawnchairsociety/landforge/internal/hexgrid"
	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/params"
	"github.com/lawnchairsociety/landforge/internal/seedstream"
)

// generateMirror drafts the full grid, smooths its left half on its own,
// reflects the half across the vertical axis and repairs the result with
// mirrored edits, so the map stays symmetric after every iteration.
func generateMirror(width, height int, p *params.Params, s *seedstream.Stream) *Result {
	base := p.Mirror.Base
	full := Draft(width, height, p.Global, base.Draft, s.Child(), nil)

	half := (width + 1) / 2
	cells := make([]landmask.Terrain, half*height)
	for y := 0; y < height; y++ {
		for x := 0; x < half; x++ {
			cells[y*half+x] = full.At(x, y)
		}
	}
	hg := hexgrid.NewGrid(half, height)
	for i := 0; i < p.Mirror.HalfSmoothingPasses; i++ {
		cells = smooth(cells, hg)
	}

	m := landmask.New(width, height)
	tiles := m.Tiles()
	for y := 0; y < height; y++ {
		copy(tiles[y*width:y*width+half], cells[y*half:(y+1)*half])
	}
	m.ReflectLeft()
	m.ForceBorderWater()
	m.SetMirrored(true)

	l := &loop{
		z:     NewAnalyzer(p.Global, width, height),
		c:     base.Constraints,
		r:     base.Repair,
		table: mirrorTable,
		iters: p.Global.MaxRepairIters,
		label: "mirror",
	}
	_, iters := l.run(m, s.Child())
	return finish(m, l.z, base.Constraints, base.Repair, s.Child(), iters)
}
