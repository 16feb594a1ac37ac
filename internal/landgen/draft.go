package landgen

import (
	"math"

	"github.com/lawnchairsociety/landforge/internal/hexgrid"
	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/params"
	"github.com/lawnchairsociety/landforge/internal/seedstream"
)

// Draft builds the zeroth mask: random coarse cells, repeated 2x zoom with
// majority votes and coastline noise, then hex-majority smoothing. Tiles
// outside region (when given) end up as water.
func Draft(width, height int, g params.Global, d params.Draft, s *seedstream.Stream, region []bool) *landmask.Mask {
	w := max(ceilDiv(width, g.BaseFactor), 2)
	h := max(ceilDiv(height, g.BaseFactor), 2)
	cells := make([]landmask.Terrain, w*h)

	// The center is always drawn so the call sequence does not depend on
	// center_bias.
	cx := float64(w-1) * (0.35 + 0.3*s.Float64())
	cy := float64(h-1) * (0.35 + 0.3*s.Float64())

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				continue
			}
			p := float64(d.BaseLandPercent)
			if d.CenterBias > 0 {
				dx := (float64(x) - cx) / (float64(w) * 0.45)
				dy := (float64(y) - cy) / (float64(h) * 0.45)
				p += math.Max(0, 1-(dx*dx+dy*dy)) * 40 * d.CenterBias
			}
			if s.Percent(p) {
				cells[y*w+x] = landmask.Land
			}
		}
	}

	for w < width || h < height {
		nw := min(w*2, width)
		nh := min(h*2, height)
		cells = zoom(cells, w, h, nw, nh, d, s)
		w, h = nw, nh
	}

	grid := hexgrid.NewGrid(width, height)
	for pass := 0; pass < d.SmoothingPasses; pass++ {
		cells = smooth(cells, grid)
		borderWater(cells, width, height)
	}

	if region != nil {
		for i, in := range region {
			if !in {
				cells[i] = landmask.Water
			}
		}
	}

	m := landmask.FromTiles(width, height, cells)
	m.ForceBorderWater()
	return m
}

// zoom doubles the resolution of a w x h buffer. Each child takes the
// majority of the 2x2 parent block anchored at its parent (parent, east,
// south, diagonal); a 2-2 tie keeps the parent. Children in mixed blocks may
// flip, and water children there may turn into coastal islets.
func zoom(cells []landmask.Terrain, w, h, nw, nh int, d params.Draft, s *seedstream.Stream) []landmask.Terrain {
	next := make([]landmask.Terrain, nw*nh)
	for ny := 0; ny < nh; ny++ {
		for nx := 0; nx < nw; nx++ {
			px := min(nx/2, w-1)
			py := min(ny/2, h-1)
			pe := min(px+1, w-1)
			ps := min(py+1, h-1)

			parent := cells[py*w+px]
			votes := int(parent) + int(cells[py*w+pe]) + int(cells[ps*w+px]) + int(cells[ps*w+pe])

			value := parent
			switch {
			case votes > 2:
				value = landmask.Land
			case votes < 2:
				value = landmask.Water
			}

			if votes > 0 && votes < 4 {
				if s.Percent(float64(d.FuzzyFlipPercent)) {
					value = 1 - value
				}
				if value == landmask.Water && s.Percent(float64(d.CoastIslandPercent)) {
					value = landmask.Land
				}
			}
			next[ny*nw+nx] = value
		}
	}
	borderWater(next, nw, nh)
	return next
}

// smooth runs one hex-majority pass: four or more land neighbors make land,
// four or more water neighbors make water, anything else is left alone.
func smooth(cells []landmask.Terrain, grid hexgrid.Grid) []landmask.Terrain {
	next := append([]landmask.Terrain(nil), cells...)
	var nbuf []int
	for i := range cells {
		land, water := 0, 0
		nbuf = grid.Neighbors(i, nbuf)
		for _, nb := range nbuf {
			if cells[nb] == landmask.Land {
				land++
			} else {
				water++
			}
		}
		if land >= 4 {
			next[i] = landmask.Land
		} else if water >= 4 {
			next[i] = landmask.Water
		}
	}
	return next
}

func borderWater(cells []landmask.Terrain, w, h int) {
	for x := 0; x < w; x++ {
		cells[x] = landmask.Water
		cells[(h-1)*w+x] = landmask.Water
	}
	for y := 0; y < h; y++ {
		cells[y*w] = landmask.Water
		cells[y*w+w-1] = landmask.Water
	}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
