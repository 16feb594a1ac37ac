package landgen

import (
	"math"

	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/params"
)

// layout is the sizing plan of a canonical map.
type layout struct {
	continent int // land tiles of the main landmass
	lakes     int
	islands   int
	pairs     int // satellite landmasses per side
	satellite int // tiles per satellite
}

// planLayout sizes a canonical map for c on a width x height grid. Land sits
// at the middle of the land band and the main landmass at the middle of the
// largest-ratio band. Islands are single tiles (the axis islet of an
// even-width map is two tiles). Satellites come in mirrored pairs, none
// bigger than the main landmass.
func planLayout(width, height int, c params.Constraints) layout {
	n := width * height
	total := int(math.Round((c.MinLandRatio + c.MaxLandRatio) / 2 * float64(n)))
	share := (c.MinLargestRatio + c.MaxLargestRatio) / 2

	l := layout{lakes: c.MinLakes, islands: c.MinIslands}
	islandTiles := l.islands
	if l.islands%2 == 1 && width%2 == 0 {
		islandTiles++
	}

	l.continent = int(math.Ceil(share * float64(total)))
	rest := total - l.continent - islandTiles
	switch {
	case rest <= 0:
		l.continent = max(total-islandTiles, 1)
		rest = 0
	case float64(l.continent+rest)/float64(total) <= c.MaxLargestRatio:
		l.continent += rest
		rest = 0
	}

	if rest > 0 {
		maxPairs := (c.MaxComponents - 1 - l.islands) / 2
		if maxPairs < 1 {
			l.continent += rest
		} else {
			l.pairs = min(ceilDiv(rest, 2*l.continent), maxPairs)
			l.satellite = ceilDiv(rest, 2*l.pairs)
			if l.satellite > l.continent {
				land := l.continent + rest
				l.continent = ceilDiv(land, 2*l.pairs+1)
				l.satellite = ceilDiv(land-l.continent, 2*l.pairs)
				l.continent = max(l.continent, l.satellite)
			}
		}
	}

	l.islands = max(l.islands, c.MinComponents-1-2*l.pairs)
	return l
}

// canvas writes tiles symmetrically about the vertical axis.
type canvas struct {
	m *landmask.Mask
}

func (cv canvas) set(x, y int, t landmask.Terrain) {
	w := cv.m.Width
	cv.m.Tiles()[cv.m.Index(x, y)] = t
	cv.m.Tiles()[cv.m.Index(w-1-x, y)] = t
}

// span sets the centered run of length n on row y. n must share the parity
// of the grid width.
func (cv canvas) span(y, n int, t landmask.Terrain) {
	x0 := (cv.m.Width - n) / 2
	for x := x0; x < x0+n; x++ {
		cv.m.Tiles()[cv.m.Index(x, y)] = t
	}
}

// canonicalMask builds a compliant-by-construction map for c. It is the last
// resort of hard enforcement and is symmetric about the vertical axis, so it
// also satisfies mirrored maps.
//
// Rows 1 and H-2 hold single-tile islands. Rows 3..H-4 hold the main
// landmass centered between two strips of stacked satellites; lakes are
// strips on the axis of the main landmass. Every gap is one tile of water
// that reaches the border.
func canonicalMask(width, height int, c params.Constraints, minLakeSize int) *landmask.Mask {
	m := landmask.New(width, height)
	cv := canvas{m: m}
	l := planLayout(width, height, c)

	placeIslands(cv, l.islands)

	top, bottom := 3, height-4
	rows := bottom - top + 1
	if rows <= 0 {
		return m
	}

	inner := 1
	if l.pairs > 0 {
		blockRows := max((rows-(l.pairs-1))/l.pairs, 1)
		stripW := ceilDiv(l.satellite, blockRows)
		for j := 0; j < l.pairs; j++ {
			y0 := top + j*(blockRows+1)
			left := l.satellite
			for y := y0; left > 0 && y < y0+blockRows; y++ {
				for x := 1; left > 0 && x <= stripW; x++ {
					cv.set(x, y, landmask.Land)
					left--
				}
			}
		}
		inner = stripW + 2
	}

	lakeW := 2
	if width%2 == 1 {
		lakeW = 3
	}
	lakeH := ceilDiv(max(minLakeSize, 1), lakeW)
	lakeTiles := l.lakes * lakeW * lakeH
	needRows := 1
	if l.lakes > 0 {
		needRows = l.lakes*(lakeH+1) + 1
	}

	footprint := l.continent + lakeTiles
	cw := width - 2*inner
	for cw-2 >= lakeW+2 && footprint/cw < needRows {
		cw -= 2
	}
	if cw <= 0 {
		return m
	}
	full := footprint / cw
	rem := footprint % cw
	if rem > 0 && rem%2 != width%2 {
		rem++
	}
	height0 := full
	if rem > 0 {
		height0++
	}
	y0 := top + max((rows-height0)/2, 0)

	for k := 0; k < full && y0+k <= bottom; k++ {
		cv.span(y0+k, cw, landmask.Land)
	}
	if rem > 0 && y0+full <= bottom {
		cv.span(y0+full, rem, landmask.Land)
	}
	if full >= needRows && cw >= lakeW+2 {
		for j := 0; j < l.lakes; j++ {
			ly := y0 + 1 + j*(lakeH+1)
			for k := 0; k < lakeH; k++ {
				cv.span(ly+k, lakeW, landmask.Water)
			}
		}
	}
	return m
}

// placeIslands puts n single-tile islands on rows 1 and H-2: mirrored pairs
// on odd columns, plus one islet on the axis when n is odd.
func placeIslands(cv canvas, n int) {
	w, h := cv.m.Width, cv.m.Height
	axisLeft := (w - 1) / 2
	axisW := 1
	if w%2 == 0 {
		axisLeft = w/2 - 1
		axisW = 2
	}
	for _, y := range []int{1, h - 2} {
		if n <= 0 || y <= 0 || y >= h-1 {
			break
		}
		for x := 1; n >= 2 && x <= axisLeft-2; x += 2 {
			cv.set(x, y, landmask.Land)
			n -= 2
		}
		if n == 1 {
			cv.span(y, axisW, landmask.Land)
			n = 0
		}
	}
}
