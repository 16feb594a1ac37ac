package landgen

import (
	"fmt"

	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/params"
)

// WaterClass classifies a water component.
type WaterClass int

const (
	// Ocean is water connected to the grid border.
	Ocean WaterClass = iota
	// Lake is enclosed water of at least the minimum lake size.
	Lake
	// Pond is enclosed water below the minimum lake size. It counts as
	// neither ocean nor lake.
	Pond
)

func (c WaterClass) String() string {
	switch c {
	case Ocean:
		return "ocean"
	case Lake:
		return "lake"
	default:
		return "pond"
	}
}

// Component is a maximal 6-connected set of same-terrain tiles.
type Component struct {
	ID       int
	Terrain  landmask.Terrain
	Size     int
	Boundary bool
	Class    WaterClass // water components only
}

// Analysis holds every statistic the constraints and operators look at.
// It is recomputed from scratch after each repair iteration.
type Analysis struct {
	Total        int // tiles counted for the land ratio
	Land         int
	LandRatio    float64
	LargestRatio float64
	SecondRatio  float64
	Components   int
	Islands      int
	Lakes        int

	Largest     int // id of the largest land component, -1 without land
	LargestSize int
	SecondSize  int

	LandParts  []Component
	WaterParts []Component
	LandID     []int // land component per tile, -1 on water
	WaterID    []int // water component per tile, -1 on land
}

// IsOcean reports whether tile i is ocean water.
func (a *Analysis) IsOcean(i int) bool {
	id := a.WaterID[i]
	return id >= 0 && a.WaterParts[id].Class == Ocean
}

// Analyzer labels components and classifies water.
type Analyzer struct {
	IslandMax   int
	MidMax      int
	MinLakeSize int
	// Region, when set, limits the tile total used for the land ratio.
	Region []bool
}

// NewAnalyzer derives the dynamic thresholds for a grid of width x height.
func NewAnalyzer(g params.Global, width, height int) *Analyzer {
	n := width * height
	return &Analyzer{
		IslandMax:   g.IslandMax(n),
		MidMax:      g.MidMax(n),
		MinLakeSize: g.MinLakeSize,
	}
}

// WithRegion returns a copy of the analyzer restricted to region.
func (z *Analyzer) WithRegion(region []bool) *Analyzer {
	c := *z
	c.Region = region
	return &c
}

// IsIsland reports whether a land component of the given size is an island.
func (z *Analyzer) IsIsland(size int) bool {
	return size <= z.IslandMax || (size <= z.MidMax && size < z.IslandMax*2)
}

// Analyze labels every tile of m.
func (z *Analyzer) Analyze(m *landmask.Mask) *Analysis {
	n := m.Len()
	a := &Analysis{
		Largest: -1,
		LandID:  make([]int, n),
		WaterID: make([]int, n),
	}
	for i := range a.LandID {
		a.LandID[i] = -1
		a.WaterID[i] = -1
	}

	queue := make([]int, 0, 64)
	var nbuf []int
	for start := 0; start < n; start++ {
		t := m.Get(start)
		ids := a.WaterID
		if t == landmask.Land {
			ids = a.LandID
		}
		if ids[start] >= 0 {
			continue
		}

		var id int
		if t == landmask.Land {
			id = len(a.LandParts)
		} else {
			id = len(a.WaterParts)
		}
		comp := Component{ID: id, Terrain: t}

		ids[start] = id
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			cur := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			comp.Size++
			if m.OnBorder(cur) {
				comp.Boundary = true
			}
			nbuf = m.Neighbors(cur, nbuf)
			for _, nb := range nbuf {
				if m.Get(nb) == t && ids[nb] < 0 {
					ids[nb] = id
					queue = append(queue, nb)
				}
			}
		}

		if t == landmask.Land {
			a.LandParts = append(a.LandParts, comp)
		} else {
			switch {
			case comp.Boundary:
				comp.Class = Ocean
			case comp.Size >= z.MinLakeSize:
				comp.Class = Lake
			default:
				comp.Class = Pond
			}
			a.WaterParts = append(a.WaterParts, comp)
		}
	}

	for _, c := range a.LandParts {
		a.Land += c.Size
		if c.Size > a.LargestSize {
			a.SecondSize = a.LargestSize
			a.LargestSize = c.Size
			a.Largest = c.ID
		} else if c.Size > a.SecondSize {
			a.SecondSize = c.Size
		}
		if z.IsIsland(c.Size) {
			a.Islands++
		}
	}
	for _, c := range a.WaterParts {
		if c.Class == Lake {
			a.Lakes++
		}
	}
	a.Components = len(a.LandParts)

	a.Total = n
	if z.Region != nil {
		a.Total = 0
		for _, in := range z.Region {
			if in {
				a.Total++
			}
		}
	}
	if a.Total > 0 {
		a.LandRatio = float64(a.Land) / float64(a.Total)
	}
	if a.Land > 0 {
		a.LargestRatio = float64(a.LargestSize) / float64(a.Land)
		a.SecondRatio = float64(a.SecondSize) / float64(a.Land)
	}
	return a
}

// deficit measures how far an analysis is from satisfying a constraint set.
// Count violations dominate tile-level violations.
type deficit struct {
	counts int
	tiles  float64
}

func (d deficit) zero() bool {
	return d.counts == 0 && d.tiles == 0
}

func (d deficit) less(o deficit) bool {
	if d.counts != o.counts {
		return d.counts < o.counts
	}
	return d.tiles < o.tiles-1e-9
}

func measure(a *Analysis, c params.Constraints) deficit {
	var d deficit
	d.counts += outside(a.Components, c.MinComponents, c.MaxComponents)
	d.counts += below(a.Islands, c.MinIslands)
	d.counts += outside(a.Lakes, c.MinLakes, c.MaxLakes)

	total := float64(a.Total)
	land := float64(a.Land)
	d.tiles += outsideF(land, c.MinLandRatio*total, c.MaxLandRatio*total)
	if a.Land == 0 {
		if c.MinLargestRatio > 0 {
			d.tiles++
		}
	} else {
		d.tiles += outsideF(float64(a.LargestSize), c.MinLargestRatio*land, c.MaxLargestRatio*land)
	}
	return d
}

// Satisfies reports whether the analysis meets every bound of c.
func (a *Analysis) Satisfies(c params.Constraints) bool {
	return measure(a, c).zero()
}

// Violations lists the bounds of c that the analysis misses.
func (a *Analysis) Violations(c params.Constraints) []string {
	var out []string
	total := float64(a.Total)
	land := float64(a.Land)
	if outsideF(land, c.MinLandRatio*total, c.MaxLandRatio*total) > 0 {
		out = append(out, fmt.Sprintf("land ratio %.3f not in [%.2f, %.2f]", a.LandRatio, c.MinLandRatio, c.MaxLandRatio))
	}
	if (a.Land == 0 && c.MinLargestRatio > 0) ||
		(a.Land > 0 && outsideF(float64(a.LargestSize), c.MinLargestRatio*land, c.MaxLargestRatio*land) > 0) {
		out = append(out, fmt.Sprintf("largest ratio %.3f not in [%.2f, %.2f]", a.LargestRatio, c.MinLargestRatio, c.MaxLargestRatio))
	}
	if outside(a.Components, c.MinComponents, c.MaxComponents) > 0 {
		out = append(out, fmt.Sprintf("components %d not in [%d, %d]", a.Components, c.MinComponents, c.MaxComponents))
	}
	if a.Islands < c.MinIslands {
		out = append(out, fmt.Sprintf("islands %d below %d", a.Islands, c.MinIslands))
	}
	if outside(a.Lakes, c.MinLakes, c.MaxLakes) > 0 {
		out = append(out, fmt.Sprintf("lakes %d not in [%d, %d]", a.Lakes, c.MinLakes, c.MaxLakes))
	}
	return out
}

func below(v, lo int) int {
	if v < lo {
		return lo - v
	}
	return 0
}

func outside(v, lo, hi int) int {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}

func outsideF(v, lo, hi float64) float64 {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}
