package landgen

import (
	"math"

	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/logger"
	"github.com/lawnchairsociety/landforge/internal/params"
	"github.com/lawnchairsociety/landforge/internal/seedstream"
)

// referenceTiles is the grid size (Standard, 84x54) at which carve counts
// are used unscaled.
const referenceTiles = 84 * 54

// pass carries everything a repair step looks at during one iteration.
type pass struct {
	*editor
	c     params.Constraints
	r     params.Repair
	z     *Analyzer
	scale float64 // grid size relative to referenceTiles, at least 1

	// terra merge stage only
	sides [][]bool
}

// step is one row of a strategy table: apply runs when when holds.
type step struct {
	name  string
	when  func(p *pass) bool
	apply func(p *pass) int
}

func always(*pass) bool { return true }

func largestOver(p *pass) bool {
	return p.a.LargestRatio > p.r.LargestCarveTriggerRatio
}

func islandsMissing(p *pass) bool {
	return p.a.Islands < p.c.MinIslands
}

func lakesMissing(p *pass) bool {
	return p.a.Lakes < p.c.MinLakes
}

func carveLargest(p *pass) int {
	over := math.Max(0, p.a.LargestRatio-p.r.LargestCarveTargetRatio)
	k := int(math.Ceil((float64(p.r.LargestCarveBaseCount) + over*p.r.LargestCarveScale) * p.scale))
	return p.carveStraits(k)
}

func carveChannels(p *pass) int {
	return p.channelCarve(p.r.ChannelCarveCount)
}

func carveMissingChannels(p *pass) int {
	missing := p.c.MinComponents - p.a.Components
	k := int(math.Ceil(float64(max(p.r.ChannelCarveCount, 4))*p.scale)) * missing
	return p.channelCarve(k)
}

func addIslands(p *pass) int {
	count := max(p.c.MinIslands-p.a.Islands, p.r.IslandExtraMissingFloor)
	return p.sprinkleIslands(count, p.r.IslandMinBlob, p.r.IslandMaxBlob)
}

func addLakes(p *pass) int {
	return p.carveLakes(p.c.MinLakes-p.a.Lakes, p.r.LakeBlobMin, p.r.LakeBlobMax)
}

var continentsTable = []step{
	{"largest-carve", largestOver, carveLargest},
	{"channel-carve", func(p *pass) bool { return p.a.Components < p.c.MinComponents }, carveMissingChannels},
	{"island-sprinkle", islandsMissing, addIslands},
	{"lake-carve", lakesMissing, addLakes},
}

var smallContinentsTable = []step{
	{"largest-carve", largestOver, carveLargest},
	{"channel-carve", always, carveChannels},
	{"island-sprinkle", islandsMissing, addIslands},
	{"lake-carve", lakesMissing, addLakes},
}

var islandContinentsTable = []step{
	{"erode", func(p *pass) bool { return p.a.LargestRatio > p.r.ErodeCapRatio }, func(p *pass) int {
		return p.erodeLargest(int(float64(p.a.Land) * p.r.ErodeCapRatio))
	}},
	{"island-sprinkle", islandsMissing, addIslands},
}

var pangeaTable = []step{
	{"fill-connect", func(p *pass) bool { return p.a.LargestRatio < p.c.MinLargestRatio }, func(p *pass) int {
		return p.fillInternalStraits(p.r.PangeaFillInternalCount) + p.connectToLargest(p.r.PangeaConnectCount)
	}},
	{"split-connect", func(p *pass) bool { return p.a.Components > p.c.MaxComponents }, func(p *pass) int {
		return p.connectToLargest(p.r.PangeaConnectWhenSplit)
	}},
	{"island-sprinkle", islandsMissing, func(p *pass) int {
		return p.sprinkleIslands(1, p.r.IslandMinBlob, p.r.IslandMaxBlob)
	}},
	{"lake-carve", lakesMissing, addLakes},
}

var terraSideTable = []step{
	{"largest-carve", largestOver, carveLargest},
	{"island-sprinkle", islandsMissing, addIslands},
	{"lake-carve", lakesMissing, addLakes},
}

var terraMergedTable = []step{
	{"terra-grow", func(p *pass) bool { return len(p.sides) > 0 }, growSides},
	{"island-sprinkle", islandsMissing, addIslands},
	{"lake-carve", lakesMissing, addLakes},
}

var mirrorTable = []step{
	{"largest-carve", largestOver, func(p *pass) int {
		return p.carveStraits(p.r.LargestCarveBaseCount)
	}},
	{"island-sprinkle", islandsMissing, addIslands},
}

// growSides grows every side whose share of the land trails its share of
// the area by more than five points.
func growSides(p *pass) int {
	land := make([]int, len(p.sides))
	area := make([]int, len(p.sides))
	totalLand, totalArea := 0, 0
	for k, side := range p.sides {
		for i, in := range side {
			if !in {
				continue
			}
			area[k]++
			if p.m.IsLand(i) {
				land[k]++
			}
		}
		totalLand += land[k]
		totalArea += area[k]
	}
	if totalArea == 0 {
		return 0
	}

	grown := 0
	for k, side := range p.sides {
		areaShare := float64(area[k]) / float64(totalArea)
		landShare := 0.0
		if totalLand > 0 {
			landShare = float64(land[k]) / float64(totalLand)
		}
		if landShare < areaShare-0.05 {
			grown += p.growLand(p.r.TerraGrowBudget, side)
		}
	}
	return grown
}

// loop runs the analyze/repair cycle on one mask.
type loop struct {
	z      *Analyzer
	c      params.Constraints
	r      params.Repair
	table  []step
	region []bool
	sides  [][]bool
	iters  int
	label  string
}

// run repairs m for at most l.iters iterations and returns the final
// analysis and the number of iterations that applied edits.
func (l *loop) run(m *landmask.Mask, s *seedstream.Stream) (*Analysis, int) {
	scale := math.Max(1, float64(m.Len())/referenceTiles)
	for it := 0; it < l.iters; it++ {
		a := l.z.Analyze(m)
		logger.Debug("repair iteration",
			"stage", l.label,
			"iter", it,
			"land_ratio", a.LandRatio,
			"largest_ratio", a.LargestRatio,
			"components", a.Components,
			"islands", a.Islands,
			"lakes", a.Lakes)
		if a.Satisfies(l.c) {
			return a, it
		}

		p := &pass{
			editor: &editor{m: m, a: a, s: s, region: l.region},
			c:      l.c,
			r:      l.r,
			z:      l.z,
			scale:  scale,
			sides:  l.sides,
		}
		for _, st := range l.table {
			if !st.when(p) {
				continue
			}
			if n := st.apply(p); n > 0 {
				logger.Debug("repair step", "stage", l.label, "op", st.name, "edits", n)
			}
		}
		p.adjustLandRatio(l.c.MinLandRatio, l.c.MaxLandRatio, l.r.LandRatioAdjustCapDiv)
		m.ForceBorderWater()
	}
	return l.z.Analyze(m), l.iters
}
