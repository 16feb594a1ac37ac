package landgen

import (
	"math"

	"github.com/lawnchairsociety/landforge/internal/hexgrid"
	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/logger"
	"github.com/lawnchairsociety/landforge/internal/params"
	"github.com/lawnchairsociety/landforge/internal/seedstream"
)

// Enforcement tuning.
const (
	enforceTrials  = 600
	islandAttempts = 3
	lakeAttempts   = 3
	batchDivisor   = 4
)

// EnforceReport describes what hard enforcement did to a mask.
type EnforceReport struct {
	Shaped   int  // tiles changed by the shaping pass
	Edits    int  // accepted corrective edits
	Trials   int  // analyses spent on candidate edits
	Fallback bool // the canonical layout replaced the mask
}

// Changed reports whether enforcement touched the mask.
func (r EnforceReport) Changed() bool {
	return r.Shaped > 0 || r.Edits > 0 || r.Fallback
}

// enforcer drives a mask into compliance. A violating mask is first shaped
// toward the constraint band, then each candidate edit is applied to a copy
// and kept only if it strictly lowers the violation measure. If the trial
// budget runs out, the canonical layout takes over.
type enforcer struct {
	z     *Analyzer
	c     params.Constraints
	r     params.Repair
	s     *seedstream.Stream
	sides [][]bool
}

// Enforce runs hard enforcement on m in place. A mask that already meets c
// is left untouched; r sizes the islands and lakes shaping adds.
func Enforce(m *landmask.Mask, g params.Global, c params.Constraints, r params.Repair, s *seedstream.Stream) (*Analysis, EnforceReport) {
	f := &enforcer{z: NewAnalyzer(g, m.Width, m.Height), c: c, r: r, s: s}
	return f.run(m)
}

// enforceWith is Enforce with a prepared analyzer. Every region in sides
// must end up with a continent of its own as its dominant landmass.
func enforceWith(m *landmask.Mask, z *Analyzer, c params.Constraints, r params.Repair, s *seedstream.Stream, sides ...[]bool) (*Analysis, EnforceReport) {
	f := &enforcer{z: z, c: c, r: r, s: s, sides: sides}
	return f.run(m)
}

func (f *enforcer) score(a *Analysis) deficit {
	d := measure(a, f.c)
	d.counts += len(missingWorlds(f.z, a, f.sides))
	return d
}

func (f *enforcer) run(m *landmask.Mask) (*Analysis, EnforceReport) {
	var rep EnforceReport
	a := f.z.Analyze(m)
	d := f.score(a)
	if d.zero() {
		return a, rep
	}

	before := m.Clone()
	sh := &shaper{z: f.z, c: f.c, r: f.r, s: f.s, sides: f.sides}
	sh.run(m)
	rep.Shaped = m.Diff(before)
	a = f.z.Analyze(m)
	d = f.score(a)

	for !d.zero() && rep.Trials < enforceTrials {
		improved := false
		for _, edit := range f.edits(a) {
			trial := m.Clone()
			e := &editor{m: trial, a: a, s: f.s}
			if !edit(e) {
				continue
			}
			rep.Trials++
			ta := f.z.Analyze(trial)
			if td := f.score(ta); td.less(d) {
				m.CopyFrom(trial)
				a, d = ta, td
				rep.Edits++
				improved = true
				break
			}
			if rep.Trials >= enforceTrials {
				break
			}
		}
		if !improved {
			break
		}
	}

	if d.zero() {
		return a, rep
	}

	logger.Warning("hard enforcement falling back to canonical layout",
		"width", m.Width, "height", m.Height, "shaped", rep.Shaped, "trials", rep.Trials,
		"violations", a.Violations(f.c))

	// The canonical layout ignores side regions; only the constraints decide.
	canon := canonicalMask(m.Width, m.Height, f.c, f.z.MinLakeSize)
	ca := f.z.Analyze(canon)
	if cd := measure(ca, f.c); cd.less(measure(a, f.c)) || cd.zero() {
		m.CopyFrom(canon)
		a = ca
		rep.Fallback = true
		if !cd.zero() {
			logger.Error("canonical layout misses constraints", "violations", ca.Violations(f.c))
		}
	}
	return a, rep
}

type edit func(e *editor) bool

// edits lists candidate corrections for the current violations, most
// important first: missing worlds, component, island and lake counts, then
// land and largest-landmass tile totals.
func (f *enforcer) edits(a *Analysis) []edit {
	c := f.c
	var out []edit

	for _, k := range missingWorlds(f.z, a, f.sides) {
		side := f.sides[k]
		out = append(out, func(e *editor) bool { return e.seedWorld(side) > 0 })
	}
	if a.Components < c.MinComponents || a.Islands < c.MinIslands {
		for k := 0; k < islandAttempts; k++ {
			out = append(out, func(e *editor) bool { return e.addIslet() })
		}
	}
	if a.Islands < c.MinIslands && a.Components >= c.MaxComponents {
		out = append(out, func(e *editor) bool {
			return e.removeSmallest(true, f.z) && e.addIslet()
		})
	}
	if a.Components > c.MaxComponents {
		out = append(out,
			func(e *editor) bool { return e.removeSmallest(true, f.z) },
			func(e *editor) bool { return e.removeSmallest(false, f.z) },
		)
	}
	if a.Lakes > c.MaxLakes {
		out = append(out, func(e *editor) bool { return e.fillSmallestLake() })
	}
	if a.Lakes < c.MinLakes {
		for k := 0; k < lakeAttempts; k++ {
			out = append(out, func(e *editor) bool { return e.openLake(f.z.MinLakeSize) })
		}
	}

	total := float64(a.Total)
	land := float64(a.Land)
	mid := (c.MinLargestRatio + c.MaxLargestRatio) / 2
	largest := float64(a.LargestSize)

	switch {
	case land < c.MinLandRatio*total:
		need := c.MinLandRatio*total - land
		if a.LargestRatio > mid {
			out = append(out, f.batches(need, growOthers)...)
			out = append(out, f.batches(need, growLargest)...)
		} else {
			out = append(out, f.batches(need, growLargest)...)
			out = append(out, f.batches(need, growOthers)...)
		}
	case land > c.MaxLandRatio*total:
		need := land - c.MaxLandRatio*total
		if a.LargestRatio < mid {
			out = append(out, f.batches(need, shrinkOthers)...)
			out = append(out, f.batches(need, shrinkLargest)...)
		} else {
			out = append(out, f.batches(need, shrinkLargest)...)
			out = append(out, f.batches(need, shrinkOthers)...)
		}
	}

	if a.Land > 0 {
		switch {
		case largest > c.MaxLargestRatio*land:
			over := largest - c.MaxLargestRatio*land
			out = append(out, f.batches(over, shrinkLargest)...)
			out = append(out, f.batches(over/math.Max(c.MaxLargestRatio, 0.05), growOthers)...)
		case largest < c.MinLargestRatio*land:
			under := c.MinLargestRatio*land - largest
			out = append(out, f.batches(under/math.Max(1-c.MinLargestRatio, 0.05), growLargest)...)
			out = append(out, f.batches(under/math.Max(c.MinLargestRatio, 0.05), shrinkOthers)...)
		}
	}
	return out
}

type coastTarget int

const (
	growLargest coastTarget = iota
	growOthers
	shrinkLargest
	shrinkOthers
)

// batches returns coastline edits of decreasing size: need tiles, then a
// quarter of that, and so on down to a single tile.
func (f *enforcer) batches(need float64, target coastTarget) []edit {
	n := max(int(math.Ceil(need)), 1)
	var out []edit
	for {
		size := n
		out = append(out, func(e *editor) bool { return e.coastEdit(target, size) > 0 })
		if n == 1 {
			break
		}
		n = max(n/batchDivisor, 1)
	}
	return out
}

// addIslet raises one land tile in open ocean.
func (e *editor) addIslet() bool {
	var c []candidate
	for i := range e.a.WaterID {
		if e.m.IsLand(i) || !e.open(i) || !e.a.IsOcean(i) {
			continue
		}
		if land, _ := e.counts(i); land == 0 {
			c = append(c, candidate{0, e.s.Uint64(), i})
		}
	}
	if len(c) == 0 {
		return false
	}
	rank(c)
	return e.m.Set(c[0].idx, landmask.Land)
}

// removeSmallest sinks the smallest landmass other than the largest. With
// skipIslands set, islands are kept when a non-island landmass exists.
func (e *editor) removeSmallest(skipIslands bool, z *Analyzer) bool {
	best := -1
	for _, p := range e.a.LandParts {
		if p.ID == e.a.Largest {
			continue
		}
		if skipIslands && z.IsIsland(p.Size) {
			continue
		}
		if best < 0 || p.Size < e.a.LandParts[best].Size {
			best = p.ID
		}
	}
	if best < 0 {
		return false
	}
	changed := false
	for i, id := range e.a.LandID {
		if id == best && e.m.Set(i, landmask.Water) {
			changed = true
		}
	}
	return changed
}

// fillSmallestLake turns the smallest lake into land.
func (e *editor) fillSmallestLake() bool {
	best := -1
	for _, p := range e.a.WaterParts {
		if p.Class != Lake {
			continue
		}
		if best < 0 || p.Size < e.a.WaterParts[best].Size {
			best = p.ID
		}
	}
	if best < 0 {
		return false
	}
	changed := false
	for i, id := range e.a.WaterID {
		if id == best && e.m.Set(i, landmask.Land) {
			changed = true
		}
	}
	return changed
}

// openLake carves a lake of size tiles from land at least two steps from
// any water, so a ring of land always encloses it.
func (e *editor) openLake(size int) bool {
	deep := depthFromWater(e.m)
	var c []candidate
	for i, d := range deep {
		if d >= 2 && e.open(i) {
			c = append(c, candidate{0, e.s.Uint64(), i})
		}
	}
	if len(c) == 0 {
		return false
	}
	rank(c)

	center := c[0].idx
	blob := []int{center}
	seen := map[int]bool{center: true}
	for head := 0; head < len(blob) && len(blob) < size; head++ {
		for _, nb := range e.m.Ring(blob[head]) {
			if nb < 0 || seen[nb] || deep[nb] < 2 || !e.open(nb) {
				continue
			}
			seen[nb] = true
			blob = append(blob, nb)
			if len(blob) == size {
				break
			}
		}
	}
	if len(blob) < size {
		return false
	}
	for _, i := range blob {
		e.m.Set(i, landmask.Water)
	}
	return true
}

// coastEdit grows or shrinks the coast of the chosen landmasses by up to n
// tiles. Only locally safe tiles are used: a grown tile touches a single
// landmass and a single run of ocean, a removed tile has a single run of
// land and faces the ocean. Chosen tiles are never adjacent to each other.
func (e *editor) coastEdit(target coastTarget, n int) int {
	grow := target == growLargest || target == growOthers
	wantLargest := target == growLargest || target == shrinkLargest
	if e.a.Largest < 0 {
		return 0
	}

	var c []candidate
	for i := range e.a.LandID {
		if !e.open(i) {
			continue
		}
		if grow {
			if e.m.IsLand(i) || !e.a.IsOcean(i) {
				continue
			}
			owner, ok := e.singleOwner(i)
			if !ok || (owner == e.a.Largest) != wantLargest {
				continue
			}
			if e.waterArcs(i) != 1 {
				continue
			}
			land, _ := e.counts(i)
			c = append(c, candidate{land, e.s.Uint64(), i})
		} else {
			id := e.a.LandID[i]
			if id < 0 || (id == e.a.Largest) != wantLargest {
				continue
			}
			if e.landArcs(i) != 1 || !e.facesOcean(i) {
				continue
			}
			_, water := e.counts(i)
			c = append(c, candidate{water, e.s.Uint64(), i})
		}
	}
	rank(c)

	t := landmask.Water
	if grow {
		t = landmask.Land
	}
	taken := make(map[int]bool)
	done := 0
	for _, cand := range c {
		if done >= n {
			break
		}
		if taken[cand.idx] {
			continue
		}
		if !e.m.Set(cand.idx, t) {
			continue
		}
		done++
		taken[cand.idx] = true
		for _, nb := range e.m.Ring(cand.idx) {
			if nb >= 0 {
				taken[nb] = true
			}
		}
	}
	return done
}

// singleOwner reports the landmass touching water tile i, if exactly one does.
func (e *editor) singleOwner(i int) (int, bool) {
	owner := -1
	for _, nb := range e.m.Ring(i) {
		if nb < 0 {
			continue
		}
		id := e.a.LandID[nb]
		if id < 0 {
			continue
		}
		if owner >= 0 && owner != id {
			return -1, false
		}
		owner = id
	}
	return owner, owner >= 0
}

// waterArcs counts runs of water around tile i; off-grid counts as water.
func (e *editor) waterArcs(i int) int {
	var ring [6]bool
	for k, nb := range e.m.Ring(i) {
		ring[k] = nb < 0 || !e.m.IsLand(nb)
	}
	return hexgrid.Arcs(ring)
}

func (e *editor) facesOcean(i int) bool {
	for _, nb := range e.m.Ring(i) {
		if nb >= 0 && e.a.IsOcean(nb) {
			return true
		}
	}
	return false
}

// depthFromWater returns, per tile, the step count to the nearest water tile.
func depthFromWater(m *landmask.Mask) []int {
	dist := make([]int, m.Len())
	queue := make([]int, 0, m.Len())
	for i := range dist {
		if m.IsLand(i) {
			dist[i] = -1
		} else {
			queue = append(queue, i)
		}
	}
	var nbuf []int
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		nbuf = m.Neighbors(cur, nbuf)
		for _, nb := range nbuf {
			if dist[nb] < 0 {
				dist[nb] = dist[cur] + 1
				queue = append(queue, nb)
			}
		}
	}
	return dist
}
