package landgen

import (
	"math"
	"slices"

	"github.com/lawnchairsociety/landforge/internal/hexgrid"
	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/params"
	"github.com/lawnchairsociety/landforge/internal/seedstream"
)

// Shaping tuning.
const (
	shapeRounds   = 8
	cutAttempts   = 3 // per orientation
	sinkLimit     = 64
	lakeFillLimit = 16
	nucleusMargin = 3
)

// Ring positions used by cut paths.
const (
	dirNE = iota
	dirE
	dirSE
	dirSW
)

// shaper pulls a repaired mask toward the constraint band with seeded edits
// that are not individually verified. Enforcement runs it once before the
// verified search, so the final mask still grows out of the seed's own draft.
type shaper struct {
	z     *Analyzer
	c     params.Constraints
	r     params.Repair
	s     *seedstream.Stream
	sides [][]bool
}

func (sh *shaper) editor(m *landmask.Mask) (*editor, *Analysis) {
	a := sh.z.Analyze(m)
	return &editor{m: m, a: a, s: sh.s}, a
}

func (sh *shaper) run(m *landmask.Mask) {
	sh.forceLand(m)
	m.ForceBorderWater()
	sh.seedWorlds(m)
	if sh.c.MinComponents > 1 {
		sh.ensureComponents(m)
	}
	sh.splitLargest(m)
	sh.joinLargest(m)
	sh.trimComponents(m)
	sh.addFeatures(m)
	sh.settle(m)
	m.ForceBorderWater()

	if a := sh.z.Analyze(m); a.Land > 0 && float64(a.LargestSize) > sh.c.MaxLargestRatio*float64(a.Land) {
		sh.splitLargest(m)
		sh.settle(m)
		m.ForceBorderWater()
	}
	if len(sh.sides) > 0 {
		sh.seedWorlds(m)
		sh.settle(m)
	}
}

// landBand returns the land tile totals allowed by c.
func landBand(a *Analysis, c params.Constraints) (lo, hi int) {
	total := float64(a.Total)
	return int(math.Ceil(c.MinLandRatio * total)), int(math.Floor(c.MaxLandRatio * total))
}

// twin returns the tile mirrored edits also write, or i itself.
func twin(m *landmask.Mask, i int) int {
	if m.Mirrored() {
		return m.Mirror(i)
	}
	return i
}

// flip sets tile i to t and returns the number of tiles that changed,
// the mirror twin included.
func flip(m *landmask.Mask, i int, t landmask.Terrain) int {
	n := 0
	if m.Get(i) != t {
		n++
	}
	if j := twin(m, i); j != i && m.Get(j) != t {
		n++
	}
	if n == 0 || !m.Set(i, t) {
		return 0
	}
	return n
}

// forceLand grows or erodes coast until the land total is inside the ratio
// band. A nearly empty mask first gets a few spaced nuclei so the new land
// gathers into several bodies.
func (sh *shaper) forceLand(m *landmask.Mask) {
	e, a := sh.editor(m)
	lo, hi := landBand(a, sh.c)
	land := a.Land
	switch {
	case land < lo:
		if land < lo/3 {
			land += sh.plantNuclei(e)
		}
		sh.accrete(e, landmask.Land, lo-land)
	case land > hi:
		sh.accrete(e, landmask.Water, land-hi)
	}
}

// plantNuclei raises single land tiles as growth centers: one inside each
// side region, then enough to keep any one body under the largest share.
func (sh *shaper) plantNuclei(e *editor) int {
	m := e.m
	want := int(math.Ceil(1/math.Max(sh.c.MaxLargestRatio, 0.01))) + sh.s.IntN(2)
	sep := max(nucleusMargin, min(m.Width, m.Height)/4)
	inner := func(i int) bool {
		x, y := m.Coord(i)
		if x < nucleusMargin || y < nucleusMargin || x >= m.Width-nucleusMargin || y >= m.Height-nucleusMargin {
			return false
		}
		return !m.IsLand(i) && e.open(i)
	}

	var picked []hexgrid.Offset
	added := 0
	for _, side := range sh.sides {
		var c []int
		for i, in := range side {
			if in && inner(i) {
				c = append(c, i)
			}
		}
		if len(c) == 0 {
			continue
		}
		i := c[sh.s.IntN(len(c))]
		x, y := m.Coord(i)
		picked = append(picked, hexgrid.Offset{X: x, Y: y})
		added += flip(m, i, landmask.Land)
	}

	for try := 0; try < 64*want && len(picked) < want; try++ {
		i := sh.s.IntN(m.Len())
		if !inner(i) {
			continue
		}
		x, y := m.Coord(i)
		here := hexgrid.Offset{X: x, Y: y}
		near := false
		for _, o := range picked {
			if hexgrid.OffsetDistance(o, here) < sep {
				near = true
				break
			}
		}
		if near {
			continue
		}
		picked = append(picked, here)
		added += flip(m, i, landmask.Land)
	}
	return added
}

// accrete flips up to need tiles to t, each one touching t already. Of two
// random frontier tiles the one with more t neighbors goes first, which
// fills pinholes instead of fraying the coast. With no frontier left a
// random open tile starts a new body.
func (sh *shaper) accrete(e *editor, t landmask.Terrain, need int) int {
	m := e.m
	inFront := make([]bool, m.Len())
	var front []int
	push := func(i int) {
		for _, nb := range m.Ring(i) {
			if nb >= 0 && !inFront[nb] && m.Get(nb) != t && e.open(nb) {
				inFront[nb] = true
				front = append(front, nb)
			}
		}
	}
	touching := func(i int) int {
		land, water := e.counts(i)
		if t == landmask.Land {
			return land
		}
		return water
	}
	for i := 0; i < m.Len(); i++ {
		if m.Get(i) == t {
			push(i)
		}
	}

	done := 0
	for done < need {
		var i int
		if len(front) == 0 {
			var c []int
			for j := 0; j < m.Len(); j++ {
				if m.Get(j) != t && e.open(j) {
					c = append(c, j)
				}
			}
			if len(c) == 0 {
				break
			}
			i = c[sh.s.IntN(len(c))]
		} else {
			k := sh.s.IntN(len(front))
			if k2 := sh.s.IntN(len(front)); touching(front[k2]) > touching(front[k]) {
				k = k2
			}
			i = front[k]
			front[k] = front[len(front)-1]
			front = front[:len(front)-1]
			inFront[i] = false
			if m.Get(i) == t {
				continue
			}
		}
		n := flip(m, i, t)
		if n == 0 {
			if len(front) == 0 {
				break
			}
			continue
		}
		done += n
		push(i)
		if j := twin(m, i); j != i {
			push(j)
		}
	}
	return done
}

// ensureComponents breaks landmasses apart at straits and coastal channels
// until the component minimum is met.
func (sh *shaper) ensureComponents(m *landmask.Mask) {
	scale := math.Max(1, float64(m.Len())/referenceTiles)
	for round := 0; round < shapeRounds; round++ {
		e, a := sh.editor(m)
		missing := sh.c.MinComponents - a.Components
		if missing <= 0 {
			return
		}
		k := int(math.Ceil(8*scale)) * missing
		e.carveStraits(k)
		e.channelCarve(max(k/2, 1))
		m.ForceBorderWater()
	}
}

// splitLargest cuts water lines through the largest landmass while it holds
// too much of the land. Each round tries several cuts on copies and keeps
// the one leaving the smallest largest share.
func (sh *shaper) splitLargest(m *landmask.Mask) {
	for round := 0; round < shapeRounds; round++ {
		a := sh.z.Analyze(m)
		if a.Land == 0 || float64(a.LargestSize) <= sh.c.MaxLargestRatio*float64(a.Land) {
			return
		}
		attempts := 2 * cutAttempts
		if m.Mirrored() {
			attempts++
		}
		var best *landmask.Mask
		bestRatio := a.LargestRatio
		for k := 0; k < attempts; k++ {
			var path []int
			if k == 2*cutAttempts {
				path = axisPath(m)
			} else {
				path = cutPath(m, a, k%2 == 0, sh.s)
			}
			trial := m.Clone()
			e := &editor{m: trial, a: a, s: sh.s}
			for _, i := range path {
				if a.LandID[i] == a.Largest && e.open(i) {
					trial.Set(i, landmask.Water)
				}
			}
			ta := sh.z.Analyze(trial)
			if ta.Land > 0 && ta.LargestRatio < bestRatio-1e-9 {
				best, bestRatio = trial, ta.LargestRatio
			}
		}
		if best == nil {
			return
		}
		m.CopyFrom(best)
	}
}

// cutPath walks a wobbling line across the bounding box of the largest
// landmass, west to east or north to south, anchored at a random quantile
// of its rows or columns. Mirrored masks get a doubled line, since only the
// left half of it is carved.
func cutPath(m *landmask.Mask, a *Analysis, horizontal bool, s *seedstream.Stream) []int {
	var xs, ys []int
	for i, id := range a.LandID {
		if id == a.Largest {
			x, y := m.Coord(i)
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	thick := m.Mirrored()
	var path []int

	if horizontal {
		maxX := slices.Max(xs)
		y0 := quantile(ys, s)
		x, y := max(slices.Min(xs)-1, 0), y0
		for steps := 0; x <= maxX+1 && steps < 4*m.Width; steps++ {
			i := m.Index(x, y)
			path = append(path, i)
			ring := m.Ring(i)
			roll := s.IntN(100)
			dir := dirE
			switch {
			case y < y0-2:
				if roll < 60 {
					dir = dirSE
				}
			case y > y0+2:
				if roll < 60 {
					dir = dirNE
				}
			case roll >= 75:
				dir = dirSE
			case roll >= 50:
				dir = dirNE
			}
			nb := ring[dir]
			if nb < 0 || (dir != dirE && m.OnBorder(nb)) {
				nb = ring[dirE]
			}
			if nb < 0 {
				break
			}
			if thick && dir != dirE && ring[dirE] >= 0 {
				path = append(path, ring[dirE])
			}
			x, y = m.Coord(nb)
		}
		return path
	}

	maxY := slices.Max(ys)
	x0 := quantile(xs, s)
	x, y := x0, max(slices.Min(ys)-1, 0)
	for y <= maxY+1 {
		i := m.Index(x, y)
		path = append(path, i)
		ring := m.Ring(i)
		roll := s.IntN(100)
		dir, other := dirSE, dirSW
		switch {
		case x < x0-2:
			if roll >= 70 {
				dir, other = dirSW, dirSE
			}
		case x > x0+2:
			if roll < 70 {
				dir, other = dirSW, dirSE
			}
		case roll >= 50:
			dir, other = dirSW, dirSE
		}
		nb := ring[dir]
		if nb < 0 {
			break
		}
		if thick && ring[other] >= 0 {
			path = append(path, ring[other])
		}
		x, y = m.Coord(nb)
	}
	return path
}

// axisPath is the column next to the mirror axis. Carved on a mirrored mask
// it separates the two halves.
func axisPath(m *landmask.Mask) []int {
	x := (m.Width - 1) / 2
	path := make([]int, 0, m.Height)
	for y := 0; y < m.Height; y++ {
		path = append(path, m.Index(x, y))
	}
	return path
}

// quantile picks a value between the 30th and 70th percentile of vals.
func quantile(vals []int, s *seedstream.Stream) int {
	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	q := 0.3 + 0.4*s.Float64()
	return sorted[min(int(q*float64(len(sorted))), len(sorted)-1)]
}

// joinLargest bridges other landmasses onto the largest while it holds too
// little of the land, then sinks the smallest ones.
func (sh *shaper) joinLargest(m *landmask.Mask) {
	short := func(a *Analysis) bool {
		return a.Land > 0 && float64(a.LargestSize) < sh.c.MinLargestRatio*float64(a.Land)
	}
	for round := 0; round < shapeRounds; round++ {
		e, a := sh.editor(m)
		if !short(a) {
			return
		}
		e.connectToLargest(1)
	}
	for k := 0; k < sinkLimit; k++ {
		e, a := sh.editor(m)
		if !short(a) || !e.removeSmallest(false, sh.z) {
			return
		}
	}
}

// trimComponents sinks the smallest landmasses while there are too many.
// Islands are spared while the island minimum is tight.
func (sh *shaper) trimComponents(m *landmask.Mask) {
	for k := 0; k < sinkLimit; k++ {
		e, a := sh.editor(m)
		if a.Components <= sh.c.MaxComponents {
			return
		}
		spare := a.Islands <= sh.c.MinIslands
		if !e.removeSmallest(spare, sh.z) && !e.removeSmallest(false, sh.z) {
			return
		}
	}
}

// addFeatures sprinkles missing islands and opens or fills lakes.
func (sh *shaper) addFeatures(m *landmask.Mask) {
	c, r := sh.c, sh.r
	e, a := sh.editor(m)
	need := 0
	if a.Components < c.MaxComponents {
		need = min(max(c.MinIslands-a.Islands, c.MinComponents-a.Components, 0), c.MaxComponents-a.Components)
	}
	e.sprinkleIslands(need, r.IslandMinBlob, r.IslandMaxBlob)

	e, a = sh.editor(m)
	if a.Lakes < c.MinLakes {
		e.carveLakes(c.MinLakes-a.Lakes, r.LakeBlobMin, r.LakeBlobMax)
	}
	for k := 0; k < lakeFillLimit; k++ {
		e, a := sh.editor(m)
		if a.Lakes <= c.MaxLakes || !e.fillSmallestLake() {
			return
		}
	}
}

// seedWorlds raises a continent on every side region whose dominant
// landmass is missing, an island, or shared with another side.
func (sh *shaper) seedWorlds(m *landmask.Mask) {
	for k, side := range sh.sides {
		e, a := sh.editor(m)
		if !slices.Contains(missingWorlds(sh.z, a, sh.sides), k) {
			continue
		}
		e.seedWorld(side)
	}
}

// settle moves the land total into the band one safe coastal tile at a
// time. A grown tile touches a single landmass and a removed tile has a
// single run of land facing the ocean. Islands are never touched, so the
// component and island counts hold. Each batch draws non-adjacent tiles
// from the largest landmass or from the rest, whichever pool moves the
// largest share toward the middle of its band.
func (sh *shaper) settle(m *landmask.Mask) {
	e, a := sh.editor(m)
	lo, hi := landBand(a, sh.c)
	land := a.Land
	big := a.Largest
	if (land >= lo && land <= hi) || big < 0 {
		return
	}
	grow := land < lo
	terrain := landmask.Water
	if grow {
		terrain = landmask.Land
	}
	mid := (sh.c.MinLargestRatio + sh.c.MaxLargestRatio) / 2
	size := make([]int, len(a.LandParts))
	for id, p := range a.LandParts {
		size[id] = p.Size
	}
	owner := slices.Clone(a.LandID)

	// ownerOf returns the landmass touching tile t, -1 for none and -2 for
	// more than one.
	ownerOf := func(t int) int {
		o := -1
		for _, nb := range m.Ring(t) {
			if nb < 0 || !m.IsLand(nb) {
				continue
			}
			if o >= 0 && owner[nb] != o {
				return -2
			}
			o = owner[nb]
		}
		return o
	}
	canGrow := func(i int) int {
		if m.IsLand(i) || !e.open(i) || !a.IsOcean(i) {
			return -1
		}
		o := ownerOf(i)
		if o < 0 || (o != big && sh.z.IsIsland(size[o])) {
			return -1
		}
		if j := twin(m, i); j != i {
			ring := m.Ring(i)
			oj := ownerOf(j)
			if oj < 0 || (slices.Contains(ring[:], j) && oj != o) {
				return -1
			}
		}
		return o
	}
	canShrink := func(i int) int {
		if !m.IsLand(i) || !e.open(i) {
			return -1
		}
		o := owner[i]
		if o != big && (sh.z.IsIsland(size[o]) || size[o] <= sh.z.MidMax) {
			return -1
		}
		if e.landArcs(i) != 1 || !e.facesOcean(i) {
			return -1
		}
		return o
	}
	pick := canShrink
	if grow {
		pick = canGrow
	}

	for round := 0; round < 4*m.Len(); round++ {
		if land >= lo && land <= hi {
			return
		}
		var largest, rest []int
		for i := 0; i < m.Len(); i++ {
			switch o := pick(i); {
			case o == big:
				largest = append(largest, i)
			case o >= 0:
				rest = append(rest, i)
			}
		}
		if len(largest)+len(rest) == 0 {
			return
		}
		pool := rest
		wantLargest := (float64(size[big])/float64(land) < mid) == grow
		if (wantLargest && len(largest) > 0) || len(rest) == 0 {
			pool = largest
		}
		gap := lo - land
		if !grow {
			gap = land - hi
		}
		batch := max(1, min(gap, max(len(pool)/batchDivisor, 1)))
		sh.s.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

		taken := make(map[int]bool)
		done := 0
		for _, i := range pool {
			if done >= batch {
				break
			}
			if taken[i] {
				continue
			}
			o := pick(i)
			if o < 0 {
				continue
			}
			tiles := []int{i}
			owners := []int{o}
			if j := twin(m, i); j != i {
				tiles = append(tiles, j)
				if grow {
					owners = append(owners, ownerOf(j))
				} else {
					owners = append(owners, owner[j])
				}
			}
			if !m.Set(i, terrain) {
				continue
			}
			for k, t := range tiles {
				oj := owners[k]
				if oj < 0 {
					oj = o
				}
				if grow {
					size[oj]++
					owner[t] = oj
					land++
				} else {
					size[oj]--
					owner[t] = -1
					land--
				}
			}
			done++
			taken[i] = true
			for _, nb := range m.Ring(i) {
				if nb >= 0 {
					taken[nb] = true
				}
			}
		}
	}
}
