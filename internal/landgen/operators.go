package landgen

import (
	"cmp"
	"math"
	"slices"

	"github.com/lawnchairsociety/landforge/internal/hexgrid"
	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/seedstream"
)

// editor applies repair operators to a mask using a fixed analysis snapshot.
// Operators never touch border tiles, locked tiles, or (on mirrored masks)
// the right half, whose edits arrive through the mirror.
type editor struct {
	m      *landmask.Mask
	a      *Analysis
	s      *seedstream.Stream
	region []bool
	nbuf   []int
}

type candidate struct {
	score int
	tie   uint64
	idx   int
}

// rank sorts candidates by descending score, breaking ties with the random key.
func rank(c []candidate) {
	slices.SortFunc(c, func(a, b candidate) int {
		if a.score != b.score {
			return cmp.Compare(b.score, a.score)
		}
		return cmp.Compare(a.tie, b.tie)
	})
}

// open reports whether an operator may edit tile i.
func (e *editor) open(i int) bool {
	if e.m.OnBorder(i) || !e.m.Editable(i) {
		return false
	}
	if e.region != nil && !e.region[i] {
		return false
	}
	if e.m.Mirrored() {
		x, _ := e.m.Coord(i)
		return x <= (e.m.Width-1)/2
	}
	return true
}

// counts returns the number of land and water neighbors of tile i.
func (e *editor) counts(i int) (land, water int) {
	e.nbuf = e.m.Neighbors(i, e.nbuf)
	for _, nb := range e.nbuf {
		if e.m.IsLand(nb) {
			land++
		} else {
			water++
		}
	}
	return land, water
}

// landArcs counts the separate runs of land around tile i. A land tile with
// two or more arcs is a pinch point: removing it splits its landmass locally.
func (e *editor) landArcs(i int) int {
	var ring [6]bool
	for k, nb := range e.m.Ring(i) {
		ring[k] = nb >= 0 && e.m.IsLand(nb)
	}
	return hexgrid.Arcs(ring)
}

func (e *editor) apply(c []candidate, k int, t landmask.Terrain) int {
	done := 0
	for _, cand := range c {
		if done >= k {
			break
		}
		if e.m.Get(cand.idx) == t {
			continue
		}
		if e.m.Set(cand.idx, t) {
			done++
		}
	}
	return done
}

// carveStraits turns up to k tiles of the largest landmass into water.
// Pinch points rank first, then tiles with the most water around them.
func (e *editor) carveStraits(k int) int {
	if e.a.Largest < 0 || k <= 0 {
		return 0
	}
	var c []candidate
	for i := range e.a.LandID {
		if e.a.LandID[i] != e.a.Largest || !e.open(i) {
			continue
		}
		land, water := e.counts(i)
		if water >= 2 && land >= 2 {
			score := 100*e.landArcs(i) + 10*water + land
			c = append(c, candidate{score, e.s.Uint64(), i})
		}
	}
	rank(c)
	return e.apply(c, k, landmask.Water)
}

// channelCarve cuts k coastal tiles anywhere to break landmasses apart.
func (e *editor) channelCarve(k int) int {
	if k <= 0 {
		return 0
	}
	var c []candidate
	for i, id := range e.a.LandID {
		if id < 0 || !e.open(i) {
			continue
		}
		land, water := e.counts(i)
		if water >= 2 && land >= 2 {
			c = append(c, candidate{water*12 + id%7, e.s.Uint64(), i})
		}
	}
	rank(c)
	return e.apply(c, k, landmask.Water)
}

// sprinkleIslands raises count blobs of [minBlob, maxBlob] tiles out of open
// ocean. Centers have no land neighbors.
func (e *editor) sprinkleIslands(count, minBlob, maxBlob int) int {
	if count <= 0 {
		return 0
	}
	var c []candidate
	for i := range e.a.WaterID {
		if e.m.IsLand(i) || !e.open(i) {
			continue
		}
		if land, _ := e.counts(i); land > 0 {
			continue
		}
		c = append(c, candidate{0, e.s.Uint64(), i})
	}
	rank(c)

	placed := 0
	for _, cand := range c {
		if placed >= count {
			break
		}
		if e.m.IsLand(cand.idx) {
			continue
		}
		if land, _ := e.counts(cand.idx); land > 0 {
			continue
		}
		size := e.s.Range(minBlob, maxBlob)
		if e.growBlob(cand.idx, landmask.Land, size) > 0 {
			placed++
		}
	}
	return placed
}

// carveLakes opens count enclosed water blobs at the land tiles farthest from
// the ocean.
func (e *editor) carveLakes(count, minBlob, maxBlob int) int {
	if count <= 0 {
		return 0
	}
	dist := inlandDistance(e.m, e.a)
	var c []candidate
	for i, d := range dist {
		if d >= 3 && e.open(i) {
			c = append(c, candidate{d, e.s.Uint64(), i})
		}
	}
	rank(c)

	var centers []hexgrid.Offset
	carved := 0
	for _, cand := range c {
		if carved >= count {
			break
		}
		if !e.m.IsLand(cand.idx) {
			continue
		}
		x, y := e.m.Coord(cand.idx)
		here := hexgrid.Offset{X: x, Y: y}
		near := false
		for _, o := range centers {
			if hexgrid.OffsetDistance(o, here) <= maxBlob {
				near = true
				break
			}
		}
		if near {
			continue
		}
		size := e.s.Range(minBlob, maxBlob)
		if e.growBlob(cand.idx, landmask.Water, size) > 0 {
			centers = append(centers, here)
			carved++
		}
	}
	return carved
}

// erodeLargest strips exposed coast from the largest landmass until it is
// no bigger than limit.
func (e *editor) erodeLargest(limit int) int {
	if e.a.Largest < 0 || e.a.LargestSize <= limit {
		return 0
	}
	var c []candidate
	for i, id := range e.a.LandID {
		if id != e.a.Largest || !e.open(i) {
			continue
		}
		if _, water := e.counts(i); water >= 3 {
			c = append(c, candidate{water, e.s.Uint64(), i})
		}
	}
	rank(c)
	return e.apply(c, e.a.LargestSize-limit, landmask.Water)
}

// fillInternalStraits fills narrow water that is mostly surrounded by land
// and touches the largest landmass.
func (e *editor) fillInternalStraits(k int) int {
	if e.a.Largest < 0 || k <= 0 {
		return 0
	}
	var c []candidate
	for i := range e.a.WaterID {
		if e.m.IsLand(i) || !e.open(i) {
			continue
		}
		land, nearLargest := 0, 0
		e.nbuf = e.m.Neighbors(i, e.nbuf)
		for _, nb := range e.nbuf {
			if e.m.IsLand(nb) {
				land++
				if e.a.LandID[nb] == e.a.Largest {
					nearLargest++
				}
			}
		}
		if land >= 4 && nearLargest >= 2 {
			c = append(c, candidate{land*10 + nearLargest, e.s.Uint64(), i})
		}
	}
	rank(c)
	return e.apply(c, k, landmask.Land)
}

// connectToLargest draws land bridges from the largest landmass to the k
// nearest other landmasses.
func (e *editor) connectToLargest(k int) int {
	if e.a.Largest < 0 || k <= 0 {
		return 0
	}
	centers := componentCenters(e.m, e.a)
	from := centers[e.a.Largest]

	var c []candidate
	for id := range e.a.LandParts {
		if id == e.a.Largest {
			continue
		}
		// Nearest first: negate the distance so rank's descending order applies.
		c = append(c, candidate{-hexgrid.OffsetDistance(from, centers[id]), e.s.Uint64(), id})
	}
	rank(c)

	drawn := 0
	for _, cand := range c {
		if drawn >= k {
			break
		}
		e.bridge(from, centers[cand.idx])
		drawn++
	}
	return drawn
}

// bridge lays a three-tile-wide land line between two positions.
func (e *editor) bridge(from, to hexgrid.Offset) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	steps := max(abs(dx), abs(dy), 1)
	for step := 0; step <= steps; step++ {
		t := float64(step) / float64(steps)
		x := int(math.Round(float64(from.X) + float64(dx)*t))
		y := int(math.Round(float64(from.Y) + float64(dy)*t))
		for ry := -1; ry <= 1; ry++ {
			for rx := -1; rx <= 1; rx++ {
				nx, ny := x+rx, y+ry
				if nx <= 0 || ny <= 0 || nx >= e.m.Width-1 || ny >= e.m.Height-1 {
					continue
				}
				if i := e.m.Index(nx, ny); e.open(i) {
					e.m.Set(i, landmask.Land)
				}
			}
		}
	}
}

// growLand fills up to budget coastal water tiles touching two or more land
// tiles. When within is set only those tiles are considered.
func (e *editor) growLand(budget int, within []bool) int {
	if budget <= 0 {
		return 0
	}
	var c []candidate
	for i := range e.a.WaterID {
		if e.m.IsLand(i) || !e.open(i) || (within != nil && !within[i]) {
			continue
		}
		if land, _ := e.counts(i); land >= 2 {
			c = append(c, candidate{land, e.s.Uint64(), i})
		}
	}
	rank(c)
	return e.apply(c, budget, landmask.Land)
}

// shrinkLand removes up to budget coastal land tiles facing two or more
// water tiles.
func (e *editor) shrinkLand(budget int) int {
	if budget <= 0 {
		return 0
	}
	var c []candidate
	for i, id := range e.a.LandID {
		if id < 0 || !e.open(i) {
			continue
		}
		if _, water := e.counts(i); water >= 2 {
			c = append(c, candidate{water, e.s.Uint64(), i})
		}
	}
	rank(c)
	return e.apply(c, budget, landmask.Water)
}

// adjustLandRatio nudges the land total toward [minRatio, maxRatio], moving
// at most total/capDivisor tiles.
func (e *editor) adjustLandRatio(minRatio, maxRatio float64, capDivisor int) int {
	total := e.a.Total
	if total == 0 {
		return 0
	}
	land := e.m.LandCount()
	limit := max(total/max(capDivisor, 1), 1)
	ratio := float64(land) / float64(total)

	switch {
	case ratio < minRatio:
		target := int(math.Ceil(minRatio * float64(total)))
		return e.growLand(min(target-land, limit), nil)
	case ratio > maxRatio:
		target := int(math.Floor(maxRatio * float64(total)))
		return e.shrinkLand(min(land-target, limit))
	}
	return 0
}

// growBlob converts a connected blob of up to size tiles around center to t.
// The frontier order is shuffled with the stream.
func (e *editor) growBlob(center int, t landmask.Terrain, size int) int {
	visited := make(map[int]bool, size*4)
	frontier := []int{center}
	visited[center] = true
	changed := 0
	var next [6]int

	for len(frontier) > 0 && changed < size {
		cur := frontier[0]
		frontier = frontier[1:]
		if !e.open(cur) {
			continue
		}
		if e.m.Get(cur) != t && e.m.Set(cur, t) {
			changed++
		}

		n := 0
		for _, nb := range e.m.Ring(cur) {
			if nb >= 0 && !visited[nb] {
				next[n] = nb
				n++
			}
		}
		e.s.Shuffle(n, func(i, j int) { next[i], next[j] = next[j], next[i] })
		for _, nb := range next[:n] {
			visited[nb] = true
			frontier = append(frontier, nb)
		}
	}
	return changed
}

// inlandDistance returns, per land tile, the step count to the nearest land
// tile bordering the ocean. Water tiles get -1.
func inlandDistance(m *landmask.Mask, a *Analysis) []int {
	dist := make([]int, m.Len())
	queue := make([]int, 0, m.Len()/4)
	var nbuf []int
	for i := range dist {
		dist[i] = -1
		if !m.IsLand(i) {
			continue
		}
		nbuf = m.Neighbors(i, nbuf)
		for _, nb := range nbuf {
			if a.IsOcean(nb) {
				dist[i] = 0
				queue = append(queue, i)
				break
			}
		}
	}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		nbuf = m.Neighbors(cur, nbuf)
		for _, nb := range nbuf {
			if m.IsLand(nb) && dist[nb] < 0 {
				dist[nb] = dist[cur] + 1
				queue = append(queue, nb)
			}
		}
	}
	return dist
}

// componentCenters returns the mean offset position of every land component.
func componentCenters(m *landmask.Mask, a *Analysis) []hexgrid.Offset {
	sx := make([]int, len(a.LandParts))
	sy := make([]int, len(a.LandParts))
	for i, id := range a.LandID {
		if id < 0 {
			continue
		}
		x, y := m.Coord(i)
		sx[id] += x
		sy[id] += y
	}
	out := make([]hexgrid.Offset, len(a.LandParts))
	for id, c := range a.LandParts {
		out[id] = hexgrid.Offset{X: sx[id] / c.Size, Y: sy[id] / c.Size}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
