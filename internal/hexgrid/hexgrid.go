// Package hexgrid provides the pointy-top hex grid used by the land generator.
//
// Tiles are stored in odd-r offset coordinates (odd rows are shoved right by
// half a tile). Axial coordinates are available for distance math.
package hexgrid

// Offset is a tile position in odd-r offset coordinates.
type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Axial is a tile position in axial coordinates. The third cube
// coordinate is derived: s = -q - r.
type Axial struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (a Axial) S() int {
	return -a.Q - a.R
}

// ToAxial converts an odd-r offset position to axial coordinates.
func (o Offset) ToAxial() Axial {
	return Axial{Q: o.X - (o.Y-(o.Y&1))/2, R: o.Y}
}

// ToOffset converts an axial position to odd-r offset coordinates.
func (a Axial) ToOffset() Offset {
	return Offset{X: a.Q + (a.R-(a.R&1))/2, Y: a.R}
}

// Distance returns the number of hex steps between two axial positions.
func Distance(a, b Axial) int {
	return (abs(a.Q-b.Q) + abs(a.R-b.R) + abs(a.S()-b.S())) / 2
}

// OffsetDistance returns the hex distance between two offset positions.
func OffsetDistance(a, b Offset) int {
	return Distance(a.ToAxial(), b.ToAxial())
}

// Neighbor offsets in ring order (NE, E, SE, SW, W, NW) for even and odd rows.
var (
	evenRowDirections = [6]Offset{
		{X: 0, Y: -1},
		{X: 1, Y: 0},
		{X: 0, Y: 1},
		{X: -1, Y: 1},
		{X: -1, Y: 0},
		{X: -1, Y: -1},
	}
	oddRowDirections = [6]Offset{
		{X: 1, Y: -1},
		{X: 1, Y: 0},
		{X: 1, Y: 1},
		{X: 0, Y: 1},
		{X: -1, Y: 0},
		{X: 0, Y: -1},
	}
)

// Directions returns the six neighbor offsets for a tile in row y, in ring order.
func Directions(y int) *[6]Offset {
	if y&1 == 1 {
		return &oddRowDirections
	}
	return &evenRowDirections
}

// Grid is a rectangular hex grid of Width x Height tiles, indexed row-major.
type Grid struct {
	Width  int
	Height int
}

// NewGrid creates a grid descriptor.
func NewGrid(width, height int) Grid {
	return Grid{Width: width, Height: height}
}

// Len returns the number of tiles in the grid.
func (g Grid) Len() int {
	return g.Width * g.Height
}

// In reports whether (x, y) lies inside the grid.
func (g Grid) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Index returns the row-major index of (x, y).
func (g Grid) Index(x, y int) int {
	return y*g.Width + x
}

// Coord returns the offset position of a tile index.
func (g Grid) Coord(i int) (x, y int) {
	return i % g.Width, i / g.Width
}

// OnBorder reports whether a tile index lies on the outer ring of the grid.
func (g Grid) OnBorder(i int) bool {
	x, y := g.Coord(i)
	return x == 0 || y == 0 || x == g.Width-1 || y == g.Height-1
}

// Ring returns the six neighbors of tile i in ring order. Neighbors that
// fall outside the grid are reported as -1.
func (g Grid) Ring(i int) [6]int {
	x, y := g.Coord(i)
	var out [6]int
	for k, d := range Directions(y) {
		nx, ny := x+d.X, y+d.Y
		if g.In(nx, ny) {
			out[k] = g.Index(nx, ny)
		} else {
			out[k] = -1
		}
	}
	return out
}

// Neighbors appends the in-bounds neighbors of tile i to buf and returns it.
func (g Grid) Neighbors(i int, buf []int) []int {
	buf = buf[:0]
	for _, n := range g.Ring(i) {
		if n >= 0 {
			buf = append(buf, n)
		}
	}
	return buf
}

// Mirror returns the index of the tile reflected across the vertical axis.
func (g Grid) Mirror(i int) int {
	x, y := g.Coord(i)
	return g.Index(g.Width-1-x, y)
}

// Arcs counts the separate runs of true values around a ring of six flags.
// A full ring counts as one arc.
func Arcs(ring [6]bool) int {
	arcs := 0
	all := true
	for k := 0; k < 6; k++ {
		if !ring[k] {
			all = false
			continue
		}
		if !ring[(k+5)%6] {
			arcs++
		}
	}
	if all {
		return 1
	}
	return arcs
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
