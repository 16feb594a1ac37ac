package hexgrid

import "testing"

func TestOffsetAxialRoundTrip(t *testing.T) {
	for y := 0; y < 7; y++ {
		for x := 0; x < 9; x++ {
			o := Offset{X: x, Y: y}
			got := o.ToAxial().ToOffset()
			if got != o {
				t.Errorf("round trip of %v = %v", o, got)
			}
		}
	}
}

func TestNeighborsAreOneStepAway(t *testing.T) {
	g := NewGrid(12, 9)
	var buf []int
	for i := 0; i < g.Len(); i++ {
		x, y := g.Coord(i)
		for _, n := range g.Neighbors(i, buf) {
			nx, ny := g.Coord(n)
			d := OffsetDistance(Offset{X: x, Y: y}, Offset{X: nx, Y: ny})
			if d != 1 {
				t.Errorf("neighbor (%d,%d) of (%d,%d) at distance %d, want 1", nx, ny, x, y, d)
			}
		}
	}
}

func TestNeighborsAreSymmetric(t *testing.T) {
	g := NewGrid(10, 8)
	for i := 0; i < g.Len(); i++ {
		for _, n := range g.Ring(i) {
			if n < 0 {
				continue
			}
			found := false
			for _, back := range g.Ring(n) {
				if back == i {
					found = true
				}
			}
			if !found {
				t.Errorf("tile %d lists %d as neighbor but not the reverse", i, n)
			}
		}
	}
}

func TestInteriorTilesHaveSixNeighbors(t *testing.T) {
	g := NewGrid(6, 6)
	tests := []struct {
		x, y int
		want int
	}{
		{2, 2, 6},
		{3, 3, 6},
		{0, 0, 2},
		{5, 1, 3},
		{0, 1, 5},
	}
	for _, tc := range tests {
		got := len(g.Neighbors(g.Index(tc.x, tc.y), nil))
		if got != tc.want {
			t.Errorf("Neighbors(%d,%d) count = %d, want %d", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b Axial
		want int
	}{
		{Axial{0, 0}, Axial{0, 0}, 0},
		{Axial{0, 0}, Axial{3, 0}, 3},
		{Axial{0, 0}, Axial{2, -1}, 2},
		{Axial{-2, 3}, Axial{1, -1}, 4},
	}
	for _, tc := range tests {
		if got := Distance(tc.a, tc.b); got != tc.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestMirror(t *testing.T) {
	g := NewGrid(7, 3)
	if got := g.Mirror(g.Index(0, 1)); got != g.Index(6, 1) {
		t.Errorf("Mirror(0,1) = %d, want %d", got, g.Index(6, 1))
	}
	if got := g.Mirror(g.Index(3, 2)); got != g.Index(3, 2) {
		t.Errorf("Mirror of axis tile moved to %d", got)
	}
}

func TestArcs(t *testing.T) {
	tests := []struct {
		name string
		ring [6]bool
		want int
	}{
		{"empty", [6]bool{}, 0},
		{"full", [6]bool{true, true, true, true, true, true}, 1},
		{"single run", [6]bool{true, true, false, false, false, false}, 1},
		{"wrapping run", [6]bool{true, false, false, false, false, true}, 1},
		{"two runs", [6]bool{true, false, false, true, false, false}, 2},
		{"alternating", [6]bool{true, false, true, false, true, false}, 3},
	}
	for _, tc := range tests {
		if got := Arcs(tc.ring); got != tc.want {
			t.Errorf("%s: Arcs = %d, want %d", tc.name, got, tc.want)
		}
	}
}
