package seedstream

import "testing"

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42, "continents")
	b := New(42, "continents")
	for i := 0; i < 200; i++ {
		if x, y := a.Uint64(), b.Uint64(); x != y {
			t.Fatalf("draw %d differs: %x vs %x", i, x, y)
		}
	}
	if a.Calls() != 200 {
		t.Errorf("Calls() = %d, want 200", a.Calls())
	}
}

func TestTagAndSeedSeparateStreams(t *testing.T) {
	tests := []struct {
		name string
		a, b *Stream
	}{
		{"different tag", New(7, "pangea"), New(7, "terra")},
		{"different seed", New(7, "pangea"), New(8, "pangea")},
	}
	for _, tc := range tests {
		same := 0
		for i := 0; i < 32; i++ {
			if tc.a.Uint64() == tc.b.Uint64() {
				same++
			}
		}
		if same == 32 {
			t.Errorf("%s: streams are identical", tc.name)
		}
	}
}

func TestChildIsDeterministic(t *testing.T) {
	p1 := New(3, "mirror")
	p2 := New(3, "mirror")
	c1 := p1.Child()
	c2 := p2.Child()
	for i := 0; i < 50; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("child draw %d differs", i)
		}
	}
	if p1.Calls() != 1 {
		t.Errorf("parent Calls() after Child = %d, want 1", p1.Calls())
	}
	if p1.Uint64() != p2.Uint64() {
		t.Error("parents diverged after deriving children")
	}
}

func TestRanges(t *testing.T) {
	s := New(99, "ranges")
	for i := 0; i < 1000; i++ {
		if v := s.IntN(7); v < 0 || v >= 7 {
			t.Fatalf("IntN(7) = %d", v)
		}
		if v := s.Range(3, 5); v < 3 || v > 5 {
			t.Fatalf("Range(3,5) = %d", v)
		}
		if f := s.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64() = %v", f)
		}
	}
	if s.IntN(0) != 0 {
		t.Error("IntN(0) should be 0")
	}
	if s.Range(4, 2) != 4 {
		t.Error("Range with hi < lo should return lo")
	}
}

func TestPercentExtremes(t *testing.T) {
	s := New(1, "percent")
	for i := 0; i < 200; i++ {
		if s.Percent(0) {
			t.Fatal("Percent(0) returned true")
		}
		if !s.Percent(100) {
			t.Fatal("Percent(100) returned false")
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	s := New(5, "shuffle")
	vals := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	s.Shuffle(len(vals), func(i, j int) { vals[i], vals[j] = vals[j], vals[i] })
	seen := make(map[int]bool)
	for _, v := range vals {
		seen[v] = true
	}
	if len(seen) != 10 {
		t.Errorf("shuffle lost values: %v", vals)
	}
}
