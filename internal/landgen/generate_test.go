package landgen

import (
	"errors"
	"testing"

	"github.com/lawnchairsociety/landforge/internal/mapsize"
	"github.com/lawnchairsociety/landforge/internal/params"
	"github.com/lawnchairsociety/landforge/internal/seedstream"
)

func mustGenerate(t *testing.T, size mapsize.Size, seed int64, style Style, p *params.Params) *Result {
	t.Helper()
	res, err := Generate(size, seed, style, p)
	if err != nil {
		t.Fatalf("Generate(%s, %d, %s) failed: %v", size, seed, style, err)
	}
	return res
}

func TestGenerateDeterministic(t *testing.T) {
	p := params.Default()
	for _, style := range Styles() {
		a := mustGenerate(t, mapsize.Small, 42, style, p)
		b := mustGenerate(t, mapsize.Small, 42, style, p)
		if !a.Mask.Equal(b.Mask) {
			t.Errorf("%s: same inputs produced different masks", style)
		}
		if a.Mask.Fingerprint() != b.Mask.Fingerprint() {
			t.Errorf("%s: fingerprints differ", style)
		}
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	p := params.Default()
	a := mustGenerate(t, mapsize.Standard, 1, Continents, p)
	b := mustGenerate(t, mapsize.Standard, 2, Continents, p)
	if a.Mask.Equal(b.Mask) {
		t.Error("seeds 1 and 2 produced identical masks")
	}
}

func TestGenerateRarelyFallsBack(t *testing.T) {
	p := params.Default()
	seeds := []int64{1, 2, 3, 4}
	for _, style := range Styles() {
		fallbacks, runs := 0, 0
		for _, size := range mapsize.All() {
			seen := make(map[string]bool)
			for _, seed := range seeds {
				res := mustGenerate(t, size, seed, style, p)
				runs++
				if res.Fallback {
					fallbacks++
				}
				seen[res.Mask.Fingerprint()] = true
			}
			if len(seen) < 2 {
				t.Errorf("%s/%s: %d seeds gave one mask", style, size, len(seeds))
			}
		}
		if fallbacks*10 > runs {
			t.Errorf("%s: %d of %d runs used the canonical layout", style, fallbacks, runs)
		}
	}
}

func TestGenerateMeetsConstraints(t *testing.T) {
	p := params.Default()
	seeds := []int64{0, 3, 7, 99, 12345}
	for _, size := range mapsize.All() {
		for _, style := range Styles() {
			for _, seed := range seeds {
				res := mustGenerate(t, size, seed, style, p)
				c := style.Constraints(p)
				if v := res.Analysis.Violations(c); len(v) > 0 {
					t.Errorf("%s/%d/%s: violations %v", size, seed, style, v)
				}

				// The returned analysis must describe the returned mask.
				fresh := NewAnalyzer(p.Global, res.Mask.Width, res.Mask.Height).Analyze(res.Mask)
				if !fresh.Satisfies(c) {
					t.Errorf("%s/%d/%s: re-analysis violates %v", size, seed, style, fresh.Violations(c))
				}
			}
		}
	}
}

func TestGenerateBorderIsWater(t *testing.T) {
	p := params.Default()
	for _, style := range Styles() {
		res := mustGenerate(t, mapsize.Tiny, 5, style, p)
		m := res.Mask
		for i := 0; i < m.Len(); i++ {
			if m.OnBorder(i) && m.IsLand(i) {
				x, y := m.Coord(i)
				t.Fatalf("%s: border tile (%d,%d) is land", style, x, y)
			}
		}
	}
}

func TestPangeaTinySeven(t *testing.T) {
	p := params.Default()
	res := mustGenerate(t, mapsize.Tiny, 7, Pangea, p)
	if res.Analysis.LargestRatio < p.Pangea.Constraints.MinLargestRatio {
		t.Errorf("largest ratio %.3f below %.2f", res.Analysis.LargestRatio, p.Pangea.Constraints.MinLargestRatio)
	}
}

func TestSmallContinentsStandardThree(t *testing.T) {
	p := params.Default()
	c := p.SmallContinents.Constraints
	res := mustGenerate(t, mapsize.Standard, 3, SmallContinents, p)
	a := res.Analysis
	if a.Components < c.MinComponents || a.Components > c.MaxComponents {
		t.Errorf("components %d not in [%d, %d]", a.Components, c.MinComponents, c.MaxComponents)
	}
	if a.LargestRatio > c.MaxLargestRatio {
		t.Errorf("largest ratio %.3f above %.2f", a.LargestRatio, c.MaxLargestRatio)
	}
}

func TestMirrorStandardNinetyNine(t *testing.T) {
	p := params.Default()
	res := mustGenerate(t, mapsize.Standard, 99, Mirror, p)
	if n := res.Mask.MirrorMismatches(); n != 0 {
		t.Errorf("expected a symmetric mask, got %d mismatched pairs", n)
	}
}

func TestMirrorSymmetricAcrossSizes(t *testing.T) {
	p := params.Default()
	for _, size := range mapsize.All() {
		for _, seed := range []int64{1, 2, 3} {
			res := mustGenerate(t, size, seed, Mirror, p)
			if n := res.Mask.MirrorMismatches(); n != 0 {
				t.Errorf("%s/%d: %d mismatched pairs", size, seed, n)
			}
		}
	}
}

func TestTerraBarrierAndWorlds(t *testing.T) {
	p := params.Default()
	for _, size := range []mapsize.Size{mapsize.Duel, mapsize.Standard, mapsize.Huge} {
		for _, seed := range []int64{1, 8, 21} {
			res := mustGenerate(t, size, seed, Terra, p)
			tl := res.Terra
			if tl == nil {
				t.Fatalf("%s/%d: missing terra layout", size, seed)
			}
			if tl.BarrierWidth < minBarrierWidth || tl.BarrierWidth > p.Terra.BarrierMax {
				t.Errorf("%s/%d: barrier width %d out of range", size, seed, tl.BarrierWidth)
			}
			for i, in := range tl.Barrier {
				if in && tl.PreMerge.IsLand(i) {
					t.Fatalf("%s/%d: land in barrier before merge", size, seed)
				}
			}

			oldLand, newLand := 0, 0
			for i := 0; i < res.Mask.Len(); i++ {
				if !res.Mask.IsLand(i) {
					continue
				}
				if tl.OldWorld[i] {
					oldLand++
				}
				if tl.NewWorld[i] {
					newLand++
				}
			}
			if oldLand == 0 || newLand == 0 {
				t.Errorf("%s/%d: old world %d land, new world %d land", size, seed, oldLand, newLand)
			}
			if !res.Analysis.Satisfies(p.Terra.MergedConstraints) {
				t.Errorf("%s/%d: merged constraints violated: %v", size, seed, res.Analysis.Violations(p.Terra.MergedConstraints))
			}
		}
	}
}

func TestTerraWorldsAreContinents(t *testing.T) {
	p := params.Default()
	for _, size := range []mapsize.Size{mapsize.Duel, mapsize.Small, mapsize.Standard, mapsize.Huge} {
		w, h := size.Dimensions()
		z := NewAnalyzer(p.Global, w, h)
		for _, seed := range []int64{1, 8, 21, 34} {
			res := mustGenerate(t, size, seed, Terra, p)
			if res.Fallback {
				t.Logf("%s/%d: canonical layout, worlds not checked", size, seed)
				continue
			}
			tl := res.Terra
			a := res.Analysis
			oldID, newID := dominantOn(a, tl.OldWorld), dominantOn(a, tl.NewWorld)
			for _, world := range []struct {
				name string
				id   int
			}{{"old", oldID}, {"new", newID}} {
				if world.id < 0 {
					t.Errorf("%s/%d: %s world has no land", size, seed, world.name)
					continue
				}
				if n := a.LandParts[world.id].Size; z.IsIsland(n) {
					t.Errorf("%s/%d: %s world's dominant landmass is an islet of %d tiles", size, seed, world.name, n)
				}
			}
			if oldID >= 0 && oldID == newID {
				t.Errorf("%s/%d: both worlds share landmass %d", size, seed, oldID)
			}
			for i, in := range tl.Barrier {
				if in && res.Mask.IsLand(i) {
					t.Fatalf("%s/%d: land on the barrier", size, seed)
				}
			}
		}
	}
}

func TestSplitTerraBarrierMinimum(t *testing.T) {
	tp := params.Default().Terra
	tp.BarrierMin, tp.BarrierMax = 1, 1
	for seed := int64(0); seed < 4; seed++ {
		tl := splitTerra(60, 38, tp, seedstream.New(seed, "terra"))
		if tl.BarrierWidth != minBarrierWidth {
			t.Errorf("seed %d: barrier width %d, want %d", seed, tl.BarrierWidth, minBarrierWidth)
		}
		n := 0
		for _, in := range tl.Barrier {
			if in {
				n++
			}
		}
		dim := 38
		if tl.Vertical {
			dim = 60
		}
		if want := minBarrierWidth * (60 * 38 / dim); n != want {
			t.Errorf("seed %d: %d barrier tiles, want %d", seed, n, want)
		}
	}
}

func TestTerraBarrierWidthWithinBounds(t *testing.T) {
	p := params.Default()
	res := mustGenerate(t, mapsize.Huge, 4, Terra, p)
	bw := res.Terra.BarrierWidth
	if bw < p.Terra.BarrierMin || bw > p.Terra.BarrierMax {
		t.Errorf("barrier width %d not in [%d, %d]", bw, p.Terra.BarrierMin, p.Terra.BarrierMax)
	}
}

func TestGenerateInvalidParams(t *testing.T) {
	p := params.Default()
	p.Continents.Constraints.MinLandRatio = 0.9
	_, err := Generate(mapsize.Tiny, 1, Continents, p)
	if !errors.Is(err, params.ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}

	_, err = Generate(mapsize.Tiny, 1, Continents, nil)
	if !errors.Is(err, params.ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams for nil params, got %v", err)
	}
}

func TestGenerateDimsTooSmall(t *testing.T) {
	_, err := GenerateDims(8, 40, 1, Continents, params.Default())
	if !errors.Is(err, ErrDimensions) {
		t.Errorf("expected ErrDimensions, got %v", err)
	}
}

func TestGenerateUnknownStyle(t *testing.T) {
	_, err := Generate(mapsize.Tiny, 1, Style(42), params.Default())
	if !errors.Is(err, ErrUnknownStyle) {
		t.Errorf("expected ErrUnknownStyle, got %v", err)
	}
}

func TestGenerateAfterEnforceIsIdempotent(t *testing.T) {
	p := params.Default()
	for _, style := range Styles() {
		res := mustGenerate(t, mapsize.Small, 11, style, p)
		before := res.Mask.Clone()
		_, rep := Enforce(res.Mask, p.Global, style.Constraints(p), style.Repair(p), nil)
		if !res.Mask.Equal(before) {
			t.Errorf("%s: second enforcement changed the mask", style)
		}
		if rep.Changed() {
			t.Errorf("%s: second enforcement reported %+v", style, rep)
		}
	}
}
