// Package landgen turns a seed, a map size and a style into a land/water
// mask that meets the style's constraints.
//
// A run drafts a mask from coarse random cells, repairs it for a bounded
// number of iterations with the style's strategy table, then enforces the
// constraints. Generation is synchronous and owns all of its state, so
// independent runs may execute concurrently against one shared *params.Params.
package landgen

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/logger"
	"github.com/lawnchairsociety/landforge/internal/mapsize"
	"github.com/lawnchairsociety/landforge/internal/params"
	"github.com/lawnchairsociety/landforge/internal/seedstream"
)

// ErrDimensions is returned for grids too small to generate on.
var ErrDimensions = errors.New("landgen: grid dimensions too small")

// MinDimension is the smallest accepted grid width or height.
const MinDimension = 16

// Result is a finished generation run.
type Result struct {
	Style    Style
	Seed     int64
	Mask     *landmask.Mask
	Analysis *Analysis

	// Iterations is the number of repair iterations of the final loop that
	// ran operators.
	Iterations int
	// Enforced is set when hard enforcement changed the mask.
	Enforced bool
	// Fallback is set when the canonical layout replaced the mask.
	Fallback bool

	Terra *TerraLayout // terra runs only
}

// Generate runs style on the grid of the given size preset.
func Generate(size mapsize.Size, seed int64, style Style, p *params.Params) (*Result, error) {
	w, h := size.Dimensions()
	return GenerateDims(w, h, seed, style, p)
}

// GenerateDims runs style on a width x height grid.
func GenerateDims(width, height int, seed int64, style Style, p *params.Params) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil parameter set", params.ErrInvalidParams)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if width < MinDimension || height < MinDimension {
		return nil, fmt.Errorf("%w: %dx%d (minimum %dx%d)", ErrDimensions, width, height, MinDimension, MinDimension)
	}

	s := seedstream.New(seed, style.String())
	var res *Result
	switch style {
	case Continents:
		res = generateSimple(width, height, p, p.Continents, continentsTable, s)
	case SmallContinents:
		res = generateSimple(width, height, p, p.SmallContinents, smallContinentsTable, s)
	case IslandContinents:
		res = generateSimple(width, height, p, p.IslandContinents, islandContinentsTable, s)
	case Pangea:
		res = generateSimple(width, height, p, p.Pangea, pangeaTable, s)
	case Terra:
		res = generateTerra(width, height, p, s)
	case Mirror:
		res = generateMirror(width, height, p, s)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStyle, style)
	}
	res.Style = style
	res.Seed = seed

	logger.Info("generated land mask",
		"style", style.String(),
		"seed", seed,
		"width", width,
		"height", height,
		"land_ratio", res.Analysis.LandRatio,
		"largest_ratio", res.Analysis.LargestRatio,
		"components", res.Analysis.Components,
		"islands", res.Analysis.Islands,
		"lakes", res.Analysis.Lakes,
		"iterations", res.Iterations,
		"enforced", res.Enforced,
		"fallback", res.Fallback)
	return res, nil
}

// generateSimple is the single-pass flow: draft, repair, enforce.
func generateSimple(width, height int, p *params.Params, st params.Style, table []step, s *seedstream.Stream) *Result {
	m := Draft(width, height, p.Global, st.Draft, s.Child(), nil)
	l := &loop{
		z:     NewAnalyzer(p.Global, width, height),
		c:     st.Constraints,
		r:     st.Repair,
		table: table,
		iters: p.Global.MaxRepairIters,
		label: "main",
	}
	_, iters := l.run(m, s.Child())
	return finish(m, l.z, st.Constraints, st.Repair, s.Child(), iters)
}

// finish runs hard enforcement and packs the result.
func finish(m *landmask.Mask, z *Analyzer, c params.Constraints, r params.Repair, s *seedstream.Stream, iters int, sides ...[]bool) *Result {
	a, rep := enforceWith(m, z, c, r, s, sides...)
	if rep.Changed() {
		logger.Debug("hard enforcement", "shaped", rep.Shaped, "edits", rep.Edits, "trials", rep.Trials, "fallback", rep.Fallback)
	}
	return &Result{
		Mask:       m,
		Analysis:   a,
		Iterations: iters,
		Enforced:   rep.Changed(),
		Fallback:   rep.Fallback,
	}
}
