// Package render draws land masks for debugging: hex PNGs and coloured
// terminal previews.
package render

import (
	"github.com/lawnchairsociety/landforge/internal/landgen"
	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/params"
)

// Class is the display class of a tile.
type Class uint8

const (
	Ocean Class = iota
	Lake
	Pond
	Land
	Island
	Barrier // water on a terra barrier
)

// Classify assigns a display class to every tile. Without an analysis only
// Ocean and Land are used. barrier may be nil.
func Classify(m *landmask.Mask, a *landgen.Analysis, z *landgen.Analyzer, barrier []bool) []Class {
	out := make([]Class, m.Len())
	for i := range out {
		if m.IsLand(i) {
			out[i] = Land
			if a != nil && z != nil && z.IsIsland(a.LandParts[a.LandID[i]].Size) {
				out[i] = Island
			}
			continue
		}
		switch {
		case barrier != nil && barrier[i]:
			out[i] = Barrier
		case a == nil:
			out[i] = Ocean
		default:
			switch a.WaterParts[a.WaterID[i]].Class {
			case landgen.Lake:
				out[i] = Lake
			case landgen.Pond:
				out[i] = Pond
			default:
				out[i] = Ocean
			}
		}
	}
	return out
}

// ClassifyResult classifies a finished run using the thresholds from p.
func ClassifyResult(res *landgen.Result, p *params.Params) []Class {
	z := landgen.NewAnalyzer(p.Global, res.Mask.Width, res.Mask.Height)
	var barrier []bool
	if res.Terra != nil {
		barrier = res.Terra.Barrier
	}
	return Classify(res.Mask, res.Analysis, z, barrier)
}
