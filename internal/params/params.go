// Package params holds the landmass generation parameters and their YAML loader.
package params

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidParams is returned when a parameter set fails validation.
var ErrInvalidParams = errors.New("params: invalid parameter set")

// EnvPath names the environment variable that overrides the parameter file path.
const EnvPath = "LANDFORGE_PARAMS"

// DefaultPath is used when no path is given and EnvPath is unset.
const DefaultPath = "data/landmasses.yml"

// Params is the root of landmasses.yml.
type Params struct {
	Global           Global `yaml:"global"`
	Continents       Style  `yaml:"continents"`
	SmallContinents  Style  `yaml:"small_continents"`
	IslandContinents Style  `yaml:"island_continents"`
	Pangea           Style  `yaml:"pangea"`
	Terra            Terra  `yaml:"terra"`
	Mirror           Mirror `yaml:"mirror"`
}

// Global settings shared by every style.
type Global struct {
	BaseFactor       int `yaml:"base_factor"`
	MaxRepairIters   int `yaml:"max_repair_iters"`
	MinLakeSize      int `yaml:"min_lake_size"`
	IslandMaxMin     int `yaml:"island_max_min"`
	IslandMaxMax     int `yaml:"island_max_max"`
	IslandMaxDivisor int `yaml:"island_max_divisor"`
	MidMaxMin        int `yaml:"mid_max_min"`
	MidMaxMax        int `yaml:"mid_max_max"`
	MidMaxDivisor    int `yaml:"mid_max_divisor"`
}

// IslandMax returns the island size threshold for a grid of gridSize tiles.
func (g Global) IslandMax(gridSize int) int {
	return clamp(gridSize/max(g.IslandMaxDivisor, 1), g.IslandMaxMin, g.IslandMaxMax)
}

// MidMax returns the mid-size component threshold for a grid of gridSize tiles.
func (g Global) MidMax(gridSize int) int {
	return clamp(gridSize/max(g.MidMaxDivisor, 1), g.MidMaxMin, g.MidMaxMax)
}

// Style bundles the draft, acceptance and repair knobs of one map style.
type Style struct {
	Draft       Draft       `yaml:"draft"`
	Constraints Constraints `yaml:"constraints"`
	Repair      Repair      `yaml:"repair"`
}

// Draft controls the coarse first pass.
type Draft struct {
	BaseLandPercent    int     `yaml:"base_land_percent"`
	FuzzyFlipPercent   int     `yaml:"fuzzy_flip_percent"`
	CoastIslandPercent int     `yaml:"coast_island_percent"`
	SmoothingPasses    int     `yaml:"smoothing_passes"`
	CenterBias         float64 `yaml:"center_bias"`
}

// Constraints are the acceptance bounds checked after every repair iteration.
type Constraints struct {
	MinLandRatio    float64 `yaml:"min_land_ratio"`
	MaxLandRatio    float64 `yaml:"max_land_ratio"`
	MinLargestRatio float64 `yaml:"min_largest_ratio"`
	MaxLargestRatio float64 `yaml:"max_largest_ratio"`
	MinComponents   int     `yaml:"min_components"`
	MaxComponents   int     `yaml:"max_components"`
	MinIslands      int     `yaml:"min_islands"`
	MinLakes        int     `yaml:"min_lakes"`
	MaxLakes        int     `yaml:"max_lakes"`
}

// Repair tunes the corrective operators.
type Repair struct {
	LargestCarveTriggerRatio float64 `yaml:"largest_carve_trigger_ratio"`
	LargestCarveTargetRatio  float64 `yaml:"largest_carve_target_ratio"`
	LargestCarveScale        float64 `yaml:"largest_carve_scale"`
	LargestCarveBaseCount    int     `yaml:"largest_carve_base_count"`
	ChannelCarveCount        int     `yaml:"channel_carve_count"`
	IslandMinBlob            int     `yaml:"island_min_blob"`
	IslandMaxBlob            int     `yaml:"island_max_blob"`
	IslandExtraMissingFloor  int     `yaml:"island_extra_missing_floor"`
	ErodeCapRatio            float64 `yaml:"erode_cap_ratio"`
	PangeaFillInternalCount  int     `yaml:"pangea_fill_internal_count"`
	PangeaConnectCount       int     `yaml:"pangea_connect_count"`
	PangeaConnectWhenSplit   int     `yaml:"pangea_connect_when_split"`
	TerraGrowBudget          int     `yaml:"terra_grow_budget"`
	LandRatioAdjustCapDiv    int     `yaml:"land_ratio_adjust_cap_divisor"`
	LakeBlobMin              int     `yaml:"lake_blob_min"`
	LakeBlobMax              int     `yaml:"lake_blob_max"`
}

// Terra configures the split-world style.
type Terra struct {
	OldWorld          Style       `yaml:"old_world"`
	NewWorld          Style       `yaml:"new_world"`
	MergedConstraints Constraints `yaml:"merged_constraints"`
	MergedRepair      Repair      `yaml:"merged_repair"`
	BarrierMin        int         `yaml:"barrier_min"`
	BarrierMax        int         `yaml:"barrier_max"`
}

// Mirror configures the reflected style.
type Mirror struct {
	Base                Style `yaml:"base"`
	HalfSmoothingPasses int   `yaml:"half_smoothing_passes"`
}

// ResolvePath picks the parameter file path: the explicit path if set,
// then the EnvPath variable, then DefaultPath.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads a parameter file over the defaults. A missing file yields the
// defaults. The result is validated.
func Load(path string) (*Params, error) {
	p := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("failed to read landmass params %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse landmass params %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes the parameter set as YAML.
func (p *Params) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	return enc.Close()
}

// Validate checks ranges and min/max ordering of every section.
func (p *Params) Validate() error {
	v := &validator{}

	g := p.Global
	v.atLeast("global.base_factor", g.BaseFactor, 1)
	v.atLeast("global.max_repair_iters", g.MaxRepairIters, 0)
	v.atLeast("global.min_lake_size", g.MinLakeSize, 1)
	v.atLeast("global.island_max_min", g.IslandMaxMin, 2)
	v.ordered("global.island_max_min", "island_max_max", g.IslandMaxMin, g.IslandMaxMax)
	v.atLeast("global.island_max_divisor", g.IslandMaxDivisor, 1)
	v.atLeast("global.mid_max_min", g.MidMaxMin, 1)
	v.ordered("global.mid_max_min", "mid_max_max", g.MidMaxMin, g.MidMaxMax)
	v.atLeast("global.mid_max_divisor", g.MidMaxDivisor, 1)

	v.style("continents", p.Continents)
	v.style("small_continents", p.SmallContinents)
	v.style("island_continents", p.IslandContinents)
	v.style("pangea", p.Pangea)
	v.style("terra.old_world", p.Terra.OldWorld)
	v.style("terra.new_world", p.Terra.NewWorld)
	v.constraints("terra.merged_constraints", p.Terra.MergedConstraints)
	v.repair("terra.merged_repair", p.Terra.MergedRepair)
	v.atLeast("terra.barrier_min", p.Terra.BarrierMin, 1)
	v.ordered("terra.barrier_min", "barrier_max", p.Terra.BarrierMin, p.Terra.BarrierMax)
	v.style("mirror.base", p.Mirror.Base)
	v.atLeast("mirror.half_smoothing_passes", p.Mirror.HalfSmoothingPasses, 0)

	return v.err()
}

type validator struct {
	problems []string
}

func (v *validator) add(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(v.problems, "; "))
}

func (v *validator) atLeast(key string, val, lo int) {
	if val < lo {
		v.add("%s = %d, must be >= %d", key, val, lo)
	}
}

func (v *validator) ordered(minKey, maxKey string, lo, hi int) {
	if lo > hi {
		v.add("%s (%d) > %s (%d)", minKey, lo, maxKey, hi)
	}
}

func (v *validator) percent(key string, val int) {
	if val < 0 || val > 100 {
		v.add("%s = %d, must be within [0, 100]", key, val)
	}
}

func (v *validator) ratio(key string, val float64) {
	if val < 0 || val > 1 {
		v.add("%s = %.3f, must be within [0, 1]", key, val)
	}
}

func (v *validator) ratioPair(prefix, minKey, maxKey string, lo, hi float64) {
	v.ratio(prefix+"."+minKey, lo)
	v.ratio(prefix+"."+maxKey, hi)
	if lo > hi {
		v.add("%s.%s (%.3f) > %s (%.3f)", prefix, minKey, lo, maxKey, hi)
	}
}

func (v *validator) style(prefix string, s Style) {
	d := s.Draft
	v.percent(prefix+".draft.base_land_percent", d.BaseLandPercent)
	v.percent(prefix+".draft.fuzzy_flip_percent", d.FuzzyFlipPercent)
	v.percent(prefix+".draft.coast_island_percent", d.CoastIslandPercent)
	v.atLeast(prefix+".draft.smoothing_passes", d.SmoothingPasses, 0)
	v.ratio(prefix+".draft.center_bias", d.CenterBias)
	v.constraints(prefix+".constraints", s.Constraints)
	v.repair(prefix+".repair", s.Repair)
}

func (v *validator) constraints(prefix string, c Constraints) {
	v.ratioPair(prefix, "min_land_ratio", "max_land_ratio", c.MinLandRatio, c.MaxLandRatio)
	v.ratioPair(prefix, "min_largest_ratio", "max_largest_ratio", c.MinLargestRatio, c.MaxLargestRatio)
	v.atLeast(prefix+".min_components", c.MinComponents, 1)
	v.ordered(prefix+".min_components", "max_components", c.MinComponents, c.MaxComponents)
	v.atLeast(prefix+".min_islands", c.MinIslands, 0)
	if c.MinIslands >= c.MaxComponents {
		v.add("%s.min_islands (%d) must be below max_components (%d)", prefix, c.MinIslands, c.MaxComponents)
	}
	v.atLeast(prefix+".min_lakes", c.MinLakes, 0)
	v.ordered(prefix+".min_lakes", "max_lakes", c.MinLakes, c.MaxLakes)
	if c.MaxLandRatio <= 0 {
		v.add("%s.max_land_ratio must be positive", prefix)
	}
	if c.MaxLargestRatio*float64(c.MaxComponents) < 1 {
		v.add("%s.max_largest_ratio (%.3f) is unreachable with at most %d components", prefix, c.MaxLargestRatio, c.MaxComponents)
	}
}

func (v *validator) repair(prefix string, r Repair) {
	v.ratio(prefix+".largest_carve_trigger_ratio", r.LargestCarveTriggerRatio)
	v.ratio(prefix+".largest_carve_target_ratio", r.LargestCarveTargetRatio)
	if r.LargestCarveScale < 0 {
		v.add("%s.largest_carve_scale = %.3f, must be >= 0", prefix, r.LargestCarveScale)
	}
	v.atLeast(prefix+".largest_carve_base_count", r.LargestCarveBaseCount, 0)
	v.atLeast(prefix+".channel_carve_count", r.ChannelCarveCount, 0)
	v.atLeast(prefix+".island_min_blob", r.IslandMinBlob, 1)
	v.ordered(prefix+".island_min_blob", "island_max_blob", r.IslandMinBlob, r.IslandMaxBlob)
	v.atLeast(prefix+".island_extra_missing_floor", r.IslandExtraMissingFloor, 0)
	v.ratio(prefix+".erode_cap_ratio", r.ErodeCapRatio)
	v.atLeast(prefix+".pangea_fill_internal_count", r.PangeaFillInternalCount, 0)
	v.atLeast(prefix+".pangea_connect_count", r.PangeaConnectCount, 0)
	v.atLeast(prefix+".pangea_connect_when_split", r.PangeaConnectWhenSplit, 0)
	v.atLeast(prefix+".terra_grow_budget", r.TerraGrowBudget, 0)
	v.atLeast(prefix+".land_ratio_adjust_cap_divisor", r.LandRatioAdjustCapDiv, 1)
	v.atLeast(prefix+".lake_blob_min", r.LakeBlobMin, 1)
	v.ordered(prefix+".lake_blob_min", "lake_blob_max", r.LakeBlobMin, r.LakeBlobMax)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
