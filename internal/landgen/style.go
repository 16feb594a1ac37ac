package landgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lawnchairsociety/landforge/internal/mapsize"
	"github.com/lawnchairsociety/landforge/internal/params"
)

// ErrUnknownStyle is returned when a style token does not name a map style.
var ErrUnknownStyle = errors.New("landgen: unknown map style")

// Style selects the orchestration flow of a generation request.
type Style int

const (
	Continents Style = iota
	SmallContinents
	IslandContinents
	Pangea
	Terra
	Mirror
)

var styleNames = [...]string{
	Continents:       "continents",
	SmallContinents:  "small_continents",
	IslandContinents: "island_continents",
	Pangea:           "pangea",
	Terra:            "terra",
	Mirror:           "mirror",
}

// Styles returns every map style in declaration order.
func Styles() []Style {
	return []Style{Continents, SmallContinents, IslandContinents, Pangea, Terra, Mirror}
}

func (s Style) String() string {
	if s >= 0 && int(s) < len(styleNames) {
		return styleNames[s]
	}
	return fmt.Sprintf("style(%d)", int(s))
}

// ParseStyle resolves a style token. Hyphens and spaces are accepted in
// place of underscores.
func ParseStyle(token string) (Style, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	t = strings.NewReplacer("-", "_", " ", "_").Replace(t)
	for _, s := range Styles() {
		if styleNames[s] == t {
			return s, nil
		}
	}
	if hint := mapsize.Suggest(t, styleNames[:]); hint != "" {
		return 0, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownStyle, token, hint)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStyle, token)
}

// Constraints returns the acceptance bounds the final mask of style s must meet.
func (s Style) Constraints(p *params.Params) params.Constraints {
	switch s {
	case Terra:
		return p.Terra.MergedConstraints
	case Mirror:
		return p.Mirror.Base.Constraints
	default:
		return s.params(p).Constraints
	}
}

// Repair returns the operator tuning used with the final constraints of s.
func (s Style) Repair(p *params.Params) params.Repair {
	if s == Terra {
		return p.Terra.MergedRepair
	}
	return s.params(p).Repair
}

// params returns the single-pass style block for the simple styles.
func (s Style) params(p *params.Params) params.Style {
	switch s {
	case SmallContinents:
		return p.SmallContinents
	case IslandContinents:
		return p.IslandContinents
	case Pangea:
		return p.Pangea
	case Mirror:
		return p.Mirror.Base
	default:
		return p.Continents
	}
}
