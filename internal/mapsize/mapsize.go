// Package mapsize defines the fixed map-size presets.
package mapsize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownSize is returned when a size token does not name a preset.
var ErrUnknownSize = errors.New("mapsize: unknown map size")

// Size is one of the fixed map-size presets.
type Size int

const (
	Duel Size = iota
	Tiny
	Small
	Standard
	Large
	Huge
)

var sizeNames = map[Size]string{
	Duel:     "duel",
	Tiny:     "tiny",
	Small:    "small",
	Standard: "standard",
	Large:    "large",
	Huge:     "huge",
}

// All returns every preset from smallest to largest.
func All() []Size {
	return []Size{Duel, Tiny, Small, Standard, Large, Huge}
}

// String returns the lowercase preset name.
func (s Size) String() string {
	if name, ok := sizeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("size(%d)", int(s))
}

// Dimensions returns the grid width and height of the preset.
func (s Size) Dimensions() (width, height int) {
	switch s {
	case Duel:
		return 44, 26
	case Tiny:
		return 60, 38
	case Small:
		return 74, 46
	case Standard:
		return 84, 54
	case Large:
		return 96, 60
	case Huge:
		return 106, 66
	default:
		return 0, 0
	}
}

// GridSize returns the total tile count of the preset.
func (s Size) GridSize() int {
	w, h := s.Dimensions()
	return w * h
}

// Parse resolves a size token, case-insensitively. Unknown tokens produce an
// error wrapping ErrUnknownSize with the closest preset name as a hint.
func Parse(token string) (Size, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	for _, s := range All() {
		if sizeNames[s] == t {
			return s, nil
		}
	}
	if hint := Suggest(t, names()); hint != "" {
		return 0, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownSize, token, hint)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSize, token)
}

func names() []string {
	out := make([]string, 0, len(sizeNames))
	for _, s := range All() {
		out = append(out, sizeNames[s])
	}
	return out
}

// Suggest returns the candidate closest to token by edit distance, or "" if
// nothing is within half the token's length.
func Suggest(token string, candidates []string) string {
	best := ""
	bestDist := len(token)/2 + 1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(token, c)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}
