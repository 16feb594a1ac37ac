// Package landmask holds the binary land/water mask produced by the generator.
package landmask

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/lawnchairsociety/landforge/internal/hexgrid"
)

// ErrBadRows is returned when textual rows do not describe a rectangular mask.
var ErrBadRows = errors.New("landmask: rows are not rectangular")

// Terrain is the value of a single tile.
type Terrain uint8

const (
	Water Terrain = iota
	Land
)

// String returns a readable name for the terrain.
func (t Terrain) String() string {
	if t == Land {
		return "land"
	}
	return "water"
}

// Glyphs used by Rows and FromRows.
const (
	LandGlyph  = '#'
	WaterGlyph = '.'
)

// Mask is a width x height grid of terrain stored row-major.
//
// Edits made through Set respect two policies: locked tiles never change,
// and a mirrored mask writes every edit to the tile and its reflection
// across the vertical axis.
type Mask struct {
	hexgrid.Grid
	tiles    []Terrain
	locked   []bool
	mirrored bool
}

// New returns an all-water mask.
func New(width, height int) *Mask {
	return &Mask{
		Grid:  hexgrid.NewGrid(width, height),
		tiles: make([]Terrain, width*height),
	}
}

// FromTiles wraps an existing tile slice. The slice is not copied.
func FromTiles(width, height int, tiles []Terrain) *Mask {
	if len(tiles) != width*height {
		panic(fmt.Sprintf("landmask: %d tiles for %dx%d grid", len(tiles), width, height))
	}
	return &Mask{Grid: hexgrid.NewGrid(width, height), tiles: tiles}
}

// FromRows parses rows of '#' (land) and '.' (water).
func FromRows(rows []string) (*Mask, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrBadRows
	}
	w := len(rows[0])
	m := New(w, len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("%w: row %d has %d tiles, want %d", ErrBadRows, y, len(row), w)
		}
		for x := 0; x < w; x++ {
			if row[x] == LandGlyph {
				m.tiles[m.Index(x, y)] = Land
			}
		}
	}
	return m, nil
}

// Get returns the terrain of tile i.
func (m *Mask) Get(i int) Terrain {
	return m.tiles[i]
}

// At returns the terrain at (x, y).
func (m *Mask) At(x, y int) Terrain {
	return m.tiles[m.Index(x, y)]
}

// IsLand reports whether tile i is land.
func (m *Mask) IsLand(i int) bool {
	return m.tiles[i] == Land
}

// Set changes tile i, honoring locks and mirroring. It reports whether the
// edit was applied.
func (m *Mask) Set(i int, t Terrain) bool {
	if !m.Editable(i) {
		return false
	}
	m.tiles[i] = t
	if m.mirrored {
		m.tiles[m.Mirror(i)] = t
	}
	return true
}

// Editable reports whether Set would change tile i.
func (m *Mask) Editable(i int) bool {
	if m.locked != nil {
		if m.locked[i] {
			return false
		}
		if m.mirrored && m.locked[m.Mirror(i)] {
			return false
		}
	}
	return true
}

// Lock prevents further edits of tile i through Set.
func (m *Mask) Lock(i int) {
	if m.locked == nil {
		m.locked = make([]bool, len(m.tiles))
	}
	m.locked[i] = true
}

// LockWhere locks every tile for which locked returns true.
func (m *Mask) LockWhere(locked func(i int) bool) {
	for i := range m.tiles {
		if locked(i) {
			m.Lock(i)
		}
	}
}

// Locked reports whether tile i is locked.
func (m *Mask) Locked(i int) bool {
	return m.locked != nil && m.locked[i]
}

// Unlock clears every lock.
func (m *Mask) Unlock() {
	m.locked = nil
}

// SetMirrored switches mirrored editing on or off.
func (m *Mask) SetMirrored(on bool) {
	m.mirrored = on
}

// Mirrored reports whether edits are mirrored.
func (m *Mask) Mirrored() bool {
	return m.mirrored
}

// Tiles returns the backing tile slice.
func (m *Mask) Tiles() []Terrain {
	return m.tiles
}

// Clone returns a deep copy including locks and the mirror policy.
func (m *Mask) Clone() *Mask {
	c := &Mask{
		Grid:     m.Grid,
		tiles:    append([]Terrain(nil), m.tiles...),
		mirrored: m.mirrored,
	}
	if m.locked != nil {
		c.locked = append([]bool(nil), m.locked...)
	}
	return c
}

// CopyFrom overwrites the tiles of m with those of src. Policies are kept.
func (m *Mask) CopyFrom(src *Mask) {
	copy(m.tiles, src.tiles)
}

// Equal reports whether two masks hold identical terrain.
func (m *Mask) Equal(o *Mask) bool {
	if m.Width != o.Width || m.Height != o.Height {
		return false
	}
	for i, t := range m.tiles {
		if o.tiles[i] != t {
			return false
		}
	}
	return true
}

// Diff counts the tiles whose terrain differs between m and o, which must
// have the same dimensions.
func (m *Mask) Diff(o *Mask) int {
	n := 0
	for i, t := range m.tiles {
		if o.tiles[i] != t {
			n++
		}
	}
	return n
}

// LandCount returns the number of land tiles.
func (m *Mask) LandCount() int {
	n := 0
	for _, t := range m.tiles {
		if t == Land {
			n++
		}
	}
	return n
}

// ForceBorderWater sets every border tile to water. Locks are ignored since
// the border is water by definition.
func (m *Mask) ForceBorderWater() {
	w, h := m.Width, m.Height
	for x := 0; x < w; x++ {
		m.tiles[x] = Water
		m.tiles[(h-1)*w+x] = Water
	}
	for y := 0; y < h; y++ {
		m.tiles[y*w] = Water
		m.tiles[y*w+w-1] = Water
	}
}

// ReflectLeft copies the left half (ceil(W/2) columns) onto the right half.
func (m *Mask) ReflectLeft() {
	w := m.Width
	half := (w + 1) / 2
	for y := 0; y < m.Height; y++ {
		for x := 0; x < half; x++ {
			m.tiles[y*w+w-1-x] = m.tiles[y*w+x]
		}
	}
}

// MirrorMismatches counts tiles whose reflection across the vertical axis
// holds different terrain. Each mismatched pair is counted once.
func (m *Mask) MirrorMismatches() int {
	n := 0
	w := m.Width
	for y := 0; y < m.Height; y++ {
		for x := 0; x < w/2; x++ {
			if m.tiles[y*w+x] != m.tiles[y*w+w-1-x] {
				n++
			}
		}
	}
	return n
}

// Rows renders the mask as text, one string per row.
func (m *Mask) Rows() []string {
	rows := make([]string, m.Height)
	var sb strings.Builder
	for y := 0; y < m.Height; y++ {
		sb.Reset()
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) == Land {
				sb.WriteByte(LandGlyph)
			} else {
				sb.WriteByte(WaterGlyph)
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

// Fingerprint returns a short stable hash of the mask dimensions and tiles.
func (m *Mask) Fingerprint() string {
	h, _ := blake2b.New(16, nil)
	fmt.Fprintf(h, "%dx%d:", m.Width, m.Height)
	buf := make([]byte, len(m.tiles))
	for i, t := range m.tiles {
		buf[i] = byte(t)
	}
	h.Write(buf)
	return hex.EncodeToString(h.Sum(nil))
}
