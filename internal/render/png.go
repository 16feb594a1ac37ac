package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/lawnchairsociety/landforge/internal/landmask"
)

// MinCell is the smallest hex width in pixels.
const MinCell = 10

// ErrCellSize is returned for cells smaller than MinCell.
var ErrCellSize = errors.New("render: cell size too small")

var palette = map[Class]color.RGBA{
	Ocean:   {R: 28, G: 63, B: 110, A: 255},
	Lake:    {R: 64, G: 140, B: 200, A: 255},
	Pond:    {R: 96, G: 160, B: 190, A: 255},
	Land:    {R: 74, G: 128, B: 62, A: 255},
	Island:  {R: 196, G: 170, B: 96, A: 255},
	Barrier: {R: 18, G: 38, B: 70, A: 255},
}

// Hex rasterizes m as pointy-top hexes, cell pixels wide, with odd rows
// shifted right by half a cell. classes may be nil.
func Hex(m *landmask.Mask, classes []Class, cell int) (*image.RGBA, error) {
	if cell < MinCell {
		return nil, fmt.Errorf("%w: %d (minimum %d)", ErrCellSize, cell, MinCell)
	}
	if classes == nil {
		classes = Classify(m, nil, nil, nil)
	}

	r := float64(cell) / 2 // half width and half height
	rowStep := 1.5 * r
	w := int(math.Ceil(float64(m.Width)*float64(cell) + r))
	h := int(math.Ceil(float64(m.Height-1)*rowStep + 2*r))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: palette[Ocean]}, image.Point{}, draw.Src)

	for i := 0; i < m.Len(); i++ {
		x, y := m.Coord(i)
		cx := float64(x)*float64(cell) + r
		if y%2 == 1 {
			cx += r
		}
		cy := float64(y)*rowStep + r
		fillHex(img, cx, cy, r, palette[classes[i]])
	}
	return img, nil
}

// fillHex paints every pixel whose center lies inside the hex at (cx, cy).
func fillHex(img *image.RGBA, cx, cy, r float64, c color.RGBA) {
	b := img.Bounds()
	x0 := max(int(math.Floor(cx-r)), b.Min.X)
	x1 := min(int(math.Ceil(cx+r)), b.Max.X)
	y0 := max(int(math.Floor(cy-r)), b.Min.Y)
	y1 := min(int(math.Ceil(cy+r)), b.Max.Y)
	for py := y0; py < y1; py++ {
		dy := math.Abs(float64(py) + 0.5 - cy)
		for px := x0; px < x1; px++ {
			dx := math.Abs(float64(px) + 0.5 - cx)
			if dx <= r && dy <= r-dx/2 {
				img.SetRGBA(px, py, c)
			}
		}
	}
}

// WritePNG encodes the hex raster of m to w.
func WritePNG(w io.Writer, m *landmask.Mask, classes []Class, cell int) error {
	img, err := Hex(m, classes, cell)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes the hex raster of m to path, creating parent directories.
func SavePNG(path string, m *landmask.Mask, classes []Class, cell int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WritePNG(f, m, classes, cell); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
