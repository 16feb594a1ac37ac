// Package export writes generation results as YAML documents.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/landforge/internal/landgen"
	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/mapsize"
)

// ErrMalformed is returned when a document's rows do not form a grid.
var ErrMalformed = errors.New("export: malformed document")

// Document is the on-disk form of a run. Field order is the key order
// in the written YAML.
type Document struct {
	Size        string   `yaml:"size"`
	Style       string   `yaml:"style"`
	Seed        int64    `yaml:"seed"`
	Width       int      `yaml:"width"`
	Height      int      `yaml:"height"`
	Fingerprint string   `yaml:"fingerprint"`
	Iterations  int      `yaml:"iterations"`
	Enforced    bool     `yaml:"enforced"`
	Fallback    bool     `yaml:"fallback"`
	Analysis    Analysis `yaml:"analysis"`
	Terra       *Terra   `yaml:"terra,omitempty"`
	Rows        []string `yaml:"rows"`
}

// Analysis is the summary block of a Document.
type Analysis struct {
	Land         int     `yaml:"land"`
	Total        int     `yaml:"total"`
	LandRatio    float64 `yaml:"land_ratio"`
	LargestRatio float64 `yaml:"largest_ratio"`
	SecondRatio  float64 `yaml:"second_ratio"`
	Components   int     `yaml:"components"`
	Islands      int     `yaml:"islands"`
	Lakes        int     `yaml:"lakes"`
}

// Terra describes the barrier of a terra run.
type Terra struct {
	Vertical     bool `yaml:"vertical"`
	BarrierStart int  `yaml:"barrier_start"`
	BarrierWidth int  `yaml:"barrier_width"`
}

// NewDocument captures res, generated on the given size preset.
func NewDocument(size mapsize.Size, res *landgen.Result) *Document {
	a := res.Analysis
	d := &Document{
		Size:        size.String(),
		Style:       res.Style.String(),
		Seed:        res.Seed,
		Width:       res.Mask.Width,
		Height:      res.Mask.Height,
		Fingerprint: res.Mask.Fingerprint(),
		Iterations:  res.Iterations,
		Enforced:    res.Enforced,
		Fallback:    res.Fallback,
		Analysis: Analysis{
			Land:         a.Land,
			Total:        a.Total,
			LandRatio:    a.LandRatio,
			LargestRatio: a.LargestRatio,
			SecondRatio:  a.SecondRatio,
			Components:   a.Components,
			Islands:      a.Islands,
			Lakes:        a.Lakes,
		},
		Rows: res.Mask.Rows(),
	}
	if t := res.Terra; t != nil {
		d.Terra = &Terra{Vertical: t.Vertical, BarrierStart: t.BarrierStart, BarrierWidth: t.BarrierWidth}
	}
	return d
}

// Encode writes d to w with two-space indentation.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return enc.Close()
}

// Save writes d to path, creating parent directories.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := d.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads a document written by Save.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &d, nil
}

// Mask rebuilds the land mask from the document rows and checks it against
// the recorded dimensions and fingerprint.
func (d *Document) Mask() (*landmask.Mask, error) {
	m, err := landmask.FromRows(d.Rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if m.Width != d.Width || m.Height != d.Height {
		return nil, fmt.Errorf("%w: rows are %dx%d, header says %dx%d", ErrMalformed, m.Width, m.Height, d.Width, d.Height)
	}
	if d.Fingerprint != "" && m.Fingerprint() != d.Fingerprint {
		return nil, fmt.Errorf("%w: fingerprint mismatch", ErrMalformed)
	}
	return m, nil
}
