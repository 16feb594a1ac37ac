package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/landforge/internal/landgen"
	"github.com/lawnchairsociety/landforge/internal/mapsize"
)

// ErrNotFound is returned when a run lookup fails.
var ErrNotFound = errors.New("catalog: run not found")

// ErrDuplicateRun is returned when a run ID is already recorded.
var ErrDuplicateRun = errors.New("catalog: run already recorded")

// Run is one recorded generation.
type Run struct {
	ID           string
	Size         string
	Width        int
	Height       int
	Seed         int64
	Style        string
	Fingerprint  string
	LandRatio    float64
	LargestRatio float64
	Components   int
	Islands      int
	Lakes        int
	Iterations   int
	Enforced     bool
	Fallback     bool
	Rows         []string
	CreatedAt    time.Time
}

// NewRun captures a generation result. The ID is assigned on save.
func NewRun(size mapsize.Size, res *landgen.Result) *Run {
	a := res.Analysis
	return &Run{
		Size:         size.String(),
		Width:        res.Mask.Width,
		Height:       res.Mask.Height,
		Seed:         res.Seed,
		Style:        res.Style.String(),
		Fingerprint:  res.Mask.Fingerprint(),
		LandRatio:    a.LandRatio,
		LargestRatio: a.LargestRatio,
		Components:   a.Components,
		Islands:      a.Islands,
		Lakes:        a.Lakes,
		Iterations:   res.Iterations,
		Enforced:     res.Enforced,
		Fallback:     res.Fallback,
		Rows:         res.Mask.Rows(),
	}
}

// SaveRun inserts r, assigning a fresh ID and timestamp when they are unset.
func (c *Catalog) SaveRun(r *Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := c.db.Exec(c.qb.Build(`
		INSERT INTO runs (id, size, width, height, seed, style, fingerprint,
			land_ratio, largest_ratio, components, islands, lakes, iterations,
			enforced, fallback, tiles, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.Size, r.Width, r.Height, r.Seed, r.Style, r.Fingerprint,
		r.LandRatio, r.LargestRatio, r.Components, r.Islands, r.Lakes, r.Iterations,
		boolToInt(r.Enforced), boolToInt(r.Fallback), strings.Join(r.Rows, "\n"), r.CreatedAt,
	)
	if err != nil {
		if c.dialect.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateRun, r.ID)
		}
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

const runColumns = `id, size, width, height, seed, style, fingerprint,
	land_ratio, largest_ratio, components, islands, lakes, iterations,
	enforced, fallback, tiles, created_at`

// GetRun retrieves a run by ID.
func (c *Catalog) GetRun(id string) (*Run, error) {
	row := c.db.QueryRow(c.qb.Build(`SELECT `+runColumns+` FROM runs WHERE id = ?`), id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// RunFilter narrows ListRuns. Zero fields match everything.
type RunFilter struct {
	Seed  *int64
	Style string
	Size  string
	Limit int
}

// ListRuns returns recorded runs, newest first.
func (c *Catalog) ListRuns(f RunFilter) ([]*Run, error) {
	var where []string
	var args []any
	if f.Seed != nil {
		where = append(where, "seed = ?")
		args = append(args, *f.Seed)
	}
	if f.Style != "" {
		where = append(where, "style = ?")
		args = append(args, f.Style)
	}
	if f.Size != "" {
		where = append(where, "size = ?")
		args = append(args, f.Size)
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := c.db.Query(c.qb.Build(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FindByFingerprint returns every run that produced the given mask.
func (c *Catalog) FindByFingerprint(fingerprint string) ([]*Run, error) {
	rows, err := c.db.Query(c.qb.Build(`SELECT `+runColumns+` FROM runs WHERE fingerprint = ? ORDER BY created_at`), fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to query fingerprint: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run.
func (c *Catalog) DeleteRun(id string) error {
	res, err := c.db.Exec(c.qb.Build(`DELETE FROM runs WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	var enforced, fallback int
	var rows string
	err := s.Scan(&r.ID, &r.Size, &r.Width, &r.Height, &r.Seed, &r.Style, &r.Fingerprint,
		&r.LandRatio, &r.LargestRatio, &r.Components, &r.Islands, &r.Lakes, &r.Iterations,
		&enforced, &fallback, &rows, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Enforced = enforced != 0
	r.Fallback = fallback != 0
	if rows != "" {
		r.Rows = strings.Split(rows, "\n")
	}
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
