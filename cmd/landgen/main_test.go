package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lawnchairsociety/landforge/internal/catalog"
	"github.com/lawnchairsociety/landforge/internal/export"
	"github.com/lawnchairsociety/landforge/internal/landgen"
	"github.com/lawnchairsociety/landforge/internal/mapsize"
	"github.com/lawnchairsociety/landforge/internal/render"
)

func TestParseStyles(t *testing.T) {
	all, err := parseStyles(" ALL ")
	if err != nil || len(all) != len(landgen.Styles()) {
		t.Fatalf("all = %v, %v", all, err)
	}

	got, err := parseStyles("pangea, mirror,,pangea")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != landgen.Pangea || got[1] != landgen.Mirror {
		t.Errorf("got %v, want [pangea mirror]", got)
	}

	if _, err := parseStyles("pangea,terraa"); !errors.Is(err, landgen.ErrUnknownStyle) {
		t.Errorf("expected ErrUnknownStyle, got %v", err)
	}
	if _, err := parseStyles(" , "); !errors.Is(err, landgen.ErrUnknownStyle) {
		t.Errorf("expected an error for an empty list, got %v", err)
	}
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	o, err := parseFlags([]string{"-size", "tiny"}, &stderr)
	if err != nil {
		t.Fatal(err)
	}
	if !o.randomize {
		t.Error("an unset seed should be randomized")
	}

	o, err = parseFlags([]string{"-seed", "0"}, &stderr)
	if err != nil {
		t.Fatal(err)
	}
	if o.randomize || o.seed != 0 {
		t.Error("an explicit seed of 0 must be kept")
	}

	if _, err := parseFlags([]string{"-cell", "4"}, &stderr); !errors.Is(err, render.ErrCellSize) {
		t.Errorf("expected ErrCellSize, got %v", err)
	}
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	var stdout bytes.Buffer

	args := []string{
		"-size", "duel",
		"-seed", "7",
		"-styles", "pangea,terra",
		"-cell", "10",
		"-out", dir,
		"-params", filepath.Join(dir, "missing.yml"),
		"-db", dbPath,
		"-ascii",
	}
	if err := run(args, &stdout); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, style := range []string{"pangea", "terra"} {
		for _, ext := range []string{".png", ".yaml"} {
			path := filepath.Join(dir, "seed_7", style+ext)
			if _, err := os.Stat(path); err != nil {
				t.Errorf("missing output %s: %v", path, err)
			}
		}
	}

	doc, err := export.Load(filepath.Join(dir, "seed_7", "pangea.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Size != mapsize.Duel.String() || doc.Seed != 7 || doc.Style != "pangea" {
		t.Errorf("unexpected document header: %+v", doc)
	}

	out := stdout.String()
	if !strings.Contains(out, "seed 7") || !strings.Contains(out, "terra") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "#") {
		t.Error("expected a terminal preview")
	}

	cat, err := catalog.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()
	runs, err := cat.ListRuns(catalog.RunFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 recorded runs, got %d", len(runs))
	}
}

func TestRunRejectsUnknownSize(t *testing.T) {
	err := run([]string{"-size", "hug", "-out", t.TempDir()}, &bytes.Buffer{})
	if !errors.Is(err, mapsize.ErrUnknownSize) {
		t.Fatalf("expected ErrUnknownSize, got %v", err)
	}
	if !strings.Contains(err.Error(), `"huge"`) {
		t.Errorf("expected a suggestion, got %q", err.Error())
	}
}
