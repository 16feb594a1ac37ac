// Command landgen generates land masks for one seed and writes a hex PNG
// and a YAML document per style.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/lawnchairsociety/landforge/internal/catalog"
	"github.com/lawnchairsociety/landforge/internal/export"
	"github.com/lawnchairsociety/landforge/internal/landgen"
	"github.com/lawnchairsociety/landforge/internal/logger"
	"github.com/lawnchairsociety/landforge/internal/mapsize"
	"github.com/lawnchairsociety/landforge/internal/params"
	"github.com/lawnchairsociety/landforge/internal/render"
)

type options struct {
	size      string
	seed      int64
	styles    string
	cell      int
	out       string
	params    string
	logging   string
	db        string
	ascii     bool
	workers   int
	randomize bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("landgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.size, "size", "standard", "Map size: duel, tiny, small, standard, large, huge")
	fs.Int64Var(&o.seed, "seed", 0, "Generation seed (default: random based on current time)")
	fs.StringVar(&o.styles, "styles", "all", "Comma-separated styles, or all")
	fs.IntVar(&o.cell, "cell", 16, fmt.Sprintf("Hex width in pixels (at least %d)", render.MinCell))
	fs.StringVar(&o.out, "out", "out", "Output root; files go to <out>/seed_<seed>/")
	fs.StringVar(&o.params, "params", "", "Path to landmasses YAML (default: $"+params.EnvPath+" or "+params.DefaultPath+")")
	fs.StringVar(&o.logging, "logging", "", "Path to logging config YAML file (default: warnings only)")
	fs.StringVar(&o.db, "db", "", "Record runs in this SQLite catalog")
	fs.BoolVar(&o.ascii, "ascii", false, "Print a coloured terminal preview of each map")
	fs.IntVar(&o.workers, "workers", runtime.NumCPU(), "Styles generated in parallel")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.randomize = true
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			o.randomize = false
		}
	})
	if o.cell < render.MinCell {
		return o, fmt.Errorf("%w: -cell %d (minimum %d)", render.ErrCellSize, o.cell, render.MinCell)
	}
	return o, nil
}

// parseStyles resolves a comma list of style names. Duplicates are dropped.
func parseStyles(list string) ([]landgen.Style, error) {
	if strings.EqualFold(strings.TrimSpace(list), "all") {
		return landgen.Styles(), nil
	}
	var out []landgen.Style
	seen := make(map[landgen.Style]bool)
	for _, tok := range strings.Split(list, ",") {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		s, err := landgen.ParseStyle(tok)
		if err != nil {
			return nil, err
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty style list", landgen.ErrUnknownStyle)
	}
	return out, nil
}

// output is one finished style.
type output struct {
	res      *landgen.Result
	elapsed  time.Duration
	pngPath  string
	yamlPath string
	pngSize  int64
}

func run(args []string, stdout io.Writer) error {
	o, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	if o.logging != "" {
		logConfig, err := logger.LoadConfig(o.logging)
		if err != nil {
			return err
		}
		if err := logger.Initialize(logConfig); err != nil {
			return err
		}
		defer logger.Close()
	} else {
		logger.SetOutput(os.Stderr, "WARNING")
	}

	size, err := mapsize.Parse(o.size)
	if err != nil {
		return err
	}
	styles, err := parseStyles(o.styles)
	if err != nil {
		return err
	}
	paramsPath := params.ResolvePath(o.params)
	p, err := params.Load(paramsPath)
	if err != nil {
		return err
	}
	if o.randomize {
		o.seed = time.Now().UnixNano()
		logger.Info("Seed selected", "seed", o.seed, "random", true)
	}

	dir := filepath.Join(o.out, fmt.Sprintf("seed_%d", o.seed))
	outputs := make([]output, len(styles))

	var g errgroup.Group
	g.SetLimit(max(o.workers, 1))
	for i, style := range styles {
		i, style := i, style
		g.Go(func() error {
			start := time.Now()
			res, err := landgen.Generate(size, o.seed, style, p)
			if err != nil {
				return fmt.Errorf("%s: %w", style, err)
			}
			out := output{
				res:      res,
				elapsed:  time.Since(start),
				pngPath:  filepath.Join(dir, style.String()+".png"),
				yamlPath: filepath.Join(dir, style.String()+".yaml"),
			}
			if err := render.SavePNG(out.pngPath, res.Mask, render.ClassifyResult(res, p), o.cell); err != nil {
				return err
			}
			if info, err := os.Stat(out.pngPath); err == nil {
				out.pngSize = info.Size()
			}
			if err := export.NewDocument(size, res).Save(out.yamlPath); err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if o.db != "" {
		if err := record(o.db, size, outputs); err != nil {
			return err
		}
	}

	w, h := size.Dimensions()
	fmt.Fprintf(stdout, "%s map %dx%d (%s tiles), seed %d, params %s\n",
		size, w, h, humanize.Comma(int64(w*h)), o.seed, paramsPath)
	for _, out := range outputs {
		printSummary(stdout, out)
		if o.ascii {
			fmt.Fprint(stdout, render.Terminal(out.res.Mask, render.ClassifyResult(out.res, p)))
		}
	}
	if o.ascii {
		fmt.Fprintln(stdout, render.Legend())
	}
	return nil
}

func printSummary(w io.Writer, out output) {
	a := out.res.Analysis
	note := ""
	switch {
	case out.res.Fallback:
		note = " [fallback]"
	case out.res.Enforced:
		note = " [enforced]"
	}
	fmt.Fprintf(w, "%-18s land %s (%.1f%%)  largest %.0f%%  %d components  %d islands  %d lakes  %d iterations  %s%s\n",
		out.res.Style, humanize.Comma(int64(a.Land)), a.LandRatio*100, a.LargestRatio*100,
		a.Components, a.Islands, a.Lakes, out.res.Iterations, out.elapsed.Round(time.Millisecond), note)
	fmt.Fprintf(w, "%-18s wrote %s (%s), %s\n", "", out.pngPath, humanize.Bytes(uint64(out.pngSize)), out.yamlPath)
}

// record saves every output in the catalog at path.
func record(path string, size mapsize.Size, outputs []output) error {
	cat, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer cat.Close()

	for _, out := range outputs {
		run := catalog.NewRun(size, out.res)
		if err := cat.SaveRun(run); err != nil {
			return fmt.Errorf("failed to record %s: %w", out.res.Style, err)
		}
		logger.Info("Run recorded", "id", run.ID, "style", out.res.Style, "fingerprint", run.Fingerprint)
	}
	return nil
}
