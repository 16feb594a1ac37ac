package smoke

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lawnchairsociety/landforge/internal/landmask"
	"github.com/lawnchairsociety/landforge/internal/server"
)

// Result is the outcome of one scenario.
type Result struct {
	Name    string
	Passed  bool
	Message string
}

// Runner runs smoke scenarios against one server.
type Runner struct {
	URL     string
	Origin  string
	Size    string
	Seed    int64
	Timeout time.Duration

	// Verbose writes each action to Log.
	Verbose bool
	Log     io.Writer
}

func (r *Runner) logAction(name, format string, args ...any) {
	if r.Verbose && r.Log != nil {
		fmt.Fprintf(r.Log, "  [%s] %s\n", name, fmt.Sprintf(format, args...))
	}
}

func (r *Runner) dial() (*Client, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return Dial(r.URL, r.Origin, timeout)
}

// RunAll runs every scenario in order.
func (r *Runner) RunAll() []Result {
	scenarios := []struct {
		name string
		run  func(name string) Result
	}{
		{"Info", r.testInfo},
		{"EveryStyle", r.testEveryStyle},
		{"Determinism", r.testDeterminism},
		{"MirrorSymmetry", r.testMirrorSymmetry},
		{"UnknownStyle", r.testUnknownStyle},
	}
	results := make([]Result, 0, len(scenarios))
	for _, s := range scenarios {
		results = append(results, s.run(s.name))
	}
	return results
}

func fail(name, format string, args ...any) Result {
	return Result{Name: name, Message: fmt.Sprintf(format, args...)}
}

func pass(name, format string, args ...any) Result {
	return Result{Name: name, Passed: true, Message: fmt.Sprintf(format, args...)}
}

func (r *Runner) testInfo(name string) Result {
	c, err := r.dial()
	if err != nil {
		return fail(name, "%v", err)
	}
	defer c.Close()

	resp, err := c.Info()
	if err != nil {
		return fail(name, "%v", err)
	}
	r.logAction(name, "sizes %v, styles %v", resp.Sizes, resp.Styles)
	if len(resp.Sizes) == 0 || len(resp.Styles) == 0 {
		return fail(name, "empty info reply")
	}
	return pass(name, "%d sizes, %d styles", len(resp.Sizes), len(resp.Styles))
}

// checkMap verifies the rows of a reply match its header and keep the
// border water.
func checkMap(resp server.Response) (*landmask.Mask, error) {
	m, err := landmask.FromRows(resp.Rows)
	if err != nil {
		return nil, err
	}
	if m.Width != resp.Width || m.Height != resp.Height {
		return nil, fmt.Errorf("rows are %dx%d, header says %dx%d", m.Width, m.Height, resp.Width, resp.Height)
	}
	if m.Fingerprint() != resp.Fingerprint {
		return nil, fmt.Errorf("fingerprint mismatch")
	}
	for i := 0; i < m.Len(); i++ {
		if m.OnBorder(i) && m.IsLand(i) {
			x, y := m.Coord(i)
			return nil, fmt.Errorf("land on the border at (%d,%d)", x, y)
		}
	}
	if resp.Analysis == nil || resp.Analysis.Land != m.LandCount() {
		return nil, fmt.Errorf("analysis does not match the rows")
	}
	return m, nil
}

func (r *Runner) testEveryStyle(name string) Result {
	c, err := r.dial()
	if err != nil {
		return fail(name, "%v", err)
	}
	defer c.Close()

	info, err := c.Info()
	if err != nil {
		return fail(name, "%v", err)
	}
	for _, style := range info.Styles {
		resp, err := c.Generate(r.Size, r.Seed, style)
		if err != nil {
			return fail(name, "%s: %v", style, err)
		}
		if _, err := checkMap(resp); err != nil {
			return fail(name, "%s: %v", style, err)
		}
		r.logAction(name, "%s: land %.2f, %d components, %d islands, %d lakes",
			style, resp.Analysis.LandRatio, resp.Analysis.Components, resp.Analysis.Islands, resp.Analysis.Lakes)
	}
	return pass(name, "%d styles generated on %s", len(info.Styles), r.Size)
}

func (r *Runner) testDeterminism(name string) Result {
	var prints []string
	for i := 0; i < 2; i++ {
		c, err := r.dial()
		if err != nil {
			return fail(name, "%v", err)
		}
		resp, err := c.Generate(r.Size, r.Seed, "continents")
		c.Close()
		if err != nil {
			return fail(name, "%v", err)
		}
		r.logAction(name, "connection %d: fingerprint %s", i+1, resp.Fingerprint)
		prints = append(prints, resp.Fingerprint)
	}
	if prints[0] != prints[1] {
		return fail(name, "fingerprints differ: %s vs %s", prints[0], prints[1])
	}
	return pass(name, "same seed gave the same map on two connections")
}

func (r *Runner) testMirrorSymmetry(name string) Result {
	c, err := r.dial()
	if err != nil {
		return fail(name, "%v", err)
	}
	defer c.Close()

	resp, err := c.Generate(r.Size, r.Seed, "mirror")
	if err != nil {
		return fail(name, "%v", err)
	}
	m, err := checkMap(resp)
	if err != nil {
		return fail(name, "%v", err)
	}
	if n := m.MirrorMismatches(); n != 0 {
		return fail(name, "%d tiles differ from their mirror twin", n)
	}
	return pass(name, "mirror map is symmetric")
}

func (r *Runner) testUnknownStyle(name string) Result {
	c, err := r.dial()
	if err != nil {
		return fail(name, "%v", err)
	}
	defer c.Close()

	resp, err := c.Do(server.Request{Size: r.Size, Seed: r.Seed, Style: "pangaea"})
	if err != nil {
		return fail(name, "%v", err)
	}
	r.logAction(name, "error reply: %s", resp.Error)
	if !strings.Contains(resp.Error, `"pangea"`) {
		return fail(name, "expected a suggestion for pangea, got %q", resp.Error)
	}
	if len(resp.Rows) != 0 {
		return fail(name, "error reply carried rows")
	}
	return pass(name, "unknown style rejected with a suggestion")
}

// PrintResults writes a report and returns the number of failures.
func PrintResults(w io.Writer, results []Result) int {
	passed := 0
	failed := 0

	fmt.Fprintln(w, "============================================================")
	fmt.Fprintln(w, "Preview Server Smoke Results")
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintln(w)

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
			failed++
		} else {
			passed++
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", status, r.Name, r.Message)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "------------------------------------------------------------")
	fmt.Fprintf(w, "Total: %d | Passed: %d | Failed: %d\n", len(results), passed, failed)
	fmt.Fprintln(w, "------------------------------------------------------------")
	return failed
}
