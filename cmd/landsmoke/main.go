// Command landsmoke runs smoke checks against a running landserve.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lawnchairsociety/landforge/internal/smoke"
)

func main() {
	url := flag.String("url", "ws://localhost:4480/ws", "Preview server WebSocket URL")
	origin := flag.String("origin", "", "Origin header to send (default: none)")
	size := flag.String("size", "tiny", "Map size to request")
	seed := flag.Int64("seed", 7, "Seed to request")
	timeout := flag.Duration("timeout", 30*time.Second, "Per-request timeout")
	verbose := flag.Bool("v", false, "Verbose output - show detailed actions for each check")
	flag.Parse()

	fmt.Printf("Probing preview server at %s\n", *url)
	if *verbose {
		fmt.Println("Verbose mode enabled - showing detailed smoke actions")
	}
	fmt.Println()

	r := &smoke.Runner{
		URL:     *url,
		Origin:  *origin,
		Size:    *size,
		Seed:    *seed,
		Timeout: *timeout,
		Verbose: *verbose,
		Log:     os.Stdout,
	}
	if failed := smoke.PrintResults(os.Stdout, r.RunAll()); failed > 0 {
		os.Exit(1)
	}
}
