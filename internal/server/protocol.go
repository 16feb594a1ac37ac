package server

import (
	"github.com/lawnchairsociety/landforge/internal/landgen"
	"github.com/lawnchairsociety/landforge/internal/mapsize"
)

// Request types understood by the preview endpoint.
const (
	RequestGenerate = "generate"
	RequestInfo     = "info"
)

// Request is one client message. An empty Type means generate.
type Request struct {
	Type  string `json:"type,omitempty"`
	ID    string `json:"id,omitempty"` // echoed back so clients can match replies
	Size  string `json:"size"`
	Seed  int64  `json:"seed"`
	Style string `json:"style"`
}

// Response is the reply to a Request. Error is set on failure and the map
// fields are left empty.
type Response struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`

	Size        string        `json:"size,omitempty"`
	Width       int           `json:"width,omitempty"`
	Height      int           `json:"height,omitempty"`
	Seed        int64         `json:"seed"`
	Style       string        `json:"style,omitempty"`
	Rows        []string      `json:"rows,omitempty"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	Analysis    *AnalysisView `json:"analysis,omitempty"`
	Iterations  int           `json:"iterations,omitempty"`
	Enforced    bool          `json:"enforced,omitempty"`
	Fallback    bool          `json:"fallback,omitempty"`
	RunID       string        `json:"run_id,omitempty"`

	Sizes  []string `json:"sizes,omitempty"`
	Styles []string `json:"styles,omitempty"`
}

// AnalysisView is the wire form of a landgen.Analysis.
type AnalysisView struct {
	Land         int     `json:"land"`
	Total        int     `json:"total"`
	LandRatio    float64 `json:"land_ratio"`
	LargestRatio float64 `json:"largest_ratio"`
	SecondRatio  float64 `json:"second_ratio"`
	Components   int     `json:"components"`
	Islands      int     `json:"islands"`
	Lakes        int     `json:"lakes"`
}

func newAnalysisView(a *landgen.Analysis) *AnalysisView {
	return &AnalysisView{
		Land:         a.Land,
		Total:        a.Total,
		LandRatio:    a.LandRatio,
		LargestRatio: a.LargestRatio,
		SecondRatio:  a.SecondRatio,
		Components:   a.Components,
		Islands:      a.Islands,
		Lakes:        a.Lakes,
	}
}

func generateResponse(req Request, size mapsize.Size, res *landgen.Result) Response {
	return Response{
		Type:        RequestGenerate,
		ID:          req.ID,
		Size:        size.String(),
		Width:       res.Mask.Width,
		Height:      res.Mask.Height,
		Seed:        res.Seed,
		Style:       res.Style.String(),
		Rows:        res.Mask.Rows(),
		Fingerprint: res.Mask.Fingerprint(),
		Analysis:    newAnalysisView(res.Analysis),
		Iterations:  res.Iterations,
		Enforced:    res.Enforced,
		Fallback:    res.Fallback,
	}
}

func infoResponse(req Request) Response {
	resp := Response{Type: RequestInfo, ID: req.ID}
	for _, s := range mapsize.All() {
		resp.Sizes = append(resp.Sizes, s.String())
	}
	for _, s := range landgen.Styles() {
		resp.Styles = append(resp.Styles, s.String())
	}
	return resp
}

func errorResponse(req Request, err error) Response {
	t := req.Type
	if t == "" {
		t = RequestGenerate
	}
	return Response{Type: t, ID: req.ID, Seed: req.Seed, Error: err.Error()}
}
