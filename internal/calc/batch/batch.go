// Package batch evaluates many profiles concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"Vsa/internal/calc/deviation"
	"Vsa/internal/calc/presets"
	"Vsa/internal/calc/vsa"
)

var ErrNoItems = errors.New("batch: no items")

// Limit caps the number of profiles computed at once.
var Limit = runtime.GOMAXPROCS(0)

type Row struct {
	Preset    string                 `json:"preset"`
	DepthUsed string                 `json:"depth_used"`
	Vsa       map[vsa.Method]float64 `json:"vsa"`
	Expected  deviation.Expected     `json:"expected,omitempty"`
	Diff      map[vsa.Method]string  `json:"diff,omitempty"`
	Result    vsa.Result             `json:"-"`
}

type Report struct {
	TargetDepth float64 `json:"target_depth,omitempty"`
	Results     []Row   `json:"results"`
	Summary     []Stat  `json:"summary"`
}

// Presets computes every preset with the MOC formula. A positive
// targetDepth trims both method groups to it; otherwise the full profile is
// used and the rows carry the published values with signed differences.
// Presets that cannot be computed are left out.
func Presets(ctx context.Context, ps []presets.Preset, targetDepth float64) (Report, error) {
	if len(ps) == 0 {
		return Report{}, ErrNoItems
	}
	custom := targetDepth > 0
	depth, mode := math.Inf(1), vsa.ModeTotal
	if custom {
		depth, mode = targetDepth, vsa.ModeTarget
	}

	rows := make([]*Row, len(ps))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(Limit)
	for i, p := range ps {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rho := p.DefaultRho
			if rho <= 0 {
				rho = vsa.DefaultRho
			}
			res, err := vsa.ComputeResults(p.Layers, rho, depth, depth, mode, vsa.FormulaMOC)
			if err != nil {
				slog.Warn("batch: preset skipped", "preset", p.Name, "error", err)
				return nil
			}
			row := newRow(p.Name, res)
			if !custom {
				row.compare(p.Expected)
			}
			rows[i] = &row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	rep := Report{Results: make([]Row, 0, len(rows))}
	if custom {
		rep.TargetDepth = targetDepth
	}
	results := make([]vsa.Result, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			rep.Results = append(rep.Results, *r)
			results = append(results, r.Result)
		}
	}
	rep.Summary = Summary(results)
	return rep, nil
}

func newRow(name string, res vsa.Result) Row {
	row := Row{
		Preset:    name,
		DepthUsed: fmt.Sprintf("%.1fm", res.HUsed),
		Vsa:       make(map[vsa.Method]float64, len(vsa.Methods)),
		Result:    res,
	}
	for _, m := range vsa.Methods {
		row.Vsa[m], _ = res.Vsa(m)
	}
	return row
}

func (r *Row) compare(expected deviation.Expected) {
	if len(expected) == 0 {
		return
	}
	r.Expected = expected
	r.Diff = make(map[vsa.Method]string, len(vsa.Methods))
	for _, m := range vsa.Methods {
		exp, ok := expected[m]
		r.Diff[m] = deviation.FormatDiff(r.Vsa[m], exp, ok)
	}
}

type Outcome struct {
	Result *vsa.Result `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Profiles runs vsa.Calculate on every input. Outcomes keep the input
// order and carry the error text of inputs that failed.
func Profiles(ctx context.Context, inputs []vsa.Input) ([]Outcome, error) {
	if len(inputs) == 0 {
		return nil, ErrNoItems
	}
	out := make([]Outcome, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(Limit)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := vsa.Calculate(in)
			if err != nil {
				out[i].Error = err.Error()
				return nil
			}
			out[i].Result = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type Stat struct {
	Method vsa.Method `json:"method"`
	N      int        `json:"n"`
	Mean   float64    `json:"mean"`
	StdDev float64    `json:"std_dev"`
	Min    float64    `json:"min"`
	Max    float64    `json:"max"`
}

// Summary aggregates the velocity of every method over results.
func Summary(results []vsa.Result) []Stat {
	if len(results) == 0 {
		return nil
	}
	out := make([]Stat, 0, len(vsa.Methods))
	xs := make([]float64, len(results))
	for _, m := range vsa.Methods {
		for i, r := range results {
			xs[i], _ = r.Vsa(m)
		}
		s := Stat{
			Method: m,
			N:      len(xs),
			Mean:   stat.Mean(xs, nil),
			Min:    floats.Min(xs),
			Max:    floats.Max(xs),
		}
		if len(xs) > 1 {
			s.StdDev = stat.StdDev(xs, nil)
		}
		out = append(out, s)
	}
	return out
}
