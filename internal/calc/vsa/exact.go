package vsa

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// impedanceEps keeps the transfer matrix finite at w = 0.
const impedanceEps = 1e-10

// Solver finds the fundamental period of a layered column over a rigid
// base. The frequency axis is scanned from Step up to Ceiling and the first
// sign change of the boundary term is refined by bisection down to Tol.
type Solver struct {
	Step    float64 `json:"step"`    // rad/s
	Ceiling float64 `json:"ceiling"` // rad/s
	Tol     float64 `json:"tol"`     // rad/s
}

// DefaultSolver resolves periods down to 2*pi/1000 s and agrees with the
// published exact values of the literature presets within 1%.
var DefaultSolver = Solver{Step: 0.01, Ceiling: 1000, Tol: 1e-6}

// PeriodExact solves the transfer-matrix period with DefaultSolver.
func PeriodExact(layers []Layer, defaultRho float64) (float64, error) {
	return DefaultSolver.Period(layers, defaultRho)
}

func (sv Solver) Period(layers []Layer, defaultRho float64) (float64, error) {
	col, err := baseUp(layers, defaultRho)
	if err != nil {
		return 0, err
	}
	step, ceiling, tol := sv.Step, sv.Ceiling, sv.Tol
	if !(step > 0) {
		step = DefaultSolver.Step
	}
	if !(ceiling > step) {
		ceiling = DefaultSolver.Ceiling
	}
	if !(tol > 0) {
		tol = DefaultSolver.Tol
	}

	c := newColumn(col)
	prev := c.boundary(0)
	for k := 1; ; k++ {
		w := float64(k) * step
		if w >= ceiling {
			break
		}
		f := c.boundary(w)
		if f*prev <= 0 {
			a, b := w-step, w
			for b-a > tol {
				mid := (a + b) / 2
				if c.boundary(mid)*prev <= 0 {
					b = mid
				} else {
					a = mid
				}
			}
			return 2 * math.Pi / ((a + b) / 2), nil
		}
		prev = f
	}
	return 0, ErrNoRoot
}

// column holds the reusable matrices of one boundary evaluation.
type column struct {
	layers       []soil
	layer, total *mat.Dense
	next         mat.Dense
}

func newColumn(col []soil) *column {
	return &column{
		layers: col,
		layer:  mat.NewDense(2, 2, nil),
		total:  mat.NewDense(2, 2, nil),
	}
}

// boundary composes the layer matrices base-up and returns M22 of the
// product, which vanishes at the natural frequencies of the column.
func (c *column) boundary(w float64) float64 {
	c.total.Copy(identity)
	for _, s := range c.layers {
		alpha := w * s.d / s.vs
		cos, sin := math.Cos(alpha), math.Sin(alpha)
		z := s.rho * s.vs * w
		c.layer.Set(0, 0, cos)
		c.layer.Set(0, 1, sin/(z+impedanceEps))
		c.layer.Set(1, 0, -z*sin)
		c.layer.Set(1, 1, cos)
		c.next.Mul(c.layer, c.total)
		c.total.Copy(&c.next)
	}
	return c.total.At(1, 1)
}

var identity = mat.NewDiagDense(2, []float64{1, 1})

// VsaExact is the velocity of the exact period.
func VsaExact(layers []Layer, defaultRho float64) (float64, error) {
	t, err := PeriodExact(layers, defaultRho)
	if err != nil {
		return 0, err
	}
	return VsaFromPeriod(ComputeH(layers), t)
}
