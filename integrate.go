/*
Copyright © 2024 the ASMN2O authors.
This file is part of ASMN2O.

ASMN2O is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ASMN2O is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ASMN2O.  If not, see <http://www.gnu.org/licenses/>.
*/

package asmn2o

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Reactor is a completely stirred tank running the biokinetic model.
// The liquid volume is constant: effluent flow equals influent flow.
type Reactor struct {
	Volume float64 // liquid volume [m³]

	// HoldDO freezes dissolved oxygen at its current value, modeling
	// an ideal DO controller. When false, oxygen follows aeration
	// mass transfer at the forcing's kLa.
	HoldDO bool

	// StripN2O enables N2O gas transfer out of the liquid. Without it
	// produced N2O only leaves with the effluent.
	StripN2O bool

	params  *ParamSet
	forcing Forcing
	stoich  *StoichMatrix
	eval    *RateEvaluator

	rho []float64 // process-rate scratch
}

// NewReactor assembles a reactor, building and validating the
// stoichiometric matrix and process catalog for the given parameters.
func NewReactor(volume float64, p *ParamSet, f Forcing) (*Reactor, error) {
	if volume <= 0 {
		return nil, fmt.Errorf("asmn2o: reactor volume %g must be positive", volume)
	}
	if f == nil {
		return nil, fmt.Errorf("asmn2o: reactor requires forcing")
	}
	s, err := NewStoichMatrix(p, 1e-9)
	if err != nil {
		return nil, err
	}
	e, err := NewRateEvaluator(p)
	if err != nil {
		return nil, err
	}
	return &Reactor{
		Volume:  volume,
		params:  p,
		forcing: f,
		stoich:  s,
		eval:    e,
		rho:     make([]float64, NumProcesses),
	}, nil
}

// Params returns the reactor's parameter set at the 20 °C reference.
func (r *Reactor) Params() *ParamSet { return r.params }

// Stoich returns the reactor's stoichiometric matrix.
func (r *Reactor) Stoich() *StoichMatrix { return r.stoich }

// Forcing returns the reactor's boundary conditions.
func (r *Reactor) Forcing() Forcing { return r.forcing }

// Derivative computes dc/dt [g/m³/d] for state c at time t, combining
// biochemical conversion, hydraulic dilution, and gas transfer. The
// result is written to dst, which must have length NumComponents.
func (r *Reactor) Derivative(t float64, c, dst []float64) error {
	env, err := r.forcing.Environment(t)
	if err != nil {
		return err
	}
	flow, in, err := r.forcing.Influent(t)
	if err != nil {
		return err
	}

	r.eval.Evaluate(c, env, r.rho)
	for i := range dst {
		dst[i] = 0
	}
	r.stoich.Convert(r.rho, dst)

	if flow != 0 {
		d := flow / r.Volume
		for i := 0; i < NumComponents; i++ {
			dst[i] += d * (in[i] - c[i])
		}
	}

	if r.HoldDO {
		dst[iSO2] = 0
	} else if env.KLa > 0 {
		dst[iSO2] += env.KLa * (OxygenSaturation(env.TempC) - c[iSO2])
	}
	if r.StripN2O && env.KLa > 0 {
		dst[iSN2O] -= KLaN2O(env.KLa) * (c[iSN2O] - N2OSaturation(env.TempC))
	}
	return nil
}

// NumericalWarning records a recoverable numerical event during
// integration: a component that undershot zero and was clamped.
type NumericalWarning struct {
	Time      float64
	Component string
	Value     float64 // the negative value before clamping
}

func (w NumericalWarning) String() string {
	return fmt.Sprintf("t = %.6g d: %s = %.3g clamped to zero", w.Time, w.Component, w.Value)
}

// IntegrationFailure is returned when the adaptive step fell below the
// minimum step size without meeting the error tolerance. It carries
// the failure time and the last accepted state for diagnosis.
type IntegrationFailure struct {
	Time  float64
	State []float64
}

func (e *IntegrationFailure) Error() string {
	return fmt.Sprintf("asmn2o: integration stalled at t = %g d: step size underflow", e.Time)
}

// Modified Rosenbrock pair coefficients (Shampine & Reichelt).
const (
	rosD   = 1 / (2 + math.Sqrt2)
	rosE32 = 6 + math.Sqrt2
)

// Forward-difference increments for the numerical Jacobian.
const (
	jacEps   = 1.5e-8 // ~√(machine epsilon)
	jacFloor = 1e-6   // smallest perturbation scale [g/m³]
)

// Solver integrates the reactor mass balance with an adaptive
// linearly implicit Rosenbrock 2(3) pair. The two-step nitrification
// pools (S_NO, S_NH2OH) sit at half-saturations of ~1e-4 g/m³ against
// turnovers of hundreds of g/m³/d, so the system is stiff on a ~1e-6 d
// timescale; the L-stable stages step over that transient where an
// explicit scheme would collapse to nanoscale steps. Each step
// factorizes I - h·d·J once, with J approximated by forward
// differences of the derivative.
type Solver struct {
	RelTol  float64 // relative error tolerance
	AbsTol  float64 // absolute error tolerance [g/m³]
	MaxStep float64 // largest step size [d]
	MinStep float64 // smallest step size before failing [d]

	warnings []NumericalWarning

	f0, f1, f2 []float64
	ft         []float64
	k1, k2, k3 []float64
	stage      []float64
	ynew       []float64
	yj, fj     []float64
	jac, w     *mat.Dense
	rhs, sol   *mat.VecDense
}

// NewSolver returns a solver with tolerances suited to the
// concentration scales of the model.
func NewSolver() *Solver {
	return &Solver{
		RelTol:  1e-6,
		AbsTol:  1e-8,
		MaxStep: 0.01,
		MinStep: 1e-12,
	}
}

// Warnings returns the numerical warnings accumulated so far and
// clears the record.
func (s *Solver) Warnings() []NumericalWarning {
	w := s.warnings
	s.warnings = nil
	return w
}

func (s *Solver) alloc() {
	if s.stage != nil {
		return
	}
	s.f0 = make([]float64, NumComponents)
	s.f1 = make([]float64, NumComponents)
	s.f2 = make([]float64, NumComponents)
	s.ft = make([]float64, NumComponents)
	s.k1 = make([]float64, NumComponents)
	s.k2 = make([]float64, NumComponents)
	s.k3 = make([]float64, NumComponents)
	s.stage = make([]float64, NumComponents)
	s.ynew = make([]float64, NumComponents)
	s.yj = make([]float64, NumComponents)
	s.fj = make([]float64, NumComponents)
	s.jac = mat.NewDense(NumComponents, NumComponents, nil)
	s.w = mat.NewDense(NumComponents, NumComponents, nil)
	s.rhs = mat.NewVecDense(NumComponents, nil)
	s.sol = mat.NewVecDense(NumComponents, nil)
}

// jacobian fills s.jac with the forward-difference approximation of
// ∂f/∂c at (t, y), reusing the derivative already stored in s.f0.
func (s *Solver) jacobian(r *Reactor, t float64, y []float64) error {
	copy(s.yj, y)
	for j := 0; j < NumComponents; j++ {
		dy := jacEps * math.Max(math.Abs(y[j]), jacFloor)
		s.yj[j] = y[j] + dy
		if err := r.Derivative(t, s.yj, s.fj); err != nil {
			return err
		}
		s.yj[j] = y[j]
		for i := 0; i < NumComponents; i++ {
			s.jac.Set(i, j, (s.fj[i]-s.f0[i])/dy)
		}
	}
	return nil
}

// step attempts one Rosenbrock step of size h from (t, y), writing the
// second-order solution to s.ynew and returning the scaled norm of the
// embedded third-order error estimate. A step whose stage solve fails
// or whose error estimate is not a number reports an infinite norm so
// the controller rejects it; a NaN must never be accepted into the
// state.
func (s *Solver) step(r *Reactor, t float64, y []float64, h float64) (float64, error) {
	if err := r.Derivative(t, y, s.f0); err != nil {
		return 0, err
	}
	if err := s.jacobian(r, t, y); err != nil {
		return 0, err
	}

	// ∂f/∂t for time-varying forcing. Across a forcing discontinuity
	// (or at the end of the forcing record) the forward difference is
	// unusable; treat the step as locally autonomous instead.
	dt := jacEps * math.Max(math.Abs(t), h)
	if err := r.Derivative(t+dt, y, s.ft); err != nil {
		for i := range s.ft {
			s.ft[i] = 0
		}
	} else {
		for i := range s.ft {
			s.ft[i] = (s.ft[i] - s.f0[i]) / dt
		}
	}

	hd := h * rosD
	for i := 0; i < NumComponents; i++ {
		for j := 0; j < NumComponents; j++ {
			v := -hd * s.jac.At(i, j)
			if i == j {
				v++
			}
			s.w.Set(i, j, v)
		}
	}
	var lu mat.LU
	lu.Factorize(s.w)

	// k1 = W⁻¹(f0 + h·d·ft)
	for i := 0; i < NumComponents; i++ {
		s.rhs.SetVec(i, s.f0[i]+hd*s.ft[i])
	}
	if err := lu.SolveVecTo(s.sol, false, s.rhs); err != nil {
		return math.Inf(1), nil
	}
	for i := range s.k1 {
		s.k1[i] = s.sol.AtVec(i)
	}

	for i := range s.stage {
		s.stage[i] = y[i] + 0.5*h*s.k1[i]
	}
	if err := r.Derivative(t+0.5*h, s.stage, s.f1); err != nil {
		return 0, err
	}

	// k2 = W⁻¹(f1 - k1) + k1
	for i := 0; i < NumComponents; i++ {
		s.rhs.SetVec(i, s.f1[i]-s.k1[i])
	}
	if err := lu.SolveVecTo(s.sol, false, s.rhs); err != nil {
		return math.Inf(1), nil
	}
	for i := range s.k2 {
		s.k2[i] = s.sol.AtVec(i) + s.k1[i]
	}

	for i := range s.ynew {
		s.ynew[i] = y[i] + h*s.k2[i]
	}
	if err := r.Derivative(t+h, s.ynew, s.f2); err != nil {
		return 0, err
	}

	// k3 feeds only the error estimate.
	for i := 0; i < NumComponents; i++ {
		s.rhs.SetVec(i, s.f2[i]-rosE32*(s.k2[i]-s.f1[i])-2*(s.k1[i]-s.f0[i])+hd*s.ft[i])
	}
	if err := lu.SolveVecTo(s.sol, false, s.rhs); err != nil {
		return math.Inf(1), nil
	}
	for i := range s.k3 {
		s.k3[i] = s.sol.AtVec(i)
	}

	var errNorm float64
	for i := 0; i < NumComponents; i++ {
		scale := s.AbsTol + s.RelTol*math.Max(math.Abs(y[i]), math.Abs(s.ynew[i]))
		e := math.Abs(h/6*(s.k1[i]-2*s.k2[i]+s.k3[i])) / scale
		if math.IsNaN(e) {
			return math.Inf(1), nil
		}
		if e > errNorm {
			errNorm = e
		}
	}
	return errNorm, nil
}

// Integrate advances the state y from t0 to t1, modifying y in place.
// Steps are atomic: a failed step never alters y. Small negative
// concentrations produced by an accepted step are clamped to zero and
// recorded as NumericalWarnings.
func (s *Solver) Integrate(r *Reactor, t0, t1 float64, y []float64) error {
	if len(y) != NumComponents {
		return fmt.Errorf("asmn2o: state vector length %d; want %d", len(y), NumComponents)
	}
	s.alloc()

	t := t0
	h := math.Min(s.MaxStep, t1-t0)
	for t < t1 {
		hTry := math.Min(h, t1-t)
		if t+hTry == t {
			return s.fail(t, y)
		}
		errNorm, err := s.step(r, t, y, hTry)
		if err != nil {
			return err
		}
		if errNorm > 1 {
			h = hTry * math.Max(0.1, 0.9*math.Pow(errNorm, -1.0/3))
			if h < s.MinStep {
				return s.fail(t, y)
			}
			continue
		}
		t += hTry
		copy(y, s.ynew)
		for i, v := range y {
			if v < 0 {
				s.warnings = append(s.warnings, NumericalWarning{
					Time: t, Component: componentNames[i], Value: v,
				})
				y[i] = 0
			}
		}
		if errNorm > 0 {
			h = hTry * math.Min(5, 0.9*math.Pow(errNorm, -1.0/3))
		} else {
			h = hTry * 5
		}
		if h > s.MaxStep {
			h = s.MaxStep
		}
		if h < s.MinStep {
			h = s.MinStep
		}
	}
	return nil
}

func (s *Solver) fail(t float64, y []float64) error {
	state := make([]float64, len(y))
	copy(state, y)
	return &IntegrationFailure{Time: t, State: state}
}
