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
	"errors"
	"math"
	"testing"
)

func batchReactor(t *testing.T, env Env) *Reactor {
	t.Helper()
	r, err := NewReactor(1000, DefaultParams(), &ConstantForcing{Env: env})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestNewReactorErrors(t *testing.T) {
	f := &ConstantForcing{}
	if _, err := NewReactor(0, DefaultParams(), f); err == nil {
		t.Error("no error for zero volume")
	}
	if _, err := NewReactor(-5, DefaultParams(), f); err == nil {
		t.Error("no error for negative volume")
	}
	if _, err := NewReactor(1000, DefaultParams(), nil); err == nil {
		t.Error("no error for nil forcing")
	}
	p := DefaultParams()
	p.YH = -1
	if _, err := NewReactor(1000, p, f); err == nil {
		t.Error("no error for invalid parameters")
	}
}

func TestDerivativeDilution(t *testing.T) {
	// With no biomass and no aeration, the derivative reduces to pure
	// hydraulic dilution.
	in := make([]float64, NumComponents)
	in[iSNH4] = 30
	in[iSF] = 100
	f := &ConstantForcing{Flow: 500, Conc: in, Env: Env{TempC: 20, PH: 7, KLa: 0}}
	r, err := NewReactor(1000, DefaultParams(), f)
	if err != nil {
		t.Fatal(err)
	}
	c := make([]float64, NumComponents)
	c[iSNH4] = 10
	dst := make([]float64, NumComponents)
	if err := r.Derivative(0, c, dst); err != nil {
		t.Fatal(err)
	}
	d := 500.0 / 1000.0
	if different(dst[iSNH4], d*(30-10), 1e-12) {
		t.Errorf("dNH4/dt = %g; want %g", dst[iSNH4], d*20)
	}
	if different(dst[iSF], d*100, 1e-12) {
		t.Errorf("dSF/dt = %g; want %g", dst[iSF], d*100)
	}
	if dst[iXH] != 0 {
		t.Errorf("dXH/dt = %g; want 0", dst[iXH])
	}
}

func TestDerivativeAerationAndControl(t *testing.T) {
	env := Env{TempC: 20, PH: 7, KLa: 240}
	r := batchReactor(t, env)
	c := mixedLiquor()
	dst := make([]float64, NumComponents)

	// Aeration drives oxygen toward saturation.
	if err := r.Derivative(0, c, dst); err != nil {
		t.Fatal(err)
	}
	if dst[iSO2] <= 0 {
		t.Errorf("dO2/dt = %g under aeration at 2 g/m³; want positive", dst[iSO2])
	}

	// An ideal DO controller pins the oxygen derivative to zero.
	r.HoldDO = true
	if err := r.Derivative(0, c, dst); err != nil {
		t.Fatal(err)
	}
	if dst[iSO2] != 0 {
		t.Errorf("dO2/dt = %g with DO held; want 0", dst[iSO2])
	}

	// Stripping removes supersaturated N2O faster than biology alone.
	r.StripN2O = false
	if err := r.Derivative(0, c, dst); err != nil {
		t.Fatal(err)
	}
	noStrip := dst[iSN2O]
	r.StripN2O = true
	if err := r.Derivative(0, c, dst); err != nil {
		t.Fatal(err)
	}
	if dst[iSN2O] >= noStrip {
		t.Errorf("dN2O/dt = %g with stripping; want below %g", dst[iSN2O], noStrip)
	}
}

// totalBasis is the basis-weighted sum over the state vector, conserved
// in a closed reactor.
func totalBasis(p *ParamSet, c []float64, b Basis) float64 {
	w := conversionFactors(p, b)
	var sum float64
	for i, v := range c {
		sum += w[i] * v
	}
	return sum
}

func TestClosedBatchConservation(t *testing.T) {
	// No flow, no gas transfer: the COD, nitrogen, and charge balances
	// of the state must be invariants of the biokinetics.
	p := DefaultParams()
	r := batchReactor(t, Env{TempC: 20, PH: 7.2, KLa: 0})
	y := mixedLiquor()

	cod0 := totalBasis(p, y, BasisCOD)
	n0 := totalBasis(p, y, BasisNitrogen)
	q0 := totalBasis(p, y, BasisCharge)

	s := NewSolver()
	if err := s.Integrate(r, 0, 1, y); err != nil {
		t.Fatal(err)
	}

	if different(totalBasis(p, y, BasisCOD), cod0, 1e-4) {
		t.Errorf("COD balance drifted: %g -> %g", cod0, totalBasis(p, y, BasisCOD))
	}
	if different(totalBasis(p, y, BasisNitrogen), n0, 1e-4) {
		t.Errorf("N balance drifted: %g -> %g", n0, totalBasis(p, y, BasisNitrogen))
	}
	if absDifferent(totalBasis(p, y, BasisCharge), q0, 1e-3) {
		t.Errorf("charge balance drifted: %g -> %g", q0, totalBasis(p, y, BasisCharge))
	}
	for i, v := range y {
		if v < 0 || math.IsNaN(v) {
			t.Errorf("%s = %g after integration", componentNames[i], v)
		}
	}
}

func TestAcetateDepletionUnderAeration(t *testing.T) {
	r := batchReactor(t, Env{TempC: 20, PH: 7.2, KLa: 0})
	r.HoldDO = true
	y := mixedLiquor()
	y[iSO2] = 2

	s := NewSolver()
	prev := y[iSA]
	for _, tEnd := range []float64{0.001, 0.002, 0.004} {
		yy := append([]float64(nil), y...)
		if err := s.Integrate(r, 0, tEnd, yy); err != nil {
			t.Fatal(err)
		}
		if yy[iSA] >= prev {
			t.Fatalf("acetate not depleting: %g at t = %g (was %g)", yy[iSA], tEnd, prev)
		}
		prev = yy[iSA]
	}
	// By 0.2 d the 20 g COD/m³ of acetate is essentially gone.
	yy := append([]float64(nil), y...)
	if err := s.Integrate(r, 0, 0.2, yy); err != nil {
		t.Fatal(err)
	}
	if yy[iSA] > 1 {
		t.Errorf("acetate = %g after 0.2 d of aerobic growth; want < 1", yy[iSA])
	}
}

func TestStepRefinementAgreement(t *testing.T) {
	y1 := mixedLiquor()
	y2 := mixedLiquor()

	r := batchReactor(t, Env{TempC: 20, PH: 7.2, KLa: 0})
	r.HoldDO = true

	coarse := NewSolver()
	coarse.RelTol = 1e-8
	coarse.AbsTol = 1e-10
	if err := coarse.Integrate(r, 0, 0.5, y1); err != nil {
		t.Fatal(err)
	}
	fine := NewSolver()
	fine.RelTol = 1e-8
	fine.AbsTol = 1e-10
	fine.MaxStep = 0.002
	if err := fine.Integrate(r, 0, 0.5, y2); err != nil {
		t.Fatal(err)
	}
	for i := range y1 {
		if math.Abs(y1[i]-y2[i]) > 1e-4*(1+math.Abs(y1[i])) {
			t.Errorf("%s: coarse %g vs fine %g", componentNames[i], y1[i], y2[i])
		}
	}
}

// countingForcing wraps a Forcing and counts environment lookups, one
// per derivative evaluation.
type countingForcing struct {
	Forcing
	calls int
}

func (c *countingForcing) Environment(t float64) (Env, error) {
	c.calls++
	return c.Forcing.Environment(t)
}

func TestStiffNitrifierStepEfficiency(t *testing.T) {
	// Active ammonia oxidation holds the S_NO and S_NH2OH pools near
	// half-saturations of ~1e-4 g/m³ against turnovers of hundreds of
	// g/m³/d. The solver must carry macroscopic steps through that
	// fast equilibrium rather than grinding down to nanoscale steps.
	f := &countingForcing{Forcing: &ConstantForcing{Env: Env{TempC: 20, PH: 7.5, KLa: 0}}}
	r, err := NewReactor(1000, DefaultParams(), f)
	if err != nil {
		t.Fatal(err)
	}
	r.HoldDO = true

	y := make([]float64, NumComponents)
	y[iSO2] = 2
	y[iSNH4] = 30
	y[iSPO4] = 5
	y[iSALK] = 10
	y[iXAOB] = 50
	y[iXNOB] = 50

	s := NewSolver()
	if err := s.Integrate(r, 0, 1, y); err != nil {
		t.Fatal(err)
	}

	if y[iSNH4] >= 25 {
		t.Errorf("NH4 = %g after 1 d of nitrification; want well below 30", y[iSNH4])
	}
	if y[iSNO2]+y[iSNO3] < 1 {
		t.Errorf("NO2+NO3 = %g after 1 d of nitrification; want > 1", y[iSNO2]+y[iSNO3])
	}

	// Each step costs ~28 derivative evaluations (one Jacobian plus
	// three stages); a count in the millions would mean the fast pools
	// are forcing microscopic steps.
	if f.calls > 500000 {
		t.Errorf("%d derivative evaluations for 1 simulated day", f.calls)
	}
}

func TestNaNDerivativeRejected(t *testing.T) {
	// A NaN temperature poisons the oxygen transfer term. The step
	// controller must reject the poisoned steps and fail cleanly,
	// never committing a NaN into the state.
	f := &ConstantForcing{Env: Env{TempC: math.NaN(), PH: 7, KLa: 240}}
	r, err := NewReactor(1000, DefaultParams(), f)
	if err != nil {
		t.Fatal(err)
	}
	y := mixedLiquor()
	before := append([]float64(nil), y...)

	s := NewSolver()
	s.MinStep = 1e-6
	err = s.Integrate(r, 0, 0.1, y)
	if err == nil {
		t.Fatal("no error integrating a NaN derivative")
	}
	var fail *IntegrationFailure
	if !errors.As(err, &fail) {
		t.Fatalf("error type %T; want *IntegrationFailure", err)
	}
	for i := range y {
		if y[i] != before[i] {
			t.Errorf("%s altered by rejected steps: %g -> %g", componentNames[i], before[i], y[i])
		}
	}
}

func TestIntegrationFailure(t *testing.T) {
	r := batchReactor(t, Env{TempC: 20, PH: 7.2, KLa: 240})
	y := mixedLiquor()
	before := append([]float64(nil), y...)

	s := NewSolver()
	s.RelTol = 1e-14
	s.AbsTol = 1e-16
	s.MaxStep = 0.5
	s.MinStep = 0.4
	err := s.Integrate(r, 0, 1, y)
	if err == nil {
		t.Fatal("no failure with unreachable tolerances")
	}
	var fail *IntegrationFailure
	if !errors.As(err, &fail) {
		t.Fatalf("error type %T; want *IntegrationFailure", err)
	}
	if fail.Time != 0 {
		t.Errorf("failure time = %g; want 0", fail.Time)
	}
	if len(fail.State) != NumComponents {
		t.Fatalf("failure state length %d", len(fail.State))
	}
	// Steps are atomic: the failed attempt must not have altered y.
	for i := range y {
		if y[i] != before[i] {
			t.Errorf("%s modified by failed step: %g -> %g", componentNames[i], before[i], y[i])
		}
		if fail.State[i] != before[i] {
			t.Errorf("failure state %s = %g; want %g", componentNames[i], fail.State[i], before[i])
		}
	}
}

func TestIntegratePropagatesForcingGap(t *testing.T) {
	conc := make([]float64, NumComponents)
	f, err := NewSeriesForcing(
		[]float64{0, 1}, []float64{0, 0},
		[][]float64{conc, conc},
		[]Env{{TempC: 20, PH: 7}, {TempC: 20, PH: 7}},
	)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewReactor(1000, DefaultParams(), f)
	if err != nil {
		t.Fatal(err)
	}
	y := mixedLiquor()
	s := NewSolver()
	err = s.Integrate(r, 0, 2, y)
	if err == nil {
		t.Fatal("no error integrating past the forcing record")
	}
	var gap *ForcingGapError
	if !errors.As(err, &gap) {
		t.Fatalf("error type %T; want *ForcingGapError", err)
	}
}

func TestIntegrateBadStateLength(t *testing.T) {
	r := batchReactor(t, Env{TempC: 20, PH: 7})
	if err := NewSolver().Integrate(r, 0, 1, make([]float64, 3)); err == nil {
		t.Error("no error for short state vector")
	}
}

func TestWarningsDrain(t *testing.T) {
	s := NewSolver()
	s.warnings = []NumericalWarning{{Time: 0.5, Component: "S_NO", Value: -1e-9}}
	w := s.Warnings()
	if len(w) != 1 {
		t.Fatalf("%d warnings; want 1", len(w))
	}
	if s.Warnings() != nil {
		t.Error("warnings not cleared after drain")
	}
}

func TestNumericalWarningString(t *testing.T) {
	w := NumericalWarning{Time: 0.25, Component: "S_NO", Value: -3.2e-10}
	want := "t = 0.25 d: S_NO = -3.2e-10 clamped to zero"
	if w.String() != want {
		t.Errorf("warning string %q; want %q", w.String(), want)
	}
}
