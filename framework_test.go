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
	"strings"
	"testing"
)

func batchSimulation(t *testing.T, horizon float64) *Simulation {
	t.Helper()
	r := batchReactor(t, Env{TempC: 20, PH: 7.2, KLa: 0})
	r.HoldDO = true
	return &Simulation{
		InitFuncs: []SimManipulator{
			InitialState(map[string]float64{
				"S_O2": 2, "S_A": 50, "S_NH4": 20, "S_PO4": 5,
				"S_ALK": 8, "X_H": 1000,
			}),
			CheckForcing(0, horizon),
			Record(),
		},
		RunFuncs: []SimManipulator{
			Advance(),
			Record(),
			HorizonCheck(horizon),
		},
		Reactor:        r,
		Solver:         NewSolver(),
		OutputInterval: 0.05,
	}
}

func TestSimulationLifecycle(t *testing.T) {
	const horizon = 0.5
	s := batchSimulation(t, horizon)
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if s.State[iSA] != 50 || s.State[iXH] != 1000 {
		t.Fatal("initial state not applied")
	}
	if len(s.Results) != 1 || s.Results[0].T != 0 {
		t.Fatal("initial snapshot not recorded")
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if !s.Done {
		t.Error("Run returned without Done set")
	}
	if different(s.T, horizon, 1e-9) {
		t.Errorf("final time = %g; want %g", s.T, horizon)
	}
	// One snapshot at t=0 plus one per output interval.
	if want := 11; len(s.Results) != want {
		t.Errorf("%d snapshots; want %d", len(s.Results), want)
	}
	// Acetate is consumed across the run.
	first := s.Results[0].State[iSA]
	last := s.Results[len(s.Results)-1].State[iSA]
	if last >= first {
		t.Errorf("acetate %g -> %g; want depletion", first, last)
	}
	// Snapshots hold copies, not aliases, of the state.
	if &s.Results[0].State[0] == &s.State[0] {
		t.Error("snapshot aliases the live state vector")
	}
	if err := s.Cleanup(); err != nil {
		t.Fatal(err)
	}
}

func TestInitialStateErrors(t *testing.T) {
	s := &Simulation{}
	if err := InitialState(map[string]float64{"S_XYZ": 1})(s); err == nil {
		t.Error("no error for unknown component")
	}
	if err := InitialState(map[string]float64{"S_NH4": -1})(s); err == nil {
		t.Error("no error for negative concentration")
	}
}

func TestCheckForcingFindsGap(t *testing.T) {
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
	s := &Simulation{Reactor: r}
	if err := CheckForcing(0, 2)(s); err == nil {
		t.Error("no error for horizon past the forcing record")
	}
	if err := CheckForcing(0, 1)(s); err != nil {
		t.Errorf("covered horizon rejected: %v", err)
	}
}

func TestRecordEmissionFlux(t *testing.T) {
	r := batchReactor(t, Env{TempC: 20, PH: 7.2, KLa: 100})
	s := &Simulation{Reactor: r, State: make([]float64, NumComponents)}
	s.State[iSN2O] = 0.5

	// Without stripping the recorded flux is zero.
	if err := Record()(s); err != nil {
		t.Fatal(err)
	}
	if s.Results[0].N2OFlux != 0 {
		t.Errorf("flux without stripping = %g; want 0", s.Results[0].N2OFlux)
	}

	r.StripN2O = true
	if err := Record()(s); err != nil {
		t.Fatal(err)
	}
	want := N2OEmissionRate(0.5, r.Volume, Env{TempC: 20, PH: 7.2, KLa: 100})
	if different(s.Results[1].N2OFlux, want, 1e-12) {
		t.Errorf("flux = %g; want %g", s.Results[1].N2OFlux, want)
	}
}

func TestHorizonCheck(t *testing.T) {
	s := &Simulation{T: 0.9}
	if err := HorizonCheck(1)(s); err != nil {
		t.Fatal(err)
	}
	if s.Done {
		t.Error("Done set before the horizon")
	}
	s.T = 1.0000000000001
	if err := HorizonCheck(1)(s); err != nil {
		t.Fatal(err)
	}
	if !s.Done {
		t.Error("Done not set at the horizon")
	}
}

func TestSimulationStatusString(t *testing.T) {
	status := &SimulationStatus{Iteration: 3, T: 1.25, NH4: 12.3, N2O: 0.042}
	msg := status.String()
	for _, want := range []string{"Iteration 3", "day=1.25", "NH4=12.3", "N2O=0.042"} {
		if !strings.Contains(msg, want) {
			t.Errorf("status %q missing %q", msg, want)
		}
	}
}

func TestLogSendsStatus(t *testing.T) {
	c := make(chan *SimulationStatus, 2)
	logf := Log(c)
	s := &Simulation{T: 0.5, State: make([]float64, NumComponents)}
	s.State[iSNH4] = 7
	if err := logf(s); err != nil {
		t.Fatal(err)
	}
	if err := logf(s); err != nil {
		t.Fatal(err)
	}
	first := <-c
	second := <-c
	if first.Iteration != 1 || second.Iteration != 2 {
		t.Errorf("iterations %d, %d; want 1, 2", first.Iteration, second.Iteration)
	}
	if first.T != 0.5 || first.NH4 != 7 {
		t.Errorf("status = %+v", first)
	}
}
