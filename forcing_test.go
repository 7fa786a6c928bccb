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
	"testing"
)

func TestConstantForcingBatch(t *testing.T) {
	f := &ConstantForcing{Env: Env{TempC: 20, PH: 7, KLa: 240}}
	flow, conc, err := f.Influent(3.7)
	if err != nil {
		t.Fatal(err)
	}
	if flow != 0 || conc != nil {
		t.Errorf("batch forcing gave flow %g, conc %v", flow, conc)
	}
	env, err := f.Environment(1e6)
	if err != nil {
		t.Fatal(err)
	}
	if env != f.Env {
		t.Errorf("environment = %+v; want %+v", env, f.Env)
	}
}

func TestConstantForcingChecksConcLength(t *testing.T) {
	f := &ConstantForcing{Flow: 100, Conc: []float64{1, 2, 3}}
	if _, _, err := f.Influent(0); err == nil {
		t.Error("no error for wrong influent vector length")
	}
}

func seriesFixture(t *testing.T) *SeriesForcing {
	t.Helper()
	conc := make([]float64, NumComponents)
	conc[iSNH4] = 30
	s, err := NewSeriesForcing(
		[]float64{0, 1, 2},
		[]float64{100, 200, 200},
		[][]float64{conc, conc, conc},
		[]Env{
			{TempC: 10, PH: 7.0, KLa: 0},
			{TempC: 20, PH: 7.5, KLa: 100},
			{TempC: 20, PH: 7.5, KLa: 100},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSeriesForcingConstruction(t *testing.T) {
	conc := make([]float64, NumComponents)
	if _, err := NewSeriesForcing(
		[]float64{0}, []float64{100},
		[][]float64{conc}, []Env{{}},
	); err == nil {
		t.Error("single record: no construction error")
	}
	if _, err := NewSeriesForcing(
		[]float64{0, 1}, []float64{100},
		[][]float64{conc, conc}, []Env{{}, {}},
	); err == nil {
		t.Error("length mismatch: no construction error")
	}
	if _, err := NewSeriesForcing(
		[]float64{1, 0}, []float64{100, 100},
		[][]float64{conc, conc}, []Env{{}, {}},
	); err == nil {
		t.Error("unsorted times: no construction error")
	}
	if _, err := NewSeriesForcing(
		[]float64{0, 1, 1}, []float64{100, 100, 100},
		[][]float64{conc, conc, conc}, []Env{{}, {}, {}},
	); err == nil {
		t.Error("duplicate record time: no construction error")
	}
	// A nonzero flow with a short influent vector is rejected.
	if _, err := NewSeriesForcing(
		[]float64{0, 1}, []float64{100, 100},
		[][]float64{{1, 2}, {1, 2}},
		[]Env{{}, {}},
	); err == nil {
		t.Error("no error for short influent vector with nonzero flow")
	}
	// A zero-flow record may omit the influent vector.
	if _, err := NewSeriesForcing(
		[]float64{0, 1}, []float64{0, 0},
		[][]float64{nil, nil},
		[]Env{{}, {}},
	); err != nil {
		t.Errorf("batch series rejected: %v", err)
	}
}

func TestSeriesForcingGap(t *testing.T) {
	s := seriesFixture(t)
	for _, bad := range []float64{-0.1, 2.5} {
		_, _, err := s.Influent(bad)
		if err == nil {
			t.Fatalf("no gap error at t = %g", bad)
		}
		var gap *ForcingGapError
		if !errors.As(err, &gap) {
			t.Fatalf("error type %T; want *ForcingGapError", err)
		}
		if gap.Time != bad || gap.Start != 0 || gap.End != 2 {
			t.Errorf("gap error %+v; want time %g over [0, 2]", gap, bad)
		}
		if _, err := s.Environment(bad); err == nil {
			t.Errorf("no gap error from Environment at t = %g", bad)
		}
	}
}

func TestSeriesForcingStepwiseInfluent(t *testing.T) {
	s := seriesFixture(t)
	for _, c := range []struct {
		t    float64
		flow float64
	}{
		{0, 100}, {0.5, 100}, {0.999, 100}, {1, 200}, {1.5, 200}, {2, 200},
	} {
		flow, conc, err := s.Influent(c.t)
		if err != nil {
			t.Fatal(err)
		}
		if flow != c.flow {
			t.Errorf("flow at t = %g is %g; want %g", c.t, flow, c.flow)
		}
		if conc[iSNH4] != 30 {
			t.Errorf("influent NH4 at t = %g is %g; want 30", c.t, conc[iSNH4])
		}
	}
}

func TestSeriesForcingEnvironmentInterpolation(t *testing.T) {
	s := seriesFixture(t)
	env, err := s.Environment(0.5)
	if err != nil {
		t.Fatal(err)
	}
	if different(env.TempC, 15, 1e-12) {
		t.Errorf("temperature at midpoint = %g; want 15", env.TempC)
	}
	if different(env.PH, 7.25, 1e-12) {
		t.Errorf("pH at midpoint = %g; want 7.25", env.PH)
	}
	if different(env.KLa, 50, 1e-12) {
		t.Errorf("kLa at midpoint = %g; want 50", env.KLa)
	}
	// Endpoints reproduce the records exactly.
	env, err = s.Environment(2)
	if err != nil {
		t.Fatal(err)
	}
	if env != s.Envs[2] {
		t.Errorf("environment at final record = %+v; want %+v", env, s.Envs[2])
	}
}
