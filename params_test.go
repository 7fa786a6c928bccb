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

// different reports whether a and b differ by more than the given
// relative tolerance.
func different(a, b, tolerance float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	if a == b {
		return false
	}
	return 2*math.Abs(a-b)/math.Abs(a+b) > tolerance
}

// absDifferent reports whether a and b differ by more than the given
// absolute tolerance.
func absDifferent(a, b, tolerance float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) > tolerance
}

func TestDefaultParamsValid(t *testing.T) {
	p := DefaultParams()
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestAtTemperatureReference(t *testing.T) {
	p := DefaultParams()
	q := p.AtTemperature(20)
	if different(q.MuH, p.MuH, 1e-12) {
		t.Errorf("MuH at 20°C = %g; want %g", q.MuH, p.MuH)
	}
	if different(q.MuAOBHAO, p.MuAOBHAO, 1e-12) {
		t.Errorf("MuAOBHAO at 20°C = %g; want %g", q.MuAOBHAO, p.MuAOBHAO)
	}
	if different(q.BH, p.BH, 1e-12) {
		t.Errorf("BH at 20°C = %g; want %g", q.BH, p.BH)
	}
}

func TestAtTemperatureArrhenius(t *testing.T) {
	p := DefaultParams()
	q := p.AtTemperature(30)
	cases := []struct {
		name      string
		got, at20 float64
		theta     float64
	}{
		{"MuH", q.MuH, p.MuH, p.ThetaHet},
		{"KH", q.KH, p.KH, p.ThetaHyd},
		{"MuPAO", q.MuPAO, p.MuPAO, p.ThetaPAO},
		{"MuAOBHAO", q.MuAOBHAO, p.MuAOBHAO, p.ThetaAutGro},
		{"MuNOB", q.MuNOB, p.MuNOB, p.ThetaAutGro},
		{"BAOB", q.BAOB, p.BAOB, p.ThetaAutDec},
	}
	for _, c := range cases {
		want := c.at20 * math.Pow(c.theta, 10)
		if different(c.got, want, 1e-12) {
			t.Errorf("%s at 30°C = %g; want %g", c.name, c.got, want)
		}
	}
	// Half-saturation constants and yields are not temperature corrected.
	if different(q.YH, p.YH, 1e-12) {
		t.Errorf("YH at 30°C = %g; want %g", q.YH, p.YH)
	}
	if different(q.KO2H, p.KO2H, 1e-12) {
		t.Errorf("KO2H at 30°C = %g; want %g", q.KO2H, p.KO2H)
	}
}

func TestAtTemperatureLeavesReceiver(t *testing.T) {
	p := DefaultParams()
	muH := p.MuH
	p.AtTemperature(15)
	if p.MuH != muH {
		t.Error("AtTemperature modified the receiver")
	}
}

func TestValidateRejectsBadParams(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ParamSet)
	}{
		{"negative rate", func(p *ParamSet) { p.MuH = -1 }},
		{"zero half-saturation", func(p *ParamSet) { p.KO2H = 0 }},
		{"NaN", func(p *ParamSet) { p.KH = math.NaN() }},
		{"yield above one", func(p *ParamSet) { p.YH = 1.5 }},
		{"negative content", func(p *ParamSet) { p.INBM = -0.07 }},
		{"inverted pH window", func(p *ParamSet) { p.PHLowNit, p.PHHighNit = 9.5, 6.5 }},
		{"lysis fractions exceed one", func(p *ParamSet) { p.FSI, p.FXI = 0.6, 0.6 }},
	}
	for _, c := range cases {
		p := DefaultParams()
		c.mutate(p)
		err := p.Validate()
		if err == nil {
			t.Errorf("%s: no validation error", c.name)
			continue
		}
		var perr *ParameterError
		if !errors.As(err, &perr) {
			t.Errorf("%s: error type %T; want *ParameterError", c.name, err)
		}
	}
}
