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
	"sort"
)

// Env holds the physical operating conditions of the reactor at one
// instant.
type Env struct {
	TempC float64 // liquid temperature [°C]
	PH    float64
	KLa   float64 // oxygen mass-transfer coefficient [1/d]
}

// ForcingGapError is returned when forcing data is requested for a
// time not covered by the forcing record.
type ForcingGapError struct {
	Time       float64 // requested time [d]
	Start, End float64 // covered interval [d]
}

func (e *ForcingGapError) Error() string {
	return fmt.Sprintf("asmn2o: no forcing data at t = %g d (record covers [%g, %g])",
		e.Time, e.Start, e.End)
}

// Forcing supplies the boundary conditions of a simulation: influent
// flow and composition, and the physical environment. Implementations
// must be defined for the whole simulation horizon; a request outside
// the covered interval returns a ForcingGapError.
type Forcing interface {
	// Influent returns the influent flow rate [m³/d] and component
	// concentrations at time t [d].
	Influent(t float64) (flow float64, conc []float64, err error)

	// Environment returns the operating conditions at time t [d].
	Environment(t float64) (Env, error)
}

// ConstantForcing applies time-invariant boundary conditions. A zero
// Flow gives batch operation.
type ConstantForcing struct {
	Flow float64   // influent flow rate [m³/d]
	Conc []float64 // influent concentrations, or nil when Flow is zero
	Env  Env
}

// Influent implements the Forcing interface.
func (c *ConstantForcing) Influent(t float64) (float64, []float64, error) {
	if c.Flow == 0 {
		return 0, nil, nil
	}
	if len(c.Conc) != NumComponents {
		return 0, nil, fmt.Errorf("asmn2o: constant forcing holds %d influent concentrations; want %d",
			len(c.Conc), NumComponents)
	}
	return c.Flow, c.Conc, nil
}

// Environment implements the Forcing interface.
func (c *ConstantForcing) Environment(t float64) (Env, error) { return c.Env, nil }

// SeriesForcing interpolates boundary conditions from a time series.
// Environmental conditions are interpolated linearly between records;
// influent flow and composition are held constant from each record
// until the next (flow-paced loads change stepwise, while temperature
// and pH drift continuously).
type SeriesForcing struct {
	Times []float64   // record times [d], strictly increasing
	Flows []float64   // influent flow at each record [m³/d]
	Concs [][]float64 // influent concentrations at each record
	Envs  []Env       // operating conditions at each record
}

// NewSeriesForcing validates the record lengths and ordering and
// returns the assembled forcing.
func NewSeriesForcing(times, flows []float64, concs [][]float64, envs []Env) (*SeriesForcing, error) {
	n := len(times)
	if n < 2 {
		return nil, fmt.Errorf("asmn2o: forcing series needs at least 2 records; got %d", n)
	}
	if len(flows) != n || len(concs) != n || len(envs) != n {
		return nil, fmt.Errorf("asmn2o: forcing series length mismatch: %d times, %d flows, %d influents, %d environments",
			n, len(flows), len(concs), len(envs))
	}
	for i := 1; i < n; i++ {
		// A duplicated breakpoint would leave Environment dividing by a
		// zero interval.
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("asmn2o: forcing series times must be strictly increasing")
		}
	}
	for i, c := range concs {
		if flows[i] != 0 && len(c) != NumComponents {
			return nil, fmt.Errorf("asmn2o: forcing record %d holds %d influent concentrations; want %d",
				i, len(c), NumComponents)
		}
	}
	return &SeriesForcing{Times: times, Flows: flows, Concs: concs, Envs: envs}, nil
}

// index returns the record index i such that Times[i] <= t < Times[i+1].
func (s *SeriesForcing) index(t float64) (int, error) {
	if t < s.Times[0] || t > s.Times[len(s.Times)-1] {
		return 0, &ForcingGapError{Time: t, Start: s.Times[0], End: s.Times[len(s.Times)-1]}
	}
	i := sort.SearchFloat64s(s.Times, t)
	if i == len(s.Times) || (i > 0 && s.Times[i] != t) {
		i--
	}
	if i == len(s.Times)-1 {
		i--
	}
	return i, nil
}

// Influent implements the Forcing interface.
func (s *SeriesForcing) Influent(t float64) (float64, []float64, error) {
	i, err := s.index(t)
	if err != nil {
		return 0, nil, err
	}
	return s.Flows[i], s.Concs[i], nil
}

// Environment implements the Forcing interface.
func (s *SeriesForcing) Environment(t float64) (Env, error) {
	i, err := s.index(t)
	if err != nil {
		return Env{}, err
	}
	frac := (t - s.Times[i]) / (s.Times[i+1] - s.Times[i])
	a, b := s.Envs[i], s.Envs[i+1]
	return Env{
		TempC: a.TempC + frac*(b.TempC-a.TempC),
		PH:    a.PH + frac*(b.PH-a.PH),
		KLa:   a.KLa + frac*(b.KLa-a.KLa),
	}, nil
}
