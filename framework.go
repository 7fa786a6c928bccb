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
	"time"
)

// SimManipulator is a function that advances, inspects, or otherwise
// changes a simulation.
type SimManipulator func(s *Simulation) error

// Snapshot is the recorded state of the reactor at one output instant.
type Snapshot struct {
	T       float64   // simulated time [d]
	State   []float64 // component concentrations
	N2OFlux float64   // instantaneous N2O emission [g N/d]
}

// Simulation drives a reactor through time. The functions in
// InitFuncs are run once by Init, then Run cycles through RunFuncs
// until one of them sets Done, and Cleanup runs CleanupFuncs.
type Simulation struct {
	InitFuncs    []SimManipulator
	RunFuncs     []SimManipulator
	CleanupFuncs []SimManipulator

	Reactor *Reactor
	Solver  *Solver

	// T is the current simulated time [d] and State the current
	// component concentrations.
	T     float64
	State []float64

	// OutputInterval is the simulated time between run-function
	// cycles [d].
	OutputInterval float64

	// Done signals Run to stop cycling.
	Done bool

	// Results accumulates the recorded snapshots.
	Results []Snapshot

	// Warnings accumulates numerical warnings from the solver.
	Warnings []NumericalWarning
}

// Init runs the initialization functions.
func (s *Simulation) Init() error {
	for _, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Run cycles through the run functions until Done is set.
func (s *Simulation) Run() error {
	for !s.Done {
		for _, f := range s.RunFuncs {
			if err := f(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup runs the cleanup functions.
func (s *Simulation) Cleanup() error {
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// InitialState sets the starting concentrations by component name.
// Components not named start at zero.
func InitialState(conc map[string]float64) SimManipulator {
	return func(s *Simulation) error {
		s.State = make([]float64, NumComponents)
		for name, v := range conc {
			i, err := ComponentIndex(name)
			if err != nil {
				return err
			}
			if v < 0 {
				return fmt.Errorf("asmn2o: initial %s = %g must be nonnegative", name, v)
			}
			s.State[i] = v
		}
		return nil
	}
}

// CheckForcing verifies that the forcing record covers the whole
// simulation horizon, so a gap fails at startup instead of midway
// through a run.
func CheckForcing(t0, t1 float64) SimManipulator {
	return func(s *Simulation) error {
		f := s.Reactor.Forcing()
		for _, t := range []float64{t0, t1} {
			if _, err := f.Environment(t); err != nil {
				return err
			}
			if _, _, err := f.Influent(t); err != nil {
				return err
			}
		}
		return nil
	}
}

// Advance integrates the reactor over one output interval, collecting
// any numerical warnings the solver raises.
func Advance() SimManipulator {
	return func(s *Simulation) error {
		t1 := s.T + s.OutputInterval
		if err := s.Solver.Integrate(s.Reactor, s.T, t1, s.State); err != nil {
			return err
		}
		s.Warnings = append(s.Warnings, s.Solver.Warnings()...)
		s.T = t1
		return nil
	}
}

// Record appends the current state to the simulation results, along
// with the instantaneous N2O emission flux.
func Record() SimManipulator {
	return func(s *Simulation) error {
		env, err := s.Reactor.Forcing().Environment(s.T)
		if err != nil {
			return err
		}
		state := make([]float64, len(s.State))
		copy(state, s.State)
		var flux float64
		if s.Reactor.StripN2O {
			flux = N2OEmissionRate(state[iSN2O], s.Reactor.Volume, env)
		}
		s.Results = append(s.Results, Snapshot{T: s.T, State: state, N2OFlux: flux})
		return nil
	}
}

// HorizonCheck sets Done once the simulation reaches tEnd.
func HorizonCheck(tEnd float64) SimManipulator {
	return func(s *Simulation) error {
		if s.T >= tEnd-1e-12 {
			s.Done = true
		}
		return nil
	}
}

// SimulationStatus describes simulation progress at one output step.
type SimulationStatus struct {
	Iteration int
	T         float64 // simulated time [d]
	Walltime  time.Duration
	StepTime  time.Duration
	NH4       float64 // g N/m³
	N2O       float64 // g N/m³
}

func (s *SimulationStatus) String() string {
	return fmt.Sprintf("Iteration %-4d  walltime=%6.3gs  Δwalltime=%4.2gms  "+
		"day=%.4g  NH4=%.3g  N2O=%.3g",
		s.Iteration, s.Walltime.Seconds(),
		float64(s.StepTime.Microseconds())/1000, s.T, s.NH4, s.N2O)
}

// Log sends a status message to c after every run cycle.
func Log(c chan *SimulationStatus) SimManipulator {
	startTime := time.Now()
	stepTime := time.Now()
	iteration := 0
	return func(s *Simulation) error {
		iteration++
		c <- &SimulationStatus{
			Iteration: iteration,
			T:         s.T,
			Walltime:  time.Since(startTime),
			StepTime:  time.Since(stepTime),
			NH4:       s.State[iSNH4],
			N2O:       s.State[iSN2O],
		}
		stepTime = time.Now()
		return nil
	}
}
