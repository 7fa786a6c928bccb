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

package asmn2outil

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/watermodel/asmn2o"
)

// ForcingRecord is one row of a time-varying boundary-condition table.
type ForcingRecord struct {
	Time     float64 // [d]
	Flow     float64 // [m³/d]
	TempC    float64
	PH       float64
	KLa      float64 // [1/d]
	Influent map[string]float64
}

// ConstantConditions holds time-invariant boundary conditions.
type ConstantConditions struct {
	Flow     float64 // [m³/d]; zero for batch operation
	TempC    float64
	PH       float64
	KLa      float64 // [1/d]
	Influent map[string]float64
}

// SimConfig holds the user-facing configuration of a simulation run.
type SimConfig struct {
	// ReactorVolume is the liquid volume of the reactor [m³].
	ReactorVolume float64

	// HorizonDays is the simulated duration [d].
	HorizonDays float64

	// OutputIntervalDays is the spacing of recorded snapshots [d].
	OutputIntervalDays float64

	// HoldDO freezes dissolved oxygen at its initial value.
	HoldDO bool

	// StripN2O enables N2O gas transfer to the atmosphere.
	StripN2O bool

	// OutputFile is the path of the CSV results file.
	OutputFile string

	// InitialState gives starting concentrations by component name;
	// unnamed components start at zero.
	InitialState map[string]float64

	// OutputVariables maps output column names to expressions over
	// the component names, Time, and N2OFlux.
	OutputVariables map[string]string

	// Forcing gives constant boundary conditions. Ignored when
	// ForcingSeries is set.
	Forcing ConstantConditions

	// ForcingSeries gives time-varying boundary conditions.
	ForcingSeries []ForcingRecord

	// Params holds the biokinetic parameters at 20 °C. A config file
	// only needs to name the parameters it overrides.
	Params asmn2o.ParamSet

	// Solver tolerances; zero values keep the defaults.
	RelTol, AbsTol, MaxStepDays float64
}

// DefaultConfig returns a configuration with the default parameter set
// and a 1 m³ batch reactor at 20 °C.
func DefaultConfig() *SimConfig {
	return &SimConfig{
		ReactorVolume:      1,
		HorizonDays:        1,
		OutputIntervalDays: 0.01,
		OutputFile:         "asmn2o_output.csv",
		OutputVariables: map[string]string{
			"S_NH4": "S_NH4", "S_NO2": "S_NO2", "S_NO3": "S_NO3",
			"S_N2O": "S_N2O", "N2OFlux": "N2OFlux",
		},
		Forcing: ConstantConditions{TempC: 20, PH: 7},
		Params:  *asmn2o.DefaultParams(),
	}
}

// LoadConfig reads a TOML configuration file over the defaults, so the
// file only needs to state what differs from them.
func LoadConfig(filename string) (*SimConfig, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(filename, cfg); err != nil {
		return nil, fmt.Errorf("asmn2outil: reading configuration file: %v", err)
	}
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *SimConfig) check() error {
	if cfg.ReactorVolume <= 0 {
		return fmt.Errorf("asmn2outil: ReactorVolume = %g must be positive", cfg.ReactorVolume)
	}
	if cfg.HorizonDays <= 0 {
		return fmt.Errorf("asmn2outil: HorizonDays = %g must be positive", cfg.HorizonDays)
	}
	if cfg.OutputIntervalDays <= 0 || cfg.OutputIntervalDays > cfg.HorizonDays {
		return fmt.Errorf("asmn2outil: OutputIntervalDays = %g must be in (0, HorizonDays]",
			cfg.OutputIntervalDays)
	}
	if cfg.OutputFile == "" {
		return fmt.Errorf("asmn2outil: OutputFile must be set")
	}
	return cfg.Params.Validate()
}

// concVector converts a concentration map keyed by component name into
// a state vector.
func concVector(conc map[string]float64) ([]float64, error) {
	v := make([]float64, asmn2o.NumComponents)
	for name, val := range conc {
		i, err := asmn2o.ComponentIndex(name)
		if err != nil {
			return nil, err
		}
		v[i] = val
	}
	return v, nil
}

// BuildForcing assembles the boundary conditions described by the
// configuration: a forcing series when one is given, constant
// conditions otherwise.
func (cfg *SimConfig) BuildForcing() (asmn2o.Forcing, error) {
	if len(cfg.ForcingSeries) == 0 {
		f := &asmn2o.ConstantForcing{
			Flow: cfg.Forcing.Flow,
			Env: asmn2o.Env{
				TempC: cfg.Forcing.TempC,
				PH:    cfg.Forcing.PH,
				KLa:   cfg.Forcing.KLa,
			},
		}
		if f.Flow != 0 {
			conc, err := concVector(cfg.Forcing.Influent)
			if err != nil {
				return nil, err
			}
			f.Conc = conc
		}
		return f, nil
	}

	n := len(cfg.ForcingSeries)
	times := make([]float64, n)
	flows := make([]float64, n)
	concs := make([][]float64, n)
	envs := make([]asmn2o.Env, n)
	for i, rec := range cfg.ForcingSeries {
		times[i] = rec.Time
		flows[i] = rec.Flow
		envs[i] = asmn2o.Env{TempC: rec.TempC, PH: rec.PH, KLa: rec.KLa}
		conc, err := concVector(rec.Influent)
		if err != nil {
			return nil, err
		}
		concs[i] = conc
	}
	return asmn2o.NewSeriesForcing(times, flows, concs, envs)
}

// BuildSolver returns a solver with the configured tolerances applied
// over the defaults.
func (cfg *SimConfig) BuildSolver() *asmn2o.Solver {
	s := asmn2o.NewSolver()
	if cfg.RelTol > 0 {
		s.RelTol = cfg.RelTol
	}
	if cfg.AbsTol > 0 {
		s.AbsTol = cfg.AbsTol
	}
	if cfg.MaxStepDays > 0 {
		s.MaxStep = cfg.MaxStepDays
	}
	return s
}
