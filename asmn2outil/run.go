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

	log "github.com/sirupsen/logrus"

	"github.com/watermodel/asmn2o"
)

// Run executes one simulation described by cfg and writes the results
// to the configured output file. It returns the completed simulation
// so callers can inspect the recorded snapshots.
func Run(cfg *SimConfig) (*asmn2o.Simulation, error) {
	forcing, err := cfg.BuildForcing()
	if err != nil {
		return nil, err
	}
	reactor, err := asmn2o.NewReactor(cfg.ReactorVolume, &cfg.Params, forcing)
	if err != nil {
		return nil, err
	}
	reactor.HoldDO = cfg.HoldDO
	reactor.StripN2O = cfg.StripN2O

	outputter, err := asmn2o.NewOutputter(cfg.OutputFile, cfg.OutputVariables, nil)
	if err != nil {
		return nil, err
	}

	// Receive and print simulation status messages.
	cLog := make(chan *asmn2o.SimulationStatus)
	go func() {
		for msg := range cLog {
			log.Info(msg.String())
		}
	}()

	sim := &asmn2o.Simulation{
		Reactor:        reactor,
		Solver:         cfg.BuildSolver(),
		OutputInterval: cfg.OutputIntervalDays,
		InitFuncs: []asmn2o.SimManipulator{
			asmn2o.InitialState(cfg.InitialState),
			asmn2o.CheckForcing(0, cfg.HorizonDays),
			asmn2o.Record(),
		},
		RunFuncs: []asmn2o.SimManipulator{
			asmn2o.Advance(),
			asmn2o.Record(),
			asmn2o.Log(cLog),
			asmn2o.HorizonCheck(cfg.HorizonDays),
		},
		CleanupFuncs: []asmn2o.SimManipulator{
			asmn2o.Output(outputter),
		},
	}

	log.WithFields(log.Fields{
		"volume":  cfg.ReactorVolume,
		"horizon": cfg.HorizonDays,
	}).Info("initializing simulation")
	if err := sim.Init(); err != nil {
		return nil, fmt.Errorf("asmn2outil: initializing simulation: %w", err)
	}
	if err := sim.Run(); err != nil {
		return nil, fmt.Errorf("asmn2outil: running simulation: %w", err)
	}
	if err := sim.Cleanup(); err != nil {
		return nil, fmt.Errorf("asmn2outil: writing results: %w", err)
	}
	close(cLog)

	for _, w := range sim.Warnings {
		log.Warn(w.String())
	}
	log.WithFields(log.Fields{
		"snapshots": len(sim.Results),
		"output":    cfg.OutputFile,
	}).Info("simulation finished")
	return sim, nil
}
