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

import "math"

// rateFunc computes one biochemical process rate [g/m³/d] from the
// state vector, temperature-corrected parameters, and environment.
type rateFunc func(p *ParamSet, c []float64, env Env) float64

// Category groups the model processes by the kind of transformation
// they perform.
type Category int

const (
	Hydrolysis Category = iota
	Growth
	Fermentation
	Lysis
	Storage
	Nitrification
	Denitrification
	Precipitation
)

func (c Category) String() string {
	switch c {
	case Hydrolysis:
		return "hydrolysis"
	case Growth:
		return "growth"
	case Fermentation:
		return "fermentation"
	case Lysis:
		return "lysis"
	case Storage:
		return "storage"
	case Nitrification:
		return "nitrification"
	case Denitrification:
		return "denitrification"
	case Precipitation:
		return "precipitation"
	}
	return "unknown"
}

// Process is one biochemical transformation of the model.
type Process struct {
	Name     string
	Category Category
	rate     rateFunc
}

// Rate evaluates the process rate, clamped to be nonnegative. A NaN
// rate (possible only for pathological states) also maps to zero.
func (pr *Process) Rate(p *ParamSet, c []float64, env Env) float64 {
	r := pr.rate(p, c, env)
	if r < 0 || math.IsNaN(r) {
		return 0
	}
	return r
}

// nutrientsH is the nutrient and alkalinity limitation shared by all
// heterotrophic growth processes.
func nutrientsH(p *ParamSet, c []float64) float64 {
	return monod(c[iSNH4], p.KNH4) * monod(c[iSPO4], p.KP) * monod(c[iSALK], p.KALK)
}

// ppRatio returns the polyphosphate inhibition term for PP storage,
// which shuts the process off as the stored PP approaches its maximum
// fraction of the PAO biomass.
func ppRatio(p *ParamSet, c []float64) float64 {
	if c[iXPAO] <= 0 {
		return 0
	}
	return monod(p.KMAXP-c[iXPP]/c[iXPAO], p.KIPPP)
}

// processCatalog returns the 40-process catalog in matrix row order.
func processCatalog() []Process {
	return []Process{
		// 1-4: hydrolysis of slowly biodegradable substrate.
		{"aerobic hydrolysis", Hydrolysis, func(p *ParamSet, c []float64, env Env) float64 {
			return p.KH * monod(c[iSO2], p.KO2H) *
				ratioMonod(c[iXS], c[iXH], p.KXH) * c[iXH]
		}},
		{"anoxic hydrolysis on nitrate", Hydrolysis, func(p *ParamSet, c []float64, env Env) float64 {
			return p.KH * p.NNO3H * inhibition(p.KO2H, c[iSO2]) *
				monod(c[iSNO3], p.KNO3H) *
				ratioMonod(c[iXS], c[iXH], p.KXH) * c[iXH]
		}},
		{"anoxic hydrolysis on nitrite", Hydrolysis, func(p *ParamSet, c []float64, env Env) float64 {
			return p.KH * p.NNO2H * inhibition(p.KO2H, c[iSO2]) *
				monod(c[iSNO2], p.KNO2H) *
				ratioMonod(c[iXS], c[iXH], p.KXH) * c[iXH]
		}},
		{"anaerobic hydrolysis", Hydrolysis, func(p *ParamSet, c []float64, env Env) float64 {
			return p.KH * p.NFeH * inhibition(p.KO2H, c[iSO2]) *
				inhibition(p.KNO2H, c[iSNO2]+c[iSNO3]) *
				ratioMonod(c[iXS], c[iXH], p.KXH) * c[iXH]
		}},

		// 5-6: aerobic heterotrophic growth.
		{"aerobic growth on fermentable substrate", Growth, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuH * monod(c[iSF], p.KF) * monod(c[iSF], c[iSA]) *
				monod(c[iSO2], p.KO2) * nutrientsH(p, c) * c[iXH]
		}},
		{"aerobic growth on acetate", Growth, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuH * monod(c[iSA], p.KA) * monod(c[iSA], c[iSF]) *
				monod(c[iSO2], p.KO2) * nutrientsH(p, c) * c[iXH]
		}},

		// 7-10: four-step denitrification on fermentable substrate.
		{"anoxic growth on fermentable substrate, NO3 to NO2", Denitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuH * p.NNO3D * monod(c[iSF], p.KF) * monod(c[iSF], c[iSA]) *
				inhibition(p.KO2, c[iSO2]) * monod(c[iSNO3], p.KNO3) *
				nutrientsH(p, c) * c[iXH]
		}},
		{"anoxic growth on fermentable substrate, NO2 to NO", Denitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuHDen * p.NG3 * monod(c[iSF], p.KS3) * monod(c[iSF], c[iSA]) *
				monod(c[iSNO2], p.KNO2Den) * inhibition(p.KOH3, c[iSO2]) *
				inhibition(p.KI3NO, c[iSNO]) * nutrientsH(p, c) * c[iXH]
		}},
		{"anoxic growth on fermentable substrate, NO to N2O", Denitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuHDen * p.NG4 * monod(c[iSF], p.KS4) * monod(c[iSF], c[iSA]) *
				haldane(c[iSNO], p.KNODen, p.KI4NO) * inhibition(p.KOH4, c[iSO2]) *
				nutrientsH(p, c) * c[iXH]
		}},
		{"anoxic growth on fermentable substrate, N2O to N2", Denitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuHDen * p.NG5 * monod(c[iSF], p.KS5) * monod(c[iSF], c[iSA]) *
				monod(c[iSN2O], p.KN2ODen) * inhibition(p.KOH5, c[iSO2]) *
				inhibition(p.KI5NO, c[iSNO]) * nutrientsH(p, c) * c[iXH]
		}},

		// 11-14: four-step denitrification on acetate.
		{"anoxic growth on acetate, NO3 to NO2", Denitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuH * p.NNO3D * monod(c[iSA], p.KA) * monod(c[iSA], c[iSF]) *
				inhibition(p.KO2, c[iSO2]) * monod(c[iSNO3], p.KNO3) *
				nutrientsH(p, c) * c[iXH]
		}},
		{"anoxic growth on acetate, NO2 to NO", Denitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuHDen * p.NG3 * monod(c[iSA], p.KS3) * monod(c[iSA], c[iSF]) *
				monod(c[iSNO2], p.KNO2Den) * inhibition(p.KOH3, c[iSO2]) *
				inhibition(p.KI3NO, c[iSNO]) * nutrientsH(p, c) * c[iXH]
		}},
		{"anoxic growth on acetate, NO to N2O", Denitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuHDen * p.NG4 * monod(c[iSA], p.KS4) * monod(c[iSA], c[iSF]) *
				haldane(c[iSNO], p.KNODen, p.KI4NO) * inhibition(p.KOH4, c[iSO2]) *
				nutrientsH(p, c) * c[iXH]
		}},
		{"anoxic growth on acetate, N2O to N2", Denitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuHDen * p.NG5 * monod(c[iSA], p.KS5) * monod(c[iSA], c[iSF]) *
				monod(c[iSN2O], p.KN2ODen) * inhibition(p.KOH5, c[iSO2]) *
				inhibition(p.KI5NO, c[iSNO]) * nutrientsH(p, c) * c[iXH]
		}},

		// 15-16: fermentation and heterotrophic lysis.
		{"fermentation", Fermentation, func(p *ParamSet, c []float64, env Env) float64 {
			return p.QFe * inhibition(p.KO2, c[iSO2]) *
				inhibition(p.KNO2, c[iSNO2]+c[iSNO3]) *
				monod(c[iSF], p.KFeH) * monod(c[iSALK], p.KALK) * c[iXH]
		}},
		{"heterotrophic lysis", Lysis, func(p *ParamSet, c []float64, env Env) float64 {
			return p.BH * c[iXH]
		}},

		// 17: anaerobic PHA storage.
		{"PHA storage", Storage, func(p *ParamSet, c []float64, env Env) float64 {
			return p.QPHA * monod(c[iSA], p.KAP) * monod(c[iSALK], p.KALKP) *
				ratioMonod(c[iXPP], c[iXPAO], p.KPPP) * c[iXPAO]
		}},

		// 18-22: polyphosphate storage, aerobic then anoxic four-step.
		{"aerobic PP storage", Storage, func(p *ParamSet, c []float64, env Env) float64 {
			return p.QPP * monod(c[iSO2], p.KO2P) * monod(c[iSPO4], p.KPP) *
				monod(c[iSALK], p.KALKP) *
				ratioMonod(c[iXPHA], c[iXPAO], p.KPHAP) * ppRatio(p, c) * c[iXPAO]
		}},
		{"anoxic PP storage, NO3 to NO2", Storage, func(p *ParamSet, c []float64, env Env) float64 {
			return p.QPP * p.NNO3P * monod(c[iSNO3], p.KNO3P) *
				inhibition(p.KO2P, c[iSO2]) * monod(c[iSPO4], p.KPP) *
				monod(c[iSALK], p.KALKP) *
				ratioMonod(c[iXPHA], c[iXPAO], p.KPHAP) * ppRatio(p, c) * c[iXPAO]
		}},
		{"anoxic PP storage, NO2 to NO", Storage, func(p *ParamSet, c []float64, env Env) float64 {
			return p.QPP * p.NNO2P * monod(c[iSNO2], p.KNO2P) *
				inhibition(p.KOH3, c[iSO2]) * inhibition(p.KI3NO, c[iSNO]) *
				monod(c[iSPO4], p.KPP) * monod(c[iSALK], p.KALKP) *
				ratioMonod(c[iXPHA], c[iXPAO], p.KPHAP) * ppRatio(p, c) * c[iXPAO]
		}},
		{"anoxic PP storage, NO to N2O", Storage, func(p *ParamSet, c []float64, env Env) float64 {
			return p.QPP * p.NG4 * haldane(c[iSNO], p.KNODen, p.KI4NO) *
				inhibition(p.KOH4, c[iSO2]) *
				monod(c[iSPO4], p.KPP) * monod(c[iSALK], p.KALKP) *
				ratioMonod(c[iXPHA], c[iXPAO], p.KPHAP) * ppRatio(p, c) * c[iXPAO]
		}},
		{"anoxic PP storage, N2O to N2", Storage, func(p *ParamSet, c []float64, env Env) float64 {
			return p.QPP * p.NG5 * monod(c[iSN2O], p.KN2ODen) *
				inhibition(p.KOH5, c[iSO2]) * inhibition(p.KI5NO, c[iSNO]) *
				monod(c[iSPO4], p.KPP) * monod(c[iSALK], p.KALKP) *
				ratioMonod(c[iXPHA], c[iXPAO], p.KPHAP) * ppRatio(p, c) * c[iXPAO]
		}},

		// 23-27: PAO growth on stored PHA, aerobic then anoxic four-step.
		{"aerobic PAO growth", Growth, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuPAO * monod(c[iSO2], p.KO2P) * monod(c[iSPO4], p.KPO4P) *
				monod(c[iSNH4], p.KNH4) * monod(c[iSALK], p.KALKP) *
				ratioMonod(c[iXPHA], c[iXPAO], p.KPHAP) * c[iXPAO]
		}},
		{"anoxic PAO growth, NO3 to NO2", Denitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuPAO * p.NNO3P * monod(c[iSNO3], p.KNO3P) *
				inhibition(p.KO2P, c[iSO2]) * monod(c[iSPO4], p.KPO4P) *
				monod(c[iSNH4], p.KNH4) * monod(c[iSALK], p.KALKP) *
				ratioMonod(c[iXPHA], c[iXPAO], p.KPHAP) * c[iXPAO]
		}},
		{"anoxic PAO growth, NO2 to NO", Denitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuPAO * p.NNO2P * monod(c[iSNO2], p.KNO2P) *
				inhibition(p.KOH3, c[iSO2]) * inhibition(p.KI3NO, c[iSNO]) *
				monod(c[iSPO4], p.KPO4P) * monod(c[iSNH4], p.KNH4) *
				monod(c[iSALK], p.KALKP) *
				ratioMonod(c[iXPHA], c[iXPAO], p.KPHAP) * c[iXPAO]
		}},
		{"anoxic PAO growth, NO to N2O", Denitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuPAO * p.NG4 * haldane(c[iSNO], p.KNODen, p.KI4NO) *
				inhibition(p.KOH4, c[iSO2]) * monod(c[iSPO4], p.KPO4P) *
				monod(c[iSNH4], p.KNH4) * monod(c[iSALK], p.KALKP) *
				ratioMonod(c[iXPHA], c[iXPAO], p.KPHAP) * c[iXPAO]
		}},
		{"anoxic PAO growth, N2O to N2", Denitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuPAO * p.NG5 * monod(c[iSN2O], p.KN2ODen) *
				inhibition(p.KOH5, c[iSO2]) * inhibition(p.KI5NO, c[iSNO]) *
				monod(c[iSPO4], p.KPO4P) * monod(c[iSNH4], p.KNH4) *
				monod(c[iSALK], p.KALKP) *
				ratioMonod(c[iXPHA], c[iXPAO], p.KPHAP) * c[iXPAO]
		}},

		// 28-30: lysis of PAO biomass and storage products.
		{"PAO lysis", Lysis, func(p *ParamSet, c []float64, env Env) float64 {
			return p.BPAO * monod(c[iSALK], p.KALKP) * c[iXPAO]
		}},
		{"PP lysis", Lysis, func(p *ParamSet, c []float64, env Env) float64 {
			return p.BPP * monod(c[iSALK], p.KALKP) * c[iXPP]
		}},
		{"PHA lysis", Lysis, func(p *ParamSet, c []float64, env Env) float64 {
			return p.BPHA * monod(c[iSALK], p.KALKP) * c[iXPHA]
		}},

		// 31-36: two-step nitrification with N2O side paths.
		{"ammonia oxidation to hydroxylamine", Nitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.QAOBAMO * monod(c[iSO2], p.KO2AOB1) *
				monod(c[iSNH4], p.KNH4AOB) *
				pHFactor(env.PH, p.PHLowNit, p.PHHighNit) * c[iXAOB]
		}},
		{"AOB growth on hydroxylamine", Nitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuAOBHAO * monod(c[iSO2], p.KO2AOB2) *
				monod(c[iSNH2OH], p.KNH2OHAOB) * monod(c[iSNH4], 1e-11) *
				monod(c[iSPO4], p.KPAOB) * monod(c[iSALK], p.KALKAOB) *
				pHFactor(env.PH, p.PHLowNit, p.PHHighNit) * c[iXAOB]
		}},
		{"nitric oxide oxidation to nitrite", Nitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.QAOBHAO * monod(c[iSO2], p.KO2AOB2) *
				monod(c[iSNO], p.KNOAOBHAO) *
				pHFactor(env.PH, p.PHLowNit, p.PHHighNit) * c[iXAOB]
		}},
		{"N2O production, nitrifier nitrification", Nitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.QAOBN2ONN * monod(c[iSNH2OH], p.KNH2OHAOB) *
				monod(c[iSNO], p.KNOAOBNN) *
				pHFactor(env.PH, p.PHLowNit, p.PHHighNit) * c[iXAOB]
		}},
		{"N2O production, nitrifier denitrification", Nitrification, func(p *ParamSet, c []float64, env Env) float64 {
			hno2 := freeNitrousAcid(c[iSNO2], env.TempC, env.PH)
			return p.QAOBN2OND * monod(c[iSNH2OH], p.KNH2OHAOB) *
				monod(hno2, p.KHNO2AOB) *
				aobOxygen(c[iSO2], p.KO2AOBND, p.KIO2AOB) *
				pHFactor(env.PH, p.PHLowNit, p.PHHighNit) * c[iXAOB]
		}},
		{"NOB growth on nitrite", Nitrification, func(p *ParamSet, c []float64, env Env) float64 {
			return p.MuNOB * monod(c[iSO2], p.KO2NOB) *
				monod(c[iSNO2], p.KNO2NOB) * monod(c[iSPO4], p.KPNOB) *
				monod(c[iSALK], p.KALKNOB) *
				pHFactor(env.PH, p.PHLowNit, p.PHHighNit) * c[iXNOB]
		}},

		// 37-38: nitrifier lysis.
		{"AOB lysis", Lysis, func(p *ParamSet, c []float64, env Env) float64 {
			return p.BAOB * c[iXAOB]
		}},
		{"NOB lysis", Lysis, func(p *ParamSet, c []float64, env Env) float64 {
			return p.BNOB * c[iXNOB]
		}},

		// 39-40: phosphorus precipitation and redissolution.
		{"phosphorus precipitation", Precipitation, func(p *ParamSet, c []float64, env Env) float64 {
			if c[iSPO4] <= 0 || c[iXMeOH] <= 0 {
				return 0
			}
			return p.KPre * c[iSPO4] * c[iXMeOH]
		}},
		{"phosphorus redissolution", Precipitation, func(p *ParamSet, c []float64, env Env) float64 {
			return p.KRed * monod(c[iSALK], p.KALKPr) * c[iXMeP]
		}},
	}
}

// RateEvaluator computes the process rate vector ρ for a state and
// environment. Parameters are temperature-corrected lazily: the
// corrected set is cached and only recomputed when the temperature
// changes.
type RateEvaluator struct {
	base     *ParamSet
	procs    []Process
	lastTemp float64
	atTemp   *ParamSet
}

// NewRateEvaluator validates the parameter set and assembles the
// process catalog.
func NewRateEvaluator(p *ParamSet) (*RateEvaluator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &RateEvaluator{base: p, procs: processCatalog(), lastTemp: math.NaN()}, nil
}

// Processes returns the catalog in matrix row order.
func (e *RateEvaluator) Processes() []Process { return e.procs }

// params returns the parameter set corrected to the given temperature.
func (e *RateEvaluator) params(tempC float64) *ParamSet {
	if tempC != e.lastTemp {
		e.atTemp = e.base.AtTemperature(tempC)
		e.lastTemp = tempC
	}
	return e.atTemp
}

// Evaluate fills rho with the process rates for state c under the
// given environment. rho must have length NumProcesses.
func (e *RateEvaluator) Evaluate(c []float64, env Env, rho []float64) {
	p := e.params(env.TempC)
	for i := range e.procs {
		rho[i] = e.procs[i].Rate(p, c, env)
	}
}
