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
)

// ParamSet holds the stoichiometric and kinetic parameters of the model.
// All kinetic rates are given at 20 °C; use AtTemperature to correct a
// set for a different operating temperature. The toml tags carry the
// symbol names used in the activated-sludge modeling literature so
// configuration files can override individual values by symbol.
type ParamSet struct {
	// Nitrogen, phosphorus, and solids content of organic fractions.
	INSF   float64 `toml:"i_NSF"`   // N content of S_F [g N/g COD]
	IPSF   float64 `toml:"i_PSF"`   // P content of S_F [g P/g COD]
	INSI   float64 `toml:"i_NSI"`   // N content of S_I [g N/g COD]
	IPSI   float64 `toml:"i_PSI"`   // P content of S_I [g P/g COD]
	INXI   float64 `toml:"i_NXI"`   // N content of X_I [g N/g COD]
	IPXI   float64 `toml:"i_PXI"`   // P content of X_I [g P/g COD]
	ITSSXI float64 `toml:"i_TSSXI"` // TSS per COD of X_I [g TSS/g COD]
	INXS   float64 `toml:"i_NXS"`   // N content of X_S [g N/g COD]
	IPXS   float64 `toml:"i_PXS"`   // P content of X_S [g P/g COD]
	ITSSXS float64 `toml:"i_TSSXS"` // TSS per COD of X_S [g TSS/g COD]
	INBM   float64 `toml:"i_NBM"`   // N content of biomass [g N/g COD]
	IPBM   float64 `toml:"i_PBM"`   // P content of biomass [g P/g COD]
	ITSSBM float64 `toml:"i_TSSBM"` // TSS per COD of biomass [g TSS/g COD]

	// Yields and inert fractions.
	YH   float64 `toml:"Y_H"`   // heterotrophic yield [g COD/g COD]
	YPHA float64 `toml:"Y_PHA"` // PHA requirement for PP storage [g COD/g P]
	YPAO float64 `toml:"Y_PAO"` // PAO yield on PHA [g COD/g COD]
	YPO4 float64 `toml:"Y_PO4"` // PP requirement for PHA storage [g P/g COD]
	YAOB float64 `toml:"Y_AOB"` // AOB yield [g COD/g N]
	YNOB float64 `toml:"Y_NOB"` // NOB yield [g COD/g N]
	FSI  float64 `toml:"f_SI"`  // inert soluble fraction of hydrolysis products
	FXI  float64 `toml:"f_XI"`  // inert particulate fraction of lysis products
	NG   float64 `toml:"n_G"`   // anoxic yield reduction factor

	// Hydrolysis.
	KH    float64 `toml:"K_H"`     // hydrolysis rate constant [1/d]
	KO2H  float64 `toml:"K_O2_H"`  // O2 half-saturation [g O2/m³]
	KXH   float64 `toml:"K_X_H"`   // substrate saturation [g COD/g COD]
	NNO3H float64 `toml:"n_NO3_H"` // anoxic (NO3) reduction factor
	NNO2H float64 `toml:"n_NO2_H"` // anoxic (NO2) reduction factor
	KNO3H float64 `toml:"K_NO3_H"` // NO3 half-saturation [g N/m³]
	KNO2H float64 `toml:"K_NO2_H"` // NO2 half-saturation [g N/m³]
	NFeH  float64 `toml:"n_fe_H"`  // anaerobic reduction factor

	// Heterotrophic growth, fermentation, denitrification, and lysis.
	MuH     float64 `toml:"mu_H"`      // max aerobic growth rate [1/d]
	KO2     float64 `toml:"K_O2"`      // O2 half-saturation [g O2/m³]
	KF      float64 `toml:"K_F"`       // S_F half-saturation [g COD/m³]
	KNH4    float64 `toml:"K_NH4"`     // NH4 (nutrient) half-saturation [g N/m³]
	KP      float64 `toml:"K_P"`       // PO4 (nutrient) half-saturation [g P/m³]
	KALK    float64 `toml:"K_ALK"`     // alkalinity half-saturation [mol HCO3/m³]
	KA      float64 `toml:"K_A"`       // S_A half-saturation [g COD/m³]
	KNO3    float64 `toml:"K_NO3"`     // NO3 half-saturation [g N/m³]
	KNO2    float64 `toml:"K_NO2"`     // NO2 half-saturation [g N/m³]
	NNO3D   float64 `toml:"n_NO3_D"`   // NO3 denitrification reduction factor
	QFe     float64 `toml:"q_fe"`      // max fermentation rate [1/d]
	KFeH    float64 `toml:"K_fe_H"`    // fermentation S_F half-saturation [g COD/m³]
	BH      float64 `toml:"b_H"`       // heterotrophic lysis rate [1/d]
	MuHDen  float64 `toml:"mu_H_Den"`  // max denitrifying growth rate [1/d]
	NG3     float64 `toml:"n_G3"`      // NO2 reduction step factor
	NG4     float64 `toml:"n_G4"`      // NO reduction step factor
	NG5     float64 `toml:"n_G5"`      // N2O reduction step factor
	KS3     float64 `toml:"K_S3"`      // COD half-saturation, NO2 step [g COD/m³]
	KS4     float64 `toml:"K_S4"`      // COD half-saturation, NO step [g COD/m³]
	KS5     float64 `toml:"K_S5"`      // COD half-saturation, N2O step [g COD/m³]
	KNO2Den float64 `toml:"K_NO2_Den"` // NO2 half-saturation [g N/m³]
	KOH3    float64 `toml:"K_OH3"`     // O2 inhibition, NO2 step [g O2/m³]
	KOH4    float64 `toml:"K_OH4"`     // O2 inhibition, NO step [g O2/m³]
	KOH5    float64 `toml:"K_OH5"`     // O2 inhibition, N2O step [g O2/m³]
	KNODen  float64 `toml:"K_NO_Den"`  // NO half-saturation (Haldane) [g N/m³]
	KN2ODen float64 `toml:"K_N2O_Den"` // N2O half-saturation [g N/m³]
	KI3NO   float64 `toml:"K_I3NO"`    // NO inhibition, NO2 step [g N/m³]
	KI4NO   float64 `toml:"K_I4NO"`    // NO self-inhibition (Haldane) [g N/m³]
	KI5NO   float64 `toml:"K_I5NO"`    // NO inhibition, N2O step [g N/m³]

	// Phosphorus-accumulating organisms.
	QPHA  float64 `toml:"q_PHA"`   // max PHA storage rate [1/d]
	KAP   float64 `toml:"K_A_P"`   // S_A half-saturation [g COD/m³]
	KALKP float64 `toml:"K_ALK_P"` // alkalinity half-saturation [mol HCO3/m³]
	QPP   float64 `toml:"q_PP"`    // max PP storage rate [1/d]
	KO2P  float64 `toml:"K_O2_P"`  // O2 half-saturation [g O2/m³]
	KPP   float64 `toml:"K_P_P"`   // PO4 half-saturation for PP storage [g P/m³]
	KPHAP float64 `toml:"K_PHA_P"` // PHA/PAO ratio saturation [g COD/g COD]
	KMAXP float64 `toml:"K_MAX_P"` // max PP/PAO ratio [g P/g COD]
	KPPP  float64 `toml:"K_PP_P"`  // PP/PAO ratio saturation [g P/g COD]
	KIPPP float64 `toml:"K_IPP_P"` // PP storage inhibition [g P/g COD]
	KPO4P float64 `toml:"K_PO4_P"` // PO4 (nutrient) half-saturation [g P/m³]
	NNO3P float64 `toml:"n_NO3_P"` // anoxic (NO3) reduction factor
	NNO2P float64 `toml:"n_NO2_P"` // anoxic (NO2) reduction factor
	KNO3P float64 `toml:"K_NO3_P"` // NO3 half-saturation [g N/m³]
	KNO2P float64 `toml:"K_NO2_P"` // NO2 half-saturation [g N/m³]
	MuPAO float64 `toml:"mu_PAO"`  // max PAO growth rate [1/d]
	BPAO  float64 `toml:"b_PAO"`   // PAO lysis rate [1/d]
	BPP   float64 `toml:"b_PP"`    // PP lysis rate [1/d]
	BPHA  float64 `toml:"b_PHA"`   // PHA lysis rate [1/d]

	// Autotrophic nitrifiers.
	MuAOBHAO  float64 `toml:"mu_AOB_HAO"`   // max AOB growth rate on NH2OH [1/d]
	QAOBAMO   float64 `toml:"q_AOB_AMO"`    // max NH4 oxidation rate [g N/g COD/d]
	KO2AOB1   float64 `toml:"K_O2_AOB1"`    // O2 half-saturation, AMO step [g O2/m³]
	KNH4AOB   float64 `toml:"K_NH4_AOB"`    // NH4 half-saturation [g N/m³]
	KO2AOB2   float64 `toml:"K_O2_AOB2"`    // O2 half-saturation, HAO step [g O2/m³]
	KNH2OHAOB float64 `toml:"K_NH2OH_AOB"`  // NH2OH half-saturation [g N/m³]
	QAOBHAO   float64 `toml:"q_AOB_HAO"`    // max NO oxidation rate [g N/g COD/d]
	KNOAOBHAO float64 `toml:"K_NO_AOB_HAO"` // NO half-saturation, HAO step [g N/m³]
	QAOBN2ONN float64 `toml:"q_AOB_N2O_NN"` // max N2O rate, NN pathway [g N/g COD/d]
	KNOAOBNN  float64 `toml:"K_NO_AOB_NN"`  // NO half-saturation, NN pathway [g N/m³]
	KO2AOBND  float64 `toml:"K_O2_AOB_ND"`  // O2 affinity, ND pathway [g O2/m³]
	KIO2AOB   float64 `toml:"K_I_O2_AOB"`   // O2 inhibition, ND pathway [g O2/m³]
	KHNO2AOB  float64 `toml:"K_HNO2_AOB"`   // HNO2 half-saturation [g N/m³]
	QAOBN2OND float64 `toml:"q_AOB_N2O_ND"` // max N2O rate, ND pathway [g N/g COD/d]
	KALKAOB   float64 `toml:"K_ALK_AOB"`    // alkalinity half-saturation [mol HCO3/m³]
	KPAOB     float64 `toml:"K_P_AOB"`      // PO4 (nutrient) half-saturation [g P/m³]
	MuNOB     float64 `toml:"mu_NOB"`       // max NOB growth rate [1/d]
	KO2NOB    float64 `toml:"K_O2_NOB"`     // O2 half-saturation [g O2/m³]
	KALKNOB   float64 `toml:"K_ALK_NOB"`    // alkalinity half-saturation [mol HCO3/m³]
	KNO2NOB   float64 `toml:"K_NO2_NOB"`    // NO2 half-saturation [g N/m³]
	KPNOB     float64 `toml:"K_P_NOB"`      // PO4 (nutrient) half-saturation [g P/m³]
	BAOB      float64 `toml:"b_AOB"`        // AOB lysis rate [1/d]
	BNOB      float64 `toml:"b_NOB"`        // NOB lysis rate [1/d]

	// Phosphorus precipitation.
	KPre   float64 `toml:"k_PRE"`    // precipitation rate [m³/g Fe(OH)3/d]
	KRed   float64 `toml:"k_RED"`    // redissolution rate [1/d]
	KALKPr float64 `toml:"K_ALK_PR"` // alkalinity half-saturation [mol HCO3/m³]

	// Nitrifier pH dependence: full activity between the lower and
	// upper limits, dropping off outside them.
	PHLowNit  float64 `toml:"pH_low_nit"`
	PHHighNit float64 `toml:"pH_high_nit"`

	// Arrhenius temperature-correction coefficients.
	ThetaHyd    float64 `toml:"theta_hyd"`     // hydrolysis
	ThetaHet    float64 `toml:"theta_het"`     // heterotrophic growth, fermentation, lysis
	ThetaPAO    float64 `toml:"theta_PAO"`     // PAO storage, growth, lysis
	ThetaAutGro float64 `toml:"theta_aut_gro"` // nitrifier growth and oxidation
	ThetaAutDec float64 `toml:"theta_aut_dec"` // nitrifier decay
}

// DefaultParams returns the parameter set at 20 °C.
func DefaultParams() *ParamSet {
	return &ParamSet{
		INSF: 0.03, IPSF: 0.01, INSI: 0.01, IPSI: 0.0,
		INXI: 0.02, IPXI: 0.01, ITSSXI: 0.75,
		INXS: 0.04, IPXS: 0.01, ITSSXS: 0.75,
		INBM: 0.07, IPBM: 0.02, ITSSBM: 0.9,

		YH: 0.625, YPHA: 0.2, YPAO: 0.625, YPO4: 0.4,
		YAOB: 0.18, YNOB: 0.08,
		FSI: 0.0, FXI: 0.1, NG: 1.0,

		KH: 3.0, KO2H: 0.2, KXH: 0.1,
		NNO3H: 0.6, NNO2H: 0.6, KNO3H: 0.5, KNO2H: 0.5, NFeH: 0.4,

		MuH: 6.0, KO2: 0.2, KF: 4.0, KNH4: 0.05, KP: 0.01, KALK: 0.1,
		KA: 4.0, KNO3: 0.5, KNO2: 0.5, NNO3D: 0.8,
		QFe: 3.0, KFeH: 4.0, BH: 0.4,
		MuHDen: 6.25, NG3: 0.16, NG4: 0.35, NG5: 0.35,
		KS3: 20.0, KS4: 20.0, KS5: 40.0,
		KNO2Den: 0.2, KOH3: 0.1, KOH4: 0.1, KOH5: 0.1,
		KNODen: 0.05, KN2ODen: 0.05,
		KI3NO: 0.5, KI4NO: 0.3, KI5NO: 0.075,

		QPHA: 3.0, KAP: 4.0, KALKP: 0.1,
		QPP: 1.5, KO2P: 0.2, KPP: 0.2, KPHAP: 0.01,
		KMAXP: 0.34, KPPP: 0.01, KIPPP: 0.02, KPO4P: 0.01,
		NNO3P: 0.6, NNO2P: 0.6, KNO3P: 0.5, KNO2P: 0.5,
		MuPAO: 1.0, BPAO: 0.2, BPP: 0.2, BPHA: 0.2,

		MuAOBHAO: 0.78, QAOBAMO: 5.2008,
		KO2AOB1: 1.0, KNH4AOB: 0.2, KO2AOB2: 0.6, KNH2OHAOB: 0.9,
		QAOBHAO: 5.2008, KNOAOBHAO: 0.0003,
		QAOBN2ONN: 0.0078, KNOAOBNN: 0.008,
		KO2AOBND: 0.5, KIO2AOB: 0.8, KHNO2AOB: 0.004, QAOBN2OND: 1.3008,
		KALKAOB: 0.1, KPAOB: 0.01,
		MuNOB: 0.78, KO2NOB: 1.2, KALKNOB: 0.1, KNO2NOB: 0.5, KPNOB: 0.01,
		BAOB: 0.096, BNOB: 0.096,

		KPre: 1.0, KRed: 0.6, KALKPr: 0.5,

		PHLowNit: 6.5, PHHighNit: 8.5,

		ThetaHyd: 1.041, ThetaHet: 1.072, ThetaPAO: 1.041,
		ThetaAutGro: 1.103, ThetaAutDec: 1.029,
	}
}

// AtTemperature returns a copy of the parameter set with all rate
// constants Arrhenius-corrected from 20 °C to the given temperature.
// Half-saturation coefficients and stoichiometric fractions are left
// unchanged.
func (p *ParamSet) AtTemperature(tempC float64) *ParamSet {
	q := *p
	dT := tempC - 20.0
	corr := func(theta float64) float64 { return math.Pow(theta, dT) }

	fHyd := corr(p.ThetaHyd)
	q.KH *= fHyd

	fHet := corr(p.ThetaHet)
	q.MuH *= fHet
	q.MuHDen *= fHet
	q.QFe *= fHet
	q.BH *= fHet

	fPAO := corr(p.ThetaPAO)
	q.QPHA *= fPAO
	q.QPP *= fPAO
	q.MuPAO *= fPAO
	q.BPAO *= fPAO
	q.BPP *= fPAO
	q.BPHA *= fPAO

	fGro := corr(p.ThetaAutGro)
	q.QAOBAMO *= fGro
	q.MuAOBHAO *= fGro
	q.QAOBHAO *= fGro
	q.QAOBN2ONN *= fGro
	q.QAOBN2OND *= fGro
	q.MuNOB *= fGro

	fDec := corr(p.ThetaAutDec)
	q.BAOB *= fDec
	q.BNOB *= fDec

	return &q
}

// ParameterError reports an invalid or missing model parameter.
type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("asmn2o: parameter %s = %g: %s", e.Name, e.Value, e.Reason)
}

// Validate checks the parameter set for values that would make the
// model ill-defined: rate and half-saturation constants must be
// positive, fractions must lie in [0, 1], and content coefficients
// must be nonnegative.
func (p *ParamSet) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"Y_H", p.YH}, {"Y_PHA", p.YPHA}, {"Y_PAO", p.YPAO},
		{"Y_PO4", p.YPO4}, {"Y_AOB", p.YAOB}, {"Y_NOB", p.YNOB},
		{"n_G", p.NG},
		{"K_H", p.KH}, {"K_O2_H", p.KO2H}, {"K_X_H", p.KXH},
		{"K_NO3_H", p.KNO3H}, {"K_NO2_H", p.KNO2H},
		{"mu_H", p.MuH}, {"K_O2", p.KO2}, {"K_F", p.KF},
		{"K_NH4", p.KNH4}, {"K_P", p.KP}, {"K_ALK", p.KALK},
		{"K_A", p.KA}, {"K_NO3", p.KNO3}, {"K_NO2", p.KNO2},
		{"q_fe", p.QFe}, {"K_fe_H", p.KFeH}, {"b_H", p.BH},
		{"mu_H_Den", p.MuHDen},
		{"n_G3", p.NG3}, {"n_G4", p.NG4}, {"n_G5", p.NG5},
		{"K_S3", p.KS3}, {"K_S4", p.KS4}, {"K_S5", p.KS5},
		{"K_NO2_Den", p.KNO2Den}, {"K_OH3", p.KOH3}, {"K_OH4", p.KOH4},
		{"K_OH5", p.KOH5}, {"K_NO_Den", p.KNODen}, {"K_N2O_Den", p.KN2ODen},
		{"K_I3NO", p.KI3NO}, {"K_I4NO", p.KI4NO}, {"K_I5NO", p.KI5NO},
		{"q_PHA", p.QPHA}, {"K_A_P", p.KAP}, {"K_ALK_P", p.KALKP},
		{"q_PP", p.QPP}, {"K_O2_P", p.KO2P}, {"K_P_P", p.KPP},
		{"K_PHA_P", p.KPHAP}, {"K_MAX_P", p.KMAXP}, {"K_PP_P", p.KPPP},
		{"K_IPP_P", p.KIPPP}, {"K_PO4_P", p.KPO4P},
		{"K_NO3_P", p.KNO3P}, {"K_NO2_P", p.KNO2P},
		{"mu_PAO", p.MuPAO}, {"b_PAO", p.BPAO}, {"b_PP", p.BPP},
		{"b_PHA", p.BPHA},
		{"mu_AOB_HAO", p.MuAOBHAO}, {"q_AOB_AMO", p.QAOBAMO},
		{"K_O2_AOB1", p.KO2AOB1}, {"K_NH4_AOB", p.KNH4AOB},
		{"K_O2_AOB2", p.KO2AOB2}, {"K_NH2OH_AOB", p.KNH2OHAOB},
		{"q_AOB_HAO", p.QAOBHAO}, {"K_NO_AOB_HAO", p.KNOAOBHAO},
		{"q_AOB_N2O_NN", p.QAOBN2ONN}, {"K_NO_AOB_NN", p.KNOAOBNN},
		{"K_O2_AOB_ND", p.KO2AOBND}, {"K_I_O2_AOB", p.KIO2AOB},
		{"K_HNO2_AOB", p.KHNO2AOB}, {"q_AOB_N2O_ND", p.QAOBN2OND},
		{"K_ALK_AOB", p.KALKAOB}, {"K_P_AOB", p.KPAOB},
		{"mu_NOB", p.MuNOB}, {"K_O2_NOB", p.KO2NOB},
		{"K_ALK_NOB", p.KALKNOB}, {"K_NO2_NOB", p.KNO2NOB},
		{"K_P_NOB", p.KPNOB}, {"b_AOB", p.BAOB}, {"b_NOB", p.BNOB},
		{"k_PRE", p.KPre}, {"k_RED", p.KRed}, {"K_ALK_PR", p.KALKPr},
		{"theta_hyd", p.ThetaHyd}, {"theta_het", p.ThetaHet},
		{"theta_PAO", p.ThetaPAO}, {"theta_aut_gro", p.ThetaAutGro},
		{"theta_aut_dec", p.ThetaAutDec},
	}
	for _, c := range positive {
		if !(c.v > 0) || math.IsInf(c.v, 1) {
			return &ParameterError{Name: c.name, Value: c.v,
				Reason: "must be positive and finite"}
		}
	}

	fractions := []struct {
		name string
		v    float64
	}{
		{"f_SI", p.FSI}, {"f_XI", p.FXI},
		{"n_NO3_H", p.NNO3H}, {"n_NO2_H", p.NNO2H}, {"n_fe_H", p.NFeH},
		{"n_NO3_D", p.NNO3D}, {"n_NO3_P", p.NNO3P}, {"n_NO2_P", p.NNO2P},
	}
	for _, c := range fractions {
		if c.v < 0 || c.v > 1 || math.IsNaN(c.v) {
			return &ParameterError{Name: c.name, Value: c.v,
				Reason: "must lie in [0, 1]"}
		}
	}

	contents := []struct {
		name string
		v    float64
	}{
		{"i_NSF", p.INSF}, {"i_PSF", p.IPSF}, {"i_NSI", p.INSI},
		{"i_PSI", p.IPSI}, {"i_NXI", p.INXI}, {"i_PXI", p.IPXI},
		{"i_TSSXI", p.ITSSXI}, {"i_NXS", p.INXS}, {"i_PXS", p.IPXS},
		{"i_TSSXS", p.ITSSXS}, {"i_NBM", p.INBM}, {"i_PBM", p.IPBM},
		{"i_TSSBM", p.ITSSBM},
	}
	for _, c := range contents {
		if c.v < 0 || math.IsNaN(c.v) {
			return &ParameterError{Name: c.name, Value: c.v,
				Reason: "must be nonnegative"}
		}
	}

	if !(p.PHLowNit < p.PHHighNit) {
		return &ParameterError{Name: "pH_low_nit", Value: p.PHLowNit,
			Reason: "must be below pH_high_nit"}
	}
	if p.FSI+p.FXI > 1 {
		return &ParameterError{Name: "f_SI", Value: p.FSI,
			Reason: "f_SI and f_XI must not sum above 1"}
	}
	return nil
}
