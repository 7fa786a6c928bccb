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

import "fmt"

// Indices of the model components in the state vector. The order here
// matches the columns of the stoichiometric matrix and must not change.
const (
	iSO2    = iota // dissolved oxygen [g O2/m³]
	iSF            // fermentable readily biodegradable substrate [g COD/m³]
	iSA            // fermentation products (acetate) [g COD/m³]
	iSNH4          // ammonium plus ammonia nitrogen [g N/m³]
	iSNH2OH        // hydroxylamine [g N/m³]
	iSN2O          // dissolved nitrous oxide [g N/m³]
	iSNO           // dissolved nitric oxide [g N/m³]
	iSNO2          // nitrite [g N/m³]
	iSNO3          // nitrate [g N/m³]
	iSPO4          // inorganic soluble phosphorus [g P/m³]
	iSI            // inert soluble organic material [g COD/m³]
	iSALK          // alkalinity [mol HCO3/m³]
	iSN2           // dissolved dinitrogen [g N/m³]
	iXI            // inert particulate organic material [g COD/m³]
	iXS            // slowly biodegradable substrate [g COD/m³]
	iXH            // heterotrophic biomass [g COD/m³]
	iXPAO          // phosphorus-accumulating biomass [g COD/m³]
	iXPP           // stored polyphosphate [g P/m³]
	iXPHA          // stored polyhydroxyalkanoates [g COD/m³]
	iXAOB          // ammonia-oxidizing biomass [g COD/m³]
	iXNOB          // nitrite-oxidizing biomass [g COD/m³]
	iXTSS          // total suspended solids [g TSS/m³]
	iXMeOH         // metal hydroxide precipitant [g TSS/m³]
	iXMeP          // metal phosphate precipitate [g TSS/m³]

	// NumComponents is the length of the model state vector.
	NumComponents = iXMeP + 1
)

// componentNames holds the canonical component names in state-vector order.
var componentNames = []string{
	"S_O2", "S_F", "S_A", "S_NH4", "S_NH2OH", "S_N2O", "S_NO", "S_NO2",
	"S_NO3", "S_PO4", "S_I", "S_ALK", "S_N2", "X_I", "X_S", "X_H",
	"X_PAO", "X_PP", "X_PHA", "X_AOB", "X_NOB", "X_TSS", "X_MeOH", "X_MeP",
}

// componentUnits holds the measurement unit of each component.
var componentUnits = []string{
	"g O2/m³", "g COD/m³", "g COD/m³", "g N/m³", "g N/m³", "g N/m³",
	"g N/m³", "g N/m³", "g N/m³", "g P/m³", "g COD/m³", "mol HCO3/m³",
	"g N/m³", "g COD/m³", "g COD/m³", "g COD/m³", "g COD/m³",
	"g P/m³", "g COD/m³", "g COD/m³", "g COD/m³", "g TSS/m³",
	"g TSS/m³", "g TSS/m³",
}

// componentDescriptions holds a short description of each component.
var componentDescriptions = []string{
	"dissolved oxygen",
	"fermentable readily biodegradable substrate",
	"fermentation products (acetate)",
	"ammonium plus ammonia nitrogen",
	"hydroxylamine",
	"dissolved nitrous oxide",
	"dissolved nitric oxide",
	"nitrite",
	"nitrate",
	"inorganic soluble phosphorus",
	"inert soluble organic material",
	"alkalinity",
	"dissolved dinitrogen",
	"inert particulate organic material",
	"slowly biodegradable substrate",
	"heterotrophic biomass",
	"phosphorus-accumulating biomass",
	"stored polyphosphate",
	"stored polyhydroxyalkanoates",
	"ammonia-oxidizing biomass",
	"nitrite-oxidizing biomass",
	"total suspended solids",
	"metal hydroxide precipitant",
	"metal phosphate precipitate",
}

// Component describes one entry of the model state vector.
type Component struct {
	Name        string
	Description string
	Units       string
}

// Components returns the component registry in state-vector order.
func Components() []Component {
	out := make([]Component, NumComponents)
	for i := range out {
		out[i] = Component{
			Name:        componentNames[i],
			Description: componentDescriptions[i],
			Units:       componentUnits[i],
		}
	}
	return out
}

// ComponentNames returns the canonical component names
// in state-vector order.
func ComponentNames() []string {
	out := make([]string, NumComponents)
	copy(out, componentNames)
	return out
}

// ComponentUnit returns the measurement unit of the named component.
func ComponentUnit(name string) (string, error) {
	i, err := ComponentIndex(name)
	if err != nil {
		return "", err
	}
	return componentUnits[i], nil
}

// ComponentIndex returns the state-vector index of the named component.
func ComponentIndex(name string) (int, error) {
	for i, n := range componentNames {
		if n == name {
			return i, nil
		}
	}
	return -1, UnknownComponentError(name)
}

// UnknownComponentError is returned when a component name is requested
// that is not part of the model.
type UnknownComponentError string

func (e UnknownComponentError) Error() string {
	return fmt.Sprintf("asmn2o: unknown model component %q", string(e))
}

// Basis identifies a conserved quantity that every biochemical process
// must balance to zero.
type Basis int

const (
	BasisCOD Basis = iota // theoretical oxygen demand
	BasisNitrogen
	BasisPhosphorus
	BasisCharge
	BasisTSS

	numBases = iota
)

func (b Basis) String() string {
	switch b {
	case BasisCOD:
		return "COD"
	case BasisNitrogen:
		return "nitrogen"
	case BasisPhosphorus:
		return "phosphorus"
	case BasisCharge:
		return "charge"
	case BasisTSS:
		return "TSS"
	}
	return fmt.Sprintf("Basis(%d)", int(b))
}

// Theoretical oxygen demand of each nitrogen species [g COD/g N],
// relative to ammonium at zero. The values follow from the electron
// content of each oxidation state (e.g. NO3⁻ at +5 holds 8 fewer
// electrons than NH4⁺ at −3, and 8 e⁻ × 8 g COD/mol e⁻ / 14 g N/mol
// = 32/7 g COD/g N).
const (
	codNH2OH = -8.0 / 7.0
	codN2O   = -16.0 / 7.0
	codNO    = -20.0 / 7.0
	codNO2   = -24.0 / 7.0
	codNO3   = -32.0 / 7.0
	codN2    = -12.0 / 7.0
)

// conversionFactors returns the per-component factors that convert a
// stoichiometric coefficient into the given conservation basis. Nitrogen
// and phosphorus content of organics and biomass come from the
// parameter set.
func conversionFactors(p *ParamSet, b Basis) [NumComponents]float64 {
	var f [NumComponents]float64
	switch b {
	case BasisCOD:
		f[iSO2] = -1
		f[iSF] = 1
		f[iSA] = 1
		f[iSNH2OH] = codNH2OH
		f[iSN2O] = codN2O
		f[iSNO] = codNO
		f[iSNO2] = codNO2
		f[iSNO3] = codNO3
		f[iSN2] = codN2
		f[iSI] = 1
		f[iXI] = 1
		f[iXS] = 1
		f[iXH] = 1
		f[iXPAO] = 1
		f[iXPHA] = 1
		f[iXAOB] = 1
		f[iXNOB] = 1
	case BasisNitrogen:
		f[iSNH4] = 1
		f[iSNH2OH] = 1
		f[iSN2O] = 1
		f[iSNO] = 1
		f[iSNO2] = 1
		f[iSNO3] = 1
		f[iSN2] = 1
		f[iSF] = p.INSF
		f[iSI] = p.INSI
		f[iXI] = p.INXI
		f[iXS] = p.INXS
		f[iXH] = p.INBM
		f[iXPAO] = p.INBM
		f[iXAOB] = p.INBM
		f[iXNOB] = p.INBM
	case BasisPhosphorus:
		f[iSPO4] = 1
		f[iXPP] = 1
		f[iSF] = p.IPSF
		f[iSI] = p.IPSI
		f[iXI] = p.IPXI
		f[iXS] = p.IPXS
		f[iXH] = p.IPBM
		f[iXPAO] = p.IPBM
		f[iXAOB] = p.IPBM
		f[iXNOB] = p.IPBM
		// Iron phosphate carries 31 g P per 151.8 g FePO4.
		f[iXMeP] = 1 / 4.87
	case BasisCharge:
		f[iSNH4] = 1.0 / 14
		f[iSNO2] = -1.0 / 14
		f[iSNO3] = -1.0 / 14
		f[iSPO4] = -1.5 / 31
		f[iSA] = -1.0 / 64
		f[iXPP] = -1.0 / 31
		f[iSALK] = -1
	case BasisTSS:
		f[iXI] = p.ITSSXI
		f[iXS] = p.ITSSXS
		f[iXH] = p.ITSSBM
		f[iXPAO] = p.ITSSBM
		f[iXAOB] = p.ITSSBM
		f[iXNOB] = p.ITSSBM
		f[iXPP] = 3.23
		f[iXPHA] = 0.6
		f[iXMeOH] = 1
		f[iXMeP] = 1
		f[iXTSS] = -1
	}
	return f
}

// ConversionFactor returns the factor that converts one unit of the
// named component into the given conservation basis.
func ConversionFactor(p *ParamSet, name string, b Basis) (float64, error) {
	i, err := ComponentIndex(name)
	if err != nil {
		return 0, err
	}
	f := conversionFactors(p, b)
	return f[i], nil
}
