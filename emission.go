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
	"math"

	"github.com/ctessum/unit"
)

// Ratio of the N2O and O2 mass-transfer coefficients, from the
// diffusivity ratio of the two gases in water.
const kLaRatioN2O = 0.914

// OxygenSaturation returns the dissolved-oxygen saturation
// concentration [g O2/m³] in clean water at the given temperature.
func OxygenSaturation(tempC float64) float64 {
	return 14.652 - 0.41022*tempC + 0.0079910*tempC*tempC -
		0.000077774*tempC*tempC*tempC
}

// N2OSaturation returns the dissolved N2O concentration [g N/m³] in
// equilibrium with the atmosphere at the given temperature, from
// Henry's law with a van 't Hoff temperature correction.
func N2OSaturation(tempC float64) float64 {
	const (
		kH25   = 0.024  // Henry constant at 25 °C [mol/L/atm]
		vhoff  = 2600.0 // van 't Hoff temperature coefficient [K]
		pN2O   = 3.3e-7 // atmospheric N2O partial pressure [atm]
		gNPerM = 28.0   // g N per mol N2O
	)
	tK := tempC + 273.15
	kH := kH25 * math.Exp(vhoff*(1/tK-1/298.15))
	return kH * pN2O * gNPerM * 1000 // mol/L → g N/m³
}

// KLaN2O returns the N2O mass-transfer coefficient [1/d] corresponding
// to the given oxygen mass-transfer coefficient.
func KLaN2O(kLaO2 float64) float64 { return kLaRatioN2O * kLaO2 }

// N2OEmissionRate returns the instantaneous N2O mass flux to the
// atmosphere [g N/d] from a reactor of the given volume [m³] holding
// dissolved N2O at sN2O [g N/m³]. Supersaturated liquid strips to the
// gas phase; an undersaturated liquid would reabsorb, so the rate can
// be negative.
func N2OEmissionRate(sN2O, volume float64, env Env) float64 {
	return KLaN2O(env.KLa) * (sN2O - N2OSaturation(env.TempC)) * volume
}

// CumulativeN2O integrates the emission flux record [g N/d] over time
// [d] with the trapezoid rule and returns the emitted mass as a
// dimensioned quantity in kilograms of N2O-N.
func CumulativeN2O(times, flux []float64) *unit.Unit {
	var grams float64
	for i := 1; i < len(times) && i < len(flux); i++ {
		grams += 0.5 * (flux[i] + flux[i-1]) * (times[i] - times[i-1])
	}
	return unit.New(grams/1000, unit.Kilogram)
}
