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

// monod is the saturation switching function S/(S+K). It returns zero
// for nonpositive concentrations so rates switch off cleanly at the
// axis.
func monod(s, k float64) float64 {
	if s <= 0 {
		return 0
	}
	return s / (s + k)
}

// inhibition is the reciprocal switching function K/(K+S), equal to one
// when the inhibitor is absent.
func inhibition(k, s float64) float64 {
	if s <= 0 {
		return 1
	}
	return k / (k + s)
}

// ratioMonod is a saturation function on the ratio num/denom, written
// so that a vanishing denominator saturates to one instead of dividing
// by zero. Rates using it are always multiplied by the denominator
// biomass, so the zero-biomass rate is still zero.
func ratioMonod(num, denom, k float64) float64 {
	if num <= 0 {
		return 0
	}
	return num / (num + k*denom)
}

// haldane is the substrate-inhibited saturation function
// S/(K + S + S²/Ki), used for nitric oxide, which inhibits its own
// reduction at elevated concentrations.
func haldane(s, k, ki float64) float64 {
	if s <= 0 {
		return 0
	}
	return s / (k + s + s*s/ki)
}

// freeNitrousAcid computes the protonated nitrite concentration
// [g HNO2-N/m³] in equilibrium with the given nitrite concentration at
// the given temperature and pH.
func freeNitrousAcid(sNO2, tempC, pH float64) float64 {
	if sNO2 <= 0 {
		return 0
	}
	ka := math.Exp(-2300 / (273.15 + tempC))
	return sNO2 / (ka*math.Pow(10, pH) + 1) * (47.0 / 14.0)
}

// aobOxygen is the non-monotone oxygen dependence of nitrifier
// denitrification: activity peaks at intermediate dissolved oxygen and
// is suppressed at both the oxic and anoxic extremes.
func aobOxygen(sO2, k, ki float64) float64 {
	if sO2 <= 0 {
		return 0
	}
	return sO2 / (k + (1-2*math.Sqrt(k/ki))*sO2 + sO2*sO2/ki)
}

// pHFactor attenuates nitrifier activity outside the [pLow, pHigh]
// range, staying near one on the plateau between the limits.
func pHFactor(pH, pLow, pHigh float64) float64 {
	f := (1 + 2*math.Pow(10, 0.5*(pLow-pHigh))) /
		(1 + math.Pow(10, pH-pHigh) + math.Pow(10, pLow-pH))
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
