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

	"gonum.org/v1/gonum/mat"
)

// NumProcesses is the number of biochemical processes in the model.
const NumProcesses = 40

// StoichMatrix holds the stoichiometric coefficients of the model: one
// row per biochemical process, one column per component. The
// alkalinity and TSS columns are not set directly; they are derived
// from the charge and solids balances of the other columns so the
// matrix closes by construction.
type StoichMatrix struct {
	m *mat.Dense
	p *ParamSet
}

// ConservationViolation reports a process row whose coefficients do not
// balance a conserved quantity to within tolerance.
type ConservationViolation struct {
	Process  int // 1-based process number
	Basis    Basis
	Residual float64
}

func (e *ConservationViolation) Error() string {
	return fmt.Sprintf("asmn2o: process %d violates %s conservation by %g",
		e.Process, e.Basis, e.Residual)
}

// NewStoichMatrix builds the stoichiometric matrix for the given
// parameter set and verifies that every process row conserves COD,
// nitrogen, phosphorus, charge, and solids to within tol.
func NewStoichMatrix(p *ParamSet, tol float64) (*StoichMatrix, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &StoichMatrix{m: mat.NewDense(NumProcesses, NumComponents, nil), p: p}
	s.build()
	if err := s.Validate(tol); err != nil {
		return nil, err
	}
	return s, nil
}

// Coeff returns the stoichiometric coefficient of component j in
// process i (both zero-based).
func (s *StoichMatrix) Coeff(i, j int) float64 { return s.m.At(i, j) }

// Matrix returns the underlying coefficient matrix.
func (s *StoichMatrix) Matrix() mat.Matrix { return s.m }

// set records a coefficient using 1-based process numbering, matching
// the process numbering used in the model literature.
func (s *StoichMatrix) set(process, comp int, v float64) {
	s.m.Set(process-1, comp, v)
}

func (s *StoichMatrix) build() {
	p := s.p

	// Hydrolysis of X_S under aerobic, anoxic (NO3 and NO2), and
	// anaerobic conditions releases fermentable substrate plus an
	// inert soluble fraction; nutrient content differences go to the
	// dissolved pools.
	nh4Hyd := p.INXS - (1-p.FSI)*p.INSF - p.FSI*p.INSI
	po4Hyd := p.IPXS - (1-p.FSI)*p.IPSF - p.FSI*p.IPSI
	for proc := 1; proc <= 4; proc++ {
		s.set(proc, iSF, 1-p.FSI)
		s.set(proc, iSI, p.FSI)
		s.set(proc, iSNH4, nh4Hyd)
		s.set(proc, iSPO4, po4Hyd)
		s.set(proc, iXS, -1)
	}

	// Aerobic heterotrophic growth on S_F and on S_A.
	nh4GroF := p.INSF/p.YH - p.INBM
	po4GroF := p.IPSF/p.YH - p.IPBM
	s.set(5, iSO2, 1-1/p.YH)
	s.set(5, iSF, -1/p.YH)
	s.set(5, iSNH4, nh4GroF)
	s.set(5, iSPO4, po4GroF)
	s.set(5, iXH, 1)

	s.set(6, iSO2, 1-1/p.YH)
	s.set(6, iSA, -1/p.YH)
	s.set(6, iSNH4, -p.INBM)
	s.set(6, iSPO4, -p.IPBM)
	s.set(6, iXH, 1)

	// Four-step denitrification, growing on S_F (processes 7-10) and
	// on S_A (processes 11-14). Each step transfers the electrons
	// from substrate oxidation to one nitrogen reduction: NO3→NO2
	// accepts 8/7 g COD per g N and the remaining steps 4/7 each.
	yAnox := p.YH * p.NG
	den8 := (1 - yAnox) / (8.0 / 7.0 * yAnox)
	den4 := (1 - yAnox) / (4.0 / 7.0 * yAnox)
	nh4Anox := p.INSF/yAnox - p.INBM
	po4Anox := p.IPSF/yAnox - p.IPBM
	for step := 0; step < 4; step++ {
		proc := 7 + step
		s.set(proc, iSF, -1/yAnox)
		s.set(proc, iSNH4, nh4Anox)
		s.set(proc, iSPO4, po4Anox)
		s.set(proc, iXH, 1)
	}
	for step := 0; step < 4; step++ {
		proc := 11 + step
		s.set(proc, iSA, -1/yAnox)
		s.set(proc, iSNH4, -p.INBM)
		s.set(proc, iSPO4, -p.IPBM)
		s.set(proc, iXH, 1)
	}
	for _, proc := range []int{7, 11} {
		s.set(proc, iSNO3, -den8)
		s.set(proc, iSNO2, den8)
	}
	for _, proc := range []int{8, 12} {
		s.set(proc, iSNO2, -den4)
		s.set(proc, iSNO, den4)
	}
	for _, proc := range []int{9, 13} {
		s.set(proc, iSNO, -den4)
		s.set(proc, iSN2O, den4)
	}
	for _, proc := range []int{10, 14} {
		s.set(proc, iSN2O, -den4)
		s.set(proc, iSN2, den4)
	}

	// Fermentation converts S_F to acetate, freeing its nutrients.
	s.set(15, iSF, -1)
	s.set(15, iSA, 1)
	s.set(15, iSNH4, p.INSF)
	s.set(15, iSPO4, p.IPSF)

	// Lysis of heterotrophs, PAOs, and nitrifiers splits biomass into
	// inert and slowly biodegradable particulates.
	nh4Lys := p.INBM - p.FXI*p.INXI - (1-p.FXI)*p.INXS
	po4Lys := p.IPBM - p.FXI*p.IPXI - (1-p.FXI)*p.IPXS
	for _, lp := range []struct{ proc, biomass int }{
		{16, iXH}, {28, iXPAO}, {37, iXAOB}, {38, iXNOB},
	} {
		s.set(lp.proc, iSNH4, nh4Lys)
		s.set(lp.proc, iSPO4, po4Lys)
		s.set(lp.proc, iXI, p.FXI)
		s.set(lp.proc, iXS, 1-p.FXI)
		s.set(lp.proc, lp.biomass, -1)
	}

	// PHA storage: acetate uptake driven by polyphosphate hydrolysis.
	s.set(17, iSA, -1)
	s.set(17, iSPO4, p.YPO4)
	s.set(17, iXPP, -p.YPO4)
	s.set(17, iXPHA, 1)

	// Polyphosphate storage, aerobic (18) and anoxic four-step (19-22).
	s.set(18, iSO2, -p.YPHA)
	s.set(18, iSPO4, -1)
	s.set(18, iXPP, 1)
	s.set(18, iXPHA, -p.YPHA)
	for proc := 19; proc <= 22; proc++ {
		s.set(proc, iSPO4, -1)
		s.set(proc, iXPP, 1)
		s.set(proc, iXPHA, -p.YPHA)
	}
	s.set(19, iSNO3, -p.YPHA/(8.0/7.0))
	s.set(19, iSNO2, p.YPHA/(8.0/7.0))
	s.set(20, iSNO2, -p.YPHA/(4.0/7.0))
	s.set(20, iSNO, p.YPHA/(4.0/7.0))
	s.set(21, iSNO, -p.YPHA/(4.0/7.0))
	s.set(21, iSN2O, p.YPHA/(4.0/7.0))
	s.set(22, iSN2O, -p.YPHA/(4.0/7.0))
	s.set(22, iSN2, p.YPHA/(4.0/7.0))

	// PAO growth on stored PHA, aerobic (23) and anoxic (24-27).
	s.set(23, iSO2, 1-1/p.YPAO)
	s.set(23, iXPHA, -1/p.YPAO)
	yPAnox := p.YPAO * p.NG
	pao8 := (1 - yPAnox) / (8.0 / 7.0 * yPAnox)
	pao4 := (1 - yPAnox) / (4.0 / 7.0 * yPAnox)
	for proc := 24; proc <= 27; proc++ {
		s.set(proc, iXPHA, -1/yPAnox)
	}
	s.set(24, iSNO3, -pao8)
	s.set(24, iSNO2, pao8)
	s.set(25, iSNO2, -pao4)
	s.set(25, iSNO, pao4)
	s.set(26, iSNO, -pao4)
	s.set(26, iSN2O, pao4)
	s.set(27, iSN2O, -pao4)
	s.set(27, iSN2, pao4)
	for proc := 23; proc <= 27; proc++ {
		s.set(proc, iSNH4, -p.INBM)
		s.set(proc, iSPO4, -p.IPBM)
		s.set(proc, iXPAO, 1)
	}

	// Lysis of storage products.
	s.set(29, iSPO4, 1)
	s.set(29, iXPP, -1)
	s.set(30, iSA, 1)
	s.set(30, iXPHA, -1)

	// Two-step nitrification with N2O side paths. Ammonia oxidation
	// to hydroxylamine (31) consumes the 8/7 g O2 per g N difference
	// in oxidation state; AOB growth on hydroxylamine (32) releases
	// NO, which a further hydroxylamine-coupled oxidation (33) turns
	// into nitrite.
	s.set(31, iSO2, codNH2OH)
	s.set(31, iSNH4, -1)
	s.set(31, iSNH2OH, 1)

	s.set(32, iSO2, -(12.0/7.0-p.YAOB)/p.YAOB)
	s.set(32, iSNH4, -p.INBM)
	s.set(32, iSNH2OH, -1/p.YAOB)
	s.set(32, iSNO, 1/p.YAOB)
	s.set(32, iSPO4, -p.IPBM)
	s.set(32, iXAOB, 1)

	s.set(33, iSO2, -4.0/7.0)
	s.set(33, iSNO, -1)
	s.set(33, iSNO2, 1)

	// Nitrifier nitrification: four NO are reduced to N2O using the
	// electrons from one hydroxylamine oxidation to nitrite.
	s.set(34, iSNH2OH, -1)
	s.set(34, iSN2O, 4)
	s.set(34, iSNO, -4)
	s.set(34, iSNO2, 1)

	// Nitrifier denitrification: nitrite reduced to N2O with
	// hydroxylamine as electron donor.
	s.set(35, iSNH2OH, -1)
	s.set(35, iSN2O, 2)
	s.set(35, iSNO2, -1)

	// NOB growth on nitrite.
	s.set(36, iSO2, -(8.0/7.0-p.YNOB)/p.YNOB)
	s.set(36, iSNH4, -p.INBM)
	s.set(36, iSNO2, -1/p.YNOB)
	s.set(36, iSNO3, 1/p.YNOB)
	s.set(36, iSPO4, -p.IPBM)
	s.set(36, iXNOB, 1)

	// Phosphorus precipitation with ferric hydroxide and the reverse
	// redissolution. 4.87 g FePO4 binds 1 g P and consumes 3.45 g
	// Fe(OH)3.
	s.set(39, iSPO4, -1)
	s.set(39, iXMeOH, -3.45)
	s.set(39, iXMeP, 4.87)
	s.set(40, iSPO4, 1)
	s.set(40, iXMeOH, 3.45)
	s.set(40, iXMeP, -4.87)

	// Close the alkalinity and solids columns from the charge and TSS
	// balances of the coefficients set above.
	charge := conversionFactors(p, BasisCharge)
	tss := conversionFactors(p, BasisTSS)
	for i := 0; i < NumProcesses; i++ {
		var qSum, tssSum float64
		for j := 0; j < NumComponents; j++ {
			if j == iSALK || j == iXTSS {
				continue
			}
			qSum += charge[j] * s.m.At(i, j)
			tssSum += tss[j] * s.m.At(i, j)
		}
		s.m.Set(i, iSALK, qSum)   // charge[iSALK] = -1
		s.m.Set(i, iXTSS, tssSum) // tss[iXTSS] = -1
	}
}

// Validate recomputes the conservation balances of every process row
// from scratch and returns a ConservationViolation for the first row
// whose residual on any basis exceeds tol.
func (s *StoichMatrix) Validate(tol float64) error {
	for b := Basis(0); b < numBases; b++ {
		f := conversionFactors(s.p, b)
		for i := 0; i < NumProcesses; i++ {
			var sum float64
			for j := 0; j < NumComponents; j++ {
				sum += f[j] * s.m.At(i, j)
			}
			if sum > tol || sum < -tol {
				return &ConservationViolation{Process: i + 1, Basis: b, Residual: sum}
			}
		}
	}
	return nil
}

// Convert computes the component production rates S^T·ρ for the given
// process rate vector, adding the result to dst. dst must have length
// NumComponents and rho length NumProcesses.
func (s *StoichMatrix) Convert(rho, dst []float64) {
	if len(rho) != NumProcesses || len(dst) != NumComponents {
		panic(fmt.Sprintf("asmn2o: convert dimensions %d×%d", len(rho), len(dst)))
	}
	for i, r := range rho {
		if r == 0 {
			continue
		}
		row := s.m.RawRowView(i)
		for j, c := range row {
			if c != 0 {
				dst[j] += c * r
			}
		}
	}
}
