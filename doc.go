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

// Package asmn2o simulates nitrous oxide production in activated
// sludge. It implements an extended ASM2d biokinetic model with
// two-step nitrification, nitrifier N2O pathways, and four-step
// heterotrophic denitrification: 24 components transformed by 40
// biochemical processes in a completely stirred tank reactor, with
// adaptive stiff-aware time integration and gas-transfer-based N2O
// emission accounting.
package asmn2o
