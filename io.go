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
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/Knetic/govaluate"
)

// Derived time-series variables available to output expressions in
// addition to the component names.
const (
	varTime    = "Time"
	varN2OFlux = "N2OFlux"
)

// Outputter writes simulation results to a CSV file. Each output
// variable is a govaluate expression over the model component names
// plus Time [d] and N2OFlux [g N/d], evaluated once per snapshot.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	outputFunctions map[string]govaluate.ExpressionFunction
	exprs           map[string]*govaluate.EvaluableExpression
}

// NewOutputter parses the output variable expressions and verifies
// that they only reference known variables. Additional expression
// functions can be supplied through outputFunctions.
func NewOutputter(fileName string, outputVariables map[string]string,
	outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {

	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("asmn2o: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			return math.Exp(arg[0].(float64)), nil
		},
		"log10": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("asmn2o: got %d arguments for function 'log10', but needs 1", len(arg))
			}
			return math.Log10(arg[0].(float64)), nil
		},
		"max": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("asmn2o: got %d arguments for function 'max', but needs 2", len(arg))
			}
			return math.Max(arg[0].(float64), arg[1].(float64)), nil
		},
		"min": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("asmn2o: got %d arguments for function 'min', but needs 2", len(arg))
			}
			return math.Min(arg[0].(float64), arg[1].(float64)), nil
		},
	}
	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}

	o := &Outputter{
		fileName:        fileName,
		outputVariables: outputVariables,
		outputFunctions: defaultOutputFuncs,
		exprs:           make(map[string]*govaluate.EvaluableExpression),
	}
	if err := o.CheckOutputVars(); err != nil {
		return nil, err
	}
	return o, nil
}

// CheckOutputVars parses every output expression and verifies its
// variables against the model component names and the derived
// time-series variables.
func (o *Outputter) CheckOutputVars() error {
	known := make(map[string]struct{}, NumComponents+2)
	for _, n := range componentNames {
		known[n] = struct{}{}
	}
	known[varTime] = struct{}{}
	known[varN2OFlux] = struct{}{}

	for name, exprStr := range o.outputVariables {
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(exprStr, o.outputFunctions)
		if err != nil {
			return fmt.Errorf("asmn2o: output variable %s: %v", name, err)
		}
		for _, v := range expr.Vars() {
			if _, ok := known[v]; !ok {
				return fmt.Errorf("asmn2o: output variable %s: %w", name, UnknownComponentError(v))
			}
		}
		o.exprs[name] = expr
	}
	return nil
}

// names returns the output variable names in deterministic order.
func (o *Outputter) names() []string {
	names := make([]string, 0, len(o.outputVariables))
	for name := range o.outputVariables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// evaluate computes every output variable for one snapshot.
func (o *Outputter) evaluate(snap Snapshot) (map[string]float64, error) {
	vars := make(map[string]interface{}, NumComponents+2)
	for i, n := range componentNames {
		vars[n] = snap.State[i]
	}
	vars[varTime] = snap.T
	vars[varN2OFlux] = snap.N2OFlux

	out := make(map[string]float64, len(o.exprs))
	for name, expr := range o.exprs {
		v, err := expr.Evaluate(vars)
		if err != nil {
			return nil, fmt.Errorf("asmn2o: evaluating output variable %s: %v", name, err)
		}
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("asmn2o: output variable %s is not numeric", name)
		}
		out[name] = f
	}
	return out, nil
}

// Output returns a cleanup function that evaluates the output
// variables for every recorded snapshot and writes them as CSV.
func Output(o *Outputter) SimManipulator {
	return func(s *Simulation) error {
		return o.Write(s.Results)
	}
}

// Write evaluates the output expressions over the snapshots and
// writes the table to the output file. The first column is always
// Time.
func (o *Outputter) Write(results []Snapshot) error {
	f, err := os.Create(o.fileName)
	if err != nil {
		return fmt.Errorf("asmn2o: creating output file: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := o.names()
	header := append([]string{varTime}, names...)
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, snap := range results {
		vals, err := o.evaluate(snap)
		if err != nil {
			return err
		}
		row[0] = strconv.FormatFloat(snap.T, 'g', -1, 64)
		for i, name := range names {
			row[i+1] = strconv.FormatFloat(vals[name], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
