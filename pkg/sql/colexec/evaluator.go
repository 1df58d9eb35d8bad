// Copyright 2021 - 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package colexec

// Evaluator computes one output expression over a row.  Expression planning
// and compilation live outside this module; the fabric only ever calls the
// compiled form.
type Evaluator func(row []any) (any, error)

// EvalRow projects a row through the output expressions.
func EvalRow(evals []Evaluator, row []any) ([]any, error) {
	out := make([]any, len(evals))
	for i, ev := range evals {
		v, err := ev(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// IdentityEvaluators returns evaluators that pass columns 0..n-1 through
// unchanged.
func IdentityEvaluators(n int) []Evaluator {
	evals := make([]Evaluator, n)
	for i := 0; i < n; i++ {
		idx := i
		evals[i] = func(row []any) (any, error) {
			return row[idx], nil
		}
	}
	return evals
}
