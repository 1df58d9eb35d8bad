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

package rootsink

import (
	"github.com/matrixorigin/mpquery/pkg/common/mpool"
	"github.com/matrixorigin/mpquery/pkg/container/batch"
	"github.com/matrixorigin/mpquery/pkg/sql/colexec"
)

// RowSetBuffer is the in-memory ResultBuffer behind the local fetch path.
type RowSetBuffer struct {
	Rows [][]any
}

func (b *RowSetBuffer) AddRows(evals []colexec.Evaluator, bat *batch.Batch, start, cnt int, _ *mpool.MPool) error {
	for i := start; i < start+cnt; i++ {
		out, err := colexec.EvalRow(evals, bat.Rows[i])
		if err != nil {
			return err
		}
		b.Rows = append(b.Rows, out)
	}
	return nil
}

func (b *RowSetBuffer) NumRows() int {
	return len(b.Rows)
}
