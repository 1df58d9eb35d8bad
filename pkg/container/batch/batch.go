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

package batch

// Batch is a set of rows handed from one operator to the next.  The sink and
// the evaluators treat row values as opaque.
type Batch struct {
	Attrs []string
	Rows  [][]any
}

// New creates an empty batch with the given column names.
func New(attrs []string) *Batch {
	return &Batch{Attrs: attrs}
}

// AppendRow adds one row.  The batch takes ownership of the slice.
func (b *Batch) AppendRow(row []any) {
	b.Rows = append(b.Rows, row)
}

func (b *Batch) RowCount() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

func (b *Batch) IsEmpty() bool {
	return b.RowCount() == 0
}
