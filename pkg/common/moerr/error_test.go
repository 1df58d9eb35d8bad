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

package moerr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	ctx := context.Background()

	err := NewOOM(ctx)
	require.True(t, IsMoErrCode(err, ErrOOM))
	require.False(t, IsMoErrCode(err, ErrInternal))
	require.Equal(t, "out of memory", err.Error())

	err = NewQueryInterrupted(ctx)
	require.True(t, IsMoErrCode(err, ErrQueryInterrupted))

	err = NewRowsProducedLimit(ctx, 100)
	require.True(t, IsMoErrCode(err, ErrRowsProducedLimit))
	require.Contains(t, err.Error(), "100")

	err = NewInternalError(ctx, "bad thing %d", 42)
	require.Equal(t, "internal error: bad thing 42", err.Error())
	require.Equal(t, defaultSqlState, err.SqlState())
}

func TestIsMoErrCodeNonMoErr(t *testing.T) {
	require.False(t, IsMoErrCode(context.Canceled, ErrQueryInterrupted))
	require.True(t, IsMoErrCode(nil, Ok))
}
