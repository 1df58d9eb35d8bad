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

package mpool

import (
	"testing"

	"github.com/matrixorigin/mpquery/pkg/common/moerr"
	"github.com/stretchr/testify/require"
)

func TestMPool(t *testing.T) {
	m := New("test", 1024)
	bs, err := m.Alloc(512)
	require.NoError(t, err)
	require.Equal(t, 512, len(bs))
	require.Equal(t, int64(512), m.Stats().NumCurrBytes.Load())

	_, err = m.Alloc(1024)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrOOM))
	require.Equal(t, int64(512), m.Stats().NumCurrBytes.Load())

	m.Free(bs)
	require.Equal(t, int64(0), m.Stats().NumCurrBytes.Load())
	require.Equal(t, int64(512), m.Stats().HighWaterMark.Load())
}

func TestMPoolAcquireRelease(t *testing.T) {
	m := New("acquire", 100)
	require.NoError(t, m.Acquire(60))
	require.NoError(t, m.Acquire(40))
	err := m.Acquire(1)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrOOM))
	m.Release(100)
	require.Equal(t, int64(0), m.Stats().NumCurrBytes.Load())
}

func TestMPoolFreeAll(t *testing.T) {
	m := MustNewZero()
	_, err := m.Alloc(33)
	require.NoError(t, err)
	_, err = m.Alloc(44)
	require.NoError(t, err)
	m.FreeAll()
	require.Equal(t, int64(0), m.Stats().NumCurrBytes.Load())
}
