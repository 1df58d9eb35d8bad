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

package clusterservice

import (
	"context"
	"encoding/binary"

	"github.com/pierrec/lz4"

	"github.com/matrixorigin/mpquery/pkg/common/moerr"
	"github.com/matrixorigin/mpquery/pkg/pb/membership"
)

// Codec translates backend descriptors to and from topic-entry bytes.
type Codec interface {
	Marshal(desc *BackendDescriptor) ([]byte, error)
	Unmarshal(data []byte, desc *BackendDescriptor) error
}

const (
	schemeRaw byte = 0
	schemeLZ4 byte = 1

	// Descriptors above this size get block compressed; typical ones are a
	// few hundred bytes and are cheaper to send as-is.
	defaultCompressThreshold = 1024
)

type protoCodec struct {
	compressThreshold int
}

// NewCodec returns the default descriptor codec: protobuf body, lz4 block
// compression for large payloads, a one-byte scheme prefix.
func NewCodec() Codec {
	return &protoCodec{compressThreshold: defaultCompressThreshold}
}

func toPB(desc *BackendDescriptor) *membership.BackendInfo {
	info := &membership.BackendInfo{
		Id:          desc.ID,
		Address:     desc.Address,
		IpAddress:   desc.IPAddress,
		IsExecutor:  desc.IsExecutor,
		IsQuiescing: desc.IsQuiescing,
	}
	for _, g := range desc.ExecutorGroups {
		info.ExecutorGroups = append(info.ExecutorGroups,
			membership.ExecutorGroupInfo{Name: g.Name, MinSize: int64(g.MinSize)})
	}
	return info
}

func fromPB(info *membership.BackendInfo, desc *BackendDescriptor) {
	desc.ID = info.Id
	desc.Address = info.Address
	desc.IPAddress = info.IpAddress
	desc.IsExecutor = info.IsExecutor
	desc.IsQuiescing = info.IsQuiescing
	desc.ExecutorGroups = desc.ExecutorGroups[:0]
	for _, g := range info.ExecutorGroups {
		desc.ExecutorGroups = append(desc.ExecutorGroups,
			ExecutorGroupDesc{Name: g.Name, MinSize: int(g.MinSize)})
	}
}

func (c *protoCodec) Marshal(desc *BackendDescriptor) ([]byte, error) {
	body, err := toPB(desc).Marshal()
	if err != nil {
		return nil, moerr.NewInternalError(context.Background(),
			"marshal backend descriptor: %v", err)
	}
	if len(body) < c.compressThreshold {
		return append([]byte{schemeRaw}, body...), nil
	}

	dst := make([]byte, 1+binary.MaxVarintLen64+lz4.CompressBlockBound(len(body)))
	dst[0] = schemeLZ4
	n := binary.PutUvarint(dst[1:], uint64(len(body)))
	ht := make([]int, 64<<10)
	sz, err := lz4.CompressBlock(body, dst[1+n:], ht)
	if err != nil || sz == 0 || sz >= len(body) {
		// Incompressible; ship raw.
		return append([]byte{schemeRaw}, body...), nil
	}
	return dst[:1+n+sz], nil
}

func (c *protoCodec) Unmarshal(data []byte, desc *BackendDescriptor) error {
	ctx := context.Background()
	if len(data) < 1 {
		return moerr.NewInvalidInput(ctx, "empty backend descriptor payload")
	}
	scheme, body := data[0], data[1:]
	switch scheme {
	case schemeRaw:
	case schemeLZ4:
		rawLen, n := binary.Uvarint(body)
		if n <= 0 || rawLen == 0 {
			return moerr.NewInvalidInput(ctx, "bad compressed descriptor header")
		}
		dst := make([]byte, rawLen)
		sz, err := lz4.UncompressBlock(body[n:], dst)
		if err != nil || uint64(sz) != rawLen {
			return moerr.NewInvalidInput(ctx, "corrupt compressed descriptor")
		}
		body = dst
	default:
		return moerr.NewInvalidInput(ctx, "unknown descriptor scheme %d", scheme)
	}

	var info membership.BackendInfo
	if err := info.Unmarshal(body); err != nil {
		return moerr.NewInvalidInput(ctx, "unmarshal backend descriptor: %v", err)
	}
	fromPB(&info, desc)
	return nil
}
