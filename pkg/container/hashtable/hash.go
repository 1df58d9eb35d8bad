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

package hashtable

import (
	"hash/crc32"
	"math/bits"
	"unsafe"

	"github.com/fagongzi/util/hack"
	"golang.org/x/sys/cpu"
)

var useCrc32 = cpu.X86.HasSSE42 || cpu.ARM64.HasCRC32

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// Repartitioning rebuilds a table at the next level with a different seed so
// rows that collided at one level spread out at the next.
var levelSeeds = [...]uint32{
	0x9747b28c, 0x2f9bd4ab, 0x1a8b3c4d, 0x6e1d7f35,
	0x85ebca6b, 0xc2b2ae35, 0x27d4eb2f, 0x165667b1,
	0xd3a2646c, 0xfd7046c5, 0xb55a4f09, 0x4cf5ad43,
	0x5ab6e2b9, 0x1b873593, 0xcc9e2d51, 0x38b34ae5,
}

// MaxLevels is the deepest repartitioning level with a distinct seed.
const MaxLevels = len(levelSeeds)

func SeedForLevel(level int) uint32 {
	return levelSeeds[level]
}

// HashBytes hashes a serialized row.  The crc32c path uses the hardware
// instruction where available; elsewhere a wyhash-style mix keeps the same
// interface.
func HashBytes(data []byte, seed uint32) uint32 {
	if useCrc32 {
		h := crc32.Update(seed, crc32cTable, data)
		// crc32 is a weak finalizer, rotate so consecutive keys do not land
		// in consecutive buckets.
		return bits.RotateLeft32(h, 16) ^ seed
	}
	if len(data) == 0 {
		return seed
	}
	h := wyhash(unsafe.Pointer(&data[0]), uint64(seed), uint64(len(data)))
	return uint32(h ^ (h >> 32))
}

// HashString hashes a string key without copying it.
func HashString(s string, seed uint32) uint32 {
	return HashBytes(hack.StringToSlice(s), seed)
}

// HashUint64 hashes a fixed-width key.
func HashUint64(key uint64, seed uint32) uint32 {
	h := mix(key^m2, uint64(seed)^m1)
	return uint32(h ^ (h >> 32))
}

const (
	m1 = 0xa0761d6478bd642f
	m2 = 0xe7037ed1a0b428db
	m3 = 0x8ebc6af09c88c6e3
	m4 = 0x589965cc75374cc3
	m5 = 0x1d8e4e27c47d124f
)

func wyhash(data unsafe.Pointer, seed, s uint64) uint64 {
	var a, b uint64
	seed ^= m1
	switch {
	case s == 0:
		return seed
	case s < 4:
		a = uint64(*(*byte)(data))
		a |= uint64(*(*byte)(unsafe.Add(data, s>>1))) << 8
		a |= uint64(*(*byte)(unsafe.Add(data, s-1))) << 16
	case s == 4:
		a = r4(data, 0)
		b = a
	case s < 8:
		a = r4(data, 0)
		b = r4(data, s-4)
	case s == 8:
		a = r8(data, 0)
		b = a
	case s <= 16:
		a = r8(data, 0)
		b = r8(data, s-8)
	default:
		l := s
		for ; l > 16; l -= 16 {
			seed = mix(r8(data, 0)^m2, r8(data, 8)^seed)
			data = unsafe.Add(data, 16)
		}
		a = r8(data, l-16)
		b = r8(data, l-8)
	}

	return mix(m5^s, mix(a^m2, b^seed))
}

func mix(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return hi ^ lo
}

func r4(data unsafe.Pointer, p uint64) uint64 {
	return uint64(*(*uint32)(unsafe.Add(data, p)))
}

func r8(data unsafe.Pointer, p uint64) uint64 {
	return *(*uint64)(unsafe.Add(data, p))
}

// mix64 widens a 32-bit bucket hash before feeding distinct-count sketches.
func mix64(x uint64) uint64 {
	return mix(m5^8, mix(x^m2, x^m3))
}
