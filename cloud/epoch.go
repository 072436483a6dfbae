/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package cloud

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/google/uuid"
)

// Epoch is a 16-hex-char label qualifying one generation of the engine's
// manifest file in the object store. The empty string is the reserved
// "legacy" epoch: a pre-cloud-manifest database.
type Epoch string

// LegacyEpoch is the reserved epoch meaning "no cloud manifest has ever
// been rolled for this database".
const LegacyEpoch Epoch = ""

var uniqueIDCounter uint64 = uint64(time.Now().UnixNano())

// GenerateUniqueID returns a 128-bit value with uniqueness guaranteed by a
// counter mixed with wall-clock time, not by any hash below. It avoids
// crypto/rand, the same trade memcp's fast_uuid.go makes to dodge
// startup stalls on low-entropy systems.
func GenerateUniqueID() uuid.UUID {
	ctr := atomic.AddUint64(&uniqueIDCounter, 1)
	now := uint64(time.Now().UnixNano())
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], ctr)
	binary.LittleEndian.PutUint64(b[8:16], ctr^now^(now<<17))
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return uuid.UUID(b)
}

// HashShrinkEpoch compresses a 128-bit unique id into a 16-hex-char Epoch:
// the id is split into two 8-byte halves, each hashed with a 32-bit
// non-cryptographic checksum, and the two checksums are composed into one
// 64-bit value (first half's hash in the low 32 bits, second half's in the
// high 32 bits) before being rendered as zero-padded lowercase hex.
// Deterministic: identical input always yields identical output.
func HashShrinkEpoch(id uuid.UUID) Epoch {
	low := xxhash.Checksum32(id[0:8])
	high := xxhash.Checksum32(id[8:16])
	val := uint64(low) | uint64(high)<<32
	return Epoch(fmt.Sprintf("%016x", val))
}

// NewEpoch generates a fresh unique id and shrinks it straight to an Epoch;
// this is the single entry point the epoch roller (cloud/epochroll.go)
// uses to mint new_epoch.
func NewEpoch() Epoch {
	return HashShrinkEpoch(GenerateUniqueID())
}
