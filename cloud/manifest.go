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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/btree"
)

// manifestEntry states that every engine metadata file whose number is
// strictly less than UpperBound is stored under Epoch.
type manifestEntry struct {
	UpperBound uint64 `json:"file_number_upper_bound"`
	Epoch      Epoch  `json:"epoch"`
}

func manifestEntryLess(a, b manifestEntry) bool { return a.UpperBound < b.UpperBound }

// CloudManifest is the ordered mapping of file-number cut-over to epoch,
// plus a current epoch applied to everything at or above the largest
// cut-over. Entries are kept in a btree because the one query this
// structure serves, Remap, is a "least key greater than N" ceiling lookup
// over a rarely-mutated, append-only list — exactly what an ordered tree
// is for (spec.md §4.C; see SPEC_FULL.md's DOMAIN STACK table).
type CloudManifest struct {
	mu           sync.Mutex
	entries      *btree.BTreeG[manifestEntry]
	currentEpoch Epoch
	finalized    bool
}

// NewCloudManifest creates an empty manifest (no cut-over entries) with the
// given current epoch. Pass LegacyEpoch for a pre-cloud-manifest database.
func NewCloudManifest(currentEpoch Epoch) *CloudManifest {
	return &CloudManifest{
		entries:      btree.NewG(32, manifestEntryLess),
		currentEpoch: currentEpoch,
	}
}

// AddEpoch appends a cut-over entry (n, current_epoch) and sets the current
// epoch to e. n must exceed every prior upper bound.
func (m *CloudManifest) AddEpoch(n uint64, e Epoch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finalized {
		return errInvalidArg("cloud manifest is finalized, add-epoch rejected", nil)
	}
	if max, ok := m.entries.Max(); ok && n <= max.UpperBound {
		return errInvalidArg(fmt.Sprintf("add-epoch: n=%d does not exceed prior upper bound %d", n, max.UpperBound), nil)
	}
	m.entries.ReplaceOrInsert(manifestEntry{UpperBound: n, Epoch: m.currentEpoch})
	m.currentEpoch = e
	return nil
}

// CurrentEpoch returns the epoch applied to file numbers at or above the
// largest cut-over recorded so far.
func (m *CloudManifest) CurrentEpoch() Epoch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentEpoch
}

// Finalize freezes the manifest. Further AddEpoch calls return an error.
// Finalize is a monotone latch: calling it twice is harmless.
func (m *CloudManifest) Finalize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalized = true
}

// Finalized reports whether Finalize has been called.
func (m *CloudManifest) Finalized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finalized
}

// Remap translates the engine's nominal "MANIFEST-<N>" name into the
// epoch-stamped object name: the epoch of the least cut-over entry whose
// upper bound is strictly greater than N, or the current epoch if none
// exists. Names that are not of the form "MANIFEST-<decimal N>" are
// returned unchanged (they are assumed already epoch-stamped).
func (m *CloudManifest) Remap(name string) string {
	n, ok := parseManifestNumber(name)
	if !ok {
		return name
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	epoch := m.currentEpoch
	if n == ^uint64(0) {
		return "MANIFEST-" + string(epoch)
	}
	m.entries.AscendGreaterOrEqual(manifestEntry{UpperBound: n + 1}, func(item manifestEntry) bool {
		epoch = item.Epoch
		return false // first hit is the least upper bound > n
	})
	return "MANIFEST-" + string(epoch)
}

func parseManifestNumber(name string) (uint64, bool) {
	const prefix = "MANIFEST-"
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	rest := name[len(prefix):]
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

type manifestFile struct {
	Entries      []manifestEntry `json:"entries"`
	CurrentEpoch Epoch           `json:"current_epoch"`
}

// Serialize renders the manifest as its self-describing JSON blob. Callers
// write it to a temp file and atomically rename it (spec.md §4.C
// Write-to-log); the temp-file discipline lives in LocalFS.WriteFileAtomic.
func (m *CloudManifest) Serialize() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	mf := manifestFile{CurrentEpoch: m.currentEpoch}
	m.entries.Ascend(func(item manifestEntry) bool {
		mf.Entries = append(mf.Entries, item)
		return true
	})
	data, _ := json.MarshalIndent(mf, "", "  ")
	return data
}

// ParseCloudManifest reverses Serialize. A round trip (Serialize then
// ParseCloudManifest) yields an equal structure.
func ParseCloudManifest(data []byte) (*CloudManifest, error) {
	var mf manifestFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, errIO("cloud manifest: invalid JSON", err)
	}
	cm := NewCloudManifest(mf.CurrentEpoch)
	for _, e := range mf.Entries {
		cm.entries.ReplaceOrInsert(e)
	}
	return cm, nil
}
