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

// ManifestFileSizeLimit is the internal constant the open orchestrator
// forces max_manifest_file_size down to (spec.md §4.F step 9): the cloud
// tier uploads the manifest on every update, so keeping the engine's own
// rolling threshold tiny just means more frequent, smaller uploads instead
// of rare, enormous ones.
const ManifestFileSizeLimit int64 = 4 * 1024

// ColumnFamilyDescriptor names one of the engine's column families; the
// orchestrator passes these through to Engine.Open unexamined.
type ColumnFamilyDescriptor struct {
	Name string
}

// LiveFileMetaData describes one data file the engine currently references
// from its latest manifest (spec.md §6 GetLiveFilesMetaData).
type LiveFileMetaData struct {
	Name  string
	Size  int64
	Level int
}

// TableFactory is the narrow slice of the engine's table factory this core
// touches: whether a persistent cache handle is already installed.
type TableFactory interface {
	PersistentCache() *PersistentCache
	SetPersistentCache(pc *PersistentCache)
}

// Engine is the LSM engine collaborator (spec.md §6): compaction, the read
// and write paths, and the MANIFEST format itself are all out of scope
// here (spec.md §1) — this core only needs enough surface to drive the
// open pipeline and Savepoint.
type Engine interface {
	Open(cfs []ColumnFamilyDescriptor) error
	OpenForReadOnly(cfs []ColumnFamilyDescriptor) error
	Close() error
	// Flush performs a blocking flush so the latest manifest is durable
	// before Close returns (spec.md §6 destruction behavior).
	Flush() error

	GetLiveFilesMetaData() []LiveFileMetaData
	GetDbIdentity() (string, error)

	TableFactory() TableFactory

	// SetMaxManifestFileSize overrides the engine's own manifest rolling
	// threshold (spec.md §4.F step 9).
	SetMaxManifestFileSize(limit int64)
	// SetValidateFilesize flips the one-shot per-file-size validation
	// flag and returns the previous value (spec.md §4.F step 11, §9
	// Global mutable state).
	SetValidateFilesize(v bool) bool
}

// Options collects the configuration spec.md §6 recognizes.
type Options struct {
	CloudType CloudType

	KeepLocalSSTFiles     bool
	ValidateFilesize      bool
	MaxOpenFiles          int
	MaxFileOpeningThreads int

	PersistentCachePath   string
	PersistentCacheSizeGB float64
}
