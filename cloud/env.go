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
	"strings"
	"sync"
)

// DBIDSeparator is the fixed separator a clone dbid is built from:
// "<base>{DBIDSeparator}<unique-suffix>" (spec.md §3).
const DBIDSeparator = "-clone-"

// CloudEnv is the environment collaborator spec.md §6 describes: it routes
// file operations through the cloud layer and owns the loaded cloud
// manifest for the lifetime of the open database (spec.md §3 Ownership).
type CloudEnv interface {
	Local() LocalFS
	Src() BucketCoordinate
	Dest() BucketCoordinate
	Store() ObjectStore

	// RemapFilename reassigns the engine's nominal MANIFEST-<N> name to
	// its epoch-stamped object name via the currently loaded manifest.
	RemapFilename(name string) string

	// LoadCloudManifest installs cm as the env's owned manifest.
	LoadCloudManifest(cm *CloudManifest)
	// Manifest returns the currently loaded manifest, or nil if none has
	// been loaded yet.
	Manifest() *CloudManifest

	// DeleteInvisibleFiles removes local "MANIFEST-*" files other than the
	// current epoch's "MANIFEST-<epoch>"; no other local file is touched. This is
	// local-directory hygiene only: object-store epoch GC is explicitly
	// out of scope (spec.md §1 non-goals).
	DeleteInvisibleFiles() error

	// GenerateUniqueID returns a process-unique 128-bit id, rendered as a
	// hex string, for clone-suffix and epoch minting.
	GenerateUniqueID() string
}

type env struct {
	local LocalFS
	src   BucketCoordinate
	dest  BucketCoordinate
	store ObjectStore

	mu       sync.Mutex
	manifest *CloudManifest
}

// NewEnv constructs the cloud environment collaborator over a local
// directory and the two bucket coordinates.
func NewEnv(local LocalFS, store ObjectStore, src, dest BucketCoordinate) CloudEnv {
	return &env{local: local, store: store, src: src, dest: dest}
}

func (e *env) Local() LocalFS             { return e.local }
func (e *env) Src() BucketCoordinate      { return e.src }
func (e *env) Dest() BucketCoordinate     { return e.dest }
func (e *env) Store() ObjectStore         { return e.store }
func (e *env) GenerateUniqueID() string   { return GenerateUniqueID().String() }

func (e *env) LoadCloudManifest(cm *CloudManifest) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.manifest = cm
}

func (e *env) Manifest() *CloudManifest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.manifest
}

func (e *env) RemapFilename(name string) string {
	m := e.Manifest()
	if m == nil {
		return name
	}
	return m.Remap(name)
}

func (e *env) DeleteInvisibleFiles() error {
	m := e.Manifest()
	if m == nil {
		return nil
	}
	keep := "MANIFEST-" + string(m.CurrentEpoch())

	names, err := e.local.ReadDirNames()
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	var firstErr error
	for _, name := range names {
		if !strings.HasPrefix(name, "MANIFEST-") || name == keep {
			continue
		}
		if err := e.local.Remove(name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
