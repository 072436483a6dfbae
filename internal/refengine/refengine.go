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

// Package refengine is a toy LSM engine satisfying cloud.Engine. Real
// compaction, the read/write path, and the on-disk MANIFEST format are all
// out of scope for the cloud durability core (spec.md §1); this package is
// the minimum surface needed to drive the open pipeline and Savepoint
// end-to-end in tests and the demo command.
package refengine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/launix-de/lsmcloud/cloud"
)

type tableFactory struct {
	mu    sync.Mutex
	cache *cloud.PersistentCache
}

func (t *tableFactory) PersistentCache() *cloud.PersistentCache {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache
}

func (t *tableFactory) SetPersistentCache(pc *cloud.PersistentCache) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache = pc
}

type fileEntry struct {
	name  string
	size  int64
	level int
}

// Engine is a single-directory, in-memory-live-file-list stand-in for a
// real LSM engine. It persists just enough of the bootstrap files
// (IDENTITY, CURRENT, MANIFEST) for cloud.Open's pipeline to exercise its
// full decision procedure against a real directory.
type Engine struct {
	dir string

	mu                   sync.Mutex
	cfs                  []cloud.ColumnFamilyDescriptor
	files                []fileEntry
	dbid                 string
	readOnly             bool
	validateFilesize     bool
	maxManifestFileSize  int64
	tf                   *tableFactory
	closed               bool
}

// New returns an unopened engine rooted at dir.
func New(dir string) *Engine {
	return &Engine{dir: dir, tf: &tableFactory{}}
}

func (e *Engine) Open(cfs []cloud.ColumnFamilyDescriptor) error { return e.open(cfs, false) }

func (e *Engine) OpenForReadOnly(cfs []cloud.ColumnFamilyDescriptor) error {
	return e.open(cfs, true)
}

func (e *Engine) open(cfs []cloud.ColumnFamilyDescriptor, readOnly bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfs = cfs
	e.readOnly = readOnly

	if err := os.MkdirAll(e.dir, 0750); err != nil {
		return err
	}

	identPath := filepath.Join(e.dir, "IDENTITY")
	data, err := os.ReadFile(identPath)
	switch {
	case err == nil:
		e.dbid = strings.TrimSpace(string(data))
	case os.IsNotExist(err):
		if readOnly {
			return fmt.Errorf("refengine: cannot open read-only, no IDENTITY in %s", e.dir)
		}
		e.dbid = uuid.NewString()
		if err := os.WriteFile(identPath, []byte(e.dbid+"\n"), 0640); err != nil {
			return err
		}
	default:
		return err
	}

	manifestPath := filepath.Join(e.dir, "MANIFEST")
	if _, err := os.Stat(manifestPath); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if !readOnly {
			if err := os.WriteFile(manifestPath, []byte("{}"), 0640); err != nil {
				return err
			}
		}
	}

	currentPath := filepath.Join(e.dir, "CURRENT")
	if _, err := os.Stat(currentPath); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if !readOnly {
			if err := os.WriteFile(currentPath, []byte("MANIFEST-000001\n"), 0640); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Flush is a no-op: this toy engine never buffers unflushed writes.
func (e *Engine) Flush() error { return nil }

func (e *Engine) GetLiveFilesMetaData() []cloud.LiveFileMetaData {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]cloud.LiveFileMetaData, len(e.files))
	for i, f := range e.files {
		out[i] = cloud.LiveFileMetaData{Name: f.name, Size: f.size, Level: f.level}
	}
	return out
}

func (e *Engine) GetDbIdentity() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dbid == "" {
		return "", fmt.Errorf("refengine: not open")
	}
	return e.dbid, nil
}

func (e *Engine) TableFactory() cloud.TableFactory { return e.tf }

func (e *Engine) SetMaxManifestFileSize(limit int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxManifestFileSize = limit
}

func (e *Engine) SetValidateFilesize(v bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.validateFilesize
	e.validateFilesize = v
	return prev
}

// AddLiveFile seeds a file this engine reports as live, simulating what a
// real compaction would have produced. Tests and the demo command use this
// to give Savepoint something to mirror.
func (e *Engine) AddLiveFile(name string, size int64, level int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.files = append(e.files, fileEntry{name: name, size: size, level: level})
}
