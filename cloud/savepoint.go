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
	"sync"
	"sync/atomic"
)

// Savepoint mirrors every live file the engine currently references from
// src to dest, skipping anything already present at dest (spec.md §4.G).
// Workers share a fetch-add index counter over the live-file list rather
// than a work queue, the same fixed-worker-pool shape storage/limits.go
// uses for its load semaphore, sized here by the engine's own
// max_file_opening_threads knob instead of runtime.NumCPU().
//
// Open Question 2 decision (DESIGN.md): when src is empty there is no
// second location to mirror from, so Savepoint no-ops rather than issuing
// a vacuous dest-to-dest copy.
func Savepoint(e CloudEnv, engine Engine, maxFileOpeningThreads int) error {
	src, dest := e.Src(), e.Dest()
	if dest.Empty() || src.Empty() {
		return nil
	}
	if sameCoord(src, dest) {
		return nil
	}

	files := engine.GetLiveFilesMetaData()
	if len(files) == 0 {
		return nil
	}

	workers := maxFileOpeningThreads
	if workers <= 0 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	store := e.Store()
	var next int64 = -1
	var mu sync.Mutex
	var firstErr error
	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := atomic.AddInt64(&next, 1)
				if i >= int64(len(files)) {
					return
				}
				name := e.RemapFilename(files[i].Name)
				destKey := dest.Prefix + "/" + name

				exists, err := store.Exists(dest.Bucket, destKey)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				if exists {
					continue
				}

				if err := store.Copy(src.Bucket, src.Prefix+"/"+name, dest.Bucket, destKey); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}
