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

import "sync"

// DBCloud is the handle returned by Open/OpenForReadOnly: the sanitized
// local directory, the loaded cloud manifest, and the engine it drives
// (spec.md §4.F, §6).
type DBCloud struct {
	mu     sync.Mutex
	closed bool

	env    CloudEnv
	engine Engine
	logger Logger
	cache  *PersistentCache
	dbid   string
}

// Open runs the full bootstrap pipeline (spec.md §4.F) and hands the result
// to engine.Open: sanitize the directory, migrate a legacy manifest name,
// fetch or create the cloud manifest, roll a new epoch, clean up local
// files the manifest no longer references, install the persistent cache,
// and finally open the engine itself.
func Open(env CloudEnv, engine Engine, opts Options, cfs []ColumnFamilyDescriptor, logger Logger) (*DBCloud, error) {
	return openPipeline(env, engine, opts, cfs, logger, false)
}

// OpenForReadOnly runs the same pipeline but never mints a new epoch and
// delegates to engine.OpenForReadOnly.
func OpenForReadOnly(env CloudEnv, engine Engine, opts Options, cfs []ColumnFamilyDescriptor, logger Logger) (*DBCloud, error) {
	return openPipeline(env, engine, opts, cfs, logger, true)
}

func openPipeline(env CloudEnv, engine Engine, opts Options, cfs []ColumnFamilyDescriptor, logger Logger, readOnly bool) (*DBCloud, error) {
	logger = ensureLogger(logger)

	if err := SanitizeDirectory(env, opts, readOnly); err != nil {
		return nil, err
	}
	if err := MaybeMigrateManifestFile(env); err != nil {
		return nil, err
	}
	if err := FetchCloudManifest(env); err != nil {
		return nil, err
	}
	if err := MaybeRollNewEpoch(env, readOnly); err != nil {
		return nil, err
	}

	if err := env.DeleteInvisibleFiles(); err != nil {
		logger.Warnf("delete invisible files: %v", err)
	}

	var cache *PersistentCache
	if opts.PersistentCachePath != "" && opts.PersistentCacheSizeGB > 0 {
		c, err := NewPersistentCache(opts.PersistentCachePath, opts.PersistentCacheSizeGB)
		if err != nil {
			return nil, err
		}
		cache = c
		engine.TableFactory().SetPersistentCache(cache)
		logger.Infof("persistent cache enabled at %s (%s)", cache.Path(), cache.HumanBudget())
	}

	engine.SetMaxManifestFileSize(ManifestFileSizeLimit)

	// The engine's own per-file-size validation assumes files it opens were
	// written by this same process; right after a cloud-backed open that
	// isn't true yet for files inherited from src/dest, so validation is
	// relaxed for the open call and left cleared afterwards — it is a
	// one-shot relaxation, not restored to whatever was configured
	// (spec.md §4.F step 11, §9 global mutable state).
	engine.SetValidateFilesize(false)
	var openErr error
	if readOnly {
		openErr = engine.OpenForReadOnly(cfs)
	} else {
		openErr = engine.Open(cfs)
	}
	if openErr != nil {
		return nil, openErr
	}

	dbid, err := engine.GetDbIdentity()
	if err != nil {
		logger.Warnf("get db identity: %v", err)
	}

	db := &DBCloud{env: env, engine: engine, logger: logger, cache: cache, dbid: dbid}
	if !readOnly {
		registerExitFlush(db)
	}
	logger.Infof("opened database %q (read_only=%v)", dbid, readOnly)
	return db, nil
}

// DbID returns the identity string the engine reported at open time.
func (db *DBCloud) DbID() string { return db.dbid }

// Engine returns the underlying engine collaborator.
func (db *DBCloud) Engine() Engine { return db.engine }

// Env returns the cloud environment collaborator.
func (db *DBCloud) Env() CloudEnv { return db.env }

// Close flushes the engine and releases it (spec.md §6 destruction
// behavior: a blocking flush happens before anything closes). Calling
// Close more than once is harmless.
func (db *DBCloud) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	if err := db.engine.Flush(); err != nil {
		db.logger.Warnf("flush on close: %v", err)
	}
	err := db.engine.Close()
	db.closed = true
	return err
}

// flushOnExit is the best-effort fallback registered with onexit for a
// process that exits without calling Close explicitly.
func (db *DBCloud) flushOnExit() {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return
	}
	if err := db.engine.Flush(); err != nil {
		db.logger.Warnf("flush on exit: %v", err)
	}
}
