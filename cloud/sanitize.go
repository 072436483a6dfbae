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

import "strings"

func sameCoord(a, b BucketCoordinate) bool {
	return a.Bucket == b.Bucket && SamePrefix(a.Prefix, b.Prefix)
}

// NeedsReinitialization implements spec.md §4.D's decision procedure: is
// the local directory a usable cache for the configured (src, dest) pair,
// or must it be wiped and re-seeded?
//
// Open Question 1 decision (DESIGN.md): a forward GetPathForDbid(bucket,
// localDbid) hit means, by construction, the registry's key equals
// localDbid. A local directory that already has CURRENT/IDENTITY is
// presumed initialized; the registry lookups below are a safety net on top
// of that, not the primary decision. A src registration for the local dbid
// while src and dest use different buckets forces a reinit; a dest
// registration whose prefix differs from the configured dest prefix fails
// with InvalidArgument. A missing registration never forces a reinit
// (SanitizeDirectory may simply be the first open to populate it).
func NeedsReinitialization(e CloudEnv) (bool, error) {
	src, dest := e.Src(), e.Dest()
	if src.Empty() && dest.Empty() {
		return false, nil
	}

	local := e.Local()
	if _, err := local.ReadDirNames(); err != nil {
		if IsNotFound(err) {
			return true, nil
		}
		return false, err
	}
	if _, err := local.ReadFile("CURRENT"); err != nil {
		if IsNotFound(err) {
			return true, nil
		}
		return false, err
	}
	identityData, err := local.ReadFile("IDENTITY")
	if err != nil {
		if IsNotFound(err) {
			return true, nil
		}
		return false, err
	}
	localDbid := strings.TrimSpace(string(identityData))

	if !src.Empty() {
		_, err := e.Store().GetPathForDbid(src.Bucket, localDbid)
		switch {
		case err == nil:
			if src.Bucket != dest.Bucket {
				return true, nil
			}
		case IsNotFound(err):
			// acceptable: no registration yet
		default:
			return false, err
		}
	}
	if !dest.Empty() {
		destPath, err := e.Store().GetPathForDbid(dest.Bucket, localDbid)
		switch {
		case err == nil:
			if !SamePrefix(destPath, dest.Prefix) {
				return false, errInvalidArg(
					"local directory belongs to a different clone: dest registry maps dbid to "+destPath+
						", configured dest prefix is "+dest.Prefix, nil)
			}
		case IsNotFound(err):
			// acceptable: no registration yet
		default:
			return false, err
		}
	}

	return false, nil
}

// fetchIdentity downloads IDENTITY, preferring dest and falling back to
// src only when dest and src are distinct and dest came back not-found.
// Returns ("", "", nil) when neither bucket has an IDENTITY: a brand-new
// database, left for the engine to assign a dbid to later.
func fetchIdentity(e CloudEnv) (identity string, from string, err error) {
	dest, src := e.Dest(), e.Src()
	store := e.Store()

	if !dest.Empty() {
		data, gerr := store.GetBytes(dest.Bucket, dest.Prefix+"/IDENTITY")
		if gerr == nil {
			if werr := e.Local().WriteFileAtomic("IDENTITY", data); werr != nil {
				return "", "", werr
			}
			return strings.TrimSpace(string(data)), "dest", nil
		}
		if !IsNotFound(gerr) {
			return "", "", gerr
		}
	}
	if !src.Empty() && !sameCoord(src, dest) {
		data, gerr := store.GetBytes(src.Bucket, src.Prefix+"/IDENTITY")
		if gerr == nil {
			if werr := e.Local().WriteFileAtomic("IDENTITY", data); werr != nil {
				return "", "", werr
			}
			return strings.TrimSpace(string(data)), "src", nil
		}
		if !IsNotFound(gerr) {
			return "", "", gerr
		}
	}
	return "", "", nil
}

// SanitizeDirectory runs after NeedsReinitialization decides; it performs
// the configuration cross-checks, the destructive wipe when reinit is
// required, and clone provisioning (spec.md §4.D).
func SanitizeDirectory(e CloudEnv, opts Options, readOnly bool) error {
	if opts.CloudType == CloudNone {
		return nil
	}
	if opts.CloudType != CloudAWS {
		return errNotSupported("cloud type is not the supported AWS S3 backend", nil)
	}

	dest := e.Dest()
	if dest.Empty() {
		if opts.MaxOpenFiles != -1 {
			return errInvalidArg("dest is empty: max_open_files must be -1 (open all files at startup)", nil)
		}
		if !opts.KeepLocalSSTFiles {
			return errInvalidArg("dest is empty: keep_local_sst_files must be true", nil)
		}
	}

	reinit, err := NeedsReinitialization(e)
	if err != nil {
		return err
	}
	if !reinit {
		// Keep the registry current even on a plain reopen, so a later
		// config change has something real to detect a conflict against.
		if !dest.Empty() {
			if data, err := e.Local().ReadFile("IDENTITY"); err == nil {
				localDbid := strings.TrimSpace(string(data))
				if err := e.Store().PutPathForDbid(dest.Bucket, localDbid, dest.Prefix); err != nil {
					return err
				}
			}
		}
		return nil
	}

	local := e.Local()
	names, err := local.ReadDirNames()
	if err != nil {
		if !IsNotFound(err) {
			return err
		}
		if readOnly {
			return err
		}
		if err := local.MkdirAll(); err != nil {
			return err
		}
		names = nil
	}
	for _, name := range names {
		if name == "." || name == ".." || strings.HasPrefix(name, "LOG") {
			continue
		}
		if err := local.Remove(name); err != nil {
			return err
		}
	}

	identity, from, err := fetchIdentity(e)
	if err != nil {
		return err
	}
	if identity == "" {
		// brand-new database: the engine assigns a dbid on first write.
		return nil
	}

	finalIdentity := identity
	if from == "src" && !dest.Empty() && !sameCoord(e.Src(), dest) {
		cloneDbid := identity + DBIDSeparator + e.GenerateUniqueID()
		if err := local.WriteFileAtomic("IDENTITY", []byte(cloneDbid+"\n")); err != nil {
			return err
		}
		finalIdentity = cloneDbid
	}

	if !dest.Empty() {
		if err := e.Store().PutPathForDbid(dest.Bucket, finalIdentity, dest.Prefix); err != nil {
			return err
		}
	}

	return local.WriteFileAtomic("CURRENT", []byte("MANIFEST-000001\n"))
}

// FetchCloudManifest loads (or creates) the cloud manifest and installs it
// into env, per spec.md §4.D.
func FetchCloudManifest(e CloudEnv) error {
	dest, src := e.Dest(), e.Src()
	local := e.Local()
	store := e.Store()

	if dest.Empty() {
		if data, err := local.ReadFile("CLOUDMANIFEST"); err == nil {
			return loadManifestBytes(e, data, false)
		} else if !IsNotFound(err) {
			return err
		}
	}

	if !dest.Empty() {
		data, err := store.GetBytes(dest.Bucket, dest.Prefix+"/CLOUDMANIFEST")
		if err == nil {
			return loadManifestBytes(e, data, true)
		}
		if !IsNotFound(err) {
			return err
		}
	}

	if !src.Empty() && !sameCoord(src, dest) {
		data, err := store.GetBytes(src.Bucket, src.Prefix+"/CLOUDMANIFEST")
		if err == nil {
			return loadManifestBytes(e, data, true)
		}
		if !IsNotFound(err) {
			return err
		}
	}

	cm := NewCloudManifest(LegacyEpoch)
	if err := local.WriteFileAtomic("CLOUDMANIFEST", cm.Serialize()); err != nil {
		return err
	}
	e.LoadCloudManifest(cm)
	return nil
}

func loadManifestBytes(e CloudEnv, data []byte, persistLocally bool) error {
	cm, err := ParseCloudManifest(data)
	if err != nil {
		return err
	}
	if persistLocally {
		if err := e.Local().WriteFileAtomic("CLOUDMANIFEST", data); err != nil {
			return err
		}
	}
	e.LoadCloudManifest(cm)
	return nil
}

// MaybeMigrateManifestFile renames a legacy numbered manifest referenced by
// CURRENT to the epoch-less name the cloud pipeline expects. No-op when
// CURRENT is absent or the referenced file doesn't exist locally; this
// operation is idempotent (spec.md §4.D).
func MaybeMigrateManifestFile(e CloudEnv) error {
	local := e.Local()
	data, err := local.ReadFile("CURRENT")
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	name := strings.TrimSpace(string(data))
	if name == "" || name == "MANIFEST" || !local.Exists(name) {
		return nil
	}
	return local.Rename(name, "MANIFEST")
}
