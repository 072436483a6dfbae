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

// currentMaxFileNumber reads CURRENT's referenced manifest number. A
// not-found CURRENT means this is a brand-new database with no file numbers
// to protect from the new epoch at all, so max_file_number is 0.
func currentMaxFileNumber(local LocalFS) (uint64, error) {
	data, err := local.ReadFile("CURRENT")
	if err != nil {
		if IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	n, ok := parseManifestNumber(strings.TrimSpace(string(data)))
	if !ok {
		return 0, nil
	}
	return n, nil
}

// MaybeRollNewEpoch mints a fresh epoch for this open session (spec.md
// §4.E): every file number written from here on is attributed to the new
// epoch, while everything already on disk keeps pointing at the epoch that
// was current when those files were written. Read-only opens never mint an
// epoch — there is nothing for a read-only session to protect a cut-over
// for. If the local epoch-stamped manifest for the current epoch already
// exists, this instance has already rolled past it in an earlier open; no
// new epoch is needed, and the cloud manifest is simply finalized.
func MaybeRollNewEpoch(e CloudEnv, readOnly bool) error {
	if readOnly {
		return nil
	}

	m := e.Manifest()
	if m == nil {
		return errInvalidArg("roll new epoch: no cloud manifest loaded", nil)
	}
	if m.Finalized() {
		return errInvalidArg("roll new epoch: cloud manifest is finalized", nil)
	}

	local := e.Local()
	oldEpoch := m.CurrentEpoch()
	if oldEpoch != LegacyEpoch && local.Exists("MANIFEST-"+string(oldEpoch)) {
		m.Finalize()
		return nil
	}

	maxFileNumber, err := currentMaxFileNumber(local)
	if err != nil {
		return err
	}

	newEpoch := NewEpoch()
	if err := m.AddEpoch(maxFileNumber, newEpoch); err != nil {
		return err
	}

	// Stamp the manifest content under the new epoch's name so that the
	// check above recognizes it as already-rolled on the next open: once
	// this open's newEpoch becomes the next open's oldEpoch, it must find
	// "MANIFEST-<newEpoch>" on disk rather than minting yet another epoch.
	stamped := "MANIFEST-" + string(newEpoch)
	if local.Exists("MANIFEST") && !local.Exists(stamped) {
		data, err := local.ReadFile("MANIFEST")
		if err != nil {
			return err
		}
		if err := local.WriteFileAtomic(stamped, data); err != nil {
			return err
		}
	}

	cloudManifestBytes := m.Serialize()
	if err := local.WriteFileAtomic("CLOUDMANIFEST", cloudManifestBytes); err != nil {
		return err
	}

	dest := e.Dest()
	if dest.Empty() {
		return nil
	}

	store := e.Store()
	if data, err := local.ReadFile(stamped); err == nil {
		if err := store.PutBytes(data, dest.Bucket, dest.Prefix+"/"+stamped); err != nil {
			return err
		}
	} else if !IsNotFound(err) {
		return err
	}

	return store.PutBytes(cloudManifestBytes, dest.Bucket, dest.Prefix+"/CLOUDMANIFEST")
}
