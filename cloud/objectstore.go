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

// ObjectStore is collaborator A (spec.md §6): uniform get/put/exists/copy/
// list against (bucket, path). S3Store is the sole production
// implementation (AWS S3 or an S3-compatible endpoint); fakeObjectStore
// backs tests and the demo command, mirroring storage/persistence.go's
// PersistenceEngine interface having one production backend behind it.
type ObjectStore interface {
	// Exists reports whether the object at (bucket, path) is present.
	// A not-found Error is never returned here; absence is a valid false.
	Exists(bucket, path string) (bool, error)

	// Get downloads the object at (bucket, path) and writes it into dst.
	// Returns a NotFound Error if the object is absent.
	Get(bucket, path string, dst LocalFS, localName string) error

	// Put uploads the content of src (localName within src) to (bucket, path).
	Put(src LocalFS, localName string, bucket, path string) error

	// PutBytes uploads raw bytes directly, for callers that already hold
	// the payload in memory (e.g. a just-serialized cloud manifest).
	PutBytes(data []byte, bucket, path string) error

	// GetBytes downloads the object directly into memory. Returns a
	// NotFound Error if the object is absent.
	GetBytes(bucket, path string) ([]byte, error)

	// Copy server-side copies (srcBucket, srcPath) to (dstBucket, dstPath).
	Copy(srcBucket, srcPath, dstBucket, dstPath string) error

	// List returns the names of objects under (bucket, prefix), stripped
	// of the prefix.
	List(bucket, prefix string) ([]string, error)

	// GetPathForDbid looks up the object path registered for dbid under
	// bucket. Returns a NotFound Error if no registration exists.
	GetPathForDbid(bucket, dbid string) (string, error)

	// PutPathForDbid registers path as dbid's object path under bucket.
	PutPathForDbid(bucket, dbid, path string) error
}
