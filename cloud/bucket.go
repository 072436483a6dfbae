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

// BucketCoordinate identifies a logical database location in the object
// store: a bucket plus an object-key prefix inside it. Either half may be
// empty, meaning "not configured".
type BucketCoordinate struct {
	Bucket string
	Prefix string
}

// Empty reports whether neither the bucket nor the prefix is set, i.e. this
// coordinate is "not configured" per spec.md §3.
func (b BucketCoordinate) Empty() bool {
	return b.Bucket == "" && b.Prefix == ""
}

// TrimmedPrefix returns the prefix with any trailing slash removed, the
// comparison form spec.md §4.D step 5 requires.
func (b BucketCoordinate) TrimmedPrefix() string {
	return strings.TrimSuffix(b.Prefix, "/")
}

// SamePrefix compares two prefixes the way §4.D step 5 does: both trimmed
// of a trailing slash.
func SamePrefix(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}

// CloudType selects the object-store backend. Only CloudAWS is supported;
// anything else (including future backends) fails SanitizeDirectory with
// NotSupported, per spec.md §4.D.
type CloudType int

const (
	CloudNone CloudType = iota
	CloudAWS
)
