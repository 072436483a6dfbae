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

// memLocalFS is an in-memory LocalFS, the test-suite counterpart to
// osLocalFS — the same split storage/persistence.go draws between
// PersistenceEngine's production backend and the backends tests build by
// hand instead of touching disk.
type memLocalFS struct {
	dirName string

	mu    sync.Mutex
	files map[string][]byte
}

// NewMemLocalFS returns an in-memory LocalFS; dirName is cosmetic only
// (used for logging/error messages).
func NewMemLocalFS(dirName string) LocalFS {
	return &memLocalFS{dirName: dirName, files: make(map[string][]byte)}
}

func (m *memLocalFS) Dir() string { return m.dirName }

func (m *memLocalFS) Exists(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[name]
	return ok
}

func (m *memLocalFS) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, errNotFound("local file "+name, nil)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *memLocalFS) WriteFile(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.files[name] = cp
	return nil
}

func (m *memLocalFS) WriteFileAtomic(name string, data []byte) error {
	return m.WriteFile(name, data)
}

func (m *memLocalFS) Rename(oldName, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[oldName]
	if !ok {
		return errNotFound("rename "+oldName, nil)
	}
	m.files[newName] = data
	delete(m.files, oldName)
	return nil
}

func (m *memLocalFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
	return nil
}

func (m *memLocalFS) ReadDirNames() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for n := range m.files {
		names = append(names, n)
	}
	return names, nil
}

func (m *memLocalFS) MkdirAll() error { return nil }

// fakeObjectStore is an in-memory ObjectStore, used by tests and by
// cmd/dbcloud-demo to stand in for the two S3 buckets without a network
// dependency, mirroring storage/persistence-files.go being FileStorage's
// alternative to S3Storage behind the same PersistenceEngine interface.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte // "bucket/path" -> bytes
}

// NewFakeObjectStore returns an in-memory ObjectStore.
func NewFakeObjectStore() ObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func objKey(bucket, path string) string { return bucket + "/" + path }

func (f *fakeObjectStore) Exists(bucket, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[objKey(bucket, path)]
	return ok, nil
}

func (f *fakeObjectStore) GetBytes(bucket, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[objKey(bucket, path)]
	if !ok {
		return nil, errNotFound("fake object "+objKey(bucket, path), nil)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (f *fakeObjectStore) Get(bucket, path string, dst LocalFS, localName string) error {
	data, err := f.GetBytes(bucket, path)
	if err != nil {
		return err
	}
	return dst.WriteFile(localName, data)
}

func (f *fakeObjectStore) PutBytes(data []byte, bucket, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	f.objects[objKey(bucket, path)] = cp
	return nil
}

func (f *fakeObjectStore) Put(src LocalFS, localName string, bucket, path string) error {
	data, err := src.ReadFile(localName)
	if err != nil {
		return err
	}
	return f.PutBytes(data, bucket, path)
}

func (f *fakeObjectStore) Copy(srcBucket, srcPath, dstBucket, dstPath string) error {
	data, err := f.GetBytes(srcBucket, srcPath)
	if err != nil {
		return err
	}
	return f.PutBytes(data, dstBucket, dstPath)
}

func (f *fakeObjectStore) List(bucket, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	base := bucket + "/" + prefix
	var out []string
	for k := range f.objects {
		if strings.HasPrefix(k, base) {
			out = append(out, strings.TrimPrefix(k, base))
		}
	}
	return out, nil
}

func (f *fakeObjectStore) GetPathForDbid(bucket, dbid string) (string, error) {
	data, err := f.GetBytes(bucket, registryPrefix+dbid)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *fakeObjectStore) PutPathForDbid(bucket, dbid, path string) error {
	return f.PutBytes([]byte(path), bucket, registryPrefix+dbid)
}
