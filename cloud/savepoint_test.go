package cloud

import "testing"

type stubEngine struct {
	files []LiveFileMetaData
}

func (s *stubEngine) Open([]ColumnFamilyDescriptor) error         { return nil }
func (s *stubEngine) OpenForReadOnly([]ColumnFamilyDescriptor) error { return nil }
func (s *stubEngine) Close() error                                { return nil }
func (s *stubEngine) Flush() error                                { return nil }
func (s *stubEngine) GetLiveFilesMetaData() []LiveFileMetaData    { return s.files }
func (s *stubEngine) GetDbIdentity() (string, error)              { return "stub", nil }
func (s *stubEngine) TableFactory() TableFactory                  { return nil }
func (s *stubEngine) SetMaxManifestFileSize(int64)                {}
func (s *stubEngine) SetValidateFilesize(bool) bool               { return false }

func TestSavepointNoopWithoutDest(t *testing.T) {
	src := BucketCoordinate{Bucket: "src-bucket", Prefix: "db1"}
	env, _, _ := newTestEnv(src, BucketCoordinate{})
	engine := &stubEngine{files: []LiveFileMetaData{{Name: "000001.sst", Size: 10}}}
	if err := Savepoint(env, engine, 4); err != nil {
		t.Fatalf("Savepoint: %v", err)
	}
}

func TestSavepointNoopWithoutSrc(t *testing.T) {
	dest := BucketCoordinate{Bucket: "dest-bucket", Prefix: "db1"}
	env, _, store := newTestEnv(BucketCoordinate{}, dest)
	engine := &stubEngine{files: []LiveFileMetaData{{Name: "000001.sst", Size: 10}}}
	if err := Savepoint(env, engine, 4); err != nil {
		t.Fatalf("Savepoint: %v", err)
	}
	if names, _ := store.List(dest.Bucket, dest.Prefix); len(names) != 0 {
		t.Fatalf("expected nothing copied, got %v", names)
	}
}

func TestSavepointCopiesMissingFiles(t *testing.T) {
	src := BucketCoordinate{Bucket: "src-bucket", Prefix: "db1"}
	dest := BucketCoordinate{Bucket: "dest-bucket", Prefix: "db1"}
	env, _, store := newTestEnv(src, dest)

	if err := store.PutBytes([]byte("sst-1"), src.Bucket, src.Prefix+"/000001.sst"); err != nil {
		t.Fatalf("seed src file: %v", err)
	}
	if err := store.PutBytes([]byte("sst-2"), src.Bucket, src.Prefix+"/000002.sst"); err != nil {
		t.Fatalf("seed src file: %v", err)
	}
	// 000002.sst already present at dest: Savepoint must not re-copy it, but
	// must not error either.
	if err := store.PutBytes([]byte("already-there"), dest.Bucket, dest.Prefix+"/000002.sst"); err != nil {
		t.Fatalf("seed dest file: %v", err)
	}

	engine := &stubEngine{files: []LiveFileMetaData{
		{Name: "000001.sst", Size: 5},
		{Name: "000002.sst", Size: 5},
	}}

	if err := Savepoint(env, engine, 4); err != nil {
		t.Fatalf("Savepoint: %v", err)
	}

	got, err := store.GetBytes(dest.Bucket, dest.Prefix+"/000001.sst")
	if err != nil {
		t.Fatalf("expected 000001.sst copied to dest: %v", err)
	}
	if string(got) != "sst-1" {
		t.Fatalf("copied content = %q, want sst-1", got)
	}

	untouched, err := store.GetBytes(dest.Bucket, dest.Prefix+"/000002.sst")
	if err != nil {
		t.Fatalf("expected existing 000002.sst preserved: %v", err)
	}
	if string(untouched) != "already-there" {
		t.Fatalf("existing dest file was overwritten: %q", untouched)
	}
}

func TestSavepointPropagatesFirstError(t *testing.T) {
	src := BucketCoordinate{Bucket: "src-bucket", Prefix: "db1"}
	dest := BucketCoordinate{Bucket: "dest-bucket", Prefix: "db1"}
	env, _, _ := newTestEnv(src, dest)

	// No file is ever seeded in src, so every Copy must fail not-found.
	engine := &stubEngine{files: []LiveFileMetaData{{Name: "000001.sst", Size: 5}}}

	err := Savepoint(env, engine, 2)
	if err == nil {
		t.Fatal("expected Savepoint to surface the copy error")
	}
	if !IsNotFound(err) {
		t.Fatalf("expected NotFound error, got %v", err)
	}
}
