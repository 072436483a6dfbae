package cloud_test

import (
	"testing"

	"github.com/launix-de/lsmcloud/cloud"
	"github.com/launix-de/lsmcloud/internal/refengine"
)

func TestOpenFreshDestOnlyDatabase(t *testing.T) {
	dir := t.TempDir()
	dest := cloud.BucketCoordinate{Bucket: "dest-bucket", Prefix: "db1"}

	local := cloud.NewOSLocalFS(dir)
	store := cloud.NewFakeObjectStore()
	env := cloud.NewEnv(local, store, cloud.BucketCoordinate{}, dest)
	engine := refengine.New(dir)

	opts := cloud.Options{
		CloudType:             cloud.CloudAWS,
		KeepLocalSSTFiles:     true,
		ValidateFilesize:      true,
		MaxOpenFiles:          -1,
		MaxFileOpeningThreads: 4,
	}

	db, err := cloud.Open(env, engine, opts, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if db.DbID() == "" {
		t.Fatal("expected a non-empty db identity after open")
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("second Close should be harmless: %v", err)
	}
}

func TestOpenForReadOnlyFailsOnFreshDirectory(t *testing.T) {
	dir := t.TempDir()
	dest := cloud.BucketCoordinate{Bucket: "dest-bucket", Prefix: "db1"}

	local := cloud.NewOSLocalFS(dir)
	store := cloud.NewFakeObjectStore()
	env := cloud.NewEnv(local, store, cloud.BucketCoordinate{}, dest)
	engine := refengine.New(dir)

	opts := cloud.Options{
		CloudType:         cloud.CloudAWS,
		KeepLocalSSTFiles: true,
		MaxOpenFiles:      -1,
	}

	if _, err := cloud.OpenForReadOnly(env, engine, opts, nil, nil); err == nil {
		t.Fatal("expected an error opening a never-initialized directory read-only")
	}
}

func TestOpenThenSavepointMirrorsLiveFiles(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()

	src := cloud.BucketCoordinate{Bucket: "src-bucket", Prefix: "db1"}
	dest := cloud.BucketCoordinate{Bucket: "dest-bucket", Prefix: "db1-clone"}

	store := cloud.NewFakeObjectStore()

	// Seed the source database directly through the engine, the way an
	// already-running primary instance would have left files behind.
	srcEnv := cloud.NewEnv(cloud.NewOSLocalFS(srcDir), store, cloud.BucketCoordinate{}, src)
	srcEngine := refengine.New(srcDir)
	srcOpts := cloud.Options{CloudType: cloud.CloudAWS, KeepLocalSSTFiles: true, MaxOpenFiles: -1, MaxFileOpeningThreads: 2}
	srcDB, err := cloud.Open(srcEnv, srcEngine, srcOpts, nil, nil)
	if err != nil {
		t.Fatalf("open src: %v", err)
	}
	if err := store.PutBytes([]byte("sst-bytes"), src.Bucket, src.Prefix+"/000001.sst"); err != nil {
		t.Fatalf("seed src object: %v", err)
	}
	// A real engine uploads its own IDENTITY; this toy one doesn't, so the
	// test seeds it directly to exercise the clone-naming path below.
	if err := store.PutBytes([]byte(srcDB.DbID()+"\n"), src.Bucket, src.Prefix+"/IDENTITY"); err != nil {
		t.Fatalf("seed src identity: %v", err)
	}
	srcEngine.AddLiveFile("000001.sst", 9, 0)
	if err := cloud.Savepoint(srcEnv, srcEngine, srcOpts.MaxFileOpeningThreads); err != nil {
		t.Fatalf("savepoint into own dest: %v", err)
	}
	_ = srcDB.Close()

	// Clone into dest from src.
	cloneEnv := cloud.NewEnv(cloud.NewOSLocalFS(destDir), store, src, dest)
	cloneEngine := refengine.New(destDir)
	cloneOpts := cloud.Options{CloudType: cloud.CloudAWS, KeepLocalSSTFiles: true, MaxOpenFiles: -1, MaxFileOpeningThreads: 2}
	cloneDB, err := cloud.Open(cloneEnv, cloneEngine, cloneOpts, nil, nil)
	if err != nil {
		t.Fatalf("open clone: %v", err)
	}
	defer cloneDB.Close()

	wantPrefix := srcDB.DbID() + cloud.DBIDSeparator
	if len(cloneDB.DbID()) <= len(wantPrefix) || cloneDB.DbID()[:len(wantPrefix)] != wantPrefix {
		t.Fatalf("clone db id = %q, want prefix %q", cloneDB.DbID(), wantPrefix)
	}

	cloneEngine.AddLiveFile("000001.sst", 9, 0)
	if err := cloud.Savepoint(cloneEnv, cloneEngine, cloneOpts.MaxFileOpeningThreads); err != nil {
		t.Fatalf("savepoint clone: %v", err)
	}

	got, err := store.GetBytes(dest.Bucket, dest.Prefix+"/000001.sst")
	if err != nil {
		t.Fatalf("expected live file mirrored into dest: %v", err)
	}
	if string(got) != "sst-bytes" {
		t.Fatalf("mirrored content = %q, want sst-bytes", got)
	}
}
