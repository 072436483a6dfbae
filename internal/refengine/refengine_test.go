package refengine

import (
	"path/filepath"
	"testing"

	"github.com/launix-de/lsmcloud/cloud"
)

func TestOpenAssignsIdentity(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)
	if err := e.Open(nil); err != nil {
		t.Fatalf("Open: %v", err)
	}
	id, err := e.GetDbIdentity()
	if err != nil {
		t.Fatalf("GetDbIdentity: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty identity after open")
	}
}

func TestOpenForReadOnlyRequiresExistingIdentity(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)
	if err := e.OpenForReadOnly(nil); err == nil {
		t.Fatal("expected error opening a never-initialized directory read-only")
	}
}

func TestReopenReusesIdentity(t *testing.T) {
	dir := t.TempDir()
	e1 := New(dir)
	if err := e1.Open(nil); err != nil {
		t.Fatalf("Open: %v", err)
	}
	id1, _ := e1.GetDbIdentity()
	if err := e1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	e2 := New(dir)
	if err := e2.Open(nil); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	id2, _ := e2.GetDbIdentity()
	if id1 != id2 {
		t.Fatalf("identity changed across reopen: %q != %q", id1, id2)
	}
}

func TestGetLiveFilesMetaData(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)
	if err := e.Open(nil); err != nil {
		t.Fatalf("Open: %v", err)
	}
	e.AddLiveFile("000001.sst", 100, 0)
	e.AddLiveFile("000002.sst", 200, 1)

	files := e.GetLiveFilesMetaData()
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if files[0].Name != "000001.sst" || files[0].Size != 100 || files[0].Level != 0 {
		t.Fatalf("unexpected file[0]: %+v", files[0])
	}
}

func TestTableFactoryPersistentCache(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)
	if err := e.Open(nil); err != nil {
		t.Fatalf("Open: %v", err)
	}
	tf := e.TableFactory()
	if tf.PersistentCache() != nil {
		t.Fatal("expected no persistent cache installed by default")
	}
	pc, err := cloud.NewPersistentCache(filepath.Join(dir, "cache"), 1)
	if err != nil {
		t.Fatalf("NewPersistentCache: %v", err)
	}
	tf.SetPersistentCache(pc)
	if tf.PersistentCache() != pc {
		t.Fatal("SetPersistentCache did not stick")
	}
}

func TestSetValidateFilesizeReturnsPrevious(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)
	prev := e.SetValidateFilesize(true)
	if prev != false {
		t.Fatalf("initial validate_filesize = %v, want false", prev)
	}
	prev = e.SetValidateFilesize(false)
	if prev != true {
		t.Fatalf("SetValidateFilesize returned %v, want true", prev)
	}
}
