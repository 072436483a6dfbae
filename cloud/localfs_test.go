package cloud

import "testing"

func TestOSLocalFSWriteReadAtomic(t *testing.T) {
	fs := NewOSLocalFS(t.TempDir())

	if err := fs.WriteFileAtomic("foo", []byte("bar")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	if !fs.Exists("foo") {
		t.Fatal("file should exist after WriteFileAtomic")
	}
	data, err := fs.ReadFile("foo")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "bar" {
		t.Fatalf("content = %q, want bar", data)
	}
}

func TestOSLocalFSReadMissingIsNotFound(t *testing.T) {
	fs := NewOSLocalFS(t.TempDir())
	if _, err := fs.ReadFile("missing"); !IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestOSLocalFSRenameAndRemove(t *testing.T) {
	fs := NewOSLocalFS(t.TempDir())
	if err := fs.WriteFile("a", []byte("1")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := fs.Rename("a", "b"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if fs.Exists("a") || !fs.Exists("b") {
		t.Fatal("rename did not move the file")
	}
	if err := fs.Remove("b"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if fs.Exists("b") {
		t.Fatal("file should not exist after Remove")
	}
}

func TestOSLocalFSReadDirNames(t *testing.T) {
	fs := NewOSLocalFS(t.TempDir())
	if err := fs.WriteFile("one", []byte("1")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := fs.WriteFile("two", []byte("2")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	names, err := fs.ReadDirNames()
	if err != nil {
		t.Fatalf("ReadDirNames: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("len(names) = %d, want 2", len(names))
	}
}

func TestMemLocalFSMirrorsOSLocalFSContract(t *testing.T) {
	fs := NewMemLocalFS("mem")
	if err := fs.WriteFileAtomic("x", []byte("y")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	data, err := fs.ReadFile("x")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "y" {
		t.Fatalf("content = %q, want y", data)
	}
	if err := fs.Rename("x", "z"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if fs.Exists("x") || !fs.Exists("z") {
		t.Fatal("rename did not move the entry")
	}
}
