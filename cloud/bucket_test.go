package cloud

import "testing"

func TestBucketCoordinateEmpty(t *testing.T) {
	if !(BucketCoordinate{}).Empty() {
		t.Fatal("zero-value BucketCoordinate should be Empty")
	}
	if (BucketCoordinate{Bucket: "b"}).Empty() {
		t.Fatal("BucketCoordinate with a bucket should not be Empty")
	}
}

func TestSamePrefixIgnoresTrailingSlash(t *testing.T) {
	if !SamePrefix("db1", "db1/") {
		t.Fatal("SamePrefix should ignore a trailing slash")
	}
	if SamePrefix("db1", "db2") {
		t.Fatal("SamePrefix should distinguish different prefixes")
	}
}

func TestTrimmedPrefix(t *testing.T) {
	b := BucketCoordinate{Bucket: "x", Prefix: "db1/"}
	if got := b.TrimmedPrefix(); got != "db1" {
		t.Fatalf("TrimmedPrefix = %q, want db1", got)
	}
}
