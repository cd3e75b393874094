package dedup

import "testing"

func TestFillIDFormat(t *testing.T) {
	t.Parallel()
	if got := FillID(true, "abc123", "ws"); got != "full_abc123_ws" {
		t.Fatalf("FillID = %q, want %q", got, "full_abc123_ws")
	}
	if got := FillID(false, "abc123", "rest"); got != "partial_abc123_rest" {
		t.Fatalf("FillID = %q, want %q", got, "partial_abc123_rest")
	}
}

func TestCheckAndMarkFirstWriteWins(t *testing.T) {
	t.Parallel()
	s := NewSet()
	if !s.CheckAndMark("full_abc_ws") {
		t.Fatal("first check should succeed")
	}
	if s.CheckAndMark("full_abc_ws") {
		t.Fatal("second check of the same id should fail")
	}
}

func TestDifferentSourceNamespacesNeverCollide(t *testing.T) {
	t.Parallel()
	s := NewSet()
	if !s.CheckAndMark(FillID(true, "abc", "ws")) {
		t.Fatal("ws key should be fresh")
	}
	if !s.CheckAndMark(FillID(true, "abc", "position")) {
		t.Fatal("position key should be a distinct namespace from ws")
	}
}
