package blockinfo

import "testing"

func TestZeroIsUnused(t *testing.T) {
	var i Info
	if i.Used() {
		t.Fatalf("zero value must be unused")
	}
}

func TestMakeRoundTrip(t *testing.T) {
	info := Make(12345, false)
	if !info.Used() {
		t.Fatalf("Make must set used")
	}
	if info.Error() {
		t.Fatalf("Make(_, false) must not set error")
	}
	if info.Time() != 12345 {
		t.Fatalf("Time() = %d, want 12345", info.Time())
	}
}

func TestSetErrorPreservesTime(t *testing.T) {
	info := Make(777, false)
	withErr := info.SetError()
	if !withErr.Error() {
		t.Fatalf("SetError must set the error bit")
	}
	if withErr.Time() != 777 {
		t.Fatalf("SetError must preserve time, got %d", withErr.Time())
	}
	if !withErr.Used() {
		t.Fatalf("SetError must preserve used")
	}
}

func TestCompareTime(t *testing.T) {
	older := Make(1, false)
	newer := Make(2, false)
	if CompareTime(older, newer) >= 0 {
		t.Fatalf("older block must compare less than newer")
	}
	if CompareTime(newer, older) <= 0 {
		t.Fatalf("newer block must compare greater than older")
	}
	if CompareTime(older, older) != 0 {
		t.Fatalf("equal times must compare equal")
	}
}

func TestMakeWithErrorFlag(t *testing.T) {
	info := Make(42, true)
	if !info.Error() {
		t.Fatalf("Make(_, true) must set error")
	}
}
