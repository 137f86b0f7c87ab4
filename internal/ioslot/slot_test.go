package ioslot

import "testing"

func TestNewAllIdle(t *testing.T) {
	tbl := New(4)
	if tbl.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tbl.Len())
	}
	for i := 0; i < 4; i++ {
		if tbl.Slot(i).State != Idle {
			t.Fatalf("slot %d not Idle at construction", i)
		}
	}
}

func TestValidTransitions(t *testing.T) {
	tbl := New(2)
	tbl.Configure(0, 4096, 4096, false, 100)
	tbl.MarkPending(0)
	if tbl.Slot(0).State != InFlight {
		t.Fatalf("expected InFlight after MarkPending")
	}
	tbl.MarkCompleted(0)
	if tbl.Slot(0).State != Completed {
		t.Fatalf("expected Completed")
	}
	tbl.MarkIdle(0)
	if tbl.Slot(0).State != Idle {
		t.Fatalf("expected Idle after drain")
	}
}

func TestFindByTokenRoundTrips(t *testing.T) {
	tbl := New(16)
	for i := 0; i < 16; i++ {
		s, ok := tbl.FindByToken(tbl.Slot(i).Token)
		if !ok || s.Index != i {
			t.Fatalf("FindByToken(%d) = %v, %v", i, s, ok)
		}
	}
	if _, ok := tbl.FindByToken(99); ok {
		t.Fatalf("expected FindByToken to fail for out-of-range token")
	}
}

func TestInFlightCountBoundedByQueueDepth(t *testing.T) {
	tbl := New(4)
	for i := 0; i < 4; i++ {
		tbl.Configure(i, int64(i*4096), 4096, false, 1)
		tbl.MarkPending(i)
	}
	if tbl.InFlightCount() != 4 {
		t.Fatalf("InFlightCount() = %d, want 4", tbl.InFlightCount())
	}
}
