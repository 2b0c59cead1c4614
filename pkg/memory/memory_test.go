package memory

import (
	"errors"
	"testing"
)

func TestAllocateNeverReturnsZero(t *testing.T) {
	h := New([]uint32{1, 2, 3})
	for i := 0; i < 5; i++ {
		if id := h.Allocate(4); id == ProgramSegment {
			t.Fatalf("allocate returned protected segment 0")
		}
	}
}

func TestAllocateZeroLengthIsLegalAndNeverReadable(t *testing.T) {
	h := New(nil)
	id := h.Allocate(0)
	n, mapped := h.Len(id)
	if !mapped || n != 0 {
		t.Fatalf("zero-length segment: mapped=%v len=%d", mapped, n)
	}
	if _, err := h.Load(id, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds reading offset 0 of empty segment, got %v", err)
	}
}

func TestDeallocateThenAllocateReusesID(t *testing.T) {
	h := New(nil)
	a := h.Allocate(10)
	if err := h.Deallocate(a); err != nil {
		t.Fatalf("deallocate: %v", err)
	}
	b := h.Allocate(10)
	if a != b {
		t.Fatalf("expected id reuse: allocated %d then %d", a, b)
	}
}

func TestFreeListIsFIFO(t *testing.T) {
	h := New(nil)
	a := h.Allocate(1)
	b := h.Allocate(1)
	if err := h.Deallocate(a); err != nil {
		t.Fatal(err)
	}
	if err := h.Deallocate(b); err != nil {
		t.Fatal(err)
	}
	first := h.Allocate(1)
	second := h.Allocate(1)
	if first != a || second != b {
		t.Fatalf("expected FIFO reuse order a=%d,b=%d; got %d,%d", a, b, first, second)
	}
}

func TestDeallocateSegmentZeroFails(t *testing.T) {
	h := New(nil)
	if err := h.Deallocate(0); !errors.Is(err, ErrProtectedSegment) {
		t.Fatalf("expected ErrProtectedSegment, got %v", err)
	}
}

func TestDeallocateUnmappedFails(t *testing.T) {
	h := New(nil)
	if err := h.Deallocate(42); !errors.Is(err, ErrUnmapped) {
		t.Fatalf("expected ErrUnmapped, got %v", err)
	}
	id := h.Allocate(1)
	if err := h.Deallocate(id); err != nil {
		t.Fatal(err)
	}
	if err := h.Deallocate(id); !errors.Is(err, ErrUnmapped) {
		t.Fatalf("double deallocate: expected ErrUnmapped, got %v", err)
	}
}

func TestStoreThenLoadRoundTrips(t *testing.T) {
	h := New(nil)
	id := h.Allocate(4)
	if err := h.Store(id, 2, 0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	got, err := h.Load(id, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xDEADBEEF {
		t.Fatalf("got %#x, want 0xDEADBEEF", got)
	}
}

func TestLoadStorePastEndFails(t *testing.T) {
	h := New(nil)
	id := h.Allocate(2)
	if _, err := h.Load(id, 2); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("load at length: expected ErrOutOfBounds, got %v", err)
	}
	if err := h.Store(id, 5, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("store past end: expected ErrOutOfBounds, got %v", err)
	}
}

func TestLoadStoreUnmappedFails(t *testing.T) {
	h := New(nil)
	if _, err := h.Load(99, 0); !errors.Is(err, ErrUnmapped) {
		t.Fatalf("expected ErrUnmapped, got %v", err)
	}
	if err := h.Store(99, 0, 0); !errors.Is(err, ErrUnmapped) {
		t.Fatalf("expected ErrUnmapped, got %v", err)
	}
}

func TestCloneIntoZeroCopiesWordForWord(t *testing.T) {
	h := New([]uint32{0, 0, 0})
	id := h.Allocate(3)
	h.Store(id, 0, 10)
	h.Store(id, 1, 20)
	h.Store(id, 2, 30)
	if err := h.CloneIntoZero(id); err != nil {
		t.Fatal(err)
	}
	for off, want := range []uint32{10, 20, 30} {
		got, err := h.Load(0, uint32(off))
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("segment 0 offset %d: got %d, want %d", off, got, want)
		}
	}
	// source segment is unaffected by cloning into zero
	srcVal, err := h.Load(id, 0)
	if err != nil {
		t.Fatal(err)
	}
	if srcVal != 10 {
		t.Fatalf("source segment mutated by clone: got %d, want 10", srcVal)
	}
}

func TestCloneIntoZeroOfZeroIsNoOpNotAlias(t *testing.T) {
	h := New([]uint32{1, 2, 3})
	if err := h.CloneIntoZero(0); err != nil {
		t.Fatal(err)
	}
	got, err := h.Load(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}

func TestCloneIntoZeroFromUnmappedFails(t *testing.T) {
	h := New(nil)
	if err := h.CloneIntoZero(42); !errors.Is(err, ErrUnmapped) {
		t.Fatalf("expected ErrUnmapped, got %v", err)
	}
}

func TestAllocateGrowsIDSpaceWhenFreeListEmpty(t *testing.T) {
	h := New(nil)
	first := h.Allocate(1)
	second := h.Allocate(1)
	if second != first+1 {
		t.Fatalf("expected monotonically growing ids, got %d then %d", first, second)
	}
}
