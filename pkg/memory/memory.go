// Package memory implements the Universal Machine's segmented heap: a
// set of independently-sized word segments, identified by 32-bit ids
// that are reused (FIFO) once a segment is unmapped.
//
// Segment 0 is always mapped and is the program segment; it is never
// returned by Allocate and never accepted by Deallocate.
package memory

import "fmt"

// Sentinel errors returned by the segmented heap. Use errors.Is to
// test for a specific condition.
var (
	// ErrUnmapped indicates an operation targeted a segment id that
	// is not currently mapped.
	ErrUnmapped = fmt.Errorf("memory: segment unmapped")

	// ErrOutOfBounds indicates an offset at or past a segment's length.
	ErrOutOfBounds = fmt.Errorf("memory: offset out of bounds")

	// ErrProtectedSegment indicates an attempt to deallocate segment 0.
	ErrProtectedSegment = fmt.Errorf("memory: segment 0 cannot be deallocated")
)

// ProgramSegment is the reserved id of the program segment.
const ProgramSegment = uint32(0)

// Heap is the segmented memory manager. The zero value is not usable;
// construct one with New.
type Heap struct {
	segs     [][]uint32 // segs[id] == nil means id is unmapped
	freeList []uint32   // FIFO queue of unmapped, reusable ids
}

// New creates a heap whose segment 0 holds a copy of program.
func New(program []uint32) *Heap {
	h := &Heap{
		segs: make([][]uint32, 1),
	}
	h.segs[0] = append(make([]uint32, 0, len(program)), program...)
	return h
}

// Allocate creates a new segment of exactly n words, all zero, and
// returns its id. If the free list is non-empty, the longest-unmapped
// id is reused; otherwise a fresh id is issued by growing the id space.
func (h *Heap) Allocate(n uint32) uint32 {
	seg := make([]uint32, n)
	if len(h.freeList) > 0 {
		id := h.freeList[0]
		h.freeList = h.freeList[1:]
		h.segs[id] = seg
		return id
	}
	id := uint32(len(h.segs))
	h.segs = append(h.segs, seg)
	return id
}

// Deallocate unmaps segment id and releases it for reuse. It fails if
// id is the program segment or is not currently mapped.
func (h *Heap) Deallocate(id uint32) error {
	if id == ProgramSegment {
		return ErrProtectedSegment
	}
	if !h.mapped(id) {
		return fmt.Errorf("%w: segment %d", ErrUnmapped, id)
	}
	h.segs[id] = nil
	h.freeList = append(h.freeList, id)
	return nil
}

// Load returns the word at offset off of segment id.
func (h *Heap) Load(id, off uint32) (uint32, error) {
	seg, err := h.segment(id)
	if err != nil {
		return 0, err
	}
	if off >= uint32(len(seg)) {
		return 0, fmt.Errorf("%w: segment %d offset %d (length %d)", ErrOutOfBounds, id, off, len(seg))
	}
	return seg[off], nil
}

// Store writes w at offset off of segment id.
func (h *Heap) Store(id, off, w uint32) error {
	seg, err := h.segment(id)
	if err != nil {
		return err
	}
	if off >= uint32(len(seg)) {
		return fmt.Errorf("%w: segment %d offset %d (length %d)", ErrOutOfBounds, id, off, len(seg))
	}
	seg[off] = w
	return nil
}

// CloneIntoZero replaces the contents of segment 0 with a byte-identical
// copy of segment id. If id is already 0, this is a no-op and segment 0
// is left in place rather than copied onto itself. (The engine's
// program-load never passes 0 here; it skips the call for in-program
// jumps.)
func (h *Heap) CloneIntoZero(id uint32) error {
	if id == ProgramSegment {
		return nil
	}
	seg, err := h.segment(id)
	if err != nil {
		return err
	}
	clone := make([]uint32, len(seg))
	copy(clone, seg)
	h.segs[0] = clone
	return nil
}

// Len returns the current length of segment id, and whether it is mapped.
func (h *Heap) Len(id uint32) (int, bool) {
	if !h.mapped(id) {
		return 0, false
	}
	return len(h.segs[id]), true
}

func (h *Heap) mapped(id uint32) bool {
	return int(id) < len(h.segs) && h.segs[id] != nil
}

func (h *Heap) segment(id uint32) ([]uint32, error) {
	if !h.mapped(id) {
		return nil, fmt.Errorf("%w: segment %d", ErrUnmapped, id)
	}
	return h.segs[id], nil
}
