// Package dense provides a packed float32 array addressed by stable handles.
//
// Chunks live contiguously in [0, Len()) so the backing slice can be handed
// to the GPU in one upload. Removal moves the last live chunk into the freed
// slot; handles stay valid across inserts and removals of other handles.
package dense

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle is returned for handles that were never issued or
	// have already been removed.
	ErrInvalidHandle = errors.New("dense: invalid handle")

	// ErrChunkSize is returned when a chunk does not match the store's chunk size.
	ErrChunkSize = errors.New("dense: chunk size mismatch")
)

// Handle is a stable identifier for a chunk.
type Handle uint32

// freeSlot marks indirection entries of handles that are not live.
const freeSlot = -1

// Store is a growable packed array of fixed-size float32 chunks.
// It is not safe for concurrent use.
type Store struct {
	chunkSize int
	capacity  int

	data        []float32 // capacity*chunkSize floats
	indirection []int     // handle -> slot, freeSlot when not live
	owners      []Handle  // slot -> handle, one entry per live slot
	free        []Handle  // released handles, reused last-in first-out

	generation uint64
}

// New creates a store of chunkSize floats per chunk with room for
// capacityHint chunks. Both values are clamped to at least 1.
func New(chunkSize, capacityHint int) *Store {
	if chunkSize < 1 {
		chunkSize = 1
	}
	if capacityHint < 1 {
		capacityHint = 1
	}

	s := &Store{
		chunkSize:   chunkSize,
		capacity:    capacityHint,
		data:        make([]float32, chunkSize*capacityHint),
		indirection: make([]int, capacityHint),
		owners:      make([]Handle, 0, capacityHint),
		free:        make([]Handle, 0, capacityHint),
	}
	for i := range s.indirection {
		s.indirection[i] = freeSlot
	}
	return s
}

// ChunkSize returns the number of floats per chunk.
func (s *Store) ChunkSize() int { return s.chunkSize }

// Len returns the number of live chunks.
func (s *Store) Len() int { return len(s.owners) }

// Capacity returns the number of allocated slots.
func (s *Store) Capacity() int { return s.capacity }

// Generation is incremented every time the backing storage is reallocated.
func (s *Store) Generation() uint64 { return s.generation }

// EnsureCapacity doubles the capacity until at least n slots exist and
// returns how many slots were added. It is a no-op when n <= Capacity().
func (s *Store) EnsureCapacity(n int) int {
	if n <= s.capacity {
		return 0
	}
	old := s.capacity
	newCap := old
	for newCap < n {
		newCap *= 2
	}

	data := make([]float32, newCap*s.chunkSize)
	copy(data, s.data)
	s.data = data

	s.indirection = append(s.indirection, make([]int, newCap-old)...)
	for i := old; i < newCap; i++ {
		s.indirection[i] = freeSlot
	}

	s.capacity = newCap
	s.generation++
	return newCap - old
}

// Insert copies chunk into the next live slot and returns its handle.
// The most recently removed handle is reused first.
func (s *Store) Insert(chunk []float32) (Handle, error) {
	if len(chunk) != s.chunkSize {
		return 0, fmt.Errorf("%w: got %d floats, want %d", ErrChunkSize, len(chunk), s.chunkSize)
	}

	live := len(s.owners)
	s.EnsureCapacity(live + 1)

	// With no released handles every issued handle is live, so the next
	// fresh handle equals the live count.
	h := Handle(live)
	if n := len(s.free); n > 0 {
		h = s.free[n-1]
		s.free = s.free[:n-1]
	}

	copy(s.slot(live), chunk)
	s.indirection[h] = live
	s.owners = append(s.owners, h)
	return h, nil
}

// Remove releases h. The last live chunk is moved into h's slot so live
// data stays contiguous.
func (s *Store) Remove(h Handle) error {
	slot, err := s.lookup(h)
	if err != nil {
		return err
	}

	last := len(s.owners) - 1
	if slot != last {
		copy(s.slot(slot), s.slot(last))
		moved := s.owners[last]
		s.owners[slot] = moved
		s.indirection[moved] = slot
	}
	s.owners = s.owners[:last]
	s.indirection[h] = freeSlot
	s.free = append(s.free, h)
	return nil
}

// Update overwrites the chunk for h in place.
func (s *Store) Update(h Handle, chunk []float32) error {
	if len(chunk) != s.chunkSize {
		return fmt.Errorf("%w: got %d floats, want %d", ErrChunkSize, len(chunk), s.chunkSize)
	}
	slot, err := s.lookup(h)
	if err != nil {
		return err
	}
	copy(s.slot(slot), chunk)
	return nil
}

// Chunk returns a copy of the chunk for h.
func (s *Store) Chunk(h Handle) ([]float32, error) {
	slot, err := s.lookup(h)
	if err != nil {
		return nil, err
	}
	return append([]float32(nil), s.slot(slot)...), nil
}

// Borrow calls fn with a mutable view of h's chunk. The view is only valid
// for the duration of fn and must not be retained.
func (s *Store) Borrow(h Handle, fn func(chunk []float32)) error {
	slot, err := s.lookup(h)
	if err != nil {
		return err
	}
	fn(s.slot(slot))
	return nil
}

// Slot returns the slot index currently holding h.
func (s *Store) Slot(h Handle) (int, error) {
	return s.lookup(h)
}

// Contains reports whether h is live.
func (s *Store) Contains(h Handle) bool {
	_, err := s.lookup(h)
	return err == nil
}

// Handles returns the live handles in slot order.
func (s *Store) Handles() []Handle {
	return append([]Handle(nil), s.owners...)
}

// Data returns the packed live chunks. The slice aliases the store and is
// invalidated by the next Insert, Remove or EnsureCapacity.
func (s *Store) Data() []float32 {
	return s.data[:len(s.owners)*s.chunkSize]
}

func (s *Store) lookup(h Handle) (int, error) {
	if int(h) >= len(s.indirection) {
		return 0, fmt.Errorf("%w: %d out of range", ErrInvalidHandle, h)
	}
	slot := s.indirection[h]
	if slot == freeSlot {
		return 0, fmt.Errorf("%w: %d is not live", ErrInvalidHandle, h)
	}
	return slot, nil
}

func (s *Store) slot(i int) []float32 {
	start := i * s.chunkSize
	return s.data[start : start+s.chunkSize : start+s.chunkSize]
}
