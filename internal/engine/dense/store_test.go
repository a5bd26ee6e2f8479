package dense

import (
	"errors"
	"math/rand"
	"testing"
)

func chunkOf(size int, v float32) []float32 {
	c := make([]float32, size)
	for i := range c {
		c[i] = v + float32(i)
	}
	return c
}

func equalChunk(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkInvariants verifies that live handles map to distinct slots in
// [0, Len()) and that each slot's owner points back to it.
func checkInvariants(t *testing.T, s *Store) {
	t.Helper()
	seen := make(map[int]Handle)
	for _, h := range s.Handles() {
		slot, err := s.Slot(h)
		if err != nil {
			t.Fatalf("Slot(%d): %v", h, err)
		}
		if slot < 0 || slot >= s.Len() {
			t.Fatalf("handle %d at slot %d, outside [0, %d)", h, slot, s.Len())
		}
		if other, dup := seen[slot]; dup {
			t.Fatalf("handles %d and %d share slot %d", other, h, slot)
		}
		seen[slot] = h
	}
	if s.Len() > s.Capacity() {
		t.Fatalf("Len %d > Capacity %d", s.Len(), s.Capacity())
	}
}

func TestNewClampsArguments(t *testing.T) {
	s := New(0, 0)
	if s.ChunkSize() != 1 || s.Capacity() != 1 {
		t.Errorf("New(0, 0) = chunk %d cap %d, want 1 1", s.ChunkSize(), s.Capacity())
	}
}

func TestInsertAndChunk(t *testing.T) {
	s := New(4, 2)

	h, err := s.Insert(chunkOf(4, 10))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if h != 0 {
		t.Errorf("first handle = %d, want 0", h)
	}

	got, err := s.Chunk(h)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if !equalChunk(got, chunkOf(4, 10)) {
		t.Errorf("Chunk = %v, want %v", got, chunkOf(4, 10))
	}

	// Copy-out must not alias the store.
	got[0] = -1
	again, _ := s.Chunk(h)
	if again[0] != 10 {
		t.Error("Chunk returned an aliasing slice")
	}
}

func TestInsertChunkSizeMismatch(t *testing.T) {
	s := New(4, 2)
	if _, err := s.Insert([]float32{1, 2}); !errors.Is(err, ErrChunkSize) {
		t.Errorf("Insert short chunk: err = %v, want ErrChunkSize", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len after failed insert = %d, want 0", s.Len())
	}
}

func TestGrowthDoubles(t *testing.T) {
	s := New(2, 2)
	gen := s.Generation()

	for i := 0; i < 5; i++ {
		if _, err := s.Insert(chunkOf(2, float32(i))); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}

	if s.Capacity() != 8 {
		t.Errorf("Capacity = %d, want 8", s.Capacity())
	}
	if s.Generation() != gen+2 {
		t.Errorf("Generation = %d, want %d", s.Generation(), gen+2)
	}
	for i := 0; i < 5; i++ {
		got, _ := s.Chunk(Handle(i))
		if !equalChunk(got, chunkOf(2, float32(i))) {
			t.Errorf("chunk %d = %v after growth", i, got)
		}
	}
}

func TestEnsureCapacity(t *testing.T) {
	s := New(1, 3)
	if added := s.EnsureCapacity(2); added != 0 {
		t.Errorf("EnsureCapacity(2) added %d, want 0", added)
	}
	if added := s.EnsureCapacity(7); added != 9 {
		t.Errorf("EnsureCapacity(7) added %d, want 9", added)
	}
	if s.Capacity() != 12 {
		t.Errorf("Capacity = %d, want 12", s.Capacity())
	}
}

func TestRemoveSwapCompacts(t *testing.T) {
	s := New(1, 4)
	a, _ := s.Insert([]float32{1})
	b, _ := s.Insert([]float32{2})
	c, _ := s.Insert([]float32{3})

	if err := s.Remove(a); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	slot, _ := s.Slot(c)
	if slot != 0 {
		t.Errorf("last chunk moved to slot %d, want 0", slot)
	}
	if d := s.Data(); len(d) != 2 || d[0] != 3 || d[1] != 2 {
		t.Errorf("Data = %v, want [3 2]", d)
	}
	if got, _ := s.Chunk(b); got[0] != 2 {
		t.Errorf("Chunk(b) = %v, want [2]", got)
	}
	checkInvariants(t, s)
}

func TestRemoveLastSlot(t *testing.T) {
	s := New(1, 4)
	a, _ := s.Insert([]float32{1})
	b, _ := s.Insert([]float32{2})

	if err := s.Remove(b); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got, _ := s.Chunk(a); got[0] != 1 {
		t.Errorf("Chunk(a) = %v, want [1]", got)
	}
	checkInvariants(t, s)
}

// A middle removal followed by a head removal leaves the slot order
// different from the insertion order; the owner of the last slot must still
// be found correctly afterwards.
func TestRemoveAfterReorder(t *testing.T) {
	s := New(1, 4)
	a, _ := s.Insert([]float32{1})
	b, _ := s.Insert([]float32{2})
	c, _ := s.Insert([]float32{3})
	d, _ := s.Insert([]float32{4})

	for _, h := range []Handle{b, a, c} {
		if err := s.Remove(h); err != nil {
			t.Fatalf("Remove(%d): %v", h, err)
		}
		checkInvariants(t, s)
	}

	got, err := s.Chunk(d)
	if err != nil {
		t.Fatalf("Chunk(d): %v", err)
	}
	if got[0] != 4 {
		t.Errorf("Chunk(d) = %v, want [4]", got)
	}
}

func TestHandleReuseIsLIFO(t *testing.T) {
	s := New(1, 8)
	hs := make([]Handle, 5)
	for i := range hs {
		hs[i], _ = s.Insert([]float32{float32(i)})
	}

	_ = s.Remove(hs[1])
	_ = s.Remove(hs[3])

	h, _ := s.Insert([]float32{30})
	if h != hs[3] {
		t.Errorf("reused handle = %d, want %d (last freed)", h, hs[3])
	}
	h, _ = s.Insert([]float32{10})
	if h != hs[1] {
		t.Errorf("reused handle = %d, want %d", h, hs[1])
	}
	h, _ = s.Insert([]float32{50})
	if h != 5 {
		t.Errorf("fresh handle = %d, want 5", h)
	}
	checkInvariants(t, s)
}

func TestInvalidHandles(t *testing.T) {
	s := New(2, 2)
	h, _ := s.Insert([]float32{1, 2})
	_ = s.Remove(h)

	tests := []struct {
		name string
		h    Handle
	}{
		{"removed", h},
		{"never issued", 1},
		{"out of range", 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Remove(tt.h); !errors.Is(err, ErrInvalidHandle) {
				t.Errorf("Remove: err = %v, want ErrInvalidHandle", err)
			}
			if err := s.Update(tt.h, []float32{0, 0}); !errors.Is(err, ErrInvalidHandle) {
				t.Errorf("Update: err = %v, want ErrInvalidHandle", err)
			}
			if _, err := s.Chunk(tt.h); !errors.Is(err, ErrInvalidHandle) {
				t.Errorf("Chunk: err = %v, want ErrInvalidHandle", err)
			}
			called := false
			if err := s.Borrow(tt.h, func([]float32) { called = true }); !errors.Is(err, ErrInvalidHandle) {
				t.Errorf("Borrow: err = %v, want ErrInvalidHandle", err)
			}
			if called {
				t.Error("Borrow called fn for an invalid handle")
			}
			if s.Contains(tt.h) {
				t.Error("Contains reported an invalid handle as live")
			}
		})
	}

	if s.Len() != 0 {
		t.Errorf("Len = %d after invalid operations, want 0", s.Len())
	}
}

func TestUpdateAndBorrow(t *testing.T) {
	s := New(3, 2)
	h, _ := s.Insert([]float32{1, 2, 3})

	if err := s.Update(h, []float32{4, 5, 6}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.Update(h, []float32{1}); !errors.Is(err, ErrChunkSize) {
		t.Errorf("Update short chunk: err = %v, want ErrChunkSize", err)
	}

	err := s.Borrow(h, func(c []float32) {
		c[2] = 60
		if cap(c) != 3 {
			t.Errorf("borrowed view cap = %d, want 3", cap(c))
		}
	})
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}

	got, _ := s.Chunk(h)
	if !equalChunk(got, []float32{4, 5, 60}) {
		t.Errorf("Chunk = %v, want [4 5 60]", got)
	}
}

// Random insert/remove/update sequences are checked against a map model.
func TestRandomOperationsMatchModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := New(2, 1)
	model := make(map[Handle][]float32)
	var freed []Handle

	for step := 0; step < 2000; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(model) == 0:
			c := []float32{float32(step), float32(-step)}
			h, err := s.Insert(c)
			if err != nil {
				t.Fatalf("step %d Insert: %v", step, err)
			}
			if _, live := model[h]; live {
				t.Fatalf("step %d: Insert returned live handle %d", step, h)
			}
			if n := len(freed); n > 0 {
				if h != freed[n-1] {
					t.Fatalf("step %d: Insert = %d, want reused %d", step, h, freed[n-1])
				}
				freed = freed[:n-1]
			}
			model[h] = c
		case op == 1:
			h := pick(rng, model)
			if err := s.Remove(h); err != nil {
				t.Fatalf("step %d Remove(%d): %v", step, h, err)
			}
			delete(model, h)
			freed = append(freed, h)
		default:
			h := pick(rng, model)
			c := []float32{float32(step) * 2, 1}
			if err := s.Update(h, c); err != nil {
				t.Fatalf("step %d Update(%d): %v", step, h, err)
			}
			model[h] = c
		}

		if s.Len() != len(model) {
			t.Fatalf("step %d: Len = %d, model has %d", step, s.Len(), len(model))
		}
		for h, want := range model {
			got, err := s.Chunk(h)
			if err != nil {
				t.Fatalf("step %d Chunk(%d): %v", step, h, err)
			}
			if !equalChunk(got, want) {
				t.Fatalf("step %d Chunk(%d) = %v, want %v", step, h, got, want)
			}
		}
		checkInvariants(t, s)
	}
}

func pick(rng *rand.Rand, m map[Handle][]float32) Handle {
	n := rng.Intn(len(m))
	for h := range m {
		if n == 0 {
			return h
		}
		n--
	}
	panic("unreachable")
}
