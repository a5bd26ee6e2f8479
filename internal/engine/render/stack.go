package render

// DefaultMaxDepth is the number of entries each state stack holds above its
// base entry.
const DefaultMaxDepth = 32

// Stack names one of the Context's state stacks.
type Stack int

const (
	StackTransform Stack = iota
	StackColour
	StackBlend
	StackShader
	StackTarget
)

func (s Stack) String() string {
	switch s {
	case StackTransform:
		return "transform"
	case StackColour:
		return "colour"
	case StackBlend:
		return "blend"
	case StackShader:
		return "shader"
	case StackTarget:
		return "target"
	default:
		return "unknown"
	}
}

// stack is a bounded LIFO sitting on a base entry that is never popped.
type stack[T any] struct {
	base  T
	items []T
}

func newStack[T any](base T, maxDepth int) stack[T] {
	return stack[T]{base: base, items: make([]T, 0, maxDepth)}
}

func (s *stack[T]) top() T {
	if n := len(s.items); n > 0 {
		return s.items[n-1]
	}
	return s.base
}

// setTop replaces the top pushed entry. It is a no-op on an empty stack.
func (s *stack[T]) setTop(v T) {
	if n := len(s.items); n > 0 {
		s.items[n-1] = v
	}
}

func (s *stack[T]) depth() int { return len(s.items) }

// push appends v. When the stack is already at maxDepth it is first reset
// to its base entry and push reports the overflow.
func (s *stack[T]) push(v T, maxDepth int) (overflowed bool) {
	if len(s.items) >= maxDepth {
		clear(s.items)
		s.items = s.items[:0]
		overflowed = true
	}
	s.items = append(s.items, v)
	return overflowed
}

// pop removes and returns the top entry. Popping the base entry is an
// underflow; the stack is left unchanged.
func (s *stack[T]) pop() (v T, underflowed bool) {
	n := len(s.items)
	if n == 0 {
		return v, true
	}
	v = s.items[n-1]
	var zero T
	s.items[n-1] = zero
	s.items = s.items[:n-1]
	return v, false
}

func (s *stack[T]) reset() {
	clear(s.items)
	s.items = s.items[:0]
}
