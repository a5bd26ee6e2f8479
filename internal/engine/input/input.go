// Package input tracks per-frame keyboard and mouse state from SDL2 events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// MaxTracked is the number of keys each set can hold. A full set is
// emptied before the next key is added.
const MaxTracked = 8

// Key is an SDL keycode, or a mouse button for values below
// sdl.K_BACKSPACE.
type Key uint32

// Mouse buttons share the key space.
const (
	NoKey           = Key(0)
	ButtonLeft      = Key(sdl.BUTTON_LEFT)
	ButtonMiddle    = Key(sdl.BUTTON_MIDDLE)
	ButtonRight     = Key(sdl.BUTTON_RIGHT)
	ButtonX1        = Key(sdl.BUTTON_X1)
	ButtonX2        = Key(sdl.BUTTON_X2)
	ButtonWheelUp   = Key(6)
	ButtonWheelDown = Key(7)
)

// Common keys.
const (
	KeyEscape = Key(sdl.K_ESCAPE)
	KeySpace  = Key(sdl.K_SPACE)
	KeyReturn = Key(sdl.K_RETURN)
	KeyLeft   = Key(sdl.K_LEFT)
	KeyRight  = Key(sdl.K_RIGHT)
	KeyUp     = Key(sdl.K_UP)
	KeyDown   = Key(sdl.K_DOWN)
	KeyF11    = Key(sdl.K_F11)
)

// keySet is a small bounded set of keys.
type keySet struct {
	keys [MaxTracked]Key
	n    int
}

func (s *keySet) has(k Key) bool {
	for _, key := range s.keys[:s.n] {
		if key == k {
			return true
		}
	}
	return false
}

func (s *keySet) add(k Key) {
	if k == NoKey || s.has(k) {
		return
	}
	if s.n == MaxTracked {
		s.n = 0
	}
	s.keys[s.n] = k
	s.n++
}

func (s *keySet) remove(k Key) {
	for i := 0; i < s.n; i++ {
		if s.keys[i] == k {
			s.n--
			s.keys[i] = s.keys[s.n]
			s.keys[s.n] = NoKey
			return
		}
	}
}

func (s *keySet) list() []Key {
	return append([]Key(nil), s.keys[:s.n]...)
}

// State is the input state of the current frame.
type State struct {
	pressed  keySet
	released keySet
	held     keySet

	mouseX, mouseY int
	resized        bool
	width, height  int
	quit           bool
}

// NewFrame moves last frame's presses into the held set and clears the
// per-frame sets. Keys released in the same frame they were pressed are not
// held. Call it once before feeding the frame's events.
func (s *State) NewFrame() {
	for _, k := range s.pressed.keys[:s.pressed.n] {
		if !transient(k) && !s.released.has(k) {
			s.held.add(k)
		}
	}
	s.pressed = keySet{}
	s.released = keySet{}
	s.resized = false
}

// transient keys are never held: the wheel has no release and SDL does not
// reliably report X1/X2 releases.
func transient(k Key) bool {
	switch k {
	case ButtonX1, ButtonX2, ButtonWheelUp, ButtonWheelDown:
		return true
	}
	return false
}

// KeyDown records a press. Keys already held are not pressed again. A key
// pressed again after a release in the same frame counts as still down.
func (s *State) KeyDown(k Key) {
	if !s.held.has(k) {
		s.pressed.add(k)
	}
	s.released.remove(k)
}

// KeyUp records a release.
func (s *State) KeyUp(k Key) {
	s.held.remove(k)
	s.released.add(k)
}

// MouseMove records the pointer position in window pixels.
func (s *State) MouseMove(x, y int) {
	s.mouseX, s.mouseY = x, y
}

// Resize records a window size change.
func (s *State) Resize(width, height int) {
	s.resized = true
	s.width, s.height = width, height
}

// Quit records a quit request.
func (s *State) Quit() { s.quit = true }

// Pressed reports whether k went down this frame.
func (s *State) Pressed(k Key) bool { return s.pressed.has(k) }

// Released reports whether k went up this frame.
func (s *State) Released(k Key) bool { return s.released.has(k) }

// Held reports whether k has been down since an earlier frame.
func (s *State) Held(k Key) bool { return s.held.has(k) }

// Down reports whether k was pressed this frame or is held.
func (s *State) Down(k Key) bool { return s.Pressed(k) || s.Held(k) }

// HeldKeys returns the held keys.
func (s *State) HeldKeys() []Key { return s.held.list() }

// Mouse returns the pointer position in window pixels.
func (s *State) Mouse() (x, y int) { return s.mouseX, s.mouseY }

// Resized returns the new window size if it changed this frame.
func (s *State) Resized() (width, height int, ok bool) {
	return s.width, s.height, s.resized
}

// Quitting reports whether a quit was requested.
func (s *State) Quitting() bool { return s.quit }

// Poll starts a new frame and drains the SDL event queue into s.
// Returns true if the application should quit.
func (s *State) Poll() bool {
	s.NewFrame()

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			s.Quit()

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				s.Resize(int(e.Data1), int(e.Data2))
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			if e.Type == sdl.KEYDOWN {
				s.KeyDown(Key(e.Keysym.Sym))
			} else if e.Type == sdl.KEYUP {
				s.KeyUp(Key(e.Keysym.Sym))
			}

		case *sdl.MouseMotionEvent:
			s.MouseMove(int(e.X), int(e.Y))

		case *sdl.MouseButtonEvent:
			if e.Type == sdl.MOUSEBUTTONDOWN {
				s.KeyDown(Key(e.Button))
			} else if e.Type == sdl.MOUSEBUTTONUP {
				s.KeyUp(Key(e.Button))
			}

		case *sdl.MouseWheelEvent:
			switch {
			case e.Y > 0:
				s.KeyDown(ButtonWheelUp)
			case e.Y < 0:
				s.KeyDown(ButtonWheelDown)
			}
		}
	}

	return s.quit
}
