package game

import (
	"github.com/Faultbox/coati/internal/engine/input"
	"github.com/Faultbox/coati/internal/engine/render"
)

// Scene is one screen of the demo.
type Scene interface {
	// Enter is called when the scene becomes current.
	Enter() error

	// Exit is called when the scene is replaced.
	Exit() error

	// Update is called every frame with the frame's input.
	Update(dt float64, in *input.State) error

	// Render draws the scene into the current target of ctx.
	Render(ctx *render.Context) error
}

// SceneManager switches between scenes at frame boundaries.
type SceneManager struct {
	current Scene
	next    Scene
}

// NewSceneManager creates an empty scene manager.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// Current returns the current scene.
func (m *SceneManager) Current() Scene {
	return m.current
}

// Change schedules a scene change for the next Update.
func (m *SceneManager) Change(next Scene) {
	m.next = next
}

// Update applies a pending change and updates the current scene.
func (m *SceneManager) Update(dt float64, in *input.State) error {
	if m.next != nil {
		if m.current != nil {
			if err := m.current.Exit(); err != nil {
				return err
			}
		}
		m.current = m.next
		m.next = nil
		if err := m.current.Enter(); err != nil {
			return err
		}
	}

	if m.current != nil {
		return m.current.Update(dt, in)
	}
	return nil
}

// Render renders the current scene.
func (m *SceneManager) Render(ctx *render.Context) error {
	if m.current != nil {
		return m.current.Render(ctx)
	}
	return nil
}

// Close exits the current scene.
func (m *SceneManager) Close() error {
	if m.current == nil {
		return nil
	}
	err := m.current.Exit()
	m.current = nil
	return err
}
