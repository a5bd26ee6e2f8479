package game

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/Faultbox/coati/internal/engine/batch"
	"github.com/Faultbox/coati/internal/engine/camera"
	"github.com/Faultbox/coati/internal/engine/gpu"
	"github.com/Faultbox/coati/internal/engine/input"
	"github.com/Faultbox/coati/internal/engine/quad"
	"github.com/Faultbox/coati/internal/engine/render"
	"github.com/Faultbox/coati/internal/engine/texture"
	"github.com/Faultbox/coati/internal/logger"
	"github.com/Faultbox/coati/pkg/math"
)

const (
	// SpawnCount is how many sprites one key press adds or removes.
	SpawnCount = 8

	// AtlasCells is the number of cells per atlas row and column.
	AtlasCells = 2

	minSize  = 0.03
	maxSize  = 0.08
	maxSpeed = 0.4
	maxSpin  = 3

	viewResetSeconds = 0.4
)

// Keys used by the bounce scene.
const (
	KeySpawn   = input.KeySpace
	KeyDespawn = input.KeyReturn
	KeyBlend   = input.Key('b')

	KeyRotateLeft  = input.Key('q')
	KeyRotateRight = input.Key('e')
	KeyResetView   = input.Key('r')
)

// bouncer is one sprite moving inside the unit square.
type bouncer struct {
	handle batch.Handle
	pos    math.Vec2
	vel    math.Vec2
	size   float32
	rot    float32
	spin   float32
	cell   int
}

func (b *bouncer) transform() quad.Transform {
	return quad.Transform{
		Src: cellRect(b.cell),
		Dst: quad.Rect{
			Left:   b.pos.X,
			Right:  b.pos.X + b.size,
			Top:    b.pos.Y,
			Bottom: b.pos.Y + b.size,
		},
		Origin:   math.Vec2{X: b.pos.X + b.size/2, Y: b.pos.Y + b.size/2},
		Rotation: b.rot,
	}
}

// step advances b by dt and reflects it off the unit square's edges.
// It reports whether b bounced.
func (b *bouncer) step(dt float32) bool {
	b.pos = b.pos.Add(b.vel.Scale(dt))
	b.rot += b.spin * dt

	bounced := false
	if b.pos.X < 0 {
		b.pos.X, b.vel.X, bounced = 0, -b.vel.X, true
	} else if limit := 1 - b.size; b.pos.X > limit {
		b.pos.X, b.vel.X, bounced = limit, -b.vel.X, true
	}
	if b.pos.Y < 0 {
		b.pos.Y, b.vel.Y, bounced = 0, -b.vel.Y, true
	} else if limit := 1 - b.size; b.pos.Y > limit {
		b.pos.Y, b.vel.Y, bounced = limit, -b.vel.Y, true
	}
	return bounced
}

// cellRect returns the texture-space rectangle of atlas cell i.
func cellRect(i int) quad.Rect {
	const step = 1.0 / AtlasCells
	col := float32(i%AtlasCells) * step
	row := float32((i/AtlasCells)%AtlasCells) * step
	return quad.Rect{Left: col, Right: col + step, Top: row, Bottom: row + step}
}

// BounceScene draws a batch of sprites bouncing around the unit square.
type BounceScene struct {
	atlas   *texture.Texture
	batch   *batch.Batch
	sprites []bouncer
	initial int
	rng     *rand.Rand
	blend   render.BlendMode
	tint    gpu.Colour
	camera  *camera.Camera
	log     *zap.Logger

	// OnBounce, when set, is called with the centre of a sprite that hit
	// an edge.
	OnBounce func(pos math.Vec2)
}

// NewBounceScene creates a scene drawing from atlas. capacity sizes the
// batch, initial is the number of sprites spawned on Enter.
func NewBounceScene(atlas *texture.Texture, capacity, initial int, seed int64) *BounceScene {
	return &BounceScene{
		atlas:   atlas,
		batch:   batch.New(capacity),
		initial: initial,
		rng:     rand.New(rand.NewSource(seed)),
		blend:   render.BlendTrans,
		tint:    gpu.White,
		camera:  camera.New(),
		log:     logger.Named("bounce"),
	}
}

// Len returns the number of live sprites.
func (s *BounceScene) Len() int { return len(s.sprites) }

// Batch returns the scene's sprite batch.
func (s *BounceScene) Batch() *batch.Batch { return s.batch }

// BlendMode returns the blend mode sprites are drawn with.
func (s *BounceScene) BlendMode() render.BlendMode { return s.blend }

// SetAtlas replaces the texture sprites are drawn from.
func (s *BounceScene) SetAtlas(atlas *texture.Texture) { s.atlas = atlas }

// Camera returns the scene's view.
func (s *BounceScene) Camera() *camera.Camera { return s.camera }

// SetTint sets the colour sprites are modulated with.
func (s *BounceScene) SetTint(c gpu.Colour) { s.tint = c }

func (s *BounceScene) Enter() error {
	return s.Spawn(s.initial)
}

func (s *BounceScene) Exit() error {
	return s.Despawn(len(s.sprites))
}

// Spawn adds n sprites at random positions.
func (s *BounceScene) Spawn(n int) error {
	for i := 0; i < n; i++ {
		b := bouncer{
			size: minSize + s.rng.Float32()*(maxSize-minSize),
			vel: math.Vec2{
				X: (s.rng.Float32()*2 - 1) * maxSpeed,
				Y: (s.rng.Float32()*2 - 1) * maxSpeed,
			},
			spin: (s.rng.Float32()*2 - 1) * maxSpin,
			cell: s.rng.Intn(AtlasCells * AtlasCells),
		}
		b.pos = math.Vec2{X: s.rng.Float32() * (1 - b.size), Y: s.rng.Float32() * (1 - b.size)}

		h, err := s.batch.Push(b.transform())
		if err != nil {
			return fmt.Errorf("spawn sprite: %w", err)
		}
		b.handle = h
		s.sprites = append(s.sprites, b)
	}
	if n > 0 {
		s.log.Debug("spawned sprites", zap.Int("count", n), zap.Int("live", len(s.sprites)))
	}
	return nil
}

// Despawn removes up to n sprites, oldest first. On a failed removal the
// sprites handled so far, the failing one included, are dropped before the
// error is returned.
func (s *BounceScene) Despawn(n int) error {
	if n > len(s.sprites) {
		n = len(s.sprites)
	}
	for i, b := range s.sprites[:n] {
		if err := s.batch.Remove(b.handle); err != nil {
			s.sprites = append(s.sprites[:0], s.sprites[i+1:]...)
			return fmt.Errorf("despawn sprite: %w", err)
		}
	}
	s.sprites = append(s.sprites[:0], s.sprites[n:]...)
	return nil
}

func (s *BounceScene) Update(dt float64, in *input.State) error {
	if in != nil {
		if in.Pressed(KeySpawn) {
			if err := s.Spawn(SpawnCount); err != nil {
				return err
			}
		}
		if in.Pressed(KeyDespawn) {
			if err := s.Despawn(SpawnCount); err != nil {
				return err
			}
		}
		if in.Pressed(KeyBlend) {
			s.blend = (s.blend + 1) % (render.BlendOneOne + 1)
			s.log.Info("blend mode", zap.Stringer("mode", s.blend))
		}
		s.steerCamera(float32(dt), in)
	}
	s.camera.Update(float32(dt))

	for i := range s.sprites {
		b := &s.sprites[i]
		if b.step(float32(dt)) && s.OnBounce != nil {
			s.OnBounce(math.Vec2{X: b.pos.X + b.size/2, Y: b.pos.Y + b.size/2})
		}
		if err := s.batch.Update(b.handle, b.transform()); err != nil {
			return fmt.Errorf("update sprite: %w", err)
		}
	}
	return nil
}

func (s *BounceScene) steerCamera(dt float32, in *input.State) {
	var right, down, turn float32
	if in.Down(input.KeyRight) {
		right++
	}
	if in.Down(input.KeyLeft) {
		right--
	}
	if in.Down(input.KeyDown) {
		down++
	}
	if in.Down(input.KeyUp) {
		down--
	}
	if in.Down(KeyRotateRight) {
		turn++
	}
	if in.Down(KeyRotateLeft) {
		turn--
	}
	s.camera.HandleMovement(right, down, dt)
	s.camera.HandleRotate(turn, dt)

	if in.Pressed(input.ButtonWheelUp) {
		s.camera.HandleZoom(1)
	}
	if in.Pressed(input.ButtonWheelDown) {
		s.camera.HandleZoom(-1)
	}
	if in.Pressed(KeyResetView) {
		s.camera.ScrollHome(viewResetSeconds)
	}
}

func (s *BounceScene) Render(ctx *render.Context) error {
	defer s.camera.Apply(ctx)()
	defer ctx.PushBlend(s.blend)()
	defer ctx.PushColour(s.tint)()
	s.batch.Render(ctx, s.atlas)
	return nil
}
