// Package game implements the demo loop: a scene of bouncing sprites drawn
// through an offscreen target.
package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/coati/internal/assets"
	"github.com/Faultbox/coati/internal/config"
	"github.com/Faultbox/coati/internal/engine/audio"
	"github.com/Faultbox/coati/internal/engine/debug"
	"github.com/Faultbox/coati/internal/engine/gpu"
	"github.com/Faultbox/coati/internal/engine/input"
	"github.com/Faultbox/coati/internal/engine/quad"
	"github.com/Faultbox/coati/internal/engine/render"
	"github.com/Faultbox/coati/internal/engine/renderer"
	"github.com/Faultbox/coati/internal/engine/texture"
	"github.com/Faultbox/coati/internal/engine/window"
	"github.com/Faultbox/coati/internal/logger"
	"github.com/Faultbox/coati/pkg/math"
)

// bounceSoundInterval limits how often the bounce sample is retriggered.
const bounceSoundInterval = 100 * time.Millisecond

// Game is the demo instance.
type Game struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	ctx      *render.Context
	input    input.State
	scenes   *SceneManager
	canvas   *texture.Texture
	atlas    *texture.Texture
	assets   *assets.Manager
	watcher  *assets.Watcher
	scene    *BounceScene

	audio     *audio.Manager
	bounceSfx *audio.Sample
	lastSfx   time.Time
}

// New creates the window, GL device and render context, and schedules the
// bounce scene.
func New(cfg *config.Config) (*Game, error) {
	logger.Info("initializing demo",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	g := &Game{config: cfg, scenes: NewSceneManager(), assets: assets.NewManager()}
	for _, dir := range cfg.Demo.AssetDirs {
		if err := g.assets.AddDir(dir); err != nil {
			logger.Warn("skipping asset dir", zap.String("dir", dir), zap.Error(err))
		}
	}

	// Create window (this also creates OpenGL context)
	var err error
	g.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	g.renderer, err = renderer.New()
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	width, height := g.window.Resolution()
	g.ctx = render.NewContext(g.renderer, texture.Screen(width, height), g.renderer.DefaultProgram(),
		render.WithMaxDepth(cfg.Render.StackDepth),
		render.WithStrict(cfg.Render.StrictStacks),
	)

	g.canvas, err = texture.Create(g.renderer, width, height)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create canvas: %w", err)
	}

	g.atlas, err = loadAtlas(g.renderer, g.assets, cfg.Demo.Atlas)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to load atlas: %w", err)
	}

	g.scene = NewBounceScene(g.atlas, cfg.Render.BatchCapacity, cfg.Demo.Sprites, time.Now().UnixNano())
	if cfg.Audio.Enabled {
		g.initAudio()
		if g.bounceSfx != nil {
			g.scene.OnBounce = g.playBounce
		}
	}
	g.scenes.Change(g.scene)

	if cfg.Demo.WatchAssets && len(cfg.Demo.AssetDirs) > 0 {
		g.watcher, err = assets.NewWatcher(cfg.Demo.AssetDirs...)
		if err != nil {
			logger.Warn("asset watching disabled", zap.Error(err))
		}
	}

	logger.Info("demo initialized successfully")
	return g, nil
}

// initAudio opens the audio device and starts the configured track.
// Audio failures are logged and leave the demo silent.
func (g *Game) initAudio() {
	cfg := g.config.Audio
	m := audio.New()
	if err := m.Init(); err != nil {
		logger.Warn("audio disabled", zap.Error(err))
		return
	}
	m.SetMasterVolume(cfg.MasterVolume)
	m.SetTrackVolume(cfg.TrackVolume)
	m.SetSampleVolume(cfg.SampleVolume)
	m.SetSampleRadius(cfg.SampleRadius)
	g.audio = m

	if cfg.Track != "" {
		data, err := g.assets.Load(cfg.Track)
		if err == nil {
			err = m.PlayTrack(audio.NewTrack(cfg.Track, data), true)
		}
		if err != nil {
			logger.Warn("failed to start track", zap.String("path", cfg.Track), zap.Error(err))
		}
	}

	if cfg.Sample != "" {
		data, err := g.assets.Load(cfg.Sample)
		var sfx *audio.Sample
		if err == nil {
			sfx, err = audio.DecodeSample(data)
		}
		if err != nil {
			logger.Warn("failed to load sample", zap.String("path", cfg.Sample), zap.Error(err))
			return
		}
		g.bounceSfx = sfx
	}
}

func (g *Game) playBounce(pos math.Vec2) {
	now := time.Now()
	if now.Sub(g.lastSfx) < bounceSoundInterval {
		return
	}
	g.lastSfx = now
	if _, err := g.audio.PlaySample(g.bounceSfx, pos, false); err != nil {
		logger.Debug("bounce sample not played", zap.Error(err))
	}
}

// Run starts the main loop. It returns when the window closes, Escape is
// pressed or the configured frame count is reached.
func (g *Game) Run() error {
	g.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()
	frames := 0

	logger.Info("starting demo loop", zap.Int("frame_limit", g.config.Demo.Frames))

	for g.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		// 1. Process input
		if g.input.Poll() {
			g.running = false
			break
		}
		if err := g.handleInput(); err != nil {
			return err
		}
		g.reloadAssets()

		// 2. Update scene
		if err := g.scenes.Update(dt, &g.input); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		// 3. Render
		if err := g.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		// 4. Present (swap buffers)
		g.window.SwapBuffers()

		frames++
		if limit := g.config.Demo.Frames; limit > 0 && frames >= limit {
			g.running = false
		}

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.Float64("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	if path := g.config.Demo.Screenshot; path != "" {
		if err := g.Screenshot(path); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
		logger.Info("screenshot saved", zap.String("path", path))
	}
	return nil
}

func (g *Game) handleInput() error {
	if g.input.Pressed(input.KeyEscape) {
		g.running = false
	}
	if g.input.Pressed(input.KeyF11) {
		if err := g.window.SetFullscreen(!g.window.Fullscreen()); err != nil {
			logger.Warn("fullscreen toggle failed", zap.Error(err))
		}
	}
	if _, _, ok := g.input.Resized(); ok {
		width, height := g.window.Resolution()
		canvas, err := resizeCanvas(g.ctx, g.canvas, width, height)
		if err != nil {
			logger.Warn("canvas resize failed", zap.Int("width", width), zap.Int("height", height), zap.Error(err))
		}
		g.canvas = canvas
	}
	return nil
}

// resizeCanvas resizes the screen and replaces canvas with one matching the
// new size. On failure the old canvas is returned and stays in use.
func resizeCanvas(ctx *render.Context, canvas *texture.Texture, width, height int) (*texture.Texture, error) {
	ctx.ResizeScreen(width, height)
	if w, h := canvas.Size(); w == width && h == height {
		return canvas, nil
	}

	next, err := texture.Create(ctx.Device(), width, height)
	if err != nil {
		return canvas, fmt.Errorf("create canvas: %w", err)
	}
	canvas.Free(ctx.Device())
	return next, nil
}

// reloadAssets drops changed files from the asset cache and re-uploads the
// atlas when it changed.
func (g *Game) reloadAssets() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.assets.Invalidate(name)
			logger.Debug("asset changed", zap.String("name", name))
			if name == g.config.Demo.Atlas {
				g.reloadAtlas()
			}
		case err := <-g.watcher.Errors:
			if err != nil {
				logger.Warn("asset watch error", zap.Error(err))
			}
		default:
			return
		}
	}
}

func (g *Game) reloadAtlas() {
	atlas, err := loadAtlas(g.renderer, g.assets, g.config.Demo.Atlas)
	if err != nil {
		logger.Warn("atlas reload failed", zap.Error(err))
		return
	}
	g.atlas.Free(g.renderer)
	g.atlas = atlas
	g.scene.SetAtlas(atlas)
	logger.Info("atlas reloaded", zap.String("name", g.config.Demo.Atlas))
}

func (g *Game) render() error {
	if err := drawFrame(g.ctx, g.canvas, g.scenes, g.config.Render.Clear()); err != nil {
		return err
	}
	if err := g.ctx.LastError(); err != nil {
		logger.Warn("render stacks recovered", zap.Error(err))
		g.ctx.ClearError()
	}
	return nil
}

// drawFrame renders the scenes into canvas and copies canvas onto the screen.
func drawFrame(ctx *render.Context, canvas *texture.Texture, scenes *SceneManager, clear gpu.Colour) error {
	ctx.ClearTexture(ctx.Screen(), gpu.Black)
	ctx.ClearTexture(canvas, clear)

	popTarget := ctx.PushTarget(canvas)
	err := scenes.Render(ctx)
	popTarget()
	if err != nil {
		return err
	}

	defer ctx.PushBlend(render.BlendNormal)()
	ctx.DrawTexture(canvas, quad.Unit())
	return nil
}

// Screenshot saves a copy of the last rendered canvas as PNG.
func (g *Game) Screenshot(path string) error {
	snap, err := g.ctx.CopyTexture(g.canvas)
	if err != nil {
		return err
	}
	defer snap.Free(g.renderer)

	width, height := snap.Size()
	pixels := g.renderer.ReadPixels(snap.FB, width, height)
	return debug.SavePixels(path, pixels, width, height, false)
}

// Close cleans up demo resources.
func (g *Game) Close() {
	logger.Info("closing demo")

	if err := g.scenes.Close(); err != nil {
		logger.Warn("scene exit failed", zap.Error(err))
	}
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			logger.Warn("closing asset watcher", zap.Error(err))
		}
	}
	if g.audio != nil {
		g.audio.Close()
	}
	if g.renderer != nil {
		if g.atlas != nil {
			g.atlas.Free(g.renderer)
		}
		if g.canvas != nil {
			g.canvas.Free(g.renderer)
		}
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
	g.assets.Close()
}
