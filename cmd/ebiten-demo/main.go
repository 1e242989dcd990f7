// FILE: cmd/ebiten-demo/main.go
// Second host adapter: proves the scheduler is display-agnostic by driving
// the same loop core from ebiten's Update cycle instead of a terminal ticker.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/lixenwraith/frameloop/config"
	"github.com/lixenwraith/frameloop/engine"
	"github.com/lixenwraith/frameloop/events"
	"github.com/lixenwraith/frameloop/render"
	"github.com/lixenwraith/frameloop/status"
	"github.com/lixenwraith/frameloop/terminal"
)

const (
	screenWidth  = 640
	screenHeight = 480

	fullOrbBudget    = 60
	reducedOrbBudget = 30
)

var (
	configFlag = flag.String("config", "", "Path to YAML tuning overrides")
	debugFlag  = flag.Bool("debug", false, "Write diagnostics to logs/ebiten-demo.log")
)

// ebitenHost adapts ebiten's run loop to the scheduler's host contracts
// Frame callbacks fire inside game Update, so all loop work happens on
// ebiten's single update goroutine
type ebitenHost struct {
	start time.Time

	mu       sync.Mutex
	nextReq  engine.FrameRequest
	pending  map[engine.FrameRequest]func(ts time.Duration)
	nextSub  engine.SignalSubscription
	subs     map[engine.SignalSubscription]func(events.Signal)
	subOrder []engine.SignalSubscription

	focused       bool
	width, height int
}

func newEbitenHost() *ebitenHost {
	return &ebitenHost{
		start:   time.Now(),
		pending: make(map[engine.FrameRequest]func(ts time.Duration)),
		subs:    make(map[engine.SignalSubscription]func(events.Signal)),
		focused: true,
	}
}

func (h *ebitenHost) RequestFrame(fn func(ts time.Duration)) engine.FrameRequest {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextReq++
	req := h.nextReq
	h.pending[req] = fn
	return req
}

func (h *ebitenHost) CancelFrame(req engine.FrameRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pending, req)
}

func (h *ebitenHost) Now() time.Duration {
	return time.Since(h.start)
}

func (h *ebitenHost) Subscribe(fn func(events.Signal)) engine.SignalSubscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextSub++
	sub := h.nextSub
	h.subs[sub] = fn
	h.subOrder = append(h.subOrder, sub)
	return sub
}

func (h *ebitenHost) Unsubscribe(sub engine.SignalSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub)
}

// step runs once per ebiten update: focus edge detection, then frame dispatch
func (h *ebitenHost) step() {
	if focused := ebiten.IsFocused(); focused != h.focused {
		h.focused = focused
		if focused {
			h.emit(events.Signal{Kind: events.SignalFocusGained})
		} else {
			h.emit(events.Signal{Kind: events.SignalFocusLost})
		}
	}

	ts := h.Now()
	h.mu.Lock()
	batch := make([]func(ts time.Duration), 0, len(h.pending))
	for req, fn := range h.pending {
		batch = append(batch, fn)
		delete(h.pending, req)
	}
	h.mu.Unlock()

	for _, fn := range batch {
		fn(ts)
	}
}

// surfaceChanged emits the invalidation signal when the layout changes
func (h *ebitenHost) surfaceChanged(w, height int) {
	if w == h.width && height == h.height {
		return
	}
	h.width, h.height = w, height
	h.emit(events.Signal{Kind: events.SignalSurfaceChanged, Width: w, Height: height})
}

func (h *ebitenHost) emit(sig events.Signal) {
	h.mu.Lock()
	batch := make([]func(events.Signal), 0, len(h.subs))
	for _, sub := range h.subOrder {
		if fn, ok := h.subs[sub]; ok {
			batch = append(batch, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range batch {
		fn(sig)
	}
}

type orb struct {
	x, y   float64
	vx, vy float64
	radius float64
	inner  terminal.RGB
	outer  terminal.RGB
}

// glowSprite is one prepared draw command, built by the render callback and
// painted by ebiten's Draw
type glowSprite struct {
	x, y   float32
	radius float32
	ramp   []terminal.RGB
}

type game struct {
	host      *ebitenHost
	scheduler *engine.LoopScheduler
	gradients *render.GradientCache

	orbs   []orb
	budget int
	rng    *rand.Rand

	scene []glowSprite
	snap  engine.Snapshot
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.scheduler.State() == engine.StatePaused {
			g.scheduler.Resume()
		} else {
			g.scheduler.Pause()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.scheduler.SetAutoPerformanceModeEnabled(!g.scheduler.Monitor().AutoModeEnabled())
	}

	g.host.step()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	for _, sprite := range g.scene {
		// Paint the ramp outside-in as concentric filled circles
		for i := len(sprite.ramp) - 1; i >= 0; i-- {
			c := sprite.ramp[i]
			r := sprite.radius * float32(i+1) / float32(len(sprite.ramp))
			vector.DrawFilledCircle(screen, sprite.x, sprite.y, r,
				color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}, true)
		}
	}

	mode := "off"
	if g.snap.PerfModeActive {
		mode = "ON"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"state:%v fps:%d avg:%.1fms perf:%s orbs:%d grace:%v\n[space]pause [a]auto [q]quit",
		g.snap.State, g.snap.FPS, float64(g.snap.AvgFrameTime)/float64(time.Millisecond),
		mode, len(g.orbs), g.snap.GraceActive))
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.host.surfaceChanged(screenWidth, screenHeight)
	return screenWidth, screenHeight
}

// update is the scheduler's simulation callback
func (g *game) update(delta time.Duration) {
	dt := delta.Seconds()
	for i := range g.orbs {
		o := &g.orbs[i]
		o.x += o.vx * dt
		o.y += o.vy * dt
		if o.x < o.radius || o.x > screenWidth-o.radius {
			o.vx = -o.vx
		}
		if o.y < o.radius || o.y > screenHeight-o.radius {
			o.vy = -o.vy
		}
	}

	for len(g.orbs) < g.budget {
		g.orbs = append(g.orbs, orb{
			x:      g.rng.Float64() * screenWidth,
			y:      g.rng.Float64() * screenHeight,
			vx:     (g.rng.Float64() - 0.5) * 120,
			vy:     (g.rng.Float64() - 0.5) * 120,
			radius: 8 + g.rng.Float64()*24,
			inner:  terminal.RGB{R: uint8(g.rng.Intn(128) + 128), G: uint8(g.rng.Intn(255)), B: uint8(g.rng.Intn(255))},
			outer:  terminal.RGB{R: 10, G: 10, B: 30},
		})
	}
	if len(g.orbs) > g.budget {
		g.orbs = g.orbs[:g.budget]
	}
}

// render prepares the scene from cached gradients; Draw paints it
func (g *game) render() {
	g.scene = g.scene[:0]
	for i := range g.orbs {
		o := &g.orbs[i]
		grad := g.gradients.Radial(o.inner, o.outer, o.radius)
		g.scene = append(g.scene, glowSprite{
			x:      float32(o.x),
			y:      float32(o.y),
			radius: float32(grad.Radius),
			ramp:   grad.Ramp,
		})
	}
	g.gradients.Maintain()
}

func (g *game) applyPerformanceMode(active bool) {
	if active {
		g.budget = reducedOrbBudget
	} else {
		g.budget = fullOrbBudget
	}
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(io.Discard, "", 0)
	if *debugFlag {
		if err := os.MkdirAll("logs", 0o755); err == nil {
			if f, err := os.Create("logs/ebiten-demo.log"); err == nil {
				defer f.Close()
				logger = log.New(f, "", log.Ltime|log.Lmicroseconds)
			}
		}
	}

	host := newEbitenHost()
	reg := status.NewRegistry()

	gradients, err := render.NewGradientCache(cfg.CacheConfig(), host.Now, logger, reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cache error: %v\n", err)
		os.Exit(1)
	}

	g := &game{
		host:      host,
		gradients: gradients,
		budget:    fullOrbBudget,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	engCfg := cfg.EngineConfig()
	engCfg.Logger = logger
	engCfg.Status = reg

	g.scheduler = engine.NewLoopScheduler(host, host, engine.Callbacks{
		Update:               g.update,
		Render:               g.render,
		OnStateUpdate:        func(snap engine.Snapshot) { g.snap = snap },
		ApplyPerformanceMode: g.applyPerformanceMode,
	}, engCfg)
	g.scheduler.Events().Register(gradients)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("frameloop ebiten demo")

	g.scheduler.Start()
	err = ebiten.RunGame(g)
	g.scheduler.Cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run error: %v\n", err)
		os.Exit(1)
	}
}
