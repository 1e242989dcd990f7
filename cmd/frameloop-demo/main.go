// FILE: cmd/frameloop-demo/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/frameloop/audio"
	"github.com/lixenwraith/frameloop/config"
	"github.com/lixenwraith/frameloop/engine"
	"github.com/lixenwraith/frameloop/render"
	"github.com/lixenwraith/frameloop/status"
	"github.com/lixenwraith/frameloop/terminal"
)

// Particle budget halves under degraded performance mode
const (
	fullParticleBudget    = 300
	reducedParticleBudget = 150
)

var (
	fpsFlag    = flag.Int("fps", 0, "Target frame rate (0 = config default)")
	configFlag = flag.String("config", "", "Path to YAML tuning overrides")
	debugFlag  = flag.Bool("debug", false, "Write diagnostics to logs/frameloop-demo.log")
	muteFlag   = flag.Bool("mute", false, "Disable audio cues")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *fpsFlag > 0 {
		cfg.Host.TargetFPS = *fpsFlag
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
	}

	logger := log.New(io.Discard, "", 0)
	if *debugFlag {
		if err := os.MkdirAll("logs", 0o755); err == nil {
			if f, err := os.Create("logs/frameloop-demo.log"); err == nil {
				defer f.Close()
				logger = log.New(f, "", log.Ltime|log.Lmicroseconds)
			}
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}

	// Panic Recovery: Restore the terminal before printing the stack trace
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mFRAMELOOP-DEMO CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	host := terminal.NewHost(screen, cfg.FrameInterval(), logger)
	reg := status.NewRegistry()

	gradients, err := render.NewGradientCache(cfg.CacheConfig(), host.Now, logger, reg)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Cache error: %v\n", err)
		os.Exit(1)
	}

	sim := newSimulation(host, screen, gradients)

	engCfg := cfg.EngineConfig()
	engCfg.Logger = logger
	engCfg.Status = reg

	scheduler := engine.NewLoopScheduler(host, host, engine.Callbacks{
		Update:               sim.update,
		Render:               sim.render,
		OnStateUpdate:        sim.observe,
		ApplyPerformanceMode: sim.applyPerformanceMode,
	}, engCfg)
	sim.scheduler = scheduler

	// Surface changes invalidate cached gradients
	scheduler.Events().Register(gradients)

	if !*muteFlag {
		cues := audio.NewCuePlayer(logger)
		defer cues.Close()
		scheduler.Events().Register(cues)
	}

	host.Run()
	scheduler.Start()

	// Keys are handled here so pause/resume works while no frames fire
loop:
	for {
		select {
		case <-sim.done:
			break loop
		case ev := <-host.Keys():
			sim.handleKey(ev)
		}
	}

	scheduler.Cleanup()
	host.Stop()
	screen.Fini()
}

// palette pairs the inner and outer glow colors per particle kind
var palette = [...]struct{ inner, outer terminal.RGB }{
	{terminal.RGB{R: 255, G: 220, B: 120}, terminal.RGB{R: 80, G: 40, B: 10}},
	{terminal.RGB{R: 120, G: 200, B: 255}, terminal.RGB{R: 10, G: 40, B: 80}},
	{terminal.RGB{R: 200, G: 120, B: 255}, terminal.RGB{R: 50, G: 10, B: 80}},
	{terminal.RGB{R: 140, G: 255, B: 160}, terminal.RGB{R: 10, G: 70, B: 30}},
}

type particle struct {
	x, y   float64
	vx, vy float64
	radius float64
	kind   int
}

// simulation is the demo update/render pair driven by the scheduler
type simulation struct {
	host      *terminal.Host
	screen    tcell.Screen
	gradients *render.GradientCache
	scheduler *engine.LoopScheduler

	particles []particle
	budget    int
	rng       *rand.Rand
	autoMode  atomic.Bool

	mu   sync.Mutex
	snap engine.Snapshot

	done     chan struct{}
	doneOnce sync.Once
}

func newSimulation(host *terminal.Host, screen tcell.Screen, gradients *render.GradientCache) *simulation {
	s := &simulation{
		host:      host,
		screen:    screen,
		gradients: gradients,
		budget:    fullParticleBudget,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		done:      make(chan struct{}),
	}
	s.autoMode.Store(true)
	return s
}

// update advances particles by the clamped delta
func (s *simulation) update(delta time.Duration) {
	w, h := s.host.Size()
	if w < 2 || h < 2 {
		return
	}

	dt := delta.Seconds()
	for i := range s.particles {
		p := &s.particles[i]
		p.x += p.vx * dt
		p.y += p.vy * dt

		if p.x < 0 {
			p.x, p.vx = 0, -p.vx
		} else if p.x >= float64(w) {
			p.x, p.vx = float64(w)-1, -p.vx
		}
		if p.y < 1 {
			p.y, p.vy = 1, -p.vy
		} else if p.y >= float64(h) {
			p.y, p.vy = float64(h)-1, -p.vy
		}
	}

	// Spawn up to budget; trim above it after a mode change
	for len(s.particles) < s.budget {
		s.particles = append(s.particles, particle{
			x:      s.rng.Float64() * float64(w),
			y:      1 + s.rng.Float64()*float64(h-1),
			vx:     (s.rng.Float64() - 0.5) * 30,
			vy:     (s.rng.Float64() - 0.5) * 15,
			radius: 1.5 + s.rng.Float64()*3.5,
			kind:   s.rng.Intn(len(palette)),
		})
	}
	if len(s.particles) > s.budget {
		s.particles = s.particles[:s.budget]
	}
}

// render draws the particle field with gradient-cached glows
func (s *simulation) render() {
	s.screen.Clear()

	for i := range s.particles {
		p := &s.particles[i]
		colors := palette[p.kind]
		g := s.gradients.Radial(colors.inner, colors.outer, p.radius)

		cx, cy := int(p.x), int(p.y)
		r := int(math.Ceil(p.radius))
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				// Terminal cells are ~2:1, weight vertical distance double
				dist := math.Sqrt(float64(dx*dx) + float64(4*dy*dy))
				if dist > p.radius {
					continue
				}
				style := tcell.StyleDefault.Foreground(g.At(dist).Tcell())
				s.screen.SetContent(cx+dx, cy+dy, glyphFor(dist, p.radius), nil, style)
			}
		}
	}

	s.drawStatusLine()
	s.gradients.Maintain()
}

func glyphFor(dist, radius float64) rune {
	switch {
	case dist < radius*0.34:
		return '●'
	case dist < radius*0.67:
		return '▒'
	default:
		return '░'
	}
}

func (s *simulation) drawStatusLine() {
	snap := s.snapshot()

	mode := "off"
	if snap.PerfModeActive {
		mode = "ON"
	}
	grace := ""
	if snap.GraceActive {
		grace = " [grace]"
	}
	state := ""
	if snap.State == engine.StatePaused {
		state = " *PAUSED*"
	}

	line := fmt.Sprintf(" fps:%d avg:%.1fms perf:%s auto:%v n:%d%s%s  [space]pause [a]auto [q]quit",
		snap.FPS, float64(snap.AvgFrameTime)/float64(time.Millisecond),
		mode, s.autoMode.Load(), len(s.particles), grace, state)

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, r := range line {
		s.screen.SetContent(i, 0, r, nil, style)
	}
}

// handleKey runs on the main goroutine; scheduler control is thread-safe
func (s *simulation) handleKey(ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
		s.quit()
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
		s.quit()
	case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
		if s.scheduler.State() == engine.StatePaused {
			s.scheduler.Resume()
		} else {
			s.scheduler.Pause()
			s.drawPauseOverlay()
		}
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'a':
		enabled := !s.autoMode.Load()
		s.autoMode.Store(enabled)
		s.scheduler.SetAutoPerformanceModeEnabled(enabled)
	}
}

// drawPauseOverlay paints the paused banner while no frames fire
func (s *simulation) drawPauseOverlay() {
	w, h := s.screen.Size()
	banner := " PAUSED - press space to resume "
	x := (w - len(banner)) / 2
	if x < 0 {
		x = 0
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	for i, r := range banner {
		s.screen.SetContent(x+i, h/2, r, nil, style)
	}
	s.screen.Show()
}

func (s *simulation) quit() {
	s.doneOnce.Do(func() { close(s.done) })
}

// observe stores the latest snapshot for the status line
func (s *simulation) observe(snap engine.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func (s *simulation) snapshot() engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// applyPerformanceMode halves the particle budget under degraded mode
func (s *simulation) applyPerformanceMode(active bool) {
	if active {
		s.budget = reducedParticleBudget
	} else {
		s.budget = fullParticleBudget
	}
}
