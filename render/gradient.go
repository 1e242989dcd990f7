package render

import (
	"log"
	"math"
	"time"

	"github.com/lixenwraith/frameloop/events"
	"github.com/lixenwraith/frameloop/parameter"
	"github.com/lixenwraith/frameloop/status"
	"github.com/lixenwraith/frameloop/terminal"
)

// GradientKey identifies one radial gradient
// The radius is rounded to the nearest GradientRadiusStep before keying,
// trading a little visual precision for much lower key cardinality
type GradientKey struct {
	Inner       terminal.RGB
	Outer       terminal.RGB
	RadiusSteps int // Radius in GradientRadiusStep units
}

// NewGradientKey derives a key from continuous parameters
func NewGradientKey(inner, outer terminal.RGB, radius float64) GradientKey {
	return GradientKey{
		Inner:       inner,
		Outer:       outer,
		RadiusSteps: int(math.Round(radius / parameter.GradientRadiusStep)),
	}
}

// Radius returns the quantized radius the key encodes
func (k GradientKey) Radius() float64 {
	return float64(k.RadiusSteps) * parameter.GradientRadiusStep
}

// Gradient is a precomputed radial color ramp, center to edge
type Gradient struct {
	Inner  terminal.RGB
	Outer  terminal.RGB
	Radius float64
	Ramp   []terminal.RGB
}

// BuildGradient computes the ramp for a key
// Pure: same key always yields the same gradient
func BuildGradient(key GradientKey) Gradient {
	radius := key.Radius()

	steps := int(math.Ceil(radius)) + 1
	if steps < 2 {
		steps = 2
	}

	ramp := make([]terminal.RGB, steps)
	for i := range ramp {
		t := float64(i) / float64(steps-1)
		ramp[i] = terminal.Lerp(key.Inner, key.Outer, t)
	}

	return Gradient{
		Inner:  key.Inner,
		Outer:  key.Outer,
		Radius: radius,
		Ramp:   ramp,
	}
}

// At samples the ramp at the given distance from center
// Distances beyond the radius clamp to the outer color
func (g Gradient) At(dist float64) terminal.RGB {
	if len(g.Ramp) == 0 {
		return terminal.RGBBlack
	}
	if dist <= 0 || g.Radius <= 0 {
		return g.Ramp[0]
	}
	idx := int(dist / g.Radius * float64(len(g.Ramp)-1))
	if idx >= len(g.Ramp) {
		idx = len(g.Ramp) - 1
	}
	return g.Ramp[idx]
}

// GradientCache binds the generic cache to gradient construction and the
// surface-change invalidation rule
type GradientCache struct {
	cache  *Cache[GradientKey, Gradient]
	builds uint64
}

// NewGradientCache creates a gradient cache over the given clock
func NewGradientCache(cfg CacheConfig, now func() time.Duration, logger *log.Logger, reg *status.Registry) (*GradientCache, error) {
	cache, err := NewCache[GradientKey, Gradient](cfg, now, logger, reg, "gradient")
	if err != nil {
		return nil, err
	}
	return &GradientCache{cache: cache}, nil
}

// Radial returns the gradient for the given parameters, building on miss
func (gc *GradientCache) Radial(inner, outer terminal.RGB, radius float64) Gradient {
	key := NewGradientKey(inner, outer, radius)

	if g, ok := gc.cache.Get(key); ok {
		return g
	}

	g := BuildGradient(key)
	gc.builds++
	gc.cache.Put(key, g)
	return g
}

// Maintain forwards to the underlying cache sweeps
func (gc *GradientCache) Maintain() {
	gc.cache.Maintain()
}

// InvalidateAll clears all cached gradients and counters
func (gc *GradientCache) InvalidateAll() {
	gc.cache.InvalidateAll()
}

// Builds returns how many gradients were computed rather than served
func (gc *GradientCache) Builds() uint64 {
	return gc.builds
}

// Len returns the number of cached gradients
func (gc *GradientCache) Len() int {
	return gc.cache.Len()
}

// HandleLoopEvent invalidates on surface change
// Gradients are computed against surface-specific parameters
func (gc *GradientCache) HandleLoopEvent(event events.Event) {
	if event.Type == events.EventSurfaceChanged {
		gc.InvalidateAll()
	}
}

// EventTypes declares interest for router registration
func (gc *GradientCache) EventTypes() []events.EventType {
	return []events.EventType{events.EventSurfaceChanged}
}
