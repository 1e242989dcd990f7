package events

import "time"

// FPSSampledPayload carries the latest FPS recomputation
type FPSSampledPayload struct {
	FPS          int
	AvgFrameTime time.Duration
	MaxFrameTime time.Duration
}

// PerfModePayload carries a performance mode transition
type PerfModePayload struct {
	Active bool
	FPS    int
}

// SurfacePayload carries the new render surface dimensions
type SurfacePayload struct {
	Width  int
	Height int
}
