package integrator

import (
	"github.com/prism-render/prism/pkg/bxdf"
	"github.com/prism-render/prism/pkg/core"
)

// TerminationReason says why a path stopped
type TerminationReason int

const (
	TermBounceLimit TerminationReason = iota
	TermMiss
	TermIgnored
	TermZeroPDF
	TermRoulette
	TermLight
)

func (r TerminationReason) String() string {
	switch r {
	case TermBounceLimit:
		return "bounce limit"
	case TermMiss:
		return "miss"
	case TermIgnored:
		return "ignored"
	case TermZeroPDF:
		return "zero pdf"
	case TermRoulette:
		return "roulette"
	case TermLight:
		return "light"
	}
	return "unknown"
}

// Recorder observes path construction. The integrator calls Bounce for
// every surface interaction that extends the path and Terminate exactly
// once per path.
type Recorder interface {
	Bounce(n int, ray core.Ray, sample bxdf.Sample, beta core.Vec3)
	Terminate(n int, reason TerminationReason, radiance core.Vec3)
}

// NopRecorder discards everything; it is the default for rendering
type NopRecorder struct{}

func (NopRecorder) Bounce(int, core.Ray, bxdf.Sample, core.Vec3) {}
func (NopRecorder) Terminate(int, TerminationReason, core.Vec3)  {}

// BounceEvent is one recorded surface interaction
type BounceEvent struct {
	N      int
	Ray    core.Ray
	Sample bxdf.Sample
	Beta   core.Vec3
}

// TraceRecorder buffers a path's events for inspection
type TraceRecorder struct {
	Bounces  []BounceEvent
	Reason   TerminationReason
	Radiance core.Vec3
}

func (r *TraceRecorder) Bounce(n int, ray core.Ray, sample bxdf.Sample, beta core.Vec3) {
	r.Bounces = append(r.Bounces, BounceEvent{N: n, Ray: ray, Sample: sample, Beta: beta})
}

func (r *TraceRecorder) Terminate(n int, reason TerminationReason, radiance core.Vec3) {
	r.Reason = reason
	r.Radiance = radiance
}
