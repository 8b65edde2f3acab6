package driver

import "context"

// FramePacer drives a session from a frame loop that owns the clock, such as
// a window's update callback. It steps once every `every` frames.
type FramePacer struct {
	session *Session
	every   int
	frame   int
	reason  StopReason
}

// NewFramePacer steps session once per every frames (at least one)
func NewFramePacer(session *Session, every int) *FramePacer {
	return &FramePacer{session: session, every: max(every, 1)}
}

// Tick counts one frame. It returns false once ctx is done or the pacer was
// cancelled; a session that stopped on its own keeps ticking without
// advancing so its last generation stays visible.
func (p *FramePacer) Tick(ctx context.Context) bool {
	if p.reason == ReasonCancelled {
		return false
	}
	if ctx.Err() != nil {
		p.Cancel()
		return false
	}
	if p.reason != ReasonNone {
		return true
	}

	p.frame++
	if p.frame < p.every {
		return true
	}
	p.frame = 0
	p.reason = p.session.Step()
	return true
}

// Cancel ends the run. A reason already reached is kept.
func (p *FramePacer) Cancel() {
	if p.reason == ReasonNone {
		p.reason = ReasonCancelled
	}
}

// Reason returns why the run ended, or ReasonNone while it is running
func (p *FramePacer) Reason() StopReason {
	return p.reason
}
