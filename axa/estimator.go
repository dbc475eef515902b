package axa

import (
	"sync"
	"time"
)

// extrapolate advances a presumed status and position by the wall-clock time
// elapsed between startedAt and now.
//
// Stable statuses pass through untouched. Moving statuses follow linear
// ramps: Unlocking runs the position from 0 to 100 over the unlock time and
// then rolls into Opening, which ramps from 0 to 100 again over the open
// time. Closing ramps from 100 down to 0 over the close time and rolls into
// Locking, which continues down to 0 over the lock time. The anchor is never
// rebased on a rollover; elapsed keeps accumulating from the start of the
// whole motion.
func extrapolate(status Status, position float64, startedAt, now time.Time, t MotionTimings) (Status, float64) {
	if !status.IsMoving() {
		return status, position
	}

	elapsed := now.Sub(startedAt)

	if status == StatusUnlocking {
		if elapsed < t.Unlock {
			return StatusUnlocking, clampPosition(ratio(elapsed, t.Unlock) * 100.0)
		}
		status = StatusOpening
	}

	if status == StatusOpening {
		if elapsed > t.Unlock+t.Open {
			return StatusOpen, 100.0
		}

		return StatusOpening, clampPosition(ratio(elapsed-t.Unlock, t.Open) * 100.0)
	}

	if status == StatusClosing {
		if elapsed < t.Close {
			return StatusClosing, clampPosition(100.0 - ratio(elapsed, t.Close)*100.0)
		}
		status = StatusLocking
	}

	if status == StatusLocking {
		if elapsed > t.Close+t.Lock {
			return StatusLocked, 0.0
		}

		return StatusLocking, clampPosition(100.0 - ratio(elapsed-t.Close, t.Lock)*100.0)
	}

	return status, position
}

func ratio(elapsed, total time.Duration) float64 {
	return float64(elapsed) / float64(total)
}

func clampPosition(position float64) float64 {
	return min(max(position, 0.0), 100.0)
}

// estimator owns the presumed status, the position estimate and the anchor
// timestamp of the current motion. All reads recompute the estimate lazily
// through extrapolate; there is no background timer.
type estimator struct {
	mu        sync.Mutex
	timings   MotionTimings
	status    Status
	position  float64
	startedAt time.Time

	// onChange is invoked outside the lock whenever the status changes,
	// whether by command, by elapsed time or by a sync correction.
	onChange func(prev, next Status)
}

func newEstimator(timings MotionTimings) *estimator {
	return &estimator{
		timings: timings,
		status:  StatusDisconnected,
	}
}

// snapshot recomputes the estimate at now and returns it.
func (e *estimator) snapshot(now time.Time) (Status, float64) {
	e.mu.Lock()
	prev := e.status
	e.status, e.position = extrapolate(e.status, e.position, e.startedAt, now, e.timings)
	next, position := e.status, e.position
	e.mu.Unlock()

	e.changed(prev, next)

	return next, position
}

// force sets the status and position directly, for connect seeding, external
// position restores and sync corrections. The motion anchor is left alone;
// it is irrelevant while the status is stable.
func (e *estimator) force(status Status, position float64) {
	e.mu.Lock()
	prev := e.status
	e.status = status
	e.position = position
	e.mu.Unlock()

	e.changed(prev, status)
}

// setStatus sets the status without touching the position estimate.
func (e *estimator) setStatus(status Status) {
	e.mu.Lock()
	prev := e.status
	e.status = status
	e.mu.Unlock()

	e.changed(prev, status)
}

// commandOpen applies a successfully acknowledged OPEN command. From Locked
// the opener starts a fresh unlock motion anchored at now. From Stopped it
// resumes opening mid travel without a fresh anchor, so the estimate
// saturates toward the end state on the next read.
func (e *estimator) commandOpen(now time.Time) {
	e.mu.Lock()
	prev := e.status

	switch prev {
	case StatusLocked:
		e.startedAt = now
		e.status = StatusUnlocking
	case StatusStopped:
		e.status = StatusOpening
	}

	next := e.status
	e.mu.Unlock()

	e.changed(prev, next)
}

// commandClose applies a successfully acknowledged CLOSE command, the mirror
// of commandOpen.
func (e *estimator) commandClose(now time.Time) {
	e.mu.Lock()
	prev := e.status

	switch prev {
	case StatusOpen:
		e.startedAt = now
		e.status = StatusClosing
	case StatusStopped:
		e.status = StatusClosing
	}

	next := e.status
	e.mu.Unlock()

	e.changed(prev, next)
}

func (e *estimator) changed(prev, next Status) {
	if prev != next && e.onChange != nil {
		e.onChange(prev, next)
	}
}
