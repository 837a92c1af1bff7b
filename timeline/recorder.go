// Package timeline accumulates per-tick execution into a run-length Gantt
// record and derives run statistics from terminated processes.
package timeline

import (
	"sync"

	"github.com/schedlab/procsim/sched"
)

// Idle is the label recorded for ticks in which no process occupied the CPU.
const Idle = "idle"

// A Segment is one contiguous run of a single process (or of the idle CPU).
// End is exclusive.
type Segment struct {
	Process string     `json:"process"`
	Start   sched.Tick `json:"start"`
	End     sched.Tick `json:"end"`
}

// A Recorder is an append-only log of execution segments. Consecutive ticks
// of the same process merge into one segment. Recorder implements sched.Hook,
// so it can be attached to a Scheduler directly.
//
// Appends come from the single goroutine that advances ticks; snapshot reads
// may come from anywhere.
type Recorder struct {
	mu       sync.RWMutex
	segments []Segment
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Func records the outcome of a tick. It reacts to HookPosAfterTick only.
func (r *Recorder) Func(ctx sched.HookCtx) {
	if ctx.Pos != sched.HookPosAfterTick {
		return
	}

	res, ok := ctx.Item.(sched.TickResult)
	if !ok {
		return
	}

	label := Idle
	if res.Ran != nil {
		label = res.Ran.Name
	}

	r.RecordTick(res.Time, label)
}

// RecordTick appends one tick of execution for the named process, extending
// the last segment when it belongs to the same process and is contiguous.
func (r *Recorder) RecordTick(t sched.Tick, process string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.segments)
	if n > 0 && r.segments[n-1].Process == process && r.segments[n-1].End == t {
		r.segments[n-1].End = t + 1
		return
	}

	r.segments = append(r.segments, Segment{
		Process: process,
		Start:   t,
		End:     t + 1,
	})
}

// Segments returns a point-in-time copy of the record.
func (r *Recorder) Segments() []Segment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	segments := make([]Segment, len(r.segments))
	copy(segments, r.segments)

	return segments
}

// Len returns the number of run-length segments recorded so far.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.segments)
}

// Reset clears the record for a new run.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.segments = nil
}
