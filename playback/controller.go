// Package playback drives a Scheduler in real time. It owns the run state
// machine and the pacing loop; the scheduler itself never sees wall-clock
// time.
package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/schedlab/procsim/sched"
	"github.com/schedlab/procsim/timeline"
)

// RunState describes where a whole run is in its lifecycle.
type RunState int

const (
	// Idle means no run has started yet.
	Idle RunState = iota

	// Running means the pacing loop is advancing ticks.
	Running

	// Paused means the clock is frozen between ticks.
	Paused

	// Completed means every submitted process has terminated.
	Completed

	// Stopped means the user ended the run early. Statistics reflect the
	// processes finished so far; stopping is not an error.
	Stopped
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

// Command rejection errors. A command that does not apply to the current run
// state is rejected, never fatal.
var (
	ErrRejected         = errors.New("command rejected")
	ErrNonPositiveSpeed = errors.New("speed multiplier must be positive")
)

// DefaultBaseDelay is the wall-clock delay between ticks at speed 1.
const DefaultBaseDelay = time.Second

// A Controller paces a Scheduler through a run. It is the single writer of
// scheduler and timeline state: every tick is advanced either by its pacing
// goroutine or by Step/RunAll while that goroutine is idle, always under the
// controller's lock. Snapshots are deep copies and never mutate the run.
type Controller struct {
	mu   sync.Mutex
	cond *sync.Cond

	scheduler *sched.Scheduler
	recorder  *timeline.Recorder

	state       RunState
	baseDelay   time.Duration
	speed       float64
	fastForward bool
	looping     bool
}

// NewController creates a controller over the given scheduler and recorder.
// The recorder is attached to the scheduler as a tick hook.
func NewController(
	scheduler *sched.Scheduler,
	recorder *timeline.Recorder,
) *Controller {
	c := &Controller{
		scheduler: scheduler,
		recorder:  recorder,
		baseDelay: DefaultBaseDelay,
		speed:     1,
	}
	c.cond = sync.NewCond(&c.mu)

	scheduler.AcceptHook(recorder)

	return c
}

// WithBaseDelay overrides the inter-tick delay at speed 1. A zero delay makes
// paced runs advance as fast as the loop can go.
func (c *Controller) WithBaseDelay(d time.Duration) *Controller {
	c.baseDelay = d
	return c
}

// State returns the current run state.
func (c *Controller) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Start begins a run. A run with no pending work completes immediately.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return rejected("start", c.state)
	}

	if c.scheduler.Done() {
		c.finish(Completed)
		return nil
	}

	c.state = Running
	c.ensureLoop()

	return nil
}

// Pause freezes the clock at the next tick boundary, never mid-tick. Pausing
// leaves fast-forward, so a later Resume continues at the configured speed.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Running {
		return rejected("pause", c.state)
	}

	c.state = Paused
	c.fastForward = false

	return nil
}

// Resume continues a paused run from the exact next tick.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Paused {
		return rejected("resume", c.state)
	}

	c.state = Running
	c.ensureLoop()
	c.cond.Broadcast()

	return nil
}

// Stop ends the run early at the next tick boundary. Stop is always accepted
// while a run is in progress.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Running && c.state != Paused {
		return rejected("stop", c.state)
	}

	c.finish(Stopped)

	return nil
}

// Step executes exactly one tick. It applies to a paused run, or to an idle
// one, which it leaves paused so that stepping can continue.
func (c *Controller) Step() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Paused && c.state != Idle {
		return rejected("step", c.state)
	}

	if c.scheduler.Done() {
		c.finish(Completed)
		return nil
	}

	c.state = Paused

	res := c.scheduler.AdvanceTick()
	if res.Done {
		c.finish(Completed)
	}

	return nil
}

// RunAll advances the run to completion with no playback delay. It returns
// once the loop is in fast-forward; use Wait to block until the run ends.
func (c *Controller) RunAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Idle, Paused, Running:
	default:
		return rejected("run to completion", c.state)
	}

	if c.scheduler.Done() {
		c.finish(Completed)
		return nil
	}

	c.fastForward = true
	c.state = Running
	c.ensureLoop()
	c.cond.Broadcast()

	return nil
}

// SetSpeed sets the playback speed multiplier. Speed only changes the pacing
// of ticks; it never changes scheduling decisions or statistics.
func (c *Controller) SetSpeed(multiplier float64) error {
	if multiplier <= 0 {
		return fmt.Errorf("%w: %v", ErrNonPositiveSpeed, multiplier)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.speed = multiplier

	return nil
}

// Add submits a process to the run. A process submitted mid-run becomes ready
// at the next tick boundary; already recorded segments are never altered.
func (c *Controller) Add(p *sched.Process) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Completed || c.state == Stopped {
		return rejected("add process", c.state)
	}

	return c.scheduler.Add(p)
}

// AddLive submits a process that arrives at the current simulated time.
func (c *Controller) AddLive(
	name string,
	burst sched.Tick,
	priority int,
) (*sched.Process, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Completed || c.state == Stopped {
		return nil, rejected("add process", c.state)
	}

	return c.scheduler.AddLive(name, burst, priority)
}

// Wait blocks until the run reaches Completed or Stopped.
func (c *Controller) Wait() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.state != Completed && c.state != Stopped {
		c.cond.Wait()
	}

	return c.state
}

// Reset returns the controller, scheduler, and timeline to the state before
// the first tick so the same scenario can run again. A running run must be
// paused or stopped first.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Running {
		return rejected("reset", c.state)
	}

	c.scheduler.Reset()
	c.recorder.Reset()
	c.state = Idle
	c.fastForward = false

	return nil
}

// finish moves the run to a terminal state. Callers hold the lock.
func (c *Controller) finish(state RunState) {
	c.state = state
	c.fastForward = false
	c.cond.Broadcast()
}

// ensureLoop spawns the pacing goroutine when none is alive. Callers hold the
// lock.
func (c *Controller) ensureLoop() {
	if c.looping {
		return
	}

	c.looping = true
	go c.run()
}

func (c *Controller) run() {
	for {
		c.mu.Lock()

		for c.state == Paused {
			c.cond.Wait()
		}

		if c.state != Running {
			c.looping = false
			c.mu.Unlock()
			return
		}

		res := c.scheduler.AdvanceTick()
		if res.Done {
			c.finish(Completed)
			c.looping = false
			c.mu.Unlock()
			return
		}

		delay := time.Duration(0)
		if !c.fastForward {
			delay = time.Duration(float64(c.baseDelay) / c.speed)
		}
		c.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

func rejected(command string, state RunState) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrRejected, command, state)
}
