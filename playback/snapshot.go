package playback

import (
	"github.com/schedlab/procsim/sched"
	"github.com/schedlab/procsim/timeline"
)

// ProcessInfo is the read-only view of one process in a snapshot.
type ProcessInfo struct {
	Name           string     `json:"name"`
	ArrivalTime    sched.Tick `json:"arrival_time"`
	BurstTime      sched.Tick `json:"burst_time"`
	Priority       int        `json:"priority"`
	Remaining      sched.Tick `json:"remaining"`
	State          string     `json:"state"`
	StartTime      sched.Tick `json:"start_time"`
	CompletionTime sched.Tick `json:"completion_time"`
	Waiting        sched.Tick `json:"waiting"`
}

// A Snapshot is a point-in-time view of a run, safe to render from any
// goroutine. Stats is nil while no process has terminated, in which case the
// statistics are undefined rather than zero.
type Snapshot struct {
	State     string             `json:"state"`
	Algorithm string             `json:"algorithm"`
	Now       sched.Tick         `json:"now"`
	Processes []ProcessInfo      `json:"processes"`
	Segments  []timeline.Segment `json:"segments"`
	Stats     *timeline.Stats    `json:"stats,omitempty"`
}

// Snapshot captures the current state of the run. It never mutates process or
// timeline state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	procs := c.scheduler.Processes()

	snap := Snapshot{
		State:     c.state.String(),
		Algorithm: string(c.scheduler.Algorithm()),
		Now:       c.scheduler.Now(),
		Processes: make([]ProcessInfo, 0, len(procs)),
		Segments:  c.recorder.Segments(),
	}

	for _, p := range procs {
		snap.Processes = append(snap.Processes, ProcessInfo{
			Name:           p.Name,
			ArrivalTime:    p.ArrivalTime,
			BurstTime:      p.BurstTime,
			Priority:       p.Priority,
			Remaining:      p.Remaining,
			State:          p.State.String(),
			StartTime:      p.StartTime,
			CompletionTime: p.CompletionTime,
			Waiting:        p.Waiting,
		})
	}

	if stats, ok := timeline.Compute(procs); ok {
		snap.Stats = &stats
	}

	return snap
}

// Progress reports how many of the submitted processes have terminated.
func (c *Controller) Progress() (completed, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.scheduler.Processes() {
		total++
		if p.Terminated() {
			completed++
		}
	}

	return completed, total
}
