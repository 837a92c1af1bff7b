package sched

import (
	"errors"
	"fmt"
)

// Tick is one discrete unit of simulated time.
type Tick int

// ProcessState describes where a process is in its lifecycle.
type ProcessState int

// The four process states. The only legal transitions are New->Ready,
// Ready->Running, Running->Ready (preemption), and Running->Terminated.
const (
	StateNew ProcessState = iota
	StateReady
	StateRunning
	StateTerminated
)

func (s ProcessState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("ProcessState(%d)", int(s))
}

// Submission errors. Invalid processes are rejected before they can enter the
// scheduler.
var (
	ErrNegativeArrival  = errors.New("arrival time must not be negative")
	ErrNonPositiveBurst = errors.New("burst time must be positive")
	ErrDuplicateName    = errors.New("process name already in use")
	ErrInvalidQuantum   = errors.New("round robin quantum must be positive")
	ErrUnknownAlgorithm = errors.New("unknown scheduling algorithm")
)

// A Process is one task to be scheduled. Name, ArrivalTime, BurstTime, and
// Priority are fixed at submission. The remaining fields are owned by the
// Scheduler and must not be written by anyone else.
//
// Priority follows the convention that a numerically lower value means a
// higher priority.
type Process struct {
	Name        string
	ArrivalTime Tick
	BurstTime   Tick
	Priority    int

	Remaining      Tick
	State          ProcessState
	StartTime      Tick // first tick the process ran, -1 until then
	CompletionTime Tick // -1 until the process terminates
	Waiting        Tick // ticks spent ready but not running

	seq int // submission order, assigned by the scheduler
}

// NewProcess validates the static attributes and returns a process in the New
// state.
func NewProcess(
	name string,
	arrival Tick,
	burst Tick,
	priority int,
) (*Process, error) {
	if arrival < 0 {
		return nil, fmt.Errorf("process %s: %w", name, ErrNegativeArrival)
	}

	if burst <= 0 {
		return nil, fmt.Errorf("process %s: %w", name, ErrNonPositiveBurst)
	}

	p := &Process{
		Name:           name,
		ArrivalTime:    arrival,
		BurstTime:      burst,
		Priority:       priority,
		Remaining:      burst,
		State:          StateNew,
		StartTime:      -1,
		CompletionTime: -1,
	}

	return p, nil
}

// Terminated returns true once the process has used all of its burst time.
func (p *Process) Terminated() bool {
	return p.State == StateTerminated
}

// TurnaroundTime is the completion time minus the arrival time. The second
// return value is false until the process terminates.
func (p *Process) TurnaroundTime() (Tick, bool) {
	if p.CompletionTime < 0 {
		return 0, false
	}

	return p.CompletionTime - p.ArrivalTime, true
}

// WaitingTime is the turnaround time minus the burst time.
func (p *Process) WaitingTime() (Tick, bool) {
	turnaround, ok := p.TurnaroundTime()
	if !ok {
		return 0, false
	}

	return turnaround - p.BurstTime, true
}

// ResponseTime is the time between arrival and the first tick the process
// ran. The second return value is false until the process has run at least
// once.
func (p *Process) ResponseTime() (Tick, bool) {
	if p.StartTime < 0 {
		return 0, false
	}

	return p.StartTime - p.ArrivalTime, true
}

// Clone returns an independent copy of the process.
func (p *Process) Clone() *Process {
	c := *p
	return &c
}

// reset returns the process to the state it had at submission so that the
// same scenario can run again.
func (p *Process) reset() {
	p.Remaining = p.BurstTime
	p.State = StateNew
	p.StartTime = -1
	p.CompletionTime = -1
	p.Waiting = 0
}
