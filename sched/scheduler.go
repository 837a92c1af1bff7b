package sched

import (
	"fmt"
	"sort"
)

// StateChange describes one process state transition. It is delivered to
// hooks as the detail of HookPosStateChange.
type StateChange struct {
	Process *Process
	From    ProcessState
	To      ProcessState
	Time    Tick
}

// TickResult reports what happened during one tick.
type TickResult struct {
	Time Tick     // the tick that just executed
	Ran  *Process // nil when the CPU was idle
	Done bool     // true when every submitted process has terminated
}

// A Scheduler advances simulated time one tick at a time, consulting its
// Strategy for the process to run each tick. It holds no notion of wall-clock
// time; pacing belongs to whoever calls AdvanceTick.
//
// The Scheduler is not safe for concurrent use. The playback controller
// serializes all access to it.
type Scheduler struct {
	HookableBase

	algorithm Algorithm
	quantum   Tick
	strategy  Strategy

	now     Tick
	procs   []*Process
	byName  map[string]*Process
	running *Process
	nextSeq int
}

// NewScheduler creates a scheduler for the given algorithm. The quantum is
// only consulted for round robin.
func NewScheduler(algo Algorithm, quantum Tick) (*Scheduler, error) {
	strategy, err := NewStrategy(algo, quantum)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		algorithm: algo,
		quantum:   quantum,
		strategy:  strategy,
		byName:    make(map[string]*Process),
	}

	return s, nil
}

// Now returns the current simulated time.
func (s *Scheduler) Now() Tick {
	return s.now
}

// Algorithm returns the policy the scheduler runs.
func (s *Scheduler) Algorithm() Algorithm {
	return s.algorithm
}

// StrategyName returns the human-readable name of the active policy.
func (s *Scheduler) StrategyName() string {
	return s.strategy.Name()
}

// Running returns the process that occupied the CPU in the last tick, or nil.
func (s *Scheduler) Running() *Process {
	return s.running
}

// Processes returns the submitted processes in submission order. The caller
// must not mutate them.
func (s *Scheduler) Processes() []*Process {
	procs := make([]*Process, len(s.procs))
	copy(procs, s.procs)

	return procs
}

// Add submits a process. A process whose arrival time is at or before the
// current time becomes ready at the next tick boundary, never retroactively.
// Names must be unique among non-terminated processes.
func (s *Scheduler) Add(p *Process) error {
	if existing, ok := s.byName[p.Name]; ok && !existing.Terminated() {
		return fmt.Errorf("process %s: %w", p.Name, ErrDuplicateName)
	}

	if p.State != StateNew {
		panic("process " + p.Name + " was already scheduled")
	}

	p.seq = s.nextSeq
	s.nextSeq++
	s.procs = append(s.procs, p)
	s.byName[p.Name] = p

	return nil
}

// AddLive creates and submits a process that arrives at the current simulated
// time.
func (s *Scheduler) AddLive(
	name string,
	burst Tick,
	priority int,
) (*Process, error) {
	p, err := NewProcess(name, s.now, burst, priority)
	if err != nil {
		return nil, err
	}

	if err := s.Add(p); err != nil {
		return nil, err
	}

	return p, nil
}

// Done returns true when every submitted process has terminated.
func (s *Scheduler) Done() bool {
	for _, p := range s.procs {
		if !p.Terminated() {
			return false
		}
	}

	return true
}

// AdvanceTick executes one tick: it admits arrived processes, asks the
// strategy for a decision, runs the selected process for one time unit, and
// accounts waiting time for the processes that were ready but not selected.
func (s *Scheduler) AdvanceTick() TickResult {
	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosBeforeTick, Item: s.now})

	s.admitArrivals()

	selected := s.strategy.Select(s.now, s.readySet(), s.running)

	if s.running != nil && selected != s.running {
		s.setState(s.running, StateReady)
		s.running = nil
	}

	if selected != nil {
		if selected.State != StateRunning {
			s.setState(selected, StateRunning)
		}
		s.running = selected

		if selected.StartTime < 0 {
			selected.StartTime = s.now
		}

		selected.Remaining--
		if selected.Remaining == 0 {
			selected.CompletionTime = s.now + 1
			s.setState(selected, StateTerminated)
			s.running = nil
		}
	}

	for _, p := range s.procs {
		if p.State == StateReady {
			p.Waiting++
		}
	}

	res := TickResult{Time: s.now, Ran: selected}
	s.now++
	res.Done = s.Done()

	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosAfterTick, Item: res})

	return res
}

// Reset returns the scheduler and every submitted process to the state they
// had before the first tick.
func (s *Scheduler) Reset() {
	strategy, err := NewStrategy(s.algorithm, s.quantum)
	if err != nil {
		panic(err)
	}

	s.strategy = strategy
	s.now = 0
	s.running = nil

	for _, p := range s.procs {
		p.reset()
	}
}

func (s *Scheduler) admitArrivals() {
	for _, p := range s.procs {
		if p.State == StateNew && p.ArrivalTime <= s.now {
			s.setState(p, StateReady)
		}
	}
}

// readySet returns the ready processes ordered by (arrival time, submission
// order). The running process is not part of the set.
func (s *Scheduler) readySet() []*Process {
	var ready []*Process
	for _, p := range s.procs {
		if p.State == StateReady {
			ready = append(ready, p)
		}
	}

	sort.SliceStable(ready, func(i, j int) bool {
		if ready[i].ArrivalTime != ready[j].ArrivalTime {
			return ready[i].ArrivalTime < ready[j].ArrivalTime
		}
		return ready[i].seq < ready[j].seq
	})

	return ready
}

func (s *Scheduler) setState(p *Process, to ProcessState) {
	from := p.State
	if !legalTransition(from, to) {
		panic(fmt.Sprintf("illegal transition of process %s: %s -> %s",
			p.Name, from, to))
	}

	p.State = to

	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosStateChange,
		Detail: &StateChange{Process: p, From: from, To: to, Time: s.now},
	})
}

func legalTransition(from, to ProcessState) bool {
	switch from {
	case StateNew:
		return to == StateReady
	case StateReady:
		return to == StateRunning
	case StateRunning:
		return to == StateReady || to == StateTerminated
	}

	return false
}
