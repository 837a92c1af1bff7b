package sched

// sjf picks the ready process with the smallest remaining burst. It never
// interrupts a process that has started.
type sjf struct{}

func (s *sjf) Name() string {
	return "Shortest Job First (Non-Preemptive)"
}

func (s *sjf) Select(now Tick, ready []*Process, running *Process) *Process {
	if running != nil {
		return running
	}

	return pickMin(ready, func(p *Process) int {
		return int(p.Remaining)
	})
}

// srtf is the preemptive variant of sjf, also known as Shortest Remaining
// Time First. A ready process preempts the running one only when its
// remaining burst is strictly smaller.
type srtf struct{}

func (s *srtf) Name() string {
	return "Shortest Remaining Time First"
}

func (s *srtf) Select(now Tick, ready []*Process, running *Process) *Process {
	best := pickMin(ready, func(p *Process) int {
		return int(p.Remaining)
	})

	if running == nil {
		return best
	}

	if best != nil && best.Remaining < running.Remaining {
		return best
	}

	return running
}
