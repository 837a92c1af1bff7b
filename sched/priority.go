package sched

// priorityNP picks the ready process with the best priority value, where a
// numerically lower value means a higher priority. It never interrupts a
// process that has started.
type priorityNP struct{}

func (s *priorityNP) Name() string {
	return "Priority (Non-Preemptive)"
}

func (s *priorityNP) Select(
	now Tick,
	ready []*Process,
	running *Process,
) *Process {
	if running != nil {
		return running
	}

	return pickMin(ready, func(p *Process) int {
		return p.Priority
	})
}

// priorityP is the preemptive variant. A ready process preempts the running
// one only when its priority value is strictly lower.
type priorityP struct{}

func (s *priorityP) Name() string {
	return "Priority (Preemptive)"
}

func (s *priorityP) Select(
	now Tick,
	ready []*Process,
	running *Process,
) *Process {
	best := pickMin(ready, func(p *Process) int {
		return p.Priority
	})

	if running == nil {
		return best
	}

	if best != nil && best.Priority < running.Priority {
		return best
	}

	return running
}
