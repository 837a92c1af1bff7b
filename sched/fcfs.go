package sched

// fcfs runs processes in arrival order. Once a process has the CPU it keeps
// it until its burst completes.
type fcfs struct{}

func (s *fcfs) Name() string {
	return "First-Come, First-Served"
}

func (s *fcfs) Select(now Tick, ready []*Process, running *Process) *Process {
	if running != nil {
		return running
	}

	return pickMin(ready, func(p *Process) int {
		return int(p.ArrivalTime)
	})
}
