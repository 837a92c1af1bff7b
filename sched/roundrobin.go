package sched

// DefaultQuantum is the round robin time slice used when the caller does not
// pick one.
const DefaultQuantum Tick = 2

// roundRobin rotates the CPU through a FIFO queue, granting each process up
// to one quantum per turn. Processes that arrive while a slice is in progress
// are enqueued, in arrival order, ahead of the process whose quantum expires.
type roundRobin struct {
	quantum Tick

	queue   []*Process
	inQueue map[string]bool
	current *Process
	used    Tick
}

func newRoundRobin(quantum Tick) *roundRobin {
	return &roundRobin{
		quantum: quantum,
		inQueue: make(map[string]bool),
	}
}

func (s *roundRobin) Name() string {
	return "Round Robin"
}

func (s *roundRobin) Select(
	now Tick,
	ready []*Process,
	running *Process,
) *Process {
	// Newly admitted processes join the queue first, so that on a quantum
	// expiry in the same tick they rotate in ahead of the preempted process.
	for _, p := range ready {
		if !s.inQueue[p.Name] && p != s.current {
			s.queue = append(s.queue, p)
			s.inQueue[p.Name] = true
		}
	}

	if s.current != nil && running != s.current {
		// The slice owner terminated; it never rejoins the queue.
		s.current = nil
		s.used = 0
	}

	if s.current != nil && s.used >= s.quantum {
		s.queue = append(s.queue, s.current)
		s.inQueue[s.current.Name] = true
		s.current = nil
		s.used = 0
	}

	if s.current == nil {
		if len(s.queue) == 0 {
			return nil
		}

		s.current = s.queue[0]
		s.queue = s.queue[1:]
		delete(s.inQueue, s.current.Name)
	}

	s.used++

	return s.current
}
