package sched

import "fmt"

// Algorithm identifies one of the six scheduling policies.
type Algorithm string

const (
	AlgoFCFS               Algorithm = "fcfs"
	AlgoSJF                Algorithm = "sjf"
	AlgoSRTF               Algorithm = "srtf"
	AlgoPriority           Algorithm = "priority"
	AlgoPriorityPreemptive Algorithm = "priority-preemptive"
	AlgoRoundRobin         Algorithm = "rr"
)

// ParseAlgorithm maps a user-provided string to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AlgoFCFS, AlgoSJF, AlgoSRTF,
		AlgoPriority, AlgoPriorityPreemptive, AlgoRoundRobin:
		return Algorithm(s), nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// A Strategy decides which process occupies the CPU for the next tick.
//
// The ready slice holds the ready processes in (arrival time, submission
// order), excluding the currently running process. The running process is the
// one selected in the previous tick, or nil if the CPU was idle or the
// previous process terminated. Select returns nil to leave the CPU idle.
//
// A Strategy must not mutate any Process. Policies that need auxiliary state,
// such as the round robin queue, keep it private to the strategy instance.
type Strategy interface {
	Name() string
	Select(now Tick, ready []*Process, running *Process) *Process
}

// NewStrategy creates the strategy for the given algorithm. The quantum is
// only consulted for round robin and must be positive there.
func NewStrategy(algo Algorithm, quantum Tick) (Strategy, error) {
	switch algo {
	case AlgoFCFS:
		return &fcfs{}, nil
	case AlgoSJF:
		return &sjf{}, nil
	case AlgoSRTF:
		return &srtf{}, nil
	case AlgoPriority:
		return &priorityNP{}, nil
	case AlgoPriorityPreemptive:
		return &priorityP{}, nil
	case AlgoRoundRobin:
		if quantum <= 0 {
			return nil, ErrInvalidQuantum
		}
		return newRoundRobin(quantum), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algo)
}

// Preemptive tells whether the algorithm may take the CPU away from a running
// process.
func (a Algorithm) Preemptive() bool {
	switch a {
	case AlgoSRTF, AlgoPriorityPreemptive, AlgoRoundRobin:
		return true
	}
	return false
}

// pickMin returns the ready process with the smallest key. The ready slice is
// ordered by (arrival time, submission order), so scanning with a strict
// less-than implements the uniform tie-break rule.
func pickMin(ready []*Process, key func(*Process) int) *Process {
	var best *Process
	for _, p := range ready {
		if best == nil || key(p) < key(best) {
			best = p
		}
	}

	return best
}
