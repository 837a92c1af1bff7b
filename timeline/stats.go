package timeline

import "github.com/schedlab/procsim/sched"

// Stats hold the averages over terminated processes.
type Stats struct {
	AvgWaiting    float64 `json:"avg_waiting"`
	AvgTurnaround float64 `json:"avg_turnaround"`
	AvgResponse   float64 `json:"avg_response"`
	Completed     int     `json:"completed"`
}

// Compute derives the run statistics from the given processes. Only
// terminated processes contribute. When none has terminated the statistics
// are undefined and the second return value is false; callers must not
// substitute zeroes.
func Compute(procs []*sched.Process) (Stats, bool) {
	var stats Stats
	var totalWaiting, totalTurnaround, totalResponse sched.Tick

	for _, p := range procs {
		if !p.Terminated() {
			continue
		}

		waiting, _ := p.WaitingTime()
		turnaround, _ := p.TurnaroundTime()
		response, _ := p.ResponseTime()

		totalWaiting += waiting
		totalTurnaround += turnaround
		totalResponse += response
		stats.Completed++
	}

	if stats.Completed == 0 {
		return Stats{}, false
	}

	n := float64(stats.Completed)
	stats.AvgWaiting = float64(totalWaiting) / n
	stats.AvgTurnaround = float64(totalTurnaround) / n
	stats.AvgResponse = float64(totalResponse) / n

	return stats, true
}
