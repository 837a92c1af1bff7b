// Package simulation wires a scheduling run together: the tick engine, the
// timeline recorder, the playback controller, result recording, and the
// optional monitoring server.
package simulation

import (
	"github.com/schedlab/procsim/datarecording"
	"github.com/schedlab/procsim/monitoring"
	"github.com/schedlab/procsim/playback"
	"github.com/schedlab/procsim/sched"
	"github.com/schedlab/procsim/timeline"
)

// A Simulation holds the services that define one scheduling run.
type Simulation struct {
	id string

	scheduler    *sched.Scheduler
	recorder     *timeline.Recorder
	controller   *playback.Controller
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Scheduler returns the tick engine of the simulation.
func (s *Simulation) Scheduler() *sched.Scheduler {
	return s.scheduler
}

// Timeline returns the execution-segment recorder.
func (s *Simulation) Timeline() *timeline.Recorder {
	return s.recorder
}

// Controller returns the playback controller that drives the run.
func (s *Simulation) Controller() *playback.Controller {
	return s.controller
}

// DataRecorder returns the result recorder, or nil when result recording is
// disabled.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the monitoring server, or nil when monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// segmentRow is one Gantt segment as stored in the results database.
type segmentRow struct {
	RunID   string
	Process string
	Start   int
	End     int
}

// processRow is one process outcome as stored in the results database.
type processRow struct {
	RunID          string
	Name           string
	ArrivalTime    int
	BurstTime      int
	Priority       int
	State          string
	StartTime      int
	CompletionTime int
	Waiting        int
}

// runRow summarizes one run in the results database.
type runRow struct {
	RunID         string
	Algorithm     string
	FinalState    string
	EndTime       int
	Completed     int
	AvgWaiting    float64
	AvgTurnaround float64
}

// RecordResults writes the current snapshot into the results database. It is
// a no-op when result recording is disabled.
func (s *Simulation) RecordResults() {
	if s.dataRecorder == nil {
		return
	}

	snap := s.controller.Snapshot()

	for _, segment := range snap.Segments {
		s.dataRecorder.InsertData("segments", segmentRow{
			RunID:   s.id,
			Process: segment.Process,
			Start:   int(segment.Start),
			End:     int(segment.End),
		})
	}

	for _, p := range snap.Processes {
		s.dataRecorder.InsertData("processes", processRow{
			RunID:          s.id,
			Name:           p.Name,
			ArrivalTime:    int(p.ArrivalTime),
			BurstTime:      int(p.BurstTime),
			Priority:       p.Priority,
			State:          p.State,
			StartTime:      int(p.StartTime),
			CompletionTime: int(p.CompletionTime),
			Waiting:        int(p.Waiting),
		})
	}

	run := runRow{
		RunID:      s.id,
		Algorithm:  snap.Algorithm,
		FinalState: snap.State,
		EndTime:    int(snap.Now),
	}
	if snap.Stats != nil {
		run.Completed = snap.Stats.Completed
		run.AvgWaiting = snap.Stats.AvgWaiting
		run.AvgTurnaround = snap.Stats.AvgTurnaround
	}
	s.dataRecorder.InsertData("runs", run)

	s.dataRecorder.Flush()
}

// Terminate releases the resources held by the simulation.
func (s *Simulation) Terminate() {
	if s.dataRecorder != nil {
		s.dataRecorder.Close()
	}
}
