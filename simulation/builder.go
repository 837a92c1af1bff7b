package simulation

import (
	"time"

	"github.com/rs/xid"

	"github.com/schedlab/procsim/datarecording"
	"github.com/schedlab/procsim/monitoring"
	"github.com/schedlab/procsim/playback"
	"github.com/schedlab/procsim/sched"
	"github.com/schedlab/procsim/timeline"
)

// Builder can be used to build a simulation. The zero value is not usable;
// start from MakeBuilder.
type Builder struct {
	algorithm      sched.Algorithm
	quantum        sched.Tick
	baseDelay      time.Duration
	recordingOn    bool
	outputFileName string
	monitorOn      bool
	monitorPort    int
}

// MakeBuilder creates a builder with FCFS, the default round robin quantum,
// one tick per second playback, and recording and monitoring enabled.
func MakeBuilder() Builder {
	return Builder{
		algorithm:   sched.AlgoFCFS,
		quantum:     sched.DefaultQuantum,
		baseDelay:   playback.DefaultBaseDelay,
		recordingOn: true,
		monitorOn:   true,
	}
}

// WithAlgorithm selects the scheduling policy of the run.
func (b Builder) WithAlgorithm(algo sched.Algorithm) Builder {
	b.algorithm = algo
	return b
}

// WithQuantum sets the round robin time slice.
func (b Builder) WithQuantum(q sched.Tick) Builder {
	b.quantum = q
	return b
}

// WithBaseDelay sets the wall-clock delay between ticks at speed 1.
func (b Builder) WithBaseDelay(d time.Duration) Builder {
	b.baseDelay = d
	return b
}

// WithoutDataRecording disables writing run results to SQLite.
func (b Builder) WithoutDataRecording() Builder {
	b.recordingOn = false
	b.outputFileName = ""
	return b
}

// WithOutputFileName sets a custom file name for the results database.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithoutMonitoring disables the monitoring server.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	b.monitorPort = 0
	return b
}

// WithMonitorPort sets the port of the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && b.outputFileName != "" {
		panic("output file name cannot be set when recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	scheduler, err := sched.NewScheduler(b.algorithm, b.quantum)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		id:        xid.New().String(),
		scheduler: scheduler,
		recorder:  timeline.NewRecorder(),
	}

	s.controller = playback.NewController(s.scheduler, s.recorder).
		WithBaseDelay(b.baseDelay)

	if b.recordingOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "procsim_run_" + s.id
		}

		s.dataRecorder = datarecording.New(outputPath)
		s.dataRecorder.CreateTable("segments", segmentRow{})
		s.dataRecorder.CreateTable("processes", processRow{})
		s.dataRecorder.CreateTable("runs", runRow{})
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterController(s.controller)
	}

	return s, nil
}
