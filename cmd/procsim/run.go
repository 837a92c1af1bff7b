package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/schedlab/procsim/playback"
	"github.com/schedlab/procsim/sched"
	"github.com/schedlab/procsim/simulation"
	"github.com/schedlab/procsim/timeline"
)

var runCmd = &cobra.Command{
	Use:   "run [process list csv]",
	Short: "Run a process list to completion and print the results",
	Long: `Run reads a CSV process list with the columns ` +
		`name,arrival_time,burst_time,priority, runs it to completion under ` +
		`the selected policy with no playback delay, and prints the Gantt ` +
		`timeline and the run statistics.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("output", "",
		"file name for the results database (without extension)")
	runCmd.Flags().Bool("no-record", false,
		"do not write a results database")
	runCmd.Flags().String("timeline-csv", "",
		"also export the timeline segments to this CSV file "+
			"(without extension)")
	runCmd.Flags().Bool("verbose", false,
		"log every tick and state transition")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	algo, quantum, err := algorithmFromFlags(cmd)
	if err != nil {
		return err
	}

	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	procs, err := sched.ReadProcessesCSV(file)
	if err != nil {
		return err
	}

	builder := simulation.MakeBuilder().
		WithAlgorithm(algo).
		WithQuantum(quantum).
		WithBaseDelay(0).
		WithoutMonitoring()

	noRecord, _ := cmd.Flags().GetBool("no-record")
	if noRecord {
		builder = builder.WithoutDataRecording()
	} else if output, _ := cmd.Flags().GetString("output"); output != "" {
		builder = builder.WithOutputFileName(output)
	}

	s, err := builder.Build()
	if err != nil {
		return err
	}
	defer s.Terminate()

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		s.Scheduler().AcceptHook(sched.NewTickLogger(
			newStderrLogger()))
	}

	for _, p := range procs {
		if err := s.Scheduler().Add(p); err != nil {
			return err
		}
	}

	if err := s.Controller().RunAll(); err != nil {
		return err
	}
	s.Controller().Wait()

	snap := s.Controller().Snapshot()
	printResults(cmd.OutOrStdout(), s.Scheduler().StrategyName(), snap)

	s.RecordResults()

	if path, _ := cmd.Flags().GetString("timeline-csv"); path != "" {
		w := timeline.NewCSVWriter(path)
		w.Init()
		w.WriteAll(snap.Segments)
		w.Flush()
	}

	return nil
}

func algorithmFromFlags(cmd *cobra.Command) (sched.Algorithm, sched.Tick, error) {
	algoName, _ := cmd.Flags().GetString("algorithm")
	algo, err := sched.ParseAlgorithm(algoName)
	if err != nil {
		return "", 0, err
	}

	quantum, _ := cmd.Flags().GetInt("quantum")
	if algo == sched.AlgoRoundRobin && quantum <= 0 {
		return "", 0, sched.ErrInvalidQuantum
	}

	return algo, sched.Tick(quantum), nil
}

func printResults(out io.Writer, policy string, snap playback.Snapshot) {
	fmt.Fprintf(out, "%s, %d ticks\n\n", policy, snap.Now)

	fmt.Fprintln(out, ganttLine(snap.Segments))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw,
		"name\tarrival\tburst\tpriority\tstart\tcompletion\twaiting\tstate")
	for _, p := range snap.Processes {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			p.Name, p.ArrivalTime, p.BurstTime, p.Priority,
			p.StartTime, p.CompletionTime, p.Waiting, p.State)
	}
	tw.Flush()

	if snap.Stats == nil {
		fmt.Fprintln(out, "\nstatistics: undefined (no process completed)")
		return
	}

	fmt.Fprintf(out,
		"\navg waiting: %.2f, avg turnaround: %.2f, completed: %d\n",
		snap.Stats.AvgWaiting, snap.Stats.AvgTurnaround,
		snap.Stats.Completed)
}

// ganttLine renders the segment list as one text line, e.g.
// |P1 0-5|P2 5-8|P3 8-9|.
func ganttLine(segments []timeline.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		fmt.Fprintf(&b, "|%s %d-%d", s.Process, s.Start, s.End)
	}
	b.WriteString("|")

	return b.String()
}

func newStderrLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}
