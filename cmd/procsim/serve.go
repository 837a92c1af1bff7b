package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/schedlab/procsim/sched"
	"github.com/schedlab/procsim/simulation"
)

var serveCmd = &cobra.Command{
	Use:   "serve [process list csv]",
	Short: "Serve an interactive run over HTTP",
	Long: `Serve starts the monitoring server and waits for control ` +
		`commands (start, pause, step, ...) and process submissions over ` +
		`its API or from the built-in dashboard. An optional CSV process ` +
		`list seeds the run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0,
		"port of the monitoring server (default from PROCSIM_MONITOR_PORT, "+
			"else random)")
	serveCmd.Flags().Bool("open", false,
		"open the dashboard in a browser")
	serveCmd.Flags().Float64("speed", 1,
		"initial playback speed multiplier")
	serveCmd.Flags().String("output", "",
		"file name for the results database (without extension)")
	serveCmd.Flags().Bool("no-record", false,
		"do not write a results database")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	algo, quantum, err := algorithmFromFlags(cmd)
	if err != nil {
		return err
	}

	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = envInt("PROCSIM_MONITOR_PORT", 0)
	}

	builder := simulation.MakeBuilder().
		WithAlgorithm(algo).
		WithQuantum(quantum)
	if port > 0 {
		builder = builder.WithMonitorPort(port)
	}

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

	if speed, _ := cmd.Flags().GetFloat64("speed"); speed != 1 {
		if err := s.Controller().SetSpeed(speed); err != nil {
			return err
		}
	}

	if len(args) == 1 {
		if err := seedProcesses(s, args[0]); err != nil {
			return err
		}
	}

	url := s.Monitor().StartServer()

	if open, _ := cmd.Flags().GetBool("open"); open {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "could not open browser: %s\n", err)
		}
	}

	// Record whatever has finished when the user interrupts the server.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs

	s.RecordResults()
	s.Terminate()
	atexit.Exit(0)

	return nil
}

func seedProcesses(s *simulation.Simulation, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	procs, err := sched.ReadProcessesCSV(file)
	if err != nil {
		return err
	}

	for _, p := range procs {
		if err := s.Scheduler().Add(p); err != nil {
			return err
		}
	}

	return nil
}
