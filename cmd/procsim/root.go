package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use: "procsim",
	Short: "Procsim simulates CPU scheduling algorithms for pedagogical " +
		"visualization.",
	Long: `Procsim runs a set of processes through one of six scheduling ` +
		`policies (FCFS, SJF, SRTF, priority, preemptive priority, round ` +
		`robin), one simulated time unit per tick, and reports the Gantt ` +
		`timeline and the average waiting and turnaround times.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env files are fine; flags and built-in defaults apply.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("algorithm", "a", "fcfs",
		"scheduling policy: fcfs, sjf, srtf, priority, "+
			"priority-preemptive, or rr")
	rootCmd.PersistentFlags().IntP("quantum", "q", 2,
		"round robin time slice in ticks")
}

// envInt reads an integer environment variable, falling back to the given
// default when unset or malformed.
func envInt(name string, fallback int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}

	return n
}
