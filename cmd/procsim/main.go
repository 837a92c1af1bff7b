// Procsim simulates CPU scheduling algorithms tick by tick and reports the
// resulting timeline and statistics.
package main

import (
	"os"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
