package sched

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadProcessesCSV parses a process list from CSV rows with the columns
// name, arrival_time, burst_time, priority. The priority column may be
// omitted for policies that ignore it. A header row, recognized by a first
// cell naming the column, is skipped when present. Any invalid row aborts the
// import.
func ReadProcessesCSV(r io.Reader) ([]*Process, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading process list: %w", err)
	}

	var procs []*Process
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}

		p, err := parseProcessRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		procs = append(procs, p)
	}

	return procs, nil
}

func parseProcessRow(row []string) (*Process, error) {
	if len(row) < 3 {
		return nil, fmt.Errorf(
			"expected name,arrival_time,burst_time[,priority], got %d columns",
			len(row))
	}

	name := strings.TrimSpace(row[0])
	if name == "" {
		return nil, fmt.Errorf("empty process name")
	}

	arrival, err := strconv.Atoi(strings.TrimSpace(row[1]))
	if err != nil {
		return nil, fmt.Errorf("arrival time %q is not an integer", row[1])
	}

	burst, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return nil, fmt.Errorf("burst time %q is not an integer", row[2])
	}

	priority := 0
	if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
		priority, err = strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil {
			return nil, fmt.Errorf("priority %q is not an integer", row[3])
		}
	}

	return NewProcess(name, Tick(arrival), Tick(burst), priority)
}

// isHeaderRow only accepts a header whose first cell names the column, so a
// malformed data row aborts the import instead of being dropped.
func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(row[0])) {
	case "name", "process", "process_name":
		return true
	}

	return false
}
