package timeline

import (
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// CSVWriter stores execution segments into a CSV file, in the shape the Gantt
// chart consumes.
type CSVWriter struct {
	path string
	file *os.File

	segments   []Segment
	bufferSize int
}

// NewCSVWriter creates a CSVWriter. When path is empty a unique name is
// generated.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Init creates the CSV file and registers a flush at process exit. Init
// refuses to overwrite an existing file.
func (w *CSVWriter) Init() {
	if w.path == "" {
		w.path = "procsim_timeline_" + xid.New().String()
	}

	filename := w.path + ".csv"
	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	w.file = file

	fmt.Fprintf(file, "Process, Start, End\n")

	atexit.Register(func() {
		w.Flush()
		err := w.file.Close()
		if err != nil {
			panic(err)
		}
	})
}

// Write buffers a segment for writing.
func (w *CSVWriter) Write(segment Segment) {
	w.segments = append(w.segments, segment)
	if len(w.segments) >= w.bufferSize {
		w.Flush()
	}
}

// WriteAll buffers a whole record.
func (w *CSVWriter) WriteAll(segments []Segment) {
	for _, segment := range segments {
		w.Write(segment)
	}
}

// Flush writes the buffered segments to the file.
func (w *CSVWriter) Flush() {
	for _, segment := range w.segments {
		fmt.Fprintf(w.file, "%s, %d, %d\n",
			segment.Process, segment.Start, segment.End)
	}

	w.segments = nil
}
