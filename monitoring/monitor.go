// Package monitoring turns a simulation into a web server. It is the
// interface boundary the GUI shell talks to: control commands go in, run
// snapshots come out.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/schedlab/procsim/monitoring/web"
	"github.com/schedlab/procsim/playback"
	"github.com/schedlab/procsim/sched"
)

// Monitor exposes a playback controller over HTTP for external monitoring and
// control of the simulation.
type Monitor struct {
	controller *playback.Controller
	portNumber int
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterController registers the playback controller that drives the run.
func (m *Monitor) RegisterController(c *playback.Controller) {
	m.controller = c
}

// Handler returns the HTTP handler of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/state", m.state)
	r.HandleFunc("/api/start", m.command("start", func() error {
		return m.controller.Start()
	}))
	r.HandleFunc("/api/pause", m.command("pause", func() error {
		return m.controller.Pause()
	}))
	r.HandleFunc("/api/continue", m.command("continue", func() error {
		return m.controller.Resume()
	}))
	r.HandleFunc("/api/step", m.command("step", func() error {
		return m.controller.Step()
	}))
	r.HandleFunc("/api/stop", m.command("stop", func() error {
		return m.controller.Stop()
	}))
	r.HandleFunc("/api/run", m.command("run", func() error {
		return m.controller.RunAll()
	}))
	r.HandleFunc("/api/reset", m.command("reset", func() error {
		return m.controller.Reset()
	}))
	r.HandleFunc("/api/speed/{multiplier}", m.setSpeed)
	r.HandleFunc("/api/processes", m.processes)
	r.HandleFunc("/api/snapshot", m.snapshot)
	r.HandleFunc("/api/progress", m.progress)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.HandleFunc("/api/inspect", m.inspect)

	fServer := http.FileServer(web.GetAssets())
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server and returns the URL it
// serves on.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	handler := m.Handler()
	go func() {
		err := http.Serve(listener, handler)
		dieOnErr(err)
	}()

	return url
}

// command wraps a controller command as a handler. Wrong-state rejections map
// to 409, everything else succeeds with the resulting run state.
func (m *Monitor) command(
	name string,
	fn func() error,
) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		err := fn()
		if errors.Is(err, playback.ErrRejected) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		dieOnErr(err)

		m.state(w, nil)
	}
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"now\":%d}", m.controller.Snapshot().Now)
}

func (m *Monitor) state(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"state\":%q}", m.controller.State())
}

func (m *Monitor) setSpeed(w http.ResponseWriter, r *http.Request) {
	multiplier, err := strconv.ParseFloat(mux.Vars(r)["multiplier"], 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := m.controller.SetSpeed(multiplier); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.state(w, nil)
}

// submissionReq is one process submission from the GUI shell. Live
// submissions arrive at the current simulated time, whatever arrival_time
// says.
type submissionReq struct {
	Name        string `json:"name"`
	ArrivalTime int    `json:"arrival_time"`
	BurstTime   int    `json:"burst_time"`
	Priority    int    `json:"priority"`
	Live        bool   `json:"live,omitempty"`
}

func (m *Monitor) processes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, m.controller.Snapshot().Processes)
		return
	}

	req := submissionReq{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := m.submit(req)
	switch {
	case errors.Is(err, playback.ErrRejected):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.state(w, nil)
}

func (m *Monitor) submit(req submissionReq) error {
	if req.Live {
		_, err := m.controller.AddLive(
			req.Name, sched.Tick(req.BurstTime), req.Priority)
		return err
	}

	p, err := sched.NewProcess(
		req.Name, sched.Tick(req.ArrivalTime),
		sched.Tick(req.BurstTime), req.Priority)
	if err != nil {
		return err
	}

	return m.controller.Add(p)
}

func (m *Monitor) snapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.controller.Snapshot())
}

type progressRsp struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func (m *Monitor) progress(w http.ResponseWriter, _ *http.Request) {
	completed, total := m.controller.Progress()
	writeJSON(w, progressRsp{Completed: completed, Total: total})
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func (m *Monitor) inspect(w http.ResponseWriter, _ *http.Request) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.controller.Snapshot())
	serializer.SetMaxDepth(3)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	b, err := json.Marshal(v)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
