// Package monitoring serves an HTTP control surface for a warp engine: pause,
// resume, speed control, timer inspection and process resources.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/timewarp/monitoring/web"
	"github.com/sarchlab/timewarp/sim/id"
	"github.com/sarchlab/timewarp/sim/timing"
	"github.com/sarchlab/timewarp/tracing"
	"github.com/sarchlab/timewarp/warp"
)

// Controller is the engine surface the monitor drives.
type Controller interface {
	Pause()
	Resume()
	TogglePause() bool
	SetSpeed(f float64) float64
	FasterSpeed() float64
	SlowerSpeed() float64
	ResetSpeed() float64
	Status() warp.Status
	Timers() []warp.TimerInfo
	Timer(id timing.TimerID) (warp.TimerInfo, bool)
}

// StatsSource provides timer counters.
type StatsSource interface {
	Stats() tracing.Stats
}

// Monitor turns an engine into a server that allows external control.
type Monitor struct {
	engine     Controller
	executor   timing.Executor
	stats      StatsSource
	portNumber int
	log        zerolog.Logger

	server *http.Server
	addr   net.Addr

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
	progressIDs      id.Generator
}

// NewMonitor creates a Monitor that runs every engine call through executor,
// so that the engine is only touched on its loop goroutine.
func NewMonitor(engine Controller, executor timing.Executor) *Monitor {
	return &Monitor{
		engine:      engine,
		executor:    executor,
		log:         zerolog.Nop(),
		progressIDs: id.NewPrefixedGenerator("progress-"),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithStats sets where the /api/stats counters come from.
func (m *Monitor) WithStats(stats StatsSource) *Monitor {
	m.stats = stats
	return m
}

// WithLogger sets the logger.
func (m *Monitor) WithLogger(log zerolog.Logger) *Monitor {
	m.log = log
	return m
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.progressIDs.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the router serving the control API and the web page.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", m.status).Methods(http.MethodGet)
	api.HandleFunc("/pause", m.pause).Methods(http.MethodPost)
	api.HandleFunc("/resume", m.resume).Methods(http.MethodPost)
	api.HandleFunc("/continue", m.resume).Methods(http.MethodPost)
	api.HandleFunc("/toggle", m.toggle).Methods(http.MethodPost)
	api.HandleFunc("/speed", m.speed).Methods(http.MethodGet)
	api.HandleFunc("/speed/faster", m.fasterSpeed).Methods(http.MethodPost)
	api.HandleFunc("/speed/slower", m.slowerSpeed).Methods(http.MethodPost)
	api.HandleFunc("/speed/reset", m.resetSpeed).Methods(http.MethodPost)
	api.HandleFunc("/speed/{value}", m.setSpeed).Methods(http.MethodPost)
	api.HandleFunc("/timers", m.listTimers).Methods(http.MethodGet)
	api.HandleFunc("/timer/{id}", m.timerDetails).Methods(http.MethodGet)
	api.HandleFunc("/stats", m.listStats).Methods(http.MethodGet)
	api.HandleFunc("/progress", m.listProgressBars).Methods(http.MethodGet)
	api.HandleFunc("/resource", m.listResources).Methods(http.MethodGet)
	api.HandleFunc("/profile", m.collectProfile).Methods(http.MethodGet)

	r.PathPrefix("/").
		MatcherFunc(notAPI).
		Handler(http.FileServer(web.GetAssets()))

	return r
}

// notAPI keeps the page route off API paths, so that a method mismatch on
// an API route answers 405 instead of falling through to the file server.
func notAPI(r *http.Request, _ *mux.RouteMatch) bool {
	return r.URL.Path != "/api" && !strings.HasPrefix(r.URL.Path, "/api/")
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", fmt.Errorf("start monitor: %w", err)
	}

	m.addr = listener.Addr()
	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring timers with %s\n", url)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error().Err(err).Msg("monitor stopped")
		}
	}()

	return url, nil
}

// Shutdown stops the server started by StartServer.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

// do runs fn on the engine's loop and reports loop failures to the client.
func (m *Monitor) do(w http.ResponseWriter, r *http.Request, fn func()) bool {
	err := m.executor.Call(r.Context(), fn)
	if err != nil {
		m.log.Warn().Err(err).Str("path", r.URL.Path).Msg("engine call failed")
		http.Error(w, err.Error(), http.StatusServiceUnavailable)

		return false
	}

	return true
}

func (m *Monitor) status(w http.ResponseWriter, r *http.Request) {
	var status warp.Status
	if m.do(w, r, func() { status = m.engine.Status() }) {
		m.writeJSON(w, status)
	}
}

func (m *Monitor) control(
	w http.ResponseWriter,
	r *http.Request,
	action func(),
) {
	var status warp.Status

	ok := m.do(w, r, func() {
		action()
		status = m.engine.Status()
	})
	if ok {
		m.writeJSON(w, status)
	}
}

func (m *Monitor) pause(w http.ResponseWriter, r *http.Request) {
	m.control(w, r, m.engine.Pause)
}

func (m *Monitor) resume(w http.ResponseWriter, r *http.Request) {
	m.control(w, r, m.engine.Resume)
}

func (m *Monitor) toggle(w http.ResponseWriter, r *http.Request) {
	m.control(w, r, func() { m.engine.TogglePause() })
}

type speedRsp struct {
	Speed float64 `json:"speed"`
}

func (m *Monitor) speed(w http.ResponseWriter, r *http.Request) {
	var status warp.Status
	if m.do(w, r, func() { status = m.engine.Status() }) {
		m.writeJSON(w, speedRsp{Speed: status.Speed})
	}
}

func (m *Monitor) setSpeed(w http.ResponseWriter, r *http.Request) {
	value := mux.Vars(r)["value"]

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid speed %q", value),
			http.StatusBadRequest)
		return
	}

	m.control(w, r, func() { m.engine.SetSpeed(f) })
}

func (m *Monitor) fasterSpeed(w http.ResponseWriter, r *http.Request) {
	m.control(w, r, func() { m.engine.FasterSpeed() })
}

func (m *Monitor) slowerSpeed(w http.ResponseWriter, r *http.Request) {
	m.control(w, r, func() { m.engine.SlowerSpeed() })
}

func (m *Monitor) resetSpeed(w http.ResponseWriter, r *http.Request) {
	m.control(w, r, func() { m.engine.ResetSpeed() })
}

func (m *Monitor) listTimers(w http.ResponseWriter, r *http.Request) {
	var timers []warp.TimerInfo
	if m.do(w, r, func() { timers = m.engine.Timers() }) {
		m.writeJSON(w, timers)
	}
}

func (m *Monitor) timerDetails(w http.ResponseWriter, r *http.Request) {
	timerID := timing.TimerID(mux.Vars(r)["id"])

	var (
		info  warp.TimerInfo
		found bool
	)

	if !m.do(w, r, func() { info, found = m.engine.Timer(timerID) }) {
		return
	}

	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Timer not found"))
		m.dieOnErr(err)

		return
	}

	detail := newTimerDetail(info)

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&detail)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	m.dieOnErr(err)
}

// timerDetail is the flat view of a timer handed to the serializer.
type timerDetail struct {
	ID             string
	Kind           string
	Requested      string
	Armed          bool
	NativeHandle   string
	NativeDelay    string
	ArmedSpeed     float64
	ExpectedFireAt string
	Remaining      string
	Fired          uint64
	NumArgs        int
}

func newTimerDetail(info warp.TimerInfo) timerDetail {
	d := timerDetail{
		ID:           string(info.ID),
		Kind:         info.Kind.String(),
		Requested:    info.Requested.String(),
		Armed:        info.Armed,
		NativeHandle: string(info.NativeHandle),
		NativeDelay:  info.NativeDelay.String(),
		ArmedSpeed:   info.ArmedSpeed,
		Fired:        info.Fired,
		NumArgs:      info.NumArgs,
	}

	if !info.ExpectedFireAt.IsZero() {
		d.ExpectedFireAt = info.ExpectedFireAt.Format(time.RFC3339Nano)
	}

	if info.Snapshot != nil {
		d.Remaining = info.Snapshot.Remaining.String()
	}

	return d
}

func (m *Monitor) listStats(w http.ResponseWriter, _ *http.Request) {
	if m.stats == nil {
		http.Error(w, "no stats collected", http.StatusNotFound)
		return
	}

	m.writeJSON(w, m.stats.Stats())
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Snapshot())
	}
	m.progressBarsLock.Unlock()

	m.writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	m.dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	m.dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	m.dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	m.writeJSON(w, rsp)
}

// maxProfileDuration caps the seconds parameter of the profile endpoint.
const maxProfileDuration = 30 * time.Second

// profileDuration reads the seconds parameter. It defaults to one second and
// is capped at maxProfileDuration.
func profileDuration(r *http.Request) (time.Duration, error) {
	s := r.URL.Query().Get("seconds")
	if s == "" {
		return time.Second, nil
	}

	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil || !(seconds > 0) {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	if seconds >= maxProfileDuration.Seconds() {
		return maxProfileDuration, nil
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration, err := profileDuration(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	buf := bytes.NewBuffer(nil)

	err = pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	select {
	case <-time.After(duration):
	case <-r.Context().Done():
	}

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	m.dieOnErr(err)

	m.writeJSON(w, prof)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(v)
	m.dieOnErr(err)
}

func (m *Monitor) dieOnErr(err error) {
	if err != nil {
		m.log.Panic().Err(err).Msg("monitor handler failed")
	}
}
