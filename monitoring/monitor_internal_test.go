package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/sarchlab/timewarp/sim/timing"
	"github.com/sarchlab/timewarp/tracing"
	"github.com/sarchlab/timewarp/warp"
)

var _ = Describe("Monitor", func() {
	var (
		loop    *timing.ManualLoop
		engine  *warp.Engine
		stats   *tracing.StatsTracer
		m       *Monitor
		handler http.Handler
	)

	BeforeEach(func() {
		loop = timing.NewManualLoop(time.Unix(0, 0))
		engine = warp.MakeBuilder().
			WithHost(loop).
			WithLogger(zerolog.Nop()).
			Build()
		stats = tracing.NewStatsTracer(nil)
		tracing.CollectTrace(engine, stats)

		m = NewMonitor(engine, loop).WithStats(stats)
		handler = m.Handler()
	})

	serve := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

		return rec
	}

	decodeStatus := func(rec *httptest.ResponseRecorder) warp.Status {
		Expect(rec.Code).To(Equal(http.StatusOK))

		var status warp.Status
		Expect(json.Unmarshal(rec.Body.Bytes(), &status)).To(Succeed())

		return status
	}

	It("should report status", func() {
		engine.ScheduleOnce(func(...any) {}, time.Second)

		status := decodeStatus(serve(http.MethodGet, "/api/status"))

		Expect(status.Speed).To(Equal(1.0))
		Expect(status.NumTimers).To(Equal(1))
	})

	It("should pause and resume", func() {
		Expect(decodeStatus(serve(http.MethodPost, "/api/pause")).Paused).
			To(BeTrue())
		Expect(engine.IsPaused()).To(BeTrue())

		Expect(decodeStatus(serve(http.MethodPost, "/api/continue")).Paused).
			To(BeFalse())

		Expect(decodeStatus(serve(http.MethodPost, "/api/toggle")).Paused).
			To(BeTrue())

		Expect(decodeStatus(serve(http.MethodPost, "/api/resume")).Paused).
			To(BeFalse())
	})

	It("should reject control with GET", func() {
		Expect(serve(http.MethodGet, "/api/pause").Code).
			To(Equal(http.StatusMethodNotAllowed))
		Expect(serve(http.MethodGet, "/api/speed/faster").Code).
			To(Equal(http.StatusMethodNotAllowed))
		Expect(serve(http.MethodPost, "/api/status").Code).
			To(Equal(http.StatusMethodNotAllowed))
		Expect(engine.IsPaused()).To(BeFalse())
	})

	It("should not serve the page under the API prefix", func() {
		Expect(serve(http.MethodGet, "/api/rewind").Code).
			To(Equal(http.StatusNotFound))

		rec := serve(http.MethodGet, "/api")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).NotTo(ContainSubstring("<!DOCTYPE html>"))
	})

	It("should control the speed", func() {
		Expect(decodeStatus(serve(http.MethodPost, "/api/speed/2.5")).Speed).
			To(Equal(2.5))
		Expect(decodeStatus(serve(http.MethodPost, "/api/speed/faster")).Speed).
			To(Equal(2.6))
		Expect(decodeStatus(serve(http.MethodPost, "/api/speed/slower")).Speed).
			To(Equal(2.5))
		Expect(decodeStatus(serve(http.MethodPost, "/api/speed/99")).Speed).
			To(Equal(4.0))
		Expect(decodeStatus(serve(http.MethodPost, "/api/speed/reset")).Speed).
			To(Equal(1.0))

		rec := serve(http.MethodGet, "/api/speed")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"speed":1}`))
	})

	It("should reject a malformed speed", func() {
		rec := serve(http.MethodPost, "/api/speed/fast")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(engine.Speed()).To(Equal(1.0))
	})

	It("should list timers", func() {
		engine.ScheduleOnce(func(...any) {}, time.Second)
		engine.ScheduleRepeating(func(...any) {}, time.Second)

		rec := serve(http.MethodGet, "/api/timers")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var timers []map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &timers)).To(Succeed())
		Expect(timers).To(HaveLen(2))
		Expect(timers[0]["id"]).To(Equal("once-1"))
		Expect(timers[1]["kind"]).To(Equal("repeating"))
	})

	It("should show timer details", func() {
		id := engine.ScheduleOnce(func(...any) {}, time.Second)

		rec := serve(http.MethodGet, "/api/timer/"+string(id))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))

		Expect(serve(http.MethodGet, "/api/timer/once-99").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should report stats", func() {
		engine.ScheduleOnce(func(...any) {}, time.Second)
		loop.Advance(time.Second)

		rec := serve(http.MethodGet, "/api/stats")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var s tracing.Stats
		Expect(json.Unmarshal(rec.Body.Bytes(), &s)).To(Succeed())
		Expect(s.Fires).To(Equal(uint64(1)))
	})

	It("should report missing stats", func() {
		handler = NewMonitor(engine, loop).Handler()

		Expect(serve(http.MethodGet, "/api/stats").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("countdown", 10)
		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)

		rec := serve(http.MethodGet, "/api/progress")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var bars []ProgressSnapshot
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Finished).To(Equal(uint64(2)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)
		Expect(serve(http.MethodGet, "/api/progress").Body.String()).
			To(MatchJSON(`[]`))
	})

	It("should report resources", func() {
		rec := serve(http.MethodGet, "/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("memory_size"))
	})

	It("should serve the control page", func() {
		rec := serve(http.MethodGet, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("<!DOCTYPE html>"))
	})

	It("should fail when the loop is stopped", func() {
		serial := timing.NewSerialLoop()
		serial.Close()
		handler = NewMonitor(engine, serial).Handler()

		Expect(serve(http.MethodPost, "/api/pause").Code).
			To(Equal(http.StatusServiceUnavailable))
		Expect(engine.IsPaused()).To(BeFalse())
	})

	It("should cap the profile duration", func() {
		durationOf := func(query string) (time.Duration, error) {
			return profileDuration(
				httptest.NewRequest(http.MethodGet, "/api/profile"+query, nil))
		}

		Expect(durationOf("")).To(Equal(time.Second))
		Expect(durationOf("?seconds=0.5")).To(Equal(500 * time.Millisecond))
		Expect(durationOf("?seconds=30")).To(Equal(maxProfileDuration))
		Expect(durationOf("?seconds=3600")).To(Equal(maxProfileDuration))
		Expect(durationOf("?seconds=1e300")).To(Equal(maxProfileDuration))

		for _, bad := range []string{"?seconds=0", "?seconds=-1",
			"?seconds=NaN", "?seconds=soon"} {
			_, err := durationOf(bad)
			Expect(err).To(HaveOccurred())
		}

		Expect(serve(http.MethodGet, "/api/profile?seconds=-1").Code).
			To(Equal(http.StatusBadRequest))
	})

	It("should report handler failures through its logger", func() {
		buf := new(bytes.Buffer)
		m.WithLogger(zerolog.New(buf))

		Expect(func() { m.dieOnErr(errors.New("disk full")) }).To(Panic())
		Expect(buf.String()).To(ContainSubstring("disk full"))
		Expect(buf.String()).To(ContainSubstring(`"level":"panic"`))

		Expect(func() { m.dieOnErr(nil) }).NotTo(Panic())
	})

	It("should replace reserved ports with a random one", func() {
		Expect(NewMonitor(engine, loop).WithPortNumber(80).portNumber).
			To(Equal(0))
		Expect(NewMonitor(engine, loop).WithPortNumber(8080).portNumber).
			To(Equal(8080))
	})
})
