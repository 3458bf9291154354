package tracing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/timewarp/sim/timing"
)

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		recorder *MockDataRecorder
		loop     *timing.ManualLoop
		tracer   *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockDataRecorder(mockCtrl)
		loop = timing.NewManualLoop(time.Unix(100, 0))

		recorder.EXPECT().CreateTable(TaskTableName, TaskTableEntry{})
		recorder.EXPECT().
			CreateTable(MilestoneTableName, MilestoneTableEntry{})

		tracer = NewDBTracer(loop, recorder)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should panic on invalid tasks", func() {
		Expect(func() { tracer.StartTask(Task{}) }).To(Panic())
		Expect(func() {
			tracer.StartTask(Task{ID: "once-1", Kind: "once"})
		}).To(Panic())
	})

	It("should write a task when it ends", func() {
		tracer.StartTask(Task{
			ID: "once-1", Kind: "once", What: "1s", Location: "warp",
		})
		Expect(tracer.NumInflightTasks()).To(Equal(1))

		loop.Advance(time.Second)

		recorder.EXPECT().InsertData(TaskTableName, TaskTableEntry{
			ID:        "once-1",
			Kind:      "once",
			What:      "1s",
			Location:  "warp",
			EndReason: "fired",
			StartTime: time.Unix(100, 0).UnixNano(),
			EndTime:   time.Unix(101, 0).UnixNano(),
		})

		tracer.EndTask(Task{ID: "once-1", What: "fired"})

		Expect(tracer.NumInflightTasks()).To(Equal(0))
	})

	It("should ignore tasks it never started", func() {
		tracer.EndTask(Task{ID: "once-9", What: "fired"})
	})

	It("should write milestones with the current time", func() {
		recorder.EXPECT().InsertData(MilestoneTableName, MilestoneTableEntry{
			ID:       "m1",
			TaskID:   "once-1",
			Kind:     "fire",
			What:     "fire",
			Location: "warp",
			Time:     time.Unix(100, 0).UnixNano(),
		})

		tracer.AddMilestone(Milestone{
			ID:       "m1",
			TaskID:   "once-1",
			Kind:     MilestoneKindFire,
			What:     "fire",
			Location: "warp",
		})
	})

	It("should write unfinished tasks when terminated", func() {
		tracer.StartTask(Task{
			ID: "repeat-1", Kind: "repeating", What: "1s", Location: "warp",
		})
		loop.Advance(3 * time.Second)

		recorder.EXPECT().InsertData(TaskTableName, TaskTableEntry{
			ID:        "repeat-1",
			Kind:      "repeating",
			What:      "1s",
			Location:  "warp",
			EndReason: "unfinished",
			StartTime: time.Unix(100, 0).UnixNano(),
			EndTime:   time.Unix(103, 0).UnixNano(),
		})
		recorder.EXPECT().Flush().Times(1)

		tracer.Terminate()
		tracer.Terminate()

		tracer.StartTask(Task{
			ID: "once-2", Kind: "once", What: "1s", Location: "warp",
		})
		tracer.AddMilestone(Milestone{ID: "m2", Kind: MilestoneKindControl})
		Expect(tracer.NumInflightTasks()).To(Equal(0))
	})
})
