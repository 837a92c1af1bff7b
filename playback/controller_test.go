package playback_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/schedlab/procsim/playback"
	"github.com/schedlab/procsim/sched"
	"github.com/schedlab/procsim/timeline"
)

func newRun(procs ...*sched.Process) *playback.Controller {
	s, err := sched.NewScheduler(sched.AlgoFCFS, sched.DefaultQuantum)
	Expect(err).ToNot(HaveOccurred())

	for _, p := range procs {
		Expect(s.Add(p)).To(Succeed())
	}

	return playback.NewController(s, timeline.NewRecorder()).
		WithBaseDelay(0)
}

func mustProcess(
	name string,
	arrival, burst sched.Tick,
) *sched.Process {
	p, err := sched.NewProcess(name, arrival, burst, 0)
	Expect(err).ToNot(HaveOccurred())
	return p
}

var _ = Describe("Controller", func() {
	var c *playback.Controller

	BeforeEach(func() {
		c = newRun(
			mustProcess("P1", 0, 5),
			mustProcess("P2", 1, 3),
			mustProcess("P3", 2, 1),
		)
	})

	Context("when idle", func() {
		It("should be idle before the run starts", func() {
			Expect(c.State()).To(Equal(playback.Idle))
		})

		It("should reject pause, resume, and stop", func() {
			Expect(c.Pause()).To(MatchError(playback.ErrRejected))
			Expect(c.Resume()).To(MatchError(playback.ErrRejected))
			Expect(c.Stop()).To(MatchError(playback.ErrRejected))
		})

		It("should step one tick and stay paused", func() {
			Expect(c.Step()).To(Succeed())

			snap := c.Snapshot()
			Expect(c.State()).To(Equal(playback.Paused))
			Expect(snap.Now).To(Equal(sched.Tick(1)))
			Expect(snap.Segments).To(Equal([]timeline.Segment{
				{Process: "P1", Start: 0, End: 1},
			}))
		})
	})

	Context("when running to completion", func() {
		It("should complete with final statistics", func() {
			Expect(c.RunAll()).To(Succeed())
			Expect(c.Wait()).To(Equal(playback.Completed))

			snap := c.Snapshot()
			Expect(snap.Now).To(Equal(sched.Tick(9)))
			Expect(snap.Segments).To(Equal([]timeline.Segment{
				{Process: "P1", Start: 0, End: 5},
				{Process: "P2", Start: 5, End: 8},
				{Process: "P3", Start: 8, End: 9},
			}))
			Expect(snap.Stats).ToNot(BeNil())
			Expect(snap.Stats.Completed).To(Equal(3))
			Expect(snap.Stats.AvgWaiting).To(BeNumerically("~", 10.0/3.0))
			Expect(snap.Stats.AvgTurnaround).To(BeNumerically("~", 19.0/3.0))
		})

		It("should reject every command after completion except reset", func() {
			Expect(c.RunAll()).To(Succeed())
			c.Wait()

			Expect(c.Start()).To(MatchError(playback.ErrRejected))
			Expect(c.Pause()).To(MatchError(playback.ErrRejected))
			Expect(c.Resume()).To(MatchError(playback.ErrRejected))
			Expect(c.Stop()).To(MatchError(playback.ErrRejected))
			Expect(c.Step()).To(MatchError(playback.ErrRejected))
			Expect(c.RunAll()).To(MatchError(playback.ErrRejected))
			Expect(c.Add(mustProcess("P4", 0, 1))).
				To(MatchError(playback.ErrRejected))
			Expect(c.Reset()).To(Succeed())
		})

		It("should complete immediately when no work is pending", func() {
			empty := playback.NewController(
				mustScheduler(), timeline.NewRecorder()).WithBaseDelay(0)

			Expect(empty.Start()).To(Succeed())
			Expect(empty.State()).To(Equal(playback.Completed))
		})
	})

	Context("when pausing and resuming", func() {
		It("should freeze the clock while paused", func() {
			for i := 0; i < 3; i++ {
				Expect(c.Step()).To(Succeed())
			}
			frozen := c.Snapshot().Now

			time.Sleep(20 * time.Millisecond)

			Expect(c.Snapshot().Now).To(Equal(frozen))
		})

		It("should continue from the exact next tick", func() {
			Expect(c.Step()).To(Succeed())
			Expect(c.Step()).To(Succeed())
			Expect(c.Snapshot().Now).To(Equal(sched.Tick(2)))

			Expect(c.RunAll()).To(Succeed())
			Expect(c.Wait()).To(Equal(playback.Completed))
			Expect(c.Snapshot().Now).To(Equal(sched.Tick(9)))
		})

		It("should resume paced after pausing a run to completion", func() {
			long := newRun(mustProcess("P1", 0, 1<<30)).
				WithBaseDelay(50 * time.Millisecond)

			Expect(long.RunAll()).To(Succeed())
			Expect(long.Pause()).To(Succeed())
			resumedAt := long.Snapshot().Now

			Expect(long.Resume()).To(Succeed())

			// At 50ms per tick the clock barely moves; a run still in
			// fast-forward would race through thousands of ticks here.
			Consistently(func() sched.Tick {
				return long.Snapshot().Now
			}, "150ms").Should(BeNumerically("<", resumedAt+6))

			Expect(long.Stop()).To(Succeed())
		})

		It("should pause a started run at a tick boundary", func() {
			paced := newRun(mustProcess("P1", 0, 1000)).
				WithBaseDelay(time.Millisecond)

			Expect(paced.Start()).To(Succeed())
			Expect(paced.Pause()).To(Succeed())

			Eventually(paced.State).Should(Equal(playback.Paused))
			now := paced.Snapshot().Now
			Consistently(func() sched.Tick {
				return paced.Snapshot().Now
			}).Should(Equal(now))

			Expect(paced.Stop()).To(Succeed())
		})
	})

	Context("when stopping early", func() {
		It("should report statistics for finished processes only", func() {
			for i := 0; i < 6; i++ {
				Expect(c.Step()).To(Succeed())
			}

			Expect(c.Stop()).To(Succeed())

			snap := c.Snapshot()
			Expect(snap.State).To(Equal("stopped"))
			Expect(snap.Stats).ToNot(BeNil())
			Expect(snap.Stats.Completed).To(Equal(1))
		})

		It("should have undefined statistics when nothing finished", func() {
			Expect(c.Step()).To(Succeed())
			Expect(c.Stop()).To(Succeed())

			Expect(c.Snapshot().Stats).To(BeNil())
		})
	})

	Context("when changing speed", func() {
		It("should reject a non-positive multiplier", func() {
			Expect(c.SetSpeed(0)).To(MatchError(playback.ErrNonPositiveSpeed))
			Expect(c.SetSpeed(-1)).To(MatchError(playback.ErrNonPositiveSpeed))
		})

		It("should not change scheduling results", func() {
			Expect(c.SetSpeed(16)).To(Succeed())
			Expect(c.RunAll()).To(Succeed())
			c.Wait()
			fast := c.Snapshot()

			slow := newRun(
				mustProcess("P1", 0, 5),
				mustProcess("P2", 1, 3),
				mustProcess("P3", 2, 1),
			)
			Expect(slow.SetSpeed(0.5)).To(Succeed())
			Expect(slow.RunAll()).To(Succeed())
			slow.Wait()

			Expect(slow.Snapshot().Segments).To(Equal(fast.Segments))
			Expect(slow.Snapshot().Stats).To(Equal(fast.Stats))
		})
	})

	Context("when adding processes mid-run", func() {
		It("should admit a live process at the next tick boundary", func() {
			for i := 0; i < 3; i++ {
				Expect(c.Step()).To(Succeed())
			}

			p, err := c.AddLive("P4", 2, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(p.ArrivalTime).To(Equal(sched.Tick(3)))
			Expect(p.State).To(Equal(sched.StateNew))

			Expect(c.Step()).To(Succeed())
			Expect(p.State).To(Equal(sched.StateReady))
		})

		It("should reject a duplicate of an unfinished process", func() {
			err := c.Add(mustProcess("P1", 0, 2))
			Expect(err).To(MatchError(sched.ErrDuplicateName))
		})
	})

	Context("when resetting", func() {
		It("should replay the same scenario identically", func() {
			Expect(c.RunAll()).To(Succeed())
			c.Wait()
			first := c.Snapshot()

			Expect(c.Reset()).To(Succeed())
			Expect(c.State()).To(Equal(playback.Idle))
			Expect(c.Snapshot().Now).To(Equal(sched.Tick(0)))
			Expect(c.Snapshot().Segments).To(BeEmpty())

			Expect(c.RunAll()).To(Succeed())
			c.Wait()
			second := c.Snapshot()

			Expect(second.Segments).To(Equal(first.Segments))
			Expect(second.Stats).To(Equal(first.Stats))
		})
	})
})

func mustScheduler() *sched.Scheduler {
	s, err := sched.NewScheduler(sched.AlgoFCFS, sched.DefaultQuantum)
	Expect(err).ToNot(HaveOccurred())
	return s
}
