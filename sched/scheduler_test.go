package sched

import (
	gomock "go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newTestScheduler(strategy Strategy) *Scheduler {
	return &Scheduler{
		algorithm: AlgoFCFS,
		quantum:   DefaultQuantum,
		strategy:  strategy,
		byName:    make(map[string]*Process),
	}
}

func mustProcess(name string, arrival, burst Tick, priority int) *Process {
	p, err := NewProcess(name, arrival, burst, priority)
	if err != nil {
		panic(err)
	}
	return p
}

var _ = Describe("Scheduler", func() {
	var (
		mockCtrl *gomock.Controller
		strategy *MockStrategy
		s        *Scheduler
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		strategy = NewMockStrategy(mockCtrl)
		s = newTestScheduler(strategy)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should keep a process in New until its arrival time", func() {
		p := mustProcess("P1", 1, 3, 0)
		Expect(s.Add(p)).To(Succeed())

		strategy.EXPECT().
			Select(Tick(0), gomock.Len(0), gomock.Nil()).
			Return(nil)
		s.AdvanceTick()

		Expect(p.State).To(Equal(StateNew))
		Expect(p.Waiting).To(Equal(Tick(0)))

		strategy.EXPECT().
			Select(Tick(1), []*Process{p}, gomock.Nil()).
			Return(p)
		s.AdvanceTick()

		Expect(p.State).To(Equal(StateRunning))
		Expect(p.StartTime).To(Equal(Tick(1)))
	})

	It("should run the selection and account waiting for the rest", func() {
		p1 := mustProcess("P1", 0, 3, 0)
		p2 := mustProcess("P2", 0, 3, 0)
		Expect(s.Add(p1)).To(Succeed())
		Expect(s.Add(p2)).To(Succeed())

		strategy.EXPECT().
			Select(Tick(0), []*Process{p1, p2}, gomock.Nil()).
			Return(p1)
		res := s.AdvanceTick()

		Expect(res.Ran).To(BeIdenticalTo(p1))
		Expect(p1.Remaining).To(Equal(Tick(2)))
		Expect(p1.State).To(Equal(StateRunning))
		Expect(p2.State).To(Equal(StateReady))
		Expect(p2.Waiting).To(Equal(Tick(1)))
		Expect(p1.Waiting).To(Equal(Tick(0)))
	})

	It("should leave the CPU idle on a nil selection", func() {
		p := mustProcess("P1", 0, 3, 0)
		Expect(s.Add(p)).To(Succeed())

		strategy.EXPECT().
			Select(Tick(0), []*Process{p}, gomock.Nil()).
			Return(nil)
		res := s.AdvanceTick()

		Expect(res.Ran).To(BeNil())
		Expect(s.Now()).To(Equal(Tick(1)))
		Expect(p.Waiting).To(Equal(Tick(1)))
	})

	It("should terminate a process when its burst completes", func() {
		p := mustProcess("P1", 0, 1, 0)
		Expect(s.Add(p)).To(Succeed())

		strategy.EXPECT().
			Select(Tick(0), []*Process{p}, gomock.Nil()).
			Return(p)
		res := s.AdvanceTick()

		Expect(p.State).To(Equal(StateTerminated))
		Expect(p.Remaining).To(Equal(Tick(0)))
		Expect(p.CompletionTime).To(Equal(Tick(1)))
		Expect(s.Running()).To(BeNil())
		Expect(res.Done).To(BeTrue())
		Expect(s.Done()).To(BeTrue())
	})

	It("should move the running process back to ready on preemption", func() {
		p1 := mustProcess("P1", 0, 3, 0)
		p2 := mustProcess("P2", 1, 1, 0)
		Expect(s.Add(p1)).To(Succeed())
		Expect(s.Add(p2)).To(Succeed())

		strategy.EXPECT().
			Select(Tick(0), []*Process{p1}, gomock.Nil()).
			Return(p1)
		s.AdvanceTick()

		strategy.EXPECT().
			Select(Tick(1), []*Process{p2}, p1).
			Return(p2)
		s.AdvanceTick()

		Expect(p1.State).To(Equal(StateReady))
		Expect(p1.Waiting).To(Equal(Tick(1)))
		Expect(p2.State).To(Equal(StateTerminated))
	})

	It("should order the ready set by arrival, then submission", func() {
		p1 := mustProcess("P1", 2, 3, 0)
		p2 := mustProcess("P2", 1, 3, 0)
		p3 := mustProcess("P3", 1, 3, 0)
		Expect(s.Add(p1)).To(Succeed())
		Expect(s.Add(p2)).To(Succeed())
		Expect(s.Add(p3)).To(Succeed())

		strategy.EXPECT().
			Select(Tick(0), gomock.Len(0), gomock.Nil()).
			Return(nil)
		strategy.EXPECT().
			Select(Tick(1), []*Process{p2, p3}, gomock.Nil()).
			Return(nil)
		strategy.EXPECT().
			Select(Tick(2), []*Process{p2, p3, p1}, gomock.Nil()).
			Return(nil)

		s.AdvanceTick()
		s.AdvanceTick()
		s.AdvanceTick()
	})

	It("should reject duplicate names among non-terminated processes",
		func() {
			p1 := mustProcess("P1", 0, 1, 0)
			Expect(s.Add(p1)).To(Succeed())

			err := s.Add(mustProcess("P1", 0, 2, 0))
			Expect(err).To(MatchError(ErrDuplicateName))

			strategy.EXPECT().
				Select(Tick(0), []*Process{p1}, gomock.Nil()).
				Return(p1)
			s.AdvanceTick()

			// P1 terminated, so the name is free again.
			Expect(s.Add(mustProcess("P1", 1, 2, 0))).To(Succeed())
		})

	It("should admit a late submission at the next tick boundary", func() {
		strategy.EXPECT().
			Select(gomock.Any(), gomock.Len(0), gomock.Nil()).
			Return(nil).Times(3)
		s.AdvanceTick()
		s.AdvanceTick()
		s.AdvanceTick()

		// Arrival time lies in the past; the process still only becomes
		// ready at the next boundary.
		p := mustProcess("P9", 1, 2, 0)
		Expect(s.Add(p)).To(Succeed())
		Expect(p.State).To(Equal(StateNew))

		strategy.EXPECT().
			Select(Tick(3), []*Process{p}, gomock.Nil()).
			Return(nil)
		s.AdvanceTick()

		Expect(p.State).To(Equal(StateReady))
	})

	It("should create live submissions arriving now", func() {
		strategy.EXPECT().
			Select(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).Times(2)
		s.AdvanceTick()
		s.AdvanceTick()

		p, err := s.AddLive("P1", 4, 7)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.ArrivalTime).To(Equal(Tick(2)))
		Expect(p.Priority).To(Equal(7))
	})

	It("should invoke hooks around the tick", func() {
		p := mustProcess("P1", 0, 2, 0)
		Expect(s.Add(p)).To(Succeed())

		var positions []*HookPos
		hook := NewMockHook(mockCtrl)
		hook.EXPECT().
			Func(gomock.Any()).
			Do(func(ctx HookCtx) {
				positions = append(positions, ctx.Pos)
			}).
			AnyTimes()
		s.AcceptHook(hook)

		strategy.EXPECT().
			Select(Tick(0), []*Process{p}, gomock.Nil()).
			Return(p)
		s.AdvanceTick()

		Expect(positions).To(Equal([]*HookPos{
			HookPosBeforeTick,
			HookPosStateChange, // New -> Ready
			HookPosStateChange, // Ready -> Running
			HookPosAfterTick,
		}))
	})

	It("should restore processes and time on reset", func() {
		p := mustProcess("P1", 0, 1, 0)
		Expect(s.Add(p)).To(Succeed())

		strategy.EXPECT().
			Select(Tick(0), []*Process{p}, gomock.Nil()).
			Return(p)
		s.AdvanceTick()
		Expect(s.Done()).To(BeTrue())

		s.Reset()

		Expect(s.Now()).To(Equal(Tick(0)))
		Expect(p.State).To(Equal(StateNew))
		Expect(p.Remaining).To(Equal(Tick(1)))
		Expect(p.StartTime).To(Equal(Tick(-1)))
		Expect(p.CompletionTime).To(Equal(Tick(-1)))
		Expect(p.Waiting).To(Equal(Tick(0)))
	})
})
