package sched_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/schedlab/procsim/sched"
	"github.com/schedlab/procsim/timeline"
)

var _ = Describe("Round Robin", func() {
	It("should rotate with the quantum", func() {
		s, rec := runScenario(sched.AlgoRoundRobin, 2,
			proc("P1", 0, 5, 0),
			proc("P2", 0, 3, 0),
		)

		Expect(rec.Segments()).To(Equal([]timeline.Segment{
			seg("P1", 0, 2),
			seg("P2", 2, 4),
			seg("P1", 4, 6),
			seg("P2", 6, 7),
			seg("P1", 7, 8),
		}))

		for _, p := range s.Processes() {
			if p.Name == "P1" {
				Expect(p.CompletionTime).To(Equal(sched.Tick(8)))
			}
		}
	})

	It("should free the CPU as soon as a process completes", func() {
		_, rec := runScenario(sched.AlgoRoundRobin, 4,
			proc("P1", 0, 1, 0),
			proc("P2", 0, 2, 0),
		)

		Expect(rec.Segments()).To(Equal([]timeline.Segment{
			seg("P1", 0, 1),
			seg("P2", 1, 3),
		}))
	})

	It("should enqueue arrivals during a slice ahead of the preempted "+
		"process", func() {
		// P3 arrives at t=2, the same tick P1's quantum expires. P3 takes
		// its place in line before P1.
		_, rec := runScenario(sched.AlgoRoundRobin, 2,
			proc("P1", 0, 4, 0),
			proc("P2", 0, 2, 0),
			proc("P3", 2, 2, 0),
		)

		Expect(rec.Segments()).To(Equal([]timeline.Segment{
			seg("P1", 0, 2),
			seg("P2", 2, 4),
			seg("P3", 4, 6),
			seg("P1", 6, 8),
		}))
	})

	It("should give every ready process a slice within the fairness "+
		"window", func() {
		s, err := sched.NewScheduler(sched.AlgoRoundRobin, 2)
		Expect(err).ToNot(HaveOccurred())

		names := []string{"P1", "P2", "P3"}
		for _, name := range names {
			Expect(s.Add(proc(name, 0, 20, 0))).To(Succeed())
		}

		var ranPerTick []string
		s.AcceptHook(tickHook(func(ctx sched.HookCtx) {
			if ctx.Pos != sched.HookPosAfterTick {
				return
			}

			res := ctx.Item.(sched.TickResult)
			if res.Ran != nil {
				ranPerTick = append(ranPerTick, res.Ran.Name)
			}
		}))

		for i := 0; i < 30; i++ {
			s.AdvanceTick()
		}

		// With no arrivals, every window of quantum*3 ticks must contain
		// every process.
		window := 2 * len(names)
		for start := 0; start+window <= len(ranPerTick); start++ {
			seen := map[string]bool{}
			for _, name := range ranPerTick[start : start+window] {
				seen[name] = true
			}
			for _, name := range names {
				Expect(seen).To(HaveKey(name),
					"window starting at tick %d misses %s", start, name)
			}
		}
	})

	It("should reject a non-positive quantum", func() {
		_, err := sched.NewScheduler(sched.AlgoRoundRobin, 0)
		Expect(err).To(MatchError(sched.ErrInvalidQuantum))
	})
})
