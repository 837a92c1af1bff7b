package sched

import "log"

// A LogHook is a hook that records information from the simulation.
type LogHook interface {
	Hook
}

// LogHookBase provides the common logic for all LogHooks.
type LogHookBase struct {
	*log.Logger
}

// TickLogger is a hook that prints the scheduling decision of every tick and
// every process state transition.
type TickLogger struct {
	LogHookBase
}

// NewTickLogger returns a TickLogger that writes into the given logger.
func NewTickLogger(logger *log.Logger) *TickLogger {
	h := new(TickLogger)
	h.Logger = logger
	return h
}

// Func writes the tick information into the logger.
func (h *TickLogger) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosAfterTick:
		res, ok := ctx.Item.(TickResult)
		if !ok {
			return
		}

		if res.Ran == nil {
			h.Printf("t=%d, idle", res.Time)
			return
		}

		h.Printf("t=%d, %s runs, remaining %d",
			res.Time, res.Ran.Name, res.Ran.Remaining)
	case HookPosStateChange:
		sc, ok := ctx.Detail.(*StateChange)
		if !ok {
			return
		}

		h.Printf("t=%d, %s: %s -> %s", sc.Time, sc.Process.Name, sc.From, sc.To)
	}
}
