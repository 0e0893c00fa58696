// Package tracing records the per-access behavior of a cache model. A
// tracer attaches to a cache through its hooks and sees every access after
// the model has updated its state.
package tracing

import (
	"fmt"
	"log"

	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/sim"
)

// A Tracer observes completed cache accesses.
type Tracer interface {
	TraceAccess(info cache.AccessInfo)
}

// CollectTrace lets the tracer collect accesses from a cache.
func CollectTrace(domain sim.NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		h, ok := hook.(*traceHook)
		if ok && h.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has this tracer attached",
				domain.Name()))
		}
	}

	domain.AcceptHook(&traceHook{t: tracer})
}

// A traceHook forwards access hook invocations to a tracer.
type traceHook struct {
	t Tracer
}

func (h *traceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case cache.HookPosAccessHit,
		cache.HookPosAccessMiss,
		cache.HookPosAccessEvict:
		h.t.TraceAccess(ctx.Item.(cache.AccessInfo))
	}
}

// A logTracer echoes one line per access to a standard logger.
type logTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a tracer that writes accesses to the given logger.
// It backs the verbose mode of the command line.
func NewLogTracer(logger *log.Logger) Tracer {
	return &logTracer{logger: logger}
}

func (t *logTracer) TraceAccess(info cache.AccessInfo) {
	op := "L"
	if info.IsWrite {
		op = "S"
	}

	t.logger.Printf("%s 0x%x %s\n", op, info.BlockAddr, info.Result)
}
