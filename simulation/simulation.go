// Package simulation assembles a trace replay session: the cache model,
// the trace reader, and the optional recorder and monitor around them.
package simulation

import (
	"errors"
	"io"

	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/datarecording"
	"github.com/sarchlab/csim/monitoring"
	"github.com/sarchlab/csim/trace"
	"github.com/sarchlab/csim/tracing"
)

// runSummaryTable is the table that holds one row per completed replay.
const runSummaryTable = "run_summary"

// runSummaryEntry is the database row written when a replay completes.
type runSummaryEntry struct {
	RunID         string
	NumSets       int
	Associativity int
	BlockSize     uint64

	Hits           uint64
	Misses         uint64
	Evictions      uint64
	DirtyBytes     uint64
	DirtyEvictions uint64
}

// A Simulation provides the services required to replay a trace against a
// cache model.
type Simulation struct {
	id string

	cache        *cache.Cache
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Cache returns the cache under simulation.
func (s *Simulation) Cache() *cache.Cache {
	return s.cache
}

// DataRecorder returns the data recorder used in the simulation. It is nil
// when recording is disabled.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// RegisterCache registers the cache model that the simulation replays
// into. When recording is enabled, every access is traced into the
// database.
func (s *Simulation) RegisterCache(c *cache.Cache) {
	if s.cache != nil {
		panic("a cache is already registered")
	}

	s.cache = c

	if s.monitor != nil {
		s.monitor.RegisterCache(c)
	}

	if s.dataRecorder != nil {
		tracing.CollectTrace(c, tracing.NewDBTracer(s.dataRecorder))
	}
}

// AttachTracer attaches an additional access tracer to the registered
// cache.
func (s *Simulation) AttachTracer(t tracing.Tracer) {
	if s.cache == nil {
		panic("no cache registered")
	}

	tracing.CollectTrace(s.cache, t)
}

// Run replays the whole trace through the registered cache, one record at
// a time, in trace order. Only loads and stores are dispatched; records
// with any other operation letter are skipped. The returned stats are the
// final counters of the cache.
func (s *Simulation) Run(r *trace.Reader) (cache.Stats, error) {
	if s.cache == nil {
		panic("no cache registered")
	}

	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar("trace replay", 0)
		defer s.monitor.CompleteProgressBar(bar)
	}

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s.cache.Stats(), err
		}

		if !rec.Op.IsMemAccess() {
			continue
		}

		setID, tag := s.cache.Decompose(rec.Addr)
		s.cache.Access(setID, tag, rec.Op == trace.OpStore)

		if bar != nil {
			bar.IncrementFinished(1)
		}
	}

	stats := s.cache.Stats()
	s.recordSummary(stats)

	return stats, nil
}

func (s *Simulation) recordSummary(stats cache.Stats) {
	if s.dataRecorder == nil {
		return
	}

	s.dataRecorder.InsertData(runSummaryTable, runSummaryEntry{
		RunID:          s.id,
		NumSets:        s.cache.NumSets(),
		Associativity:  s.cache.Associativity(),
		BlockSize:      s.cache.BlockSize(),
		Hits:           stats.Hits,
		Misses:         stats.Misses,
		Evictions:      stats.Evictions,
		DirtyBytes:     stats.DirtyBytes,
		DirtyEvictions: stats.DirtyEvictions,
	})
	s.dataRecorder.Flush()
}
