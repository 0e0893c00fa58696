package tracing

import (
	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/datarecording"
)

// accessTraceTable is the table name that DB tracers write into.
const accessTraceTable = "access_trace"

// accessTraceEntry represents one cache access in the database.
type accessTraceEntry struct {
	Seq         uint64
	Op          string
	BlockAddr   uint64
	SetID       int
	Tag         uint64
	Result      string
	VictimDirty bool
}

// A DBTracer stores every cache access into a data recorder.
type DBTracer struct {
	recorder datarecording.DataRecorder
}

// NewDBTracer creates a DBTracer writing into the given recorder.
func NewDBTracer(recorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{recorder: recorder}

	recorder.CreateTable(accessTraceTable, accessTraceEntry{})

	return t
}

// TraceAccess records one access.
func (t *DBTracer) TraceAccess(info cache.AccessInfo) {
	op := "L"
	if info.IsWrite {
		op = "S"
	}

	t.recorder.InsertData(accessTraceTable, accessTraceEntry{
		Seq:         info.Seq,
		Op:          op,
		BlockAddr:   info.BlockAddr,
		SetID:       info.SetID,
		Tag:         info.Tag,
		Result:      info.Result.String(),
		VictimDirty: info.VictimDirty,
	})
}
