package tracing

import (
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/csim/cache"
)

// CSVTracerBackend is a tracer that stores accesses into a CSV file.
type CSVTracerBackend struct {
	path string
	file *os.File

	accesses   []cache.AccessInfo
	bufferSize int
}

// NewCSVTracerBackend creates a new CSVTracerBackend.
func NewCSVTracerBackend(path string) *CSVTracerBackend {
	return &CSVTracerBackend{
		path:       path,
		bufferSize: 1000,
	}
}

// Init creates the tracing csv file. If the file already exists, it will
// be overwritten.
func (t *CSVTracerBackend) Init() {
	file, err := os.Create(t.path)
	if err != nil {
		panic(err)
	}
	t.file = file

	fmt.Fprintf(file, "Seq, Op, BlockAddr, SetID, Tag, Result, VictimDirty\n")

	atexit.Register(func() {
		t.Flush()
		err := t.file.Close()
		if err != nil {
			panic(err)
		}
	})
}

// TraceAccess buffers one access for writing.
func (t *CSVTracerBackend) TraceAccess(info cache.AccessInfo) {
	t.accesses = append(t.accesses, info)
	if len(t.accesses) >= t.bufferSize {
		t.Flush()
	}
}

// Flush writes the buffered accesses to the CSV file.
func (t *CSVTracerBackend) Flush() {
	for _, info := range t.accesses {
		op := "L"
		if info.IsWrite {
			op = "S"
		}

		fmt.Fprintf(t.file, "%d, %s, 0x%x, %d, 0x%x, %s, %t\n",
			info.Seq,
			op,
			info.BlockAddr,
			info.SetID,
			info.Tag,
			info.Result,
			info.VictimDirty,
		)
	}

	t.accesses = nil
}
