// Package trace reads memory-access traces in the valgrind lackey format.
// Each record is one line of the form `OP ADDR,SIZE`, where OP is a single
// operation letter, ADDR is a hexadecimal address of up to 64 bits, and
// SIZE is a decimal byte count.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Op is the operation letter of a trace record.
type Op byte

// The operation letters that can appear in a trace. Only loads and stores
// participate in cache modeling; everything else is skipped by the replay
// loop.
const (
	OpLoad        Op = 'L'
	OpStore       Op = 'S'
	OpModify      Op = 'M'
	OpInstruction Op = 'I'
)

// IsMemAccess returns true for the operations that the cache models.
func (o Op) IsMemAccess() bool {
	return o == OpLoad || o == OpStore
}

// A Record is one parsed trace line.
type Record struct {
	Op   Op
	Addr uint64

	// Size is the request size in bytes. It does not affect the
	// block-level hit/miss decision and is carried for reporting only.
	Size uint64
}

func (r Record) String() string {
	return fmt.Sprintf("%c 0x%x,%d", r.Op, r.Addr, r.Size)
}

// ParseLine parses one trace line. The leading space that lackey emits
// before data records is tolerated.
func ParseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Record{}, fmt.Errorf("malformed trace record %q", line)
	}

	if len(fields[0]) != 1 {
		return Record{}, fmt.Errorf(
			"malformed operation in trace record %q", line)
	}
	op := Op(fields[0][0])

	addrStr, sizeStr, found := strings.Cut(fields[1], ",")
	if !found {
		return Record{}, fmt.Errorf(
			"missing size in trace record %q", line)
	}

	addr, err := strconv.ParseUint(addrStr, 16, 64)
	if err != nil {
		return Record{}, fmt.Errorf(
			"bad address in trace record %q: %w", line, err)
	}

	size, err := strconv.ParseUint(sizeStr, 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf(
			"bad size in trace record %q: %w", line, err)
	}

	return Record{Op: op, Addr: addr, Size: size}, nil
}

// A Reader yields trace records one at a time.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	lineNo  int
}

// NewReader creates a Reader that parses records from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Open creates a Reader over a trace file. The caller must Close the
// returned reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open trace file: %w", err)
	}

	r := NewReader(f)
	r.closer = f

	return r, nil
}

// Next returns the next record in the trace. Blank lines are skipped. The
// error is io.EOF at the end of the trace and a parse error, annotated
// with the line number, for malformed records.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.lineNo++

		line := r.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := ParseLine(line)
		if err != nil {
			return Record{}, fmt.Errorf("line %d: %w", r.lineNo, err)
		}

		return rec, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Record{}, err
	}

	return Record{}, io.EOF
}

// Close closes the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}

	return r.closer.Close()
}
