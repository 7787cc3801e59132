package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/memory"
)

// opKind is one workload instruction.
type opKind int

const (
	opAlloc opKind = iota
	opFree
	opReset
	opStats
)

// op is a parsed workload line.
type op struct {
	kind  opKind
	id    string
	bytes int
	align int
	line  int
}

// parseWorkload reads a script of the form
//
//	# comment
//	alloc <id> <bytes> [align]
//	free <id>
//	reset
//	stats
func parseWorkload(r io.Reader) ([]op, error) {
	var ops []op
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		o := op{line: n}
		switch fields[0] {
		case "alloc":
			if len(fields) < 3 || len(fields) > 4 {
				return nil, fmt.Errorf("line %d: usage: alloc <id> <bytes> [align]", n)
			}
			o.kind, o.id = opAlloc, fields[1]
			var err error
			if o.bytes, err = strconv.Atoi(fields[2]); err != nil || o.bytes < 0 {
				return nil, fmt.Errorf("line %d: bad size %q", n, fields[2])
			}
			if len(fields) == 4 {
				if o.align, err = strconv.Atoi(fields[3]); err != nil || o.align < 0 {
					return nil, fmt.Errorf("line %d: bad alignment %q", n, fields[3])
				}
			}
		case "free":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: usage: free <id>", n)
			}
			o.kind, o.id = opFree, fields[1]
		case "reset":
			o.kind = opReset
		case "stats":
			o.kind = opStats
		default:
			return nil, fmt.Errorf("line %d: unknown instruction %q", n, fields[0])
		}
		ops = append(ops, o)
	}
	return ops, sc.Err()
}

// liveBlock is an allocation the workload still holds.
type liveBlock struct {
	p     []byte
	bytes int
	align int
}

// stepResult records what one instruction did.
type stepResult struct {
	Line  int          `json:"line"`
	Op    string       `json:"op"`
	ID    string       `json:"id,omitempty"`
	Bytes int          `json:"bytes,omitempty"`
	OK    bool         `json:"ok"`
	Stats memory.Stats `json:"stats"`
}

// runWorkload executes ops against r. Allocation failures are recorded, not
// fatal; freeing an unknown id, or a request the resource rejects as misuse,
// is an error.
func runWorkload(r memory.Resource, ops []op) (results []stepResult, err error) {
	live := make(map[string]liveBlock)
	line := 0
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("line %d: %v", line, p)
		}
	}()

	for _, o := range ops {
		line = o.line
		res := stepResult{Line: o.line, ID: o.id, Bytes: o.bytes, OK: true}
		switch o.kind {
		case opAlloc:
			res.Op = "alloc"
			if _, dup := live[o.id]; dup {
				return results, fmt.Errorf("line %d: id %q is already allocated", o.line, o.id)
			}
			p := r.TryAllocate(o.bytes, o.align)
			if p == nil {
				res.OK = false
				break
			}
			live[o.id] = liveBlock{p: p, bytes: o.bytes, align: o.align}
		case opFree:
			res.Op = "free"
			b, ok := live[o.id]
			if !ok {
				return results, fmt.Errorf("line %d: id %q is not allocated", o.line, o.id)
			}
			r.Deallocate(b.p, b.bytes, b.align)
			delete(live, o.id)
		case opReset:
			res.Op = "reset"
			r.Reset()
			clear(live)
		case opStats:
			res.Op = "stats"
		}
		res.Stats = r.Stats()
		results = append(results, res)
	}
	return results, nil
}
