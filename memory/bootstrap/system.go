package bootstrap

import (
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/critical"
	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/logger"
	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/mmarena"
	"github.com/micro-os-plus/micro-os-plus-iii-sub003/memory"
)

// Heap is a variable-size resource that owns or borrows its arena.
type Heap interface {
	memory.Resource
	Close() error
	FreeChunks() [][2]int
}

// Usage pairs a resource name with its statistics.
type Usage struct {
	Name  string       `json:"name"`
	Stats memory.Stats `json:"stats"`
}

// System is a built memory hierarchy.
type System struct {
	cfg    Config
	unmap  func() error
	host   *memory.Host
	app    Heap
	rtos   Heap // nil when RTOS objects share app
	pools  []*memory.BlockPool
	byName map[string]*memory.BlockPool
	closed bool
}

// New builds the hierarchy described by cfg. On error everything already
// built is torn down again.
func New(cfg Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &System{cfg: cfg, byName: make(map[string]*memory.BlockPool, len(cfg.Pools))}
	if err := s.build(); err != nil {
		return nil, errors.CombineErrors(err, s.Close())
	}
	logger.Info("bootstrap: memory hierarchy ready",
		"arena", humanize.IBytes(uint64(cfg.ArenaSize)),
		"backing", string(cfg.Backing),
		"application", string(cfg.Application),
		"pools", len(s.pools))
	return s, nil
}

func (s *System) options() []memory.Option {
	d := critical.Scheduler
	if s.cfg.Interrupts {
		d = critical.Interrupts
	}
	opts := []memory.Option{memory.WithDomain(d)}
	if s.cfg.Tracer != nil {
		opts = append(opts, memory.WithTracer(s.cfg.Tracer))
	}
	return opts
}

func (s *System) build() error {
	opts := s.options()

	var err error
	switch s.cfg.Backing {
	case BackingHost:
		s.host = memory.NewHost("host", s.cfg.ArenaSize, opts...)
		s.app, err = newHeapFrom(s.cfg.Application, "application", s.cfg.ArenaSize, s.host, opts)
	case BackingMmap:
		var arena []byte
		arena, s.unmap, err = mmarena.Map(s.cfg.ArenaSize)
		if err == nil {
			s.app, err = newHeap(s.cfg.Application, "application", arena, opts)
		}
	default:
		s.app, err = newHeap(s.cfg.Application, "application", make([]byte, s.cfg.ArenaSize), opts)
	}
	if err != nil {
		return errors.Wrap(err, "bootstrap: application resource")
	}

	if s.cfg.RTOSArenaSize != 0 {
		s.rtos, err = newHeapFrom(s.cfg.RTOS, "rtos", s.cfg.RTOSArenaSize, s.app, opts)
		if err != nil {
			return errors.Wrap(err, "bootstrap: rtos resource")
		}
	}

	for _, pc := range s.cfg.Pools {
		p, err := memory.NewBlockPoolFrom(pc.Name, pc.Blocks, pc.BlockSize, s.Default(), opts...)
		if err != nil {
			return errors.Wrapf(err, "bootstrap: pool %s", pc.Name)
		}
		s.pools = append(s.pools, p)
		s.byName[pc.Name] = p
	}
	return nil
}

func newHeap(kind Allocator, name string, arena []byte, opts []memory.Option) (h Heap, err error) {
	// The constructors panic on arenas too small for one chunk.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(memory.ErrBadConfig, "%s: %v", name, r)
		}
	}()
	switch kind {
	case AllocatorLIFO:
		return memory.NewLIFO(name, arena, opts...), nil
	case AllocatorFirstFitTop:
		return memory.NewFirstFitTop(name, arena, opts...), nil
	default:
		return memory.NewNewlibNano(name, arena, opts...), nil
	}
}

func newHeapFrom(kind Allocator, name string, size int, upstream memory.Resource, opts []memory.Option) (Heap, error) {
	var (
		h   Heap
		err error
	)
	switch kind {
	case AllocatorLIFO:
		var l *memory.LIFO
		if l, err = memory.NewLIFOFrom(name, size, upstream, opts...); err == nil {
			h = l
		}
	case AllocatorFirstFitTop:
		var f *memory.FirstFitTop
		if f, err = memory.NewFirstFitTopFrom(name, size, upstream, opts...); err == nil {
			h = f
		}
	default:
		var n *memory.NewlibNano
		if n, err = memory.NewNewlibNanoFrom(name, size, upstream, opts...); err == nil {
			h = n
		}
	}
	return h, err
}

// Config returns the configuration the system was built from.
func (s *System) Config() Config { return s.cfg }

// Application returns the resource managing the system arena.
func (s *System) Application() memory.Resource { return s.app }

// Default returns the resource RTOS objects allocate from when they are
// not given one explicitly.
func (s *System) Default() memory.Resource {
	if s.rtos != nil {
		return s.rtos
	}
	return s.app
}

// Pool returns the block pool configured under name.
func (s *System) Pool(name string) (*memory.BlockPool, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Pools returns the block pools in configuration order.
func (s *System) Pools() []*memory.BlockPool {
	return append([]*memory.BlockPool(nil), s.pools...)
}

// Usage returns the statistics of every resource, upstream first.
func (s *System) Usage() []Usage {
	var out []Usage
	if s.host != nil {
		out = append(out, Usage{Name: s.host.Name(), Stats: s.host.Stats()})
	}
	if s.app != nil {
		out = append(out, Usage{Name: s.app.Name(), Stats: s.app.Stats()})
	}
	if s.rtos != nil {
		out = append(out, Usage{Name: s.rtos.Name(), Stats: s.rtos.Stats()})
	}
	for _, p := range s.pools {
		out = append(out, Usage{Name: p.Name(), Stats: p.Stats()})
	}
	return out
}

// Close tears the hierarchy down in reverse construction order and unmaps
// the arena. Closing twice is a no-op.
func (s *System) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	for i := len(s.pools) - 1; i >= 0; i-- {
		err = errors.CombineErrors(err, s.pools[i].Close())
	}
	if s.rtos != nil {
		err = errors.CombineErrors(err, s.rtos.Close())
	}
	if s.app != nil {
		err = errors.CombineErrors(err, s.app.Close())
	}
	if s.unmap != nil {
		err = errors.CombineErrors(err, s.unmap())
	}
	logger.Debug("bootstrap: memory hierarchy closed")
	return err
}
