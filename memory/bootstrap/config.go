package bootstrap

import (
	"github.com/cloudfoundry/gosigar"
	"github.com/cockroachdb/errors"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/format"
	"github.com/micro-os-plus/micro-os-plus-iii-sub003/memory"
)

// Backing selects where the system arena comes from.
type Backing string

const (
	// BackingStatic uses a slice from the Go heap, the analogue of a
	// linker-reserved heap region.
	BackingStatic Backing = "static"
	// BackingMmap maps anonymous pages from the OS.
	BackingMmap Backing = "mmap"
	// BackingHost carves the arena from a bounded memory.Host resource.
	BackingHost Backing = "host"
)

// Allocator selects a variable-size allocator.
type Allocator string

const (
	AllocatorNano        Allocator = "nano"
	AllocatorLIFO        Allocator = "lifo"
	AllocatorFirstFitTop Allocator = "first-fit-top"
)

const (
	// DefaultArenaSize is the arena used when nothing else is configured.
	DefaultArenaSize = 256 << 10

	// MinArenaSize is the smallest arena a system can be built on.
	MinArenaSize = 4 << 10

	// MaxHostArenaSize caps the arena ConfigFromHost picks.
	MaxHostArenaSize = 1 << 30
)

// PoolConfig describes one per-object-type block pool.
type PoolConfig struct {
	Name      string `json:"name"`
	Blocks    int    `json:"blocks"`
	BlockSize int    `json:"block_size"`
}

// Config describes the memory hierarchy built at startup.
//
// "ArenaSize" (default: DefaultArenaSize)
//
//	Bytes reserved for the whole hierarchy.
//
// "Backing" (default: BackingStatic)
//
//	Where the arena comes from.
//
// "Application" (default: AllocatorNano)
//
//	Allocator managing the arena; application code allocates from it.
//
// "RTOS" and "RTOSArenaSize" (default: AllocatorLIFO, 0)
//
//	When RTOSArenaSize is not zero, RTOS objects get a separate arena of
//	that size carved from the application resource and managed by RTOS.
//	Otherwise they share the application resource.
//
// "Pools" (default: DefaultPools())
//
//	Block pools for RTOS objects, allocated from the RTOS resource.
//
// "Interrupts" (default: false)
//
//	Guard every resource with critical.Interrupts instead of
//	critical.Scheduler, for hierarchies used from interrupt handlers.
type Config struct {
	ArenaSize     int           `json:"arena_size"`
	Backing       Backing       `json:"backing"`
	Application   Allocator     `json:"application"`
	RTOS          Allocator     `json:"rtos"`
	RTOSArenaSize int           `json:"rtos_arena_size"`
	Pools         []PoolConfig  `json:"pools"`
	Interrupts    bool          `json:"interrupts"`
	Tracer        memory.Tracer `json:"-"`
}

// DefaultPools returns one pool per RTOS object type.
func DefaultPools() []PoolConfig {
	return []PoolConfig{
		{Name: "thread", Blocks: 8, BlockSize: 256},
		{Name: "mutex", Blocks: 16, BlockSize: 64},
		{Name: "semaphore", Blocks: 16, BlockSize: 48},
		{Name: "condition-variable", Blocks: 8, BlockSize: 48},
		{Name: "event-flags", Blocks: 8, BlockSize: 48},
		{Name: "message-queue", Blocks: 4, BlockSize: 96},
		{Name: "memory-pool", Blocks: 4, BlockSize: 96},
		{Name: "timer", Blocks: 8, BlockSize: 64},
	}
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		ArenaSize:   DefaultArenaSize,
		Backing:     BackingStatic,
		Application: AllocatorNano,
		RTOS:        AllocatorLIFO,
		Pools:       DefaultPools(),
	}
}

// ConfigFromHost returns DefaultConfig with an mmap-backed arena sized to
// fraction of the host's free RAM, within [DefaultArenaSize, MaxHostArenaSize].
func ConfigFromHost(fraction float64) (Config, error) {
	if fraction <= 0 || fraction > 1 {
		return Config{}, errors.Wrapf(memory.ErrBadConfig, "host fraction %v outside (0, 1]", fraction)
	}
	_, _, free, err := HostMemory()
	if err != nil {
		return Config{}, err
	}
	size := int(float64(free) * fraction)
	size = format.AlignDown(size, 4<<10)
	size = min(max(size, DefaultArenaSize), MaxHostArenaSize)

	cfg := DefaultConfig()
	cfg.ArenaSize = size
	cfg.Backing = BackingMmap
	return cfg, nil
}

// HostMemory reports total, used and free RAM of the host in bytes.
func HostMemory() (total, used, free uint64, err error) {
	mem := sigar.Mem{}
	if err := mem.Get(); err != nil {
		return 0, 0, 0, errors.Wrap(err, "bootstrap: read host memory")
	}
	return mem.Total, mem.Used, mem.Free, nil
}

// Validate reports the first problem that would stop New.
func (c Config) Validate() error {
	if c.ArenaSize < MinArenaSize {
		return errors.Wrapf(memory.ErrBadConfig, "arena of %d bytes, need at least %d", c.ArenaSize, MinArenaSize)
	}
	switch c.Backing {
	case BackingStatic, BackingMmap, BackingHost:
	default:
		return errors.Wrapf(memory.ErrBadConfig, "unknown backing %q", c.Backing)
	}
	if !c.Application.valid() {
		return errors.Wrapf(memory.ErrBadConfig, "unknown application allocator %q", c.Application)
	}
	if c.RTOSArenaSize != 0 && !c.RTOS.valid() {
		return errors.Wrapf(memory.ErrBadConfig, "unknown rtos allocator %q", c.RTOS)
	}
	if c.RTOSArenaSize != 0 && (c.RTOSArenaSize < MinArenaSize || c.RTOSArenaSize >= c.ArenaSize) {
		return errors.Wrapf(memory.ErrBadConfig, "rtos arena of %d bytes does not fit a %d-byte arena", c.RTOSArenaSize, c.ArenaSize)
	}

	seen := make(map[string]bool, len(c.Pools))
	need := 0
	for _, p := range c.Pools {
		if p.Name == "" {
			return errors.Wrap(memory.ErrBadConfig, "pool without a name")
		}
		if seen[p.Name] {
			return errors.Wrapf(memory.ErrBadConfig, "pool %q configured twice", p.Name)
		}
		seen[p.Name] = true
		if p.Blocks <= 0 || p.BlockSize <= 0 {
			return errors.Wrapf(memory.ErrBadConfig, "pool %q has geometry %d x %d", p.Name, p.Blocks, p.BlockSize)
		}
		need += memory.PoolArenaSize(p.Blocks, p.BlockSize)
	}
	budget := c.ArenaSize
	if c.RTOSArenaSize != 0 {
		budget = c.RTOSArenaSize
	}
	if need > budget {
		return errors.Wrapf(memory.ErrBadConfig, "pools need %d bytes, only %d available", need, budget)
	}
	return nil
}

func (a Allocator) valid() bool {
	switch a {
	case AllocatorNano, AllocatorLIFO, AllocatorFirstFitTop:
		return true
	}
	return false
}
