package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/memory"
)

// resourceFlags selects and sizes the resource a command works on.
type resourceFlags struct {
	kind      string
	arena     int
	blocks    int
	blockSize int
}

func (f *resourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.kind, "allocator", "a", "nano", "Allocator: pool, lifo, first-fit-top, nano")
	cmd.Flags().IntVar(&f.arena, "arena", 4096, "Arena size in bytes (variable-size allocators)")
	cmd.Flags().IntVar(&f.blocks, "blocks", 16, "Number of blocks (pool)")
	cmd.Flags().IntVar(&f.blockSize, "block-size", 64, "Block size in bytes (pool)")
}

// newResource builds the selected resource over a fresh arena.
func newResource(f resourceFlags) (memory.Resource, error) {
	if f.kind != "pool" && f.arena <= 0 {
		return nil, fmt.Errorf("arena size must be positive, got %d", f.arena)
	}
	opts := resourceOptions()
	switch f.kind {
	case "pool":
		if f.blocks <= 0 || f.blockSize <= 0 {
			return nil, fmt.Errorf("pool geometry must be positive, got %d x %d", f.blocks, f.blockSize)
		}
		size := memory.PoolArenaSize(f.blocks, f.blockSize)
		return memory.NewBlockPool("pool", f.blocks, f.blockSize, make([]byte, size), opts...), nil
	case "lifo":
		return guard(func() memory.Resource { return memory.NewLIFO("lifo", make([]byte, f.arena), opts...) })
	case "first-fit-top":
		return guard(func() memory.Resource { return memory.NewFirstFitTop("first-fit-top", make([]byte, f.arena), opts...) })
	case "nano":
		return guard(func() memory.Resource { return memory.NewNewlibNano("nano", make([]byte, f.arena), opts...) })
	default:
		return nil, fmt.Errorf("unknown allocator %q", f.kind)
	}
}

// guard turns a constructor panic, such as an arena smaller than one
// chunk, into an error.
func guard(build func() memory.Resource) (r memory.Resource, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	return build(), nil
}

// printStats prints one resource's counters in the selected format.
func printStats(name string, st memory.Stats) error {
	if jsonOut {
		return printJSON(map[string]any{"name": name, "stats": st})
	}
	if quiet {
		return nil
	}
	if verbose {
		return st.Report(os.Stdout, name, language.English)
	}
	printInfo("%s: %s\n", name, st)
	return nil
}
