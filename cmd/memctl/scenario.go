package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// scenario is a built-in workload with the allocator it is meant for.
type scenario struct {
	describe string
	flags    resourceFlags
	script   string
}

var scenarios = map[string]scenario{
	"pool": {
		describe: "eight 64-byte blocks in a 1 KiB pool; the ninth request fails, a freed block is reused",
		flags:    resourceFlags{kind: "pool", blocks: 8, blockSize: 64},
		script: `alloc b1 64
alloc b2 64
alloc b3 64
alloc b4 64
alloc b5 64
alloc b6 64
alloc b7 64
alloc b8 64
alloc b9 64   # exhausted
free b3
alloc b10 64  # reuses b3
stats`,
	},
	"lifo": {
		describe: "out-of-order free in a 256-byte LIFO arena leaves the freed chunk unusable",
		flags:    resourceFlags{kind: "lifo", arena: 256},
		script: `alloc a 64
alloc b 64
free a
stats
alloc c 64    # takes the bottom chunk, not a's
alloc d 8     # fails: the only free chunk is not at the arena start
stats`,
	},
	"nano-coalesce": {
		describe: "newlib-nano merges left, right and both ways until the arena is whole again",
		flags:    resourceFlags{kind: "nano", arena: 1024},
		script: `alloc a 100
alloc b 100
alloc c 100
free b
stats
free a
stats
free c
stats`,
	},
}

func init() {
	rootCmd.AddCommand(newScenarioCmd())
}

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [name]",
		Short: "Run a built-in scenario",
		Long: `The scenario command runs one of the built-in workloads. Without a name
it lists them.

Example:
  memctl scenario
  memctl scenario lifo --verbose`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listScenarios()
			}
			return runScenario(args[0])
		},
	}
	return cmd
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func listScenarios() error {
	if jsonOut {
		out := make(map[string]string, len(scenarios))
		for name, sc := range scenarios {
			out[name] = sc.describe
		}
		return printJSON(out)
	}
	for _, name := range scenarioNames() {
		printInfo("%-14s %s\n", name, scenarios[name].describe)
	}
	return nil
}

func runScenario(name string) error {
	sc, ok := scenarios[name]
	if !ok {
		return fmt.Errorf("unknown scenario %q (have %s)", name, strings.Join(scenarioNames(), ", "))
	}
	ops, err := parseWorkload(strings.NewReader(sc.script))
	if err != nil {
		return err
	}
	r, err := newResource(sc.flags)
	if err != nil {
		return err
	}
	printVerbose("%s\n", sc.describe)

	results, err := runWorkload(r, ops)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]any{"scenario": name, "steps": results, "final": r.Stats()})
	}
	for _, res := range results {
		status := "ok"
		if !res.OK {
			status = "out of memory"
		}
		if res.Op == "stats" {
			printInfo("%4d  stats  %s\n", res.Line, res.Stats)
			continue
		}
		printInfo("%4d  %-5s  %-4s %s\n", res.Line, res.Op, res.ID, status)
	}
	return nil
}
