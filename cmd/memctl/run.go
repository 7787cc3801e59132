package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var runFlags resourceFlags

func init() {
	cmd := newRunCmd()
	runFlags.register(cmd)
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run an allocation script against an allocator",
		Long: `The run command executes a workload script, one instruction per line:

  alloc <id> <bytes> [align]
  free <id>
  reset
  stats

Lines starting with # are comments. Use - to read the script from stdin.

Example:
  memctl run workload.txt --allocator lifo --arena 1024
  memctl run workload.txt --allocator pool --blocks 8 --block-size 64 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args[0], runFlags)
		},
	}
	return cmd
}

func runRun(path string, f resourceFlags) error {
	in := os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer file.Close()
		in = file
	}

	ops, err := parseWorkload(in)
	if err != nil {
		return err
	}
	r, err := newResource(f)
	if err != nil {
		return err
	}
	printVerbose("Running %d instructions on %s\n", len(ops), r.Name())

	results, err := runWorkload(r, ops)
	if jsonOut {
		if jerr := printJSON(map[string]any{"resource": r.Name(), "steps": results, "final": r.Stats()}); jerr != nil {
			return jerr
		}
		return err
	}

	failed := 0
	for _, res := range results {
		switch {
		case res.Op == "stats":
			printInfo("%4d  %s\n", res.Line, res.Stats)
		case !res.OK:
			failed++
			printInfo("%4d  alloc %s (%d bytes): out of memory\n", res.Line, res.ID, res.Bytes)
		default:
			printVerbose("%4d  %s %s\n", res.Line, res.Op, res.ID)
		}
	}
	if err != nil {
		return err
	}
	printInfo("%d instructions, %d failed allocations\n", len(results), failed)
	return printStats(r.Name(), r.Stats())
}
