package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/logger"
	"github.com/micro-os-plus/micro-os-plus-iii-sub003/memory"
	"github.com/micro-os-plus/micro-os-plus-iii-sub003/memory/tracing"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	logLevel string
	traceOn  bool
)

var rootCmd = &cobra.Command{
	Use:   "memctl",
	Short: "Exercise and inspect deterministic memory resources",
	Long: `memctl drives the block pool, LIFO, first-fit-top and newlib-nano
allocators over fixed arenas. It runs allocation scripts and built-in
scenarios, builds startup memory hierarchies and reports their statistics.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logger.ParseLevel(logLevel)
		if traceOn {
			level = slog.LevelDebug
		}
		logger.Init(logger.Options{
			Enabled: logLevel != "" || traceOn,
			Level:   level,
			JSON:    jsonOut,
		})
	},
	SilenceUsage: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Log to stderr at this level (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		BoolVar(&traceOn, "trace", false, "Log every allocator event to stderr (implies debug logging)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// tracer returns the allocator event sink selected by --trace, or nil.
func tracer() memory.Tracer {
	if !traceOn {
		return nil
	}
	return tracing.NewSlog(logger.L)
}

// resourceOptions returns the options every resource built by a command gets.
func resourceOptions() []memory.Option {
	if t := tracer(); t != nil {
		return []memory.Option{memory.WithTracer(t)}
	}
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
