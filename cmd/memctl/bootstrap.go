package main

import (
	"github.com/spf13/cobra"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/memory/bootstrap"
)

var (
	bootArena       int
	bootBacking     string
	bootApplication string
	bootRTOS        string
	bootRTOSArena   int
	bootInterrupts  bool
	bootFromHost    float64
)

func init() {
	cmd := newBootstrapCmd()
	def := bootstrap.DefaultConfig()
	cmd.Flags().IntVar(&bootArena, "arena", def.ArenaSize, "System arena size in bytes")
	cmd.Flags().StringVar(&bootBacking, "backing", string(def.Backing), "Arena backing: static, mmap, host")
	cmd.Flags().StringVar(&bootApplication, "application", string(def.Application), "Application allocator: nano, lifo, first-fit-top")
	cmd.Flags().StringVar(&bootRTOS, "rtos", string(def.RTOS), "RTOS allocator, used with --rtos-arena")
	cmd.Flags().IntVar(&bootRTOSArena, "rtos-arena", 0, "Separate RTOS arena size in bytes (0 shares the application arena)")
	cmd.Flags().BoolVar(&bootInterrupts, "interrupts", false, "Guard resources with the interrupts domain")
	cmd.Flags().Float64Var(&bootFromHost, "from-host", 0, "Size an mmap arena to this fraction of free host RAM")
	rootCmd.AddCommand(cmd)
}

func newBootstrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Build a startup memory hierarchy and show its usage",
		Long: `The bootstrap command builds the system arena, the application resource,
the optional RTOS arena and one block pool per RTOS object type, then prints
the statistics of every resource.

Example:
  memctl bootstrap
  memctl bootstrap --backing mmap --rtos-arena 65536 --rtos lifo
  memctl bootstrap --from-host 0.01 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBootstrap()
		},
	}
	return cmd
}

func bootstrapConfig() (bootstrap.Config, error) {
	cfg := bootstrap.DefaultConfig()
	if bootFromHost > 0 {
		var err error
		if cfg, err = bootstrap.ConfigFromHost(bootFromHost); err != nil {
			return cfg, err
		}
	} else {
		cfg.ArenaSize = bootArena
		cfg.Backing = bootstrap.Backing(bootBacking)
	}
	cfg.Application = bootstrap.Allocator(bootApplication)
	cfg.RTOS = bootstrap.Allocator(bootRTOS)
	cfg.RTOSArenaSize = bootRTOSArena
	cfg.Interrupts = bootInterrupts
	cfg.Tracer = tracer()
	return cfg, nil
}

func runBootstrap() error {
	cfg, err := bootstrapConfig()
	if err != nil {
		return err
	}
	sys, err := bootstrap.New(cfg)
	if err != nil {
		return err
	}
	defer sys.Close()

	usage := sys.Usage()
	if jsonOut {
		return printJSON(map[string]any{"config": sys.Config(), "resources": usage})
	}
	printVerbose("Default resource: %s\n", sys.Default().Name())
	for _, u := range usage {
		if err := printStats(u.Name, u.Stats); err != nil {
			return err
		}
	}
	return nil
}
