package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/memory/bootstrap"
)

var hostFraction float64

func init() {
	cmd := newHostCmd()
	cmd.Flags().Float64Var(&hostFraction, "fraction", 0.01, "Fraction of free RAM to size the arena to")
	rootCmd.AddCommand(cmd)
}

func newHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Show host memory and the arena it would get",
		Long: `The host command reports total, used and free RAM and the arena size
bootstrap --from-host would pick for the given fraction.

Example:
  memctl host
  memctl host --fraction 0.05 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost()
		},
	}
	return cmd
}

func runHost() error {
	total, used, free, err := bootstrap.HostMemory()
	if err != nil {
		return err
	}
	cfg, err := bootstrap.ConfigFromHost(hostFraction)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]any{
			"total": total, "used": used, "free": free,
			"fraction": hostFraction, "arena": cfg.ArenaSize,
		})
	}
	printInfo("total  %s\n", humanize.IBytes(total))
	printInfo("used   %s\n", humanize.IBytes(used))
	printInfo("free   %s\n", humanize.IBytes(free))
	printInfo("arena  %s (%s of free RAM)\n", humanize.IBytes(uint64(cfg.ArenaSize)), humanize.FtoaWithDigits(hostFraction*100, 2)+"%")
	return nil
}
