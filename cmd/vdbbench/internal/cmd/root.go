// Package cmd implements the CLI commands of the benchmark driver.
package cmd

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base "vdbbench" command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "vdbbench",
	Short: "Benchmark driver for the verifiable key-value store",
	Long: `vdbbench runs random read/write transactions against a verifiable
store, records the latency of every commit and compares it with the same
workload on a store that keeps no commitment.`,
	SilenceUsage: true,
}
