// Command vdbbench measures the commit cost of a verifiable store against an
// unverified baseline.
package main

import (
	"os"

	"github.com/bnb-chain/zkbnb-vdb/cmd/vdbbench/internal/cmd"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
