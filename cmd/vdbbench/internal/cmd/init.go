package cmd

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bnb-chain/zkbnb-vdb/cmd/vdbbench/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE:  initRunFunc,
}

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("dir", "d", ".", "Location of directory for storing generated files")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}

func initRunFunc(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	force, _ := cmd.Flags().GetBool("force")
	file := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(file); err == nil && !force {
		return errors.Errorf("%s already exists", file)
	}
	if err := config.Default().Save(file); err != nil {
		return err
	}
	cmd.Printf("Wrote %s\n", file)
	return nil
}
