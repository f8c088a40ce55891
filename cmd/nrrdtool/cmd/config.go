package cmd

import (
	"fmt"
	"os"

	"github.com/mrjoshuak/go-nrrd/internal/config"

	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the nrrdtool configuration file",
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a configuration file",
	Long: `Write the settings in effect to a YAML file that can later be passed
with --config. Without --config these are the built-in defaults. An
existing file is only replaced when --force is given.

Example:
  nrrdtool config init ~/.config/nrrdtool.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists, use --force to replace it", path)
		}
		if err := config.SaveConfig(cfg, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolP("force", "f", false, "Replace an existing file")
}
