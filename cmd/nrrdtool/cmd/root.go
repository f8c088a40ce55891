package cmd

import (
	"os"

	"github.com/mrjoshuak/go-nrrd/internal/config"

	"github.com/spf13/cobra"
)

// cfg holds the settings in effect for the running command. Flags that
// were set explicitly take precedence over it.
var cfg = config.DefaultConfig()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nrrdtool",
	Short: "Inspect, validate and convert NRRD files",
	Long: `nrrdtool works with NRRD (Nearly Raw Raster Data) files: it checks
them for correctness, prints their header, converts between raw and ascii
encodings and compares two volumes sample by sample.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			cfg = config.DefaultConfig()
			return nil
		}
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML file with default settings")
}

// stringSetting returns the named flag when it was given on the command
// line and fallback otherwise.
func stringSetting(cmd *cobra.Command, name, fallback string) string {
	if !cmd.Flags().Changed(name) {
		return fallback
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}
