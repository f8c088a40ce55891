package cmd

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-nrrd/nrrdutil"

	"github.com/spf13/cobra"
)

var errDiffer = errors.New("files differ")

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <a> <b>",
	Short: "Compare two NRRD files",
	Long: `Compare the geometry, key/value pairs and samples of two NRRD files.
Exits with status 1 if they differ.

Example:
  nrrdtool compare --tolerance 1e-6 a.nrrd b.nrrd`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tolerance, _ := cmd.Flags().GetFloat64("tolerance")
		ignoreKeys, _ := cmd.Flags().GetBool("ignore-keys")

		same, diffs, err := nrrdutil.CompareFiles(args[0], args[1], nrrdutil.CompareOptions{
			Tolerance:  tolerance,
			IgnoreKeys: ignoreKeys,
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if same {
			fmt.Fprintln(out, "identical")
			return nil
		}
		for _, d := range diffs {
			fmt.Fprintf(out, "  %s\n", d)
		}
		return errDiffer
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().Float64P("tolerance", "t", 0, "Maximum absolute sample difference")
	compareCmd.Flags().Bool("ignore-keys", false, "Do not compare key/value pairs")
}
