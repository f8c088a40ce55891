package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/mrjoshuak/go-nrrd/nrrd"
	"github.com/mrjoshuak/go-nrrd/nrrdutil"

	"github.com/spf13/cobra"
)

var errInvalid = errors.New("one or more files invalid")

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <file> [<file> ...]",
	Short: "Validate NRRD files",
	Long: `Validate NRRD files: the header must parse, the inline payload must
match the declared sizes, and detached data files must exist and be large
enough. Parse warnings are reported but do not fail a file unless --strict
is given.

Exits with status 1 if any file is invalid.

Example:
  nrrdtool check --strict volume.nhdr`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict := cfg.Check.Strict
		if cmd.Flags().Changed("strict") {
			strict, _ = cmd.Flags().GetBool("strict")
		}
		quiet, _ := cmd.Flags().GetBool("quiet")

		var opts []nrrd.Option
		if strict {
			opts = append(opts, nrrd.WithStrict())
		}

		out := cmd.OutOrStdout()
		validCount := 0
		for _, path := range args {
			result, err := nrrdutil.ValidateFile(path, opts...)
			if err != nil {
				return err
			}
			if result.Valid {
				validCount++
			}
			if quiet {
				for _, msg := range result.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", path, msg)
				}
				continue
			}
			printResult(out, path, result)
		}

		if len(args) > 1 && !quiet {
			fmt.Fprintf(out, "\nSummary: %d of %d files valid\n", validCount, len(args))
		}
		if validCount < len(args) {
			return errInvalid
		}
		return nil
	},
}

func printResult(w io.Writer, path string, result *nrrdutil.ValidationResult) {
	if result.Valid {
		fmt.Fprintf(w, "%s: OK\n", path)
	} else {
		fmt.Fprintf(w, "%s: INVALID\n", path)
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(w, "  [ERROR] %s\n", msg)
	}
	for _, msg := range result.Warnings {
		fmt.Fprintf(w, "  [WARNING] %s\n", msg)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolP("strict", "s", false, "Treat parse warnings as errors")
	checkCmd.Flags().BoolP("quiet", "q", false, "Only print errors")
}
