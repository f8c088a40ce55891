package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/mrjoshuak/go-nrrd/internal/config"
	"github.com/mrjoshuak/go-nrrd/nrrdutil"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print a summary of a NRRD header",
	Long: `Print a summary of a NRRD header as text or YAML.

Example:
  nrrdtool info --format yaml volume.nrrd`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := stringSetting(cmd, "format", cfg.Info.Format)

		info, err := nrrdutil.GetFileInfo(args[0])
		if err != nil {
			return err
		}

		switch format {
		case config.FormatYAML:
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(info); err != nil {
				return err
			}
			return enc.Close()
		case config.FormatText:
			printInfo(cmd.OutOrStdout(), info)
			return nil
		default:
			return fmt.Errorf("unknown format %q: want text or yaml", format)
		}
	},
}

func printInfo(w io.Writer, info *nrrdutil.FileInfo) {
	row := func(name, format string, args ...any) {
		fmt.Fprintf(w, "%-12s %s\n", name+":", fmt.Sprintf(format, args...))
	}

	row("File", "%s (%d bytes)", info.Path, info.FileSize)
	row("Version", "NRRD%04d", info.Version)
	row("Type", "%s", info.Type)
	row("Encoding", "%s", info.Encoding)
	if info.Endian != "" {
		row("Endian", "%s", info.Endian)
	}
	row("Dimension", "%d", info.Dimension)
	row("Sizes", "%s", joinInts(info.Sizes))
	if len(info.Kinds) > 0 {
		row("Kinds", "%s", strings.Join(info.Kinds, " "))
	}
	if len(info.Labels) > 0 {
		row("Labels", "%q", info.Labels)
	}
	if info.Space != "" {
		row("Space", "%s (%d)", info.Space, info.SpaceDim)
	} else if info.SpaceDim > 0 {
		row("Space", "%d-dimensional", info.SpaceDim)
	}
	if info.Content != "" {
		row("Content", "%s", info.Content)
	}
	row("Elements", "%d x %d bytes", info.ElementCount, info.ElementSize)
	if info.Detached {
		row("Data files", "%d", len(info.DataFiles))
		for _, f := range info.DataFiles {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	if len(info.Keys) > 0 {
		row("Keys", "%d", len(info.Keys))
		for _, k := range slices.Sorted(maps.Keys(info.Keys)) {
			fmt.Fprintf(w, "  %s:=%s\n", k, info.Keys[k])
		}
	}
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringP("format", "f", config.FormatText, "Output format: text or yaml")
}
