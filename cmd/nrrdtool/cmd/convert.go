package cmd

import (
	"fmt"

	"github.com/mrjoshuak/go-nrrd/nrrd"
	"github.com/mrjoshuak/go-nrrd/nrrdutil"

	"github.com/spf13/cobra"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Rewrite a NRRD file with another encoding or byte order",
	Long: `Rewrite a NRRD file with inline data using the raw or ascii encoding.
For raw output of multi-byte types the byte order defaults to the host's.

Example:
  nrrdtool convert --encoding ascii volume.nrrd volume-ascii.nrrd`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		encoding := nrrd.Encoding(stringSetting(cmd, "encoding", cfg.Convert.Encoding))
		endian := nrrd.Endian(stringSetting(cmd, "endian", cfg.Convert.Endian))
		if !encoding.IsSupported() {
			return fmt.Errorf("cannot convert to encoding %q: want raw or ascii", encoding)
		}
		switch endian {
		case nrrd.EndianUnset, nrrd.EndianLittle, nrrd.EndianBig:
		default:
			return fmt.Errorf("unknown endian %q: want little or big", endian)
		}

		in, out := args[0], args[1]
		d, _, err := nrrdutil.ReadFile(in)
		if err != nil {
			return err
		}
		if err := convertDocument(d, encoding, endian); err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}

		warnings, err := nrrdutil.WriteFile(out, d)
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", in, out, encoding)
		return nil
	},
}

// convertDocument switches d to the given encoding and byte order in place.
// The payload is decoded so that Serialize re-encodes it.
func convertDocument(d *nrrd.Document, encoding nrrd.Encoding, endian nrrd.Endian) error {
	if d.DataFile != nil {
		return fmt.Errorf("detached data cannot be converted")
	}
	if d.Type == nrrd.TypeBlock {
		if encoding != nrrd.EncodingRaw {
			return fmt.Errorf("block data can only be written raw")
		}
	} else {
		s, err := d.Samples()
		if err != nil {
			return err
		}
		d.Data, d.Buffer = s, nil
	}

	d.Encoding = encoding
	d.Endian = nrrd.EndianUnset
	if encoding == nrrd.EncodingRaw && d.Type.NeedsEndian() {
		d.Endian = endian
	}
	d.LineSkip, d.ByteSkip = 0, 0
	return nil
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("encoding", "e", "raw", "Output encoding: raw or ascii")
	convertCmd.Flags().String("endian", "", "Byte order for raw output: little or big (default host)")
}
