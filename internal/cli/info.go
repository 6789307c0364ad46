// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/formats"
	"github.com/ik5/audgraph/loader"
)

var infoCmd = &cobra.Command{
	Use:   "info <file|url>",
	Short: "Decode a source and print its format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loader.NewDefault().Fetch(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		format := detectFormat(args[0], res)
		src, err := formats.DefaultRegistry().Decode(format, bytes.NewReader(res.Data))
		if err != nil {
			return err
		}
		defer src.Close()

		buf, err := audio.Collect(src, 0)
		if err != nil {
			return err
		}

		printInfo(cmd.OutOrStdout(), args[0], format, len(res.Data), buf)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

// detectFormat prefers the content signature, then the MIME type, then the
// extension.
func detectFormat(src string, res *loader.Resource) string {
	if f, ok := audio.Sniff(res.Data); ok {
		return f
	}
	if f, ok := audio.FormatForMIME(res.MIME); ok {
		return f
	}
	if loader.IsDataURL(src) {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(src)), ".")
}

func printInfo(w io.Writer, name, format string, size int, buf *audio.Buffer) {
	fmt.Fprintf(w, "Source:      %s\n", name)
	fmt.Fprintf(w, "Format:      %s\n", format)
	fmt.Fprintf(w, "Size:        %d bytes\n", size)
	fmt.Fprintf(w, "Channels:    %d\n", buf.NumberOfChannels())
	fmt.Fprintf(w, "Sample rate: %d Hz\n", buf.SampleRate())
	fmt.Fprintf(w, "Frames:      %d\n", buf.Length())
	fmt.Fprintf(w, "Duration:    %.3fs\n", buf.Duration())
}
