// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audgraph"
)

var ErrEndless = errors.New("cannot render an endless loop")

var (
	renderOpts    playFlags
	renderTail    time.Duration
	renderTimeout time.Duration
	renderMono    bool
	renderRate    int
)

var renderCmd = &cobra.Command{
	Use:   "render <file|url> <out.wav>",
	Short: "Render a source through the graph into a WAV file",
	Long: `Render plays a source through the same graph as play, but offline and faster
than real time. The output is 16-bit stereo WAV at the engine sample rate, or
with --mono a mono WAV that can be resampled to any rate with --rate.`,
	Args: cobra.ExactArgs(2),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderOpts.register(renderCmd.Flags())
	renderCmd.Flags().DurationVar(&renderTail, "tail", 0, "extra time rendered after the sound ends, for reverb tails")
	renderCmd.Flags().DurationVar(&renderTimeout, "timeout", 30*time.Second, "how long to wait for the source to load")
	renderCmd.Flags().BoolVar(&renderMono, "mono", false, "write mono instead of stereo")
	renderCmd.Flags().IntVar(&renderRate, "rate", 0, "resample mono output to this rate, 0 keeps the engine rate")
}

func runRender(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]

	off := audgraph.NewOffline(cfg.Engine.SampleRate, cfg.Engine.SoundOptions(appLog.Logger, nil))
	defer off.Close()

	s, err := renderOpts.newSample(off.Engine, in, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), renderTimeout)
	defer cancel()
	if err := off.Wait(ctx, s); err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	length, ok := playLength(s, s.Params(), off.Engine.FadeDuration())
	if !ok {
		return ErrEndless
	}
	length += renderTail
	if _, err := s.Play(nil); err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if renderMono {
		err = off.RenderMono16WAV(w, length, renderRate)
	} else {
		err = off.RenderWAV(w, length)
	}
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	appLog.Info("Rendered", "source", in, "output", out, "seconds", length.Seconds(), "mono", renderMono)
	return f.Close()
}
