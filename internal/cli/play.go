// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ik5/audgraph/eventloop"
	"github.com/ik5/audgraph/graph/soft"
	"github.com/ik5/audgraph/output"
	"github.com/ik5/audgraph/sound"
)

var (
	playOpts     playFlags
	metricsAddr  string
	masterVolume float64
)

var playCmd = &cobra.Command{
	Use:   "play <file|url>...",
	Short: "Play audio through the system speaker",
	Long: `Play one or more files or URLs at the same time. Every source gets the same
playback and effect settings. Interrupting stops all playbacks with a short
fade before exiting.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
	playOpts.register(playCmd.Flags())
	playCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	playCmd.Flags().Float64Var(&masterVolume, "master", 0, "master volume in log2 units, -1 halves the amplitude")
}

func runPlay(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.Listen = metricsAddr
	}

	loop := eventloop.New()
	loop.Start()
	defer loop.Close()

	ctx := soft.New(soft.Options{SampleRate: cfg.Engine.SampleRate, Dispatch: loop.Post})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := sound.NewMetrics(reg)

	if cfg.Metrics.Listen != "" {
		srv := serveMetrics(cfg.Metrics.Listen, reg)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	var (
		eng      *sound.Engine
		errs     []error
		startErr error
		done     = make(chan struct{})
	)
	err := loop.Do(func() {
		eng = sound.New(ctx, loop, cfg.Engine.SoundOptions(appLog.Logger, metrics))

		remaining := len(args)
		finish := func() {
			remaining--
			if remaining == 0 {
				close(done)
			}
		}

		for _, src := range args {
			s, err := playOpts.newSample(eng, src, true)
			if err != nil {
				startErr = fmt.Errorf("%s: %w", src, err)
				return
			}
			ev := s.Events()
			ev.Once(sound.SamplePlaybackDestroyed, func(sound.SampleNotice) { finish() })
			ev.Once(sound.SampleLoadError, func(n sound.SampleNotice) {
				errs = append(errs, fmt.Errorf("%s: %w", src, n.Err))
				finish()
			})
		}
	})
	if err != nil {
		return err
	}
	if startErr != nil {
		_ = loop.Do(eng.Close)
		return startErr
	}

	spk := output.NewSpeaker(ctx, cfg.Output.BufferSize)
	if err := spk.Start(); err != nil {
		_ = loop.Do(eng.Close)
		return err
	}
	defer spk.Close()
	if masterVolume != 0 {
		spk.SetVolume(masterVolume)
	}

	appLog.Info("Playing", "sources", len(args), "sample_rate", cfg.Engine.SampleRate)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-done:
	case s := <-sig:
		appLog.Info("Stopping playback", "signal", s.String())
		_ = loop.Do(func() { _ = eng.Root().Stop() })

		// let the declick fade reach the speaker
		select {
		case <-done:
		case <-time.After(2*eng.FadeDuration() + 250*time.Millisecond):
		}
	}

	if err := loop.Do(eng.Close); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("Metrics server failed", "addr", addr, "error", err)
		}
	}()
	appLog.Info("Serving metrics", "addr", addr)

	return srv
}
