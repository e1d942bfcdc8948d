//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"micscope/app"
	"micscope/hal"
)

func main() {
	hcfg := hal.DefaultHostConfig()
	cfg := app.DefaultConfig()

	var (
		headless bool
		hz       int
		ticks    uint64
		mic      string
		rate     uint
	)
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.IntVar(&hz, "hz", 60, "Iteration rate in headless mode (0 = as fast as possible).")
	flag.Uint64Var(&ticks, "ticks", 0, "Stop after N iterations in headless mode (0 = run forever).")
	flag.StringVar(&mic, "mic", string(hcfg.Mic), "Capture source: synth, device or wav.")
	flag.StringVar(&hcfg.WAVPath, "wav", "", "WAV file replayed by -mic wav.")
	flag.StringVar(&hcfg.LogFile, "log", "", "Also write the log to this file, rotated at 1 MB.")
	flag.UintVar(&rate, "rate", uint(hcfg.SampleRate), "Capture sample rate in Hz.")
	flag.Float64Var(&hcfg.ToneHz, "tone", hcfg.ToneHz, "Synthetic tone frequency in Hz.")
	flag.IntVar(&hcfg.Width, "width", hcfg.Width, "Display width in pixels.")
	flag.IntVar(&hcfg.Height, "height", hcfg.Height, "Display height in pixels.")
	flag.IntVar(&cfg.Capture.CaptureSamples, "samples", cfg.Capture.CaptureSamples, "Samples per capture.")
	flag.Parse()

	hcfg.Mic = hal.MicSource(mic)
	hcfg.SampleRate = uint32(rate)

	newApp := func(h hal.HAL) (func() error, error) { return app.New(h, cfg) }

	if !headless {
		if err := hal.RunWindow(hcfg, newApp); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	step, err := newApp(hal.NewHost(hcfg))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	loop := app.Loop{Step: step, Stop: app.StopAfter(ticks)}
	if hz > 0 {
		loop.Interval = time.Second / time.Duration(hz)
	}
	if err := loop.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
