package cli

import (
	"context"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/afero"
	"golang.org/x/term"

	"zipsweep/internal/config"
	"zipsweep/internal/engine"
	"zipsweep/internal/logger"
	"zipsweep/internal/progress"
)

func newEngine(cfg *config.Config) *engine.Engine {
	log := logger.Get()
	return engine.New(engine.Options{
		Fs:         afero.NewOsFs(),
		Events:     progress.NewChannel(cfg.Progress.Capacity, log),
		Logger:     log,
		SkipHidden: cfg.Scan.SkipHidden,
	})
}

// newBar returns a percentage bar on stderr, or nil when output is quiet or
// stderr is not a terminal.
func newBar(prefix string) *pb.ProgressBar {
	if globalFlags.Quiet || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	bar := pb.New(100).SetWriter(os.Stderr)
	bar.Set("prefix", prefix)
	return bar.Start()
}

// follow drives bar from the engine's ratio events until done yields.
// Text events reach the user through the logger the channel mirrors to.
// Cancelling ctx cancels the active run; follow still waits for its result.
func follow[T any](ctx context.Context, eng *engine.Engine, done <-chan T, bar *pb.ProgressBar) T {
	events := eng.Events()
	drain := func() {
		for _, ev := range events.Drain(0) {
			if ev.HasRatio && bar != nil {
				bar.SetCurrent(int64(ev.Ratio))
			}
		}
	}
	stop := ctx.Done()
	for {
		select {
		case v := <-done:
			drain()
			if bar != nil {
				bar.Finish()
			}
			return v
		case <-events.Wait():
			drain()
		case <-stop:
			eng.Close()
			stop = nil
		}
	}
}
