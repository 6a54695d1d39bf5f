package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"zipsweep/internal/actions"
	"zipsweep/internal/archive"
	"zipsweep/internal/progress"
	"zipsweep/internal/scanner"
)

var (
	// ErrCancelRequested is returned by a start call that instead cancelled
	// the active run of the same kind.
	ErrCancelRequested = errors.New("active run cancelled")
	// ErrBusy means a run of the other kind is active.
	ErrBusy = errors.New("another run is active")
	// ErrNothingSelected means StartAction got no items.
	ErrNothingSelected = errors.New("no items selected")
)

type Options struct {
	Fs         afero.Fs
	Checker    archive.Checker
	Events     *progress.Channel
	Logger     zerolog.Logger
	SkipHidden bool
}

// Engine owns the run state, the current result set and the progress
// channel shared with the presentation layer. At most one run is active.
type Engine struct {
	events *progress.Channel
	log    zerolog.Logger

	scan   func(ctx context.Context, root string) scanner.Result
	action func(ctx context.Context, items []scanner.FileItem, opts actions.Options) actions.Outcome

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	results []scanner.FileItem
}

func New(opts Options) *Engine {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Checker == nil {
		opts.Checker = archive.NewZipChecker(opts.Fs)
	}
	if opts.Events == nil {
		opts.Events = progress.NewChannel(0, opts.Logger)
	}
	sc := scanner.New(opts.Fs, opts.Checker, opts.Events, scanner.Options{SkipHidden: opts.SkipHidden})
	ex := actions.New(opts.Fs, opts.Checker, opts.Events)
	return &Engine{
		events: opts.Events,
		log:    opts.Logger,
		scan:   sc.Scan,
		action: ex.Run,
	}
}

func (e *Engine) Events() *progress.Channel { return e.events }

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Results returns a copy of the current result set.
func (e *Engine) Results() []scanner.FileItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]scanner.FileItem(nil), e.results...)
}

// StartScan scans root in the background. The returned channel yields the
// result once and is then closed. Calling it while a scan is running cancels
// that scan and returns ErrCancelRequested.
func (e *Engine) StartScan(root string) (<-chan scanner.Result, error) {
	ctx, err := e.begin(Scanning)
	if err != nil {
		return nil, err
	}
	log := e.log.With().Str("run", uuid.NewString()).Str("kind", "scan").Logger()
	log.Info().Str("root", root).Msg("scan started")

	done := make(chan scanner.Result, 1)
	go func() {
		defer close(done)
		res := e.scan(ctx, root)

		// summary goes out while the run still holds the state
		switch res.Status {
		case scanner.Failed:
			e.events.Warnf("Scan error: %v", res.Err)
		default:
			dups, orphans := res.Split()
			e.events.Logf("Results loaded: %d duplicates, %d orphans", len(dups), len(orphans))
		}

		e.mu.Lock()
		if res.Status != scanner.Failed {
			e.results = res.Items
		}
		e.finishLocked()
		e.mu.Unlock()
		log.Info().Stringer("status", res.Status).Int("items", len(res.Items)).
			Int("visited", res.VisitedDirs).Int("total", res.TotalDirs).Msg("scan finished")
		done <- res
	}()
	return done, nil
}

// CancelScan cancels the active scan, if any.
func (e *Engine) CancelScan() { e.cancelIf(Scanning) }

// StartAction runs the selected items in the background. Calling it while an
// action run is active cancels that run and returns ErrCancelRequested.
// Items whose files were removed are pruned from Results after a real run.
func (e *Engine) StartAction(items []scanner.FileItem, opts actions.Options) (<-chan actions.Outcome, error) {
	if len(items) == 0 && e.State() != Processing {
		return nil, ErrNothingSelected
	}
	ctx, err := e.begin(Processing)
	if err != nil {
		return nil, err
	}
	selected := append([]scanner.FileItem(nil), items...)
	log := e.log.With().Str("run", uuid.NewString()).Str("kind", "action").Logger()
	log.Info().Int("items", len(selected)).Bool("dry_run", opts.DryRun).Msg("action run started")

	done := make(chan actions.Outcome, 1)
	go func() {
		defer close(done)
		out := e.action(ctx, selected, opts)

		if out.Status == scanner.Cancelled {
			e.events.Logf("Processing cancelled by user")
		} else {
			e.events.Logf("Processing completed successfully")
		}

		e.mu.Lock()
		if !opts.DryRun {
			e.results = prune(e.results, out.Consumed)
		}
		e.finishLocked()
		e.mu.Unlock()
		log.Info().Stringer("status", out.Status).Int("deleted", out.Deleted).
			Int("compressed", out.Compressed).Int("failed", len(out.Failures)).Msg("action run finished")
		done <- out
	}()
	return done, nil
}

// CancelAction cancels the active action run, if any.
func (e *Engine) CancelAction() { e.cancelIf(Processing) }

// Close cancels whatever is running.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Engine) begin(want State) (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case Idle:
	case want:
		e.cancel()
		return nil, ErrCancelRequested
	default:
		return nil, ErrBusy
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.state = want
	e.cancel = cancel
	return ctx, nil
}

func (e *Engine) finishLocked() {
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = nil
	e.state = Idle
}

func (e *Engine) cancelIf(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == s && e.cancel != nil {
		e.cancel()
	}
}

func prune(items, consumed []scanner.FileItem) []scanner.FileItem {
	if len(consumed) == 0 {
		return items
	}
	gone := make(map[string]struct{}, len(consumed))
	for _, it := range consumed {
		gone[it.Path] = struct{}{}
	}
	kept := make([]scanner.FileItem, 0, len(items))
	for _, it := range items {
		if _, ok := gone[it.Path]; ok {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}
