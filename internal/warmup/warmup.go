// Package warmup fills the localized-name cache in the background so that
// the first players in a language do not pay for hundreds of upstream
// lookups.
package warmup

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jredh-dev/pokeguess/internal/lang"
)

// DefaultWorkers bounds concurrent upstream fetches.
const DefaultWorkers = 8

// Source is the name cache being warmed.
type Source interface {
	IDs(ctx context.Context) ([]int, error)
	HasName(id int, lang string) bool
	RefreshNames(ctx context.Context, id int) error
}

// Stats summarizes one fill.
type Stats struct {
	Missing int
	Fetched int
	Failed  int
	Elapsed time.Duration
}

// Warmer runs a bounded fill of every supported language, at most once per
// process.
type Warmer struct {
	src     Source
	workers int
	log     *slog.Logger

	started atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a Warmer running up to workers fetches at once.
func New(src Source, workers int, log *slog.Logger) *Warmer {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Warmer{src: src, workers: workers, log: log, ctx: ctx, cancel: cancel}
}

// Fill refreshes every species missing a name in any supported language and
// waits for the batch to finish. One refresh fills all languages at once.
// Individual failures are counted, not returned.
func (w *Warmer) Fill(ctx context.Context) (Stats, error) {
	start := time.Now()
	var st Stats

	ids, err := w.src.IDs(ctx)
	if err != nil {
		return st, err
	}

	var fetched, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if w.complete(id) {
			continue
		}
		st.Missing++
		id := id
		g.Go(func() error {
			if err := w.src.RefreshNames(gctx, id); err != nil {
				failed.Add(1)
				w.log.Debug("warmup fetch failed", "id", id, "err", err)
				return nil
			}
			fetched.Add(1)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // tasks never return errors

	st.Fetched = int(fetched.Load())
	st.Failed = int(failed.Load())
	st.Elapsed = time.Since(start)
	return st, ctx.Err()
}

func (w *Warmer) complete(id int) bool {
	for _, l := range lang.Supported {
		if !w.src.HasName(id, l) {
			return false
		}
	}
	return true
}

// Schedule starts the background Fill unless one was already started. It
// reports whether this call started it.
func (w *Warmer) Schedule() bool {
	if !w.started.CompareAndSwap(false, true) {
		return false
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		st, err := w.Fill(w.ctx)
		if err != nil {
			w.log.Warn("warmup aborted", "err", err)
			return
		}
		w.log.Info("warmup complete",
			"missing", st.Missing, "fetched", st.Fetched,
			"failed", st.Failed, "elapsed", st.Elapsed)
	}()
	return true
}

// Wait blocks until scheduled fills finish.
func (w *Warmer) Wait() {
	w.wg.Wait()
}

// Stop cancels scheduled fills and waits for them to return.
func (w *Warmer) Stop() {
	w.cancel()
	w.wg.Wait()
}
