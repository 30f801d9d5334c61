// Package viewstate implements the fetch lifecycle shared by the per-domain
// view controllers: canonical collection and stats loaded in one pass,
// search spec, serialised mutations and cancellation on close.
package viewstate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/validator"
)

var (
	// ErrDiscarded is returned by Load when a newer load superseded it or the controller closed meanwhile.
	ErrDiscarded = errors.New("viewstate: result discarded")
	ErrClosed    = errors.New("viewstate: controller closed")
)

// Batch is one pass over the backend: the collection and the stats derived
// from it. StatsErr keeps Records and substitutes zero stats.
type Batch[R, St any] struct {
	Records  []R
	Stats    St
	StatsErr error
}

// Config wires a controller to its domain.
type Config[R, S, St any] struct {
	Domain string

	// Fetch loads the canonical collection. Its failure moves the controller to error.
	Fetch func(ctx context.Context) ([]R, error)

	// Collect replaces Fetch when stats come from the same upstream calls as the collection.
	Collect func(ctx context.Context) (Batch[R, St], error)

	// Derive computes stats from the fetched collection when Collect is nil.
	Derive func(records []R) St

	// Apply runs the query engine over the canonical collection.
	Apply func(records []R, search S) []R

	Search S

	// InitialSearch, when set, replaces Search on the first Load or Refilter.
	InitialSearch func() S

	// LoadFailed is shown when Fetch fails without a backend message.
	LoadFailed string
	// MaskLoadErrors shows LoadFailed even when the backend sent a message.
	MaskLoadErrors bool

	Observer view.Observer
}

type Controller[R, S, St any] struct {
	cfg Config[R, S, St]

	life   context.Context
	cancel context.CancelFunc

	opMu sync.Mutex

	mu       sync.RWMutex
	status   view.Status
	records  []R
	filtered []R
	stats    St
	search   S
	searched bool
	gen      uint64
	loaded   bool
	closed   bool
}

func New[R, S, St any](cfg Config[R, S, St]) *Controller[R, S, St] {
	life, cancel := context.WithCancel(context.Background())
	return &Controller[R, S, St]{
		cfg:    cfg,
		life:   life,
		cancel: cancel,
		status: view.Status{State: view.StateIdle},
		search: cfg.Search,
	}
}

// currentSearch resolves the initial search lazily. Callers hold mu.
func (c *Controller[R, S, St]) currentSearch() S {
	if !c.searched && c.cfg.InitialSearch != nil {
		return c.cfg.InitialSearch()
	}
	return c.search
}

func (c *Controller[R, S, St]) pinSearch() {
	c.search = c.currentSearch()
	c.searched = true
}

// fetchContext detaches from the caller's cancellation but dies with the controller.
func (c *Controller[R, S, St]) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(c.life, cancel)
	return fctx, func() {
		stop()
		cancel()
	}
}

func (c *Controller[R, S, St]) collect(ctx context.Context) (Batch[R, St], error) {
	if c.cfg.Collect != nil {
		return c.cfg.Collect(ctx)
	}
	records, err := c.cfg.Fetch(ctx)
	if err != nil {
		return Batch[R, St]{}, err
	}
	b := Batch[R, St]{Records: records}
	if c.cfg.Derive != nil {
		b.Stats = c.cfg.Derive(records)
	}
	return b, nil
}

// Load fetches the collection with its stats and republishes.
func (c *Controller[R, S, St]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.gen++
	gen := c.gen
	c.pinSearch()
	c.status = view.Status{State: view.StateLoading, Loading: true}
	c.mu.Unlock()
	c.publish()

	fctx, cancel := c.fetchContext(ctx)
	batch, fetchErr := c.collect(fctx)
	cancel()

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		slog.Debug("Discarding stale fetch", "domain", c.cfg.Domain, "generation", gen)
		return ErrDiscarded
	}

	if fetchErr != nil {
		msg := c.cfg.LoadFailed
		if !c.cfg.MaskLoadErrors {
			msg = view.Message(fetchErr, c.cfg.LoadFailed)
		}
		c.status = view.Status{State: view.StateError, Error: msg}
	} else {
		if batch.StatsErr != nil {
			slog.Warn("Stats unavailable, using zero values", "domain", c.cfg.Domain, "error", batch.StatsErr)
			var zero St
			batch.Stats = zero
		}
		c.records = batch.Records
		c.filtered = c.cfg.Apply(batch.Records, c.search)
		c.stats = batch.Stats
		c.loaded = true
		c.status = view.Status{State: view.StateReady}
	}
	c.mu.Unlock()
	c.publish()

	if fetchErr != nil {
		slog.Error("Failed to load view", "domain", c.cfg.Domain, "error", fetchErr)
	}
	return fetchErr
}

// Mutate runs op serialised with other mutations. On success the view is
// re-fetched and op's result returned; on failure the previous data stays and
// the message is recorded.
func (c *Controller[R, S, St]) Mutate(ctx context.Context, fallback string, op func(ctx context.Context) (view.Result, error)) view.Result {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return view.Fail(fallback)
	}
	c.status.Loading = true
	c.mu.Unlock()
	c.publish()

	fctx, cancel := c.fetchContext(ctx)
	res, err := op(fctx)
	cancel()

	if err != nil {
		msg := view.Message(err, fallback)
		c.mu.Lock()
		c.status.Loading = false
		c.status.Error = msg
		c.mu.Unlock()
		c.publish()
		slog.Warn("Mutation failed", "domain", c.cfg.Domain, "error", err)
		return view.Fail(msg)
	}

	if err := c.Load(ctx); err != nil && !errors.Is(err, ErrDiscarded) && !errors.Is(err, ErrClosed) {
		slog.Warn("Reload after mutation failed", "domain", c.cfg.Domain, "error", err)
	}
	return res
}

// Refilter replaces the search spec with next(current) and re-applies it without fetching.
func (c *Controller[R, S, St]) Refilter(next func(S) S) view.Snapshot[R, S, St] {
	c.mu.Lock()
	c.pinSearch()
	c.search = next(c.search)
	c.filtered = c.cfg.Apply(c.records, c.search)
	c.mu.Unlock()
	c.publish()
	return c.Snapshot()
}

func (c *Controller[R, S, St]) Snapshot() view.Snapshot[R, S, St] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return view.Snapshot[R, S, St]{
		Status:  c.status,
		Records: append([]R(nil), c.filtered...),
		Total:   len(c.records),
		Stats:   c.stats,
		Search:  c.currentSearch(),
	}
}

// Records returns a copy of the canonical, unfiltered collection.
func (c *Controller[R, S, St]) Records() []R {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]R(nil), c.records...)
}

func (c *Controller[R, S, St]) Search() S {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentSearch()
}

func (c *Controller[R, S, St]) ClearError() {
	c.mu.Lock()
	c.status.Error = ""
	if c.status.State == view.StateError {
		c.status.State = view.StateIdle
		if c.loaded {
			c.status.State = view.StateReady
		}
	}
	c.mu.Unlock()
	c.publish()
}

// Close cancels in-flight work; later results are discarded and nothing is published.
func (c *Controller[R, S, St]) Close() {
	c.mu.Lock()
	c.closed = true
	c.gen++
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller[R, S, St]) publish() {
	if c.cfg.Observer == nil {
		return
	}
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return
	}
	c.cfg.Observer(c.cfg.Domain, c.Snapshot())
}

// Rejected converts a Validate error into a failed result without any request being made.
func Rejected(err error) view.Result {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return view.Invalid("資料驗證失敗", verrs.ToMap())
	}
	return view.Fail(err.Error())
}
