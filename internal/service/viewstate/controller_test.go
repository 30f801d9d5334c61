package viewstate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type minSpec struct {
	Min int
}

type displayErr string

func (e displayErr) Error() string       { return "backend: " + string(e) }
func (e displayErr) UserMessage() string { return string(e) }

type fakeBackend struct {
	mu       sync.Mutex
	records  []int
	stats    int
	fetchErr error
	statsErr error
	fetches  int
}

func (b *fakeBackend) fetch(context.Context) ([]int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return append([]int(nil), b.records...), nil
}

func (b *fakeBackend) collect(ctx context.Context) (Batch[int, int], error) {
	records, err := b.fetch(ctx)
	if err != nil {
		return Batch[int, int]{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return Batch[int, int]{Records: records, Stats: b.stats, StatsErr: b.statsErr}, nil
}

func applyMin(records []int, s minSpec) []int {
	var out []int
	for _, r := range records {
		if r >= s.Min {
			out = append(out, r)
		}
	}
	return out
}

func newTestController(b *fakeBackend, observer view.Observer) *Controller[int, minSpec, int] {
	return New(Config[int, minSpec, int]{
		Domain:     "numbers",
		Collect:    b.collect,
		Apply:      applyMin,
		LoadFailed: "載入失敗",
		Observer:   observer,
	})
}

func TestController_LoadReady(t *testing.T) {
	b := &fakeBackend{records: []int{1, 5, 3}, stats: 42}
	c := newTestController(b, nil)

	assert.Equal(t, view.StateIdle, c.Snapshot().State)
	require.NoError(t, c.Load(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, view.StateReady, snap.State)
	assert.False(t, snap.Loading)
	assert.Equal(t, []int{1, 5, 3}, snap.Records)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 42, snap.Stats)
}

func TestController_StatsFailureIsBestEffort(t *testing.T) {
	b := &fakeBackend{records: []int{1}, stats: 9}
	c := newTestController(b, nil)
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, 9, c.Snapshot().Stats)

	b.statsErr = errors.New("stats down")
	require.NoError(t, c.Load(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, view.StateReady, snap.State)
	assert.Empty(t, snap.Error)
	assert.Zero(t, snap.Stats)
}

func TestController_FetchFailureKeepsPreviousData(t *testing.T) {
	b := &fakeBackend{records: []int{1, 2}, stats: 2}
	c := newTestController(b, nil)
	require.NoError(t, c.Load(context.Background()))

	b.fetchErr = errors.New("connection refused")
	err := c.Load(context.Background())
	require.Error(t, err)

	snap := c.Snapshot()
	assert.Equal(t, view.StateError, snap.State)
	assert.Equal(t, "載入失敗", snap.Error)
	assert.Equal(t, []int{1, 2}, snap.Records)

	b.fetchErr = displayErr("權限不足")
	_ = c.Load(context.Background())
	assert.Equal(t, "權限不足", c.Snapshot().Error)

	c.ClearError()
	snap = c.Snapshot()
	assert.Equal(t, view.StateReady, snap.State)
	assert.Empty(t, snap.Error)
}

func TestController_ClearErrorBeforeFirstSuccess(t *testing.T) {
	b := &fakeBackend{fetchErr: errors.New("down")}
	c := newTestController(b, nil)
	_ = c.Load(context.Background())
	c.ClearError()
	assert.Equal(t, view.StateIdle, c.Snapshot().State)
}

func TestController_RefilterDoesNotFetch(t *testing.T) {
	b := &fakeBackend{records: []int{1, 5, 3}}
	c := newTestController(b, nil)
	require.NoError(t, c.Load(context.Background()))

	snap := c.Refilter(func(s minSpec) minSpec { s.Min = 3; return s })
	assert.Equal(t, []int{5, 3}, snap.Records)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 1, b.fetches)

	// Search spec survives a reload.
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, []int{5, 3}, c.Snapshot().Records)
	assert.Equal(t, minSpec{Min: 3}, c.Search())
	assert.Equal(t, []int{1, 5, 3}, c.Records())
}

func TestController_DeriveStats(t *testing.T) {
	b := &fakeBackend{records: []int{1, 2, 3}}
	c := New(Config[int, minSpec, int]{
		Domain: "numbers",
		Fetch:  b.fetch,
		Derive: func(r []int) int { return len(r) },
		Apply:  applyMin,
	})
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, 3, c.Snapshot().Stats)
}

func TestController_InitialSearchResolvedOnFirstLoad(t *testing.T) {
	b := &fakeBackend{records: []int{1, 2, 3}}
	floor := 1
	c := New(Config[int, minSpec, int]{
		Domain:        "numbers",
		Fetch:         b.fetch,
		Apply:         applyMin,
		InitialSearch: func() minSpec { return minSpec{Min: floor} },
	})

	floor = 2
	assert.Equal(t, minSpec{Min: 2}, c.Search())
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, []int{2, 3}, c.Snapshot().Records)

	// Pinned after the first load.
	floor = 3
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, minSpec{Min: 2}, c.Search())
	assert.Equal(t, []int{2, 3}, c.Snapshot().Records)
}

func TestController_MutateSuccessRefetches(t *testing.T) {
	b := &fakeBackend{records: []int{1}}
	c := newTestController(b, nil)
	require.NoError(t, c.Load(context.Background()))

	res := c.Mutate(context.Background(), "新增失敗", func(ctx context.Context) (view.Result, error) {
		b.mu.Lock()
		b.records = append(b.records, 7)
		b.mu.Unlock()
		return view.Ok("新增成功"), nil
	})

	assert.True(t, res.Success)
	assert.Equal(t, "新增成功", res.Message)
	assert.Equal(t, []int{1, 7}, c.Snapshot().Records)
	assert.Equal(t, 2, b.fetches)
}

func TestController_MutateFailureKeepsData(t *testing.T) {
	b := &fakeBackend{records: []int{1}}
	c := newTestController(b, nil)
	require.NoError(t, c.Load(context.Background()))

	res := c.Mutate(context.Background(), "刪除失敗", func(ctx context.Context) (view.Result, error) {
		return view.Result{}, errors.New("boom")
	})
	assert.False(t, res.Success)
	assert.Equal(t, "刪除失敗", res.Message)

	snap := c.Snapshot()
	assert.Equal(t, view.StateReady, snap.State)
	assert.False(t, snap.Loading)
	assert.Equal(t, "刪除失敗", snap.Error)
	assert.Equal(t, []int{1}, snap.Records)
	assert.Equal(t, 1, b.fetches)

	res = c.Mutate(context.Background(), "刪除失敗", func(ctx context.Context) (view.Result, error) {
		return view.Result{}, displayErr("User not found")
	})
	assert.Equal(t, "User not found", res.Message)
}

func TestController_MutationsAreSerialised(t *testing.T) {
	b := &fakeBackend{}
	c := newTestController(b, nil)

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Mutate(context.Background(), "失敗", func(ctx context.Context) (view.Result, error) {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					m := atomic.LoadInt32(&maxInFlight)
					if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
						break
					}
				}
				atomic.AddInt32(&inFlight, -1)
				return view.Ok("ok"), nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestController_CloseDiscardsInFlightFetch(t *testing.T) {
	started := make(chan struct{})
	var published int32

	c := New(Config[int, minSpec, int]{
		Domain: "numbers",
		Fetch: func(ctx context.Context) ([]int, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
		Apply:    applyMin,
		Observer: func(string, any) { atomic.AddInt32(&published, 1) },
	})

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()

	<-started
	before := atomic.LoadInt32(&published)
	c.Close()

	assert.ErrorIs(t, <-done, ErrDiscarded)
	assert.Equal(t, before, atomic.LoadInt32(&published))
	assert.ErrorIs(t, c.Load(context.Background()), ErrClosed)
	assert.False(t, c.Mutate(context.Background(), "已關閉", nil).Success)
}

func TestController_SupersededFetchIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	var calls int32

	c := New(Config[int, minSpec, int]{
		Domain: "numbers",
		Fetch: func(ctx context.Context) ([]int, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				<-release
				return []int{1}, nil
			}
			return []int{2}, nil
		},
		Apply: applyMin,
	})

	first := make(chan error, 1)
	go func() { first <- c.Load(context.Background()) }()
	for atomic.LoadInt32(&calls) == 0 {
	}

	require.NoError(t, c.Load(context.Background()))
	close(release)

	assert.ErrorIs(t, <-first, ErrDiscarded)
	assert.Equal(t, []int{2}, c.Snapshot().Records)
}

func TestController_CallerCancellationDoesNotAbortFetch(t *testing.T) {
	b := &fakeBackend{records: []int{4}}
	c := newTestController(b, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, c.Load(ctx))
	assert.Equal(t, []int{4}, c.Snapshot().Records)
}

func TestController_ObserverSeesTransitions(t *testing.T) {
	var mu sync.Mutex
	var states []view.State

	b := &fakeBackend{records: []int{1}}
	c := newTestController(b, func(domain string, snapshot any) {
		assert.Equal(t, "numbers", domain)
		snap := snapshot.(view.Snapshot[int, minSpec, int])
		mu.Lock()
		states = append(states, snap.State)
		mu.Unlock()
	})
	require.NoError(t, c.Load(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []view.State{view.StateLoading, view.StateReady}, states)
}

func TestRejected(t *testing.T) {
	res := Rejected(validator.ValidationErrors{{Field: "name", Message: "name is required"}})
	assert.False(t, res.Success)
	assert.Equal(t, map[string]string{"name": "name is required"}, res.Fields)

	res = Rejected(errors.New("plain"))
	assert.Equal(t, "plain", res.Message)
	assert.Nil(t, res.Fields)
}
