// Package autosave keeps working copies of archives in memory and writes
// them back to a graph.Store after a quiet period, so bursts of edits
// produce a single save.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/kinship/internal/archive"
	"github.com/dusk-indust/kinship/internal/graph"
	"github.com/dusk-indust/kinship/internal/logging"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("autosave: cache closed")

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = time.Second

// Options configures a Cache.
type Options struct {
	// Debounce is the quiet period before a dirty archive is saved.
	// Negative values disable debouncing: every write saves immediately.
	Debounce time.Duration
	Logger   *zap.Logger
}

// Cache is a write-behind cache of archives keyed by slug.
type Cache struct {
	store    graph.Store
	debounce time.Duration
	log      *zap.Logger

	mu       sync.Mutex
	entries  map[string]*entry
	closed   bool
	inflight sync.WaitGroup // timer-triggered flushes
}

type entry struct {
	archive *archive.Archive
	version uint64 // bumped on every write
	saved   uint64 // version last written to the store
	timer   *time.Timer
	removed bool // dropped by Evict or Delete; never saved again

	saveMu sync.Mutex // serializes saves and removal of this entry
}

func (e *entry) dirty() bool { return e.version != e.saved }

// New returns a Cache in front of store.
func New(store graph.Store, opts Options) *Cache {
	d := opts.Debounce
	if d == 0 {
		d = DefaultDebounce
	}
	return &Cache{
		store:    store,
		debounce: d,
		log:      logging.OrNop(opts.Logger),
		entries:  make(map[string]*entry),
	}
}

// Store returns the backing store.
func (c *Cache) Store() graph.Store {
	return c.store
}

// Get returns a copy of the archive, loading it from the store on a miss.
func (c *Cache) Get(ctx context.Context, id string) (*archive.Archive, error) {
	e, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return e.archive.Clone(), nil
}

// load returns the cached entry, reading through to the store on a miss.
func (c *Cache) load(ctx context.Context, id string) (*entry, error) {
	c.mu.Lock()
	if e, ok := c.entries[id]; ok {
		c.mu.Unlock()
		return e, nil
	}
	c.mu.Unlock()

	a, err := c.store.GetArchive(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("autosave: load %s: %w", id, err)
	}
	if a == nil {
		return nil, fmt.Errorf("autosave: archive %s: %w", id, graph.ErrNotFound)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have loaded or written it meanwhile; keep theirs.
	if e, ok := c.entries[id]; ok {
		return e, nil
	}
	e := &entry{archive: a}
	c.entries[id] = e
	c.log.Debug("archive loaded", zap.String("archive", id), zap.Int("members", len(a.Members)))
	return e, nil
}

// Put replaces the cached copy of a and schedules a save.
func (c *Cache) Put(ctx context.Context, a *archive.Archive) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("autosave: put: archive id is required")
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	e, ok := c.entries[a.ID]
	if !ok {
		e = &entry{}
		c.entries[a.ID] = e
	}
	e.archive = a.Clone()
	e.version++
	c.mu.Unlock()

	return c.schedule(ctx, a.ID, e)
}

// Update applies fn to a working copy of the archive. When fn succeeds the
// copy replaces the cached archive and a save is scheduled; when it fails
// the cache is left untouched. The updated archive is returned.
func (c *Cache) Update(ctx context.Context, id string, fn func(*archive.Archive) error) (*archive.Archive, error) {
	for {
		e, err := c.load(ctx, id)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, ErrClosed
		}
		if e.removed {
			// Evicted or deleted since load; read through again.
			c.mu.Unlock()
			continue
		}
		work := e.archive.Clone()
		if err := fn(work); err != nil {
			c.mu.Unlock()
			return nil, err
		}
		e.archive = work
		e.version++
		out := work.Clone()
		c.mu.Unlock()

		if err := c.schedule(ctx, id, e); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// schedule arms (or re-arms) the debounce timer, or saves right away when
// debouncing is disabled.
func (c *Cache) schedule(ctx context.Context, id string, e *entry) error {
	if c.debounce < 0 {
		return c.flushEntry(ctx, id, e)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.removed {
		return nil
	}
	if e.timer == nil {
		e.timer = time.AfterFunc(c.debounce, func() { c.onTimer(id) })
	} else {
		e.timer.Reset(c.debounce)
	}
	c.log.Debug("save scheduled", zap.String("archive", id), zap.Duration("in", c.debounce))
	return nil
}

func (c *Cache) onTimer(id string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	e, ok := c.entries[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	c.inflight.Add(1)
	c.mu.Unlock()
	defer c.inflight.Done()

	if err := c.flushEntry(context.Background(), id, e); err != nil {
		c.log.Error("autosave failed", zap.String("archive", id), zap.Error(err))
	}
}

// Flush saves the archive now if it has unsaved changes.
func (c *Cache) Flush(ctx context.Context, id string) error {
	c.mu.Lock()
	e, ok := c.entries[id]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return c.flushEntry(ctx, id, e)
}

// FlushAll saves every dirty archive concurrently.
func (c *Cache) FlushAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range c.DirtyIDs() {
		g.Go(func() error {
			return c.Flush(gctx, id)
		})
	}
	return g.Wait()
}

func (c *Cache) flushEntry(ctx context.Context, id string, e *entry) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	return c.saveLocked(ctx, id, e)
}

// saveLocked writes the current version of e. The caller holds e.saveMu.
func (c *Cache) saveLocked(ctx context.Context, id string, e *entry) error {
	c.mu.Lock()
	if e.removed || !e.dirty() {
		c.mu.Unlock()
		return nil
	}
	snapshot := e.archive.Clone()
	version := e.version
	c.mu.Unlock()

	if err := c.store.SaveArchive(ctx, snapshot); err != nil {
		return fmt.Errorf("autosave: save %s: %w", id, err)
	}

	c.mu.Lock()
	if version > e.saved {
		e.saved = version
	}
	c.mu.Unlock()
	c.log.Info("archive saved",
		zap.String("archive", id),
		zap.Int("members", len(snapshot.Members)),
		zap.Int("relations", len(snapshot.Relations)),
	)
	return nil
}

// Dirty reports whether the archive has changes not yet saved.
func (c *Cache) Dirty(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	return ok && e.dirty()
}

// DirtyIDs lists archives with unsaved changes, sorted.
func (c *Cache) DirtyIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []string
	for id, e := range c.entries {
		if e.dirty() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Evict flushes the archive and drops it from memory. Writes that land
// while it is flushing are saved before the entry is dropped.
func (c *Cache) Evict(ctx context.Context, id string) error {
	c.mu.Lock()
	e, ok := c.entries[id]
	c.mu.Unlock()
	if !ok {
		return nil
	}

	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	for {
		c.mu.Lock()
		if e.removed {
			c.mu.Unlock()
			return nil
		}
		if !e.dirty() {
			c.removeLocked(id, e)
			c.mu.Unlock()
			return nil
		}
		c.mu.Unlock()

		if err := c.saveLocked(ctx, id, e); err != nil {
			return err
		}
	}
}

// Delete drops the archive from memory and from the store. A save already
// running for it finishes before the stored copy is deleted.
func (c *Cache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	e, cached := c.entries[id]
	if cached {
		c.removeLocked(id, e)
	}
	c.mu.Unlock()

	if cached {
		e.saveMu.Lock()
		defer e.saveMu.Unlock()
	}

	err := c.store.DeleteArchive(ctx, id)
	if err != nil && !(cached && errors.Is(err, graph.ErrNotFound)) {
		return fmt.Errorf("autosave: delete %s: %w", id, err)
	}
	c.log.Info("archive deleted", zap.String("archive", id))
	return nil
}

// removeLocked detaches e from the cache. The caller holds c.mu.
func (c *Cache) removeLocked(id string, e *entry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.removed = true
	if c.entries[id] == e {
		delete(c.entries, id)
	}
}

// Close stops all timers, waits for running saves and flushes everything
// still dirty. Further writes fail with ErrClosed.
func (c *Cache) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	for _, e := range c.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	c.mu.Unlock()

	c.inflight.Wait()
	return c.FlushAll(ctx)
}
