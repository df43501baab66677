// Package coordinator owns the in-memory snapshot of all four collections
// and keeps it reconciled with the local cache and the remote store.
//
// LOAD (startup, explicit reload, after every login):
//
//  1. If the remote endpoint is configured, fetch everything from it.
//  2. If that worked, adopt it and write it to the local cache WITHOUT
//     pushing it back to the remote. Echoing freshly read data straight
//     back would turn every load into a write.
//  3. Otherwise (unconfigured, unreachable, error, panic) adopt the local cache.
//  4. If there are still no users, adopt the seed dataset and write it to
//     the local cache, again without pushing it upstream.
//
// Load never fails: it always ends with a well-formed, possibly empty,
// snapshot.
//
// SAVE (after every mutation):
//
//  1. Write the whole snapshot to the local cache. This is synchronous and
//     its error is returned; the local cache is the record of authority.
//  2. Hand the snapshot to the background pusher, which writes it to the
//     remote store. The caller never waits for it and never sees its error.
//
// Deleting a resident also removes every payment and issue for their flat
// in the same mutation. The stores do not enforce this relationship.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/township/internal/apperror"
	"github.com/sakif/township/internal/model"
	"github.com/sakif/township/internal/repository"
	"github.com/sakif/township/internal/seed"
)

// RemoteStore is the subset of remote.Client the coordinator needs.
type RemoteStore interface {
	Configured() bool
	FetchAll(ctx context.Context) (model.Dataset, error)
	ReplaceAll(ctx context.Context, s model.Subset) error
}

// Source records where the current snapshot came from.
type Source string

const (
	SourceNone   Source = ""
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceSeed   Source = "seed"
)

// State is the coordinator's lifecycle stage.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
)

// ErrNotLoaded is returned by mutations attempted before the first Load.
var ErrNotLoaded = errors.New("coordinator: dataset not loaded")

// SaveOptions controls a single Save.
type SaveOptions struct {
	// SuppressRemoteEcho skips the remote push. Only the load protocol sets
	// it; saves caused by mutations never do.
	SuppressRemoteEcho bool
}

// Status is a point-in-time view of the sync state.
type Status struct {
	State         State     `json:"state"`
	Source        Source    `json:"source"`
	Dirty         bool      `json:"dirty"`
	RemoteEnabled bool      `json:"remoteEnabled"`
	LoadedAt      time.Time `json:"loadedAt"`
	LastPushAt    time.Time `json:"lastPushAt"`
	LastPushError string    `json:"lastPushError,omitempty"`
	PushAttempts  uint64    `json:"pushAttempts"`
}

// Coordinator is the single owner of the session's dataset.
type Coordinator struct {
	remote RemoteStore
	cache  repository.Cache
	logger *slog.Logger
	seed   func(time.Time) model.Dataset
	now    func() time.Time

	pushTimeout time.Duration
	pusher      *pusher

	mu       sync.Mutex
	state    State
	source   Source
	data     model.Dataset
	loadedAt time.Time

	// guarded by pushMu; written from the pusher goroutine
	pushMu       sync.Mutex
	enqueuedSeq  uint64
	pushedSeq    uint64
	lastPushAt   time.Time
	lastPushErr  error
	pushAttempts uint64
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithSeed replaces the seed provisioner.
func WithSeed(fn func(time.Time) model.Dataset) Option {
	return func(c *Coordinator) { c.seed = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithPushTimeout bounds each background remote write.
func WithPushTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.pushTimeout = d
		}
	}
}

// New creates a Coordinator. remote may be nil, which is the same as an
// unconfigured remote. The returned Coordinator must be closed.
func New(remote RemoteStore, cache repository.Cache, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		remote:      remote,
		cache:       cache,
		logger:      logger,
		seed:        seed.Dataset,
		now:         time.Now,
		pushTimeout: 30 * time.Second,
		state:       StateUninitialized,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.data.Normalize()
	if c.remoteEnabled() {
		c.pusher = newPusher(remote, logger, c.pushTimeout, c.pushed)
	}
	return c
}

func (c *Coordinator) remoteEnabled() bool {
	return c.remote != nil && c.remote.Configured()
}

// Load runs the load protocol and returns where the data came from.
//
// Queued remote writes are sent before the remote is read, so a reload never
// adopts a remote copy older than this instance's own changes. If the latest
// change still has not been confirmed (its push failed), the remote is
// skipped and the local cache, which holds that change, is used instead.
func (c *Coordinator) Load(ctx context.Context) Source {
	c.Flush()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateLoading
	start := c.now()

	data, source := model.Dataset{}, SourceNone
	if c.unconfirmed() {
		c.logger.Warn("latest change not confirmed by the remote store, keeping local data")
	} else {
		data, source = c.loadRemote(ctx)
	}
	if source == SourceNone {
		data, source = c.loadLocal(ctx)
	}

	if !data.HasUsers() {
		c.logger.Info("no users found, seeding sample data",
			slog.String("reason", apperror.EmptyDataset(string(source)).Error()),
		)
		data = c.seed(c.now())
		source = SourceSeed
		c.data = data.Clone()
		if err := c.saveLocked(ctx, SaveOptions{SuppressRemoteEcho: true}); err != nil {
			c.logger.Error("failed to persist seed data locally", slog.String("error", err.Error()))
		}
	}

	data.Normalize()
	c.data = data
	c.source = source
	c.state = StateReady
	c.loadedAt = c.now()

	c.logger.Info("dataset loaded",
		slog.String("source", string(source)),
		slog.Int("users", len(data.Users)),
		slog.Int("payments", len(data.Payments)),
		slog.Int("issues", len(data.Issues)),
		slog.Int("notifications", len(data.Notifications)),
		slog.Duration("duration", c.now().Sub(start)),
	)
	return source
}

// loadRemote fetches and caches the remote dataset. Any failure, including a
// panic, returns SourceNone so the caller falls through to the local cache.
func (c *Coordinator) loadRemote(ctx context.Context) (data model.Dataset, source Source) {
	if !c.remoteEnabled() {
		c.logger.Debug("remote store not configured, using local cache")
		return model.Dataset{}, SourceNone
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("remote load panicked", slog.Any("panic", r))
			data, source = model.Dataset{}, SourceNone
		}
	}()

	fetched, err := c.remote.FetchAll(ctx)
	if err != nil {
		c.logger.Warn("remote load failed, falling back to local cache",
			slog.String("error", err.Error()),
			slog.Bool("remoteFailure", apperror.IsRemoteFailure(err)),
		)
		return model.Dataset{}, SourceNone
	}
	fetched.Normalize()

	c.data = fetched.Clone()
	if err := c.saveLocked(ctx, SaveOptions{SuppressRemoteEcho: true}); err != nil {
		c.logger.Warn("could not cache remote data, falling back to local cache",
			slog.String("error", err.Error()),
		)
		return model.Dataset{}, SourceNone
	}
	return fetched, SourceRemote
}

// loadLocal reads the local cache. A read error degrades to an empty dataset,
// which the seed step then fills.
func (c *Coordinator) loadLocal(ctx context.Context) (model.Dataset, Source) {
	d, err := c.cache.LoadDataset(ctx)
	if err != nil {
		c.logger.Error("failed to read local cache", slog.String("error", err.Error()))
		d = model.Dataset{}
	}
	d.Normalize()
	return d, SourceLocal
}

// Save runs the save protocol on the current snapshot.
func (c *Coordinator) Save(ctx context.Context, opts SaveOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked(ctx, opts)
}

func (c *Coordinator) saveLocked(ctx context.Context, opts SaveOptions) error {
	if err := c.cache.StoreDataset(ctx, c.data); err != nil {
		return fmt.Errorf("coordinator: saving local cache: %w", err)
	}
	if opts.SuppressRemoteEcho || c.pusher == nil {
		return nil
	}

	seq := c.pusher.enqueue(c.data.Clone())
	c.pushMu.Lock()
	if seq > c.enqueuedSeq {
		c.enqueuedSeq = seq
	}
	c.pushMu.Unlock()
	return nil
}

// unconfirmed reports whether a mutation has been enqueued that the remote
// store has not acknowledged.
func (c *Coordinator) unconfirmed() bool {
	c.pushMu.Lock()
	defer c.pushMu.Unlock()
	return c.enqueuedSeq > c.pushedSeq
}

// pushed is called by the pusher goroutine after every attempt.
func (c *Coordinator) pushed(seq uint64, err error) {
	c.pushMu.Lock()
	defer c.pushMu.Unlock()
	c.pushAttempts++
	c.lastPushAt = c.now()
	c.lastPushErr = err
	if err == nil && seq > c.pushedSeq {
		c.pushedSeq = seq
	}
}

// Mutate applies fn to a copy of the snapshot, adopts the copy if fn
// succeeds, and saves. If fn returns an error nothing changes.
func (c *Coordinator) Mutate(ctx context.Context, fn func(d *model.Dataset) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReady {
		return ErrNotLoaded
	}

	work := c.data.Clone()
	if err := fn(&work); err != nil {
		return err
	}
	work.Normalize()
	c.data = work

	return c.saveLocked(ctx, SaveOptions{})
}

// DeleteUser removes a user and, for a resident, every payment and issue
// carrying their flat number, then saves once.
//
// The admin user can never be deleted.
func (c *Coordinator) DeleteUser(ctx context.Context, username string) error {
	return c.Mutate(ctx, func(d *model.Dataset) error {
		if username == model.AdminUsername {
			return apperror.Forbidden("the admin user cannot be deleted")
		}
		idx := d.FindUser(username)
		if idx < 0 {
			return apperror.NotFound("user", username)
		}
		flat := d.Users[idx].FlatNumber
		d.Users = append(d.Users[:idx], d.Users[idx+1:]...)

		payments, issues := d.RemoveFlat(flat)
		c.logger.Info("user deleted",
			slog.String("username", username),
			slog.String("flatNumber", flat),
			slog.Int("paymentsRemoved", payments),
			slog.Int("issuesRemoved", issues),
		)
		return nil
	})
}

// Snapshot returns a deep copy of the current dataset.
func (c *Coordinator) Snapshot() model.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data.Clone()
}

// Source reports where the current snapshot was loaded from.
func (c *Coordinator) Source() Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status reports the load and push state. Dirty is true while the latest
// mutation has not been confirmed by the remote store.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	st := Status{
		State:         c.state,
		Source:        c.source,
		RemoteEnabled: c.remoteEnabled(),
		LoadedAt:      c.loadedAt,
	}
	c.mu.Unlock()

	c.pushMu.Lock()
	defer c.pushMu.Unlock()
	st.Dirty = c.enqueuedSeq > c.pushedSeq
	st.LastPushAt = c.lastPushAt
	st.PushAttempts = c.pushAttempts
	if c.lastPushErr != nil {
		st.LastPushError = c.lastPushErr.Error()
	}
	return st
}

// Session returns the logged-in user, or nil.
func (c *Coordinator) Session(ctx context.Context) (*model.User, error) {
	return c.cache.Session(ctx)
}

// SetSession records u as the logged-in identity.
func (c *Coordinator) SetSession(ctx context.Context, u model.User) error {
	return c.cache.SetSession(ctx, u)
}

func (c *Coordinator) ClearSession(ctx context.Context) error {
	return c.cache.ClearSession(ctx)
}

// Flush blocks until every queued remote write has been attempted. Saves
// never call it; tests and shutdown do.
func (c *Coordinator) Flush() {
	if c.pusher != nil {
		c.pusher.flush()
	}
}

// Close sends any pending remote write and stops the background pusher.
func (c *Coordinator) Close() {
	if c.pusher != nil {
		c.pusher.close()
	}
}
