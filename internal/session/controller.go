package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SettingsSink receives settings patches pushed through the engine so the
// owner of the settings can persist them.
type SettingsSink interface {
	ApplySettings(p SettingsPatch) error
}

// Listener is told about every transition, in dispatch order.
type Listener func(s Session, d Derived)

type Options struct {
	Now          func() time.Time
	Store        SnapshotStore // nil disables persistence
	Settings     SettingsSink  // nil keeps settings in-session only
	Logger       zerolog.Logger
	Debounce     time.Duration
	SyncInterval time.Duration
}

// Controller owns the canonical session. Dispatches are applied one at a
// time; listeners run outside the lock and may dispatch again.
type Controller struct {
	now          func() time.Time
	log          zerolog.Logger
	settings     SettingsSink
	persister    *Persister
	syncInterval time.Duration

	mu         sync.Mutex
	state      Session
	version    uint64
	listeners  map[int]Listener
	nextID     int
	queue      []Session
	delivering bool
	rest       *restSync
	closed     bool

	wg sync.WaitGroup
}

func NewController(initial Session, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = DefaultSyncInterval
	}
	c := &Controller{
		now:          opts.Now,
		log:          opts.Logger.With().Str("component", "session").Logger(),
		settings:     opts.Settings,
		syncInterval: opts.SyncInterval,
		state:        normalize(initial.Clone(), opts.Now()),
		listeners:    make(map[int]Listener),
	}
	if opts.Store != nil {
		c.persister = NewPersister(opts.Store, opts.Debounce, opts.Logger)
	}
	c.mu.Lock()
	c.syncRestLocked()
	c.mu.Unlock()
	return c
}

// Dispatch applies a to the session. It is a no-op after Close.
func (c *Controller) Dispatch(a Action) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	now := c.now()
	c.state = Reduce(c.state, a, now)
	c.version++
	snap := c.state.Clone()
	c.syncRestLocked()
	if c.persister != nil {
		c.persister.Notify(snap)
	}
	c.queue = append(c.queue, snap)
	deliver := !c.delivering
	c.delivering = true
	c.mu.Unlock()

	if _, ok := a.(SyncRestTimer); !ok {
		c.log.Debug().Str("action", a.Kind()).Msg("Dispatch")
	}

	if p, ok := a.(UpdateSettings); ok && c.settings != nil {
		if err := c.settings.ApplySettings(p.Patch); err != nil {
			c.log.Error().Err(err).Msg("Failed to save settings")
		}
	}
	if deliver {
		c.drain()
	}
}

// drain delivers queued snapshots in order. Dispatches made by listeners are
// queued and delivered by the same loop.
func (c *Controller) drain() {
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.delivering = false
			c.mu.Unlock()
			return
		}
		snap := c.queue[0]
		c.queue = c.queue[1:]
		ls := make([]Listener, 0, len(c.listeners))
		for id := 0; id < c.nextID; id++ {
			if l, ok := c.listeners[id]; ok {
				ls = append(ls, l)
			}
		}
		c.mu.Unlock()

		d := Derive(snap, c.now())
		for _, l := range ls {
			l(snap, d)
		}
	}
}

// syncRestLocked starts or stops the rest synchronizer to match the timer.
func (c *Controller) syncRestLocked() {
	active := c.state.RestTimer.Active && !c.closed
	switch {
	case active && c.rest == nil:
		c.rest = startRestSync(c.syncInterval, c.Dispatch, &c.wg)
	case !active && c.rest != nil:
		c.rest.halt()
		c.rest = nil
	}
}

// State returns a copy of the current session.
func (c *Controller) State() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Derived computes the derived values of the current session.
func (c *Controller) Derived() Derived {
	return Derive(c.State(), c.now())
}

// Version counts applied transitions.
func (c *Controller) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Subscribe registers l and returns a function that removes it.
func (c *Controller) Subscribe(l Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Resting reports whether a rest synchronizer is running.
func (c *Controller) Resting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rest != nil
}

// Flush writes the current session immediately, bypassing the debounce.
func (c *Controller) Flush() {
	if c.persister == nil {
		return
	}
	c.mu.Lock()
	c.persister.Notify(c.state.Clone())
	c.mu.Unlock()
	c.persister.Flush()
}

// Close stops the rest synchronizer and writes any pending snapshot. Further
// dispatches are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.syncRestLocked()
	c.mu.Unlock()

	c.wg.Wait()
	if c.persister != nil {
		c.persister.Close()
	}
	c.log.Debug().Msg("Controller closed")
}
