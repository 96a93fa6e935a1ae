package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period before a state change is written.
const DefaultDebounce = 500 * time.Millisecond

// ErrNoSnapshot is returned by a SnapshotStore when the slot is empty.
var ErrNoSnapshot = errors.New("session: no saved snapshot")

// SnapshotStore is the single fixed-key slot holding the serialized session.
type SnapshotStore interface {
	LoadSession() ([]byte, error)
	SaveSession(data []byte) error
	ClearSession() error
}

// Marshal serializes a full session snapshot.
func Marshal(s Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

// Restore rehydrates a snapshot on top of base, so fields missing from older
// snapshots keep base's values. The result is always paused and carries no
// pending haptic. A session saved while paused keeps its original pause
// timestamp so its duration stays frozen across the restart.
func Restore(data []byte, base Session, now time.Time) (Session, error) {
	if len(data) == 0 {
		return Session{}, ErrNoSnapshot
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	s := base.Clone()
	// json merges array elements and map keys into existing values; a saved
	// collection must replace base's, not blend with it.
	if _, ok := fields["exercises"]; ok {
		s.Exercises = nil
	}
	if _, ok := fields["previousExerciseData"]; ok {
		s.PreviousExerciseData = nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	if s.StartTimestamp.IsZero() {
		return Session{}, errors.New("unmarshal session: missing start timestamp")
	}

	if !s.IsPaused || s.LastPauseTimestamp == nil || s.LastPauseTimestamp.After(now) {
		t := now
		s.LastPauseTimestamp = &t
	}
	s.IsPaused = true
	s.PendingHaptic = nil
	if s.ID == "" {
		s.ID = base.ID
	}
	return normalize(s, now), nil
}

// Load reads the slot and restores it, falling back to fresh() on absence or
// any error. It never fails.
func Load(store SnapshotStore, fresh func() Session, now time.Time, log zerolog.Logger) Session {
	base := fresh()
	if store == nil {
		return base
	}
	data, err := store.LoadSession()
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			log.Warn().Err(err).Msg("Failed to read saved session, starting fresh")
		}
		return base
	}
	s, err := Restore(data, base, now)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding malformed saved session")
		return base
	}
	log.Info().Str("session", s.ID).Int("exercises", len(s.Exercises)).Msg("Restored saved session")
	return s
}

// Persister writes snapshots to a SnapshotStore after a quiet period,
// coalescing bursts of changes into one write.
type Persister struct {
	store    SnapshotStore
	debounce time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *Session
	closed  bool
	writes  int
}

func NewPersister(store SnapshotStore, debounce time.Duration, log zerolog.Logger) *Persister {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Persister{
		store:    store,
		debounce: debounce,
		log:      log.With().Str("component", "persister").Logger(),
	}
}

// Notify records s as the latest state and restarts the quiet period.
func (p *Persister) Notify(s Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.pending = &s
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, p.fire)
}

func (p *Persister) fire() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.writeLocked()
}

// Flush writes any pending snapshot now.
func (p *Persister) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.writeLocked()
}

// Close cancels the quiet period and writes the last pending snapshot, so a
// teardown never drops the final edits.
func (p *Persister) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.writeLocked()
	p.closed = true
}

// Writes reports how many snapshots have been written.
func (p *Persister) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}

func (p *Persister) writeLocked() {
	if p.pending == nil {
		return
	}
	s := *p.pending
	p.pending = nil

	data, err := Marshal(s)
	if err != nil {
		p.log.Error().Err(err).Msg("Failed to serialize session")
		return
	}
	if err := p.store.SaveSession(data); err != nil {
		p.log.Error().Err(err).Msg("Failed to save session")
		return
	}
	p.writes++
	p.log.Debug().Str("session", s.ID).Int("bytes", len(data)).Msg("Session saved")
}
