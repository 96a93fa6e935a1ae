// Package records spots personal records as sets are completed.
package records

import (
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/sadopc/liftr/internal/session"
	"github.com/sadopc/liftr/internal/store"
)

// DefaultCacheSize bounds the number of exercises whose history best is kept.
const DefaultCacheSize = 128

// History looks up the best historical set of an exercise.
type History interface {
	BestSet(name string) (*store.BestSet, error)
}

// Estimate1RM is the Epley one-rep-max estimate. A single rep is the weight
// itself; no reps estimate nothing.
func Estimate1RM(weight float64, reps int) float64 {
	switch {
	case reps <= 0 || weight <= 0:
		return 0
	case reps == 1:
		return weight
	}
	return weight * (1 + float64(reps)/30)
}

// Detector compares newly completed sets against history and against the
// rest of the session. Only a set that beats an existing history best is a
// record; the first time an exercise is performed sets the baseline.
type Detector struct {
	history History
	log     zerolog.Logger

	mu    sync.Mutex
	cache *lru.Cache[string, float64]
	seen  map[string]struct{}
}

func New(history History, cacheSize int, log zerolog.Logger) (*Detector, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, float64](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create history cache: %w", err)
	}
	return &Detector{
		history: history,
		log:     log.With().Str("component", "records").Logger(),
		cache:   cache,
		seen:    make(map[string]struct{}),
	}, nil
}

// Prime marks every set already completed in s as seen, so a restored
// session does not celebrate old sets again.
func (d *Detector) Prime(s session.Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range completions(s) {
		d.seen[c.key] = struct{}{}
	}
}

// Observe returns a record for each set completed since the last call that
// beats the best known estimate for its exercise.
func (d *Detector) Observe(s session.Session) []session.PersonalRecord {
	d.mu.Lock()
	defer d.mu.Unlock()

	all := completions(s)
	sessionBest := make(map[string]float64)
	var fresh []completion
	for _, c := range all {
		if _, ok := d.seen[c.key]; ok {
			sessionBest[c.name] = max(sessionBest[c.name], c.e1rm)
			continue
		}
		d.seen[c.key] = struct{}{}
		fresh = append(fresh, c)
	}
	sort.SliceStable(fresh, func(i, j int) bool { return fresh[i].at.Before(fresh[j].at) })

	var out []session.PersonalRecord
	for _, c := range fresh {
		hist := d.historyBest(c.name)
		best := max(hist, sessionBest[c.name])
		if hist > 0 && c.e1rm > best {
			out = append(out, session.PersonalRecord{
				ExerciseName: c.name,
				Weight:       c.weight,
				Reps:         c.reps,
				Estimated1RM: c.e1rm,
				PreviousBest: best,
			})
			d.log.Info().Str("exercise", c.name).Float64("e1rm", c.e1rm).Float64("previous", best).Msg("Personal record")
		}
		sessionBest[c.name] = max(sessionBest[c.name], c.e1rm)
	}
	return out
}

// Reset forgets seen sets and cached history, for use after a workout is
// finished and history has changed.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache.Purge()
	d.seen = make(map[string]struct{})
}

func (d *Detector) historyBest(name string) float64 {
	if v, ok := d.cache.Get(name); ok {
		return v
	}
	if d.history == nil {
		return 0
	}
	b, err := d.history.BestSet(name)
	if err != nil {
		d.log.Warn().Err(err).Str("exercise", name).Msg("History lookup failed")
		return 0
	}
	var v float64
	if b != nil {
		v = Estimate1RM(b.Weight, b.Reps)
	}
	d.cache.Add(name, v)
	return v
}

type completion struct {
	key    string
	name   string
	weight float64
	reps   int
	e1rm   float64
	at     time.Time
}

func completions(s session.Session) []completion {
	var out []completion
	for ei, ex := range s.Exercises {
		for si, set := range ex.Sets {
			if set.CompletedAt == nil {
				continue
			}
			out = append(out, completion{
				key:    fmt.Sprintf("%s/%d/%d/%d", s.ID, ei, si, set.CompletedAt.UnixNano()),
				name:   ex.Name,
				weight: set.Weight,
				reps:   set.Reps,
				e1rm:   Estimate1RM(set.Weight, set.Reps),
				at:     *set.CompletedAt,
			})
		}
	}
	return out
}
