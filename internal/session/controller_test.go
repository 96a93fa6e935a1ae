package session

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeClock is a settable clock safe for use from timer goroutines.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type recordingSink struct {
	mu      sync.Mutex
	patches []SettingsPatch
}

func (r *recordingSink) ApplySettings(p SettingsPatch) error {
	r.mu.Lock()
	r.patches = append(r.patches, p)
	r.mu.Unlock()
	return nil
}

func newTestController(t *testing.T, opts Options) (*Controller, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: t0}
	opts.Now = clock.Now
	opts.Logger = zerolog.Nop()
	c := NewController(newTestSession(), opts)
	t.Cleanup(c.Close)
	return c, clock
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestControllerDispatchAndDerived(t *testing.T) {
	c, _ := newTestController(t, Options{})

	c.Dispatch(CompleteSet{})
	d := c.Derived()
	if d.CompletedSetsCount != 1 || d.TotalVolume != 500 {
		t.Fatalf("unexpected derived values: %+v", d)
	}
	if c.Version() != 1 {
		t.Fatalf("expected version 1, got %d", c.Version())
	}
}

func TestControllerListenersInOrder(t *testing.T) {
	c, _ := newTestController(t, Options{})

	var mu sync.Mutex
	var names []string
	unsubscribe := c.Subscribe(func(s Session, d Derived) {
		mu.Lock()
		names = append(names, s.Exercises[0].Name)
		mu.Unlock()
	})

	c.Dispatch(RenameExercise{Index: 0, Name: "A"})
	c.Dispatch(RenameExercise{Index: 0, Name: "B"})
	unsubscribe()
	c.Dispatch(RenameExercise{Index: 0, Name: "C"})

	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Fatalf("unexpected notifications: %v", names)
	}
}

func TestControllerListenerCanDispatch(t *testing.T) {
	c, _ := newTestController(t, Options{})

	var seen []*Haptic
	c.Subscribe(func(s Session, _ Derived) {
		seen = append(seen, s.PendingHaptic)
		if s.PendingHaptic != nil {
			c.Dispatch(ClearPendingHaptic{})
		}
	})
	c.Dispatch(OpenOverlay{Overlay: OverlayTutorial})
	c.Dispatch(CompleteSet{})

	if c.State().PendingHaptic != nil {
		t.Fatal("listener should have acknowledged the haptic")
	}
	if len(seen) != 3 || seen[1] == nil || seen[2] != nil {
		t.Fatalf("expected nil, SET_COMPLETE, nil; got %v", seen)
	}
}

func TestControllerRestSyncLifecycle(t *testing.T) {
	c, clock := newTestController(t, Options{SyncInterval: 10 * time.Millisecond})

	if c.Resting() {
		t.Fatal("no synchronizer before rest starts")
	}
	c.Dispatch(StartRest{Seconds: 30})
	if !c.Resting() {
		t.Fatal("synchronizer should start with the rest timer")
	}

	clock.Set(at(12))
	waitFor(t, "countdown sync", func() bool { return c.State().RestTimer.TimeLeft == 18 })

	clock.Set(at(31))
	waitFor(t, "rest end", func() bool { return !c.State().RestTimer.Active })
	waitFor(t, "synchronizer stop", func() bool { return !c.Resting() })

	s := c.State()
	if s.PendingHaptic == nil || *s.PendingHaptic != HapticRestEnd {
		t.Fatalf("expected REST_END, got %v", s.PendingHaptic)
	}
}

func TestControllerSkipRestStopsSync(t *testing.T) {
	c, _ := newTestController(t, Options{SyncInterval: 10 * time.Millisecond})
	c.Dispatch(CompleteSet{})
	if !c.Resting() {
		t.Fatal("auto rest should start synchronizer")
	}
	c.Dispatch(SkipRest{})
	if c.Resting() {
		t.Fatal("skip should stop synchronizer")
	}
}

func TestControllerRestoredRestStartsSync(t *testing.T) {
	clock := &fakeClock{now: t0}
	s := Reduce(newTestSession(), StartRest{Seconds: 5}, t0)
	c := NewController(s, Options{Now: clock.Now, Logger: zerolog.Nop(), SyncInterval: 10 * time.Millisecond})
	defer c.Close()
	if !c.Resting() {
		t.Fatal("an initially active rest timer should be synchronized")
	}
	clock.Set(at(10))
	waitFor(t, "rest end", func() bool { return !c.State().RestTimer.Active })
}

func TestControllerPersistsDebounced(t *testing.T) {
	store := &memStore{}
	c, _ := newTestController(t, Options{Store: store, Debounce: 20 * time.Millisecond})

	for i := range 10 {
		c.Dispatch(UpdateSetField{Field: TargetReps, Value: float64(i)})
	}
	waitFor(t, "debounced write", func() bool { return store.saveCount() >= 1 })
	time.Sleep(50 * time.Millisecond)
	if got := store.saveCount(); got != 1 {
		t.Fatalf("expected one coalesced write, got %d", got)
	}
}

func TestControllerCloseFlushesAndStops(t *testing.T) {
	store := &memStore{}
	clock := &fakeClock{now: t0}
	c := NewController(newTestSession(), Options{
		Now: clock.Now, Logger: zerolog.Nop(), Store: store,
		Debounce: time.Hour, SyncInterval: 10 * time.Millisecond,
	})

	c.Dispatch(CompleteSet{})
	c.Close()

	if store.saveCount() != 1 {
		t.Fatalf("close should flush pending write, got %d writes", store.saveCount())
	}
	if c.Resting() {
		t.Fatal("close should stop synchronizer")
	}
	v := c.Version()
	c.Dispatch(CompleteSet{})
	if c.Version() != v {
		t.Fatal("dispatch after close should be ignored")
	}
	c.Close()
}

func TestControllerConcurrentDispatchPersistsLatest(t *testing.T) {
	store := &memStore{}
	c := NewController(newTestSession(), Options{
		Logger: zerolog.Nop(), Store: store, Debounce: time.Millisecond,
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				c.Dispatch(AddSet{})
			}
		}()
	}
	wg.Wait()
	c.Close()

	store.mu.Lock()
	data := store.data
	store.mu.Unlock()
	saved, err := Restore(data, newTestSession(), t0)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	want := len(c.State().Exercises[0].Sets)
	if got := len(saved.Exercises[0].Sets); got != want {
		t.Fatalf("saved %d sets, controller has %d", got, want)
	}
	if want != 3+8*50 {
		t.Fatalf("expected %d sets, got %d", 3+8*50, want)
	}
}

func TestControllerForwardsSettings(t *testing.T) {
	sink := &recordingSink{}
	c, _ := newTestController(t, Options{Settings: sink})

	rest := 45
	c.Dispatch(UpdateSettings{Patch: SettingsPatch{DefaultRestTime: &rest}})
	c.Dispatch(CompleteSet{})

	if len(sink.patches) != 1 || *sink.patches[0].DefaultRestTime != 45 {
		t.Fatalf("expected one forwarded patch, got %v", sink.patches)
	}
	if c.State().AppSettings.DefaultRestTime != 45 {
		t.Fatal("session settings should be merged")
	}
}

func TestControllerStateIsCopy(t *testing.T) {
	c, _ := newTestController(t, Options{})
	s := c.State()
	s.Exercises[0].Name = "mutated"
	if c.State().Exercises[0].Name != "Squat" {
		t.Fatal("State should return a copy")
	}
}
