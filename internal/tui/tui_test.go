package tui

import (
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/sadopc/liftr/internal/records"
	"github.com/sadopc/liftr/internal/session"
	"github.com/sadopc/liftr/internal/store"
)

var t0 = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return t0 }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// recordWorkout stores a finished workout of one exercise with every set
// completed, a day before t0.
func recordWorkout(t *testing.T, st *store.Store, exercise string, sets ...session.SetValues) *store.Workout {
	t.Helper()
	start := t0.Add(-24 * time.Hour)
	ex := session.Exercise{Name: exercise}
	for _, v := range sets {
		ex.Sets = append(ex.Sets, session.Set{Weight: v.Weight, Reps: v.Reps})
	}
	sess := session.New("Earlier", []session.Exercise{ex}, 0, session.DefaultSettings(), start)
	for i := range sets {
		sess = session.Reduce(sess, session.CompleteSet{}, start.Add(time.Duration(i+1)*time.Minute))
	}
	w, err := st.FinishWorkout(sess, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("finish workout: %v", err)
	}
	return w
}

type testApp struct {
	app   App
	ctrl  *session.Controller
	store *store.Store
	bells int
}

func newTestApp(t *testing.T, st *store.Store, exercises ...session.Exercise) *testApp {
	t.Helper()
	if st == nil {
		st = newTestStore(t)
	}
	sess := session.New("Push", exercises, 0, session.DefaultSettings(), t0)
	ctrl := session.NewController(sess, session.Options{
		Now:      fixedNow,
		Store:    st,
		Settings: st,
		Logger:   zerolog.Nop(),
		Debounce: time.Millisecond,
	})
	t.Cleanup(ctrl.Close)

	det, err := records.New(st, 16, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ta := &testApp{ctrl: ctrl, store: st}
	ta.app = NewApp(Options{
		Controller:   ctrl,
		Store:        st,
		Records:      det,
		Logger:       zerolog.Nop(),
		Now:          fixedNow,
		Bell:         func() { ta.bells++ },
		HistoryLimit: 10,
		ExportDir:    t.TempDir(),
	})
	t.Cleanup(ta.app.Close)
	return ta
}

func (ta *testApp) send(msg tea.Msg) tea.Cmd {
	m, cmd := ta.app.Update(msg)
	ta.app = m.(App)
	return cmd
}

func (ta *testApp) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = ta.send(keyMsg(k))
	}
	return cmd
}

// sync delivers the controller's current state the way the bridge would.
func (ta *testApp) sync() tea.Cmd {
	return ta.send(stateMsg{state: ta.ctrl.State(), derived: ta.ctrl.Derived()})
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func squat(n int) session.Exercise {
	return session.Exercise{Name: "Squat", MuscleGroup: "legs", Sets: make([]session.Set, n)}
}

// ============================================================
// App
// ============================================================

func TestNewApp(t *testing.T) {
	ta := newTestApp(t, nil, squat(3))
	if ta.app.activeView != viewWorkout {
		t.Fatal("app should start on the workout view")
	}
	if ta.app.Result() != nil {
		t.Fatal("no result before the session ends")
	}
	if ta.app.workout.state.Name != "Push" {
		t.Fatalf("workout view should start from the controller state, got %q", ta.app.workout.state.Name)
	}
}

func TestAppLoadingState(t *testing.T) {
	ta := newTestApp(t, nil)
	if out := ta.app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppViewStates(t *testing.T) {
	ta := newTestApp(t, nil, squat(3))
	ta.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	ta.sync()

	for _, v := range []viewState{viewWorkout, viewHistory, viewSettings} {
		ta.app.activeView = v
		if out := ta.app.View(); out == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.send(tea.WindowSizeMsg{Width: 120, Height: 40})

	header := ta.app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppStatusMessage(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	ta.send(statusMsg{text: "test status"})

	if !strings.Contains(ta.app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppTabSwitching(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.press("2")
	if ta.app.activeView != viewHistory {
		t.Fatalf("expected history view, got %d", ta.app.activeView)
	}
	ta.press("tab")
	if ta.app.activeView != viewSettings {
		t.Fatalf("expected settings view, got %d", ta.app.activeView)
	}
	ta.press("tab")
	if ta.app.activeView != viewWorkout {
		t.Fatalf("tab should wrap to workout, got %d", ta.app.activeView)
	}
}

// ============================================================
// Workout keys
// ============================================================

func TestCompleteSetKey(t *testing.T) {
	ta := newTestApp(t, nil, squat(2))
	ta.press("c")

	s := ta.ctrl.State()
	if !s.Exercises[0].Sets[0].Completed() || s.Exercises[0].Sets[1].Completed() {
		t.Fatal("c should complete the active set only")
	}

	ta.press("u")
	if ta.ctrl.State().Exercises[0].Sets[0].Completed() {
		t.Fatal("u should undo the completed set")
	}
}

func TestNumpadEntry(t *testing.T) {
	ta := newTestApp(t, nil, squat(1))
	ta.press("w", "1", "0", "2", ".", "5", "enter")

	s := ta.ctrl.State()
	if s.Numpad.IsOpen {
		t.Fatal("numpad should close after submit")
	}
	if got := s.Exercises[0].Sets[0].Weight; got != 102.5 {
		t.Fatalf("weight = %v, want 102.5", got)
	}

	ta.press("r", "8", "backspace", "5", "enter")
	if got := ta.ctrl.State().Exercises[0].Sets[0].Reps; got != 5 {
		t.Fatalf("reps = %d, want 5", got)
	}
}

func TestNumpadCapturesGlobalKeys(t *testing.T) {
	ta := newTestApp(t, nil, squat(1))
	ta.press("w", "2", "q")

	if ta.app.activeView != viewWorkout {
		t.Fatal("digits should go to the numpad, not switch tabs")
	}
	s := ta.ctrl.State()
	if !s.Numpad.IsOpen || s.Numpad.Value != "2" {
		t.Fatalf("unexpected numpad %+v", s.Numpad)
	}

	ta.press("esc")
	if ta.ctrl.State().Numpad.IsOpen {
		t.Fatal("esc should close the numpad")
	}
	if ta.ctrl.State().Exercises[0].Sets[0].Weight != 0 {
		t.Fatal("cancelled numpad should not write the set")
	}
}

func TestPauseKey(t *testing.T) {
	ta := newTestApp(t, nil, squat(1))
	ta.press(" ")
	if !ta.ctrl.State().IsPaused {
		t.Fatal("space should pause")
	}
	ta.press(" ")
	if ta.ctrl.State().IsPaused {
		t.Fatal("space should resume")
	}
}

func TestRestKeys(t *testing.T) {
	ta := newTestApp(t, nil, squat(1))
	ta.press("t")
	rt := ta.ctrl.State().RestTimer
	if !rt.Active || rt.TimeLeft != session.FallbackRestTime {
		t.Fatalf("unexpected rest timer after t: %+v", rt)
	}

	ta.press("+")
	if got := ta.ctrl.State().RestTimer.TimeLeft; got != session.FallbackRestTime+restStep {
		t.Fatalf("time left = %d, want %d", got, session.FallbackRestTime+restStep)
	}
	ta.press("-")
	if got := ta.ctrl.State().RestTimer.TimeLeft; got != session.FallbackRestTime {
		t.Fatalf("time left = %d, want %d", got, session.FallbackRestTime)
	}

	ta.press("s")
	if ta.ctrl.State().RestTimer.Active {
		t.Fatal("s should skip rest")
	}
}

func TestSetKeys(t *testing.T) {
	ta := newTestApp(t, nil, session.Exercise{Name: "Squat", Sets: []session.Set{{Weight: 100, Reps: 5}}})

	ta.press("d")
	sets := ta.ctrl.State().Exercises[0].Sets
	if len(sets) != 2 || sets[1].Weight != 100 || sets[1].Reps != 5 {
		t.Fatalf("d should duplicate the last set, got %+v", sets)
	}

	ta.press("a")
	if n := len(ta.ctrl.State().Exercises[0].Sets); n != 3 {
		t.Fatalf("a should add a set, got %d", n)
	}

	ta.press("x", "x")
	if n := len(ta.ctrl.State().Exercises[0].Sets); n != 1 {
		t.Fatalf("x should remove the last set, got %d", n)
	}
}

func TestExerciseNavigationAndReorder(t *testing.T) {
	bench := session.Exercise{Name: "Bench", Sets: make([]session.Set, 1)}
	ta := newTestApp(t, nil, squat(1), bench)

	ta.press("j")
	if got := ta.ctrl.State().CurrentExerciseIndex; got != 1 {
		t.Fatalf("j should move to the next exercise, got %d", got)
	}

	ta.press("K")
	s := ta.ctrl.State()
	if s.Exercises[0].Name != "Bench" || s.CurrentExerciseIndex != 0 {
		t.Fatalf("K should move Bench up and follow it, got %q at %d", s.Exercises[0].Name, s.CurrentExerciseIndex)
	}

	ta.press("X")
	s = ta.ctrl.State()
	if len(s.Exercises) != 1 || s.Exercises[0].Name != "Squat" {
		t.Fatalf("X should remove the current exercise, got %+v", s.Exercises)
	}
}

func TestSelectorJump(t *testing.T) {
	ta := newTestApp(t, nil, squat(1), squat(1), squat(1))
	ta.press("o")
	if !ta.ctrl.State().Overlays.ExerciseSelector {
		t.Fatal("o should open the selector")
	}

	ta.press("j", "j", "enter")
	s := ta.ctrl.State()
	if s.CurrentExerciseIndex != 2 || s.Overlays.ExerciseSelector {
		t.Fatalf("selector should jump to 2 and close, got %d open=%v", s.CurrentExerciseIndex, s.Overlays.ExerciseSelector)
	}
}

func TestTutorialToggle(t *testing.T) {
	ta := newTestApp(t, nil, squat(1))
	ta.press("i")
	if !ta.ctrl.State().Overlays.Tutorial {
		t.Fatal("i should open the tutorial")
	}
	ta.press("esc")
	if ta.ctrl.State().Overlays.Tutorial {
		t.Fatal("esc should close the tutorial")
	}
}

func TestEscHidesCelebration(t *testing.T) {
	ta := newTestApp(t, nil, squat(1))
	ta.ctrl.Dispatch(session.ShowPRCelebration{Record: session.PersonalRecord{ExerciseName: "Squat"}})
	ta.ctrl.Dispatch(session.ShowConfetti{})

	ta.press("esc")
	s := ta.ctrl.State()
	if s.ShowPRCelebration != nil || s.ShowConfetti {
		t.Fatal("esc should hide the celebration")
	}
}

func TestQuickAddOverlay(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.press("n")
	if !ta.ctrl.State().Overlays.QuickAdd || ta.app.workout.form == nil {
		t.Fatal("n should open the quick-add form")
	}
	if !ta.app.isCapturing() {
		t.Fatal("an open form should capture keys")
	}

	ta.press("esc")
	if ta.ctrl.State().Overlays.QuickAdd || ta.app.workout.form != nil {
		t.Fatal("esc should close the quick-add form")
	}
}

func TestFinishConfirmOpensForm(t *testing.T) {
	ta := newTestApp(t, nil, squat(1))
	ta.press("F")
	if ta.app.workout.formKind != formFinish {
		t.Fatal("F should ask for confirmation")
	}
	ta.press("esc")
	if ta.app.workout.form != nil {
		t.Fatal("esc should cancel the confirmation")
	}
	if ta.app.Result() != nil {
		t.Fatal("cancelled finish should not end the session")
	}
}

func TestPromptBlocksWorkoutKeys(t *testing.T) {
	ta := newTestApp(t, nil, squat(1))
	ta.ctrl.Dispatch(session.OpenOverlay{Overlay: session.OverlayWarmupPrompt})

	ta.press("c")
	if ta.ctrl.State().Exercises[0].Sets[0].Completed() {
		t.Fatal("an open prompt should swallow workout keys")
	}
	ta.press("enter")
	if ta.ctrl.State().Overlays.WarmupPrompt {
		t.Fatal("enter should acknowledge the prompt")
	}
}

// ============================================================
// Library
// ============================================================

func TestAddFromHistoryUsesPreviousSets(t *testing.T) {
	st := newTestStore(t)
	recordWorkout(t, st, "Bench", session.SetValues{Weight: 80, Reps: 8}, session.SetValues{Weight: 80, Reps: 7}, session.SetValues{Weight: 80, Reps: 6})
	ta := newTestApp(t, st)

	msg := ta.app.workout.addFromHistory("Bench", "chest", 0)()
	if _, ok := msg.(statusMsg); !ok {
		t.Fatalf("expected statusMsg, got %T", msg)
	}

	s := ta.ctrl.State()
	if len(s.Exercises) != 1 || s.Exercises[0].Name != "Bench" || len(s.Exercises[0].Sets) != 3 {
		t.Fatalf("unexpected exercises %+v", s.Exercises)
	}
	ghosts := s.PreviousExerciseData["Bench"]
	if len(ghosts) != 3 || ghosts[1].Reps != 7 {
		t.Fatalf("unexpected ghosts %+v", ghosts)
	}
}

func TestAddFromHistoryNewExercise(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.app.workout.addFromHistory("Curl", "", 0)()

	s := ta.ctrl.State()
	if len(s.Exercises) != 1 || len(s.Exercises[0].Sets) != defaultSetCount {
		t.Fatalf("new exercise should get %d sets, got %+v", defaultSetCount, s.Exercises)
	}
}

func TestLibraryPick(t *testing.T) {
	st := newTestStore(t)
	recordWorkout(t, st, "Row", session.SetValues{Weight: 60, Reps: 10})
	ta := newTestApp(t, st)

	cmd := ta.press("l")
	if !ta.ctrl.State().Overlays.ExerciseLibrary || cmd == nil {
		t.Fatal("l should open the library and load names")
	}
	ta.send(cmd())
	if len(ta.app.workout.library) != 1 || ta.app.workout.library[0] != "Row" {
		t.Fatalf("unexpected library %v", ta.app.workout.library)
	}

	cmd = ta.press("enter")
	if ta.ctrl.State().Overlays.ExerciseLibrary || cmd == nil {
		t.Fatal("enter should close the library and add the exercise")
	}
	cmd()
	if s := ta.ctrl.State(); len(s.Exercises) != 1 || s.Exercises[0].Name != "Row" {
		t.Fatalf("unexpected exercises %+v", s.Exercises)
	}
}

// ============================================================
// Feedback
// ============================================================

func TestStateMsgClearsHapticAndRings(t *testing.T) {
	ta := newTestApp(t, nil, squat(2))
	ta.press("c")
	if ta.ctrl.State().PendingHaptic == nil {
		t.Fatal("completing a set should leave a pending haptic")
	}

	ta.sync()
	if ta.bells != 1 {
		t.Fatalf("bell rang %d times, want 1", ta.bells)
	}
	if ta.ctrl.State().PendingHaptic != nil {
		t.Fatal("haptic should be acknowledged")
	}
	if ta.app.status != "Set complete" {
		t.Fatalf("status = %q", ta.app.status)
	}
}

func TestStateMsgSoundOff(t *testing.T) {
	ta := newTestApp(t, nil, squat(2))
	off := false
	ta.ctrl.Dispatch(session.UpdateSettings{Patch: session.SettingsPatch{Sound: &off}})
	ta.press("c")
	ta.sync()

	if ta.bells != 0 {
		t.Fatal("bell should stay silent with sound off")
	}
	if ta.ctrl.State().PendingHaptic != nil {
		t.Fatal("haptic should still be acknowledged")
	}
}

func TestStateMsgCelebratesRecord(t *testing.T) {
	st := newTestStore(t)
	recordWorkout(t, st, "Squat", session.SetValues{Weight: 100, Reps: 5})
	ta := newTestApp(t, st, session.Exercise{Name: "Squat", Sets: []session.Set{{Weight: 110, Reps: 5}, {}}})

	ta.press("c")
	ta.sync()

	s := ta.ctrl.State()
	if s.ShowPRCelebration == nil || s.ShowPRCelebration.ExerciseName != "Squat" || !s.ShowConfetti {
		t.Fatalf("expected a Squat celebration, got %+v", s.ShowPRCelebration)
	}
	if s.ShowPRCelebration.Weight != 110 || s.ShowPRCelebration.PreviousBest <= 0 {
		t.Fatalf("unexpected record %+v", s.ShowPRCelebration)
	}

	ta.send(hideCelebrationMsg{})
	s = ta.ctrl.State()
	if s.ShowPRCelebration != nil || s.ShowConfetti {
		t.Fatal("hideCelebrationMsg should clear the banner")
	}
}

func TestFirstPerformanceIsNotARecord(t *testing.T) {
	ta := newTestApp(t, nil, session.Exercise{Name: "Squat", Sets: []session.Set{{Weight: 140, Reps: 3}, {}}})
	ta.press("c")
	ta.sync()
	if ta.ctrl.State().ShowPRCelebration != nil {
		t.Fatal("an exercise without history should not celebrate")
	}
}

func TestCooldownPromptWhenAllDone(t *testing.T) {
	ta := newTestApp(t, nil, squat(2))
	ta.press("c")
	ta.sync()
	if ta.ctrl.State().Overlays.CooldownPrompt {
		t.Fatal("cooldown should wait for the last set")
	}

	ta.press("c")
	ta.sync()
	if !ta.ctrl.State().Overlays.CooldownPrompt {
		t.Fatal("finishing every set should open the cooldown prompt")
	}

	ta.press("enter")
	ta.sync()
	if ta.ctrl.State().Overlays.CooldownPrompt {
		t.Fatal("prompt should close and stay closed")
	}
}

// ============================================================
// Finish / discard
// ============================================================

func TestFinishRecordsWorkout(t *testing.T) {
	ta := newTestApp(t, nil, session.Exercise{Name: "Squat", Sets: []session.Set{{Weight: 100, Reps: 5}, {}}})
	ta.press("c")

	msg := ta.app.finish(false)()
	fm, ok := msg.(finishedMsg)
	if !ok {
		t.Fatalf("expected finishedMsg, got %#v", msg)
	}
	if fm.workout == nil || fm.workout.CompletedSets != 1 || fm.workout.TotalVolume != 500 {
		t.Fatalf("unexpected workout %+v", fm.workout)
	}

	workouts, _ := ta.store.ListWorkouts(0)
	if len(workouts) != 1 {
		t.Fatalf("expected 1 stored workout, got %d", len(workouts))
	}
	if has, _ := ta.store.HasSession(); has {
		t.Fatal("finishing should clear the in-progress slot")
	}

	ta.send(fm)
	if r := ta.app.Result(); r == nil || r.Workout == nil || r.Discarded {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestDiscardClearsSession(t *testing.T) {
	ta := newTestApp(t, nil, squat(1))
	ta.press("c")

	msg := ta.app.finish(true)()
	fm, ok := msg.(finishedMsg)
	if !ok || !fm.discarded {
		t.Fatalf("expected discarded finishedMsg, got %#v", msg)
	}
	if has, _ := ta.store.HasSession(); has {
		t.Fatal("discard should clear the in-progress slot")
	}
	if workouts, _ := ta.store.ListWorkouts(0); len(workouts) != 0 {
		t.Fatal("discard should not record a workout")
	}
}

// ============================================================
// Export
// ============================================================

func TestExportWritesFile(t *testing.T) {
	st := newTestStore(t)
	recordWorkout(t, st, "Squat", session.SetValues{Weight: 100, Reps: 5})
	ta := newTestApp(t, st)

	for format, ext := range []string{".csv", ".json"} {
		msg := ta.app.doExport(format)()
		done, ok := msg.(exportDoneMsg)
		if !ok {
			t.Fatalf("expected exportDoneMsg, got %#v", msg)
		}
		if !strings.HasSuffix(done.path, "liftr-export-2026-03-15"+ext) {
			t.Fatalf("unexpected path %q", done.path)
		}
		if _, err := os.Stat(done.path); err != nil {
			t.Fatal(err)
		}
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsPatch(t *testing.T) {
	ta := newTestApp(t, nil)
	m := newSettingsModel(ta.ctrl)
	*m.restTime = "120"
	*m.autoRest = false
	*m.haptics = true
	*m.sound = false
	*m.theme = "light"

	p := m.patch()
	if p.DefaultRestTime == nil || *p.DefaultRestTime != 120 {
		t.Fatal("rest time not in patch")
	}
	if *p.AutoStartRest || !*p.Haptics || *p.Sound || *p.Theme != "light" {
		t.Fatalf("unexpected patch %+v", p)
	}

	*m.restTime = "soon"
	if m.patch().DefaultRestTime != nil {
		t.Fatal("invalid rest time should be left out")
	}
}

func TestSettingsFormOverlay(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.press("3", "enter")
	if !ta.app.settings.formActive || !ta.ctrl.State().Overlays.Settings {
		t.Fatal("enter should open the settings form")
	}
	ta.press("esc")
	if ta.app.settings.formActive || ta.ctrl.State().Overlays.Settings {
		t.Fatal("esc should close the settings form")
	}
}

func TestSettingsReachStore(t *testing.T) {
	ta := newTestApp(t, nil)
	m := newSettingsModel(ta.ctrl)
	*m.restTime = "45"
	*m.theme = "dark"
	ta.ctrl.Dispatch(session.UpdateSettings{Patch: m.patch()})

	got, err := ta.store.LoadAppSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got.DefaultRestTime != 45 {
		t.Fatalf("stored rest = %d, want 45", got.DefaultRestTime)
	}
	if ta.ctrl.State().AppSettings.DefaultRestTime != 45 {
		t.Fatal("session settings not updated")
	}
}

// ============================================================
// History
// ============================================================

func TestHistoryRefreshAndSets(t *testing.T) {
	st := newTestStore(t)
	w := recordWorkout(t, st, "Squat", session.SetValues{Weight: 100, Reps: 5}, session.SetValues{Weight: 100, Reps: 5})

	h := newHistoryModel(st, fixedNow, 10)
	h.setSize(120, 40)
	data, ok := h.refresh()().(historyDataMsg)
	if !ok {
		t.Fatal("refresh should return historyDataMsg")
	}
	if len(data.workouts) != 1 || data.workouts[0].ID != w.ID {
		t.Fatalf("unexpected workouts %+v", data.workouts)
	}
	if data.volume["2026-03-14"] != 1000 {
		t.Fatalf("unexpected volume %v", data.volume)
	}

	h, cmd := h.update(data)
	if cmd == nil {
		t.Fatal("loading workouts should load the selected sets")
	}
	h, _ = h.update(cmd())
	if len(h.sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(h.sets))
	}
	if out := h.view(); !strings.Contains(out, "Squat") {
		t.Fatal("history view should list the exercise")
	}
}

func TestHistoryDeleteNeedsConfirm(t *testing.T) {
	st := newTestStore(t)
	recordWorkout(t, st, "Squat", session.SetValues{Weight: 100, Reps: 5})

	h := newHistoryModel(st, fixedNow, 10)
	data := h.refresh()().(historyDataMsg)
	h, _ = h.update(data)

	h, cmd := h.update(keyMsg("d"))
	if !h.confirmDelete || cmd != nil {
		t.Fatal("first d should only ask for confirmation")
	}
	h, cmd = h.update(keyMsg("d"))
	if h.confirmDelete || cmd == nil {
		t.Fatal("second d should delete")
	}

	h.deleteSelected()()
	if workouts, _ := st.ListWorkouts(0); len(workouts) != 0 {
		t.Fatal("workout should be deleted")
	}
}

func TestHistoryDeleteCancelled(t *testing.T) {
	st := newTestStore(t)
	recordWorkout(t, st, "Squat", session.SetValues{Weight: 100, Reps: 5})

	h := newHistoryModel(st, fixedNow, 10)
	h, _ = h.update(h.refresh()().(historyDataMsg))
	h, _ = h.update(keyMsg("d"))
	h, cmd := h.update(keyMsg("j"))
	if h.confirmDelete || cmd != nil {
		t.Fatal("any other key should cancel the delete")
	}
}

func TestHistoryDateRange(t *testing.T) {
	h := newHistoryModel(nil, fixedNow, 10)
	from, to := h.dateRange()
	if !from.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) || !to.Equal(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected range %v - %v", from, to)
	}

	h.offset = 1
	from, to = h.dateRange()
	if !from.Equal(time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)) || !to.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected shifted range %v - %v", from, to)
	}
}

// ============================================================
// Bridge
// ============================================================

func TestStateBridgeLatestWins(t *testing.T) {
	b := newStateBridge()
	b.publish(session.Session{Name: "first"}, session.Derived{})
	b.publish(session.Session{Name: "second"}, session.Derived{})

	msg := b.wait()().(stateMsg)
	if msg.state.Name != "second" {
		t.Fatalf("expected latest state, got %q", msg.state.Name)
	}
	select {
	case <-b.ch:
		t.Fatal("bridge should hold a single message")
	default:
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Minute, "00:01:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}

	if got := formatSeconds(3661); got != "01:01:01" {
		t.Errorf("formatSeconds(3661) = %q", got)
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{9, "0:09"},
		{90, "1:30"},
		{605, "10:05"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.secs); got != tt.want {
			t.Errorf("formatClock(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatWeightAndVolume(t *testing.T) {
	if got := formatWeight(102.5); got != "102.5" {
		t.Errorf("formatWeight(102.5) = %q", got)
	}
	if got := formatWeight(100); got != "100" {
		t.Errorf("formatWeight(100) = %q", got)
	}
	if got := formatVolume(2500); got != "2500" {
		t.Errorf("formatVolume(2500) = %q", got)
	}
	if got := formatVolume(12500); got != "12.5k" {
		t.Errorf("formatVolume(12500) = %q", got)
	}
}

func TestValidators(t *testing.T) {
	for _, v := range []string{"1", "20", " 3 "} {
		if err := validateSetCount(v); err != nil {
			t.Errorf("validateSetCount(%q) = %v", v, err)
		}
	}
	for _, v := range []string{"0", "21", "x", ""} {
		if validateSetCount(v) == nil {
			t.Errorf("validateSetCount(%q) should fail", v)
		}
	}
	for _, v := range []string{"0", "90", "3600"} {
		if err := validateRest(v); err != nil {
			t.Errorf("validateRest(%q) = %v", v, err)
		}
	}
	for _, v := range []string{"-1", "3601", "soon"} {
		if validateRest(v) == nil {
			t.Errorf("validateRest(%q) should fail", v)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Squat", 10); got != "Squat" {
		t.Errorf("truncate kept = %q", got)
	}
	if got := truncate("Romanian deadlift", 8); got != "Romania…" {
		t.Errorf("truncate = %q", got)
	}
}

func TestHapticText(t *testing.T) {
	for _, h := range []session.Haptic{session.HapticSetComplete, session.HapticRestEnd, session.HapticPersonalRecord} {
		if hapticText(h) == "" || hapticText(h) == string(h) {
			t.Errorf("haptic %s has no text", h)
		}
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles smoke test: rendering must not panic
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"clockRunning", func() string { return clockRunningStyle.Render("test") }},
		{"clockPaused", func() string { return clockPausedStyle.Render("test") }},
		{"rest", func() string { return restStyle.Render("test") }},
		{"doneSet", func() string { return doneSetStyle.Render("test") }},
		{"activeSet", func() string { return activeSetStyle.Render("test") }},
		{"pendingSet", func() string { return pendingSetStyle.Render("test") }},
		{"ghost", func() string { return ghostStyle.Render("test") }},
		{"numpad", func() string { return numpadStyle.Render("test") }},
		{"numpadValue", func() string { return numpadValueStyle.Render("test") }},
		{"pr", func() string { return prStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"subtitle", func() string { return subtitleStyle.Render("test") }},
		{"accent", func() string { return accentStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"renderBar", func() string { return renderBar(0.5, 10) }},
	}

	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}
