package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/sadopc/liftr/internal/session"
	"github.com/sadopc/liftr/internal/store"
)

const (
	restStep        = 15 // seconds per +/- press
	defaultSetCount = 3
	libraryLimit    = 50
)

type workoutForm int

const (
	formNone workoutForm = iota
	formQuickAdd
	formFinish
	formDiscard
)

// prompts are the simple acknowledge-only overlays, in display priority.
var prompts = []struct {
	overlay session.Overlay
	title   string
	body    string
}{
	{session.OverlayWarmupPrompt, "Warm up", "A few light sets before your first working set."},
	{session.OverlayGoalPrompt, "Today's goal", "Pick one lift to push today."},
	{session.OverlayWaterPrompt, "Hydrate", "Time for some water."},
	{session.OverlayCooldownPrompt, "Cool down", "All sets done. Stretch for a few minutes."},
}

type libraryDataMsg struct {
	names []string
}

type workoutModel struct {
	ctrl  *session.Controller
	store *store.Store
	log   zerolog.Logger
	now   func() time.Time

	width  int
	height int

	state   session.Session
	derived session.Derived

	cursor  int // exercise selector / library row
	library []string

	form     *huh.Form
	formKind workoutForm

	// Form values as pointers (survive value copies)
	qaName  *string
	qaGroup *string
	qaSets  *string
	confirm *bool
}

func newWorkoutModel(ctrl *session.Controller, st *store.Store, log zerolog.Logger, now func() time.Time) workoutModel {
	name, group, sets := "", "", ""
	confirm := false
	return workoutModel{
		ctrl:    ctrl,
		store:   st,
		log:     log,
		now:     now,
		state:   ctrl.State(),
		derived: ctrl.Derived(),
		qaName:  &name,
		qaGroup: &group,
		qaSets:  &sets,
		confirm: &confirm,
	}
}

func (m *workoutModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *workoutModel) setState(s session.Session, d session.Derived) {
	m.state = s
	m.derived = d
}

// capturing reports whether the view wants every key, including the global
// tab and quit bindings.
func (m workoutModel) capturing() bool {
	if m.form != nil {
		return true
	}
	s := m.ctrl.State()
	return s.Numpad.IsOpen || s.Overlays.ExerciseSelector || s.Overlays.ExerciseLibrary
}

func (m workoutModel) update(msg tea.Msg) (workoutModel, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case libraryDataMsg:
		m.library = msg.names
		m.cursor = 0
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m workoutModel) handleKey(msg tea.KeyMsg) (workoutModel, tea.Cmd) {
	// Decisions use the live state; the cached copy may lag a transition.
	s := m.ctrl.State()

	switch {
	case s.Numpad.IsOpen:
		m.numpadKey(msg)
		return m, nil
	case s.Overlays.ExerciseSelector:
		return m.selectorKey(msg, s)
	case s.Overlays.ExerciseLibrary:
		return m.libraryKey(msg)
	case s.Overlays.Tutorial && (key.Matches(msg, keys.Back) || key.Matches(msg, keys.Tutorial)):
		m.ctrl.Dispatch(session.CloseOverlay{Overlay: session.OverlayTutorial})
		return m, nil
	}
	if p, ok := openPrompt(s.Overlays); ok {
		if key.Matches(msg, keys.Back) || key.Matches(msg, keys.Enter) {
			m.ctrl.Dispatch(session.CloseOverlay{Overlay: p})
		}
		return m, nil
	}

	d := session.Derive(s, m.now())
	switch {
	case key.Matches(msg, keys.Back):
		if s.ShowPRCelebration != nil || s.ShowConfetti {
			m.ctrl.Dispatch(session.HidePRCelebration{})
			m.ctrl.Dispatch(session.HideConfetti{})
		}
	case key.Matches(msg, keys.Complete):
		m.ctrl.Dispatch(session.CompleteSet{})
	case key.Matches(msg, keys.Undo):
		m.ctrl.Dispatch(session.UndoLastSet{})
	case key.Matches(msg, keys.Pause):
		m.ctrl.Dispatch(session.TogglePause{})
	case key.Matches(msg, keys.Weight):
		m.ctrl.Dispatch(session.OpenNumpad{Target: session.TargetWeight})
	case key.Matches(msg, keys.Reps):
		m.ctrl.Dispatch(session.OpenNumpad{Target: session.TargetReps})
	case key.Matches(msg, keys.AddSet):
		m.ctrl.Dispatch(session.AddSet{})
	case key.Matches(msg, keys.RemoveSet):
		if d.CurrentExercise != nil && len(d.CurrentExercise.Sets) > 0 {
			m.ctrl.Dispatch(session.RemoveSet{SetIndex: len(d.CurrentExercise.Sets) - 1})
		}
	case key.Matches(msg, keys.Duplicate):
		m.ctrl.Dispatch(session.DuplicateSet{})
	case key.Matches(msg, keys.CopyPrevious):
		m.ctrl.Dispatch(session.CopyPreviousSet{})
	case key.Matches(msg, keys.StartRest):
		m.ctrl.Dispatch(session.StartRest{})
	case key.Matches(msg, keys.SkipRest):
		m.ctrl.Dispatch(session.SkipRest{})
	case key.Matches(msg, keys.MoreRest):
		m.ctrl.Dispatch(session.AddRestTime{Seconds: restStep})
	case key.Matches(msg, keys.LessRest):
		m.ctrl.Dispatch(session.AddRestTime{Seconds: -restStep})
	case key.Matches(msg, keys.Up):
		m.ctrl.Dispatch(session.ChangeExercise{Index: s.CurrentExerciseIndex - 1})
	case key.Matches(msg, keys.Down):
		m.ctrl.Dispatch(session.ChangeExercise{Index: s.CurrentExerciseIndex + 1})
	case key.Matches(msg, keys.MoveUp):
		m.move(s, -1)
	case key.Matches(msg, keys.MoveDown):
		m.move(s, 1)
	case key.Matches(msg, keys.RemoveEx):
		if d.CurrentExercise != nil {
			m.ctrl.Dispatch(session.RemoveExercise{Index: s.CurrentExerciseIndex})
		}
	case key.Matches(msg, keys.Tutorial):
		m.ctrl.Dispatch(session.ToggleOverlay{Overlay: session.OverlayTutorial})
	case key.Matches(msg, keys.Selector):
		if len(s.Exercises) > 0 {
			m.cursor = s.CurrentExerciseIndex
			m.ctrl.Dispatch(session.OpenOverlay{Overlay: session.OverlayExerciseSelector})
		}
	case key.Matches(msg, keys.Library):
		m.library = nil
		m.ctrl.Dispatch(session.OpenOverlay{Overlay: session.OverlayExerciseLibrary})
		return m, m.loadLibrary()
	case key.Matches(msg, keys.QuickAdd):
		m.ctrl.Dispatch(session.OpenOverlay{Overlay: session.OverlayQuickAdd})
		return m.showQuickAdd()
	case key.Matches(msg, keys.Finish):
		return m.showConfirm(formFinish)
	case key.Matches(msg, keys.Discard):
		return m.showConfirm(formDiscard)
	}
	return m, nil
}

func (m workoutModel) numpadKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyBackspace:
		m.ctrl.Dispatch(session.NumpadDelete{})
	case tea.KeyEnter:
		m.ctrl.Dispatch(session.NumpadSubmit{})
	case tea.KeyEsc:
		m.ctrl.Dispatch(session.CloseNumpad{})
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if (r >= '0' && r <= '9') || r == '.' {
				m.ctrl.Dispatch(session.NumpadInput{Key: string(r)})
			}
		}
	}
}

func (m workoutModel) selectorKey(msg tea.KeyMsg, s session.Session) (workoutModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(s.Exercises)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		m.ctrl.Dispatch(session.ChangeExercise{Index: m.cursor})
		m.ctrl.Dispatch(session.CloseOverlay{Overlay: session.OverlayExerciseSelector})
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Selector):
		m.ctrl.Dispatch(session.CloseOverlay{Overlay: session.OverlayExerciseSelector})
	}
	return m, nil
}

func (m workoutModel) libraryKey(msg tea.KeyMsg) (workoutModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.library)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		m.ctrl.Dispatch(session.CloseOverlay{Overlay: session.OverlayExerciseLibrary})
		if m.cursor < len(m.library) {
			return m, m.addFromHistory(m.library[m.cursor], "", 0)
		}
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Library):
		m.ctrl.Dispatch(session.CloseOverlay{Overlay: session.OverlayExerciseLibrary})
	}
	return m, nil
}

// move swaps the current exercise with its neighbour and follows it.
func (m workoutModel) move(s session.Session, delta int) {
	i, j := s.CurrentExerciseIndex, s.CurrentExerciseIndex+delta
	if j < 0 || j >= len(s.Exercises) {
		return
	}
	exs := s.Exercises
	exs[i], exs[j] = exs[j], exs[i]
	m.ctrl.Dispatch(session.ReorderExercises{Exercises: exs})
	m.ctrl.Dispatch(session.ChangeExercise{Index: j})
}

func (m workoutModel) loadLibrary() tea.Cmd {
	return func() tea.Msg {
		names, err := m.store.ExerciseNames(libraryLimit)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Library error: %v", err), isError: true}
		}
		return libraryDataMsg{names: names}
	}
}

// addFromHistory appends an exercise and refreshes the ghost values for it.
// sets <= 0 takes the set count of its last performance.
func (m workoutModel) addFromHistory(name, group string, sets int) tea.Cmd {
	return func() tea.Msg {
		prev, err := m.store.PreviousSets([]string{name})
		if err != nil {
			m.log.Warn().Err(err).Str("exercise", name).Msg("load previous sets")
		}
		if sets <= 0 {
			sets = len(prev[name])
		}
		if sets <= 0 {
			sets = defaultSetCount
		}

		ex := session.Exercise{Name: name, MuscleGroup: group, Sets: make([]session.Set, sets)}
		m.ctrl.Dispatch(session.AddExercise{Exercise: ex})

		if len(prev[name]) > 0 {
			data := m.ctrl.State().PreviousExerciseData
			if data == nil {
				data = make(session.PreviousExerciseData)
			}
			data[name] = prev[name]
			m.ctrl.Dispatch(session.SetPreviousExerciseData{Data: data})
		}
		return statusMsg{text: "Added " + name}
	}
}

func (m workoutModel) showQuickAdd() (workoutModel, tea.Cmd) {
	*m.qaName = ""
	*m.qaGroup = ""
	*m.qaSets = strconv.Itoa(defaultSetCount)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Exercise").Value(m.qaName).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("name is required")
				}
				return nil
			}),
			huh.NewInput().Title("Muscle group").Value(m.qaGroup),
			huh.NewInput().Title("Sets").Value(m.qaSets).Validate(validateSetCount),
		).Title("Add exercise"),
	).WithShowHelp(true).WithShowErrors(true)
	m.formKind = formQuickAdd
	return m, m.form.Init()
}

func (m workoutModel) showConfirm(kind workoutForm) (workoutModel, tea.Cmd) {
	*m.confirm = false
	title, affirm := "Finish workout?", "Finish"
	if kind == formDiscard {
		title, affirm = "Discard this workout?", "Discard"
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(title).Affirmative(affirm).Negative("Cancel").Value(m.confirm),
		),
	)
	m.formKind = kind
	return m, m.form.Init()
}

func (m workoutModel) updateForm(msg tea.Msg) (workoutModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return m.closeForm(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		kind := m.formKind
		m = m.closeForm()
		return m, m.submitForm(kind)
	case huh.StateAborted:
		return m.closeForm(), nil
	}
	return m, cmd
}

func (m workoutModel) closeForm() workoutModel {
	if m.formKind == formQuickAdd {
		m.ctrl.Dispatch(session.CloseOverlay{Overlay: session.OverlayQuickAdd})
	}
	m.form = nil
	m.formKind = formNone
	return m
}

func (m workoutModel) submitForm(kind workoutForm) tea.Cmd {
	switch kind {
	case formQuickAdd:
		n, _ := strconv.Atoi(strings.TrimSpace(*m.qaSets))
		return m.addFromHistory(strings.TrimSpace(*m.qaName), strings.TrimSpace(*m.qaGroup), n)
	case formFinish, formDiscard:
		if !*m.confirm {
			return nil
		}
		discard := kind == formDiscard
		return func() tea.Msg { return finishRequestMsg{discard: discard} }
	}
	return nil
}

func validateSetCount(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 20 {
		return errors.New("enter 1 to 20 sets")
	}
	return nil
}

func openPrompt(o session.Overlays) (session.Overlay, bool) {
	for _, p := range prompts {
		if o.IsOpen(p.overlay) {
			return p.overlay, true
		}
	}
	return 0, false
}

// --- Rendering ---

func (m workoutModel) view() string {
	w := m.width - 4
	s := m.state

	if m.form != nil {
		return activePanelStyle.Width(w).Render(m.form.View())
	}

	parts := []string{m.renderHeader(w)}
	if banner := m.renderCelebration(); banner != "" {
		parts = append(parts, banner)
	}
	if s.RestTimer.Active {
		parts = append(parts, m.renderRest(w))
	}

	var body string
	switch {
	case s.Overlays.ExerciseSelector:
		body = m.renderSelector(w)
	case s.Overlays.ExerciseLibrary:
		body = m.renderLibrary(w)
	default:
		body = m.renderExercise(w)
	}
	parts = append(parts, body)

	if s.Numpad.IsOpen {
		parts = append(parts, m.renderNumpad())
	}
	if s.Overlays.Tutorial {
		parts = append(parts, m.renderTutorial(w))
	}
	if p, ok := openPrompt(s.Overlays); ok {
		parts = append(parts, renderPrompt(p, w))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m workoutModel) renderHeader(w int) string {
	s := m.state
	d := m.derived
	elapsed := formatSeconds(int64(s.Duration(m.now())))

	clock := clockRunningStyle.Render("● " + elapsed)
	if s.IsPaused {
		clock = clockPausedStyle.Render("⏸ " + elapsed + " paused")
	}
	name := s.Name
	if name == "" {
		name = "Workout"
	}
	title := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render(name), "  ", clock)

	stats := mutedStyle.Render(fmt.Sprintf("%d/%d sets  volume %s", d.CompletedSetsCount, d.TotalSets, formatVolume(d.TotalVolume)))
	bar := renderBar(d.ProgressPercent/100, min(40, max(10, w-40)))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, bar+"  "+stats))
}

func renderBar(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac*float64(width) + 0.5)
	return successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled)) +
		mutedStyle.Render(fmt.Sprintf(" %3.0f%%", frac*100))
}

func (m workoutModel) renderRest(w int) string {
	rt := m.state.RestTimer
	frac := 0.0
	if rt.TotalTime > 0 {
		frac = float64(rt.TotalTime-rt.TimeLeft) / float64(rt.TotalTime)
	}
	line := fmt.Sprintf("Rest %s", formatClock(rt.TimeLeft))
	hint := mutedStyle.Render("s: skip  +/-: adjust")
	return restStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		line, renderBar(frac, min(30, max(10, w-30))), hint))
}

func (m workoutModel) renderCelebration() string {
	pr := m.state.ShowPRCelebration
	if pr == nil {
		if m.state.ShowConfetti {
			return accentStyle.Render("✦ ✧ ✦ ✧ ✦")
		}
		return ""
	}
	text := fmt.Sprintf("NEW PR  %s %s × %d  (e1RM %.1f, was %.1f)",
		pr.ExerciseName, formatWeight(pr.Weight), pr.Reps, pr.Estimated1RM, pr.PreviousBest)
	if m.state.ShowConfetti {
		text = "✦ ✧ ✦  " + text + "  ✦ ✧ ✦"
	}
	return prStyle.Render(text)
}

func (m workoutModel) renderExercise(w int) string {
	s := m.state
	d := m.derived
	if d.CurrentExercise == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("No exercises yet"),
			"",
			mutedStyle.Render("n: new exercise  l: pick from library"),
		))
	}

	list := m.renderExerciseList()
	ex := *d.CurrentExercise

	var rows []string
	heading := titleStyle.Render(ex.Name)
	var meta []string
	if ex.MuscleGroup != "" {
		meta = append(meta, ex.MuscleGroup)
	}
	if ex.Tempo != "" {
		meta = append(meta, "tempo "+ex.Tempo)
	}
	if ex.TargetRestTime > 0 {
		meta = append(meta, "rest "+formatClock(ex.TargetRestTime))
	}
	if len(meta) > 0 {
		heading += "  " + subtitleStyle.Render(strings.Join(meta, " · "))
	}
	rows = append(rows, heading, "")

	ghosts := s.PreviousExerciseData[ex.Name]
	for i, set := range ex.Sets {
		rows = append(rows, renderSetRow(i, set, i == d.ActiveSetIndex, ghostAt(ghosts, i)))
	}
	if d.ActiveSetIndex >= len(ex.Sets) {
		rows = append(rows, "", successStyle.Render("  All sets done  a: add set  ↓: next exercise"))
	}

	listWidth := 28
	detailWidth := w - listWidth - 2
	if detailWidth < 30 {
		return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Width(listWidth).Render(list),
		activePanelStyle.Width(detailWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...)),
	)
}

func (m workoutModel) renderExerciseList() string {
	var rows []string
	for i, ex := range m.state.Exercises {
		done := 0
		for _, st := range ex.Sets {
			if st.Completed() {
				done++
			}
		}
		label := fmt.Sprintf("%s %d/%d", ex.Name, done, len(ex.Sets))
		switch {
		case i == m.state.CurrentExerciseIndex:
			rows = append(rows, selectedItemStyle.Render("> "+label))
		case done == len(ex.Sets) && done > 0:
			rows = append(rows, doneSetStyle.Render("✓ "+label))
		default:
			rows = append(rows, normalItemStyle.Render("  "+label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func ghostAt(ghosts []session.SetValues, i int) *session.SetValues {
	if i < 0 || i >= len(ghosts) {
		return nil
	}
	return &ghosts[i]
}

func renderSetRow(i int, set session.Set, active bool, ghost *session.SetValues) string {
	values := fmt.Sprintf("%6s kg × %-3d", formatWeight(set.Weight), set.Reps)
	prefix := "  "
	style := pendingSetStyle
	switch {
	case set.Completed():
		prefix = "✓ "
		style = doneSetStyle
	case active:
		prefix = "▶ "
		style = activeSetStyle
	}
	row := style.Render(fmt.Sprintf("%sSet %-2d %s", prefix, i+1, values))
	if set.RPE > 0 {
		row += mutedStyle.Render(fmt.Sprintf(" @%s", formatWeight(set.RPE)))
	}
	if ghost != nil {
		row += ghostStyle.Render(fmt.Sprintf("  last %s×%d", formatWeight(ghost.Weight), ghost.Reps))
	}
	if set.Notes != "" {
		row += mutedStyle.Render("  " + set.Notes)
	}
	return row
}

func (m workoutModel) renderNumpad() string {
	n := m.state.Numpad
	label := "Weight (kg)"
	if n.Target == session.TargetReps {
		label = "Reps"
	}
	value := n.Value
	if value == "" {
		value = "_"
	}
	return numpadStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(label),
		numpadValueStyle.Render(value),
		mutedStyle.Render("enter: save  backspace: delete  esc: cancel"),
	))
}

func (m workoutModel) renderSelector(w int) string {
	rows := []string{titleStyle.Render("Jump to exercise"), ""}
	for i, ex := range m.state.Exercises {
		if i == m.cursor {
			rows = append(rows, selectedItemStyle.Render("> "+ex.Name))
		} else {
			rows = append(rows, normalItemStyle.Render("  "+ex.Name))
		}
	}
	rows = append(rows, "", mutedStyle.Render("  enter: select  esc: close"))
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m workoutModel) renderLibrary(w int) string {
	rows := []string{titleStyle.Render("Exercise library"), ""}
	if len(m.library) == 0 {
		rows = append(rows, mutedStyle.Render("  No exercises in history yet"))
	}
	for i, name := range m.library {
		if i == m.cursor {
			rows = append(rows, selectedItemStyle.Render("> "+name))
		} else {
			rows = append(rows, normalItemStyle.Render("  "+name))
		}
	}
	rows = append(rows, "", mutedStyle.Render("  enter: add  esc: close"))
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m workoutModel) renderTutorial(w int) string {
	text := "No notes for this exercise."
	if ex := m.derived.CurrentExercise; ex != nil && ex.TutorialText != "" {
		text = ex.TutorialText
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("How to"), "", text, "", mutedStyle.Render("i/esc: close")))
}

func renderPrompt(o session.Overlay, w int) string {
	for _, p := range prompts {
		if p.overlay == o {
			return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
				titleStyle.Render(p.title), "", p.body, "", mutedStyle.Render("enter: ok")))
		}
	}
	return ""
}
