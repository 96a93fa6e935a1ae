package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/sadopc/liftr/internal/export"
	"github.com/sadopc/liftr/internal/records"
	"github.com/sadopc/liftr/internal/session"
	"github.com/sadopc/liftr/internal/store"
)

const celebrationTime = 4 * time.Second

// Options wires the app to its collaborators. Controller and Store are
// required.
type Options struct {
	Controller   *session.Controller
	Store        *store.Store
	Records      *records.Detector // nil disables PR detection
	Logger       zerolog.Logger
	Now          func() time.Time
	Bell         func() // nil is silent
	HistoryLimit int
	ExportDir    string // defaults to the home directory
}

// Result is how the session ended.
type Result struct {
	Workout   *store.Workout
	Discarded bool
}

// App is the root Bubble Tea model.
type App struct {
	ctrl    *session.Controller
	store   *store.Store
	records *records.Detector
	log     zerolog.Logger
	now     func() time.Time
	bell    func()
	bridge  *stateBridge
	unsub   func()

	exportDir string
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	workout  workoutModel
	history  historyModel
	settings settingsModel

	allDone bool
	result  *Result

	help   help.Model
	status string
}

func NewApp(opts Options) App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	h := help.New()
	h.ShowAll = false

	bridge := newStateBridge()
	log := opts.Logger.With().Str("component", "tui").Logger()
	initial := opts.Controller.State()

	return App{
		ctrl:       opts.Controller,
		store:      opts.Store,
		records:    opts.Records,
		log:        log,
		now:        opts.Now,
		bell:       opts.Bell,
		bridge:     bridge,
		unsub:      opts.Controller.Subscribe(bridge.publish),
		exportDir:  opts.ExportDir,
		activeView: viewWorkout,
		workout:    newWorkoutModel(opts.Controller, opts.Store, log, opts.Now),
		history:    newHistoryModel(opts.Store, opts.Now, opts.HistoryLimit),
		settings:   newSettingsModel(opts.Controller),
		allDone:    allSetsDone(session.Derive(initial, opts.Now())),
		help:       h,
	}
}

// Result reports how the session ended, or nil if the user just quit.
func (a App) Result() *Result {
	return a.result
}

// Close detaches the app from the controller.
func (a App) Close() {
	if a.unsub != nil {
		a.unsub()
	}
}

func (a App) Init() tea.Cmd {
	ctrl := a.ctrl
	return tea.Batch(
		func() tea.Msg { return stateMsg{state: ctrl.State(), derived: ctrl.Derived()} },
		a.bridge.wait(),
		a.history.refresh(),
		tickCmd(),
	)
}

// tickCmd drives the on-screen clock. State changes arrive as stateMsg.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.workout.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.history.buildChart()
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isCapturing() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewWorkout
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewHistory
			return a, a.history.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			if a.activeView == viewHistory {
				return a, a.history.refresh()
			}
			return a, nil
		}

	case stateMsg:
		a.workout.setState(msg.state, msg.derived)
		a.settings.setState(msg.state)
		cmds := []tea.Cmd{a.bridge.wait()}
		if cmd := a.feedback(msg.state, msg.derived); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case tickMsg:
		return a, tickCmd()

	case hideCelebrationMsg:
		a.ctrl.Dispatch(session.HidePRCelebration{})
		a.ctrl.Dispatch(session.HideConfetti{})
		return a, nil

	case finishRequestMsg:
		return a, a.finish(msg.discard)

	case finishedMsg:
		a.result = &Result{Workout: msg.workout, Discarded: msg.discarded}
		return a, tea.Quit

	case statusMsg:
		a.status = msg.text
		if msg.isError {
			a.log.Error().Msg(msg.text)
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil

	case historyDataMsg, historySetsMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.update(msg)
		return a, cmd

	case libraryDataMsg:
		var cmd tea.Cmd
		a.workout, cmd = a.workout.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

// feedback plays the device side of a transition: the pending haptic, PR
// celebrations and the cooldown prompt.
func (a *App) feedback(s session.Session, d session.Derived) tea.Cmd {
	if s.PendingHaptic != nil {
		h := *s.PendingHaptic
		if s.AppSettings.Sound && a.bell != nil {
			a.bell()
		}
		if s.AppSettings.Haptics {
			a.status = hapticText(h)
		}
		a.ctrl.Dispatch(session.ClearPendingHaptic{})
	}

	done := allSetsDone(d)
	if done && !a.allDone {
		a.ctrl.Dispatch(session.OpenOverlay{Overlay: session.OverlayCooldownPrompt})
	}
	a.allDone = done

	if a.records == nil {
		return nil
	}
	prs := a.records.Observe(s)
	if len(prs) == 0 {
		return nil
	}
	for _, pr := range prs {
		a.log.Info().Str("exercise", pr.ExerciseName).Float64("e1rm", pr.Estimated1RM).Msg("personal record")
		a.ctrl.Dispatch(session.ShowPRCelebration{Record: pr})
	}
	a.ctrl.Dispatch(session.ShowConfetti{})
	return tea.Tick(celebrationTime, func(time.Time) tea.Msg { return hideCelebrationMsg{} })
}

func allSetsDone(d session.Derived) bool {
	return d.TotalSets > 0 && d.CompletedSetsCount == d.TotalSets
}

func hapticText(h session.Haptic) string {
	switch h {
	case session.HapticSetComplete:
		return "Set complete"
	case session.HapticRestEnd:
		return "Rest over"
	case session.HapticPersonalRecord:
		return "New personal record!"
	}
	return string(h)
}

// finish ends the session. The controller is closed first so the final
// snapshot is the one recorded.
func (a App) finish(discard bool) tea.Cmd {
	return func() tea.Msg {
		a.ctrl.Close()
		if discard {
			if err := a.store.ClearSession(); err != nil {
				return statusMsg{text: fmt.Sprintf("Discard error: %v", err), isError: true}
			}
			return finishedMsg{discarded: true}
		}

		w, err := a.store.FinishWorkout(a.ctrl.State(), a.now())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Finish error: %v", err), isError: true}
		}
		if a.records != nil {
			a.records.Reset()
		}
		a.log.Info().Str("workout", w.ID).Int("sets", w.CompletedSets).Msg("workout finished")
		return finishedMsg{workout: w}
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewWorkout:
		a.workout, cmd = a.workout.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isCapturing() bool {
	switch a.activeView {
	case viewWorkout:
		return a.workout.capturing()
	case viewSettings:
		return a.settings.formActive
	case viewHistory:
		return a.history.confirmDelete
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewWorkout:
		content = a.workout.view()
	case viewHistory:
		content = a.history.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("liftr")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Session indicator in footer
	s := a.workout.state
	elapsed := formatSeconds(int64(s.Duration(a.now())))
	clock := successStyle.Render(" ● " + elapsed)
	if s.IsPaused {
		clock = warningStyle.Render(" ⏸ " + elapsed)
	}
	if s.RestTimer.Active {
		clock += highlightStyle.Render(" rest " + formatClock(s.RestTimer.TimeLeft))
	}

	left := footerStyle.Render(helpView)
	right := clock + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		workouts, sets, err := export.Collect(a.store, 0)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		dir := a.exportDir
		if dir == "" {
			dir, _ = os.UserHomeDir()
		}
		dateStr := a.now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(dir, fmt.Sprintf("liftr-export-%s.csv", dateStr))
			if err := export.ToCSV(workouts, sets, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, fmt.Sprintf("liftr-export-%s.json", dateStr))
			if err := export.ToJSON(workouts, sets, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
