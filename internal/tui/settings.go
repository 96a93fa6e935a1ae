package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/liftr/internal/session"
)

const maxRestTime = 3600

type settingsModel struct {
	ctrl   *session.Controller
	width  int
	height int

	current    session.Settings
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	restTime  *string
	autoRest  *bool
	haptics   *bool
	keepAwake *bool
	sound     *bool
	theme     *string
}

func newSettingsModel(ctrl *session.Controller) settingsModel {
	rest, theme := "", ""
	var auto, hap, awake, snd bool
	return settingsModel{
		ctrl:      ctrl,
		current:   ctrl.State().AppSettings,
		restTime:  &rest,
		autoRest:  &auto,
		haptics:   &hap,
		keepAwake: &awake,
		sound:     &snd,
		theme:     &theme,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s *settingsModel) setState(st session.Session) {
	s.current = st.AppSettings
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Enter) {
		return s.showForm()
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.ctrl.State().AppSettings
	*s.restTime = strconv.Itoa(cur.DefaultRestTime)
	*s.autoRest = cur.AutoStartRest
	*s.haptics = cur.Haptics
	*s.keepAwake = cur.KeepAwake
	*s.sound = cur.Sound
	*s.theme = cur.Theme

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Default rest (sec)").Value(s.restTime).Validate(validateRest),
			huh.NewConfirm().Title("Start rest after each set").Value(s.autoRest),
		).Title("Rest"),
		huh.NewGroup(
			huh.NewConfirm().Title("Haptics").Value(s.haptics),
			huh.NewConfirm().Title("Sound").Value(s.sound),
			huh.NewConfirm().Title("Keep screen awake").Value(s.keepAwake),
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
					huh.NewOption("System", "system"),
				).Value(s.theme),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	s.ctrl.Dispatch(session.OpenOverlay{Overlay: session.OverlaySettings})
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			return s.closeForm(), nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.ctrl.Dispatch(session.UpdateSettings{Patch: s.patch()})
		return s.closeForm(), func() tea.Msg { return statusMsg{text: "Settings saved"} }
	case huh.StateAborted:
		return s.closeForm(), nil
	}
	return s, cmd
}

func (s settingsModel) closeForm() settingsModel {
	s.formActive = false
	s.form = nil
	s.ctrl.Dispatch(session.CloseOverlay{Overlay: session.OverlaySettings})
	return s
}

// patch builds an update from the form values. An unparsable rest time
// leaves the stored value alone.
func (s settingsModel) patch() session.SettingsPatch {
	p := session.SettingsPatch{
		AutoStartRest: boolPtr(*s.autoRest),
		Haptics:       boolPtr(*s.haptics),
		KeepAwake:     boolPtr(*s.keepAwake),
		Sound:         boolPtr(*s.sound),
	}
	if n, err := strconv.Atoi(strings.TrimSpace(*s.restTime)); err == nil && validateRest(*s.restTime) == nil {
		p.DefaultRestTime = &n
	}
	if t := *s.theme; t != "" {
		p.Theme = &t
	}
	return p
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	cur := s.current
	items := []struct{ label, value string }{
		{"Default rest", formatClock(cur.DefaultRestTime)},
		{"Auto-start rest", onOff(cur.AutoStartRest)},
		{"Haptics", onOff(cur.Haptics)},
		{"Sound", onOff(cur.Sound)},
		{"Keep awake", onOff(cur.KeepAwake)},
		{"Theme", cur.Theme},
	}

	rows := []string{title, ""}
	for _, it := range items {
		label := lipgloss.NewStyle().Width(24).Render(it.label)
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(it.value)))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func validateRest(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 || n > maxRestTime {
		return errors.New("enter 0 to 3600 seconds")
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func boolPtr(b bool) *bool { return &b }
