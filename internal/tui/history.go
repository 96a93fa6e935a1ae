package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/liftr/internal/store"
)

const chartDays = 14

type historyModel struct {
	store  *store.Store
	now    func() time.Time
	limit  int
	width  int
	height int

	workouts []store.Workout
	cursor   int
	sets     []store.WorkoutSet
	volume   map[string]float64
	offset   int // chartDays blocks back from today (0 = current)

	confirmDelete bool

	chart barchart.Model
}

func newHistoryModel(s *store.Store, now func() time.Time, limit int) historyModel {
	return historyModel{
		store: s,
		now:   now,
		limit: limit,
		chart: barchart.New(60, 10),
	}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

type historyDataMsg struct {
	workouts []store.Workout
	volume   map[string]float64
}

type historySetsMsg struct {
	workoutID string
	sets      []store.WorkoutSet
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		workouts, err := h.store.ListWorkouts(h.limit)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("History error: %v", err), isError: true}
		}
		from, to := h.dateRange()
		volume, err := h.store.VolumeByDay(from, to)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("History error: %v", err), isError: true}
		}
		return historyDataMsg{workouts: workouts, volume: volume}
	}
}

func (h historyModel) loadSets() tea.Cmd {
	if h.cursor >= len(h.workouts) {
		return nil
	}
	id := h.workouts[h.cursor].ID
	return func() tea.Msg {
		sets, err := h.store.ListWorkoutSets(id)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("History error: %v", err), isError: true}
		}
		return historySetsMsg{workoutID: id, sets: sets}
	}
}

func (h historyModel) deleteSelected() tea.Cmd {
	if h.cursor >= len(h.workouts) {
		return nil
	}
	w := h.workouts[h.cursor]
	return func() tea.Msg {
		if err := h.store.DeleteWorkout(w.ID); err != nil {
			return statusMsg{text: fmt.Sprintf("Delete error: %v", err), isError: true}
		}
		return statusMsg{text: "Deleted " + w.Name}
	}
}

// dateRange is the chartDays window ending today, shifted back by offset.
func (h historyModel) dateRange() (time.Time, time.Time) {
	now := h.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 1-chartDays*h.offset)
	return end.AddDate(0, 0, -chartDays), end
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.workouts = msg.workouts
		h.volume = msg.volume
		if h.cursor >= len(h.workouts) {
			h.cursor = max(0, len(h.workouts)-1)
		}
		h.buildChart()
		return h, h.loadSets()

	case historySetsMsg:
		if h.cursor < len(h.workouts) && h.workouts[h.cursor].ID == msg.workoutID {
			h.sets = msg.sets
		}
		return h, nil

	case tea.KeyMsg:
		if h.confirmDelete {
			h.confirmDelete = false
			if key.Matches(msg, keys.Delete) {
				return h, tea.Sequence(h.deleteSelected(), h.refresh())
			}
			return h, nil
		}
		switch {
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
				h.sets = nil
				return h, h.loadSets()
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.workouts)-1 {
				h.cursor++
				h.sets = nil
				return h, h.loadSets()
			}
		case key.Matches(msg, keys.Left):
			h.offset++
			return h, h.refresh()
		case key.Matches(msg, keys.Right):
			if h.offset > 0 {
				h.offset--
			}
			return h, h.refresh()
		case key.Matches(msg, keys.Delete):
			if len(h.workouts) > 0 {
				h.confirmDelete = true
			}
		}
	}
	return h, nil
}

func (h *historyModel) buildChart() {
	chartWidth := h.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if h.height > 36 {
		chartHeight = 14
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	from, to := h.dateRange()
	style := lipgloss.NewStyle().Foreground(colorPrimary)

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		bars = append(bars, barchart.BarData{
			Label:  d.Format("02"),
			Values: []barchart.BarValue{{Name: "volume", Value: h.volume[d.Format("2006-01-02")], Style: style}},
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4

	from, to := h.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Volume"), "  ", dateLabel)

	nav := mutedStyle.Render("  ↑/↓: select  ←/→: move chart  d: delete")
	if h.confirmDelete {
		nav = warningStyle.Render("  press d again to delete this workout")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", h.chart.View(), "", h.renderList(w), "", h.renderSets(), "", nav,
		),
	)
}

func (h historyModel) renderList(w int) string {
	if len(h.workouts) == 0 {
		return mutedStyle.Render("  No finished workouts yet")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-16s %-20s %9s %7s %9s", "Finished", "Workout", "Duration", "Sets", "Volume")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 66))))

	for i, wo := range h.workouts {
		line := fmt.Sprintf("%-16s %-20s %9s %3d/%-3d %9s",
			wo.FinishedAt.Local().Format("2006-01-02 15:04"), truncate(wo.Name, 20),
			formatSeconds(wo.Duration), wo.CompletedSets, wo.TotalSets, formatVolume(wo.TotalVolume))
		if i == h.cursor {
			rows = append(rows, selectedItemStyle.Render("> "+line))
		} else {
			rows = append(rows, normalItemStyle.Render("  "+line))
		}
	}
	return strings.Join(rows, "\n")
}

func (h historyModel) renderSets() string {
	if len(h.sets) == 0 {
		return ""
	}
	var rows []string
	last := ""
	for _, s := range h.sets {
		if s.ExerciseName != last {
			rows = append(rows, highlightStyle.Render("  "+s.ExerciseName))
			last = s.ExerciseName
		}
		mark := mutedStyle.Render("·")
		if s.CompletedAt != nil {
			mark = successStyle.Render("✓")
		}
		rows = append(rows, fmt.Sprintf("    %s %d  %s × %d", mark, s.SetIndex+1, formatWeight(s.Weight), s.Reps))
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
