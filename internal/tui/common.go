package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/liftr/internal/session"
	"github.com/sadopc/liftr/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewWorkout viewState = iota
	viewHistory
	viewSettings
)

var viewNames = []string{"Workout", "History", "Settings"}

// --- Messages ---

// stateMsg carries a session transition from the controller.
type stateMsg struct {
	state   session.Session
	derived session.Derived
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// finishedMsg reports the end of the session, saved or discarded.
type finishedMsg struct {
	workout   *store.Workout
	discarded bool
}

// finishRequestMsg asks the app to end the session.
type finishRequestMsg struct {
	discard bool
}

type hideCelebrationMsg struct{}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

// formatClock renders a countdown as m:ss.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

func formatVolume(v float64) string {
	if v >= 10000 {
		return fmt.Sprintf("%.1fk", v/1000)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}
