package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/liftr/internal/session"
)

// stateBridge hands controller transitions to the Bubble Tea loop. Only the
// latest transition is kept; the session always carries its full state, so
// an overwritten one loses nothing.
type stateBridge struct {
	ch chan stateMsg
}

func newStateBridge() *stateBridge {
	return &stateBridge{ch: make(chan stateMsg, 1)}
}

// publish is a session.Listener. It never blocks.
func (b *stateBridge) publish(s session.Session, d session.Derived) {
	msg := stateMsg{state: s, derived: d}
	for {
		select {
		case b.ch <- msg:
			return
		default:
		}
		select {
		case <-b.ch:
		default:
		}
	}
}

func (b *stateBridge) wait() tea.Cmd {
	return func() tea.Msg {
		return <-b.ch
	}
}
