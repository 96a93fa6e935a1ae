package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Complete     key.Binding
	Undo         key.Binding
	Pause        key.Binding
	Weight       key.Binding
	Reps         key.Binding
	AddSet       key.Binding
	RemoveSet    key.Binding
	Duplicate    key.Binding
	CopyPrevious key.Binding
	StartRest    key.Binding
	SkipRest     key.Binding
	MoreRest     key.Binding
	LessRest     key.Binding
	QuickAdd     key.Binding
	Library      key.Binding
	Selector     key.Binding
	Tutorial     key.Binding
	MoveUp       key.Binding
	MoveDown     key.Binding
	RemoveEx     key.Binding
	Finish       key.Binding
	Discard      key.Binding
	Delete       key.Binding
	Export       key.Binding
	Tab1         key.Binding
	Tab2         key.Binding
	Tab3         key.Binding
	Tab          key.Binding
	Help         key.Binding
	Enter        key.Binding
	Back         key.Binding
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding
	Right        key.Binding
	Quit         key.Binding
}

var keys = keyMap{
	Complete: key.NewBinding(
		key.WithKeys("enter", "c"),
		key.WithHelp("enter/c", "complete set"),
	),
	Undo: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "undo set"),
	),
	Pause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause/resume"),
	),
	Weight: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "weight"),
	),
	Reps: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reps"),
	),
	AddSet: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add set"),
	),
	RemoveSet: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "remove last set"),
	),
	Duplicate: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "duplicate set"),
	),
	CopyPrevious: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "copy previous"),
	),
	StartRest: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "rest"),
	),
	SkipRest: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "skip rest"),
	),
	MoreRest: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "rest +15s"),
	),
	LessRest: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "rest -15s"),
	),
	QuickAdd: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new exercise"),
	),
	Library: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "library"),
	),
	Selector: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "jump to"),
	),
	Tutorial: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "how to"),
	),
	MoveUp: key.NewBinding(
		key.WithKeys("K"),
		key.WithHelp("K", "move up"),
	),
	MoveDown: key.NewBinding(
		key.WithKeys("J"),
		key.WithHelp("J", "move down"),
	),
	RemoveEx: key.NewBinding(
		key.WithKeys("X"),
		key.WithHelp("X", "remove exercise"),
	),
	Finish: key.NewBinding(
		key.WithKeys("F"),
		key.WithHelp("F", "finish"),
	),
	Discard: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "discard"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Tab1: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "workout"),
	),
	Tab2: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "history"),
	),
	Tab3: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "settings"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "older"),
	),
	Right: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "newer"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Complete, k.Undo, k.Pause, k.Weight, k.Reps, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Complete, k.Undo, k.Weight, k.Reps, k.CopyPrevious},
		{k.AddSet, k.RemoveSet, k.Duplicate, k.Pause},
		{k.StartRest, k.SkipRest, k.MoreRest, k.LessRest},
		{k.QuickAdd, k.Library, k.Selector, k.Tutorial},
		{k.MoveUp, k.MoveDown, k.RemoveEx, k.Finish, k.Discard},
		{k.Tab1, k.Tab2, k.Tab3, k.Export, k.Quit},
	}
}
