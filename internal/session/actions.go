package session

// Action is the input to Reduce. The set of actions is closed: only types in
// this package implement it.
type Action interface {
	Kind() string
	action()
}

// --- Exercise actions ---

type AddExercise struct{ Exercise Exercise }

type RemoveExercise struct{ Index int }

// ReorderExercises replaces the list with a caller-ordered one.
type ReorderExercises struct{ Exercises []Exercise }

type ChangeExercise struct{ Index int }

type RenameExercise struct {
	Index int
	Name  string
}

type UpdateExerciseMeta struct {
	Index int
	Meta  ExerciseMetaPatch
}

// --- Set actions ---

// UpdateSetField writes weight or reps on the active set of the current
// exercise.
type UpdateSetField struct {
	Field NumpadTarget
	Value float64
}

type CompleteSet struct{}

// UndoLastSet clears the most recently completed set across the session.
type UndoLastSet struct{}

// CopyPreviousSet copies weight and reps from the set before the active one.
type CopyPreviousSet struct{}

// DuplicateSet appends a copy of the last set of the current exercise.
type DuplicateSet struct{}

// AddSet appends an empty set, or a copy of the last set's values if any.
type AddSet struct{}

type RemoveSet struct{ SetIndex int }

type UpdateSetNotes struct {
	SetIndex int
	Notes    string
}

type UpdateSetRPE struct {
	SetIndex int
	RPE      float64
}

// --- Timer actions ---

type TogglePause struct{}

// StartRest arms the rest countdown. Seconds <= 0 uses the exercise or
// settings default.
type StartRest struct{ Seconds int }

type SkipRest struct{}

// AddRestTime shifts the countdown by Seconds (may be negative). On an idle
// timer a positive value starts a new countdown.
type AddRestTime struct{ Seconds int }

// SyncRestTimer recomputes the countdown from the wall clock. It is the only
// action dispatched on an interval.
type SyncRestTimer struct{}

// --- Numpad actions ---

type OpenNumpad struct{ Target NumpadTarget }

type CloseNumpad struct{}

type NumpadInput struct{ Key string }

type NumpadDelete struct{}

type NumpadSubmit struct{}

// --- Overlay actions ---

type ToggleOverlay struct{ Overlay Overlay }

type OpenOverlay struct{ Overlay Overlay }

type CloseOverlay struct{ Overlay Overlay }

// --- Celebration actions ---

type ShowPRCelebration struct{ Record PersonalRecord }

type HidePRCelebration struct{}

type ShowConfetti struct{}

type HideConfetti struct{}

// --- Data actions ---

// SetExercises bulk-replaces the exercise list.
type SetExercises struct{ Exercises []Exercise }

type UpdateSettings struct{ Patch SettingsPatch }

type SetPreviousExerciseData struct{ Data PreviousExerciseData }

// ClearPendingHaptic acknowledges the outstanding haptic signal.
type ClearPendingHaptic struct{}

func (AddExercise) Kind() string             { return "ADD_EXERCISE" }
func (RemoveExercise) Kind() string          { return "REMOVE_EXERCISE" }
func (ReorderExercises) Kind() string        { return "REORDER_EXERCISES" }
func (ChangeExercise) Kind() string          { return "CHANGE_EXERCISE" }
func (RenameExercise) Kind() string          { return "RENAME_EXERCISE" }
func (UpdateExerciseMeta) Kind() string      { return "UPDATE_EXERCISE_META" }
func (UpdateSetField) Kind() string          { return "UPDATE_SET_FIELD" }
func (CompleteSet) Kind() string             { return "COMPLETE_SET" }
func (UndoLastSet) Kind() string             { return "UNDO_LAST_SET" }
func (CopyPreviousSet) Kind() string         { return "COPY_PREVIOUS_SET" }
func (DuplicateSet) Kind() string            { return "DUPLICATE_SET" }
func (AddSet) Kind() string                  { return "ADD_SET" }
func (RemoveSet) Kind() string               { return "REMOVE_SET" }
func (UpdateSetNotes) Kind() string          { return "UPDATE_SET_NOTES" }
func (UpdateSetRPE) Kind() string            { return "UPDATE_SET_RPE" }
func (TogglePause) Kind() string             { return "TOGGLE_PAUSE" }
func (StartRest) Kind() string               { return "START_REST" }
func (SkipRest) Kind() string                { return "SKIP_REST" }
func (AddRestTime) Kind() string             { return "ADD_REST_TIME" }
func (SyncRestTimer) Kind() string           { return "SYNC_REST_TIMER" }
func (OpenNumpad) Kind() string              { return "OPEN_NUMPAD" }
func (CloseNumpad) Kind() string             { return "CLOSE_NUMPAD" }
func (NumpadInput) Kind() string             { return "NUMPAD_INPUT" }
func (NumpadDelete) Kind() string            { return "NUMPAD_DELETE" }
func (NumpadSubmit) Kind() string            { return "NUMPAD_SUBMIT" }
func (ToggleOverlay) Kind() string           { return "TOGGLE_OVERLAY" }
func (OpenOverlay) Kind() string             { return "OPEN_OVERLAY" }
func (CloseOverlay) Kind() string            { return "CLOSE_OVERLAY" }
func (ShowPRCelebration) Kind() string       { return "SHOW_PR_CELEBRATION" }
func (HidePRCelebration) Kind() string       { return "HIDE_PR_CELEBRATION" }
func (ShowConfetti) Kind() string            { return "SHOW_CONFETTI" }
func (HideConfetti) Kind() string            { return "HIDE_CONFETTI" }
func (SetExercises) Kind() string            { return "SET_EXERCISES" }
func (UpdateSettings) Kind() string          { return "UPDATE_SETTINGS" }
func (SetPreviousExerciseData) Kind() string { return "SET_PREVIOUS_EXERCISE_DATA" }
func (ClearPendingHaptic) Kind() string      { return "CLEAR_PENDING_HAPTIC" }

func (AddExercise) action()             {}
func (RemoveExercise) action()          {}
func (ReorderExercises) action()        {}
func (ChangeExercise) action()          {}
func (RenameExercise) action()          {}
func (UpdateExerciseMeta) action()      {}
func (UpdateSetField) action()          {}
func (CompleteSet) action()             {}
func (UndoLastSet) action()             {}
func (CopyPreviousSet) action()         {}
func (DuplicateSet) action()            {}
func (AddSet) action()                  {}
func (RemoveSet) action()               {}
func (UpdateSetNotes) action()          {}
func (UpdateSetRPE) action()            {}
func (TogglePause) action()             {}
func (StartRest) action()               {}
func (SkipRest) action()                {}
func (AddRestTime) action()             {}
func (SyncRestTimer) action()           {}
func (OpenNumpad) action()              {}
func (CloseNumpad) action()             {}
func (NumpadInput) action()             {}
func (NumpadDelete) action()            {}
func (NumpadSubmit) action()            {}
func (ToggleOverlay) action()           {}
func (OpenOverlay) action()             {}
func (CloseOverlay) action()            {}
func (ShowPRCelebration) action()       {}
func (HidePRCelebration) action()       {}
func (ShowConfetti) action()            {}
func (HideConfetti) action()            {}
func (SetExercises) action()            {}
func (UpdateSettings) action()          {}
func (SetPreviousExerciseData) action() {}
func (ClearPendingHaptic) action()      {}
