package session

import (
	"time"

	"github.com/google/uuid"
)

// Set is one performed (or planned) set of an exercise.
type Set struct {
	Weight      float64    `json:"weight"`
	Reps        int        `json:"reps"`
	CompletedAt *time.Time `json:"completedAt"` // nil until performed
	Notes       string     `json:"notes,omitempty"`
	RPE         float64    `json:"rpe,omitempty"`
}

// Completed reports whether the set has been performed.
func (s Set) Completed() bool { return s.CompletedAt != nil }

// Volume is weight x reps.
func (s Set) Volume() float64 { return s.Weight * float64(s.Reps) }

type Exercise struct {
	Name           string `json:"name"`
	Sets           []Set  `json:"sets"`
	MuscleGroup    string `json:"muscleGroup,omitempty"`
	Tempo          string `json:"tempo,omitempty"`
	TargetRestTime int    `json:"targetRestTime,omitempty"` // seconds
	TutorialText   string `json:"tutorialText,omitempty"`
}

// ExerciseMetaPatch carries the metadata fields to overwrite. Nil fields are
// left untouched.
type ExerciseMetaPatch struct {
	MuscleGroup    *string
	Tempo          *string
	TargetRestTime *int
	TutorialText   *string
}

type RestTimer struct {
	Active    bool       `json:"active"`
	EndTime   *time.Time `json:"endTime"`
	TotalTime int        `json:"totalTime"` // seconds
	TimeLeft  int        `json:"timeLeft"`  // seconds
}

// NumpadTarget names the set field the numpad writes to.
type NumpadTarget string

const (
	TargetNone   NumpadTarget = ""
	TargetWeight NumpadTarget = "weight"
	TargetReps   NumpadTarget = "reps"
)

func (t NumpadTarget) valid() bool {
	return t == TargetWeight || t == TargetReps
}

type Numpad struct {
	IsOpen bool         `json:"isOpen"`
	Target NumpadTarget `json:"target"`
	Value  string       `json:"value"`
}

// Overlay names one modal or drawer.
type Overlay int

const (
	OverlaySettings Overlay = iota
	OverlayExerciseSelector
	OverlayQuickAdd
	OverlayExerciseLibrary
	OverlayGoalPrompt
	OverlayWarmupPrompt
	OverlayCooldownPrompt
	OverlayWaterPrompt
	OverlayTutorial
	OverlayAIPrompt
)

var overlayNames = map[Overlay]string{
	OverlaySettings:         "settings",
	OverlayExerciseSelector: "exercise_selector",
	OverlayQuickAdd:         "quick_add",
	OverlayExerciseLibrary:  "exercise_library",
	OverlayGoalPrompt:       "goal_prompt",
	OverlayWarmupPrompt:     "warmup_prompt",
	OverlayCooldownPrompt:   "cooldown_prompt",
	OverlayWaterPrompt:      "water_prompt",
	OverlayTutorial:         "tutorial",
	OverlayAIPrompt:         "ai_prompt",
}

func (o Overlay) String() string {
	if n, ok := overlayNames[o]; ok {
		return n
	}
	return "unknown"
}

// Overlays holds one independent flag per overlay. More than one may be set.
type Overlays struct {
	Settings         bool `json:"settings"`
	ExerciseSelector bool `json:"exerciseSelector"`
	QuickAdd         bool `json:"quickAdd"`
	ExerciseLibrary  bool `json:"exerciseLibrary"`
	GoalPrompt       bool `json:"goalPrompt"`
	WarmupPrompt     bool `json:"warmupPrompt"`
	CooldownPrompt   bool `json:"cooldownPrompt"`
	WaterPrompt      bool `json:"waterPrompt"`
	Tutorial         bool `json:"tutorial"`
	AIPrompt         bool `json:"aiPrompt"`
}

func (o *Overlays) flag(which Overlay) *bool {
	switch which {
	case OverlaySettings:
		return &o.Settings
	case OverlayExerciseSelector:
		return &o.ExerciseSelector
	case OverlayQuickAdd:
		return &o.QuickAdd
	case OverlayExerciseLibrary:
		return &o.ExerciseLibrary
	case OverlayGoalPrompt:
		return &o.GoalPrompt
	case OverlayWarmupPrompt:
		return &o.WarmupPrompt
	case OverlayCooldownPrompt:
		return &o.CooldownPrompt
	case OverlayWaterPrompt:
		return &o.WaterPrompt
	case OverlayTutorial:
		return &o.Tutorial
	case OverlayAIPrompt:
		return &o.AIPrompt
	}
	return nil
}

// IsOpen reports whether the named overlay is showing.
func (o Overlays) IsOpen(which Overlay) bool {
	if f := o.flag(which); f != nil {
		return *f
	}
	return false
}

// Haptic is a one-shot feedback signal for the device collaborator.
type Haptic string

const (
	HapticSetComplete    Haptic = "SET_COMPLETE"
	HapticRestEnd        Haptic = "REST_END"
	HapticPersonalRecord Haptic = "PERSONAL_RECORD"
)

// PersonalRecord is the payload of a PR celebration. The engine only stores
// it; detection happens elsewhere.
type PersonalRecord struct {
	ExerciseName string  `json:"exerciseName"`
	Weight       float64 `json:"weight"`
	Reps         int     `json:"reps"`
	Estimated1RM float64 `json:"estimated1RM"`
	PreviousBest float64 `json:"previousBest"`
}

// SetValues is a ghost value: what was lifted last time.
type SetValues struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// PreviousExerciseData maps exercise name to the sets of its most recent
// earlier performance.
type PreviousExerciseData map[string][]SetValues

// Settings is the app configuration blob the engine reads from.
type Settings struct {
	DefaultRestTime int    `json:"defaultRestTime"` // seconds
	AutoStartRest   bool   `json:"autoStartRest"`
	Haptics         bool   `json:"haptics"`
	KeepAwake       bool   `json:"keepAwake"`
	Sound           bool   `json:"sound"`
	Theme           string `json:"theme"`
}

// SettingsPatch is a partial settings update. Nil fields are untouched.
type SettingsPatch struct {
	DefaultRestTime *int
	AutoStartRest   *bool
	Haptics         *bool
	KeepAwake       *bool
	Sound           *bool
	Theme           *string
}

// Apply merges p into s and returns the result.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.DefaultRestTime != nil {
		s.DefaultRestTime = *p.DefaultRestTime
	}
	if p.AutoStartRest != nil {
		s.AutoStartRest = *p.AutoStartRest
	}
	if p.Haptics != nil {
		s.Haptics = *p.Haptics
	}
	if p.KeepAwake != nil {
		s.KeepAwake = *p.KeepAwake
	}
	if p.Sound != nil {
		s.Sound = *p.Sound
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	return s
}

// FallbackRestTime is used when neither the exercise nor the settings supply
// a rest duration.
const FallbackRestTime = 90

// DefaultSettings returns the settings a new install starts with.
func DefaultSettings() Settings {
	return Settings{
		DefaultRestTime: FallbackRestTime,
		AutoStartRest:   true,
		Haptics:         true,
		KeepAwake:       true,
		Sound:           true,
		Theme:           "dark",
	}
}

// Session is the complete in-memory state of one active workout.
type Session struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Exercises            []Exercise `json:"exercises"`
	CurrentExerciseIndex int        `json:"currentExerciseIndex"`

	StartTimestamp     time.Time     `json:"startTimestamp"`
	TotalPausedTime    time.Duration `json:"totalPausedTime"`
	LastPauseTimestamp *time.Time    `json:"lastPauseTimestamp"`
	IsPaused           bool          `json:"isPaused"`

	RestTimer RestTimer `json:"restTimer"`
	Numpad    Numpad    `json:"numpad"`
	Overlays  Overlays  `json:"overlays"`

	ShowConfetti      bool            `json:"showConfetti"`
	ShowPRCelebration *PersonalRecord `json:"showPRCelebration"`
	PendingHaptic     *Haptic         `json:"pendingHaptic"`

	PreviousExerciseData PreviousExerciseData `json:"previousExerciseData"`
	AppSettings          Settings             `json:"appSettings"`
}

// New creates a fresh session. initialElapsed back-dates the start so a
// resumed workout keeps its prior duration.
func New(name string, exercises []Exercise, initialElapsed time.Duration, settings Settings, now time.Time) Session {
	if initialElapsed < 0 {
		initialElapsed = 0
	}
	return Session{
		ID:             uuid.NewString(),
		Name:           name,
		Exercises:      cloneExercises(exercises),
		StartTimestamp: now.Add(-initialElapsed),
		AppSettings:    settings,
	}
}

// Clone returns a deep copy so a reducer result never aliases its input.
func (s Session) Clone() Session {
	out := s
	out.Exercises = cloneExercises(s.Exercises)
	out.LastPauseTimestamp = cloneTime(s.LastPauseTimestamp)
	out.RestTimer.EndTime = cloneTime(s.RestTimer.EndTime)
	out.PreviousExerciseData = clonePrevious(s.PreviousExerciseData)
	if s.ShowPRCelebration != nil {
		pr := *s.ShowPRCelebration
		out.ShowPRCelebration = &pr
	}
	if s.PendingHaptic != nil {
		h := *s.PendingHaptic
		out.PendingHaptic = &h
	}
	return out
}

func cloneExercises(in []Exercise) []Exercise {
	if in == nil {
		return nil
	}
	out := make([]Exercise, len(in))
	for i, ex := range in {
		out[i] = ex
		if ex.Sets != nil {
			out[i].Sets = make([]Set, len(ex.Sets))
			for j, st := range ex.Sets {
				out[i].Sets[j] = st
				out[i].Sets[j].CompletedAt = cloneTime(st.CompletedAt)
			}
		}
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
