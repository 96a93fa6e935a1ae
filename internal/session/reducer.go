package session

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// numpadMaxLen caps the numpad buffer; "9999.99" is plenty for any lift.
const numpadMaxLen = 7

// MaxReps bounds a reps entry.
const MaxReps = 9999

// Reduce is the single transition function. It is pure: s is never mutated,
// the wall clock is supplied by the caller, and every action yields a valid
// session. Unknown or inapplicable actions return an equivalent copy of s.
func Reduce(s Session, a Action, now time.Time) Session {
	next := s.Clone()

	switch a := a.(type) {
	// Exercises
	case AddExercise:
		next.Exercises = append(next.Exercises, cloneExercises([]Exercise{a.Exercise})...)
	case RemoveExercise:
		if a.Index >= 0 && a.Index < len(next.Exercises) {
			next.Exercises = append(next.Exercises[:a.Index], next.Exercises[a.Index+1:]...)
			if a.Index < next.CurrentExerciseIndex {
				next.CurrentExerciseIndex--
			}
		}
	case ReorderExercises:
		next.Exercises = cloneExercises(a.Exercises)
	case ChangeExercise:
		next.CurrentExerciseIndex = clampIndex(a.Index, len(next.Exercises))
	case RenameExercise:
		if ex := exerciseAt(&next, a.Index); ex != nil && strings.TrimSpace(a.Name) != "" {
			ex.Name = strings.TrimSpace(a.Name)
		}
	case UpdateExerciseMeta:
		if ex := exerciseAt(&next, a.Index); ex != nil {
			applyMeta(ex, a.Meta)
		}

	// Sets
	case UpdateSetField:
		applyField(&next, a.Field, a.Value)
	case CompleteSet:
		completeSet(&next, now)
	case UndoLastSet:
		undoLastSet(&next)
	case CopyPreviousSet:
		copyPreviousSet(&next)
	case DuplicateSet:
		if ex := exerciseAt(&next, next.CurrentExerciseIndex); ex != nil {
			var dup Set
			if n := len(ex.Sets); n > 0 {
				dup = Set{Weight: ex.Sets[n-1].Weight, Reps: ex.Sets[n-1].Reps}
			}
			ex.Sets = append(ex.Sets, dup)
		}
	case AddSet:
		if ex := exerciseAt(&next, next.CurrentExerciseIndex); ex != nil {
			ex.Sets = append(ex.Sets, Set{})
		}
	case RemoveSet:
		if ex := exerciseAt(&next, next.CurrentExerciseIndex); ex != nil && a.SetIndex >= 0 && a.SetIndex < len(ex.Sets) {
			ex.Sets = append(ex.Sets[:a.SetIndex], ex.Sets[a.SetIndex+1:]...)
		}
	case UpdateSetNotes:
		if st := setAt(&next, a.SetIndex); st != nil {
			st.Notes = a.Notes
		}
	case UpdateSetRPE:
		if st := setAt(&next, a.SetIndex); st != nil && !math.IsNaN(a.RPE) {
			st.RPE = math.Max(0, math.Min(10, a.RPE))
		}

	// Timers
	case TogglePause:
		togglePause(&next, now)
	case StartRest:
		secs := a.Seconds
		if secs <= 0 {
			secs = restSeconds(next)
		}
		armRest(&next, secs, now)
	case SkipRest:
		next.RestTimer = RestTimer{TotalTime: next.RestTimer.TotalTime}
	case AddRestTime:
		addRestTime(&next, a.Seconds, now)
	case SyncRestTimer:
		syncRest(&next, now)

	// Numpad
	case OpenNumpad:
		if a.Target.valid() {
			next.Numpad = Numpad{IsOpen: true, Target: a.Target}
		}
	case CloseNumpad:
		next.Numpad = Numpad{}
	case NumpadInput:
		numpadInput(&next.Numpad, a.Key)
	case NumpadDelete:
		if next.Numpad.IsOpen && next.Numpad.Value != "" {
			next.Numpad.Value = next.Numpad.Value[:len(next.Numpad.Value)-1]
		}
	case NumpadSubmit:
		numpadSubmit(&next)

	// Overlays
	case ToggleOverlay:
		if f := next.Overlays.flag(a.Overlay); f != nil {
			*f = !*f
		}
	case OpenOverlay:
		if f := next.Overlays.flag(a.Overlay); f != nil {
			*f = true
		}
	case CloseOverlay:
		if f := next.Overlays.flag(a.Overlay); f != nil {
			*f = false
		}

	// Celebration
	case ShowPRCelebration:
		pr := a.Record
		next.ShowPRCelebration = &pr
		emitHaptic(&next, HapticPersonalRecord)
	case HidePRCelebration:
		next.ShowPRCelebration = nil
	case ShowConfetti:
		next.ShowConfetti = true
	case HideConfetti:
		next.ShowConfetti = false

	// Data
	case SetExercises:
		next.Exercises = cloneExercises(a.Exercises)
	case UpdateSettings:
		next.AppSettings = a.Patch.Apply(next.AppSettings)
	case SetPreviousExerciseData:
		next.PreviousExerciseData = clonePrevious(a.Data)
	case ClearPendingHaptic:
		next.PendingHaptic = nil
	}

	return normalize(next, now)
}

// normalize restores every structural invariant. Reduce and Restore both end
// with it so no path can leave an invalid session behind.
func normalize(s Session, now time.Time) Session {
	s.CurrentExerciseIndex = clampIndex(s.CurrentExerciseIndex, len(s.Exercises))

	if s.TotalPausedTime < 0 {
		s.TotalPausedTime = 0
	}
	if s.IsPaused && s.LastPauseTimestamp == nil {
		t := now
		s.LastPauseTimestamp = &t
	}
	if !s.IsPaused {
		s.LastPauseTimestamp = nil
	}

	if s.RestTimer.Active && s.RestTimer.EndTime == nil {
		s.RestTimer.Active = false
	}
	if s.RestTimer.TimeLeft < 0 {
		s.RestTimer.TimeLeft = 0
	}

	if s.Numpad.IsOpen && !s.Numpad.Target.valid() {
		s.Numpad = Numpad{}
	}
	return s
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func exerciseAt(s *Session, i int) *Exercise {
	if i < 0 || i >= len(s.Exercises) {
		return nil
	}
	return &s.Exercises[i]
}

// setAt addresses a set of the current exercise by position.
func setAt(s *Session, i int) *Set {
	ex := exerciseAt(s, s.CurrentExerciseIndex)
	if ex == nil || i < 0 || i >= len(ex.Sets) {
		return nil
	}
	return &ex.Sets[i]
}

// activeSet re-derives the active set of the current exercise rather than
// trusting any pointer held by the caller.
func activeSet(s *Session) *Set {
	ex := exerciseAt(s, s.CurrentExerciseIndex)
	if ex == nil {
		return nil
	}
	return setAt(s, ActiveSetIndex(*ex))
}

func applyMeta(ex *Exercise, m ExerciseMetaPatch) {
	if m.MuscleGroup != nil {
		ex.MuscleGroup = *m.MuscleGroup
	}
	if m.Tempo != nil {
		ex.Tempo = *m.Tempo
	}
	if m.TargetRestTime != nil && *m.TargetRestTime >= 0 {
		ex.TargetRestTime = *m.TargetRestTime
	}
	if m.TutorialText != nil {
		ex.TutorialText = *m.TutorialText
	}
}

func applyField(s *Session, field NumpadTarget, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	st := activeSet(s)
	if st == nil {
		return false
	}
	if v < 0 {
		v = 0
	}
	switch field {
	case TargetWeight:
		st.Weight = v
	case TargetReps:
		st.Reps = int(math.Round(math.Min(v, MaxReps)))
	default:
		return false
	}
	return true
}

func completeSet(s *Session, now time.Time) {
	st := activeSet(s)
	if st == nil {
		return
	}
	t := now
	st.CompletedAt = &t

	if s.AppSettings.AutoStartRest {
		armRest(s, restSeconds(*s), now)
	}
	emitHaptic(s, HapticSetComplete)
}

// undoLastSet clears the set with the greatest CompletedAt in the session.
// Equal timestamps resolve to the later position (exercise, then set order).
func undoLastSet(s *Session) {
	var last *Set
	for i := range s.Exercises {
		for j := range s.Exercises[i].Sets {
			st := &s.Exercises[i].Sets[j]
			if !st.Completed() {
				continue
			}
			if last == nil || !st.CompletedAt.Before(*last.CompletedAt) {
				last = st
			}
		}
	}
	if last != nil {
		last.CompletedAt = nil
	}
}

// copyPreviousSet fills the active set from the set before it, or from the
// ghost values of the first set when there is no earlier set.
func copyPreviousSet(s *Session) {
	ex := exerciseAt(s, s.CurrentExerciseIndex)
	if ex == nil {
		return
	}
	i := ActiveSetIndex(*ex)
	if i >= len(ex.Sets) {
		return
	}
	if i > 0 {
		ex.Sets[i].Weight = ex.Sets[i-1].Weight
		ex.Sets[i].Reps = ex.Sets[i-1].Reps
		return
	}
	if ghosts := s.PreviousExerciseData[ex.Name]; len(ghosts) > 0 {
		ex.Sets[0].Weight = ghosts[0].Weight
		ex.Sets[0].Reps = ghosts[0].Reps
	}
}

func togglePause(s *Session, now time.Time) {
	if !s.IsPaused {
		t := now
		s.IsPaused = true
		s.LastPauseTimestamp = &t
		return
	}
	if s.LastPauseTimestamp != nil {
		if gap := now.Sub(*s.LastPauseTimestamp); gap > 0 {
			s.TotalPausedTime += gap
		}
	}
	s.IsPaused = false
	s.LastPauseTimestamp = nil
}

// restSeconds picks the countdown length for the current exercise.
func restSeconds(s Session) int {
	if ex := exerciseAt(&s, s.CurrentExerciseIndex); ex != nil && ex.TargetRestTime > 0 {
		return ex.TargetRestTime
	}
	if s.AppSettings.DefaultRestTime > 0 {
		return s.AppSettings.DefaultRestTime
	}
	return FallbackRestTime
}

func armRest(s *Session, secs int, now time.Time) {
	end := now.Add(time.Duration(secs) * time.Second)
	s.RestTimer = RestTimer{
		Active:    true,
		EndTime:   &end,
		TotalTime: secs,
		TimeLeft:  secs,
	}
}

func addRestTime(s *Session, secs int, now time.Time) {
	rt := &s.RestTimer
	if !rt.Active {
		if secs > 0 {
			armRest(s, secs, now)
		}
		return
	}
	end := rt.EndTime.Add(time.Duration(secs) * time.Second)
	if end.Before(now) {
		end = now
	}
	rt.EndTime = &end
	rt.TimeLeft = secondsLeft(end, now)
	if secs > 0 {
		rt.TotalTime += secs
	}
	if rt.TotalTime < rt.TimeLeft {
		rt.TotalTime = rt.TimeLeft
	}
}

func syncRest(s *Session, now time.Time) {
	rt := &s.RestTimer
	if !rt.Active {
		return
	}
	rt.TimeLeft = secondsLeft(*rt.EndTime, now)
	if rt.TimeLeft == 0 {
		rt.Active = false
		rt.EndTime = nil
		emitHaptic(s, HapticRestEnd)
	}
}

func secondsLeft(end, now time.Time) int {
	left := int(math.Round(end.Sub(now).Seconds()))
	if left < 0 {
		return 0
	}
	return left
}

// emitHaptic queues h unless a signal is already waiting to be consumed; the
// outstanding one wins.
func emitHaptic(s *Session, h Haptic) {
	if s.PendingHaptic != nil {
		return
	}
	s.PendingHaptic = &h
}

func numpadInput(n *Numpad, key string) {
	if !n.IsOpen || len(key) != 1 || len(n.Value) >= numpadMaxLen {
		return
	}
	c := key[0]
	switch {
	case c >= '0' && c <= '9':
		n.Value += key
	case c == '.':
		if n.Target == TargetWeight && !strings.Contains(n.Value, ".") {
			n.Value += key
		}
	}
}

// numpadSubmit commits the buffer to the active set. An unparsable buffer is
// rejected and the numpad stays open for correction.
func numpadSubmit(s *Session) {
	n := &s.Numpad
	if !n.IsOpen {
		return
	}
	var v float64
	switch n.Target {
	case TargetWeight:
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return
		}
		v = f
	case TargetReps:
		i, err := strconv.Atoi(n.Value)
		if err != nil {
			return
		}
		v = float64(i)
	default:
		return
	}
	applyField(s, n.Target, v)
	s.Numpad = Numpad{}
}

func clonePrevious(in PreviousExerciseData) PreviousExerciseData {
	if in == nil {
		return nil
	}
	out := make(PreviousExerciseData, len(in))
	for k, v := range in {
		out[k] = append([]SetValues(nil), v...)
	}
	return out
}
