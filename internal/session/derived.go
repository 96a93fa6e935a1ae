package session

import "time"

// Derived holds the read-only aggregates of a session. It is recomputed after
// every transition and never cached.
type Derived struct {
	CurrentExercise    *Exercise
	ActiveSetIndex     int
	CurrentSet         Set
	CompletedSetsCount int
	TotalSets          int
	TotalVolume        float64
	ProgressPercent    float64
	Duration           int // seconds
}

// ActiveSetIndex returns the index of the first set not yet completed, or
// len(ex.Sets) when all are done.
func ActiveSetIndex(ex Exercise) int {
	for i, st := range ex.Sets {
		if !st.Completed() {
			return i
		}
	}
	return len(ex.Sets)
}

// Derive computes the derived values of s at now. It never panics, even for
// an empty exercise list or an out-of-range index.
func Derive(s Session, now time.Time) Derived {
	d := Derived{Duration: s.Duration(now)}

	for _, ex := range s.Exercises {
		for _, st := range ex.Sets {
			d.TotalSets++
			if st.Completed() {
				d.CompletedSetsCount++
				d.TotalVolume += st.Volume()
			}
		}
	}
	if d.TotalSets > 0 {
		d.ProgressPercent = float64(d.CompletedSetsCount) / float64(d.TotalSets) * 100
	}

	if s.CurrentExerciseIndex < 0 || s.CurrentExerciseIndex >= len(s.Exercises) {
		return d
	}
	ex := s.Exercises[s.CurrentExerciseIndex]
	d.CurrentExercise = &ex
	d.ActiveSetIndex = ActiveSetIndex(ex)
	if d.ActiveSetIndex < len(ex.Sets) {
		d.CurrentSet = ex.Sets[d.ActiveSetIndex]
	}
	return d
}
