package export

import (
	"fmt"

	"github.com/sadopc/liftr/internal/store"
)

// Source reads finished workouts.
type Source interface {
	ListWorkouts(limit int) ([]store.Workout, error)
	ListWorkoutSets(workoutID string) ([]store.WorkoutSet, error)
}

// Collect loads up to limit workouts (all when limit <= 0) with their sets,
// keyed by workout ID.
func Collect(src Source, limit int) ([]store.Workout, map[string][]store.WorkoutSet, error) {
	workouts, err := src.ListWorkouts(limit)
	if err != nil {
		return nil, nil, fmt.Errorf("list workouts: %w", err)
	}
	sets := make(map[string][]store.WorkoutSet, len(workouts))
	for _, w := range workouts {
		ws, err := src.ListWorkoutSets(w.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("list sets of %s: %w", w.ID, err)
		}
		sets[w.ID] = ws
	}
	return workouts, sets, nil
}
