package store

import "time"

// Workout is a finished session as kept in history.
type Workout struct {
	ID            string
	Name          string
	StartedAt     time.Time
	FinishedAt    time.Time
	Duration      int64 // seconds, pauses excluded
	TotalSets     int
	CompletedSets int
	TotalVolume   float64
}

// WorkoutSet is one set of a finished workout.
type WorkoutSet struct {
	ID            int64
	WorkoutID     string
	ExerciseIndex int
	ExerciseName  string
	MuscleGroup   string
	SetIndex      int
	Weight        float64
	Reps          int
	RPE           float64
	Notes         string
	CompletedAt   *time.Time
}

// BestSet is the heaviest completed set of an exercise by estimated 1RM.
type BestSet struct {
	ExerciseName string
	Weight       float64
	Reps         int
	Estimated1RM float64
	WorkoutID    string
}

type Setting struct {
	Key   string
	Value string
}
