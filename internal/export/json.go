package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/liftr/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Workouts   []jsonWorkout `json:"workouts"`
}

type jsonWorkout struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	StartedAt     string    `json:"started_at"`
	FinishedAt    string    `json:"finished_at"`
	DurationSec   int64     `json:"duration_seconds"`
	Duration      string    `json:"duration"`
	TotalSets     int       `json:"total_sets"`
	CompletedSets int       `json:"completed_sets"`
	TotalVolume   float64   `json:"total_volume"`
	Sets          []jsonSet `json:"sets"`
}

type jsonSet struct {
	Exercise    string  `json:"exercise"`
	MuscleGroup string  `json:"muscle_group,omitempty"`
	Set         int     `json:"set"`
	Weight      float64 `json:"weight"`
	Reps        int     `json:"reps"`
	RPE         float64 `json:"rpe,omitempty"`
	CompletedAt string  `json:"completed_at,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

func ToJSON(workouts []store.Workout, sets map[string][]store.WorkoutSet, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(workouts),
		Workouts:   []jsonWorkout{},
	}

	for _, wo := range workouts {
		jw := jsonWorkout{
			ID:            wo.ID,
			Name:          wo.Name,
			StartedAt:     wo.StartedAt.Local().Format(time.RFC3339),
			FinishedAt:    wo.FinishedAt.Local().Format(time.RFC3339),
			DurationSec:   wo.Duration,
			Duration:      formatDuration(wo.Duration),
			TotalSets:     wo.TotalSets,
			CompletedSets: wo.CompletedSets,
			TotalVolume:   wo.TotalVolume,
			Sets:          []jsonSet{},
		}
		for _, s := range sets[wo.ID] {
			js := jsonSet{
				Exercise:    s.ExerciseName,
				MuscleGroup: s.MuscleGroup,
				Set:         s.SetIndex + 1,
				Weight:      s.Weight,
				Reps:        s.Reps,
				RPE:         s.RPE,
				Notes:       s.Notes,
			}
			if s.CompletedAt != nil {
				js.CompletedAt = s.CompletedAt.Local().Format(time.RFC3339)
			}
			jw.Sets = append(jw.Sets, js)
		}
		export.Workouts = append(export.Workouts, jw)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
