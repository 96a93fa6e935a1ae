package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/liftr/internal/store"
)

var csvHeader = []string{"Workout ID", "Workout", "Finished", "Duration", "Exercise", "Set", "Weight", "Reps", "RPE", "Completed", "Notes"}

// ToCSV writes one row per set. Workouts without sets get a single row with
// empty set columns.
func ToCSV(workouts []store.Workout, sets map[string][]store.WorkoutSet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, wo := range workouts {
		prefix := []string{
			wo.ID,
			wo.Name,
			wo.FinishedAt.Local().Format(time.RFC3339),
			formatDuration(wo.Duration),
		}
		ws := sets[wo.ID]
		if len(ws) == 0 {
			if err := w.Write(append(prefix, "", "", "", "", "", "", "")); err != nil {
				return err
			}
			continue
		}
		for _, s := range ws {
			completed := ""
			if s.CompletedAt != nil {
				completed = s.CompletedAt.Local().Format(time.RFC3339)
			}
			row := append(append([]string{}, prefix...),
				s.ExerciseName,
				strconv.Itoa(s.SetIndex+1),
				strconv.FormatFloat(s.Weight, 'f', -1, 64),
				strconv.Itoa(s.Reps),
				strconv.FormatFloat(s.RPE, 'f', -1, 64),
				completed,
				s.Notes,
			)
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
