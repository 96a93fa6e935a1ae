package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/liftr/internal/session"
)

// epleySQL is the Epley estimate over workout_sets columns; a single rep is
// the weight itself.
const epleySQL = `CASE WHEN reps <= 0 THEN 0 WHEN reps = 1 THEN weight ELSE weight * (1 + reps / 30.0) END`

// FinishWorkout records sess as a finished workout and clears the
// in-progress slot in the same transaction.
func (s *Store) FinishWorkout(sess session.Session, now time.Time) (*Workout, error) {
	d := session.Derive(sess, now)
	w := &Workout{
		ID:            sess.ID,
		Name:          sess.Name,
		StartedAt:     sess.StartTimestamp.UTC(),
		FinishedAt:    now.UTC(),
		Duration:      int64(d.Duration),
		TotalSets:     d.TotalSets,
		CompletedSets: d.CompletedSetsCount,
		TotalVolume:   d.TotalVolume,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin finish: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO workouts (id, name, started_at, finished_at, duration, total_sets, completed_sets, total_volume)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Name, w.StartedAt.Format(time.RFC3339), w.FinishedAt.Format(time.RFC3339),
		w.Duration, w.TotalSets, w.CompletedSets, w.TotalVolume,
	)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	for ei, ex := range sess.Exercises {
		for si, set := range ex.Sets {
			var completedAt *string
			if set.CompletedAt != nil {
				v := set.CompletedAt.UTC().Format(time.RFC3339)
				completedAt = &v
			}
			_, err := tx.Exec(
				`INSERT INTO workout_sets (workout_id, exercise_index, exercise_name, muscle_group, set_index, weight, reps, rpe, notes, completed_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				w.ID, ei, ex.Name, ex.MuscleGroup, si, set.Weight, set.Reps, set.RPE, set.Notes, completedAt,
			)
			if err != nil {
				return nil, fmt.Errorf("insert set %d/%d: %w", ei, si, err)
			}
		}
	}

	if _, err := tx.Exec(`DELETE FROM session_state WHERE key = ?`, activeKey); err != nil {
		return nil, fmt.Errorf("clear session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit finish: %w", err)
	}
	return w, nil
}

func (s *Store) GetWorkout(id string) (*Workout, error) {
	w, err := scanWorkout(s.db.QueryRow(
		`SELECT id, name, started_at, finished_at, duration, total_sets, completed_sets, total_volume
		 FROM workouts WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("get workout %s: %w", id, err)
	}
	return w, nil
}

// ListWorkouts returns finished workouts, newest first. limit <= 0 means all.
func (s *Store) ListWorkouts(limit int) ([]Workout, error) {
	query := `SELECT id, name, started_at, finished_at, duration, total_sets, completed_sets, total_volume
		FROM workouts ORDER BY finished_at DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

func (s *Store) DeleteWorkout(id string) error {
	_, err := s.db.Exec(`DELETE FROM workouts WHERE id = ?`, id)
	return err
}

// ListWorkoutSets returns the sets of one workout in session order.
func (s *Store) ListWorkoutSets(workoutID string) ([]WorkoutSet, error) {
	rows, err := s.db.Query(
		`SELECT id, workout_id, exercise_index, exercise_name, muscle_group, set_index, weight, reps, rpe, notes, completed_at
		 FROM workout_sets WHERE workout_id = ? ORDER BY exercise_index, set_index`, workoutID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	var sets []WorkoutSet
	for rows.Next() {
		var ws WorkoutSet
		var completedAt sql.NullString
		if err := rows.Scan(&ws.ID, &ws.WorkoutID, &ws.ExerciseIndex, &ws.ExerciseName, &ws.MuscleGroup,
			&ws.SetIndex, &ws.Weight, &ws.Reps, &ws.RPE, &ws.Notes, &completedAt); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			t, _ := time.Parse(time.RFC3339, completedAt.String)
			ws.CompletedAt = &t
		}
		sets = append(sets, ws)
	}
	return sets, rows.Err()
}

// PreviousSets returns, for each name, the completed sets of the most recent
// workout that contained that exercise. Names never performed are absent.
func (s *Store) PreviousSets(names []string) (session.PreviousExerciseData, error) {
	out := make(session.PreviousExerciseData)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, done := out[name]; done {
			continue
		}

		var workoutID string
		err := s.db.QueryRow(
			`SELECT ws.workout_id FROM workout_sets ws JOIN workouts w ON w.id = ws.workout_id
			 WHERE ws.exercise_name = ? AND ws.completed_at IS NOT NULL
			 ORDER BY w.finished_at DESC, w.rowid DESC LIMIT 1`, name,
		).Scan(&workoutID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("previous workout for %q: %w", name, err)
		}

		rows, err := s.db.Query(
			`SELECT weight, reps FROM workout_sets
			 WHERE workout_id = ? AND exercise_name = ? AND completed_at IS NOT NULL
			 ORDER BY exercise_index, set_index`, workoutID, name,
		)
		if err != nil {
			return nil, fmt.Errorf("previous sets for %q: %w", name, err)
		}
		var vals []session.SetValues
		for rows.Next() {
			var v session.SetValues
			if err := rows.Scan(&v.Weight, &v.Reps); err != nil {
				rows.Close()
				return nil, err
			}
			vals = append(vals, v)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
		out[name] = vals
	}
	return out, nil
}

// BestSet returns the completed set of name with the highest estimated 1RM,
// or nil if the exercise has no history.
func (s *Store) BestSet(name string) (*BestSet, error) {
	b := &BestSet{ExerciseName: name}
	err := s.db.QueryRow(
		`SELECT weight, reps, `+epleySQL+` AS e1rm, workout_id FROM workout_sets
		 WHERE exercise_name = ? AND completed_at IS NOT NULL
		 ORDER BY e1rm DESC, weight DESC LIMIT 1`, name,
	).Scan(&b.Weight, &b.Reps, &b.Estimated1RM, &b.WorkoutID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("best set for %q: %w", name, err)
	}
	return b, nil
}

// ExerciseNames lists distinct exercise names from history, most recently
// performed first.
func (s *Store) ExerciseNames(limit int) ([]string, error) {
	query := `SELECT ws.exercise_name FROM workout_sets ws JOIN workouts w ON w.id = ws.workout_id
		GROUP BY ws.exercise_name ORDER BY MAX(w.finished_at) DESC, ws.exercise_name`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list exercise names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// VolumeByDay sums completed volume of workouts finished in [from, to),
// keyed by YYYY-MM-DD in UTC.
func (s *Store) VolumeByDay(from, to time.Time) (map[string]float64, error) {
	rows, err := s.db.Query(
		`SELECT substr(finished_at, 1, 10) AS day, SUM(total_volume) FROM workouts
		 WHERE finished_at >= ? AND finished_at < ? GROUP BY day ORDER BY day`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("volume by day: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var day string
		var vol float64
		if err := rows.Scan(&day, &vol); err != nil {
			return nil, err
		}
		out[day] = vol
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkout(r rowScanner) (*Workout, error) {
	w := &Workout{}
	var startedAt, finishedAt string
	if err := r.Scan(&w.ID, &w.Name, &startedAt, &finishedAt, &w.Duration,
		&w.TotalSets, &w.CompletedSets, &w.TotalVolume); err != nil {
		return nil, err
	}
	w.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	w.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt)
	return w, nil
}
