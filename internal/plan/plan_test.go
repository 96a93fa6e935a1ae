package plan

import (
	"os"
	"path/filepath"
	"testing"
)

const legDay = `
name: Leg day
rest: 120
exercises:
  - name: Squat
    muscle_group: legs
    tempo: 3-1-1
    rest: 180
    tutorial: Brace, then sit between your heels.
    sets: 3
    weight: 100
    reps: 5
  - name: Lunge
    sets:
      - {weight: 20, reps: 12}
      - {weight: 22.5, reps: 10}
  - name: Plank
`

func TestParseAndExpand(t *testing.T) {
	p, err := Parse([]byte(legDay))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Leg day" || len(p.Exercises) != 3 {
		t.Fatalf("unexpected plan: %+v", p)
	}

	exs := p.SessionExercises()
	squat := exs[0]
	if len(squat.Sets) != 3 || squat.Sets[2].Weight != 100 || squat.Sets[2].Reps != 5 {
		t.Fatalf("unexpected squat sets: %+v", squat.Sets)
	}
	if squat.TargetRestTime != 180 || squat.MuscleGroup != "legs" || squat.Tempo != "3-1-1" || squat.TutorialText == "" {
		t.Fatalf("unexpected squat metadata: %+v", squat)
	}

	lunge := exs[1]
	if len(lunge.Sets) != 2 || lunge.Sets[1].Weight != 22.5 || lunge.Sets[1].Reps != 10 {
		t.Fatalf("unexpected lunge sets: %+v", lunge.Sets)
	}
	if lunge.TargetRestTime != 120 {
		t.Fatalf("lunge should inherit plan rest, got %d", lunge.TargetRestTime)
	}

	if len(exs[2].Sets) != 0 {
		t.Fatal("exercise without sets should have none")
	}
	for _, ex := range exs {
		for _, s := range ex.Sets {
			if s.Completed() {
				t.Fatal("planned sets must start incomplete")
			}
		}
	}

	names := p.Names()
	if len(names) != 3 || names[1] != "Lunge" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "exercises: [unclosed"},
		{"missing name", "exercises:\n  - sets: 3\n"},
		{"negative rest", "rest: -5\n"},
		{"too many sets", "exercises:\n  - name: X\n    sets: 51\n"},
		{"negative weight", "exercises:\n  - name: X\n    sets: 1\n    weight: -10\n"},
		{"negative list reps", "exercises:\n  - name: X\n    sets:\n      - {weight: 10, reps: -1}\n"},
		{"sets mapping", "exercises:\n  - name: X\n    sets: {count: 3}\n"},
	}
	for _, tt := range tests {
		if _, err := Parse([]byte(tt.yaml)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(legDay), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Leg day" {
		t.Fatalf("unexpected name %q", p.Name)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
