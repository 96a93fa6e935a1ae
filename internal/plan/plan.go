// Package plan loads workout plans from YAML files.
package plan

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/liftr/internal/session"
)

const maxSets = 50

// Plan is a named list of exercises to start a session from.
//
//	name: Leg day
//	rest: 120
//	exercises:
//	  - name: Squat
//	    muscle_group: legs
//	    sets: 3
//	    weight: 100
//	    reps: 5
//	  - name: Lunge
//	    sets:
//	      - {weight: 20, reps: 12}
//	      - {weight: 22.5, reps: 10}
type Plan struct {
	Name      string         `yaml:"name"`
	Rest      int            `yaml:"rest"`
	Exercises []ExercisePlan `yaml:"exercises"`
}

type ExercisePlan struct {
	Name        string   `yaml:"name"`
	MuscleGroup string   `yaml:"muscle_group"`
	Tempo       string   `yaml:"tempo"`
	Rest        int      `yaml:"rest"`
	Tutorial    string   `yaml:"tutorial"`
	Sets        SetsPlan `yaml:"sets"`
	Weight      float64  `yaml:"weight"`
	Reps        int      `yaml:"reps"`
}

// SetsPlan is either a count of identical sets or an explicit list.
type SetsPlan struct {
	Count int
	List  []SetPlan
}

type SetPlan struct {
	Weight float64 `yaml:"weight"`
	Reps   int     `yaml:"reps"`
}

func (sp *SetsPlan) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Decode(&sp.Count)
	case yaml.SequenceNode:
		return n.Decode(&sp.List)
	}
	return fmt.Errorf("line %d: sets must be a number or a list", n.Line)
}

// Load reads and parses the plan file at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func Parse(data []byte) (*Plan, error) {
	p := &Plan{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("plan validation: %w", err)
	}
	return p, nil
}

func (p *Plan) validate() error {
	if p.Rest < 0 {
		return errors.New("rest must not be negative")
	}
	for i, ex := range p.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return fmt.Errorf("exercise %d: name is required", i+1)
		}
		if ex.Rest < 0 {
			return fmt.Errorf("exercise %q: rest must not be negative", ex.Name)
		}
		n := ex.Sets.Count
		if len(ex.Sets.List) > 0 {
			n = len(ex.Sets.List)
		}
		if n < 0 || n > maxSets {
			return fmt.Errorf("exercise %q: sets must be between 0 and %d", ex.Name, maxSets)
		}
		if ex.Weight < 0 || ex.Reps < 0 {
			return fmt.Errorf("exercise %q: weight and reps must not be negative", ex.Name)
		}
		for j, s := range ex.Sets.List {
			if s.Weight < 0 || s.Reps < 0 {
				return fmt.Errorf("exercise %q set %d: weight and reps must not be negative", ex.Name, j+1)
			}
		}
	}
	return nil
}

// SessionExercises expands the plan into session exercises. An exercise
// without its own rest inherits the plan's.
func (p *Plan) SessionExercises() []session.Exercise {
	out := make([]session.Exercise, 0, len(p.Exercises))
	for _, ep := range p.Exercises {
		ex := session.Exercise{
			Name:           strings.TrimSpace(ep.Name),
			MuscleGroup:    ep.MuscleGroup,
			Tempo:          ep.Tempo,
			TargetRestTime: ep.Rest,
			TutorialText:   ep.Tutorial,
		}
		if ex.TargetRestTime == 0 {
			ex.TargetRestTime = p.Rest
		}
		if len(ep.Sets.List) > 0 {
			for _, s := range ep.Sets.List {
				ex.Sets = append(ex.Sets, session.Set{Weight: s.Weight, Reps: s.Reps})
			}
		} else {
			for range ep.Sets.Count {
				ex.Sets = append(ex.Sets, session.Set{Weight: ep.Weight, Reps: ep.Reps})
			}
		}
		out = append(out, ex)
	}
	return out
}

// Names lists the exercise names in plan order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Exercises))
	for i, ex := range p.Exercises {
		names[i] = strings.TrimSpace(ex.Name)
	}
	return names
}
