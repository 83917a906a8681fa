package headless

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/willowtest/engine"
	"github.com/phanxgames/willowtest/layout"
)

// Script actions.
const (
	ActionStep              = "step"
	ActionClick             = "click"
	ActionDrag              = "drag"
	ActionKey               = "key"
	ActionWait              = "wait"
	ActionExpectNoOverlap   = "expectNoOverlap"
	ActionExpectContainedIn = "expectContainedIn"
	ActionExpectAligned     = "expectAligned"
	ActionExpectMinGap      = "expectMinGap"
	ActionExpectAbove       = "expectAbove"
	ActionExpectLeftOf      = "expectLeftOf"
)

// ScriptStep is one action of a Script. Which fields apply depends on
// Action; expectations address nodes by name through A and B.
type ScriptStep struct {
	Action string `yaml:"action"`

	Frames int     `yaml:"frames,omitempty"`
	Delta  float64 `yaml:"delta,omitempty"`

	X     float64 `yaml:"x,omitempty"`
	Y     float64 `yaml:"y,omitempty"`
	FromX float64 `yaml:"fromX,omitempty"`
	FromY float64 `yaml:"fromY,omitempty"`
	ToX   float64 `yaml:"toX,omitempty"`
	ToY   float64 `yaml:"toY,omitempty"`

	// Key is an ebiten key name such as "Space" or "A".
	Key *ebiten.Key `yaml:"key,omitempty"`

	A         string   `yaml:"a,omitempty"`
	B         string   `yaml:"b,omitempty"`
	Axis      string   `yaml:"axis,omitempty"`
	Tolerance *float64 `yaml:"tolerance,omitempty"`
	Gap       float64  `yaml:"gap,omitempty"`

	axis layout.Axis
}

// Script is a sequence of input and layout steps run against a TestGame.
//
//	steps:
//	  - action: click
//	    x: 400
//	    y: 300
//	  - action: wait
//	    frames: 10
//	  - action: expectNoOverlap
//	    a: dialog
//	    b: toolbar
type Script struct {
	Steps []ScriptStep `yaml:"steps"`
}

// LoadScript parses a YAML script. JSON input is accepted as well.
func LoadScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, errors.New("parse script: no steps")
	}
	for i := range s.Steps {
		if err := s.Steps[i].validate(); err != nil {
			return nil, fmt.Errorf("parse script: step %d: %w", i, err)
		}
	}
	return &s, nil
}

func (st *ScriptStep) validate() error {
	switch st.Action {
	case ActionStep, ActionClick, ActionDrag, ActionWait:
		return nil
	case ActionKey:
		if st.Key == nil {
			return errors.New("key needs a key name")
		}
		return nil
	case ActionExpectAligned:
		ax, err := layout.ParseAxis(st.Axis)
		if err != nil {
			return err
		}
		st.axis = ax
		fallthrough
	case ActionExpectNoOverlap, ActionExpectContainedIn, ActionExpectMinGap,
		ActionExpectAbove, ActionExpectLeftOf:
		if st.A == "" || st.B == "" {
			return fmt.Errorf("%s needs node names a and b", st.Action)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
}

// Run executes the steps in order against tg and returns the first
// failure, annotated with its step index.
func (s *Script) Run(tg *TestGame) error {
	for i := range s.Steps {
		st := &s.Steps[i]
		if err := st.run(tg); err != nil {
			return fmt.Errorf("script step %d (%s): %w", i, st.Action, err)
		}
	}
	return nil
}

func (st *ScriptStep) run(tg *TestGame) error {
	g := tg.Game
	switch st.Action {
	case ActionStep:
		return Step(g, st.Frames, st.Delta)
	case ActionWait:
		return Step(g, st.Frames, DefaultDelta)
	case ActionClick:
		return Click(g, st.X, st.Y)
	case ActionDrag:
		return Drag(g, st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case ActionKey:
		return KeyPress(g, *st.Key)
	}

	var a, b *engine.Node
	if err := g.Do(func() {
		a, b = tg.Scene.Find(st.A), tg.Scene.Find(st.B)
	}); err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("no node named %q", st.A)
	}
	if b == nil {
		return fmt.Errorf("no node named %q", st.B)
	}

	switch st.Action {
	case ActionExpectNoOverlap:
		return layout.ExpectNoOverlap(a, b)
	case ActionExpectContainedIn:
		return layout.ExpectContainedIn(a, b)
	case ActionExpectAligned:
		tol := layout.DefaultAlignTolerance
		if st.Tolerance != nil {
			tol = *st.Tolerance
		}
		return layout.ExpectAligned(a, b, st.axis, tol)
	case ActionExpectMinGap:
		return layout.ExpectMinGap(a, b, st.Gap)
	case ActionExpectAbove:
		return layout.ExpectAbove(a, b)
	case ActionExpectLeftOf:
		return layout.ExpectLeftOf(a, b)
	}
	return fmt.Errorf("unknown action %q", st.Action)
}
