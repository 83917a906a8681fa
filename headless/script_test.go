package headless

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/willowtest/engine"
	"github.com/phanxgames/willowtest/layout"
)

// menuScene lays out a toolbar above a panel holding two buttons; clicking
// "grow" widens the panel past the screen edge.
func menuScene() engine.SceneDef {
	return engine.SceneConfig{Key: "menu", OnCreate: func(s *engine.Scene) {
		s.AddRectangle("toolbar", 400, 20, 800, 40, engine.ColorWhite)
		panel := s.AddRectangle("panel", 400, 300, 400, 200, engine.ColorWhite)
		s.AddRectangle("ok", 350, 300, 80, 30, engine.ColorWhite)
		grow := s.AddRectangle("grow", 450, 300, 80, 30, engine.ColorWhite)
		grow.Interactable = true
		grow.OnClick = func(engine.PointerContext) { panel.SetSize(1000, 200) }
	}}
}

const passingScript = `
steps:
  - action: step
    frames: 2
  - action: expectAbove
    a: toolbar
    b: panel
  - action: expectLeftOf
    a: ok
    b: grow
  - action: expectAligned
    a: ok
    b: grow
    axis: centerY
    tolerance: 0
  - action: expectMinGap
    a: ok
    b: grow
    gap: 20
  - action: expectContainedIn
    a: ok
    b: panel
  - action: expectNoOverlap
    a: ok
    b: grow
  - action: key
    key: Space
  - action: click
    x: 450
    y: 300
  - action: wait
    frames: 3
`

func TestScriptRun(t *testing.T) {
	tg := MustNewTestGame(t, Options{Logger: quiet(), Scene: menuScene()})
	script, err := LoadScript([]byte(passingScript))
	require.NoError(t, err)
	require.Len(t, script.Steps, 10)
	require.NotNil(t, script.Steps[7].Key)
	assert.Equal(t, ebiten.KeySpace, *script.Steps[7].Key)

	frames := tg.Game.Loop().Frames()
	require.NoError(t, script.Run(tg))
	assert.Equal(t, frames+2+2+3, tg.Game.Loop().Frames())
	assert.Equal(t, 1000.0, tg.Scene.Find("panel").Width, "click should reach the grow button")
}

func TestScriptReportsFailingStep(t *testing.T) {
	tg := MustNewTestGame(t, Options{Logger: quiet(), Scene: menuScene()})
	script, err := LoadScript([]byte(`
steps:
  - action: click
    x: 450
    y: 300
  - action: expectContainedIn
    a: panel
    b: toolbar
`))
	require.NoError(t, err)

	err = script.Run(tg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script step 1 (expectContainedIn)")
	var ae *layout.AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, layout.PredContainedIn, ae.Predicate)
}

func TestScriptJSON(t *testing.T) {
	tg := MustNewTestGame(t, Options{Logger: quiet(), Scene: menuScene()})
	script, err := LoadScript([]byte(`{"steps": [
		{"action": "wait", "frames": 1},
		{"action": "expectNoOverlap", "a": "ok", "b": "grow"},
		{"action": "drag", "fromX": 10, "fromY": 500, "toX": 60, "toY": 500, "frames": 4}
	]}`))
	require.NoError(t, err)
	require.NoError(t, script.Run(tg))
}

func TestScriptMissingNode(t *testing.T) {
	tg := MustNewTestGame(t, Options{Logger: quiet(), Scene: menuScene()})
	script, err := LoadScript([]byte("steps:\n  - action: expectAbove\n    a: toolbar\n    b: footer\n"))
	require.NoError(t, err)
	assert.ErrorContains(t, script.Run(tg), `no node named "footer"`)
}

func TestLoadScriptErrors(t *testing.T) {
	for name, src := range map[string]string{
		"malformed":      "steps: [",
		"empty":          "steps: []",
		"unknown action": "steps:\n  - action: teleport\n",
		"bad axis":       "steps:\n  - action: expectAligned\n    a: x\n    b: y\n    axis: diagonal\n",
		"missing names":  "steps:\n  - action: expectNoOverlap\n    a: x\n",
		"missing key":    "steps:\n  - action: key\n",
		"bad key":        "steps:\n  - action: key\n    key: NotAKey\n",
	} {
		_, err := LoadScript([]byte(src))
		assert.Error(t, err, name)
	}
}
