package bounds

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/willowtest/engine"
)

type labeled struct {
	name string
	r    Rect
}

func (l labeled) WorldBounds() Rect { return l.r }
func (l labeled) Label() string     { return l.name }

func TestResolveRectIsIdentity(t *testing.T) {
	r := Rect{X: 0.1, Y: 1e-9, Width: 33.333333, Height: 0}
	got, err := Resolve(FromRect(r))
	require.NoError(t, err)
	assert.Equal(t, r, got)

	got, err = ResolveAny(&r)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestResolveNodeReadsCurrentTransform(t *testing.T) {
	n := engine.NewRectangle("box", 50, 50, 40, 40, engine.ColorWhite)
	src := Of(n)

	got, err := Resolve(src)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 30, Y: 30, Width: 40, Height: 40}, got)

	n.SetPosition(150, 50)
	got, err = Resolve(src)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 130, Y: 30, Width: 40, Height: 40}, got)
}

func TestUnresolvable(t *testing.T) {
	var nilNode *engine.Node
	for name, v := range map[string]any{
		"zero source": Source{},
		"nil":         nil,
		"string":      "box",
		"int":         42,
		"nil node":    nilNode,
		"nil rect":    (*Rect)(nil),
	} {
		_, err := ResolveAny(v)
		assert.Truef(t, errors.Is(err, ErrUnresolvableBounds), "%s: err = %v", name, err)
	}
	_, err := Resolve(Of(nil))
	assert.ErrorIs(t, err, ErrUnresolvableBounds)
}

func TestFromAcceptsSource(t *testing.T) {
	src := FromRect(Rect{Width: 1, Height: 1})
	got, err := From(src)
	require.NoError(t, err)
	assert.True(t, got.IsRect())

	obj, err := From(labeled{name: "panel"})
	require.NoError(t, err)
	assert.False(t, obj.IsRect())
	assert.NotNil(t, obj.Object())
}

func TestName(t *testing.T) {
	named := engine.NewRectangle("okButton", 0, 0, 1, 1, engine.ColorWhite)
	unnamed := engine.NewSprite("", 0, 0, nil)
	var nilNode *engine.Node

	assert.Equal(t, "okButton", Name(named))
	assert.Equal(t, "okButton", Name(Of(named)))
	assert.Equal(t, "Sprite", Name(unnamed))
	assert.Equal(t, "panel", Name(labeled{name: "panel"}))
	assert.Equal(t, "object", Name(labeled{}))
	assert.Equal(t, "Rect", Name(Rect{}))
	assert.Equal(t, "Rect", Name(FromRect(Rect{})))
	assert.Equal(t, "object", Name(nilNode))
	assert.Equal(t, "object", Name(3.5))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "(x=30, y=30, w=40, h=40)", Format(Rect{X: 30, Y: 30, Width: 40, Height: 40}))
}
