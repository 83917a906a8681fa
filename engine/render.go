package engine

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrHeadless is returned by Run for games using the headless renderer.
var ErrHeadless = errors.New("willow: headless games cannot be run in a window")

type renderer interface {
	preRender()
	render(s *Scene)
	postRender()
	destroy()
}

// headlessRenderer satisfies the frame pipeline without producing output.
type headlessRenderer struct{}

func (headlessRenderer) preRender()    {}
func (headlessRenderer) render(*Scene) {}
func (headlessRenderer) postRender()   {}
func (headlessRenderer) destroy()      {}

// drawCommand is one textured quad recorded during the render stage.
type drawCommand struct {
	image     *ebiten.Image
	transform [6]float64
	scaleX    float64
	scaleY    float64
	color     Color
	alpha     float64
}

// canvasRenderer records draw commands while the frame runs and replays the
// most recent list when Ebitengine asks for a Draw.
type canvasRenderer struct {
	game     *Game
	building []drawCommand
	frame    []drawCommand
}

func newCanvasRenderer(g *Game) *canvasRenderer {
	return &canvasRenderer{game: g}
}

func (r *canvasRenderer) preRender() {
	r.building = r.building[:0]
}

func (r *canvasRenderer) render(s *Scene) {
	view := identityTransform
	if cam := s.primaryCamera(); cam != nil {
		view = cam.computeViewMatrix()
	}
	r.traverse(s.root, view, 1)
}

func (r *canvasRenderer) traverse(n *Node, parent [6]float64, parentAlpha float64) {
	if !n.Visible || n.disposed {
		return
	}
	world := multiplyAffine(parent, computeLocalTransform(n))
	alpha := parentAlpha * n.Alpha

	var tex *Texture
	switch n.Type {
	case NodeTypeRectangle:
		tex = r.game.textures.Get(TextureWhite)
	case NodeTypeSprite:
		tex = r.game.textures.Get(n.TextureKey)
	}
	if tex != nil && tex.Image != nil && tex.Width > 0 && tex.Height > 0 && alpha > 0 {
		r.building = append(r.building, drawCommand{
			image:     tex.Image,
			transform: world,
			scaleX:    n.Width / float64(tex.Width),
			scaleY:    n.Height / float64(tex.Height),
			color:     n.Color,
			alpha:     alpha,
		})
	}
	for _, c := range n.paintOrder() {
		r.traverse(c, world, alpha)
	}
}

func (r *canvasRenderer) postRender() {
	r.frame, r.building = r.building, r.frame
}

func (r *canvasRenderer) destroy() {
	r.building = nil
	r.frame = nil
}

// draw replays the last completed frame onto screen.
func (r *canvasRenderer) draw(screen *ebiten.Image) {
	screen.Fill(r.game.Config.BackgroundColor.toRGBA())
	for i := range r.frame {
		cmd := &r.frame[i]
		var geo ebiten.GeoM
		geo.SetElement(0, 0, cmd.transform[0])
		geo.SetElement(1, 0, cmd.transform[1])
		geo.SetElement(0, 1, cmd.transform[2])
		geo.SetElement(1, 1, cmd.transform[3])
		geo.SetElement(0, 2, cmd.transform[4])
		geo.SetElement(1, 2, cmd.transform[5])

		var op ebiten.DrawImageOptions
		op.GeoM.Scale(cmd.scaleX, cmd.scaleY)
		op.GeoM.Concat(geo)
		op.ColorScale.ScaleWithColor(Color{cmd.color.R, cmd.color.G, cmd.color.B, 1}.toRGBA())
		op.ColorScale.ScaleAlpha(float32(cmd.alpha * cmd.color.A))
		screen.DrawImage(cmd.image, &op)
	}
}

// ebitenGame adapts a Game to ebiten.Game.
type ebitenGame struct {
	game    *Game
	started time.Time
}

func (e *ebitenGame) Update() error {
	now := float64(time.Since(e.started)) / float64(time.Millisecond)
	return e.game.Step(now, now-e.game.loop.Now())
}

func (e *ebitenGame) Draw(screen *ebiten.Image) {
	e.game.mu.Lock()
	defer e.game.mu.Unlock()
	if r, ok := e.game.renderer.(*canvasRenderer); ok {
		r.draw(screen)
	}
}

func (e *ebitenGame) Layout(_, _ int) (int, int) {
	return e.game.Config.Width, e.game.Config.Height
}

// Run opens a window and drives the game from Ebitengine's update loop until
// the window closes. It returns ErrHeadless for headless games.
func Run(g *Game) error {
	if g.Config.Renderer == RendererHeadless {
		return ErrHeadless
	}
	ebiten.SetWindowSize(g.Config.Width, g.Config.Height)
	ebiten.SetWindowTitle(g.Config.Title)
	ebiten.SetTPS(int(g.Config.FPS))
	defer g.Destroy()
	return ebiten.RunGame(&ebitenGame{game: g, started: time.Now()})
}
