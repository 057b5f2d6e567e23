// Package viewer presents an Arena in an ebiten window: the two compared
// rules side by side, chosen with the arrow keys.
package viewer

import (
	"context"
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/demmel/life-plus-plus/internal/evo"
	"github.com/demmel/life-plus-plus/internal/platform"
)

const (
	statusHeight = 40
	gutter       = 8
)

type Options struct {
	Scale         int
	StepsPerFrame int
	Title         string
}

type Game struct {
	ctx   context.Context
	arena *platform.Arena
	opts  Options

	width, height int
	pix           [2][]byte
	textures      [2]*ebiten.Image
	lastErr       error
}

func New(ctx context.Context, arena *platform.Arena, opts Options) *Game {
	if opts.Scale <= 0 {
		opts.Scale = 2
	}
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = 1
	}
	if opts.Title == "" {
		opts.Title = "life++"
	}
	w, h := arena.ViewSize()
	g := &Game{ctx: ctx, arena: arena, opts: opts, width: w, height: h}
	for i := range g.textures {
		g.pix[i] = make([]byte, w*h*4)
		g.textures[i] = ebiten.NewImage(w, h)
	}
	return g
}

// Run opens the window and blocks until it is closed.
func Run(ctx context.Context, arena *platform.Arena, opts Options) error {
	g := New(ctx, arena, opts)
	sw, sh := g.Layout(0, 0)
	ebiten.SetWindowSize(sw, sh)
	ebiten.SetWindowTitle(g.opts.Title)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (g *Game) Update() error {
	if err := g.ctx.Err(); err != nil {
		return ebiten.Termination
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft), inpututil.IsKeyJustPressed(ebiten.KeyA):
		g.submit(evo.LeftPreferred)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight), inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.submit(evo.RightPreferred)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.arena.Reseed()
	}

	for i := 0; i < g.opts.StepsPerFrame; i++ {
		if err := g.arena.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// submit ignores engine and journal errors; the window keeps running and the
// last error is shown in the status line.
func (g *Game) submit(outcome evo.Outcome) {
	_, err := g.arena.Submit(g.ctx, outcome)
	g.lastErr = err
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	for i, side := range []platform.Side{platform.Left, platform.Right} {
		g.arena.Fill(side, g.pix[i])
		g.textures[i].WritePixels(g.pix[i])

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(g.opts.Scale), float64(g.opts.Scale))
		op.GeoM.Translate(float64(i*(g.width*g.opts.Scale+gutter)), statusHeight)
		op.Filter = ebiten.FilterNearest
		screen.DrawImage(g.textures[i], op)
	}

	text.Draw(screen, platform.FormatStatus(g.arena.Status()), basicfont.Face7x13, 6, 16, color.White)
	help := "left/A: left wins   right/D: right wins   space: reseed   esc: quit"
	if g.lastErr != nil {
		help = g.lastErr.Error()
	}
	text.Draw(screen, help, basicfont.Face7x13, 6, 32, color.White)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return 2*g.width*g.opts.Scale + gutter, g.height*g.opts.Scale + statusHeight
}
