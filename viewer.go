package gravit

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures Run.
type RunConfig struct {
	Title string
	// ShowFPS prints the frame rate in the top-left corner.
	ShowFPS bool
	// ZoomStep is the zoom factor applied per wheel notch. Zero means 1.1.
	ZoomStep float64
	// Update, when set, is called once per tick before repainting.
	Update func(dt float64) error
	// Tool, when set, receives left-button pointer input.
	Tool *SelectTool
	// Script, when set, drives Tool; the window closes when it is done.
	Script *ScriptRunner
}

// Viewer presents a View in an ebiten window. The left mouse button drives
// the select tool, the right button pans and the wheel zooms around the
// cursor.
type Viewer struct {
	view   *View
	cfg    RunConfig
	screen *ebiten.Image

	dragging     bool
	lastX, lastY int
	last         time.Time
	stale        bool
}

// NewViewer creates a viewer for v.
func NewViewer(v *View, cfg RunConfig) *Viewer {
	if cfg.ZoomStep <= 0 {
		cfg.ZoomStep = 1.1
	}
	return &Viewer{view: v, cfg: cfg, stale: true}
}

// Run opens a window sized to the view and blocks until it is closed.
func Run(v *View, cfg RunConfig) error {
	b := v.Bounds()
	ebiten.SetWindowSize(b.Dx(), b.Dy())
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	return ebiten.RunGame(NewViewer(v, cfg))
}

// Update implements ebiten.Game.
func (g *Viewer) Update() error {
	now := time.Now()
	dt := 1.0 / float64(ebiten.TPS())
	if !g.last.IsZero() {
		dt = now.Sub(g.last).Seconds()
	}
	g.last = now

	if g.cfg.Update != nil {
		if err := g.cfg.Update(dt); err != nil {
			return err
		}
	}
	if g.cfg.Script != nil && g.cfg.Tool != nil {
		if g.cfg.Script.Done() {
			if err := g.cfg.Script.Err(); err != nil {
				return err
			}
			return ebiten.Termination
		}
		g.cfg.Script.Step(g.cfg.Tool)
	}
	if g.cfg.Tool == nil || !g.cfg.Tool.Step() {
		g.handleInput()
	}
	g.view.Update(float32(dt))

	// Frames requested through a ManualScheduler run once per tick; any
	// other scheduler runs them itself.
	if sched, ok := g.view.scheduler.(*ManualScheduler); ok {
		if sched.Flush() > 0 {
			g.stale = true
		}
	} else {
		g.stale = true
	}
	return nil
}

func (g *Viewer) handleInput() {
	mx, my := ebiten.CursorPosition()
	if _, wy := ebiten.Wheel(); wy != 0 {
		zoom := g.view.Zoom()
		if wy > 0 {
			zoom *= g.cfg.ZoomStep
		} else {
			zoom /= g.cfg.ZoomStep
		}
		g.view.SetZoom(zoom, Vec2{float64(mx), float64(my)})
	}
	if g.cfg.Tool != nil {
		g.cfg.Tool.Pointer(float64(mx), float64(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		if g.dragging {
			g.view.ScrollBy(float64(g.lastX-mx), float64(g.lastY-my))
		}
		g.dragging = true
		g.lastX, g.lastY = mx, my
	} else {
		g.dragging = false
	}
}

// Draw implements ebiten.Game.
func (g *Viewer) Draw(screen *ebiten.Image) {
	if b := g.view.Bounds(); b.Empty() {
		return
	}
	if g.stale || g.screen == nil {
		img := g.view.Composite()
		b := img.Bounds()
		if g.screen == nil || g.screen.Bounds() != b {
			g.screen = ebiten.NewImage(b.Dx(), b.Dy())
		}
		g.screen.WritePixels(img.Pix)
		g.stale = false
	}
	screen.DrawImage(g.screen, nil)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nZoom: %.0f%%", ebiten.ActualFPS(), g.view.Zoom()*100))
	}
}

// Layout implements ebiten.Game.
func (g *Viewer) Layout(_, _ int) (int, int) {
	b := g.view.Bounds()
	return max(b.Dx(), 1), max(b.Dy(), 1)
}
