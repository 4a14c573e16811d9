package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.design/x/clipboard"

	"github.com/milk9111/tokencam/camera"
	"github.com/milk9111/tokencam/ecs"
	"github.com/milk9111/tokencam/ecs/component"
	"github.com/milk9111/tokencam/ecs/system"
	"github.com/milk9111/tokencam/notify"
	"github.com/milk9111/tokencam/obj"
	"github.com/milk9111/tokencam/settings"
	"github.com/milk9111/tokencam/tables"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

// GameConfig wires a Game to its table, role, and settings store.
type GameConfig struct {
	Table    *tables.Table
	ClientID string
	IsHost   bool
	Store    settings.Store
	ShotsDir string
	Debug    bool
}

type Game struct {
	frames int
	debug  bool

	clientID string
	isHost   bool

	world      *ecs.World
	viewport   *obj.Viewport
	controller *camera.Controller
	panel      *ControlPanel
	banners    *notify.Queue
	director   *Director

	store settings.Store
}

func NewGame(cfg GameConfig) (*Game, error) {
	if cfg.Table == nil {
		return nil, fmt.Errorf("nil table")
	}

	world := ecs.NewWorld()
	if err := tables.Spawn(world, cfg.Table); err != nil {
		return nil, fmt.Errorf("spawn table %s: %w", cfg.Table.ID, err)
	}

	viewport := obj.NewViewport(cfg.Table.ID, world, baseWidth, baseHeight, cfg.Table.Width, cfg.Table.Height)
	banners := notify.NewQueue(cfg.IsHost)
	panel := NewControlPanel(cfg.IsHost)

	controller := camera.NewController(camera.Config{
		Store:    cfg.Store,
		Canvas:   viewport,
		Panel:    panel,
		Notifier: banners,
		IsHost:   cfg.IsHost,
	})
	panel.Bind(controller)
	viewport.OnPan = controller.PanChanged
	viewport.OnSelectionChanged = controller.SelectionChanged
	viewport.OnRotationChanged = func(n obj.RotationNotice) {
		log.Printf("[rotation] %.1f deg (step %d)", n.AngleDegrees, n.DiscreteStep)
	}

	world.AddSystem(system.NewPointerSystem(viewport, controller))
	world.AddSystem(system.NewSelectionSystem(viewport, controller))
	world.AddSystem(system.NewTokenMoveSystem(viewport, controller, cfg.ClientID))
	world.AddSystem(system.NewCameraSystem(controller))

	g := &Game{
		debug:      cfg.Debug,
		clientID:   cfg.ClientID,
		isHost:     cfg.IsHost,
		world:      world,
		viewport:   viewport,
		controller: controller,
		panel:      panel,
		banners:    banners,
		store:      cfg.Store,
	}
	g.director = NewDirector(g, cfg.ShotsDir)
	return g, nil
}

// Close tears down the controller and director.
func (g *Game) Close() {
	if g == nil {
		return
	}
	g.controller.Close()
	g.director.Close()
}

func (g *Game) Update() error {
	g.frames++

	g.handleKeys()
	g.world.Update()
	g.director.Update()
	g.panel.Update()

	return nil
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.controller.ToggleLocal()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		g.controller.ToggleForce()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.controller.ToggleCinematic()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.controller.ToggleSubMode()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.director.Toggle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.panel.ToggleCollapsed()
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) && inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.copyDebugState()
	}
}

// copyDebugState puts the current camera state on the clipboard.
func (g *Game) copyDebugState() {
	center := g.controller.ViewportCenter()
	state := map[string]any{
		"table":    g.viewport.TableID(),
		"mode":     g.controller.Mode().String(),
		"loop":     g.controller.LoopRunning(),
		"center":   []float64{center.X, center.Y},
		"zoom":     g.viewport.Zoom(),
		"rotation": g.viewport.Rotation(),
	}
	raw, err := json.Marshal(state)
	if err != nil {
		log.Printf("[debug] marshal state: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, raw)
	log.Printf("[debug] camera state copied: %s", raw)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.NRGBA{R: 0x1c, G: 0x20, B: 0x26, A: 0xff})

	g.drawBoard(screen)
	g.drawTokens(screen)
	g.panel.Draw(screen)
	drawBanners(screen, g.banners)

	if g.debug {
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"fps %.0f  mode %s  loop %v  zoom %.2f",
			ebiten.ActualFPS(), g.controller.Mode(), g.controller.LoopRunning(), g.viewport.Zoom(),
		))
	}
}

func (g *Game) drawBoard(screen *ebiten.Image) {
	geom := g.viewport.GeoM()
	x0, y0 := geom.Apply(0, 0)
	x1, y1 := geom.Apply(g.viewport.NominalCenter().X*2, g.viewport.NominalCenter().Y*2)
	vector.StrokeRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), 2,
		color.NRGBA{R: 0x3a, G: 0x42, B: 0x50, A: 0xff}, true)
}

func (g *Game) drawTokens(screen *ebiten.Image) {
	geom := g.viewport.GeoM()
	zoom := g.viewport.Zoom()
	ecs.ForEach(g.world, component.TokenComponent, func(e ecs.Entity, tok *component.Token) {
		tr, ok := ecs.Get(g.world, e, component.TransformComponent)
		if !ok {
			return
		}
		sx, sy := geom.Apply(tr.X, tr.Y)
		r := float32(tok.Radius * zoom)
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), r, tok.Color, true)
		if _, selected := ecs.Get(g.world, e, component.SelectedComponent); selected {
			vector.StrokeCircle(screen, float32(sx), float32(sy), r+3, 2,
				color.NRGBA{R: 0xff, G: 0xe0, B: 0x66, A: 0xff}, true)
		}
		ebitenutil.DebugPrintAt(screen, tok.Name, int(sx)-len(tok.Name)*3, int(sy)+int(r)+4)
	})
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.viewport.SetScreenSize(baseWidth, baseHeight)
	return baseWidth, baseHeight
}
