package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/tokencam/camera"
)

const (
	panelExpanded  = "expanded"
	panelCollapsed = "collapsed"
)

// ControlPanel is the camera control strip in the lower-left corner. Its
// collapsed/expanded state round-trips through the cinematic snapshot so
// guests get their panel back when the lock lifts.
type ControlPanel struct {
	isHost     bool
	collapsed  bool
	controller *camera.Controller
	ui         *ebitenui.UI
}

func NewControlPanel(isHost bool) *ControlPanel {
	return &ControlPanel{isHost: isHost}
}

// Bind attaches the controller and builds the widget tree. Buttons made
// before Bind would have nothing to click into.
func (p *ControlPanel) Bind(c *camera.Controller) {
	p.controller = c
	p.ui = p.build()
}

// --- camera.Panel -----------------------------------------------------------

func (p *ControlPanel) State() string {
	if p.collapsed {
		return panelCollapsed
	}
	return panelExpanded
}

func (p *ControlPanel) Apply(state string) {
	p.collapsed = state == panelCollapsed
}

func (p *ControlPanel) Collapse() {
	p.collapsed = true
}

// ToggleCollapsed flips the panel open or shut.
func (p *ControlPanel) ToggleCollapsed() {
	p.collapsed = !p.collapsed
}

// --- frame hooks -------------------------------------------------------------

func (p *ControlPanel) Update() {
	if p.collapsed || p.ui == nil {
		return
	}
	p.ui.Update()
}

func (p *ControlPanel) Draw(screen *ebiten.Image) {
	if p.collapsed {
		ebitenutil.DebugPrintAt(screen, "[Tab] camera", 8, baseHeight-20)
		return
	}
	if p.ui != nil {
		p.ui.Draw(screen)
	}
}

// build makes a button strip with colored nine-slices and the built-in
// basic font, so no theme fonts need loading.
func (p *ControlPanel) build() *ebitenui.UI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 180})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace

	btnTextColor := &widget.ButtonTextColor{Idle: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}}

	makeButton := func(label string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnImg}),
			widget.ButtonOpts.Text(label, &face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				onClick()
			}),
		)
	}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 8, Bottom: 8, Left: 12, Right: 12}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionStart,
				VerticalPosition:   widget.AnchorLayoutPositionEnd,
			}),
		),
	)

	panel.AddChild(makeButton("Follow", p.controller.ToggleLocal))
	if p.isHost {
		panel.AddChild(makeButton("Force", p.controller.ToggleForce))
		panel.AddChild(makeButton("Cinematic", p.controller.ToggleCinematic))
		panel.AddChild(makeButton("Mode", p.controller.ToggleSubMode))
	}

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &ebitenui.UI{Container: root}
}
