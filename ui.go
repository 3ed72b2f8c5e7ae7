package main

import (
	"image/color"

	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"git.sr.ht/~whereswaldon/chomp/backend"
	"git.sr.ht/~whereswaldon/chomp/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/shiny/materialdesign/icons"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

const (
	tabDashboard = "dashboard"
	tabWeights   = "weights"
)

var (
	chartIcon = mustIcon(icons.EditorShowChart)
	listIcon  = mustIcon(icons.ActionList)
	darkIcon  = mustIcon(icons.ImageBrightness3)
)

func mustIcon(data []byte) *widget.Icon {
	icon, _ := widget.NewIcon(data)
	return icon
}

var errorColor = color.NRGBA{R: 150, A: 255}

var (
	lightPalette = material.Palette{
		Bg:         color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Fg:         color.NRGBA{A: 0xff},
		ContrastBg: color.NRGBA{R: 0x2b, G: 0x7f, B: 0xa8, A: 0xff},
		ContrastFg: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
	darkPalette = material.Palette{
		Bg:         color.NRGBA{R: 0x20, G: 0x20, B: 0x24, A: 0xff},
		Fg:         color.NRGBA{R: 0xe8, G: 0xe8, B: 0xe8, A: 0xff},
		ContrastBg: color.NRGBA{R: 0x51, G: 0x85, B: 0x4d, A: 0xff},
		ContrastFg: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
)

// UI is responsible for holding the state of and drawing the top-level UI.
type UI struct {
	ws   backend.WindowState
	expl *explorer.Explorer

	dashboard *Dashboard
	entries   *Entries
	tab       widget.Enum
	dark      widget.Bool

	th *material.Theme
}

func NewUI(ws backend.WindowState, expl *explorer.Explorer, invalidate func(), cfg config.Chart, log logrus.FieldLogger) *UI {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	th.Palette = lightPalette
	return &UI{
		ws:        ws,
		th:        th,
		expl:      expl,
		tab:       widget.Enum{Value: tabDashboard},
		dashboard: NewDashboard(ws, cfg, log),
		entries:   NewEntries(ws, expl, invalidate, log),
	}
}

// Update the state of the UI.
func (ui *UI) Update(gtx C) {
	ui.tab.Update(gtx)
	if ui.dark.Update(gtx) {
		if ui.dark.Value {
			ui.th.Palette = darkPalette
		} else {
			ui.th.Palette = lightPalette
		}
	}
}

type TabStyle struct {
	state  *widget.Enum
	label  material.LabelStyle
	icon   *widget.Icon
	border widget.Border
	inset  layout.Inset
	value  string
	fill   color.NRGBA
}

func Tab(th *material.Theme, state *widget.Enum, value, display string, icon *widget.Icon) TabStyle {
	selected := state.Value == value
	ts := TabStyle{
		state: state,
		label: material.Body1(th, display),
		icon:  icon,
		inset: layout.UniformInset(2),
		border: widget.Border{
			Width: 2,
			Color: th.ContrastBg,
		},
		value: value,
	}
	ts.label.Alignment = text.Middle
	if selected {
		ts.label.Color = th.ContrastFg
		ts.fill = th.ContrastBg
	}
	return ts
}

func (t TabStyle) Layout(gtx C) D {
	return t.inset.Layout(gtx, func(gtx C) D {
		return t.border.Layout(gtx, func(gtx C) D {
			return t.inset.Layout(gtx, func(gtx C) D {
				return t.state.Layout(gtx, t.value, func(gtx C) D {
					return layout.Background{}.Layout(gtx, func(gtx C) D {
						paint.FillShape(gtx.Ops, t.fill, clip.Rect{Max: gtx.Constraints.Min}.Op())
						return D{Size: gtx.Constraints.Min}
					}, func(gtx C) D {
						return layout.Flex{
							Alignment: layout.Middle,
							Spacing:   layout.SpaceSides,
						}.Layout(gtx,
							layout.Rigid(func(gtx C) D {
								if t.icon == nil {
									return D{}
								}
								gtx.Constraints.Min.X = gtx.Dp(unit.Dp(20))
								return t.icon.Layout(gtx, t.label.Color)
							}),
							layout.Rigid(t.label.Layout),
						)
					})
				})
			})
		})
	})
}

func rec(gtx C, w layout.Widget) (D, op.CallOp) {
	macro := op.Record(gtx.Ops)
	dims := w(gtx)
	call := macro.Stop()
	return dims, call
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	paint.Fill(gtx.Ops, ui.th.Bg)
	return layout.Flex{
		Axis: layout.Vertical,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return layout.Flex{
				Alignment: layout.Middle,
			}.Layout(gtx,
				layout.Flexed(1, Tab(ui.th, &ui.tab, tabDashboard, "Dashboard", chartIcon).Layout),
				layout.Flexed(1, Tab(ui.th, &ui.tab, tabWeights, "Weights", listIcon).Layout),
				layout.Rigid(func(gtx C) D {
					return layout.UniformInset(4).Layout(gtx, func(gtx C) D {
						return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
							layout.Rigid(func(gtx C) D {
								gtx.Constraints.Min.X = gtx.Dp(unit.Dp(20))
								return darkIcon.Layout(gtx, ui.th.Fg)
							}),
							layout.Rigid(material.Switch(ui.th, &ui.dark, "Dark mode").Layout),
						)
					})
				}),
			)
		}),
		layout.Flexed(1, func(gtx C) D {
			if ui.tab.Value == tabDashboard {
				return ui.dashboard.Layout(gtx, ui.th)
			}
			return ui.entries.Layout(gtx, ui.th)
		}),
	)
}
