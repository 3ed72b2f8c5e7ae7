package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
	"time"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"git.sr.ht/~gioverse/skel/stream"
	"git.sr.ht/~whereswaldon/chomp/backend"
	"git.sr.ht/~whereswaldon/chomp/chart"
	"git.sr.ht/~whereswaldon/chomp/config"
	"git.sr.ht/~whereswaldon/chomp/store"
	"github.com/sirupsen/logrus"
)

const caloriesHint = "Calories eaten"

// Dashboard shows the recent weight history as a line chart below a
// summary of the latest measurement and today's calories.
type Dashboard struct {
	ws            backend.WindowState
	log           logrus.FieldLogger
	historyStream *stream.Stream[chart.DataSeries]
	statsStream   *stream.Stream[backend.Stats]
	series        chart.DataSeries
	stats         backend.Stats
	historyDays   int

	caloriesField component.TextField
	addBtn        widget.Clickable

	cache chart.Cache
	// fg is the color the cached primitives were rendered with.
	fg color.NRGBA
}

func NewDashboard(ws backend.WindowState, cfg config.Chart, log logrus.FieldLogger) *Dashboard {
	d := &Dashboard{
		ws:            ws,
		log:           log,
		historyStream: stream.New(ws.Controller, ws.Bundle.Weights.History),
		statsStream:   stream.New(ws.Controller, ws.Bundle.Weights.Stats),
		historyDays:   cfg.HistoryDays,
	}
	d.cache.Renderer = chart.Renderer{
		Options: chart.Options{
			GridX:    cfg.GridX,
			GridY:    cfg.GridY,
			LabelsX:  cfg.LabelsX,
			LabelsY:  cfg.LabelsY,
			FontSize: cfg.FontSize,
		},
		Log: log,
	}
	d.caloriesField.SingleLine = true
	d.caloriesField.Submit = true
	return d
}

// parseCalories validates the quick-add field, which accepts several
// entries separated by spaces or plus signs.
func parseCalories(input string) ([]int, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == '+' || r == ' ' || r == ','
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("enter the calories eaten")
	}
	entries := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid calories %q", f)
		}
		if err := store.ValidateCalories(v); err != nil {
			return nil, err
		}
		entries[i] = v
	}
	return entries, nil
}

func (d *Dashboard) addCalories() {
	d.caloriesField.ClearError()
	entries, err := parseCalories(d.caloriesField.Text())
	if err != nil {
		d.caloriesField.SetError(err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.ws.Weights.AddCalories(ctx, entries...); err != nil {
		d.log.WithError(err).Error("failed adding calories")
		d.caloriesField.SetError(err.Error())
		return
	}
	d.caloriesField.SetText("")
}

func (d *Dashboard) Update(gtx C, th *material.Theme) {
	if series, isNew := d.historyStream.ReadNew(gtx); isNew {
		d.series = series
		d.cache.Invalidate()
	}
	d.statsStream.ReadInto(gtx, &d.stats, backend.Stats{})
	if th.Fg != d.fg {
		d.fg = th.Fg
		d.cache.Invalidate()
	}
	d.caloriesField.Update(gtx, th, caloriesHint)
	submitted := false
	for {
		ev, ok := d.caloriesField.Editor.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.SubmitEvent); ok {
			submitted = true
		}
	}
	if d.addBtn.Clicked(gtx) || submitted {
		d.addCalories()
	}
}

func (d *Dashboard) Layout(gtx C, th *material.Theme) D {
	d.Update(gtx, th)
	inset := layout.UniformInset(4)
	return layout.Flex{
		Axis: layout.Vertical,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return inset.Layout(gtx, func(gtx C) D {
				return d.layoutHeader(gtx, th)
			})
		}),
		layout.Rigid(func(gtx C) D {
			return inset.Layout(gtx, func(gtx C) D {
				return d.layoutCalories(gtx, th)
			})
		}),
		layout.Flexed(1, d.layoutChart(th)),
	)
}

func (d *Dashboard) layoutHeader(gtx C, th *material.Theme) D {
	latest := "No weight recorded yet"
	if d.stats.HasLatest {
		latest = fmt.Sprintf("Latest: %.1f kg on %s", d.stats.Latest.Weight, d.stats.Latest.Day.Format(time.DateOnly))
	}
	change := "Weekly change: not enough data"
	if d.stats.HasChange {
		change = fmt.Sprintf("Weekly change: %+.2f kg", d.stats.WeeklyChange)
	}
	return layout.Flex{
		Alignment: layout.Baseline,
		Spacing:   layout.SpaceBetween,
	}.Layout(gtx,
		layout.Rigid(material.H6(th, latest).Layout),
		layout.Rigid(material.Body1(th, change).Layout),
		layout.Rigid(func(gtx C) D {
			l := material.Body2(th, fmt.Sprintf("last %d days", d.historyDays))
			if d.stats.Err != nil {
				l.Text = d.stats.Err.Error()
				l.Color = errorColor
			}
			return l.Layout(gtx)
		}),
	)
}

func (d *Dashboard) layoutCalories(gtx C, th *material.Theme) D {
	cals := d.stats.Calories
	summary := fmt.Sprintf("Today: %d of %d kcal, %d left", cals.Sum(), cals.Target, cals.Left())
	return layout.Flex{
		Alignment: layout.Middle,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			l := material.Body1(th, summary)
			if cals.Left() < 0 {
				l.Color = errorColor
			}
			return l.Layout(gtx)
		}),
		layout.Flexed(1, func(gtx C) D {
			return layout.UniformInset(2).Layout(gtx, func(gtx C) D {
				return d.caloriesField.Layout(gtx, th, caloriesHint)
			})
		}),
		layout.Rigid(material.Button(th, &d.addBtn, "Add").Layout),
	)
}

func (d *Dashboard) layoutChart(th *material.Theme) layout.Widget {
	return func(gtx C) D {
		size := gtx.Constraints.Max
		defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
		// Chart geometry is computed in Dp so labels and margins keep their
		// physical size on dense displays.
		dpSize := image.Pt(
			int(float32(size.X)/gtx.Metric.PxPerDp),
			int(float32(size.Y)/gtx.Metric.PxPerDp),
		)
		area := chart.AreaFor(dpSize, chart.DefaultMargin)
		prims := d.cache.GetOrCompute(d.series, dpSize, area, d.fg)
		paintChart(gtx, th, prims)
		if d.series.Empty() {
			d.layoutEmpty(gtx, th, area)
		}
		return D{Size: size}
	}
}

// layoutEmpty explains the blank chart in the middle of its plot area.
func (d *Dashboard) layoutEmpty(gtx C, th *material.Theme, area chart.Rect) {
	gtx.Constraints.Min = image.Point{}
	l := material.Body1(th, fmt.Sprintf("No weights in the last %d days", d.historyDays))
	dims, call := rec(gtx, l.Layout)
	centre := area.Center().Mul(gtx.Metric.PxPerDp)
	offset := image.Pt(int(centre.X)-dims.Size.X/2, int(centre.Y)-dims.Size.Y/2)
	defer op.Offset(offset).Push(gtx.Ops).Pop()
	call.Add(gtx.Ops)
}
