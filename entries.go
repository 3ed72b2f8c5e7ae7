package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"
	"time"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"git.sr.ht/~whereswaldon/chomp/backend"
	"git.sr.ht/~whereswaldon/chomp/chart"
	"git.sr.ht/~whereswaldon/chomp/store"
	"github.com/sirupsen/logrus"
)

const (
	dateHint   = "Date (YYYY-MM-DD, empty for today)"
	weightHint = "Weight (kg)"
)

// Entries lists every recorded weight and lets the user add, change, delete
// and import them.
type Entries struct {
	ws         backend.WindowState
	expl       *explorer.Explorer
	invalidate func()
	log        logrus.FieldLogger

	recentStream *stream.Stream[[]store.Weight]
	weights      []store.Weight
	rowBtns      []widget.Clickable

	dateField   component.TextField
	weightField component.TextField
	saveBtn     widget.Clickable
	deleteBtn   widget.Clickable
	importBtn   widget.Clickable
	importing   bool
	results     chan string
	status      string

	table component.GridState
}

func NewEntries(ws backend.WindowState, expl *explorer.Explorer, invalidate func(), log logrus.FieldLogger) *Entries {
	e := &Entries{
		ws:           ws,
		expl:         expl,
		invalidate:   invalidate,
		log:          log,
		recentStream: stream.New(ws.Controller, ws.Bundle.Weights.Recent),
		results:      make(chan string, 1),
	}
	e.dateField.SingleLine = true
	e.dateField.Submit = true
	e.weightField.SingleLine = true
	e.weightField.Submit = true
	return e
}

// parseEntry validates the form. An empty date means today.
func parseEntry(date, weight string, today time.Time) (store.Weight, error) {
	var w store.Weight
	date = strings.TrimSpace(date)
	if date == "" {
		w.Day = chart.Day(today)
	} else {
		day, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return w, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
		}
		w.Day = day
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
	if err != nil {
		return w, fmt.Errorf("invalid weight %q", weight)
	}
	if err := store.ValidateWeight(value); err != nil {
		return w, err
	}
	w.Weight = float32(value)
	return w, nil
}

func (e *Entries) Update(gtx C, th *material.Theme) {
	e.dateField.Update(gtx, th, dateHint)
	e.weightField.Update(gtx, th, weightHint)
	e.recentStream.ReadInto(gtx, &e.weights, nil)
	if len(e.rowBtns) < len(e.weights) {
		e.rowBtns = append(e.rowBtns, make([]widget.Clickable, len(e.weights)-len(e.rowBtns))...)
	}
	for i := range e.weights {
		if e.rowBtns[i].Clicked(gtx) {
			e.dateField.SetText(e.weights[i].Day.Format(time.DateOnly))
			e.weightField.SetText(strconv.FormatFloat(float64(e.weights[i].Weight), 'f', -1, 32))
		}
	}

	submitted := false
	for _, field := range []*component.TextField{&e.dateField, &e.weightField} {
		for {
			ev, ok := field.Editor.Update(gtx)
			if !ok {
				break
			}
			if _, ok := ev.(widget.SubmitEvent); ok {
				submitted = true
			}
		}
	}
	if e.saveBtn.Clicked(gtx) || submitted {
		e.save()
	}
	if e.deleteBtn.Clicked(gtx) {
		e.delete()
	}
	if !e.importing && e.importBtn.Clicked(gtx) {
		e.importing = true
		e.status = "Choosing file..."
		go e.importFile()
	}
	select {
	case e.status = <-e.results:
		e.importing = false
	default:
	}
}

func (e *Entries) save() {
	e.dateField.ClearError()
	e.weightField.ClearError()
	w, err := parseEntry(e.dateField.Text(), e.weightField.Text(), time.Now())
	if err != nil {
		if strings.Contains(err.Error(), "date") {
			e.dateField.SetError(err.Error())
		} else {
			e.weightField.SetError(err.Error())
		}
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.ws.Weights.Save(ctx, w); err != nil {
		e.log.WithError(err).Error("failed saving weight")
		e.status = err.Error()
		return
	}
	e.status = fmt.Sprintf("Saved %.1f kg for %s", w.Weight, w.Day.Format(time.DateOnly))
	e.weightField.SetText("")
}

func (e *Entries) delete() {
	e.dateField.ClearError()
	day, err := time.Parse(time.DateOnly, strings.TrimSpace(e.dateField.Text()))
	if err != nil {
		e.dateField.SetError("enter the date to delete")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.ws.Weights.Delete(ctx, day); err != nil {
		e.log.WithError(err).Error("failed deleting weight")
		e.status = err.Error()
		return
	}
	e.status = "Deleted " + day.Format(time.DateOnly)
}

// importFile runs off the UI goroutine, since choosing a file blocks until
// the user answers the dialog.
func (e *Entries) importFile() {
	defer e.invalidate()
	summary, err := e.ws.Weights.LoadFromFile(context.Background(), e.expl)
	switch {
	case errors.Is(err, explorer.ErrUserDecline), errors.Is(err, io.EOF):
		e.results <- ""
	case err != nil:
		e.results <- "Import failed: " + err.Error()
	default:
		e.results <- fmt.Sprintf("Imported %d weights and %d days of calories", summary.Weights, summary.CalorieDays)
	}
}

func (e *Entries) Layout(gtx C, th *material.Theme) D {
	e.Update(gtx, th)
	inset := layout.UniformInset(2)
	return layout.Flex{
		Axis: layout.Vertical,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return layout.Flex{
				Alignment: layout.Baseline,
			}.Layout(gtx,
				layout.Flexed(1, func(gtx C) D {
					return inset.Layout(gtx, func(gtx C) D {
						return e.dateField.Layout(gtx, th, dateHint)
					})
				}),
				layout.Flexed(1, func(gtx C) D {
					return inset.Layout(gtx, func(gtx C) D {
						return e.weightField.Layout(gtx, th, weightHint)
					})
				}),
			)
		}),
		layout.Rigid(func(gtx C) D {
			return layout.Flex{
				Alignment: layout.Middle,
			}.Layout(gtx,
				layout.Rigid(func(gtx C) D {
					return inset.Layout(gtx, material.Button(th, &e.saveBtn, "Save").Layout)
				}),
				layout.Rigid(func(gtx C) D {
					return inset.Layout(gtx, material.Button(th, &e.deleteBtn, "Delete").Layout)
				}),
				layout.Rigid(func(gtx C) D {
					if e.importing {
						gtx = gtx.Disabled()
					}
					return inset.Layout(gtx, material.Button(th, &e.importBtn, "Import FitNotes CSV").Layout)
				}),
				layout.Flexed(1, func(gtx C) D {
					return inset.Layout(gtx, material.Body2(th, e.status).Layout)
				}),
			)
		}),
		layout.Flexed(1, func(gtx C) D {
			return e.layoutTable(gtx, th)
		}),
	)
}

func (e *Entries) layoutTable(gtx C, th *material.Theme) D {
	if len(e.weights) == 0 {
		return layout.Center.Layout(gtx, material.Body1(th, "No weights recorded yet.").Layout)
	}
	longest := material.Body1(th, "0000-00-00")
	origConstraints := gtx.Constraints
	gtx.Constraints.Min = image.Point{}
	longestDims, _ := rec(gtx, func(gtx C) D {
		return layout.UniformInset(2).Layout(gtx, longest.Layout)
	})
	gtx.Constraints = origConstraints
	headings := []string{"Date", "Weight (kg)"}
	return component.Table(th, &e.table).Layout(gtx, len(e.weights), len(headings),
		func(axis layout.Axis, index, constraint int) int {
			if axis == layout.Vertical {
				return min(longestDims.Size.Y, constraint)
			}
			return constraint / len(headings)
		},
		func(gtx C, index int) D {
			return layout.Background{}.Layout(gtx,
				func(gtx C) D {
					paint.FillShape(gtx.Ops, th.ContrastBg, clip.Rect{Max: gtx.Constraints.Min}.Op())
					return D{Size: gtx.Constraints.Min}
				},
				func(gtx C) D {
					l := material.Body1(th, headings[index])
					l.Color = th.ContrastFg
					l.MaxLines = 1
					if index == 1 {
						l.Alignment = text.End
					}
					return l.Layout(gtx)
				},
			)
		},
		func(gtx C, row, col int) D {
			return e.rowBtns[row].Layout(gtx, func(gtx C) D {
				return layout.Background{}.Layout(gtx,
					func(gtx C) D {
						c := color.NRGBA{R: 100, G: 100, B: 100}
						if row&1 == 0 {
							c.A = 50
						}
						paint.FillShape(gtx.Ops, c, clip.Rect{Max: gtx.Constraints.Min}.Op())
						return D{Size: gtx.Constraints.Min}
					},
					func(gtx C) D {
						w := e.weights[row]
						if col == 0 {
							l := material.Body1(th, w.Day.Format(time.DateOnly))
							l.MaxLines = 1
							return l.Layout(gtx)
						}
						l := material.Body1(th, fmt.Sprintf("%0.1f", w.Weight))
						l.Alignment = text.End
						l.MaxLines = 1
						return l.Layout(gtx)
					},
				)
			})
		},
	)
}
