package backend

import (
	"context"

	"gioui.org/app"
	"git.sr.ht/~gioverse/skel/stream"
	"git.sr.ht/~whereswaldon/chomp/store"
	"github.com/sirupsen/logrus"
)

type WindowState struct {
	Bundle
	Controller *stream.Controller
}

func NewWindowState(ctx context.Context, bundle Bundle, win *app.Window) WindowState {
	return WindowState{
		Bundle:     bundle,
		Controller: stream.NewController(ctx, win.Invalidate),
	}
}

// Bundle holds the application's data sources, shared by every window.
type Bundle struct {
	Weights *WeightSource
}

func NewBundle(appCtx context.Context, db *store.DB, historyDays int, log logrus.FieldLogger) (Bundle, error) {
	weights, err := NewWeightSource(appCtx, db, historyDays, log)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Weights: weights,
	}, nil
}
