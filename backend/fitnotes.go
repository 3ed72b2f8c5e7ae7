package backend

import (
	"context"
	"io"

	"gioui.org/x/explorer"
	"git.sr.ht/~whereswaldon/chomp/fitnotes"
	"github.com/sirupsen/logrus"
)

// Import saves the FitNotes export r and refreshes every stream.
func (ws *WeightSource) Import(ctx context.Context, r io.Reader) (fitnotes.Summary, error) {
	summary, err := fitnotes.Import(ctx, ws.db, r)
	if err != nil {
		return summary, err
	}
	ws.log.WithFields(logrus.Fields{
		"weights":      summary.Weights,
		"calorie_days": summary.CalorieDays,
	}).Info("imported FitNotes export")
	ws.notify()
	return summary, nil
}

// LoadFromFile asks the user for a FitNotes export and imports it.
func (ws *WeightSource) LoadFromFile(ctx context.Context, expl *explorer.Explorer) (fitnotes.Summary, error) {
	file, err := expl.ChooseFile("csv")
	if err != nil {
		return fitnotes.Summary{}, err
	}
	defer file.Close()
	summary, err := ws.Import(ctx, file)
	if err != nil {
		ws.log.WithError(err).Warn("import failed")
	}
	return summary, err
}
