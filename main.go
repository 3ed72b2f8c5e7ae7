package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/x/explorer"
	"git.sr.ht/~whereswaldon/chomp/backend"
	"git.sr.ht/~whereswaldon/chomp/config"
	"git.sr.ht/~whereswaldon/chomp/logger"
	"git.sr.ht/~whereswaldon/chomp/store"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		configPath string
		dbPath     string
	)
	flag.StringVar(&configPath, "config", "", "path to a YAML configuration file")
	flag.StringVar(&dbPath, "db", "", "path to the weight database (overrides the configuration)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed loading .env: %v", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	logs, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		log.Fatal(err)
	}

	appCtx, cancel := context.WithCancel(context.Background())
	db, err := store.Open(appCtx, cfg.Database.Path, logs)
	if err != nil {
		logs.WithError(err).Fatal("failed opening database")
	}
	bundle, err := backend.NewBundle(appCtx, db, cfg.Chart.HistoryDays, logs)
	if err != nil {
		logs.WithError(err).Fatal("failed watching database")
	}

	go func() {
		w := app.NewWindow(app.Title("Chomp"), app.Size(unit.Dp(960), unit.Dp(640)))
		err := loop(appCtx, w, bundle, cfg.Chart, logs)
		cancel()
		err = errors.Join(err, db.Close())
		if err != nil {
			logs.WithError(err).Fatal("exiting")
		}
		os.Exit(0)
	}()
	app.Main()
}

func loop(ctx context.Context, w *app.Window, bundle backend.Bundle, cfg config.Chart, log logrus.FieldLogger) error {
	expl := explorer.NewExplorer(w)
	ws := backend.NewWindowState(ctx, bundle, w)
	ui := NewUI(ws, expl, w.Invalidate, cfg, log)
	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
			ws.Controller.Sweep()
		}
	}
}
