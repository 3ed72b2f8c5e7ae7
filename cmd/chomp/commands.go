package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"git.sr.ht/~whereswaldon/chomp/chart"
	"git.sr.ht/~whereswaldon/chomp/export"
	"git.sr.ht/~whereswaldon/chomp/fitnotes"
	"git.sr.ht/~whereswaldon/chomp/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// now is replaced in tests.
var now = time.Now

func parseDay(arg string) (time.Time, error) {
	switch strings.ToLower(arg) {
	case "today":
		return chart.Day(now()), nil
	case "yesterday":
		return chart.Day(now()).AddDate(0, 0, -1), nil
	}
	day, err := time.Parse(time.DateOnly, arg)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD, today or yesterday", arg)
	}
	return day, nil
}

func parseWeight(day, value string) (store.Weight, error) {
	d, err := parseDay(day)
	if err != nil {
		return store.Weight{}, err
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return store.Weight{}, fmt.Errorf("invalid weight %q", value)
	}
	if err := store.ValidateWeight(v); err != nil {
		return store.Weight{}, err
	}
	return store.Weight{Day: d, Weight: float32(v)}, nil
}

func parseCalories(value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid calories %q", value)
	}
	return v, store.ValidateCalories(v)
}

// rangeFlags parses optional --from and --to days. The range is open at the
// start and ends today by default.
func rangeFlags(from, to string) (start, end time.Time, err error) {
	end = chart.Day(now())
	if from != "" {
		if start, err = parseDay(from); err != nil {
			return start, end, err
		}
	}
	if to != "" {
		end, err = parseDay(to)
	}
	return start, end, err
}

func (c *cli) weightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weight",
		Short: "Manage recorded weights",
	}

	add := &cobra.Command{
		Use:   "add DATE WEIGHT",
		Short: "Record a new weight, failing if the day already has one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parseWeight(args[0], args[1])
			if err != nil {
				return err
			}
			if err := c.db.Weights.Create(cmd.Context(), w); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					return fmt.Errorf("%w, use \"weight set\" to replace it", err)
				}
				return err
			}
			c.log.WithField("day", args[0]).Debug("weight added")
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set DATE WEIGHT",
		Short: "Record a weight, replacing any existing one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parseWeight(args[0], args[1])
			if err != nil {
				return err
			}
			return c.db.Weights.Upsert(cmd.Context(), w)
		},
	}

	update := &cobra.Command{
		Use:   "update DATE WEIGHT",
		Short: "Change a recorded weight, failing if the day has none",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parseWeight(args[0], args[1])
			if err != nil {
				return err
			}
			return c.db.Weights.Update(cmd.Context(), w)
		},
	}

	get := &cobra.Command{
		Use:   "get DATE",
		Short: "Print the weight of a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			w, err := c.db.Weights.Read(cmd.Context(), day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.1f\n", w.Weight)
			return nil
		},
	}

	del := &cobra.Command{
		Use:     "delete DATE",
		Aliases: []string{"rm"},
		Short:   "Delete the weight of a day",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			return c.db.Weights.Delete(cmd.Context(), day)
		},
	}

	var from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List weights, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				weights []store.Weight
				err     error
			)
			if from == "" && to == "" {
				weights, err = c.db.Weights.List(cmd.Context())
			} else {
				start, end, rangeErr := rangeFlags(from, to)
				if rangeErr != nil {
					return rangeErr
				}
				weights, err = c.db.Weights.ListBetween(cmd.Context(), start, end)
			}
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, w := range weights {
				fmt.Fprintf(tw, "%s\t%.1f\n", w.Day.Format(time.DateOnly), w.Weight)
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&from, "from", "", "first day to list")
	list.Flags().StringVar(&to, "to", "", "last day to list (default today)")

	cmd.AddCommand(add, set, update, get, del, list)
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import body weights and calories from a FitNotes CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			summary, err := fitnotes.Import(cmd.Context(), c.db, f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			c.log.WithFields(logrus.Fields{
				"weights":      summary.Weights,
				"calorie_days": summary.CalorieDays,
			}).Info("imported FitNotes export")
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the latest weight and the weekly change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := chart.Day(now())
			out := cmd.OutOrStdout()
			latest, err := c.db.Weights.ListBetween(cmd.Context(), time.Time{}, today)
			if err != nil {
				return err
			}
			if len(latest) == 0 {
				fmt.Fprintln(out, "no weight recorded")
				return nil
			}
			fmt.Fprintf(out, "latest: %.1f on %s\n", latest[0].Weight, latest[0].Day.Format(time.DateOnly))
			change, err := c.db.Weights.WeeklyChange(cmd.Context(), today)
			switch {
			case errors.Is(err, store.ErrNotFound):
				fmt.Fprintln(out, "weekly change: not enough data")
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "weekly change: %+.2f\n", change)
			}
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		format        string
		outPath       string
		width, height int
		days          int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the weight chart to an image file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "png" && format != "svg" {
				return fmt.Errorf("unknown format %q, expected png or svg", format)
			}
			if width <= 0 || height <= 0 {
				return fmt.Errorf("invalid size %dx%d", width, height)
			}
			if days <= 0 {
				days = c.cfg.Chart.HistoryDays
			}
			end := chart.Day(now())
			weights, err := c.db.Weights.ListBetween(cmd.Context(), end.AddDate(0, 0, 1-days), end)
			if err != nil {
				return err
			}
			series := store.SeriesOf(weights)
			if format == "svg" && series.Len() < export.MinSVGPoints {
				return fmt.Errorf("svg export needs at least %d weights in the last %d days, got %d", export.MinSVGPoints, days, series.Len())
			}
			size := image.Pt(width, height)
			fg := color.NRGBA{A: 0xff}

			err = writeFile(outPath, func(w io.Writer) error {
				if format == "svg" {
					return export.SVG(w, series, size, fg)
				}
				r := chart.Renderer{
					Options: chart.Options{
						GridX:    c.cfg.Chart.GridX,
						GridY:    c.cfg.Chart.GridY,
						LabelsX:  c.cfg.Chart.LabelsX,
						LabelsY:  c.cfg.Chart.LabelsY,
						FontSize: c.cfg.Chart.FontSize,
					},
					Log: c.log,
				}
				prims := r.Render(series, chart.AreaFor(size, chart.DefaultMargin), fg)
				return export.PNG(w, prims, size, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
			})
			if err != nil {
				return err
			}
			c.log.WithField("path", outPath).Info("chart exported")
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "png", "image format: png or svg")
	cmd.Flags().StringVarP(&outPath, "out", "o", "weight.png", "output file")
	cmd.Flags().IntVar(&width, "width", 800, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 400, "image height in pixels")
	cmd.Flags().IntVar(&days, "days", 0, "days of history to include (default from configuration)")
	return cmd
}

// writeFile writes to a temporary file next to path and renames it into
// place once write succeeds, so a failed export never touches an existing
// file.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	err = write(f)
	if err == nil {
		err = f.Chmod(0o644)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(f.Name(), path)
	}
	if err != nil {
		return errors.Join(err, os.Remove(f.Name()))
	}
	return nil
}
