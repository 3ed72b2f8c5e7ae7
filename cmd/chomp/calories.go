package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func formatEntries(entries []int) string {
	s := make([]string, len(entries))
	for i, e := range entries {
		s[i] = strconv.Itoa(e)
	}
	return strings.Join(s, "+")
}

func (c *cli) caloriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calories",
		Short: "Track eaten calories against a daily target",
	}

	var date string
	dayFlag := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&date, "date", "today", "day to change")
	}

	add := &cobra.Command{
		Use:   "add CALORIES...",
		Short: "Record calories eaten",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			entries := make([]int, len(args))
			for i, arg := range args {
				if entries[i], err = parseCalories(arg); err != nil {
					return err
				}
			}
			return c.db.Calories.Add(cmd.Context(), day, entries...)
		},
	}
	dayFlag(add)

	fill := &cobra.Command{
		Use:   "fill TOTAL",
		Short: "Add whatever brings the day's calories up to TOTAL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			total, err := parseCalories(args[0])
			if err != nil {
				return err
			}
			return c.db.Calories.Fill(cmd.Context(), day, total)
		},
	}
	dayFlag(fill)

	undo := &cobra.Command{
		Use:   "undo",
		Short: "Remove the day's last calorie entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			return c.db.Calories.DeleteLast(cmd.Context(), day)
		},
	}
	dayFlag(undo)

	del := &cobra.Command{
		Use:     "delete DATE",
		Aliases: []string{"rm"},
		Short:   "Delete every calorie entry of a day",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			return c.db.Calories.Delete(cmd.Context(), day)
		},
	}

	var from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List daily calories, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := rangeFlags(from, to)
			if err != nil {
				return err
			}
			days, err := c.db.Calories.Between(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, d := range days {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", d.Day.Format(time.DateOnly), d.Sum(), formatEntries(d.Entries))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&from, "from", "", "first day to list")
	list.Flags().StringVar(&to, "to", "", "last day to list (default today)")

	stats := &cobra.Command{
		Use:   "stats [DATE]",
		Short: "Compare a day's calories with the daily target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := "today"
			if len(args) == 1 {
				arg = args[0]
			}
			day, err := parseDay(arg)
			if err != nil {
				return err
			}
			target, err := c.db.Settings.TargetCalories(cmd.Context())
			if err != nil {
				return err
			}
			s, err := c.db.Calories.Stats(cmd.Context(), day, target)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "entries: %s\n", formatEntries(s.Entries))
			fmt.Fprintf(out, "sum: %d\n", s.Sum())
			fmt.Fprintf(out, "left: %d (target: %d)\n", s.Left(), s.Target)
			return nil
		},
	}

	target := &cobra.Command{
		Use:   "target [CALORIES]",
		Short: "Print or change the daily calorie target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				target, err := c.db.Settings.TargetCalories(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), target)
				return nil
			}
			target, err := parseCalories(args[0])
			if err != nil {
				return err
			}
			return c.db.Settings.SetTargetCalories(cmd.Context(), target)
		},
	}

	cmd.AddCommand(add, fill, undo, del, list, stats, target)
	return cmd
}
