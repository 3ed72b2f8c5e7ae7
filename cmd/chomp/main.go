// Command chomp records and reports body weight and calories from the
// terminal, sharing the desktop application's database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"git.sr.ht/~whereswaldon/chomp/config"
	"git.sr.ht/~whereswaldon/chomp/logger"
	"git.sr.ht/~whereswaldon/chomp/store"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg config.Config
	log *logrus.Logger
	db  *store.DB
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed loading .env: %v\n", err)
		os.Exit(1)
	}
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:          "chomp",
		Short:        "Track body weight",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd.Context(), stderr)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&c.dbPath, "db", "", "weight database (overrides the configuration)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (overrides the configuration)")

	rootCmd.AddCommand(
		c.weightCmd(),
		c.caloriesCmd(),
		c.importCmd(),
		c.statsCmd(),
		c.exportCmd(),
	)
	return rootCmd
}

func (c *cli) open(ctx context.Context, stderr io.Writer) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.dbPath != "" {
		cfg.Database.Path = c.dbPath
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	c.cfg = cfg
	c.log, err = logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Output:     stderr,
	})
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c.db, err = store.Open(ctx, cfg.Database.Path, c.log)
	return err
}

func (c *cli) close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
