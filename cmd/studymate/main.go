// Command studymate is a single-user flashcard trainer with a terminal, a web
// and a reminder front end over one local store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/conorfennell/studymate/internal/app"
	"github.com/conorfennell/studymate/internal/config"
	"github.com/conorfennell/studymate/internal/domain"
	"github.com/conorfennell/studymate/internal/notify"
	"github.com/conorfennell/studymate/internal/storage"
	"github.com/conorfennell/studymate/internal/study"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cli is the state shared by every command of one invocation.
type cli struct {
	cfgFile string
	verbose bool
	cfg     config.Config
	logger  *zap.Logger
}

// session is an opened store with the library and app loaded from it.
type session struct {
	db     *storage.DB
	app    *app.App
	logger *zap.Logger
}

func (s *session) lib() *study.Library { return s.app.Library }

func (s *session) Close() {
	s.app.Close()
	if err := s.db.Close(); err != nil {
		s.logger.Warn("Failed to close database", zap.Error(err))
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "studymate",
		Short: "StudyMate - flashcards with a quiz and study reminders",
		Long: `StudyMate keeps stacks of two-sided flashcards in a local store.

Stacks marked active feed the quiz. Reminders fire on a fixed interval
while the remind or serve command is running.

Stacks can be named by id, by their 1-based position in "stack list",
or by name.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if c.verbose {
				cfg.Log.Level = "debug"
			}
			logger, err := newLogger(cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.cfg = cfg
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "Path to a YAML config file")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	pf.String("db", "", "Path to the SQLite database (default ~/.studymate/studymate.db)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-format", "", "Log format: console or json")

	root.AddCommand(
		c.stackCmd(),
		c.cardCmd(),
		c.importCmd(),
		c.quizCmd(),
		c.historyCmd(),
		c.settingsCmd(),
		c.remindCmd(),
		c.serveCmd(),
	)
	return root
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// open loads the store. Reminders go to notifier; one-shot commands pass a
// console notifier that never fires because their scheduler is never started.
func (c *cli) open(ctx context.Context, notifier notify.Notifier) (*session, error) {
	db, err := storage.Open(ctx, storage.Config{Path: c.cfg.Data.Path, BusyTimeout: c.cfg.Data.BusyTimeout})
	if err != nil {
		return nil, err
	}
	lib, err := study.Load(ctx, db, study.WithLogger(c.logger))
	if err != nil {
		db.Close()
		return nil, err
	}
	if notifier == nil {
		notifier = notify.NewConsole(os.Stdout, domain.PermissionDenied)
	}
	msg := notify.Message{Title: c.cfg.Notifications.Title, Body: c.cfg.Notifications.Body}
	sched := notify.NewScheduler(notify.RealClock{}, notifier, msg, c.logger)
	c.logger.Debug("Store opened", zap.String("path", c.cfg.Data.Path))
	return &session{db: db, app: app.New(lib, sched, c.logger), logger: c.logger}, nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
