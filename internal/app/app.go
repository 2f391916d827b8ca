// Package app ties the study library to the reminder scheduler.
package app

import (
	"context"
	"fmt"

	"github.com/conorfennell/studymate/internal/quiz"
	"github.com/conorfennell/studymate/internal/study"
	"go.uber.org/zap"
)

// Scheduler is the part of notify.Scheduler the app drives.
type Scheduler interface {
	Configure(minutes int)
	Stop()
}

// App holds the state of one running instance.
type App struct {
	Library   *study.Library
	scheduler Scheduler
	logger    *zap.Logger
	quizOpts  []quiz.Option
}

// New creates an App. The scheduler is not armed until Start.
func New(lib *study.Library, scheduler Scheduler, logger *zap.Logger, quizOpts ...quiz.Option) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{Library: lib, scheduler: scheduler, logger: logger, quizOpts: quizOpts}
}

// Start arms the reminder scheduler from the persisted interval.
func (a *App) Start() {
	a.scheduler.Configure(a.Library.NotificationInterval())
}

// SaveSettings persists the reminder interval and re-arms the scheduler.
func (a *App) SaveSettings(ctx context.Context, intervalMinutes int) error {
	if err := a.Library.SetNotificationInterval(ctx, intervalMinutes); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	a.scheduler.Configure(intervalMinutes)
	a.logger.Info("Settings saved", zap.Int("notification_interval", intervalMinutes))
	return nil
}

// NewQuiz returns an idle quiz over the library's active pool.
func (a *App) NewQuiz() *quiz.Engine {
	return quiz.New(a.Library, a.Library, a.quizOpts...)
}

// Close stops the scheduler.
func (a *App) Close() {
	a.scheduler.Stop()
}
