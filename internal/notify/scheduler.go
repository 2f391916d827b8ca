// Package notify schedules recurring study reminders.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/conorfennell/studymate/internal/domain"
	"go.uber.org/zap"
)

// Notifier is the platform facility that displays reminders.
type Notifier interface {
	Permission() domain.Permission
	// RequestPermission asks the user for permission. It may block; the scheduler
	// never waits on it.
	RequestPermission(ctx context.Context)
	Show(ctx context.Context, title, body string) error
}

// Message is the text of a reminder.
type Message struct {
	Title string
	Body  string
}

// DefaultMessage is the reminder shown when none is configured.
var DefaultMessage = Message{Title: "StudyMate", Body: "Time to study!"}

// Scheduler owns a single recurring reminder task. Configure replaces the task
// wholesale; at most one task runs at a time.
type Scheduler struct {
	clock    Clock
	notifier Notifier
	message  Message
	logger   *zap.Logger

	mu       sync.Mutex
	interval int
	task     *task
}

type task struct {
	ticker Ticker
	stop   chan struct{}
	done   chan struct{}
}

// NewScheduler creates a scheduler with no armed task.
func NewScheduler(clock Clock, notifier Notifier, message Message, logger *zap.Logger) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if message.Title == "" {
		message.Title = DefaultMessage.Title
	}
	if message.Body == "" {
		message.Body = DefaultMessage.Body
	}
	return &Scheduler{clock: clock, notifier: notifier, message: message, logger: logger}
}

// Configure cancels any running task and, when minutes > 0, arms a new one firing
// every minutes. The previous task has fully stopped by the time Configure returns.
func (s *Scheduler) Configure(minutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.interval = 0
	if minutes <= 0 {
		s.logger.Info("Reminders disabled")
		return
	}

	if s.notifier.Permission() != domain.PermissionGranted {
		go s.notifier.RequestPermission(context.Background())
	}

	period := time.Duration(minutes) * time.Minute
	t := &task{
		ticker: s.clock.NewTicker(period),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.task = t
	s.interval = minutes
	go s.run(t)

	s.logger.Info("Reminders armed", zap.Int("interval_minutes", minutes))
}

// Interval returns the armed interval in minutes, 0 when disabled.
func (s *Scheduler) Interval() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Stop cancels the running task, if any.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.interval = 0
}

func (s *Scheduler) cancelLocked() {
	if s.task == nil {
		return
	}
	s.task.ticker.Stop()
	close(s.task.stop)
	<-s.task.done
	s.task = nil
}

func (s *Scheduler) run(t *task) {
	defer close(t.done)
	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C():
			s.fire()
		}
	}
}

// fire shows a reminder if permission is granted right now. Skipped reminders are
// not queued.
func (s *Scheduler) fire() {
	if s.notifier.Permission() != domain.PermissionGranted {
		s.logger.Debug("Reminder skipped, permission not granted")
		return
	}
	if err := s.notifier.Show(context.Background(), s.message.Title, s.message.Body); err != nil {
		s.logger.Warn("Failed to show reminder", zap.Error(err))
	}
}
