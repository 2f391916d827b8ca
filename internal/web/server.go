// Package web serves the browser UI: stacks, cards, the quiz modal, settings,
// history, and reminder polling.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/conorfennell/studymate/internal/app"
	"github.com/conorfennell/studymate/internal/domain"
	"github.com/conorfennell/studymate/internal/notify"
	"github.com/conorfennell/studymate/internal/quiz"
	"github.com/conorfennell/studymate/internal/study"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// Server holds the dependencies for the HTTP server. The study state is single-user
// and not goroutine-safe, so every handler runs under mu.
type Server struct {
	mu           sync.Mutex
	app          *app.App
	quiz         *quiz.Engine
	inbox        *notify.Inbox
	router       chi.Router
	templates    *template.Template
	logger       *zap.Logger
	pollInterval time.Duration
}

// pageData is what every template renders from.
type pageData struct {
	Title            string
	PollInterval     string
	Stacks           []domain.Stack
	Stack            *domain.Stack
	Quiz             quizView
	Interval         int
	Saved            bool
	Permission       domain.Permission
	PermissionPrompt bool
	Reminders        []notify.Reminder
	Stats            []study.CardStats
}

type quizView struct {
	Open     bool
	HasCard  bool
	Revealed bool
	Prompt   string
	Answer   string
}

// NewServer creates and configures a new server.
func NewServer(a *app.App, inbox *notify.Inbox, pollInterval time.Duration, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tpl, err := template.New("").Funcs(template.FuncMap{
		"percent": func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		app:          a,
		quiz:         a.NewQuiz(),
		inbox:        inbox,
		router:       chi.NewRouter(),
		templates:    tpl,
		logger:       logger,
		pollInterval: pollInterval,
	}
	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() error {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create sub-filesystem for static assets: %w", err)
	}

	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Get("/", s.handleGetStacks)
	r.Post("/stacks", s.handlePostStack)
	r.Route("/stacks/{stackID}", func(r chi.Router) {
		r.Get("/", s.handleGetStack)
		r.Delete("/", s.handleDeleteStack)
		r.Post("/active", s.handlePostActive)
		r.Post("/cards", s.handlePostCard)
		r.Delete("/cards/{cardID}", s.handleDeleteCard)
	})

	r.Post("/quiz", s.handleStartQuiz)
	r.Post("/quiz/reveal", s.handleRevealAnswer)
	r.Post("/quiz/answer", s.handlePostAnswer)
	r.Delete("/quiz", s.handleCloseQuiz)

	r.Get("/settings", s.handleGetSettings)
	r.Post("/settings", s.handlePostSettings)
	r.Post("/notifications/permission", s.handlePostPermission)
	r.Get("/reminders", s.handleGetReminders)

	r.Get("/history", s.handleGetHistory)
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) page(title string) pageData {
	return pageData{
		Title:        title,
		PollInterval: strconv.Itoa(int(s.pollInterval.Seconds())) + "s",
		Stacks:       s.app.Library.Stacks(),
		Interval:     s.app.Library.NotificationInterval(),
		Permission:   s.inbox.Permission(),
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("Failed to render template", zap.String("template", name), zap.Error(err))
	}
}

// fail maps library errors onto HTTP responses.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, study.ErrStackNotFound), errors.Is(err, study.ErrCardNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, study.ErrInvalidInterval), errors.Is(err, quiz.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error("Request failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleGetStacks renders the stack list page.
func (s *Server) handleGetStacks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.render(w, "stacks", s.page("Stacks"))
}

// handlePostStack adds a stack and re-renders the stack list. A blank name changes nothing.
func (s *Server) handlePostStack(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.app.Library.AddStack(r.Context(), r.PostFormValue("name")); err != nil {
		s.fail(w, err)
		return
	}
	s.render(w, "stack_list", s.page(""))
}

// handleGetStack renders one stack with its cards.
func (s *Server) handleGetStack(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stack, err := s.app.Library.Stack(chi.URLParam(r, "stackID"))
	if err != nil {
		s.fail(w, err)
		return
	}
	data := s.page(stack.Name)
	data.Stack = &stack
	s.render(w, "stack", data)
}

// handleDeleteStack deletes a stack and sends the browser back to the list.
func (s *Server) handleDeleteStack(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.app.Library.DeleteStack(r.Context(), chi.URLParam(r, "stackID")); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("HX-Redirect", "/")
	w.WriteHeader(http.StatusNoContent)
}

// handlePostActive sets a stack's active flag from the "active" checkbox.
func (s *Server) handlePostActive(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := r.PostFormValue("active") != ""
	if err := s.app.Library.SetStackActive(r.Context(), chi.URLParam(r, "stackID"), active); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePostCard adds a card and re-renders the card list.
func (s *Server) handlePostCard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stackID := chi.URLParam(r, "stackID")
	if _, err := s.app.Library.AddCard(r.Context(), stackID, r.PostFormValue("front"), r.PostFormValue("back")); err != nil {
		s.fail(w, err)
		return
	}
	s.renderCardList(w, stackID)
}

// handleDeleteCard deletes a card and re-renders the card list.
func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stackID := chi.URLParam(r, "stackID")
	if err := s.app.Library.DeleteCard(r.Context(), stackID, chi.URLParam(r, "cardID")); err != nil {
		s.fail(w, err)
		return
	}
	s.renderCardList(w, stackID)
}

func (s *Server) renderCardList(w http.ResponseWriter, stackID string) {
	stack, err := s.app.Library.Stack(stackID)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.render(w, "card_list", stack)
}

func (s *Server) quizView() quizView {
	_, hasCard := s.quiz.Current()
	return quizView{
		Open:     s.quiz.State() != quiz.Idle,
		HasCard:  hasCard,
		Revealed: s.quiz.State() == quiz.AnswerRevealed,
		Prompt:   s.quiz.Prompt(),
		Answer:   s.quiz.Answer(),
	}
}

// handleStartQuiz opens the quiz modal on a freshly drawn card.
func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quiz.Start()
	s.render(w, "quiz", s.quizView())
}

// handleRevealAnswer shows the back of the current card.
func (s *Server) handleRevealAnswer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.quiz.Reveal(); err != nil {
		s.fail(w, err)
		return
	}
	s.render(w, "quiz", s.quizView())
}

// handlePostAnswer records the outcome and shows the next card.
func (s *Server) handlePostAnswer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	correct, err := strconv.ParseBool(r.PostFormValue("correct"))
	if err != nil {
		http.Error(w, "Invalid outcome", http.StatusBadRequest)
		return
	}
	if _, err := s.quiz.Record(r.Context(), correct); err != nil {
		s.fail(w, err)
		return
	}
	s.render(w, "quiz", s.quizView())
}

// handleCloseQuiz hides the quiz modal.
func (s *Server) handleCloseQuiz(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quiz.Close()
	s.render(w, "quiz", s.quizView())
}

// handleGetSettings renders the settings page.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.render(w, "settings", s.page("Settings"))
}

// handlePostSettings saves the reminder interval. Non-numeric input reads as 0.
func (s *Server) handlePostSettings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	interval, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("interval")))
	if err != nil {
		interval = 0
	}
	if err := s.app.SaveSettings(r.Context(), interval); err != nil {
		s.fail(w, err)
		return
	}
	data := s.page("Settings")
	data.Saved = true
	s.render(w, "settings_form", data)
}

// handlePostPermission records the user's answer to the reminder prompt.
func (s *Server) handlePostPermission(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := domain.ParsePermission(r.PostFormValue("permission"))
	s.inbox.SetPermission(p)
	s.logger.Info("Reminder permission set", zap.String("permission", string(p)))
	s.render(w, "reminders", s.page(""))
}

// handleGetReminders is polled by the page; it drains pending reminders.
func (s *Server) handleGetReminders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.page("")
	data.PermissionPrompt = s.inbox.PermissionRequested()
	data.Reminders = s.inbox.Drain()
	s.render(w, "reminders", data)
}

// handleGetHistory renders per-card review statistics.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.page("History")
	data.Stats = s.app.Library.Stats()
	s.render(w, "history", data)
}
