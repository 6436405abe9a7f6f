package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/ajayramola/todo-app/internal/auth"
	"github.com/ajayramola/todo-app/internal/config"
	"github.com/ajayramola/todo-app/internal/database"
	"github.com/ajayramola/todo-app/internal/server"
	"github.com/ajayramola/todo-app/internal/stats"
	"github.com/gorilla/handlers"
)

type TodoApp struct {
	log            *log.Logger
	db             database.TodoAppRepository
	mux            *http.Server
	cs             *server.ChatServer
	stats          stats.StatsProvider
	tokens         *auth.TokenIssuer
	rateGate       *auth.RateGate
	secondFactor   *auth.SecondFactor
	allowedOrigins []string
}

func NewTodoApp(mux *http.ServeMux, logger *log.Logger, cs *server.ChatServer, db database.TodoAppRepository,
	su stats.StatsProvider, rateGate *auth.RateGate, secondFactor *auth.SecondFactor, cfg *config.Config) *TodoApp {
	s := &TodoApp{
		log:            logger,
		db:             db,
		cs:             cs,
		stats:          su,
		tokens:         auth.NewTokenIssuer(cfg.SigningKey),
		rateGate:       rateGate,
		secondFactor:   secondFactor,
		allowedOrigins: cfg.AllowedOrigins,
	}

	su.RegisterMetric(stats.LoginAttempts)
	su.RegisterMetric(stats.RateLimitRejections)
	su.RegisterMetric(stats.OtpCodesIssued)
	su.RegisterMetric(stats.OtpCodesVerified)

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/verify-otp", s.verifyOtp)
	mux.Handle("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/users", s.authMiddleware(s.listUsers))
	mux.Handle("POST /api/conversations/private", s.authMiddleware(s.createPrivateChat))
	mux.Handle("POST /api/conversations/group", s.authMiddleware(s.createGroup))
	mux.Handle("GET /api/conversations", s.authMiddleware(s.listConversations))
	mux.Handle("POST /api/messages", s.authMiddleware(s.sendMessage))
	mux.Handle("GET /api/messages", s.authMiddleware(s.getMessages))
	mux.Handle("GET /api/todos", s.authMiddleware(s.listTodos))
	mux.Handle("POST /api/todos", s.authMiddleware(s.createTodo))
	mux.Handle("PUT /api/todos/{id}", s.authMiddleware(s.updateTodo))
	mux.Handle("DELETE /api/todos/completed", s.authMiddleware(s.clearCompletedTodos))
	mux.Handle("DELETE /api/todos/{id}", s.authMiddleware(s.deleteTodo))
	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *TodoApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *TodoApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
