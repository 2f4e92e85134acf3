package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/config"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/database"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/server"
	"github.com/teris-io/shortid"
)

type FocusApp struct {
	log            *log.Logger
	db             database.FocusRepository
	mux            *http.Server
	ls             *server.LiveServer
	signingKey     []byte
	allowedOrigins []string
	// swapped out in tests
	generateShortId func() (string, error)
}

func NewFocusApp(mux *http.ServeMux, logger *log.Logger, ls *server.LiveServer, db database.FocusRepository, cfg *config.Config) *FocusApp {
	s := &FocusApp{
		log:             logger,
		db:              db,
		ls:              ls,
		signingKey:      cfg.SigningKey,
		allowedOrigins:  cfg.AllowedOrigins,
		generateShortId: shortid.Generate,
	}

	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.Handle("/api/account", s.authMiddleware(s.account))
	mux.Handle("POST /api/friends", s.authMiddleware(s.addFriend))
	mux.Handle("GET /api/friends", s.authMiddleware(s.listFriends))
	mux.Handle("GET /api/messages", s.authMiddleware(s.getConversation))
	mux.Handle("GET /api/notifications", s.authMiddleware(s.listNotifications))
	mux.Handle("POST /api/notifications/read", s.authMiddleware(s.markNotificationsRead))
	mux.Handle("POST /api/sessions", s.authMiddleware(s.createFocusSession))
	mux.Handle("GET /api/sessions", s.authMiddleware(s.listFocusSessions))
	mux.Handle("POST /api/habits", s.authMiddleware(s.createHabit))
	mux.Handle("GET /api/habits", s.authMiddleware(s.listHabits))
	mux.Handle("POST /api/habits/complete", s.authMiddleware(s.completeHabit))
	mux.Handle("POST /api/rooms", s.authMiddleware(s.createRoom))
	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
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

func (s *FocusApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *FocusApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *FocusApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
