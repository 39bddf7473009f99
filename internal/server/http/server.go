package internalhttp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/evanpr/kalender/internal/app"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Host string
	Port int
}

type Server struct {
	srv  *http.Server
	app  *app.App
	addr string
}

func NewServer(config Config, a *app.App) *Server {
	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	return &Server{
		addr: addr,
		app:  a,
		srv:  &http.Server{Addr: addr},
	}
}

// Handler builds the API routes wrapped in the logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /events", s.createEvent)
	mux.HandleFunc("GET /events", s.listEvents)
	mux.HandleFunc("PUT /events/{id}", s.updateEvent)
	mux.HandleFunc("DELETE /events/{id}", s.removeEvent)
	mux.HandleFunc("POST /events/{id}/share", s.shareEvent)
	mux.HandleFunc("GET /events/day", s.eventsForDay)
	mux.HandleFunc("GET /events/week", s.eventsForWeek)
	mux.HandleFunc("GET /events/month", s.eventsForMonth)
	mux.HandleFunc("PUT /year", s.setYear)
	mux.HandleFunc("GET /export", s.export)
	return loggingMiddleware(mux)
}

func (s *Server) Start(_ context.Context) error {
	s.srv.Handler = s.Handler()

	log.Printf("starting http server on %s", s.addr)
	err := s.srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func getIP(req *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return "", fmt.Errorf("userip: %q is not IP:port", req.RemoteAddr)
	}

	if parsed := net.ParseIP(ip); parsed == nil {
		return "", fmt.Errorf("userip: %q is not IP:port", req.RemoteAddr)
	}
	return ip, nil
}
