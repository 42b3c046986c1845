package http

import (
	"context"
	"net/http"
)

type Server struct {
	srv *http.Server
}

// New wraps the API router in an http.Server with graceful shutdown.
func New(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{Addr: addr, Handler: handler}}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
