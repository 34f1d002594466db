package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/mux"
)

const SHUTDOWN_TIMEOUT = 5 * time.Second

type MealSnapHttpServer struct {
	router    *Router
	muxRouter *mux.Router
	addr      string
}

func NewMealSnapHttpServer(router *Router, muxRouter *mux.Router, addr string) *MealSnapHttpServer {
	return &MealSnapHttpServer{
		router:    router,
		muxRouter: muxRouter,
		addr:      addr,
	}
}

// Handler registers the routes and returns the root handler.
func (s *MealSnapHttpServer) Handler() http.Handler {
	s.router.RegisterRoutes()
	return s.muxRouter
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *MealSnapHttpServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("[Server] Starting server on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("[Server] Shutting down the server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("[Server] Server exiting")
	return nil
}
