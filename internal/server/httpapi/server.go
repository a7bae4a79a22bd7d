// Package httpapi exposes the session endpoints over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/users"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address string
	engine  *gin.Engine
	logger  logging.Logger
	users   *users.Service
	issuer  *auth.Issuer
}

func NewServer(address string, l logging.Logger, us *users.Service, issuer *auth.Issuer) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		address: address,
		engine:  gin.New(),
		logger:  l.With("module", "http_server"),
		users:   us,
		issuer:  issuer,
	}

	s.engine.Use(gin.Recovery())
	s.routes()

	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api")

	api.POST("/register", s.register)
	api.POST("/login", s.login)

	authorized := api.Group("")
	authorized.Use(s.authRequired())
	authorized.GET("/users", s.listUsers)
	authorized.POST("/reload_token", s.reloadToken)
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{Addr: s.address, Handler: s.engine}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
