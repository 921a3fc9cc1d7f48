// Package server is the fixture feed service: a gin HTTP server exposing a
// feed.Service (normally the SQLite store) over the REST contract the api
// client speaks.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/moments/internal/api"
	"github.com/abelbrown/moments/internal/feed"
	"github.com/abelbrown/moments/internal/logging"
	"github.com/abelbrown/moments/internal/store"
)

const (
	defaultPageSize = 16
	maxPageSize     = 100
)

// Options configures a Server.
type Options struct {
	// Latency is added to every API request to exercise loading states.
	Latency time.Duration
}

// Server serves a feed.Service over HTTP.
type Server struct {
	svc    feed.Service
	opts   Options
	engine *gin.Engine
}

// New builds the router.
func New(svc feed.Service, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{svc: svc, opts: opts, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestLogger())

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.engine.Group("/api/v1", s.latency())
	v1.GET("/feed/:target", s.getFeed)
	v1.GET("/stories/:id/moments", s.getStoryMoments)
	v1.POST("/moments/:id/reactions", s.postReaction)
	v1.DELETE("/moments/:id", s.deleteMoment)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("server: listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.Info("server: shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) latency() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.opts.Latency > 0 {
			select {
			case <-time.After(s.opts.Latency):
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debug("server: request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start))
	}
}

func (s *Server) getFeed(c *gin.Context) {
	cursor, size, err := api.ParseCursorParams(c.Request.URL.Query(), defaultPageSize, maxPageSize)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_cursor", err)
		return
	}
	page, err := s.svc.FetchSlides(c.Request.Context(), c.Param("target"), cursor, size)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.NewFeedResponse(page))
}

func (s *Server) getStoryMoments(c *gin.Context) {
	cursor, size, err := api.ParseCursorParams(c.Request.URL.Query(), defaultPageSize, maxPageSize)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_cursor", err)
		return
	}
	page, err := s.svc.FetchStoryMoments(c.Request.Context(), c.Param("id"), cursor, size)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.NewMomentsResponse(page))
}

func (s *Server) postReaction(c *gin.Context) {
	var req api.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Emoji == "" {
		if err == nil {
			err = errors.New("emoji is required")
		}
		respondError(c, http.StatusBadRequest, "invalid_reaction", err)
		return
	}
	m, err := s.svc.React(c.Request.Context(), c.Param("id"), req.Emoji)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) deleteMoment(c *gin.Context) {
	if err := s.svc.DeleteMoment(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondServiceError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	respondError(c, http.StatusInternalServerError, "internal_error", err)
}

func respondError(c *gin.Context, status int, code string, err error) {
	if status >= http.StatusInternalServerError {
		logging.Error("server: request failed", "path", c.Request.URL.Path, "error", err)
	} else {
		logging.Warn("server: bad request", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, api.ErrorResponse{Code: code, Message: err.Error()})
}
