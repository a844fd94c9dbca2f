// Package web exposes the bot over HTTP so a chat gateway (or curl) can
// feed it messages, reactions and commands.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/lifeos/internal/bot"
	"github.com/julianstephens/lifeos/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Server is the lifeos HTTP API.
type Server struct {
	bot    *bot.Bot
	router *gin.Engine
}

// NewServer creates a server routing to b.
func NewServer(b *bot.Bot) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		bot:    b,
		router: router,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/messages", s.handleMessage)
		api.POST("/reactions", s.handleReaction)
		api.POST("/commands/:name", s.handleCommand)
		api.GET("/todos", s.handleTodos)
		api.GET("/habits/today", s.handleHabitsToday)
		api.GET("/habits/:name/streak", s.handleStreak)
		api.GET("/events", s.handleEvents)
		api.GET("/projects/:id/tickets", s.handleTickets)
	}

	return s
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs each request through the application logger instead of
// gin's stdout writer.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
