// Package functions serves generate_quiz and generate_lessons over HTTP so
// other clients can share one LLM configuration. The enrich package is its
// client.
package functions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/peerpath/peerpath/internal/logger"
)

type RouterConfig struct {
	Key    string
	Log    *logger.Logger
	Quiz   *QuizHandler
	Lesson *LessonsHandler
	Health *HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := orNop(cfg.Log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))

	if cfg.Health != nil {
		r.GET("/healthcheck", cfg.Health.HealthCheck)
	}

	fn := r.Group("/functions/v1")
	fn.Use(RequireKey(cfg.Key))
	{
		if cfg.Quiz != nil {
			fn.POST("/generate_quiz", cfg.Quiz.GenerateQuiz)
		}
		if cfg.Lesson != nil {
			fn.POST("/generate_lessons", cfg.Lesson.GenerateLessons)
		}
	}
	return r
}

type Server struct {
	Engine *gin.Engine
	Addr   string
	log    *logger.Logger
}

func NewServer(addr string, cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg), Addr: addr, log: orNop(cfg.Log)}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("functions server listening", "addr", s.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", s.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
