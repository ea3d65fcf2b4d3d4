package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhabedank/strategem/internal/config"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(h *Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = MaxUploadBytes

	r.Use(Recovery(logger))
	r.Use(RequestID())
	r.Use(Logger(logger))

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/frameworks", h.Frameworks)

	analyses := api.Group("/analyses")
	analyses.POST("", h.Analyze)
	analyses.POST("/file", h.AnalyzeFile)
	analyses.GET("", h.List)
	analyses.GET("/:id", h.Get)
	analyses.GET("/:id/report", h.Report)

	return r
}

// Serve runs the API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, cfg config.ServerConfig, engine *gin.Engine, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
