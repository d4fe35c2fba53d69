// Package server exposes the tool registry over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ryantking/repotools/internal/agent"
)

// Handler translates HTTP requests into tool invocations.
type Handler struct {
	registry *agent.ToolRegistry
	version  string
	log      *slog.Logger
}

// NewRouter builds a gin engine serving registry.
func NewRouter(registry *agent.ToolRegistry, version string, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	RegisterRoutes(r, registry, version, log)
	return r
}

// RegisterRoutes mounts the tool API onto the given gin engine.
func RegisterRoutes(r *gin.Engine, registry *agent.ToolRegistry, version string, log *slog.Logger) {
	h := &Handler{registry: registry, version: version, log: log}

	r.GET("/healthz", h.Health)
	r.GET("/openapi.json", h.OpenAPI)

	r.GET("/tools", h.ListTools)
	r.GET("/tools/:name", h.GetTool)
	r.POST("/tools/:name", h.Call)
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// OpenAPI handles GET /openapi.json: one POST operation per registered tool.
func (h *Handler) OpenAPI(c *gin.Context) {
	c.JSON(http.StatusOK, Document(h.registry, h.version))
}

// ListTools handles GET /tools.
func (h *Handler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Tools())
}

// GetTool handles GET /tools/:name.
func (h *Handler) GetTool(c *gin.Context) {
	tool, ok := h.registry.Tool(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("%v: %q", agent.ErrUnknownTool, c.Param("name"))})
		return
	}
	c.JSON(http.StatusOK, tool)
}

// Call handles POST /tools/:name. Tool failures are reported in the body's
// status field with HTTP 200; only an unknown tool is an HTTP error.
func (h *Handler) Call(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.registry.ExecuteTool(c.Request.Context(), c.Param("name"), body)
	if err != nil {
		if agent.IsUnknownTool(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("tool call failed", "tool", c.Param("name"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, out)
}

// requestLogger logs one line per request at debug, or at warn for 5xx.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelDebug
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Run serves handler on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting repotools server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("shutting down repotools server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
