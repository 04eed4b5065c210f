// Package server exposes the loading engine over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DrSkyle/cargoload/pkg/config"
	"github.com/DrSkyle/cargoload/pkg/engine"
	"github.com/DrSkyle/cargoload/pkg/engine/report"
	"github.com/DrSkyle/cargoload/pkg/engine/strategy"
	"github.com/DrSkyle/cargoload/pkg/engine/tetris"
	"github.com/DrSkyle/cargoload/pkg/manifest"
	"github.com/DrSkyle/cargoload/pkg/storage"
)

// Server serves loading jobs submitted as item sheets.
type Server struct {
	Engine *engine.Engine
	// Store keeps result workbooks. Nil disables persistence.
	Store  storage.BlobStore
	Prefix string
	Logger *slog.Logger
	Config config.ServerConfig

	router *gin.Engine
	now    func() time.Time
}

// New builds a server and its routes.
func New(e *engine.Engine, store storage.BlobStore, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = config.DefaultUploadSize
	}
	s := &Server{
		Engine: e,
		Store:  store,
		Prefix: cfg.ResultPrefix,
		Logger: logger,
		Config: cfg,
		now:    time.Now,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.GET("/healthz", s.handleHealth)
	r.GET("/strategies", s.handleStrategies)
	r.POST("/upload", s.handleUpload)
	r.GET("/files/*key", s.handleResult)
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("Server listening", "addr", s.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.Logger.Info("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Info("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, strategy.Names())
}

// uploadResponse is the body returned for a completed load.
type uploadResponse struct {
	Cylinders     []*tetris.Cylinder `json:"cylinders"`
	UnplacedCount int                `json:"unplacedCount"`
	PlacedCount   int                `json:"placedCount"`
	TotalCount    int                `json:"totalCount"`
	Strategy      string             `json:"strategy"`
	TotalValue    float64            `json:"totalValue"`
	FillRatio     float64            `json:"fillRatio"`
	ResultKey     string             `json:"resultKey,omitempty"`
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.Config.MaxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, fmt.Errorf("missing file: %w", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		badRequest(c, err)
		return
	}

	job, err := manifest.Parse(data, fh.Filename)
	if err != nil {
		badRequest(c, err)
		return
	}

	box, err := containerFromForm(c, job.Container)
	if err != nil {
		badRequest(c, err)
		return
	}

	key := c.DefaultPostForm("strategy", job.Strategy)
	if key == "" {
		key = string(strategy.Default)
	}

	res, err := s.Engine.Run(c.Request.Context(), job.Items, box, key)
	if err != nil && !errors.Is(err, engine.ErrPartialLoad) {
		if errors.Is(err, tetris.ErrInvalidItem) || errors.Is(err, tetris.ErrInvalidContainer) {
			badRequest(c, err)
			return
		}
		s.Logger.Error("Run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := uploadResponse{
		Cylinders:     res.Items,
		UnplacedCount: res.UnplacedCount,
		PlacedCount:   res.PlacedCount,
		TotalCount:    res.TotalCount,
		Strategy:      res.Strategy,
		TotalValue:    res.TotalValue,
		FillRatio:     res.FillRatio,
	}

	if s.Store != nil {
		resultKey, err := s.saveWorkbook(c.Request.Context(), res)
		if err != nil {
			s.Logger.Warn("Failed to store result workbook", "error", err)
		} else {
			resp.ResultKey = resultKey
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) saveWorkbook(ctx context.Context, res *engine.Result) (string, error) {
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, res); err != nil {
		return "", err
	}
	key := storage.JoinKey(s.Prefix, s.now().UTC().Format("20060102T150405.000000000Z"), report.Formats["xlsx"])
	if err := s.Store.Put(ctx, key, buf.Bytes()); err != nil {
		return "", err
	}
	return key, nil
}

func (s *Server) handleResult(c *gin.Context) {
	if s.Store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "result storage disabled"})
		return
	}
	key := storage.JoinKey(c.Param("key"))
	data, err := s.Store.Get(c.Request.Context(), key)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// containerFromForm reads length, width and height. Fields left empty fall
// back to the manifest's container when it has one.
func containerFromForm(c *gin.Context, fallback *tetris.Container) (tetris.Container, error) {
	var box tetris.Container
	if fallback != nil {
		box = *fallback
	}
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"length", &box.Length},
		{"width", &box.Width},
		{"height", &box.Height},
	} {
		raw, ok := c.GetPostForm(f.name)
		if !ok || raw == "" {
			if fallback == nil {
				return box, fmt.Errorf("missing %s", f.name)
			}
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return box, fmt.Errorf("invalid %s %q", f.name, raw)
		}
		*f.dst = v
	}
	return box, box.Validate()
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
