// Package web serves the dashboard over HTTP.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"image/color"
	"log"
	"net/http"
	"time"

	"github.com/KaramelBytes/sheetdash/internal/charts"
	"github.com/KaramelBytes/sheetdash/internal/dashboard"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//go:embed templates/*.html
var templateFiles embed.FS

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-ID"

// Options configures the presentation.
type Options struct {
	Title          string
	LogoPath       string
	ColorPrimary   string
	ColorSecondary string
	ColorAccent    string
	ChartFormat    string
	ChartWidth     int
	ChartHeight    int
	Debug          bool
}

// Server renders dashboard views for a single open workbook.
type Server struct {
	router    *gin.Engine
	wb        dashboard.Workbook
	opts      Options
	templates *template.Template

	secondary color.RGBA
	accent    color.RGBA
}

// NewServer builds the router. The workbook stays owned by the caller.
func NewServer(wb dashboard.Workbook, opts Options) (*Server, error) {
	secondary, err := charts.ParseHex(opts.ColorSecondary)
	if err != nil {
		return nil, fmt.Errorf("secondary colour: %w", err)
	}
	accent, err := charts.ParseHex(opts.ColorAccent)
	if err != nil {
		return nil, fmt.Errorf("accent colour: %w", err)
	}
	if _, err := charts.ParseHex(opts.ColorPrimary); err != nil {
		return nil, fmt.Errorf("primary colour: %w", err)
	}
	tmpl, err := template.New("").ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s := &Server{
		router:    gin.New(),
		wb:        wb,
		opts:      opts,
		templates: tmpl,
		secondary: secondary,
		accent:    accent,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(requestID(), gin.Logger(), gin.Recovery())

	s.router.GET("/", s.handleIndex)
	s.router.GET("/api/view", s.handleView)
	s.router.GET("/api/geo", s.handleGeo)
	s.router.GET("/charts/:kind", s.handleChart)
	s.router.GET("/export", s.handleExport)
	s.router.GET("/logo", s.handleLogo)
	s.router.GET("/healthz", s.handleHealth)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[web] listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("[web] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestID tags each request with a uuid, reusing one sent by the client.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
