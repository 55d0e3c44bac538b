package web

import (
	"bytes"
	"errors"
	"html/template"
	"log"
	"mime"
	"net/http"
	"os"

	"github.com/KaramelBytes/sheetdash/internal/analysis"
	"github.com/KaramelBytes/sheetdash/internal/charts"
	"github.com/KaramelBytes/sheetdash/internal/dashboard"
	"github.com/KaramelBytes/sheetdash/internal/geo"
	"github.com/KaramelBytes/sheetdash/internal/table"
	"github.com/KaramelBytes/sheetdash/internal/workbook"
	"github.com/gin-gonic/gin"
)

type sheetLink struct {
	Name    string
	Query   template.URL
	Current bool
}

type page struct {
	Title     string
	Primary   string
	Secondary string
	Accent    string
	View      *dashboard.View
	Sheets    []sheetLink
	Query     template.URL
	Center    [2]float64
}

// render runs the pipeline for the state in the request URL.
func (s *Server) render(c *gin.Context) (*dashboard.View, bool) {
	state := dashboard.ParseState(c.Request.URL.Query())
	v, err := dashboard.Render(s.wb, state)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return v, true
}

func (s *Server) handleIndex(c *gin.Context) {
	v, ok := s.render(c)
	if !ok {
		return
	}
	p := page{
		Title:     s.opts.Title,
		Primary:   s.opts.ColorPrimary,
		Secondary: s.opts.ColorSecondary,
		Accent:    s.opts.ColorAccent,
		View:      v,
		Query:     template.URL(v.State.Query()),
	}
	for _, name := range v.Sheets {
		p.Sheets = append(p.Sheets, sheetLink{
			Name:    name,
			Query:   template.URL(v.State.WithSheet(name).Query()),
			Current: name == v.State.Sheet,
		})
	}
	if b, ok := geo.Extent(v.Points); ok {
		p.Center[0], p.Center[1] = b.Center()
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard.html", p); err != nil {
		log.Printf("[web] template error: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "template rendering failed"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleView(c *gin.Context) {
	v, ok := s.render(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) handleGeo(c *gin.Context) {
	v, ok := s.render(c)
	if !ok {
		return
	}
	if !v.Geo {
		c.JSON(http.StatusNotFound, gin.H{"error": "sheet has no Latitud/Longitud columns"})
		return
	}
	b, err := geo.FeatureCollection(v.Points)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", b)
}

func (s *Server) handleChart(c *gin.Context) {
	v, ok := s.render(c)
	if !ok {
		return
	}
	opt := charts.Options{
		Format: s.opts.ChartFormat,
		Width:  s.opts.ChartWidth,
		Height: s.opts.ChartHeight,
		Color:  s.secondary,
	}
	if f := c.Query("format"); f != "" {
		opt.Format = f
	}

	var (
		img []byte
		err error
	)
	switch kind := c.Param("kind"); kind {
	case "categorical":
		if !v.HasCategorical() {
			c.JSON(http.StatusNotFound, gin.H{"error": "no categorical columns"})
			return
		}
		img, err = charts.Histogram(v.Frequencies, v.State.Categorical, opt)
	case "numeric":
		if !v.HasNumeric() {
			c.JSON(http.StatusNotFound, gin.H{"error": "no numeric columns"})
			return
		}
		var nums []float64
		if nums, err = analysis.Numbers(v.Table, v.State.Numeric); err == nil {
			opt.Color = s.accent
			img, err = charts.BoxPlot(nums, v.State.Numeric, opt)
		}
	case "map":
		if !v.Geo {
			c.JSON(http.StatusNotFound, gin.H{"error": "sheet has no Latitud/Longitud columns"})
			return
		}
		img, err = charts.Scatter(v.Points, opt)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown chart: " + kind})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, charts.ContentType(opt.Format), img)
}

func (s *Server) handleExport(c *gin.Context) {
	v, ok := s.render(c)
	if !ok {
		return
	}
	art, err := v.Export()
	if err != nil {
		s.fail(c, err)
		return
	}
	log.Printf("[web] export %s: %d rows (request %s)", art.Filename, v.Summary.RowCount, c.GetString("request_id"))
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Filename}))
	c.Data(http.StatusOK, art.ContentType, art.Data)
}

func (s *Server) handleLogo(c *gin.Context) {
	if s.opts.LogoPath == "" {
		c.Status(http.StatusNotFound)
		return
	}
	if _, err := os.Stat(s.opts.LogoPath); err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(s.opts.LogoPath)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sheets": len(s.wb.SheetNames())})
}

// fail maps pipeline errors to a status and a JSON body.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError || s.opts.Debug {
		log.Printf("[web] %s %s: %v (request %s)", c.Request.Method, c.Request.URL.Path, err, c.GetString("request_id"))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "request_id": c.GetString("request_id")})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, workbook.ErrSheetNotFound), errors.Is(err, dashboard.ErrNoSheets):
		return http.StatusNotFound
	case errors.Is(err, table.ErrUnknownColumn), errors.Is(err, charts.ErrFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
