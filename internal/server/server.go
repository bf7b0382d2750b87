// Package server exposes the registration report over HTTP, so CI gates and
// operators can query plugin status without re-running resolution.
package server

import (
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/symbiont/internal/engine"
	"github.com/kiosk404/symbiont/internal/pkg/options"
	"github.com/kiosk404/symbiont/pkg/logger"
)

// Server serves the report of one completed registration run. The engine is
// non-reentrant and the report immutable, so handlers only ever read.
type Server struct {
	opts   *options.ServeOptions
	report *engine.Report
	router *gin.Engine
}

// New builds a status server around the given report.
func New(opts *options.ServeOptions, report *engine.Report) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{opts: opts, report: report, router: router}
	s.installRoutes()
	return s
}

func (s *Server) installRoutes() {
	handler := newPluginHandler(s.report)

	v1 := s.router.Group("/v1")
	{
		v1.GET("/plugins", handler.List)
		v1.GET("/plugins/:name", handler.Get)
	}
	s.router.GET("/healthz", handler.Healthz)

	if s.opts.EnablePprof {
		pprof.Register(s.router)
	}
}

// Run blocks serving HTTP on the configured bind address.
func (s *Server) Run() error {
	logger.Info("[Server] status API listening on %s", s.opts.BindAddress)
	return s.router.Run(s.opts.BindAddress)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// pluginHandler answers status queries from the finished run's report.
type pluginHandler struct {
	report *engine.Report
}

func newPluginHandler(report *engine.Report) *pluginHandler {
	return &pluginHandler{report: report}
}

// List handles GET /v1/plugins.
func (h *pluginHandler) List(c *gin.Context) {
	data, err := h.report.JSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// Get handles GET /v1/plugins/:name.
func (h *pluginHandler) Get(c *gin.Context) {
	name := c.Param("name")
	row, ok := h.report.Lookup(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "plugin not found", "name": name})
		return
	}
	c.JSON(http.StatusOK, row)
}

// Healthz handles GET /healthz: 200 when every plugin registered, 503 when
// anything failed or was orphaned. CI gates key off the status code.
func (h *pluginHandler) Healthz(c *gin.Context) {
	status := http.StatusOK
	if !h.report.Ok() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"ok":      h.report.Ok(),
		"summary": h.report.Summary,
	})
}
