// Package ui exposes the analysis pipeline over HTTP. The API is a thin
// translation layer: requests are validated and handed to the app services,
// responses are their JSON-serialized results.
package ui

import (
	"embed"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"evosweep/app"
	"evosweep/domain/core"
	"evosweep/domain/pareto"
	domain "evosweep/domain/stats"
	"evosweep/internal"
	"evosweep/internal/config"
	"evosweep/internal/errors"
)

//go:embed docs/*.md
var methodDocs embed.FS

// Server hosts the HTTP API
type Server struct {
	router   *gin.Engine
	analysis *app.AnalysisService
	paretoes *app.ParetoService
	cfg      *config.Config
	logger   *internal.Logger
}

// NewServer creates the server and registers all routes
func NewServer(cfg *config.Config, analysis *app.AnalysisService, paretoSvc *app.ParetoService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	logger = logger.Named("http")
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:   gin.New(),
		analysis: analysis,
		paretoes: paretoSvc,
		cfg:      cfg,
		logger:   logger,
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	{
		api.POST("/analyze", s.handleAnalyze)
		api.POST("/batch", s.handleBatch)
		api.POST("/pareto", s.handlePareto)
		api.POST("/pareto/rank", s.handleParetoRank)
		api.GET("/methods", s.handleListMethods)
		api.GET("/methods/:name", s.handleMethodDoc)
	}
}

// Run starts the HTTP server on the configured port
func (s *Server) Run() error {
	addr := ":" + s.cfg.Server.Port
	s.logger.Info("listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// analyzeRequest is one factor analysis over named groups
type analyzeRequest struct {
	Factor string                 `json:"factor" binding:"required"`
	Groups []groupPayload         `json:"groups" binding:"required"`
	Method domain.NormalityMethod `json:"method"`
	Mode   app.GroupMode          `json:"group_mode"`
	Alpha  float64                `json:"alpha"`
}

type groupPayload struct {
	Name   string    `json:"name" binding:"required"`
	Values []float64 `json:"values" binding:"required"`
}

func (r *analyzeRequest) defaults(cfg *config.Config) {
	if r.Method == "" {
		r.Method = domain.MethodShapiroWilk
	}
	if r.Mode == "" {
		r.Mode = app.GroupModeConjunction
	}
	if r.Alpha == 0 {
		r.Alpha = cfg.Analysis.Alpha
	}
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.defaults(s.cfg)

	samples, err := toSamples(req.Groups)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	analysis, err := s.analysis.AnalyzeFactor(req.Factor, samples, req.Method, req.Mode, req.Alpha)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

type batchRequest struct {
	Units []struct {
		Factor string         `json:"factor" binding:"required"`
		Metric string         `json:"metric"`
		Groups []groupPayload `json:"groups" binding:"required"`
	} `json:"units" binding:"required"`
	Method      domain.NormalityMethod `json:"method"`
	Mode        app.GroupMode          `json:"group_mode"`
	Alpha       float64                `json:"alpha"`
	Parallelism int                    `json:"parallelism"`
}

func (s *Server) handleBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run := app.BatchRequest{
		Method:      req.Method,
		Mode:        req.Mode,
		Alpha:       req.Alpha,
		Parallelism: req.Parallelism,
	}
	if run.Method == "" {
		run.Method = domain.MethodShapiroWilk
	}
	if run.Mode == "" {
		run.Mode = app.GroupModeConjunction
	}
	if run.Alpha == 0 {
		run.Alpha = s.cfg.Analysis.Alpha
	}
	for _, u := range req.Units {
		samples, err := toSamples(u.Groups)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		run.Units = append(run.Units, app.AnalysisUnit{Factor: u.Factor, Metric: u.Metric, Samples: samples})
	}

	outcome, err := s.analysis.RunBatch(c.Request.Context(), run)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

type paretoRequest struct {
	Solutions []pareto.Solution `json:"solutions" binding:"required"`
	Ref       *pareto.Solution  `json:"reference,omitempty"`
}

func (s *Server) handlePareto(c *gin.Context) {
	var req paretoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	partition, err := s.paretoes.Partition(req.Solutions)
	if err != nil {
		s.respondError(c, err)
		return
	}
	resp := gin.H{"partition": partition}
	if req.Ref != nil {
		resp["hypervolume"] = pareto.Hypervolume(partition.NonDominated, *req.Ref)
	}
	c.JSON(http.StatusOK, resp)
}

type paretoRankRequest struct {
	Configs map[string][]pareto.Solution `json:"configs" binding:"required"`
	Ref     pareto.Solution              `json:"reference"`
}

func (s *Server) handleParetoRank(c *gin.Context) {
	var req paretoRankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rankings, fronts, err := s.paretoes.RankByHypervolume(req.Configs, req.Ref)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rankings": rankings, "fronts": fronts})
}

func (s *Server) handleListMethods(c *gin.Context) {
	entries, err := methodDocs.ReadDir("docs")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	c.JSON(http.StatusOK, gin.H{"methods": names})
}

// handleMethodDoc renders the markdown explanation of one method as HTML
func (s *Server) handleMethodDoc(c *gin.Context) {
	name := c.Param("name")
	if strings.ContainsAny(name, "./\\") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid method name"})
		return
	}
	src, err := methodDocs.ReadFile("docs/" + name + ".md")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown method: " + name})
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	c.Data(http.StatusOK, "text/html; charset=utf-8", markdown.ToHTML(src, p, renderer))
}

// respondError maps structured error codes onto HTTP status codes
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeValidationError, errors.CodeInvalidComparison:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}
	s.logger.Warn("request failed: %v", err)
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

func toSamples(groups []groupPayload) ([]domain.Sample, error) {
	samples := make([]domain.Sample, 0, len(groups))
	for _, g := range groups {
		name, err := core.ParseGroupName(g.Name)
		if err != nil {
			return nil, err
		}
		sample, err := domain.NewSample(name, g.Values)
		if err != nil {
			return nil, errors.Wrapf(err, "group %q", g.Name)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}
