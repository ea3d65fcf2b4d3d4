// Package web serves the analysis HTTP API.
package web

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dhabedank/strategem/internal/core"
	"github.com/dhabedank/strategem/internal/ingest"
	"github.com/dhabedank/strategem/internal/store"
	"github.com/dhabedank/strategem/internal/version"
)

// MaxUploadBytes bounds uploaded context files.
const MaxUploadBytes = 10 << 20

// AnalysisService is what the handlers need from the service layer.
type AnalysisService interface {
	Analyze(ctx context.Context, pc *ingest.ProblemContext, frameworks []string, observer core.Observer) (*store.Analysis, error)
	Get(ctx context.Context, id string) (*store.Analysis, error)
	List(ctx context.Context) ([]store.Summary, error)
	Frameworks() []core.FrameworkSpec
}

// Handler handles the analysis endpoints.
type Handler struct {
	svc    AnalysisService
	logger *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc AnalysisService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// AnalyzeRequest is the body of POST /api/analyses.
type AnalyzeRequest struct {
	Text             string   `json:"text" binding:"required"`
	Title            string   `json:"title"`
	ProblemStatement string   `json:"problem_statement"`
	Objectives       []string `json:"objectives"`
	Constraints      []string `json:"constraints"`
	Assumptions      []string `json:"assumptions"`
	Frameworks       []string `json:"frameworks"`

	// Decision focus; question and options go together.
	DecisionQuestion string   `json:"decision_question"`
	DecisionType     string   `json:"decision_type"`
	Options          []string `json:"options"`
}

func (r AnalyzeRequest) options() (ingest.Options, error) {
	focus, err := requestFocus(r.DecisionQuestion, r.DecisionType, r.Options)
	if err != nil {
		return ingest.Options{}, err
	}
	return ingest.Options{
		Title:               r.Title,
		ProblemStatement:    r.ProblemStatement,
		Objectives:          r.Objectives,
		Constraints:         r.Constraints,
		DeclaredAssumptions: r.Assumptions,
		DecisionFocus:       focus,
	}, nil
}

// requestFocus returns nil when no focus field is set. Unlike the CLI, a
// partial focus is rejected.
func requestFocus(question, decisionType string, options []string) (*ingest.DecisionFocus, error) {
	if strings.TrimSpace(question) == "" && strings.TrimSpace(decisionType) == "" && len(options) == 0 {
		return nil, nil
	}
	return ingest.NewDecisionFocus(question, decisionType, options)
}

// Analyze handles POST /api/analyses
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	opts, err := req.options()
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	pc, err := ingest.FromText(req.Text, opts)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	h.run(c, pc, req.Frameworks)
}

// AnalyzeFile handles POST /api/analyses/file (multipart field "file").
func (h *Handler) AnalyzeFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > MaxUploadBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	focus, err := requestFocus(c.PostForm("decision_question"), c.PostForm("decision_type"), c.PostFormArray("options"))
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	opts := ingest.Options{
		Title:            c.PostForm("title"),
		ProblemStatement: c.PostForm("problem_statement"),
		DecisionFocus:    focus,
	}
	if opts.Title == "" {
		opts.Title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	material := ingest.Material{Type: "document", Content: strings.ToValidUTF8(string(data), ""), Source: header.Filename}
	if strings.TrimSpace(material.Content) == "" {
		HandleError(c, h.logger, ingest.ErrEmptyContext)
		return
	}
	pc, err := ingest.Compose(opts, material)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	pc.SourceType = ingest.SourceDocument
	h.run(c, pc, c.PostFormArray("frameworks"))
}

func (h *Handler) run(c *gin.Context, pc *ingest.ProblemContext, frameworks []string) {
	analysis, err := h.svc.Analyze(c.Request.Context(), pc, frameworks, nil)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	RespondCreated(c, analysis)
}

// List handles GET /api/analyses
func (h *Handler) List(c *gin.Context) {
	summaries, err := h.svc.List(c.Request.Context())
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	if summaries == nil {
		summaries = []store.Summary{}
	}
	RespondOK(c, summaries)
}

// Get handles GET /api/analyses/:id
func (h *Handler) Get(c *gin.Context) {
	analysis, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	RespondOK(c, analysis)
}

// Report handles GET /api/analyses/:id/report
func (h *Handler) Report(c *gin.Context) {
	analysis, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="report_`+analysis.ID+`.md"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(analysis.Report))
}

// Frameworks handles GET /api/frameworks
func (h *Handler) Frameworks(c *gin.Context) {
	RespondOK(c, h.svc.Frameworks())
}

// Health handles GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": version.Version})
}
