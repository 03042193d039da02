package server

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/servex/v2"

	"github.com/doublelei/DiffScope/internal/analyzer"
	"github.com/doublelei/DiffScope/internal/provider"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server exposes commit analysis over HTTP.
type Server struct {
	analyzer *analyzer.Analyzer
	config   Config
	log      logze.Logger
	server   *servex.Server
}

// New creates a new analysis server.
func New(cfg Config, analyzer *analyzer.Analyzer) (*Server, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	log := logze.With("module", "server")

	server, err := servex.NewServer(
		servex.WithReadTimeout(cfg.Timeout),
		servex.WithIdleTimeout(cfg.Timeout*2),
		servex.WithLogger(log),
		servex.WithHealthEndpoint(),
		servex.WithDefaultMetrics(),
		servex.WithCertificate(cfg.Certificate),
	)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create server")
	}

	s := &Server{
		analyzer: analyzer,
		config:   cfg,
		log:      log,
		server:   server,
	}

	server.HandleFunc(cfg.AnalyzePath, s.handleAnalyze)

	return s, nil
}

// Start starts the analysis server
func (s *Server) Start(ctx context.Context) error {
	if s.config.EnableHTTPS {
		return s.server.StartHTTPS(s.config.Address)
	}
	return s.server.StartHTTP(s.config.Address)
}

// Stop stops the analysis server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// analyzeRequest addresses one commit, either by repository and SHA or by a
// full commit web URL.
type analyzeRequest struct {
	Repository string `json:"repository"`
	CommitSHA  string `json:"commit_sha"`
	CommitURL  string `json:"commit_url"`
}

// handleAnalyze handles incoming analysis requests
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	if r.Method != http.MethodPost {
		ctx.BadRequest(errm.New("method %s not allowed", r.Method), "only POST is supported")
		return
	}

	body, err := ctx.Read()
	if err != nil {
		ctx.BadRequest(err, "failed to read request body")
		return
	}

	var req analyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		ctx.BadRequest(err, "failed to parse request body")
		return
	}

	projectID, sha := req.Repository, req.CommitSHA
	if req.CommitURL != "" {
		projectID, sha, err = provider.ParseCommitURL(req.CommitURL)
		if err != nil {
			ctx.BadRequest(err, "failed to parse commit URL")
			return
		}
	}
	if projectID == "" || sha == "" {
		ctx.BadRequest(errm.New("repository and commit_sha are required"), "missing commit reference")
		return
	}

	s.log.Info("received analysis request", "project", projectID, "sha", sha)

	result, err := s.analyzer.AnalyzeCommit(r.Context(), projectID, sha)
	if err != nil {
		ctx.InternalServerError(err, "failed to analyze commit")
		return
	}
	if req.CommitURL != "" {
		result.RepositoryURL = req.CommitURL
	}

	ctx.Response(http.StatusOK, result)
}
