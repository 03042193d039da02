package app

import (
	"context"

	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/doublelei/DiffScope/internal/analyzer"
	"github.com/doublelei/DiffScope/internal/config"
	"github.com/doublelei/DiffScope/internal/model"
	"github.com/doublelei/DiffScope/internal/provider"
	"github.com/doublelei/DiffScope/internal/server"
)

// DiffScope is the main service that wires the provider, the commit analyzer
// and the HTTP server together.
type DiffScope struct {
	provider model.ContentProvider
	analyzer *analyzer.Analyzer
	server   *server.Server

	cfg config.Config
	log logze.Logger
}

// New creates a new commit analysis service
func New(ctx contem.Context, cfg config.Config) (*DiffScope, error) {
	service := &DiffScope{
		cfg: cfg,
		log: logze.With("component", "app"),
	}

	if err := service.init(ctx, cfg); err != nil {
		return nil, errm.Wrap(err, "failed to initialize service")
	}

	return service, nil
}

// StartServer starts the HTTP analysis server.
func (s *DiffScope) StartServer(ctx context.Context) error {
	if err := s.server.Start(ctx); err != nil {
		return errm.Wrap(err, "failed to start analysis server")
	}
	return nil
}

// AnalyzeCommit analyzes one commit addressed by project ID and SHA.
func (s *DiffScope) AnalyzeCommit(ctx context.Context, projectID, sha string) (*model.CommitAnalysisResult, error) {
	result, err := s.analyzer.AnalyzeCommit(ctx, projectID, sha)
	if err != nil {
		return nil, errm.Wrap(err, "failed to analyze commit")
	}
	return result, nil
}

// AnalyzeCommitURL analyzes one commit addressed by its web URL.
func (s *DiffScope) AnalyzeCommitURL(ctx context.Context, commitURL string) (*model.CommitAnalysisResult, error) {
	projectID, sha, err := provider.ParseCommitURL(commitURL)
	if err != nil {
		return nil, errm.Wrap(err, "failed to parse commit URL")
	}

	result, err := s.AnalyzeCommit(ctx, projectID, sha)
	if err != nil {
		return nil, err
	}
	result.RepositoryURL = commitURL

	return result, nil
}

func (s *DiffScope) init(ctx contem.Context, cfg config.Config) (err error) {
	if err := cfg.Validate(); err != nil {
		return errm.Wrap(err, "invalid config")
	}

	s.provider, err = provider.New(cfg.Provider)
	if err != nil {
		return errm.Wrap(err, "failed to create content provider")
	}

	s.analyzer, err = analyzer.New(s.provider, cfg.Analyzer)
	if err != nil {
		return errm.Wrap(err, "failed to create analyzer")
	}
	ctx.Add(func(context.Context) error {
		s.analyzer.Close()
		return nil
	})

	s.server, err = server.New(cfg.Server, s.analyzer)
	if err != nil {
		return errm.Wrap(err, "failed to create analysis server")
	}
	ctx.Add(s.server.Stop)

	return nil
}
