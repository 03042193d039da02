package analyzer

import (
	"context"
	"sync"
	"time"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/doublelei/DiffScope/internal/detector"
	"github.com/doublelei/DiffScope/internal/diff"
	"github.com/doublelei/DiffScope/internal/funcparser"
	"github.com/doublelei/DiffScope/internal/model"
)

const (
	defaultWorkers     = 8
	defaultMaxFileSize = 1 << 20 // bytes of file content per side
)

// Config controls the commit analysis pipeline.
type Config struct {
	// Workers caps the number of files analyzed concurrently.
	Workers int `yaml:"workers" env:"ANALYZER_WORKERS"`

	// MaxFileSize skips function-level analysis for files whose content
	// exceeds this many bytes on either side. The file stays in the result.
	MaxFileSize int `yaml:"max_file_size" env:"ANALYZER_MAX_FILE_SIZE"`
}

// PrepareAndValidate fills default values.
func (c *Config) PrepareAndValidate() error {
	c.Workers = lang.Check(c.Workers, defaultWorkers)
	c.MaxFileSize = lang.Check(c.MaxFileSize, defaultMaxFileSize)
	return nil
}

// Analyzer orchestrates commit analysis: it fetches commit data through a
// provider, analyzes files concurrently and aggregates function changes
// sequentially, running rename matching strictly after all files finished.
type Analyzer struct {
	provider model.ContentProvider
	detector *detector.Detector
	matcher  *detector.RenameMatcher
	diffs    *diff.Parser
	funcs    *funcparser.Parser
	pool     *ants.Pool
	cfg      Config
	log      logze.Logger
}

// New creates an analyzer backed by the given content provider.
func New(provider model.ContentProvider, cfg Config) (*Analyzer, error) {
	if provider == nil {
		return nil, errm.New("content provider is required")
	}
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "failed to prepare and validate config")
	}

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create ants pool")
	}

	return &Analyzer{
		provider: provider,
		detector: detector.New(),
		matcher:  detector.NewRenameMatcher(),
		diffs:    diff.NewParser(),
		funcs:    funcparser.NewParser(),
		pool:     pool,
		cfg:      cfg,
		log:      logze.With("component", "analyzer"),
	}, nil
}

// Close releases the worker pool.
func (a *Analyzer) Close() {
	a.pool.Release()
}

type fileOutcome struct {
	file      *model.ModifiedFile
	functions []*model.FunctionChange
	area      *detector.AreaChange
}

// AnalyzeCommit analyzes a single commit and returns an immutable result.
// A failure to resolve the commit or its diffs is fatal; per-file failures
// degrade that file to an annotated record and the analysis continues.
func (a *Analyzer) AnalyzeCommit(ctx context.Context, projectID, sha string) (*model.CommitAnalysisResult, error) {
	timer := abstract.StartTimer()
	log := a.log.WithFields("project", projectID, "sha", sha)

	commit, err := a.provider.GetCommit(ctx, projectID, sha)
	if err != nil {
		return nil, errm.Wrap(err, "failed to get commit")
	}

	fileDiffs, err := a.provider.GetCommitDiffs(ctx, projectID, sha)
	if err != nil {
		return nil, errm.Wrap(err, "failed to get commit diffs")
	}
	log.Debug("fetched commit diffs", "files", len(fileDiffs))

	// Files are independent until rename matching, so they run in parallel.
	// Outcomes land in a fixed slice to keep the aggregation order equal to
	// the provider's file order.
	outcomes := make([]*fileOutcome, len(fileDiffs))
	var wg sync.WaitGroup
	for i, fd := range fileDiffs {
		i, fd := i, fd
		wg.Add(1)
		task := func() {
			defer wg.Done()
			outcomes[i] = a.analyzeFile(ctx, projectID, commit, fd)
		}
		if err := a.pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	result := &model.CommitAnalysisResult{
		CommitSHA:     commit.SHA,
		RepositoryURL: lang.Check(commit.URL, projectID),
		CommitAuthor:  lang.Check(commit.Author.Name, commit.Author.Username),
		CommitMessage: commit.Message,
	}
	if !commit.Timestamp.IsZero() {
		result.CommitDate = commit.Timestamp.Format(time.RFC3339)
	}

	functions := make([]*model.FunctionChange, 0)
	result.ModifiedFiles = make([]*model.ModifiedFile, 0, len(fileDiffs))
	for _, oc := range outcomes {
		if oc == nil {
			continue
		}
		result.ModifiedFiles = append(result.ModifiedFiles, oc.file)
		functions = append(functions, oc.functions...)
		if oc.area != nil {
			log.Debug("changes outside function boundaries",
				"file", oc.area.File,
				"old_lines", len(oc.area.OldLines),
				"new_lines", len(oc.area.NewLines))
		}
	}

	// Rename matching is strictly sequential and global across files,
	// after every per-file pass has finished.
	result.ModifiedFunctions = a.matcher.MatchRenames(functions)

	log.Info("commit analysis completed",
		"files", len(result.ModifiedFiles),
		"functions", len(result.ModifiedFunctions),
		"elapsed_time", timer.ElapsedTime())

	return result, nil
}

// analyzeFile runs diff parsing, content retrieval, function extraction and
// change detection for one file. It never fails the commit: any degradation
// is recorded in the ModifiedFile.Error annotation.
func (a *Analyzer) analyzeFile(ctx context.Context, projectID string, commit *model.Commit, fd *model.FileDiff) *fileOutcome {
	out := &fileOutcome{file: a.buildModifiedFile(fd)}
	log := a.log.WithFields("file", out.file.Filename)

	if fd.IsBinary || fd.Diff == "" {
		return out
	}

	parsed, err := a.diffs.ParseFile(fd.OldPath, fd.NewPath, fd.Diff)
	if err != nil {
		log.Warn("failed to parse file diff", "error", err)
		out.file.Error = errm.Wrap(err, "parse diff").Error()
		return out
	}
	parsed.IsNew = parsed.IsNew || fd.IsNew
	parsed.IsDeleted = parsed.IsDeleted || fd.IsDeleted
	parsed.IsRename = parsed.IsRename || fd.IsRenamed

	language := funcparser.DetectLanguage(out.file.Filename)
	out.file.Language = string(language)
	if language == funcparser.LanguageUnknown {
		return out
	}

	before, after, err := a.provider.GetFileContentBeforeAfter(ctx, projectID, commit.SHA, fd.OldPath, fd.NewPath)
	if err != nil {
		log.Warn("failed to get file contents", "error", err)
		out.file.Error = errm.Wrap(err, "get file contents").Error()
		return out
	}
	if len(lang.Deref(before)) > a.cfg.MaxFileSize || len(lang.Deref(after)) > a.cfg.MaxFileSize {
		log.Debug("file too large for function analysis")
		return out
	}

	oldFunctions := a.extractFunctions(ctx, before, language, log)
	newFunctions := a.extractFunctions(ctx, after, language, log)

	detected := a.detector.DetectFileChanges(detector.FileInput{
		Path:         out.file.Filename,
		Diff:         parsed,
		OldContent:   lang.Deref(before),
		NewContent:   lang.Deref(after),
		OldFunctions: oldFunctions,
		NewFunctions: newFunctions,
	})

	out.functions = detected.Functions
	out.area = detected.NonFunctionArea
	return out
}

func (a *Analyzer) extractFunctions(ctx context.Context, content *string, language funcparser.Language, log logze.Logger) []funcparser.Function {
	if content == nil {
		return nil
	}
	functions, err := a.funcs.ExtractFunctions(ctx, *content, language)
	if err != nil {
		log.Warn("failed to extract functions", "language", language, "error", err)
		return nil
	}
	return functions
}

func (a *Analyzer) buildModifiedFile(fd *model.FileDiff) *model.ModifiedFile {
	mf := &model.ModifiedFile{
		Filename:  lang.Check(fd.NewPath, fd.OldPath),
		Status:    fd.Status,
		Additions: fd.Additions,
		Deletions: fd.Deletions,
		Changes:   fd.Additions + fd.Deletions,
		Patch:     fd.Diff,
	}
	switch {
	case fd.IsDeleted:
		mf.Filename = lang.Check(fd.OldPath, fd.NewPath)
		mf.Status = lang.Check(mf.Status, string(model.FileRemoved))
	case fd.IsNew:
		mf.Status = lang.Check(mf.Status, string(model.FileAdded))
	case fd.IsRenamed:
		mf.Status = lang.Check(mf.Status, string(model.FileRenamed))
		mf.PreviousFilename = fd.OldPath
	default:
		mf.Status = lang.Check(mf.Status, string(model.FileModified))
	}
	return mf
}
