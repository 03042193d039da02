package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"

	"github.com/doublelei/DiffScope/internal/app"
)

var (
	Version, Branch, Commit, BuildDate string
)

var (
	configPath = kingpin.Flag("config", "path to config file").Short('c').String()
	serve      = kingpin.Flag("serve", "run the HTTP analysis server").Bool()
	verbose    = kingpin.Flag("verbose", "enable debug logging").Short('v').Bool()
	commitURL  = kingpin.Arg("commit-url", "commit web URL to analyze").String()
)

func main() {
	kingpin.Parse()

	var err error
	ctx := contem.New(contem.WithLogger(logze.DefaultPtr()), contem.Exit(&err))
	defer ctx.Shutdown()

	err = run(ctx)
	if err != nil {
		logze.DefaultPtr().Error("cannot run", "error", err)
	}
}

func run(ctx contem.Context) error {
	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		return erro.Wrap(err, "load config")
	}

	level := logze.LevelInfo
	if *verbose {
		level = logze.LevelDebug
	}
	logze.Init(logze.C().WithConsole().WithLevel(level))

	diffscope, err := app.New(ctx, cfg)
	if err != nil {
		return erro.Wrap(err, "new service")
	}

	if *serve {
		if err := diffscope.StartServer(ctx); err != nil {
			return erro.Wrap(err, "start server")
		}
		return nil
	}

	if *commitURL == "" {
		return errm.New("commit-url argument is required without --serve")
	}

	result, err := diffscope.AnalyzeCommitURL(ctx, *commitURL)
	if err != nil {
		return erro.Wrap(err, "analyze commit")
	}

	data, err := result.JSON()
	if err != nil {
		return erro.Wrap(err, "marshal result")
	}
	fmt.Println(string(data))

	return nil
}
