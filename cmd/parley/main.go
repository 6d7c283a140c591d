// Command parley runs the tool-augmented chat gateway: an OpenAI-compatible
// HTTP front over a completion backend, with native tools dispatched by the
// conversation engine.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/parleyhq/parley/gateway"
	"github.com/parleyhq/parley/pkg/backend"
	"github.com/parleyhq/parley/store"
	"github.com/parleyhq/parley/toolbox"
	"github.com/parleyhq/parley/tools"
	"github.com/parleyhq/parley/tools/clock"
	"github.com/parleyhq/parley/tools/weather"
)

var logger = xlog.NewPackageLogger("github.com/parleyhq/parley", "parley")

type cli struct {
	Cfg        string `name:"cfg" help:"Configuration file." type:"path"`
	Listen     string `help:"Listen address, overrides the configuration."`
	RootURL    string `env:"LLM_ROOT_URL" help:"Backend base URL."`
	Model      string `env:"LLM_MODEL" help:"Model requested from the backend."`
	APIKey     string `env:"LLM_API_KEY" help:"Backend API key."`
	ModelOwner string `env:"MODEL_OWNER" help:"Owner reported on the models endpoint."`
	Debug      bool   `help:"Enable debug logging."`
}

func main() {
	var args cli
	kong.Parse(&args,
		kong.Name("parley"),
		kong.Description("OpenAI-compatible gateway with native tool dispatch"),
		kong.UsageOnError(),
	)

	xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
	if args.Debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.INFO)
	}

	if err := run(&args); err != nil {
		logger.KV(xlog.ERROR, "status", "failed", "err", err.Error())
		os.Exit(1)
	}
}

func run(args *cli) error {
	cfg, err := gateway.LoadConfig(args.Cfg)
	if err != nil {
		return err
	}
	cfg.ListenAddr = values.StringsCoalesce(args.Listen, cfg.ListenAddr)
	cfg.RootURL = values.StringsCoalesce(args.RootURL, cfg.RootURL)
	cfg.Model = values.StringsCoalesce(args.Model, cfg.Model)
	cfg.APIKey = values.StringsCoalesce(args.APIKey, cfg.APIKey)
	cfg.ModelOwner = values.StringsCoalesce(args.ModelOwner, cfg.ModelOwner)

	toolset, err := defaultTools()
	if err != nil {
		return err
	}

	client := backend.New(cfg.RootURL, cfg.Model, cfg.APIKey)
	opts := []toolbox.Option{
		toolbox.WithSystemPrompt(cfg.SystemPrompt),
		toolbox.WithFailOnToolError(cfg.FailOnToolError),
		toolbox.WithFanoutFailFast(cfg.FanoutFailFast),
	}
	if cfg.MaxTurns > 0 {
		opts = append(opts, toolbox.WithMaxTurns(cfg.MaxTurns))
	}
	tb, err := toolbox.New(client, toolset, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.KV(xlog.INFO,
		"status", "starting",
		"model", cfg.Model,
		"root_url", cfg.RootURL,
		"tools", len(toolset),
	)
	return gateway.NewServer(cfg, tb, store.NewMemoryStore()).ListenAndServe(ctx)
}

func defaultTools() ([]tools.ITool, error) {
	wtool, err := weather.New()
	if err != nil {
		return nil, err
	}
	ctool, err := clock.New()
	if err != nil {
		return nil, err
	}
	return []tools.ITool{wtool, ctool}, nil
}
