package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finspect-dev/finspect/internal/accounts"
	"github.com/finspect-dev/finspect/internal/balancesheet"
	"github.com/finspect-dev/finspect/internal/config"
	"github.com/finspect-dev/finspect/internal/logging"
	"github.com/finspect-dev/finspect/internal/situation"
	"github.com/finspect-dev/finspect/internal/store"
)

// app is everything a subcommand needs, built from the data directory.
type app struct {
	dir    string
	cfg    *config.Config
	logger *zap.Logger
	kv     store.KV
	svc    *balancesheet.Service
}

func (a *app) Close() error {
	_ = a.logger.Sync()
	return a.kv.Close()
}

// resolve makes p relative to the data directory unless it is absolute.
func (a *app) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.dir, p)
}

func openApp(ctx context.Context, g *globalFlags, logOut io.Writer) (*app, error) {
	dir, err := filepath.Abs(g.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfgPath := g.config
	if cfgPath == "" {
		cfgPath = filepath.Join(dir, config.FileName)
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s not found; run finspect init first", cfgPath)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logOut, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	a := &app{dir: dir, cfg: cfg, logger: logger}

	chart, err := accounts.Load(a.resolve(cfg.Chart.Path))
	if err != nil {
		return nil, err
	}
	rules, err := situation.LoadRules(a.resolve(cfg.Rules.Path))
	if err != nil {
		return nil, err
	}
	if a.kv, err = openStore(ctx, a); err != nil {
		return nil, err
	}

	a.svc = balancesheet.NewService(store.NewRepository(a.kv), chart, balancesheet.Options{
		MaxFileSize:     cfg.Import.MaxFileSize,
		Concurrency:     cfg.Import.Concurrency,
		StrictAmbiguity: cfg.Aggregation.StrictAmbiguity,
		Analyzer:        situation.NewAnalyzer(rules, logger),
		Logger:          logger,
		LogRoot:         dir,
	})
	return a, nil
}

func openStore(ctx context.Context, a *app) (store.KV, error) {
	sc := a.cfg.Store
	switch sc.Backend {
	case "memory":
		return store.NewMemory(), nil
	case "", "file":
		return store.NewFile(a.resolve(sc.Dir))
	case "postgres":
		return store.OpenPostgres(ctx, sc.PostgresURL, sc.Table)
	case "dynamodb":
		return store.OpenDynamo(ctx, sc.Region, sc.Table)
	default:
		return nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}
}

// withApp runs fn with an opened app and closes it afterwards.
func withApp(cmd *cobra.Command, g *globalFlags, fn func(a *app) error) error {
	a, err := openApp(cmd.Context(), g, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// owner holds the --accountant and --company flags.
type owner struct {
	accountant string
	company    string
}

func (o *owner) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.accountant, "accountant", "", "accountant id (required)")
	cmd.Flags().StringVar(&o.company, "company", "", "company id (required)")
	_ = cmd.MarkFlagRequired("accountant")
	_ = cmd.MarkFlagRequired("company")
}
