package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cleared-dev/conferencia/internal/config"
	"github.com/cleared-dev/conferencia/internal/reconcile"
	"github.com/cleared-dev/conferencia/internal/store"
)

type globalOptions struct {
	configPath string
	envPath    string
}

// app is the state shared by commands that touch the database.
type app struct {
	root   string // directory holding the config file
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
}

// openApp loads the configuration and opens the store. A missing config file
// falls back to defaults.
func openApp(opts *globalOptions, logOut io.Writer) (*app, error) {
	root, err := projectRoot(opts)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(filepath.Join(root, filepath.Base(opts.configPath)))
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return nil, err
	}

	envPath := opts.envPath
	if envPath == "" {
		envPath = filepath.Join(root, ".env")
	}
	if err := config.ApplyEnv(cfg, envPath); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := cfg.Log.NewLogger(logOut)
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Database.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(root, dbPath)
	}
	st, err := store.Open(dbPath, logger)
	if err != nil {
		return nil, err
	}

	return &app{root: root, cfg: cfg, logger: logger, store: st}, nil
}

// projectRoot is the directory holding the config file.
func projectRoot(opts *globalOptions) (string, error) {
	cfgPath, err := filepath.Abs(opts.configPath)
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}
	return filepath.Dir(cfgPath), nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// engine builds a reconciliation engine reading from the store.
func (a *app) engine() (*reconcile.Engine, error) {
	tol, err := a.cfg.Matching.ToleranceValue()
	if err != nil {
		return nil, err
	}
	opts := reconcile.Options{
		Tolerance:       tol,
		EntradaOrigin:   a.cfg.Matching.EntradaOrigin,
		SaidaOrigin:     a.cfg.Matching.SaidaOrigin,
		RetentionPrefix: a.cfg.Matching.RetentionPrefix,
	}
	src := reconcile.Sources{Fiscal: a.store, Accounting: a.store, Plans: a.store, Charts: a.store}
	return reconcile.NewEngine(src, opts, a.logger), nil
}
