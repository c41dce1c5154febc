package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/popstand/internal/config"
	"github.com/roach88/popstand/internal/pos"
	"github.com/roach88/popstand/internal/store"
)

// session is one command's view of the stand: resolved config, the
// open database and the facade over it.
type session struct {
	cfg config.Config
	db  *store.Store
	pos *pos.Store
	out *OutputFormatter
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadConfig resolves config and applies global flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath, os.Getenv)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	return cfg, nil
}

// setupLogging installs the default slog handler on w.
func setupLogging(opts *RootOptions, cfg config.Config, w io.Writer) {
	level := cfg.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(w, handlerOpts)
	if opts.LogJSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

// openSession loads config, opens the database and the store facade.
// Callers must call close.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	out := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, out.Fail(err)
	}
	setupLogging(opts, cfg, cmd.ErrOrStderr())

	slog.Debug("opening database", "path", cfg.Database)
	db, err := store.Open(cfg.Database)
	if err != nil {
		return nil, out.Fail(WrapExitError(ExitCommandError, "failed to open database", err))
	}

	policy := cfg.Policy()
	ps, err := pos.Open(commandContext(cmd), pos.Options{
		Persister:            store.NewSnapshotter(db, cfg.StorageKey),
		DefaultWalletAccount: cfg.DefaultWalletAccount,
		Policy:               &policy,
		Logger:               slog.Default(),
	})
	if err != nil {
		_ = db.Close()
		return nil, out.Fail(err)
	}

	return &session{cfg: cfg, db: db, pos: ps, out: out}, nil
}

func (s *session) close() {
	if err := s.db.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
