package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tubularapp/tubular/internal/backend"
	"github.com/tubularapp/tubular/internal/config"
	"github.com/tubularapp/tubular/internal/keychain"
	"github.com/tubularapp/tubular/internal/log"
	"github.com/tubularapp/tubular/internal/manifest"
	"github.com/tubularapp/tubular/internal/session"
	"github.com/tubularapp/tubular/internal/store"
)

// Version is set at build time via -ldflags
var Version = "dev"

// appState bundles the wired components shared by all commands
type appState struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	session *session.Controller
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting tubular", "version", Version)

	keys := keychain.NewOS("tubular")
	st, err := store.NewStore(cfg.Data.Dir, keys)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	backends := backend.NewSet(keys, logger)
	ctrl := session.NewController(st, keys, backends, logger)

	// Legacy credentials move into the keychain before any account is
	// activated.
	if err := ctrl.Migrate(); err != nil {
		return fmt.Errorf("credential migration failed: %w", err)
	}

	if !st.LastAccountIsPublic() {
		if err := ctrl.Configure(); err != nil {
			logger.Warn("could not restore last session", "error", err)
		}
	}

	if cfg.Manifest.Country != "" {
		configurePublicAccount(cfg, ctrl, logger)
	}

	app := &appState{cfg: cfg, logger: logger, store: st, session: ctrl}

	root := newRootCommand(app)
	return root.Execute()
}

// configurePublicAccount seeds a session-only public identity from the
// instance manifest. Failures are logged, not fatal; the session simply
// starts without one.
func configurePublicAccount(cfg *config.Config, ctrl *session.Controller, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	m := manifest.New(cfg.Manifest.URL, logger)
	instance, account, err := m.PublicAccount(ctx, cfg.Manifest.Country)
	if err != nil {
		logger.Warn("could not fetch public instances", "country", cfg.Manifest.Country, "error", err)
		return
	}

	if err := ctrl.SetPublicAccount(instance, account, ctrl.IsEmpty()); err != nil {
		logger.Warn("could not activate public account", "error", err)
	}
}

// newRootCommand creates the root command
func newRootCommand(app *appState) *cobra.Command {
	root := &cobra.Command{
		Use:           "tubular",
		Short:         "Browse Invidious and Piped instances with one tool",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newStatusCommand(app))
	root.AddCommand(newInstanceCommand(app))
	root.AddCommand(newAccountCommand(app))
	root.AddCommand(newTrendingCommand(app))
	root.AddCommand(newSearchCommand(app))

	return root
}
