package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cloudmap-backend/infrastructure/config"
	"cloudmap-backend/infrastructure/di"
	"cloudmap-backend/interfaces/http/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	addBackendFlags(cmd)

	return cmd
}

// loadConfig layers the config file, environment and the command's flags.
func loadConfig(cmd *cobra.Command, rootOpts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(rootOpts.Config, cmd.Flags())
	if err != nil {
		return nil, &ExitCodeError{Code: ExitError, Message: "failed to load configuration", Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ExitCodeError{Code: ExitError, Message: "invalid configuration", Err: err}
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, rootOpts *RootOptions) error {
	cfg, err := loadConfig(cmd, rootOpts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return &ExitCodeError{Code: ExitError, Message: "failed to initialize", Err: err}
	}
	defer cleanup()
	defer container.Logger.Sync()

	watcher, err := container.WatchConfig()
	if err != nil {
		container.Logger.Warn("Configuration hot reloading disabled", zap.Error(err))
	} else if watcher != nil {
		defer watcher.Stop()
	}

	return server.Run(ctx, cfg.Server.Address, container.Handler, container.Logger)
}
