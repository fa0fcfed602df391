package di

import (
	"net/http"

	"cloudmap-backend/application/commands/bus"
	"cloudmap-backend/application/ports"
	querybus "cloudmap-backend/application/queries/bus"
	"cloudmap-backend/infrastructure/config"
	"cloudmap-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Level      zap.AtomicLevel
	Logger     *zap.Logger
	Store      ports.ArchitectureStore
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Handler    http.Handler
	Tracer     *observability.TracerProvider
}

// WatchConfig follows the loaded config file and applies log level changes
// without a restart. It returns nil when no file was loaded. Other settings
// take effect on the next start.
func (c *Container) WatchConfig() (*config.Watcher, error) {
	if c.Config.Path == "" {
		return nil, nil
	}
	w, err := config.NewWatcher(c.Config, c.Logger)
	if err != nil {
		return nil, err
	}
	w.OnChange(func(next *config.Config) {
		if err := observability.SetLevel(c.Level, next.Log.Level); err != nil {
			c.Logger.Warn("Ignoring invalid log level", zap.String("level", next.Log.Level), zap.Error(err))
		}
	})
	return w, nil
}
