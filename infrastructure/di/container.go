package di

import (
	"net/http"

	"go.uber.org/zap"

	"retro-backend/application/commands/bus"
	"retro-backend/application/coordinator"
	"retro-backend/application/ports"
	querybus "retro-backend/application/queries/bus"
	"retro-backend/application/realtime"
	"retro-backend/infrastructure/config"
	"retro-backend/pkg/auth"
	"retro-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *observability.Collector
	Tokens      *auth.TokenService
	Runtime     *RuntimeConfig
	Storage     *Storage
	Broadcaster *realtime.Broadcaster
	EventBus    ports.EventBus
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	Coordinator *coordinator.Coordinator
	Handler     http.Handler
}

// Shutdown releases background resources. The coordinator drains accepted
// commands before returning.
func (c *Container) Shutdown() {
	if c.Coordinator != nil {
		c.Coordinator.Close()
	}
	if c.Runtime != nil && c.Runtime.Watcher != nil {
		c.Runtime.Watcher.Stop()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
