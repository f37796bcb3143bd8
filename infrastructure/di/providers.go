package di

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"retro-backend/application/commands"
	"retro-backend/application/commands/bus"
	cmdhandlers "retro-backend/application/commands/handlers"
	"retro-backend/application/coordinator"
	"retro-backend/application/ports"
	"retro-backend/application/queries"
	querybus "retro-backend/application/queries/bus"
	qryhandlers "retro-backend/application/queries/handlers"
	"retro-backend/application/realtime"
	"retro-backend/infrastructure/config"
	"retro-backend/infrastructure/messaging"
	"retro-backend/infrastructure/messaging/eventbridge"
	dynamostore "retro-backend/infrastructure/persistence/dynamodb"
	"retro-backend/infrastructure/persistence/memory"
	"retro-backend/infrastructure/persistence/resilience"
	"retro-backend/interfaces/http/rest"
	resthandlers "retro-backend/interfaces/http/rest/handlers"
	ws "retro-backend/interfaces/websocket"
	"retro-backend/pkg/auth"
	"retro-backend/pkg/observability"
)

// Storage bundles the repository implementations so the driver is chosen
// in one place.
type Storage struct {
	Sessions     ports.SessionRepository
	Participants ports.ParticipantRepository
	Notes        ports.NoteRepository
	Pinger       ports.StorePinger
}

// RuntimeConfig carries the dynamic limits provider and, when a config
// file is watched, the watcher itself for shutdown.
type RuntimeConfig struct {
	Provider         ports.DomainConfigProvider
	Watcher          *config.Watcher
	SubscriberBuffer int
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideMetrics creates the metrics collector, or nil when disabled
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("retro")
}

// ProvideTokenService creates the participant token service
func ProvideTokenService(cfg *config.Config, logger *zap.Logger) *auth.TokenService {
	secret := cfg.JWTSecret
	if secret == "" {
		// Config validation rejects this in production.
		logger.Warn("JWT_SECRET not set, using development secret")
		secret = "development-secret"
	}
	return auth.NewTokenService(secret, cfg.JWTIssuer)
}

// ProvideRuntimeConfig wires the dynamic limits source
func ProvideRuntimeConfig(cfg *config.Config, logger *zap.Logger) (*RuntimeConfig, error) {
	if cfg.DynamicConfigPath == "" {
		return &RuntimeConfig{
			Provider:         config.NewStaticProvider(),
			SubscriberBuffer: config.DefaultDynamicConfig().Limits.SubscriberBuffer,
		}, nil
	}

	watcher, err := config.NewWatcher(cfg.DynamicConfigPath, logger)
	if err != nil {
		return nil, err
	}
	watcher.Start()
	return &RuntimeConfig{
		Provider:         watcher,
		Watcher:          watcher,
		SubscriberBuffer: watcher.GetCurrent().Limits.SubscriberBuffer,
	}, nil
}

// ProvideStorage selects and wires the repository implementations
func ProvideStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	if cfg.StorageDriver == "dynamodb" {
		client, err := dynamostore.NewClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, err
		}
		breaker := resilience.NewBreaker(logger)
		return &Storage{
			Sessions: resilience.NewSessionRepository(
				dynamostore.NewSessionRepository(client, cfg.DynamoDBTable, logger), breaker),
			Participants: resilience.NewParticipantRepository(
				dynamostore.NewParticipantRepository(client, cfg.DynamoDBTable, logger), breaker),
			Notes: resilience.NewNoteRepository(
				dynamostore.NewNoteRepository(client, cfg.DynamoDBTable, logger), breaker),
			Pinger: resilience.NewPinger(
				dynamostore.NewPinger(client, cfg.DynamoDBTable), breaker),
		}, nil
	}

	store := memory.NewStore()
	return &Storage{
		Sessions:     memory.NewSessionRepository(store),
		Participants: memory.NewParticipantRepository(store),
		Notes:        memory.NewNoteRepository(store),
		Pinger:       store,
	}, nil
}

// ProvideBroadcaster creates the realtime broadcaster
func ProvideBroadcaster(storage *Storage, runtime *RuntimeConfig, metrics *observability.Collector, logger *zap.Logger) *realtime.Broadcaster {
	return realtime.NewBroadcaster(
		storage.Sessions,
		storage.Participants,
		storage.Notes,
		logger,
		metrics,
		runtime.SubscriberBuffer,
	)
}

// ProvideEventBus composes the in-process broadcaster with the optional
// EventBridge publisher
func ProvideEventBus(ctx context.Context, cfg *config.Config, broadcaster *realtime.Broadcaster, logger *zap.Logger) (ports.EventBus, error) {
	if cfg.EventBusName == "" {
		return broadcaster, nil
	}

	client, err := eventbridge.NewClient(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	publisher := eventbridge.NewPublisher(client, cfg.EventBusName, logger)
	return messaging.NewCompositeBus(logger, broadcaster, publisher), nil
}

// ProvideCommandBus creates the command bus with all handlers registered
func ProvideCommandBus(storage *Storage, eventBus ports.EventBus, runtime *RuntimeConfig, logger *zap.Logger) (*bus.CommandBus, error) {
	cb := bus.NewCommandBus()

	createSession := cmdhandlers.NewCreateSessionHandler(storage.Sessions, storage.Participants, eventBus, logger)
	joinSession := cmdhandlers.NewJoinSessionHandler(storage.Sessions, storage.Participants, eventBus, logger)
	createNote := cmdhandlers.NewCreateNoteHandler(storage.Sessions, storage.Participants, storage.Notes, eventBus, runtime.Provider, logger)
	updateNote := cmdhandlers.NewUpdateNoteHandler(storage.Sessions, storage.Notes, eventBus, runtime.Provider, logger)
	deleteNote := cmdhandlers.NewDeleteNoteHandler(storage.Sessions, storage.Notes, eventBus, logger)
	setCompleted := cmdhandlers.NewSetCompletedHandler(storage.Sessions, storage.Participants, eventBus, logger)
	advancePhase := cmdhandlers.NewAdvancePhaseHandler(storage.Sessions, storage.Participants, eventBus, logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateSessionCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return createSession.Handle(ctx, cmd.(commands.CreateSessionCommand))
		})},
		{commands.JoinSessionCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return joinSession.Handle(ctx, cmd.(commands.JoinSessionCommand))
		})},
		{commands.CreateNoteCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return createNote.Handle(ctx, cmd.(commands.CreateNoteCommand))
		})},
		{commands.UpdateNoteCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return updateNote.Handle(ctx, cmd.(commands.UpdateNoteCommand))
		})},
		{commands.DeleteNoteCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return nil, deleteNote.Handle(ctx, cmd.(commands.DeleteNoteCommand))
		})},
		{commands.SetCompletedCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return setCompleted.Handle(ctx, cmd.(commands.SetCompletedCommand))
		})},
		{commands.AdvancePhaseCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			return advancePhase.Handle(ctx, cmd.(commands.AdvancePhaseCommand))
		})},
	}

	for _, reg := range registrations {
		if err := cb.Register(reg.cmd, reg.handler); err != nil {
			return nil, err
		}
	}
	return cb, nil
}

// ProvideQueryBus creates the query bus with all handlers registered
func ProvideQueryBus(storage *Storage, logger *zap.Logger) (*querybus.QueryBus, error) {
	qb := querybus.NewQueryBus()

	getSession := qryhandlers.NewGetSessionHandler(storage.Sessions, storage.Participants, logger)
	listNotes := qryhandlers.NewListNotesHandler(storage.Sessions, storage.Participants, storage.Notes, logger)
	getNote := qryhandlers.NewGetNoteHandler(storage.Sessions, storage.Participants, storage.Notes, logger)

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetSessionQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return getSession.Handle(ctx, q.(queries.GetSessionQuery))
		})},
		{queries.ListNotesQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return listNotes.Handle(ctx, q.(queries.ListNotesQuery))
		})},
		{queries.GetNoteQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return getNote.Handle(ctx, q.(queries.GetNoteQuery))
		})},
	}

	for _, reg := range registrations {
		if err := qb.Register(reg.query, reg.handler); err != nil {
			return nil, err
		}
	}
	return qb, nil
}

// ProvideCoordinator creates the per-session command coordinator and binds
// it to the broadcaster for serialized snapshot reads
func ProvideCoordinator(commandBus *bus.CommandBus, broadcaster *realtime.Broadcaster, metrics *observability.Collector, logger *zap.Logger) *coordinator.Coordinator {
	coord := coordinator.NewCoordinator(commandBus, logger, metrics)
	broadcaster.Bind(coord)
	return coord
}

// ProvideHandler builds the HTTP handler tree
func ProvideHandler(
	cfg *config.Config,
	coord *coordinator.Coordinator,
	queryBus *querybus.QueryBus,
	storage *Storage,
	broadcaster *realtime.Broadcaster,
	tokens *auth.TokenService,
	metrics *observability.Collector,
	logger *zap.Logger,
) http.Handler {
	sessionHandler := resthandlers.NewSessionHandler(coord, queryBus, storage.Sessions, tokens, metrics, logger)
	noteHandler := resthandlers.NewNoteHandler(coord, queryBus, metrics, logger)
	wsHandler := ws.NewHandler(broadcaster, tokens, logger)

	return rest.NewRouter(sessionHandler, noteHandler, wsHandler, tokens, storage.Pinger, metrics, cfg.EnableCORS, logger).Setup()
}
