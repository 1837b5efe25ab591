package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/common"
	"github.com/ternarybob/kengetal/internal/handlers"
	"github.com/ternarybob/kengetal/internal/interfaces"
	"github.com/ternarybob/kengetal/internal/services/analysis"
	"github.com/ternarybob/kengetal/internal/services/events"
	"github.com/ternarybob/kengetal/internal/services/explain"
	"github.com/ternarybob/kengetal/internal/services/llm"
	"github.com/ternarybob/kengetal/internal/services/report"
	"github.com/ternarybob/kengetal/internal/services/retention"
	"github.com/ternarybob/kengetal/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	Storage interfaces.AnalysisStorage

	// Services
	EventService     *events.Service
	LLMService       *llm.ProviderFactory
	ExplainService   *explain.Service
	AnalysisService  *analysis.Service
	ReportService    *report.Service
	RetentionService *retention.Scheduler

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	AnalysisHandler *handlers.AnalysisHandler
	WSHandler       *handlers.WebSocketHandler
}

// New wires the full server application: storage, services, retention and handlers
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initEvents(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize events: %w", err)
	}

	if err := app.initServices(app.Storage, app.EventService); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initRetention(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to start retention scheduler: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("llm_provider", string(cfg.LLM.DefaultProvider)).
		Str("storage_path", cfg.Storage.Badger.Path).
		Msg("Application initialization complete")

	return app, nil
}

// NewOffline wires only the analysis pipeline, without storage or HTTP handlers
func NewOffline(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}
	if err := app.initServices(nil, nil); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return app, nil
}

// initDatabase opens the Badger analysis store
func (a *App) initDatabase() error {
	db, err := badger.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.Storage = badger.NewAnalysisStorage(db, a.Logger)
	return nil
}

// initEvents creates the event bus and subscribes the WebSocket hub and the event log
func (a *App) initEvents() error {
	a.EventService = events.NewService(a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.Logger)

	if err := a.EventService.Subscribe(a.WSHandler.Publish, events.AllEventTypes...); err != nil {
		return err
	}
	return events.SubscribeLoggerToAllEvents(a.EventService, a.Logger)
}

func (a *App) initServices(storage interfaces.AnalysisStorage, publisher interfaces.EventPublisher) error {
	callTimeout, err := a.Config.ExplainCallTimeout()
	if err != nil {
		return err
	}

	a.LLMService = llm.NewProviderFactory(
		&a.Config.Gemini,
		&a.Config.Claude,
		&a.Config.LLM,
		a.Config.Explain.Model,
		a.Logger,
	)
	a.ExplainService = explain.NewService(a.LLMService, callTimeout, a.Config.Explain.MaxWords, a.Logger)
	a.ReportService = report.NewService(a.Logger)

	a.AnalysisService = analysis.NewService(a.ExplainService, storage, publisher, a.Logger)

	a.Logger.Debug().
		Dur("call_timeout", callTimeout).
		Int("max_words", a.Config.Explain.MaxWords).
		Msg("Analysis services initialized")
	return nil
}

func (a *App) initRetention() error {
	maxAge, err := a.Config.RetentionMaxAge()
	if err != nil {
		return err
	}
	a.RetentionService = retention.NewScheduler(a.Storage, maxAge, a.Logger)
	return a.RetentionService.Start(a.Config.Storage.Retention.Schedule)
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.AnalysisHandler = handlers.NewAnalysisHandler(
		a.AnalysisService,
		a.ReportService,
		a.Config.Upload.MaxBytes,
		a.Logger,
	)
}

// Close stops background work and releases storage and provider clients
func (a *App) Close() error {
	if a.RetentionService != nil && a.RetentionService.Enabled() {
		a.RetentionService.Stop()
	}

	if a.EventService != nil {
		a.EventService.Close()
	}

	if a.WSHandler != nil {
		a.WSHandler.Close()
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
