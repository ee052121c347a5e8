package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/strefethen/sonos-nowplaying-go/internal/api"
	"github.com/strefethen/sonos-nowplaying-go/internal/auth"
	"github.com/strefethen/sonos-nowplaying-go/internal/config"
	"github.com/strefethen/sonos-nowplaying-go/internal/display"
	"github.com/strefethen/sonos-nowplaying-go/internal/hub"
	"github.com/strefethen/sonos-nowplaying-go/internal/nowplaying"
	"github.com/strefethen/sonos-nowplaying-go/internal/openapi"
	"github.com/strefethen/sonos-nowplaying-go/internal/poller"
	"github.com/strefethen/sonos-nowplaying-go/internal/sonosapi"
)

// Options controls server wiring.
type Options struct {
	// Fetcher replaces the HTTP zones client (for tests).
	Fetcher poller.Fetcher
	// DisablePolling skips starting the background poll loop. Refresh still works.
	DisablePolling bool
	Logger         *zap.Logger
}

// Service bundles the collaborators behind the HTTP surface.
type Service struct {
	cfg        config.Config
	settings   display.Settings
	normalizer *nowplaying.Normalizer
	poller     *poller.Poller
	hub        *hub.Hub
	logger     *zap.Logger
}

// NewService wires the zones client, normalizer, poller and push hub.
func NewService(cfg config.Config, options Options) (*Service, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fetcher := options.Fetcher
	if fetcher == nil {
		fetcher = sonosapi.NewClient(cfg.ZonesURL(), cfg.APIBase, cfg.APITimeout())
	}

	normalizer := nowplaying.NewNormalizer(nowplaying.Options{
		Exclude:         cfg.Exclude,
		FallbackBaseURL: cfg.APIBase,
	}, nil, logger.Named("nowplaying"))

	p, err := poller.New(fetcher, normalizer, poller.Options{
		Interval: cfg.PollInterval(),
		Schedule: cfg.PollSchedule,
		Timeout:  cfg.APITimeout(),
	}, logger.Named("poller"))
	if err != nil {
		return nil, err
	}

	svc := &Service{
		cfg:        cfg,
		settings:   display.SettingsFromConfig(cfg),
		normalizer: normalizer,
		poller:     p,
		logger:     logger,
	}
	svc.hub = hub.New(func() hub.Message {
		return svc.message(normalizer.List().Snapshot())
	}, logger.Named("hub"))

	p.AddListener(func(snapshot nowplaying.Snapshot) {
		svc.hub.Broadcast(svc.message(snapshot))
	})

	return svc, nil
}

// Poller exposes the poll loop, used by the CLI for one-shot polls.
func (s *Service) Poller() *poller.Poller {
	return s.poller
}

// Rooms returns the current room list.
func (s *Service) Rooms() *nowplaying.RoomList {
	return s.normalizer.List()
}

// Display returns the template data for the current snapshot.
func (s *Service) Display() display.TemplateData {
	return display.Build(s.settings, s.normalizer.List().Snapshot())
}

func (s *Service) message(snapshot nowplaying.Snapshot) hub.Message {
	return hub.Message{
		Type:           "rooms",
		AnimationSpeed: s.settings.AnimationSpeed,
		Data:           display.Build(s.settings, snapshot),
	}
}

// NewHandler builds the HTTP handler and returns a shutdown function.
func NewHandler(cfg config.Config, options Options) (http.Handler, func(context.Context) error, error) {
	svc, err := NewService(cfg, options)
	if err != nil {
		return nil, nil, err
	}
	logger := svc.logger

	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)
	router.Use(api.RequestLoggerMiddleware(logger.Named("http")))
	router.Use(api.RequestIDMiddleware)
	router.Use(api.RecovererMiddleware(logger))
	router.Use(auth.Middleware(cfg.AuthSecret))

	registerHealthRoutes(router, svc)
	openapi.RegisterRoutes(router)
	registerRoomRoutes(router, svc)
	router.Handle("/ws/rooms", svc.hub)

	if !options.DisablePolling {
		svc.poller.Start(context.Background())
	}

	shutdown := func(ctx context.Context) error {
		svc.poller.Stop()
		svc.hub.Close()
		return nil
	}

	return router, shutdown, nil
}
