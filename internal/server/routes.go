package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/strefethen/sonos-nowplaying-go/internal/api"
	"github.com/strefethen/sonos-nowplaying-go/internal/apperrors"
	"github.com/strefethen/sonos-nowplaying-go/internal/auth"
	"github.com/strefethen/sonos-nowplaying-go/internal/display"
	"github.com/strefethen/sonos-nowplaying-go/internal/nowplaying"
	"github.com/strefethen/sonos-nowplaying-go/internal/sonosapi"
)

// RefreshResponse is returned by POST /v1/rooms/refresh.
type RefreshResponse struct {
	Object  string            `json:"object"`
	Changed bool              `json:"changed"`
	Rooms   []nowplaying.Room `json:"rooms"`
}

func registerHealthRoutes(router chi.Router, svc *Service) {
	router.Method(http.MethodGet, "/v1/health", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		response := map[string]any{
			"status":    "healthy",
			"service":   "sonos-nowplaying",
			"loaded":    svc.Rooms().Loaded(),
			"clients":   svc.hub.Count(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		return api.WriteJSON(w, http.StatusOK, response)
	}))
	router.Method(http.MethodGet, "/v1/health/live", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}))
	router.Method(http.MethodGet, "/v1/health/ready", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		if !svc.Rooms().Loaded() {
			return apperrors.NewNotLoadedError()
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}))
}

func registerRoomRoutes(router chi.Router, svc *Service) {
	router.Method(http.MethodGet, "/", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		return display.Render(w, svc.Display())
	}))

	router.Method(http.MethodGet, "/v1/rooms", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteList(w, "/v1/rooms", svc.Rooms().Rooms(), false)
	}))

	router.Method(http.MethodPost, "/v1/rooms/refresh", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		fields := []zap.Field{zap.String("request_id", api.GetRequestID(r))}
		if client, ok := auth.ClientFromContext(r.Context()); ok {
			fields = append(fields, zap.String("client", client.Sub))
		}
		svc.logger.Info("Manual refresh requested", fields...)

		changed, err := svc.poller.PollOnce(r.Context())
		if err != nil {
			return sonosapi.ToAppError(err)
		}
		return api.WriteResource(w, http.StatusOK, RefreshResponse{
			Object:  "room_refresh",
			Changed: changed,
			Rooms:   svc.Rooms().Rooms(),
		})
	}))

	router.Method(http.MethodGet, "/v1/display", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, svc.Display())
	}))

	router.Method(http.MethodGet, "/v1/poller", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, svc.poller.Status())
	}))
}
