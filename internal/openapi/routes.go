package openapi

import (
	_ "embed"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/strefethen/sonos-nowplaying-go/internal/api"
	"github.com/strefethen/sonos-nowplaying-go/internal/apperrors"
)

//go:embed sonos-nowplaying.v1.yaml
var embeddedSpec []byte

// RegisterRoutes wires OpenAPI routes to the router.
func RegisterRoutes(router chi.Router) {
	router.Method(http.MethodGet, "/v1/openapi", api.Handler(serveOpenAPIYAML))
	router.Method(http.MethodGet, "/v1/openapi.json", api.Handler(serveOpenAPIJSON))
}

// document returns the API description. OPENAPI_SPEC_PATH overrides the
// embedded copy, which is handy while editing it.
func document() ([]byte, error) {
	if path := os.Getenv("OPENAPI_SPEC_PATH"); path != "" {
		return os.ReadFile(path)
	}
	return embeddedSpec, nil
}

func serveOpenAPIYAML(w http.ResponseWriter, r *http.Request) error {
	doc, err := document()
	if err != nil {
		return apperrors.NewInternalError("Failed to read OpenAPI document")
	}

	w.Header().Set("Content-Type", "text/yaml; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
	return nil
}

func serveOpenAPIJSON(w http.ResponseWriter, r *http.Request) error {
	doc, err := document()
	if err != nil {
		return apperrors.NewInternalError("Failed to read OpenAPI document")
	}

	var parsed any
	if err := yaml.Unmarshal(doc, &parsed); err != nil {
		return apperrors.NewInternalError("Failed to parse OpenAPI document")
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	return api.WriteJSON(w, http.StatusOK, parsed)
}
