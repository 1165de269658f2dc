// Package triageapi serves the triage engine over HTTP: a static health
// document and the predict endpoint.
package triageapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/acuity/internal/acuity"
	"github.com/linnemanlabs/acuity/internal/triage"
)

// TriageService defines the business operations triageapi needs.
type TriageService interface {
	Evaluate(ctx context.Context, in acuity.Input) (*triage.Evaluation, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger  log.Logger
	svc     TriageService
	observe func(result string)
	schema  *jsonschema.Schema
}

// New creates a new API handler. observe, if non-nil, is called once per
// predict request with one of the triage.Result* values.
func New(logger log.Logger, svc TriageService, observe func(result string)) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("triage service is required"))
	}
	if observe == nil {
		observe = func(string) {}
	}
	schema, err := compilePredictSchema()
	if err != nil {
		panic(fmt.Errorf("compile predict schema: %w", err))
	}
	return &API{
		logger:  logger,
		svc:     svc,
		observe: observe,
		schema:  schema,
	}
}

// RegisterRoutes attaches API endpoints to the router. mw wraps /predict
// only; /health stays open.
func (a *API) RegisterRoutes(r chi.Router, mw ...func(http.Handler) http.Handler) {
	r.Get("/health", a.handleHealth)
	r.With(mw...).Post("/predict", a.handlePredict)
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "ai-triage",
	})
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, errorResponse{Error: msg, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing to do with errors here
	_ = json.NewEncoder(w).Encode(v)
}
