package triageapi

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/acuity/internal/acuity"
	"github.com/linnemanlabs/acuity/internal/triage"
)

// MaxBodyBytes caps a predict request body. Larger bodies get 413.
const MaxBodyBytes = 1 << 20

// EvaluationIDHeader carries the evaluation ULID on predict responses.
const EvaluationIDHeader = "X-Evaluation-Id"

const predictSchemaURL = "https://acuity.linnemanlabs.com/schemas/predict.json"

//go:embed predict.schema.json
var predictSchemaJSON []byte

func compilePredictSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(predictSchemaURL, bytes.NewReader(predictSchemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile(predictSchemaURL)
}

type predictRequest struct {
	ChiefComplaintText string             `json:"chiefComplaintText"`
	AgeInYears         json.Number        `json:"ageInYears"`
	Vitals             map[string]float64 `json:"vitals"`
	ComplaintTypes     []string           `json:"complaintTypes"`
}

type predictResponse struct {
	SuggestedAcuity string  `json:"suggestedAcuity"`
	Confidence      float64 `json:"confidence"`
	Explanation     string  `json:"explanation"`
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		a.observe(triage.ResultBadRequest)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "")
			return
		}
		writeError(w, http.StatusBadRequest, "unreadable request body", err.Error())
		return
	}

	in, err := a.decodeInput(raw)
	if err != nil {
		a.observe(triage.ResultBadRequest)
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	ev, err := a.svc.Evaluate(ctx, in)
	if err != nil {
		// the service only fails when the caller went away
		a.observe(triage.ResultCanceled)
		a.logger.Warn(ctx, "predict canceled", "err", err)
		writeError(w, http.StatusServiceUnavailable, "request canceled", "")
		return
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("acuity.evaluation.id", ev.ID),
		attribute.Int("acuity.level", int(ev.Outcome.Level)),
	)

	a.observe(triage.ResultOK)
	w.Header().Set(EvaluationIDHeader, ev.ID)
	writeJSON(w, http.StatusOK, predictResponse{
		SuggestedAcuity: ev.Outcome.Level.Code(),
		Confidence:      ev.Outcome.Confidence,
		Explanation:     ev.Outcome.Explanation,
	})
}

// decodeInput parses and validates a predict body.
func (a *API) decodeInput(raw []byte) (acuity.Input, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return acuity.Input{}, fmt.Errorf("malformed JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return acuity.Input{}, errors.New("malformed JSON: unexpected data after body")
	}
	if err := a.schema.Validate(doc); err != nil {
		return acuity.Input{}, err
	}

	var req predictRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return acuity.Input{}, fmt.Errorf("decode request: %w", err)
	}
	age, err := wholeYears(req.AgeInYears)
	if err != nil {
		return acuity.Input{}, err
	}

	return acuity.Input{
		ChiefComplaintText: req.ChiefComplaintText,
		AgeInYears:         age,
		Vitals:             req.Vitals,
		ComplaintTypes:     req.ComplaintTypes,
	}, nil
}

// wholeYears accepts integral numbers in either form, so 42 and 42.0 both
// read as 42.
func wholeYears(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil && i >= 0 && i <= math.MaxInt32 {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, fmt.Errorf("ageInYears %s is not a whole number of years", n)
	}
	return int(f), nil
}
