package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/wonny/mag7-collector/internal/contracts"
	"github.com/wonny/mag7-collector/internal/tradingday"
	"github.com/wonny/mag7-collector/pkg/logger"
)

// ErrMalformedPayload is returned for trigger payloads that are neither
// empty, a date string, nor an object with a string trading_date
var ErrMalformedPayload = errors.New("malformed trigger payload")

// SuccessMessage is the message of every 200 response
const SuccessMessage = "Data successfully collected"

// ParsePayload extracts an explicit trading date from a trigger payload.
// nil means "resolve automatically".
func ParsePayload(raw []byte) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch p := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &p, nil
	case map[string]interface{}:
		td, ok := p["trading_date"]
		if !ok || td == nil {
			return nil, nil
		}
		s, ok := td.(string)
		if !ok {
			return nil, fmt.Errorf("%w: trading_date must be a string", ErrMalformedPayload)
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %T", ErrMalformedPayload, v)
	}
}

// Handler turns a trigger payload into a response envelope.
// It is the single place where run errors become a 500.
type Handler struct {
	pipeline *Pipeline
	resolver *tradingday.Resolver
	newRunID func() string
	logger   *logger.Logger
}

// NewHandler creates a trigger handler
func NewHandler(pipeline *Pipeline, resolver *tradingday.Resolver, log *logger.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		resolver: resolver,
		newRunID: uuid.NewString,
		logger:   log.WithModule("handler"),
	}
}

// Handle runs one collection for payload
func (h *Handler) Handle(ctx context.Context, payload []byte) contracts.Response {
	runID := h.newRunID()
	log := h.logger.WithField("run_id", runID)

	explicit, err := ParsePayload(payload)
	if err != nil {
		log.WithError(err).Error("Rejected trigger payload")
		return failure(runID, nil, err)
	}

	date := h.resolver.Resolve(explicit)
	log = log.WithField("trading_date", date)

	result, err := h.pipeline.Run(ctx, date)
	if err != nil {
		log.WithError(err).Error("Collection run failed")
		return failure(runID, &date, err)
	}

	return contracts.Response{
		StatusCode: http.StatusOK,
		Body: contracts.SuccessBody{
			Message:    SuccessMessage,
			StorageKey: result.StorageKey,
			RunID:      runID,
			Summary:    Summarize(result.Snapshot),
		},
	}
}

func failure(runID string, date *contracts.TradingDate, err error) contracts.Response {
	return contracts.Response{
		StatusCode: http.StatusInternalServerError,
		Body: contracts.ErrorBody{
			Error:       err.Error(),
			TradingDate: date,
			RunID:       runID,
		},
	}
}
