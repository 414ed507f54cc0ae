package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/wonny/mag7-collector/internal/contracts"
	"github.com/wonny/mag7-collector/internal/tradingday"
	"github.com/wonny/mag7-collector/pkg/logger"
)

// maxPayloadBytes bounds the trigger payload
const maxPayloadBytes = 64 << 10

// Trigger runs one collection; collector.RunGate satisfies it
type Trigger interface {
	Handle(ctx context.Context, payload []byte) contracts.Response
}

// CollectHandler exposes the collection trigger over HTTP
// ⭐ SSOT: 수집 API 핸들러는 이 구조체에서만
type CollectHandler struct {
	trigger  Trigger
	resolver *tradingday.Resolver
	logger   *logger.Logger
}

// NewCollectHandler creates a collect handler
func NewCollectHandler(trigger Trigger, resolver *tradingday.Resolver, log *logger.Logger) *CollectHandler {
	return &CollectHandler{
		trigger:  trigger,
		resolver: resolver,
		logger:   log.WithModule("api"),
	}
}

// Collect runs one collection with the request body as trigger payload.
// The envelope's statusCode becomes the HTTP status (409 from a held run gate).
// POST /api/collect
func (h *CollectHandler) Collect(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(payload) > maxPayloadBytes {
		respondError(w, http.StatusRequestEntityTooLarge, "Payload too large")
		return
	}

	// 시작된 수집은 클라이언트 연결이 끊겨도 끝까지 진행
	ctx := context.WithoutCancel(r.Context())

	resp := h.trigger.Handle(ctx, payload)
	respondJSON(w, resp.StatusCode, resp)
}

// TradingDate returns the date an automatic run would collect
// GET /api/trading-date
func (h *CollectHandler) TradingDate(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"trading_date": h.resolver.Resolve(nil),
	})
}
