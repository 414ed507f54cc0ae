package stream

import (
	"context"
	"time"

	"github.com/wonny/mag7-collector/internal/contracts"
)

// Event types
const (
	EventRunCompleted = "run_completed"
	EventRunFailed    = "run_failed"
)

// RunEvent is what subscribers receive after every collection run
type RunEvent struct {
	Type        string                 `json:"type"`
	StatusCode  int                    `json:"status_code"`
	RunID       string                 `json:"run_id,omitempty"`
	TradingDate *contracts.TradingDate `json:"trading_date"`
	StorageKey  string                 `json:"storage_key,omitempty"`
	Error       string                 `json:"error,omitempty"`
	At          time.Time              `json:"at"`
}

// EventFromResponse derives the event for a finished run
func EventFromResponse(resp contracts.Response, at time.Time) RunEvent {
	ev := RunEvent{
		Type:       EventRunFailed,
		StatusCode: resp.StatusCode,
		At:         at,
	}

	switch body := resp.Body.(type) {
	case contracts.SuccessBody:
		date := body.Summary.TradingDate
		ev.Type = EventRunCompleted
		ev.RunID = body.RunID
		ev.TradingDate = &date
		ev.StorageKey = body.StorageKey
	case contracts.ErrorBody:
		ev.RunID = body.RunID
		ev.TradingDate = body.TradingDate
		ev.Error = body.Error
	}
	return ev
}

// Trigger runs one collection; collector.Handler satisfies it
type Trigger interface {
	Handle(ctx context.Context, payload []byte) contracts.Response
}

// NotifyingTrigger publishes an event after each run of next
type NotifyingTrigger struct {
	next Trigger
	hub  *Hub
	now  func() time.Time
}

// Notify wraps next so every run is announced on hub
func Notify(next Trigger, hub *Hub) *NotifyingTrigger {
	return &NotifyingTrigger{next: next, hub: hub, now: time.Now}
}

// Handle runs next and publishes its outcome
func (n *NotifyingTrigger) Handle(ctx context.Context, payload []byte) contracts.Response {
	resp := n.next.Handle(ctx, payload)
	n.hub.Publish(EventFromResponse(resp, n.now().UTC()))
	return resp
}
