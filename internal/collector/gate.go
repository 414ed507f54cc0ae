package collector

import (
	"context"
	"errors"
	"net/http"

	"github.com/wonny/mag7-collector/internal/contracts"
)

// ErrRunInProgress is reported when a trigger arrives while another run holds the gate
var ErrRunInProgress = errors.New("a collection run is already in progress")

// Trigger runs one collection for a payload; Handler satisfies it
type Trigger interface {
	Handle(ctx context.Context, payload []byte) contracts.Response
}

// RunGate lets at most one run through at a time, whoever triggers it.
// A trigger arriving while the gate is held is answered with 409 at once.
// ⭐ SSOT: 동시 실행 차단은 이 게이트에서만 (HTTP, 스케줄러 공용)
type RunGate struct {
	next Trigger
	sem  chan struct{}
}

// NewRunGate wraps next so every caller shares one run slot
func NewRunGate(next Trigger) *RunGate {
	return &RunGate{next: next, sem: make(chan struct{}, 1)}
}

// Handle runs next when the gate is free, otherwise returns a 409 envelope
func (g *RunGate) Handle(ctx context.Context, payload []byte) contracts.Response {
	select {
	case g.sem <- struct{}{}:
	default:
		return contracts.Response{
			StatusCode: http.StatusConflict,
			Body:       contracts.ErrorBody{Error: ErrRunInProgress.Error()},
		}
	}
	defer func() { <-g.sem }()

	return g.next.Handle(ctx, payload)
}

// Running reports whether a run currently holds the gate
func (g *RunGate) Running() bool {
	return len(g.sem) > 0
}

// Drain waits until no run is in flight and keeps the gate closed afterwards,
// so nothing starts while the caller tears down shared clients
func (g *RunGate) Drain(ctx context.Context) error {
	select {
	case g.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
