package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// IntakeStats aggregates flow counters scraped into Prometheus, for the
// ops stats endpoint.
type IntakeStats struct {
	SessionsCompleted float64            `json:"sessions_completed"`
	InputsProcessed   float64            `json:"inputs_processed"`
	Reprompts         float64            `json:"reprompts"`
	InterruptsByKind  map[string]float64 `json:"interrupts_by_kind"`
	FallbackCalls     float64            `json:"fallback_calls"`
}

// QueryService reads aggregated counters back from a Prometheus server that
// scrapes this service's /metrics endpoint.
type QueryService struct {
	queryAPI v1.API
}

// NewQueryService connects to the Prometheus server at prometheusURL.
func NewQueryService(prometheusURL string) (*QueryService, error) {
	client, err := api.NewClient(api.Config{Address: prometheusURL})
	if err != nil {
		return nil, fmt.Errorf("create Prometheus client: %w", err)
	}
	return &QueryService{queryAPI: v1.NewAPI(client)}, nil
}

// Stats returns the intake counters aggregated across all instances.
func (q *QueryService) Stats(ctx context.Context) (IntakeStats, error) {
	stats := IntakeStats{InterruptsByKind: make(map[string]float64)}

	var err error
	if stats.SessionsCompleted, err = q.scalar(ctx, `sum(ctrlfix_sessions_completed_total)`); err != nil {
		return stats, err
	}
	if stats.InputsProcessed, err = q.scalar(ctx, `sum(ctrlfix_inputs_total)`); err != nil {
		return stats, err
	}
	if stats.Reprompts, err = q.scalar(ctx, `sum(ctrlfix_reprompts_total)`); err != nil {
		return stats, err
	}
	if stats.FallbackCalls, err = q.scalar(ctx, `sum(ctrlfix_fallback_calls_total)`); err != nil {
		return stats, err
	}

	byKind, err := q.vector(ctx, `sum by (intent) (ctrlfix_interrupts_total)`)
	if err != nil {
		return stats, err
	}
	for _, sample := range byKind {
		stats.InterruptsByKind[string(sample.Metric["intent"])] = float64(sample.Value)
	}
	return stats, nil
}

func (q *QueryService) scalar(ctx context.Context, query string) (float64, error) {
	samples, err := q.vector(ctx, query)
	if err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return 0, nil
	}
	return float64(samples[0].Value), nil
}

func (q *QueryService) vector(ctx context.Context, query string) (model.Vector, error) {
	result, _, err := q.queryAPI.Query(ctx, query, time.Now())
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	vec, ok := result.(model.Vector)
	if !ok {
		return nil, fmt.Errorf("query %q: unexpected result type %T", query, result)
	}
	return vec, nil
}
