// Package intent classifies user utterances for the intake flow.
package intent

import (
	"context"

	"ctrlfix/pkg/logx"
	"ctrlfix/pkg/metrics"
	"ctrlfix/pkg/proto"
)

// Classifier maps raw user text to a typed intent result.
type Classifier interface {
	Detect(ctx context.Context, sessionID, text string) (proto.IntentResult, error)
}

// Resilient wraps a primary classifier with a deterministic fallback. Any
// primary error degrades to the fallback instead of surfacing to the user.
type Resilient struct {
	primary  Classifier
	fallback Classifier
	logger   *logx.Logger
}

// NewResilient builds the degrading classifier. primary may be nil, in which
// case every call goes straight to the fallback.
func NewResilient(primary, fallback Classifier) *Resilient {
	return &Resilient{
		primary:  primary,
		fallback: fallback,
		logger:   logx.NewLogger("intent"),
	}
}

func (r *Resilient) Detect(ctx context.Context, sessionID, text string) (proto.IntentResult, error) {
	if r.primary != nil {
		result, err := r.primary.Detect(ctx, sessionID, text)
		if err == nil {
			metrics.IntentDetections.WithLabelValues(string(result.Intent), "llm").Inc()
			return result, nil
		}
		r.logger.Warn("primary classifier failed, degrading: %v", err)
		metrics.CollaboratorErrors.WithLabelValues("classifier").Inc()
		metrics.FallbackCalls.WithLabelValues("classifier").Inc()
	}
	result, err := r.fallback.Detect(ctx, sessionID, text)
	if err != nil {
		return proto.UnknownResult(), err
	}
	metrics.IntentDetections.WithLabelValues(string(result.Intent), "keyword").Inc()
	return result, nil
}
