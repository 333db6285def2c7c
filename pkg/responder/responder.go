// Package responder generates conversational replies and extracts structured
// fields from free-form user text.
package responder

import (
	"context"

	"ctrlfix/pkg/logx"
	"ctrlfix/pkg/metrics"
	"ctrlfix/pkg/proto"
)

// NameResult is the outcome of user-name extraction.
type NameResult struct {
	Name          string
	Fulfilled     bool
	Clarification string
}

// BrandModelResult is the outcome of brand/model extraction.
type BrandModelResult struct {
	BrandModel    string
	Fulfilled     bool
	Clarification string
}

// InfoResult is the outcome of the additional-info turn. Exactly one of
// Relevant or Skipped is set when the turn succeeds; otherwise Reply holds a
// light deflection asking the user to stay on topic.
type InfoResult struct {
	Info     string
	Relevant bool
	Skipped  bool
	Reply    string
}

// DiagnosticResult is one turn of the interactive diagnostic dialogue.
type DiagnosticResult struct {
	Reply string
	Done  bool
}

// FallbackResult is the steer-back reply for input the current step can't
// use, plus any intake fields the responder recognized inside the aside
// (keys "phone_number", "issue_description"). Entities are raw; the caller
// validates before storing.
type FallbackResult struct {
	Reply    string
	Entities map[string]string
}

// Responder is the reply-generation collaborator for the intake flow.
type Responder interface {
	ExtractUserName(ctx context.Context, sessionID, text string) (NameResult, error)
	ExtractBrandModel(ctx context.Context, sessionID, deviceType, text string) (BrandModelResult, error)
	ExtractAdditionalInfo(ctx context.Context, sessionID, text string) (InfoResult, error)
	DetectParts(ctx context.Context, deviceType, issueType, description string) ([]string, error)
	DiagnosticTurn(ctx context.Context, sessionID string, history []proto.Message, text string) (DiagnosticResult, error)
	Fallback(ctx context.Context, sessionID, stepLabel string, history []proto.Message, text string) (FallbackResult, error)
}

// Resilient wraps an LLM-backed responder with the deterministic one. Errors
// from the primary degrade silently to the heuristic path.
type Resilient struct {
	primary  Responder
	fallback Responder
	logger   *logx.Logger
}

// NewResilient builds the degrading responder. primary may be nil.
func NewResilient(primary, fallback Responder) *Resilient {
	return &Resilient{
		primary:  primary,
		fallback: fallback,
		logger:   logx.NewLogger("responder"),
	}
}

func (r *Resilient) degrade(op string, err error) {
	r.logger.Warn("%s failed on primary responder, degrading: %v", op, err)
	metrics.CollaboratorErrors.WithLabelValues("responder").Inc()
	metrics.FallbackCalls.WithLabelValues("responder").Inc()
}

func (r *Resilient) ExtractUserName(ctx context.Context, sessionID, text string) (NameResult, error) {
	if r.primary != nil {
		res, err := r.primary.ExtractUserName(ctx, sessionID, text)
		if err == nil {
			return res, nil
		}
		r.degrade("ExtractUserName", err)
	}
	return r.fallback.ExtractUserName(ctx, sessionID, text)
}

func (r *Resilient) ExtractBrandModel(ctx context.Context, sessionID, deviceType, text string) (BrandModelResult, error) {
	if r.primary != nil {
		res, err := r.primary.ExtractBrandModel(ctx, sessionID, deviceType, text)
		if err == nil {
			return res, nil
		}
		r.degrade("ExtractBrandModel", err)
	}
	return r.fallback.ExtractBrandModel(ctx, sessionID, deviceType, text)
}

func (r *Resilient) ExtractAdditionalInfo(ctx context.Context, sessionID, text string) (InfoResult, error) {
	if r.primary != nil {
		res, err := r.primary.ExtractAdditionalInfo(ctx, sessionID, text)
		if err == nil {
			return res, nil
		}
		r.degrade("ExtractAdditionalInfo", err)
	}
	return r.fallback.ExtractAdditionalInfo(ctx, sessionID, text)
}

func (r *Resilient) DetectParts(ctx context.Context, deviceType, issueType, description string) ([]string, error) {
	if r.primary != nil {
		parts, err := r.primary.DetectParts(ctx, deviceType, issueType, description)
		if err == nil {
			return parts, nil
		}
		r.degrade("DetectParts", err)
	}
	return r.fallback.DetectParts(ctx, deviceType, issueType, description)
}

func (r *Resilient) DiagnosticTurn(ctx context.Context, sessionID string, history []proto.Message, text string) (DiagnosticResult, error) {
	if r.primary != nil {
		res, err := r.primary.DiagnosticTurn(ctx, sessionID, history, text)
		if err == nil {
			return res, nil
		}
		r.degrade("DiagnosticTurn", err)
	}
	return r.fallback.DiagnosticTurn(ctx, sessionID, history, text)
}

func (r *Resilient) Fallback(ctx context.Context, sessionID, stepLabel string, history []proto.Message, text string) (FallbackResult, error) {
	if r.primary != nil {
		res, err := r.primary.Fallback(ctx, sessionID, stepLabel, history, text)
		if err == nil {
			return res, nil
		}
		r.degrade("Fallback", err)
	}
	return r.fallback.Fallback(ctx, sessionID, stepLabel, history, text)
}
