// Package metrics defines the Prometheus collectors for the intake service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InputsProcessed counts user turns, labelled by the step they arrived at.
	InputsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctrlfix_inputs_total",
		Help: "User inputs processed, by flow step.",
	}, []string{"step"})

	// IntentDetections counts classifier verdicts by intent and source
	// (llm or keyword).
	IntentDetections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctrlfix_intent_detections_total",
		Help: "Intent classifications, by intent and classifier source.",
	}, []string{"intent", "source"})

	// Interrupts counts answered mid-flow questions by intent.
	Interrupts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctrlfix_interrupts_total",
		Help: "Interrupt questions answered mid-flow, by intent.",
	}, []string{"intent"})

	// FallbackCalls counts degradations from an LLM collaborator to the
	// deterministic one.
	FallbackCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctrlfix_fallback_calls_total",
		Help: "Degradations to deterministic collaborators, by collaborator.",
	}, []string{"collaborator"})

	// Reprompts counts turns where the flow re-asked the same step question.
	Reprompts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctrlfix_reprompts_total",
		Help: "Re-asked step prompts, by flow step.",
	}, []string{"step"})

	// PriceLookups counts parts price lookups by outcome (live or fallback).
	PriceLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctrlfix_price_lookups_total",
		Help: "Parts price lookups, by outcome.",
	}, []string{"outcome"})

	// SessionsCompleted counts sessions that reached the goodbye step.
	SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ctrlfix_sessions_completed_total",
		Help: "Sessions that finished the full intake flow.",
	})

	// CollaboratorErrors counts failures from LLM-backed collaborators.
	CollaboratorErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ctrlfix_collaborator_errors_total",
		Help: "Errors from LLM collaborators, by collaborator.",
	}, []string{"collaborator"})

	// TurnDuration observes end-to-end processing time per user turn.
	TurnDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ctrlfix_turn_duration_seconds",
		Help:    "Time to process one user turn, by flow step.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})
)
