// Package flow drives the fixed diagnostic intake sequence. The orchestrator
// owns the step cursor for every session and is the only place that moves it.
package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ctrlfix/pkg/config"
	"ctrlfix/pkg/intent"
	"ctrlfix/pkg/logx"
	"ctrlfix/pkg/metrics"
	"ctrlfix/pkg/pricing"
	"ctrlfix/pkg/proto"
	"ctrlfix/pkg/responder"
	"ctrlfix/pkg/session"
	"ctrlfix/pkg/ticket"
)

// Orchestrator routes each user input through interrupt detection and the
// current step's processor.
type Orchestrator struct {
	registry   *session.Registry
	classifier intent.Classifier
	responder  responder.Responder
	pricer     pricing.Oracle
	sink       ticket.Sink
	logger     *logx.Logger
}

// New wires the orchestrator. sink may be nil, in which case completed
// tickets are only logged.
func New(registry *session.Registry, classifier intent.Classifier, rsp responder.Responder, pricer pricing.Oracle, sink ticket.Sink) *Orchestrator {
	return &Orchestrator{
		registry:   registry,
		classifier: classifier,
		responder:  rsp,
		pricer:     pricer,
		sink:       sink,
		logger:     logx.NewLogger("flow"),
	}
}

// Start opens a new session. The conversation proper begins with the first
// ProcessInput call; an empty first input is the conventional kick-off.
func (o *Orchestrator) Start() *session.Session {
	s := o.registry.Create()
	o.logger.Info("session %s started, ticket %s", s.ID, s.Fields.TicketID)
	return s
}

// ProcessInput handles one user turn for the session and returns the reply
// envelope. Unknown session IDs return an expired-session envelope.
func (o *Orchestrator) ProcessInput(ctx context.Context, sessionID, text string) (env proto.ResponseEnvelope) {
	start := time.Now()
	s := o.registry.Get(sessionID)
	if s == nil {
		return proto.Done("This session has expired. Please start a new repair request.")
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("session %s: panic at %s: %v", s.ID, s.Step, r)
			env = proto.ResponseEnvelope{
				Message:    "Sorry, something went wrong on our side. Please try again in a moment.",
				NeedsInput: false,
			}
		}
		metrics.TurnDuration.WithLabelValues(s.Step.String()).Observe(time.Since(start).Seconds())
	}()

	metrics.InputsProcessed.WithLabelValues(s.Step.String()).Inc()

	if s.Step.Terminal() {
		return proto.Done("Your request is already complete. Thanks again!")
	}

	s.Append(proto.RoleUser, text)

	spec := catalogue[s.Step]
	result := proto.LiteralResult()
	if !spec.literal {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || (s.Step == proto.StepCostEstimation && strings.EqualFold(trimmed, "continue")) {
			// Blank input never reaches the classifier; it either advances
			// the step or re-prompts. "continue" at the costing step is the
			// conventional advance token.
			result = proto.ContinueResult()
		} else {
			var err error
			result, err = o.classifier.Detect(ctx, s.ID, text)
			if err != nil {
				o.logger.Warn("session %s: classification failed: %v", s.ID, err)
				result = proto.UnknownResult()
			}
		}
		if reply, handled := o.handleInterrupt(s, result); handled {
			s.Append(proto.RoleBot, reply)
			return proto.Reply(reply)
		}
		if !spec.expected(result.Intent) {
			if reply, handled := o.handleEntityUpdate(s, result); handled {
				s.Append(proto.RoleBot, reply)
				return proto.Reply(reply)
			}
			if reply, handled := o.handleResume(s, result); handled {
				s.Append(proto.RoleBot, reply)
				return proto.Reply(reply)
			}
			if reply, handled := o.handleUnknown(ctx, s, text, result); handled {
				s.Append(proto.RoleBot, reply)
				return proto.Reply(reply)
			}
		}
	}

	// Any substantive input that reaches the processor counts as picking the
	// flow back up.
	if !spec.literal && result.Intent != proto.IntentContinue {
		s.Interrupted = false
	}

	reply, err := spec.process(ctx, o, s, text, result)
	if err != nil {
		o.logger.Error("session %s: step %s processor failed: %v", s.ID, s.Step, err)
		reply = "Sorry, I hit a snag there. " + spec.prompt(o, s)
	}
	s.Append(proto.RoleBot, reply)

	if s.Step.Terminal() {
		metrics.SessionsCompleted.Inc()
		return proto.Done(reply)
	}
	return proto.Reply(reply)
}

// handleInterrupt answers a mid-flow question without moving the cursor. The
// confidence gate keeps weak classifications on the normal path.
func (o *Orchestrator) handleInterrupt(s *session.Session, result proto.IntentResult) (string, bool) {
	if !result.Intent.IsInterrupt() || result.Confidence <= proto.InterruptConfidenceThreshold {
		return "", false
	}
	metrics.Interrupts.WithLabelValues(string(result.Intent)).Inc()

	// Canned answers resolve the question in place, so the interrupted
	// flag stays down; only free-form asides raise it.
	answer := result.FulfillmentText
	if answer == "" {
		answer = intent.CannedAnswer(result.Intent)
	}
	o.logger.Debug("session %s: interrupt %s at %s", s.ID, result.Intent, s.Step)
	return fmt.Sprintf("%s\n\nNow, back to where we were. %s", answer, catalogue[s.Step].prompt(o, s)), true
}

// handleEntityUpdate applies a mid-flow correction of the phone number,
// device type, or issue type, then re-asks the current question.
func (o *Orchestrator) handleEntityUpdate(s *session.Session, result proto.IntentResult) (string, bool) {
	switch result.Intent {
	case proto.IntentPhoneNumber:
		p := result.Param("phone_number")
		if p == "" || result.Confidence == 0 || s.Step <= proto.StepPhoneNumber {
			return "", false
		}
		s.Fields.PhoneNumber = p
		return fmt.Sprintf("Noted, I've updated your number to %s. %s", p, catalogue[s.Step].prompt(o, s)), true
	case proto.IntentDeviceTypeUpdate:
		dt := result.Param("devicetype")
		if dt == "" || s.Step <= proto.StepDeviceType {
			return "", false
		}
		s.Fields.Device.Type = dt
		return fmt.Sprintf("Noted, I've updated the device to a %s. %s", dt, catalogue[s.Step].prompt(o, s)), true
	case proto.IntentIssueTypeUpdate:
		it := result.Param("issue_type")
		if it == "" || s.Step <= proto.StepIssueType {
			return "", false
		}
		s.Fields.IssueType = it
		return fmt.Sprintf("Noted, I've changed the issue type to %s. %s", it, catalogue[s.Step].prompt(o, s)), true
	}
	return "", false
}

// handleResume consumes the yes/no that follows a steered-back aside. An
// affirmative re-renders the pending question; a declination acknowledges
// without repeating it. Either way the interrupted flag comes down.
func (o *Orchestrator) handleResume(s *session.Session, result proto.IntentResult) (string, bool) {
	if !s.Interrupted {
		return "", false
	}
	switch result.Intent {
	case proto.IntentAffirmative:
		s.Interrupted = false
		return catalogue[s.Step].prompt(o, s), true
	case proto.IntentNegative:
		s.Interrupted = false
		return "No problem, take your time.", true
	}
	return "", false
}

// handleUnknown is the last resort for input the step can't use: the
// responder sees the full message log, acknowledges the aside, and steers
// back. The cursor stays put and the interrupted flag goes up so a bare
// "yes" can re-surface the question.
func (o *Orchestrator) handleUnknown(ctx context.Context, s *session.Session, text string, result proto.IntentResult) (string, bool) {
	if result.Intent != proto.IntentUnknown || strings.TrimSpace(text) == "" {
		return "", false
	}
	s.Interrupted = true
	res, err := o.responder.Fallback(ctx, s.ID, s.Step.Label(), s.Transcript, text)
	if err != nil {
		o.logger.Warn("session %s: fallback responder failed: %v", s.ID, err)
		res = responder.FallbackResult{Reply: "Sorry, I didn't quite get that."}
	}
	o.mergeEntities(s, res.Entities)
	return fmt.Sprintf("%s\n\n%s", res.Reply, catalogue[s.Step].prompt(o, s)), true
}

// mergeEntities folds corrections the responder spotted inside an aside
// into the session. Phone numbers only land after local validation.
func (o *Orchestrator) mergeEntities(s *session.Session, entities map[string]string) {
	for key, val := range entities {
		val = strings.TrimSpace(val)
		if val == "" {
			continue
		}
		switch key {
		case "phone_number":
			if formatted, ok := intent.NormalizePhone(val); ok {
				s.Fields.PhoneNumber = formatted
				o.logger.Debug("session %s: phone corrected inside an aside", s.ID)
			}
		case "issue_description":
			s.Fields.Description = val
		}
	}
}

// reprompt counts a failed turn and re-asks the current step question.
func (o *Orchestrator) reprompt(s *session.Session, lead string) string {
	metrics.Reprompts.WithLabelValues(s.Step.String()).Inc()
	if lead == "" {
		return catalogue[s.Step].prompt(o, s)
	}
	return lead + " " + catalogue[s.Step].prompt(o, s)
}

// computeCost fills in the fee, parts cost, and total. Totals are computed
// once per session; interrupt re-entries reuse the cached figures.
func (o *Orchestrator) computeCost(ctx context.Context, s *session.Session) {
	if s.CostCached {
		return
	}
	cfg := config.GetConfig()
	s.Fields.ServiceFee = cfg.Business.BaseServiceFee

	var partsTotal float64
	for _, part := range s.Fields.PartsNeeded {
		price, err := o.pricer.PriceFor(ctx, s.Fields.Device.Type, s.Fields.Device.BrandModel, part)
		if err != nil {
			price = pricing.FallbackPrice(part)
		}
		partsTotal += price
	}
	s.Fields.PartsCost = partsTotal
	s.Fields.EstimatedTotal = s.Fields.ServiceFee + partsTotal
	s.CostCached = true
}

// finalize persists the ticket exactly once.
func (o *Orchestrator) finalize(ctx context.Context, s *session.Session) {
	if s.Finalized {
		return
	}
	s.Finalized = true
	t := ticket.FromSession(s.Fields)
	if o.sink == nil {
		o.logger.Info("session %s: ticket %s completed (no sink configured)", s.ID, t.TicketID)
		return
	}
	if err := o.sink.Save(ctx, t); err != nil {
		o.logger.Error("session %s: saving ticket %s failed: %v", s.ID, t.TicketID, err)
		return
	}
	o.logger.Info("session %s: ticket %s saved", s.ID, t.TicketID)
}
