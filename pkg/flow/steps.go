package flow

import (
	"context"
	"fmt"
	"strings"

	"ctrlfix/pkg/config"
	"ctrlfix/pkg/proto"
	"ctrlfix/pkg/session"
)

// stepSpec describes one step of the intake sequence: the question it asks
// and the processor that consumes the user's answer. Literal steps take the
// input verbatim and never invoke the classifier. expects lists the intents
// that go straight to the processor; anything else is offered to the
// entity-update, resume, and steer-back branches first, with the processor
// as the last resort. A nil list accepts everything.
type stepSpec struct {
	literal bool
	expects []proto.Intent
	prompt  func(o *Orchestrator, s *session.Session) string
	process func(ctx context.Context, o *Orchestrator, s *session.Session, text string, result proto.IntentResult) (string, error)
}

func (sp stepSpec) expected(i proto.Intent) bool {
	if sp.expects == nil {
		return true
	}
	for _, e := range sp.expects {
		if e == i {
			return true
		}
	}
	return false
}

var catalogue map[proto.Step]stepSpec

func init() {
	catalogue = map[proto.Step]stepSpec{
		proto.StepWelcome: {
			expects: []proto.Intent{proto.IntentContinue, proto.IntentDetailedText, proto.IntentUnknown},
			prompt:  func(*Orchestrator, *session.Session) string { return welcomeText() },
			process: processWelcome,
		},
		proto.StepPhoneNumber: {
			expects: []proto.Intent{proto.IntentPhoneNumber},
			prompt: func(*Orchestrator, *session.Session) string {
				return "Could I start with your phone number? Hong Kong numbers only, 8 digits."
			},
			process: processPhoneNumber,
		},
		proto.StepUserName: {
			literal: true,
			prompt: func(*Orchestrator, *session.Session) string {
				return "And your name, please?"
			},
			process: processUserName,
		},
		proto.StepDeviceType: {
			expects: []proto.Intent{proto.IntentDeviceType},
			prompt: func(*Orchestrator, *session.Session) string {
				return "What kind of device needs fixing? A laptop, phone, tablet, or desktop?"
			},
			process: processDeviceType,
		},
		proto.StepDeviceBrandModel: {
			expects: []proto.Intent{proto.IntentDetailedText, proto.IntentUnknown, proto.IntentDeviceType, proto.IntentContinue},
			prompt: func(_ *Orchestrator, s *session.Session) string {
				return fmt.Sprintf("What's the brand and model of your %s? For example, 'ASUS ROG G614J'.", deviceWord(s))
			},
			process: processBrandModel,
		},
		proto.StepAdditionalInfo: {
			expects: []proto.Intent{proto.IntentDetailedText, proto.IntentUnknown, proto.IntentNegative, proto.IntentContinue},
			prompt: func(*Orchestrator, *session.Session) string {
				return "Any other details about the device? Things like RAM, storage, or its age all help. Say 'no' to skip."
			},
			process: processAdditionalInfo,
		},
		proto.StepIssueType: {
			literal: true,
			prompt: func(*Orchestrator, *session.Session) string {
				return "What kind of issue are you having?\n  1. Software (slow, crashes, won't boot)\n  2. Hardware (screen, battery, physical damage)\n  3. Not sure\nReply with a number or a word."
			},
			process: processIssueType,
		},
		proto.StepProblemDescription: {
			literal: true,
			prompt: func(*Orchestrator, *session.Session) string {
				return "Please describe the problem in a sentence or two."
			},
			process: processProblemDescription,
		},
		proto.StepDiagnosticOptIn: {
			expects: []proto.Intent{proto.IntentAffirmative, proto.IntentNegative},
			prompt: func(*Orchestrator, *session.Session) string {
				return "Would you like to run a quick diagnostic chat with me before I estimate the cost? (yes/no)"
			},
			process: processDiagnosticOptIn,
		},
		proto.StepDiagnosticMode: {
			expects: []proto.Intent{proto.IntentDetailedText, proto.IntentUnknown, proto.IntentAffirmative, proto.IntentNegative, proto.IntentContinue},
			prompt: func(*Orchestrator, *session.Session) string {
				return "Tell me a bit more about what you're seeing."
			},
			process: processDiagnosticMode,
		},
		proto.StepCostEstimation: {
			prompt: func(*Orchestrator, *session.Session) string {
				return "One moment while I work out your estimate."
			},
			process: processCostEstimation,
		},
		proto.StepFinalBooking: {
			literal: true,
			prompt:  func(*Orchestrator, *session.Session) string { return bookingPrompt() },
			process: processFinalBooking,
		},
		proto.StepGoodbye: {
			literal: true,
			prompt: func(*Orchestrator, *session.Session) string {
				return "Thanks again! We'll be in touch."
			},
			process: func(context.Context, *Orchestrator, *session.Session, string, proto.IntentResult) (string, error) {
				return "Your request is already complete. Thanks again!", nil
			},
		},
	}
}

func welcomeText() string {
	return "Hi! I'm the CtrlFix repair assistant. I'll take a few details about you and your device, then give you a cost estimate and a ticket number."
}

func bookingPrompt() string {
	return "Last step! How would you like to get the device to us?\n  1. Drop it off at our shop\n  2. Book a courier pickup\nReply 1 or 2."
}

func deviceWord(s *session.Session) string {
	if s.Fields.Device.Type != "" {
		return s.Fields.Device.Type
	}
	return "device"
}

func processWelcome(_ context.Context, o *Orchestrator, s *session.Session, _ string, _ proto.IntentResult) (string, error) {
	s.Advance()
	return welcomeText() + "\n\n" + catalogue[s.Step].prompt(o, s), nil
}

// processPhoneNumber only accepts a phone_number intent with nonzero
// confidence; confidence 0 is the classifier's validation-failed sentinel and
// never writes the field.
func processPhoneNumber(_ context.Context, o *Orchestrator, s *session.Session, _ string, result proto.IntentResult) (string, error) {
	if result.Intent != proto.IntentPhoneNumber || result.Confidence == 0 || result.Param("phone_number") == "" {
		return o.reprompt(s, "That doesn't look like a valid Hong Kong number."), nil
	}
	s.Fields.PhoneNumber = result.Param("phone_number")
	s.Advance()
	return fmt.Sprintf("Got it, I have your number as %s.\n\n%s", s.Fields.PhoneNumber, catalogue[s.Step].prompt(o, s)), nil
}

func processUserName(ctx context.Context, o *Orchestrator, s *session.Session, text string, _ proto.IntentResult) (string, error) {
	res, err := o.responder.ExtractUserName(ctx, s.ID, text)
	if err != nil {
		return "", err
	}
	if !res.Fulfilled {
		return o.reprompt(s, res.Clarification), nil
	}
	s.Fields.UserName = res.Name
	s.Advance()
	return fmt.Sprintf("Nice to meet you, %s!\n\n%s", res.Name, catalogue[s.Step].prompt(o, s)), nil
}

func processDeviceType(_ context.Context, o *Orchestrator, s *session.Session, _ string, result proto.IntentResult) (string, error) {
	if result.Intent != proto.IntentDeviceType || result.Param("devicetype") == "" {
		return o.reprompt(s, "Sorry, I didn't catch the device type."), nil
	}
	s.Fields.Device.Type = result.Param("devicetype")
	s.Advance()
	return catalogue[s.Step].prompt(o, s), nil
}

func processBrandModel(ctx context.Context, o *Orchestrator, s *session.Session, text string, _ proto.IntentResult) (string, error) {
	res, err := o.responder.ExtractBrandModel(ctx, s.ID, s.Fields.Device.Type, text)
	if err != nil {
		return "", err
	}
	if !res.Fulfilled {
		return o.reprompt(s, res.Clarification), nil
	}
	s.Fields.Device.BrandModel = res.BrandModel
	s.Advance()
	return fmt.Sprintf("A %s, noted.\n\n%s", res.BrandModel, catalogue[s.Step].prompt(o, s)), nil
}

func processAdditionalInfo(ctx context.Context, o *Orchestrator, s *session.Session, text string, _ proto.IntentResult) (string, error) {
	res, err := o.responder.ExtractAdditionalInfo(ctx, s.ID, text)
	if err != nil {
		return "", err
	}
	switch {
	case res.Skipped:
		s.Advance()
		return "No problem.\n\n" + catalogue[s.Step].prompt(o, s), nil
	case res.Relevant:
		s.Fields.Device.AdditionalInfo = res.Info
		s.Advance()
		return "Thanks, that's useful.\n\n" + catalogue[s.Step].prompt(o, s), nil
	default:
		return o.reprompt(s, res.Reply), nil
	}
}

func processIssueType(_ context.Context, o *Orchestrator, s *session.Session, text string, _ proto.IntentResult) (string, error) {
	issue := parseIssueChoice(text)
	if issue == "" {
		return o.reprompt(s, "Please pick one of the options."), nil
	}
	s.Fields.IssueType = issue
	s.Advance()
	return catalogue[s.Step].prompt(o, s), nil
}

// parseIssueChoice maps a menu number, letter, or keyword to an issue type.
// Anything non-empty that matches nothing counts as "unsure"; the technician
// sorts it out from the description.
func parseIssueChoice(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case t == "":
		return ""
	case t == "1" || t == "s" || strings.Contains(t, "soft"):
		return "software"
	case t == "2" || t == "h" || strings.Contains(t, "hard"):
		return "hardware"
	default:
		return "unsure"
	}
}

func processProblemDescription(_ context.Context, o *Orchestrator, s *session.Session, text string, _ proto.IntentResult) (string, error) {
	desc := strings.TrimSpace(text)
	if desc == "" {
		return o.reprompt(s, "I need at least a short description to book the repair."), nil
	}
	s.Fields.Description = desc
	s.Advance()
	return catalogue[s.Step].prompt(o, s), nil
}

func processDiagnosticOptIn(ctx context.Context, o *Orchestrator, s *session.Session, _ string, result proto.IntentResult) (string, error) {
	switch result.Intent {
	case proto.IntentAffirmative:
		s.Fields.DiagnosticOptedIn = true
		s.DiagStart = len(s.Transcript)
		s.Advance()
		res, err := o.responder.DiagnosticTurn(ctx, s.ID, nil, s.Fields.Description)
		if err != nil {
			return "", err
		}
		return "Great, let's dig in. " + res.Reply, nil
	case proto.IntentNegative:
		s.Fields.DiagnosticOptedIn = false
		parts, err := o.responder.DetectParts(ctx, s.Fields.Device.Type, s.Fields.IssueType, s.Fields.Description)
		if err == nil {
			s.Fields.PartsNeeded = parts
		} else {
			o.logger.Warn("session %s: parts detection failed: %v", s.ID, err)
		}
		// The one forward jump in the flow: skipping the diagnostic goes
		// straight to costing.
		s.JumpTo(proto.StepCostEstimation)
		return presentCost(ctx, o, s), nil
	default:
		return o.reprompt(s, "Just a yes or no is fine."), nil
	}
}

func processDiagnosticMode(ctx context.Context, o *Orchestrator, s *session.Session, text string, _ proto.IntentResult) (string, error) {
	res, err := o.responder.DiagnosticTurn(ctx, s.ID, diagnosticHistory(s), text)
	if err != nil {
		return "", err
	}
	if !res.Done {
		return res.Reply, nil
	}
	parts, perr := o.responder.DetectParts(ctx, s.Fields.Device.Type, s.Fields.IssueType, s.Fields.Description)
	if perr == nil {
		s.Fields.PartsNeeded = parts
	} else {
		o.logger.Warn("session %s: parts detection failed: %v", s.ID, perr)
	}
	s.Advance()
	return res.Reply + "\n\n" + presentCost(ctx, o, s), nil
}

// diagnosticHistory returns the transcript recorded since the opt-in, so
// the dialogue's turn pacing never counts the intake exchange before it.
func diagnosticHistory(s *session.Session) []proto.Message {
	if s.DiagStart < 0 || s.DiagStart > len(s.Transcript) {
		return nil
	}
	return s.Transcript[s.DiagStart:]
}

func processCostEstimation(ctx context.Context, o *Orchestrator, s *session.Session, _ string, _ proto.IntentResult) (string, error) {
	return presentCost(ctx, o, s), nil
}

// presentCost computes (or reuses) the totals, moves the cursor to the
// booking step, and renders the estimate followed by the booking question.
func presentCost(ctx context.Context, o *Orchestrator, s *session.Session) string {
	o.computeCost(ctx, s)
	s.JumpTo(proto.StepFinalBooking)

	cfg := config.GetConfig()
	cur := cfg.Business.Currency
	var b strings.Builder
	fmt.Fprintf(&b, "Here's your estimate:\n")
	fmt.Fprintf(&b, "  Service fee: %.0f %s\n", s.Fields.ServiceFee, cur)
	if len(s.Fields.PartsNeeded) > 0 {
		fmt.Fprintf(&b, "  Parts (%s): %.0f %s\n", strings.Join(s.Fields.PartsNeeded, ", "), s.Fields.PartsCost, cur)
	}
	fmt.Fprintf(&b, "  Estimated total: %.0f %s\n", s.Fields.EstimatedTotal, cur)
	b.WriteString("The final price is confirmed before any work starts.\n\n")
	b.WriteString(bookingPrompt())
	return b.String()
}

func processFinalBooking(ctx context.Context, o *Orchestrator, s *session.Session, text string, _ proto.IntentResult) (string, error) {
	booking := parseBookingChoice(text)
	if booking == "" {
		return o.reprompt(s, "Please reply 1 or 2."), nil
	}
	s.Fields.BookingType = booking
	s.Fields.AppointmentStatus = "booked"
	s.Advance()
	o.finalize(ctx, s)

	cfg := config.GetConfig()
	var b strings.Builder
	fmt.Fprintf(&b, "All set, %s! Your ticket number is %s.\n", s.Fields.UserName, s.Fields.TicketID)
	if booking == "dropoff" {
		fmt.Fprintf(&b, "Drop your %s off at %s.\n", deviceWord(s), cfg.Business.DropoffAddress)
	} else {
		b.WriteString("Our courier partner will contact you to arrange the pickup.\n")
	}
	fmt.Fprintf(&b, "Questions? Call or WhatsApp %s and quote your ticket number. See you soon!", cfg.Business.MechanicPhone)
	return b.String(), nil
}

func parseBookingChoice(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case t == "1" || strings.Contains(t, "drop") || strings.Contains(t, "instant") || strings.Contains(t, "walk") || strings.Contains(t, "shop"):
		return "dropoff"
	case t == "2" || strings.Contains(t, "pick") || strings.Contains(t, "courier") || strings.Contains(t, "contact") || strings.Contains(t, "mechanic") || strings.Contains(t, "consult"):
		return "pickup"
	}
	return ""
}
