package proto

// Intent is the coarse classification label attached to free-form user text.
type Intent string

const (
	// IntentUnknown means the classifier could not resolve the input; the
	// orchestrator routes these to the fallback responder.
	IntentUnknown Intent = "unknown"

	// IntentLiteralInput is synthesized for steps that bypass classification
	// entirely (form fields and menus). It never comes from a classifier.
	IntentLiteralInput Intent = "literal_input"

	// IntentContinue is synthesized for empty input at steps that merely
	// advance on Enter.
	IntentContinue Intent = "continue"

	// IntentPhoneNumber carries a validated, normalized phone number in its
	// "phone_number" parameter. A confidence of exactly 0 is the documented
	// validation-failed sentinel.
	IntentPhoneNumber Intent = "phone_number"

	// IntentDeviceType carries a "devicetype" parameter (laptop, phone,
	// tablet, desktop).
	IntentDeviceType Intent = "devicetype"

	// IntentDeviceTypeUpdate is a cross-cutting correction of the device
	// type outside the device-type step.
	IntentDeviceTypeUpdate Intent = "device_type"

	// IntentIssueTypeUpdate is a cross-cutting correction of the issue type
	// outside the issue-type step.
	IntentIssueTypeUpdate Intent = "issue_type"

	// IntentDetailedText marks steps whose input goes to the responder's
	// extraction contracts rather than to keyword intents.
	IntentDetailedText Intent = "detailed_text"

	IntentAffirmative Intent = "affirmative"
	IntentNegative    Intent = "negative"

	// Interrupt intents: mid-flow questions answered with canned fulfillment
	// text. An interrupt never moves the step cursor.
	IntentGreeting         Intent = "greeting"
	IntentLocationQuestion Intent = "location.question"
	IntentPricingQuestion  Intent = "pricing.question"
	IntentTimelineQuestion Intent = "timeline.question"
	IntentWarrantyQuestion Intent = "warranty.question"
	IntentHelpRequest      Intent = "help.request"
	IntentDataSafety       Intent = "data.safety"
)

// InterruptConfidenceThreshold is the minimum classifier confidence for an
// interrupt intent to be treated as an interrupt rather than noise.
const InterruptConfidenceThreshold = 0.6

// interruptIntents is the fixed set of mid-flow question intents.
var interruptIntents = map[Intent]bool{
	IntentGreeting:         true,
	IntentLocationQuestion: true,
	IntentPricingQuestion:  true,
	IntentTimelineQuestion: true,
	IntentWarrantyQuestion: true,
	IntentHelpRequest:      true,
	IntentDataSafety:       true,
}

// IsInterrupt reports whether the intent belongs to the fixed interrupt set.
func (i Intent) IsInterrupt() bool {
	return interruptIntents[i]
}

// IntentResult is the ephemeral, per-input output of the intent classifier.
type IntentResult struct {
	Intent          Intent            `json:"intent"`
	Confidence      float64           `json:"confidence"`
	Parameters      map[string]string `json:"parameters,omitempty"`
	FulfillmentText string            `json:"fulfillment_text,omitempty"`
}

// Param returns a named parameter, or "" if absent.
func (r *IntentResult) Param(key string) string {
	if r.Parameters == nil {
		return ""
	}
	return r.Parameters[key]
}

// LiteralResult returns the synthetic result used for literal-input steps.
func LiteralResult() IntentResult {
	return IntentResult{Intent: IntentLiteralInput, Confidence: 1.0}
}

// ContinueResult returns the synthetic result used for step-advance input.
func ContinueResult() IntentResult {
	return IntentResult{Intent: IntentContinue, Confidence: 1.0}
}

// UnknownResult returns an unresolved classification.
func UnknownResult() IntentResult {
	return IntentResult{Intent: IntentUnknown}
}
