// Package proto defines the shared flow protocol: the ordered diagnostic
// steps, intent labels, classifier results, and the response envelope
// exchanged between the orchestrator and its callers.
package proto

import "fmt"

// Step identifies one stage of the fixed diagnostic intake sequence.
// Steps are strictly ordered; the orchestrator's cursor only moves forward,
// except that it never moves at all during interrupt handling.
type Step int

const (
	StepWelcome Step = iota
	StepPhoneNumber
	StepUserName
	StepDeviceType
	StepDeviceBrandModel
	StepAdditionalInfo
	StepIssueType
	StepProblemDescription
	StepDiagnosticOptIn
	StepDiagnosticMode
	StepCostEstimation
	StepFinalBooking
	StepGoodbye

	stepCount
)

// stepNames are the human-readable labels handed to the fallback responder
// as conversation context.
var stepNames = [stepCount]string{
	StepWelcome:            "Welcome/Introduction",
	StepPhoneNumber:        "Collecting phone number",
	StepUserName:           "Collecting user's name",
	StepDeviceType:         "Collecting device type",
	StepDeviceBrandModel:   "Collecting device brand and model",
	StepAdditionalInfo:     "Collecting additional device information",
	StepIssueType:          "Identifying issue type",
	StepProblemDescription: "Collecting problem description",
	StepDiagnosticOptIn:    "Asking if user wants diagnostic session",
	StepDiagnosticMode:     "Interactive diagnostic dialogue",
	StepCostEstimation:     "Showing cost estimation",
	StepFinalBooking:       "Final booking selection",
	StepGoodbye:            "Farewell",
}

var stepIdents = [stepCount]string{
	StepWelcome:            "WELCOME",
	StepPhoneNumber:        "PHONE_NUMBER",
	StepUserName:           "USER_NAME",
	StepDeviceType:         "DEVICE_TYPE",
	StepDeviceBrandModel:   "DEVICE_BRAND_MODEL",
	StepAdditionalInfo:     "ADDITIONAL_INFO",
	StepIssueType:          "ISSUE_TYPE",
	StepProblemDescription: "PROBLEM_DESCRIPTION",
	StepDiagnosticOptIn:    "DIAGNOSTIC_OPTIN",
	StepDiagnosticMode:     "DIAGNOSTIC_MODE",
	StepCostEstimation:     "COST_ESTIMATION",
	StepFinalBooking:       "FINAL_BOOKING",
	StepGoodbye:            "GOODBYE",
}

// String returns the step's stable identifier (used in logs and persistence).
func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("STEP(%d)", int(s))
	}
	return stepIdents[s]
}

// Label returns the human-readable description of the step.
func (s Step) Label() string {
	if !s.Valid() {
		return "Unknown step"
	}
	return stepNames[s]
}

// Valid reports whether s is one of the thirteen defined steps.
func (s Step) Valid() bool {
	return s >= StepWelcome && s < stepCount
}

// Next returns the step that follows s. Goodbye is terminal and returns
// itself.
func (s Step) Next() Step {
	if s >= StepGoodbye {
		return StepGoodbye
	}
	return s + 1
}

// Terminal reports whether the flow is finished at this step.
func (s Step) Terminal() bool {
	return s == StepGoodbye
}

// AllSteps returns every step in flow order.
func AllSteps() []Step {
	steps := make([]Step, 0, int(stepCount))
	for s := StepWelcome; s < stepCount; s++ {
		steps = append(steps, s)
	}
	return steps
}
