package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepOrdering(t *testing.T) {
	steps := AllSteps()
	assert.Len(t, steps, 13)
	assert.Equal(t, StepWelcome, steps[0])
	assert.Equal(t, StepGoodbye, steps[len(steps)-1])

	for i := 0; i < len(steps)-1; i++ {
		assert.Equal(t, steps[i+1], steps[i].Next())
	}
	assert.Equal(t, StepGoodbye, StepGoodbye.Next())
	assert.True(t, StepGoodbye.Terminal())
	assert.False(t, StepCostEstimation.Terminal())
}

func TestStepStrings(t *testing.T) {
	assert.Equal(t, "DEVICE_BRAND_MODEL", StepDeviceBrandModel.String())
	assert.Equal(t, "Collecting device brand and model", StepDeviceBrandModel.Label())
	assert.False(t, Step(99).Valid())
	assert.Equal(t, "STEP(99)", Step(99).String())
}

func TestInterruptSet(t *testing.T) {
	for _, in := range []Intent{
		IntentGreeting, IntentLocationQuestion, IntentPricingQuestion,
		IntentTimelineQuestion, IntentWarrantyQuestion, IntentHelpRequest,
		IntentDataSafety,
	} {
		assert.True(t, in.IsInterrupt(), "%s", in)
	}
	for _, in := range []Intent{
		IntentUnknown, IntentPhoneNumber, IntentAffirmative,
		IntentNegative, IntentDeviceType, IntentLiteralInput,
	} {
		assert.False(t, in.IsInterrupt(), "%s", in)
	}
}

func TestEnvelopes(t *testing.T) {
	r := Reply("next question")
	assert.True(t, r.NeedsInput)
	assert.False(t, r.Completed)

	d := Done("bye")
	assert.False(t, d.NeedsInput)
	assert.True(t, d.Completed)
}

func TestIntentResultParam(t *testing.T) {
	r := IntentResult{Parameters: map[string]string{"devicetype": "laptop"}}
	assert.Equal(t, "laptop", r.Param("devicetype"))
	assert.Equal(t, "", r.Param("missing"))

	empty := IntentResult{}
	assert.Equal(t, "", empty.Param("devicetype"))
}
