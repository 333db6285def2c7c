package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrlfix/pkg/proto"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12345678", "+852 1234 5678", true},
		{"+852 1234 5678", "+852 1234 5678", true},
		{"852-9876-5432", "+852 9876 5432", true},
		{"my number is 5555 4444", "+852 5555 4444", true},
		{"85212345678", "+852 1234 5678", true},
		{"1234567", "", false},
		{"123456789", "", false},
		{"", "", false},
		{"call me maybe", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizePhone(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestPhoneDetection(t *testing.T) {
	k := NewKeywordClassifier()
	res, err := k.Detect(context.Background(), "s1", "+852 1234 5678")
	require.NoError(t, err)
	assert.Equal(t, proto.IntentPhoneNumber, res.Intent)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, "+852 1234 5678", res.Param("phone_number"))
}

// Zero confidence on a phone_number result is the validation-failed
// sentinel: phone-shaped input that didn't normalize.
func TestInvalidPhoneUsesZeroConfidenceSentinel(t *testing.T) {
	k := NewKeywordClassifier()
	res, err := k.Detect(context.Background(), "s1", "123456")
	require.NoError(t, err)
	assert.Equal(t, proto.IntentPhoneNumber, res.Intent)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Empty(t, res.Param("phone_number"))
}

func TestInterruptDetection(t *testing.T) {
	k := NewKeywordClassifier()
	tests := []struct {
		text string
		want proto.Intent
	}{
		{"where is your shop?", proto.IntentLocationQuestion},
		{"how much does a repair cost?", proto.IntentPricingQuestion},
		{"how long will it take?", proto.IntentTimelineQuestion},
		{"is there a warranty on this?", proto.IntentWarrantyQuestion},
		{"will my data be safe?", proto.IntentDataSafety},
		{"help", proto.IntentHelpRequest},
		{"hello", proto.IntentGreeting},
	}
	for _, tt := range tests {
		res, err := k.Detect(context.Background(), "s1", tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Intent, "text %q", tt.text)
		assert.True(t, res.Intent.IsInterrupt())
		assert.Greater(t, res.Confidence, proto.InterruptConfidenceThreshold)
		assert.NotEmpty(t, res.FulfillmentText)
	}
}

func TestYesNoAndDeviceTypes(t *testing.T) {
	k := NewKeywordClassifier()

	res, _ := k.Detect(context.Background(), "s1", "yes please")
	assert.Equal(t, proto.IntentAffirmative, res.Intent)

	res, _ = k.Detect(context.Background(), "s1", "nope")
	assert.Equal(t, proto.IntentNegative, res.Intent)

	res, _ = k.Detect(context.Background(), "s1", "it's a laptop")
	assert.Equal(t, proto.IntentDeviceType, res.Intent)
	assert.Equal(t, "laptop", res.Param("devicetype"))

	res, _ = k.Detect(context.Background(), "s1", "my ipad")
	assert.Equal(t, "tablet", res.Param("devicetype"))
}

func TestUnresolvedInput(t *testing.T) {
	k := NewKeywordClassifier()
	res, err := k.Detect(context.Background(), "s1", "blargh")
	require.NoError(t, err)
	assert.Equal(t, proto.IntentUnknown, res.Intent)

	res, _ = k.Detect(context.Background(), "s1", "")
	assert.Equal(t, proto.IntentContinue, res.Intent)
}

// failingClassifier always errors, to exercise degradation.
type failingClassifier struct{}

func (failingClassifier) Detect(context.Context, string, string) (proto.IntentResult, error) {
	return proto.UnknownResult(), assert.AnError
}

func TestResilientDegradesToFallback(t *testing.T) {
	r := NewResilient(failingClassifier{}, NewKeywordClassifier())
	res, err := r.Detect(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, proto.IntentGreeting, res.Intent)
}
