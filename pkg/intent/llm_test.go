package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrlfix/pkg/llm"
	"ctrlfix/pkg/proto"
)

func TestLLMClassifierParsesReply(t *testing.T) {
	mock := llm.NewMockClient()
	mock.QueueResponse(`{"intent": "devicetype", "confidence": 0.92, "parameters": {"devicetype": "laptop"}}`)

	c := NewLLMClassifier(mock)
	res, err := c.Detect(context.Background(), "s1", "it's my gaming laptop")
	require.NoError(t, err)
	assert.Equal(t, proto.IntentDeviceType, res.Intent)
	assert.Equal(t, 0.92, res.Confidence)
	assert.Equal(t, "laptop", res.Param("devicetype"))
	assert.Len(t, mock.Calls(), 1)
}

func TestLLMClassifierFillsCannedInterruptAnswer(t *testing.T) {
	mock := llm.NewMockClient()
	mock.QueueResponse(`{"intent": "warranty.question", "confidence": 0.88}`)

	c := NewLLMClassifier(mock)
	res, err := c.Detect(context.Background(), "s1", "do repairs come with a guarantee?")
	require.NoError(t, err)
	assert.Equal(t, proto.IntentWarrantyQuestion, res.Intent)
	assert.Contains(t, res.FulfillmentText, "90-day")
}

func TestLLMClassifierValidatesPhoneLocally(t *testing.T) {
	mock := llm.NewMockClient()
	c := NewLLMClassifier(mock)

	res, err := c.Detect(context.Background(), "s1", "852 1234 5678")
	require.NoError(t, err)
	assert.Equal(t, proto.IntentPhoneNumber, res.Intent)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, "+852 1234 5678", res.Param("phone_number"))
	assert.Empty(t, mock.Calls(), "phone validation must not hit the model")

	res, err = c.Detect(context.Background(), "s1", "9999")
	require.NoError(t, err)
	assert.Equal(t, proto.IntentPhoneNumber, res.Intent)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Empty(t, mock.Calls(), "failed validation must not hit the model either")
}

func TestLLMClassifierErrorsSurface(t *testing.T) {
	mock := llm.NewMockClient()
	mock.QueueError(errors.New("quota exceeded"))
	c := NewLLMClassifier(mock)

	_, err := c.Detect(context.Background(), "s1", "hello")
	assert.Error(t, err)

	mock.QueueResponse("I am not JSON")
	_, err = c.Detect(context.Background(), "s1", "hello")
	assert.Error(t, err)
}
