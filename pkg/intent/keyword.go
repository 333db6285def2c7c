package intent

import (
	"context"
	"fmt"
	"strings"

	"ctrlfix/pkg/config"
	"ctrlfix/pkg/proto"
)

// KeywordClassifier is the deterministic classifier. It recognizes phone
// numbers, device types, yes/no answers, and the interrupt question set
// without any model call, so it doubles as the offline fallback.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var affirmativeWords = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "yup": true,
	"sure": true, "ok": true, "okay": true, "y": true,
	"please": true, "affirmative": true,
}

var negativeWords = map[string]bool{
	"no": true, "skip": true, "none": true, "nope": true,
	"n": true, "nah": true, "na": true, "naw": true,
}

var deviceTypeWords = map[string]string{
	"laptop":     "laptop",
	"notebook":   "laptop",
	"macbook":    "laptop",
	"phone":      "phone",
	"smartphone": "phone",
	"iphone":     "phone",
	"mobile":     "phone",
	"tablet":     "tablet",
	"ipad":       "tablet",
	"desktop":    "desktop",
	"pc":         "desktop",
	"computer":   "desktop",
}

type interruptRule struct {
	intent   proto.Intent
	keywords []string
}

// Ordering matters: more specific question patterns are checked before the
// greeting catch-all.
var interruptRules = []interruptRule{
	{proto.IntentLocationQuestion, []string{"where", "location", "address", "drop off", "drop-off", "dropoff"}},
	{proto.IntentPricingQuestion, []string{"how much", "price", "cost", "fee", "expensive", "charge"}},
	{proto.IntentTimelineQuestion, []string{"how long", "how many days", "when will", "turnaround", "timeline"}},
	{proto.IntentWarrantyQuestion, []string{"warranty", "guarantee", "guaranteed"}},
	{proto.IntentDataSafety, []string{"my data", "my files", "privacy", "data safe", "wipe", "personal information"}},
	{proto.IntentHelpRequest, []string{"help", "what can you do", "how does this work", "confused"}},
	{proto.IntentGreeting, []string{"hello", "hi there", "hey", "good morning", "good afternoon", "good evening"}},
}

// Detect implements Classifier.
func (k *KeywordClassifier) Detect(_ context.Context, _ string, text string) (proto.IntentResult, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return proto.ContinueResult(), nil
	}

	// Phone-like input short-circuits everything. A confidence of exactly 0
	// is the validation-failed sentinel: the input was clearly a phone
	// attempt but did not normalize.
	if formatted, ok := NormalizePhone(text); ok {
		return proto.IntentResult{
			Intent:          proto.IntentPhoneNumber,
			Confidence:      1.0,
			Parameters:      map[string]string{"phone_number": formatted},
			FulfillmentText: fmt.Sprintf("Got it, I have your number as %s.", formatted),
		}, nil
	}
	if LooksLikePhone(text) {
		return proto.IntentResult{Intent: proto.IntentPhoneNumber, Confidence: 0.0}, nil
	}

	for _, rule := range interruptRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return proto.IntentResult{
					Intent:          rule.intent,
					Confidence:      0.9,
					FulfillmentText: CannedAnswer(rule.intent),
				}, nil
			}
		}
	}

	words := strings.Fields(lower)
	if len(words) > 0 {
		if affirmativeWords[strings.Trim(words[0], ".,!")] {
			return proto.IntentResult{Intent: proto.IntentAffirmative, Confidence: 0.9}, nil
		}
		if negativeWords[strings.Trim(words[0], ".,!")] {
			return proto.IntentResult{Intent: proto.IntentNegative, Confidence: 0.9}, nil
		}
	}

	for _, w := range words {
		if dt, ok := deviceTypeWords[strings.Trim(w, ".,!")]; ok {
			return proto.IntentResult{
				Intent:     proto.IntentDeviceType,
				Confidence: 0.85,
				Parameters: map[string]string{"devicetype": dt},
			}, nil
		}
	}

	if len(words) >= 4 {
		return proto.IntentResult{Intent: proto.IntentDetailedText, Confidence: 0.5}, nil
	}
	return proto.UnknownResult(), nil
}

// CannedAnswer returns the stock reply for an interrupt intent, built from
// the configured business details.
func CannedAnswer(in proto.Intent) string {
	cfg := config.GetConfig()
	biz := cfg.Business
	switch in {
	case proto.IntentGreeting:
		return "Hello again! Let's keep going with your repair request."
	case proto.IntentLocationQuestion:
		return fmt.Sprintf("You can drop your device off at %s. Call or WhatsApp %s if you have trouble finding us.", biz.DropoffAddress, biz.MechanicPhone)
	case proto.IntentPricingQuestion:
		return fmt.Sprintf("Our base service fee is %.0f %s, plus the cost of any replacement parts. You'll get a full estimate before we start any work.", biz.BaseServiceFee, biz.Currency)
	case proto.IntentTimelineQuestion:
		return "Most repairs are done within 3 to 5 business days. We'll message you as soon as yours is ready."
	case proto.IntentWarrantyQuestion:
		return "All our repairs come with a 90-day warranty covering both parts and labour."
	case proto.IntentHelpRequest:
		return "I'll walk you through booking a repair step by step. I just need a few details about you and your device, then I'll give you a cost estimate and a ticket number."
	case proto.IntentDataSafety:
		return "Your data stays on your device. We never copy or browse personal files, and we recommend a backup before any repair just in case."
	default:
		return ""
	}
}
