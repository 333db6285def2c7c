package responder

import (
	"context"
	"fmt"
	"strings"

	"ctrlfix/pkg/proto"
)

// Heuristic is the deterministic responder. It needs no network and backs
// every LLM-based responder as the degradation target.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

var skipWords = map[string]bool{
	"no": true, "skip": true, "none": true, "nope": true,
	"n": true, "nah": true, "na": true, "naw": true,
}

var knownBrands = []string{
	"asus", "acer", "dell", "hp", "lenovo", "apple", "macbook", "imac",
	"samsung", "xiaomi", "huawei", "msi", "razer", "microsoft", "surface",
	"sony", "lg", "google", "pixel", "oneplus", "oppo", "vivo", "nokia",
	"motorola", "alienware", "gigabyte", "toshiba", "fujitsu", "iphone",
	"ipad", "honor", "realme",
}

var relevantInfoWords = []string{
	"gb", "tb", "ram", "ssd", "hdd", "storage", "memory", "cpu", "gpu",
	"processor", "intel", "amd", "ryzen", "core", "i3", "i5", "i7", "i9",
	"battery", "screen", "inch", "display", "year", "warranty", "model",
	"serial", "windows", "mac", "macos", "linux", "android", "ios",
	"keyboard", "touchscreen", "graphics",
}

var offTopicReplies = []string{
	"Ha, that's a fun one, but it won't help me fix your device! Any hardware details worth noting, or just say 'no' to move on.",
	"I appreciate the creativity, but let's stick to your device. Specs like RAM or storage help, or say 'skip'.",
	"That doesn't sound like a device spec to me! Share anything like memory, storage, or age of the device, or say 'no'.",
}

// ExtractUserName accepts short alphabetic inputs as names, stripping common
// lead-ins like "my name is".
func (h *Heuristic) ExtractUserName(_ context.Context, _ string, text string) (NameResult, error) {
	cleaned := strings.TrimSpace(text)
	lower := strings.ToLower(cleaned)
	for _, prefix := range []string{"my name is ", "i'm ", "i am ", "call me ", "this is ", "it's "} {
		if strings.HasPrefix(lower, prefix) {
			cleaned = strings.TrimSpace(cleaned[len(prefix):])
			break
		}
	}
	words := strings.Fields(cleaned)
	if len(words) == 0 || len(words) > 4 || strings.ContainsAny(cleaned, "0123456789") {
		return NameResult{
			Clarification: "Sorry, I didn't catch your name. Could you tell me just your name?",
		}, nil
	}
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 1 {
		return NameResult{
			Name:          words[0],
			Clarification: fmt.Sprintf("Thanks, %s! Could I get your last name as well?", words[0]),
		}, nil
	}
	return NameResult{Name: strings.Join(words, " "), Fulfilled: true}, nil
}

// ExtractBrandModel accepts input mentioning a known manufacturer.
func (h *Heuristic) ExtractBrandModel(_ context.Context, _ string, deviceType, text string) (BrandModelResult, error) {
	cleaned := strings.TrimSpace(text)
	lower := strings.ToLower(cleaned)
	for _, brand := range knownBrands {
		if strings.Contains(lower, brand) {
			return BrandModelResult{BrandModel: cleaned, Fulfilled: true}, nil
		}
	}
	return BrandModelResult{
		Clarification: fmt.Sprintf("I didn't recognize that as a %s brand and model. Could you give me the manufacturer and model, like 'ASUS ROG G614J'?", deviceType),
	}, nil
}

// ExtractAdditionalInfo accepts spec-like text, honours the skip words, and
// deflects everything else.
func (h *Heuristic) ExtractAdditionalInfo(_ context.Context, _ string, text string) (InfoResult, error) {
	cleaned := strings.TrimSpace(text)
	lower := strings.ToLower(cleaned)
	if skipWords[strings.Trim(lower, ".,!")] {
		return InfoResult{Skipped: true}, nil
	}
	for _, w := range strings.Fields(lower) {
		for _, kw := range relevantInfoWords {
			if strings.Trim(w, ".,!") == kw {
				return InfoResult{Info: cleaned, Relevant: true}, nil
			}
		}
	}
	reply := offTopicReplies[len(cleaned)%len(offTopicReplies)]
	return InfoResult{Reply: reply}, nil
}

// DetectParts infers likely replacement parts from the problem description.
// Part names are "<devicetype>_<part>" to line up with the price table.
func (h *Heuristic) DetectParts(_ context.Context, deviceType, issueType, description string) ([]string, error) {
	device := strings.ToLower(strings.TrimSpace(deviceType))
	if device == "" {
		device = "generic"
	}
	lower := strings.ToLower(description)

	var parts []string
	add := func(part string) {
		name := device + "_" + part
		for _, p := range parts {
			if p == name {
				return
			}
		}
		parts = append(parts, name)
	}

	if containsAny(lower, "screen", "display", "crack", "lcd", "shatter", "glass") {
		add("screen")
	}
	if containsAny(lower, "battery", "charge", "charging", "drain", "power") {
		add("battery")
	}
	if containsAny(lower, "keyboard", "keys", "key ") {
		add("keyboard")
	}
	if containsAny(lower, "port", "usb", "socket", "jack") {
		add("port")
	}
	if len(parts) == 0 && issueType == "hardware" {
		parts = append(parts, "generic_part")
	}
	return parts, nil
}

// DiagnosticTurn runs a short scripted triage. The bot asks two follow-up
// questions, then wraps up; a skip word ends the dialogue immediately.
func (h *Heuristic) DiagnosticTurn(_ context.Context, _ string, history []proto.Message, text string) (DiagnosticResult, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if skipWords[strings.Trim(lower, ".,!")] {
		return DiagnosticResult{
			Reply: "No problem, we'll leave the detailed checks to the technician.",
			Done:  true,
		}, nil
	}
	botTurns := 0
	for _, m := range history {
		if m.Role == proto.RoleBot {
			botTurns++
		}
	}
	switch botTurns {
	case 0:
		return DiagnosticResult{
			Reply: "Thanks. Does the problem happen every time you use the device, or only sometimes?",
		}, nil
	case 1:
		return DiagnosticResult{
			Reply: "Got it. Have you noticed anything else unusual, like heat, noise, or error messages?",
		}, nil
	default:
		return DiagnosticResult{
			Reply: "That's really helpful, I've added it all to your ticket for the technician.",
			Done:  true,
		}, nil
	}
}

// Fallback produces the generic on-script nudge for unclassifiable input.
// The deterministic responder has no extraction power beyond the keyword
// classifier, so it never reports entities.
func (h *Heuristic) Fallback(_ context.Context, _ string, stepLabel string, _ []proto.Message, _ string) (FallbackResult, error) {
	return FallbackResult{
		Reply: fmt.Sprintf("Sorry, I didn't quite get that. We're currently at: %s. Could you try again?", strings.ToLower(stepLabel)),
	}, nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
