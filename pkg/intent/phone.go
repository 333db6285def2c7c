package intent

import (
	"fmt"
	"strings"
	"unicode"
)

// NormalizePhone validates a Hong Kong phone number. Non-digits are stripped,
// a leading 852 country code is dropped, and exactly eight digits must
// remain. Returns the formatted "+852 XXXX XXXX" form.
func NormalizePhone(raw string) (string, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if strings.HasPrefix(d, "852") && len(d) > 8 {
		d = d[3:]
	}
	if len(d) != 8 {
		return "", false
	}
	return fmt.Sprintf("+852 %s %s", d[:4], d[4:]), true
}

// LooksLikePhone reports whether the input reads as a phone number attempt:
// several digits and no letters. Used to flag inputs that should validate as
// a phone number but don't.
func LooksLikePhone(raw string) bool {
	digits, letters := 0, 0
	for _, r := range raw {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
		}
	}
	return digits >= 4 && letters == 0
}
