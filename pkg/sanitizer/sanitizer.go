package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reValidPhone = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
	rePhoneNoise = regexp.MustCompile(`[\s\-().]+`)
)

// SanitizeName normalizes a customer-facing display name: trimmed,
// whitespace collapsed.
func SanitizeName(input string) string {
	p := Pipeline{
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// SanitizeReason normalizes free-text notes such as blocked-interval reasons.
func SanitizeReason(input string) string {
	p := Pipeline{
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// SanitizePhone strips formatting noise from a phone number and returns it in
// E.164 shape, or the empty string when the result is not a plausible number.
func SanitizePhone(phone string) string {
	phone = rePhoneNoise.ReplaceAllString(strings.TrimSpace(phone), "")
	if phone == "" {
		return ""
	}
	if strings.HasPrefix(phone, "00") {
		phone = "+" + phone[2:]
	}
	if !reValidPhone.MatchString(phone) {
		return ""
	}
	return phone
}
