package validators

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion resolves numbers written without a country code.
var DefaultPhoneRegion = "RU"

// SetDefaultPhoneRegion is called once at startup.
func SetDefaultPhoneRegion(region string) {
	if region = strings.ToUpper(strings.TrimSpace(region)); region != "" {
		DefaultPhoneRegion = region
	}
}

// NormalizePhone parses raw in DefaultPhoneRegion and returns its E.164 form.
// Every spelling of one number maps to the same string.
func NormalizePhone(raw string) (string, bool) {
	return NormalizePhoneIn(raw, DefaultPhoneRegion)
}

func NormalizePhoneIn(raw, region string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", false
	}

	return phonenumbers.Format(num, phonenumbers.E164), true
}

func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
