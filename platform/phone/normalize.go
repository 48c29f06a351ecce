// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BR"

// MinDedupDigits is the minimum number of digits a contact must carry to be
// considered a usable dedup key.
const MinDedupDigits = 8

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// ContactKey is the canonical contact reduction: the number is normalized
// to E.164 first, so national and international spellings of the same phone
// collapse to one key, then reduced to its digits. Inputs that do not parse
// as a valid phone keep their raw digits.
func ContactKey(input string) string {
	return DedupKey(NormalizeE164(input))
}

// DedupKey reduces a raw contact to its digits. The same reduction is applied
// on capture writes and on the read-only availability check, so both paths
// agree on what counts as the same contact.
func DedupKey(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsUsableDedupKey reports whether the key has enough digits to identify a contact.
func IsUsableDedupKey(key string) bool {
	return len(key) >= MinDedupDigits
}
