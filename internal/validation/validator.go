// Package validation provides pure input validators for checkout requests:
// email addresses, credit card numbers (Luhn) and shipping addresses.
// Validators return a boolean verdict plus a human-readable reason; they
// never have side effects.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/commerce-order-fulfillment/internal/domain/shared"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks an email address for RFC 5322 shape and common defects.
func ValidateEmail(email string) (bool, string) {
	if email == "" {
		return false, "email cannot be empty"
	}
	if !emailPattern.MatchString(email) {
		return false, "invalid email format"
	}
	if strings.Contains(email, "..") {
		return false, "email contains consecutive dots"
	}
	if strings.HasPrefix(email, ".") || strings.HasSuffix(email, ".") {
		return false, "email cannot start or end with a dot"
	}
	if len(email) > 254 {
		return false, "email address too long (max 254 characters)"
	}
	local := email[:strings.IndexByte(email, '@')]
	if len(local) > 64 {
		return false, "local part of email too long (max 64 characters)"
	}
	return true, ""
}

// ValidateCreditCard checks a card number using the Luhn algorithm and known
// BIN ranges. Spaces and dashes are tolerated.
func ValidateCreditCard(cardNumber string) (bool, string) {
	if cardNumber == "" {
		return false, "card number cannot be empty"
	}

	cardNumber = strings.ReplaceAll(cardNumber, " ", "")
	cardNumber = strings.ReplaceAll(cardNumber, "-", "")

	for _, r := range cardNumber {
		if r < '0' || r > '9' {
			return false, "card number must contain only digits"
		}
	}

	if len(cardNumber) < 13 || len(cardNumber) > 19 {
		return false, fmt.Sprintf("invalid card length: %d digits (expected 13-19)", len(cardNumber))
	}

	if !luhnChecksum(cardNumber) {
		return false, "invalid card number (failed Luhn check)"
	}

	if cardType(cardNumber) == "" {
		return false, "unknown card type"
	}

	return true, ""
}

func luhnChecksum(cardNumber string) bool {
	sum := 0
	double := false
	for i := len(cardNumber) - 1; i >= 0; i-- {
		d := int(cardNumber[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// cardType identifies the card network by BIN prefix, or "" if unknown.
func cardType(cardNumber string) string {
	switch {
	case strings.HasPrefix(cardNumber, "4"):
		return "visa"
	case len(cardNumber) >= 2 && cardNumber[0] == '5' && cardNumber[1] >= '1' && cardNumber[1] <= '5':
		return "mastercard"
	case strings.HasPrefix(cardNumber, "34") || strings.HasPrefix(cardNumber, "37"):
		return "amex"
	case strings.HasPrefix(cardNumber, "6011") || strings.HasPrefix(cardNumber, "65"):
		return "discover"
	}
	return ""
}

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// ValidateAddress checks that a shipping address carries every required field
// and a plausible ZIP code.
func ValidateAddress(addr shared.Address) (bool, string) {
	if addr.Street == "" {
		return false, "street is required"
	}
	if addr.City == "" {
		return false, "city is required"
	}
	if addr.State == "" {
		return false, "state is required"
	}
	if addr.ZipCode == "" {
		return false, "zip code is required"
	}
	if addr.Country == "" {
		return false, "country is required"
	}
	if strings.EqualFold(addr.Country, "US") && !zipPattern.MatchString(addr.ZipCode) {
		return false, "invalid US zip code format"
	}
	return true, ""
}
