package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/commerce-order-fulfillment/internal/domain/shared"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		wantValid  bool
		wantReason string
	}{
		{
			name:      "valid email",
			email:     "jane.doe@example.com",
			wantValid: true,
		},
		{
			name:      "valid email with plus tag",
			email:     "jane+orders@example.co.uk",
			wantValid: true,
		},
		{
			name:       "empty email",
			email:      "",
			wantValid:  false,
			wantReason: "email cannot be empty",
		},
		{
			name:       "missing at sign",
			email:      "jane.example.com",
			wantValid:  false,
			wantReason: "invalid email format",
		},
		{
			name:       "missing domain",
			email:      "jane@",
			wantValid:  false,
			wantReason: "invalid email format",
		},
		{
			name:       "consecutive dots",
			email:      "jane..doe@example.com",
			wantValid:  false,
			wantReason: "consecutive dots",
		},
		{
			name:       "local part too long",
			email:      strings.Repeat("a", 65) + "@example.com",
			wantValid:  false,
			wantReason: "local part of email too long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, reason := ValidateEmail(tt.email)
			assert.Equal(t, tt.wantValid, valid)
			if !tt.wantValid {
				assert.Contains(t, reason, tt.wantReason)
			}
		})
	}
}

func TestValidateCreditCard(t *testing.T) {
	tests := []struct {
		name       string
		cardNumber string
		wantValid  bool
		wantReason string
	}{
		{
			name:       "valid visa",
			cardNumber: "4111111111111111",
			wantValid:  true,
		},
		{
			name:       "valid mastercard",
			cardNumber: "5555555555554444",
			wantValid:  true,
		},
		{
			name:       "valid amex",
			cardNumber: "378282246310005",
			wantValid:  true,
		},
		{
			name:       "valid with spaces and dashes",
			cardNumber: "4111-1111 1111-1111",
			wantValid:  true,
		},
		{
			name:       "empty",
			cardNumber: "",
			wantValid:  false,
			wantReason: "cannot be empty",
		},
		{
			name:       "non-digit characters",
			cardNumber: "4111a11111111111",
			wantValid:  false,
			wantReason: "only digits",
		},
		{
			name:       "too short",
			cardNumber: "411111111111",
			wantValid:  false,
			wantReason: "invalid card length",
		},
		{
			name:       "fails Luhn check",
			cardNumber: "4111111111111112",
			wantValid:  false,
			wantReason: "Luhn",
		},
		{
			name:       "unknown card type",
			cardNumber: "9111111111111110",
			wantValid:  false,
			wantReason: "unknown card type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, reason := ValidateCreditCard(tt.cardNumber)
			assert.Equal(t, tt.wantValid, valid, "reason: %s", reason)
			if !tt.wantValid {
				assert.Contains(t, reason, tt.wantReason)
			}
		})
	}
}

func TestValidateAddress(t *testing.T) {
	validAddress := shared.Address{
		Street:  "123 Main St",
		City:    "Springfield",
		State:   "IL",
		ZipCode: "62701",
		Country: "US",
	}

	t.Run("valid US address", func(t *testing.T) {
		valid, reason := ValidateAddress(validAddress)
		assert.True(t, valid, reason)
	})

	t.Run("valid ZIP+4", func(t *testing.T) {
		addr := validAddress
		addr.ZipCode = "62701-1234"
		valid, _ := ValidateAddress(addr)
		assert.True(t, valid)
	})

	t.Run("non-US postal code skips ZIP format check", func(t *testing.T) {
		addr := validAddress
		addr.Country = "DE"
		addr.ZipCode = "10115"
		addr.State = "Berlin"
		valid, _ := ValidateAddress(addr)
		assert.True(t, valid)
	})

	t.Run("invalid US zip", func(t *testing.T) {
		addr := validAddress
		addr.ZipCode = "ABCDE"
		valid, reason := ValidateAddress(addr)
		assert.False(t, valid)
		assert.Contains(t, reason, "zip code")
	})

	t.Run("missing fields", func(t *testing.T) {
		fields := []struct {
			name   string
			mutate func(a *shared.Address)
			reason string
		}{
			{"street", func(a *shared.Address) { a.Street = "" }, "street is required"},
			{"city", func(a *shared.Address) { a.City = "" }, "city is required"},
			{"state", func(a *shared.Address) { a.State = "" }, "state is required"},
			{"zip", func(a *shared.Address) { a.ZipCode = "" }, "zip code is required"},
			{"country", func(a *shared.Address) { a.Country = "" }, "country is required"},
		}
		for _, f := range fields {
			addr := validAddress
			f.mutate(&addr)
			valid, reason := ValidateAddress(addr)
			assert.False(t, valid, f.name)
			assert.Equal(t, f.reason, reason)
		}
	})
}
