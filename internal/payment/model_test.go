package payment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/payment"
)

func TestMaskCardNumber(t *testing.T) {
	tests := []struct {
		name       string
		cardNumber string
		expected   string
	}{
		{name: "plain_digits", cardNumber: "4111111111111111", expected: "************1111"},
		{name: "with_spaces", cardNumber: "4111 1111 1111 1111", expected: "**** **** **** 1111"},
		{name: "empty", cardNumber: "", expected: ""},
		{name: "four_digits", cardNumber: "1111", expected: "1111"},
		{name: "five_digits", cardNumber: "51111", expected: "*1111"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, payment.MaskCardNumber(tt.cardNumber))
		})
	}
}

func TestValidCardNumber(t *testing.T) {
	tests := []struct {
		name       string
		cardNumber string
		valid      bool
	}{
		{name: "sixteen_digits", cardNumber: "4111111111111111", valid: true},
		{name: "thirteen_digits", cardNumber: "4111111111111", valid: true},
		{name: "nineteen_digits", cardNumber: "4111111111111111111", valid: true},
		{name: "spaces_and_dashes", cardNumber: "4111-1111 1111-1111", valid: true},
		{name: "too_short", cardNumber: "411111111111", valid: false},
		{name: "too_long", cardNumber: "41111111111111111111", valid: false},
		{name: "letters", cardNumber: "4111x11111111111", valid: false},
		{name: "empty", cardNumber: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, payment.ValidCardNumber(tt.cardNumber))
		})
	}
}

func TestValidExpiry(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		month int
		year  int
		valid bool
	}{
		{name: "future_year", month: 1, year: 2027, valid: true},
		{name: "current_month", month: 6, year: 2026, valid: true},
		{name: "past_month_same_year", month: 5, year: 2026, valid: false},
		{name: "past_year", month: 12, year: 2025, valid: false},
		{name: "two_digit_year", month: 12, year: 27, valid: true},
		{name: "two_digit_year_expired", month: 1, year: 26, valid: false},
		{name: "month_zero", month: 0, year: 2027, valid: false},
		{name: "month_thirteen", month: 13, year: 2027, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, payment.ValidExpiry(tt.month, tt.year, now))
		})
	}
}
