package payment

import (
	"regexp"
	"strings"
	"time"
)

// Method is a stored card. CardNumber is persisted raw; masking happens only
// when a method is serialized into an HTTP response.
type Method struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	CardType       string    `json:"card_type" db:"card_type"`
	CardNumber     string    `json:"card_number" db:"card_number"`
	CardHolderName string    `json:"card_holder_name" db:"card_holder_name"`
	ExpiryMonth    int       `json:"expiry_month" db:"expiry_month"`
	ExpiryYear     int       `json:"expiry_year" db:"expiry_year"`
	IsDefault      bool      `json:"is_default" db:"is_default"`
	BillingAddress string    `json:"billing_address,omitempty" db:"billing_address"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// MethodUpdate carries a partial change; nil fields keep their stored value.
type MethodUpdate struct {
	CardType       *string
	CardHolderName *string
	ExpiryMonth    *int
	ExpiryYear     *int
	IsDefault      *bool
	BillingAddress *string
}

var digitRe = regexp.MustCompile(`[0-9]`)

// MaskCardNumber replaces every digit except the last four with '*'.
func MaskCardNumber(cardNumber string) string {
	if cardNumber == "" {
		return ""
	}
	if len(cardNumber) <= 4 {
		return cardNumber
	}

	lastFour := cardNumber[len(cardNumber)-4:]
	masked := digitRe.ReplaceAllString(cardNumber[:len(cardNumber)-4], "*")
	return masked + lastFour
}

var cardNumberRe = regexp.MustCompile(`^\d{13,19}$`)

// ValidCardNumber accepts 13-19 digits, ignoring spaces and dashes.
func ValidCardNumber(cardNumber string) bool {
	clean := strings.NewReplacer(" ", "", "-", "").Replace(cardNumber)
	return cardNumberRe.MatchString(clean)
}

// ValidExpiry reports whether month/year form a present-or-future expiry date.
// Two-digit years are interpreted as 20xx.
func ValidExpiry(month, year int, now time.Time) bool {
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 {
		return false
	}
	if year < now.Year() {
		return false
	}
	if year == now.Year() && month < int(now.Month()) {
		return false
	}
	return true
}
