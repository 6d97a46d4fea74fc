package validator

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrCardNumber   = errors.New("card number is invalid")
	ErrCardExpiry   = errors.New("card expiry must be MM/YY")
	ErrCardExpired  = errors.New("card has expired")
	ErrCardCVV      = errors.New("CVV must be 3 or 4 digits")
	ErrCardHolder   = errors.New("card holder name is required")
	ErrCardRequired = errors.New("card details are required to pay now")
)

// CardFieldError names the card field that failed validation
type CardFieldError struct {
	Field string
	Err   error
}

func (e *CardFieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *CardFieldError) Unwrap() error { return e.Err }

// ValidateCard checks the format of card details at time now.
// No network call is made; this only guards against malformed input.
func ValidateCard(holder, number, expiry, cvv string, now time.Time) error {
	if strings.TrimSpace(holder) == "" {
		return &CardFieldError{Field: "holder_name", Err: ErrCardHolder}
	}

	digits := strings.NewReplacer(" ", "", "-", "").Replace(number)
	if len(digits) < 13 || len(digits) > 19 || !allDigits(digits) || !luhn(digits) {
		return &CardFieldError{Field: "number", Err: ErrCardNumber}
	}

	if err := validateExpiry(expiry, now); err != nil {
		return &CardFieldError{Field: "expiry", Err: err}
	}

	if (len(cvv) != 3 && len(cvv) != 4) || !allDigits(cvv) {
		return &CardFieldError{Field: "cvv", Err: ErrCardCVV}
	}

	return nil
}

func validateExpiry(expiry string, now time.Time) error {
	parts := strings.Split(strings.TrimSpace(expiry), "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return ErrCardExpiry
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return ErrCardExpiry
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return ErrCardExpiry
	}
	// A card is valid through the last day of its expiry month.
	firstOfNextMonth := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	if !now.Before(firstOfNextMonth) {
		return ErrCardExpired
	}
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
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
