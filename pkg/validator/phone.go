package validator

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
)

// DefaultCountryCode is prepended to local numbers
const DefaultCountryCode = "90"

// PhoneTag is the binding tag that accepts phones valid after normalization
const PhoneTag = "intl_phone"

var (
	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidFormat indicates the normalized number is not in international format
	ErrInvalidFormat = errors.New("phone number must be in international format, e.g. +905551234567")
)

// internationalRegex matches E.164 numbers
var internationalRegex = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// PhoneValidator normalizes client phones into the canonical dedup key
type PhoneValidator struct {
	countryCode string
}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{countryCode: DefaultCountryCode}
}

// Sanitize removes all non-digit characters from phone number
func (v *PhoneValidator) Sanitize(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize maps a phone to +<country><number>:
//
//	5551234567   -> +905551234567 (10 local digits)
//	05551234567  -> +905551234567 (trunk zero dropped)
//	905551234567 -> +905551234567
//
// Anything else gets a + in front of its digits.
func (v *PhoneValidator) Normalize(phone string) string {
	digits := v.Sanitize(phone)
	if digits == "" {
		return ""
	}

	switch {
	case len(digits) == 10:
		return "+" + v.countryCode + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return "+" + v.countryCode + digits[1:]
	case len(digits) == 12 && strings.HasPrefix(digits, v.countryCode):
		return "+" + digits
	default:
		return "+" + digits
	}
}

// Validate normalizes the phone and checks the result is an international number
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	normalized := v.Normalize(phone)
	if !internationalRegex.MatchString(normalized) {
		return "", ErrInvalidFormat
	}
	return normalized, nil
}

// Normalize uses the default validator
func Normalize(phone string) string {
	return NewPhoneValidator().Normalize(phone)
}

func validateIntlPhone(fl playground.FieldLevel) bool {
	_, err := NewPhoneValidator().Validate(fl.Field().String())
	return err == nil
}

// RegisterBindings adds the intl_phone tag to gin's binding validator
func RegisterBindings() error {
	engine, ok := binding.Validator.Engine().(*playground.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return engine.RegisterValidation(PhoneTag, validateIntlPhone)
}
