package identity

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used for numbers given without a country code
const DefaultPhoneRegion = "AU"

// PhoneNormalizer canonicalizes a raw phone string
type PhoneNormalizer interface {
	Normalize(raw string) (string, error)
}

// PhoneNormalizerFunc adapts a function into a PhoneNormalizer
type PhoneNormalizerFunc func(raw string) (string, error)

// Normalize satisfies the PhoneNormalizer interface
func (f PhoneNormalizerFunc) Normalize(raw string) (string, error) {
	return f(raw)
}

// E164Normalizer parses numbers with libphonenumber rules and formats them as E.164
type E164Normalizer struct {
	region string
}

// NewPhoneNormalizer returns a normalizer that assumes region for local numbers
func NewPhoneNormalizer(region string) E164Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultPhoneRegion
	}
	return E164Normalizer{region: region}
}

// Normalize returns the E.164 form of raw or ErrInvalidPhone
func (n E164Normalizer) Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidPhone
	}

	num, err := phonenumbers.Parse(raw, n.region)
	if err != nil {
		return "", ErrInvalidPhone
	}

	if num.GetNationalNumber() == 0 {
		return "", ErrInvalidPhone
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
