package events

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	intPattern          = regexp.MustCompile(`^\d+$`)
	floatPattern        = regexp.MustCompile(`^-?\d*(\.\d+)?$`)
	providerAddrPattern = regexp.MustCompile(`^lava@[a-z0-9]{39}$`)
	alphaNumericPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{2,100}$`)
)

const ulavaDenom = "ulava"

// ParseInt accepts unsigned decimal integers only.
func ParseInt(value string) (int64, error) {
	if !intPattern.MatchString(value) {
		return 0, fmt.Errorf("invalid integer %q", value)
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", value, err)
	}
	return n, nil
}

// ParseFloat accepts optionally signed decimals such as "0.5", "-.25" or "3".
func ParseFloat(value string) (float64, error) {
	if value == "" || value == "-" || !floatPattern.MatchString(value) {
		return 0, fmt.Errorf("invalid float %q", value)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float %q: %w", value, err)
	}
	return f, nil
}

// ParseProviderAddress validates a lava bech32 account address.
func ParseProviderAddress(value string) (string, error) {
	if !providerAddrPattern.MatchString(value) {
		return "", fmt.Errorf("invalid provider address %q", value)
	}
	return value, nil
}

// ParseAlphaNumeric validates identifiers such as chain ids.
func ParseAlphaNumeric(value string) (string, error) {
	if !alphaNumericPattern.MatchString(value) {
		return "", fmt.Errorf("invalid alphanumeric string %q", value)
	}
	return value, nil
}

// ParseUlava returns the integer amount of an "<amount>ulava" coin string.
func ParseUlava(value string) (int64, error) {
	amount, ok := strings.CutSuffix(value, ulavaDenom)
	if !ok {
		return 0, fmt.Errorf("invalid ulava amount %q: missing %s suffix", value, ulavaDenom)
	}
	n, err := ParseInt(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid ulava amount %q: %w", value, err)
	}
	return n, nil
}

// ParseBigInt accepts the chain's sdk.Int rendering, which may carry a denom suffix.
func ParseBigInt(value string) (int64, error) {
	if amount, ok := strings.CutSuffix(value, ulavaDenom); ok {
		value = amount
	}
	return ParseInt(value)
}

func ptr[T any](v T) *T { return &v }

// textPtr returns nil for empty strings so unset slots stay NULL.
func textPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Slot helpers return pointers so parsers can assign straight into nullable columns.

func intSlot(value string) (*int64, error) {
	n, err := ParseInt(value)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func ulavaSlot(value string) (*int64, error) {
	n, err := ParseUlava(value)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func bigIntSlot(value string) (*int64, error) {
	n, err := ParseBigInt(value)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func floatSlot(value string) (*float64, error) {
	f, err := ParseFloat(value)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
