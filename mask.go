package refine

import (
	"fmt"
	"strings"
	"unicode"
)

// MaskType represents a known data format with masking rules.
type MaskType string

const (
	MaskSSN   MaskType = "ssn"   // 123-45-6789 -> ***-**-6789
	MaskEmail MaskType = "email" // alice@example.com -> a***@example.com
	MaskPhone MaskType = "phone" // (555) 123-4567 -> (***) ***-4567
	MaskCard  MaskType = "card"  // 4111111111111111 -> ************1111
	MaskName  MaskType = "name"  // John Smith -> J*** S****
)

// Masker applies content-aware masking.
type Masker interface {
	Mask(value string) string
}

// MaskerFunc adapts a function to Masker.
type MaskerFunc func(value string) string

func (f MaskerFunc) Mask(value string) string { return f(value) }

func builtinMaskers() map[MaskType]Masker {
	return map[MaskType]Masker{
		MaskSSN:   MaskerFunc(maskSSN),
		MaskEmail: MaskerFunc(maskEmail),
		MaskPhone: MaskerFunc(maskPhone),
		MaskCard:  MaskerFunc(maskCard),
		MaskName:  MaskerFunc(maskName),
	}
}

// Masking returns a transformer masking values by the MaskType named in the
// tag argument, resolved from maskers.
func Masking(maskers map[MaskType]Masker) Processor {
	return Transformer(func(value string, tag TagDescriptor) (string, error) {
		m, ok := maskers[MaskType(tag.Arg)]
		if !ok {
			return "", fmt.Errorf("no masker for type %q", tag.Arg)
		}
		return m.Mask(value), nil
	}).WithArgCheck(func(arg string) error {
		if _, ok := maskers[MaskType(arg)]; !ok {
			return fmt.Errorf("mask type %q not available", arg)
		}
		return nil
	})
}

func maskSSN(value string) string {
	last4, ok := lastDigits(value, 4)
	if !ok {
		return stars(value)
	}
	return "***-**-" + last4
}

func maskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	if at < 1 {
		return stars(value)
	}
	first := []rune(value[:at])[0]
	return string(first) + "***" + value[at:]
}

func maskPhone(value string) string {
	digits := extractDigits(value)
	if len(digits) < 4 {
		return stars(value)
	}
	last4 := digits[len(digits)-4:]
	switch {
	case strings.HasPrefix(value, "(") && len(digits) >= 10:
		return "(***) ***-" + last4
	case len(digits) >= 10:
		return "***-***-" + last4
	default:
		return "***-" + last4
	}
}

func maskCard(value string) string {
	digits := extractDigits(value)
	if len(digits) < 4 {
		return stars(value)
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

func maskName(value string) string {
	words := strings.Fields(value)
	for i, w := range words {
		r := []rune(w)
		words[i] = string(r[0]) + strings.Repeat("*", len(r)-1)
	}
	return strings.Join(words, " ")
}

func lastDigits(value string, n int) (string, bool) {
	digits := extractDigits(value)
	if len(digits) < n {
		return "", false
	}
	return digits[len(digits)-n:], true
}

func extractDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stars(value string) string {
	return strings.Repeat("*", len([]rune(value)))
}
