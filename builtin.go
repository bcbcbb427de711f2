package refine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Builtins returns a new, unfrozen registry holding every built-in kind.
func Builtins() *Registry {
	r := NewRegistry()
	procs := map[TagKind]Processor{
		TagTrim:          Transformer(trim),
		TagLowercase:     Transformer(lowercase),
		TagUppercase:     Transformer(uppercase),
		TagCapitalize:    Transformer(capitalize),
		TagNormalizeName: Transformer(normalizeName),
		TagHash:          Hashing(builtinHashers()),
		TagMask:          Masking(builtinMaskers()),
		TagRedact:        Transformer(redact),
		TagNoDigits:      Validator(noDigits, "contains digit"),
		TagNotBlank:      Validator(notBlank, "must not be blank"),
		TagMinLength:     Validator(minLength, "must be at least {arg} characters").WithArgCheck(checkLength),
		TagMaxLength:     Validator(maxLength, "must be at most {arg} characters").WithArgCheck(checkLength),
		TagPattern:       Validator(matchPattern, "must match {arg}").WithArgCheck(checkPattern),
		TagRule:          Validator(matchRule, "must satisfy {arg}").WithArgCheck(checkRule),
	}
	for _, kind := range builtinKinds {
		r.MustRegister(kind, procs[kind])
	}
	return r
}

func trim(value string, _ TagDescriptor) (string, error) {
	return strings.TrimSpace(value), nil
}

// Casers carry state, so each call builds its own.
func lowercase(value string, _ TagDescriptor) (string, error) {
	return cases.Lower(language.Und).String(value), nil
}

func uppercase(value string, _ TagDescriptor) (string, error) {
	return cases.Upper(language.Und).String(value), nil
}

func capitalize(value string, _ TagDescriptor) (string, error) {
	r, size := utf8.DecodeRuneInString(value)
	if size == 0 || unicode.IsUpper(r) || unicode.IsTitle(r) {
		return value, nil
	}
	return string(unicode.ToTitle(r)) + value[size:], nil
}

func normalizeName(value string, _ TagDescriptor) (string, error) {
	composed := norm.NFC.String(value)
	collapsed := strings.Join(strings.Fields(composed), " ")
	return cases.Title(language.Und).String(collapsed), nil
}

func redact(_ string, tag TagDescriptor) (string, error) {
	if tag.Arg == "" {
		return "***", nil
	}
	return tag.Arg, nil
}

// noDigits reports the first forbidden character. Without an argument any
// Unicode decimal digit is forbidden.
func noDigits(value string, tag TagDescriptor) (string, bool) {
	for _, r := range value {
		if (tag.Arg == "" && unicode.IsDigit(r)) || (tag.Arg != "" && strings.ContainsRune(tag.Arg, r)) {
			return string(r), false
		}
	}
	return "", true
}

func notBlank(value string, _ TagDescriptor) (string, bool) {
	return "", strings.TrimSpace(value) != ""
}

func minLength(value string, tag TagDescriptor) (string, bool) {
	n, _ := strconv.Atoi(tag.Arg)
	count := utf8.RuneCountInString(value)
	return strconv.Itoa(count), count >= n
}

func maxLength(value string, tag TagDescriptor) (string, bool) {
	n, _ := strconv.Atoi(tag.Arg)
	count := utf8.RuneCountInString(value)
	return strconv.Itoa(count), count <= n
}

func checkLength(arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("length %q: %w", arg, err)
	}
	if n < 0 {
		return fmt.Errorf("length %d is negative", n)
	}
	return nil
}

// patterns memoizes compiled expressions by source.
var patterns sync.Map

func compilePattern(src string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(src); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, err
	}
	actual, _ := patterns.LoadOrStore(src, re)
	return actual.(*regexp.Regexp), nil
}

func matchPattern(value string, tag TagDescriptor) (string, bool) {
	re, err := compilePattern(tag.Arg)
	if err != nil {
		return err.Error(), false
	}
	return "", re.MatchString(value)
}

func checkPattern(arg string) error {
	_, err := compilePattern(arg)
	return err
}

var rules = validator.New()

func matchRule(value string, tag TagDescriptor) (string, bool) {
	if err := rules.Var(value, tag.Arg); err != nil {
		return err.Error(), false
	}
	return "", true
}

// checkRule rejects rules the validator does not know. Var panics on an
// undefined validation function.
func checkRule(arg string) (err error) {
	if strings.TrimSpace(arg) == "" {
		return fmt.Errorf("empty rule")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rule %q: %v", arg, r)
		}
	}()
	_ = rules.Var("", arg)
	return nil
}
