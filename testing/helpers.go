// Package testing provides fixtures and helpers for testing refine pipelines.
package testing

import (
	"errors"
	"slices"
	"testing"

	"github.com/zoobzio/refine"
)

// TestKey returns a valid 32-byte AES key for testing.
func TestKey(tb testing.TB) []byte {
	tb.Helper()
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestEncryptor returns an AES encryptor keyed with TestKey.
func TestEncryptor(tb testing.TB) refine.Encryptor {
	tb.Helper()
	enc, err := refine.AES(TestKey(tb))
	if err != nil {
		tb.Fatalf("AES() error: %v", err)
	}
	return enc
}

// TestRegistry returns the built-in kinds plus encrypt and decrypt bound to
// TestEncryptor. Each call returns a fresh, unfrozen registry.
func TestRegistry(tb testing.TB) *refine.Registry {
	tb.Helper()
	enc := TestEncryptor(tb)
	return refine.Builtins().
		MustRegister(refine.TagEncrypt, refine.Encrypting(enc)).
		MustRegister(refine.TagDecrypt, refine.Decrypting(enc))
}

// Employee is a fixture exercising transformers and validators on scalar and
// slice fields.
type Employee struct {
	ID       string   `json:"id"`
	Name     string   `json:"name" refine:"trim,normalize-name,no-digits"`
	Email    string   `json:"email" refine:"trim,lowercase,rule=email"`
	Password string   `json:"password" refine:"hash=sha256"`
	SSN      string   `json:"ssn" refine:"mask=ssn"`
	Aliases  []string `json:"aliases" refine:"trim,capitalize"`
}

// Clone implements refine.Cloner[Employee].
func (e Employee) Clone() Employee {
	e.Aliases = slices.Clone(e.Aliases)
	return e
}

// Secret is a fixture whose body is encrypted on store and decrypted on load.
type Secret struct {
	ID   string `json:"id"`
	Body string `json:"body" refine:"encrypt,decrypt"`
}

// Clone implements refine.Cloner[Secret].
func (s Secret) Clone() Secret { return s }

// RequireFailures fails tb unless err is a *refine.ValidationError carrying
// exactly want, in order.
func RequireFailures(tb testing.TB, err error, want ...refine.Failure) {
	tb.Helper()
	var verr *refine.ValidationError
	if !errors.As(err, &verr) {
		tb.Fatalf("error = %v, want *refine.ValidationError", err)
	}
	if !slices.Equal(verr.Failures, want) {
		tb.Fatalf("failures = %v, want %v", verr.Failures, want)
	}
}
