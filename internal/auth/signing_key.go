package auth

import "errors"

// MinSecretBytes is the smallest secret accepted for HS256 signing.
const MinSecretBytes = 32

// ErrWeakSigningSecret is returned when the configured secret is too short.
var ErrWeakSigningSecret = errors.New("signing secret must be at least 32 bytes")

// SigningKey is the symmetric HMAC key shared by every token operation.
// It is immutable once built and safe for concurrent use.
type SigningKey struct {
	key []byte
}

// NewSigningKey derives the signing key from the configured secret.
func NewSigningKey(secret string) (SigningKey, error) {
	if len(secret) < MinSecretBytes {
		return SigningKey{}, ErrWeakSigningSecret
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return SigningKey{key: key}, nil
}

// String keeps key material out of logs and fmt output.
func (SigningKey) String() string {
	return "SigningKey(redacted)"
}

// GoString implements fmt.GoStringer.
func (k SigningKey) GoString() string {
	return k.String()
}

func (k SigningKey) valid() bool {
	return len(k.key) >= MinSecretBytes
}
