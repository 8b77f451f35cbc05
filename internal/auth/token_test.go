package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/clinic-service/internal/domain"
)

const (
	testSecret  = "test-secret-test-secret-test-secret!"
	otherSecret = "another-secret-another-secret-another"
)

func mustKey(t *testing.T, secret string) SigningKey {
	t.Helper()
	key, err := NewSigningKey(secret)
	require.NoError(t, err)
	return key
}

func TestNewSigningKey_RejectsShortSecret(t *testing.T) {
	_, err := NewSigningKey("dev-secret")
	assert.ErrorIs(t, err, ErrWeakSigningSecret)
}

func TestSigningKey_Redacted(t *testing.T) {
	key := mustKey(t, testSecret)
	assert.NotContains(t, key.String(), testSecret)
	assert.NotContains(t, key.GoString(), testSecret)
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	tm := NewTokenManager(mustKey(t, testSecret))

	token, exp, err := tm.Issue("doc@example.com", WithRole(domain.RoleDoctor), WithEntity("Doctor", 7))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), exp, 2*time.Second)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "doc@example.com", claims.Subject)
	assert.Equal(t, "doctor", claims.Role)
	assert.Equal(t, "Doctor", claims.ObjectType)
	require.NotNil(t, claims.EntityID)
	assert.Equal(t, int64(7), *claims.EntityID)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, DefaultTokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokenManager_PlainSubject(t *testing.T) {
	tm := NewTokenManager(mustKey(t, testSecret))

	token, _, err := tm.Issue("admin")
	require.NoError(t, err)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Empty(t, claims.Role)
	assert.Nil(t, claims.EntityID)

	subject, err := tm.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestTokenManager_Expired(t *testing.T) {
	past := func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	issuer := NewTokenManager(mustKey(t, testSecret), WithClock(past))
	verifier := NewTokenManager(mustKey(t, testSecret))

	token, _, err := issuer.Issue("doc@example.com", WithRole(domain.RoleDoctor))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0)
	now := issuedAt
	tm := NewTokenManager(mustKey(t, testSecret), WithClock(func() time.Time { return now }))

	token, exp, err := tm.Issue("p@example.com")
	require.NoError(t, err)

	now = exp.Add(-time.Second)
	_, err = tm.Verify(token)
	assert.NoError(t, err)

	now = exp
	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongKey(t *testing.T) {
	issuer := NewTokenManager(mustKey(t, testSecret))
	verifier := NewTokenManager(mustKey(t, otherSecret))

	token, _, err := issuer.Issue("doc@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_TamperedPayload(t *testing.T) {
	tm := NewTokenManager(mustKey(t, testSecret))

	token, _, err := tm.Issue("patient@example.com", WithRole(domain.RolePatient))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin","role":"admin","exp":4102444800}`))
	tampered := parts[0] + "." + forged + "." + parts[2]

	_, err = tm.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsNoneAlgorithm(t *testing.T) {
	tm := NewTokenManager(mustKey(t, testSecret))

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"doc@example.com","exp":4102444800}`))

	_, err := tm.Verify(header + "." + payload + ".")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := NewTokenManager(mustKey(t, testSecret))

	for _, input := range []string{
		"",
		"not-a-token",
		"a.b.c",
		`{"sub":"doc@example.com","role":"doctor"}`,
	} {
		_, err := tm.Verify(input)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)

		_, err = tm.Subject(input)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
	}
}

func TestTokenManager_ZeroKey(t *testing.T) {
	tm := NewTokenManager(SigningKey{})

	_, _, err := tm.Issue("doc@example.com")
	assert.ErrorIs(t, err, ErrWeakSigningSecret)

	_, err = tm.Verify("a.b.c")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_IssuedTokensDifferOverTime(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tm := NewTokenManager(mustKey(t, testSecret), WithClock(func() time.Time { return now }))

	first, _, err := tm.Issue("doc@example.com")
	require.NoError(t, err)
	again, _, err := tm.Issue("doc@example.com")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	now = now.Add(time.Second)
	later, _, err := tm.Issue("doc@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first, later)
}
