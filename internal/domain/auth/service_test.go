package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/faq-relay/pkg/errors"
	"github.com/yanqian/faq-relay/pkg/logger"
)

func newTestService(secret string) Service {
	return NewService(Config{Secret: secret, Issuer: "faq-relay", TokenTTL: time.Hour}, logger.Discard())
}

func TestService_IssueAndValidate(t *testing.T) {
	svc := newTestService("test-secret")
	require.True(t, svc.Enabled())

	issued, err := svc.IssueToken(context.Background(), "hr-portal", 0)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(context.Background(), issued.Token)
	require.NoError(t, err)
	require.Equal(t, "hr-portal", claims.Subject)
	require.Equal(t, "faq-relay", claims.Issuer)
	require.NotEmpty(t, claims.TokenID)
}

func TestService_RejectsForeignTokens(t *testing.T) {
	issued, err := newTestService("other-secret").IssueToken(context.Background(), "intruder", time.Hour)
	require.NoError(t, err)

	_, err = newTestService("test-secret").ValidateToken(context.Background(), issued.Token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	_, err = newTestService("test-secret").ValidateToken(context.Background(), "not-a-jwt")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_RejectsExpiredAndUnboundedTokens(t *testing.T) {
	svc := newTestService("test-secret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "faq-relay",
		Subject:   "old-client",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), signed)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))

	forever := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "faq-relay", Subject: "forever"})
	signed, err = forever.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), signed)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken))
}

func TestService_Disabled(t *testing.T) {
	svc := newTestService("")
	require.False(t, svc.Enabled())

	_, err := svc.IssueToken(context.Background(), "anyone", time.Hour)
	require.ErrorIs(t, err, ErrAuthDisabled)
	_, err = svc.ValidateToken(context.Background(), "token")
	require.ErrorIs(t, err, ErrAuthDisabled)
}

func TestService_IssueRequiresSubject(t *testing.T) {
	_, err := newTestService("test-secret").IssueToken(context.Background(), "  ", time.Hour)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestSealerRoundTrip(t *testing.T) {
	sealer, err := NewSealer("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	sealed, err := sealer.Seal([]byte(`{"refresh_token":"r"}`))
	require.NoError(t, err)
	require.True(t, IsSealed(sealed))
	require.NotContains(t, string(sealed), "refresh_token")

	opened, err := sealer.Open(append(sealed, '\n'))
	require.NoError(t, err)
	require.Equal(t, `{"refresh_token":"r"}`, string(opened))

	other, err := NewSealer("fedcba9876543210fedcba9876543210")
	require.NoError(t, err)
	_, err = other.Open(sealed)
	require.Error(t, err)

	_, err = sealer.Open([]byte(`{"refresh_token":"r"}`))
	require.ErrorIs(t, err, ErrMalformedSealed)

	_, err = NewSealer("short")
	require.Error(t, err)
}

func TestCodeChallengeFromVerifier(t *testing.T) {
	// RFC 7636 appendix B.
	require.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", CodeChallengeFromVerifier("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))

	state, verifier, challenge, err := NewOAuthState()
	require.NoError(t, err)
	require.NotEmpty(t, state)
	require.NotEqual(t, state, verifier)
	require.Equal(t, CodeChallengeFromVerifier(verifier), challenge)
}
