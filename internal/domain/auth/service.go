package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/yanqian/faq-relay/pkg/errors"
)

const defaultTokenTTL = 30 * 24 * time.Hour

// Service issues and validates HS256 service tokens for API clients.
type Service interface {
	Enabled() bool
	IssueToken(ctx context.Context, subject string, ttl time.Duration) (IssuedToken, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
}

type service struct {
	cfg    Config
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg Config, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		logger: logger.With("component", "auth.service"),
	}
}

func (s *service) Enabled() bool {
	return strings.TrimSpace(s.cfg.Secret) != ""
}

func (s *service) IssueToken(_ context.Context, subject string, ttl time.Duration) (IssuedToken, error) {
	if !s.Enabled() {
		return IssuedToken{}, ErrAuthDisabled
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return IssuedToken{}, apperrors.Wrap(apperrors.CodeInvalidInput, "token subject cannot be empty", nil)
	}
	if ttl <= 0 {
		ttl = s.cfg.TokenTTL
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := time.Now()
	expires := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    s.cfg.Issuer,
		Subject:   subject,
		ID:        newTokenID(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return IssuedToken{}, apperrors.Wrap("auth_error", "failed to sign token", err)
	}
	s.logger.Info("service token issued", "subject", subject, "token_id", claims.ID, "expires_at", expires)
	return IssuedToken{Token: signed, ExpiresAt: expires}, nil
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	if !s.Enabled() {
		return Claims{}, ErrAuthDisabled
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token invalid", nil)
	}
	if claims.Subject == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing subject", nil)
	}
	return Claims{
		Subject:   claims.Subject,
		Issuer:    claims.Issuer,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func newTokenID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(buf)
}
