package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ErlanBelekov/workout-tracker/internal/domain"
	"github.com/ErlanBelekov/workout-tracker/internal/email"
	"github.com/ErlanBelekov/workout-tracker/internal/repository"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionIssuer is the iss claim of every session token this service signs.
	SessionIssuer = "workout-tracker"

	magicLinkTTL      = 15 * time.Minute
	defaultSessionTTL = 7 * 24 * time.Hour
	rawTokenBytes     = 32
)

// SessionClaims are carried by the Bearer token used on the workout routes.
// Subject is the owner every workout query is scoped to.
type SessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type AuthUsecase struct {
	users      repository.UserRepository
	mailer     email.Sender
	signingKey []byte
	sessionTTL time.Duration
	verifyURL  string
	now        func() time.Time
}

func NewAuthUsecase(users repository.UserRepository, mailer email.Sender, signingKey []byte, magicLinkBase string, sessionTTL time.Duration) *AuthUsecase {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &AuthUsecase{
		users:      users,
		mailer:     mailer,
		signingKey: signingKey,
		sessionTTL: sessionTTL,
		verifyURL:  strings.TrimRight(magicLinkBase, "/") + "/auth/verify?token=",
		now:        time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (u *AuthUsecase) WithClock(now func() time.Time) *AuthUsecase {
	u.now = now
	return u
}

// RequestMagicLink emails a single-use sign-in link to addr, creating the
// account on first use. Only the SHA-256 of the token is stored.
func (u *AuthUsecase) RequestMagicLink(ctx context.Context, addr string) error {
	user, err := u.users.FindOrCreate(ctx, addr)
	if err != nil {
		return fmt.Errorf("find or create user: %w", err)
	}

	raw, err := newRawToken()
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	if err = u.users.CreateMagicToken(ctx, user.ID, hashToken(raw), u.now().Add(magicLinkTTL)); err != nil {
		return fmt.Errorf("store magic token: %w", err)
	}

	if err = u.mailer.Send(ctx, addr, email.SignIn(u.verifyURL+raw, magicLinkTTL)); err != nil {
		return fmt.Errorf("send magic link: %w", err)
	}
	return nil
}

// VerifyMagicLink claims the token and returns a signed HS256 session token.
// Unknown, used and expired tokens all report domain.ErrTokenInvalid.
func (u *AuthUsecase) VerifyMagicLink(ctx context.Context, raw string) (string, error) {
	mt, err := u.users.ClaimMagicToken(ctx, hashToken(raw))
	if errors.Is(err, domain.ErrTokenInvalid) {
		return "", domain.ErrTokenInvalid
	}
	if err != nil {
		return "", fmt.Errorf("claim magic token: %w", err)
	}

	user, err := u.users.FindByID(ctx, mt.UserID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}

	now := u.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    SessionIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.sessionTTL)),
		},
	}
	if user.Email != nil {
		claims.Email = *user.Email
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

func newRawToken() (string, error) {
	b := make([]byte, rawTokenBytes)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
