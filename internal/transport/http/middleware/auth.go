package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/ErlanBelekov/workout-tracker/internal/identity"
)

const errUnauthorized = "Unauthorized"

// Authenticate resolves a Bearer JWT into an identity on the request context.
// It never aborts: requests without a valid token continue anonymously and
// the workout usecase decides what they may do.
//
// When jwksURL is non-empty the token is verified against the JWKS endpoint.
// The key set is cached and refreshed at most every 15 minutes; ctx bounds
// the refresher's lifetime. Otherwise hmacKey is used for HS256, which is
// what the magic-link flow issues.
func Authenticate(ctx context.Context, jwksURL string, hmacKey []byte) (gin.HandlerFunc, error) {
	var cache *jwk.Cache

	if jwksURL != "" {
		cache = jwk.NewCache(ctx)
		if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
			return nil, fmt.Errorf("jwk cache register: %w", err)
		}
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}
		rawToken := []byte(strings.TrimPrefix(header, "Bearer "))

		var (
			tok jwt.Token
			err error
		)
		if cache != nil {
			keySet, fetchErr := cache.Get(c.Request.Context(), jwksURL)
			if fetchErr != nil {
				c.Next()
				return
			}
			tok, err = jwt.Parse(rawToken, jwt.WithKeySet(keySet), jwt.WithValidate(true))
		} else {
			tok, err = jwt.Parse(rawToken, jwt.WithKey(jwa.HS256, hmacKey), jwt.WithValidate(true))
		}

		if err == nil && tok != nil && tok.Subject() != "" {
			ctx := identity.WithUser(c.Request.Context(), tok.Subject())
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}, nil
}

// BearerFromQuery copies a token from the query string into the
// Authorization header. Browsers cannot set headers on a websocket
// handshake, so the event stream accepts ?<param>=<jwt> instead.
func BearerFromQuery(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := c.Query(param); tok != "" && c.GetHeader("Authorization") == "" {
			c.Request.Header.Set("Authorization", "Bearer "+tok)
		}
		c.Next()
	}
}

// RequireUser rejects requests Authenticate could not resolve.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity.FromContext(c.Request.Context()) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}
		c.Next()
	}
}
