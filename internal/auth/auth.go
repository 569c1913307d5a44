// Package auth issues and verifies the bearer tokens that guard the relay's
// upstream-consuming endpoints.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	// TokenLifetime defines how long tokens are valid
	TokenLifetime = 24 * time.Hour

	issuer = "codecounselor"

	// ContextSubject is the gin context key holding the verified subject.
	ContextSubject = "auth.subject"
)

var (
	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidToken is returned when the token is invalid for any reason
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the JWT claims carried by relay access tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// Service signs and validates access tokens. A Service without a secret
// accepts every request.
type Service struct {
	secret []byte
	now    func() time.Time
}

// NewService creates an auth service. An empty secret disables auth.
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret), now: time.Now}
}

// Enabled reports whether requests must carry a token.
func (s *Service) Enabled() bool {
	return len(s.secret) > 0
}

// IssueToken generates a signed token for subject.
func (s *Service) IssueToken(subject string) (string, error) {
	if !s.Enabled() {
		return "", errors.New("auth disabled: RELAY_TOKEN_SECRET is not set")
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken validates and parses a token.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Issuer != issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token. It is a no-op
// when auth is disabled.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Enabled() {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Missing bearer token"})
			return
		}

		claims, err := s.ValidateToken(strings.TrimSpace(raw))
		if err != nil {
			log.WithError(err).WithField("client_ip", c.ClientIP()).Warn("auth.rejected")
			if errors.Is(err, ErrTokenExpired) {
				c.Header("X-Token-Expired", "true")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Next()
	}
}
