package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the verified token claims the guard hands to handlers.
type Claims struct {
	UID           string
	Email         string
	EmailVerified bool
}

type tokenClaims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a TokenService. ttl bounds the lifetime of issued
// tokens; verification accepts any unexpired token with the right issuer.
func NewTokenService(secret []byte, issuer string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: secret, issuer: issuer, ttl: ttl}
}

// Issue signs a token for the given user.
func (s *TokenService) Issue(uid, email string, emailVerified bool) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Email:         email,
		EmailVerified: emailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and validates a signed token and returns its claims.
// Failures come back as *Error with status 401.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errInvalidToken("Invalid or expired token")
	}
	if claims.Subject == "" {
		return nil, errInvalidToken("Token has no subject")
	}
	return &Claims{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}
