package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/brewedawakening/commerce/internal/domain"
)

// Claims carries the authenticated subject of a bearer token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenAuthority issues and verifies HS256 bearer tokens. Verification is
// stateless: the only input is the presented token and the signing secret.
type TokenAuthority struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenAuthority(secret, issuer string, ttl time.Duration) *TokenAuthority {
	if issuer == "" {
		issuer = "brewedawakening"
	}
	return &TokenAuthority{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// TTL returns the validity window applied to issued tokens.
func (ta *TokenAuthority) TTL() time.Duration {
	return ta.ttl
}

// Issue mints a token whose subject is the given user id.
func (ta *TokenAuthority) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id required")
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ta.ttl)),
			Issuer:    ta.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ta.secret)
}

// Verify parses a token and returns the subject user id. Failures map onto
// the domain taxonomy: malformed input, expired validity window, or a failed
// signature/integrity check.
func (ta *TokenAuthority) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ta.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
		default:
			return "", fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.UserID, nil
}

// ExtractToken pulls the bearer token out of an Authorization header value.
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("%w: invalid authorization header", domain.ErrTokenMalformed)
	}
	return parts[1], nil
}
