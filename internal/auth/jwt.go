package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "watchstream/pkg/errors"
)

// Principal is the verified owner of a token.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Verifier turns a raw token into a Principal. The result depends only on the
// token presented; failures carry ErrCodeAuth.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Principal, error)
}

// JWTVerifier checks HS256 access tokens.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (v *JWTVerifier) Verify(_ context.Context, raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, apperrors.New(apperrors.ErrCodeAuth, "no token")
	}

	claims := jwt.MapClaims{}
	if _, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}); err != nil {
		return Principal{}, apperrors.Wrap(apperrors.ErrCodeAuth, "invalid token", err)
	}

	id := firstClaim(claims, "id", "userId", "sub")
	if id == "" {
		return Principal{}, apperrors.New(apperrors.ErrCodeAuth, "no user id in token")
	}
	email, _ := claims["email"].(string)
	return Principal{ID: id, Email: email}, nil
}

func firstClaim(claims jwt.MapClaims, names ...string) string {
	for _, name := range names {
		switch v := claims[name].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v != 0 {
				return strconv.FormatInt(int64(v), 10)
			}
		}
	}
	return ""
}

// Issue signs an access token for p that expires after ttl.
func Issue(secret string, p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":  p.ID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if p.Email != "" {
		claims["email"] = p.Email
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
