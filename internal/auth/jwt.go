package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HS256 signing secret accepted.
const MinSecretLength = 32

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingToken = errors.New("missing token")
)

// TokenManager issues and verifies session tokens.
type TokenManager interface {
	Generate(username string) (string, error)
	Verify(token string) (username string, err error)
}

// JWTManager signs HS256 tokens whose subject is the username.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager builds a manager. A non-positive ttl issues tokens without exp.
func NewJWTManager(secret []byte, ttl time.Duration) (*JWTManager, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	}
	return &JWTManager{secret: secret, ttl: ttl, now: time.Now}, nil
}

func (m *JWTManager) Generate(username string) (string, error) {
	if username == "" {
		return "", errors.New("token subject is required")
	}
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *JWTManager) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrMissingToken
	}
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// ExtractTokenFromHeader pulls the bearer token out of the Authorization header.
func ExtractTokenFromHeader(r *http.Request) (string, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(hdr, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("%w: malformed authorization header", ErrInvalidToken)
	}
	return strings.TrimSpace(parts[1]), nil
}

var _ TokenManager = (*JWTManager)(nil)
