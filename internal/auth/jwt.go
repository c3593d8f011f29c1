package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/packline/jobdesk-api/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrNoSecret     = errors.New("jwt secret is not configured")
)

// Claims are the JWT claims issued at login. id and role are read by the
// frontend, so they stay top-level.
type Claims struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HMAC signed user tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(cfg *config.AuthConfig) *TokenManager {
	ttl := cfg.TokenTTLDuration()
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// Issue signs a token for the user
func (m *TokenManager) Issue(userID int64, role string) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrNoSecret
	}
	now := m.now()
	claims := Claims{
		ID:   userID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ValidateToken verifies a token and returns the user it was issued to
func (m *TokenManager) ValidateToken(tokenString string) (*UserContext, error) {
	if len(m.secret) == 0 {
		return nil, ErrNoSecret
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.ID == 0 {
		return nil, ErrInvalidToken
	}

	return &UserContext{UserID: claims.ID, Role: claims.Role}, nil
}
