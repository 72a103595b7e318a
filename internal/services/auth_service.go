package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSession = errors.New("invalid or expired session")

// SessionClaims is the payload of the access_token cookie.
type SessionClaims struct {
	CustomerID int64 `json:"customer_id"`
	jwt.RegisteredClaims
}

// AuthService signs and verifies session tokens (HS256).
type AuthService struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewAuthService(secret string, ttl time.Duration) AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return AuthService{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue returns a signed token for the customer and its expiry.
func (s AuthService) Issue(customerID int64, taxID string) (string, time.Time, error) {
	if len(s.Secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret not configured")
	}
	now := s.now()
	exp := now.Add(s.TTL)
	claims := SessionClaims{
		CustomerID: customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   taxID,
			ID:        strconv.FormatInt(customerID, 10) + "-" + strconv.FormatInt(now.UnixNano(), 36),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, exp, nil
}

// Parse validates signature, algorithm and expiry.
func (s AuthService) Parse(token string) (SessionClaims, error) {
	var claims SessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.Secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.CustomerID <= 0 {
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return claims, nil
}
