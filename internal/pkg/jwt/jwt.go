package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

const issuer = "microloan"

// Claims represents the JWT claims carried by an access token.
// Role is informational only; authorization always re-reads the user record.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256 access tokens
type Service struct {
	secret        []byte
	expiryMinutes int
}

// NewService creates a new token service
func NewService(secret string, expiryMinutes int) *Service {
	if expiryMinutes <= 0 {
		expiryMinutes = 60
	}
	return &Service{secret: []byte(secret), expiryMinutes: expiryMinutes}
}

// GenerateAccessToken generates a new access token for the given email
func (s *Service) GenerateAccessToken(email, role string) (string, error) {
	return s.generate(email, role, time.Now().Add(time.Duration(s.expiryMinutes)*time.Minute))
}

func (s *Service) generate(email, role string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: strings.ToLower(strings.TrimSpace(email)),
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Second)),
			Issuer:    issuer,
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateAccessToken validates an access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
