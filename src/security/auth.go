package security

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService issues and validates the short-lived admin tokens exchanged
// for the static shared secret.
type AuthService struct {
	JWTSecret   string
	AdminSecret string
	TokenExpiry time.Duration
}

func NewAuthService(jwtSecret, adminSecret string, tokenExpiry time.Duration) *AuthService {
	return &AuthService{
		JWTSecret:   jwtSecret,
		AdminSecret: adminSecret,
		TokenExpiry: tokenExpiry,
	}
}

var ErrBadSecret = errors.New("invalid admin secret")

// CheckAdminSecret compares the presented secret against the configured one
// in constant time. An empty configured secret disables admin access.
func (a *AuthService) CheckAdminSecret(presented string) error {
	if a.AdminSecret == "" {
		return ErrBadSecret
	}
	if subtle.ConstantTimeCompare([]byte(a.AdminSecret), []byte(presented)) != 1 {
		return ErrBadSecret
	}
	return nil
}

func (a *AuthService) GenerateToken(subject string) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(a.TokenExpiry).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.JWTSecret))
}

func (a *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.JWTSecret), nil
	})

	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token missing subject claim")
	}
	return sub, nil
}
