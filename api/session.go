package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokens signs the tokens that bind UI requests to the device session.
// They are not credentials; login itself is not verified.
type SessionTokens struct {
	secret   string
	duration time.Duration
}

func NewSessionTokens(secret string, duration time.Duration) *SessionTokens {
	return &SessionTokens{secret: secret, duration: duration}
}

func (s *SessionTokens) Issue(phone string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"phone": phone,
		"exp":   time.Now().Add(s.duration).Unix(),
	})
	return token.SignedString([]byte(s.secret))
}
