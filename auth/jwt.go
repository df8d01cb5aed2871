package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 720 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by a session token.
type Claims struct {
	UserID uint
	Role   string
}

// Signer issues and parses HS256 session tokens.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

func (s *Signer) Sign(userID uint, role string) (string, error) {
	claims := jwt.MapClaims{
		"id":   strconv.FormatUint(uint64(userID), 10),
		"role": role,
		"exp":  s.now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Signer) Parse(tokenString string) (Claims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	idStr, _ := claims["id"].(string)
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return Claims{}, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	return Claims{UserID: uint(id), Role: role}, nil
}
