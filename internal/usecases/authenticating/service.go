package authenticating

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
	"github.com/vfg2006/traffic-insights-import/pkg/apiErrors"
)

// Os tokens são emitidos pela API do painel; aqui eles são apenas validados.
// IssueToken existe para operadores e testes (importctl token).
type Authenticator interface {
	ValidateToken(tokenString string) (*domain.Claims, error)
	IssueToken(claims domain.Claims, ttl time.Duration) (string, error)
}

type Service struct {
	secretKey []byte
	now       func() time.Time
}

func NewService(secretKey string) Authenticator {
	return &Service{
		secretKey: []byte(secretKey),
		now:       time.Now,
	}
}

func (s *Service) IssueToken(claims domain.Claims, ttl time.Duration) (string, error) {
	if len(s.secretKey) == 0 {
		return "", ErrMissingKey
	}

	issuedAt := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewAuthError(ErrExpiredToken, apiErrors.ErrExpiredToken, err.Error())
		}
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "")
	}

	return claims, nil
}
