package authenticating

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
	"github.com/vfg2006/traffic-insights-import/pkg/apiErrors"
)

func TestValidateToken(t *testing.T) {
	svc := NewService("segredo")

	token, err := svc.IssueToken(domain.Claims{UserID: 3, UserRoleID: 2, UserEmail: "ana@example.com"}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 3, claims.UserID)
	assert.Equal(t, 2, claims.UserRoleID)
}

func TestValidateToken_Erros(t *testing.T) {
	issuer := NewService("segredo").(*Service)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := issuer.IssueToken(domain.Claims{UserID: 1}, time.Hour)
	require.NoError(t, err)

	otherKey, err := NewService("outra-chave").IssueToken(domain.Claims{UserID: 1}, time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, domain.Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		wantErr  error
		wantCode string
	}{
		{name: "token expirado", token: expired, wantErr: ErrExpiredToken, wantCode: apiErrors.ErrExpiredToken},
		{name: "assinado com outra chave", token: otherKey, wantErr: ErrInvalidToken, wantCode: apiErrors.ErrInvalidToken},
		{name: "algoritmo none", token: none, wantErr: ErrInvalidToken, wantCode: apiErrors.ErrInvalidToken},
		{name: "lixo", token: "abc.def", wantErr: ErrInvalidToken, wantCode: apiErrors.ErrInvalidToken},
	}

	svc := NewService("segredo")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)

			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantCode, authErr.Code)
		})
	}
}

func TestIssueToken_SemChave(t *testing.T) {
	_, err := NewService("").IssueToken(domain.Claims{}, time.Hour)
	assert.ErrorIs(t, err, ErrMissingKey)
}
