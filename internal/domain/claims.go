package domain

import "github.com/golang-jwt/jwt/v5"

// Claims são os dados do usuário do painel carregados no token de acesso
type Claims struct {
	UserID       int
	UserName     string
	UserEmail    string
	UserRoleID   int
	UserAccounts []string
	jwt.RegisteredClaims
}
