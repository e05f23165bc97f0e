package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ScopeAll é o valor sentinela de clientId para importar em todas as contas
const ScopeAll = "all"

// Account é a entidade dona dos dados importados (cliente do painel)
type Account struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	DisplayName *string `json:"display_name"` // Nome da conta como aparece nas exportações
	Active      bool    `json:"active"`
}

// Scope define quais contas uma importação atinge
type Scope struct {
	All       bool
	AccountID int64
}

// ParseScope interpreta o token recebido em clientId
func ParseScope(token string) (Scope, error) {
	token = strings.TrimSpace(token)
	if strings.EqualFold(token, ScopeAll) {
		return Scope{All: true}, nil
	}

	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil || id <= 0 {
		return Scope{}, fmt.Errorf("clientId inválido: %q", token)
	}

	return Scope{AccountID: id}, nil
}

func (s Scope) String() string {
	if s.All {
		return ScopeAll
	}
	return strconv.FormatInt(s.AccountID, 10)
}

// AccountLookup mapeia o nome de exibição normalizado para o ID interno da conta.
// É montado uma vez por importação e depois apenas lido.
type AccountLookup map[string]int64

// NewAccountLookup monta o mapa a partir das contas cadastradas; o nome de exibição
// tem prioridade sobre o nome interno quando ambos existem.
func NewAccountLookup(accounts []*Account) AccountLookup {
	lookup := make(AccountLookup, len(accounts)*2)
	for _, acc := range accounts {
		if acc == nil {
			continue
		}
		if key := normalizeName(acc.Name); key != "" {
			if _, exists := lookup[key]; !exists {
				lookup[key] = acc.ID
			}
		}
	}
	for _, acc := range accounts {
		if acc == nil || acc.DisplayName == nil {
			continue
		}
		if key := normalizeName(*acc.DisplayName); key != "" {
			lookup[key] = acc.ID
		}
	}
	return lookup
}

// Resolve busca o ID da conta ignorando maiúsculas/minúsculas e espaços nas pontas
func (l AccountLookup) Resolve(name string) (int64, bool) {
	key := normalizeName(name)
	if key == "" {
		return 0, false
	}
	id, ok := l[key]
	return id, ok
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
