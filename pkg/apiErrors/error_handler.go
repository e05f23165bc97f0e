package apiErrors

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Códigos de erro
const (
	// Erros de autenticação (1000-1999)
	ErrInvalidToken          = "AUTH_006" // Token inválido
	ErrExpiredToken          = "AUTH_007" // Token expirado
	ErrInsufficientPrivilege = "AUTH_008" // Privilégios insuficientes

	// Erros de validação (2000-2999)
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrPayloadTooLarge     = "VAL_004" // Arquivo acima do limite
	ErrNotFound            = "VAL_005" // Rota ou recurso inexistente
	ErrMethodNotAllowed    = "VAL_006" // Método não suportado pela rota

	// Erros de importação (3000-3999)
	ErrImportInvalid        = "IMP_001" // Tipo de dado, escopo ou arquivo inválidos
	ErrImportMissingColumns = "IMP_002" // Colunas obrigatórias ausentes
	ErrImportUnreadableFile = "IMP_003" // Arquivo ilegível

	// Erros do servidor (5000-5999)
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
	ErrCommunication     = "SRV_004" // Erro de comunicação
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidToken:          http.StatusUnauthorized,
	ErrExpiredToken:          http.StatusUnauthorized,
	ErrInsufficientPrivilege: http.StatusForbidden,
	ErrInvalidRequest:        http.StatusBadRequest,
	ErrMissingRequiredData:   http.StatusBadRequest,
	ErrInvalidFormat:         http.StatusBadRequest,
	ErrPayloadTooLarge:       http.StatusRequestEntityTooLarge,
	ErrNotFound:              http.StatusNotFound,
	ErrMethodNotAllowed:      http.StatusMethodNotAllowed,
	ErrImportInvalid:         http.StatusBadRequest,
	ErrImportMissingColumns:  http.StatusBadRequest,
	ErrImportUnreadableFile:  http.StatusBadRequest,
	ErrInternalServer:        http.StatusInternalServerError,
	ErrDatabaseOperation:     http.StatusInternalServerError,
	ErrCommunication:         http.StatusServiceUnavailable,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`              // Código de erro para o cliente
	Message string `json:"message,omitempty"` // Mensagem descritiva (opcional)
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

// Status devolve o status HTTP do código
func Status(code string) int {
	status, exists := httpStatusMap[code]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(Status(code))
	json.NewEncoder(w).Encode(apiErr)
}

// FromError cria um erro de API a partir de um erro Go
// Útil para quando você quer envolver um erro existente em um erro de API
func FromError(err error, code string) APIError {
	if err == nil {
		return APIError{
			Code:    ErrInternalServer,
			Message: "Erro desconhecido",
		}
	}

	return APIError{
		Code:    code,
		Message: err.Error(),
	}
}
