// Package apperr define a taxonomia de erros compartilhada pelos domínios.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifica falhas de domínio.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
)

// Error carrega a classe da falha, a mensagem exibida e um motivo estável opcional.
type Error struct {
	Kind    Kind
	Tipo    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithTipo define o motivo estável usado pelo cliente para ramificar.
func (e *Error) WithTipo(tipo string) *Error {
	e.Tipo = tipo
	return e
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Persistence embrulha falhas do banco sem expor detalhes ao cliente.
func Persistence(err error) *Error {
	return &Error{Kind: KindInternal, Message: "erro interno", Err: err}
}

// From extrai *Error da cadeia; erros desconhecidos viram falha interna.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Persistence(err)
}

// KindOf devolve a classe do erro.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	return From(err).Kind
}

// Status mapeia a classe para o código HTTP.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Code devolve o código de máquina da classe.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "AUTH"
	case KindForbidden:
		return "FORBIDDEN"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}
