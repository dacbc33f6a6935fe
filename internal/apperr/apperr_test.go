package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{Validation("titulo obrigatório"), http.StatusBadRequest, "VALIDATION"},
		{Conflict("email já cadastrado"), http.StatusBadRequest, "CONFLICT"},
		{NotFound("demanda não encontrada"), http.StatusNotFound, "NOT_FOUND"},
		{Unauthorized("token inválido"), http.StatusUnauthorized, "AUTH"},
		{Forbidden("sem permissão"), http.StatusForbidden, "FORBIDDEN"},
		{errors.New("conexão recusada"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range tests {
		kind := KindOf(tc.err)
		if kind.Status() != tc.status {
			t.Fatalf("%v: expected status %d got %d", tc.err, tc.status, kind.Status())
		}
		if kind.Code() != tc.code {
			t.Fatalf("%v: expected code %s got %s", tc.err, tc.code, kind.Code())
		}
	}
}

func TestFromWrapped(t *testing.T) {
	base := NotFound("usuário não encontrado").WithTipo("usuario_nao_encontrado")
	wrapped := fmt.Errorf("login: %w", base)

	got := From(wrapped)
	if got.Kind != KindNotFound || got.Tipo != "usuario_nao_encontrado" {
		t.Fatalf("unexpected error %+v", got)
	}
}

func TestPersistenceHidesCause(t *testing.T) {
	err := Persistence(errors.New("pq: relation does not exist"))
	if err.Error() != "erro interno" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if errors.Unwrap(err) == nil {
		t.Fatal("expected wrapped cause")
	}
}
