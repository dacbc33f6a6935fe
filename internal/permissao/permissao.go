// Package permissao concentra a política de acesso do gabinete.
package permissao

import (
	"strings"

	"github.com/google/uuid"
)

type Nivel string

const (
	Administrador   Nivel = "administrador"
	ChefeGabinete   Nivel = "chefe_gabinete"
	Supervisor      Nivel = "supervisor"
	AssessorInterno Nivel = "assessor_interno"
	AssessorExterno Nivel = "assessor_externo"
)

var niveis = map[Nivel]struct{}{
	Administrador:   {},
	ChefeGabinete:   {},
	Supervisor:      {},
	AssessorInterno: {},
	AssessorExterno: {},
}

// Ator é a identidade autenticada que executa uma operação.
type Ator struct {
	ID    uuid.UUID
	Email string
	Nivel Nivel
}

// Normalize padroniza o nível informado.
func Normalize(nivel string) Nivel {
	return Nivel(strings.ToLower(strings.TrimSpace(nivel)))
}

// IsValid indica se o nível pertence à hierarquia do gabinete.
func IsValid(nivel Nivel) bool {
	_, ok := niveis[nivel]
	return ok
}

func (a Ator) oneOf(alvos ...Nivel) bool {
	for _, n := range alvos {
		if a.Nivel == n {
			return true
		}
	}
	return false
}

// PodeEditarDemanda cobre editar, mover, excluir e compartilhar demandas.
func PodeEditarDemanda(a Ator, responsavelID uuid.UUID) bool {
	if a.oneOf(Administrador, ChefeGabinete, Supervisor) {
		return true
	}
	return a.ID != uuid.Nil && a.ID == responsavelID
}

// PodeExcluirComentario permite a chefia ou o autor.
func PodeExcluirComentario(a Ator, autorID uuid.UUID) bool {
	if a.oneOf(Administrador, ChefeGabinete) {
		return true
	}
	return a.ID != uuid.Nil && a.ID == autorID
}

func PodeGerenciarStatus(a Ator) bool {
	return a.oneOf(Administrador, ChefeGabinete, Supervisor)
}

// PodeGerenciarUsuarios cobre cadastro, edição, reset de senha e estatísticas de acesso.
func PodeGerenciarUsuarios(a Ator) bool {
	return a.oneOf(Administrador, ChefeGabinete)
}

// PodeDesativarUsuario impede que o gestor desative a própria conta.
func PodeDesativarUsuario(a Ator, alvoID uuid.UUID) bool {
	return PodeGerenciarUsuarios(a) && a.ID != alvoID
}
