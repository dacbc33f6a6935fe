package comentario

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/gabinete/internal/usuario"
)

var (
	ErrNotFound           = errors.New("comentário não encontrado")
	ErrDemandaInexistente = errors.New("demanda inexistente")
)

// Comentario é uma anotação interna ou pública sobre a demanda.
type Comentario struct {
	ID         uuid.UUID       `json:"id"`
	DemandaID  uuid.UUID       `json:"demanda_id"`
	UsuarioID  uuid.UUID       `json:"usuario_id"`
	Comentario string          `json:"comentario"`
	Publico    bool            `json:"publico"`
	CriadoEm   time.Time       `json:"criado_em"`
	Autor      *usuario.Resumo `json:"usuario,omitempty"`
}

// Publico é a projeção exibida no link compartilhado.
type Publico struct {
	Comentario string    `json:"comentario"`
	CriadoEm   time.Time `json:"criado_em"`
}

type CreateInput struct {
	DemandaID  *uuid.UUID
	Comentario string
	Publico    bool
}
