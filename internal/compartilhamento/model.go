// Package compartilhamento publica uma visão reduzida da demanda por link.
package compartilhamento

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/gabinete/internal/comentario"
)

const (
	statusIndefinido     = "Não definido"
	corIndefinida        = "#6c757d"
	cidadaoIndefinido    = "Não informado"
	mensagemLinkInvalido = "Link inválido ou expirado"
)

var ErrNotFound = errors.New("demanda não encontrada")

// Info é o estado de compartilhamento de uma demanda.
type Info struct {
	DemandaID       uuid.UUID
	Titulo          string
	ResponsavelID   uuid.UUID
	Token           *string
	Ativo           bool
	CompartilhadoEm *time.Time
}

// Link é devolvido ao gerar um compartilhamento.
type Link struct {
	Token   string        `json:"token"`
	Link    string        `json:"link"`
	Demanda DemandaResumo `json:"demanda"`
}

type DemandaResumo struct {
	ID     uuid.UUID `json:"id"`
	Titulo string    `json:"titulo"`
}

// Situacao responde se a demanda está compartilhada; o token só aparece com link ativo.
type Situacao struct {
	Compartilhado        bool       `json:"compartilhado"`
	Token                *string    `json:"token"`
	DataCompartilhamento *time.Time `json:"data_compartilhamento"`
}

// Registro é a linha mínima lida para a visão pública.
type Registro struct {
	DemandaID   uuid.UUID
	Titulo      string
	Descricao   string
	CriadoEm    time.Time
	StatusNome  *string
	StatusCor   *string
	CidadaoNome *string
}

// DemandaPublica omite telefone, endereço, responsável e comentários internos.
type DemandaPublica struct {
	Titulo              string               `json:"titulo"`
	Descricao           string               `json:"descricao"`
	CriadoEm            time.Time            `json:"criado_em"`
	StatusAtual         StatusPublico        `json:"status_atual"`
	Cidadao             string               `json:"cidadao"`
	Historico           []HistoricoPublico   `json:"historico"`
	ComentariosPublicos []comentario.Publico `json:"comentarios_publicos"`
}

type StatusPublico struct {
	Nome string `json:"nome"`
	Cor  string `json:"cor"`
}

type HistoricoPublico struct {
	StatusNome string    `json:"status_nome"`
	AlteradoEm time.Time `json:"alterado_em"`
}
