package status

import (
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("status não encontrado")
	ErrOrdemDuplicada = errors.New("ordem já utilizada")
	ErrEmUso          = errors.New("status em uso")
)

// Ordens reservadas: entrada e arquivamento do fluxo.
const (
	OrdemCaixaEntrada = 1
	OrdemArquivado    = 5

	CorPadrao = "#6c757d"
)

// Status é uma etapa do quadro kanban.
type Status struct {
	ID       int64     `json:"id"`
	Nome     string    `json:"nome"`
	Ordem    int       `json:"ordem"`
	Cor      string    `json:"cor"`
	Ativo    bool      `json:"ativo"`
	CriadoEm time.Time `json:"criado_em"`
}

// Sentinela indica as etapas que não podem ser removidas nem reordenadas.
func (s Status) Sentinela() bool {
	return IsSentinela(s.Ordem)
}

func IsSentinela(ordem int) bool {
	return ordem == OrdemCaixaEntrada || ordem == OrdemArquivado
}

// CreateInput encapsula a criação de etapa; ordem ausente vai para o fim.
type CreateInput struct {
	Nome  string
	Ordem *int
	Cor   *string
}

// UpdateInput altera nome e, opcionalmente, ordem, cor e ativação.
type UpdateInput struct {
	Nome  string
	Ordem *int
	Cor   *string
	Ativo *bool
}
