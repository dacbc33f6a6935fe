package demanda

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/gabinete/internal/cidadao"
	"github.com/gestaozabele/gabinete/internal/usuario"
)

var (
	ErrNotFound           = errors.New("demanda não encontrada")
	ErrStatusInvalido     = errors.New("status inexistente")
	ErrReferenciaInvalida = errors.New("referência inválida")
)

const (
	PrioridadeUrgente = "urgente"
	PrioridadeAlta    = "alta"
	PrioridadeMedia   = "media"
	PrioridadeBaixa   = "baixa"
)

var pesosPrioridade = map[string]int{
	PrioridadeUrgente: 1,
	PrioridadeAlta:    2,
	PrioridadeMedia:   3,
	PrioridadeBaixa:   4,
}

// Demanda representa uma solicitação de cidadão acompanhada pelo gabinete.
type Demanda struct {
	ID                    uuid.UUID       `json:"id"`
	Titulo                string          `json:"titulo"`
	Descricao             string          `json:"descricao"`
	Prioridade            string          `json:"prioridade"`
	CidadaoID             uuid.UUID       `json:"cidadao_id"`
	UsuarioResponsavelID  uuid.UUID       `json:"usuario_responsavel_id"`
	UsuarioOrigemID       uuid.UUID       `json:"usuario_origem_id"`
	StatusID              int64           `json:"status_id"`
	CompartilhamentoAtivo bool            `json:"compartilhamento_ativo"`
	CompartilhadoEm       *time.Time      `json:"compartilhado_em"`
	CriadoEm              time.Time       `json:"criado_em"`
	AtualizadoEm          time.Time       `json:"atualizado_em"`
	Cidadao               *cidadao.Resumo `json:"cidadao,omitempty"`
	Responsavel           *usuario.Resumo `json:"usuario_responsavel,omitempty"`
	Status                *StatusResumo   `json:"status,omitempty"`
}

// StatusResumo é a etapa atual embutida na demanda.
type StatusResumo struct {
	ID    int64  `json:"id"`
	Nome  string `json:"nome"`
	Cor   string `json:"cor"`
	Ordem int    `json:"ordem"`
}

// HistoricoItem registra uma passagem de etapa.
type HistoricoItem struct {
	StatusID    *int64     `json:"status_id"`
	StatusNome  string     `json:"status_nome"`
	AlteradoPor *uuid.UUID `json:"alterado_por"`
	AlteradoEm  time.Time  `json:"alterado_em"`
}

// CreateInput encapsula a abertura de demanda; Cidadao substitui CidadaoID no envio combinado.
type CreateInput struct {
	Titulo               string
	Descricao            string
	Prioridade           string
	CidadaoID            *uuid.UUID
	Cidadao              *cidadao.CreateInput
	UsuarioResponsavelID *uuid.UUID
	UsuarioOrigemID      *uuid.UUID
	StatusID             *int64
}

// CreateParams são os campos já validados gravados pelo repositório.
type CreateParams struct {
	Titulo               string
	Descricao            string
	Prioridade           string
	CidadaoID            uuid.UUID
	UsuarioResponsavelID uuid.UUID
	UsuarioOrigemID      uuid.UUID
	StatusID             int64
}

// UpdateInput substitui os campos editáveis da demanda.
type UpdateInput struct {
	Titulo               string
	Descricao            string
	Prioridade           string
	UsuarioResponsavelID *uuid.UUID
	StatusID             *int64
}

// UpdateParams são os campos já validados da edição.
type UpdateParams struct {
	Titulo               string
	Descricao            string
	Prioridade           string
	UsuarioResponsavelID uuid.UUID
	StatusID             int64
}

// Filter restringe a listagem; datas são limites inclusivos por dia.
type Filter struct {
	StatusID      *int64
	Prioridade    string
	ResponsavelID *uuid.UUID
	Busca         string
	DataInicio    *time.Time
	DataFim       *time.Time
	Limit         int
	Offset        int
}

// ColunaKanban agrupa as demandas de uma etapa.
type ColunaKanban struct {
	Status   StatusResumo `json:"status"`
	Demandas []Demanda    `json:"demandas"`
}

// Estatisticas resume o painel inicial.
type Estatisticas struct {
	Total         int            `json:"total"`
	Pendentes     int            `json:"pendentes"`
	Concluidas    int            `json:"concluidas"`
	Arquivadas    int            `json:"arquivadas"`
	PorStatus     map[string]int `json:"por_status"`
	PorPrioridade map[string]int `json:"por_prioridade"`
	Minhas        MinhasDemandas `json:"minhas"`
}

// MinhasDemandas conta as demandas sob responsabilidade do usuário.
type MinhasDemandas struct {
	AFazer      int `json:"a_fazer"`
	EmProgresso int `json:"em_progresso"`
	Concluidas  int `json:"concluidas"`
}

// NormalizePrioridade padroniza prioridade; vazio vira média.
func NormalizePrioridade(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return PrioridadeMedia
	}
	return p
}

// IsValidPrioridade indica se prioridade é aceita.
func IsValidPrioridade(p string) bool {
	_, ok := pesosPrioridade[p]
	return ok
}

// PesoPrioridade ordena urgente primeiro; valores desconhecidos vão ao fim.
func PesoPrioridade(p string) int {
	if w, ok := pesosPrioridade[p]; ok {
		return w
	}
	return 5
}
