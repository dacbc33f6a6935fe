package demanda

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/gabinete/internal/alerta"
	"github.com/gestaozabele/gabinete/internal/apperr"
	"github.com/gestaozabele/gabinete/internal/cidadao"
	"github.com/gestaozabele/gabinete/internal/permissao"
	"github.com/gestaozabele/gabinete/internal/status"
)

const alertTimeout = 10 * time.Second

// DemandaRepository abstrai a persistência das demandas.
type DemandaRepository interface {
	Create(ctx context.Context, params CreateParams) (*Demanda, error)
	Get(ctx context.Context, id uuid.UUID) (*Demanda, error)
	List(ctx context.Context, filter Filter) ([]Demanda, error)
	Transition(ctx context.Context, id uuid.UUID, statusID int64, ator uuid.UUID) (*Demanda, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams, ator uuid.UUID) (*Demanda, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Historico(ctx context.Context, id uuid.UUID) ([]HistoricoItem, error)
	Estatisticas(ctx context.Context, usuarioID uuid.UUID) (*Estatisticas, error)
}

// CidadaoResolver localiza ou cadastra o cidadão do envio combinado.
type CidadaoResolver interface {
	FindOrCreate(ctx context.Context, input cidadao.CreateInput) (*cidadao.Cidadao, bool, error)
}

// StatusLister fornece as colunas do kanban.
type StatusLister interface {
	ListAtivos(ctx context.Context) ([]status.Status, error)
}

// Service concentra o ciclo de vida das demandas.
type Service struct {
	repo     DemandaRepository
	cidadaos CidadaoResolver
	status   StatusLister
	notifier alerta.Notifier
	logger   zerolog.Logger
}

func NewService(repo DemandaRepository, cidadaos CidadaoResolver, statusLister StatusLister, notifier alerta.Notifier) *Service {
	return &Service{
		repo:     repo,
		cidadaos: cidadaos,
		status:   statusLister,
		notifier: notifier,
		logger:   log.With().Str("component", "demanda").Logger(),
	}
}

// Create abre a demanda; sem status informado ela entra na Caixa de Entrada.
func (s *Service) Create(ctx context.Context, ator permissao.Ator, input CreateInput) (*Demanda, error) {
	params := CreateParams{
		Titulo:     strings.TrimSpace(input.Titulo),
		Descricao:  strings.TrimSpace(input.Descricao),
		Prioridade: NormalizePrioridade(input.Prioridade),
	}
	if params.Titulo == "" {
		return nil, apperr.Validation("titulo é obrigatório")
	}
	if !IsValidPrioridade(params.Prioridade) {
		return nil, apperr.Validation("prioridade inválida")
	}
	if input.UsuarioResponsavelID == nil || *input.UsuarioResponsavelID == uuid.Nil {
		return nil, apperr.Validation("usuario_responsavel_id é obrigatório")
	}
	params.UsuarioResponsavelID = *input.UsuarioResponsavelID

	params.UsuarioOrigemID = ator.ID
	if input.UsuarioOrigemID != nil && *input.UsuarioOrigemID != uuid.Nil {
		params.UsuarioOrigemID = *input.UsuarioOrigemID
	}
	if params.UsuarioOrigemID == uuid.Nil {
		return nil, apperr.Validation("usuario_origem_id é obrigatório")
	}

	switch {
	case input.CidadaoID != nil && *input.CidadaoID != uuid.Nil:
		params.CidadaoID = *input.CidadaoID
	case input.Cidadao != nil:
		c, created, err := s.cidadaos.FindOrCreate(ctx, *input.Cidadao)
		if err != nil {
			return nil, err
		}
		if created {
			s.logger.Info().Str("cidadao_id", c.ID.String()).Msg("cidadão cadastrado junto com demanda")
		}
		params.CidadaoID = c.ID
	default:
		return nil, apperr.Validation("cidadao_id é obrigatório")
	}

	if input.StatusID != nil {
		params.StatusID = *input.StatusID
	} else {
		id, err := s.caixaEntrada(ctx)
		if err != nil {
			return nil, err
		}
		params.StatusID = id
	}

	d, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, translate(err)
	}

	if d.Prioridade == PrioridadeUrgente {
		s.alertarUrgente(*d)
	}
	return d, nil
}

func (s *Service) caixaEntrada(ctx context.Context) (int64, error) {
	items, err := s.status.ListAtivos(ctx)
	if err != nil {
		return 0, apperr.Persistence(err)
	}
	for _, st := range items {
		if st.Ordem == status.OrdemCaixaEntrada {
			return st.ID, nil
		}
	}
	return 0, apperr.Validation("status_id é obrigatório")
}

func (s *Service) alertarUrgente(d Demanda) {
	if s.notifier == nil {
		return
	}
	msg := alerta.Mensagem{
		Titulo:     "Nova demanda urgente",
		Texto:      fmt.Sprintf("%s (%s)", d.Titulo, d.ID),
		Severidade: alerta.SeveridadeCritica,
	}
	if d.Cidadao != nil {
		msg.Texto += "\nCidadão: " + d.Cidadao.NomeCompleto
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, msg); err != nil {
			s.logger.Warn().Err(err).Str("demanda_id", d.ID.String()).Msg("falha ao enviar alerta de demanda urgente")
		}
	}()
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Demanda, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

// List valida os filtros antes de consultar.
func (s *Service) List(ctx context.Context, filter Filter) ([]Demanda, error) {
	if filter.Prioridade != "" {
		filter.Prioridade = NormalizePrioridade(filter.Prioridade)
		if !IsValidPrioridade(filter.Prioridade) {
			return nil, apperr.Validation("prioridade inválida")
		}
	}
	if filter.DataInicio != nil && filter.DataFim != nil && filter.DataFim.Before(*filter.DataInicio) {
		return nil, apperr.Validation("data_fim anterior a data_inicio")
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, apperr.Validation("paginação inválida")
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return items, nil
}

// Kanban agrupa as demandas pelas etapas ativas, urgentes primeiro.
func (s *Service) Kanban(ctx context.Context) ([]ColunaKanban, error) {
	etapas, err := s.status.ListAtivos(ctx)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	items, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return montarKanban(etapas, items), nil
}

func montarKanban(etapas []status.Status, items []Demanda) []ColunaKanban {
	sort.SliceStable(etapas, func(i, j int) bool { return etapas[i].Ordem < etapas[j].Ordem })

	porStatus := make(map[int64][]Demanda, len(etapas))
	for _, d := range items {
		porStatus[d.StatusID] = append(porStatus[d.StatusID], d)
	}

	colunas := make([]ColunaKanban, 0, len(etapas))
	for _, st := range etapas {
		demandas := porStatus[st.ID]
		if demandas == nil {
			demandas = []Demanda{}
		}
		sort.SliceStable(demandas, func(i, j int) bool {
			pi, pj := PesoPrioridade(demandas[i].Prioridade), PesoPrioridade(demandas[j].Prioridade)
			if pi != pj {
				return pi < pj
			}
			return demandas[i].CriadoEm.After(demandas[j].CriadoEm)
		})
		colunas = append(colunas, ColunaKanban{
			Status:   StatusResumo{ID: st.ID, Nome: st.Nome, Cor: st.Cor, Ordem: st.Ordem},
			Demandas: demandas,
		})
	}
	return colunas
}

// Transition move a demanda para outra etapa registrando o histórico.
func (s *Service) Transition(ctx context.Context, ator permissao.Ator, id uuid.UUID, statusID *int64) (*Demanda, error) {
	if statusID == nil {
		return nil, apperr.Validation("status_id é obrigatório")
	}

	atual, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !permissao.PodeEditarDemanda(ator, atual.UsuarioResponsavelID) {
		return nil, apperr.Forbidden("Sem permissão para alterar esta demanda")
	}

	d, err := s.repo.Transition(ctx, id, *statusID, ator.ID)
	if err != nil {
		return nil, translate(err)
	}
	s.logger.Info().
		Str("demanda_id", id.String()).
		Int64("status_id", *statusID).
		Str("usuario_id", ator.ID.String()).
		Msg("status da demanda alterado")
	return d, nil
}

// Update substitui os campos editáveis.
func (s *Service) Update(ctx context.Context, ator permissao.Ator, id uuid.UUID, input UpdateInput) (*Demanda, error) {
	atual, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !permissao.PodeEditarDemanda(ator, atual.UsuarioResponsavelID) {
		return nil, apperr.Forbidden("Sem permissão para editar esta demanda")
	}

	params := UpdateParams{
		Titulo:               strings.TrimSpace(input.Titulo),
		Descricao:            strings.TrimSpace(input.Descricao),
		Prioridade:           NormalizePrioridade(input.Prioridade),
		UsuarioResponsavelID: atual.UsuarioResponsavelID,
		StatusID:             atual.StatusID,
	}
	if params.Titulo == "" {
		return nil, apperr.Validation("titulo é obrigatório")
	}
	if !IsValidPrioridade(params.Prioridade) {
		return nil, apperr.Validation("prioridade inválida")
	}
	if input.UsuarioResponsavelID != nil && *input.UsuarioResponsavelID != uuid.Nil {
		params.UsuarioResponsavelID = *input.UsuarioResponsavelID
	}
	if input.StatusID != nil {
		params.StatusID = *input.StatusID
	}

	d, err := s.repo.Update(ctx, id, params, ator.ID)
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, ator permissao.Ator, id uuid.UUID) error {
	atual, err := s.repo.Get(ctx, id)
	if err != nil {
		return translate(err)
	}
	if !permissao.PodeEditarDemanda(ator, atual.UsuarioResponsavelID) {
		return apperr.Forbidden("Sem permissão para excluir esta demanda")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.logger.Info().Str("demanda_id", id.String()).Str("usuario_id", ator.ID.String()).Msg("demanda excluída")
	return nil
}

func (s *Service) Historico(ctx context.Context, id uuid.UUID) ([]HistoricoItem, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, translate(err)
	}
	items, err := s.repo.Historico(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return items, nil
}

// Estatisticas resume o painel para o usuário informado.
func (s *Service) Estatisticas(ctx context.Context, ator permissao.Ator) (*Estatisticas, error) {
	est, err := s.repo.Estatisticas(ctx, ator.ID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return est, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("Demanda não encontrada")
	case errors.Is(err, ErrStatusInvalido):
		return apperr.Validation("Status inválido")
	case errors.Is(err, ErrReferenciaInvalida):
		return apperr.Validation("cidadão, usuário ou status inexistente")
	default:
		return apperr.From(err)
	}
}
