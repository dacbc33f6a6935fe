package compartilhamento

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/gabinete/internal/apperr"
	"github.com/gestaozabele/gabinete/internal/auth"
	"github.com/gestaozabele/gabinete/internal/comentario"
	"github.com/gestaozabele/gabinete/internal/demanda"
	"github.com/gestaozabele/gabinete/internal/permissao"
	"github.com/gestaozabele/gabinete/internal/util"
)

// CompartilhamentoRepository abstrai a persistência do link público.
type CompartilhamentoRepository interface {
	GetInfo(ctx context.Context, demandaID uuid.UUID) (*Info, error)
	Ativar(ctx context.Context, demandaID uuid.UUID, token string, ator uuid.UUID) (time.Time, error)
	Desativar(ctx context.Context, demandaID uuid.UUID) error
	FindAtivo(ctx context.Context, token string) (*Registro, error)
}

type HistoricoSource interface {
	Historico(ctx context.Context, demandaID uuid.UUID) ([]demanda.HistoricoItem, error)
}

type ComentarioSource interface {
	ListPublicos(ctx context.Context, demandaID uuid.UUID) ([]comentario.Publico, error)
}

type Service struct {
	repo        CompartilhamentoRepository
	historico   HistoricoSource
	comentarios ComentarioSource
	viewURL     string
}

func NewService(repo CompartilhamentoRepository, historico HistoricoSource, comentarios ComentarioSource, viewURL string) *Service {
	return &Service{repo: repo, historico: historico, comentarios: comentarios, viewURL: viewURL}
}

// Gerar cria um novo token; chamadas repetidas derrubam o link anterior.
func (s *Service) Gerar(ctx context.Context, ator permissao.Ator, demandaID uuid.UUID) (*Link, error) {
	info, err := s.autorizar(ctx, ator, demandaID, "Você não tem permissão para compartilhar esta demanda")
	if err != nil {
		return nil, err
	}

	token, err := auth.GerarTokenCompartilhamento()
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if _, err := s.repo.Ativar(ctx, demandaID, token, ator.ID); err != nil {
		return nil, translate(err)
	}

	log.Info().Str("demanda_id", demandaID.String()).Str("usuario_id", ator.ID.String()).Msg("link de compartilhamento gerado")
	return &Link{
		Token:   token,
		Link:    s.link(token),
		Demanda: DemandaResumo{ID: info.DemandaID, Titulo: info.Titulo},
	}, nil
}

func (s *Service) link(token string) string {
	sep := "?"
	if strings.Contains(s.viewURL, "?") {
		sep = "&"
	}
	return s.viewURL + sep + "token=" + url.QueryEscape(token)
}

// Desativar desliga o link existente.
func (s *Service) Desativar(ctx context.Context, ator permissao.Ator, demandaID uuid.UUID) error {
	info, err := s.autorizar(ctx, ator, demandaID, "Você não tem permissão para desativar o compartilhamento desta demanda")
	if err != nil {
		return err
	}
	if !info.Ativo {
		return apperr.Validation("Esta demanda não está compartilhada")
	}
	if err := s.repo.Desativar(ctx, demandaID); err != nil {
		return translate(err)
	}
	log.Info().Str("demanda_id", demandaID.String()).Str("usuario_id", ator.ID.String()).Msg("compartilhamento desativado")
	return nil
}

func (s *Service) Situacao(ctx context.Context, ator permissao.Ator, demandaID uuid.UUID) (*Situacao, error) {
	info, err := s.autorizar(ctx, ator, demandaID, "Você não tem permissão para consultar esta demanda")
	if err != nil {
		return nil, err
	}
	sit := &Situacao{Compartilhado: info.Ativo, DataCompartilhamento: info.CompartilhadoEm}
	if info.Ativo {
		sit.Token = info.Token
	}
	return sit, nil
}

// Publico monta a projeção sem dados sensíveis; token desconhecido e link desativado são indistinguíveis.
func (s *Service) Publico(ctx context.Context, token string) (*DemandaPublica, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.NotFound(mensagemLinkInvalido)
	}

	reg, err := s.repo.FindAtivo(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound(mensagemLinkInvalido)
		}
		return nil, apperr.Persistence(err)
	}

	pub := &DemandaPublica{
		Titulo:              reg.Titulo,
		Descricao:           reg.Descricao,
		CriadoEm:            reg.CriadoEm,
		StatusAtual:         StatusPublico{Nome: statusIndefinido, Cor: corIndefinida},
		Cidadao:             cidadaoIndefinido,
		Historico:           []HistoricoPublico{},
		ComentariosPublicos: []comentario.Publico{},
	}
	if reg.StatusNome != nil && *reg.StatusNome != "" {
		pub.StatusAtual.Nome = *reg.StatusNome
	}
	if reg.StatusCor != nil && *reg.StatusCor != "" {
		pub.StatusAtual.Cor = *reg.StatusCor
	}
	if reg.CidadaoNome != nil {
		if nome := util.FirstAndLastName(*reg.CidadaoNome); nome != "" {
			pub.Cidadao = nome
		}
	}

	hist, err := s.historico.Historico(ctx, reg.DemandaID)
	if err != nil {
		log.Warn().Err(err).Str("demanda_id", reg.DemandaID.String()).Msg("falha ao carregar histórico público")
	}
	for _, h := range hist {
		pub.Historico = append(pub.Historico, HistoricoPublico{StatusNome: h.StatusNome, AlteradoEm: h.AlteradoEm})
	}

	comentarios, err := s.comentarios.ListPublicos(ctx, reg.DemandaID)
	if err != nil {
		log.Warn().Err(err).Str("demanda_id", reg.DemandaID.String()).Msg("falha ao carregar comentários públicos")
	} else if comentarios != nil {
		pub.ComentariosPublicos = comentarios
	}
	return pub, nil
}

func (s *Service) autorizar(ctx context.Context, ator permissao.Ator, demandaID uuid.UUID, negado string) (*Info, error) {
	info, err := s.repo.GetInfo(ctx, demandaID)
	if err != nil {
		return nil, translate(err)
	}
	if !permissao.PodeEditarDemanda(ator, info.ResponsavelID) {
		return nil, apperr.Forbidden(negado)
	}
	return info, nil
}

func translate(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Demanda não encontrada")
	}
	return apperr.From(err)
}
