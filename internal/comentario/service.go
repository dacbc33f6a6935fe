package comentario

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/gabinete/internal/apperr"
	"github.com/gestaozabele/gabinete/internal/permissao"
)

// ComentarioRepository abstrai a persistência de comentários.
type ComentarioRepository interface {
	Create(ctx context.Context, demandaID, usuarioID uuid.UUID, texto string, publico bool) (*Comentario, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Comentario, error)
	ListByDemanda(ctx context.Context, demandaID uuid.UUID) ([]Comentario, error)
	ListPublicos(ctx context.Context, demandaID uuid.UUID) ([]Publico, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo ComentarioRepository
}

func NewService(repo ComentarioRepository) *Service {
	return &Service{repo: repo}
}

// Create registra o comentário em nome do autor autenticado.
func (s *Service) Create(ctx context.Context, ator permissao.Ator, input CreateInput) (*Comentario, error) {
	texto := strings.TrimSpace(input.Comentario)
	if input.DemandaID == nil || *input.DemandaID == uuid.Nil || texto == "" {
		return nil, apperr.Validation("demanda_id e comentario são obrigatórios")
	}

	c, err := s.repo.Create(ctx, *input.DemandaID, ator.ID, texto, input.Publico)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Comentario, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (s *Service) ListByDemanda(ctx context.Context, demandaID uuid.UUID) ([]Comentario, error) {
	items, err := s.repo.ListByDemanda(ctx, demandaID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return items, nil
}

// ListPublicos alimenta a visão pública da demanda.
func (s *Service) ListPublicos(ctx context.Context, demandaID uuid.UUID) ([]Publico, error) {
	return s.repo.ListPublicos(ctx, demandaID)
}

// Delete permite a chefia ou o próprio autor.
func (s *Service) Delete(ctx context.Context, ator permissao.Ator, id uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if !permissao.PodeExcluirComentario(ator, c.UsuarioID) {
		return apperr.Forbidden("Sem permissão para excluir este comentário")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	log.Info().Str("comentario_id", id.String()).Str("usuario_id", ator.ID.String()).Msg("comentário excluído")
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("Comentário não encontrado")
	case errors.Is(err, ErrDemandaInexistente):
		return apperr.NotFound("Demanda não encontrada")
	default:
		return apperr.From(err)
	}
}
