package status

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/gabinete/internal/apperr"
	"github.com/gestaozabele/gabinete/internal/permissao"
)

const (
	cacheKeyAtivos = "gabinete:status:ativos"

	TipoStatusProtegido = "status_protegido"
	TipoStatusEmUso     = "status_em_uso"
)

var corHex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// StatusRepository abstrai a persistência das etapas.
type StatusRepository interface {
	ListAtivos(ctx context.Context) ([]Status, error)
	GetByID(ctx context.Context, id int64) (*Status, error)
	MaxOrdem(ctx context.Context) (int, error)
	Create(ctx context.Context, nome string, ordem int, cor string) (*Status, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*Status, error)
	CountDemandas(ctx context.Context, id int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

type cacheCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Service gerencia as etapas do fluxo e mantém a lista ativa em cache.
type Service struct {
	repo     StatusRepository
	cache    cacheCommander
	cacheTTL time.Duration
}

// NewService cria o serviço; cache nil desativa o cache.
func NewService(repo StatusRepository, cache *redis.Client, cacheTTL time.Duration) *Service {
	s := &Service{repo: repo, cacheTTL: cacheTTL}
	if cache != nil {
		s.cache = cache
	}
	return s
}

// ListAtivos devolve etapas ativas por ordem crescente.
func (s *Service) ListAtivos(ctx context.Context) ([]Status, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKeyAtivos).Bytes(); err == nil {
			var items []Status
			if json.Unmarshal(data, &items) == nil {
				return items, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("status: cache indisponível")
		}
	}

	items, err := s.repo.ListAtivos(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(items); err == nil {
			_ = s.cache.Set(ctx, cacheKeyAtivos, payload, s.cacheTTL).Err()
		}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Status, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Status não encontrado")
		}
		return nil, err
	}
	return st, nil
}

// Create adiciona etapa; sem ordem informada, entra após a última.
func (s *Service) Create(ctx context.Context, ator permissao.Ator, input CreateInput) (*Status, error) {
	if !permissao.PodeGerenciarStatus(ator) {
		return nil, apperr.Forbidden("Você não tem permissão para criar status")
	}

	nome := strings.TrimSpace(input.Nome)
	if nome == "" {
		return nil, apperr.Validation("Nome do status é obrigatório")
	}

	cor := CorPadrao
	if input.Cor != nil && strings.TrimSpace(*input.Cor) != "" {
		cor = strings.TrimSpace(*input.Cor)
		if !corHex.MatchString(cor) {
			return nil, apperr.Validation("cor inválida (use #RRGGBB)")
		}
	}

	var ordem int
	if input.Ordem != nil {
		ordem = *input.Ordem
		if ordem <= 0 {
			return nil, apperr.Validation("ordem deve ser positiva")
		}
	} else {
		maior, err := s.repo.MaxOrdem(ctx)
		if err != nil {
			return nil, err
		}
		ordem = maior + 1
	}

	st, err := s.repo.Create(ctx, nome, ordem, cor)
	if err != nil {
		if errors.Is(err, ErrOrdemDuplicada) {
			return nil, apperr.Conflict("Já existe um status com essa ordem")
		}
		return nil, err
	}

	s.invalidate(ctx)
	return st, nil
}

// Update altera a etapa; as sentinelas mantêm a ordem original.
func (s *Service) Update(ctx context.Context, ator permissao.Ator, id int64, input UpdateInput) (*Status, error) {
	if !permissao.PodeGerenciarStatus(ator) {
		return nil, apperr.Forbidden("Você não tem permissão para editar status")
	}

	input.Nome = strings.TrimSpace(input.Nome)
	if input.Nome == "" {
		return nil, apperr.Validation("Nome do status é obrigatório")
	}
	if input.Cor != nil {
		cor := strings.TrimSpace(*input.Cor)
		if cor == "" {
			input.Cor = nil
		} else if !corHex.MatchString(cor) {
			return nil, apperr.Validation("cor inválida (use #RRGGBB)")
		} else {
			input.Cor = &cor
		}
	}

	atual, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Status não encontrado")
		}
		return nil, err
	}

	if input.Ordem != nil && *input.Ordem != atual.Ordem {
		if atual.Sentinela() || IsSentinela(*input.Ordem) {
			return nil, apperr.Validation("A ordem dos status \"Caixa de Entrada\" e \"Arquivado\" não pode ser alterada").WithTipo(TipoStatusProtegido)
		}
		if *input.Ordem <= 0 {
			return nil, apperr.Validation("ordem deve ser positiva")
		}
	}
	if input.Ativo != nil && !*input.Ativo && atual.Sentinela() {
		return nil, apperr.Validation("Os status \"Caixa de Entrada\" e \"Arquivado\" não podem ser desativados").WithTipo(TipoStatusProtegido)
	}

	st, err := s.repo.Update(ctx, id, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, apperr.NotFound("Status não encontrado")
		case errors.Is(err, ErrOrdemDuplicada):
			return nil, apperr.Conflict("Já existe um status com essa ordem")
		}
		return nil, err
	}

	s.invalidate(ctx)
	return st, nil
}

// Delete remove etapas que não sejam sentinelas nem estejam em uso.
func (s *Service) Delete(ctx context.Context, ator permissao.Ator, id int64) error {
	if !permissao.PodeGerenciarStatus(ator) {
		return apperr.Forbidden("Você não tem permissão para excluir status")
	}

	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Status não encontrado")
		}
		return err
	}
	if st.Sentinela() {
		return apperr.Validation("Não é possível excluir os status \"Caixa de Entrada\" e \"Arquivado\"").WithTipo(TipoStatusProtegido)
	}

	total, err := s.repo.CountDemandas(ctx, id)
	if err != nil {
		return err
	}
	if total > 0 {
		return errEmUso()
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return apperr.NotFound("Status não encontrado")
		case errors.Is(err, ErrEmUso):
			return errEmUso()
		}
		return err
	}

	s.invalidate(ctx)
	return nil
}

func errEmUso() *apperr.Error {
	return apperr.Validation("Não é possível excluir um status que possui demandas. Mova ou exclua as demandas primeiro.").WithTipo(TipoStatusEmUso)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKeyAtivos).Err(); err != nil {
		log.Warn().Err(err).Msg("status: falha ao invalidar cache")
	}
}
