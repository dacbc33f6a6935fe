package cidadao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/gabinete/internal/apperr"
	"github.com/gestaozabele/gabinete/internal/util"
)

const dateLayout = "2006-01-02"

// CidadaoRepository abstrai a persistência de cidadãos.
type CidadaoRepository interface {
	Create(ctx context.Context, input CreateInput, nascimento time.Time) (*Cidadao, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Cidadao, error)
	FindByTelefone(ctx context.Context, digits string) (*Cidadao, error)
	List(ctx context.Context) ([]Cidadao, error)
}

// Service reúne regras de cadastro de cidadãos.
type Service struct {
	repo CidadaoRepository
}

func NewService(repo CidadaoRepository) *Service {
	return &Service{repo: repo}
}

// Create valida e grava um cidadão com telefone só em dígitos.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Cidadao, error) {
	input.NomeCompleto = strings.TrimSpace(input.NomeCompleto)
	input.Telefone = util.OnlyDigits(input.Telefone)
	input.DataNascimento = strings.TrimSpace(input.DataNascimento)
	input.Bairro = strings.TrimSpace(input.Bairro)
	input.Cidade = strings.TrimSpace(input.Cidade)
	input.Estado = strings.ToUpper(strings.TrimSpace(input.Estado))

	if input.NomeCompleto == "" || input.Telefone == "" || input.DataNascimento == "" ||
		input.Bairro == "" || input.Cidade == "" || input.Estado == "" {
		return nil, apperr.Validation("Todos os campos obrigatórios devem ser preenchidos")
	}

	nascimento, err := time.Parse(dateLayout, input.DataNascimento)
	if err != nil {
		return nil, apperr.Validation("data_nascimento inválida (use AAAA-MM-DD)")
	}
	if nascimento.After(util.Now()) {
		return nil, apperr.Validation("data_nascimento no futuro")
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			input.Email = nil
		} else {
			if err := util.ValidateEmail(email); err != nil {
				return nil, apperr.Validation(err.Error())
			}
			input.Email = &email
		}
	}

	return s.repo.Create(ctx, input, nascimento)
}

// FindByTelefone devolve o primeiro cidadão cujo telefone contém os dígitos informados.
func (s *Service) FindByTelefone(ctx context.Context, telefone string) (*Cidadao, error) {
	digits := util.OnlyDigits(telefone)
	if digits == "" {
		return nil, apperr.Validation("telefone obrigatório")
	}
	c, err := s.repo.FindByTelefone(ctx, digits)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Cidadão não encontrado")
		}
		return nil, err
	}
	return c, nil
}

// FindOrCreate reaproveita o cadastro pelo telefone ou cria um novo.
func (s *Service) FindOrCreate(ctx context.Context, input CreateInput) (*Cidadao, bool, error) {
	if digits := util.OnlyDigits(input.Telefone); digits != "" {
		c, err := s.repo.FindByTelefone(ctx, digits)
		if err == nil {
			return c, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, false, err
		}
	}
	c, err := s.Create(ctx, input)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Cidadao, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Cidadão não encontrado")
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]Cidadao, error) {
	return s.repo.List(ctx)
}
