package usuario

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/gabinete/internal/apperr"
	"github.com/gestaozabele/gabinete/internal/auth"
	"github.com/gestaozabele/gabinete/internal/permissao"
	"github.com/gestaozabele/gabinete/internal/util"
)

// Motivos estáveis devolvidos no login para o cliente exibir orientação específica.
const (
	TipoUsuarioNaoEncontrado = "usuario_nao_encontrado"
	TipoContaDesativada      = "conta_desativada"
	TipoSenhaIncorreta       = "senha_incorreta"
)

// UsuarioRepository abstrai a persistência de usuários.
type UsuarioRepository interface {
	GetByEmail(ctx context.Context, email string) (*Usuario, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Usuario, error)
	List(ctx context.Context, somenteAtivos bool) ([]Usuario, error)
	Create(ctx context.Context, params CreateParams) (*Usuario, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Usuario, error)
	SetAtivo(ctx context.Context, id uuid.UUID, ativo bool) (*Usuario, error)
	SetPassword(ctx context.Context, id uuid.UUID, hash string, temporaria bool) error
	RecordLogin(ctx context.Context, id uuid.UUID) (time.Time, error)
}

// Service concentra autenticação e gestão de usuários.
type Service struct {
	repo        UsuarioRepository
	jwt         *auth.JWTManager
	senhaPadrao string
}

// NewService cria novo serviço.
func NewService(repo UsuarioRepository, jwtMgr *auth.JWTManager, senhaPadrao string) *Service {
	return &Service{repo: repo, jwt: jwtMgr, senhaPadrao: senhaPadrao}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *Service) JWT() *auth.JWTManager {
	return s.jwt
}

// Register cadastra um usuário ativo com senha temporária.
func (s *Service) Register(ctx context.Context, ator permissao.Ator, input RegisterInput) (*Usuario, error) {
	if !permissao.PodeGerenciarUsuarios(ator) {
		return nil, apperr.Forbidden("sem permissão para cadastrar usuários")
	}
	return s.create(ctx, input)
}

// Bootstrap cadastra o primeiro administrador sem exigir ator (uso operacional).
func (s *Service) Bootstrap(ctx context.Context, input RegisterInput) (*Usuario, error) {
	input.NivelPermissao = string(permissao.Administrador)
	return s.create(ctx, input)
}

func (s *Service) create(ctx context.Context, input RegisterInput) (*Usuario, error) {
	input.NomeCompleto = strings.TrimSpace(input.NomeCompleto)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	nivel := permissao.Normalize(input.NivelPermissao)

	if input.NomeCompleto == "" || input.Email == "" || input.Senha == "" || nivel == "" {
		return nil, apperr.Validation("Todos os campos são obrigatórios")
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if !permissao.IsValid(nivel) {
		return nil, apperr.Validation("nível de permissão inválido")
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("Email já cadastrado")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := auth.Hash(input.Senha)
	if err != nil {
		return nil, fmt.Errorf("hash senha: %w", err)
	}

	u, err := s.repo.Create(ctx, CreateParams{
		NomeCompleto:   input.NomeCompleto,
		Email:          input.Email,
		SenhaHash:      hash,
		NivelPermissao: nivel,
	})
	if err != nil {
		if errors.Is(err, ErrEmailDuplicado) {
			return nil, apperr.Conflict("Email já cadastrado")
		}
		return nil, err
	}
	return u, nil
}

// Login autentica por email e senha preservando o motivo exato da falha.
func (s *Service) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || senha == "" {
		return nil, apperr.Validation("Email e senha são obrigatórios")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			return nil, apperr.NotFound("Usuário não encontrado").WithTipo(TipoUsuarioNaoEncontrado)
		}
		return nil, err
	}
	if !u.Ativo {
		return nil, apperr.Forbidden("Conta desativada. Procure o administrador do sistema.").WithTipo(TipoContaDesativada)
	}

	ok, err := auth.Verify(senha, u.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verify password failed")
	}
	if err != nil || !ok {
		return nil, apperr.Unauthorized("Senha incorreta").WithTipo(TipoSenhaIncorreta)
	}

	if auth.IsLegacyHash(u.SenhaHash) {
		s.rehash(ctx, u, senha)
	}

	return s.LoginWithUser(ctx, u)
}

// LoginWithUser conclui a autenticação de um usuário já verificado (senha ou passkey).
func (s *Service) LoginWithUser(ctx context.Context, u *Usuario) (*LoginResult, error) {
	if !u.Ativo {
		return nil, apperr.Forbidden("Conta desativada. Procure o administrador do sistema.").WithTipo(TipoContaDesativada)
	}

	at, err := s.repo.RecordLogin(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.UltimoAcesso = &at

	token, _, err := s.jwt.GenerateAccessToken(u.ID.String(), u.Email, string(u.NivelPermissao))
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, Usuario: u}, nil
}

func (s *Service) rehash(ctx context.Context, u *Usuario, senha string) {
	hash, err := auth.Hash(senha)
	if err != nil {
		log.Warn().Err(err).Str("usuario_id", u.ID.String()).Msg("login: rehash falhou")
		return
	}
	if err := s.repo.SetPassword(ctx, u.ID, hash, u.SenhaTemporaria); err != nil {
		log.Warn().Err(err).Str("usuario_id", u.ID.String()).Msg("login: rehash falhou")
		return
	}
	u.SenhaHash = hash
}

// ChangePassword troca a senha do próprio usuário e encerra a condição de senha temporária.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, atual, nova string) error {
	if atual == "" || nova == "" {
		return apperr.Validation("Senha atual e nova senha são obrigatórias")
	}
	if err := auth.ValidarSenhaForte(nova); err != nil {
		return apperr.Validation(err.Error())
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Usuário não encontrado")
		}
		return err
	}

	ok, err := auth.Verify(atual, u.SenhaHash)
	if err != nil || !ok {
		return apperr.Unauthorized("Senha atual incorreta").WithTipo(TipoSenhaIncorreta)
	}

	hash, err := auth.Hash(nova)
	if err != nil {
		return fmt.Errorf("hash senha: %w", err)
	}
	return s.repo.SetPassword(ctx, u.ID, hash, false)
}

// ResetPassword volta a senha do alvo para o padrão configurado e a marca como temporária.
func (s *Service) ResetPassword(ctx context.Context, ator permissao.Ator, alvoID uuid.UUID) error {
	if !permissao.PodeGerenciarUsuarios(ator) {
		return apperr.Forbidden("sem permissão para redefinir senhas")
	}

	hash, err := auth.Hash(s.senhaPadrao)
	if err != nil {
		return fmt.Errorf("hash senha: %w", err)
	}
	if err := s.repo.SetPassword(ctx, alvoID, hash, true); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Usuário não encontrado")
		}
		return err
	}
	return nil
}

// ListAtivos lista usuários ativos por nome.
func (s *Service) ListAtivos(ctx context.Context) ([]Usuario, error) {
	return s.repo.List(ctx, true)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Usuario, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Usuário não encontrado")
		}
		return nil, err
	}
	return u, nil
}

// GetByEmail busca usuário pelo email normalizado.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Usuario, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Usuário não encontrado")
		}
		return nil, err
	}
	return u, nil
}

// Update altera nome, email e nível de outro usuário.
func (s *Service) Update(ctx context.Context, ator permissao.Ator, id uuid.UUID, input UpdateInput) (*Usuario, error) {
	if !permissao.PodeGerenciarUsuarios(ator) {
		return nil, apperr.Forbidden("sem permissão para editar usuários")
	}

	input.NomeCompleto = strings.TrimSpace(input.NomeCompleto)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.NomeCompleto == "" || input.Email == "" || input.NivelPermissao == "" {
		return nil, apperr.Validation("Todos os campos são obrigatórios")
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if !permissao.IsValid(permissao.Normalize(input.NivelPermissao)) {
		return nil, apperr.Validation("nível de permissão inválido")
	}

	u, err := s.repo.Update(ctx, id, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, apperr.NotFound("Usuário não encontrado")
		case errors.Is(err, ErrEmailDuplicado):
			return nil, apperr.Conflict("Email já cadastrado")
		}
		return nil, err
	}
	return u, nil
}

// SetAtivo ativa ou desativa uma conta; ninguém desativa a si mesmo.
func (s *Service) SetAtivo(ctx context.Context, ator permissao.Ator, id uuid.UUID, ativo bool) (*Usuario, error) {
	if !permissao.PodeGerenciarUsuarios(ator) {
		return nil, apperr.Forbidden("sem permissão para alterar usuários")
	}
	if !ativo && !permissao.PodeDesativarUsuario(ator, id) {
		return nil, apperr.Forbidden("Você não pode desativar sua própria conta")
	}

	u, err := s.repo.SetAtivo(ctx, id, ativo)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Usuário não encontrado")
		}
		return nil, err
	}
	return u, nil
}

// AccessStats calcula dias sem acesso para todos os usuários.
func (s *Service) AccessStats(ctx context.Context, ator permissao.Ator) ([]AcessoStat, error) {
	if !permissao.PodeGerenciarUsuarios(ator) {
		return nil, apperr.Forbidden("sem permissão para ver estatísticas de acesso")
	}

	usuarios, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}

	now := util.Now()
	stats := make([]AcessoStat, 0, len(usuarios))
	for _, u := range usuarios {
		stat := AcessoStat{
			ID:             u.ID,
			NomeCompleto:   u.NomeCompleto,
			Email:          u.Email,
			NivelPermissao: u.NivelPermissao,
			Ativo:          u.Ativo,
			UltimoAcesso:   u.UltimoAcesso,
		}
		if u.UltimoAcesso != nil {
			dias := int(math.Floor(now.Sub(*u.UltimoAcesso).Hours() / 24))
			if dias < 0 {
				dias = 0
			}
			stat.DiasSemAcessar = &dias
		}
		stat.StatusAcesso = ClassificarAcesso(stat.DiasSemAcessar)
		stats = append(stats, stat)
	}
	return stats, nil
}
