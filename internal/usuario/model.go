package usuario

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/gabinete/internal/permissao"
)

var (
	ErrNotFound       = errors.New("usuário não encontrado")
	ErrEmailDuplicado = errors.New("email já cadastrado")
)

// Usuario representa um membro da equipe do gabinete.
type Usuario struct {
	ID              uuid.UUID       `json:"id"`
	NomeCompleto    string          `json:"nome_completo"`
	Email           string          `json:"email"`
	SenhaHash       string          `json:"-"`
	NivelPermissao  permissao.Nivel `json:"nivel_permissao"`
	Ativo           bool            `json:"ativo"`
	SenhaTemporaria bool            `json:"senha_temporaria"`
	UltimoAcesso    *time.Time      `json:"ultimo_acesso"`
	CriadoEm        time.Time       `json:"criado_em"`
	AtualizadoEm    time.Time       `json:"atualizado_em"`
}

// Ator converte o usuário na identidade usada pela política de acesso.
func (u Usuario) Ator() permissao.Ator {
	return permissao.Ator{ID: u.ID, Email: u.Email, Nivel: u.NivelPermissao}
}

// Resumo é a projeção embutida em demandas e comentários.
type Resumo struct {
	ID           uuid.UUID `json:"id"`
	NomeCompleto string    `json:"nome_completo"`
	Email        string    `json:"email"`
}

// RegisterInput encapsula o cadastro de um novo usuário.
type RegisterInput struct {
	NomeCompleto   string
	Email          string
	Senha          string
	NivelPermissao string
}

type CreateParams struct {
	NomeCompleto   string
	Email          string
	SenhaHash      string
	NivelPermissao permissao.Nivel
}

// UpdateInput altera dados cadastrais.
type UpdateInput struct {
	NomeCompleto   string
	Email          string
	NivelPermissao string
}

// LoginResult reúne token emitido e perfil público.
type LoginResult struct {
	Token   string   `json:"token"`
	Usuario *Usuario `json:"usuario"`
}

// AcessoStat descreve a atividade de login de um usuário.
type AcessoStat struct {
	ID             uuid.UUID       `json:"id"`
	NomeCompleto   string          `json:"nome_completo"`
	Email          string          `json:"email"`
	NivelPermissao permissao.Nivel `json:"nivel_permissao"`
	Ativo          bool            `json:"ativo"`
	UltimoAcesso   *time.Time      `json:"ultimo_acesso"`
	DiasSemAcessar *int            `json:"dias_sem_acessar"`
	StatusAcesso   string          `json:"status_acesso"`
}

// ClassificarAcesso rotula a inatividade em dias.
func ClassificarAcesso(dias *int) string {
	switch {
	case dias == nil:
		return "Nunca acessou"
	case *dias == 0:
		return "Ativo hoje"
	case *dias <= 7:
		return "Recente"
	case *dias <= 30:
		return "Inativo"
	default:
		return "Muito inativo"
	}
}
