package usuario

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/gabinete/internal/db"
	"github.com/gestaozabele/gabinete/internal/permissao"
)

const (
	dbTimeout      = 3 * time.Second
	usuarioColumns = `id, nome_completo, email, senha_hash, nivel_permissao, ativo, senha_temporaria, ultimo_acesso, criado_em, atualizado_em`
)

// Repository provê acesso à tabela de usuários.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+usuarioColumns+` FROM usuarios WHERE lower(email) = $1`, strings.ToLower(strings.TrimSpace(email)))
	return scanUsuario(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+usuarioColumns+` FROM usuarios WHERE id = $1`, id)
	return scanUsuario(row)
}

// List devolve usuários ordenados por nome; somenteAtivos filtra contas desativadas.
func (r *Repository) List(ctx context.Context, somenteAtivos bool) ([]Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `SELECT ` + usuarioColumns + ` FROM usuarios`
	if somenteAtivos {
		query += ` WHERE ativo = true`
	}
	query += ` ORDER BY nome_completo ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usuarios := []Usuario{}
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, *u)
	}
	return usuarios, rows.Err()
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (*Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	const query = `
        INSERT INTO usuarios (nome_completo, email, senha_hash, nivel_permissao, ativo, senha_temporaria)
        VALUES ($1, $2, $3, $4, true, true)
        RETURNING ` + usuarioColumns

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(params.NomeCompleto),
		strings.ToLower(strings.TrimSpace(params.Email)),
		params.SenhaHash,
		string(params.NivelPermissao),
	)
	u, err := scanUsuario(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailDuplicado
		}
		return nil, err
	}
	return u, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	const query = `
        UPDATE usuarios
        SET nome_completo = $2,
            email = $3,
            nivel_permissao = $4,
            atualizado_em = now()
        WHERE id = $1
        RETURNING ` + usuarioColumns

	row := r.pool.QueryRow(ctx, query,
		id,
		strings.TrimSpace(input.NomeCompleto),
		strings.ToLower(strings.TrimSpace(input.Email)),
		strings.ToLower(strings.TrimSpace(input.NivelPermissao)),
	)
	u, err := scanUsuario(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailDuplicado
		}
		return nil, err
	}
	return u, nil
}

func (r *Repository) SetAtivo(ctx context.Context, id uuid.UUID, ativo bool) (*Usuario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
        UPDATE usuarios SET ativo = $2, atualizado_em = now()
        WHERE id = $1
        RETURNING `+usuarioColumns, id, ativo)
	return scanUsuario(row)
}

// SetPassword grava novo hash e o indicador de senha temporária.
func (r *Repository) SetPassword(ctx context.Context, id uuid.UUID, hash string, temporaria bool) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
        UPDATE usuarios SET senha_hash = $2, senha_temporaria = $3, atualizado_em = now()
        WHERE id = $1
    `, id, hash, temporaria)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordLogin avança ultimo_acesso, sempre estritamente maior que o valor anterior.
func (r *Repository) RecordLogin(ctx context.Context, id uuid.UUID) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var at time.Time
	err := r.pool.QueryRow(ctx, `
        UPDATE usuarios
        SET ultimo_acesso = GREATEST(clock_timestamp(), ultimo_acesso + interval '1 microsecond')
        WHERE id = $1
        RETURNING ultimo_acesso
    `, id).Scan(&at)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	return at, nil
}

func scanUsuario(row pgx.Row) (*Usuario, error) {
	var (
		u     Usuario
		nivel string
	)
	if err := row.Scan(&u.ID, &u.NomeCompleto, &u.Email, &u.SenhaHash, &nivel, &u.Ativo, &u.SenhaTemporaria, &u.UltimoAcesso, &u.CriadoEm, &u.AtualizadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.NivelPermissao = permissao.Normalize(nivel)
	return &u, nil
}
