package cidadao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cidadaoColumns = `id, nome_completo, telefone, data_nascimento, bairro, cidade, estado, email, criado_em`

// Repository provê acesso à tabela de cidadãos.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, input CreateInput, nascimento time.Time) (*Cidadao, error) {
	const query = `
        INSERT INTO cidadaos (nome_completo, telefone, data_nascimento, bairro, cidade, estado, email)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + cidadaoColumns

	row := r.pool.QueryRow(ctx, query,
		input.NomeCompleto,
		input.Telefone,
		nascimento,
		input.Bairro,
		input.Cidade,
		input.Estado,
		input.Email,
	)
	return scanCidadao(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Cidadao, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cidadaoColumns+` FROM cidadaos WHERE id = $1`, id)
	return scanCidadao(row)
}

// FindByTelefone busca por trecho do telefone já normalizado em dígitos.
func (r *Repository) FindByTelefone(ctx context.Context, digits string) (*Cidadao, error) {
	const query = `
        SELECT ` + cidadaoColumns + `
        FROM cidadaos
        WHERE regexp_replace(telefone, '\D', '', 'g') LIKE '%' || $1 || '%'
        ORDER BY criado_em ASC
        LIMIT 1
    `
	row := r.pool.QueryRow(ctx, query, digits)
	return scanCidadao(row)
}

func (r *Repository) List(ctx context.Context) ([]Cidadao, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cidadaoColumns+` FROM cidadaos ORDER BY nome_completo ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cidadaos := []Cidadao{}
	for rows.Next() {
		c, err := scanCidadao(rows)
		if err != nil {
			return nil, err
		}
		cidadaos = append(cidadaos, *c)
	}
	return cidadaos, rows.Err()
}

func scanCidadao(row pgx.Row) (*Cidadao, error) {
	var (
		c          Cidadao
		nascimento time.Time
	)
	if err := row.Scan(&c.ID, &c.NomeCompleto, &c.Telefone, &nascimento, &c.Bairro, &c.Cidade, &c.Estado, &c.Email, &c.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.DataNascimento = nascimento.Format(dateLayout)
	return &c, nil
}
