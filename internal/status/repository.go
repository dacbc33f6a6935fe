package status

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/gabinete/internal/db"
)

const statusColumns = `id, nome, ordem, cor, ativo, criado_em`

// Repository provê acesso à tabela de status.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListAtivos(ctx context.Context) ([]Status, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+statusColumns+` FROM status WHERE ativo = true ORDER BY ordem ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Status{}
	for rows.Next() {
		st, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *st)
	}
	return items, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Status, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+statusColumns+` FROM status WHERE id = $1`, id)
	return scanStatus(row)
}

func (r *Repository) MaxOrdem(ctx context.Context) (int, error) {
	var maior int
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(ordem), 0) FROM status`).Scan(&maior)
	return maior, err
}

func (r *Repository) Create(ctx context.Context, nome string, ordem int, cor string) (*Status, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO status (nome, ordem, cor, ativo)
        VALUES ($1, $2, $3, true)
        RETURNING `+statusColumns, nome, ordem, cor)
	st, err := scanStatus(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrOrdemDuplicada
		}
		return nil, err
	}
	return st, nil
}

func (r *Repository) Update(ctx context.Context, id int64, input UpdateInput) (*Status, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE status
        SET nome = $2,
            ordem = COALESCE($3, ordem),
            cor = COALESCE($4, cor),
            ativo = COALESCE($5, ativo)
        WHERE id = $1
        RETURNING `+statusColumns, id, input.Nome, input.Ordem, input.Cor, input.Ativo)
	st, err := scanStatus(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrOrdemDuplicada
		}
		return nil, err
	}
	return st, nil
}

func (r *Repository) CountDemandas(ctx context.Context, id int64) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM demandas WHERE status_id = $1`, id).Scan(&total)
	return total, err
}

// Delete remove o status; a FK de demandas barra remoções concorrentes de etapas em uso.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM status WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrEmUso
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanStatus(row pgx.Row) (*Status, error) {
	var st Status
	if err := row.Scan(&st.ID, &st.Nome, &st.Ordem, &st.Cor, &st.Ativo, &st.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}
