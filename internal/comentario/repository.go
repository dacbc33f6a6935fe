package comentario

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/gabinete/internal/db"
	"github.com/gestaozabele/gabinete/internal/usuario"
)

const dbTimeout = 3 * time.Second

const selectComentario = `
        SELECT c.id, c.demanda_id, c.usuario_id, c.comentario, c.publico, c.criado_em,
               u.nome_completo, u.email
        FROM comentarios c
        JOIN usuarios u ON u.id = c.usuario_id`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create grava o comentário; demanda ausente vira ErrDemandaInexistente.
func (r *Repository) Create(ctx context.Context, demandaID, usuarioID uuid.UUID, texto string, publico bool) (*Comentario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
        WITH novo AS (
            INSERT INTO comentarios (demanda_id, usuario_id, comentario, publico)
            VALUES ($1, $2, $3, $4)
            RETURNING id, demanda_id, usuario_id, comentario, publico, criado_em
        )
        SELECT n.id, n.demanda_id, n.usuario_id, n.comentario, n.publico, n.criado_em,
               u.nome_completo, u.email
        FROM novo n
        JOIN usuarios u ON u.id = n.usuario_id
    `, demandaID, usuarioID, texto, publico)
	c, err := scanComentario(row)
	if err != nil && db.IsForeignKeyViolation(err) {
		return nil, ErrDemandaInexistente
	}
	return c, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Comentario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	return scanComentario(r.pool.QueryRow(ctx, selectComentario+` WHERE c.id = $1`, id))
}

// ListByDemanda devolve os comentários em ordem cronológica.
func (r *Repository) ListByDemanda(ctx context.Context, demandaID uuid.UUID) ([]Comentario, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, selectComentario+` WHERE c.demanda_id = $1 ORDER BY c.criado_em ASC`, demandaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Comentario{}
	for rows.Next() {
		c, err := scanComentario(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListPublicos devolve só texto e data dos comentários marcados como públicos.
func (r *Repository) ListPublicos(ctx context.Context, demandaID uuid.UUID) ([]Publico, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
        SELECT comentario, criado_em
        FROM comentarios
        WHERE demanda_id = $1 AND publico
        ORDER BY criado_em ASC
    `, demandaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Publico{}
	for rows.Next() {
		var p Publico
		if err := rows.Scan(&p.Comentario, &p.CriadoEm); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM comentarios WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanComentario(row pgx.Row) (*Comentario, error) {
	var (
		c     Comentario
		autor usuario.Resumo
	)
	err := row.Scan(&c.ID, &c.DemandaID, &c.UsuarioID, &c.Comentario, &c.Publico, &c.CriadoEm, &autor.NomeCompleto, &autor.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	autor.ID = c.UsuarioID
	c.Autor = &autor
	return &c, nil
}
