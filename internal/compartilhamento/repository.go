package compartilhamento

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 3 * time.Second

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetInfo(ctx context.Context, demandaID uuid.UUID) (*Info, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var info Info
	err := r.pool.QueryRow(ctx, `
        SELECT id, titulo, usuario_responsavel_id, token_compartilhamento, compartilhamento_ativo, compartilhado_em
        FROM demandas
        WHERE id = $1
    `, demandaID).Scan(&info.DemandaID, &info.Titulo, &info.ResponsavelID, &info.Token, &info.Ativo, &info.CompartilhadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &info, nil
}

// Ativar substitui o token anterior, invalidando links já distribuídos.
func (r *Repository) Ativar(ctx context.Context, demandaID uuid.UUID, token string, ator uuid.UUID) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var em time.Time
	err := r.pool.QueryRow(ctx, `
        UPDATE demandas
        SET token_compartilhamento = $2,
            compartilhamento_ativo = true,
            compartilhado_em = now(),
            compartilhado_por = $3
        WHERE id = $1
        RETURNING compartilhado_em
    `, demandaID, token, ator).Scan(&em)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	return em, nil
}

// Desativar mantém o token gravado, apenas desliga o acesso.
func (r *Repository) Desativar(ctx context.Context, demandaID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `UPDATE demandas SET compartilhamento_ativo = false WHERE id = $1`, demandaID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindAtivo só encontra tokens com compartilhamento ligado.
func (r *Repository) FindAtivo(ctx context.Context, token string) (*Registro, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var reg Registro
	err := r.pool.QueryRow(ctx, `
        SELECT d.id, d.titulo, d.descricao, d.criado_em, s.nome, s.cor, c.nome_completo
        FROM demandas d
        LEFT JOIN status s ON s.id = d.status_id
        LEFT JOIN cidadaos c ON c.id = d.cidadao_id
        WHERE d.token_compartilhamento = $1 AND d.compartilhamento_ativo
    `, token).Scan(&reg.DemandaID, &reg.Titulo, &reg.Descricao, &reg.CriadoEm, &reg.StatusNome, &reg.StatusCor, &reg.CidadaoNome)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}
