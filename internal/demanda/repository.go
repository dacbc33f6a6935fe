package demanda

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaozabele/gabinete/internal/cidadao"
	"github.com/gestaozabele/gabinete/internal/db"
	"github.com/gestaozabele/gabinete/internal/status"
	"github.com/gestaozabele/gabinete/internal/usuario"
)

const (
	dbTimeout      = 3 * time.Second
	maxListLimit   = 500
	ordemConcluido = 4
)

const selectDemanda = `
        SELECT d.id, d.titulo, d.descricao, d.prioridade, d.cidadao_id, d.usuario_responsavel_id, d.usuario_origem_id,
               d.status_id, d.compartilhamento_ativo, d.compartilhado_em, d.criado_em, d.atualizado_em,
               c.nome_completo, c.telefone,
               ur.nome_completo, ur.email,
               s.nome, s.cor, s.ordem
        FROM demandas d
        JOIN cidadaos c ON c.id = d.cidadao_id
        JOIN usuarios ur ON ur.id = d.usuario_responsavel_id
        JOIN status s ON s.id = d.status_id`

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provê acesso às demandas e ao histórico de status.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create grava a demanda e a primeira entrada do histórico na mesma transação.
func (r *Repository) Create(ctx context.Context, params CreateParams) (*Demanda, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var created *Demanda
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		statusNome, err := lockStatusNome(ctx, tx, params.StatusID)
		if err != nil {
			return err
		}

		var id uuid.UUID
		err = tx.QueryRow(ctx, `
            INSERT INTO demandas (titulo, descricao, prioridade, cidadao_id, usuario_responsavel_id, usuario_origem_id, status_id)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            RETURNING id
        `, params.Titulo, params.Descricao, params.Prioridade, params.CidadaoID, params.UsuarioResponsavelID, params.UsuarioOrigemID, params.StatusID).Scan(&id)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrReferenciaInvalida
			}
			return err
		}

		if err := insertHistorico(ctx, tx, id, params.StatusID, statusNome, params.UsuarioOrigemID); err != nil {
			return err
		}

		created, err = getDemanda(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Demanda, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	return getDemanda(ctx, r.pool, id)
}

// List aplica filtros e ordena da mais recente para a mais antiga.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Demanda, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.StatusID != nil {
		clauses = append(clauses, fmt.Sprintf("d.status_id = $%d", idx))
		args = append(args, *filter.StatusID)
		idx++
	}
	if filter.Prioridade != "" {
		clauses = append(clauses, fmt.Sprintf("d.prioridade = $%d", idx))
		args = append(args, filter.Prioridade)
		idx++
	}
	if filter.ResponsavelID != nil {
		clauses = append(clauses, fmt.Sprintf("d.usuario_responsavel_id = $%d", idx))
		args = append(args, *filter.ResponsavelID)
		idx++
	}
	if busca := strings.TrimSpace(filter.Busca); busca != "" {
		clauses = append(clauses, fmt.Sprintf("(d.titulo ILIKE $%d OR c.nome_completo ILIKE $%d)", idx, idx))
		args = append(args, "%"+escapeLike(busca)+"%")
		idx++
	}
	if filter.DataInicio != nil {
		clauses = append(clauses, fmt.Sprintf("d.criado_em >= $%d", idx))
		args = append(args, startOfDay(*filter.DataInicio))
		idx++
	}
	if filter.DataFim != nil {
		clauses = append(clauses, fmt.Sprintf("d.criado_em < $%d", idx))
		args = append(args, startOfDay(*filter.DataFim).AddDate(0, 0, 1))
		idx++
	}

	query := selectDemanda
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY d.criado_em DESC"

	if filter.Limit > 0 {
		limit := filter.Limit
		if limit > maxListLimit {
			limit = maxListLimit
		}
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1)
		args = append(args, limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	demandas := []Demanda{}
	for rows.Next() {
		d, err := scanDemanda(rows)
		if err != nil {
			return nil, err
		}
		demandas = append(demandas, *d)
	}
	return demandas, rows.Err()
}

// Transition move a demanda de etapa e registra o histórico atomicamente.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, statusID int64, ator uuid.UUID) (*Demanda, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var updated *Demanda
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		statusNome, err := lockStatusNome(ctx, tx, statusID)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `UPDATE demandas SET status_id = $2, atualizado_em = now() WHERE id = $1`, id, statusID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		if err := insertHistorico(ctx, tx, id, statusID, statusNome, ator); err != nil {
			return err
		}

		updated, err = getDemanda(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Update substitui os campos editáveis; mudança de etapa gera histórico na mesma transação.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams, ator uuid.UUID) (*Demanda, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var updated *Demanda
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var atual int64
		if err := tx.QueryRow(ctx, `SELECT status_id FROM demandas WHERE id = $1 FOR UPDATE`, id).Scan(&atual); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		var statusNome string
		if params.StatusID != atual {
			nome, err := lockStatusNome(ctx, tx, params.StatusID)
			if err != nil {
				return err
			}
			statusNome = nome
		}

		_, err := tx.Exec(ctx, `
            UPDATE demandas
            SET titulo = $2,
                descricao = $3,
                prioridade = $4,
                usuario_responsavel_id = $5,
                status_id = $6,
                atualizado_em = now()
            WHERE id = $1
        `, id, params.Titulo, params.Descricao, params.Prioridade, params.UsuarioResponsavelID, params.StatusID)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrReferenciaInvalida
			}
			return err
		}

		if params.StatusID != atual {
			if err := insertHistorico(ctx, tx, id, params.StatusID, statusNome, ator); err != nil {
				return err
			}
		}

		updated, err = getDemanda(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete remove a demanda; comentários e histórico caem em cascata.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM demandas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Historico lista as passagens de etapa em ordem cronológica.
func (r *Repository) Historico(ctx context.Context, id uuid.UUID) ([]HistoricoItem, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	return ListHistorico(ctx, r.pool, id)
}

// ListHistorico é compartilhado com a visão pública.
func ListHistorico(ctx context.Context, q querier, demandaID uuid.UUID) ([]HistoricoItem, error) {
	rows, err := q.Query(ctx, `
        SELECT status_id, status_nome, alterado_por, alterado_em
        FROM historico_status
        WHERE demanda_id = $1
        ORDER BY alterado_em ASC
    `, demandaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []HistoricoItem{}
	for rows.Next() {
		var h HistoricoItem
		if err := rows.Scan(&h.StatusID, &h.StatusNome, &h.AlteradoPor, &h.AlteradoEm); err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

// Estatisticas agrega contagens por etapa, prioridade e responsável.
func (r *Repository) Estatisticas(ctx context.Context, usuarioID uuid.UUID) (*Estatisticas, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
        SELECT s.nome, s.ordem, d.prioridade, d.usuario_responsavel_id = $1 AS minha, COUNT(*)
        FROM demandas d
        JOIN status s ON s.id = d.status_id
        GROUP BY s.nome, s.ordem, d.prioridade, minha
    `, usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var linhas []estatisticaLinha
	for rows.Next() {
		var l estatisticaLinha
		if err := rows.Scan(&l.StatusNome, &l.Ordem, &l.Prioridade, &l.Minha, &l.Total); err != nil {
			return nil, err
		}
		linhas = append(linhas, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return agregarEstatisticas(linhas), nil
}

type estatisticaLinha struct {
	StatusNome string
	Ordem      int
	Prioridade string
	Minha      bool
	Total      int
}

func agregarEstatisticas(linhas []estatisticaLinha) *Estatisticas {
	est := &Estatisticas{PorStatus: map[string]int{}, PorPrioridade: map[string]int{}}
	for _, l := range linhas {
		est.Total += l.Total
		est.PorStatus[l.StatusNome] += l.Total
		est.PorPrioridade[l.Prioridade] += l.Total

		switch l.Ordem {
		case status.OrdemArquivado:
			est.Arquivadas += l.Total
		case ordemConcluido:
			est.Concluidas += l.Total
		default:
			est.Pendentes += l.Total
		}

		if !l.Minha {
			continue
		}
		switch l.Ordem {
		case status.OrdemCaixaEntrada:
			est.Minhas.AFazer += l.Total
		case ordemConcluido:
			est.Minhas.Concluidas += l.Total
		case status.OrdemArquivado:
		default:
			est.Minhas.EmProgresso += l.Total
		}
	}
	return est
}

func lockStatusNome(ctx context.Context, q querier, statusID int64) (string, error) {
	var nome string
	err := q.QueryRow(ctx, `SELECT nome FROM status WHERE id = $1 FOR SHARE`, statusID).Scan(&nome)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrStatusInvalido
		}
		return "", err
	}
	return nome, nil
}

func insertHistorico(ctx context.Context, q querier, demandaID uuid.UUID, statusID int64, statusNome string, ator uuid.UUID) error {
	var alteradoPor *uuid.UUID
	if ator != uuid.Nil {
		alteradoPor = &ator
	}
	_, err := q.Exec(ctx, `
        INSERT INTO historico_status (demanda_id, status_id, status_nome, alterado_por)
        VALUES ($1, $2, $3, $4)
    `, demandaID, statusID, statusNome, alteradoPor)
	return err
}

func getDemanda(ctx context.Context, q querier, id uuid.UUID) (*Demanda, error) {
	row := q.QueryRow(ctx, selectDemanda+` WHERE d.id = $1`, id)
	return scanDemanda(row)
}

func scanDemanda(row pgx.Row) (*Demanda, error) {
	var (
		d  Demanda
		c  cidadao.Resumo
		u  usuario.Resumo
		st StatusResumo
	)
	err := row.Scan(
		&d.ID, &d.Titulo, &d.Descricao, &d.Prioridade, &d.CidadaoID, &d.UsuarioResponsavelID, &d.UsuarioOrigemID,
		&d.StatusID, &d.CompartilhamentoAtivo, &d.CompartilhadoEm, &d.CriadoEm, &d.AtualizadoEm,
		&c.NomeCompleto, &c.Telefone,
		&u.NomeCompleto, &u.Email,
		&st.Nome, &st.Cor, &st.Ordem,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.ID = d.CidadaoID
	u.ID = d.UsuarioResponsavelID
	st.ID = d.StatusID
	d.Cidadao = &c
	d.Responsavel = &u
	d.Status = &st
	return &d, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
