package passkey

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 3 * time.Second

const selectCredencial = `
        SELECT id, usuario_id, credential_id, public_key, sign_count, transports, aaguid, clonada, criado_em, atualizado_em
        FROM webauthn_credenciais`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListByUsuario(ctx context.Context, usuarioID uuid.UUID) ([]Credencial, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, selectCredencial+` WHERE usuario_id = $1 ORDER BY criado_em DESC`, usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []Credencial
	for rows.Next() {
		cred, err := scanCredencial(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, *cred)
	}
	return creds, rows.Err()
}

func (r *Repository) GetByCredentialID(ctx context.Context, credentialID []byte) (*Credencial, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	return scanCredencial(r.pool.QueryRow(ctx, selectCredencial+` WHERE credential_id = $1`, credentialID))
}

func (r *Repository) Create(ctx context.Context, cred Credencial) (*Credencial, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	transports := cred.Transports
	if transports == nil {
		transports = []string{}
	}
	row := r.pool.QueryRow(ctx, `
        INSERT INTO webauthn_credenciais (usuario_id, credential_id, public_key, sign_count, transports, aaguid, clonada)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, usuario_id, credential_id, public_key, sign_count, transports, aaguid, clonada, criado_em, atualizado_em
    `, cred.UsuarioID, cred.CredentialID, cred.PublicKey, int64(cred.SignCount), transports, cred.AAGUID, cred.Clonada)
	return scanCredencial(row)
}

func (r *Repository) UpdateCounter(ctx context.Context, id uuid.UUID, signCount uint32, clonada bool) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
        UPDATE webauthn_credenciais
        SET sign_count = $2, clonada = $3, atualizado_em = now()
        WHERE id = $1
    `, id, int64(signCount), clonada)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCredencial(row pgx.Row) (*Credencial, error) {
	var (
		cred Credencial
		sign int64
	)
	err := row.Scan(&cred.ID, &cred.UsuarioID, &cred.CredentialID, &cred.PublicKey, &sign, &cred.Transports, &cred.AAGUID, &cred.Clonada, &cred.CriadoEm, &cred.AtualizadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sign < 0 {
		sign = 0
	}
	cred.SignCount = uint32(sign)
	return &cred, nil
}
