// Package passkey implementa login biométrico via WebAuthn para a equipe.
package passkey

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("credencial não encontrada")
	ErrSessaoInvalida = errors.New("sessão inválida ou expirada")
)

// Credencial é uma chave pública registrada por um usuário.
type Credencial struct {
	ID           uuid.UUID
	UsuarioID    uuid.UUID
	CredentialID []byte
	PublicKey    []byte
	SignCount    uint32
	Transports   []string
	AAGUID       []byte
	Clonada      bool
	CriadoEm     time.Time
	AtualizadoEm *time.Time
}
