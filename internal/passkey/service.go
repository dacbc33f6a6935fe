package passkey

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/gabinete/internal/apperr"
	"github.com/gestaozabele/gabinete/internal/usuario"
)

// CredencialRepository abstrai a persistência das passkeys.
type CredencialRepository interface {
	ListByUsuario(ctx context.Context, usuarioID uuid.UUID) ([]Credencial, error)
	GetByCredentialID(ctx context.Context, credentialID []byte) (*Credencial, error)
	Create(ctx context.Context, cred Credencial) (*Credencial, error)
	UpdateCounter(ctx context.Context, id uuid.UUID, signCount uint32, clonada bool) error
}

// UsuarioSource é o recorte do serviço de usuários usado pela cerimônia.
type UsuarioSource interface {
	Get(ctx context.Context, id uuid.UUID) (*usuario.Usuario, error)
	GetByEmail(ctx context.Context, email string) (*usuario.Usuario, error)
	LoginWithUser(ctx context.Context, u *usuario.Usuario) (*usuario.LoginResult, error)
}

// Cerimonia é devolvida ao navegador no passo inicial.
type Cerimonia struct {
	Session string         `json:"session"`
	Options map[string]any `json:"options"`
}

type Config struct {
	RPID     string
	RPOrigin string
	RPName   string
}

type Service struct {
	wa       *webauthn.WebAuthn
	repo     CredencialRepository
	sessions *SessionStore
	usuarios UsuarioSource
}

func NewService(cfg Config, repo CredencialRepository, sessions *SessionStore, usuarios UsuarioSource) (*Service, error) {
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.RPName,
		RPID:          cfg.RPID,
		RPOrigins:     []string{cfg.RPOrigin},
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn: %w", err)
	}
	return &Service{wa: wa, repo: repo, sessions: sessions, usuarios: usuarios}, nil
}

// IniciarRegistro prepara o cadastro de uma nova passkey para o usuário autenticado.
func (s *Service) IniciarRegistro(ctx context.Context, usuarioID uuid.UUID) (*Cerimonia, error) {
	waUser, err := s.carregar(ctx, usuarioID)
	if err != nil {
		return nil, err
	}

	exclusions := make([]protocol.CredentialDescriptor, 0, len(waUser.credentials))
	for _, cred := range waUser.credentials {
		exclusions = append(exclusions, cred.Descriptor())
	}

	opts, sessionData, err := s.wa.BeginRegistration(
		waUser,
		webauthn.WithExclusions(exclusions),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{UserVerification: protocol.VerificationRequired}),
	)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	sessionID, err := s.sessions.Save(ctx, prefixRegistro, sessionData, usuarioID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return &Cerimonia{Session: sessionID, Options: map[string]any{"publicKey": opts.Response}}, nil
}

// ConcluirRegistro valida a resposta do autenticador e grava a credencial.
func (s *Service) ConcluirRegistro(ctx context.Context, usuarioID uuid.UUID, sessionID string, body io.Reader) error {
	sessionData, dono, err := s.consumir(ctx, prefixRegistro, sessionID)
	if err != nil {
		return err
	}
	if dono != usuarioID {
		return apperr.Validation("sessão inválida ou expirada")
	}

	waUser, err := s.carregar(ctx, usuarioID)
	if err != nil {
		return err
	}

	parsed, err := protocol.ParseCredentialCreationResponseBody(body)
	if err != nil {
		return apperr.Validation("resposta inválida")
	}
	credential, err := s.wa.CreateCredential(waUser, *sessionData, parsed)
	if err != nil {
		return apperr.Validation(err.Error())
	}

	_, err = s.repo.Create(ctx, Credencial{
		UsuarioID:    usuarioID,
		CredentialID: credential.ID,
		PublicKey:    credential.PublicKey,
		SignCount:    credential.Authenticator.SignCount,
		Transports:   fromTransports(credential.Transport),
		AAGUID:       credential.Authenticator.AAGUID,
		Clonada:      credential.Authenticator.CloneWarning,
	})
	if err != nil {
		return apperr.Persistence(err)
	}
	log.Info().Str("usuario_id", usuarioID.String()).Msg("passkey registrada")
	return nil
}

// IniciarLogin gera o desafio para quem já possui passkey.
func (s *Service) IniciarLogin(ctx context.Context, email string) (*Cerimonia, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperr.Validation("email é obrigatório")
	}

	u, err := s.usuarios.GetByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthorized("biometria não configurada")
		}
		return nil, apperr.From(err)
	}
	creds, err := s.repo.ListByUsuario(ctx, u.ID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if len(creds) == 0 {
		return nil, apperr.Unauthorized("biometria não configurada")
	}

	opts, sessionData, err := s.wa.BeginLogin(newWebAuthnUser(u, creds))
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	sessionID, err := s.sessions.Save(ctx, prefixLogin, sessionData, u.ID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return &Cerimonia{Session: sessionID, Options: map[string]any{"publicKey": opts.Response}}, nil
}

// ConcluirLogin valida a assinatura e segue o mesmo caminho do login por senha.
func (s *Service) ConcluirLogin(ctx context.Context, sessionID string, body io.Reader) (*usuario.LoginResult, error) {
	sessionData, usuarioID, err := s.consumir(ctx, prefixLogin, sessionID)
	if err != nil {
		return nil, err
	}

	u, err := s.usuarios.Get(ctx, usuarioID)
	if err != nil {
		return nil, apperr.From(err)
	}
	creds, err := s.repo.ListByUsuario(ctx, u.ID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	parsed, err := protocol.ParseCredentialRequestResponseBody(body)
	if err != nil {
		return nil, apperr.Validation("resposta inválida")
	}
	credential, err := s.wa.ValidateLogin(newWebAuthnUser(u, creds), *sessionData, parsed)
	if err != nil {
		return nil, apperr.Unauthorized(err.Error())
	}

	stored, err := s.repo.GetByCredentialID(ctx, credential.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.Unauthorized("credencial desconhecida")
		}
		return nil, apperr.Persistence(err)
	}
	if stored.UsuarioID != u.ID {
		return nil, apperr.Unauthorized("credencial inválida")
	}
	if err := s.repo.UpdateCounter(ctx, stored.ID, credential.Authenticator.SignCount, credential.Authenticator.CloneWarning); err != nil {
		return nil, apperr.Persistence(err)
	}
	if credential.Authenticator.CloneWarning {
		log.Warn().Str("usuario_id", u.ID.String()).Msg("passkey possivelmente clonada")
	}

	return s.usuarios.LoginWithUser(ctx, u)
}

func (s *Service) carregar(ctx context.Context, usuarioID uuid.UUID) (*webAuthnUser, error) {
	u, err := s.usuarios.Get(ctx, usuarioID)
	if err != nil {
		return nil, apperr.From(err)
	}
	creds, err := s.repo.ListByUsuario(ctx, usuarioID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return newWebAuthnUser(u, creds), nil
}

func (s *Service) consumir(ctx context.Context, prefix, sessionID string) (*webauthn.SessionData, uuid.UUID, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, uuid.Nil, apperr.Validation("session ausente")
	}
	data, usuarioID, err := s.sessions.Consume(ctx, prefix, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessaoInvalida) {
			return nil, uuid.Nil, apperr.Validation("sessão inválida ou expirada")
		}
		return nil, uuid.Nil, apperr.Persistence(err)
	}
	return data, usuarioID, nil
}
