package passkey

import (
	"strings"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"

	"github.com/gestaozabele/gabinete/internal/usuario"
)

type webAuthnUser struct {
	id          uuid.UUID
	name        string
	displayName string
	credentials []webauthn.Credential
}

func newWebAuthnUser(u *usuario.Usuario, creds []Credencial) *webAuthnUser {
	return &webAuthnUser{
		id:          u.ID,
		name:        u.Email,
		displayName: u.NomeCompleto,
		credentials: toWebauthnCredentials(creds),
	}
}

func (u *webAuthnUser) WebAuthnID() []byte {
	id := make([]byte, 16)
	copy(id, u.id[:])
	return id
}

func (u *webAuthnUser) WebAuthnName() string {
	return u.name
}

func (u *webAuthnUser) WebAuthnDisplayName() string {
	return u.displayName
}

func (u *webAuthnUser) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}

func toWebauthnCredentials(creds []Credencial) []webauthn.Credential {
	out := make([]webauthn.Credential, 0, len(creds))
	for _, c := range creds {
		cred := webauthn.Credential{
			ID:        append([]byte(nil), c.CredentialID...),
			PublicKey: append([]byte(nil), c.PublicKey...),
			Transport: toTransports(c.Transports),
		}
		cred.Authenticator.SignCount = c.SignCount
		cred.Authenticator.CloneWarning = c.Clonada
		if len(c.AAGUID) > 0 {
			cred.Authenticator.AAGUID = append([]byte(nil), c.AAGUID...)
		}
		out = append(out, cred)
	}
	return out
}

func toTransports(values []string) []protocol.AuthenticatorTransport {
	if len(values) == 0 {
		return nil
	}
	transports := make([]protocol.AuthenticatorTransport, 0, len(values))
	for _, value := range values {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "usb":
			transports = append(transports, protocol.USB)
		case "nfc":
			transports = append(transports, protocol.NFC)
		case "ble":
			transports = append(transports, protocol.BLE)
		case "internal":
			transports = append(transports, protocol.Internal)
		case "smart-card":
			transports = append(transports, protocol.SmartCard)
		case "hybrid", "cable":
			transports = append(transports, protocol.Hybrid)
		}
	}
	return transports
}

func fromTransports(values []protocol.AuthenticatorTransport) []string {
	out := make([]string, 0, len(values))
	for _, t := range values {
		out = append(out, string(t))
	}
	return out
}
