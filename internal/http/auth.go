package http

import (
	"net/http"

	"github.com/gestaozabele/gabinete/internal/usuario"
)

// Login autentica a equipe por email e senha.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	result, err := h.usuarios.Login(r.Context(), payload.Email, payload.Senha)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	h.writeLoginSuccess(w, result)
}

func (h *Handler) writeLoginSuccess(w http.ResponseWriter, result *usuario.LoginResult) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"mensagem":   "Login realizado com sucesso!",
		"token":      result.Token,
		"expires_in": int(h.usuarios.JWT().TTL().Seconds()),
		"usuario":    result.Usuario,
	})
}

// Register cadastra novo membro da equipe; restrito a gestores.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		NomeCompleto   string `json:"nome_completo"`
		Email          string `json:"email"`
		Senha          string `json:"senha"`
		NivelPermissao string `json:"nivel_permissao"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	u, err := h.usuarios.Register(r.Context(), ator(r), usuario.RegisterInput{
		NomeCompleto:   payload.NomeCompleto,
		Email:          payload.Email,
		Senha:          payload.Senha,
		NivelPermissao: payload.NivelPermissao,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"mensagem": "Usuário cadastrado com sucesso!",
		"usuario":  u,
	})
}

func (h *Handler) AlterarSenha(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SenhaAtual string `json:"senha_atual"`
		NovaSenha  string `json:"nova_senha"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	if err := h.usuarios.ChangePassword(r.Context(), ator(r).ID, payload.SenhaAtual, payload.NovaSenha); err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"mensagem": "Senha alterada com sucesso!"})
}

// Me retorna o perfil atual do usuário autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.usuarios.Get(r.Context(), ator(r).ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"usuario": u})
}

func (h *Handler) PasskeyRegistroStart(w http.ResponseWriter, r *http.Request) {
	cer, err := h.passkeys.IniciarRegistro(r.Context(), ator(r).ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"session": cer.Session, "options": cer.Options})
}

func (h *Handler) PasskeyRegistroFinish(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if err := h.passkeys.ConcluirRegistro(r.Context(), ator(r).ID, sessionID, r.Body); err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"mensagem": "Biometria cadastrada com sucesso!"})
}

func (h *Handler) PasskeyLoginStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	cer, err := h.passkeys.IniciarLogin(r.Context(), payload.Email)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"session": cer.Session, "options": cer.Options})
}

func (h *Handler) PasskeyLoginFinish(w http.ResponseWriter, r *http.Request) {
	result, err := h.passkeys.ConcluirLogin(r.Context(), r.URL.Query().Get("session"), r.Body)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	h.writeLoginSuccess(w, result)
}
