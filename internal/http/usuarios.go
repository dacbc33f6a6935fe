package http

import (
	"net/http"

	"github.com/gestaozabele/gabinete/internal/usuario"
)

func (h *Handler) ListUsuarios(w http.ResponseWriter, r *http.Request) {
	items, err := h.usuarios.ListAtivos(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"quantidade": len(items), "usuarios": items})
}

// EstatisticasAcesso lista último acesso e contagem de logins; apenas gestores.
func (h *Handler) EstatisticasAcesso(w http.ResponseWriter, r *http.Request) {
	items, err := h.usuarios.AccessStats(r.Context(), ator(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"quantidade": len(items), "usuarios": items})
}

func (h *Handler) GetUsuario(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	u, err := h.usuarios.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"usuario": u})
}

func (h *Handler) UpdateUsuario(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var payload struct {
		NomeCompleto   string `json:"nome_completo"`
		Email          string `json:"email"`
		NivelPermissao string `json:"nivel_permissao"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	u, err := h.usuarios.Update(r.Context(), ator(r), id, usuario.UpdateInput{
		NomeCompleto:   payload.NomeCompleto,
		Email:          payload.Email,
		NivelPermissao: payload.NivelPermissao,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"mensagem": "Usuário atualizado com sucesso!", "usuario": u})
}

func (h *Handler) SetUsuarioAtivo(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var payload struct {
		Ativo *bool `json:"ativo"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}
	if payload.Ativo == nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "Campo ativo é obrigatório", "")
		return
	}

	u, err := h.usuarios.SetAtivo(r.Context(), ator(r), id, *payload.Ativo)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	msg := "Usuário desativado com sucesso!"
	if u.Ativo {
		msg = "Usuário ativado com sucesso!"
	}
	WriteJSON(w, http.StatusOK, map[string]any{"mensagem": msg, "usuario": u})
}

func (h *Handler) ResetarSenha(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.usuarios.ResetPassword(r.Context(), ator(r), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"mensagem": "Senha redefinida para o padrão com sucesso!"})
}
