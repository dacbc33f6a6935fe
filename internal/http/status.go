package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gestaozabele/gabinete/internal/status"
)

func (h *Handler) ListStatus(w http.ResponseWriter, r *http.Request) {
	items, err := h.status.ListAtivos(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"quantidade": len(items), "status": items})
}

func (h *Handler) CreateStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Nome  string  `json:"nome"`
		Ordem *int    `json:"ordem"`
		Cor   *string `json:"cor"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	st, err := h.status.Create(r.Context(), ator(r), status.CreateInput{
		Nome:  payload.Nome,
		Ordem: payload.Ordem,
		Cor:   payload.Cor,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"mensagem": "Status criado com sucesso!", "status": st})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := statusIDParam(w, r)
	if !ok {
		return
	}
	var payload struct {
		Nome  string  `json:"nome"`
		Ordem *int    `json:"ordem"`
		Cor   *string `json:"cor"`
		Ativo *bool   `json:"ativo"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	st, err := h.status.Update(r.Context(), ator(r), id, status.UpdateInput{
		Nome:  payload.Nome,
		Ordem: payload.Ordem,
		Cor:   payload.Cor,
		Ativo: payload.Ativo,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"mensagem": "Status atualizado com sucesso!", "status": st})
}

func (h *Handler) DeleteStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := statusIDParam(w, r)
	if !ok {
		return
	}
	if err := h.status.Delete(r.Context(), ator(r), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"mensagem": "Status excluído com sucesso!"})
}

func statusIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", "")
		return 0, false
	}
	return id, true
}
