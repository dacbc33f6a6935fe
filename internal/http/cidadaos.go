package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gestaozabele/gabinete/internal/apperr"
	"github.com/gestaozabele/gabinete/internal/cidadao"
)

func (h *Handler) ListCidadaos(w http.ResponseWriter, r *http.Request) {
	items, err := h.cidadaos.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"quantidade": len(items), "cidadaos": items})
}

func (h *Handler) CreateCidadao(w http.ResponseWriter, r *http.Request) {
	var payload cidadao.CreateInput
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	c, err := h.cidadaos.Create(r.Context(), payload)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"mensagem": "Cidadão cadastrado com sucesso!", "cidadao": c})
}

// FindCidadaoByTelefone responde 200 mesmo sem cadastro para o formulário decidir se cria.
func (h *Handler) FindCidadaoByTelefone(w http.ResponseWriter, r *http.Request) {
	c, err := h.cidadaos.FindByTelefone(r.Context(), chi.URLParam(r, "telefone"))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			WriteJSON(w, http.StatusOK, map[string]any{"encontrado": false, "mensagem": "Cidadão não encontrado"})
			return
		}
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"encontrado": true, "cidadao": c})
}

func (h *Handler) GetCidadao(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.cidadaos.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"cidadao": c})
}
