package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gestaozabele/gabinete/internal/comentario"
)

// ListComentarios exige ?demanda_id=; não há listagem global.
func (h *Handler) ListComentarios(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("demanda_id")
	if raw == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "demanda_id é obrigatório", "")
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "demanda_id inválido", "")
		return
	}
	h.writeComentarios(w, r, id)
}

func (h *Handler) ListComentariosDemanda(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	h.writeComentarios(w, r, id)
}

func (h *Handler) writeComentarios(w http.ResponseWriter, r *http.Request, demandaID uuid.UUID) {
	items, err := h.comentarios.ListByDemanda(r.Context(), demandaID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"quantidade": len(items), "comentarios": items})
}

func (h *Handler) CreateComentario(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		DemandaID  *uuid.UUID `json:"demanda_id"`
		Comentario string     `json:"comentario"`
		Publico    bool       `json:"publico"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	c, err := h.comentarios.Create(r.Context(), ator(r), comentario.CreateInput{
		DemandaID:  payload.DemandaID,
		Comentario: payload.Comentario,
		Publico:    payload.Publico,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"mensagem": "Comentário criado com sucesso!", "comentario": c})
}

func (h *Handler) GetComentario(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.comentarios.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"comentario": c})
}

func (h *Handler) DeleteComentario(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.comentarios.Delete(r.Context(), ator(r), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"mensagem": "Comentário excluído com sucesso"})
}
