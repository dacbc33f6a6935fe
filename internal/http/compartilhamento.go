package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GerarCompartilhamento(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "demandaId")
	if !ok {
		return
	}
	link, err := h.compartilhamento.Gerar(r.Context(), ator(r), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"mensagem": "Link de compartilhamento gerado com sucesso!",
		"token":    link.Token,
		"link":     link.Link,
		"demanda":  link.Demanda,
	})
}

func (h *Handler) DesativarCompartilhamento(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "demandaId")
	if !ok {
		return
	}
	if err := h.compartilhamento.Desativar(r.Context(), ator(r), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"mensagem": "Compartilhamento desativado com sucesso!"})
}

func (h *Handler) SituacaoCompartilhamento(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "demandaId")
	if !ok {
		return
	}
	sit, err := h.compartilhamento.Situacao(r.Context(), ator(r), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"compartilhado":         sit.Compartilhado,
		"token":                 sit.Token,
		"data_compartilhamento": sit.DataCompartilhamento,
	})
}

// VisaoPublica serve a página do cidadão; token desconhecido ou revogado vira 404.
func (h *Handler) VisaoPublica(w http.ResponseWriter, r *http.Request) {
	d, err := h.compartilhamento.Publico(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"demanda": d})
}
