package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/gabinete/internal/cidadao"
	"github.com/gestaozabele/gabinete/internal/demanda"
	"github.com/gestaozabele/gabinete/internal/util"
)

const dateLayout = "2006-01-02"

type demandaPayload struct {
	Titulo               string               `json:"titulo"`
	Descricao            string               `json:"descricao"`
	Prioridade           string               `json:"prioridade"`
	CidadaoID            *uuid.UUID           `json:"cidadao_id"`
	Cidadao              *cidadao.CreateInput `json:"cidadao"`
	UsuarioResponsavelID *uuid.UUID           `json:"usuario_responsavel_id"`
	UsuarioOrigemID      *uuid.UUID           `json:"usuario_origem_id"`
	StatusID             *int64               `json:"status_id"`
}

func (h *Handler) ListDemandas(w http.ResponseWriter, r *http.Request) {
	filter, msg := parseFiltro(r)
	if msg != "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", msg, "")
		return
	}

	items, err := h.demandas.List(r.Context(), filter)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"quantidade": len(items), "demandas": items})
}

func parseFiltro(r *http.Request) (demanda.Filter, string) {
	q := r.URL.Query()
	var f demanda.Filter

	if v := q.Get("status_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, "status_id inválido"
		}
		f.StatusID = &id
	}
	f.Prioridade = q.Get("prioridade")
	responsavel, err := util.ParseOptionalUUID(q.Get("usuario_responsavel_id"))
	if err != nil {
		return f, "usuario_responsavel_id inválido"
	}
	f.ResponsavelID = responsavel
	f.Busca = q.Get("busca")
	if v := q.Get("data_inicio"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, "data_inicio inválida (use AAAA-MM-DD)"
		}
		f.DataInicio = &t
	}
	if v := q.Get("data_fim"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, "data_fim inválida (use AAAA-MM-DD)"
		}
		f.DataFim = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, "limit inválido"
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, "offset inválido"
		}
		f.Offset = n
	}
	return f, ""
}

func (h *Handler) CreateDemanda(w http.ResponseWriter, r *http.Request) {
	var payload demandaPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	d, err := h.demandas.Create(r.Context(), ator(r), demanda.CreateInput{
		Titulo:               payload.Titulo,
		Descricao:            payload.Descricao,
		Prioridade:           payload.Prioridade,
		CidadaoID:            payload.CidadaoID,
		Cidadao:              payload.Cidadao,
		UsuarioResponsavelID: payload.UsuarioResponsavelID,
		UsuarioOrigemID:      payload.UsuarioOrigemID,
		StatusID:             payload.StatusID,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"mensagem": "Demanda criada com sucesso!", "demanda": d})
}

func (h *Handler) Kanban(w http.ResponseWriter, r *http.Request) {
	colunas, err := h.demandas.Kanban(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"colunas": colunas})
}

func (h *Handler) EstatisticasDemandas(w http.ResponseWriter, r *http.Request) {
	est, err := h.demandas.Estatisticas(r.Context(), ator(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"estatisticas": est})
}

func (h *Handler) GetDemanda(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	d, err := h.demandas.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"demanda": d})
}

func (h *Handler) UpdateDemanda(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var payload demandaPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	d, err := h.demandas.Update(r.Context(), ator(r), id, demanda.UpdateInput{
		Titulo:               payload.Titulo,
		Descricao:            payload.Descricao,
		Prioridade:           payload.Prioridade,
		UsuarioResponsavelID: payload.UsuarioResponsavelID,
		StatusID:             payload.StatusID,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"mensagem": "Demanda atualizada com sucesso!", "demanda": d})
}

func (h *Handler) DeleteDemanda(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.demandas.Delete(r.Context(), ator(r), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"mensagem": "Demanda excluída com sucesso!"})
}

// TransitionDemanda move o card do kanban; o cliente reconcilia com a demanda devolvida.
func (h *Handler) TransitionDemanda(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var payload struct {
		StatusID *int64 `json:"status_id"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeInvalidJSON(w)
		return
	}

	d, err := h.demandas.Transition(r.Context(), ator(r), id, payload.StatusID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"mensagem": "Status atualizado com sucesso!", "demanda": d})
}

func (h *Handler) HistoricoDemanda(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	items, err := h.demandas.Historico(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"historico": items})
}
