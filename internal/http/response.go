package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/gabinete/internal/apperr"
)

// WriteJSON escreve envelope de sucesso mesclando o payload com sucesso=true.
func WriteJSON(w http.ResponseWriter, status int, payload map[string]any) {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["sucesso"] = true

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError escreve envelope de erro e mantém formato consistente.
func WriteError(w http.ResponseWriter, status int, code, message, tipo string) {
	body := map[string]any{
		"sucesso":  false,
		"mensagem": message,
		"codigo":   code,
	}
	if tipo != "" {
		body["tipo"] = tipo
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeAppError traduz erros de domínio para HTTP; falhas internas são logadas e nunca expostas.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	if appErr.Kind == apperr.KindInternal {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("erro interno")
	}
	WriteError(w, appErr.Kind.Status(), appErr.Kind.Code(), appErr.Message, appErr.Tipo)
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeInvalidJSON(w http.ResponseWriter) {
	WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", "")
}
