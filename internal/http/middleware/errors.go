package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError segue o mesmo envelope das rotas para falhas barradas antes do handler.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"sucesso":  false,
		"mensagem": message,
		"codigo":   code,
	})
}
