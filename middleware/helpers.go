package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError отвечает в том же формате, что и обработчики: {"ok":false,"error":...}.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "error": message})
}
