package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/icdstack/terminal/internal/domain"
)

// writeJSON writes JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sends an error message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps a stable error code to an HTTP status and keeps the
// code in the body so clients can branch on it.
func writeDomainError(w http.ResponseWriter, err error) {
	code := domain.CodeOf(err)
	status := http.StatusBadRequest
	switch code {
	case domain.CodeNotFound, domain.CodeContainerNotFound, domain.CodeHoldNotFound:
		status = http.StatusNotFound
	case domain.CodeDuplicateContainer, domain.CodeWorkOrderConflict:
		status = http.StatusConflict
	case domain.CodeInvalidTransition, domain.CodeInvalidStatus:
		status = http.StatusUnprocessableEntity
	case "":
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{
		"error":     err.Error(),
		"errorCode": string(code),
	})
}
