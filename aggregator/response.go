package aggregator

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"posts-gateway/aggregator/domain"
	"posts-gateway/logger"
)

// ErrorResponse é o corpo JSON de toda resposta de erro.
type ErrorResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

const internalErrorMessage = "internal server error"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, ErrorResponse{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// statusForError traduz a taxonomia de erros do domínio para status HTTP.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, log *logger.Logger, err error) {
	status := statusForError(err)
	switch status {
	case http.StatusInternalServerError:
		log.Error("unhandled error", "error", err)
		writeError(w, status, internalErrorMessage)
	case http.StatusBadGateway:
		log.Warn("upstream failure", "error", err)
		writeError(w, status, "upstream service unavailable")
	case http.StatusNotFound:
		log.Info("not found", "error", err)
		writeError(w, status, "no posts found")
	default:
		log.Info("invalid request", "error", err)
		writeError(w, status, clientMessage(err))
	}
}

// statusForDelete traduz o desfecho do delete para o status da resposta.
func statusForDelete(o domain.DeleteOutcome) int {
	switch o {
	case domain.Deleted:
		return http.StatusNoContent
	case domain.DeleteNotFound:
		return http.StatusNotFound
	case domain.DeleteInvalidRequest:
		return http.StatusBadRequest
	case domain.DeleteUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
