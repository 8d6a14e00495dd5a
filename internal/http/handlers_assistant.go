package http

import (
	"errors"
	"log/slog"
	"net/http"

	"wisewallet/internal/assistant"
)

type assistantParseRequest struct {
	Message string `json:"message"`
}

type assistantParseResponse struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

func (s *Server) handleAssistantParse(w http.ResponseWriter, r *http.Request) {
	var req assistantParseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	parsed, err := s.assistant.Parse(r.Context(), sanitizeInput(req.Message))
	if err != nil {
		if errors.Is(err, assistant.ErrDisabled) {
			writeError(w, http.StatusServiceUnavailable, "assistant is not configured")
			return
		}
		slog.ErrorContext(r.Context(), "Assistant parse failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, assistantParseResponse{
		Type:        parsed.Type,
		Amount:      parsed.Amount,
		Description: parsed.Description,
	})
}
