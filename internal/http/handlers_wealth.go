package http

import (
	"net/http"
)

type setWealthRequest struct {
	Cash    string `json:"cash"`
	Savings string `json:"savings"`
}

func (s *Server) handleGetWealth(w http.ResponseWriter, r *http.Request) {
	wlt, err := s.wealth.Wealth(r.Context(), OwnerID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWealthJSON(wlt))
}

func (s *Server) handleSetWealth(w http.ResponseWriter, r *http.Request) {
	var req setWealthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wlt, err := s.wealth.SetWealth(r.Context(), OwnerID(r.Context()), req.Cash, req.Savings)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWealthJSON(wlt))
}
