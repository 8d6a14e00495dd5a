package http

import (
	"net/http"
)

type createGoalRequest struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

type contributeRequest struct {
	Amount string `json:"amount"`
}

type contributeResponse struct {
	Goal      goalJSON `json:"goal"`
	Completed bool     `json:"completed"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.ListGoals(r.Context(), OwnerID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, newGoalJSON(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := s.goals.AddGoal(r.Context(), OwnerID(r.Context()), sanitizeInput(req.Name), req.Target)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newGoalJSON(goal))
}

func (s *Server) handleContributeGoal(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, completed, err := s.goals.Contribute(r.Context(), OwnerID(r.Context()), r.PathValue("id"), req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contributeResponse{Goal: newGoalJSON(goal), Completed: completed})
}

func (s *Server) handleListCompletedGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.ListCompletedGoals(r.Context(), OwnerID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]completedGoalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, newCompletedGoalJSON(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.goals.DeleteGoal(r.Context(), OwnerID(r.Context()), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
