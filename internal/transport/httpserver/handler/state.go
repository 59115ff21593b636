package handler

import (
	"net/http"

	"bandly-go/internal/domain/roster"
)

type stateResponse struct {
	Members []roster.Member `json:"members"`
	Events  []roster.Event  `json:"events"`
	Warning string          `json:"warning,omitempty"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !h.Store.Loaded() {
		status = "loading"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *Handlers) GetState(w http.ResponseWriter, r *http.Request) {
	snapshot := h.Store.Snapshot()
	response := stateResponse{
		Members: snapshot.Members,
		Events:  snapshot.Events,
	}
	if warning := h.Store.LoadWarning(); warning != nil {
		response.Warning = warning.Error()
	}
	writeJSON(w, http.StatusOK, response)
}
