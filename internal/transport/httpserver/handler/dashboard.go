package handler

import (
	"net/http"
)

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	at, err := parseNowParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Dashboard.Dashboard(at))
}

func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	at, err := parseNowParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Dashboard.Report(at))
}
