package handler

import (
	"net/http"
	"strings"
)

const maxUserNameLength = 80

type profileRequest struct {
	Name string `json:"name"`
}

type profileResponse struct {
	Name string `json:"name"`
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, profileResponse{Name: h.Store.UserName()})
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if len([]rune(name)) > maxUserNameLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is too long")
		return
	}

	if err := h.Store.SaveUserName(r.Context(), name); err != nil {
		h.writeStoreError(w, "profile.update", err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Name: h.Store.UserName()})
}
