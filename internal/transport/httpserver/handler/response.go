package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"bandly-go/internal/domain/roster"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeStoreError maps roster errors onto the error envelope. Caller mistakes
// are logged as business errors, everything else as internal.
func (h *Handlers) writeStoreError(w http.ResponseWriter, op string, err error, args ...any) {
	switch {
	case errors.Is(err, roster.ErrDuplicateID):
		h.log.BusinessError(op+": duplicate id", err, args...)
		writeError(w, http.StatusConflict, "duplicate_id", err.Error())
	case errors.Is(err, roster.ErrUnknownMember):
		h.log.BusinessError(op+": unknown member", err, args...)
		writeError(w, http.StatusUnprocessableEntity, "unknown_member", err.Error())
	case errors.Is(err, roster.ErrInvalidMember), errors.Is(err, roster.ErrInvalidEvent):
		h.log.BusinessError(op+": invalid input", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, roster.ErrNotLoaded):
		h.log.InternalError(op+": store not loaded", err, args...)
		writeError(w, http.StatusServiceUnavailable, "not_loaded", "data is not loaded yet")
	default:
		h.log.InternalError(op+": store failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
