package handler

import (
	"net/http"
	"sort"
	"strings"

	"bandly-go/internal/domain/dashboard"
	"bandly-go/internal/domain/roster"
)

type createMemberRequest struct {
	Name   string              `json:"name"`
	Type   roster.MemberType   `json:"type"`
	Role   roster.MemberRole   `json:"role"`
	Status roster.MemberStatus `json:"status"`
	Photo  string              `json:"photo"`
}

type updateMemberRequest struct {
	Name   *string              `json:"name"`
	Type   *roster.MemberType   `json:"type"`
	Role   *roster.MemberRole   `json:"role"`
	Status *roster.MemberStatus `json:"status"`
	Photo  *string              `json:"photo"`
}

type memberListResponse struct {
	Items             []dashboard.MemberSummary `json:"items"`
	Total             int                       `json:"total"`
	ActiveMusicians   int                       `json:"active_musicians"`
	ActiveTeamLeaders int                       `json:"active_team_leaders"`
}

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	result := h.Dashboard.Members()
	writeJSON(w, http.StatusOK, memberListResponse{
		Items:             result.Members,
		Total:             len(result.Members),
		ActiveMusicians:   result.ActiveMusicians,
		ActiveTeamLeaders: result.ActiveTeamLeaders,
	})
}

func (h *Handlers) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if req.Status == "" {
		req.Status = roster.MemberStatusActive
	}

	member := roster.Member{
		ID:     h.newID(),
		Name:   strings.TrimSpace(req.Name),
		Type:   req.Type,
		Role:   req.Role,
		Status: req.Status,
		Photo:  strings.TrimSpace(req.Photo),
	}
	if err := member.Validate(); err != nil {
		h.writeStoreError(w, "members.create", err)
		return
	}

	if err := h.Store.AddMember(r.Context(), member); err != nil {
		h.writeStoreError(w, "members.create", err, "member_id", member.ID)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (h *Handlers) UpdateMember(w http.ResponseWriter, r *http.Request) {
	memberID := pathID(r)
	if memberID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req updateMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	patch := roster.MemberPatch{
		Name:   trimmed(req.Name),
		Type:   req.Type,
		Role:   req.Role,
		Status: req.Status,
		Photo:  trimmed(req.Photo),
	}
	if patch.IsEmpty() {
		writeError(w, http.StatusBadRequest, "invalid_request", "no fields to update")
		return
	}
	if err := patch.Validate(); err != nil {
		h.writeStoreError(w, "members.update", err, "member_id", memberID)
		return
	}

	found, err := h.Store.UpdateMember(r.Context(), memberID, patch)
	if err != nil {
		h.writeStoreError(w, "members.update", err, "member_id", memberID)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "member_not_found", "member not found")
		return
	}

	member, _ := h.Store.Member(memberID)
	writeJSON(w, http.StatusOK, member)
}

func (h *Handlers) DeleteMember(w http.ResponseWriter, r *http.Request) {
	memberID := pathID(r)
	if memberID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	found, err := h.Store.DeleteMember(r.Context(), memberID)
	if err != nil {
		h.writeStoreError(w, "members.delete", err, "member_id", memberID)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "member_not_found", "member not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMemberEvents returns the events the member is scheduled for, by date.
func (h *Handlers) ListMemberEvents(w http.ResponseWriter, r *http.Request) {
	memberID := pathID(r)
	if _, ok := h.Store.Member(memberID); !ok {
		writeError(w, http.StatusNotFound, "member_not_found", "member not found")
		return
	}

	snapshot := h.Store.Snapshot()
	items := make([]roster.Event, 0)
	for _, event := range snapshot.Events {
		if event.HasMember(memberID) {
			items = append(items, event)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.Before(items[j].Date)
	})

	writeJSON(w, http.StatusOK, eventListResponse{Items: items, Total: len(items)})
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	result := strings.TrimSpace(*value)
	return &result
}
