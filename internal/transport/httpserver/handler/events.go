package handler

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"bandly-go/internal/domain/roster"
)

type createEventRequest struct {
	Title       string             `json:"title"`
	Type        roster.EventType   `json:"type"`
	Date        string             `json:"date"`
	Location    string             `json:"location"`
	Description string             `json:"description"`
	MemberIDs   []string           `json:"memberIds"`
	Songs       []string           `json:"songs"`
	Status      roster.EventStatus `json:"status"`
}

type updateEventRequest struct {
	Title       *string             `json:"title"`
	Type        *roster.EventType   `json:"type"`
	Date        *string             `json:"date"`
	Location    *string             `json:"location"`
	Description *string             `json:"description"`
	MemberIDs   *[]string           `json:"memberIds"`
	Songs       *[]string           `json:"songs"`
	Status      *roster.EventStatus `json:"status"`
}

type eventListResponse struct {
	Items []roster.Event `json:"items"`
	Total int            `json:"total"`
}

type shareResponse struct {
	Text string `json:"text"`
}

// ListEvents returns events by date. Optional filters: type, member_id, from
// and to (RFC 3339, inclusive).
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var eventType roster.EventType
	if value := strings.TrimSpace(query.Get("type")); value != "" {
		if err := eventType.UnmarshalText([]byte(value)); err != nil || !eventType.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid type")
			return
		}
	}
	from, err := parseOptionalTime(query.Get("from"), h.Dashboard.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid from")
		return
	}
	to, err := parseOptionalTime(query.Get("to"), h.Dashboard.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid to")
		return
	}
	memberID := strings.TrimSpace(query.Get("member_id"))

	snapshot := h.Store.Snapshot()
	items := make([]roster.Event, 0, len(snapshot.Events))
	for _, event := range snapshot.Events {
		if eventType != "" && event.Type != eventType {
			continue
		}
		if memberID != "" && !event.HasMember(memberID) {
			continue
		}
		if !from.IsZero() && event.Date.Before(from) {
			continue
		}
		if !to.IsZero() && event.Date.After(to) {
			continue
		}
		items = append(items, event)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.Before(items[j].Date)
	})

	writeJSON(w, http.StatusOK, eventListResponse{Items: items, Total: len(items)})
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.Date) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "date is required")
		return
	}
	date, err := roster.ParseEventDate(req.Date, h.Dashboard.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Status == "" {
		req.Status = roster.EventStatusPending
	}
	if req.MemberIDs == nil {
		req.MemberIDs = []string{}
	}

	event := roster.Event{
		ID:          h.newID(),
		Title:       strings.TrimSpace(req.Title),
		Type:        req.Type,
		Date:        date,
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
		MemberIDs:   req.MemberIDs,
		Songs:       cleanSongs(req.Songs),
		Status:      req.Status,
	}
	if err := event.Validate(); err != nil {
		h.writeStoreError(w, "events.create", err)
		return
	}

	if err := h.Store.AddEvent(r.Context(), event); err != nil {
		h.writeStoreError(w, "events.create", err, "event_id", event.ID)
		return
	}

	created, _ := h.Store.Event(event.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := pathID(r)
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req updateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	patch := roster.EventPatch{
		Title:       trimmed(req.Title),
		Type:        req.Type,
		Location:    trimmed(req.Location),
		Description: trimmed(req.Description),
		MemberIDs:   req.MemberIDs,
		Status:      req.Status,
	}
	if req.Date != nil {
		date, err := roster.ParseEventDate(*req.Date, h.Dashboard.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		patch.Date = &date
	}
	if req.Songs != nil {
		songs := cleanSongs(*req.Songs)
		patch.Songs = &songs
	}
	if patch.IsEmpty() {
		writeError(w, http.StatusBadRequest, "invalid_request", "no fields to update")
		return
	}
	if err := patch.Validate(); err != nil {
		h.writeStoreError(w, "events.update", err, "event_id", eventID)
		return
	}

	found, err := h.Store.UpdateEvent(r.Context(), eventID, patch)
	if err != nil {
		h.writeStoreError(w, "events.update", err, "event_id", eventID)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "event_not_found", "event not found")
		return
	}

	event, _ := h.Store.Event(eventID)
	writeJSON(w, http.StatusOK, event)
}

func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := pathID(r)
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	found, err := h.Store.DeleteEvent(r.Context(), eventID)
	if err != nil {
		h.writeStoreError(w, "events.delete", err, "event_id", eventID)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "event_not_found", "event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEvent returns the event with its resolved members and date label.
func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := h.Store.Event(pathID(r))
	if !ok {
		writeError(w, http.StatusNotFound, "event_not_found", "event not found")
		return
	}
	writeJSON(w, http.StatusOK, h.Dashboard.EventView(event))
}

func (h *Handlers) ShareEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := h.Store.Event(pathID(r))
	if !ok {
		writeError(w, http.StatusNotFound, "event_not_found", "event not found")
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{Text: h.Dashboard.ShareText(event)})
}

func parseOptionalTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return roster.ParseEventDate(value, loc)
}

func cleanSongs(songs []string) []string {
	if songs == nil {
		return nil
	}
	result := make([]string, 0, len(songs))
	for _, song := range songs {
		if song = strings.TrimSpace(song); song != "" {
			result = append(result, song)
		}
	}
	return result
}
