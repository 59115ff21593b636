package roster

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type MemberType string

const (
	MemberTypeTeamLeader MemberType = "TeamLeader"
	MemberTypeMusician   MemberType = "Musician"
)

type MemberRole string

const (
	MemberRoleVoice    MemberRole = "Voice"
	MemberRoleGuitar   MemberRole = "Guitar"
	MemberRoleDrums    MemberRole = "Drums"
	MemberRoleBass     MemberRole = "Bass"
	MemberRoleKeyboard MemberRole = "Keyboard"
	MemberRoleSound    MemberRole = "Sound"
	MemberRoleOther    MemberRole = "Other"
)

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "Active"
	MemberStatusInactive MemberStatus = "Inactive"
)

type EventType string

const (
	EventTypeRehearsal EventType = "Rehearsal"
	EventTypeSchedule  EventType = "Schedule"
	EventTypeMeeting   EventType = "Meeting"
	EventTypeOther     EventType = "Other"
)

// EventTypes lists every event type in display order.
var EventTypes = []EventType{EventTypeRehearsal, EventTypeSchedule, EventTypeMeeting, EventTypeOther}

type EventStatus string

const (
	EventStatusConfirmed EventStatus = "Confirmed"
	EventStatusPending   EventStatus = "Pending"
)

// Labels written by the first (Portuguese) release of the app.
var (
	legacyMemberTypes = map[string]MemberType{
		"Líder de equipe": MemberTypeTeamLeader,
		"Músico":          MemberTypeMusician,
	}
	legacyMemberRoles = map[string]MemberRole{
		"Voz":      MemberRoleVoice,
		"Guitarra": MemberRoleGuitar,
		"Bateria":  MemberRoleDrums,
		"Baixo":    MemberRoleBass,
		"Teclado":  MemberRoleKeyboard,
		"Som":      MemberRoleSound,
		"Outros":   MemberRoleOther,
	}
	legacyMemberStatuses = map[string]MemberStatus{
		"Ativo":    MemberStatusActive,
		"Afastado": MemberStatusInactive,
	}
	legacyEventTypes = map[string]EventType{
		"Ensaio":  EventTypeRehearsal,
		"Agenda":  EventTypeSchedule,
		"Reunião": EventTypeMeeting,
		"Outros":  EventTypeOther,
	}
	legacyEventStatuses = map[string]EventStatus{
		"Confirmado":  EventStatusConfirmed,
		"A Confirmar": EventStatusPending,
	}
)

type Member struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Type   MemberType   `json:"type"`
	Role   MemberRole   `json:"role"`
	Status MemberStatus `json:"status"`
	Photo  string       `json:"photo,omitempty"`
}

type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Type        EventType   `json:"type"`
	Date        time.Time   `json:"date"`
	Location    string      `json:"location"`
	Description string      `json:"description,omitempty"`
	MemberIDs   []string    `json:"memberIds"`
	Songs       []string    `json:"songs,omitempty"`
	Status      EventStatus `json:"status"`
}

// Snapshot is the whole persisted aggregate.
type Snapshot struct {
	Members []Member `json:"members"`
	Events  []Event  `json:"events"`
}

type MemberPatch struct {
	Name   *string
	Type   *MemberType
	Role   *MemberRole
	Status *MemberStatus
	Photo  *string
}

type EventPatch struct {
	Title       *string
	Type        *EventType
	Date        *time.Time
	Location    *string
	Description *string
	MemberIDs   *[]string
	Songs       *[]string
	Status      *EventStatus
}

func (t MemberType) Valid() bool {
	return t == MemberTypeTeamLeader || t == MemberTypeMusician
}

func (r MemberRole) Valid() bool {
	switch r {
	case MemberRoleVoice, MemberRoleGuitar, MemberRoleDrums, MemberRoleBass,
		MemberRoleKeyboard, MemberRoleSound, MemberRoleOther:
		return true
	}
	return false
}

func (s MemberStatus) Valid() bool {
	return s == MemberStatusActive || s == MemberStatusInactive
}

func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (s EventStatus) Valid() bool {
	return s == EventStatusConfirmed || s == EventStatusPending
}

func (t *MemberType) UnmarshalText(text []byte) error {
	*t = normalizeLabel(string(text), legacyMemberTypes)
	return nil
}

func (r *MemberRole) UnmarshalText(text []byte) error {
	*r = normalizeLabel(string(text), legacyMemberRoles)
	return nil
}

func (s *MemberStatus) UnmarshalText(text []byte) error {
	*s = normalizeLabel(string(text), legacyMemberStatuses)
	return nil
}

func (t *EventType) UnmarshalText(text []byte) error {
	*t = normalizeLabel(string(text), legacyEventTypes)
	return nil
}

func (s *EventStatus) UnmarshalText(text []byte) error {
	*s = normalizeLabel(string(text), legacyEventStatuses)
	return nil
}

func normalizeLabel[T ~string](value string, legacy map[string]T) T {
	value = strings.TrimSpace(value)
	if mapped, ok := legacy[value]; ok {
		return mapped
	}
	return T(value)
}

// Validate checks the fields a client must provide. The id is the store's concern.
func (m Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMember)
	}
	if !m.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMember, m.Type)
	}
	if !m.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMember, m.Role)
	}
	if !m.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidMember, m.Status)
	}
	return nil
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidEvent, e.Status)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidEvent)
	}
	return nil
}

// HasMember reports whether memberID is scheduled for the event.
func (e Event) HasMember(memberID string) bool {
	for _, id := range e.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts both the current layout and documents written by the
// first release (a "local" field and minute precision timestamps). Timestamps
// without an offset are read in the host zone; the store decodes with its
// configured location instead.
func (e *Event) UnmarshalJSON(data []byte) error {
	return e.decode(data, time.Local)
}

func (e *Event) decode(data []byte, loc *time.Location) error {
	type eventFields Event
	var raw struct {
		eventFields
		Date  string `json:"date"`
		Local string `json:"local"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Event(raw.eventFields)
	if e.Location == "" {
		e.Location = raw.Local
	}
	if raw.Date != "" {
		date, err := ParseEventDate(raw.Date, loc)
		if err != nil {
			return fmt.Errorf("event %q: %w", e.ID, err)
		}
		e.Date = date
	}
	return nil
}

var eventDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseEventDate parses RFC 3339 timestamps. Timestamps without an offset, as a
// datetime-local form field produces, are read in loc.
func ParseEventDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, nil
	}
	for _, layout := range eventDateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

func (p MemberPatch) IsEmpty() bool {
	return p.Name == nil && p.Type == nil && p.Role == nil && p.Status == nil && p.Photo == nil
}

// Validate checks the fields the patch sets.
func (p MemberPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidMember)
	}
	if p.Type != nil && !p.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMember, *p.Type)
	}
	if p.Role != nil && !p.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMember, *p.Role)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidMember, *p.Status)
	}
	return nil
}

func (p MemberPatch) apply(m *Member) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Type != nil {
		m.Type = *p.Type
	}
	if p.Role != nil {
		m.Role = *p.Role
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	if p.Photo != nil {
		m.Photo = *p.Photo
	}
}

func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Type == nil && p.Date == nil && p.Location == nil &&
		p.Description == nil && p.MemberIDs == nil && p.Songs == nil && p.Status == nil
}

func (p EventPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidEvent)
	}
	if p.Type != nil && !p.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, *p.Type)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidEvent, *p.Status)
	}
	if p.Date != nil && p.Date.IsZero() {
		return fmt.Errorf("%w: date must not be empty", ErrInvalidEvent)
	}
	return nil
}

func (p EventPatch) apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.MemberIDs != nil {
		e.MemberIDs = uniqueIDs(*p.MemberIDs)
	}
	if p.Songs != nil {
		e.Songs = cloneStrings(*p.Songs)
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
}

// Clone returns a copy that shares no slices with e.
func (e Event) Clone() Event {
	cloned := e
	cloned.MemberIDs = cloneStrings(e.MemberIDs)
	cloned.Songs = cloneStrings(e.Songs)
	if cloned.MemberIDs == nil {
		cloned.MemberIDs = []string{}
	}
	return cloned
}

// Clone returns a deep copy; nil lists come back empty.
func (s Snapshot) Clone() Snapshot {
	cloned := Snapshot{
		Members: make([]Member, len(s.Members)),
		Events:  make([]Event, len(s.Events)),
	}
	copy(cloned.Members, s.Members)
	for i := range s.Events {
		cloned.Events[i] = s.Events[i].Clone()
	}
	return cloned
}

func (s Snapshot) memberIndex(id string) int {
	for i := range s.Members {
		if s.Members[i].ID == id {
			return i
		}
	}
	return -1
}

func (s Snapshot) eventIndex(id string) int {
	for i := range s.Events {
		if s.Events[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	cloned := make([]string, len(values))
	copy(cloned, values)
	return cloned
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
