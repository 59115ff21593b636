package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bandly-go/internal/config"
	"bandly-go/internal/domain/dashboard"
	"bandly-go/internal/domain/roster"
	"bandly-go/internal/metrics"
	"bandly-go/internal/repository/inmemory"
	"bandly-go/internal/transport/httpserver/handler"
	"bandly-go/pkg/logger"
)

type testServer struct {
	router  http.Handler
	store   *roster.Store
	storage *inmemory.Storage
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerIn(t, time.UTC)
}

func newTestServerIn(t *testing.T, loc *time.Location) *testServer {
	t.Helper()

	storage := inmemory.NewStorage()
	store := roster.NewStoreWithConfig(storage, logger.NewNop(), roster.Config{Location: loc})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	svc := dashboard.NewServiceWithConfig(store, dashboard.Config{Location: loc})
	cfg := config.Config{
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	router := NewRouter(cfg, handler.New(store, svc, logger.NewNop()), metrics.New())

	return &testServer{router: router, store: store, storage: storage}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *testServer) createMember(t *testing.T, name string) roster.Member {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/members", map[string]string{
		"name": name,
		"type": "Musician",
		"role": "Voice",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[roster.Member](t, rec)
}

func (s *testServer) createEvent(t *testing.T, title, date string, memberIDs ...string) roster.Event {
	t.Helper()
	if memberIDs == nil {
		memberIDs = []string{}
	}
	rec := s.do(t, http.MethodPost, "/api/events", map[string]interface{}{
		"title":     title,
		"type":      "Rehearsal",
		"date":      date,
		"location":  "Main hall",
		"memberIds": memberIDs,
		"status":    "Confirmed",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[roster.Event](t, rec)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decode[map[string]string](t, rec); body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body)
	}
}

func TestCreateMemberDefaultsAndPersists(t *testing.T) {
	s := newTestServer(t)

	member := s.createMember(t, "  Ana Souza ")
	if member.ID == "" || member.Name != "Ana Souza" || member.Status != roster.MemberStatusActive {
		t.Fatalf("unexpected member: %+v", member)
	}

	raw, found, err := s.storage.Get(context.Background(), roster.DefaultDataKey)
	if err != nil || !found {
		t.Fatalf("expected snapshot to be persisted, found=%v err=%v", found, err)
	}
	if !strings.Contains(string(raw), member.ID) {
		t.Fatalf("expected persisted snapshot to contain member id")
	}
}

func TestCreateMemberAcceptsLegacyLabels(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/members", map[string]string{
		"name":   "Caio",
		"type":   "Líder de equipe",
		"role":   "Bateria",
		"status": "Afastado",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	member := decode[roster.Member](t, rec)
	if member.Type != roster.MemberTypeTeamLeader || member.Role != roster.MemberRoleDrums || member.Status != roster.MemberStatusInactive {
		t.Fatalf("expected normalized labels, got %+v", member)
	}
}

func TestCreateMemberValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []map[string]string{
		{"name": "", "type": "Musician", "role": "Voice"},
		{"name": "Ana", "type": "Drummer", "role": "Voice"},
		{"name": "Ana", "type": "Musician", "role": "Flute"},
	}
	for _, body := range cases {
		rec := s.do(t, http.MethodPost, "/api/members", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %v, got %d", body, rec.Code)
		}
		if got := decode[errorResponse](t, rec).Error.Code; got != "invalid_request" {
			t.Fatalf("expected invalid_request, got %q", got)
		}
	}

	rec := s.do(t, http.MethodPost, "/api/members", map[string]string{"name": "Ana", "nickname": "A"})
	if rec.Code != http.StatusBadRequest || decode[errorResponse](t, rec).Error.Code != "invalid_json" {
		t.Fatalf("expected invalid_json for unknown field, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateMember(t *testing.T) {
	s := newTestServer(t)
	member := s.createMember(t, "Ana")

	rec := s.do(t, http.MethodPatch, "/api/members/"+member.ID, map[string]string{"role": "Guitar"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decode[roster.Member](t, rec)
	if updated.Role != roster.MemberRoleGuitar || updated.Name != "Ana" {
		t.Fatalf("expected merged update, got %+v", updated)
	}

	if rec := s.do(t, http.MethodPatch, "/api/members/missing", map[string]string{"role": "Guitar"}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown member, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPatch, "/api/members/"+member.ID, map[string]string{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty patch, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPatch, "/api/members/"+member.ID, map[string]string{"name": " "}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", rec.Code)
	}
}

func TestDeleteMemberCascades(t *testing.T) {
	s := newTestServer(t)
	ana := s.createMember(t, "Ana")
	bia := s.createMember(t, "Bia")
	event := s.createEvent(t, "Sunday rehearsal", "2026-03-14T18:00:00Z", ana.ID, bia.ID)

	if rec := s.do(t, http.MethodDelete, "/api/members/"+ana.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, "/api/members/"+ana.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}

	stored, ok := s.store.Event(event.ID)
	if !ok {
		t.Fatalf("expected event to survive")
	}
	if len(stored.MemberIDs) != 1 || stored.MemberIDs[0] != bia.ID {
		t.Fatalf("expected only bia to remain, got %v", stored.MemberIDs)
	}
}

func TestCreateEventRejectsUnknownMember(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/events", map[string]interface{}{
		"title":     "Rehearsal",
		"type":      "Rehearsal",
		"date":      "2026-03-14T18:00",
		"memberIds": []string{"ghost"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(s.store.Snapshot().Events) != 0 {
		t.Fatalf("expected no event to be stored")
	}
}

func TestCreateEventValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []map[string]interface{}{
		{"title": "", "type": "Rehearsal", "date": "2026-03-14T18:00:00Z"},
		{"title": "X", "type": "Party", "date": "2026-03-14T18:00:00Z"},
		{"title": "X", "type": "Rehearsal", "date": "tomorrow"},
		{"title": "X", "type": "Rehearsal"},
	}
	for _, body := range cases {
		if rec := s.do(t, http.MethodPost, "/api/events", body); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %v, got %d", body, rec.Code)
		}
	}
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	s := newTestServer(t)
	member := s.createMember(t, "Ana")
	event := s.createEvent(t, "Rehearsal", "2026-03-14T18:00:00Z")

	rec := s.do(t, http.MethodPatch, "/api/events/"+event.ID, map[string]interface{}{
		"memberIds": []string{member.ID, member.ID},
		"songs":     []string{" Song A ", ""},
		"date":      "2026-03-15T10:00:00Z",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decode[roster.Event](t, rec)
	if len(updated.MemberIDs) != 1 || len(updated.Songs) != 1 || updated.Songs[0] != "Song A" {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if !updated.Date.Equal(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected date to change, got %v", updated.Date)
	}

	if rec := s.do(t, http.MethodPatch, "/api/events/"+event.ID, map[string]interface{}{"memberIds": []string{"ghost"}}); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPatch, "/api/events/missing", map[string]string{"title": "X"}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, "/api/events/"+event.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, "/api/events/"+event.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListEventsFilters(t *testing.T) {
	s := newTestServer(t)
	member := s.createMember(t, "Ana")
	s.createEvent(t, "Later", "2026-03-20T18:00:00Z", member.ID)
	s.createEvent(t, "Sooner", "2026-03-10T18:00:00Z")

	type listResponse struct {
		Items []roster.Event `json:"items"`
		Total int            `json:"total"`
	}

	all := decode[listResponse](t, s.do(t, http.MethodGet, "/api/events", nil))
	if all.Total != 2 || all.Items[0].Title != "Sooner" {
		t.Fatalf("expected events ordered by date, got %+v", all.Items)
	}

	mine := decode[listResponse](t, s.do(t, http.MethodGet, "/api/events?member_id="+member.ID, nil))
	if mine.Total != 1 || mine.Items[0].Title != "Later" {
		t.Fatalf("expected member filter, got %+v", mine.Items)
	}

	ranged := decode[listResponse](t, s.do(t, http.MethodGet, "/api/events?from=2026-03-15T00:00:00Z", nil))
	if ranged.Total != 1 || ranged.Items[0].Title != "Later" {
		t.Fatalf("expected from filter, got %+v", ranged.Items)
	}

	memberEvents := decode[listResponse](t, s.do(t, http.MethodGet, "/api/members/"+member.ID+"/events", nil))
	if memberEvents.Total != 1 {
		t.Fatalf("expected 1 member event, got %d", memberEvents.Total)
	}
	if rec := s.do(t, http.MethodGet, "/api/members/ghost/events", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown member, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/api/events?type=Party", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", rec.Code)
	}
}

func TestDashboardAndReport(t *testing.T) {
	s := newTestServer(t)
	ana := s.createMember(t, "Ana")
	s.createEvent(t, "Tonight", "2026-03-10T19:30:00Z", ana.ID)
	s.createEvent(t, "Next week", "2026-03-17T19:30:00Z", ana.ID)

	rec := s.do(t, http.MethodGet, "/api/dashboard?now=2026-03-10T12:00:00Z", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	dash := decode[dashboard.DashboardResult](t, rec)
	if len(dash.Today) != 1 || dash.Today[0].Event.Title != "Tonight" || dash.Today[0].DateLabel != "Today" {
		t.Fatalf("unexpected today: %+v", dash.Today)
	}
	if len(dash.Upcoming) != 2 || dash.Month.Counts[roster.EventTypeRehearsal] != 2 {
		t.Fatalf("unexpected dashboard: %+v", dash)
	}

	rec = s.do(t, http.MethodGet, "/api/reports?now=2026-03-10T12:00:00Z", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	report := decode[dashboard.ReportResult](t, rec)
	if report.TotalEvents != 2 || report.ActiveMembers != 1 || report.MostActive == nil || report.MostActive.Events != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}

	if rec := s.do(t, http.MethodGet, "/api/dashboard?now=yesterday", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid now, got %d", rec.Code)
	}
}

func TestShareAndGetEvent(t *testing.T) {
	s := newTestServer(t)
	ana := s.createMember(t, "Ana")
	event := s.createEvent(t, "Tonight", "2026-03-10T19:30:00Z", ana.ID)

	rec := s.do(t, http.MethodGet, "/api/events/"+event.ID+"/share", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	text := decode[map[string]string](t, rec)["text"]
	if !strings.Contains(text, "Tonight") || !strings.Contains(text, "Team: Ana") {
		t.Fatalf("unexpected share text: %q", text)
	}

	view := decode[dashboard.EventView](t, s.do(t, http.MethodGet, "/api/events/"+event.ID, nil))
	if view.Event.ID != event.ID || len(view.Members) != 1 {
		t.Fatalf("unexpected event view: %+v", view)
	}

	if rec := s.do(t, http.MethodGet, "/api/events/missing/share", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/profile", map[string]string{"name": " Leo "})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	profile := decode[map[string]string](t, s.do(t, http.MethodGet, "/api/profile", nil))
	if profile["name"] != "Leo" {
		t.Fatalf("expected Leo, got %q", profile["name"])
	}

	raw, _, _ := s.storage.Get(context.Background(), roster.DefaultUserKey)
	if string(raw) != "Leo" {
		t.Fatalf("expected user key to hold the raw name, got %q", raw)
	}
}

func TestStateIncludesLoadWarning(t *testing.T) {
	storage := inmemory.NewStorage()
	if err := storage.Set(context.Background(), roster.DefaultDataKey, []byte("{broken")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := roster.NewStore(storage, logger.NewNop())
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	router := NewRouter(config.Config{}, handler.New(store, dashboard.NewService(store), logger.NewNop()), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	var state struct {
		Members []roster.Member `json:"members"`
		Events  []roster.Event  `json:"events"`
		Warning string          `json:"warning"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Warning == "" || len(state.Members) != 0 || state.Events == nil {
		t.Fatalf("expected empty state with warning, got %+v", state)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected no metrics endpoint without metrics, got %d", rec.Code)
	}
}

type failingStorage struct {
	*inmemory.Storage
	fail bool
}

func (f *failingStorage) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Storage.Set(ctx, key, value)
}

func TestPersistFailureReturns500AndKeepsState(t *testing.T) {
	storage := &failingStorage{Storage: inmemory.NewStorage()}
	store := roster.NewStore(storage, logger.NewNop())
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	router := NewRouter(config.Config{}, handler.New(store, dashboard.NewService(store), logger.NewNop()), nil)
	storage.fail = true

	req := httptest.NewRequest(http.MethodPost, "/api/members", strings.NewReader(`{"name":"Ana","type":"Musician","role":"Voice"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if len(store.Snapshot().Members) != 0 {
		t.Fatalf("expected previous state to be kept")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/health", nil)

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `route="/api/health"`) {
		t.Fatalf("expected health route in metrics")
	}
}

func TestDatesWithoutOffsetUseDashboardLocation(t *testing.T) {
	zone := time.FixedZone("UTC-3", -3*60*60)
	s := newTestServerIn(t, zone)
	event := s.createEvent(t, "Late rehearsal", "2026-03-11T01:00")

	if want := time.Date(2026, 3, 11, 4, 0, 0, 0, time.UTC); !event.Date.Equal(want) {
		t.Fatalf("expected %v, got %v", want, event.Date.UTC())
	}

	rec := s.do(t, http.MethodGet, "/api/dashboard?now=2026-03-10T12:00:00-03:00", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := decode[dashboard.DashboardResult](t, rec)
	if len(result.Today) != 0 {
		t.Fatalf("expected nothing today, got %+v", result.Today)
	}
	if len(result.Upcoming) != 1 || result.Upcoming[0].DateLabel != "Tomorrow" {
		t.Fatalf("expected the event tomorrow, got %+v", result.Upcoming)
	}

	text := decode[map[string]string](t, s.do(t, http.MethodGet, "/api/events/"+event.ID+"/share", nil))["text"]
	if !strings.Contains(text, "When: 11/03/2026 01:00") {
		t.Fatalf("expected local time in share text, got %q", text)
	}

	list := decode[struct {
		Total int `json:"total"`
	}](t, s.do(t, http.MethodGet, "/api/events?from=2026-03-11T00:30", nil))
	if list.Total != 1 {
		t.Fatalf("expected the event after local 00:30, got %d", list.Total)
	}
	list = decode[struct {
		Total int `json:"total"`
	}](t, s.do(t, http.MethodGet, "/api/events?from=2026-03-11T02:00", nil))
	if list.Total != 0 {
		t.Fatalf("expected no events after local 02:00, got %d", list.Total)
	}
}
