package dashboard

import (
	"time"

	"github.com/jinzhu/now"

	"bandly-go/internal/domain/roster"
)

type Config struct {
	UpcomingLimit   int
	TopMembersLimit int
	Location        *time.Location
}

// Service assembles the dashboard, report and member views from the current
// snapshot. Calendar bounds are computed in the configured location.
type Service struct {
	source Source
	cfg    Config
	now    func() time.Time
}

func NewService(source Source) *Service {
	return NewServiceWithConfig(source, Config{})
}

func NewServiceWithConfig(source Source, cfg Config) *Service {
	return &Service{
		source: source,
		cfg:    normalizeConfig(cfg),
		now:    time.Now,
	}
}

func normalizeConfig(cfg Config) Config {
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = DefaultUpcomingLimit
	}
	if cfg.TopMembersLimit <= 0 {
		cfg.TopMembersLimit = DefaultTopMembersLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return cfg
}

// Now is the service clock in the configured location.
func (s *Service) Now() time.Time {
	return s.now().In(s.cfg.Location)
}

// Dashboard builds the home view as of at. A zero at means now.
func (s *Service) Dashboard(at time.Time) DashboardResult {
	current := s.resolve(at)
	snapshot := s.source.Snapshot()

	monthCounts := MonthlyTypeCounts(snapshot.Events, current)
	result := DashboardResult{
		GeneratedAt: current,
		UserName:    s.source.UserName(),
		Today:       s.eventViews(TodayEvents(snapshot.Events, current), snapshot, current),
		Upcoming:    s.eventViews(UpcomingEvents(snapshot.Events, current, s.cfg.UpcomingLimit), snapshot, current),
		Month: MonthSummary{
			Month:  now.With(current).BeginningOfMonth().Format("2006-01"),
			Counts: monthCounts,
			Total:  monthCounts.Total(),
		},
	}
	if warning := s.source.LoadWarning(); warning != nil {
		result.Warning = warning.Error()
	}
	return result
}

// Report builds the statistics view as of at. A zero at means now.
func (s *Service) Report(at time.Time) ReportResult {
	current := s.resolve(at)
	snapshot := s.source.Snapshot()

	top := TopActiveMembers(snapshot.Members, snapshot.Events, s.cfg.TopMembersLimit)
	result := ReportResult{
		GeneratedAt:     current,
		TotalEvents:     len(snapshot.Events),
		ThisMonthEvents: len(EventsInMonth(snapshot.Events, current)),
		ActiveMembers:   CountActiveMembers(snapshot.Members),
		EventsByType:    EventTypeCounts(snapshot.Events),
		TopMembers:      top,
	}
	if len(top) > 0 && top[0].Events > 0 {
		mostActive := top[0]
		result.MostActive = &mostActive
	}
	return result
}

func (s *Service) Members() MembersResult {
	snapshot := s.source.Snapshot()
	byType := ActiveMembersByType(snapshot.Members)

	summaries := make([]MemberSummary, 0, len(snapshot.Members))
	for _, member := range snapshot.Members {
		summaries = append(summaries, MemberSummary{
			Member:   member,
			Initials: MemberInitials(member.Name),
			Events:   MemberEventCount(snapshot.Events, member.ID),
		})
	}

	return MembersResult{
		ActiveMusicians:   byType[roster.MemberTypeMusician],
		ActiveTeamLeaders: byType[roster.MemberTypeTeamLeader],
		Members:           summaries,
	}
}

// Location is the zone calendar bounds and labels are computed in.
func (s *Service) Location() *time.Location {
	return s.cfg.Location
}

// ShareText renders the event for sharing with its date in the configured
// location.
func (s *Service) ShareText(event roster.Event) string {
	event.Date = event.Date.In(s.cfg.Location)
	return ShareText(event, s.source.Snapshot().Members)
}

// EventView resolves a single event for display.
func (s *Service) EventView(event roster.Event) EventView {
	snapshot := s.source.Snapshot()
	return s.eventView(event, snapshot, s.Now())
}

func (s *Service) resolve(at time.Time) time.Time {
	if at.IsZero() {
		return s.Now()
	}
	return at.In(s.cfg.Location)
}

func (s *Service) eventViews(events []roster.Event, snapshot roster.Snapshot, current time.Time) []EventView {
	views := make([]EventView, 0, len(events))
	for _, event := range events {
		views = append(views, s.eventView(event, snapshot, current))
	}
	return views
}

func (s *Service) eventView(event roster.Event, snapshot roster.Snapshot, current time.Time) EventView {
	return EventView{
		Event:     event,
		DateLabel: DateLabel(event.Date, current),
		Members:   EventMembers(event, snapshot.Members),
	}
}
