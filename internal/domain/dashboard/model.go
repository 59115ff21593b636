package dashboard

import (
	"time"

	"bandly-go/internal/domain/roster"
)

// TypeCounts maps every event type to a count.
type TypeCounts map[roster.EventType]int

func (c TypeCounts) Total() int {
	total := 0
	for _, count := range c {
		total += count
	}
	return total
}

type MemberActivity struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Events   int    `json:"events"`
}

type EventView struct {
	Event     roster.Event    `json:"event"`
	DateLabel string          `json:"date_label"`
	Members   []roster.Member `json:"members"`
}

type MonthSummary struct {
	Month  string     `json:"month"`
	Counts TypeCounts `json:"counts"`
	Total  int        `json:"total"`
}

type DashboardResult struct {
	GeneratedAt time.Time    `json:"generated_at"`
	UserName    string       `json:"user_name"`
	Warning     string       `json:"warning,omitempty"`
	Today       []EventView  `json:"today"`
	Upcoming    []EventView  `json:"upcoming"`
	Month       MonthSummary `json:"month"`
}

type ReportResult struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	TotalEvents     int              `json:"total_events"`
	ThisMonthEvents int              `json:"this_month_events"`
	ActiveMembers   int              `json:"active_members"`
	EventsByType    TypeCounts       `json:"events_by_type"`
	TopMembers      []MemberActivity `json:"top_members"`
	MostActive      *MemberActivity  `json:"most_active,omitempty"`
}

type MemberSummary struct {
	Member   roster.Member `json:"member"`
	Initials string        `json:"initials"`
	Events   int           `json:"events"`
}

type MembersResult struct {
	ActiveMusicians   int             `json:"active_musicians"`
	ActiveTeamLeaders int             `json:"active_team_leaders"`
	Members           []MemberSummary `json:"members"`
}
