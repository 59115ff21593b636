package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jinzhu/now"

	"bandly-go/internal/domain/roster"
)

const (
	DefaultUpcomingLimit   = 3
	DefaultTopMembersLimit = 5
)

// TodayEvents returns the events on current's calendar day, in current's
// location, ordered by date.
func TodayEvents(events []roster.Event, current time.Time) []roster.Event {
	day := now.With(current)
	return eventsBetween(events, day.BeginningOfDay(), day.EndOfDay())
}

// UpcomingEvents returns events strictly after current, soonest first. A limit
// of zero or less keeps every event.
func UpcomingEvents(events []roster.Event, current time.Time, limit int) []roster.Event {
	result := make([]roster.Event, 0)
	for _, event := range events {
		if event.Date.After(current) {
			result = append(result, event.Clone())
		}
	}
	sortByDate(result)
	return truncate(result, limit)
}

// EventsInMonth returns the events in current's calendar month, ordered by date.
func EventsInMonth(events []roster.Event, current time.Time) []roster.Event {
	month := now.With(current)
	return eventsBetween(events, month.BeginningOfMonth(), month.EndOfMonth())
}

// MonthlyTypeCounts counts the events of current's calendar month per type.
func MonthlyTypeCounts(events []roster.Event, current time.Time) TypeCounts {
	return EventTypeCounts(EventsInMonth(events, current))
}

// EventTypeCounts counts events per type. Every known type is present.
func EventTypeCounts(events []roster.Event) TypeCounts {
	counts := make(TypeCounts, len(roster.EventTypes))
	for _, eventType := range roster.EventTypes {
		counts[eventType] = 0
	}
	for _, event := range events {
		counts[event.Type]++
	}
	return counts
}

func MemberEventCount(events []roster.Event, memberID string) int {
	count := 0
	for _, event := range events {
		if event.HasMember(memberID) {
			count++
		}
	}
	return count
}

// TopActiveMembers ranks members by how many events they are scheduled for.
// Ties keep the input order.
func TopActiveMembers(members []roster.Member, events []roster.Event, limit int) []MemberActivity {
	counts := eventCountsByMember(events)

	result := make([]MemberActivity, 0, len(members))
	for _, member := range members {
		result = append(result, MemberActivity{
			MemberID: member.ID,
			Name:     member.Name,
			Events:   counts[member.ID],
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Events > result[j].Events
	})
	return truncate(result, limit)
}

func CountActiveMembers(members []roster.Member) int {
	count := 0
	for _, member := range members {
		if member.Status == roster.MemberStatusActive {
			count++
		}
	}
	return count
}

// ActiveMembersByType counts active members per member type.
func ActiveMembersByType(members []roster.Member) map[roster.MemberType]int {
	counts := map[roster.MemberType]int{
		roster.MemberTypeTeamLeader: 0,
		roster.MemberTypeMusician:   0,
	}
	for _, member := range members {
		if member.Status == roster.MemberStatusActive {
			counts[member.Type]++
		}
	}
	return counts
}

// EventMembers resolves the event's member ids, keeping the order of members.
// Ids with no matching member are skipped.
func EventMembers(event roster.Event, members []roster.Member) []roster.Member {
	result := make([]roster.Member, 0, len(event.MemberIDs))
	for _, member := range members {
		if event.HasMember(member.ID) {
			result = append(result, member)
		}
	}
	return result
}

// MemberInitials returns the upper-cased first letters of up to two words of name.
func MemberInitials(name string) string {
	var b strings.Builder
	taken := 0
	for _, part := range strings.Fields(name) {
		if taken == 2 {
			break
		}
		first, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(first))
		taken++
	}
	return b.String()
}

// DateLabel renders date relative to current: "Today", "Tomorrow" or dd/MM.
func DateLabel(date time.Time, current time.Time) string {
	date = date.In(current.Location())
	today := now.With(current).BeginningOfDay()
	day := now.With(date).BeginningOfDay()

	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return date.Format("02/01")
	}
}

// ShareText is a plain text summary of an event, meant for messaging apps.
func ShareText(event roster.Event, members []roster.Member) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", event.Title)
	fmt.Fprintf(&b, "Type: %s (%s)\n", event.Type, event.Status)
	fmt.Fprintf(&b, "When: %s\n", event.Date.Format("02/01/2006 15:04"))
	if event.Location != "" {
		fmt.Fprintf(&b, "Where: %s\n", event.Location)
	}
	if event.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", event.Description)
	}

	scheduled := EventMembers(event, members)
	if len(scheduled) > 0 {
		names := make([]string, 0, len(scheduled))
		for _, member := range scheduled {
			names = append(names, member.Name)
		}
		fmt.Fprintf(&b, "\nTeam: %s\n", strings.Join(names, ", "))
	}

	if len(event.Songs) > 0 {
		b.WriteString("\nSongs:\n")
		for i, song := range event.Songs {
			fmt.Fprintf(&b, "%d. %s\n", i+1, song)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func eventsBetween(events []roster.Event, from, to time.Time) []roster.Event {
	result := make([]roster.Event, 0)
	for _, event := range events {
		if event.Date.Before(from) || event.Date.After(to) {
			continue
		}
		result = append(result, event.Clone())
	}
	sortByDate(result)
	return result
}

func eventCountsByMember(events []roster.Event) map[string]int {
	counts := make(map[string]int)
	for _, event := range events {
		seen := make(map[string]struct{}, len(event.MemberIDs))
		for _, id := range event.MemberIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			counts[id]++
		}
	}
	return counts
}

func sortByDate(events []roster.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
