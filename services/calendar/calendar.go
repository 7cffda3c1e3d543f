package calendar

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"roomlift/config"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// statusPrefix matches a leading "[Label] " previously written by us.
var statusPrefix = regexp.MustCompile(`^\[[^\]]*\]\s*`)

// GoogleCalendarService implements Service against the Google Calendar API.
type GoogleCalendarService struct {
	cal        *gcal.Service
	calendarID string
}

// NewGoogleCalendarService builds the service from configured credentials.
func NewGoogleCalendarService(ctx context.Context) (*GoogleCalendarService, error) {
	svc, err := gcal.NewService(ctx, option.WithCredentialsFile(config.AppConfig.CalendarCredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize calendar client: %w", err)
	}
	return &GoogleCalendarService{
		cal:        svc,
		calendarID: config.AppConfig.CalendarID,
	}, nil
}

// SetStatusPrefix rewrites the event summary so it starts with "[label]",
// replacing any prefix from an earlier transition.
func (s *GoogleCalendarService) SetStatusPrefix(ctx context.Context, calendarEventID, label string) error {
	if calendarEventID == "" {
		return fmt.Errorf("calendar event id is empty")
	}

	event, err := s.cal.Events.Get(s.calendarID, calendarEventID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to fetch calendar event %s: %w", calendarEventID, err)
	}

	summary := strings.TrimSpace(statusPrefix.ReplaceAllString(event.Summary, ""))
	patch := &gcal.Event{Summary: fmt.Sprintf("[%s] %s", label, summary)}
	if _, err := s.cal.Events.Patch(s.calendarID, calendarEventID, patch).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to patch calendar event %s: %w", calendarEventID, err)
	}
	return nil
}
