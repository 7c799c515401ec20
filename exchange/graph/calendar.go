package graph

import (
	"context"
	"fmt"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"
)

const (
	calendarFields = "id,name,color,canShare,canViewPrivateItems,canEdit,owner,isDefaultCalendar"
	eventFields    = "id,subject,body,bodyPreview,start,end,location,locations,attendees," +
		"organizer,isAllDay,isCancelled,isOrganizer,recurrence,seriesMasterId," +
		"showAs,type,importance,sensitivity,categories,webLink,onlineMeetingUrl," +
		"createdDateTime,lastModifiedDateTime"

	// maxScheduleAddresses is Graph's limit for one getSchedule call.
	maxScheduleAddresses = 20

	// localLayout is the zone-less wall-clock format Graph uses inside
	// dateTimeTimeZone values and start/dateTime filters.
	localLayout = "2006-01-02T15:04:05"
)

// ListCalendars lists all calendars in the mailbox.
func (c *Client) ListCalendars(ctx context.Context) ([]Calendar, error) {
	q := neturl.Values{}
	q.Set("$select", calendarFields)
	var out listResponse[Calendar]
	if err := c.do(ctx, http.MethodGet, "/me/calendars", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// EventFilter narrows an event listing. Zero values mean "no filter".
type EventFilter struct {
	// CalendarID selects the calendar; empty means the primary calendar.
	CalendarID string
	Start      time.Time
	End        time.Time
	Limit      int
	Skip       int
}

// ListEvents lists calendar events ordered by start time.
func (c *Client) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	endpoint := "/me/calendar/events"
	if filter.CalendarID != "" {
		endpoint = fmt.Sprintf("/me/calendars/%s/events", neturl.PathEscape(filter.CalendarID))
	}
	if filter.Limit <= 0 {
		filter.Limit = 25
	}
	q := neturl.Values{}
	q.Set("$select", eventFields)
	q.Set("$top", strconv.Itoa(filter.Limit))
	q.Set("$skip", strconv.Itoa(filter.Skip))
	q.Set("$orderby", "start/dateTime")
	// Graph stores start/dateTime as naive UTC strings, so filters compare
	// against the UTC wall clock.
	var parts []string
	if !filter.Start.IsZero() {
		parts = append(parts, "start/dateTime ge "+odataQuote(filter.Start.UTC().Format(localLayout)))
	}
	if !filter.End.IsZero() {
		parts = append(parts, "start/dateTime le "+odataQuote(filter.End.UTC().Format(localLayout)))
	}
	if len(parts) > 0 {
		q.Set("$filter", strings.Join(parts, " and "))
	}
	var out listResponse[Event]
	if err := c.do(ctx, http.MethodGet, endpoint, q, nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// GetEvent fetches a single event by ID.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	q := neturl.Values{}
	q.Set("$select", eventFields)
	var out Event
	if err := c.do(ctx, http.MethodGet, "/me/events/"+neturl.PathEscape(eventID), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FreeBusyRequest queries availability for up to 20 mailboxes.
type FreeBusyRequest struct {
	Emails          []string
	Start           time.Time
	End             time.Time
	TimeZone        string // IANA or Windows zone for the query; default UTC
	IntervalMinutes int    // availability view granularity; default 30
}

// GetFreeBusy calls getSchedule for the requested mailboxes.
func (c *Client) GetFreeBusy(ctx context.Context, req FreeBusyRequest) ([]ScheduleInformation, error) {
	if len(req.Emails) == 0 {
		return nil, fmt.Errorf("at least one email address is required")
	}
	if len(req.Emails) > maxScheduleAddresses {
		return nil, fmt.Errorf("maximum %d email addresses allowed for getSchedule", maxScheduleAddresses)
	}
	zone := req.TimeZone
	if zone == "" {
		zone = "UTC"
	}
	interval := req.IntervalMinutes
	if interval <= 0 {
		interval = 30
	}
	// getSchedule wants zone-less local times paired with the zone name.
	payload := map[string]any{
		"schedules":                req.Emails,
		"startTime":                DateTimeTimeZone{DateTime: req.Start.Format(localLayout), TimeZone: zone},
		"endTime":                  DateTimeTimeZone{DateTime: req.End.Format(localLayout), TimeZone: zone},
		"availabilityViewInterval": interval,
	}
	var out listResponse[ScheduleInformation]
	if err := c.do(ctx, http.MethodPost, "/me/calendar/getSchedule", nil, payload, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}
