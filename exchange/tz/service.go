// Package tz centralises timezone-aware date/time handling so every
// timestamp the server renders or sends is consistent regardless of the
// zone it arrived in.
package tz

import (
	"fmt"
	"strings"
	"time"
)

const (
	localLayout = "2006-01-02 03:04 PM MST"
	dateLayout  = "2006-01-02"
	timeLayout  = "03:04 PM MST"
	utcLayout   = "2006-01-02T15:04:05Z"
)

// naiveLayouts are accepted for zone-less user input, most precise first.
// Both the T-separated ISO form and the space-separated form are accepted.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Service converts timestamps between a configured target zone and UTC.
// Immutable after construction, safe for concurrent use.
type Service struct {
	loc  *time.Location
	name string
}

// New resolves an IANA zone name (e.g. "America/Chicago").
func New(name string) (*Service, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return &Service{loc: loc, name: name}, nil
}

// Name returns the configured IANA zone name.
func (s *Service) Name() string { return s.name }

// Location returns the target zone.
func (s *Service) Location() *time.Location { return s.loc }

// FormatLocal renders t in the target zone, e.g. "2026-01-12 10:30 AM CST".
func (s *Service) FormatLocal(t time.Time) string {
	return t.In(s.loc).Format(localLayout)
}

// FormatRemote renders a Graph DateTimeTimeZone pair in the target zone.
// The dateTime part is a zone-less local string (possibly with a
// sub-second fraction, e.g. "2026-01-12T16:30:00.1234567"); sourceZone
// names the zone it is local to, defaulting to UTC when empty.
func (s *Service) FormatRemote(dateTime, sourceZone string) (string, error) {
	t, err := s.parseRemote(dateTime, sourceZone)
	if err != nil {
		return "", err
	}
	return s.FormatLocal(t), nil
}

// FormatDate renders just the date portion in the target zone.
func (s *Service) FormatDate(t time.Time) string {
	return t.In(s.loc).Format(dateLayout)
}

// FormatTime renders just the time portion in the target zone.
func (s *Service) FormatTime(t time.Time) string {
	return t.In(s.loc).Format(timeLayout)
}

// ParseDate parses "YYYY-MM-DD" as start of day in the target zone.
// The result is local midnight, not UTC midnight.
func (s *Service) ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}

// ParseDateTime parses an ISO-like timestamp. Inputs that carry an offset
// keep it; zone-less inputs are taken as local to the target zone. This is
// the inverse default from FormatRemote: remote values default to UTC,
// user input defaults to local time.
func (s *Service) ParseDateTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, s.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q (want ISO format, e.g. 2026-01-12T16:30:00)", value)
}

// DayBounds returns local 00:00:00.000000 and 23:59:59.999999 of t's
// calendar day in the target zone.
func (s *Service) DayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(s.loc)
	y, m, d := local.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	end := time.Date(y, m, d, 23, 59, 59, 999999*int(time.Microsecond), s.loc)
	return start, end
}

// ToUTC converts t to UTC.
func (s *Service) ToUTC(t time.Time) time.Time { return t.UTC() }

// ToUTCISO renders t as a seconds-precision UTC timestamp with a literal
// trailing Z, e.g. "2026-01-12T16:30:00Z".
func (s *Service) ToUTCISO(t time.Time) string {
	return t.UTC().Format(utcLayout)
}

// parseRemote parses a Graph local-time string in the named source zone.
func (s *Service) parseRemote(dateTime, sourceZone string) (time.Time, error) {
	// Graph appends a 7-digit fraction; drop anything past the second.
	if i := strings.IndexByte(dateTime, '.'); i >= 0 {
		dateTime = dateTime[:i]
	}
	dateTime = strings.TrimSuffix(dateTime, "Z")
	src := time.UTC
	if sourceZone != "" && !strings.EqualFold(sourceZone, "UTC") {
		loc, err := time.LoadLocation(sourceZone)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid source timezone %q: %w", sourceZone, err)
		}
		src = loc
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", dateTime, src)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid remote datetime %q: %w", dateTime, err)
	}
	return t, nil
}
