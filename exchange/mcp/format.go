package mcp

import (
	"github.com/exchangekit/mcp-exchange/exchange/graph"
)

const previewLimit = 200

// formatFolder, formatMessage and friends convert Graph entities into the
// views tools return, rendering every timestamp in the configured timezone.

func (s *Service) formatFolder(f graph.MailFolder) FolderView {
	return FolderView{
		ID:          f.ID,
		DisplayName: f.DisplayName,
		UnreadItems: f.UnreadItemCount,
		TotalItems:  f.TotalItemCount,
	}
}

func addressView(r *graph.Recipient) *AddressView {
	if r == nil {
		return nil
	}
	return &AddressView{Name: r.EmailAddress.Name, Address: r.EmailAddress.Address}
}

func addressViews(recipients []graph.Recipient) []AddressView {
	if len(recipients) == 0 {
		return nil
	}
	out := make([]AddressView, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, AddressView{Name: r.EmailAddress.Name, Address: r.EmailAddress.Address})
	}
	return out
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func (s *Service) formatMessage(m *graph.Message, includeBody bool) MessageView {
	v := MessageView{
		ID:             m.ID,
		Subject:        m.Subject,
		Sender:         addressView(m.Sender),
		To:             addressViews(m.ToRecipients),
		Cc:             addressViews(m.CcRecipients),
		IsRead:         m.IsRead,
		HasAttachments: m.HasAttachments,
		Importance:     m.Importance,
		Preview:        truncate(m.BodyPreview, previewLimit),
		WebLink:        m.WebLink,
	}
	if v.Sender == nil {
		v.Sender = addressView(m.From)
	}
	if !m.ReceivedDateTime.IsZero() {
		v.Received = s.tz.FormatLocal(m.ReceivedDateTime)
	}
	if !m.SentDateTime.IsZero() {
		v.Sent = s.tz.FormatLocal(m.SentDateTime)
	}
	if includeBody && m.Body != nil {
		v.Body = m.Body.Content
		v.BodyType = m.Body.ContentType
		v.Preview = ""
	}
	return v
}

func (s *Service) formatCalendar(c graph.Calendar) CalendarView {
	v := CalendarView{
		ID:        c.ID,
		Name:      c.Name,
		IsDefault: c.IsDefaultCalendar,
		CanEdit:   c.CanEdit,
	}
	if c.Owner != nil {
		v.Owner = c.Owner.Address
	}
	return v
}

// remoteTime renders a Graph calendar timestamp in the configured zone,
// falling back to the raw value when it cannot be parsed.
func (s *Service) remoteTime(v *graph.DateTimeTimeZone) string {
	if v == nil || v.DateTime == "" {
		return ""
	}
	out, err := s.tz.FormatRemote(v.DateTime, v.TimeZone)
	if err != nil {
		return v.DateTime
	}
	return out
}

func (s *Service) formatEvent(e *graph.Event, includeBody bool) EventView {
	v := EventView{
		ID:          e.ID,
		Subject:     e.Subject,
		Start:       s.remoteTime(e.Start),
		End:         s.remoteTime(e.End),
		IsAllDay:    e.IsAllDay,
		IsCancelled: e.IsCancelled,
		Organizer:   addressView(e.Organizer),
		Preview:     truncate(e.BodyPreview, previewLimit),
		IsOnline:    e.OnlineMeetingURL != "",
		JoinURL:     e.OnlineMeetingURL,
		WebLink:     e.WebLink,
	}
	if e.Location != nil {
		v.Location = e.Location.DisplayName
	}
	for _, a := range e.Attendees {
		av := AttendeeView{
			Name:    a.EmailAddress.Name,
			Address: a.EmailAddress.Address,
			Type:    a.Type,
		}
		if a.Status != nil {
			av.Response = a.Status.Response
		}
		v.Attendees = append(v.Attendees, av)
	}
	if includeBody && e.Body != nil {
		v.Body = e.Body.Content
		v.Preview = ""
	}
	return v
}

func (s *Service) formatSchedule(info graph.ScheduleInformation) ScheduleView {
	v := ScheduleView{
		Email:            info.ScheduleID,
		AvailabilityView: info.AvailabilityView,
	}
	if info.Error != nil {
		v.Error = info.Error.Message
		return v
	}
	for _, item := range info.ScheduleItems {
		slot := BusySlotView{
			Status: item.Status,
			Start:  s.remoteTime(&item.Start),
			End:    s.remoteTime(&item.End),
		}
		if item.IsPrivate {
			slot.Subject = "[Private]"
		} else {
			slot.Subject = item.Subject
			slot.Location = item.Location
		}
		v.Slots = append(v.Slots, slot)
	}
	return v
}
