package mcp

// Tool I/O types. All timestamps in outputs are rendered in the server's
// configured timezone; date/date-time inputs are interpreted in that zone
// unless they carry an explicit offset.

type ListMailFoldersInput struct{}

type FolderView struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	UnreadItems int    `json:"unreadItemCount"`
	TotalItems  int    `json:"totalItemCount"`
}

type ListMailFoldersOutput struct {
	Count   int          `json:"count"`
	Folders []FolderView `json:"folders"`
}

type SearchEmailsInput struct {
	Folder         string `json:"folder,omitempty" description:"folder name (inbox, archive, drafts, sentitems, deleteditems, junkemail or a custom folder) - defaults to inbox"`
	Sender         string `json:"sender,omitempty" description:"filter by sender email address"`
	Subject        string `json:"subject,omitempty" description:"filter by text contained in the subject"`
	FromDate       string `json:"fromDate,omitempty" description:"only messages received on or after this date (YYYY-MM-DD)"`
	ToDate         string `json:"toDate,omitempty" description:"only messages received on or before this date (YYYY-MM-DD)"`
	IsRead         *bool  `json:"isRead,omitempty" description:"filter by read/unread state"`
	HasAttachments *bool  `json:"hasAttachments,omitempty" description:"filter by attachment presence"`
	Limit          int    `json:"limit,omitempty" description:"maximum number of messages to return (default 25)"`
}

type AddressView struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

type MessageView struct {
	ID             string        `json:"id"`
	Subject        string        `json:"subject,omitempty"`
	Sender         *AddressView  `json:"sender,omitempty"`
	To             []AddressView `json:"toRecipients,omitempty"`
	Cc             []AddressView `json:"ccRecipients,omitempty"`
	Received       string        `json:"received,omitempty"`
	Sent           string        `json:"sent,omitempty"`
	IsRead         bool          `json:"isRead"`
	HasAttachments bool          `json:"hasAttachments"`
	Importance     string        `json:"importance,omitempty"`
	Preview        string        `json:"preview,omitempty"`
	Body           string        `json:"body,omitempty"`
	BodyType       string        `json:"bodyType,omitempty"`
	WebLink        string        `json:"webLink,omitempty"`
}

type SearchEmailsOutput struct {
	Count    int           `json:"count"`
	Folder   string        `json:"folder,omitempty"`
	Messages []MessageView `json:"messages"`
}

type GetEmailInput struct {
	MessageID string `json:"messageId" description:"message identifier"`
}

type MessageRefInput struct {
	MessageID string `json:"messageId" description:"message identifier"`
}

type MoveEmailOutput struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Subject   string `json:"subject,omitempty"`
	Status    string `json:"status"`
}

type CreateDraftInput struct {
	Subject  string   `json:"subject" description:"draft subject"`
	Body     string   `json:"body" description:"draft body content"`
	BodyType string   `json:"bodyType,omitempty" description:"text or html (default text)"`
	To       []string `json:"to,omitempty" description:"recipient email addresses"`
	Cc       []string `json:"cc,omitempty" description:"cc email addresses"`
}

type CreateDraftOutput struct {
	Created bool        `json:"created"`
	Draft   MessageView `json:"draft"`
	Status  string      `json:"status"`
}

type SendEmailInput struct {
	To         []string `json:"to" description:"recipient email addresses"`
	Cc         []string `json:"cc,omitempty" description:"cc email addresses"`
	Subject    string   `json:"subject" description:"message subject"`
	Body       string   `json:"body" description:"message body content"`
	BodyType   string   `json:"bodyType,omitempty" description:"text or html (default text)"`
	Importance string   `json:"importance,omitempty" description:"low, normal or high"`
}

type SendEmailOutput struct {
	Status string `json:"status"`
}

type ListCalendarsInput struct{}

type CalendarView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefaultCalendar"`
	CanEdit   bool   `json:"canEdit"`
	Owner     string `json:"owner,omitempty"`
}

type ListCalendarsOutput struct {
	Count     int            `json:"count"`
	Calendars []CalendarView `json:"calendars"`
}

type ListEventsInput struct {
	CalendarID string `json:"calendarId,omitempty" description:"calendar identifier - defaults to the primary calendar"`
	StartDate  string `json:"startDate,omitempty" description:"only events starting on or after this date (YYYY-MM-DD)"`
	EndDate    string `json:"endDate,omitempty" description:"only events starting on or before this date (YYYY-MM-DD)"`
	Limit      int    `json:"limit,omitempty" description:"maximum number of events to return (default 25)"`
}

type AttendeeView struct {
	Name     string `json:"name,omitempty"`
	Address  string `json:"address,omitempty"`
	Type     string `json:"type,omitempty"`
	Response string `json:"response,omitempty"`
}

type EventView struct {
	ID          string         `json:"id"`
	Subject     string         `json:"subject,omitempty"`
	Start       string         `json:"start,omitempty"`
	End         string         `json:"end,omitempty"`
	IsAllDay    bool           `json:"isAllDay"`
	IsCancelled bool           `json:"isCancelled,omitempty"`
	Location    string         `json:"location,omitempty"`
	Organizer   *AddressView   `json:"organizer,omitempty"`
	Attendees   []AttendeeView `json:"attendees,omitempty"`
	Body        string         `json:"body,omitempty"`
	Preview     string         `json:"preview,omitempty"`
	IsOnline    bool           `json:"isOnlineMeeting,omitempty"`
	JoinURL     string         `json:"onlineMeetingUrl,omitempty"`
	WebLink     string         `json:"webLink,omitempty"`
}

type ListEventsOutput struct {
	Count  int         `json:"count"`
	Events []EventView `json:"events"`
}

type GetEventInput struct {
	EventID string `json:"eventId" description:"event identifier"`
}

type GetFreeBusyInput struct {
	Emails          []string `json:"emails" description:"email addresses to query (max 20)"`
	StartTime       string   `json:"startTime" description:"window start (YYYY-MM-DD HH:MM or ISO 8601)"`
	EndTime         string   `json:"endTime" description:"window end (YYYY-MM-DD HH:MM or ISO 8601)"`
	Timezone        string   `json:"timezone,omitempty" description:"IANA timezone for the query window (default UTC)"`
	IntervalMinutes int      `json:"intervalMinutes,omitempty" description:"availability slot size in minutes (default 30)"`
}

type BusySlotView struct {
	Status   string `json:"status"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Subject  string `json:"subject,omitempty"`
	Location string `json:"location,omitempty"`
}

type ScheduleView struct {
	Email            string         `json:"email"`
	AvailabilityView string         `json:"availabilityView,omitempty"`
	Slots            []BusySlotView `json:"busySlots,omitempty"`
	Error            string         `json:"error,omitempty"`
}

type GetFreeBusyOutput struct {
	StartTime       string         `json:"startTime"`
	EndTime         string         `json:"endTime"`
	Timezone        string         `json:"timezone"`
	IntervalMinutes int            `json:"intervalMinutes"`
	Schedules       []ScheduleView `json:"schedules"`
}

type LogoutInput struct{}

type LogoutOutput struct {
	LoggedOut bool   `json:"loggedOut"`
	Status    string `json:"status"`
}
