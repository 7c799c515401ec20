package graph

import (
	"encoding/json"
	"time"
)

// Typed Microsoft Graph entities. Every remote field is renamed on decode
// so nothing downstream handles untyped payloads.

type EmailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// ItemBody is the body of a message or event; ContentType is "text" or "html".
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type MailFolder struct {
	ID               string `json:"id"`
	DisplayName      string `json:"displayName"`
	ParentFolderID   string `json:"parentFolderId,omitempty"`
	ChildFolderCount int    `json:"childFolderCount"`
	UnreadItemCount  int    `json:"unreadItemCount"`
	TotalItemCount   int    `json:"totalItemCount"`
}

type Message struct {
	ID               string      `json:"id"`
	Subject          string      `json:"subject,omitempty"`
	Body             *ItemBody   `json:"body,omitempty"`
	BodyPreview      string      `json:"bodyPreview,omitempty"`
	Sender           *Recipient  `json:"sender,omitempty"`
	From             *Recipient  `json:"from,omitempty"`
	ToRecipients     []Recipient `json:"toRecipients,omitempty"`
	CcRecipients     []Recipient `json:"ccRecipients,omitempty"`
	BccRecipients    []Recipient `json:"bccRecipients,omitempty"`
	ReceivedDateTime time.Time   `json:"receivedDateTime,omitzero"`
	SentDateTime     time.Time   `json:"sentDateTime,omitzero"`
	HasAttachments   bool        `json:"hasAttachments"`
	IsRead           bool        `json:"isRead"`
	IsDraft          bool        `json:"isDraft"`
	Importance       string      `json:"importance,omitempty"`
	ParentFolderID   string      `json:"parentFolderId,omitempty"`
	WebLink          string      `json:"webLink,omitempty"`
}

// DateTimeTimeZone is Graph's calendar timestamp: a zone-less local time
// string paired with the zone it is local to.
type DateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type Calendar struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Color               string        `json:"color,omitempty"`
	ChangeKey           string        `json:"changeKey,omitempty"`
	CanShare            bool          `json:"canShare"`
	CanViewPrivateItems bool          `json:"canViewPrivateItems"`
	CanEdit             bool          `json:"canEdit"`
	Owner               *EmailAddress `json:"owner,omitempty"`
	IsDefaultCalendar   bool          `json:"isDefaultCalendar"`
}

type Location struct {
	DisplayName  string `json:"displayName,omitempty"`
	LocationType string `json:"locationType,omitempty"`
	UniqueID     string `json:"uniqueId,omitempty"`
	UniqueIDType string `json:"uniqueIdType,omitempty"`
}

type ResponseStatus struct {
	Response string `json:"response,omitempty"`
	Time     string `json:"time,omitempty"`
}

type Attendee struct {
	Type         string          `json:"type"`
	Status       *ResponseStatus `json:"status,omitempty"`
	EmailAddress EmailAddress    `json:"emailAddress"`
}

type Event struct {
	ID                   string            `json:"id"`
	Subject              string            `json:"subject,omitempty"`
	Body                 *ItemBody         `json:"body,omitempty"`
	BodyPreview          string            `json:"bodyPreview,omitempty"`
	Start                *DateTimeTimeZone `json:"start,omitempty"`
	End                  *DateTimeTimeZone `json:"end,omitempty"`
	Location             *Location         `json:"location,omitempty"`
	Locations            []Location        `json:"locations,omitempty"`
	Attendees            []Attendee        `json:"attendees,omitempty"`
	Organizer            *Recipient        `json:"organizer,omitempty"`
	IsAllDay             bool              `json:"isAllDay"`
	IsCancelled          bool              `json:"isCancelled"`
	IsOrganizer          bool              `json:"isOrganizer"`
	Recurrence           json.RawMessage   `json:"recurrence,omitempty"`
	SeriesMasterID       string            `json:"seriesMasterId,omitempty"`
	ShowAs               string            `json:"showAs,omitempty"`
	Type                 string            `json:"type,omitempty"`
	Importance           string            `json:"importance,omitempty"`
	Sensitivity          string            `json:"sensitivity,omitempty"`
	Categories           []string          `json:"categories,omitempty"`
	WebLink              string            `json:"webLink,omitempty"`
	OnlineMeetingURL     string            `json:"onlineMeetingUrl,omitempty"`
	CreatedDateTime      time.Time         `json:"createdDateTime,omitzero"`
	LastModifiedDateTime time.Time         `json:"lastModifiedDateTime,omitzero"`
}

// ScheduleItem is one busy span in a free/busy response.
type ScheduleItem struct {
	Status    string           `json:"status"`
	Start     DateTimeTimeZone `json:"start"`
	End       DateTimeTimeZone `json:"end"`
	Subject   string           `json:"subject,omitempty"`
	Location  string           `json:"location,omitempty"`
	IsPrivate bool             `json:"isPrivate"`
}

type ScheduleError struct {
	Message      string `json:"message,omitempty"`
	ResponseCode string `json:"responseCode,omitempty"`
}

// ScheduleInformation is the per-mailbox free/busy answer from getSchedule.
type ScheduleInformation struct {
	ScheduleID       string          `json:"scheduleId"`
	AvailabilityView string          `json:"availabilityView,omitempty"`
	ScheduleItems    []ScheduleItem  `json:"scheduleItems,omitempty"`
	WorkingHours     json.RawMessage `json:"workingHours,omitempty"`
	Error            *ScheduleError  `json:"error,omitempty"`
}

// listResponse is Graph's standard collection envelope.
type listResponse[T any] struct {
	Value []T `json:"value"`
}
