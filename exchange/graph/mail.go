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
	messageFields = "id,subject,bodyPreview,body,sender,from,toRecipients,ccRecipients," +
		"receivedDateTime,sentDateTime,hasAttachments,isRead,isDraft," +
		"importance,parentFolderId,webLink"
	folderFields = "id,displayName,parentFolderId,childFolderCount,unreadItemCount,totalItemCount"
)

// ListMailFolders lists all mail folders in the mailbox.
func (c *Client) ListMailFolders(ctx context.Context) ([]MailFolder, error) {
	q := neturl.Values{}
	q.Set("$select", folderFields)
	q.Set("$top", "100")
	var out listResponse[MailFolder]
	if err := c.do(ctx, http.MethodGet, "/me/mailFolders", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// FolderByName resolves a folder by display name, case-insensitively.
// Returns nil when no folder matches.
func (c *Client) FolderByName(ctx context.Context, name string) (*MailFolder, error) {
	folders, err := c.ListMailFolders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range folders {
		if strings.EqualFold(folders[i].DisplayName, name) {
			return &folders[i], nil
		}
	}
	return nil, nil
}

// MessageFilter narrows a message listing. Zero values mean "no filter".
type MessageFilter struct {
	// FolderID selects the source folder; empty means Inbox.
	FolderID       string
	Sender         string
	Subject        string
	From           time.Time
	To             time.Time
	IsRead         *bool
	HasAttachments *bool
	Limit          int
	Skip           int
}

func (f *MessageFilter) odata() string {
	var parts []string
	if f.Sender != "" {
		parts = append(parts, "from/emailAddress/address eq "+odataQuote(f.Sender))
	}
	if f.Subject != "" {
		parts = append(parts, "contains(subject, "+odataQuote(f.Subject)+")")
	}
	if !f.From.IsZero() {
		parts = append(parts, "receivedDateTime ge "+f.From.UTC().Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		parts = append(parts, "receivedDateTime le "+f.To.UTC().Format(time.RFC3339))
	}
	if f.IsRead != nil {
		parts = append(parts, "isRead eq "+strconv.FormatBool(*f.IsRead))
	}
	if f.HasAttachments != nil {
		parts = append(parts, "hasAttachments eq "+strconv.FormatBool(*f.HasAttachments))
	}
	return strings.Join(parts, " and ")
}

// ListMessages lists messages matching the filter, newest first.
func (c *Client) ListMessages(ctx context.Context, filter MessageFilter) ([]Message, error) {
	endpoint := "/me/mailFolders/inbox/messages"
	if filter.FolderID != "" {
		endpoint = fmt.Sprintf("/me/mailFolders/%s/messages", neturl.PathEscape(filter.FolderID))
	}
	if filter.Limit <= 0 {
		filter.Limit = 25
	}
	q := neturl.Values{}
	q.Set("$select", messageFields)
	q.Set("$top", strconv.Itoa(filter.Limit))
	q.Set("$skip", strconv.Itoa(filter.Skip))
	q.Set("$orderby", "receivedDateTime desc")
	if expr := filter.odata(); expr != "" {
		q.Set("$filter", expr)
	}
	var out listResponse[Message]
	if err := c.do(ctx, http.MethodGet, endpoint, q, nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// GetMessage fetches a single message by ID.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	q := neturl.Values{}
	q.Set("$select", messageFields)
	var out Message
	if err := c.do(ctx, http.MethodGet, "/me/messages/"+neturl.PathEscape(messageID), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MoveMessage moves a message into another folder and returns the moved copy.
func (c *Client) MoveMessage(ctx context.Context, messageID, destinationFolderID string) (*Message, error) {
	body := map[string]string{"destinationId": destinationFolderID}
	var out Message
	path := "/me/messages/" + neturl.PathEscape(messageID) + "/move"
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ArchiveMessage moves a message to the well-known Archive folder.
func (c *Client) ArchiveMessage(ctx context.Context, messageID string) (*Message, error) {
	return c.MoveMessage(ctx, messageID, "archive")
}

// DeleteMessage deletes a message (Graph moves it to Deleted Items).
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	return c.do(ctx, http.MethodDelete, "/me/messages/"+neturl.PathEscape(messageID), nil, nil, nil)
}

// OutgoingMessage describes mail to send or draft.
type OutgoingMessage struct {
	Subject    string
	Body       string
	BodyType   string // "text" or "html"
	To         []string
	Cc         []string
	Importance string // "low", "normal", "high"
}

func (m *OutgoingMessage) payload() map[string]any {
	msg := map[string]any{}
	if m.Subject != "" {
		msg["subject"] = m.Subject
	}
	if m.Body != "" {
		contentType := m.BodyType
		if contentType == "" {
			contentType = "text"
		}
		msg["body"] = ItemBody{ContentType: contentType, Content: m.Body}
	}
	if len(m.To) > 0 {
		msg["toRecipients"] = recipients(m.To)
	}
	if len(m.Cc) > 0 {
		msg["ccRecipients"] = recipients(m.Cc)
	}
	if m.Importance != "" && m.Importance != "normal" {
		msg["importance"] = m.Importance
	}
	return msg
}

func recipients(addresses []string) []Recipient {
	out := make([]Recipient, 0, len(addresses))
	for _, a := range addresses {
		if a == "" {
			continue
		}
		out = append(out, Recipient{EmailAddress: EmailAddress{Address: a}})
	}
	return out
}

// SendMail sends a message immediately, saving a copy to Sent Items.
func (c *Client) SendMail(ctx context.Context, msg OutgoingMessage) error {
	payload := map[string]any{"message": msg.payload(), "saveToSentItems": true}
	return c.do(ctx, http.MethodPost, "/me/sendMail", nil, payload, nil)
}
