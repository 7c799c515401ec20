package graph

import (
	"context"
	"fmt"
	"strings"

	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	models "github.com/microsoftgraph/msgraph-sdk-go/models"
)

// sdkClient lazily builds the Graph SDK client on top of the
// authenticator's token credential.
func (c *Client) sdkClient() (*msgraphsdk.GraphServiceClient, error) {
	if c.sdk != nil {
		return c.sdk, nil
	}
	if c.cred == nil {
		return nil, fmt.Errorf("graph sdk client requires a token credential")
	}
	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(c.cred, c.scopes)
	if err != nil {
		return nil, fmt.Errorf("create graph sdk client: %w", err)
	}
	c.sdk = client
	return client, nil
}

// CreateDraft saves an unsent draft in the Drafts folder.
func (c *Client) CreateDraft(ctx context.Context, msg OutgoingMessage) (*Message, error) {
	client, err := c.sdkClient()
	if err != nil {
		return nil, err
	}
	draft := models.NewMessage()
	if msg.Subject != "" {
		draft.SetSubject(ptr(msg.Subject))
	}
	if msg.Body != "" {
		body := models.NewItemBody()
		if strings.EqualFold(msg.BodyType, "html") {
			body.SetContentType(ptr(models.HTML_BODYTYPE))
		} else {
			body.SetContentType(ptr(models.TEXT_BODYTYPE))
		}
		body.SetContent(ptr(msg.Body))
		draft.SetBody(body)
	}
	if len(msg.To) > 0 {
		draft.SetToRecipients(sdkRecipients(msg.To))
	}
	if len(msg.Cc) > 0 {
		draft.SetCcRecipients(sdkRecipients(msg.Cc))
	}
	switch strings.ToLower(msg.Importance) {
	case "low":
		draft.SetImportance(ptr(models.LOW_IMPORTANCE))
	case "high":
		draft.SetImportance(ptr(models.HIGH_IMPORTANCE))
	}
	created, err := client.Me().Messages().Post(ctx, draft, nil)
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	out := &Message{
		ID:         ptrVal(created.GetId()),
		Subject:    ptrVal(created.GetSubject()),
		IsDraft:    ptrVal(created.GetIsDraft()),
		WebLink:    ptrVal(created.GetWebLink()),
		Importance: importanceName(created.GetImportance()),
	}
	for _, r := range created.GetToRecipients() {
		if ea := r.GetEmailAddress(); ea != nil {
			out.ToRecipients = append(out.ToRecipients, Recipient{EmailAddress: EmailAddress{
				Address: ptrVal(ea.GetAddress()),
				Name:    ptrVal(ea.GetName()),
			}})
		}
	}
	return out, nil
}

func sdkRecipients(addresses []string) []models.Recipientable {
	var out []models.Recipientable
	for _, a := range addresses {
		if a == "" {
			continue
		}
		email := models.NewEmailAddress()
		email.SetAddress(ptr(a))
		rec := models.NewRecipient()
		rec.SetEmailAddress(email)
		out = append(out, rec)
	}
	return out
}

func importanceName(v *models.Importance) string {
	if v == nil {
		return ""
	}
	return strings.ToLower(v.String())
}

func ptr[T any](v T) *T { return &v }

func ptrVal[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
