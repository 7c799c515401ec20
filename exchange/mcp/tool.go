package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/exchangekit/mcp-exchange/exchange/graph"
)

//go:embed tools/exchangeListMailFolders.md
var listMailFoldersDesc string

//go:embed tools/exchangeSearchEmails.md
var searchEmailsDesc string

//go:embed tools/exchangeGetEmail.md
var getEmailDesc string

//go:embed tools/exchangeArchiveEmail.md
var archiveEmailDesc string

//go:embed tools/exchangeDeleteEmail.md
var deleteEmailDesc string

//go:embed tools/exchangeCreateDraft.md
var createDraftDesc string

//go:embed tools/exchangeSendEmail.md
var sendEmailDesc string

//go:embed tools/exchangeListCalendars.md
var listCalendarsDesc string

//go:embed tools/exchangeListEvents.md
var listEventsDesc string

//go:embed tools/exchangeGetEvent.md
var getEventDesc string

//go:embed tools/exchangeGetFreeBusy.md
var getFreeBusyDesc string

//go:embed tools/exchangeLogout.md
var logoutDesc string

// wellKnownFolders are names Graph resolves without a folder lookup.
var wellKnownFolders = map[string]bool{
	"inbox": true, "archive": true, "drafts": true,
	"sentitems": true, "deleteditems": true, "junkemail": true, "outbox": true,
}

func registerTools(base *protoserver.DefaultHandler, h *Handler) error {
	svc := h.service
	ops := h.ops

	// Non-blocking OOB launch: register a pending login and point the client
	// at the device code page while the tool call below blocks on the flow.
	startOOB := func(ctx context.Context) {
		if ops == nil || !ops.Implements(schema.MethodElicitationCreate) {
			return
		}
		ns, _ := svc.Auth().Namespace(ctx)
		id := newUUID()
		svc.Pending().Put(&PendingAuth{UUID: id, ElicitID: id, Namespace: ns, done: make(chan struct{}, 1)})
		url := fmt.Sprintf("%s/exchange/auth/device/%s", strings.TrimRight(svc.BaseURL(), "/"), id)
		go func() {
			ctx2, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_, _ = ops.Elicit(ctx2, &jsonrpc.TypedRequest[*schema.ElicitRequest]{Request: &schema.ElicitRequest{
				Params: schema.ElicitRequestParams{ElicitationId: id, Message: "Sign in to Exchange", Mode: string(schema.ElicitRequestParamsModeUrl), Url: url},
			}})
		}()
	}

	ensureAuth := func(ctx context.Context) {
		if svc.Authenticator().NeedsInteractive(ctx) {
			startOOB(ctx)
		}
	}

	client := svc.Client()
	zone := svc.Timezone()

	// List mail folders
	if err := protoserver.RegisterTool[*ListMailFoldersInput, *ListMailFoldersOutput](base.Registry, "exchangeListMailFolders", listMailFoldersDesc, func(ctx context.Context, in *ListMailFoldersInput) (*schema.CallToolResult, *jsonrpc.Error) {
		ensureAuth(ctx)
		folders, err := client.ListMailFolders(ctx)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		out := &ListMailFoldersOutput{Count: len(folders)}
		for _, f := range folders {
			out.Folders = append(out.Folders, svc.formatFolder(f))
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	// Search emails
	if err := protoserver.RegisterTool[*SearchEmailsInput, *SearchEmailsOutput](base.Registry, "exchangeSearchEmails", searchEmailsDesc, func(ctx context.Context, in *SearchEmailsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		ensureAuth(ctx)
		filter := graph.MessageFilter{
			Sender:         in.Sender,
			Subject:        in.Subject,
			IsRead:         in.IsRead,
			HasAttachments: in.HasAttachments,
			Limit:          in.Limit,
		}
		if in.FromDate != "" {
			day, err := zone.ParseDate(in.FromDate)
			if err != nil {
				return buildErrorResult("invalid fromDate: " + err.Error())
			}
			filter.From = day
		}
		if in.ToDate != "" {
			day, err := zone.ParseDate(in.ToDate)
			if err != nil {
				return buildErrorResult("invalid toDate: " + err.Error())
			}
			_, filter.To = zone.DayBounds(day)
		}
		folder := strings.ToLower(strings.TrimSpace(in.Folder))
		if folder == "" {
			folder = "inbox"
		}
		if wellKnownFolders[folder] {
			filter.FolderID = folder
		} else {
			known, err := client.FolderByName(ctx, in.Folder)
			if err != nil {
				return buildErrorResult(err.Error())
			}
			if known != nil {
				filter.FolderID = known.ID
			} else {
				// Fall back to treating the value as a folder ID.
				filter.FolderID = in.Folder
			}
		}
		messages, err := client.ListMessages(ctx, filter)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		out := &SearchEmailsOutput{Count: len(messages), Folder: folder}
		for i := range messages {
			out.Messages = append(out.Messages, svc.formatMessage(&messages[i], false))
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	// Get email
	if err := protoserver.RegisterTool[*GetEmailInput, *MessageView](base.Registry, "exchangeGetEmail", getEmailDesc, func(ctx context.Context, in *GetEmailInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if in.MessageID == "" {
			return buildErrorResult("messageId is required")
		}
		ensureAuth(ctx)
		msg, err := client.GetMessage(ctx, in.MessageID)
		if err != nil {
			if graph.IsNotFound(err) {
				return buildErrorResult(fmt.Sprintf("message %q not found", in.MessageID))
			}
			return buildErrorResult(err.Error())
		}
		view := svc.formatMessage(msg, true)
		return buildSuccessResult(svc, &view)
	}); err != nil {
		return err
	}

	// Archive email
	if err := protoserver.RegisterTool[*MessageRefInput, *MoveEmailOutput](base.Registry, "exchangeArchiveEmail", archiveEmailDesc, func(ctx context.Context, in *MessageRefInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if in.MessageID == "" {
			return buildErrorResult("messageId is required")
		}
		ensureAuth(ctx)
		moved, err := client.ArchiveMessage(ctx, in.MessageID)
		if err != nil {
			if graph.IsNotFound(err) {
				return buildErrorResult(fmt.Sprintf("message %q not found", in.MessageID))
			}
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, &MoveEmailOutput{
			Success:   true,
			MessageID: moved.ID,
			Subject:   moved.Subject,
			Status:    "archived",
		})
	}); err != nil {
		return err
	}

	// Delete email (moves to Deleted Items)
	if err := protoserver.RegisterTool[*MessageRefInput, *MoveEmailOutput](base.Registry, "exchangeDeleteEmail", deleteEmailDesc, func(ctx context.Context, in *MessageRefInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if in.MessageID == "" {
			return buildErrorResult("messageId is required")
		}
		ensureAuth(ctx)
		if err := client.DeleteMessage(ctx, in.MessageID); err != nil {
			if graph.IsNotFound(err) {
				return buildErrorResult(fmt.Sprintf("message %q not found", in.MessageID))
			}
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, &MoveEmailOutput{
			Success:   true,
			MessageID: in.MessageID,
			Status:    "moved to Deleted Items",
		})
	}); err != nil {
		return err
	}

	// Create draft
	if err := protoserver.RegisterTool[*CreateDraftInput, *CreateDraftOutput](base.Registry, "exchangeCreateDraft", createDraftDesc, func(ctx context.Context, in *CreateDraftInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if in.Subject == "" && in.Body == "" {
			return buildErrorResult("subject or body is required")
		}
		ensureAuth(ctx)
		draft, err := client.CreateDraft(ctx, graph.OutgoingMessage{
			Subject:  in.Subject,
			Body:     in.Body,
			BodyType: in.BodyType,
			To:       in.To,
			Cc:       in.Cc,
		})
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, &CreateDraftOutput{
			Created: true,
			Draft:   svc.formatMessage(draft, false),
			Status:  "draft saved to Drafts folder",
		})
	}); err != nil {
		return err
	}

	// Send email
	if err := protoserver.RegisterTool[*SendEmailInput, *SendEmailOutput](base.Registry, "exchangeSendEmail", sendEmailDesc, func(ctx context.Context, in *SendEmailInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if len(in.To) == 0 {
			return buildErrorResult("at least one recipient is required")
		}
		ensureAuth(ctx)
		err := client.SendMail(ctx, graph.OutgoingMessage{
			Subject:    in.Subject,
			Body:       in.Body,
			BodyType:   in.BodyType,
			To:         in.To,
			Cc:         in.Cc,
			Importance: in.Importance,
		})
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(svc, &SendEmailOutput{Status: "sent"})
	}); err != nil {
		return err
	}

	// List calendars
	if err := protoserver.RegisterTool[*ListCalendarsInput, *ListCalendarsOutput](base.Registry, "exchangeListCalendars", listCalendarsDesc, func(ctx context.Context, in *ListCalendarsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		ensureAuth(ctx)
		calendars, err := client.ListCalendars(ctx)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		out := &ListCalendarsOutput{Count: len(calendars)}
		for _, c := range calendars {
			out.Calendars = append(out.Calendars, svc.formatCalendar(c))
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	// List events
	if err := protoserver.RegisterTool[*ListEventsInput, *ListEventsOutput](base.Registry, "exchangeListEvents", listEventsDesc, func(ctx context.Context, in *ListEventsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		ensureAuth(ctx)
		filter := graph.EventFilter{CalendarID: in.CalendarID, Limit: in.Limit}
		if in.StartDate != "" {
			day, err := zone.ParseDate(in.StartDate)
			if err != nil {
				return buildErrorResult("invalid startDate: " + err.Error())
			}
			filter.Start = day
		}
		if in.EndDate != "" {
			day, err := zone.ParseDate(in.EndDate)
			if err != nil {
				return buildErrorResult("invalid endDate: " + err.Error())
			}
			_, filter.End = zone.DayBounds(day)
		}
		events, err := client.ListEvents(ctx, filter)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		out := &ListEventsOutput{Count: len(events)}
		for i := range events {
			out.Events = append(out.Events, svc.formatEvent(&events[i], false))
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	// Get event
	if err := protoserver.RegisterTool[*GetEventInput, *EventView](base.Registry, "exchangeGetEvent", getEventDesc, func(ctx context.Context, in *GetEventInput) (*schema.CallToolResult, *jsonrpc.Error) {
		if in.EventID == "" {
			return buildErrorResult("eventId is required")
		}
		ensureAuth(ctx)
		event, err := client.GetEvent(ctx, in.EventID)
		if err != nil {
			if graph.IsNotFound(err) {
				return buildErrorResult(fmt.Sprintf("event %q not found", in.EventID))
			}
			return buildErrorResult(err.Error())
		}
		view := svc.formatEvent(event, true)
		return buildSuccessResult(svc, &view)
	}); err != nil {
		return err
	}

	// Free/busy lookup
	if err := protoserver.RegisterTool[*GetFreeBusyInput, *GetFreeBusyOutput](base.Registry, "exchangeGetFreeBusy", getFreeBusyDesc, func(ctx context.Context, in *GetFreeBusyInput) (*schema.CallToolResult, *jsonrpc.Error) {
		start, err := zone.ParseDateTime(in.StartTime)
		if err != nil {
			return buildErrorResult("invalid startTime: " + err.Error())
		}
		end, err := zone.ParseDateTime(in.EndTime)
		if err != nil {
			return buildErrorResult("invalid endTime: " + err.Error())
		}
		ensureAuth(ctx)
		schedules, err := client.GetFreeBusy(ctx, graph.FreeBusyRequest{
			Emails:          in.Emails,
			Start:           start,
			End:             end,
			TimeZone:        in.Timezone,
			IntervalMinutes: in.IntervalMinutes,
		})
		if err != nil {
			return buildErrorResult(err.Error())
		}
		queryZone := in.Timezone
		if queryZone == "" {
			queryZone = "UTC"
		}
		interval := in.IntervalMinutes
		if interval <= 0 {
			interval = 30
		}
		out := &GetFreeBusyOutput{
			StartTime:       in.StartTime,
			EndTime:         in.EndTime,
			Timezone:        queryZone,
			IntervalMinutes: interval,
		}
		for _, info := range schedules {
			out.Schedules = append(out.Schedules, svc.formatSchedule(info))
		}
		return buildSuccessResult(svc, out)
	}); err != nil {
		return err
	}

	// Logout
	if err := protoserver.RegisterTool[*LogoutInput, *LogoutOutput](base.Registry, "exchangeLogout", logoutDesc, func(ctx context.Context, in *LogoutInput) (*schema.CallToolResult, *jsonrpc.Error) {
		svc.Authenticator().ClearCache()
		if ns, err := svc.Auth().Namespace(ctx); err == nil {
			svc.Pending().ClearNamespace(ns)
		}
		return buildSuccessResult(svc, &LogoutOutput{
			LoggedOut: true,
			Status:    "token cache cleared; next call will require sign-in",
		})
	}); err != nil {
		return err
	}

	return nil
}

// Helpers
func buildErrorResult(message string) (*schema.CallToolResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewError(jsonrpc.InvalidParams, message, nil)
}

func buildSuccessResult(service *Service, payload any) (*schema.CallToolResult, *jsonrpc.Error) {
	if service.UseTextField() {
		b, _ := json.Marshal(payload)
		return &schema.CallToolResult{Content: []schema.CallToolResultContentElem{{Type: "text", Text: string(b)}}}, nil
	}
	return &schema.CallToolResult{StructuredContent: map[string]any{"result": payload}}, nil
}

func newUUID() string { return uuid.New().String() }
