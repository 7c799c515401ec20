package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type staticAuth struct{}

func (staticAuth) AuthHeader(context.Context) (string, error) { return "Bearer test-token", nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(staticAuth{}, nil, time.Second)
	c.baseURL = srv.URL
	return c
}

func TestListMailFolders(t *testing.T) {
	var gotPath, gotAuth, gotSelect string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotSelect = r.URL.Query().Get("$select")
		_ = json.NewEncoder(w).Encode(map[string]any{"value": []map[string]any{
			{"id": "f1", "displayName": "Inbox", "unreadItemCount": 3, "totalItemCount": 10},
			{"id": "f2", "displayName": "Archive"},
		}})
	})
	folders, err := c.ListMailFolders(context.Background())
	if err != nil {
		t.Fatalf("ListMailFolders: %v", err)
	}
	if gotPath != "/me/mailFolders" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if !strings.Contains(gotSelect, "unreadItemCount") {
		t.Errorf("$select = %q", gotSelect)
	}
	if len(folders) != 2 || folders[0].UnreadItemCount != 3 {
		t.Errorf("folders = %+v", folders)
	}
}

func TestFolderByName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"value": []map[string]any{
			{"id": "f9", "displayName": "Project Alpha"},
		}})
	})
	folder, err := c.FolderByName(context.Background(), "project alpha")
	if err != nil {
		t.Fatal(err)
	}
	if folder == nil || folder.ID != "f9" {
		t.Errorf("folder = %+v", folder)
	}
	missing, err := c.FolderByName(context.Background(), "no such folder")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown folder, got %+v", missing)
	}
}

func TestListMessagesFilter(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{"value": []map[string]any{
			{"id": "m1", "subject": "hello", "isRead": false},
		}})
	})
	isRead := false
	from := time.Date(2026, 1, 10, 6, 0, 0, 0, time.UTC)
	messages, err := c.ListMessages(context.Background(), MessageFilter{
		FolderID: "archive",
		Sender:   "alice@example.com",
		Subject:  "o'brien",
		From:     from,
		IsRead:   &isRead,
		Limit:    5,
	})
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if gotPath != "/me/mailFolders/archive/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if got := gotQuery["$top"]; len(got) != 1 || got[0] != "5" {
		t.Errorf("$top = %v", got)
	}
	if got := gotQuery["$orderby"]; len(got) != 1 || got[0] != "receivedDateTime desc" {
		t.Errorf("$orderby = %v", got)
	}
	filter := gotQuery["$filter"][0]
	for _, want := range []string{
		"from/emailAddress/address eq 'alice@example.com'",
		"contains(subject, 'o''brien')",
		"receivedDateTime ge 2026-01-10T06:00:00Z",
		"isRead eq false",
	} {
		if !strings.Contains(filter, want) {
			t.Errorf("$filter %q missing %q", filter, want)
		}
	}
	if len(messages) != 1 || messages[0].ID != "m1" {
		t.Errorf("messages = %+v", messages)
	}
}

func TestGetMessageNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "ErrorItemNotFound", "message": "The specified object was not found in the store."},
		})
	})
	_, err := c.GetMessage(context.Background(), "missing-id")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound = false for %v", err)
	}
	if !strings.Contains(err.Error(), "resource not found") {
		t.Errorf("error = %q", err)
	}
}

func TestDecodeAPIErrorPlainBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	})
	_, err := c.ListMailFolders(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "upstream unavailable") {
		t.Errorf("error = %q", err)
	}
}

func TestArchiveMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "m1-moved", "subject": "hello"})
	})
	moved, err := c.ArchiveMessage(context.Background(), "m1")
	if err != nil {
		t.Fatalf("ArchiveMessage: %v", err)
	}
	if gotPath != "/me/messages/m1/move" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["destinationId"] != "archive" {
		t.Errorf("body = %v", gotBody)
	}
	if moved.ID != "m1-moved" {
		t.Errorf("moved = %+v", moved)
	}
}

func TestSendMail(t *testing.T) {
	var gotPath string
	var payload struct {
		Message struct {
			Subject    string      `json:"subject"`
			Body       *ItemBody   `json:"body"`
			To         []Recipient `json:"toRecipients"`
			Importance string      `json:"importance"`
		} `json:"message"`
		SaveToSentItems bool `json:"saveToSentItems"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusAccepted)
	})
	err := c.SendMail(context.Background(), OutgoingMessage{
		Subject:    "status",
		Body:       "<p>done</p>",
		BodyType:   "html",
		To:         []string{"bob@example.com"},
		Importance: "high",
	})
	if err != nil {
		t.Fatalf("SendMail: %v", err)
	}
	if gotPath != "/me/sendMail" {
		t.Errorf("path = %q", gotPath)
	}
	if !payload.SaveToSentItems {
		t.Error("saveToSentItems not set")
	}
	if payload.Message.Body == nil || payload.Message.Body.ContentType != "html" {
		t.Errorf("body = %+v", payload.Message.Body)
	}
	if len(payload.Message.To) != 1 || payload.Message.To[0].EmailAddress.Address != "bob@example.com" {
		t.Errorf("to = %+v", payload.Message.To)
	}
	if payload.Message.Importance != "high" {
		t.Errorf("importance = %q", payload.Message.Importance)
	}
}

func TestListEvents(t *testing.T) {
	var gotPath, gotFilter, gotOrder string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFilter = r.URL.Query().Get("$filter")
		gotOrder = r.URL.Query().Get("$orderby")
		_ = json.NewEncoder(w).Encode(map[string]any{"value": []map[string]any{
			{"id": "e1", "subject": "standup", "start": map[string]string{"dateTime": "2026-01-12T16:30:00.0000000", "timeZone": "UTC"}},
		}})
	})
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatal(err)
	}
	start := time.Date(2026, 1, 12, 0, 0, 0, 0, chicago)
	events, err := c.ListEvents(context.Background(), EventFilter{Start: start})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if gotPath != "/me/calendar/events" {
		t.Errorf("path = %q", gotPath)
	}
	if gotOrder != "start/dateTime" {
		t.Errorf("$orderby = %q", gotOrder)
	}
	// Filter compares against the naive UTC wall clock.
	if want := "start/dateTime ge '2026-01-12T06:00:00'"; gotFilter != want {
		t.Errorf("$filter = %q, want %q", gotFilter, want)
	}
	if len(events) != 1 || events[0].Start.TimeZone != "UTC" {
		t.Errorf("events = %+v", events)
	}
}

func TestListEventsCustomCalendar(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{"value": []map[string]any{}})
	})
	if _, err := c.ListEvents(context.Background(), EventFilter{CalendarID: "cal-2"}); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/me/calendars/cal-2/events" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestGetFreeBusy(t *testing.T) {
	var gotPath string
	var payload struct {
		Schedules []string         `json:"schedules"`
		StartTime DateTimeTimeZone `json:"startTime"`
		EndTime   DateTimeTimeZone `json:"endTime"`
		Interval  int              `json:"availabilityViewInterval"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_ = json.NewEncoder(w).Encode(map[string]any{"value": []map[string]any{
			{"scheduleId": "alice@example.com", "availabilityView": "002200"},
		}})
	})
	start := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	schedules, err := c.GetFreeBusy(context.Background(), FreeBusyRequest{
		Emails: []string{"alice@example.com"},
		Start:  start,
		End:    start.Add(4 * time.Hour),
	})
	if err != nil {
		t.Fatalf("GetFreeBusy: %v", err)
	}
	if gotPath != "/me/calendar/getSchedule" {
		t.Errorf("path = %q", gotPath)
	}
	if payload.StartTime.DateTime != "2026-01-12T09:00:00" || payload.StartTime.TimeZone != "UTC" {
		t.Errorf("startTime = %+v", payload.StartTime)
	}
	if payload.Interval != 30 {
		t.Errorf("interval = %d", payload.Interval)
	}
	if len(schedules) != 1 || schedules[0].ScheduleID != "alice@example.com" {
		t.Errorf("schedules = %+v", schedules)
	}
}

func TestGetFreeBusyValidation(t *testing.T) {
	c := NewClient(staticAuth{}, nil, time.Second)
	if _, err := c.GetFreeBusy(context.Background(), FreeBusyRequest{}); err == nil {
		t.Error("expected error for empty email list")
	}
	emails := make([]string, maxScheduleAddresses+1)
	for i := range emails {
		emails[i] = "user@example.com"
	}
	if _, err := c.GetFreeBusy(context.Background(), FreeBusyRequest{Emails: emails}); err == nil {
		t.Error("expected error for too many emails")
	}
}

func TestOdataQuote(t *testing.T) {
	if got := odataQuote("o'brien"); got != "'o''brien'" {
		t.Errorf("odataQuote = %q", got)
	}
}
