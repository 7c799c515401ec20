package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	protoclient "github.com/viant/mcp-protocol/client"

	oa "github.com/exchangekit/mcp-exchange/auth"
	"github.com/exchangekit/mcp-exchange/exchange/graph"
	"github.com/exchangekit/mcp-exchange/exchange/tz"
	"github.com/viant/scy"
	"github.com/viant/scy/cred"
)

// Service wires the authenticator, graph client and timezone converter.
type Service struct {
	authenticator *graph.Authenticator
	client        *graph.Client
	tz            *tz.Service
	baseURL       string
	useText       bool
	pending       *PendingAuths
	auth          *oa.Service
	azure         *cred.Azure
	tenantID      string
	clientID      string
}

func NewService(cfg *Config) (*Service, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Init()
	useText := !cfg.UseData
	// Optionally resolve Azure OAuth2 client from scy EncodedResource.
	var az *cred.Azure
	if cfg.AzureRef != "" {
		res := cfg.AzureRef.Decode(context.Background(), cred.Azure{})
		if sec, err := scy.New().Load(context.Background(), res); err == nil {
			if v, ok := sec.Target.(*cred.Azure); ok {
				az = v
			}
		}
	}

	clientID := cfg.ClientID
	tenantID := cfg.TenantID
	if az != nil {
		if az.ClientID != "" {
			clientID = az.ClientID
		}
		if az.TenantID != "" && cfg.TenantID == "common" {
			tenantID = az.TenantID
		}
	}
	if clientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}

	zone, err := tz.New(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	s := &Service{
		tz:       zone,
		baseURL:  cfg.CallbackBaseURL,
		useText:  useText,
		pending:  NewPendingAuths(),
		auth:     oa.New(),
		azure:    az,
		tenantID: tenantID,
		clientID: clientID,
	}
	s.authenticator = graph.NewAuthenticator(graph.AuthConfig{
		ClientID:  clientID,
		Authority: "https://login.microsoftonline.com/" + tenantID,
		CachePath: cfg.TokenCachePath,
	}, s.onDevicePrompt)
	s.authenticator.OnAuthenticated(s.onAuthenticated)
	s.client = graph.NewClient(s.authenticator, s.authenticator.TokenCredential(), time.Duration(cfg.TimeoutSeconds)*time.Second)
	return s, nil
}

// onDevicePrompt publishes the device code to every pending login page.
func (s *Service) onDevicePrompt(p graph.DeviceCodePrompt) {
	s.pending.SetPrompt(&p)
}

// onAuthenticated resolves the pending logins once a device flow finishes,
// so completed sign-ins stop accumulating until logout.
func (s *Service) onAuthenticated() {
	s.pending.CompleteAll()
}

func (s *Service) RegisterHTTP(mux *http.ServeMux) {
	// Device code display endpoint – shows code for a pending login.
	mux.HandleFunc("/exchange/auth/device/", s.DeviceHandler())
	// List/clear pending endpoints
	mux.HandleFunc("/exchange/auth/pending", s.PendingListHandler())
	mux.HandleFunc("/exchange/auth/pending/clear", s.PendingClearHandler())
}

// DeviceHandler serves the device login page for a pending auth UUID.
func (s *Service) DeviceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// URL: /exchange/auth/device/{uuid}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 4 { // exchange auth device {uuid}
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		pend, ok := s.pending.Get(parts[3])
		if !ok {
			http.Error(w, "no pending auth", http.StatusNotFound)
			return
		}
		prompt := pend.Prompt
		if prompt == nil {
			deadline := time.Now().Add(8 * time.Second)
			for prompt == nil && time.Now().Before(deadline) {
				time.Sleep(200 * time.Millisecond)
				pend, ok = s.pending.Get(parts[3])
				if !ok {
					break
				}
				prompt = pend.Prompt
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if prompt == nil {
			_, _ = fmt.Fprint(w, buildWaitingForDeviceHTML())
			return
		}
		_, _ = fmt.Fprint(w, buildDeviceLoginHTML(prompt))
	}
}

// buildDeviceLoginHTML renders the device prompt as a clickable page with a copyable code.
func buildDeviceLoginHTML(p *graph.DeviceCodePrompt) string {
	url := p.VerificationURI
	if url == "" {
		url = "https://microsoft.com/devicelogin"
	}
	escURL := html.EscapeString(url)
	escCode := html.EscapeString(p.UserCode)
	if escCode == "" {
		escMsg := html.EscapeString(p.Message)
		return fmt.Sprintf(`<html><body>
<h3>Sign in to Exchange</h3>
<p>Open <a href="%[1]s" target="_blank" rel="noopener noreferrer">%[1]s</a> and follow the instructions.</p>
<pre>%[2]s</pre>
<p>Keep this tab open; return to your assistant after completing sign-in.</p>
</body></html>`, escURL, escMsg)
	}
	return fmt.Sprintf(`<html><body style="font-family: -apple-system, Segoe UI, Roboto, sans-serif;">
<h3>Sign in to Exchange</h3>
<p>Click to open: <a href="%[1]s" target="_blank" rel="noopener noreferrer">%[1]s</a></p>
<p>Then enter this code:</p>
<p style="font-size: 1.4em; font-weight: 600;"><code>%[2]s</code> <button onclick="navigator.clipboard.writeText('%[3]s')">Copy</button></p>
<p>Keep this tab open; return to your assistant after completing sign-in.</p>
</body></html>`, escURL, escCode, escCode)
}

func buildWaitingForDeviceHTML() string {
	url := html.EscapeString("https://microsoft.com/devicelogin")
	return fmt.Sprintf(`<!doctype html>
<html><head>
<meta http-equiv="refresh" content="2">
<meta charset="utf-8">
<title>Sign in to Exchange</title>
<style>body{font-family:-apple-system,Segoe UI,Roboto,sans-serif;margin:24px}</style>
</head><body>
<h3>Sign in to Exchange</h3>
<p>Preparing device login… this page refreshes automatically.</p>
<p>If it takes too long, you can open <a href="%[1]s" target="_blank" rel="noopener noreferrer">%[1]s</a> and follow the instructions.</p>
<p>Keep this tab open; return to your assistant after completing sign-in.</p>
</body></html>`, url)
}

// PendingListHandler returns JSON of pending auths for a namespace.
func (s *Service) PendingListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ns := r.URL.Query().Get("namespace")
		if ns == "" {
			if v, err := s.auth.Namespace(r.Context()); err == nil {
				ns = v
			}
		}
		if ns == "" {
			http.Error(w, "namespace required", http.StatusBadRequest)
			return
		}
		list := s.pending.ListNamespace(ns)
		type row struct{ UUID, Namespace string }
		out := make([]row, 0, len(list))
		for _, v := range list {
			out = append(out, row{UUID: v.UUID, Namespace: v.Namespace})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

// PendingClearHandler clears all pending auths for a namespace.
func (s *Service) PendingClearHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ns := r.URL.Query().Get("namespace")
		if ns == "" {
			if v, err := s.auth.Namespace(r.Context()); err == nil {
				ns = v
			}
		}
		if ns == "" {
			http.Error(w, "namespace required", http.StatusBadRequest)
			return
		}
		cleared := s.pending.ClearNamespace(ns)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"cleared": len(cleared), "uuids": cleared})
	}
}

func (s *Service) Authenticator() *graph.Authenticator { return s.authenticator }
func (s *Service) Client() *graph.Client               { return s.client }
func (s *Service) Timezone() *tz.Service               { return s.tz }
func (s *Service) UseTextField() bool                  { return s.useText }
func (s *Service) BaseURL() string                     { return s.baseURL }
func (s *Service) Pending() *PendingAuths              { return s.pending }
func (s *Service) Auth() *oa.Service                   { return s.auth }
func (s *Service) TenantID() string                    { return s.tenantID }
func (s *Service) ClientID() string                    { return s.clientID }

// NewOperationsHook allows passing protocol client operations if needed later.
func (s *Service) NewOperationsHook(_ protoclient.Operations) {}
