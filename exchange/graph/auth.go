package graph

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/public"
)

// DefaultScopes is the fixed Graph scope set for Exchange Online access.
func DefaultScopes() []string {
	return []string{
		"User.Read",
		"Mail.ReadWrite",
		"Mail.Send",
		"Calendars.Read",
		"Calendars.Read.Shared",
	}
}

// AuthError reports a failure to obtain a token. It carries the provider's
// description when one is available.
type AuthError struct {
	Description string
}

func (e *AuthError) Error() string { return e.Description }

// DeviceCodePrompt holds the user-facing part of a device-authorization
// flow, decoded once at the MSAL boundary.
type DeviceCodePrompt struct {
	VerificationURI string
	UserCode        string
	Message         string
}

// PromptFunc receives the device-code prompt when an interactive flow
// starts (e.g. to surface it on an out-of-band HTTP page).
type PromptFunc func(DeviceCodePrompt)

// AuthConfig configures the credential manager.
type AuthConfig struct {
	ClientID  string
	Authority string
	Scopes    []string
	CachePath string
}

// tokenClient abstracts the MSAL public client so the acquisition state
// machine is testable without the network.
type tokenClient interface {
	Accounts(ctx context.Context) ([]public.Account, error)
	AcquireSilent(ctx context.Context, scopes []string, account public.Account) (public.AuthResult, error)
	BeginDeviceFlow(ctx context.Context, scopes []string) (deviceFlow, error)
}

type deviceFlow interface {
	Prompt() DeviceCodePrompt
	Wait(ctx context.Context) (public.AuthResult, error)
}

// Authenticator produces bearer tokens for the configured scope set,
// minimizing interactive prompts. The MSAL application and its cache are
// built lazily on the first token request and reused until ClearCache.
//
// AccessToken holds a single mutex for the whole acquisition, so
// concurrent callers that miss the cache await one in-flight device flow
// instead of each starting their own.
type Authenticator struct {
	cfg    AuthConfig
	prompt PromptFunc
	store  *FileTokenStore

	mu     sync.Mutex
	client tokenClient

	// completed fires after a device flow finishes successfully.
	completed func()

	// newClient is a construction seam replaced in tests.
	newClient func(cfg AuthConfig, store *FileTokenStore) (tokenClient, error)
}

// NewAuthenticator builds a credential manager; prompt may be nil.
func NewAuthenticator(cfg AuthConfig, prompt PromptFunc) *Authenticator {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes()
	}
	return &Authenticator{
		cfg:       cfg,
		prompt:    prompt,
		store:     NewFileTokenStore(cfg.CachePath),
		newClient: newMSALClient,
	}
}

// AccessToken returns a valid access token, acquiring silently from the
// cache when possible and falling back to the device-authorization flow.
// The device-flow branch blocks until the user completes sign-in remotely
// (bounded by the flow's own expiry).
func (a *Authenticator) AccessToken(ctx context.Context) (string, error) {
	res, err := a.acquire(ctx)
	if err != nil {
		return "", err
	}
	return res.AccessToken, nil
}

// AuthHeader returns the Authorization header value for API requests.
func (a *Authenticator) AuthHeader(ctx context.Context) (string, error) {
	token, err := a.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}

// ClearCache logs the user out: the cache file is deleted (I/O failures
// are logged, not fatal) and the MSAL application dropped so the next
// token request re-initializes from scratch.
func (a *Authenticator) ClearCache() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.Clear()
	a.client = nil
}

// NeedsInteractive probes quickly, without ever prompting, whether the
// next token request would require a device flow.
func (a *Authenticator) NeedsInteractive(ctx context.Context) bool {
	if !a.mu.TryLock() {
		// An acquisition is already in flight.
		return true
	}
	defer a.mu.Unlock()
	client, err := a.ensureClient()
	if err != nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	accounts, err := client.Accounts(ctx)
	if err != nil || len(accounts) == 0 {
		return true
	}
	res, err := client.AcquireSilent(ctx, a.cfg.Scopes, accounts[0])
	return err != nil || res.AccessToken == ""
}

// OnAuthenticated registers fn to run after a device flow completes
// successfully (silent acquisitions do not fire it). The callback runs
// inside the acquisition and must not call back into the authenticator.
func (a *Authenticator) OnAuthenticated(fn func()) {
	a.completed = fn
}

// TokenCredential adapts the authenticator to azcore.TokenCredential for
// the Graph SDK client.
func (a *Authenticator) TokenCredential() azcore.TokenCredential {
	return tokenCredential{a: a}
}

func (a *Authenticator) acquire(ctx context.Context) (public.AuthResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	client, err := a.ensureClient()
	if err != nil {
		return public.AuthResult{}, &AuthError{Description: err.Error()}
	}

	// Silent first: the cache may hold a usable grant for the first account.
	accounts, err := client.Accounts(ctx)
	if err == nil && len(accounts) > 0 {
		if exchangeDebug() {
			log.Printf("[exchange] found %d cached account(s), attempting silent auth", len(accounts))
		}
		if res, serr := client.AcquireSilent(ctx, a.cfg.Scopes, accounts[0]); serr == nil && res.AccessToken != "" {
			return res, nil
		}
	}

	log.Printf("[exchange] no cached token available, initiating device code flow")
	flow, err := client.BeginDeviceFlow(ctx, a.cfg.Scopes)
	if err != nil {
		return public.AuthResult{}, &AuthError{Description: err.Error()}
	}
	dcPrompt := flow.Prompt()
	if dcPrompt.UserCode == "" {
		return public.AuthResult{}, &AuthError{Description: "failed to initiate device code flow"}
	}
	a.announce(dcPrompt)

	res, err := flow.Wait(ctx)
	if err != nil {
		return public.AuthResult{}, &AuthError{Description: err.Error()}
	}
	if res.AccessToken == "" {
		return public.AuthResult{}, &AuthError{Description: "Authentication failed"}
	}
	log.Printf("[exchange] authenticated via device code flow")
	if a.completed != nil {
		a.completed()
	}
	return res, nil
}

func (a *Authenticator) ensureClient() (tokenClient, error) {
	if a.client == nil {
		client, err := a.newClient(a.cfg, a.store)
		if err != nil {
			return nil, err
		}
		a.client = client
	}
	return a.client, nil
}

// announce writes the sign-in instructions to stderr; stdout stays
// reserved for the protocol.
func (a *Authenticator) announce(p DeviceCodePrompt) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, strings.Repeat("=", 60))
	fmt.Fprintln(os.Stderr, "AUTHENTICATION REQUIRED")
	fmt.Fprintln(os.Stderr, strings.Repeat("=", 60))
	fmt.Fprintf(os.Stderr, "\nTo sign in, visit: %s\n", p.VerificationURI)
	fmt.Fprintf(os.Stderr, "Enter this code: %s\n", p.UserCode)
	fmt.Fprintln(os.Stderr, "\nWaiting for authentication...")
	if a.prompt != nil {
		a.prompt(p)
	}
}

type tokenCredential struct{ a *Authenticator }

func (c tokenCredential) GetToken(ctx context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	res, err := c.a.acquire(ctx)
	if err != nil {
		return azcore.AccessToken{}, err
	}
	return azcore.AccessToken{Token: res.AccessToken, ExpiresOn: res.ExpiresOn}, nil
}

// msalClient is the production tokenClient.
type msalClient struct{ c public.Client }

func newMSALClient(cfg AuthConfig, store *FileTokenStore) (tokenClient, error) {
	c, err := public.New(cfg.ClientID,
		public.WithAuthority(cfg.Authority),
		public.WithCache(store),
	)
	if err != nil {
		return nil, err
	}
	return msalClient{c: c}, nil
}

func (m msalClient) Accounts(ctx context.Context) ([]public.Account, error) {
	return m.c.Accounts(ctx)
}

func (m msalClient) AcquireSilent(ctx context.Context, scopes []string, account public.Account) (public.AuthResult, error) {
	return m.c.AcquireTokenSilent(ctx, scopes, public.WithSilentAccount(account))
}

func (m msalClient) BeginDeviceFlow(ctx context.Context, scopes []string) (deviceFlow, error) {
	dc, err := m.c.AcquireTokenByDeviceCode(ctx, scopes)
	if err != nil {
		return nil, err
	}
	return msalDeviceFlow{dc: dc}, nil
}

type msalDeviceFlow struct{ dc public.DeviceCode }

func (f msalDeviceFlow) Prompt() DeviceCodePrompt {
	return DeviceCodePrompt{
		VerificationURI: f.dc.Result.VerificationURL,
		UserCode:        f.dc.Result.UserCode,
		Message:         f.dc.Result.Message,
	}
}

func (f msalDeviceFlow) Wait(ctx context.Context) (public.AuthResult, error) {
	return f.dc.AuthenticationResult(ctx)
}

func exchangeDebug() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("EXCHANGE_MCP_DEBUG")))
	return v != "" && v != "0" && v != "false"
}

func expandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			if p == "~" {
				p = home
			} else if strings.HasPrefix(p, "~/") {
				p = filepath.Join(home, p[2:])
			}
		}
	}
	return p
}
