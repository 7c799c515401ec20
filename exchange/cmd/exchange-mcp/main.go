package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	_ "time/tzdata"

	"github.com/exchangekit/mcp-exchange/exchange/mcp"
	flags "github.com/jessevdk/go-flags"
	"github.com/viant/mcp-protocol/authorization"
	oauthmeta "github.com/viant/mcp-protocol/oauth2/meta"
	"github.com/viant/mcp-protocol/schema"
	mcpsrv "github.com/viant/mcp/server"
	serverauth "github.com/viant/mcp/server/auth"
	"github.com/viant/scy"
	"github.com/viant/scy/auth/flow"
	"github.com/viant/scy/cred"
	_ "github.com/viant/scy/kms/blowfish"
)

// Options defines CLI flags for the Exchange MCP server.
type Options struct {
	HTTPAddr     string `short:"a" long:"addr" description:"HTTP listen address (empty disables HTTP)"`
	ClientID     string `long:"client-id" description:"Azure AD application (client) ID"`
	TenantID     string `long:"tenant-id" description:"Tenant ID or 'common'"`
	TokenCache   string `long:"token-cache" description:"Path to the persisted token cache file"`
	Timeout      string `long:"timeout" description:"Graph request timeout in seconds"`
	Timezone     string `long:"timezone" description:"IANA timezone for rendered timestamps"`
	AzureRef     string `long:"azure-ref" description:"scy EncodedResource for Azure cred (e.g., gcp://...|blowfish://default)"`
	Oauth2Config string `short:"o" long:"oauth2config" description:"Path to JSON OAuth2 configuration file (scy EncodedResource)"`
	UseIdToken   bool   `short:"i" long:"use-id-token" description:"Use ID token (instead of access token) for identity scoping"`
	UseData      bool   `long:"use-data" description:"Return tool output in structured content instead of text"`
}

func main() {
	log.SetPrefix("[exchange] ")
	log.SetFlags(log.LstdFlags)

	var opts Options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		os.Exit(2)
	}
	// Apply simple defaults and env fallbacks
	if opts.ClientID == "" {
		opts.ClientID = envOr("EXCHANGE_CLIENT_ID", "")
	}
	if opts.TenantID == "" {
		opts.TenantID = envOr("EXCHANGE_TENANT_ID", "common")
	}
	if opts.TokenCache == "" {
		opts.TokenCache = envOr("EXCHANGE_TOKEN_CACHE", "")
	}
	if opts.Timeout == "" {
		opts.Timeout = envOr("EXCHANGE_TIMEOUT", "")
	}
	if opts.Timezone == "" {
		opts.Timezone = envOr("EXCHANGE_TIMEZONE", "")
	}
	if opts.AzureRef == "" {
		opts.AzureRef = envOr("EXCHANGE_AZURE_REF", "")
	}
	if opts.ClientID == "" && opts.AzureRef == "" {
		log.Fatal("missing --client-id/EXCHANGE_CLIENT_ID (or provide --azure-ref / EXCHANGE_AZURE_REF)")
	}

	timeout := 0
	if opts.Timeout != "" {
		v, err := strconv.Atoi(opts.Timeout)
		if err != nil || v <= 0 {
			log.Printf("invalid timeout %q, using default 30s", opts.Timeout)
		} else {
			timeout = v
		}
	}

	// Derive callback base URL from listen address.
	baseURL := "http://localhost"
	if opts.HTTPAddr != "" {
		hostport := opts.HTTPAddr
		if hostport[0] == ':' {
			hostport = "localhost" + hostport
		}
		baseURL = "http://" + hostport
	}

	svc, err := mcp.NewService(&mcp.Config{
		ClientID:        opts.ClientID,
		TenantID:        opts.TenantID,
		TokenCachePath:  opts.TokenCache,
		TimeoutSeconds:  timeout,
		Timezone:        opts.Timezone,
		CallbackBaseURL: baseURL,
		UseData:         opts.UseData,
		AzureRef:        scy.EncodedResource(opts.AzureRef),
	})
	if err != nil {
		log.Fatal(err)
	}

	// Build server options baseline
	options := []mcpsrv.Option{
		mcpsrv.WithImplementation(schema.Implementation{Name: "mcp-exchange", Version: "0.1.0"}),
		mcpsrv.WithNewHandler(mcp.NewHandler(svc)),
		mcpsrv.WithEndpointAddress(opts.HTTPAddr),
		mcpsrv.WithRootRedirect(true),
		mcpsrv.WithStreamableURI("/mcp"),
		mcpsrv.WithCustomHTTPHandler("/exchange/auth/device/", svc.DeviceHandler()),
		mcpsrv.WithCustomHTTPHandler("/exchange/auth/pending", svc.PendingListHandler()),
		mcpsrv.WithCustomHTTPHandler("/exchange/auth/pending/clear", svc.PendingClearHandler()),
	}

	// Optional server-level OAuth2
	if v := strings.TrimSpace(opts.Oauth2Config); v != "" {
		res := scy.EncodedResource(v).Decode(context.Background(), cred.Oauth2Config{})
		sec, err := scy.New().Load(context.Background(), res)
		if err != nil {
			log.Fatalf("failed to load oauth2config: %v", err)
		}
		oc, ok := sec.Target.(*cred.Oauth2Config)
		if !ok {
			log.Fatalf("invalid oauth2config secret type")
		}
		authPolicy := &authorization.Policy{
			Global: &authorization.Authorization{
				UseIdToken: opts.UseIdToken,
				ProtectedResourceMetadata: &oauthmeta.ProtectedResourceMetadata{
					AuthorizationServers: []string{oc.Config.Endpoint.AuthURL},
				}},
			// Allow SSE/UI without auth; protect /mcp
			ExcludeURI: "/sse,/ui/interaction/",
		}
		header := flow.AuthorizationExchangeHeader
		bff := &serverauth.BackendForFrontend{Client: &oc.Config, AuthorizationExchangeHeader: header}
		authSvc, err := serverauth.New(&serverauth.Config{Policy: authPolicy, BackendForFrontend: bff})
		if err != nil {
			log.Fatalf("failed to init auth service: %v", err)
		}
		options = append(options,
			mcpsrv.WithAuthorizer(authSvc.Middleware),
			mcpsrv.WithProtectedResourcesHandler(authSvc.ProtectedResourcesHandler),
		)
	}

	server, err := mcpsrv.New(options...)
	if err != nil {
		log.Fatal(err)
	}
	if opts.HTTPAddr != "" {
		// Enable streamable HTTP so /mcp endpoint is active
		server.UseStreamableHTTP(true)
		if err := server.HTTP(context.Background(), opts.HTTPAddr).ListenAndServe(); err != nil {
			log.Fatal(err)
		}
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
