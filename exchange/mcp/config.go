package mcp

import (
	"github.com/viant/scy"
)

// Config controls the Exchange MCP server behaviour and authentication.
type Config struct {
	// Azure AD application (client) ID for Microsoft Graph.
	ClientID string `json:"clientID"`
	// Tenant ID or "organizations"/"common".
	TenantID string `json:"tenantID"`

	// TokenCachePath is the file persisting the serialized token cache.
	TokenCachePath string `json:"tokenCachePath,omitempty"`

	// TimeoutSeconds bounds outbound Graph calls (default 30).
	TimeoutSeconds int `json:"timeoutSeconds,omitempty"`

	// Timezone is the IANA zone all rendered timestamps are converted to.
	Timezone string `json:"timezone,omitempty"`

	// CallbackBaseURL is used to generate absolute URLs for OOB flows.
	// Example: http://localhost:7788
	CallbackBaseURL string `json:"callbackBaseURL,omitempty"`

	// If true, return tool results in the `data` field instead of `text`.
	UseData bool `json:"useData,omitempty"`

	// AzureRef optionally points to an Azure OAuth2 client config stored as
	// a scy resource ("<URL>|<kmsKey>"); its ClientID/TenantID fill in any
	// values left empty above.
	AzureRef scy.EncodedResource `json:"azureRef,omitempty"`
}

// Init applies defaults for everything but the client ID, which has none.
func (c *Config) Init() {
	if c.TenantID == "" {
		c.TenantID = "common"
	}
	if c.TokenCachePath == "" {
		c.TokenCachePath = "~/.mcp-exchange/token_cache.json"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.Timezone == "" {
		c.Timezone = "America/Chicago"
	}
}

// Authority returns the Azure AD authority URL for the tenant.
func (c *Config) Authority() string {
	return "https://login.microsoftonline.com/" + c.TenantID
}
