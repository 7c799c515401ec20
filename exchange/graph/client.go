// Package graph is a typed Microsoft Graph client for Exchange Online
// mailbox and calendar operations, together with the credential manager
// that feeds it bearer tokens.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
)

// BaseURL is the Microsoft Graph v1.0 endpoint.
const BaseURL = "https://graph.microsoft.com/v1.0"

// Authorizer supplies the Authorization header value per call, refreshing
// the token when needed.
type Authorizer interface {
	AuthHeader(ctx context.Context) (string, error)
}

// APIError is a decoded Graph error response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Sprintf("authentication failed: %s", e.Message)
	case http.StatusForbidden:
		return fmt.Sprintf("permission denied: %s", e.Message)
	case http.StatusNotFound:
		return fmt.Sprintf("resource not found: %s", e.Message)
	}
	return fmt.Sprintf("graph api error (%d, %s): %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound reports whether err is a Graph 404.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

// Client issues Exchange Online operations against Microsoft Graph.
// List/search/move style calls go over plain REST with typed decoding;
// draft creation goes through the Graph SDK (see draft.go).
type Client struct {
	baseURL string
	hc      *http.Client
	auth    Authorizer

	cred   azcore.TokenCredential
	scopes []string
	sdk    *msgraphsdk.GraphServiceClient
}

// NewClient builds a client. cred may be nil when the SDK-backed
// operations are not used (tests).
func NewClient(auth Authorizer, cred azcore.TokenCredential, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: BaseURL,
		hc:      &http.Client{Timeout: timeout},
		auth:    auth,
		cred:    cred,
		scopes:  DefaultScopes(),
	}
}

func (c *Client) do(ctx context.Context, method, path string, query neturl.Values, body, out any) error {
	url := c.baseURL + path
	if len(query) > 0 {
		url += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	header, err := c.auth.AuthHeader(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", header)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeAPIError maps a Graph error payload into an APIError once, at the
// boundary.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error.Message != "" {
		apiErr.Code = payload.Error.Code
		apiErr.Message = payload.Error.Message
		return apiErr
	}
	if msg := strings.TrimSpace(string(data)); msg != "" {
		apiErr.Message = msg
	} else {
		apiErr.Message = resp.Status
	}
	return apiErr
}

// odataQuote escapes a literal for use inside an OData string filter.
func odataQuote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
