// Package auth derives the caller namespace from a JWT carried in
// context. Pending device logins are partitioned per namespace so one
// host's sign-in page never shows another caller's code.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/mcp-protocol/authorization"
)

// DefaultNamespace groups callers that present no token.
const DefaultNamespace = "default"

// Service extracts a namespace from the bearer token the MCP auth
// middleware stores in context. The token is parsed without verification;
// verification is the middleware's job.
type Service struct {
	// Fallback is returned when no token is present or extraction fails.
	Fallback string
}

// New returns a Service with the default fallback namespace.
func New() *Service { return &Service{Fallback: DefaultNamespace} }

// Namespace returns the email or subject claim of the context's token,
// or the fallback namespace.
func (s *Service) Namespace(ctx context.Context) (string, error) {
	if s == nil {
		return DefaultNamespace, nil
	}
	tokenValue := ctx.Value(authorization.TokenKey)
	if tokenValue == nil {
		return s.Fallback, nil
	}
	var tokenString string
	switch tv := tokenValue.(type) {
	case string:
		tokenString = tv
	case *authorization.Token:
		tokenString = tv.Token
	default:
		return "", fmt.Errorf("unsupported token type %T", tokenValue)
	}
	var claims jwt.MapClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, &claims); err != nil {
		return s.Fallback, nil
	}
	if email, _ := claims["email"].(string); email != "" {
		return email, nil
	}
	if sub, _ := claims["sub"].(string); sub != "" {
		return sub, nil
	}
	return s.Fallback, nil
}
