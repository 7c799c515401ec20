package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/mcp-protocol/authorization"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestNamespaceNoToken(t *testing.T) {
	ns, err := New().Namespace(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ns != DefaultNamespace {
		t.Errorf("namespace = %q", ns)
	}
}

func TestNamespaceEmailClaim(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"email": "alice@example.com", "sub": "abc-123"})
	ctx := context.WithValue(context.Background(), authorization.TokenKey, token)
	ns, err := New().Namespace(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ns != "alice@example.com" {
		t.Errorf("namespace = %q", ns)
	}
}

func TestNamespaceSubjectFallback(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "abc-123"})
	ctx := context.WithValue(context.Background(), authorization.TokenKey, &authorization.Token{Token: token})
	ns, err := New().Namespace(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ns != "abc-123" {
		t.Errorf("namespace = %q", ns)
	}
}

func TestNamespaceMalformedToken(t *testing.T) {
	ctx := context.WithValue(context.Background(), authorization.TokenKey, "not-a-jwt")
	ns, err := New().Namespace(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ns != DefaultNamespace {
		t.Errorf("namespace = %q", ns)
	}
}

func TestNamespaceUnsupportedType(t *testing.T) {
	ctx := context.WithValue(context.Background(), authorization.TokenKey, 42)
	if _, err := New().Namespace(ctx); err == nil {
		t.Error("expected error for unsupported token type")
	}
}
