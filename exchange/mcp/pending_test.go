package mcp

import (
	"testing"

	"github.com/exchangekit/mcp-exchange/exchange/graph"
)

func TestPendingAuthsLifecycle(t *testing.T) {
	p := NewPendingAuths()
	p.Put(&PendingAuth{UUID: "u1", Namespace: "alice"})
	p.Put(&PendingAuth{UUID: "u2", Namespace: "alice", done: make(chan struct{}, 1)})
	p.Put(&PendingAuth{UUID: "u3", Namespace: "bob"})

	if _, ok := p.Get("u1"); !ok {
		t.Fatal("u1 not found")
	}
	if got := len(p.ListNamespace("alice")); got != 2 {
		t.Errorf("alice pending = %d", got)
	}

	prompt := &graph.DeviceCodePrompt{UserCode: "ABC-123"}
	p.SetPrompt(prompt)
	x, _ := p.Get("u3")
	if x.Prompt == nil || x.Prompt.UserCode != "ABC-123" {
		t.Errorf("prompt not propagated: %+v", x.Prompt)
	}

	cleared := p.ClearNamespace("alice")
	if len(cleared) != 2 {
		t.Errorf("cleared = %v", cleared)
	}
	if _, ok := p.Get("u1"); ok {
		t.Error("u1 still present after clear")
	}
	if _, ok := p.Get("u3"); !ok {
		t.Error("bob's pending auth removed by alice's clear")
	}
}

func TestCompleteAllResolvesEveryNamespace(t *testing.T) {
	p := NewPendingAuths()
	done := make(chan struct{}, 1)
	p.Put(&PendingAuth{UUID: "u1", Namespace: "alice", done: done})
	p.Put(&PendingAuth{UUID: "u2", Namespace: "bob"})

	ids := p.CompleteAll()
	if len(ids) != 2 {
		t.Errorf("completed = %v", ids)
	}
	if _, ok := p.Get("u1"); ok {
		t.Error("u1 still pending")
	}
	if _, ok := p.Get("u2"); ok {
		t.Error("u2 still pending")
	}
	select {
	case <-done:
	default:
		t.Error("done channel not signaled")
	}
	if got := len(p.ListNamespace("alice")); got != 0 {
		t.Errorf("alice pending = %d after CompleteAll", got)
	}
}

func TestSignInCompletionResolvesPending(t *testing.T) {
	svc := newTestService(t)
	svc.Pending().Put(&PendingAuth{UUID: "u1", Namespace: "alice", done: make(chan struct{}, 1)})
	svc.onAuthenticated()
	if _, ok := svc.Pending().Get("u1"); ok {
		t.Error("pending auth survived a finished sign-in")
	}
}

func TestPendingAuthsDefaultNamespace(t *testing.T) {
	p := NewPendingAuths()
	p.Put(&PendingAuth{UUID: "u1"})
	if got := len(p.ListNamespace("default")); got != 1 {
		t.Errorf("default pending = %d", got)
	}
}
