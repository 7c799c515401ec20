package mcp

import (
	"sync"

	"github.com/exchangekit/mcp-exchange/exchange/graph"
)

type PendingAuth struct {
	UUID      string
	ElicitID  string
	Namespace string
	done      chan struct{}
	Prompt    *graph.DeviceCodePrompt
}

type PendingAuths struct {
	mu   sync.RWMutex
	byID map[string]*PendingAuth
	byNS map[string]map[string]*PendingAuth // ns -> uuid -> pending
}

func NewPendingAuths() *PendingAuths {
	return &PendingAuths{byID: make(map[string]*PendingAuth), byNS: make(map[string]map[string]*PendingAuth)}
}

func (p *PendingAuths) Put(x *PendingAuth) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byID[x.UUID] = x
	if x.Namespace == "" {
		x.Namespace = "default"
	}
	m, ok := p.byNS[x.Namespace]
	if !ok {
		m = map[string]*PendingAuth{}
		p.byNS[x.Namespace] = m
	}
	m[x.UUID] = x
}

func (p *PendingAuths) Get(uuid string) (*PendingAuth, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	x, ok := p.byID[uuid]
	return x, ok
}

// SetPrompt attaches the device code prompt to every still-pending auth so
// the login page can render it.
func (p *PendingAuths) SetPrompt(prompt *graph.DeviceCodePrompt) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, x := range p.byID {
		x.Prompt = prompt
	}
}

func (p *PendingAuths) Complete(uuid string) {
	p.mu.Lock()
	x, ok := p.byID[uuid]
	if ok {
		delete(p.byID, uuid)
	}
	if ok && x != nil {
		if m, ok2 := p.byNS[x.Namespace]; ok2 {
			delete(m, uuid)
			if len(m) == 0 {
				delete(p.byNS, x.Namespace)
			}
		}
	}
	p.mu.Unlock()
	if ok && x.done != nil {
		select {
		case x.done <- struct{}{}:
		default:
		}
		close(x.done)
	}
}

func (p *PendingAuths) Cancel(uuid string) {
	p.Complete(uuid)
}

// CompleteAll resolves every pending auth; the server holds one mailbox
// session, so a finished sign-in satisfies all of them. Returns the
// resolved UUIDs.
func (p *PendingAuths) CompleteAll() []string {
	p.mu.RLock()
	ids := make([]string, 0, len(p.byID))
	for id := range p.byID {
		ids = append(ids, id)
	}
	p.mu.RUnlock()
	for _, id := range ids {
		p.Complete(id)
	}
	return ids
}

// ListNamespace returns a snapshot of pending auths for a namespace.
func (p *PendingAuths) ListNamespace(ns string) []*PendingAuth {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m := p.byNS[ns]
	out := make([]*PendingAuth, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// ClearNamespace removes all pending auths for a namespace and returns cleared UUIDs.
func (p *PendingAuths) ClearNamespace(ns string) []string {
	p.mu.Lock()
	ids := make([]string, 0)
	if m, ok := p.byNS[ns]; ok {
		for id, x := range m {
			delete(p.byID, id)
			ids = append(ids, id)
			if x != nil && x.done != nil {
				select {
				case x.done <- struct{}{}:
				default:
				}
				close(x.done)
			}
		}
		delete(p.byNS, ns)
	}
	p.mu.Unlock()
	return ids
}
