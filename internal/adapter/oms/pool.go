package oms

import (
	"net/http"
	"sync"
	"time"
)

// authTransport injects the fixed OMS authentication headers so every
// client drawn from the pool is pre-configured for the account.
type authTransport struct {
	appKey   string
	appToken string
	base     http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("X-VTEX-API-AppKey", t.appKey)
	clone.Header.Set("X-VTEX-API-AppToken", t.appToken)
	clone.Header.Set("Accept", "application/json")
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// ClientPool keeps a reusable set of pre-configured HTTP clients.
// Acquire returns an idle client or builds a new one; Release returns
// it for reuse. There is no upper bound and no health check: a broken
// client goes back to the pool and fails fast on next use.
type ClientPool struct {
	mu      sync.Mutex
	idle    []*http.Client
	appKey  string
	token   string
	timeout time.Duration
}

// NewClientPool builds an empty pool. Clients carry the account
// credentials and a request timeout the upstream API does not provide
// on its own.
func NewClientPool(appKey, appToken string, timeout time.Duration) *ClientPool {
	return &ClientPool{appKey: appKey, token: appToken, timeout: timeout}
}

func (p *ClientPool) Acquire() *http.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.idle); n > 0 {
		client := p.idle[n-1]
		p.idle = p.idle[:n-1]
		return client
	}
	return &http.Client{
		Timeout:   p.timeout,
		Transport: &authTransport{appKey: p.appKey, appToken: p.token},
	}
}

func (p *ClientPool) Release(client *http.Client) {
	if client == nil {
		return
	}
	p.mu.Lock()
	p.idle = append(p.idle, client)
	p.mu.Unlock()
}

// Idle reports how many clients are currently parked in the pool.
func (p *ClientPool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
