package oms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	domainErrors "omsrelay/internal/domain/errors"
	"omsrelay/internal/domain/model"
)

// Client exposes the three OMS operations the relay needs.
type Client interface {
	PendingNotifications(ctx context.Context) ([]model.FeedNotification, error)
	FetchOrder(ctx context.Context, orderID string, hint model.Status) (*model.Order, error)
	Acknowledge(ctx context.Context, commitToken string) error
}

// HTTPClient implements Client against the per-account OMS hostname,
// drawing pre-configured clients from a shared pool.
type HTTPClient struct {
	account string
	host    string
	pool    *ClientPool
	logger  *slog.Logger
}

// orderDetail mirrors the order-detail JSON payload. Value arrives as
// a bare number in some OMS revisions and as a string in others.
type orderDetail struct {
	Origin       string      `json:"origin"`
	AffiliateID  string      `json:"affiliateId"`
	SalesChannel string      `json:"salesChannel"`
	Value        json.Number `json:"value"`
	CreationDate string      `json:"creationDate"`
	LastChange   string      `json:"lastChange"`
}

type ackEntry struct {
	CommitToken string `json:"commitToken"`
}

// NewHTTPClient creates the OMS client for one account.
func NewHTTPClient(account, host string, pool *ClientPool, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{account: account, host: host, pool: pool, logger: logger}
}

func (c *HTTPClient) baseURL() string {
	return fmt.Sprintf("http://%s.%s", c.account, c.host)
}

// PendingNotifications drains the feed endpoint: one FeedNotification
// per JSON array element, feed order preserved. No internal retry; the
// next scheduled cycle re-reads anything left unacknowledged.
func (c *HTTPClient) PendingNotifications(ctx context.Context) ([]model.FeedNotification, error) {
	body, err := c.get(ctx, c.baseURL()+"/api/oms/pvt/feed/orders/status")
	if err != nil {
		return nil, err
	}

	var notifications []model.FeedNotification
	if err := json.Unmarshal(body, &notifications); err != nil {
		return nil, fmt.Errorf("%w: feed payload: %v", domainErrors.ErrMalformedResponse, err)
	}
	return notifications, nil
}

// FetchOrder retrieves the full order record. The status hint from the
// feed is authoritative; the status embedded in the detail snapshot is
// ignored as stale.
func (c *HTTPClient) FetchOrder(ctx context.Context, orderID string, hint model.Status) (*model.Order, error) {
	body, err := c.get(ctx, c.baseURL()+"/api/oms/pvt/orders/"+orderID)
	if err != nil {
		return nil, err
	}

	var detail orderDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("%w: order %s: %v", domainErrors.ErrMalformedResponse, orderID, err)
	}

	return &model.Order{
		AccountName:  c.account,
		OrderID:      orderID,
		Origin:       detail.Origin,
		AffiliateID:  detail.AffiliateID,
		SalesChannel: detail.SalesChannel,
		Value:        detail.Value.String(),
		CreationDate: detail.CreationDate,
		LastChange:   detail.LastChange,
		Status:       hint,
	}, nil
}

// Acknowledge echoes the commit token back as a one-element JSON array
// so the notification is not redelivered.
func (c *HTTPClient) Acknowledge(ctx context.Context, commitToken string) error {
	payload, err := json.Marshal([]ackEntry{{CommitToken: commitToken}})
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrAcknowledgeFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/api/oms/pvt/feed/orders/status/confirm", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrAcknowledgeFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.pool.Acquire()
	resp, err := client.Do(req)
	if err != nil {
		c.pool.Release(client)
		return fmt.Errorf("%w: confirm: %v", domainErrors.ErrAcknowledgeFailure, err)
	}
	defer resp.Body.Close()
	c.pool.Release(client)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("feed confirm rejected", slog.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: confirm status %s", domainErrors.ErrAcknowledgeFailure, resp.Status)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrUpstreamUnavailable, err)
	}

	client := c.pool.Acquire()
	resp, err := client.Do(req)
	if err != nil {
		c.pool.Release(client)
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	c.pool.Release(client)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("oms request failed", slog.String("url", url), slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("%w: status %s", domainErrors.ErrUpstreamUnavailable, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrUpstreamUnavailable, err)
	}
	return body, nil
}
