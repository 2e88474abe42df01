package oms

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	domainErrors "omsrelay/internal/domain/errors"
	"omsrelay/internal/domain/model"
)

// testClient rewrites the per-account hostname to the httptest server
// so the client's URL construction stays untouched.
func testClient(t *testing.T, handler http.Handler) (*HTTPClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	target, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse test server url: %v", err)
	}

	pool := NewClientPool("key", "token", 5*time.Second)
	client := NewHTTPClient("shop", "example.test", pool, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	pool.Release(&http.Client{Transport: &authTransport{
		appKey:   "key",
		appToken: "token",
		base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = target.Host
			return http.DefaultTransport.RoundTrip(req)
		}),
	}})
	return client, server
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestPendingNotificationsParsesFeedInOrder(t *testing.T) {
	var gotPath, gotKey, gotAccept string
	client, server := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-VTEX-API-AppKey")
		gotAccept = r.Header.Get("Accept")
		io.WriteString(w, `[
			{"orderId":"1","status":"payment-approved","dateTime":"2024-01-01","commitToken":"tok-1"},
			{"orderId":"2","status":"canceled","dateTime":"2024-01-02","commitToken":"tok-2"}
		]`)
	}))
	defer server.Close()

	notifications, err := client.PendingNotifications(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/oms/pvt/feed/orders/status" {
		t.Fatalf("unexpected feed path %q", gotPath)
	}
	if gotKey != "key" || gotAccept != "application/json" {
		t.Fatalf("expected auth and accept headers, got key=%q accept=%q", gotKey, gotAccept)
	}
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}
	if notifications[0].OrderID != "1" || notifications[1].OrderID != "2" {
		t.Fatalf("feed order not preserved: %+v", notifications)
	}
	if notifications[0].CommitToken != "tok-1" {
		t.Fatalf("unexpected commit token %q", notifications[0].CommitToken)
	}
}

func TestPendingNotificationsErrorKinds(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		client, server := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"not":"an array"`)
		}))
		defer server.Close()

		if _, err := client.PendingNotifications(context.Background()); !errors.Is(err, domainErrors.ErrMalformedResponse) {
			t.Fatalf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("http failure", func(t *testing.T) {
		client, server := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		if _, err := client.PendingNotifications(context.Background()); !errors.Is(err, domainErrors.ErrUpstreamUnavailable) {
			t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		client, server := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		if _, err := client.PendingNotifications(context.Background()); !errors.Is(err, domainErrors.ErrUpstreamUnavailable) {
			t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
		}
	})
}

func TestFetchOrderPrefersStatusHint(t *testing.T) {
	client, server := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/oms/pvt/orders/42" {
			t.Errorf("unexpected order path %q", r.URL.Path)
		}
		io.WriteString(w, `{"origin":"o","affiliateId":"a","salesChannel":"2","status":"invoiced","value":"1000","creationDate":"2024-01-01T00:00:00","lastChange":"2024-01-01T00:00:00"}`)
	}))
	defer server.Close()

	order, err := client.FetchOrder(context.Background(), "42", model.StatusPaymentApproved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.StatusPaymentApproved {
		t.Fatalf("status hint must win over payload status, got %q", order.Status)
	}
	if order.OrderID != "42" || order.AccountName != "shop" {
		t.Fatalf("unexpected identity fields: %+v", order)
	}
	if order.Value != "1000" || order.Origin != "o" || order.SalesChannel != "2" {
		t.Fatalf("detail fields not carried over: %+v", order)
	}
}

func TestFetchOrderNumericValue(t *testing.T) {
	client, server := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"origin":"o","affiliateId":"","salesChannel":"2","value":2550,"creationDate":"c","lastChange":"l"}`)
	}))
	defer server.Close()

	order, err := client.FetchOrder(context.Background(), "7", model.StatusCanceled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Value != "2550" {
		t.Fatalf("expected numeric value preserved as string, got %q", order.Value)
	}
}

func TestAcknowledge(t *testing.T) {
	var body string
	client, server := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/oms/pvt/feed/orders/status/confirm" {
			t.Errorf("unexpected confirm request %s %s", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := client.Acknowledge(context.Background(), `tok"1`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != `[{"commitToken":"tok\"1"}]` {
		t.Fatalf("unexpected confirm body %s", body)
	}
}

func TestAcknowledgeNonSuccessStatus(t *testing.T) {
	client, server := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	err := client.Acknowledge(context.Background(), "tok-1")
	if !errors.Is(err, domainErrors.ErrAcknowledgeFailure) {
		t.Fatalf("expected ErrAcknowledgeFailure, got %v", err)
	}
	if !strings.Contains(err.Error(), "409") {
		t.Fatalf("expected status in error, got %v", err)
	}
}
