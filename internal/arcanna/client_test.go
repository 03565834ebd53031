package arcanna

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c := NewClient(ts.URL, "mgmt-key", "input-key", zap.NewNop(), Options{})
	return ts, c
}

func TestDo_SendsManagementKey(t *testing.T) {
	var gotKey string
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-arcanna-api-key")
		w.Write([]byte(`{}`))
	})

	if _, err := c.Get(context.Background(), "/api/v2/resources", ManagementKey, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "mgmt-key" {
		t.Fatalf("expected mgmt-key, got %q", gotKey)
	}
}

func TestDo_SendsInputKey(t *testing.T) {
	var gotKey string
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-arcanna-api-key")
		w.Write([]byte(`{}`))
	})

	if _, err := c.Get(context.Background(), "/api/v1/jobs", InputKey, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "input-key" {
		t.Fatalf("expected input-key, got %q", gotKey)
	}
}

func TestNewClient_InputKeyFallsBackToManagementKey(t *testing.T) {
	var gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-arcanna-api-key")
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL, "mgmt-key", "", zap.NewNop(), Options{})
	if _, err := c.Get(context.Background(), "/api/v1/jobs", InputKey, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "mgmt-key" {
		t.Fatalf("expected fallback to mgmt-key, got %q", gotKey)
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL+"/", "mgmt-key", "", zap.NewNop(), Options{})
	if _, err := c.Get(context.Background(), "/api/v1/health/", ManagementKey, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/v1/health/" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestDo_Non2xxIsAPIError(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail": "invalid api key"}`))
	})

	_, err := c.Get(context.Background(), "/api/v2/resources", ManagementKey, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != 403 {
		t.Fatalf("expected 403, got %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Message, "invalid api key") {
		t.Fatalf("expected body in message, got %q", apiErr.Message)
	}
}

func TestDo_LongErrorBodyTruncated(t *testing.T) {
	long := strings.Repeat("x", 1000)
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(long))
	})

	_, err := c.Get(context.Background(), "/api/v2/resources", ManagementKey, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if len(apiErr.Message) > 410 {
		t.Fatalf("expected truncated message, got %d bytes", len(apiErr.Message))
	}
}

func TestDo_CancelledContext(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Get(ctx, "/api/v2/resources", ManagementKey, nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestSendFeedback_WireFormat(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"status": "ok"}`))
	})

	if _, err := c.SendFeedback(context.Background(), 1402, "ev-1", "Escalate", "analyst"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Fatalf("expected PUT, got %s", gotMethod)
	}
	if gotPath != "/api/v1/events/1402/ev-1/feedback" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotBody["cortex_user"] != "MCP-analyst" {
		t.Fatalf("expected MCP-prefixed user, got %v", gotBody["cortex_user"])
	}
	if gotBody["feedback"] != "Escalate" {
		t.Fatalf("expected feedback Escalate, got %v", gotBody["feedback"])
	}
}

func TestSendEventWithID_RequiresEventID(t *testing.T) {
	calls := 0
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{}`))
	})

	if _, err := c.SendEventWithID(context.Background(), 1402, "", map[string]any{"a": 1}); err == nil {
		t.Fatal("expected error for empty event id")
	}
	if calls != 0 {
		t.Fatal("expected no request")
	}
}

func TestStartJob_SendsUsername(t *testing.T) {
	var gotQuery string
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{}`))
	})

	if _, err := c.StartJob(context.Background(), 1402, "analyst"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "username=analyst" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}

func TestTokenScopes_Decodes(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["read:jobs", "write:events:integration:77"]`))
	})

	scopes, err := c.TokenScopes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scopes) != 2 || scopes[0] != "read:jobs" {
		t.Fatalf("unexpected scopes %v", scopes)
	}
}

func TestTokenScopes_MalformedBody(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"scopes": []}`))
	})

	if _, err := c.TokenScopes(context.Background()); err == nil {
		t.Fatal("expected error for non-list body")
	}
}
