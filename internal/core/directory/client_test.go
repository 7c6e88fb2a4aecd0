package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/solatis/groupsight/internal/core/cache"
	"github.com/solatis/groupsight/internal/core/config"
	"github.com/solatis/groupsight/internal/types"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.DirectoryURL = baseURL
	cfg.CacheTTL = time.Minute
	return cfg
}

func TestClient_User(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/users/u1" {
			t.Errorf("path = %q, want /api/v1/users/u1", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want Bearer tok", got)
		}
		w.Write([]byte(`{
			"id": "u1",
			"login": "ana",
			"displayName": "Ana",
			"attributes": {"department": "Sales", "tier": 2, "active": true, "manager": null}
		}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), "tok", cache.NewMemory(), nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	gen := client.Begin()
	user, err := client.User(context.Background(), gen, "u1")
	if err != nil {
		t.Fatalf("User failed: %v", err)
	}
	if user.ID != "u1" || user.Login != "ana" {
		t.Errorf("user = %+v", user)
	}

	if got := user.Attributes.Lookup("department"); got.Str != "Sales" {
		t.Errorf("department = %v, want Sales", got)
	}
	if got := user.Attributes.Lookup("tier"); got.Kind != types.AttributeNumber || got.Num != 2 {
		t.Errorf("tier = %v, want number 2", got)
	}
	if got := user.Attributes.Lookup("active"); got.Kind != types.AttributeBool || !got.Bool {
		t.Errorf("active = %v, want true", got)
	}
	if got := user.Attributes.Lookup("manager"); !got.IsNull() {
		t.Errorf("manager = %v, want null", got)
	}
	if got := user.Attributes.Lookup("missing"); !got.IsNull() {
		t.Errorf("missing attribute = %v, want null", got)
	}
}

func TestClient_RulesCaching(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`[{"id": "r1", "name": "sales", "status": "ACTIVE", "condition": "user.department == \"Sales\"", "groupIds": ["g1"], "excludedUserIds": []}]`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), "tok", cache.NewMemory(), nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	ctx := context.Background()

	gen := client.Begin()
	rules, err := client.Rules(ctx, gen)
	if err != nil {
		t.Fatalf("Rules failed: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != "r1" || !rules[0].IsActive() {
		t.Fatalf("rules = %+v", rules)
	}

	// Second fetch within TTL: served from the snapshot cache.
	gen = client.Begin()
	if _, err := client.Rules(ctx, gen); err != nil {
		t.Fatalf("Rules (cached) failed: %v", err)
	}
	if hits != 1 {
		t.Errorf("upstream hits = %d, want 1 (second read should be cached)", hits)
	}

	// After invalidation the upstream is consulted again.
	if err := client.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	gen = client.Begin()
	if _, err := client.Rules(ctx, gen); err != nil {
		t.Fatalf("Rules (after invalidate) failed: %v", err)
	}
	if hits != 2 {
		t.Errorf("upstream hits = %d, want 2", hits)
	}
}

func TestClient_RulesEndpointMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), "tok", cache.NewMemory(), nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	gen := client.Begin()
	rules, err := client.Rules(context.Background(), gen)
	if err != nil {
		t.Fatalf("Rules failed: %v, want graceful degradation", err)
	}
	if rules != nil {
		t.Errorf("rules = %v, want nil", rules)
	}
}

func TestClient_StaleGeneration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "u1"}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), "tok", cache.NewMemory(), nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	gen := client.Begin()
	client.Begin() // operator switched context; gen is now stale

	_, err = client.User(context.Background(), gen, "u1")
	if !errors.Is(err, types.ErrStaleResponse) {
		t.Errorf("User error = %v, want ErrStaleResponse", err)
	}
}

func TestNewClient_Validation(t *testing.T) {
	store := cache.NewMemory()
	cfg := config.Default()

	if _, err := NewClient(nil, "tok", store, nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewClient(cfg, "", store, nil); err == nil {
		t.Error("expected error for empty token")
	}
	if _, err := NewClient(cfg, "tok", nil, nil); err == nil {
		t.Error("expected error for nil store")
	}
}
