// Package directory provides the JSON-over-HTTP client for the upstream
// identity API.
//
// This is the fetch layer the rule engine deliberately knows nothing about:
// it owns snapshot caching (via an injected cache.Store with TTL) and the
// request-generation token callers use to discard stale responses when the
// operator switches context mid-fetch. Partial upstream data is tolerated;
// a missing rule list degrades classification to all-direct downstream.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/solatis/groupsight/internal/core/cache"
	"github.com/solatis/groupsight/internal/core/config"
	"github.com/solatis/groupsight/internal/types"
)

// Snapshot cache keys. Rules and the group catalog are directory-wide;
// per-user data is keyed by user ID.
const (
	rulesKey  = "snapshot:rules"
	groupsKey = "snapshot:groups"
)

// Client fetches users, groups and rules from the identity API.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	store   cache.Store
	ttl     time.Duration
	log     *zap.Logger

	generation atomic.Uint64
}

// NewClient creates a directory client with its dependencies.
func NewClient(cfg *config.Config, token string, store cache.Store, log *zap.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if token == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if _, err := url.Parse(cfg.DirectoryURL); err != nil {
		return nil, fmt.Errorf("invalid directory URL: %w", err)
	}

	return &Client{
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		baseURL: cfg.DirectoryURL,
		token:   token,
		store:   store,
		ttl:     cfg.CacheTTL,
		log:     log,
	}, nil
}

// Begin starts a new request generation and returns its token. Fetches
// carrying an older token fail with ErrStaleResponse once a newer
// generation begins, so a context switch mid-fetch cannot surface stale
// data as current.
func (c *Client) Begin() uint64 {
	return c.generation.Add(1)
}

// checkGeneration rejects results from superseded generations.
func (c *Client) checkGeneration(gen uint64) error {
	if current := c.generation.Load(); gen != current {
		return fmt.Errorf("%w: generation %d superseded by %d", types.ErrStaleResponse, gen, current)
	}
	return nil
}

// User fetches one user with their profile attributes.
func (c *Client) User(ctx context.Context, gen uint64, id types.UserID) (types.User, error) {
	var user types.User
	if err := c.getJSON(ctx, "/api/v1/users/"+url.PathEscape(string(id)), &user); err != nil {
		return types.User{}, err
	}
	if err := c.checkGeneration(gen); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// UserGroups fetches the groups a user is a member of.
func (c *Client) UserGroups(ctx context.Context, gen uint64, id types.UserID) ([]types.Group, error) {
	var groups []types.Group
	if err := c.getJSON(ctx, "/api/v1/users/"+url.PathEscape(string(id))+"/groups", &groups); err != nil {
		return nil, err
	}
	if err := c.checkGeneration(gen); err != nil {
		return nil, err
	}
	return groups, nil
}

// GroupMembers fetches the users belonging to a group, with their profile
// attributes. Not snapshot-cached: membership is the very thing under
// review, so it is always read fresh.
func (c *Client) GroupMembers(ctx context.Context, gen uint64, id types.GroupID) ([]types.User, error) {
	var users []types.User
	if err := c.getJSON(ctx, "/api/v1/groups/"+url.PathEscape(string(id))+"/users", &users); err != nil {
		return nil, err
	}
	if err := c.checkGeneration(gen); err != nil {
		return nil, err
	}
	return users, nil
}

// Groups fetches the directory group catalog, served from the snapshot
// cache when fresh.
func (c *Client) Groups(ctx context.Context, gen uint64) ([]types.Group, error) {
	var groups []types.Group
	if err := c.cachedJSON(ctx, groupsKey, "/api/v1/groups", &groups); err != nil {
		return nil, err
	}
	if err := c.checkGeneration(gen); err != nil {
		return nil, err
	}
	return groups, nil
}

// Rules fetches all group rules, served from the snapshot cache when fresh.
// An upstream 404 yields an empty list: deployments without the rules
// feature degrade to all-direct classification rather than erroring.
func (c *Client) Rules(ctx context.Context, gen uint64) ([]types.GroupRule, error) {
	var rules []types.GroupRule
	err := c.cachedJSON(ctx, rulesKey, "/api/v1/group-rules", &rules)
	if err != nil {
		var httpErr *StatusError
		if errors.As(err, &httpErr) && httpErr.Code == http.StatusNotFound {
			c.log.Warn("group rules endpoint not available, degrading to direct-only attribution")
			return nil, nil
		}
		return nil, err
	}
	if err := c.checkGeneration(gen); err != nil {
		return nil, err
	}
	return rules, nil
}

// Invalidate drops the directory-wide snapshots, forcing the next fetch to
// hit the upstream API.
func (c *Client) Invalidate(ctx context.Context) error {
	if err := c.store.Delete(ctx, rulesKey); err != nil {
		return err
	}
	return c.store.Delete(ctx, groupsKey)
}

// cachedJSON serves dest from the snapshot cache, falling back to the
// upstream API and refreshing the cache on a miss. Cache write failures
// are logged, not returned: a broken cache degrades performance, not
// correctness.
func (c *Client) cachedJSON(ctx context.Context, key, path string, dest any) error {
	if raw, found, err := c.store.Get(ctx, key); err == nil && found {
		if err := json.Unmarshal(raw, dest); err == nil {
			return nil
		}
		// Unreadable cache entry: drop it and re-fetch.
		_ = c.store.Delete(ctx, key)
	} else if err != nil {
		c.log.Warn("snapshot cache read failed", zap.String("key", key), zap.Error(err))
	}

	raw, err := c.getRaw(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warn("snapshot cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	raw, err := c.getRaw(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Path: path, Code: resp.StatusCode}
	}
	return body, nil
}

// StatusError is a non-200 response from the identity API.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("directory API %s returned status %d", e.Path, e.Code)
}
