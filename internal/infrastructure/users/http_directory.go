package users

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yuzvak/eventsales-service/internal/domain/user"
)

const (
	// Up to this many ids are fetched one by one; above it the full list is cheaper.
	perIDThreshold = 8
	maxParallel    = 4
	maxBodyBytes   = 4 << 20
)

type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HTTPDirectory reads users from the users service: GET /users and GET /users/{id}.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (d *HTTPDirectory) LookupUsers(ctx context.Context, ids []string) (map[string]user.Summary, error) {
	if len(ids) == 0 {
		return map[string]user.Summary{}, nil
	}
	if len(ids) > perIDThreshold {
		return d.lookupFromList(ctx, ids)
	}

	var (
		mu    sync.Mutex
		found = make(map[string]user.Summary, len(ids))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for _, id := range ids {
		g.Go(func() error {
			u, ok, err := d.fetchOne(gctx, id)
			if err != nil || !ok {
				return err
			}
			mu.Lock()
			found[id] = u
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}

func (d *HTTPDirectory) fetchOne(ctx context.Context, id string) (user.Summary, bool, error) {
	var payload userPayload
	status, err := d.getJSON(ctx, "/users/"+url.PathEscape(id), &payload)
	if err != nil {
		return user.Summary{}, false, err
	}
	if status == http.StatusNotFound {
		return user.Summary{}, false, nil
	}
	if payload.ID == "" {
		payload.ID = id
	}
	return toSummary(payload), true, nil
}

func (d *HTTPDirectory) lookupFromList(ctx context.Context, ids []string) (map[string]user.Summary, error) {
	var payload []userPayload
	status, err := d.getJSON(ctx, "/users", &payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return map[string]user.Summary{}, nil
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	found := make(map[string]user.Summary, len(ids))
	for _, p := range payload {
		if _, ok := wanted[p.ID]; ok {
			found[p.ID] = toSummary(p)
		}
	}
	return found, nil
}

// getJSON decodes a 2xx body into dst. 404 is reported through the status, not as an error.
func (d *HTTPDirectory) getJSON(ctx context.Context, path string, dst interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("users service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("users service: GET %s returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return resp.StatusCode, fmt.Errorf("users service: decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

func toSummary(p userPayload) user.Summary {
	return user.Summary{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Found: true,
	}
}
