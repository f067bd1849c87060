package store

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/httputil"
	"github.com/lifetree/lifetree/pkg/observability"
	"github.com/lifetree/lifetree/pkg/timeline"
)

// HTTPStore fetches snapshots from the backend API. The API resolves the
// owner from the bearer token, so the owner argument is only used for
// reporting.
type HTTPStore struct {
	BaseURL   string
	Token     string
	TrunkName string
	Client    *http.Client

	// Attempts and Delay tune retries. Zero values mean 3 attempts starting
	// at one second.
	Attempts int
	Delay    time.Duration
}

// NewHTTPStore returns a store reading {baseURL}/nodes with token.
func NewHTTPStore(baseURL, token, trunkName string) *HTTPStore {
	return &HTTPStore{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Token:     token,
		TrunkName: trunkName,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Snapshot performs GET {BaseURL}/nodes. Transport failures and 5xx
// responses are retried with exponential backoff.
func (s *HTTPStore) Snapshot(ctx context.Context, owner string) (*timeline.Snapshot, error) {
	start := time.Now()
	observability.Store().OnFetch(ctx, KindHTTP, owner)

	url := s.BaseURL + "/nodes"
	var snap *timeline.Snapshot
	err := s.retry(ctx, func() error {
		var err error
		snap, err = s.fetch(ctx, url)
		return err
	})
	return finish(ctx, KindHTTP, owner, start, snap, s.TrunkName, unwrapRetryable(err))
}

func (s *HTTPStore) retry(ctx context.Context, fn func() error) error {
	if s.Attempts == 0 && s.Delay == 0 {
		return httputil.RetryWithBackoff(ctx, fn)
	}
	delay := s.Delay
	if delay == 0 {
		delay = time.Second
	}
	return httputil.Retry(ctx, s.Attempts, delay, fn)
}

func (s *HTTPStore) fetch(ctx context.Context, url string) (*timeline.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "GET %s", url)
		}
		return nil, &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", url)}
	}
	defer resp.Body.Close()

	if err := httputil.StatusError(resp.StatusCode, url); err != nil {
		return nil, err
	}
	return timeline.Decode(resp.Body)
}

func unwrapRetryable(err error) error {
	if re, ok := err.(*httputil.RetryableError); ok {
		return re.Err
	}
	return err
}

// Close releases idle connections.
func (s *HTTPStore) Close() error {
	if s.Client != nil {
		s.Client.CloseIdleConnections()
	}
	return nil
}

var _ Store = (*HTTPStore)(nil)
