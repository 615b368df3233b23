package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/pkg/logger"
)

// ErrNoSession is returned when a request context carries no session.
var ErrNoSession = errors.New("no session available for this request")

const defaultTimeout = 30 * time.Second

// httpClient is the shared plumbing for both API clients: URL
// normalization, session headers, and JSON request/response handling.
type httpClient struct {
	http *http.Client
	log  *logger.Logger
}

func newHTTPClient(log *logger.Logger) httpClient {
	return httpClient{
		http: &http.Client{Timeout: defaultTimeout},
		log:  log,
	}
}

// joinURL strips trailing slashes on the base, ensures a leading slash on
// the path, and concatenates.
func joinURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

type requestOptions struct {
	icalSupport bool
}

// doJSON issues one authenticated JSON request and decodes the response
// into out (skipped when out is nil).
func (c httpClient) doJSON(ctx context.Context, method, url string, body, out any, opts requestOptions) error {
	session, ok := model.SessionFromContext(ctx)
	if !ok {
		return ErrNoSession
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Session-Token", session.Session)
	if session.ClusterID != "" {
		req.Header.Set("X-Cluster-ID", session.ClusterID)
	}
	if opts.icalSupport {
		req.Header.Set("X-Supports-ICal", "true")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s returned %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
