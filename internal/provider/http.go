package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 10
	maxErrorBody     = 512
)

// httpDoer sends JSON requests through a shared client, waiting on a rate limiter first.
type httpDoer struct {
	name    string
	client  *http.Client
	limiter *rate.Limiter
}

func newHTTPDoer(name string, timeout time.Duration, perSecond float64) *httpDoer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if perSecond <= 0 {
		perSecond = DefaultRateLimit
	}
	return &httpDoer{
		name:    name,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSecond), int(perSecond)+1),
	}
}

// do sends the request and decodes a 2xx JSON body into out when out is not nil.
// It returns the response headers so callers can follow pagination.
func (d *httpDoer) do(ctx context.Context, method, url string, headers map[string]string, body, out any) (http.Header, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s rate limiter: %w", d.name, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", d.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.Header, &APIError{Provider: d.name, StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(msg))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.Header, fmt.Errorf("decode %s response: %w", d.name, err)
	}
	return resp.Header, nil
}
