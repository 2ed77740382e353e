package fhir

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseBytes caps how much of an upstream response body is read.
const maxResponseBytes = 1 << 20 // 1 MiB

// Endpoint auth schemes.
const (
	AuthNone   = "none"
	AuthAPIKey = "api_key"
	AuthBearer = "bearer"
)

// FetchRequest describes a single outbound call to a hospital's FHIR endpoint.
type FetchRequest struct {
	URL       string
	Method    string // GET or POST
	AuthType  string
	AuthToken string
	// Params are sent as query parameters for GET and as a JSON body for POST.
	Params map[string]string
}

// FetchResult is the outcome of a successful fetch.
type FetchResult struct {
	Body       string
	StatusCode int
	ElapsedMs  int64
}

// FetchError describes a failed fetch. It always carries the elapsed time so
// callers can record response latency even for failures.
type FetchError struct {
	URL        string
	StatusCode int
	ElapsedMs  int64
	Summary    string
}

func (e *FetchError) Error() string {
	return e.Summary
}

// Client performs outbound FHIR data fetches with a bounded timeout.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch calls the given endpoint and returns its body. Success requires a 2xx
// status and a non-empty body that parses as JSON; anything else returns a
// *FetchError.
func (c *Client) Fetch(ctx context.Context, fr FetchRequest) (*FetchResult, error) {
	method := strings.ToUpper(fr.Method)
	if method == "" {
		method = http.MethodGet
	}

	var req *http.Request
	var err error

	switch method {
	case http.MethodGet:
		target := fr.URL
		if len(fr.Params) > 0 {
			q := url.Values{}
			for k, v := range fr.Params {
				q.Set(k, v)
			}
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target = target + sep + q.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	case http.MethodPost:
		payload, _ := json.Marshal(fr.Params)
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, fr.URL, bytes.NewReader(payload))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	default:
		return nil, &FetchError{URL: fr.URL, Summary: fmt.Sprintf("unsupported method %q", fr.Method)}
	}
	if err != nil {
		return nil, &FetchError{URL: fr.URL, Summary: "building request: " + err.Error()}
	}

	req.Header.Set("Accept", "application/fhir+json, application/json")
	switch fr.AuthType {
	case AuthAPIKey:
		req.Header.Set("X-API-Key", fr.AuthToken)
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+fr.AuthToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		return nil, &FetchError{URL: fr.URL, ElapsedMs: elapsed, Summary: "endpoint unreachable: " + err.Error()}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &FetchError{URL: fr.URL, StatusCode: resp.StatusCode, ElapsedMs: elapsed, Summary: "reading response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		summary := fmt.Sprintf("non-2xx response: %d", resp.StatusCode)
		// FHIR servers report failures as an OperationOutcome; surface its
		// diagnostics when present.
		if oo := ParseOutcome(bodyBytes); oo != nil {
			if diag := oo.Diagnostics(); diag != "" {
				summary = fmt.Sprintf("non-2xx response: %d (%s)", resp.StatusCode, diag)
			}
		}
		return nil, &FetchError{URL: fr.URL, StatusCode: resp.StatusCode, ElapsedMs: elapsed, Summary: summary}
	}

	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil, &FetchError{URL: fr.URL, StatusCode: resp.StatusCode, ElapsedMs: elapsed, Summary: "empty response body"}
	}
	if !json.Valid(bodyBytes) {
		return nil, &FetchError{URL: fr.URL, StatusCode: resp.StatusCode, ElapsedMs: elapsed, Summary: "malformed JSON response"}
	}

	return &FetchResult{
		Body:       string(bodyBytes),
		StatusCode: resp.StatusCode,
		ElapsedMs:  elapsed,
	}, nil
}
