package swqos

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const DEFAULT_SUBMIT_TIMEOUT = 3 * time.Second

// newSubmitClient builds the HTTP client shared by all relay dialects.
// Connections are kept warm with a short idle timeout; retries stay off on
// the submit path because a relay that did not answer in time has already
// lost the race.
func newSubmitClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DEFAULT_SUBMIT_TIMEOUT
	}
	transport := &http.Transport{
		MaxIdleConns:        256,
		MaxIdleConnsPerHost: 64,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 2 * time.Second,
		ForceAttemptHTTP2:   true,
		DisableCompression:  true,
	}
	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
	rc.RetryMax = 0
	rc.Logger = nil
	return rc.StandardClient()
}

type wireClient struct {
	endpoint string
	header   http.Header
	http     *http.Client
}

func newWireClient(endpoint string, header http.Header, timeout time.Duration) *wireClient {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")
	return &wireClient{
		endpoint: endpoint,
		header:   header,
		http:     newSubmitClient(timeout),
	}
}

// post sends one request and returns the raw body along with the HTTP
// status. Callers decide what a non-2xx status means for their dialect.
func (w *wireClient) post(ctx context.Context, body []byte) (respBody []byte, status int, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header = w.header.Clone()
	resp, err := w.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	respBody, err = io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return respBody, resp.StatusCode, nil
}
