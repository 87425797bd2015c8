package unwind

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DocumentSource retrieves raw trade document text from a location. The
// pipeline neither retries nor caches; a failed fetch fails the request.
type DocumentSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPDocumentSource fetches documents over HTTP.
type HTTPDocumentSource struct {
	client *http.Client
}

// NewHTTPDocumentSource creates a source with the given request timeout.
func NewHTTPDocumentSource(timeout time.Duration) *HTTPDocumentSource {
	return &HTTPDocumentSource{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch performs a single GET and returns the response body. Any transport
// failure, including a non-2xx status, surfaces as *TransportError.
func (s *HTTPDocumentSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	return body, nil
}
