package interfaces

import (
	"context"
	"io"
)

// HTTPClient defines the interface for making HTTP requests.
// Implementations perform exactly one round trip per call; retry policy
// belongs to the caller so each attempt can be classified on its own.
type HTTPClient interface {
	// Get performs a single HTTP GET request to the specified URL.
	// headers are set on the request verbatim and override client defaults.
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)

	// Post performs an HTTP POST request with a JSON body.
	// The body should be closed by the caller after use.
	Post(ctx context.Context, url string, body io.Reader) (Response, error)
}

// Response defines the interface for HTTP responses.
type Response interface {
	// StatusCode returns the HTTP status code of the response.
	StatusCode() int

	// Body returns the response body as an io.ReadCloser.
	// The caller is responsible for closing the body when done.
	Body() io.ReadCloser

	// Header returns the value of the specified header.
	// Returns an empty string if the header is not present.
	Header(key string) string
}
