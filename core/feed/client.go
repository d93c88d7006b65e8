// ABOUTME: Feed client performs one HTTP attempt against an endpoint
// ABOUTME: Every failure is classified into a FetchError kind for the retry controller

package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"

	coreerrors "community-digest/core/errors"
)

// maxPayloadBytes caps how much of a response body is read
const maxPayloadBytes = 8 << 20

// attempt performs a single request and returns the body of a 200 response
func (s *Service) attempt(ctx context.Context, ep Endpoint) ([]byte, error) {
	if s.deps.HTTPClient == nil {
		return nil, &coreerrors.FetchError{
			Kind:     coreerrors.KindTransport,
			Endpoint: ep.URL,
			Cause:    errors.New("HTTP client not configured"),
		}
	}

	resp, err := s.deps.HTTPClient.Get(ctx, ep.URL, ep.Headers)
	if err != nil {
		return nil, classifyTransportError(ep.URL, err)
	}
	if resp == nil {
		return nil, &coreerrors.FetchError{
			Kind:     coreerrors.KindTransport,
			Endpoint: ep.URL,
			Cause:    errors.New("empty response"),
		}
	}
	body := resp.Body()
	if body != nil {
		defer body.Close()
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &coreerrors.FetchError{
			Kind:       kindForStatus(resp.StatusCode()),
			StatusCode: resp.StatusCode(),
			Endpoint:   ep.URL,
		}
	}

	if body == nil {
		return nil, nil
	}
	payload, err := io.ReadAll(io.LimitReader(body, maxPayloadBytes))
	if err != nil {
		fetchErr := classifyTransportError(ep.URL, err)
		fetchErr.Cause = fmt.Errorf("read body: %w", err)
		return nil, fetchErr
	}

	return payload, nil
}

func kindForStatus(status int) coreerrors.FetchKind {
	switch status {
	case http.StatusTooManyRequests:
		return coreerrors.KindRateLimited
	case http.StatusForbidden:
		return coreerrors.KindBlocked
	default:
		return coreerrors.KindStatus
	}
}

func classifyTransportError(endpoint string, err error) *coreerrors.FetchError {
	kind := coreerrors.KindTransport

	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		// caller gave up; never retried
		kind = coreerrors.KindTransport
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		kind = coreerrors.KindTimeout
	case isConnectionError(err):
		kind = coreerrors.KindConnection
	}

	return &coreerrors.FetchError{
		Kind:     kind,
		Endpoint: endpoint,
		Cause:    err,
	}
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	return errors.As(err, &opErr) ||
		errors.As(err, &dnsErr) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET)
}
