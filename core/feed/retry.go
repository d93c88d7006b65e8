// ABOUTME: Retry/backoff controller wraps the feed client with a bounded attempt budget
// ABOUTME: Waits escalate on rate limiting; blocked and connection failures are not retried

package feed

import (
	"context"
	"time"

	coreerrors "community-digest/core/errors"
)

// backoff returns how long to wait after a failed attempt and whether the
// failure class is retryable at all. Rate-limited waits are counted against
// the budget even on the last attempt.
func backoff(kind coreerrors.FetchKind, attempt int) (time.Duration, bool) {
	switch kind {
	case coreerrors.KindRateLimited:
		return time.Duration(1<<uint(attempt)) * time.Second, true
	case coreerrors.KindTimeout:
		return 2 * time.Second, true
	case coreerrors.KindStatus:
		return time.Second, true
	default:
		return 0, false
	}
}

// retrieve drives attempts 1..maxRetries against ep and returns the first
// successful payload, or the error of the last attempt
func (s *Service) retrieve(ctx context.Context, community string, ep Endpoint, maxRetries int, report *Report) ([]byte, error) {
	log := s.deps.Log()

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		report.Attempts++

		payload, err := s.attempt(ctx, ep)
		if err == nil {
			return payload, nil
		}
		lastErr = err

		kind := coreerrors.KindOf(err)
		wait, retryable := backoff(kind, attempt)

		fields := map[string]interface{}{
			"community":   community,
			"endpoint":    ep.Name,
			"attempt":     attempt,
			"max_retries": maxRetries,
			"kind":        string(kind),
			"error":       err.Error(),
		}

		if !retryable {
			log.Warn("Fetch attempt failed, not retrying", fields)
			return nil, err
		}

		if kind != coreerrors.KindRateLimited && attempt == maxRetries {
			log.Warn("Fetch attempts exhausted", fields)
			return nil, err
		}

		fields["wait_seconds"] = wait.Seconds()
		log.Info("Fetch attempt failed, backing off", fields)
		report.Waits = append(report.Waits, wait)

		if err := s.opts.Sleep(ctx, wait); err != nil {
			return nil, &coreerrors.FetchError{Kind: coreerrors.KindTransport, Endpoint: ep.URL, Cause: err}
		}
	}

	log.Warn("Fetch attempts exhausted", map[string]interface{}{
		"community":   community,
		"endpoint":    ep.Name,
		"max_retries": maxRetries,
	})
	return nil, lastErr
}
