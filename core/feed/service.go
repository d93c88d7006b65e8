// ABOUTME: Feed service fetches top posts for a community across feed and JSON sources
// ABOUTME: Never fails past its boundary: every problem degrades to an empty list and a log entry

package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"community-digest/core/domain"
	coreerrors "community-digest/core/errors"
	"community-digest/core/interfaces"
)

// Service fetches community posts
type Service struct {
	deps    interfaces.Dependencies
	opts    Options
	atom    atomParser
	listing listingParser
}

// NewService creates a new feed service instance
func NewService(deps interfaces.Dependencies, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		deps:    deps,
		opts:    opts,
		atom:    newAtomParser(opts.Origin, opts.AlternateOrigin),
		listing: listingParser{origin: opts.Origin},
	}
}

// Request describes one community fetch
type Request struct {
	Community  string
	Limit      int
	Window     string
	MaxRetries int
}

// Report describes how a fetch went. Posts is never nil.
type Report struct {
	Posts []domain.Post

	// Stage is terminal: StageDone or StageExhausted
	Stage Stage

	// Source is the stage that produced Posts when Stage is StageDone
	Source Stage

	// Attempts counts HTTP attempts across all stages
	Attempts int

	// Waits lists every backoff wait in order
	Waits []time.Duration

	// LastErr is the last failure seen, if any
	LastErr error
}

// FetchPosts returns up to limit top posts of community over window.
// It never returns an error; failures yield an empty slice.
func (s *Service) FetchPosts(ctx context.Context, community string, limit int, window string, maxRetries int) []domain.Post {
	return s.Fetch(ctx, Request{
		Community:  community,
		Limit:      limit,
		Window:     window,
		MaxRetries: maxRetries,
	}).Posts
}

// Fetch runs the source-switching machine and reports the outcome
func (s *Service) Fetch(ctx context.Context, req Request) (report Report) {
	log := s.deps.Log()
	report = Report{Posts: []domain.Post{}, Stage: StagePrimary}

	defer func() {
		if r := recover(); r != nil {
			log.Error("Fetch panicked", map[string]interface{}{
				"community": req.Community,
				"panic":     fmt.Sprint(r),
			})
			report.Posts = []domain.Post{}
			report.Stage = StageExhausted
			report.LastErr = fmt.Errorf("panic: %v", r)
		}
	}()

	req.Community = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(req.Community), "r/"))
	if req.Community == "" || req.Limit <= 0 {
		log.Warn("Skipping fetch with empty community or non-positive limit", map[string]interface{}{
			"community": req.Community,
			"limit":     req.Limit,
		})
		report.Stage = StageExhausted
		return report
	}
	if req.Window == "" {
		req.Window = DefaultWindow
	}
	if req.MaxRetries <= 0 {
		req.MaxRetries = DefaultMaxRetries
	}

	stage := StagePrimary
	for !stage.Terminal() {
		posts, outcome, err := s.runStage(ctx, stage, req, &report)
		if err != nil {
			report.LastErr = err
		}

		next := stage.Next(outcome)
		if next == StageDone {
			report.Posts = normalize(posts, req.Community, req.Limit, s.opts.MaxExcerpt)
			report.Source = stage
			log.Info("Fetched community posts", map[string]interface{}{
				"community": req.Community,
				"source":    stage.String(),
				"posts":     len(report.Posts),
				"attempts":  report.Attempts,
			})
		} else if next != StageExhausted {
			log.Info("Switching source", map[string]interface{}{
				"community": req.Community,
				"from":      stage.String(),
				"to":        next.String(),
			})
		}
		stage = next
	}

	report.Stage = stage
	if stage == StageExhausted {
		fields := map[string]interface{}{
			"community": req.Community,
			"attempts":  report.Attempts,
		}
		if report.LastErr != nil {
			fields["error"] = report.LastErr.Error()
		}
		log.Warn("No posts fetched for community", fields)
	}

	return report
}

// runStage performs the requests of one stage and parses the payload
func (s *Service) runStage(ctx context.Context, stage Stage, req Request, report *Report) ([]rawPost, Outcome, error) {
	var (
		ep      Endpoint
		payload []byte
		err     error
	)

	switch stage {
	case StagePrimary:
		ep = feedEndpoint("primary", s.opts.Origin, req.Community, req.Window, req.Limit)
		payload, err = s.retrieve(ctx, req.Community, ep, req.MaxRetries, report)
	case StageAlternate:
		ep = feedEndpoint("alternate", s.opts.AlternateOrigin, req.Community, req.Window, req.Limit)
		report.Attempts++
		payload, err = s.attempt(ctx, ep)
	case StageFallback:
		ep = listingEndpoint(s.opts.Origin, req.Community, req.Window, req.Limit)
		report.Attempts++
		payload, err = s.attempt(ctx, ep)
	default:
		return nil, OutcomeFailed, nil
	}

	if err != nil {
		if stage != StagePrimary {
			s.deps.Log().Warn("Fetch attempt failed", map[string]interface{}{
				"community": req.Community,
				"endpoint":  ep.Name,
				"kind":      string(coreerrors.KindOf(err)),
				"error":     err.Error(),
			})
		}
		if coreerrors.IsBlocked(err) {
			return nil, OutcomeBlocked, err
		}
		return nil, OutcomeFailed, err
	}

	var posts []rawPost
	switch ep.Format {
	case FormatFeed:
		posts = s.atom.parse(payload, req.Limit)
	case FormatListing:
		posts = s.listing.parse(payload, req.Limit)
	}

	if len(posts) == 0 {
		return nil, OutcomeEmpty, &coreerrors.FetchError{
			Kind:     coreerrors.KindParse,
			Endpoint: ep.URL,
			Cause:    fmt.Errorf("no %s entries in payload", ep.Format),
		}
	}
	return posts, OutcomeRecords, nil
}
