// ABOUTME: Digest runner drives one full batch: fetch every community, curate, save and deliver
// ABOUTME: Communities are fetched in order with a courtesy delay enforced by a rate limiter

package digest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"community-digest/core/domain"
	coreerrors "community-digest/core/errors"
	"community-digest/core/interfaces"
)

// ErrNoPosts is returned when no community produced a post
var ErrNoPosts = errors.New("no posts found; check your internet connection or community names")

// Settings are the batch parameters taken from configuration
type Settings struct {
	Communities       []string
	PostsPerCommunity int
	TimeWindow        string
	MaxRetries        int

	// Delay is the minimum gap between two community fetches
	Delay time.Duration

	OutputPath       string
	Subject          string
	SendOnCompletion bool
}

// Options control a single run
type Options struct {
	// SendEmail is false in preview mode
	SendEmail bool
}

// Result describes a finished run
type Result struct {
	Posts   []domain.Post
	Digest  *domain.Digest
	Path    string
	Emailed bool

	// Counts holds the number of posts fetched per community
	Counts map[string]int

	// EmailErr is set when delivery was attempted and failed
	EmailErr error
}

// Runner produces digests
type Runner struct {
	deps     interfaces.Dependencies
	fetcher  interfaces.PostFetcher
	curator  interfaces.Curator
	mailer   interfaces.Mailer
	settings Settings
	limiter  *rate.Limiter
}

// NewRunner creates a runner. mailer may be nil when delivery is not wanted.
func NewRunner(deps interfaces.Dependencies, fetcher interfaces.PostFetcher, curator interfaces.Curator, mailer interfaces.Mailer, settings Settings) *Runner {
	limit := rate.Inf
	if settings.Delay > 0 {
		limit = rate.Every(settings.Delay)
	}
	return &Runner{
		deps:     deps,
		fetcher:  fetcher,
		curator:  curator,
		mailer:   mailer,
		settings: settings,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Run fetches, curates, writes and optionally emails one digest
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	log := r.deps.Log()
	result := &Result{
		Posts:  []domain.Post{},
		Counts: make(map[string]int, len(r.settings.Communities)),
	}

	log.Info("Starting digest generation", map[string]interface{}{
		"communities": len(r.settings.Communities),
		"window":      r.settings.TimeWindow,
	})

	for _, community := range r.settings.Communities {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("digest cancelled: %w", err)
		}

		posts := r.fetcher.FetchPosts(ctx, community, r.settings.PostsPerCommunity, r.settings.TimeWindow, r.settings.MaxRetries)
		for _, post := range posts {
			if post.Community == "" {
				post.Community = strings.TrimPrefix(community, "r/")
			}
			result.Posts = append(result.Posts, post.WithCommunityTag())
		}
		result.Counts[community] = len(posts)
	}

	log.Info("Collected posts", map[string]interface{}{
		"posts": len(result.Posts),
	})

	if len(result.Posts) == 0 {
		return nil, ErrNoPosts
	}

	digest, err := r.curator.Curate(ctx, result.Posts)
	if err != nil {
		return nil, coreerrors.WrapError(err, "failed to generate digest")
	}
	result.Digest = digest

	path, err := r.write(digest)
	if err != nil {
		return nil, err
	}
	result.Path = path
	log.Info("Digest saved", map[string]interface{}{"path": path})

	if !opts.SendEmail || !r.settings.SendOnCompletion || r.mailer == nil {
		log.Info("Email skipped", map[string]interface{}{
			"preview":            !opts.SendEmail,
			"send_on_completion": r.settings.SendOnCompletion,
		})
		return result, nil
	}

	body := digest.HTML
	if body == "" {
		body = digest.Body
	}
	if err := r.mailer.Send(ctx, r.settings.Subject, body); err != nil {
		log.Error("Failed to email digest", map[string]interface{}{"error": err.Error()})
		result.EmailErr = err
		return result, nil
	}
	result.Emailed = true

	return result, nil
}

func (r *Runner) write(digest *domain.Digest) (string, error) {
	path := r.settings.OutputPath
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(digest.Body), 0o644); err != nil {
		return "", fmt.Errorf("failed to write digest: %w", err)
	}
	return path, nil
}
