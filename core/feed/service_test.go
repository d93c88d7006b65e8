package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-digest/core/domain"
	coreerrors "community-digest/core/errors"
	"community-digest/core/interfaces"
)

const thread1 = "https://www.reddit.com/r/golang/comments/aaa111/go_124/"
const thread2 = "https://www.reddit.com/r/golang/comments/bbb222/ask_golang/"

func newTestService(client interfaces.HTTPClient) (*Service, *sleepRecorder, *mockLogger) {
	rec := &sleepRecorder{}
	logger := &mockLogger{}
	svc := NewService(interfaces.Dependencies{
		HTTPClient: client,
		Logger:     logger,
	}, Options{Sleep: rec.sleep})
	return svc, rec, logger
}

func listingJSON(t *testing.T, posts ...map[string]interface{}) string {
	t.Helper()
	children := make([]map[string]interface{}, 0, len(posts))
	for _, p := range posts {
		children = append(children, map[string]interface{}{"kind": "t3", "data": p})
	}
	b, err := json.Marshal(map[string]interface{}{
		"kind": "Listing",
		"data": map[string]interface{}{"children": children},
	})
	require.NoError(t, err)
	return string(b)
}

func twoEntryFeed() string {
	return atomFeed(
		atomEntry("Go 1.24 is released", thread1,
			redditContent("Release notes inside", "https://go.dev/blog/go1.24", thread1)),
		atomEntry("Ask r/golang: error wrapping", thread2,
			redditContent("How do you wrap errors?", thread2, thread2)),
	)
}

func TestFetchPosts_PrimarySuccess(t *testing.T) {
	client := newScriptedClient(map[string][]step{
		"primary": {{status: 200, body: twoEntryFeed()}},
	})
	svc, rec, _ := newTestService(client)

	report := svc.Fetch(context.Background(), Request{Community: "golang", Limit: 5, Window: "week", MaxRetries: 3})

	require.Len(t, report.Posts, 2)
	assert.Equal(t, StageDone, report.Stage)
	assert.Equal(t, StagePrimary, report.Source)
	assert.Equal(t, 1, report.Attempts)
	assert.Empty(t, rec.waits)
	assert.Equal(t, []string{"primary"}, client.calls)

	first := report.Posts[0]
	assert.Equal(t, "golang", first.Community)
	assert.Equal(t, "Go 1.24 is released", first.Title)
	assert.Equal(t, "https://go.dev/blog/go1.24", first.URL)
	assert.Equal(t, thread1, first.ThreadURL)
	assert.Equal(t, 0, first.Score)
	assert.Contains(t, first.Text, "Release notes inside")
	assert.NotContains(t, first.Text, "[link]")
	assert.NotContains(t, first.Text, "[comments]")
	assert.NotContains(t, first.Text, "<")

	second := report.Posts[1]
	assert.Equal(t, thread2, second.URL, "self post links to its thread")
	assert.True(t, second.IsSelfPost())
}

func TestFetchPosts_RequestShape(t *testing.T) {
	var gotURL string
	var gotHeaders map[string]string
	client := &mockHTTPClient{
		getFunc: func(ctx context.Context, url string, headers map[string]string) (interfaces.Response, error) {
			gotURL = url
			gotHeaders = headers
			return &mockResponse{statusCode: 200, body: twoEntryFeed()}, nil
		},
	}
	svc, _, _ := newTestService(client)

	posts := svc.FetchPosts(context.Background(), "r/golang", 2, "month", 3)

	require.Len(t, posts, 2)
	assert.Equal(t, "https://www.reddit.com/r/golang/top/.rss?t=month&limit=2", gotURL)
	assert.Equal(t, FeedAccept, gotHeaders["Accept"])
}

func TestFetchPosts_BlockedSwitchesToAlternateThenJSON(t *testing.T) {
	client := newScriptedClient(map[string][]step{
		"primary":   {{status: 403}},
		"alternate": {{status: 403}},
		"json": {{status: 200, body: listingJSON(t,
			map[string]interface{}{"title": "One", "score": 10, "url": "https://a.example/1", "permalink": "/r/golang/comments/1/one/", "selftext": ""},
			map[string]interface{}{"title": "Two", "score": 20, "url": "https://a.example/2", "permalink": "/r/golang/comments/2/two/", "selftext": "body"},
			map[string]interface{}{"title": "Three", "score": 30, "url": "https://a.example/3", "permalink": "/r/golang/comments/3/three/", "selftext": ""},
		)}},
	})
	svc, rec, _ := newTestService(client)

	report := svc.Fetch(context.Background(), Request{Community: "golang", Limit: 5, Window: "week", MaxRetries: 3})

	require.Len(t, report.Posts, 3)
	assert.Equal(t, []string{"primary", "alternate", "json"}, client.calls)
	assert.Empty(t, rec.waits, "blocked responses are never retried")
	assert.Equal(t, StageFallback, report.Source)
	assert.Equal(t, 3, report.Attempts)

	assert.Equal(t, "Two", report.Posts[1].Title)
	assert.Equal(t, 20, report.Posts[1].Score)
	assert.Equal(t, "https://www.reddit.com/r/golang/comments/2/two/", report.Posts[1].ThreadURL)
	assert.Equal(t, "body", report.Posts[1].Text)
	assert.Equal(t, ListingAccept, client.headers[2]["Accept"])
}

func TestFetchPosts_AlternateSucceeds(t *testing.T) {
	client := newScriptedClient(map[string][]step{
		"primary":   {{status: 403}},
		"alternate": {{status: 200, body: twoEntryFeed()}},
	})
	svc, _, _ := newTestService(client)

	report := svc.Fetch(context.Background(), Request{Community: "golang", Limit: 5, MaxRetries: 3})

	assert.Len(t, report.Posts, 2)
	assert.Equal(t, StageAlternate, report.Source)
	assert.Equal(t, 0, client.count("json"))
}

func TestFetchPosts_AlternateFailureFallsBack(t *testing.T) {
	client := newScriptedClient(map[string][]step{
		"primary":   {{status: 403}},
		"alternate": {{status: 500}},
		"json":      {{status: 200, body: listingJSON(t, map[string]interface{}{"title": "Only", "permalink": "/r/golang/comments/9/only/"})}},
	})
	svc, rec, _ := newTestService(client)

	report := svc.Fetch(context.Background(), Request{Community: "golang", Limit: 5, MaxRetries: 3})

	require.Len(t, report.Posts, 1)
	assert.Equal(t, 1, client.count("alternate"), "alternate gets a single attempt")
	assert.Empty(t, rec.waits)
}

func TestFetchPosts_RateLimitedThenSuccess(t *testing.T) {
	client := newScriptedClient(map[string][]step{
		"primary": {
			{status: 429},
			{status: 429},
			{status: 200, body: atomFeed(atomEntry("Recovered", thread1, ""))},
		},
	})
	svc, rec, _ := newTestService(client)

	report := svc.Fetch(context.Background(), Request{Community: "golang", Limit: 5, MaxRetries: 3})

	require.Len(t, report.Posts, 1)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.waits)
	assert.Equal(t, 3, report.Attempts)
	assert.Equal(t, thread1, report.Posts[0].URL)
}

func TestFetchPosts_RateLimitedEveryAttempt(t *testing.T) {
	client := newScriptedClient(map[string][]step{
		"primary": {{status: 429}},
	})
	svc, rec, _ := newTestService(client)

	report := svc.Fetch(context.Background(), Request{Community: "golang", Limit: 5, MaxRetries: 3})

	assert.Empty(t, report.Posts)
	assert.NotNil(t, report.Posts)
	assert.Equal(t, StageExhausted, report.Stage)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, rec.waits)
	assert.Equal(t, 3, client.count("primary"))
	assert.Equal(t, 0, client.count("json"))
	assert.True(t, coreerrors.IsRateLimited(report.LastErr))
}

func TestFetchPosts_EmptyFeedFallsBackToJSON(t *testing.T) {
	client := newScriptedClient(map[string][]step{
		"primary": {{status: 200, body: atomFeed()}},
		"json":    {{status: 200, body: listingJSON(t, map[string]interface{}{"title": "From JSON", "permalink": "/r/golang/comments/5/x/"})}},
	})
	svc, _, _ := newTestService(client)

	report := svc.Fetch(context.Background(), Request{Community: "golang", Limit: 5, MaxRetries: 3})

	require.Len(t, report.Posts, 1)
	assert.Equal(t, "From JSON", report.Posts[0].Title)
	assert.Equal(t, []string{"primary", "json"}, client.calls)
}

func TestFetchPosts_UnparsableFeedFallsBackToJSON(t *testing.T) {
	client := newScriptedClient(map[string][]step{
		"primary": {{status: 200, body: "<html><body>maintenance</body></html>"}},
		"json":    {{status: 200, body: `{"data":{"children":[]}}`}},
	})
	svc, _, logger := newTestService(client)

	report := svc.Fetch(context.Background(), Request{Community: "golang", Limit: 5, MaxRetries: 3})

	assert.Empty(t, report.Posts)
	assert.Equal(t, StageExhausted, report.Stage)
	assert.Equal(t, 1, client.count("json"))
	assert.Contains(t, logger.messages, "warn: No posts fetched for community")
}

func TestFetchPosts_TimeoutsExhaustBudget(t *testing.T) {
	client := newScriptedClient(map[string][]step{
		"primary": {{err: timeoutError{}}},
	})
	svc, rec, _ := newTestService(client)

	report := svc.Fetch(context.Background(), Request{Community: "golang", Limit: 5, MaxRetries: 3})

	assert.Empty(t, report.Posts)
	assert.Equal(t, 3, client.count("primary"))
	assert.Equal(t, 0, client.count("json"), "exhausted primary does not fall back")
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, rec.waits)
	assert.True(t, coreerrors.IsTimeout(report.LastErr))
}

func TestFetchPosts_ServerErrorsRetryWithShortWait(t *testing.T) {
	client := newScriptedClient(map[string][]step{
		"primary": {{status: 502}, {status: 200, body: twoEntryFeed()}},
	})
	svc, rec, _ := newTestService(client)

	posts := svc.FetchPosts(context.Background(), "golang", 5, "week", 3)

	assert.Len(t, posts, 2)
	assert.Equal(t, []time.Duration{time.Second}, rec.waits)
}

func TestFetchPosts_ConnectionFailureNotRetried(t *testing.T) {
	client := newScriptedClient(map[string][]step{
		"primary": {{err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}}},
	})
	svc, rec, _ := newTestService(client)

	report := svc.Fetch(context.Background(), Request{Community: "golang", Limit: 5, MaxRetries: 3})

	assert.Empty(t, report.Posts)
	assert.Equal(t, 1, report.Attempts)
	assert.Empty(t, rec.waits)
	assert.Equal(t, coreerrors.KindConnection, coreerrors.KindOf(report.LastErr))
}

func TestFetchPosts_UnknownTransportErrorNotRetried(t *testing.T) {
	client := newScriptedClient(map[string][]step{
		"primary": {{err: errors.New("tls: handshake failure")}},
	})
	svc, rec, _ := newTestService(client)

	posts := svc.FetchPosts(context.Background(), "golang", 5, "week", 3)

	assert.Empty(t, posts)
	assert.Equal(t, 1, client.count("primary"))
	assert.Empty(t, rec.waits)
}

func TestFetchPosts_SelfHostLinkUsesThread(t *testing.T) {
	body := atomFeed(atomEntry("Crosspost", thread1,
		redditContent("see other thread", "https://www.reddit.com/r/programming/comments/zzz/other/", thread1)))
	client := newScriptedClient(map[string][]step{
		"primary": {{status: 200, body: body}},
	})
	svc, _, _ := newTestService(client)

	posts := svc.FetchPosts(context.Background(), "golang", 5, "week", 3)

	require.Len(t, posts, 1)
	assert.Equal(t, thread1, posts[0].URL)
	assert.Equal(t, thread1, posts[0].ThreadURL)
}

func TestFetchPosts_LimitBoundsResult(t *testing.T) {
	entries := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		entries = append(entries, atomEntry("Post", thread1, ""))
	}
	client := newScriptedClient(map[string][]step{
		"primary": {{status: 200, body: atomFeed(entries...)}},
	})
	svc, _, _ := newTestService(client)

	posts := svc.FetchPosts(context.Background(), "golang", 4, "week", 3)

	assert.Len(t, posts, 4)
}

func TestFetchPosts_LongTextTruncated(t *testing.T) {
	long := strings.Repeat("é", domain.MaxExcerptLength+300)
	client := newScriptedClient(map[string][]step{
		"primary": {{status: 403}},
		"alternate": {{status: 403}},
		"json": {{status: 200, body: listingJSON(t, map[string]interface{}{
			"title": "Long", "permalink": "/r/golang/comments/1/long/", "selftext": long,
		})}},
	})
	svc, _, _ := newTestService(client)

	posts := svc.FetchPosts(context.Background(), "golang", 5, "week", 3)

	require.Len(t, posts, 1)
	assert.Equal(t, domain.MaxExcerptLength, len([]rune(posts[0].Text)))
	assert.True(t, posts[0].IsValid())
}

func TestFetchPosts_InvalidArguments(t *testing.T) {
	client := newScriptedClient(map[string][]step{})
	svc, _, _ := newTestService(client)

	tests := []struct {
		name      string
		community string
		limit     int
	}{
		{name: "empty community", community: "", limit: 5},
		{name: "prefix only", community: "r/", limit: 5},
		{name: "zero limit", community: "golang", limit: 0},
		{name: "negative limit", community: "golang", limit: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := svc.FetchPosts(context.Background(), tt.community, tt.limit, "week", 3)
			assert.NotNil(t, posts)
			assert.Empty(t, posts)
		})
	}
	assert.Empty(t, client.calls)
}

func TestFetchPosts_DefaultsRetriesAndWindow(t *testing.T) {
	client := newScriptedClient(map[string][]step{
		"primary": {{status: 500}},
	})
	svc, rec, _ := newTestService(client)

	report := svc.Fetch(context.Background(), Request{Community: "golang", Limit: 5})

	assert.Equal(t, StageExhausted, report.Stage)
	assert.Equal(t, DefaultMaxRetries, client.count("primary"))
	assert.Len(t, rec.waits, DefaultMaxRetries-1)
}

func TestFetchPosts_PanicIsContained(t *testing.T) {
	client := &mockHTTPClient{
		getFunc: func(ctx context.Context, url string, headers map[string]string) (interfaces.Response, error) {
			panic("boom")
		},
	}
	svc, _, logger := newTestService(client)

	var report Report
	assert.NotPanics(t, func() {
		report = svc.Fetch(context.Background(), Request{Community: "golang", Limit: 5, MaxRetries: 3})
	})
	assert.NotNil(t, report.Posts)
	assert.Empty(t, report.Posts)
	assert.Equal(t, StageExhausted, report.Stage)
	assert.Contains(t, logger.messages, "error: Fetch panicked")
}

func TestFetchPosts_NilClient(t *testing.T) {
	svc := NewService(interfaces.Dependencies{}, Options{})

	posts := svc.FetchPosts(context.Background(), "golang", 5, "week", 1)

	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestFetchPosts_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := newScriptedClient(map[string][]step{
		"primary": {{status: 429}},
	})
	rec := &sleepRecorder{}
	svc := NewService(interfaces.Dependencies{HTTPClient: client}, Options{
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return rec.sleep(ctx, d)
		},
	})

	report := svc.Fetch(ctx, Request{Community: "golang", Limit: 5, MaxRetries: 3})

	assert.Empty(t, report.Posts)
	assert.Equal(t, 1, client.count("primary"))
	assert.Len(t, rec.waits, 1)
}
