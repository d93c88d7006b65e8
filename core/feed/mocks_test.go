package feed

import (
	"context"
	"errors"
	"html"
	"io"
	"strings"
	"sync"
	"time"

	"community-digest/core/interfaces"
)

// mockHTTPClient is a mock implementation of the HTTPClient interface
type mockHTTPClient struct {
	getFunc  func(ctx context.Context, url string, headers map[string]string) (interfaces.Response, error)
	postFunc func(ctx context.Context, url string, body io.Reader) (interfaces.Response, error)
}

func (m *mockHTTPClient) Get(ctx context.Context, url string, headers map[string]string) (interfaces.Response, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, url, headers)
	}
	return nil, nil
}

func (m *mockHTTPClient) Post(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
	if m.postFunc != nil {
		return m.postFunc(ctx, url, body)
	}
	return nil, nil
}

// mockResponse is a mock implementation of the Response interface
type mockResponse struct {
	statusCode int
	body       string
	headers    map[string]string
}

func (m *mockResponse) StatusCode() int {
	return m.statusCode
}

func (m *mockResponse) Body() io.ReadCloser {
	return io.NopCloser(strings.NewReader(m.body))
}

func (m *mockResponse) Header(key string) string {
	if m.headers != nil {
		return m.headers[key]
	}
	return ""
}

// step is one scripted answer: either a response or a transport error
type step struct {
	status int
	body   string
	err    error
}

// scriptedClient answers per endpoint tier. The last step of a script
// repeats once the script runs out.
type scriptedClient struct {
	mu      sync.Mutex
	scripts map[string][]step
	calls   []string
	headers []map[string]string
}

func newScriptedClient(scripts map[string][]step) *scriptedClient {
	return &scriptedClient{scripts: scripts}
}

func tierOf(url string) string {
	switch {
	case strings.Contains(url, "/top.json"):
		return "json"
	case strings.HasPrefix(url, DefaultAlternateOrigin):
		return "alternate"
	default:
		return "primary"
	}
}

func (c *scriptedClient) Get(ctx context.Context, url string, headers map[string]string) (interfaces.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tier := tierOf(url)
	c.calls = append(c.calls, tier)
	c.headers = append(c.headers, headers)

	script := c.scripts[tier]
	if len(script) == 0 {
		return nil, errors.New("unscripted endpoint " + tier)
	}
	s := script[0]
	if len(script) > 1 {
		c.scripts[tier] = script[1:]
	}

	if s.err != nil {
		return nil, s.err
	}
	return &mockResponse{statusCode: s.status, body: s.body}, nil
}

func (c *scriptedClient) Post(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
	return nil, errors.New("not implemented")
}

func (c *scriptedClient) count(tier string) int {
	n := 0
	for _, call := range c.calls {
		if call == tier {
			n++
		}
	}
	return n
}

// mockLogger is a mock implementation of the Logger interface
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockLogger) record(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, level+": "+msg)
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) { m.record("debug", msg) }
func (m *mockLogger) Info(msg string, fields map[string]interface{})  { m.record("info", msg) }
func (m *mockLogger) Warn(msg string, fields map[string]interface{})  { m.record("warn", msg) }
func (m *mockLogger) Error(msg string, fields map[string]interface{}) { m.record("error", msg) }

// sleepRecorder replaces real backoff waits
type sleepRecorder struct {
	waits []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

// timeoutError satisfies net.Error with Timeout() == true
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func atomEntry(title, thread, content string) string {
	var b strings.Builder
	b.WriteString("<entry>")
	b.WriteString(`<author><name>/u/gopher</name><uri>https://www.reddit.com/user/gopher</uri></author>`)
	b.WriteString(`<category term="golang" label="r/golang"/>`)
	if content != "" {
		b.WriteString(`<content type="html">` + html.EscapeString(content) + `</content>`)
	}
	b.WriteString(`<id>t3_` + html.EscapeString(title) + `</id>`)
	if thread != "" {
		b.WriteString(`<link href="` + thread + `" />`)
	}
	b.WriteString(`<updated>2025-02-11T18:00:00+00:00</updated>`)
	if title != "" {
		b.WriteString(`<title>` + html.EscapeString(title) + `</title>`)
	}
	b.WriteString("</entry>")
	return b.String()
}

func atomFeed(entries ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<feed xmlns="http://www.w3.org/2005/Atom" xmlns:media="http://search.yahoo.com/mrss/">` +
		`<category term="golang" label="r/golang"/><id>/r/golang/top/.rss</id>` +
		`<link rel="self" href="https://www.reddit.com/r/golang/top/.rss" type="application/atom+xml" />` +
		`<title>top scoring links : golang</title>` +
		strings.Join(entries, "") +
		`</feed>`
}

// redditContent mimics the content block the feed carries for a post
func redditContent(body, link, thread string) string {
	return `<!-- SC_OFF --><div class="md"><p>` + body + `</p></div><!-- SC_ON --> &#32; submitted by &#32; ` +
		`<a href="https://www.reddit.com/user/gopher"> /u/gopher </a> <br/> ` +
		`<span><a href="` + link + `">[link]</a></span> &#32; <span><a href="` + thread + `">[comments]</a></span>`
}
