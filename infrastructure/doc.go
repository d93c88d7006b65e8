// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package.
//
// The infrastructure package is organized by technical concern:
//
// - http/standard: Standard library HTTP client, one round trip per call
// - logger/logrus: Logrus logger with optional rotated log file
// - mail/smtp: SMTP mailer for digest delivery
//
// # HTTP Client
//
// The client never retries; the feed pipeline classifies and retries attempts:
//
//	client := standard.NewStandardHTTPClient(15 * time.Second)
//	resp, err := client.Get(ctx, "https://www.reddit.com/r/golang/top/.rss?t=week", nil)
//	if err != nil {
//	    // Handle error
//	}
//	defer resp.Body().Close()
//
// # Logger
//
//	logger, err := logrus.New(logrus.Options{Level: "info", Format: "json", File: "logs/digest.log"})
//	logger.Info("Fetched community posts", map[string]interface{}{
//	    "community": "golang",
//	    "posts":     5,
//	})
package infrastructure
