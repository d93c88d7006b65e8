package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"community-digest/core/curate"
	"community-digest/core/digest"
	coreerrors "community-digest/core/errors"
	"community-digest/core/feed"
	"community-digest/core/interfaces"
	"community-digest/infrastructure/http/standard"
	logruslogger "community-digest/infrastructure/logger/logrus"
	"community-digest/infrastructure/mail/smtp"
	"community-digest/pkg/config"
	"community-digest/pkg/utils/duration"
)

const curatorTimeout = 120 * time.Second

type app struct {
	configPath string
	out        io.Writer

	// openFolder is replaced in tests
	openFolder func(dir string) error
}

// load reads settings fresh for every action so edits apply without a restart
func (a *app) load() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logruslogger.Logger, error) {
	return logruslogger.New(logruslogger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
}

func newRunner(cfg *config.Config, logger interfaces.Logger) *digest.Runner {
	fetchDeps := interfaces.Dependencies{
		HTTPClient: standard.NewStandardHTTPClient(cfg.Timeout()),
		Logger:     logger,
	}
	curateDeps := interfaces.Dependencies{
		HTTPClient: standard.NewStandardHTTPClient(curatorTimeout),
		Logger:     logger,
	}

	fetcher := feed.NewService(fetchDeps, feed.DefaultOptions())
	curator := curate.NewGeminiCurator(curateDeps, curate.GeminiOptions{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
		Stories: cfg.Newsletter.StoriesToInclude,
	})
	mailer := smtp.New(smtp.Config{
		Host:     cfg.Email.SMTP.Host,
		Port:     cfg.Email.SMTP.Port,
		Username: cfg.Email.SMTP.User,
		Password: cfg.Email.SMTP.Pass,
		From:     cfg.Email.SMTP.From,
		To:       cfg.Email.SMTP.To,
	}, logger)

	return digest.NewRunner(fetchDeps, fetcher, curator, mailer, digest.Settings{
		Communities:       cfg.Communities,
		PostsPerCommunity: cfg.Fetch.PostsPerCommunity,
		TimeWindow:        cfg.Fetch.TimeWindow,
		MaxRetries:        cfg.Fetch.MaxRetries,
		Delay:             cfg.Delay(),
		OutputPath:        cfg.OutputPath(),
		Subject:           cfg.Email.Subject,
		SendOnCompletion:  cfg.Email.SendOnCompletion,
	})
}

// generate runs one digest and reports the outcome on a.out
func (a *app) generate(ctx context.Context, sendEmail bool) error {
	cfg, err := a.load()
	if err != nil {
		fmt.Fprintln(a.out, errorStyle.Render("❌ "+err.Error()))
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(a.out, errorStyle.Render("❌ "+err.Error()))
		return err
	}
	defer logger.Close()

	fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("Starting digest generation for %d communities...", len(cfg.Communities))))

	started := time.Now()
	result, err := newRunner(cfg, logger).Run(ctx, digest.Options{SendEmail: sendEmail})
	if err != nil {
		fmt.Fprintln(a.out, errorStyle.Render("❌ "+describe(err)))
		return err
	}

	fmt.Fprintf(a.out, "📦 Collected %d posts total.\n", len(result.Posts))
	fmt.Fprintln(a.out, successStyle.Render("✅ Digest saved to: ")+result.Path)
	fmt.Fprintln(a.out, mutedStyle.Render("Finished in "+duration.Human(time.Since(started))+"."))

	switch {
	case result.Emailed:
		fmt.Fprintln(a.out, successStyle.Render("📧 Email sent."))
	case result.EmailErr != nil:
		fmt.Fprintln(a.out, errorStyle.Render("❌ Email failed: "+describe(result.EmailErr)))
	case !sendEmail:
		fmt.Fprintln(a.out, mutedStyle.Render("📧 Email skipped (preview mode)."))
	default:
		fmt.Fprintln(a.out, mutedStyle.Render("📧 Email skipped (send_on_completion is off)."))
	}

	return nil
}

// describe turns pipeline errors into operator-facing messages
func describe(err error) string {
	var apiErr *coreerrors.ExternalAPIError
	switch {
	case errors.Is(err, digest.ErrNoPosts):
		return "No posts found. Check your internet connection or community names."
	case errors.Is(err, smtp.ErrMailDisabled):
		return "SMTP settings are incomplete; set SMTP_HOST, SMTP_USER, SMTP_PASS, SMTP_FROM and EMAIL_TO."
	case coreerrors.IsValidation(err):
		return err.Error()
	case errors.As(err, &apiErr):
		return "Failed to generate digest: " + apiErr.Message
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	default:
		return err.Error()
	}
}
