// Command digest builds the weekly community digest.
//
// Usage:
//
//	digest                  Interactive menu
//	digest --auto           Generate and send, then exit (for cron jobs)
//	digest --auto --no-email
//	digest --config path/to/settings.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"community-digest/pkg/config"
)

func main() {
	auto := flag.Bool("auto", false, "run without the interactive menu (for scheduled jobs)")
	noEmail := flag.Bool("no-email", false, "generate the digest but don't send email")
	configPath := flag.String("config", config.DefaultPath, "settings file")
	flag.Parse()

	// .env is optional; real environment variables win
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		configPath: *configPath,
		out:        os.Stdout,
	}

	if *auto {
		fmt.Fprintln(a.out, statusStyle.Render("🤖 Running in automatic mode..."))
		if err := a.generate(ctx, !*noEmail); err != nil {
			os.Exit(1)
		}
		return
	}

	a.interactive(ctx, os.Stdin)
}
