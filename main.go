package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/app"
	kernel "github.com/km-arc/go-container/framework/app"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/dump"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	application, err := kernel.New() // loads .env automatically
	if err != nil {
		return err
	}
	log := application.Logger()

	// ── Application providers ────────────────────────────────────────────────

	if err := application.Register(&app.NewsletterServiceProvider{}); err != nil {
		return err
	}
	if err := application.Boot(); err != nil {
		return err
	}

	// ── Use the services ─────────────────────────────────────────────────────

	newsletter, err := container.Resolve[*app.NewsletterManager](application.Container, "newsletter_manager")
	if err != nil {
		return err
	}
	sent, err := newsletter.SendAll([]string{"alice@example.com", "bob@example.com"})
	if err != nil {
		return err
	}
	for _, line := range sent {
		fmt.Println(line)
	}

	if application.IsDebug() {
		if err := dump.Write(os.Stdout, application.Container); err != nil {
			log.Warn("dumping container", zap.Error(err))
		}
	}

	// ── Serve the inspector until interrupted ────────────────────────────────

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return application.Run(ctx)
}
