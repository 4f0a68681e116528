// raya-admin is the command-line back office for the Raya catalog API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sekawan-grup/raya/internal/apiclient"
	"github.com/sekawan-grup/raya/internal/auth"
	"github.com/sekawan-grup/raya/internal/config"
	"github.com/sekawan-grup/raya/internal/logger"
	"github.com/sekawan-grup/raya/internal/session"
)

func main() {
	cfg := config.LoadClient()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)

	tokens, err := session.NewDefaultTokenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		_ = log.Sync()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := &cli{
		out:    os.Stdout,
		errOut: os.Stderr,
		in:     os.Stdin,
		tokens: tokens,
		guard:  auth.NewGuard(tokens),
		client: apiclient.New(cfg.APIURL, tokens, apiclient.WithLogger(log)),
		log:    log,
	}
	os.Exit(runAndFlush(ctx, c, os.Args[1:], stop))
}

// runAndFlush runs the command, then releases the signal handler and flushes
// the logger. os.Exit skips deferred calls, so this happens before it.
func runAndFlush(ctx context.Context, c *cli, args []string, stop context.CancelFunc) int {
	defer func() { _ = c.log.Sync() }()
	defer stop()
	return c.run(ctx, args)
}
