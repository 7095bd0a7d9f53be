package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"clck.local/internal/app/shortlink"
	"clck.local/internal/app/shortlink/notify"
	"clck.local/internal/app/shortlink/reaper"
	"clck.local/internal/app/shortlink/repo"
	"clck.local/internal/cli"
	"clck.local/internal/platform/browser"
	"clck.local/internal/platform/config"
	"clck.local/internal/platform/metrics"
)

func main() {
	cfg := config.Load(config.File())

	// 操作日志走 stderr，stdout 留给交互输出
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})
	} else {
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})
	}
	slog.SetDefault(slog.New(h))

	metrics.Init()

	linksRepo := repo.NewLinksRepo()
	usersRepo := repo.NewUsersRepo()

	gen, err := shortlink.NewGenerator(cfg.ShortCodeLength)
	if err != nil {
		log.Fatal(err)
	}

	notifier := notify.NewConsole(os.Stdout, cfg.NotificationsEnabled)

	linkService, err := shortlink.NewService(linksRepo, gen, notifier, cfg.LinkTTL, cfg.DefaultClickLimit)
	if err != nil {
		log.Fatal(err)
	}
	userService := shortlink.NewUserService(usersRepo)

	rp, err := reaper.New(linkService, cfg.CleanupInterval)
	if err != nil {
		log.Fatal(err)
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rp.Start(stopCtx)
	defer rp.Stop()

	shell := cli.New(
		linkService,
		userService,
		notifier,
		browser.NewSystem(),
		cfg.ShortDomain,
		os.Stdin,
		os.Stdout,
		os.Stderr,
	)
	shell.Run(stopCtx)
}
