package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"menucal/internal/config"
	appLog "menucal/internal/log"
	"menucal/internal/menu"
	"menucal/internal/scrape"
	"menucal/internal/store"
	"menucal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	logLevel   string
}

func main() {
	appLog.Info("menucal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI overrides.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		appLog.Error("invalid timezone, falling back to local", err, "timezone", conf.Timezone)
		loc = time.Local
	}

	meals := make([]menu.MealType, 0, len(conf.Meals))
	for _, raw := range conf.Meals {
		meal, err := menu.ParseMealType(raw)
		if err != nil {
			appLog.Warn("skipping unknown meal type in config", "meal", raw)
			continue
		}
		meals = append(meals, meal)
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"meals", len(meals),
		"use_browser", conf.Source.UseBrowser,
		"once", flags.once,
	)

	st := store.New(filepath.Join(conf.DataDir, "snapshots"))

	var fetcher scrape.FragmentFetcher
	if conf.Source.UseBrowser {
		fetcher = &scrape.Browser{PageURL: conf.Source.PageURL}
	} else {
		fetcher = scrape.NewFetcher(
			conf.Source.BaseURL,
			conf.Source.SchoolID,
			filepath.Join(conf.DataDir, "fragment-cache"),
		)
	}

	runner := &scrape.Runner{
		Fetcher: fetcher,
		Store:   st,
		Meals:   meals,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		if _, err := runner.Run(ctx, time.Now().In(loc)); err != nil {
			appLog.Error("single-shot scrape failed", err)
			os.Exit(1)
		}
		appLog.Info("menucal exiting")
		return
	}

	// Scheduled refresh.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(conf.RefreshCron, func() {
		runCtx, runCancel := context.WithTimeout(ctx, 5*time.Minute)
		defer runCancel()
		if _, err := runner.Run(runCtx, time.Now().In(loc)); err != nil {
			appLog.Error("scheduled scrape failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := web.NewServer(conf, st, runner, loc)
	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: server.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLog.Error("HTTP server shutdown failed", err)
		}
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}

	appLog.Info("menucal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/menucal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one scrape and exit")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Minimum log level (overrides config if set)")

	flag.Parse()

	return cfg
}
