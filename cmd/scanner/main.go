// Support Watchlist Bot
// Copyright (C) 2025  Support Watchlist Bot Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/support-watchlist-bot/internal/config"
	"github.com/support-watchlist-bot/internal/scheduler"
	"github.com/support-watchlist-bot/internal/slackio"
	"github.com/support-watchlist-bot/internal/tracker"
	"github.com/support-watchlist-bot/internal/watchlist"
)

const runTimeout = 30 * time.Minute

func main() {
	var configPath = flag.String("config", "", "Path to optional configuration file")
	var interval = flag.Duration("interval", 0, "Run the scan on this interval instead of once")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)

	if err := cfg.ValidateScanner(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	if *interval > 0 {
		cfg.Scan.Interval = *interval
	}

	logrus.Info("Starting watchlist scanner")

	api := slack.New(cfg.Slack.BotToken)

	setupCtx, setupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer setupCancel()
	if err := slackio.Ping(setupCtx, api); err != nil {
		logrus.Fatalf("Slack connection failed: %v", err)
	}

	gateway, err := tracker.NewGitHub(cfg.GitHub.Token)
	if err != nil {
		logrus.Fatalf("Failed to create GitHub gateway: %v", err)
	}

	scanner := watchlist.New(watchlist.Params{
		History:   slackio.NewHistoryReader(api, cfg.Slack.WorkflowBotID),
		Inspector: slackio.NewInspector(api, cfg.Scan.MaxReplies),
		Extractor: tracker.NewExtractor(cfg.GitHub.Repo),
		Tracker:   gateway,
		Notifier:  slackio.NewNotifier(api),
		Window: watchlist.Window{
			OlderThanDays:  cfg.Scan.OlderThanDays,
			WithinLastDays: cfg.Scan.WithinLastDays,
		},
		ChannelID:          cfg.Slack.ChannelID,
		WatchlistChannelID: cfg.Slack.WatchlistChannelID,
		Label:              cfg.GitHub.WatchlistLabel,
	})

	if cfg.Scan.Interval > 0 {
		runScheduled(scanner, cfg.Scan.Interval)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := scanner.Run(ctx); err != nil {
		logrus.Errorf("Scan failed: %v", err)
		os.Exit(1)
	}
}

// runScheduled keeps the process alive and scans on the configured
// interval, for deployments without an external cron trigger.
func runScheduled(scanner *watchlist.Scanner, interval time.Duration) {
	sched := scheduler.New(interval, scanner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Start(ctx); err != nil {
			logrus.Errorf("Scheduler error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logrus.Info("Running initial scan...")
	if err := sched.RunScan(); err != nil {
		logrus.Errorf("Initial scan failed: %v", err)
	}

	<-sigChan
	logrus.Info("Shutting down...")
	cancel()
}
