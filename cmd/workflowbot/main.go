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
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/support-watchlist-bot/internal/config"
	"github.com/support-watchlist-bot/internal/health"
	"github.com/support-watchlist-bot/internal/slackio"
	"github.com/support-watchlist-bot/internal/tracker"
	"github.com/support-watchlist-bot/internal/workflow"
)

func main() {
	var configPath = flag.String("config", "", "Path to optional configuration file")
	var healthPort = flag.Int("health-port", 8080, "Port for health check endpoints")
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

	if err := cfg.ValidateWorkflow(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	logrus.Info("Starting workflow issue bot")

	api := slack.New(
		cfg.Slack.BotToken,
		slack.OptionAppLevelToken(cfg.Slack.AppToken),
	)

	setupCtx, setupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer setupCancel()
	if err := slackio.Ping(setupCtx, api); err != nil {
		logrus.Fatalf("Slack connection failed: %v", err)
	}

	gateway, err := tracker.NewGitHub(cfg.GitHub.Token)
	if err != nil {
		logrus.Fatalf("Failed to create GitHub gateway: %v", err)
	}

	socket := socketmode.New(api)
	creator := workflow.New(socket, slackio.NewNotifier(api), gateway, workflow.Config{
		ChannelID:     cfg.Slack.ChannelID,
		WorkflowBotID: cfg.Slack.WorkflowBotID,
		Repo:          cfg.GitHub.Repo,
		Labels:        cfg.GitHub.IssueLabels,
		Assignees:     cfg.GitHub.Assignees,
	})

	// Start health check server
	healthServer := health.NewServer(*healthPort)
	go func() {
		if err := healthServer.Start(); err != nil {
			logrus.Errorf("Health server error: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("Shutting down...")
		cancel()
	}()

	if err := creator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logrus.Fatalf("Socket Mode listener failed: %v", err)
	}

	healthCtx, healthCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer healthCancel()
	healthServer.Stop(healthCtx)
}
