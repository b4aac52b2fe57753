package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/hydration/backend/internal/config"
	"github.com/JonnyWalker81/hydration/backend/internal/logger"
	"github.com/JonnyWalker81/hydration/backend/internal/notify"
	"github.com/JonnyWalker81/hydration/backend/internal/service"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send hydration reminders",
	Long: `Send a reminder to every user with notifications enabled, over the configured
channel. With --name the reminder goes to a single recipient without touching storage.`,
	RunE: runRemind,
}

var (
	remindChannel string
	remindName    string
	remindTo      string
	remindEvery   time.Duration
)

func init() {
	remindCmd.Flags().StringVar(&remindChannel, "channel", "", "Notification channel: sms, desktop or none (overrides config)")
	remindCmd.Flags().StringVar(&remindName, "name", "", "Send a single reminder addressed to this name")
	remindCmd.Flags().StringVar(&remindTo, "to", "", "Recipient phone number for a single SMS reminder")
	remindCmd.Flags().DurationVar(&remindEvery, "every", 0, "Repeat the reminders at this interval until interrupted")
}

func runRemind(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if remindChannel != "" {
		cfg.Notifications.Channel = remindChannel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if cfg.Notifications.Channel == config.ChannelNone {
		return fmt.Errorf("no notification channel configured; use --channel or notifications.channel")
	}

	defaultLoc, err := time.LoadLocation(cfg.Analytics.DefaultTimezone)
	if err != nil {
		return fmt.Errorf("invalid default timezone: %w", err)
	}

	notifier := newNotifier(cfg.Notifications)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var run func(ctx context.Context) error
	if remindName != "" {
		run = func(ctx context.Context) error {
			msg := notify.ReminderMessage(remindName, time.Now().In(defaultLoc))
			if err := notifier.Send(ctx, remindTo, msg); err != nil {
				return fmt.Errorf("failed to send reminder: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "reminder sent")
			return nil
		}
	} else {
		st, err := openStores(cfg)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer func() {
			if err := st.close(); err != nil {
				logger.Error("failed to close storage", logger.Err(err))
			}
		}()

		reminders := service.NewReminderService(st.profiles, notifier, defaultLoc)
		run = func(ctx context.Context) error {
			result, err := reminders.SendReminders(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reminders sent: %d, failed: %d\n", result.Sent, result.Failed)
			return nil
		}
	}

	// Each run gets its own ID so its log lines can be grouped
	runOnce := func() error {
		return run(logger.WithRequestID(logger.WithJob(ctx, "remind"), ""))
	}

	if err := runOnce(); err != nil || remindEvery <= 0 {
		return err
	}

	ticker := time.NewTicker(remindEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := runOnce(); err != nil {
				logger.Error("reminder run failed", logger.Err(err))
			}
		}
	}
}
