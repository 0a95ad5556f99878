package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/qs3c/zubari_server/config"
	"github.com/qs3c/zubari_server/internal/pkg/cron"
	"github.com/qs3c/zubari_server/internal/repository"
	"github.com/qs3c/zubari_server/internal/service"
)

type cliEnv struct {
	load func() (*config.Config, *gorm.DB, error)
}

func sweepCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Downgrade lapsed subscriptions and fail stale pending payments",
		Long: `Run one maintenance sweep immediately, the same one the server runs on a timer.

Examples:
  subadmin sweep
  subadmin sweep --config /etc/zubari/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := env.load()
			if err != nil {
				return err
			}

			sweeper := cron.NewService(
				repository.NewUserRepository(db),
				repository.NewPaymentRepository(db),
				0,
				time.Duration(cfg.Payment.PendingTTLHours)*time.Hour,
				nil,
			)
			res, err := sweeper.RunNow(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "downgraded users: %d\nfailed payments: %d\n", res.DowngradedUsers, res.FailedPayments)
			return err
		},
	}
}

func statsCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count users by subscription type and payments by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := env.load()
			if err != nil {
				return err
			}

			users, err := repository.NewUserRepository(db).WithContext(cmd.Context()).CountBySubscription()
			if err != nil {
				return fmt.Errorf("failed to count users: %w", err)
			}
			payments, err := repository.NewPaymentRepository(db).WithContext(cmd.Context()).CountByStatus()
			if err != nil {
				return fmt.Errorf("failed to count payments: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "users:")
			printCounts(out, users)
			fmt.Fprintln(out, "payments:")
			printCounts(out, payments)
			return nil
		},
	}
}

func printCounts(w io.Writer, counts map[string]int64) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-10s %d\n", k, counts[k])
	}
}

func statusCmd(env *cliEnv) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a user's subscription and remaining quota",
		Long: `Show a user's subscription and remaining quota.

Examples:
  subadmin status --email student@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			_, db, err := env.load()
			if err != nil {
				return err
			}

			userRepo := repository.NewUserRepository(db)
			user, err := userRepo.WithContext(cmd.Context()).GetByEmail(strings.ToLower(strings.TrimSpace(email)))
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("no user with email %s", email)
				}
				return err
			}

			quota := service.NewQuotaService(db, userRepo, repository.NewAIRequestRepository(db), nil, nil)
			status, err := service.NewUserService(quota).Status(cmd.Context(), user.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:       %d %s\n", user.ID, status.Email)
			fmt.Fprintf(out, "plan:       %s (subscribed: %t)\n", status.SubscriptionType, status.IsSubscribed)
			if status.SubscriptionExpires != "" {
				fmt.Fprintf(out, "expires:    %s\n", status.SubscriptionExpires)
			}
			fmt.Fprintf(out, "used:       %d\n", status.RequestsUsed)
			fmt.Fprintf(out, "remaining:  %s\n", status.RequestsRemaining)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "User email (required)")
	return cmd
}

func activateCmd(env *cliEnv) *cobra.Command {
	var email, reference string

	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Settle a pending payment by hand",
		Long: `Activate the subscription paid for by a pending payment intent, for
payments confirmed out of band.

Examples:
  subadmin activate --email student@example.com --reference ZUB_1700000000000_42_a1b2c3d4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || reference == "" {
				return fmt.Errorf("--email and --reference are required")
			}

			_, db, err := env.load()
			if err != nil {
				return err
			}

			userRepo := repository.NewUserRepository(db)
			user, err := userRepo.WithContext(cmd.Context()).GetByEmail(strings.ToLower(strings.TrimSpace(email)))
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("no user with email %s", email)
				}
				return err
			}

			payments := service.NewPaymentService(db, userRepo, repository.NewPaymentRepository(db), nil, nil, nil)
			result, err := payments.Activate(cmd.Context(), user.ID, reference)
			if err != nil {
				return fmt.Errorf("activation failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "activated %s for %s, premium until %s\n",
				result.Intent.Reference, result.User.Email,
				result.User.SubscriptionExpires.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "User email (required)")
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Payment reference (required)")
	return cmd
}
