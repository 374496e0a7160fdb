package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/adapters/presenter"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/services"
)

func newReportCmd() *cobra.Command {
	var (
		user   string
		period string
		today  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the trend analysis of one user",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := domain.ParsePeriod(period)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			st, closeStores, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer closeStores()

			u, err := resolveUser(ctx, st.Users, user)
			if err != nil {
				return err
			}

			day, err := reportDay(today, u)
			if err != nil {
				return err
			}

			history, err := st.History.Read(ctx, u.ID)
			if err != nil {
				if !errors.Is(err, domain.ErrHistoryNotFound) {
					return fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
				}
				history = domain.History{}
			}

			view := presenter.NewChartView(services.Analyze(history, p, day))

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			return presenter.Render(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id or email")
	cmd.Flags().StringVar(&period, "period", string(domain.PeriodWeek), "week, month, year or all")
	cmd.Flags().StringVar(&today, "today", "", "evaluate as of this YYYY-MM-DD instead of the current day")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the chart view as JSON")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func resolveUser(ctx context.Context, users domain.UserRepository, ref string) (*domain.User, error) {
	if strings.Contains(ref, "@") {
		return users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(ref)))
	}
	return users.GetByID(ctx, ref)
}

func reportDay(override string, u *domain.User) (domain.DateKey, error) {
	if override != "" {
		return domain.ParseDateKey(override)
	}
	return domain.Today(time.Now(), u.Location()), nil
}
