package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"family-planner/internal/app"
	"family-planner/internal/identity"
	"family-planner/internal/planner"
)

// NewImportCommand creates the import-recipes command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-recipes <file>",
		Short: "Load a YAML or JSON recipe catalog into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd.Context(), func(a *app.App) error {
				n, err := app.ImportRecipes(cmd.Context(), a.Recipes, args[0], a.Logger())
				printf(cmd, "imported %d recipes\n", n)
				return err
			})
		},
	}
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	var who actorFlags
	cmd := &cobra.Command{
		Use:   "sync [week]",
		Short: "Rebuild a week's shopping list from its meal plan",
		Long: `Rebuild a week's shopping list from its meal plan.

The week is a date inside it (2024-03-06) or an ISO week (2024-W10) and
defaults to the current one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			week := weekArg(args)
			return rootOpts.withApp(cmd.Context(), func(a *app.App) error {
				list, err := a.Shopping.Sync(cmd.Context(), who.actor(), week)
				if err != nil {
					return err
				}
				printf(cmd, "week %s: %d items\n", list.WeekStart, len(list.Items))
				for _, it := range list.Items {
					mark := " "
					if it.Checked {
						mark = "x"
					}
					printf(cmd, "[%s] %g %s %s\n", mark, it.Quantity, it.Unit, it.Name)
				}
				return nil
			})
		},
	}
	who.register(cmd)
	return cmd
}

// NewAssignCommand creates the assign command.
func NewAssignCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		who   actorFlags
		meal  string
		index int
	)
	cmd := &cobra.Command{
		Use:   "assign <date> <recipe-id>",
		Short: "Put a recipe in a meal slot and re-sync the shopping list",
		Long: `Put a recipe in a meal slot and re-sync the shopping list.

An empty recipe id ("") clears the slot.

Example:
  family-planner assign 2024-03-05 pancakes --meal breakfast --user ana --family smiths`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := planner.ParseMealKind(meal)
			if err != nil {
				return err
			}
			return rootOpts.withApp(cmd.Context(), func(a *app.App) error {
				plan, err := a.Planner.AssignMeal(cmd.Context(), who.actor(), args[0], planner.Assignment{
					Date:     args[0],
					Meal:     kind,
					Index:    index,
					RecipeID: args[1],
				})
				if plan != nil {
					printf(cmd, "week %s: %d recipes planned\n", plan.WeekStart, len(plan.RecipeIDs()))
				}
				return err
			})
		},
	}
	who.register(cmd)
	cmd.Flags().StringVar(&meal, "meal", string(planner.Dinner), "meal kind (breakfast|lunch|dinner|togo|dessert)")
	cmd.Flags().IntVar(&index, "index", 0, "slot position within the meal")
	return cmd
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		who actorFlags
		ttl time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := rootOpts.load()
			if err != nil {
				return err
			}
			resolver, err := identity.NewJWTResolver(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}
			token, err := resolver.Issue(who.UserID, who.FamilyID, ttl)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", token)
			return nil
		},
	}
	cmd.Flags().StringVar(&who.UserID, "user", "", "user id (required)")
	cmd.Flags().StringVar(&who.FamilyID, "family", "", "family id; empty issues a token without a household")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: auth.token_ttl)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		days   int
		family string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recent sync activity and stored weeks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd.Context(), func(a *app.App) error {
				daily, err := a.Metrics.GetDailySyncs(cmd.Context(), days)
				if err != nil {
					return err
				}
				printf(cmd, "syncs over the last %d days:\n", days)
				if len(daily) == 0 {
					printf(cmd, "  none\n")
				}
				for _, d := range daily {
					printf(cmd, "  %s  runs=%d upserted=%d deleted=%d avg=%.0fms\n",
						d.Date, d.Runs, d.Upserted, d.Deleted, d.AvgLatencyMS)
				}

				if family == "" {
					return nil
				}
				weeks, err := a.Primary.Summaries(cmd.Context(), family)
				if err != nil {
					return err
				}
				printf(cmd, "weeks of %s:\n", family)
				for _, w := range weeks {
					printf(cmd, "  %s  items=%d checked=%d\n", w.WeekStart, w.Items, w.Checked)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "days of history")
	cmd.Flags().StringVar(&family, "family", "", "also list the stored weeks of this family")
	return cmd
}

// NewCleanupCommand creates the metrics-cleanup command.
func NewCleanupCommand(rootOpts *RootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "metrics-cleanup",
		Short: "Delete sync history older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1, got %d", days)
			}
			return rootOpts.withApp(cmd.Context(), func(a *app.App) error {
				n, err := a.Metrics.Cleanup(cmd.Context(), days)
				if err != nil {
					return err
				}
				printf(cmd, "deleted %d sync runs\n", n)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "keep this many days of history")
	return cmd
}

func weekArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return planner.FormatWeek(time.Now())
}
