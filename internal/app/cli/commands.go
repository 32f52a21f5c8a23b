package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"lexicon/contexts/editorial-governance/governance-service/application/queries"
	"lexicon/contexts/editorial-governance/governance-service/ports"
)

func migrateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the governance schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := app.Runtime()
			if err != nil {
				return err
			}
			if err := runtime.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func maintenanceCommand(app *App) *cobra.Command {
	maintenanceCmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Lifecycle maintenance of rejected and archived entries",
	}
	maintenanceCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Archive stale rejected entries and delete expired archived entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := app.Runtime()
			if err != nil {
				return err
			}
			report, err := runtime.Module.Sweeper.RunOnce(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dictionary: archived=%d deleted=%d\n", report.DictionaryArchived, report.DictionaryDeleted)
			fmt.Fprintf(out, "folklore:   archived=%d deleted=%d\n", report.FolkloreArchived, report.FolkloreDeleted)
			fmt.Fprintf(out, "failed:     %d\n", report.Failed)
			return err
		},
	})
	return maintenanceCmd
}

func outboxCommand(app *App) *cobra.Command {
	outboxCmd := &cobra.Command{
		Use:   "outbox",
		Short: "Governance outbox operations",
	}
	outboxCmd.AddCommand(&cobra.Command{
		Use:   "relay",
		Short: "Publish one batch of pending outbox events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := app.Runtime()
			if err != nil {
				return err
			}
			published, err := runtime.Module.Relay.RunOnce(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "published=%d\n", published)
			return err
		},
	})
	return outboxCmd
}

func contributionsCommand(app *App) *cobra.Command {
	contributionsCmd := &cobra.Command{
		Use:   "contributions",
		Short: "Contribution reports",
	}

	contributionsCmd.AddCommand(&cobra.Command{
		Use:   "summary <user-id>",
		Short: "Show the contribution counts of one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireArg(args, "user id")
			if err != nil {
				return err
			}
			runtime, err := app.Runtime()
			if err != nil {
				return err
			}
			summary, err := runtime.Module.Contributions.Summary(cmd.Context(), userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:             %s\n", summary.UserID)
			fmt.Fprintf(out, "dictionary terms: %d\n", summary.DictionaryTerms)
			fmt.Fprintf(out, "folklore entries: %d\n", summary.FolkloreEntries)
			fmt.Fprintf(out, "revisions:        %d\n", summary.Revisions)
			fmt.Fprintf(out, "total:            %d\n", summary.Total)
			fmt.Fprintf(out, "last:             %s\n", formatTime(summary.LastContributionAt))
			return nil
		},
	})

	var (
		municipality string
		limit        int
	)
	leaderboardCmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank contributors by total contributions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := app.Runtime()
			if err != nil {
				return err
			}
			rows, err := runtime.Module.Contributions.Leaderboard(cmd.Context(), queries.LeaderboardQuery{
				Municipality: municipality,
				Limit:        limit,
			})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tUSER\tMUNICIPALITY\tTERMS\tFOLKLORE\tREVISIONS\tTOTAL\tLAST")
			for i, row := range rows {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
					i+1,
					row.Username,
					row.Municipality,
					row.DictionaryTerms,
					row.FolkloreEntries,
					row.Revisions,
					row.Total,
					formatTime(row.LastContributionAt),
				)
			}
			return w.Flush()
		},
	}
	leaderboardCmd.Flags().StringVar(&municipality, "municipality", "", "Only rank users of this municipality")
	leaderboardCmd.Flags().IntVar(&limit, "limit", queries.DefaultLeaderboardLimit, "Maximum number of rows")
	contributionsCmd.AddCommand(leaderboardCmd)

	return contributionsCmd
}

func directoryCommand(app *App) *cobra.Command {
	directoryCmd := &cobra.Command{
		Use:   "directory",
		Short: "Maintain the role and profile projection of the SQL store",
	}

	var reviewer, admin bool
	rolesCmd := &cobra.Command{
		Use:   "roles <user-id>",
		Short: "Set the governance roles of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireArg(args, "user id")
			if err != nil {
				return err
			}
			runtime, err := app.Runtime()
			if err != nil {
				return err
			}
			switch {
			case runtime.Directory != nil:
				err = runtime.Directory.UpsertRoles(cmd.Context(), userID, reviewer, admin)
			case runtime.Module.Directory != nil:
				runtime.Module.Directory.SetRoles(userID, reviewer, admin)
			default:
				err = fmt.Errorf("store has no role directory")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reviewer=%t admin=%t\n", userID, reviewer, admin)
			return nil
		},
	}
	rolesCmd.Flags().BoolVar(&reviewer, "reviewer", false, "Grant the reviewer role")
	rolesCmd.Flags().BoolVar(&admin, "admin", false, "Grant the admin role")

	var username, municipality string
	profileCmd := &cobra.Command{
		Use:   "profile <user-id>",
		Short: "Set the display profile of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := requireArg(args, "user id")
			if err != nil {
				return err
			}
			runtime, err := app.Runtime()
			if err != nil {
				return err
			}
			profile := ports.Profile{UserID: userID, Username: username, Municipality: municipality}
			switch {
			case runtime.Directory != nil:
				err = runtime.Directory.UpsertProfile(cmd.Context(), profile)
			case runtime.Module.Directory != nil:
				runtime.Module.Directory.SetProfile(profile)
			default:
				err = fmt.Errorf("store has no profile directory")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s username=%q municipality=%q\n", userID, username, municipality)
			return nil
		},
	}
	profileCmd.Flags().StringVar(&username, "username", "", "Display name")
	profileCmd.Flags().StringVar(&municipality, "municipality", "", "Municipality")

	directoryCmd.AddCommand(rolesCmd, profileCmd)
	return directoryCmd
}

func formatTime(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return value.UTC().Format(time.RFC3339)
}
