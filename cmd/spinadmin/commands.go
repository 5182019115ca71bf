package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/Elahizes/spin-wheel/internal/app"
	"github.com/Elahizes/spin-wheel/internal/domain"
	"github.com/Elahizes/spin-wheel/internal/platform/correlation"
)

const operatorActor = "spinadmin"

var errSeedInProduction = errors.New("seed is disabled when APP_ENV=production")

func newDeleteSpinsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-spins [ids...]",
		Short: "Delete spin events in atomic chunks",
		Long: `Delete spin events by id. Ids come from the arguments and from --file
(one or more per line, '#' starts a comment line, "-" reads stdin).
Chunks commit in order and the command stops at the first failed chunk,
reporting how many ids were deleted before it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			actor, _ := cmd.Flags().GetString("actor")

			ids, err := collectIDs(args, file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := rt.spinStore(ctx)
			if err != nil {
				return err
			}
			deleter, err := app.NewDeleter(store, nil, nil, rt.clock, rt.cfg.DeleteChunkSize)
			if err != nil {
				return err
			}

			ctx = domain.WithPrincipal(ctx, &domain.Principal{ID: actor, Admin: true})
			ctx = correlation.WithActor(ctx, actor)
			ctx = correlation.WithID(ctx, correlation.NewID())

			deleted, err := deleter.DeleteSpins(ctx, ids)
			fmt.Fprintf(cmd.OutOrStdout(), "deleted: %d\n", deleted)
			return err
		},
	}
	cmd.Flags().StringP("file", "f", "", "Read ids from file (\"-\" for stdin)")
	cmd.Flags().String("actor", operatorActor, "Actor id recorded with the deletion")
	return cmd
}

func newGrantAdminCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant-admin",
		Short: "Grant the admin capability to a principal",
		Long: `Grant the admin capability using ADMIN_SETUP_SECRET. Credentials issued
to the principal before the grant stop being accepted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uid, _ := cmd.Flags().GetString("uid")

			gate, err := rt.gate(cmd.Context())
			if err != nil {
				return err
			}
			p, err := gate.GrantAdmin(cmd.Context(), uid, rt.cfg.AdminSetupSecret)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin granted: %s\n", p.ID)
			return nil
		},
	}
	cmd.Flags().String("uid", "", "Principal id")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}

func newTokenCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a credential for a principal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uid, _ := cmd.Flags().GetString("uid")

			gate, err := rt.gate(cmd.Context())
			if err != nil {
				return err
			}
			token, err := gate.IssueCredential(cmd.Context(), uid)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("uid", "", "Principal id")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}

func newSeedCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Record synthetic spins (development only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			count, _ := cmd.Flags().GetInt("count")
			users, _ := cmd.Flags().GetInt("users")
			prizes, _ := cmd.Flags().GetStringSlice("prize")

			if rt.cfg.AppEnv == "production" {
				return errSeedInProduction
			}
			if count < 1 || users < 1 || len(prizes) == 0 {
				return errors.New("--count and --users must be positive and at least one --prize is required")
			}

			ctx := cmd.Context()
			store, err := rt.spinStore(ctx)
			if err != nil {
				return err
			}

			plan := seedPlan(count, users, prizes, rt.clock.Now(), rand.IntN)
			for i, s := range plan {
				if _, err := store.RecordSpin(ctx, s.principalID, s.prize, s.at); err != nil {
					return fmt.Errorf("seeded %d of %d: %w", i, count, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded: %d\n", len(plan))
			return nil
		},
	}
	cmd.Flags().Int("count", 50, "Number of spins to record")
	cmd.Flags().Int("users", 5, "Number of distinct synthetic users")
	cmd.Flags().StringSlice("prize", []string{"10 Coins", "50 Coins", "Free Spin", "Jackpot", ""}, "Prize labels to draw from (empty records no prize)")
	return cmd
}

type seedSpin struct {
	principalID string
	prize       string
	at          time.Time
}

// seedPlan spreads count spins one second apart ending at now.
func seedPlan(count, users int, prizes []string, now time.Time, pick func(int) int) []seedSpin {
	plan := make([]seedSpin, count)
	for i := range plan {
		plan[i] = seedSpin{
			principalID: fmt.Sprintf("seed-user-%d", pick(users)+1),
			prize:       prizes[pick(len(prizes))],
			at:          now.Add(-time.Duration(count-1-i) * time.Second),
		}
	}
	return plan
}
