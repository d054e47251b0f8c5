package main

import (
	"fmt"
	"io"
	"time"

	"multinvest-backend/internal/application/projection"

	"github.com/spf13/cobra"
)

type projectFlags struct {
	amount    string
	createdAt string
	status    string
	now       string
	policy    string
}

var pf projectFlags

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Print the projected value of one investment",
	Example: `  multinvest project --amount 1000 --created-at 2024-03-17 --now 2024-06-15
  multinvest project --amount 250.5 --created-at "2024-01-01 09:30:00" --status pending`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProject(cmd.OutOrStdout(), pf)
	},
}

func init() {
	f := projectCmd.Flags()
	f.StringVar(&pf.amount, "amount", "", "principal, e.g. 1000.00")
	f.StringVar(&pf.createdAt, "created-at", "", "creation timestamp (RFC3339, \"2006-01-02 15:04:05\" or 2006-01-02)")
	f.StringVar(&pf.status, "status", projection.StatusCompleted, "investment status")
	f.StringVar(&pf.now, "now", "", "evaluate at this instant instead of the current time")
	f.StringVar(&pf.policy, "future", "", "handling of creation times after now: clamp or floor (default from PROJECTION_FUTURE_POLICY)")
	_ = projectCmd.MarkFlagRequired("amount")
}

func runProject(w io.Writer, f projectFlags) error {
	policy := projection.FutureClamp
	if cfg != nil {
		policy = cfg.FuturePolicy
	}
	if f.policy != "" {
		p, err := projection.ParseFuturePolicy(f.policy)
		if err != nil {
			return err
		}
		policy = p
	}

	now := time.Now().UTC()
	if f.now != "" {
		t, err := projection.ParseCreatedAt(f.now)
		if err != nil {
			return fmt.Errorf("--now: %w", err)
		}
		now = t
	}

	value, err := projection.New(policy).ProjectText(f.amount, f.createdAt, f.status, now)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, value)
	return nil
}
