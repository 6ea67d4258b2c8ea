package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"budgetmanage/internal/cli"
	"budgetmanage/internal/ports"
)

func budgetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "List and select budgets",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all budgets, the active one marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			budgets, err := svc.ListBudgets(cmd.Context())
			if err != nil {
				return err
			}
			if len(budgets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("No budgets yet."))
				return nil
			}
			return cli.WriteBudgets(cmd.OutOrStdout(), budgets)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "activate <budget-id>",
		Short: "Make a budget the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid budget id %q", args[0])
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.ActivateBudget(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.ActiveStyle.Render("Activated "+id.String()))
			return nil
		},
	})
	return cmd
}

func summaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [budget-id]",
		Short: "Show category balances of a budget (the active one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			var id uuid.UUID
			if len(args) == 1 {
				if id, err = uuid.Parse(args[0]); err != nil {
					return fmt.Errorf("invalid budget id %q", args[0])
				}
			} else {
				active, err := svc.ActiveBudget(cmd.Context())
				if errors.Is(err, ports.ErrNotFound) {
					return errors.New("no active budget, pass a budget id or run 'budgetctl budgets activate'")
				}
				if err != nil {
					return err
				}
				id = active.ID
			}

			sum, err := svc.Summary(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSummary(sum))
			return nil
		},
	}
}

func templatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect category templates",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List category templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			templates, err := svc.ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			return cli.WriteTemplates(cmd.OutOrStdout(), templates)
		},
	})
	return cmd
}

func themesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the colour themes a template can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.WriteThemes(cmd.OutOrStdout())
		},
	}
}
