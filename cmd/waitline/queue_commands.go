package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"waitline/internal/api"
)

func newCenterCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "center",
		Short: "Show the center display board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				view, err := svc.CenterView(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, view)
				}
				if len(view.Stations) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No stations configured")
					return nil
				}
				rows := make([][]string, 0, len(view.Stations))
				for _, board := range view.Stations {
					current := "-"
					if board.CurrentNumber != nil {
						current = strconv.FormatInt(*board.CurrentNumber, 10)
					}
					rows = append(rows, []string{
						strconv.FormatInt(board.ID, 10),
						board.Name,
						current,
						formatWaitingList(board.Waiting),
						strconv.Itoa(board.WaitingCount),
						yesNo(board.IsActive),
					})
				}
				table := renderTable(
					[]string{"ID", "Station", "Serving", "Next Up", "Waiting", "Active"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newStationsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List joinable stations with waiting counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				stations, err := svc.StationsList(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, stations)
				}
				if len(stations) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No stations configured")
					return nil
				}
				rows := make([][]string, 0, len(stations))
				for _, station := range stations {
					rows = append(rows, []string{
						strconv.FormatInt(station.ID, 10),
						station.Name,
						station.QueueGroupID,
						strconv.Itoa(station.WaitingCount),
						yesNo(station.IsActive),
					})
				}
				table := renderTable(
					[]string{"ID", "Station", "Group", "Waiting", "Active"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newReportCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show per-station counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				report, err := svc.DailyReport(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, report)
				}
				if len(report.Stations) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No stations configured")
					return nil
				}
				rows := make([][]string, 0, len(report.Stations))
				for _, row := range report.Stations {
					current := "-"
					if row.CurrentNumber != nil {
						current = strconv.FormatInt(*row.CurrentNumber, 10)
					}
					rows = append(rows, []string{
						row.Name,
						current,
						strconv.Itoa(row.Waiting),
						strconv.Itoa(row.Called),
						strconv.Itoa(row.Completed),
						strconv.Itoa(row.Finished),
						strconv.Itoa(row.Released),
						strconv.Itoa(row.Total),
					})
				}
				table := renderTable(
					[]string{"Station", "Serving", "Waiting", "Called", "Completed", "Finished", "Released", "Total"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newFinishedCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "finished",
		Short: "List finished customers awaiting release",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				items, err := svc.FinishedList(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, items)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No finished customers")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.CustomerNumber, 10),
						item.StationName,
						item.FinishedAt,
					})
				}
				table := renderTable(
					[]string{"Customer", "Station", "Finished At"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history <customer-number>",
		Short: "Show a customer's audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			customer, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || customer <= 0 {
				return fmt.Errorf("invalid customer number %q", args[0])
			}
			return ctx.withService(func(svc *api.Service) error {
				history, err := svc.CustomerHistory(cmd.Context(), customer)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, history)
				}
				if len(history.Items) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No history for customer %d\n", customer)
					return nil
				}
				rows := make([][]string, 0, len(history.Items))
				for _, item := range history.Items {
					rows = append(rows, []string{
						item.StationName,
						item.Status,
						item.Action,
						item.CreatedAt,
					})
				}
				table := renderTable(
					[]string{"Station", "Status", "Action", "At"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newEntriesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List every queue entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *api.Service) error {
				entries, err := svc.Entries(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(entry.ID, 10),
						strconv.FormatInt(entry.CustomerNumber, 10),
						entry.StationName,
						entry.Status,
						strconv.Itoa(entry.Position),
						entry.CreatedAt,
					})
				}
				table := renderTable(
					[]string{"ID", "Customer", "Station", "Status", "Position", "Created At"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func formatWaitingList(numbers []int64) string {
	if len(numbers) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(numbers))
	for _, number := range numbers {
		parts = append(parts, strconv.FormatInt(number, 10))
	}
	return strings.Join(parts, ", ")
}
