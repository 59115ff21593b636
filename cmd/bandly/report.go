package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"bandly-go/internal/app"
	"bandly-go/internal/domain/dashboard"
)

type viewOptions struct {
	at string
}

func newReportCommand(opts *rootOptions) *cobra.Command {
	view := &viewOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the activity report as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printView(cmd, opts, view, func(svc *dashboard.Service, at time.Time) any {
				return svc.Report(at)
			})
		},
	}
	cmd.Flags().StringVar(&view.at, "at", "", "compute the report as of this RFC 3339 time")
	return cmd
}

func newDashboardCommand(opts *rootOptions) *cobra.Command {
	view := &viewOptions{}
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print today's events, upcoming events and the monthly summary as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printView(cmd, opts, view, func(svc *dashboard.Service, at time.Time) any {
				return svc.Dashboard(at)
			})
		},
	}
	cmd.Flags().StringVar(&view.at, "at", "", "compute the dashboard as of this RFC 3339 time")
	return cmd
}

func printView(cmd *cobra.Command, opts *rootOptions, view *viewOptions, build func(*dashboard.Service, time.Time) any) error {
	var at time.Time
	if view.at != "" {
		parsed, err := time.Parse(time.RFC3339, view.at)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		at = parsed
	}

	cfg := opts.cfg
	cfg.Metrics.Enabled = false

	application, err := app.New(cmd.Context(), cfg, opts.log)
	if err != nil {
		opts.log.Critical("app: init failed", "err", err)
		return err
	}
	defer application.Close()

	return writeIndented(cmd.OutOrStdout(), build(application.Dashboard(), at))
}

func writeIndented(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
