package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/waqaskhan137/fintips/dashboard"
)

var flagDashboardJSON bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the sample dashboard",
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().BoolVar(&flagDashboardJSON, "json", false, "Print the dashboard data as JSON")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	data := dashboard.Sample()
	if flagDashboardJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	return dashboard.Render(cmd.OutOrStdout(), data)
}
