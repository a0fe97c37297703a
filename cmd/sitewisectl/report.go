package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	reportCmd := &cobra.Command{Use: "report", Short: "Report operations"}

	var from, to, project, person, team string
	addFilters := func(c *cobra.Command) {
		c.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
		c.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD)")
		c.Flags().StringVar(&project, "project", "", "Project filter")
		c.Flags().StringVar(&person, "person", "", "Person filter")
		c.Flags().StringVar(&team, "team", "", "Team filter")
	}
	query := func() string {
		q := url.Values{}
		for k, v := range map[string]string{
			"from": from, "to": to, "project": project, "person": person, "team": team,
		} {
			if v != "" {
				q.Set(k, v)
			}
		}
		if enc := q.Encode(); enc != "" {
			return "?" + enc
		}
		return ""
	}

	overviewCmd := &cobra.Command{
		Use:   "overview",
		Short: "Dashboard headline numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/reports/overview", apiFlag))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	reportCmd.AddCommand(overviewCmd)

	summaryCmd := &cobra.Command{
		Use:   "visit-summary",
		Short: "Visit totals by person, team and day",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/reports/visit-summary%s", apiFlag, query()))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	addFilters(summaryCmd)
	reportCmd.AddCommand(summaryCmd)

	coverageCmd := &cobra.Command{
		Use:   "delivery-coverage",
		Short: "Receipts cross-checked against visits",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/reports/delivery-coverage%s", apiFlag, query()))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	addFilters(coverageCmd)
	reportCmd.AddCommand(coverageCmd)

	var format, out string
	exportCmd := &cobra.Command{
		Use:   "export REPORT",
		Short: "Export a report (visit-summary, person-projects, delivery-coverage)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := query()
			sep := "?"
			if q != "" {
				sep = "&"
			}
			u := fmt.Sprintf("%s/api/reports/%s/export%s%sformat=%s", apiFlag, args[0], q, sep, format)
			return doGetToFile(u, out)
		},
	}
	addFilters(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv or xlsx")
	exportCmd.Flags().StringVarP(&out, "out", "o", "-", "Output file, - for stdout")
	reportCmd.AddCommand(exportCmd)

	rootCmd.AddCommand(reportCmd)
}
