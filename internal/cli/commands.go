package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mamadbah2/salestracker/internal/domain/models"
	"github.com/mamadbah2/salestracker/internal/service/aggregation"
	"github.com/mamadbah2/salestracker/pkg/currency"
)

func init() {
	rootCmd.AddCommand(rebuildSummaryCmd)
	rootCmd.AddCommand(totalsCmd)
	rootCmd.AddCommand(reportCmd)

	totalsCmd.Flags().String("date", "", "Day to report, YYYY-MM-DD (default today)")
	reportCmd.Flags().String("date", "", "Day to report, YYYY-MM-DD (default today)")
	reportCmd.Flags().Bool("export", false, "Also append the report to the configured Google Sheet")
}

// ─── rebuild-summary ────────────────────────────────────────────────────────

var rebuildSummaryCmd = &cobra.Command{
	Use:   "rebuild-summary",
	Short: "Recompute the running summary from the sold records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.close()

		total, err := a.totals.RebuildSummary(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "summary rebuilt: %s\n", currency.Format(total, a.cfg.Reporting.Currency))
		return nil
	},
}

// ─── totals ─────────────────────────────────────────────────────────────────

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Print day, month and overall totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.close()

		date, _ := cmd.Flags().GetString("date")
		day, err := a.totals.ParseDay(date)
		if err != nil {
			return err
		}
		report, err := a.totals.Totals(ctx, day)
		if err != nil {
			return err
		}
		printTotals(cmd.OutOrStdout(), report, a.cfg.Reporting.Currency)
		return nil
	},
}

// ─── report ─────────────────────────────────────────────────────────────────

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build and store the daily report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		export, _ := cmd.Flags().GetBool("export")
		a, err := newApp(ctx, export)
		if err != nil {
			return err
		}
		defer a.close()

		date, _ := cmd.Flags().GetString("date")
		day, err := a.totals.ParseDay(date)
		if err != nil {
			return err
		}
		report, err := a.reporting.PublishDailyReport(ctx, day)
		if err != nil {
			return err
		}
		printDailyReport(cmd.OutOrStdout(), report, a.cfg.Reporting.Currency)
		return nil
	},
}

func printTotals(w io.Writer, report aggregation.Report, code string) {
	fmt.Fprintf(w, "Date:     %s\n", report.Date)
	fmt.Fprintf(w, "Day:      %s\n", currency.Format(report.Day, code))
	fmt.Fprintf(w, "Month:    %s\n", currency.Format(report.Month, code))
	fmt.Fprintf(w, "Overall:  %s\n", currency.Format(report.Overall, code))
	if report.Summary != nil {
		fmt.Fprintf(w, "Summary:  %s\n", currency.Format(decimal.NewFromFloat(report.Summary.TotalSales), code))
	}

	sellers := make([]string, 0, len(report.BySeller))
	for seller := range report.BySeller {
		sellers = append(sellers, seller)
	}
	sort.Strings(sellers)
	for _, seller := range sellers {
		fmt.Fprintf(w, "  %-16s %s\n", seller, currency.Format(report.BySeller[seller], code))
	}
}

func printDailyReport(w io.Writer, report models.DailyReport, code string) {
	fmt.Fprintf(w, "Report %s: %d sales, %s (month to date %s)\n",
		report.Date.Format("2006-01-02"),
		report.SalesCount,
		currency.Format(decimal.NewFromFloat(report.SalesAmount), code),
		currency.Format(decimal.NewFromFloat(report.MonthToDate), code))
}
