package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/salestracker/internal/config"
	"github.com/mamadbah2/salestracker/internal/repository/mongodb"
	"github.com/mamadbah2/salestracker/internal/repository/sheets"
	"github.com/mamadbah2/salestracker/internal/service/aggregation"
	"github.com/mamadbah2/salestracker/internal/service/reporting"
	"github.com/mamadbah2/salestracker/pkg/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "salesctl",
	Short: "Maintenance commands for the sales tracker",
	Long: `salesctl runs maintenance tasks against the sales tracker store:
rebuilding the running summary, printing totals for a day and
publishing the daily report.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app holds the services a command needs.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	client    *mongodb.Client
	totals    *aggregation.Service
	reporting *reporting.Service
}

func newApp(ctx context.Context, withExport bool) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Reporting.Location()
	if err != nil {
		return nil, err
	}

	client, err := mongodb.Connect(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	var exporter sheets.Exporter
	if withExport {
		if !cfg.Sheets.Enabled() {
			_ = client.Close(ctx)
			return nil, fmt.Errorf("--export needs GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID")
		}
		sheet, err := sheets.NewReportSheet(ctx, cfg.Sheets, log.Named("repo.sheets"))
		if err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		exporter = sheet
	}

	sales := mongodb.NewSalesStore(client)
	return &app{
		cfg:       cfg,
		logger:    log,
		client:    client,
		totals:    aggregation.NewService(sales, loc, cfg.Reporting.Currency, log.Named("svc.aggregation")),
		reporting: reporting.NewService(sales, mongodb.NewReportStore(client), exporter, loc, log.Named("svc.reporting")),
	}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.client.Close(ctx)
	_ = a.logger.Sync()
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 2*time.Minute)
}
