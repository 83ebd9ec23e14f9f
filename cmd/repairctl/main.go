// repairctl is the operator CLI for the repair desk: it writes report exports
// straight from the database and issues staff tokens for the API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/app/services"
	businessflow "github.com/amirphl/repair-desk/business_flow"
	"github.com/amirphl/repair-desk/config"
	"github.com/amirphl/repair-desk/repository"
	"github.com/amirphl/repair-desk/utils"
	"github.com/spf13/pflag"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const usage = `repairctl - repair desk operator tool

Usage:
  repairctl report [--days N] [--format json|xlsx] [--out DIR]
  repairctl token --subject NAME [--ttl DURATION]

Configuration is read from the environment (and .env) like the API server.
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stdout, usage)
		return nil
	}

	switch args[0] {
	case "report":
		return runReport(args[1:], stdout)
	case "token":
		return runToken(args[1:], stdout)
	}
	return fmt.Errorf("unknown command %q (want report or token)", args[0])
}

type reportOptions struct {
	days   int
	format string
	outDir string
}

func parseReportFlags(args []string, defaultDir string) (*reportOptions, error) {
	opts := &reportOptions{}
	flagSet := pflag.NewFlagSet("report", pflag.ContinueOnError)
	flagSet.IntVar(&opts.days, "days", 30, "report window in days")
	flagSet.StringVar(&opts.format, "format", businessflow.ReportFormatJSON, "export format: json or xlsx")
	flagSet.StringVar(&opts.outDir, "out", defaultDir, "directory to write the export into")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if opts.days <= 0 {
		return nil, fmt.Errorf("--days must be positive, got %d", opts.days)
	}
	if _, err := businessflow.ParseReportFormat(opts.format); err != nil {
		return nil, fmt.Errorf("--format: %w", err)
	}
	return opts, nil
}

func runReport(args []string, stdout io.Writer) error {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		return err
	}

	opts, err := parseReportFlags(args, cfg.Reports.ExportDir)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	system := businessflow.NewRepairSystem(
		repository.NewTicketRepository(db, repository.NewSequenceCounterRepository(db)),
		repository.NewCustomerRepository(db),
		repository.NewTechnicianRepository(db),
		nil,
	)
	defer system.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := system.Load(ctx); err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	flow := businessflow.NewReportFlow(system, nil, "", 0)
	report, err := flow.Report(ctx, opts.days)
	if err != nil {
		return err
	}
	export, err := flow.Export(ctx, opts.days, opts.format)
	if err != nil {
		return err
	}

	path, err := writeExport(opts.outDir, export)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", path, len(export.Content))
	printSummary(stdout, *report, time.Now())
	return nil
}

// printSummary writes the headline metrics of report
func printSummary(w io.Writer, report dto.Report, generatedAt time.Time) {
	m := report.Metrics
	fmt.Fprintf(w, "Report for the last %d days, generated %s\n", report.Days, utils.FormatDate(generatedAt))
	fmt.Fprintf(w, "  tickets:         %d (%d completed, %d active)\n", m.TotalTickets, m.CompletedTickets, m.ActiveTickets)
	fmt.Fprintf(w, "  revenue:         %s\n", utils.FormatCurrency(m.TotalRevenue))
	fmt.Fprintf(w, "  avg ticket:      %s\n", utils.FormatCurrency(m.AvgTicketValue))
	fmt.Fprintf(w, "  completion rate: %.1f%%\n", m.CompletionRate)
}

// writeExport writes the export under dir using its dated file name
func writeExport(dir string, export *businessflow.ReportExport) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, export.FileName)
	if err := os.WriteFile(path, export.Content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func runToken(args []string, stdout io.Writer) error {
	var (
		subject string
		ttl     time.Duration
	)
	flagSet := pflag.NewFlagSet("token", pflag.ContinueOnError)
	flagSet.StringVar(&subject, "subject", "", "staff member the token is issued to")
	flagSet.DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if subject == "" {
		return errors.New("--subject is required")
	}

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		return err
	}
	return issueToken(cfg.Auth, subject, ttl, stdout)
}

func issueToken(auth config.AuthConfig, subject string, ttl time.Duration, stdout io.Writer) error {
	tokens, err := services.NewTokenService(auth.TokenTTL, auth.Issuer, auth.Audience, auth.UseRSAKeys, auth.PrivateKey, auth.PublicKey, auth.SecretKey)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}
	token, err := tokens.GenerateStaffToken(subject, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}
